package descriptor

import (
	"fmt"
	"strings"
)

// Service is a named, independently addressable group of remote actions.
// The SCPD field is populated lazily by the schema builder; a service
// whose schema failed to load has an empty action table, which callers
// must tolerate.
type Service struct {
	ServiceType string `xml:"serviceType" json:"serviceType"`
	ServiceID   string `xml:"serviceId" json:"serviceId"`
	ControlURL  string `xml:"controlURL" json:"controlURL"`
	EventSubURL string `xml:"eventSubURL" json:"eventSubURL,omitempty"`
	SCPDURL     string `xml:"SCPDURL" json:"SCPDURL"`

	// SCPD is the loaded action schema, nil until loaded.
	SCPD *SCPD `xml:"-" json:"scpd,omitempty"`

	actions        map[string]*Action
	stateVariables map[string]*StateVariable
}

// Name derives the service name from the trailing colon-segment of the
// service identifier, e.g. "urn:upnp-org:serviceId:WANIPConn1" yields
// "WANIPConn1".
func (s *Service) Name() string {
	if s.ServiceID == "" {
		return ""
	}
	parts := strings.Split(s.ServiceID, ":")
	return parts[len(parts)-1]
}

// SetSCPD attaches the loaded action schema, builds the lookup indexes
// and cross-links arguments to state variables. An argument referencing
// a state variable missing from the service's own table is a
// schema-loading defect and fails the whole schema for this service.
func (s *Service) SetSCPD(scpd *SCPD) error {
	stateVariables := make(map[string]*StateVariable, len(scpd.StateVariables))
	for _, sv := range scpd.StateVariables {
		stateVariables[sv.Name] = sv
	}

	actions := make(map[string]*Action, len(scpd.Actions))
	for _, action := range scpd.Actions {
		for _, arg := range action.Arguments {
			if _, ok := stateVariables[arg.RelatedStateVariable]; !ok {
				return fmt.Errorf(
					"service %s: action %s: argument %s references unknown state variable %q",
					s.Name(), action.Name, arg.Name, arg.RelatedStateVariable,
				)
			}
		}
		// Deserialized schemas arrive without indexes.
		action.buildIndex()
		actions[action.Name] = action
	}

	s.SCPD = scpd
	s.actions = actions
	s.stateVariables = stateVariables
	return nil
}

// RebuildIndexes restores the lookup indexes after deserialization from
// a cache, where only the exported SCPD survives.
func (s *Service) RebuildIndexes() error {
	if s.SCPD == nil {
		return nil
	}
	return s.SetSCPD(s.SCPD)
}

// Action returns the named action, if the service schema knows it.
func (s *Service) Action(name string) (*Action, bool) {
	action, ok := s.actions[name]
	return action, ok
}

// HasAction reports whether the named action is available.
func (s *Service) HasAction(name string) bool {
	_, ok := s.actions[name]
	return ok
}

// Actions returns the actions in document order. The slice is empty when
// the schema is not loaded.
func (s *Service) Actions() []*Action {
	if s.SCPD == nil {
		return nil
	}
	return s.SCPD.Actions
}

// StateVariable returns the named state variable from the service's
// state-variable table.
func (s *Service) StateVariable(name string) (*StateVariable, bool) {
	sv, ok := s.stateVariables[name]
	return sv, ok
}

// ArgumentType resolves the data-type tag for an argument through the
// state-variable table. Returns the empty string if unresolved.
func (s *Service) ArgumentType(arg *Argument) string {
	sv, ok := s.stateVariables[arg.RelatedStateVariable]
	if !ok {
		return ""
	}
	return sv.DataType
}
