package descriptor

import (
	"encoding/xml"
	"fmt"
)

// Argument is one parameter of an Action. Its data type is resolved
// indirectly through the owning service's state-variable table via
// RelatedStateVariable.
type Argument struct {
	Name                 string `xml:"name" json:"name"`
	Direction            string `xml:"direction" json:"direction"`
	RelatedStateVariable string `xml:"relatedStateVariable" json:"relatedStateVariable"`
}

// IsInput reports whether the argument is sent with the request.
func (a *Argument) IsInput() bool {
	return a.Direction == "in"
}

// IsOutput reports whether the argument is returned in the response.
func (a *Argument) IsOutput() bool {
	return a.Direction == "out"
}

// Action is a callable remote operation with an ordered argument list.
// An empty argument list is valid.
type Action struct {
	Name      string      `xml:"name" json:"name"`
	Arguments []*Argument `xml:"argumentList>argument" json:"arguments,omitempty"`

	index map[string]*Argument
}

// Argument returns the argument with the given name. The index is built
// during parsing and schema attachment, so lookups never mutate the
// action and are safe for concurrent readers.
func (a *Action) Argument(name string) (*Argument, bool) {
	arg, ok := a.index[name]
	return arg, ok
}

// InArguments returns the input arguments in document order.
func (a *Action) InArguments() []*Argument {
	return a.filter((*Argument).IsInput)
}

// OutArguments returns the output arguments in document order.
func (a *Action) OutArguments() []*Argument {
	return a.filter((*Argument).IsOutput)
}

func (a *Action) filter(keep func(*Argument) bool) []*Argument {
	var result []*Argument
	for _, arg := range a.Arguments {
		if keep(arg) {
			result = append(result, arg)
		}
	}
	return result
}

func (a *Action) buildIndex() {
	a.index = make(map[string]*Argument, len(a.Arguments))
	for _, arg := range a.Arguments {
		a.index[arg.Name] = arg
	}
}

// ValueRange restricts a numeric state variable.
type ValueRange struct {
	Minimum string `xml:"minimum" json:"minimum,omitempty"`
	Maximum string `xml:"maximum" json:"maximum,omitempty"`
	Step    string `xml:"step" json:"step,omitempty"`
}

// StateVariable is a named type definition shared by one or more
// arguments within a service.
type StateVariable struct {
	Name          string      `xml:"name" json:"name"`
	DataType      string      `xml:"dataType" json:"dataType"`
	DefaultValue  string      `xml:"defaultValue" json:"defaultValue,omitempty"`
	AllowedValues []string    `xml:"allowedValueList>allowedValue" json:"allowedValues,omitempty"`
	AllowedRange  *ValueRange `xml:"allowedValueRange" json:"allowedRange,omitempty"`
}

// SCPD is the parsed action-schema document of one service: the action
// list and the state-variable table the arguments refer to.
type SCPD struct {
	SpecVersion    SpecVersion      `xml:"specVersion" json:"specVersion"`
	Actions        []*Action        `xml:"actionList>action" json:"actions,omitempty"`
	StateVariables []*StateVariable `xml:"serviceStateTable>stateVariable" json:"stateVariables,omitempty"`
}

// ParseSCPD parses an action-schema document. The returned schema is
// fully indexed and read-only.
func ParseSCPD(data []byte) (*SCPD, error) {
	var scpd SCPD
	if err := xml.Unmarshal(data, &scpd); err != nil {
		return nil, fmt.Errorf("malformed action-schema document: %w", err)
	}
	for _, action := range scpd.Actions {
		action.buildIndex()
	}
	return &scpd, nil
}
