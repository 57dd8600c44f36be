package schema

import (
	"errors"
	"fmt"
	"time"

	"github.com/fritzlink/fritzlink-go/pkg/descriptor"
	"github.com/fritzlink/fritzlink-go/pkg/log"
)

// ErrNoDescriptions indicates that no descriptor has been loaded yet.
var ErrNoDescriptions = errors.New("no descriptions loaded")

// Manager knows all descriptor data of one device, including the
// flattened service registry. Discovery is synchronous; once Scan and
// LoadServiceSchemas have completed the registry is read-only and safe
// for concurrent readers.
type Manager struct {
	source Source
	logger log.Logger
	connID string

	descriptions []*descriptor.Description
	services     map[string]*descriptor.Service
}

// NewManager creates a manager reading from the given source.
// logger may be nil.
func NewManager(source Source, logger log.Logger, connID string) *Manager {
	return &Manager{
		source:   source,
		logger:   log.OrNoop(logger),
		connID:   connID,
		services: make(map[string]*descriptor.Service),
	}
}

// Reset drops all loaded descriptions and the service registry, so a
// subsequent discovery pass starts from scratch. Discovery replaces,
// never merges.
func (m *Manager) Reset() {
	m.descriptions = nil
	m.services = make(map[string]*descriptor.Service)
}

// AddDescription fetches and parses one root descriptor document.
func (m *Manager) AddDescription(path string) error {
	data, err := m.source.Fetch(path)
	if err != nil {
		return err
	}
	desc, err := descriptor.Parse(data)
	if err != nil {
		return err
	}
	m.descriptions = append(m.descriptions, desc)
	return nil
}

// RestoreDescriptions replaces the loaded descriptions with ones
// deserialized from a cache and rebuilds all lookup indexes.
func (m *Manager) RestoreDescriptions(descriptions []*descriptor.Description) error {
	m.Reset()
	for _, desc := range descriptions {
		if err := desc.RebuildIndexes(); err != nil {
			return err
		}
	}
	m.descriptions = descriptions
	m.Scan()
	return nil
}

// Scan rebuilds the flattened service registry from all loaded
// descriptions. Must be called after the descriptions are added.
func (m *Manager) Scan() {
	m.services = make(map[string]*descriptor.Service)
	for _, desc := range m.descriptions {
		desc.Device.CollectServices(m.services)
	}
}

// LoadServiceSchemas loads the action-schema document of every service
// in the registry. A failed or malformed schema disables only that
// service's actions: the service stays in the registry with an empty
// action table and the failure is logged.
func (m *Manager) LoadServiceSchemas() {
	for name, service := range m.services {
		if err := m.loadServiceSchema(service); err != nil {
			m.logger.Log(log.Event{
				Timestamp:    time.Now(),
				ConnectionID: m.connID,
				Direction:    log.DirectionIn,
				Layer:        log.LayerSchema,
				Category:     log.CategoryError,
				Error: &log.ErrorEvent{
					Layer:   log.LayerSchema,
					Message: fmt.Sprintf("service %s: %v", name, err),
				},
			})
		}
	}
}

func (m *Manager) loadServiceSchema(service *descriptor.Service) error {
	data, err := m.source.Fetch(service.SCPDURL)
	if err != nil {
		return err
	}
	scpd, err := descriptor.ParseSCPD(data)
	if err != nil {
		return err
	}
	return service.SetSCPD(scpd)
}

// Services returns the flattened service registry keyed by name.
// The returned map must be treated as read-only.
func (m *Manager) Services() map[string]*descriptor.Service {
	return m.services
}

// Service returns the named service from the registry.
func (m *Manager) Service(name string) (*descriptor.Service, bool) {
	service, ok := m.services[name]
	return service, ok
}

// Descriptions returns the loaded descriptions in load order.
func (m *Manager) Descriptions() []*descriptor.Description {
	return m.descriptions
}

// Modelname returns the model name of the first description's root
// device: the reported identity of the device itself.
func (m *Manager) Modelname() (string, error) {
	if len(m.descriptions) == 0 {
		return "", ErrNoDescriptions
	}
	return m.descriptions[0].ModelName(), nil
}

// SystemVersion returns the firmware version like "7.29", or "" if no
// description carries system information.
func (m *Manager) SystemVersion() string {
	for _, desc := range m.descriptions {
		if version := desc.FirmwareVersion(); version != "" {
			return version
		}
	}
	return ""
}

// SystemInfo returns the full firmware information block, or nil if
// unavailable.
func (m *Manager) SystemInfo() *descriptor.SystemVersion {
	for _, desc := range m.descriptions {
		if desc.SystemVersion != nil && desc.SystemVersion.HW != "" {
			return desc.SystemVersion
		}
	}
	return nil
}
