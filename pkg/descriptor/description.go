package descriptor

import (
	"encoding/xml"
	"fmt"
)

// SpecVersion is the descriptor schema version.
type SpecVersion struct {
	Major string `xml:"major" json:"major,omitempty"`
	Minor string `xml:"minor" json:"minor,omitempty"`
}

// Version returns "major.minor".
func (v SpecVersion) Version() string {
	return v.Major + "." + v.Minor
}

// SystemVersion describes the firmware of the device. It is only present
// in the primary (tr64desc) descriptor.
type SystemVersion struct {
	HW          string `xml:"HW" json:"HW,omitempty"`
	Major       string `xml:"Major" json:"Major,omitempty"`
	Minor       string `xml:"Minor" json:"Minor,omitempty"`
	Patch       string `xml:"Patch" json:"Patch,omitempty"`
	Buildnumber string `xml:"Buildnumber" json:"Buildnumber,omitempty"`
	Display     string `xml:"Display" json:"Display,omitempty"`
}

// Version returns the firmware version as reported by the device
// web-interface, like "7.29", or the empty string if unknown.
func (v *SystemVersion) Version() string {
	if v == nil || v.Minor == "" || v.Patch == "" {
		return ""
	}
	return v.Minor + "." + v.Patch
}

// Description is the parsed root descriptor document: the device tree
// plus version information.
type Description struct {
	SpecVersion   SpecVersion    `xml:"specVersion" json:"specVersion"`
	SystemVersion *SystemVersion `xml:"systemVersion" json:"systemVersion,omitempty"`
	Device        Device         `xml:"device" json:"device"`
}

// Parse parses a root descriptor document.
func Parse(data []byte) (*Description, error) {
	var desc Description
	if err := xml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("malformed descriptor document: %w", err)
	}
	return &desc, nil
}

// ModelName returns the model name of the root device. This is the
// device's reported model identity.
func (d *Description) ModelName() string {
	return d.Device.ModelName
}

// FirmwareVersion returns the firmware version, or "" if this descriptor
// does not carry system information.
func (d *Description) FirmwareVersion() string {
	return d.SystemVersion.Version()
}

// RebuildIndexes restores all service lookup indexes after the
// description was deserialized from a cache.
func (d *Description) RebuildIndexes() error {
	for _, service := range d.Device.AllServices() {
		if err := service.RebuildIndexes(); err != nil {
			return err
		}
	}
	return nil
}
