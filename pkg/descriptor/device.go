package descriptor

// Device is one node of the device tree advertised by a root descriptor.
// A device owns services and, possibly, nested sub-devices; the tree is
// acyclic. Sub-device services belong to the same addressable namespace
// as the root device's services.
type Device struct {
	DeviceType       string `xml:"deviceType" json:"deviceType"`
	FriendlyName     string `xml:"friendlyName" json:"friendlyName,omitempty"`
	Manufacturer     string `xml:"manufacturer" json:"manufacturer,omitempty"`
	ManufacturerURL  string `xml:"manufacturerURL" json:"manufacturerURL,omitempty"`
	ModelDescription string `xml:"modelDescription" json:"modelDescription,omitempty"`
	ModelName        string `xml:"modelName" json:"modelName,omitempty"`
	ModelNumber      string `xml:"modelNumber" json:"modelNumber,omitempty"`
	ModelURL         string `xml:"modelURL" json:"modelURL,omitempty"`
	UDN              string `xml:"UDN" json:"UDN,omitempty"`
	UPC              string `xml:"UPC" json:"UPC,omitempty"`
	PresentationURL  string `xml:"presentationURL" json:"presentationURL,omitempty"`

	Services []*Service `xml:"serviceList>service" json:"services,omitempty"`
	Devices  []*Device  `xml:"deviceList>device" json:"devices,omitempty"`
}

// CollectServices appends the services of this device and of every
// transitively nested sub-device to the given registry, keyed by derived
// service name. Later entries overwrite earlier ones with the same name,
// mirroring document order precedence.
func (d *Device) CollectServices(registry map[string]*Service) {
	for _, service := range d.Services {
		registry[service.Name()] = service
	}
	for _, sub := range d.Devices {
		sub.CollectServices(registry)
	}
}

// AllServices returns the flattened service list of this device and all
// nested sub-devices in document order.
func (d *Device) AllServices() []*Service {
	services := make([]*Service, 0, len(d.Services))
	services = append(services, d.Services...)
	for _, sub := range d.Devices {
		services = append(services, sub.AllServices()...)
	}
	return services
}
