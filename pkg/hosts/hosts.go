// Package hosts lists devices known to the LAN host table. It is a
// convenience layer over client.CallAction against the Hosts service.
package hosts

import (
	"errors"

	"github.com/fritzlink/fritzlink-go/pkg/client"
	"github.com/fritzlink/fritzlink-go/pkg/fault"
	"github.com/fritzlink/fritzlink-go/pkg/soap"
)

const serviceName = "Hosts1"

// Host is one entry of the device's host table.
type Host struct {
	IP     string
	Name   string
	MAC    string
	Active bool
}

// Hosts reads the host table of one device.
type Hosts struct {
	client *client.Client
}

// New wraps an existing client.
func New(c *client.Client) *Hosts {
	return &Hosts{client: c}
}

// Count returns the number of host entries.
func (h *Hosts) Count() (int, error) {
	result, err := h.client.CallAction(serviceName, "GetHostNumberOfEntries")
	if err != nil {
		return 0, err
	}
	count, _ := result["NewHostNumberOfEntries"].(int)
	return count, nil
}

// Entry returns the host at the given table index.
func (h *Hosts) Entry(index int) (*Host, error) {
	result, err := h.client.CallAction(serviceName, "GetGenericHostEntry",
		soap.Arg{Name: "NewIndex", Value: index})
	if err != nil {
		return nil, err
	}
	return hostFromResult(result), nil
}

// EntryByMAC returns the host with the given MAC address.
func (h *Hosts) EntryByMAC(mac string) (*Host, error) {
	result, err := h.client.CallAction(serviceName, "GetSpecificHostEntry",
		soap.Arg{Name: "NewMACAddress", Value: mac})
	if err != nil {
		return nil, err
	}
	host := hostFromResult(result)
	host.MAC = mac
	return host, nil
}

// All returns every known host, active or not, in table order.
func (h *Hosts) All() ([]*Host, error) {
	var all []*Host
	for index := 0; ; index++ {
		host, err := h.Entry(index)
		if err != nil {
			var deviceErr *fault.Error
			if errors.As(err, &deviceErr) && deviceErr.IsIndexError() {
				return all, nil
			}
			return nil, err
		}
		all = append(all, host)
	}
}

// Active returns every host currently marked active.
func (h *Hosts) Active() ([]*Host, error) {
	all, err := h.All()
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, host := range all {
		if host.Active {
			active = append(active, host)
		}
	}
	return active, nil
}

func hostFromResult(result soap.Result) *Host {
	host := &Host{}
	host.IP, _ = result["NewIPAddress"].(string)
	host.Name, _ = result["NewHostName"].(string)
	host.MAC, _ = result["NewMACAddress"].(string)
	host.Active, _ = result["NewActive"].(bool)
	return host
}
