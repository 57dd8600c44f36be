package discovery

import (
	"context"
	"net"
	"strings"

	"github.com/enbility/zeroconf/v3"
)

// Browse defaults.
const (
	// ServiceType is the mDNS service the web interface announces.
	ServiceType = "_http._tcp"

	// Domain is the mDNS browse domain.
	Domain = "local"

	// instancePrefix marks the vendor's announcements.
	instancePrefix = "FRITZ!"
)

// Device is one discovered box.
type Device struct {
	// Name is the announced instance name, e.g. "FRITZ!Box 7590".
	Name string

	// Host is the announced host name.
	Host string

	// Port is the web interface port.
	Port int

	// Addresses holds the IPv4 and IPv6 addresses seen so far.
	Addresses []string
}

// Browser watches mDNS announcements for devices.
type Browser struct {
	// Interface restricts browsing to one network interface by name.
	// Empty browses all multicast-capable interfaces.
	Interface string

	// InstancePrefix filters announcements by instance name. Empty
	// selects the vendor default.
	InstancePrefix string
}

// Browse starts browsing and returns a channel of discovered devices.
// Each device is emitted once; addresses from later announcements of
// the same instance are merged into the already emitted entry. The
// channel closes when ctx is done.
func (b *Browser) Browse(ctx context.Context) (<-chan *Device, error) {
	prefix := b.InstancePrefix
	if prefix == "" {
		prefix = instancePrefix
	}

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	out := make(chan *Device)

	go func() {
		defer close(out)
		devices := make(map[string]*Device)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if !strings.HasPrefix(entry.Instance, prefix) {
					continue
				}
				device := entryToDevice(entry)
				if existing, found := devices[device.Name]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, device.Addresses)
					continue
				}
				devices[device.Name] = device
				select {
				case out <- device:
				case <-ctx.Done():
					return
				}
			case <-removed:
				// a vanished interface does not unpublish the device
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, b.options()...)
	}()

	return out, nil
}

// FindFirst browses until one device appears or ctx is done.
func (b *Browser) FindFirst(ctx context.Context) (*Device, error) {
	devices, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}
	select {
	case device, ok := <-devices:
		if ok {
			return device, nil
		}
		return nil, ctx.Err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *Browser) options() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.Interface != "" {
		if iface, err := net.InterfaceByName(b.Interface); err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}
	return opts
}

func entryToDevice(entry *zeroconf.ServiceEntry) *Device {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return &Device{
		Name:      entry.Instance,
		Host:      entry.HostName,
		Port:      entry.Port,
		Addresses: addrs,
	}
}

func mergeAddresses(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range incoming {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}
