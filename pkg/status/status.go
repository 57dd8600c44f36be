// Package status reads connection state from the WAN services. It is
// a convenience layer over client.CallAction; every accessor maps to
// one remote action.
package status

import (
	"strconv"

	"github.com/fritzlink/fritzlink-go/pkg/client"
)

// Status reads link and traffic state of one device.
type Status struct {
	client *client.Client
}

// New wraps an existing client.
func New(c *client.Client) *Status {
	return &Status{client: c}
}

// IsLinked reports whether the physical WAN link is up.
func (s *Status) IsLinked() (bool, error) {
	result, err := s.client.CallAction("WANCommonIFC", "GetCommonLinkProperties")
	if err != nil {
		return false, err
	}
	status, _ := result["NewPhysicalLinkStatus"].(string)
	return status == "Up", nil
}

// IsConnected reports whether the external connection is established.
func (s *Status) IsConnected() (bool, error) {
	result, err := s.client.CallAction("WANIPConn", "GetStatusInfo")
	if err != nil {
		return false, err
	}
	status, _ := result["NewConnectionStatus"].(string)
	return status == "Connected", nil
}

// ExternalIP returns the current external IPv4 address.
func (s *Status) ExternalIP() (string, error) {
	result, err := s.client.CallAction("WANIPConn", "GetExternalIPAddress")
	if err != nil {
		return "", err
	}
	ip, _ := result["NewExternalIPAddress"].(string)
	return ip, nil
}

// ExternalIPv6 returns the current external IPv6 address.
func (s *Status) ExternalIPv6() (string, error) {
	result, err := s.client.CallAction("WANIPConn", "X_AVM_DE_GetExternalIPv6Address")
	if err != nil {
		return "", err
	}
	ip, _ := result["NewExternalIPv6Address"].(string)
	return ip, nil
}

// ConnectionUptime returns the seconds since the connection came up.
func (s *Status) ConnectionUptime() (int, error) {
	result, err := s.client.CallAction("WANIPConn", "GetStatusInfo")
	if err != nil {
		return 0, err
	}
	uptime, _ := result["NewUptime"].(int)
	return uptime, nil
}

// DeviceUptime returns the seconds since the device booted.
func (s *Status) DeviceUptime() (int, error) {
	result, err := s.client.CallAction("DeviceInfo1", "GetInfo")
	if err != nil {
		return 0, err
	}
	uptime, _ := result["NewUpTime"].(int)
	return uptime, nil
}

// TransmissionRate returns the current upstream and downstream rates
// in bytes per second.
func (s *Status) TransmissionRate() (upstream, downstream int, err error) {
	result, err := s.client.CallAction("WANCommonIFC1", "GetAddonInfos")
	if err != nil {
		return 0, 0, err
	}
	upstream, _ = result["NewByteSendRate"].(int)
	downstream, _ = result["NewByteReceiveRate"].(int)
	return upstream, downstream, nil
}

// BytesSent returns the total bytes sent. Newer firmware reports the
// 64 bit counter as a decimal string.
func (s *Status) BytesSent() (int64, error) {
	result, err := s.client.CallAction("WANCommonIFC1", "GetAddonInfos")
	if err != nil {
		return 0, err
	}
	return counterValue(result["NewX_AVM_DE_TotalBytesSent64"], result["NewTotalBytesSent"]), nil
}

// BytesReceived returns the total bytes received.
func (s *Status) BytesReceived() (int64, error) {
	result, err := s.client.CallAction("WANCommonIFC1", "GetAddonInfos")
	if err != nil {
		return 0, err
	}
	return counterValue(result["NewX_AVM_DE_TotalBytesReceived64"], result["NewTotalBytesReceived"]), nil
}

// Reconnect forces termination of the external connection; the device
// re-establishes it with a new address.
func (s *Status) Reconnect() error {
	return s.client.Reconnect()
}

// counterValue prefers the 64 bit counter over the legacy 32 bit one.
func counterValue(wide, narrow any) int64 {
	switch v := wide.(type) {
	case int:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	if n, ok := narrow.(int); ok {
		return int64(n)
	}
	return 0
}
