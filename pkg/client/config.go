package client

import (
	"os"
	"time"

	"github.com/fritzlink/fritzlink-go/pkg/cache"
	"github.com/fritzlink/fritzlink-go/pkg/log"
)

// Connection defaults. The fallback address is the vendor's
// link-local address, answered by any box when no DHCP lease exists.
const (
	DefaultAddress = "169.254.1.1"
	DefaultPort    = 49000
	DefaultTLSPort = 49443

	// DefaultUser is accepted by FRITZ!OS versions below 7.24. Newer
	// firmware requires a real account name; see resolveUser.
	DefaultUser = "dslf-config"

	// DefaultTimeout bounds every HTTP exchange.
	DefaultTimeout = 10 * time.Second
)

// Environment fallbacks consulted when the corresponding Config field
// is empty.
const (
	EnvUsername = "FRITZLINK_USERNAME"
	EnvPassword = "FRITZLINK_PASSWORD"
)

// Config carries the connection parameters for a Client. The zero
// value connects unauthenticated to the default address.
type Config struct {
	// Address is the device host, with or without scheme.
	Address string

	// Port overrides the default port for the selected scheme.
	Port int

	// User and Password authenticate SOAP exchanges via HTTP digest.
	// Without a password only the public descriptor is loaded and
	// protected actions fail with an authorization error.
	User     string
	Password string

	// UseTLS switches to HTTPS on the TLS port.
	UseTLS bool

	// VerifyTLS enforces certificate verification. Boxes ship a
	// self-signed certificate, so verification is off unless asked for.
	VerifyTLS bool

	// Timeout bounds each HTTP exchange. Zero selects DefaultTimeout.
	Timeout time.Duration

	// UseCache loads the scanned API from a local snapshot when one
	// exists and writes one after a fresh scan.
	UseCache bool

	// CacheDirectory overrides the per-user snapshot directory.
	CacheDirectory string

	// CacheFormat selects the snapshot encoding.
	CacheFormat cache.Format

	// SkipCacheVerify accepts a snapshot without checking it against
	// the live device identity.
	SkipCacheVerify bool

	// Logger receives protocol events. Nil disables capture.
	Logger log.Logger
}

// applyDefaults fills empty fields from the environment and the
// package defaults.
func (c *Config) applyDefaults() {
	if c.Address == "" {
		c.Address = DefaultAddress
	}
	if c.User == "" {
		c.User = os.Getenv(EnvUsername)
	}
	if c.User == "" {
		c.User = DefaultUser
	}
	if c.Password == "" {
		c.Password = os.Getenv(EnvPassword)
	}
	if c.Port == 0 {
		if c.UseTLS {
			c.Port = DefaultTLSPort
		} else {
			c.Port = DefaultPort
		}
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}
