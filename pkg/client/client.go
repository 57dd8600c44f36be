package client

import (
	"crypto/tls"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/icholy/digest"

	"github.com/fritzlink/fritzlink-go/pkg/cache"
	"github.com/fritzlink/fritzlink-go/pkg/descriptor"
	"github.com/fritzlink/fritzlink-go/pkg/fault"
	"github.com/fritzlink/fritzlink-go/pkg/log"
	"github.com/fritzlink/fritzlink-go/pkg/schema"
	"github.com/fritzlink/fritzlink-go/pkg/soap"
)

// Descriptor paths on the device. The TR-064 descriptor is mandatory;
// the IGD descriptor requires credentials and not every model serves it.
const (
	tr64DescriptorPath = "/tr64desc.xml"
	igdDescriptorPath  = "/igddesc.xml"
	boxInfoPath        = "/jason_boxinfo.xml"
)

// userRequiredVersion is the first FRITZ!OS version that rejects the
// historic default account name.
const userRequiredVersion = 7.24

const applicationAccessDisabled = "access for applications disabled; " +
	"check Home Network > Network > Network Settings for " +
	`"Allow access for applications"`

// ErrUnknownService indicates a service name absent from the scanned
// registry after normalization.
var ErrUnknownService = errors.New("unknown service")

// ErrUnknownAction indicates an action absent from the service's
// schema. Raised before any network I/O.
var ErrUnknownAction = errors.New("unknown action")

// Client is the call surface for one device. Create it once per device
// and reuse it; the scanned schema is read-only after construction and
// safe for concurrent callers.
type Client struct {
	config       Config
	endpoint     string
	httpClient   *http.Client
	source       *schema.HTTPSource
	manager      *schema.Manager
	soaper       *soap.Soaper
	store        *cache.Store
	logger       log.Logger
	connectionID string

	boxInfo map[string]string
}

// New connects to the device, scans its API and returns a ready
// Client. Scanning loads the TR-064 descriptor (mandatory), the IGD
// descriptor when credentials are present, and every service's action
// schema. With UseCache set, a valid local snapshot replaces the scan.
func New(config Config) (*Client, error) {
	config.applyDefaults()

	c := &Client{
		config:       config,
		endpoint:     endpointURL(config),
		logger:       log.OrNoop(config.Logger),
		connectionID: uuid.NewString(),
	}
	c.httpClient = newHTTPClient(config, config.User)

	c.source = &schema.HTTPSource{
		BaseURL:      c.endpoint,
		Client:       c.httpClient,
		Logger:       c.logger,
		ConnectionID: c.connectionID,
	}
	c.manager = schema.NewManager(c.source, c.logger, c.connectionID)
	c.soaper = &soap.Soaper{
		Endpoint:     c.endpoint,
		Client:       c.httpClient,
		Logger:       c.logger,
		ConnectionID: c.connectionID,
	}

	if config.UseCache {
		c.store = cache.NewStore(config.CacheDirectory, config.CacheFormat)
	}
	if err := c.loadAPI(); err != nil {
		return nil, err
	}
	if err := c.resolveUser(); err != nil {
		return nil, err
	}
	return c, nil
}

// endpointURL derives scheme://host:port from the configuration,
// discarding any scheme the caller put into the address.
func endpointURL(config Config) string {
	host := config.Address
	if i := strings.Index(host, "//"); i >= 0 {
		host = host[i+2:]
	}
	scheme := "http"
	if config.UseTLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, config.Port)
}

// newHTTPClient builds the transport stack. With a password the digest
// challenge is handled transparently below the HTTP client.
func newHTTPClient(config Config, user string) *http.Client {
	base := &http.Transport{}
	if config.UseTLS && !config.VerifyTLS {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	var rt http.RoundTripper = base
	if config.Password != "" {
		rt = &digest.Transport{
			Username:  user,
			Password:  config.Password,
			Transport: base,
		}
	}
	return &http.Client{Transport: rt, Timeout: config.Timeout}
}

// loadAPI populates the schema manager, from the snapshot store when
// enabled and valid, from the device otherwise.
func (c *Client) loadAPI() error {
	if c.store == nil {
		return c.scan()
	}

	snapshot, err := c.store.Load(c.config.Address)
	if err != nil || snapshot == nil {
		return c.rescanAndStore()
	}
	if !c.config.SkipCacheVerify && !c.snapshotMatchesDevice(snapshot) {
		return c.rescanAndStore()
	}
	if err := c.manager.RestoreDescriptions(snapshot.Descriptions); err != nil {
		return c.rescanAndStore()
	}
	return nil
}

// snapshotMatchesDevice compares the snapshot identity with the live
// device. Any failure to read the live identity counts as a mismatch.
func (c *Client) snapshotMatchesDevice(snapshot *cache.Snapshot) bool {
	info, err := c.BoxInfo()
	if err != nil {
		return false
	}
	return snapshot.Matches(info["Name"], info["Version"])
}

func (c *Client) rescanAndStore() error {
	c.manager.Reset()
	if err := c.scan(); err != nil {
		return err
	}
	snapshot := &cache.Snapshot{
		Address:      c.config.Address,
		Descriptions: c.manager.Descriptions(),
	}
	snapshot.ModelName, _ = c.manager.Modelname()
	snapshot.SystemVersion = c.firmwareDisplayVersion()
	return c.store.Save(snapshot)
}

// firmwareDisplayVersion is the long version string from the system
// descriptor, the same form the box-info endpoint reports.
func (c *Client) firmwareDisplayVersion() string {
	if info := c.manager.SystemInfo(); info != nil {
		return info.Display
	}
	return ""
}

// scan downloads and parses the descriptors and every action schema.
func (c *Client) scan() error {
	if err := c.manager.AddDescription(tr64DescriptorPath); err != nil {
		if errors.Is(err, schema.ErrResourceUnavailable) {
			return &fault.ConnectionError{Message: applicationAccessDisabled, Err: err}
		}
		return err
	}
	if c.config.Password != "" {
		err := c.manager.AddDescription(igdDescriptorPath)
		if err != nil && !errors.Is(err, schema.ErrResourceUnavailable) {
			return err
		}
	}
	c.manager.Scan()
	c.manager.LoadServiceSchemas()
	return nil
}

// Rediscover drops the scanned schema and rebuilds it from the device,
// refreshing the snapshot when caching is enabled. The registry is
// replaced, never merged.
func (c *Client) Rediscover() error {
	c.boxInfo = nil
	if c.store != nil {
		return c.rescanAndStore()
	}
	c.manager.Reset()
	return c.scan()
}

// NormalizeName returns the canonical registry form of a service name.
// Separator digits become a plain suffix and a name without a trailing
// digit gets "1" appended, so "WLANConfiguration" addresses the first
// instance and "WLANConfiguration:2" the second. Normalization is
// idempotent.
func NormalizeName(name string) string {
	name = strings.ReplaceAll(name, ":", "")
	if name == "" || name[len(name)-1] < '0' || name[len(name)-1] > '9' {
		name += "1"
	}
	return name
}

// CallAction invokes an action and returns its typed out-arguments.
// The service name is normalized first. Unknown service or action
// names fail before any request is sent.
func (c *Client) CallAction(serviceName, actionName string, args ...soap.Arg) (soap.Result, error) {
	name := NormalizeName(serviceName)
	service, ok := c.manager.Service(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, name)
	}
	if !service.HasAction(actionName) {
		return nil, fmt.Errorf("%w: service %q has no action %q",
			ErrUnknownAction, name, actionName)
	}
	return c.soaper.Execute(service, actionName, args)
}

// Services returns the scanned registry keyed by normalized name.
func (c *Client) Services() map[string]*descriptor.Service {
	return c.manager.Services()
}

// Modelname returns the model identity from the root descriptor.
func (c *Client) Modelname() (string, error) {
	return c.manager.Modelname()
}

// SystemVersion returns the firmware version, or "" if unknown.
func (c *Client) SystemVersion() string {
	return c.manager.SystemVersion()
}

// DeviceDescription returns the combined model and version string the
// device reports about itself.
func (c *Client) DeviceDescription() (string, error) {
	result, err := c.CallAction("DeviceInfo1", "GetInfo")
	if err != nil {
		return "", err
	}
	description, _ := result["NewDescription"].(string)
	return description, nil
}

// Reconnect asks the device to drop and re-establish the external
// connection, usually obtaining a new IP address.
func (c *Client) Reconnect() error {
	_, err := c.CallAction("WANIPConn1", "ForceTermination")
	return err
}

// Reboot restarts the device.
func (c *Client) Reboot() error {
	_, err := c.CallAction("DeviceConfig1", "Reboot")
	return err
}

// String implements fmt.Stringer with the model and firmware identity.
func (c *Client) String() string {
	model, err := c.Modelname()
	if err != nil {
		model = "unknown device"
	}
	return fmt.Sprintf("%s at %s, version %s", model, c.endpoint, c.SystemVersion())
}

// resolveUser swaps the historic default account for the last
// logged-in account on firmware that requires a real user name. The
// vendor recommends this lookup when no user was configured.
func (c *Client) resolveUser() error {
	version, err := strconv.ParseFloat(c.SystemVersion(), 64)
	if err != nil {
		return nil
	}
	if version < userRequiredVersion ||
		c.config.User != DefaultUser || c.config.Password == "" {
		return nil
	}

	result, err := c.CallAction("LANConfigSecurity1", "X_AVM-DE_GetUserList")
	if err != nil {
		// older or stripped-down firmware: keep the configured user
		return nil
	}
	list, _ := result["NewX_AVM-DE_UserList"].(string)
	lastUser := lastLoggedInUser(list)
	if lastUser == "" || lastUser == c.config.User {
		return nil
	}

	c.config.User = lastUser
	c.httpClient = newHTTPClient(c.config, lastUser)
	c.soaper.Client = c.httpClient
	c.source.Client = c.httpClient
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connectionID,
		Layer:        log.LayerAction,
		Category:     log.CategoryState,
		Action:       &log.ActionEvent{Service: "LANConfigSecurity1", Action: "X_AVM-DE_GetUserList"},
	})
	return nil
}

// lastLoggedInUser extracts the account marked last_user="1" from the
// user-list document. Returns "" if none is marked.
func lastLoggedInUser(list string) string {
	type userEntry struct {
		LastUser string `xml:"last_user,attr"`
		Name     string `xml:",chardata"`
	}
	var parsed struct {
		Users []userEntry `xml:"Username"`
	}
	if err := xml.Unmarshal([]byte(list), &parsed); err != nil {
		return ""
	}
	for _, user := range parsed.Users {
		if user.LastUser == "1" {
			return strings.TrimSpace(user.Name)
		}
	}
	return ""
}
