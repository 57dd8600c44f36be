package schema

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testDescription = `<?xml version="1.0"?>
<root xmlns="urn:dslforum-org:device-1-0">
  <specVersion><major>1</major><minor>0</minor></specVersion>
  <systemVersion>
    <HW>236</HW><Major>154</Major><Minor>7</Minor><Patch>29</Patch>
    <Buildnumber>97063</Buildnumber><Display>154.07.29</Display>
  </systemVersion>
  <device>
    <deviceType>urn:dslforum-org:device:InternetGatewayDevice:1</deviceType>
    <modelName>FRITZ!Box 7590</modelName>
    <serviceList>
      <service>
        <serviceType>urn:dslforum-org:service:DeviceInfo:1</serviceType>
        <serviceId>urn:DeviceInfo-com:serviceId:DeviceInfo1</serviceId>
        <controlURL>/upnp/control/deviceinfo</controlURL>
        <SCPDURL>/deviceinfoSCPD.xml</SCPDURL>
      </service>
    </serviceList>
    <deviceList>
      <device>
        <deviceType>urn:dslforum-org:device:WANDevice:1</deviceType>
        <serviceList>
          <service>
            <serviceType>urn:dslforum-org:service:WANIPConnection:1</serviceType>
            <serviceId>urn:WANIPConnection-com:serviceId:WANIPConn1</serviceId>
            <controlURL>/upnp/control/wanipconnection1</controlURL>
            <SCPDURL>/wanipconnSCPD.xml</SCPDURL>
          </service>
          <service>
            <serviceType>urn:dslforum-org:service:Broken:1</serviceType>
            <serviceId>urn:Broken-com:serviceId:Broken1</serviceId>
            <controlURL>/upnp/control/broken</controlURL>
            <SCPDURL>/brokenSCPD.xml</SCPDURL>
          </service>
        </serviceList>
      </device>
    </deviceList>
  </device>
</root>`

const testSCPD = `<?xml version="1.0"?>
<scpd xmlns="urn:dslforum-org:service-1-0">
  <specVersion><major>1</major><minor>0</minor></specVersion>
  <actionList>
    <action>
      <name>GetStatusInfo</name>
      <argumentList>
        <argument>
          <name>NewConnectionStatus</name>
          <direction>out</direction>
          <relatedStateVariable>ConnectionStatus</relatedStateVariable>
        </argument>
      </argumentList>
    </action>
  </actionList>
  <serviceStateTable>
    <stateVariable>
      <name>ConnectionStatus</name>
      <dataType>string</dataType>
    </stateVariable>
  </serviceStateTable>
</scpd>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	serveXML := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/xml")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/tr64desc.xml", serveXML(testDescription))
	mux.HandleFunc("/deviceinfoSCPD.xml", serveXML(testSCPD))
	mux.HandleFunc("/wanipconnSCPD.xml", serveXML(testSCPD))
	mux.HandleFunc("/brokenSCPD.xml", serveXML("<scpd><actionList><not-closed></scpd>"))
	// anything else: devices answer unknown descriptor paths with an html page
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>404</body></html>"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	server := newTestServer(t)
	source := &HTTPSource{BaseURL: server.URL, Client: server.Client()}
	return NewManager(source, nil, "test")
}

func TestDiscovery(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.AddDescription("/tr64desc.xml"))
	m.Scan()
	m.LoadServiceSchemas()

	t.Run("RegistryFlattensSubDevices", func(t *testing.T) {
		services := m.Services()
		require.Len(t, services, 3)
		for _, name := range []string{"DeviceInfo1", "WANIPConn1", "Broken1"} {
			_, ok := services[name]
			require.True(t, ok, "registry missing %s", name)
		}
	})

	t.Run("ModelIdentity", func(t *testing.T) {
		model, err := m.Modelname()
		require.NoError(t, err)
		require.Equal(t, "FRITZ!Box 7590", model)
		require.Equal(t, "7.29", m.SystemVersion())
		require.NotNil(t, m.SystemInfo())
		require.Equal(t, "97063", m.SystemInfo().Buildnumber)
	})

	t.Run("ServiceSchemasLoaded", func(t *testing.T) {
		service, ok := m.Service("WANIPConn1")
		require.True(t, ok)
		require.True(t, service.HasAction("GetStatusInfo"))
	})

	t.Run("MalformedSchemaFailsOnlyThatService", func(t *testing.T) {
		broken, ok := m.Service("Broken1")
		require.True(t, ok, "service with failed schema stays addressable")
		require.Empty(t, broken.Actions())
	})
}

func TestDiscoveryIsIdempotent(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.AddDescription("/tr64desc.xml"))
	m.Scan()
	first := len(m.Services())

	// re-discovery replaces, never merges
	m.Reset()
	require.NoError(t, m.AddDescription("/tr64desc.xml"))
	m.Scan()
	require.Len(t, m.Services(), first)
}

func TestMissingDescriptorIsUnavailable(t *testing.T) {
	m := newTestManager(t)

	err := m.AddDescription("/igddesc.xml")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestUnreachableHost(t *testing.T) {
	source := &HTTPSource{BaseURL: "http://127.0.0.1:1", Client: http.DefaultClient}
	m := NewManager(source, nil, "test")

	err := m.AddDescription("/tr64desc.xml")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrResourceUnavailable),
		"transport failure must be distinct from a missing resource")
}

func TestModelnameWithoutDescriptions(t *testing.T) {
	m := NewManager(&FileSource{Dir: t.TempDir()}, nil, "test")
	_, err := m.Modelname()
	require.ErrorIs(t, err, ErrNoDescriptions)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tr64desc.xml"), []byte(testDescription), 0644))

	m := NewManager(&FileSource{Dir: dir}, nil, "test")
	require.NoError(t, m.AddDescription("/tr64desc.xml"))
	m.Scan()
	require.Len(t, m.Services(), 3)

	err := m.AddDescription("/missing.xml")
	require.ErrorIs(t, err, ErrResourceUnavailable)
}
