package hosts

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritzlink/fritzlink-go/pkg/client"
	"github.com/fritzlink/fritzlink-go/pkg/fault"
)

const hostsDescription = `<?xml version="1.0"?>
<root xmlns="urn:dslforum-org:device-1-0">
  <device>
    <deviceType>urn:dslforum-org:device:InternetGatewayDevice:1</deviceType>
    <modelName>FRITZ!Box 7590</modelName>
    <serviceList>
      <service>
        <serviceType>urn:dslforum-org:service:Hosts:1</serviceType>
        <serviceId>urn:LanDeviceHosts-com:serviceId:Hosts1</serviceId>
        <controlURL>/upnp/control/hosts</controlURL>
        <SCPDURL>/hostsSCPD.xml</SCPDURL>
      </service>
    </serviceList>
  </device>
</root>`

const hostsSCPD = `<?xml version="1.0"?>
<scpd xmlns="urn:dslforum-org:service-1-0">
  <actionList>
    <action>
      <name>GetHostNumberOfEntries</name>
      <argumentList>
        <argument><name>NewHostNumberOfEntries</name><direction>out</direction>
          <relatedStateVariable>HostNumberOfEntries</relatedStateVariable></argument>
      </argumentList>
    </action>
    <action>
      <name>GetGenericHostEntry</name>
      <argumentList>
        <argument><name>NewIndex</name><direction>in</direction>
          <relatedStateVariable>HostNumberOfEntries</relatedStateVariable></argument>
        <argument><name>NewIPAddress</name><direction>out</direction>
          <relatedStateVariable>IPAddress</relatedStateVariable></argument>
        <argument><name>NewMACAddress</name><direction>out</direction>
          <relatedStateVariable>MACAddress</relatedStateVariable></argument>
        <argument><name>NewHostName</name><direction>out</direction>
          <relatedStateVariable>HostName</relatedStateVariable></argument>
        <argument><name>NewActive</name><direction>out</direction>
          <relatedStateVariable>Active</relatedStateVariable></argument>
      </argumentList>
    </action>
  </actionList>
  <serviceStateTable>
    <stateVariable><name>HostNumberOfEntries</name><dataType>ui2</dataType></stateVariable>
    <stateVariable><name>IPAddress</name><dataType>string</dataType></stateVariable>
    <stateVariable><name>MACAddress</name><dataType>string</dataType></stateVariable>
    <stateVariable><name>HostName</name><dataType>string</dataType></stateVariable>
    <stateVariable><name>Active</name><dataType>boolean</dataType></stateVariable>
  </serviceStateTable>
</scpd>`

var hostTable = []struct {
	ip, mac, name string
	active        int
}{
	{"192.168.178.20", "00:11:22:33:44:55", "laptop", 1},
	{"192.168.178.21", "66:77:88:99:aa:bb", "printer", 0},
}

func hostsResponse(index int) string {
	h := hostTable[index]
	return fmt.Sprintf(`<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>
<u:GetGenericHostEntryResponse xmlns:u="urn:dslforum-org:service:Hosts:1">
<NewIPAddress>%s</NewIPAddress><NewMACAddress>%s</NewMACAddress>
<NewHostName>%s</NewHostName><NewActive>%d</NewActive>
</u:GetGenericHostEntryResponse></s:Body></s:Envelope>`, h.ip, h.mac, h.name, h.active)
}

const indexFault = `<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><s:Fault>
<faultcode>s:Client</faultcode>
<detail><UPnPError><errorCode>713</errorCode>
<errorDescription>SpecifiedArrayIndexInvalid</errorDescription></UPnPError></detail>
</s:Fault></s:Body></s:Envelope>`

func newTestClient(t *testing.T) *client.Client {
	t.Helper()
	mux := http.NewServeMux()
	serveXML := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/xml")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/tr64desc.xml", serveXML(hostsDescription))
	mux.HandleFunc("/hostsSCPD.xml", serveXML(hostsSCPD))
	mux.HandleFunc("/upnp/control/hosts", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/xml")
		action := r.Header.Get("SOAPACTION")
		switch {
		case strings.HasSuffix(action, "#GetHostNumberOfEntries"):
			_, _ = fmt.Fprintf(w, `<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>
<u:GetHostNumberOfEntriesResponse xmlns:u="urn:dslforum-org:service:Hosts:1">
<NewHostNumberOfEntries>%d</NewHostNumberOfEntries>
</u:GetHostNumberOfEntriesResponse></s:Body></s:Envelope>`, len(hostTable))
		case strings.HasSuffix(action, "#GetGenericHostEntry"):
			index := requestedIndex(string(body))
			if index >= len(hostTable) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(indexFault))
				return
			}
			_, _ = w.Write([]byte(hostsResponse(index)))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	c, err := client.New(client.Config{Address: u.Hostname(), Port: port})
	require.NoError(t, err)
	return c
}

func requestedIndex(body string) int {
	start := strings.Index(body, "<NewIndex>")
	end := strings.Index(body, "</NewIndex>")
	if start < 0 || end < 0 {
		return -1
	}
	index, err := strconv.Atoi(body[start+len("<NewIndex>") : end])
	if err != nil {
		return -1
	}
	return index
}

func TestCount(t *testing.T) {
	h := New(newTestClient(t))
	count, err := h.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAll(t *testing.T) {
	h := New(newTestClient(t))
	all, err := h.All()
	require.NoError(t, err)

	require.Len(t, all, 2, "iteration stops at the index fault")
	assert.Equal(t, "laptop", all[0].Name)
	assert.True(t, all[0].Active)
	assert.Equal(t, "printer", all[1].Name)
	assert.False(t, all[1].Active)
}

func TestActive(t *testing.T) {
	h := New(newTestClient(t))
	active, err := h.Active()
	require.NoError(t, err)

	require.Len(t, active, 1)
	assert.Equal(t, "192.168.178.20", active[0].IP)
}

func TestEntryIndexFault(t *testing.T) {
	h := New(newTestClient(t))
	_, err := h.Entry(99)
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrArrayIndex)
}
