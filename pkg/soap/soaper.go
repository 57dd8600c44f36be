package soap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fritzlink/fritzlink-go/pkg/descriptor"
	"github.com/fritzlink/fritzlink-go/pkg/fault"
	"github.com/fritzlink/fritzlink-go/pkg/log"
)

// ErrUnknownAction indicates the invoked action is not present in the
// service's action table, so the response cannot be interpreted.
// The connection facade checks availability before invoking; this error
// only surfaces when a Soaper is driven directly.
var ErrUnknownAction = errors.New("action not in service schema")

// Wire templates. Kept as plain format strings: the envelope is trivial
// and a marshalling layer would only obscure the argument ordering
// requirement.
const (
	envelopeTemplate = `<?xml version="1.0" encoding="utf-8"?>` +
		`<s:Envelope s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/" ` +
		`xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">%s</s:Envelope>`
	bodyTemplate     = `<s:Body><u:%[1]s xmlns:u="%[2]s">%[3]s</u:%[1]s></s:Body>`
	argumentTemplate = `<%[1]s>%[2]s</%[1]s>`
)

// Arg is one named input argument. Arguments are sent in the order the
// caller supplies them.
type Arg struct {
	Name  string
	Value any
}

// Result maps out-argument names to their coerced values. Out-arguments
// absent from the response are omitted; some actions return partial
// result sets depending on device state.
type Result map[string]any

// Soaper performs SOAP exchanges with one device. It is stateless apart
// from its configuration and safe for concurrent use if the underlying
// HTTP client is.
type Soaper struct {
	// Endpoint is scheme, host and port, e.g. "http://192.168.178.1:49000".
	Endpoint string

	// Client performs the HTTP exchanges. When credentials are
	// configured, its transport handles the digest challenge; the Soaper
	// itself never sees the password.
	Client *http.Client

	// Logger receives protocol events. Nil disables capture.
	Logger log.Logger

	// ConnectionID tags log events.
	ConnectionID string
}

// Execute invokes the action on the given service and returns the parsed
// out-arguments. Failure responses are translated into the typed error
// taxonomy of the fault package.
func (s *Soaper) Execute(service *descriptor.Service, actionName string, args []Arg) (Result, error) {
	logger := log.OrNoop(s.Logger)
	start := time.Now()

	envelope := s.buildEnvelope(service, actionName, args)
	url := s.Endpoint + service.ControlURL

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(envelope))
	if err != nil {
		return nil, &fault.ConnectionError{Message: "building request", Err: err}
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPACTION", fmt.Sprintf("%s#%s", service.ServiceType, actionName))

	resp, err := s.Client.Do(req)
	if err != nil {
		logger.Log(s.errorEvent(service, actionName, err))
		return nil, &fault.ConnectionError{Message: "unable to get a connection", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &fault.ConnectionError{Message: "reading response", Err: err}
	}

	logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: s.ConnectionID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerAction,
		Category:     log.CategoryMessage,
		Action: &log.ActionEvent{
			Service:   service.Name(),
			Action:    actionName,
			Arguments: len(args),
			Elapsed:   time.Since(start),
		},
		HTTP: &log.HTTPEvent{
			URL:      url,
			Method:   http.MethodPost,
			Status:   resp.StatusCode,
			BodySize: len(body),
		},
	})

	if resp.StatusCode != http.StatusOK {
		return nil, fault.ParseFault(resp.StatusCode, body)
	}
	return s.parseResponse(service, actionName, body)
}

// buildEnvelope assembles the request envelope with the input arguments
// serialized in caller order.
func (s *Soaper) buildEnvelope(service *descriptor.Service, actionName string, args []Arg) string {
	var arguments strings.Builder
	for _, arg := range args {
		arguments.WriteString(fmt.Sprintf(argumentTemplate, arg.Name, EncodeValue(arg.Value)))
	}
	body := fmt.Sprintf(bodyTemplate, actionName, service.ServiceType, arguments.String())
	return fmt.Sprintf(envelopeTemplate, body)
}

// parseResponse extracts every declared argument of the action from the
// response body. Elements absent from the response are silently omitted;
// values are coerced through the argument's state-variable data type.
func (s *Soaper) parseResponse(service *descriptor.Service, actionName string, body []byte) (Result, error) {
	action, ok := service.Action(actionName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, actionName)
	}

	values, err := elementValues(body)
	if err != nil {
		return nil, &fault.ConnectionError{Message: "malformed response body", Err: err}
	}

	result := make(Result)
	for _, arg := range action.Arguments {
		value, ok := values[arg.Name]
		if !ok {
			continue
		}
		result[arg.Name] = ConvertValue(service.ArgumentType(arg), value)
	}
	return result, nil
}

func (s *Soaper) errorEvent(service *descriptor.Service, actionName string, err error) log.Event {
	return log.Event{
		Timestamp:    time.Now(),
		ConnectionID: s.ConnectionID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerAction,
		Category:     log.CategoryError,
		Action:       &log.ActionEvent{Service: service.Name(), Action: actionName},
		Error:        &log.ErrorEvent{Layer: log.LayerAction, Message: err.Error()},
	}
}

// elementValues collects the text content of every leaf element in the
// document, keyed by local name. The first occurrence wins. Empty tags
// yield the empty string.
func elementValues(body []byte) (map[string]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	values := make(map[string]string)

	type frame struct {
		name string
		text strings.Builder
		leaf bool
	}
	var stack []*frame

	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return values, nil
			}
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if len(stack) > 0 {
				stack[len(stack)-1].leaf = false
			}
			stack = append(stack, &frame{name: t.Name.Local, leaf: true})
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.leaf {
				if _, exists := values[top.name]; !exists {
					values[top.name] = strings.TrimSpace(top.text.String())
				}
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
}
