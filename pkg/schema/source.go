package schema

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fritzlink/fritzlink-go/pkg/fault"
	"github.com/fritzlink/fritzlink-go/pkg/log"
)

// ErrResourceUnavailable indicates the device does not provide the
// requested descriptor document. Optional secondary descriptors are
// skipped on this error; for the primary descriptor it is fatal.
var ErrResourceUnavailable = errors.New("descriptor resource unavailable")

// Source provides descriptor documents addressed by path.
type Source interface {
	// Fetch returns the raw document at the given path, e.g.
	// "/tr64desc.xml". It returns ErrResourceUnavailable when the device
	// does not provide the document.
	Fetch(path string) ([]byte, error)
}

// HTTPSource fetches descriptor documents from the device over HTTP.
type HTTPSource struct {
	// BaseURL is scheme, host and port, e.g. "http://192.168.178.1:49000".
	BaseURL string

	// Client is the HTTP client to use. Must not be nil.
	Client *http.Client

	// Logger receives protocol events. Nil disables capture.
	Logger log.Logger

	// ConnectionID tags log events; usually set by the owning client.
	ConnectionID string
}

// Fetch performs a GET request for the document. A text/html response
// means the device does not provide this resource (depends on the
// device model) and maps to ErrResourceUnavailable; transport failures
// map to a connection error.
func (s *HTTPSource) Fetch(path string) ([]byte, error) {
	url := s.BaseURL + path

	resp, err := s.Client.Get(url)
	if err != nil {
		s.logError(url, err)
		return nil, &fault.ConnectionError{Message: "unable to get a connection", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logError(url, err)
		return nil, &fault.ConnectionError{Message: "reading descriptor response", Err: err}
	}

	s.logExchange(url, resp.StatusCode, len(body))

	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "text/html") || resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrResourceUnavailable, url)
	}
	return body, nil
}

func (s *HTTPSource) logExchange(url string, status, size int) {
	if s.Logger == nil {
		return
	}
	s.Logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: s.ConnectionID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerHTTP,
		Category:     log.CategoryMessage,
		HTTP: &log.HTTPEvent{
			URL:      url,
			Method:   http.MethodGet,
			Status:   status,
			BodySize: size,
		},
	})
}

func (s *HTTPSource) logError(url string, err error) {
	if s.Logger == nil {
		return
	}
	s.Logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: s.ConnectionID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerHTTP,
		Category:     log.CategoryError,
		HTTP:         &log.HTTPEvent{URL: url, Method: http.MethodGet},
		Error:        &log.ErrorEvent{Layer: log.LayerHTTP, Message: err.Error()},
	})
}

// FileSource reads descriptor documents from a local directory. Used for
// tests and offline inspection of saved descriptor sets.
type FileSource struct {
	Dir string
}

// Fetch reads the file whose name matches the final element of path.
func (s *FileSource) Fetch(path string) ([]byte, error) {
	name := filepath.Join(s.Dir, filepath.Base(path))
	data, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrResourceUnavailable, name)
		}
		return nil, err
	}
	return data, nil
}
