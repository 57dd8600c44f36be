package aha

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fritzlink/fritzlink-go/pkg/fault"
	"github.com/fritzlink/fritzlink-go/pkg/log"
)

const (
	loginPath   = "/login_sid.lua?version=2"
	commandPath = "/webservices/homeautoswitch.lua"

	// invalidSID is what the login endpoint returns when the
	// credentials were rejected or a block time is active.
	invalidSID = "0000000000000000"
)

// ErrInterface indicates a command the interface rejected, usually a
// malformed payload or an unknown command or device identifier.
var ErrInterface = errors.New("home-automation interface error")

// Response is the raw command result.
type Response struct {
	ContentType string
	Body        string
}

// Session executes home-automation commands against one device. Safe
// for concurrent use.
type Session struct {
	// Endpoint is scheme, host and port of the web interface, e.g.
	// "http://192.168.178.1".
	Endpoint string

	// User and Password authenticate the login.
	User     string
	Password string

	// Client performs the HTTP exchanges. Nil selects a default
	// client with a 10 second timeout.
	Client *http.Client

	// Logger receives protocol events. Nil disables capture.
	Logger log.Logger

	mu  sync.Mutex
	sid string
}

// sessionInfo is the login endpoint's document.
type sessionInfo struct {
	SID       string `xml:"SID"`
	Challenge string `xml:"Challenge"`
	BlockTime int    `xml:"BlockTime"`
}

// Execute sends a command, with an optional device identifier (ain)
// and extra parameters, and returns the raw response. An expired
// session id is renewed once; a rejected login or a 403 response
// surfaces as an authorization error.
func (s *Session) Execute(command, ain string, params map[string]string) (*Response, error) {
	query := url.Values{}
	query.Set("switchcmd", command)
	if ain != "" {
		query.Set("ain", ain)
	}
	for key, value := range params {
		query.Set(key, value)
	}

	var lastStatus int
	for attempt := 0; attempt < 2; attempt++ {
		sid, err := s.sessionID(attempt > 0)
		if err != nil {
			return nil, err
		}
		query.Set("sid", sid)

		resp, err := s.client().Get(s.Endpoint + commandPath + "?" + query.Encode())
		if err != nil {
			return nil, &fault.ConnectionError{Message: "executing " + command, Err: err}
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, &fault.ConnectionError{Message: "reading response", Err: err}
		}
		lastStatus = resp.StatusCode

		if resp.StatusCode == http.StatusOK {
			s.logCommand(command, resp.StatusCode, len(body))
			return &Response{
				ContentType: resp.Header.Get("Content-Type"),
				Body:        string(body),
			}, nil
		}
	}

	if lastStatus == http.StatusForbidden {
		return nil, &fault.AuthorizationError{
			Message: fmt.Sprintf("command %q rejected, check credentials", command),
		}
	}
	return nil, fmt.Errorf("%w: command %q failed with status %d",
		ErrInterface, command, lastStatus)
}

// sessionID returns the current session id, logging in on first use or
// when renewal is forced.
func (s *Session) sessionID(renew bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sid != "" && !renew {
		return s.sid, nil
	}
	sid, err := s.login()
	if err != nil {
		return "", err
	}
	s.sid = sid
	return sid, nil
}

// login fetches the challenge, answers it and returns the new session
// id. Callers must hold the mutex.
func (s *Session) login() (string, error) {
	info, err := s.fetchSessionInfo(func() (*http.Response, error) {
		return s.client().Get(s.Endpoint + loginPath)
	})
	if err != nil {
		return "", err
	}

	answer, err := challengeResponse(info.Challenge, s.Password)
	if err != nil {
		return "", &fault.ConnectionError{Message: "answering login challenge", Err: err}
	}

	form := url.Values{}
	form.Set("username", s.User)
	form.Set("response", answer)
	info, err = s.fetchSessionInfo(func() (*http.Response, error) {
		return s.client().Post(
			s.Endpoint+loginPath,
			"application/x-www-form-urlencoded",
			strings.NewReader(form.Encode()),
		)
	})
	if err != nil {
		return "", err
	}
	if info.SID == "" || info.SID == invalidSID {
		message := "login rejected, check credentials"
		if info.BlockTime > 0 {
			message = fmt.Sprintf("%s (blocked for %d seconds)", message, info.BlockTime)
		}
		return "", &fault.AuthorizationError{Message: message}
	}
	return info.SID, nil
}

func (s *Session) fetchSessionInfo(do func() (*http.Response, error)) (*sessionInfo, error) {
	resp, err := do()
	if err != nil {
		return nil, &fault.ConnectionError{Message: "requesting login info", Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &fault.ConnectionError{Message: "reading login info", Err: err}
	}

	info := &sessionInfo{}
	if err := xml.Unmarshal(body, info); err != nil {
		return nil, &fault.ConnectionError{Message: "malformed login info", Err: err}
	}
	return info, nil
}

func (s *Session) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (s *Session) logCommand(command string, status, size int) {
	log.OrNoop(s.Logger).Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionIn,
		Layer:     log.LayerHTTP,
		Category:  log.CategoryMessage,
		HTTP: &log.HTTPEvent{
			URL:      s.Endpoint + commandPath,
			Method:   http.MethodGet,
			Status:   status,
			BodySize: size,
		},
		Action: &log.ActionEvent{Action: command},
	})
}
