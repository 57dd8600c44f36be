package monitor

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/fritzlink/fritzlink-go/pkg/fault"
	"github.com/fritzlink/fritzlink-go/pkg/log"
)

// Wire constants for the call-monitor service.
const (
	// DefaultPort is the fixed call-monitor port.
	DefaultPort = 1012

	// DefaultQueueSize is the capacity of the event channel.
	DefaultQueueSize = 256

	// DefaultTimeout bounds the initial connect and each blocking
	// read. The read timeout also bounds how long Stop may take to be
	// honored.
	DefaultTimeout = 10 * time.Second

	// DefaultReconnectTries is the number of consecutive reconnection
	// attempts before the monitor gives up.
	DefaultReconnectTries = 10

	// chunkSize is the read buffer size.
	chunkSize = 4096
)

// ErrAlreadyRunning is returned by Start while a previous run is still
// active. Call Stop first.
var ErrAlreadyRunning = errors.New("monitor already running")

// Dialer opens the monitor connection. Replaceable for tests.
type Dialer func(address string, timeout time.Duration) (net.Conn, error)

func defaultDialer(address string, timeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	return d.Dial("tcp", address)
}

// Config carries the parameters for a Monitor. The zero value targets
// the default device address with the package defaults.
type Config struct {
	// Address is the device host without port.
	Address string

	// Port overrides DefaultPort.
	Port int

	// Timeout bounds connect and each read.
	Timeout time.Duration

	// QueueSize is the event channel capacity.
	QueueSize int

	// BlockOnFullQueue stalls the listener until the consumer frees a
	// slot instead of dropping the event. Dropping is the default; it
	// keeps the listener responsive.
	BlockOnFullQueue bool

	// ReconnectDelay caps the growing delay between reconnection
	// attempts. Zero selects MaxReconnectDelay.
	ReconnectDelay time.Duration

	// ReconnectTries is the number of reconnection attempts before the
	// listener exits. Zero selects DefaultReconnectTries.
	ReconnectTries int

	// Dialer overrides the TCP dialer.
	Dialer Dialer

	// Logger receives monitor events. Nil disables capture.
	Logger log.Logger
}

func (c *Config) applyDefaults() {
	if c.Address == "" {
		c.Address = "169.254.1.1"
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.QueueSize == 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.ReconnectTries == 0 {
		c.ReconnectTries = DefaultReconnectTries
	}
	if c.Dialer == nil {
		c.Dialer = defaultDialer
	}
}

// Monitor owns one call-monitor connection and its listener goroutine.
// All methods are safe for concurrent use.
type Monitor struct {
	mu     sync.Mutex
	config Config
	logger log.Logger

	// per-run state; nil while not running
	stopCh chan struct{}
	done   chan struct{}
}

// New creates a Monitor. Nothing is connected until Start.
func New(config Config) *Monitor {
	config.applyDefaults()
	return &Monitor{
		config: config,
		logger: log.OrNoop(config.Logger),
	}
}

// Start connects to the device and spawns the listener goroutine. It
// returns the bounded event channel immediately; the channel is closed
// when the listener exits. Starting an already running monitor fails
// with ErrAlreadyRunning; a connect failure is reported as a
// connection error and leaves the monitor stopped.
func (m *Monitor) Start() (<-chan string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done != nil {
		select {
		case <-m.done:
			// previous run exited on its own; allow restart
			m.done = nil
			m.stopCh = nil
		default:
			return nil, ErrAlreadyRunning
		}
	}

	conn, err := m.config.Dialer(m.address(), m.config.Timeout)
	if err != nil {
		return nil, &fault.ConnectionError{
			Message: "unable to connect to " + m.address(), Err: err,
		}
	}

	events := make(chan string, m.config.QueueSize)
	m.stopCh = make(chan struct{})
	m.done = make(chan struct{})
	go m.listen(conn, events, m.stopCh, m.done)
	return events, nil
}

// Stop signals the listener to exit and waits until it has fully
// terminated. The monitor may be started again afterwards. Stopping a
// stopped monitor is a no-op. Worst-case latency is one read timeout.
func (m *Monitor) Stop() {
	m.mu.Lock()
	stopCh, done := m.stopCh, m.done
	m.stopCh, m.done = nil, nil
	m.mu.Unlock()

	if done == nil {
		return
	}
	select {
	case <-stopCh:
	default:
		close(stopCh)
	}
	<-done
}

// IsAlive reports whether the listener goroutine is running. Intended
// for periodic caller-driven health checks, since an idle wire carries
// no events to observe.
func (m *Monitor) IsAlive() bool {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (m *Monitor) address() string {
	return net.JoinHostPort(m.config.Address, strconv.Itoa(m.config.Port))
}

// listen is the listener goroutine. It exits on Stop or on reconnect
// exhaustion, closing the event channel either way.
func (m *Monitor) listen(conn net.Conn, events chan string, stopCh, done chan struct{}) {
	defer close(done)
	defer close(events)
	defer func() {
		if conn != nil {
			_ = conn.Close()
		}
	}()

	rep := newReporter(events, stopCh, m.config.BlockOnFullQueue, m.logger, m.address())
	buf := make([]byte, chunkSize)

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(m.config.Timeout))
		n, err := conn.Read(buf)
		if n > 0 {
			rep.add(string(buf[:n]))
			continue
		}
		if err == nil {
			continue
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			// an idle wire is normal; try again
			continue
		}

		// peer closed or broken connection
		_ = conn.Close()
		conn = m.reconnect(stopCh)
		if conn == nil {
			return
		}
	}
}

// reconnect retries the connection with growing delays. Returns nil
// when all retries are used up or the monitor is stopping.
func (m *Monitor) reconnect(stopCh <-chan struct{}) net.Conn {
	backoff := NewBackoff(m.config.ReconnectDelay)
	for attempt := 1; attempt <= m.config.ReconnectTries; attempt++ {
		select {
		case <-time.After(backoff.Next()):
		case <-stopCh:
			return nil
		}

		conn, err := m.config.Dialer(m.address(), m.config.Timeout)
		if err == nil {
			m.logger.Log(log.Event{
				Timestamp:    time.Now(),
				ConnectionID: m.address(),
				Layer:        log.LayerMonitor,
				Category:     log.CategoryState,
				Monitor:      &log.MonitorEvent{Attempt: attempt},
			})
			return conn
		}
		m.logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: m.address(),
			Layer:        log.LayerMonitor,
			Category:     log.CategoryError,
			Monitor:      &log.MonitorEvent{Attempt: attempt},
			Error:        &log.ErrorEvent{Layer: log.LayerMonitor, Message: err.Error()},
		})
	}
	return nil
}
