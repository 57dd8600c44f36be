package monitor

import (
	"strings"
	"time"

	"github.com/fritzlink/fritzlink-go/pkg/log"
)

// reporter reassembles newline-terminated events from arbitrarily
// fragmented reads and hands complete lines to the event channel.
type reporter struct {
	events chan<- string
	stop   <-chan struct{}
	block  bool
	buffer string

	logger log.Logger
	connID string
}

func newReporter(events chan<- string, stop <-chan struct{}, block bool, logger log.Logger, connID string) *reporter {
	return &reporter{
		events: events,
		stop:   stop,
		block:  block,
		logger: log.OrNoop(logger),
		connID: connID,
	}
}

// add appends data to the buffer and emits every complete line in
// arrival order. The trailing partial line, if any, stays buffered for
// the next read.
func (r *reporter) add(data string) {
	r.buffer += data
	for {
		i := strings.IndexByte(r.buffer, '\n')
		if i < 0 {
			return
		}
		line := r.buffer[:i]
		r.buffer = r.buffer[i+1:]
		r.emit(line)
	}
}

// emit delivers one event. With a full channel the event is dropped
// unless blocking hand-off is configured; a blocking hand-off is still
// abandoned when the monitor stops.
func (r *reporter) emit(line string) {
	if r.block {
		select {
		case r.events <- line:
		case <-r.stop:
		}
		return
	}
	select {
	case r.events <- line:
	default:
		r.logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: r.connID,
			Direction:    log.DirectionIn,
			Layer:        log.LayerMonitor,
			Category:     log.CategoryError,
			Monitor:      &log.MonitorEvent{Line: line, Dropped: true},
		})
	}
}
