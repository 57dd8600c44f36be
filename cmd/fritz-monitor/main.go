// Command fritz-monitor streams call events to stdout.
//
// It connects to the call-monitor port of a device and prints one line
// per event (ring, call, connect, disconnect). The call-monitor
// service must be enabled once by dialing #96*5* from a connected
// phone.
//
// Usage:
//
//	fritz-monitor [flags]
//
// Flags:
//
//	-address string  Device address (default "169.254.1.1")
//	-port int        Call-monitor port (default 1012)
//	-block           Block instead of dropping events when the queue is full
//	-queue int       Event queue size (default 256)
//	-log string      Append protocol events to a CBOR log file
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fritzlink/fritzlink-go/pkg/log"
	"github.com/fritzlink/fritzlink-go/pkg/monitor"
)

var (
	address   string
	port      int
	block     bool
	queueSize int
	logFile   string
)

func init() {
	flag.StringVar(&address, "address", "169.254.1.1", "Device address")
	flag.IntVar(&port, "port", monitor.DefaultPort, "Call-monitor port")
	flag.BoolVar(&block, "block", false, "Block instead of dropping events when the queue is full")
	flag.IntVar(&queueSize, "queue", monitor.DefaultQueueSize, "Event queue size")
	flag.StringVar(&logFile, "log", "", "Append protocol events to a CBOR log file")
}

func main() {
	flag.Parse()

	var logger log.Logger
	if logFile != "" {
		fileLogger, err := log.NewFileLogger(logFile)
		if err != nil {
			fatal(err)
		}
		defer fileLogger.Close()
		logger = fileLogger
	}

	m := monitor.New(monitor.Config{
		Address:          address,
		Port:             port,
		QueueSize:        queueSize,
		BlockOnFullQueue: block,
		Logger:           logger,
	})
	events, err := m.Start()
	if err != nil {
		fatal(err)
	}
	defer m.Stop()
	fmt.Fprintf(os.Stderr, "listening on %s:%d, ^C to stop\n", address, port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	health := time.NewTicker(30 * time.Second)
	defer health.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				fatal(fmt.Errorf("connection lost, reconnect attempts exhausted"))
			}
			fmt.Println(event)
		case <-health.C:
			if !m.IsAlive() {
				fatal(fmt.Errorf("monitor terminated"))
			}
		case <-sigCh:
			return
		}
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fritz-monitor:", err)
	os.Exit(1)
}
