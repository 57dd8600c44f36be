// Command fritz-inspect prints the API a device exposes.
//
// It scans the device descriptors and lists every service, and for a
// selected service its actions with their typed arguments.
//
// Usage:
//
//	fritz-inspect [flags]
//
// Flags:
//
//	-address string   Device address (default "169.254.1.1")
//	-port int         Port (default 49000, 49443 with -tls)
//	-user string      Account name (or FRITZLINK_USERNAME)
//	-password string  Account password (or FRITZLINK_PASSWORD)
//	-tls              Connect via TLS
//	-config string    YAML configuration file
//	-cache            Use the local descriptor snapshot
//	-cache-dir string Snapshot directory
//	-service string   Show actions and arguments of one service
//	-reconnect        Ask the device for a new external IP
//	-log string       Append protocol events to a CBOR log file
//	-v                Print protocol events to stderr
//
// Examples:
//
//	# List all services
//	fritz-inspect -address 192.168.178.1
//
//	# Show the actions of a service
//	fritz-inspect -address 192.168.178.1 -service WLANConfiguration
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/fritzlink/fritzlink-go/pkg/client"
	"github.com/fritzlink/fritzlink-go/pkg/descriptor"
	"github.com/fritzlink/fritzlink-go/pkg/log"
)

var (
	flags       = loadableConfig{}
	configFile  string
	serviceName string
	reconnect   bool
	logFile     string
	verbose     bool
)

func init() {
	flag.StringVar(&flags.Address, "address", "", "Device address")
	flag.IntVar(&flags.Port, "port", 0, "Port")
	flag.StringVar(&flags.User, "user", "", "Account name")
	flag.StringVar(&flags.Password, "password", "", "Account password")
	flag.BoolVar(&flags.UseTLS, "tls", false, "Connect via TLS")
	flag.BoolVar(&flags.UseCache, "cache", false, "Use the local descriptor snapshot")
	flag.StringVar(&flags.CacheDirectory, "cache-dir", "", "Snapshot directory")
	flag.StringVar(&configFile, "config", "", "YAML configuration file")
	flag.StringVar(&serviceName, "service", "", "Show actions and arguments of one service")
	flag.BoolVar(&reconnect, "reconnect", false, "Ask the device for a new external IP")
	flag.StringVar(&logFile, "log", "", "Append protocol events to a CBOR log file")
	flag.BoolVar(&verbose, "v", false, "Print protocol events to stderr")
}

func main() {
	flag.Parse()

	config, err := buildConfig(flags, configFile)
	if err != nil {
		fatal(err)
	}
	var loggers []log.Logger
	if verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, log.NewSlogAdapter(slog.New(handler)))
	}
	if logFile != "" {
		fileLogger, err := log.NewFileLogger(logFile)
		if err != nil {
			fatal(err)
		}
		defer fileLogger.Close()
		loggers = append(loggers, fileLogger)
	}
	switch len(loggers) {
	case 0:
	case 1:
		config.Logger = loggers[0]
	default:
		config.Logger = log.NewMultiLogger(loggers...)
	}

	c, err := client.New(config)
	if err != nil {
		fatal(err)
	}
	fmt.Println(c)
	fmt.Println()

	switch {
	case reconnect:
		if err := c.Reconnect(); err != nil {
			fatal(err)
		}
		fmt.Println("reconnect requested")
	case serviceName != "":
		printService(c, serviceName)
	default:
		printServices(c)
	}
}

func printServices(c *client.Client) {
	services := c.Services()
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("%d services:\n", len(names))
	for _, name := range names {
		fmt.Printf("  %-40s %d actions\n", name, len(services[name].Actions()))
	}
}

func printService(c *client.Client, name string) {
	normalized := client.NormalizeName(name)
	service, ok := c.Services()[normalized]
	if !ok {
		fatal(fmt.Errorf("unknown service %q", normalized))
	}

	fmt.Printf("%s (%s)\n", normalized, service.ServiceType)
	for _, action := range service.Actions() {
		fmt.Printf("  %s\n", action.Name)
		printArguments(service, "in ", action.InArguments())
		printArguments(service, "out", action.OutArguments())
	}
}

func printArguments(service *descriptor.Service, direction string, arguments []*descriptor.Argument) {
	for _, argument := range arguments {
		fmt.Printf("    %s  %-40s %s\n",
			direction, argument.Name, service.ArgumentType(argument))
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fritz-inspect:", err)
	os.Exit(1)
}
