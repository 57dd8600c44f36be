// Command fritz-shell is an interactive shell for calling actions.
//
// It scans the device once and then reads commands from a readline
// prompt:
//
//	services                      list all services
//	actions <service>             list the actions of a service
//	call <service> <action> [name=value ...]
//	status                        connection state and external IP
//	boxinfo                       device identity
//	reconnect                     request a new external IP
//	quit
//
// Argument values are coerced: "1", "0", "true" and "false" become
// booleans, plain digits become integers, everything else stays text.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/fritzlink/fritzlink-go/pkg/client"
	"github.com/fritzlink/fritzlink-go/pkg/soap"
	"github.com/fritzlink/fritzlink-go/pkg/status"
)

var (
	address  string
	port     int
	user     string
	password string
	useTLS   bool
)

func init() {
	flag.StringVar(&address, "address", "", "Device address")
	flag.IntVar(&port, "port", 0, "Port")
	flag.StringVar(&user, "user", "", "Account name")
	flag.StringVar(&password, "password", "", "Account password")
	flag.BoolVar(&useTLS, "tls", false, "Connect via TLS")
}

func main() {
	flag.Parse()

	c, err := client.New(client.Config{
		Address:  address,
		Port:     port,
		User:     user,
		Password: password,
		UseTLS:   useTLS,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "fritz-shell:", err)
		os.Exit(1)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "fritz> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "fritz-shell:", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println(c)
	shell := &shell{client: c, status: status.New(c)}
	shell.run(rl)
}

type shell struct {
	client *client.Client
	status *status.Status
}

func (s *shell) run(rl *readline.Instance) {
	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "quit", "exit":
			return
		case "help":
			s.printHelp()
		case "services":
			s.printServices()
		case "actions":
			if len(fields) != 2 {
				fmt.Println("usage: actions <service>")
				continue
			}
			s.printActions(fields[1])
		case "call":
			if len(fields) < 3 {
				fmt.Println("usage: call <service> <action> [name=value ...]")
				continue
			}
			s.call(fields[1], fields[2], fields[3:])
		case "status":
			s.printStatus()
		case "boxinfo":
			s.printBoxInfo()
		case "reconnect":
			if err := s.client.Reconnect(); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("reconnect requested")
		default:
			fmt.Printf("unknown command %q, try help\n", fields[0])
		}
	}
}

func (s *shell) printHelp() {
	fmt.Print(`commands:
  services                              list all services
  actions <service>                     list the actions of a service
  call <service> <action> [name=value]  invoke an action
  status                                connection state and external IP
  boxinfo                               device identity
  reconnect                             request a new external IP
  quit
`)
}

func (s *shell) printServices() {
	names := make([]string, 0, len(s.client.Services()))
	for name := range s.client.Services() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(" ", name)
	}
}

func (s *shell) printActions(serviceName string) {
	service, ok := s.client.Services()[client.NormalizeName(serviceName)]
	if !ok {
		fmt.Printf("unknown service %q\n", serviceName)
		return
	}
	for _, action := range service.Actions() {
		fmt.Println(" ", action.Name)
	}
}

func (s *shell) call(serviceName, actionName string, rawArgs []string) {
	args := make([]soap.Arg, 0, len(rawArgs))
	for _, raw := range rawArgs {
		name, value, found := strings.Cut(raw, "=")
		if !found {
			fmt.Printf("argument %q is not name=value\n", raw)
			return
		}
		args = append(args, soap.Arg{Name: name, Value: coerce(value)})
	}

	result, err := s.client.CallAction(serviceName, actionName, args...)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if len(result) == 0 {
		fmt.Println("ok")
		return
	}
	names := make([]string, 0, len(result))
	for name := range result {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s = %v\n", name, result[name])
	}
}

func (s *shell) printStatus() {
	connected, err := s.status.IsConnected()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("  connected:", connected)
	if ip, err := s.status.ExternalIP(); err == nil && ip != "" {
		fmt.Println("  external ip:", ip)
	}
	if uptime, err := s.status.ConnectionUptime(); err == nil {
		fmt.Println("  uptime:", uptime, "seconds")
	}
}

func (s *shell) printBoxInfo() {
	info, err := s.client.BoxInfo()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	names := make([]string, 0, len(info))
	for name := range info {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if info[name] != "" {
			fmt.Printf("  %s = %s\n", name, info[name])
		}
	}
}

// coerce interprets shell input the way the protocol expects it.
func coerce(value string) any {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return value
}
