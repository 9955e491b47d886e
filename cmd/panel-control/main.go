package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/epdlink/panel-command/internal/log"
	"github.com/epdlink/panel-command/pkg/connector/ble"
	"github.com/epdlink/panel-command/pkg/connector/ble/goble"
	"github.com/epdlink/panel-command/pkg/connector/ble/tinygo"
	"github.com/epdlink/panel-command/pkg/panel"
	"github.com/epdlink/panel-command/pkg/protocol"
)

func writeErr(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintf(os.Stderr, "\n")
}

const usage = `
 * Commands that talk to a panel connect to the device given by -device, or to
   the first panel discovered by a scan when -device is omitted.
 * The scan command only needs a working Bluetooth adapter.`

func Usage() {
	fmt.Printf("Usage: %s [OPTION...] COMMAND [ARG...]\n", os.Args[0])
	fmt.Printf("\nRun %s help COMMAND for more information. Valid COMMANDs are listed below.", os.Args[0])
	fmt.Println("")
	fmt.Println(usage)
	fmt.Println("")

	fmt.Printf("Available OPTIONs:\n")
	flag.PrintDefaults()
	fmt.Println("")
	fmt.Printf("Available COMMANDs:\n")
	maxLength := 0
	var labels []string
	for command := range commands {
		labels = append(labels, command)
		if len(command) > maxLength {
			maxLength = len(command)
		}
	}
	sort.Strings(labels)
	for _, command := range labels {
		info := commands[command]
		fmt.Printf("  %s%s %s\n", command, strings.Repeat(" ", maxLength-len(command)), info.help)
	}
}

func newAdapter(backend, adapterID string) (ble.Adapter, error) {
	switch backend {
	case "goble":
		return goble.NewAdapter(adapterID)
	case "tinygo":
		return tinygo.NewAdapter(adapterID)
	default:
		return nil, fmt.Errorf("unrecognized backend %q (expected goble or tinygo)", backend)
	}
}

// findPanel scans until a panel advertises, optionally requiring an exact local name.
func findPanel(ctx context.Context, manager *ble.Manager, name string) (ble.DeviceHandle, error) {
	sightings := manager.StartScan(ctx, protocol.ServiceUUID)
	defer manager.StopScan()
	for handle := range sightings {
		if _, ok := panel.ParseAdvertisedName(handle.Name); !ok {
			continue
		}
		if name == "" || handle.Name == name {
			return handle, nil
		}
	}
	if err := manager.ScanErr(); err != nil {
		return ble.DeviceHandle{}, err
	}
	return ble.DeviceHandle{}, errors.New("no panel discovered before the scan ended")
}

func runCommand(manager *ble.Manager, p *panel.Panel, args []string, timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := execute(ctx, manager, p, args); err != nil {
		if errors.Is(err, ErrRequiresDevice) {
			writeErr("This command needs a panel: pass -device or let a scan find one")
		} else {
			writeErr("Failed to execute command: %s", err)
		}
		return 1
	}
	return 0
}

func runInteractiveShell(manager *ble.Manager, p *panel.Panel, timeout time.Duration) int {
	scanner := bufio.NewScanner(os.Stdin)
	for fmt.Printf("> "); scanner.Scan(); fmt.Printf("> ") {
		args, err := shlex.Split(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			return 0
		}
		if err != nil {
			writeErr("Invalid command: %s", err)
			continue
		}
		runCommand(manager, p, args, timeout)
	}
	if err := scanner.Err(); err != nil {
		writeErr("Error reading command: %s", err)
		return 1
	}
	return 0
}

func main() {
	status := 1
	defer func() {
		os.Exit(status)
	}()

	var (
		debug          bool
		backend        string
		adapterID      string
		deviceID       string
		deviceName     string
		chunkSize      int
		commandTimeout time.Duration
		connTimeout    time.Duration
	)
	flag.Usage = Usage
	flag.BoolVar(&debug, "debug", false, "Enable verbose debugging messages")
	flag.StringVar(&backend, "backend", "goble", "Bluetooth backend to use (goble or tinygo)")
	flag.StringVar(&adapterID, "adapter", "", "Bluetooth adapter id (e.g. hci0); empty selects the default")
	flag.StringVar(&deviceID, "device", "", "Connect to the panel with this device id, skipping the scan")
	flag.StringVar(&deviceName, "name", "", "Connect to the panel advertising this exact local name")
	flag.IntVar(&chunkSize, "chunk-size", protocol.DefaultChunkSize, "Transfer packet payload size in bytes")
	flag.DurationVar(&commandTimeout, "command-timeout", 30*time.Second, "Set timeout for commands sent to the panel.")
	flag.DurationVar(&connTimeout, "connect-timeout", 20*time.Second, "Set timeout for discovering and connecting to the panel.")
	flag.Parse()

	if !debug {
		if debugEnv, ok := os.LookupEnv("EPD_VERBOSE"); ok {
			debug = debugEnv != "false" && debugEnv != "0"
		}
	}
	if debug {
		log.SetLevel(log.LevelDebug)
	}

	args := flag.Args()
	if len(args) > 0 && args[0] == "help" {
		if len(args) == 1 {
			Usage()
			status = 0
			return
		}
		info, ok := commands[args[1]]
		if !ok {
			writeErr("Unrecognized command: %s", args[1])
			return
		}
		info.Usage(args[1])
		status = 0
		return
	}

	adapter, err := newAdapter(backend, adapterID)
	if err != nil {
		writeErr("Error: %s", err)
		return
	}
	manager, err := ble.NewManager(adapter, ble.Config{})
	if err != nil {
		writeErr("Error: %s", err)
		return
	}
	defer manager.Close()

	var activePanel *panel.Panel
	needsDevice := len(args) == 0 || (commands[args[0]] != nil && commands[args[0]].requiresConnection)
	if needsDevice {
		ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
		handle := ble.DeviceHandle{ID: deviceID}
		if deviceID == "" {
			handle, err = findPanel(ctx, manager, deviceName)
			if err != nil {
				cancel()
				writeErr("Error: %s", err)
				return
			}
		}
		activePanel = panel.New(manager, handle, panel.Config{ChunkSize: chunkSize})
		err = activePanel.Connect(ctx)
		cancel()
		if err != nil {
			writeErr("Error: %s", err)
			return
		}
		defer activePanel.Disconnect()
		fmt.Printf("Connected to %s (%s)\n", activePanel.ID(), activePanel.Model())
	}

	if len(args) > 0 {
		status = runCommand(manager, activePanel, args, commandTimeout)
	} else {
		status = runInteractiveShell(manager, activePanel, commandTimeout)
	}
}
