package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/epdlink/panel-command/pkg/connector/ble"
	"github.com/epdlink/panel-command/pkg/panel"
	"github.com/epdlink/panel-command/pkg/protocol"
)

var (
	ErrCommandLineArgs = errors.New("invalid command line arguments")
	ErrUnknownCommand  = errors.New("unrecognized command")
	ErrRequiresDevice  = errors.New("command requires a connected panel")
)

type Argument struct {
	name string
	help string
}

type Handler func(ctx context.Context, manager *ble.Manager, p *panel.Panel, args map[string]string) error

type Command struct {
	help               string
	requiresConnection bool
	args               []Argument
	optional           []Argument
	handler            Handler
}

// GetScanSeconds parses the scan command's optional duration argument.
func GetScanSeconds(str string) (time.Duration, error) {
	seconds, err := strconv.Atoi(str)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("%w: SECONDS must be a positive integer", ErrCommandLineArgs)
	}
	return time.Duration(seconds) * time.Second, nil
}

func checkReadiness(commandName string, haveDevice bool) (*Command, error) {
	info, ok := commands[commandName]
	if !ok {
		return nil, ErrUnknownCommand
	}
	if info.requiresConnection && !haveDevice {
		return nil, ErrRequiresDevice
	}
	return info, nil
}

func execute(ctx context.Context, manager *ble.Manager, p *panel.Panel, args []string) error {
	if len(args) == 0 {
		return errors.New("missing COMMAND")
	}

	info, err := checkReadiness(args[0], p != nil)
	if err != nil {
		return err
	}

	if len(args)-1 < len(info.args) || len(args)-1 > len(info.args)+len(info.optional) {
		writeErr("Invalid number of command line arguments: %d (%d required, %d optional).", len(args), len(info.args), len(info.optional))
		err = ErrCommandLineArgs
	} else {
		keywords := make(map[string]string)
		for i, argInfo := range info.args {
			keywords[argInfo.name] = args[i+1]
		}
		index := len(info.args) + 1
		for _, argInfo := range info.optional {
			if index >= len(args) {
				break
			}
			keywords[argInfo.name] = args[index]
			index++
		}
		err = info.handler(ctx, manager, p, keywords)
	}

	// Print command-specific help
	if errors.Is(err, ErrCommandLineArgs) {
		info.Usage(args[0])
	}
	return err
}

func (c *Command) Usage(name string) {
	fmt.Printf("Usage: %s", name)
	maxLength := 0
	for _, arg := range c.args {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" [")
	}
	for _, arg := range c.optional {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" ]")
	}
	fmt.Printf("\n%s\n", c.help)
	maxLength++
	for _, arg := range c.args {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
	for _, arg := range c.optional {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

var commands = map[string]*Command{
	"scan": &Command{
		help: "List panels advertising nearby",
		optional: []Argument{
			Argument{name: "SECONDS", help: "How long to scan (default 10)"},
		},
		handler: func(ctx context.Context, manager *ble.Manager, p *panel.Panel, args map[string]string) error {
			duration := 10 * time.Second
			if str, ok := args["SECONDS"]; ok {
				var err error
				if duration, err = GetScanSeconds(str); err != nil {
					return err
				}
			}
			scanCtx, cancel := context.WithTimeout(ctx, duration)
			defer cancel()
			sightings := manager.StartScan(scanCtx, protocol.ServiceUUID)
			defer manager.StopScan()
			seen := make(map[string]bool)
			for handle := range sightings {
				if seen[handle.ID] {
					continue
				}
				seen[handle.ID] = true
				if model, ok := panel.ParseAdvertisedName(handle.Name); ok {
					fmt.Printf("%-40s %-20s %4d dBm  %s\n", handle.ID, handle.Name, handle.RSSI, model)
				} else {
					fmt.Printf("%-40s %-20s %4d dBm\n", handle.ID, handle.Name, handle.RSSI)
				}
			}
			if err := manager.ScanErr(); err != nil && !errors.Is(err, protocol.ErrScanStopped) {
				return err
			}
			return nil
		},
	},
	"info": &Command{
		help:               "Show the panel's model, firmware and battery level",
		requiresConnection: true,
		handler: func(ctx context.Context, manager *ble.Manager, p *panel.Panel, args map[string]string) error {
			fmt.Printf("Model:    %s\n", p.Model())
			version, err := p.FirmwareVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Firmware: %s\n", version)

			// The panel pushes a basic-info record shortly after subscription; don't hold the
			// command hostage if it never arrives.
			battery := make(chan int, 1)
			err = p.SubscribeBasicInfo(func(info panel.BasicInfo) {
				select {
				case battery <- info.Battery:
				default:
				}
			})
			if err != nil {
				return err
			}
			select {
			case level := <-battery:
				fmt.Printf("Battery:  %d%%\n", level)
			case <-time.After(3 * time.Second):
				fmt.Printf("Battery:  unknown\n")
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		},
	},
	"firmware": &Command{
		help:               "Print the panel's firmware version",
		requiresConnection: true,
		handler: func(ctx context.Context, manager *ble.Manager, p *panel.Panel, args map[string]string) error {
			version, err := p.FirmwareVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Println(version)
			return nil
		},
	},
	"image": &Command{
		help:               "Encode an image file and display it on the panel",
		requiresConnection: true,
		args: []Argument{
			Argument{name: "PATH", help: "PNG or JPEG file to display"},
		},
		handler: func(ctx context.Context, manager *ble.Manager, p *panel.Panel, args map[string]string) error {
			img, err := loadImage(args["PATH"])
			if err != nil {
				return err
			}
			result, err := p.SendImage(ctx, img)
			if err != nil {
				return err
			}
			if result.Code != protocol.ResultSuccess {
				return fmt.Errorf("panel rejected the image: %s", result)
			}
			fmt.Println("Image displayed")
			return nil
		},
	},
	"clear": &Command{
		help:               "Blank the panel",
		requiresConnection: true,
		handler: func(ctx context.Context, manager *ble.Manager, p *panel.Panel, args map[string]string) error {
			if err := p.ClearScreen(ctx); err != nil {
				return err
			}
			fmt.Println("Screen cleared")
			return nil
		},
	},
}
