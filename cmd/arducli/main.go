// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// arducli queries Arducam Pivariety cameras over their I²C control channel
// and prints the decoded identity, pixel formats, resolutions and controls.
package main

import (
	"fmt"
	"os"

	"github.com/edaniels/golog"
	"github.com/maruel/interrupt"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"periph.io/x/periph/host"

	"github.com/arducam/go-pivariety/mapping"
	"github.com/arducam/go-pivariety/pivariety"
	"github.com/arducam/go-pivariety/render"
)

const (
	versionMajor = 1
	versionMinor = 5
)

var (
	busNumber      int
	deviceNode     string
	tablePath      string
	listFormats    bool
	listFormatsExt bool
	verbose        bool

	logger = golog.NewDevelopmentLogger("arducli")
)

func main() {
	root := &cobra.Command{
		Use:           "arducli",
		Short:         "Arducam Pivariety command line interface",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runQuery,
	}
	root.Flags().IntVarP(&busNumber, "bus", "b", -1, "I2C bus number to query")
	root.Flags().StringVarP(&deviceNode, "device", "d", "", "/dev/videoX device to query")
	root.Flags().BoolVar(&listFormats, "list-formats", false, "list pixel formats")
	root.Flags().BoolVar(&listFormatsExt, "list-formats-ext", false, "list pixel formats, resolutions and frame intervals")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "show version info")
	root.PersistentFlags().StringVarP(&tablePath, "table", "t", mapping.DefaultTablePath, "mapping table path")

	detect := &cobra.Command{
		Use:   "detect",
		Short: "Re-enumerate I2C buses and rewrite the mapping table",
		Args:  cobra.NoArgs,
		RunE:  runDetect,
	}
	root.AddCommand(detect)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\narducli: %s.\n", err)
		os.Exit(1)
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	if busNumber >= 0 && deviceNode != "" {
		return errors.New("options -b and -d are mutually exclusive")
	}
	if verbose {
		fmt.Println("=================================")
		fmt.Println("            arducli")
		fmt.Println(" arducam command line interface")
		fmt.Printf("           v.%d.%d / 2025\n", versionMajor, versionMinor)
		fmt.Println("=================================")
	}
	if _, err := host.Init(); err != nil {
		return err
	}
	resolver := mapping.NewResolver(tablePath, mapping.PeriphOpener{}, &mapping.SysfsRegistry{}, logger)

	var targets []*mapping.Entry
	switch {
	case busNumber >= 0:
		e, err := resolver.Resolve(mapping.Lookup{Bus: &busNumber})
		if err != nil {
			return err
		}
		targets = append(targets, e)
	case deviceNode != "":
		e, err := resolver.Resolve(mapping.Lookup{Node: deviceNode})
		if err != nil {
			return err
		}
		if e.Identity == nil {
			return errors.Errorf("no sensor mapped for device %s", deviceNode)
		}
		targets = append(targets, e)
	default:
		t, err := resolver.Table()
		if err != nil {
			return err
		}
		for i := range t.Entries {
			if t.Entries[i].Identity != nil {
				targets = append(targets, &t.Entries[i])
			}
		}
		if len(targets) == 0 {
			return errors.New("no mapped sensors; run arducli detect first")
		}
	}

	for _, e := range targets {
		if err := queryOne(e.Bus); err != nil {
			return errors.Wrapf(err, "bus %d", e.Bus)
		}
	}
	return nil
}

func queryOne(bus int) error {
	b, err := mapping.PeriphOpener{}.Open(bus)
	if err != nil {
		return err
	}
	dev := pivariety.New(b)
	defer dev.Close()

	if listFormats || listFormatsExt {
		reports, err := formatReports(dev, false)
		if err != nil {
			return err
		}
		return render.Formats(os.Stdout, reports, listFormatsExt)
	}

	ident, err := dev.Identity()
	if err != nil {
		return err
	}
	if ident == nil {
		return errors.Errorf("no sensor present")
	}
	fw, err := dev.Firmware()
	if err != nil {
		return err
	}
	reports, err := formatReports(dev, true)
	if err != nil {
		return err
	}
	return render.Diagnostic(os.Stdout, &render.Report{Identity: *ident, Firmware: fw, Formats: reports})
}

// formatReports walks the format table and nests resolutions, plus the
// control table when the diagnostic listing needs it. Any table that fails
// to decode fails the whole report; a truncated listing must never pass for
// a complete one.
func formatReports(dev *pivariety.Dev, withControls bool) ([]render.FormatReport, error) {
	formats, err := dev.PixelFormats()
	if err != nil {
		return nil, err
	}
	var out []render.FormatReport
	for _, f := range formats {
		fr := render.FormatReport{Format: f}
		if fr.Resolutions, err = dev.Resolutions(f.Index); err != nil {
			return nil, err
		}
		if withControls {
			if fr.Controls, err = dev.Controls(); err != nil {
				return nil, err
			}
		}
		out = append(out, fr)
	}
	return out, nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	interrupt.HandleCtrlC()
	if _, err := host.Init(); err != nil {
		return err
	}
	resolver := mapping.NewResolver(tablePath, mapping.PeriphOpener{}, &mapping.SysfsRegistry{}, logger)
	t, err := resolver.Refresh()
	if err != nil {
		return err
	}
	for _, e := range t.Entries {
		name := e.DeviceNode
		if name == "" {
			name = fmt.Sprintf("i2c-%d", e.Bus)
		}
		if e.Identity != nil {
			fmt.Printf("[+] %s -> bus %d, sensor 0x%X\n", name, e.Bus, e.Identity.SensorID)
		} else {
			fmt.Printf("[-] %s -> no sensor detected\n", name)
		}
	}
	return nil
}
