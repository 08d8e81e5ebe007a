// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package render

import "io"

// Diagnostic prints the plain listing: one line per identity field, one per
// resolution, one per control.
func Diagnostic(w io.Writer, r *Report) error {
	p := &printer{w: w}
	// The sensor id is printed without zero padding; the two 8-bit fields
	// are padded to two digits. That is what the vendor tool emits.
	p.printf("Device ID: 0x%02X\n", r.Identity.DeviceID)
	p.printf("Device Version: 0x%02X\n", r.Identity.DeviceVersion)
	p.printf("Sensor ID: 0x%X\n", r.Identity.SensorID)
	if r.Firmware != nil {
		p.printf("ISP FW Version: %s\n", r.Firmware.ISPVersion)
		soft := r.Firmware.SoftwareVersion
		if soft == "" {
			soft = "None"
		}
		p.printf("Software FW Version: %s\n", soft)
	}
	for _, fr := range r.Formats {
		diagnosticFormat(p, fr)
	}
	return p.err
}

func diagnosticFormat(p *printer, fr FormatReport) {
	f := fr.Format
	if order := f.OrderString(); order != "" {
		p.printf("PixelFormat Type: %s, Order: %s, Lanes: %d\n", f.Type, order, f.Lanes)
	} else {
		p.printf("PixelFormat Type: %s, Lanes: %d\n", f.Type, f.Lanes)
	}
	for _, res := range fr.Resolutions {
		p.printf("index: %d, %dx%d\n", res.Index, res.Width, res.Height)
		for _, c := range fr.Controls {
			p.printf("ID: 0x%06X, control_name: %s MAX: %d, MIN: %d, DEF: %d\n", c.ID, c.Name, c.Max, c.Min, c.Def)
		}
	}
}
