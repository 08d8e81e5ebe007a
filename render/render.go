// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package render prints decoded sensor descriptors, either as the plain
// diagnostic listing or in the V4L2 enumeration style. Output is line
// compatible with the vendor's CLI tooling, which downstream scripts parse.
package render

import (
	"fmt"
	"io"

	"github.com/arducam/go-pivariety/pivariety"
)

// Report is a fully decoded probe of one sensor, ready to print.
type Report struct {
	Identity pivariety.SensorIdentity
	Firmware *pivariety.FirmwareInfo
	Formats  []FormatReport
}

// FormatReport groups one pixel format with its resolutions and the control
// table read under it.
type FormatReport struct {
	Format      pivariety.PixelFormat
	Resolutions []pivariety.Resolution
	Controls    []pivariety.Control
}

// printer sticks to the first write error so the renderers can emit their
// line blocks without checking every write.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}
