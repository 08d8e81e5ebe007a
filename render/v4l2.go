// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package render

import (
	"fmt"
	"io"

	"github.com/arducam/go-pivariety/pivariety"
)

// Formats prints the V4L2 compatible enumeration: one line per pixel format,
// and with extended set the discrete sizes and frame intervals nested under
// each format.
func Formats(w io.Writer, formats []FormatReport, extended bool) error {
	p := &printer{w: w}
	p.printf("ioctl: VIDIOC_ENUM_FMT\n        Type: Video Capture\n\n")
	for i, fr := range formats {
		p.printf("        [%d]: '%s' (%s)\n", i, fr.Format.FourCC(), fr.Format.Type)
		if !extended {
			continue
		}
		for _, res := range fr.Resolutions {
			p.printf("                Size: Discrete %dx%d\n", res.Width, res.Height)
			for _, iv := range res.Intervals {
				p.printf("                        %s\n", intervalLine(iv))
			}
		}
	}
	return p.err
}

// intervalLine renders one frame interval. The vendor CLI prints half the
// true frame period here (1/15s shows as 0.033s); the output is kept
// identical to it rather than corrected, since consumers match it textually.
func intervalLine(iv pivariety.FrameInterval) string {
	seconds := float64(iv.Numerator) / float64(iv.Denominator) / 2
	return fmt.Sprintf("Interval: Discrete %.3fs (%g fps)", seconds, iv.FPS())
}
