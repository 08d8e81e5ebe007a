// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package render_test

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arducam/go-pivariety/pivariety"
	"github.com/arducam/go-pivariety/pivarietytest"
	"github.com/arducam/go-pivariety/render"
)

func sampleReport() *render.Report {
	return &render.Report{
		Identity: pivariety.SensorIdentity{DeviceID: 0x30, DeviceVersion: 0x10, SensorID: 0xA56},
		Formats: []render.FormatReport{
			{
				Format: pivariety.PixelFormat{Index: 0, Type: pivariety.YUV422_8Bit, Order: 0x2, Lanes: 4},
				Resolutions: []pivariety.Resolution{
					{Index: 0, Width: 3840, Height: 2160, Intervals: []pivariety.FrameInterval{{Numerator: 1, Denominator: 15}}},
				},
				Controls: []pivariety.Control{
					{ID: 0x981906, Name: "Framerate", Min: 1, Max: 90, Def: 90},
				},
			},
		},
	}
}

func TestDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Diagnostic(&buf, sampleReport()))
	want := "Device ID: 0x30\n" +
		"Device Version: 0x10\n" +
		"Sensor ID: 0xA56\n" +
		"PixelFormat Type: YUV422_8BIT, Order: UYVY, Lanes: 4\n" +
		"index: 0, 3840x2160\n" +
		"ID: 0x981906, control_name: Framerate MAX: 90, MIN: 1, DEF: 90\n"
	assert.Equal(t, want, buf.String())
}

func TestDiagnosticFirmwareLines(t *testing.T) {
	r := sampleReport()
	r.Firmware = &pivariety.FirmwareInfo{ISPVersion: "v2.03 2023/05/10"}
	var buf bytes.Buffer
	require.NoError(t, render.Diagnostic(&buf, r))
	assert.Contains(t, buf.String(), "ISP FW Version: v2.03 2023/05/10\n")
	assert.Contains(t, buf.String(), "Software FW Version: None\n")
}

func TestFormats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Formats(&buf, sampleReport().Formats, false))
	want := "ioctl: VIDIOC_ENUM_FMT\n" +
		"        Type: Video Capture\n" +
		"\n" +
		"        [0]: 'UYVY' (YUV422_8BIT)\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatsExtended(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Formats(&buf, sampleReport().Formats, true))
	want := "ioctl: VIDIOC_ENUM_FMT\n" +
		"        Type: Video Capture\n" +
		"\n" +
		"        [0]: 'UYVY' (YUV422_8BIT)\n" +
		"                Size: Discrete 3840x2160\n" +
		"                        Interval: Discrete 0.033s (15 fps)\n"
	assert.Equal(t, want, buf.String())
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("sink closed")
}

func TestDiagnosticWriteError(t *testing.T) {
	require.Error(t, render.Diagnostic(failWriter{}, sampleReport()))
}

func TestFormatsWriteError(t *testing.T) {
	require.Error(t, render.Formats(failWriter{}, sampleReport().Formats, true))
}

// End to end: probe a fake sensor through the decoder and print the result.
func TestDiagnosticFromSensor(t *testing.T) {
	s := &pivarietytest.Sensor{
		Ident: pivariety.SensorIdentity{DeviceID: 0x30, DeviceVersion: 0x10, SensorID: 0xA56},
		Formats: []pivarietytest.Format{
			{
				Type:  0x1E,
				Order: 0x2,
				Lanes: 4,
				Resolutions: []pivarietytest.Resolution{
					{Width: 3840, Height: 2160},
				},
			},
		},
		Controls: []pivarietytest.Control{
			{ID: 0x981906, Min: 1, Max: 90, Def: 90},
		},
	}
	dev := pivariety.New(s)
	ident, err := dev.Identity()
	require.NoError(t, err)
	require.NotNil(t, ident)
	formats, err := dev.PixelFormats()
	require.NoError(t, err)
	require.Len(t, formats, 1)
	resolutions, err := dev.Resolutions(0)
	require.NoError(t, err)
	controls, err := dev.Controls()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, render.Diagnostic(&buf, &render.Report{
		Identity: *ident,
		Formats: []render.FormatReport{
			{Format: formats[0], Resolutions: resolutions, Controls: controls},
		},
	}))
	want := "Device ID: 0x30\n" +
		"Device Version: 0x10\n" +
		"Sensor ID: 0xA56\n" +
		"PixelFormat Type: YUV422_8BIT, Order: UYVY, Lanes: 4\n" +
		"index: 0, 3840x2160\n" +
		"ID: 0x981906, control_name: Framerate MAX: 90, MIN: 1, DEF: 90\n"
	assert.Equal(t, want, buf.String())
}
