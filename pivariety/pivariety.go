// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pivariety queries Arducam Pivariety camera modules over their I²C
// control channel.
//
// The firmware exposes a register protocol describing the sensor's identity,
// supported pixel formats, capture resolutions, frame intervals and tunable
// controls. This package decodes those registers into typed descriptors; it
// does not configure streaming or touch the CSI data path.
//
// References:
// Arducam Pivariety camera documentation:
//   https://docs.arducam.com/Raspberry-Pi-Camera/Pivariety-Camera/
package pivariety

import "fmt"

// SensorIdentity is the result of probing a sensor: firmware constants that
// identify the module. SensorID selects the register map variant used for the
// remaining tables.
type SensorIdentity struct {
	DeviceID      uint8  `json:"device_id" yaml:"device_id"`
	DeviceVersion uint8  `json:"device_version" yaml:"device_version"`
	SensorID      uint16 `json:"sensor_id" yaml:"sensor_id"`
}

func (s SensorIdentity) String() string {
	return fmt.Sprintf("device 0x%02X v0x%02X sensor 0x%X", s.DeviceID, s.DeviceVersion, s.SensorID)
}

// FirmwareInfo carries the firmware version supplements reported alongside
// the identity.
type FirmwareInfo struct {
	// ISPVersion is the decoded ISP firmware version, e.g. "v2.03 2023/05/10".
	ISPVersion string
	// SoftwareVersion is the free-form software firmware version string, empty
	// when the firmware does not report one.
	SoftwareVersion string
}

// PixelFormat is one supported pixel format.
type PixelFormat struct {
	Index int
	Type  PixelFormatType
	Order PixelOrder
	Lanes int
}

// OrderString returns the sample order name, or "" for formats without an
// order (JPEG).
func (f PixelFormat) OrderString() string {
	switch {
	case f.Type.IsRaw():
		if s, ok := bayerOrderNames[f.Order]; ok {
			return s
		}
		return "Unknown"
	case f.Type.IsYUV():
		if s, ok := yuvOrderNames[f.Order]; ok {
			return s
		}
		return "Unknown"
	}
	return ""
}

// FourCC returns the V4L2 four character code used when listing this format.
func (f PixelFormat) FourCC() string {
	switch {
	case f.Type.IsYUV():
		if s, ok := yuvOrderNames[f.Order]; ok {
			return s
		}
		return "YUYV"
	case f.Type.IsRaw():
		if s, ok := bayerOrderNames[f.Order]; ok {
			return s
		}
		return "RGGB"
	case f.Type == JPEG:
		return "MJPG"
	}
	return "UNKN"
}

// FrameInterval is one supported frame interval, in seconds per frame.
type FrameInterval struct {
	Numerator   uint32
	Denominator uint32
}

// FPS returns the implied frame rate.
func (i FrameInterval) FPS() float64 {
	return float64(i.Denominator) / float64(i.Numerator)
}

// Resolution is one supported capture size under a pixel format. Index is the
// position in the firmware's declaration order; downstream tools address
// entries by it, so it is never re-sorted.
type Resolution struct {
	Index     int
	Width     uint32
	Height    uint32
	Intervals []FrameInterval
}

// Control is one tunable camera control.
type Control struct {
	ID   uint32
	Name string
	Min  int32
	Max  int32
	Def  int32
}
