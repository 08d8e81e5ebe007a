// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pivariety

// RegisterAddress is a location on the sensor's register map. Registers are
// 16 bits wide and carry big endian values.
type RegisterAddress uint16

// Register blocks. Addresses within each block are assigned by the firmware;
// they are carried in a RegisterMap so that other sensor families can supply
// their own assignment.
const (
	deviceRegBase    = 0x0100
	pixformatRegBase = 0x0200
	formatRegBase    = 0x0300
	ctrlRegBase      = 0x0400
	ipcRegBase       = 0x0600
)

// NoData is returned by an index register once the walk went past the last
// table entry.
const NoData = 0xFFFFFFFE

// RegisterMap assigns meaning to register addresses for one sensor family.
// The zero value is not usable; start from DefaultRegisterMap.
type RegisterMap struct {
	// Addr is the fixed I²C device address the firmware listens on.
	Addr uint16

	StreamOn         RegisterAddress
	DeviceVersion    RegisterAddress
	SensorID         RegisterAddress
	DeviceID         RegisterAddress
	FirmwareSensorID RegisterAddress
	UniqueID         RegisterAddress
	SystemIdle       RegisterAddress
	SoftVersionLen   RegisterAddress
	SoftVersionIndex RegisterAddress
	SoftVersionChar  RegisterAddress

	PixformatIndex RegisterAddress
	PixformatType  RegisterAddress
	PixformatOrder RegisterAddress
	MIPILanes      RegisterAddress

	ResolutionIndex RegisterAddress
	FormatWidth     RegisterAddress
	FormatHeight    RegisterAddress

	CtrlIndex RegisterAddress
	CtrlID    RegisterAddress
	CtrlMin   RegisterAddress
	CtrlMax   RegisterAddress
	CtrlDef   RegisterAddress
	CtrlValue RegisterAddress
}

// DefaultRegisterMap returns the register assignment of the Pivariety
// firmware.
func DefaultRegisterMap() RegisterMap {
	return RegisterMap{
		Addr:             0x0C,
		StreamOn:         deviceRegBase | 0x0000,
		DeviceVersion:    deviceRegBase | 0x0001,
		SensorID:         deviceRegBase | 0x0002,
		DeviceID:         deviceRegBase | 0x0003,
		FirmwareSensorID: deviceRegBase | 0x0005,
		UniqueID:         deviceRegBase | 0x0006,
		SystemIdle:       deviceRegBase | 0x0007,
		SoftVersionLen:   deviceRegBase | 0x00F0,
		SoftVersionIndex: deviceRegBase | 0x00F1,
		SoftVersionChar:  deviceRegBase | 0x00F2,
		PixformatIndex:   pixformatRegBase | 0x0000,
		PixformatType:    pixformatRegBase | 0x0001,
		PixformatOrder:   pixformatRegBase | 0x0002,
		MIPILanes:        pixformatRegBase | 0x0003,
		ResolutionIndex:  formatRegBase | 0x0000,
		FormatWidth:      formatRegBase | 0x0001,
		FormatHeight:     formatRegBase | 0x0002,
		CtrlIndex:        ctrlRegBase | 0x0000,
		CtrlID:           ctrlRegBase | 0x0001,
		CtrlMin:          ctrlRegBase | 0x0002,
		CtrlMax:          ctrlRegBase | 0x0003,
		CtrlDef:          ctrlRegBase | 0x0005,
		CtrlValue:        ctrlRegBase | 0x0006,
	}
}

// mapForSensor returns the register assignment to use for a detected sensor.
// Every sensor id shipped so far uses the Pivariety assignment; a future
// family with a different layout gets its own entry here.
func mapForSensor(sensorID uint16) RegisterMap {
	return DefaultRegisterMap()
}

// PixelFormatType is a pixel format type code as reported by the firmware.
type PixelFormatType uint8

// Format type codes from the Pivariety datasheet.
const (
	YUV420_8Bit  PixelFormatType = 0x18
	YUV420_10Bit PixelFormatType = 0x19
	YUV422_8Bit  PixelFormatType = 0x1E
	Raw8         PixelFormatType = 0x2A
	Raw10        PixelFormatType = 0x2B
	Raw12        PixelFormatType = 0x2C
	JPEG         PixelFormatType = 0x30
)

var pixTypeNames = map[PixelFormatType]string{
	Raw8:         "RAW8",
	Raw10:        "RAW10",
	Raw12:        "RAW12",
	YUV420_8Bit:  "YUV420_8BIT",
	YUV420_10Bit: "YUV420_10BIT",
	YUV422_8Bit:  "YUV422_8BIT",
	JPEG:         "JPEG",
}

func (t PixelFormatType) String() string {
	if s, ok := pixTypeNames[t]; ok {
		return s
	}
	return "Unknown"
}

// IsYUV reports whether the format carries YUV samples.
func (t PixelFormatType) IsYUV() bool {
	return t == YUV420_8Bit || t == YUV420_10Bit || t == YUV422_8Bit
}

// IsRaw reports whether the format carries raw Bayer samples.
func (t PixelFormatType) IsRaw() bool {
	return t == Raw8 || t == Raw10 || t == Raw12
}

// PixelOrder is the sample ordering code under a pixel format. Its meaning
// depends on the format type: Bayer order for raw formats, component order
// for YUV formats.
type PixelOrder uint8

var bayerOrderNames = map[PixelOrder]string{
	0x0: "BGGR",
	0x1: "GBRG",
	0x2: "GRBG",
	0x3: "RGGB",
	0x4: "MONO",
}

var yuvOrderNames = map[PixelOrder]string{
	0x0: "YUYV",
	0x1: "YVYU",
	0x2: "UYVY",
	0x3: "VYUY",
}

// controlNames maps the 24-bit control ids exposed by the firmware to their
// vendor names.
var controlNames = map[uint32]string{
	0x980900: "brightness",
	0x980901: "contrast",
	0x980902: "Saturation",
	0x98090C: "AWBMode",
	0x98090E: "RedGain",
	0x98090F: "BlueGain",
	0x980911: "Exposure",
	0x980913: "gain",
	0x980914: "horizontal_flip",
	0x980915: "vertical_flip",
	0x98091A: "ColorTemperature",
	0x98091B: "sharpness",
	0x98091C: "backlight_compensation",
	0x981901: "TriggerMode",
	0x981906: "Framerate",
	0x98190E: "strobe_width",
	0x98190F: "strobe_shift",
	0x9A0901: "AEEnable",
	0x9A090A: "Focus",
	0x9A0919: "ExposureMetering",
	0x9E0901: "vertical_blanking",
	0x9E0902: "horizontal_blanking",
	0x9E0903: "AnalogueGain",
	0x9F0902: "pixel_rate",
}

// ControlFramerate is the control id the firmware uses to expose the maximum
// frame rate of the currently selected resolution.
const ControlFramerate = 0x981906

// ControlName returns the vendor name for a control id, or "Unknown".
func ControlName(id uint32) string {
	if s, ok := controlNames[id]; ok {
		return s
	}
	return "Unknown"
}
