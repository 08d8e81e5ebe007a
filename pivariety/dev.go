// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pivariety

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/i2c"
)

// Table walk bounds. The firmware terminates walks with a NoData sentinel; a
// walk that never hits it is reading corrupted registers.
const (
	maxFormats     = 32
	maxResolutions = 64
	maxControls    = 128
)

// settleDelay is how long the firmware needs after the control value register
// is poked before the control bounds read back reliably.
const settleDelay = 50 * time.Millisecond

// regWidth is the value width of every Pivariety register.
const regWidth = 4

// Dev decodes the register protocol of one sensor. It holds no register
// state between calls; every listing re-reads the hardware.
type Dev struct {
	t        Transport
	m        RegisterMap
	fixedMap bool
	settle   time.Duration
}

// New returns a Dev for the sensor on bus, using the default Pivariety
// register map until an identity probe selects a variant.
func New(bus i2c.Bus) *Dev {
	m := DefaultRegisterMap()
	return &Dev{t: NewTransport(bus, m.Addr), m: m, settle: settleDelay}
}

// NewWithMap returns a Dev bound to an explicit register map. The map is
// never swapped out by identity probes.
func NewWithMap(bus i2c.Bus, m RegisterMap) *Dev {
	return &Dev{t: NewTransport(bus, m.Addr), m: m, fixedMap: true, settle: settleDelay}
}

func (d *Dev) String() string {
	return fmt.Sprintf("pivariety{0x%02X}", d.m.Addr)
}

// Close releases the underlying bus.
func (d *Dev) Close() error {
	return d.t.Close()
}

// Identity probes the sensor's identity registers. A NAK on the first read
// means the CSI slot is wired but empty and returns (nil, nil); every other
// failure is an error.
func (d *Dev) Identity() (*SensorIdentity, error) {
	v, err := d.t.Read(d.m.DeviceID, regWidth)
	if errors.Is(err, ErrNak) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	id, err := decodeUint(regWindow(v), fieldDeviceID)
	if err != nil {
		return nil, err
	}
	v, err = d.t.Read(d.m.DeviceVersion, regWidth)
	if err != nil {
		return nil, err
	}
	ver, err := decodeUint(regWindow(v), fieldDeviceVersion)
	if err != nil {
		return nil, err
	}
	v, err = d.t.Read(d.m.FirmwareSensorID, regWidth)
	if err != nil {
		return nil, err
	}
	sid, err := decodeUint(regWindow(v), fieldSensorID)
	if err != nil {
		return nil, err
	}
	ident := &SensorIdentity{
		DeviceID:      uint8(id),
		DeviceVersion: uint8(ver),
		SensorID:      uint16(sid),
	}
	if !d.fixedMap {
		d.m = mapForSensor(ident.SensorID)
	}
	return ident, nil
}

// Firmware reads the ISP and software firmware versions.
func (d *Dev) Firmware() (*FirmwareInfo, error) {
	v, err := d.t.Read(d.m.UniqueID, regWidth)
	if err != nil {
		return nil, err
	}
	info := &FirmwareInfo{ISPVersion: decodeISPVersion(v)}

	n, err := d.t.Read(d.m.SoftVersionLen, regWidth)
	if err != nil {
		return nil, err
	}
	if n == NoData || n > 255 {
		return info, nil
	}
	version := make([]byte, 0, n)
	for i := uint32(0); i < n; i++ {
		if err := d.t.Write(d.m.SoftVersionIndex, regWidth, i); err != nil {
			return nil, err
		}
		ch, err := d.t.Read(d.m.SoftVersionChar, regWidth)
		if err != nil {
			return nil, err
		}
		if ch > 255 {
			continue
		}
		version = append(version, byte(ch))
	}
	info.SoftwareVersion = string(version)
	return info, nil
}

// PixelFormats lists the supported pixel formats in declaration order.
func (d *Dev) PixelFormats() ([]PixelFormat, error) {
	var out []PixelFormat
	for index := 0; ; index++ {
		if index >= maxFormats {
			return nil, errors.Wrapf(ErrMalformedTable, "pixel format walk past %d entries", maxFormats)
		}
		v, err := d.selectIndex(d.m.PixformatIndex, index)
		if err != nil {
			return nil, err
		}
		if v == NoData {
			break
		}
		f, err := d.readPixelFormat(index)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	// Leave the first format selected, as the vendor tool does. The restore
	// is best effort; its failure is deliberately ignored and does not
	// invalidate the completed walk.
	_ = d.t.Write(d.m.PixformatIndex, regWidth, 0)
	return out, nil
}

func (d *Dev) readPixelFormat(index int) (*PixelFormat, error) {
	v, err := d.t.Read(d.m.PixformatType, regWidth)
	if err != nil {
		return nil, err
	}
	rawType, err := decodeUint(regWindow(v), fieldPixType)
	if err != nil {
		return nil, err
	}
	typ, err := decodePixelFormatType(rawType)
	if err != nil {
		return nil, err
	}
	v, err = d.t.Read(d.m.PixformatOrder, regWidth)
	if err != nil {
		return nil, err
	}
	order, err := decodeUint(regWindow(v), fieldPixOrder)
	if err != nil {
		return nil, err
	}
	v, err = d.t.Read(d.m.MIPILanes, regWidth)
	if err != nil {
		return nil, err
	}
	lanes, err := decodeUint(regWindow(v), fieldLanes)
	if err != nil {
		return nil, err
	}
	if lanes < 1 || lanes > 4 {
		return nil, errors.Wrapf(ErrMalformedTable, "format %d: %d MIPI lanes", index, lanes)
	}
	return &PixelFormat{Index: index, Type: typ, Order: PixelOrder(order), Lanes: int(lanes)}, nil
}

// Resolutions lists the capture sizes under the pixel format at formatIndex,
// each with its supported frame intervals. Declaration order is preserved;
// V4L2 style tools address resolutions by position.
func (d *Dev) Resolutions(formatIndex int) ([]Resolution, error) {
	v, err := d.selectIndex(d.m.PixformatIndex, formatIndex)
	if err != nil {
		return nil, err
	}
	if v == NoData {
		return nil, errors.Errorf("pivariety: no pixel format at index %d", formatIndex)
	}
	var out []Resolution
	for index := 0; ; index++ {
		if index >= maxResolutions {
			return nil, errors.Wrapf(ErrMalformedTable, "resolution walk past %d entries", maxResolutions)
		}
		v, err := d.selectIndex(d.m.ResolutionIndex, index)
		if err != nil {
			return nil, err
		}
		if v == NoData {
			break
		}
		res, err := d.readResolution(index)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}

func (d *Dev) readResolution(index int) (*Resolution, error) {
	v, err := d.t.Read(d.m.FormatWidth, regWidth)
	if err != nil {
		return nil, err
	}
	width, err := decodeUint(regWindow(v), fieldDimension)
	if err != nil {
		return nil, err
	}
	v, err = d.t.Read(d.m.FormatHeight, regWidth)
	if err != nil {
		return nil, err
	}
	height, err := decodeUint(regWindow(v), fieldDimension)
	if err != nil {
		return nil, err
	}
	if width == 0 || height == 0 {
		return nil, errors.Wrapf(ErrMalformedTable, "resolution %d: %dx%d", index, width, height)
	}
	res := &Resolution{Index: index, Width: width, Height: height}
	// The firmware exposes the frame rate ceiling of the selected resolution
	// through the Framerate control.
	fps, ok, err := d.framerateMax()
	if err != nil {
		return nil, err
	}
	if ok && fps > 0 {
		res.Intervals = []FrameInterval{{Numerator: 1, Denominator: uint32(fps)}}
	}
	return res, nil
}

// framerateMax walks the control table for the Framerate control and returns
// its max. ok is false when the firmware does not expose it.
func (d *Dev) framerateMax() (int32, bool, error) {
	for index := 0; ; index++ {
		if index >= maxControls {
			return 0, false, errors.Wrapf(ErrMalformedTable, "control walk past %d entries", maxControls)
		}
		v, err := d.selectIndex(d.m.CtrlIndex, index)
		if err != nil {
			return 0, false, err
		}
		if v == NoData {
			return 0, false, nil
		}
		v, err = d.t.Read(d.m.CtrlID, regWidth)
		if err != nil {
			return 0, false, err
		}
		if v == NoData {
			return 0, false, nil
		}
		id, err := decodeUint(regWindow(v), fieldControlID)
		if err != nil {
			return 0, false, err
		}
		if id != ControlFramerate {
			continue
		}
		v, err = d.t.Read(d.m.CtrlMax, regWidth)
		if err != nil {
			return 0, false, err
		}
		return decodeInt32(v), true, nil
	}
}

// Controls lists the tunable controls exposed by the firmware.
func (d *Dev) Controls() ([]Control, error) {
	var out []Control
	for index := 0; ; index++ {
		if index >= maxControls {
			return nil, errors.Wrapf(ErrMalformedTable, "control walk past %d entries", maxControls)
		}
		v, err := d.selectIndex(d.m.CtrlIndex, index)
		if err != nil {
			return nil, err
		}
		if v == NoData {
			break
		}
		v, err = d.t.Read(d.m.CtrlID, regWidth)
		if err != nil {
			return nil, err
		}
		if v == NoData {
			break
		}
		id, err := decodeUint(regWindow(v), fieldControlID)
		if err != nil {
			return nil, err
		}
		ctrl, err := d.readControlBounds(id)
		if err != nil {
			return nil, err
		}
		out = append(out, *ctrl)
	}
	return out, nil
}

func (d *Dev) readControlBounds(id uint32) (*Control, error) {
	// Poking the value register makes the firmware refresh the bound
	// registers for the selected control; it needs a moment to do so.
	if err := d.t.Write(d.m.CtrlValue, regWidth, 0); err != nil {
		return nil, err
	}
	time.Sleep(d.settle)
	v, err := d.t.Read(d.m.CtrlMax, regWidth)
	if err != nil {
		return nil, err
	}
	max := decodeInt32(v)
	v, err = d.t.Read(d.m.CtrlMin, regWidth)
	if err != nil {
		return nil, err
	}
	min := decodeInt32(v)
	v, err = d.t.Read(d.m.CtrlDef, regWidth)
	if err != nil {
		return nil, err
	}
	def := decodeInt32(v)
	if min > max || def < min || def > max {
		return nil, errors.Wrapf(ErrMalformedTable, "control 0x%06X: MIN %d DEF %d MAX %d", id, min, def, max)
	}
	return &Control{ID: id, Name: ControlName(id), Min: min, Max: max, Def: def}, nil
}

// selectIndex writes an index register and reads it back. The firmware
// answers NoData when the index is past the end of the table.
func (d *Dev) selectIndex(reg RegisterAddress, index int) (uint32, error) {
	if err := d.t.Write(reg, regWidth, uint32(index)); err != nil {
		return 0, err
	}
	return d.t.Read(reg, regWidth)
}

// decodeISPVersion unpacks the ISP firmware version register: major/minor in
// the high half, a packed yy/mm/dd build date in the low half.
func decodeISPVersion(v uint32) string {
	id := (v & 0xFFFF0000) >> 16
	major := (id & 0xFF00) >> 8
	minor := id & 0x00FF
	date := v & 0xFFFF
	year := date >> 9
	month := (date >> 5) & 0x0F
	day := date & 0x1F
	return fmt.Sprintf("v%x.%02x 20%02d/%02d/%02d", major, minor, year, month, day)
}
