// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pivarietytest implements a fake Pivariety sensor.
//
// Sensor implements periph.io's i2c.Bus and answers the vendor register
// protocol from in-memory fixture data, so the decoder, resolver and
// renderers can be exercised without hardware.
package pivarietytest

import (
	"fmt"
	"sync"
	"syscall"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/physic"

	"github.com/arducam/go-pivariety/pivariety"
)

// Control is a fixture control record.
type Control struct {
	ID  uint32
	Min int32
	Max int32
	Def int32
}

// Resolution is a fixture capture size.
type Resolution struct {
	Width  uint32
	Height uint32
}

// Format is a fixture pixel format with its resolutions.
type Format struct {
	Type        uint32
	Order       uint32
	Lanes       uint32
	Resolutions []Resolution
}

// Sensor is a fake Pivariety camera on a fake I²C bus. The zero value
// answers as a present sensor with empty tables; set Absent to simulate an
// empty CSI slot that NAKs every transaction.
type Sensor struct {
	Name   string
	Absent bool

	Ident       pivariety.SensorIdentity
	ISPVersion  uint32
	SoftVersion string
	Formats     []Format
	Controls    []Control

	mu        sync.Mutex
	regmap    pivariety.RegisterMap
	pixIndex  uint32
	resIndex  uint32
	ctrlIndex uint32
	softIndex uint32
	ops       int
}

// Ops returns how many transactions the sensor has served. Lookup paths that
// must not touch hardware assert this stays at zero.
func (s *Sensor) Ops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ops
}

func (s *Sensor) String() string {
	if s.Name != "" {
		return s.Name
	}
	return "pivarietytest"
}

// SetSpeed implements i2c.Bus.
func (s *Sensor) SetSpeed(f physic.Frequency) error {
	return nil
}

// Close implements i2c.BusCloser.
func (s *Sensor) Close() error {
	return nil
}

// Tx implements i2c.Bus for the vendor register protocol: a 2-byte register
// address optionally followed by a big endian value.
func (s *Sensor) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops++
	if s.regmap.Addr == 0 {
		s.regmap = pivariety.DefaultRegisterMap()
	}
	if s.Absent || addr != s.regmap.Addr {
		return fmt.Errorf("%s: no device at 0x%02X: %w", s, addr, syscall.ENXIO)
	}
	if len(w) < 2 {
		return fmt.Errorf("%s: short transaction %x", s, w)
	}
	reg := pivariety.RegisterAddress(uint16(w[0])<<8 | uint16(w[1]))
	if len(w) > 2 {
		v := uint32(0)
		for _, b := range w[2:] {
			v = v<<8 | uint32(b)
		}
		return s.write(reg, v)
	}
	v, err := s.read(reg)
	if err != nil {
		return err
	}
	for i := range r {
		r[i] = byte(v >> (uint(len(r)-1-i) * 8))
	}
	return nil
}

func (s *Sensor) write(reg pivariety.RegisterAddress, v uint32) error {
	m := &s.regmap
	switch reg {
	case m.PixformatIndex:
		s.pixIndex = v
		s.resIndex = 0
	case m.ResolutionIndex:
		s.resIndex = v
	case m.CtrlIndex:
		s.ctrlIndex = v
	case m.SoftVersionIndex:
		s.softIndex = v
	case m.CtrlValue, m.StreamOn, m.SystemIdle:
		// Accepted, no observable effect on the fixture.
	default:
		return fmt.Errorf("%s: write to unexpected register 0x%04X", s, uint16(reg))
	}
	return nil
}

func (s *Sensor) read(reg pivariety.RegisterAddress) (uint32, error) {
	m := &s.regmap
	switch reg {
	case m.DeviceID:
		return uint32(s.Ident.DeviceID), nil
	case m.DeviceVersion:
		return uint32(s.Ident.DeviceVersion), nil
	case m.SensorID, m.FirmwareSensorID:
		return uint32(s.Ident.SensorID), nil
	case m.UniqueID:
		return s.ISPVersion, nil
	case m.SoftVersionLen:
		if s.SoftVersion == "" {
			return pivariety.NoData, nil
		}
		return uint32(len(s.SoftVersion)), nil
	case m.SoftVersionChar:
		if int(s.softIndex) >= len(s.SoftVersion) {
			return pivariety.NoData, nil
		}
		return uint32(s.SoftVersion[s.softIndex]), nil
	case m.PixformatIndex:
		if int(s.pixIndex) >= len(s.Formats) {
			return pivariety.NoData, nil
		}
		return s.pixIndex, nil
	case m.PixformatType:
		f, err := s.format()
		if err != nil {
			return 0, err
		}
		return f.Type, nil
	case m.PixformatOrder:
		f, err := s.format()
		if err != nil {
			return 0, err
		}
		return f.Order, nil
	case m.MIPILanes:
		f, err := s.format()
		if err != nil {
			return 0, err
		}
		return f.Lanes, nil
	case m.ResolutionIndex:
		f, err := s.format()
		if err != nil {
			return 0, err
		}
		if int(s.resIndex) >= len(f.Resolutions) {
			return pivariety.NoData, nil
		}
		return s.resIndex, nil
	case m.FormatWidth:
		res, err := s.resolution()
		if err != nil {
			return 0, err
		}
		return res.Width, nil
	case m.FormatHeight:
		res, err := s.resolution()
		if err != nil {
			return 0, err
		}
		return res.Height, nil
	case m.CtrlIndex:
		if int(s.ctrlIndex) >= len(s.Controls) {
			return pivariety.NoData, nil
		}
		return s.ctrlIndex, nil
	case m.CtrlID:
		if int(s.ctrlIndex) >= len(s.Controls) {
			return pivariety.NoData, nil
		}
		return s.Controls[s.ctrlIndex].ID, nil
	case m.CtrlMin:
		c, err := s.control()
		if err != nil {
			return 0, err
		}
		return uint32(c.Min), nil
	case m.CtrlMax:
		c, err := s.control()
		if err != nil {
			return 0, err
		}
		return uint32(c.Max), nil
	case m.CtrlDef:
		c, err := s.control()
		if err != nil {
			return 0, err
		}
		return uint32(c.Def), nil
	}
	return 0, fmt.Errorf("%s: read of unexpected register 0x%04X", s, uint16(reg))
}

func (s *Sensor) format() (*Format, error) {
	if int(s.pixIndex) >= len(s.Formats) {
		return nil, fmt.Errorf("%s: no pixel format selected", s)
	}
	return &s.Formats[s.pixIndex], nil
}

func (s *Sensor) resolution() (*Resolution, error) {
	f, err := s.format()
	if err != nil {
		return nil, err
	}
	if int(s.resIndex) >= len(f.Resolutions) {
		return nil, fmt.Errorf("%s: no resolution selected", s)
	}
	return &f.Resolutions[s.resIndex], nil
}

func (s *Sensor) control() (*Control, error) {
	if int(s.ctrlIndex) >= len(s.Controls) {
		return nil, fmt.Errorf("%s: no control selected", s)
	}
	return &s.Controls[s.ctrlIndex], nil
}

var _ i2c.BusCloser = &Sensor{}
