// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pivariety

import (
	"io"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/i2c"
)

// Transport issues addressed register reads and writes against one sensor.
// Values are big endian on the wire; width is the value size in bytes, 1 to 4.
type Transport interface {
	Read(reg RegisterAddress, width int) (uint32, error)
	Write(reg RegisterAddress, width int, value uint32) error
	Close() error
}

const (
	// txAttempts bounds the retry budget for one transaction. I²C bus noise
	// is transient; anything that fails three times is reported.
	txAttempts = 3
	txBackoff  = 2 * time.Millisecond
)

// i2cTransport runs the register protocol over a periph.io I²C bus. A read
// writes the 2-byte register address then reads the value bytes back; a write
// sends address and value in a single transfer.
type i2cTransport struct {
	bus  i2c.Bus
	addr uint16
}

// NewTransport returns a Transport for the device at addr on bus.
func NewTransport(bus i2c.Bus, addr uint16) Transport {
	return &i2cTransport{bus: bus, addr: addr}
}

func (t *i2cTransport) Read(reg RegisterAddress, width int) (uint32, error) {
	if width < 1 || width > 4 {
		return 0, errors.Errorf("pivariety: invalid register width %d", width)
	}
	w := []byte{byte(reg >> 8), byte(reg)}
	r := make([]byte, width)
	if err := t.tx(w, r); err != nil {
		return 0, err
	}
	v := uint32(0)
	for _, b := range r {
		v = v<<8 | uint32(b)
	}
	return v, nil
}

func (t *i2cTransport) Write(reg RegisterAddress, width int, value uint32) error {
	if width < 1 || width > 4 {
		return errors.Errorf("pivariety: invalid register width %d", width)
	}
	if width < 4 && value>>(uint(width)*8) != 0 {
		return errors.Errorf("pivariety: value 0x%X does not fit in %d bytes", value, width)
	}
	w := make([]byte, 2+width)
	w[0] = byte(reg >> 8)
	w[1] = byte(reg)
	for i := 0; i < width; i++ {
		w[2+i] = byte(value >> (uint(width-1-i) * 8))
	}
	return t.tx(w, nil)
}

func (t *i2cTransport) Close() error {
	if c, ok := t.bus.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// tx runs one transaction with a bounded retry. A NAK is never retried: it
// means no device is listening at the address, and probing relies on getting
// that answer quickly.
func (t *i2cTransport) tx(w, r []byte) error {
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		if attempt != 0 {
			time.Sleep(txBackoff)
		}
		if err = t.bus.Tx(t.addr, w, r); err == nil {
			return nil
		}
		if isNak(err) {
			return errors.Wrapf(ErrNak, "addr 0x%02X: %s", t.addr, err)
		}
	}
	return errors.Wrapf(ErrTimeout, "addr 0x%02X after %d attempts: %s", t.addr, txAttempts, err)
}

// isNak reports whether err is the bus telling us no device acknowledged.
// The Linux i2c-dev driver surfaces a NAK as ENXIO or EREMOTEIO.
func isNak(err error) bool {
	return errors.Is(err, ErrNak) || errors.Is(err, syscall.ENXIO) || isRemoteIO(err)
}
