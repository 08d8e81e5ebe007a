// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pivariety

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/periph/conn/i2c/i2ctest"
	"periph.io/x/periph/conn/physic"
)

func TestTransportReadWire(t *testing.T) {
	bus := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x0C, W: []byte{0x01, 0x03}, R: []byte{0x00, 0x00, 0x00, 0x30}},
			{Addr: 0x0C, W: []byte{0x01, 0x05}, R: []byte{0x0A, 0x56}},
		},
	}
	tr := NewTransport(&bus, 0x0C)
	v, err := tr.Read(0x0103, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x30), v)
	v, err = tr.Read(0x0105, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0A56), v)
	require.NoError(t, bus.Close())
}

func TestTransportWriteWire(t *testing.T) {
	bus := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x0C, W: []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x07}},
			{Addr: 0x0C, W: []byte{0x04, 0x06, 0x00}},
		},
	}
	tr := NewTransport(&bus, 0x0C)
	require.NoError(t, tr.Write(0x0200, 4, 7))
	require.NoError(t, tr.Write(0x0406, 1, 0))
	require.NoError(t, bus.Close())
}

func TestTransportWidthContract(t *testing.T) {
	tr := NewTransport(&i2ctest.Playback{}, 0x0C)
	_, err := tr.Read(0x0100, 0)
	assert.Error(t, err)
	_, err = tr.Read(0x0100, 5)
	assert.Error(t, err)
	// Value must fit the declared width.
	assert.Error(t, tr.Write(0x0100, 1, 0x100))
	assert.Error(t, tr.Write(0x0100, 2, 0x10000))
}

// flakyBus fails the first n transactions, then answers zeroes.
type flakyBus struct {
	failures int
	calls    int
	err      error
}

func (b *flakyBus) String() string                  { return "flaky" }
func (b *flakyBus) SetSpeed(physic.Frequency) error { return nil }

func (b *flakyBus) Tx(addr uint16, w, r []byte) error {
	b.calls++
	if b.calls <= b.failures {
		if b.err != nil {
			return b.err
		}
		return fmt.Errorf("bus glitch")
	}
	for i := range r {
		r[i] = 0
	}
	return nil
}

func TestTransportRetriesTransientFailure(t *testing.T) {
	bus := &flakyBus{failures: 2}
	tr := NewTransport(bus, 0x0C)
	_, err := tr.Read(0x0100, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, bus.calls)
}

func TestTransportTimeoutAfterRetryBudget(t *testing.T) {
	bus := &flakyBus{failures: 100}
	tr := NewTransport(bus, 0x0C)
	_, err := tr.Read(0x0100, 4)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, txAttempts, bus.calls)
}

func TestTransportNakNotRetried(t *testing.T) {
	bus := &flakyBus{failures: 100, err: fmt.Errorf("no ack: %w", syscall.ENXIO)}
	tr := NewTransport(bus, 0x0C)
	_, err := tr.Read(0x0100, 4)
	require.ErrorIs(t, err, ErrNak)
	assert.Equal(t, 1, bus.calls)
}

// memBus is a writable register file, for the read-back law.
type memBus struct {
	regs map[uint16][]byte
}

func (b *memBus) String() string                  { return "mem" }
func (b *memBus) SetSpeed(physic.Frequency) error { return nil }

func (b *memBus) Tx(addr uint16, w, r []byte) error {
	if b.regs == nil {
		b.regs = map[uint16][]byte{}
	}
	reg := uint16(w[0])<<8 | uint16(w[1])
	if len(w) > 2 {
		b.regs[reg] = append([]byte(nil), w[2:]...)
		return nil
	}
	copy(r, b.regs[reg])
	return nil
}

func TestTransportReadBackWritten(t *testing.T) {
	tr := NewTransport(&memBus{}, 0x0C)
	for _, tc := range []struct {
		width int
		value uint32
	}{
		{1, 0x00},
		{1, 0x7F},
		{1, 0xFF},
		{2, 0x0001},
		{2, 0xA56},
		{2, 0xFFFF},
		{4, 0xFFFFFFFE},
	} {
		reg := RegisterAddress(0x0400 + tc.width)
		require.NoError(t, tr.Write(reg, tc.width, tc.value))
		got, err := tr.Read(reg, tc.width)
		require.NoError(t, err)
		assert.Equal(t, tc.value, got, "width %d", tc.width)
	}
}
