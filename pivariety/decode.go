// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pivariety

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Field describes where a descriptor field lives inside a register window:
// byte offset and length within the big endian representation. Keeping the
// layout explicit keeps each decode step independently checkable instead of
// burying shifts in the table walks.
type Field struct {
	Off int
	Len int
}

// Field layouts of the Pivariety descriptor records. Registers are 4-byte
// windows; narrow fields sit at the low end.
var (
	fieldDeviceID      = Field{Off: 3, Len: 1}
	fieldDeviceVersion = Field{Off: 3, Len: 1}
	fieldSensorID      = Field{Off: 2, Len: 2}
	fieldPixType       = Field{Off: 3, Len: 1}
	fieldPixOrder      = Field{Off: 3, Len: 1}
	fieldLanes         = Field{Off: 3, Len: 1}
	fieldDimension     = Field{Off: 0, Len: 4}
	fieldControlID     = Field{Off: 1, Len: 3}
)

// regWindow returns the big endian byte window of a register value.
func regWindow(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

// decodeUint extracts an unsigned field from a register window.
func decodeUint(win []byte, f Field) (uint32, error) {
	if f.Len < 1 || f.Len > 4 || f.Off < 0 || f.Off+f.Len > len(win) {
		return 0, errors.Wrapf(ErrMalformedTable, "field layout %+v out of window %d", f, len(win))
	}
	v := uint32(0)
	for _, b := range win[f.Off : f.Off+f.Len] {
		v = v<<8 | uint32(b)
	}
	return v, nil
}

// decodeInt32 reinterprets a full register value as a signed control bound.
// Control ranges that cross zero use two's complement 32-bit representation.
func decodeInt32(v uint32) int32 {
	return int32(v)
}

// decodePixelFormatType validates a raw format type code against the closed
// set of known codes.
func decodePixelFormatType(raw uint32) (PixelFormatType, error) {
	t := PixelFormatType(raw)
	if _, ok := pixTypeNames[t]; !ok {
		return 0, errors.Wrapf(ErrMalformedTable, "unknown pixel format type 0x%02X", raw)
	}
	return t, nil
}
