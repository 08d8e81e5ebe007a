// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pivariety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUintLayouts(t *testing.T) {
	win := regWindow(0x12345678)
	for _, tc := range []struct {
		field Field
		want  uint32
	}{
		{fieldDeviceID, 0x78},
		{fieldSensorID, 0x5678},
		{fieldControlID, 0x345678},
		{fieldDimension, 0x12345678},
	} {
		got, err := decodeUint(win, tc.field)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "field %+v", tc.field)
	}
}

func TestDecodeUintBadLayout(t *testing.T) {
	win := regWindow(0)
	for _, f := range []Field{
		{Off: -1, Len: 1},
		{Off: 0, Len: 0},
		{Off: 0, Len: 5},
		{Off: 3, Len: 2},
	} {
		_, err := decodeUint(win, f)
		require.ErrorIs(t, err, ErrMalformedTable, "field %+v", f)
	}
}

func TestDecodeInt32(t *testing.T) {
	assert.Equal(t, int32(90), decodeInt32(90))
	assert.Equal(t, int32(-1), decodeInt32(0xFFFFFFFF))
	assert.Equal(t, int32(-2147483648), decodeInt32(0x80000000))
}

func TestDecodePixelFormatType(t *testing.T) {
	typ, err := decodePixelFormatType(0x1E)
	require.NoError(t, err)
	assert.Equal(t, YUV422_8Bit, typ)
	assert.Equal(t, "YUV422_8BIT", typ.String())

	_, err = decodePixelFormatType(0x99)
	require.ErrorIs(t, err, ErrMalformedTable)
}

func TestDecodeISPVersion(t *testing.T) {
	// v2.03 built 2023/05/10: id 0x0203, date 23<<9 | 5<<5 | 10.
	v := uint32(0x0203)<<16 | 23<<9 | 5<<5 | 10
	assert.Equal(t, "v2.03 2023/05/10", decodeISPVersion(v))
}

func TestControlName(t *testing.T) {
	assert.Equal(t, "Framerate", ControlName(0x981906))
	assert.Equal(t, "Exposure", ControlName(0x980911))
	assert.Equal(t, "Unknown", ControlName(0xDEADBE))
}
