// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pivariety

import "github.com/pkg/errors"

var (
	// ErrUnavailable means the I²C bus could not be opened or is gone.
	ErrUnavailable = errors.New("transport unavailable")
	// ErrTimeout means a register transaction did not complete within the
	// transport's retry budget.
	ErrTimeout = errors.New("transport timeout")
	// ErrNak means the device did not acknowledge its address. During an
	// identity probe this is how an empty CSI slot looks.
	ErrNak = errors.New("device nak")
	// ErrMalformedTable means register data violated a declared invariant of
	// the vendor protocol. This is a firmware consistency failure, not a
	// recoverable condition.
	ErrMalformedTable = errors.New("malformed register table")
)
