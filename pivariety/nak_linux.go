// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build linux

package pivariety

import (
	"errors"
	"syscall"
)

func isRemoteIO(err error) bool {
	return errors.Is(err, syscall.EREMOTEIO)
}
