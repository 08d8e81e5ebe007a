// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package pivariety

// EREMOTEIO is Linux specific; other platforms only see ENXIO for a NAK.
func isRemoteIO(err error) bool {
	return false
}
