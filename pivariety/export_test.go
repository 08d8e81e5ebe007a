// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pivariety

// DisableSettle drops the control settle delay so long table walks in tests
// do not sleep between controls.
func (d *Dev) DisableSettle() {
	d.settle = 0
}
