// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mapping

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotResolvable means a device node does not correspond to a CSI sensor
// the platform knows about.
var ErrNotResolvable = errors.New("device node not resolvable")

// DeviceRegistry is the platform's view of CSI capture devices: which nodes
// exist and which I²C bus backs each of them.
type DeviceRegistry interface {
	// Nodes lists the candidate capture device nodes, e.g. /dev/video0.
	Nodes() ([]string, error)
	// BusForNode returns the I²C bus number backing a device node, or an
	// error satisfying errors.Is(err, ErrNotResolvable).
	BusForNode(node string) (int, error)
}

// SysfsRegistry resolves device nodes through the kernel's sysfs tree: the
// video4linux class entry for a node links to its backing I²C client, whose
// directory name is "<bus>-<addr>".
type SysfsRegistry struct {
	// DevDir and SysDir default to /dev and /sys; tests point them at a
	// fixture tree.
	DevDir string
	SysDir string
}

func (r *SysfsRegistry) devDir() string {
	if r.DevDir != "" {
		return r.DevDir
	}
	return "/dev"
}

func (r *SysfsRegistry) sysDir() string {
	if r.SysDir != "" {
		return r.SysDir
	}
	return "/sys"
}

// Nodes lists /dev/video* capture nodes, skipping subdevices.
func (r *SysfsRegistry) Nodes() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(r.devDir(), "video*"))
	if err != nil {
		return nil, errors.Wrap(err, "mapping: list device nodes")
	}
	var out []string
	for _, m := range matches {
		if strings.Contains(filepath.Base(m), "subdev") {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// BusForNode resolves a /dev/videoN node to its backing I²C bus number.
func (r *SysfsRegistry) BusForNode(node string) (int, error) {
	base := filepath.Base(node)
	link := filepath.Join(r.sysDir(), "class", "video4linux", base, "device")
	target, err := os.Readlink(link)
	if err != nil {
		return 0, errors.Wrapf(ErrNotResolvable, "%s: %s", node, err)
	}
	// The I²C client directory is named "<bus>-<addr>", e.g. "10-000c".
	name := filepath.Base(target)
	busPart, _, ok := strings.Cut(name, "-")
	if !ok {
		return 0, errors.Wrapf(ErrNotResolvable, "%s: %q is not an i2c client", node, name)
	}
	bus, err := strconv.Atoi(busPart)
	if err != nil {
		return 0, errors.Wrapf(ErrNotResolvable, "%s: %q is not an i2c client", node, name)
	}
	return bus, nil
}
