// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mapping correlates I²C bus numbers, V4L2 device nodes and detected
// sensor identities, and persists the correlation so repeated lookups do not
// re-probe hardware.
package mapping

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/arducam/go-pivariety/pivariety"
)

// SchemaVersion of the persisted table format.
const SchemaVersion = 1

// DefaultTablePath is where the detection tool leaves the mapping table.
const DefaultTablePath = "/opt/arducam/arducam_i2c_map.json"

// Entry describes one physical CSI camera slot. Identity stays nil until a
// probe succeeded on the bus; a nil identity still occupies the slot so that
// later runs know the bus was scanned and found empty.
type Entry struct {
	Bus        int                       `json:"bus" yaml:"bus"`
	DeviceNode string                    `json:"device_node,omitempty" yaml:"device_node,omitempty"`
	Identity   *pivariety.SensorIdentity `json:"identity,omitempty" yaml:"identity,omitempty"`
}

// Table is the full set of entries for a platform, ordered by bus number.
type Table struct {
	SchemaVersion int     `json:"schema_version" yaml:"schema_version"`
	Entries       []Entry `json:"entries" yaml:"entries"`
}

// ByBus returns the entry for a bus number, or nil.
func (t *Table) ByBus(bus int) *Entry {
	for i := range t.Entries {
		if t.Entries[i].Bus == bus {
			return &t.Entries[i]
		}
	}
	return nil
}

// ByNode returns the entry for a device node path, or nil. Matching is by
// base name, so "/dev/video0" and "video0" are the same node.
func (t *Table) ByNode(node string) *Entry {
	base := filepath.Base(node)
	for i := range t.Entries {
		if t.Entries[i].DeviceNode != "" && filepath.Base(t.Entries[i].DeviceNode) == base {
			return &t.Entries[i]
		}
	}
	return nil
}

// Load reads a persisted table. A missing file is reported with an error
// satisfying errors.Is(err, fs.ErrNotExist); that is the normal trigger for
// enumeration, not a failure.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t := &Table{}
	if isYAMLPath(path) {
		err = yaml.Unmarshal(data, t)
	} else {
		err = json.Unmarshal(data, t)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "mapping: parse %s", path)
	}
	if t.SchemaVersion != SchemaVersion {
		return nil, errors.Errorf("mapping: %s has schema version %d, want %d", path, t.SchemaVersion, SchemaVersion)
	}
	return t, nil
}

// Save persists the table atomically. The serialization is deterministic:
// saving the same table twice produces byte-identical files.
func (t *Table) Save(path string) error {
	var data []byte
	var err error
	if isYAMLPath(path) {
		data, err = yaml.Marshal(t)
	} else {
		data, err = json.MarshalIndent(t, "", "    ")
	}
	if err != nil {
		return errors.Wrapf(err, "mapping: encode %s", path)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "mapping: create table directory")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "mapping: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "mapping: replace %s", path)
	}
	return nil
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
