// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mapping

import (
	"io/fs"
	"sort"
	"strconv"
	"sync"

	"github.com/edaniels/golog"
	"github.com/maruel/interrupt"
	"github.com/pkg/errors"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"

	"github.com/arducam/go-pivariety/pivariety"
)

var (
	// ErrUnknownDevice means the requested bus or node has no table entry.
	ErrUnknownDevice = errors.New("unknown device")
	// ErrInvalidRequest means a lookup named both selectors or neither.
	ErrInvalidRequest = errors.New("lookup must name exactly one of bus or device node")
)

// BusOpener enumerates and opens the platform's I²C buses.
type BusOpener interface {
	Enumerate() ([]int, error)
	Open(number int) (i2c.BusCloser, error)
}

// PeriphOpener is the production BusOpener, backed by periph.io's host bus
// registry. host.Init must have run before it is used.
type PeriphOpener struct{}

// Enumerate returns the registered bus numbers, sorted.
func (PeriphOpener) Enumerate() ([]int, error) {
	var out []int
	for _, ref := range i2creg.All() {
		if ref.Number >= 0 {
			out = append(out, ref.Number)
		}
	}
	sort.Ints(out)
	return out, nil
}

// Open opens one bus by number.
func (PeriphOpener) Open(number int) (i2c.BusCloser, error) {
	bus, err := i2creg.Open(strconv.Itoa(number))
	if err != nil {
		return nil, errors.Wrapf(pivariety.ErrUnavailable, "i2c-%d: %s", number, err)
	}
	return bus, nil
}

// Lookup selects a mapping entry by exactly one of bus number or device node
// path.
type Lookup struct {
	Bus  *int
	Node string
}

// Resolver owns the mapping table for its process lifetime: it loads the
// persisted table on first use, triggers enumeration when the file is absent,
// and is the single writer of the file. While a table is loaded no implicit
// re-probe happens; deleting the file is the supported invalidation.
type Resolver struct {
	path     string
	buses    BusOpener
	registry DeviceRegistry
	logger   golog.Logger

	mu    sync.Mutex
	table *Table
}

// NewResolver returns a resolver persisting to path.
func NewResolver(path string, buses BusOpener, registry DeviceRegistry, logger golog.Logger) *Resolver {
	if path == "" {
		path = DefaultTablePath
	}
	return &Resolver{path: path, buses: buses, registry: registry, logger: logger}
}

// Table returns the loaded mapping table, loading the persisted file or
// enumerating hardware as needed.
func (r *Resolver) Table() (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tableLocked()
}

func (r *Resolver) tableLocked() (*Table, error) {
	if r.table != nil {
		return r.table, nil
	}
	t, err := Load(r.path)
	if err == nil {
		r.logger.Infof("loaded mapping table from %s", r.path)
		r.table = t
		return t, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	r.logger.Infof("mapping table %s not found, enumerating buses", r.path)
	return r.refreshLocked()
}

// Refresh re-enumerates the hardware and persists a fresh table, regardless
// of what is on disk.
func (r *Resolver) Refresh() (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshLocked()
}

func (r *Resolver) refreshLocked() (*Table, error) {
	t, err := r.enumerate()
	if err != nil {
		return nil, err
	}
	if err := t.Save(r.path); err != nil {
		return nil, err
	}
	r.logger.Infof("saved mapping table to %s", r.path)
	r.table = t
	return t, nil
}

// Invalidate drops the in-memory table so the next access reloads or
// re-enumerates. The invalidation watcher calls this when the operator
// deletes the persisted file.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.table = nil
	r.mu.Unlock()
}

// Resolve looks up one entry. The request must name exactly one selector;
// anything else is rejected before any file or hardware access.
func (r *Resolver) Resolve(req Lookup) (*Entry, error) {
	if (req.Bus != nil) == (req.Node != "") {
		return nil, ErrInvalidRequest
	}
	t, err := r.Table()
	if err != nil {
		return nil, err
	}
	if req.Bus != nil {
		if e := t.ByBus(*req.Bus); e != nil {
			return e, nil
		}
		return nil, errors.Wrapf(ErrUnknownDevice, "bus %d", *req.Bus)
	}
	if e := t.ByNode(req.Node); e != nil {
		return e, nil
	}
	return nil, errors.Wrapf(ErrUnknownDevice, "node %s", req.Node)
}

// enumerate probes every platform bus and correlates device nodes. Buses
// that NAK the identity probe are recorded with a nil identity so that later
// runs know the slot is empty without touching hardware again.
func (r *Resolver) enumerate() (*Table, error) {
	buses, err := r.buses.Enumerate()
	if err != nil {
		return nil, err
	}
	sort.Ints(buses)

	nodeByBus := map[int]string{}
	if r.registry != nil {
		nodes, err := r.registry.Nodes()
		if err != nil {
			return nil, err
		}
		sort.Strings(nodes)
		for _, node := range nodes {
			bus, err := r.registry.BusForNode(node)
			if err != nil {
				if errors.Is(err, ErrNotResolvable) {
					r.logger.Debugf("skipping %s: %s", node, err)
					continue
				}
				return nil, err
			}
			if _, dup := nodeByBus[bus]; !dup {
				nodeByBus[bus] = node
			}
		}
	}

	t := &Table{SchemaVersion: SchemaVersion}
	for _, n := range buses {
		if interrupt.IsSet() {
			return nil, errors.New("mapping: enumeration interrupted")
		}
		ident, err := r.probe(n)
		if err != nil {
			return nil, errors.Wrapf(err, "probing i2c-%d", n)
		}
		if ident == nil {
			r.logger.Debugf("i2c-%d: no sensor", n)
		} else {
			r.logger.Infof("i2c-%d: found %s", n, ident)
		}
		t.Entries = append(t.Entries, Entry{Bus: n, DeviceNode: nodeByBus[n], Identity: ident})
	}
	return t, nil
}

func (r *Resolver) probe(bus int) (*pivariety.SensorIdentity, error) {
	b, err := r.buses.Open(bus)
	if err != nil {
		return nil, err
	}
	dev := pivariety.New(b)
	defer dev.Close()
	return dev.Identity()
}
