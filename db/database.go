// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db holds decoded Web Tracing Framework traces: zones of
// time-ordered events with their reconstructed scopes and the indices
// derived from them.
//
// A Database is fed by data sources. Each buffer a source receives is
// applied atomically with respect to queries, to View and to other
// sources, and listeners are called after the buffer has been applied.
//
// Zones, event lists, iterators, scopes and the derived indices are not
// locked themselves. Read them freely once every source has ended; while
// sources may still be receiving data, read them only inside View.
package db

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/webtracing/wtf/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// An Option configures a Database.
type Option func(*Database)

// WithLogger sets the logger used for warnings about malformed input and
// for source lifecycle events. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(d *Database) { d.logger = l }
}

// WithMetrics registers ingestion metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(d *Database) { d.reg = reg }
}

// Database is the root of a set of loaded traces.
type Database struct {
	mu      sync.Mutex
	logger  *zap.Logger
	reg     prometheus.Registerer
	metrics *metrics.Metrics

	types     *EventTypeRegistry
	zones     []*Zone
	zoneIndex map[zoneKey]*Zone
	flows     *FlowIndex
	sources   []DataSource

	scopeIDs     counter
	timeRangeIDs counter
	flowIDs      counter

	timebase     int64
	haveTimebase bool

	zonesAdded   []func([]*Zone)
	invalidated  []func()
	sourceErrors []func(DataSource, error)
	queued       []func()
}

// New returns an empty database.
func New(opts ...Option) (*Database, error) {
	d := &Database{
		logger:    zap.NewNop(),
		types:     newEventTypeRegistry(),
		zoneIndex: make(map[zoneKey]*Zone),
		flows:     newFlowIndex(),
	}
	for _, opt := range opts {
		opt(d)
	}
	m, err := metrics.New(d.reg)
	if err != nil {
		return nil, err
	}
	d.metrics = m
	return d, nil
}

// unlock releases d.mu and then runs the listener calls queued while it
// was held.
func (d *Database) unlock() {
	q := d.queued
	d.queued = nil
	d.mu.Unlock()
	for _, f := range q {
		f()
	}
}

// EventTypes returns the registry shared by all sources.
func (d *Database) EventTypes() *EventTypeRegistry { return d.types }

// Flows returns the flows of all zones.
func (d *Database) Flows() *FlowIndex { return d.flows }

// Zones returns the zones in creation order.
func (d *Database) Zones() []*Zone {
	d.mu.Lock()
	defer d.unlock()
	return slices.Clone(d.zones)
}

// Sources returns the data sources added so far.
func (d *Database) Sources() []DataSource {
	d.mu.Lock()
	defer d.unlock()
	return slices.Clone(d.sources)
}

// CreateOrGetZone returns the zone with the given identity, creating it if
// needed. Listeners registered with OnZonesAdded are told about new zones.
func (d *Database) CreateOrGetZone(name, typ, location string) *Zone {
	d.mu.Lock()
	defer d.unlock()
	return d.createOrGetZone(name, typ, location)
}

func (d *Database) createOrGetZone(name, typ, location string) *Zone {
	key := zoneKey{name, typ, location}
	if z, ok := d.zoneIndex[key]; ok {
		return z
	}
	z := newZone(d, len(d.zones), key)
	d.zones = append(d.zones, z)
	d.zoneIndex[key] = z
	d.metrics.SetZones(len(d.zones))
	d.logger.Debug("zone created", zap.String("name", name), zap.String("type", typ), zap.String("location", location))
	added := []*Zone{z}
	for _, fn := range d.zonesAdded {
		d.queue(func() { fn(added) })
	}
	return z
}

// resetZoneInfo renames a zone. The zone keeps its events. If another zone
// already has the new identity, lookups continue to find that one.
func (d *Database) resetZoneInfo(z *Zone, name, typ, location string) {
	if d.zoneIndex[z.key] == z {
		delete(d.zoneIndex, z.key)
	}
	z.key = zoneKey{name, typ, location}
	if _, ok := d.zoneIndex[z.key]; !ok {
		d.zoneIndex[z.key] = z
	}
}

// ComputeTimeDelay returns the offset, in milliseconds, to add to the event
// times of a source with the given timebase so that it lines up with the
// other sources. The first source to ask defines the reference timebase.
func (d *Database) ComputeTimeDelay(timebase int64) float64 {
	d.mu.Lock()
	defer d.unlock()
	return d.computeTimeDelay(timebase)
}

func (d *Database) computeTimeDelay(timebase int64) float64 {
	if !d.haveTimebase {
		d.timebase = timebase
		d.haveTimebase = true
	}
	return float64(timebase - d.timebase)
}

// Timebase returns the reference timebase, in milliseconds since the Unix
// epoch, and whether one has been set.
func (d *Database) Timebase() (int64, bool) {
	d.mu.Lock()
	defer d.unlock()
	return d.timebase, d.haveTimebase
}

// FirstEventTime returns the earliest event time across all zones.
func (d *Database) FirstEventTime() float64 {
	d.mu.Lock()
	defer d.unlock()
	first, found := 0.0, false
	for _, z := range d.zones {
		if z.events.Len() == 0 {
			continue
		}
		if t := z.events.FirstEventTime(); !found || t < first {
			first, found = t, true
		}
	}
	return first
}

// LastEventTime returns the latest event time across all zones.
func (d *Database) LastEventTime() float64 {
	d.mu.Lock()
	defer d.unlock()
	last, found := 0.0, false
	for _, z := range d.zones {
		if z.events.Len() == 0 {
			continue
		}
		if t := z.events.LastEventTime(); !found || t > last {
			last, found = t, true
		}
	}
	return last
}

// View calls fn with the zones of d while holding the database lock, so
// that no source inserts events while fn runs. fn may read zones, event
// lists, iterators, scopes, indices and flows. It must not call methods
// that take the lock themselves: the methods of Database, Zone.Query and
// the methods of data sources.
func (d *Database) View(fn func(zones []*Zone)) {
	d.mu.Lock()
	defer d.unlock()
	fn(slices.Clone(d.zones))
}

// OnZonesAdded registers fn to be called with each batch of new zones.
// Listeners run after the database lock is released; to read the zones
// while other sources are loading, use View.
func (d *Database) OnZonesAdded(fn func([]*Zone)) {
	d.mu.Lock()
	defer d.unlock()
	d.zonesAdded = append(d.zonesAdded, fn)
}

// OnInvalidated registers fn to be called after each buffer that added
// events. As with OnZonesAdded, fn reads zones through View.
func (d *Database) OnInvalidated(fn func()) {
	d.mu.Lock()
	defer d.unlock()
	d.invalidated = append(d.invalidated, fn)
}

// OnSourceError registers fn to be called when a source fails.
func (d *Database) OnSourceError(fn func(DataSource, error)) {
	d.mu.Lock()
	defer d.unlock()
	d.sourceErrors = append(d.sourceErrors, fn)
}

func (d *Database) queue(fn func()) { d.queued = append(d.queued, fn) }

func (d *Database) invalidate() {
	for _, fn := range d.invalidated {
		d.queue(fn)
	}
}

func (d *Database) addSource(src DataSource) {
	d.sources = append(d.sources, src)
}

func (d *Database) sourceInitialized(src DataSource) {
	d.logger.Info("source initialized", zap.String("source", src.Name()), zap.Stringer("id", src.ID()))
}

func (d *Database) sourceError(src DataSource, err error) {
	d.metrics.SourceError()
	d.logger.Error("source failed", zap.String("source", src.Name()), zap.Error(err))
	for _, fn := range d.sourceErrors {
		d.queue(func() { fn(src, err) })
	}
}

func (d *Database) sourceEnded(src DataSource) {
	d.logger.Info("source ended", zap.String("source", src.Name()))
}
