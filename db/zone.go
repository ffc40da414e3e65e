// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Well-known zone types.
const (
	ZoneTypeScript = "script"
	ZoneTypeNative = "native"
	ZoneTypeWorker = "worker"
	ZoneTypeGPU    = "gpu"
)

// filterCacheSize bounds the compiled filters kept per zone.
const filterCacheSize = 32

type zoneKey struct {
	name, typ, location string
}

// A Zone is an independent timeline, such as a thread or a process, with
// its own event list and derived indices.
type Zone struct {
	db      *Database
	id      int
	key     zoneKey
	events  *EventList
	frames  *FrameList
	marks   *MarkList
	ranges  *TimeRangeList
	flows   *zoneFlows
	filters *lru.Cache[string, *Filter]
}

func newZone(db *Database, id int, key zoneKey) *Zone {
	z := &Zone{
		db:     db,
		id:     id,
		key:    key,
		events: newEventList(&db.scopeIDs),
	}
	z.frames = NewFrameList(z.events)
	z.marks = NewMarkList(z.events)
	z.ranges = NewTimeRangeList(z.events)
	z.flows = &zoneFlows{index: db.flows, zone: z}
	z.events.RegisterAncillaryList(z.flows)
	// Only fails for a non-positive size.
	z.filters, _ = lru.New[string, *Filter](filterCacheSize)
	return z
}

// Database returns the database that owns the zone.
func (z *Zone) Database() *Database { return z.db }

// ID returns the position of the zone in Database.Zones.
func (z *Zone) ID() int { return z.id }

func (z *Zone) Name() string     { return z.key.name }
func (z *Zone) Type() string     { return z.key.typ }
func (z *Zone) Location() string { return z.key.location }

func (z *Zone) EventList() *EventList         { return z.events }
func (z *Zone) FrameList() *FrameList         { return z.frames }
func (z *Zone) MarkList() *MarkList           { return z.marks }
func (z *Zone) TimeRangeList() *TimeRangeList { return z.ranges }

func (z *Zone) String() string {
	return fmt.Sprintf("%s (%s) %s", z.key.name, z.key.typ, z.key.location)
}

// QueryResult is the outcome of Zone.Query.
type QueryResult struct {
	Expression string
	Filter     *Filter
	Events     []EventID
	Elapsed    time.Duration

	list *EventList
}

// Count returns the number of matching events.
func (r *QueryResult) Count() int { return len(r.Events) }

// Iterator returns an iterator over the matching events.
func (r *QueryResult) Iterator() *EventIterator { return r.list.Iterate(r.Events) }

// Query evaluates a filter expression against the events of the zone. Only
// filter expressions are supported; anything ClassifyExpression reports as
// a structured query fails with ErrQueryNotSupported.
func (z *Zone) Query(expr string) (*QueryResult, error) {
	start := time.Now()
	f, ok := z.filters.Get(expr)
	if !ok {
		var err error
		f, err = NewFilter(expr)
		if err != nil {
			return nil, err
		}
		z.filters.Add(expr, f)
	}

	z.db.mu.Lock()
	defer z.db.unlock()
	ids := f.Apply(z.events)
	return &QueryResult{
		Expression: expr,
		Filter:     f,
		Events:     ids,
		Elapsed:    time.Since(start),
		list:       z.events,
	}, nil
}
