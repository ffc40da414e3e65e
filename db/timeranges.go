// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"github.com/webtracing/wtf/internal/event"
	"golang.org/x/exp/slices"
)

// A TimeRange is an interval opened by wtf.timeRange#begin and closed by
// the wtf.timeRange#end with the same ID. Ranges may overlap; each is
// assigned the lowest level not used by a range open at its begin time.
type TimeRange struct {
	id         uint32
	name       string
	value      any
	beginEvent EventID
	endEvent   EventID
	begin, end float64
	level      int
}

// ID returns the database-wide ID of the range.
func (r *TimeRange) ID() uint32          { return r.id }
func (r *TimeRange) Name() string        { return r.name }
func (r *TimeRange) Value() any          { return r.value }
func (r *TimeRange) BeginEvent() EventID { return r.beginEvent }
func (r *TimeRange) EndEvent() EventID   { return r.endEvent }
func (r *TimeRange) Time() float64       { return r.begin }
func (r *TimeRange) Level() int          { return r.level }
func (r *TimeRange) Closed() bool        { return r.endEvent != NoEvent }

// EndTime returns the end of a closed range, or its begin time if open.
func (r *TimeRange) EndTime() float64 {
	if !r.Closed() {
		return r.begin
	}
	return r.end
}

func (r *TimeRange) Duration() float64 { return r.EndTime() - r.begin }

// TimeRangeList indexes the time ranges of an EventList by begin time.
type TimeRangeList struct {
	ranges   []*TimeRange
	byID     map[uint32]*TimeRange
	open     []*TimeRange
	maxLevel int
}

// NewTimeRangeList returns a time range index registered with l.
func NewTimeRangeList(l *EventList) *TimeRangeList {
	tl := &TimeRangeList{byID: make(map[uint32]*TimeRange)}
	l.RegisterAncillaryList(tl)
	return tl
}

func (tl *TimeRangeList) HandleEvents(it *EventIterator) {
	for ; !it.Done(); it.Next() {
		switch it.Type().kind {
		case event.KindTimeRangeBegin:
			id, ok := uint32Arg(it.Args(), 0)
			if !ok {
				continue
			}
			r := &TimeRange{
				id:         id,
				beginEvent: it.ID(),
				endEvent:   NoEvent,
				begin:      it.Time(),
				level:      tl.freeLevel(),
			}
			args := it.Args()
			if v, ok := args.Get("name"); ok {
				r.name, _ = v.(string)
			}
			r.value, _ = args.Get("value")
			tl.ranges = append(tl.ranges, r)
			tl.byID[id] = r
			tl.open = append(tl.open, r)
			tl.maxLevel = max(tl.maxLevel, r.level+1)
		case event.KindTimeRangeEnd:
			id, ok := uint32Arg(it.Args(), 0)
			if !ok {
				continue
			}
			r, ok := tl.byID[id]
			if !ok || r.Closed() {
				continue
			}
			r.endEvent = it.ID()
			r.end = it.Time()
			tl.open = slices.DeleteFunc(tl.open, func(o *TimeRange) bool { return o == r })
		}
	}
}

func (tl *TimeRangeList) freeLevel() int {
	for level := 0; ; level++ {
		if !slices.ContainsFunc(tl.open, func(r *TimeRange) bool { return r.level == level }) {
			return level
		}
	}
}

// Count returns the number of ranges begun, open or closed.
func (tl *TimeRangeList) Count() int { return len(tl.ranges) }

func (tl *TimeRangeList) All() []*TimeRange { return slices.Clone(tl.ranges) }

// TimeRange returns the range with the given database-wide ID, or nil.
func (tl *TimeRangeList) TimeRange(id uint32) *TimeRange { return tl.byID[id] }

// MaximumLevel returns the number of levels needed to draw the ranges
// without overlap.
func (tl *TimeRangeList) MaximumLevel() int { return tl.maxLevel }

// Intersecting returns the closed ranges overlapping [start, end].
func (tl *TimeRangeList) Intersecting(start, end float64) []*TimeRange {
	hi, _ := slices.BinarySearchFunc(tl.ranges, end, func(r *TimeRange, t float64) int {
		if r.begin <= t {
			return -1
		}
		return 1
	})
	var out []*TimeRange
	for _, r := range tl.ranges[:hi] {
		if r.Closed() && r.end >= start {
			out = append(out, r)
		}
	}
	return out
}

// AtTime returns the closed ranges containing t.
func (tl *TimeRangeList) AtTime(t float64) []*TimeRange { return tl.Intersecting(t, t) }
