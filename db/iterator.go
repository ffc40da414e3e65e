// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"cmp"

	"github.com/webtracing/wtf/wire"
	"golang.org/x/exp/slices"
)

// EventIterator walks events of an EventList in time order. It either
// covers a contiguous range of the list or an explicit set of event IDs,
// as produced by a query.
//
// Iterators never modify the list, except for the per-event tag slot
// reserved for consumers.
type EventIterator struct {
	list  *EventList
	ids   []EventID // nil for a contiguous range
	index int
	first int
	end   int
}

// Done reports whether the iterator has moved past its last event.
func (it *EventIterator) Done() bool { return it.index < it.first || it.index >= it.end }

// Count returns the number of events the iterator covers.
func (it *EventIterator) Count() int { return it.end - it.first }

// Reset moves back to the first event.
func (it *EventIterator) Reset() { it.index = it.first }

// Next moves to the following event.
func (it *EventIterator) Next() { it.index++ }

// NextSibling skips the subtree of the current scope, moving to the event
// following its leave event. On other events, and on iterators over
// explicit IDs, it is the same as Next.
func (it *EventIterator) NextSibling() {
	if it.ids != nil {
		it.index++
		return
	}
	rec := &it.list.events[it.index]
	if rec.scope == noScope || rec.typ.class != wire.ClassScope {
		it.index++
		return
	}
	s := it.list.scopes[rec.scope]
	if s.leave == NoEvent {
		it.index = it.end
		return
	}
	it.index = int(s.leave) + 1
}

// MoveToParent moves to the enter event of the enclosing scope. If that
// event is outside the iterator, the iterator becomes done.
func (it *EventIterator) MoveToParent() {
	parent := it.list.events[it.id()].parent
	if parent == NoEvent {
		it.index = it.end
		return
	}
	if it.ids == nil {
		it.index = int(parent)
	} else {
		i, ok := slices.BinarySearch(it.ids[it.first:it.end], parent)
		if !ok {
			it.index = it.end
			return
		}
		it.index = it.first + i
	}
	if it.Done() {
		it.index = it.end
	}
}

// Seek moves to the first covered event at or after time t.
func (it *EventIterator) Seek(t float64) {
	events := it.list.events
	var i int
	if it.ids == nil {
		i, _ = slices.BinarySearchFunc(events[it.first:it.end], t, func(r eventRecord, t float64) int {
			return cmp.Compare(r.time, t)
		})
	} else {
		i, _ = slices.BinarySearchFunc(it.ids[it.first:it.end], t, func(id EventID, t float64) int {
			return cmp.Compare(events[id].time, t)
		})
	}
	it.index = it.first + i
}

func (it *EventIterator) id() EventID {
	if it.ids != nil {
		return it.ids[it.index]
	}
	return EventID(it.index)
}

func (it *EventIterator) rec() *eventRecord { return &it.list.events[it.id()] }

// ID returns the ID of the current event.
func (it *EventIterator) ID() EventID { return it.id() }

// Event returns a snapshot of the current event.
func (it *EventIterator) Event() Event { return it.list.Event(it.id()) }

func (it *EventIterator) Type() *EventType { return it.rec().typ }

// Name returns the display name of the current event.
func (it *EventIterator) Name() string { return it.list.eventName(it.id()) }

func (it *EventIterator) Time() float64 { return it.rec().time }

// Depth returns the scope depth of the current event.
func (it *EventIterator) Depth() int { return int(it.rec().depth) }

// Args returns the decoded arguments of the current event.
func (it *EventIterator) Args() Args { return it.rec().args }

// Scope returns the scope opened or closed by the current event, or nil.
func (it *EventIterator) Scope() *Scope {
	rec := it.rec()
	if rec.scope == noScope {
		return nil
	}
	return it.list.scopes[rec.scope]
}

// IsScope reports whether the current event opens a scope.
func (it *EventIterator) IsScope() bool {
	rec := it.rec()
	return rec.scope != noScope && rec.typ.class == wire.ClassScope
}

// IsScopeLeave reports whether the current event closes a scope.
func (it *EventIterator) IsScopeLeave() bool {
	rec := it.rec()
	return rec.scope != noScope && rec.typ.class != wire.ClassScope
}

// EndTime returns the leave time of a closed scope and the event time for
// everything else.
func (it *EventIterator) EndTime() float64 {
	if s := it.Scope(); s != nil && it.IsScope() && s.Closed() {
		return it.list.events[s.leave].time
	}
	return it.Time()
}

// Duration returns the total duration of a scope, or zero.
func (it *EventIterator) Duration() float64 {
	if !it.IsScope() {
		return 0
	}
	return it.Scope().TotalDuration()
}

// UserDuration returns the duration of a scope excluding nested system
// time, or zero.
func (it *EventIterator) UserDuration() float64 {
	if !it.IsScope() {
		return 0
	}
	return it.Scope().UserDuration()
}

// Tag returns the consumer-owned value attached to the current event.
func (it *EventIterator) Tag() any { return it.rec().tag }

// SetTag attaches a consumer-owned value to the current event.
func (it *EventIterator) SetTag(v any) { it.rec().tag = v }
