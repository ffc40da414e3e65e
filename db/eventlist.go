// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"cmp"

	"github.com/webtracing/wtf/internal/event"
	"github.com/webtracing/wtf/wire"
	"golang.org/x/exp/slices"
)

// EventID identifies an event within its EventList. It is the position of
// the event in time order.
type EventID int32

// NoEvent is the EventID of a missing event.
const NoEvent EventID = -1

// Event is a snapshot of one decoded event.
type Event struct {
	ID    EventID
	Type  *EventType
	Time  float64
	Args  Args
	Depth int
	// Scope is the scope opened or closed by the event, if any.
	Scope *Scope
}

type eventRecord struct {
	typ    *EventType
	time   float64
	args   Args
	parent EventID // enter event of the enclosing scope
	scope  int32
	depth  int32
	tag    any
}

// AncillaryList is an index derived from the events of an EventList. It is
// told about new events incrementally: each call covers only the events
// appended since the previous call.
type AncillaryList interface {
	HandleEvents(it *EventIterator)
}

// counter hands out session-unique IDs.
type counter struct{ n uint64 }

func (c *counter) next() uint64 {
	c.n++
	return c.n
}

// EventList is the time-ordered store of the events of one zone.
//
// Scope structure is reconstructed as events are inserted: an event of the
// scope class opens a scope nested in the innermost open one, and
// wtf.scope#leave closes the innermost open scope.
type EventList struct {
	events   []eventRecord
	scopes   []*Scope
	stack    []int32
	maxDepth int
	scopeIDs *counter

	ancillary []AncillaryList
	notified  int
	batch     int
}

// NewEventList returns an empty list with its own scope ID counter.
func NewEventList() *EventList {
	return newEventList(new(counter))
}

func newEventList(ids *counter) *EventList {
	return &EventList{scopeIDs: ids}
}

// Len returns the number of events.
func (l *EventList) Len() int { return len(l.events) }

// FirstEventTime returns the time of the first event, or zero.
func (l *EventList) FirstEventTime() float64 {
	if len(l.events) == 0 {
		return 0
	}
	return l.events[0].time
}

// LastEventTime returns the time of the last event, or zero.
func (l *EventList) LastEventTime() float64 {
	if len(l.events) == 0 {
		return 0
	}
	return l.events[len(l.events)-1].time
}

// MaximumScopeDepth returns one more than the deepest event depth, that
// is, the number of nesting levels needed to draw the list.
func (l *EventList) MaximumScopeDepth() int { return l.maxDepth }

// OpenScopes returns the number of scopes entered but not yet left.
func (l *EventList) OpenScopes() int { return len(l.stack) }

// ScopeCount returns the number of scopes seen so far.
func (l *EventList) ScopeCount() int { return len(l.scopes) }

// Event returns a snapshot of the event with the given ID.
func (l *EventList) Event(id EventID) Event {
	rec := &l.events[id]
	e := Event{
		ID:    id,
		Type:  rec.typ,
		Time:  rec.time,
		Args:  rec.args,
		Depth: int(rec.depth),
	}
	if rec.scope != noScope {
		e.Scope = l.scopes[rec.scope]
	}
	return e
}

// eventName returns the display name of an event: the name argument of a
// generic scope enter, the type name otherwise.
func (l *EventList) eventName(id EventID) string {
	rec := &l.events[id]
	if rec.typ.kind == event.KindScopeEnter && len(rec.args) > 0 {
		if name, ok := rec.args[0].Value.(string); ok {
			return name
		}
	}
	return rec.typ.name
}

// BeginInserting defers ancillary list notification until the matching
// EndInserting, so a batch of inserts is delivered as one range.
func (l *EventList) BeginInserting() { l.batch++ }

// EndInserting ends a batch started by BeginInserting.
func (l *EventList) EndInserting() {
	if l.batch == 0 {
		panic("db: EndInserting without BeginInserting")
	}
	l.batch--
	if l.batch == 0 {
		l.notify()
	}
}

// Insert appends an event. Events must arrive in time order; a time
// earlier than the last event's is clamped to it. Clamped events keep
// their order but lose their real time, so a frame or mark made of them
// can end up with zero duration.
func (l *EventList) Insert(t *EventType, time float64, args Args) EventID {
	if n := len(l.events); n > 0 && time < l.events[n-1].time {
		time = l.events[n-1].time
	}
	id := EventID(len(l.events))
	rec := eventRecord{
		typ:    t,
		time:   time,
		args:   args,
		parent: NoEvent,
		scope:  noScope,
		depth:  int32(len(l.stack)),
	}
	top := l.top()
	if top != nil {
		rec.parent = top.enter
	}
	switch {
	case t.class == wire.ClassScope:
		s := l.newScope(id, top)
		rec.scope = s.index
		l.stack = append(l.stack, s.index)
	case t.kind == event.KindScopeLeave:
		if top == nil {
			// Leave without enter: keep the event as a plain root event.
			break
		}
		l.stack = l.stack[:len(l.stack)-1]
		rec.scope = top.index
		rec.depth = int32(top.depth)
		rec.parent = l.enterOf(top.parent)
		l.events = append(l.events, rec)
		top.close(id)
		l.inserted(rec.depth)
		return id
	case t.flags.Has(wire.FlagAppendScopeData):
		if top != nil {
			top.dataEvents = append(top.dataEvents, id)
			top.dataValid = false
		}
	}
	l.events = append(l.events, rec)
	l.inserted(rec.depth)
	return id
}

func (l *EventList) inserted(depth int32) {
	if int(depth)+1 > l.maxDepth {
		l.maxDepth = int(depth) + 1
	}
	if l.batch == 0 {
		l.notify()
	}
}

func (l *EventList) top() *Scope {
	if len(l.stack) == 0 {
		return nil
	}
	return l.scopes[l.stack[len(l.stack)-1]]
}

func (l *EventList) enterOf(scope int32) EventID {
	if scope == noScope {
		return NoEvent
	}
	return l.scopes[scope].enter
}

func (l *EventList) newScope(enter EventID, parent *Scope) *Scope {
	s := &Scope{
		list:   l,
		id:     l.scopeIDs.next(),
		index:  int32(len(l.scopes)),
		enter:  enter,
		leave:  NoEvent,
		parent: noScope,
	}
	if parent != nil {
		s.parent = parent.index
		s.depth = parent.depth + 1
		parent.children = append(parent.children, s.index)
	}
	l.scopes = append(l.scopes, s)
	return s
}

// RegisterAncillaryList adds a derived index. It is immediately handed the
// events already delivered to other lists and then every later batch.
func (l *EventList) RegisterAncillaryList(a AncillaryList) {
	l.ancillary = append(l.ancillary, a)
	if l.notified > 0 {
		a.HandleEvents(l.rangeIterator(0, l.notified))
	}
}

// UnregisterAncillaryList removes a derived index.
func (l *EventList) UnregisterAncillaryList(a AncillaryList) {
	l.ancillary = slices.DeleteFunc(l.ancillary, func(b AncillaryList) bool { return a == b })
}

// notify delivers the events appended since the last notification. The
// range is claimed before any callback runs, so callbacks may read the list.
func (l *EventList) notify() {
	first, end := l.notified, len(l.events)
	if first == end {
		return
	}
	l.notified = end
	for _, a := range slices.Clone(l.ancillary) {
		a.HandleEvents(l.rangeIterator(first, end))
	}
}

// Begin returns an iterator over every event.
func (l *EventList) Begin() *EventIterator {
	return l.rangeIterator(0, len(l.events))
}

// BeginTimeRange returns an iterator over the events with start <= time <= end.
// If inclusive is set, the iterator instead starts at the outermost scope
// that is still open at start, so that scopes overlapping the range are
// visited with their enter events.
func (l *EventList) BeginTimeRange(start, end float64, inclusive bool) *EventIterator {
	first := l.search(start)
	last, _ := slices.BinarySearchFunc(l.events, end, func(r eventRecord, t float64) int {
		if r.time <= t {
			return -1
		}
		return 1
	})
	if inclusive && first > 0 {
		first = l.outermostOpenAt(first, start)
	}
	if last < first {
		last = first
	}
	return l.rangeIterator(first, last)
}

// outermostOpenAt walks the ancestors of the event before position pos and
// returns the position of the outermost scope enter still open at t.
func (l *EventList) outermostOpenAt(pos int, t float64) int {
	best := pos
	id := EventID(pos - 1)
	if l.events[id].scope != noScope && l.scopes[l.events[id].scope].leave == id {
		// A leave event closes its scope; continue from the enclosing one.
		id = l.events[id].parent
	}
	for id != NoEvent {
		rec := &l.events[id]
		if rec.scope != noScope {
			s := l.scopes[rec.scope]
			if s.leave == NoEvent || l.events[s.leave].time >= t {
				best = int(id)
			}
		}
		id = rec.parent
	}
	return best
}

// search returns the position of the first event at or after t.
func (l *EventList) search(t float64) int {
	i, _ := slices.BinarySearchFunc(l.events, t, func(r eventRecord, t float64) int {
		return cmp.Compare(r.time, t)
	})
	return i
}

// Iterate returns an iterator over the given events, which must be in
// ascending order.
func (l *EventList) Iterate(ids []EventID) *EventIterator {
	return &EventIterator{list: l, ids: ids, end: len(ids)}
}

func (l *EventList) rangeIterator(first, end int) *EventIterator {
	return &EventIterator{list: l, index: first, first: first, end: end}
}
