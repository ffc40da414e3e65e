// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"github.com/webtracing/wtf/internal/event"
	"github.com/webtracing/wtf/wire"
)

// noScope is the scope index of events that do not belong to a scope.
const noScope = -1

// Scope is one enter/leave bracket of a scope-class event.
//
// Scopes live in an arena owned by their EventList. The parent and children
// links are arena indices, not owning references.
type Scope struct {
	list       *EventList
	id         uint64
	index      int32
	enter      EventID
	leave      EventID
	parent     int32
	depth      int
	children   []int32
	childTime  float64
	systemTime float64

	dataEvents []EventID
	data       Args
	dataValid  bool

	// RenderData is reserved for consumers that draw the scope.
	RenderData any
}

// ID returns the session-unique ID of the scope.
func (s *Scope) ID() uint64 { return s.id }

// Depth returns the distance from the root of the zone. Root scopes have
// depth zero.
func (s *Scope) Depth() int { return s.depth }

// EnterEvent returns the event that opened the scope.
func (s *Scope) EnterEvent() Event { return s.list.Event(s.enter) }

// LeaveEvent returns the event that closed the scope. The second result is
// false while the scope is still open.
func (s *Scope) LeaveEvent() (Event, bool) {
	if s.leave == NoEvent {
		return Event{}, false
	}
	return s.list.Event(s.leave), true
}

// Closed reports whether the leave event has been seen.
func (s *Scope) Closed() bool { return s.leave != NoEvent }

// Name returns the display name of the scope.
func (s *Scope) Name() string { return s.list.eventName(s.enter) }

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	if s.parent == noScope {
		return nil
	}
	return s.list.scopes[s.parent]
}

// Children returns the scopes directly nested in s, in time order.
func (s *Scope) Children() []*Scope {
	cs := make([]*Scope, len(s.children))
	for i, c := range s.children {
		cs[i] = s.list.scopes[c]
	}
	return cs
}

// TotalDuration returns leave time minus enter time, or zero if the scope
// is still open.
func (s *Scope) TotalDuration() float64 {
	if s.leave == NoEvent {
		return 0
	}
	return s.list.events[s.leave].time - s.list.events[s.enter].time
}

// OwnDuration returns the total duration minus the durations of the
// direct children.
func (s *Scope) OwnDuration() float64 {
	if s.leave == NoEvent {
		return 0
	}
	return s.TotalDuration() - s.childTime
}

// UserDuration returns the total duration minus the time spent in nested
// system-time scopes at any depth.
func (s *Scope) UserDuration() float64 {
	if s.leave == NoEvent {
		return 0
	}
	return s.TotalDuration() - s.systemTime
}

// TotalChildSystemTime returns the accumulated duration of nested
// system-time scopes.
func (s *Scope) TotalChildSystemTime() float64 { return s.systemTime }

// Data returns the enter event's arguments merged with every data event
// appended to the scope. The merge happens on first use and again after
// new data arrives.
func (s *Scope) Data() Args {
	if s.dataValid {
		return s.data
	}
	data := append(Args(nil), s.list.events[s.enter].args...)
	for _, id := range s.dataEvents {
		rec := &s.list.events[id]
		if rec.typ.kind == event.KindScopeAppendData {
			if name, ok := rec.args[0].Value.(string); ok {
				data.Set(name, rec.args[1].Value)
			}
			continue
		}
		for _, a := range rec.args {
			data.Set(a.Name, a.Value)
		}
	}
	s.data = data
	s.dataValid = true
	return data
}

// close attaches the leave event and charges the scope's time to its
// ancestors.
func (s *Scope) close(leave EventID) {
	s.leave = leave
	d := s.TotalDuration()
	p := s.Parent()
	if p == nil {
		return
	}
	p.childTime += d
	if !s.list.events[s.enter].typ.flags.Has(wire.FlagSystemTime) {
		return
	}
	// System time already charged by nested system scopes reached every
	// ancestor of s; only the remainder is new.
	extra := d - s.systemTime
	for ; p != nil; p = p.Parent() {
		p.systemTime += extra
	}
}
