// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"github.com/webtracing/wtf/internal/event"
	"golang.org/x/exp/slices"
)

// EventRef names an event in a particular zone.
type EventRef struct {
	Zone *Zone
	ID   EventID
}

// Valid reports whether r refers to an event.
func (r EventRef) Valid() bool { return r.Zone != nil && r.ID != NoEvent }

// Event returns a snapshot of the referenced event.
func (r EventRef) Event() Event { return r.Zone.events.Event(r.ID) }

var noRef = EventRef{ID: NoEvent}

// A Flow is a causal chain of events, possibly spanning zones: a branch,
// any number of extends and a terminate. Flows referenced before their
// branch was seen are created without one.
type Flow struct {
	index     *FlowIndex
	id        uint32
	parentID  uint32
	branch    EventRef
	extends   []EventRef
	terminate EventRef
	data      []EventRef
}

// ID returns the database-wide ID of the flow.
func (f *Flow) ID() uint32 { return f.id }

// ParentID returns the ID of the flow this one branched from, or 0.
func (f *Flow) ParentID() uint32 { return f.parentID }

// Parent returns the flow this one branched from, or nil.
func (f *Flow) Parent() *Flow {
	if f.parentID == 0 {
		return nil
	}
	return f.index.Flow(f.parentID)
}

func (f *Flow) BranchEvent() EventRef    { return f.branch }
func (f *Flow) TerminateEvent() EventRef { return f.terminate }
func (f *Flow) ExtendEvents() []EventRef { return slices.Clone(f.extends) }
func (f *Flow) Terminated() bool         { return f.terminate.Valid() }

// Data returns the name and value arguments of the branch followed by the
// pairs added by wtf.flow#appendData, later names replacing earlier ones.
func (f *Flow) Data() Args {
	var out Args
	add := func(r EventRef) {
		args := r.Event().Args
		name, _ := args.Get("name")
		value, _ := args.Get("value")
		if s, ok := name.(string); ok {
			out.Set(s, value)
		}
	}
	if f.branch.Valid() {
		add(f.branch)
	}
	for _, r := range f.data {
		add(r)
	}
	return out
}

// FlowIndex holds the flows of every zone of a database.
type FlowIndex struct {
	flows []*Flow
	byID  map[uint32]*Flow
}

func newFlowIndex() *FlowIndex {
	return &FlowIndex{byID: make(map[uint32]*Flow)}
}

// Count returns the number of flows.
func (x *FlowIndex) Count() int { return len(x.flows) }

// All returns the flows in the order they were first referenced.
func (x *FlowIndex) All() []*Flow { return slices.Clone(x.flows) }

// Flow returns the flow with the given ID, or nil.
func (x *FlowIndex) Flow(id uint32) *Flow { return x.byID[id] }

func (x *FlowIndex) get(id uint32) *Flow {
	f, ok := x.byID[id]
	if !ok {
		f = &Flow{index: x, id: id, branch: noRef, terminate: noRef}
		x.flows = append(x.flows, f)
		x.byID[id] = f
	}
	return f
}

// zoneFlows feeds the flow events of one zone into the shared index.
type zoneFlows struct {
	index *FlowIndex
	zone  *Zone
}

func (zf *zoneFlows) HandleEvents(it *EventIterator) {
	for ; !it.Done(); it.Next() {
		kind := it.Type().kind
		switch kind {
		case event.KindFlowBranch, event.KindFlowExtend, event.KindFlowTerminate, event.KindFlowAppendData:
		default:
			continue
		}
		args := it.Args()
		id, ok := uint32Arg(args, 0)
		if !ok {
			continue
		}
		ref := EventRef{Zone: zf.zone, ID: it.ID()}
		f := zf.index.get(id)
		switch kind {
		case event.KindFlowBranch:
			if !f.branch.Valid() {
				f.branch = ref
			}
			if parent, ok := uint32Arg(args, 1); ok && parent != 0 && parent != id {
				f.parentID = parent
				zf.index.get(parent)
			}
		case event.KindFlowExtend:
			f.extends = append(f.extends, ref)
		case event.KindFlowTerminate:
			if !f.terminate.Valid() {
				f.terminate = ref
			}
		case event.KindFlowAppendData:
			f.data = append(f.data, ref)
		}
	}
}
