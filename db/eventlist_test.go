// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/webtracing/wtf/wire"
)

// buildTree inserts
//
//	a [0, 10]
//	  b [1, 3]
//	  c [4, 6]
//	    app#tick @5
func buildTree(t *testing.T) *listBuilder {
	b := newListBuilder(t)
	b.define("app#tick()", wire.ClassInstance, 0)
	b.enter(0, "a")
	b.enter(1, "b")
	b.leave(3)
	b.enter(4, "c")
	b.insert("app#tick", 5)
	b.leave(6)
	b.leave(10)
	return b
}

func TestScopeTree(t *testing.T) {
	l := buildTree(t).list

	var depths []int
	var names []string
	for it := l.Begin(); !it.Done(); it.Next() {
		depths = append(depths, it.Depth())
		names = append(names, it.Name())
	}
	if diff := cmp.Diff([]int{0, 1, 1, 1, 2, 1, 0}, depths); diff != "" {
		t.Errorf("depths mismatch (-want +got):\n%s", diff)
	}
	wantNames := []string{"a", "b", "wtf.scope#leave", "c", "app#tick", "wtf.scope#leave", "wtf.scope#leave"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if got := l.MaximumScopeDepth(); got != 3 {
		t.Errorf("MaximumScopeDepth = %d, want 3", got)
	}
	if l.ScopeCount() != 3 || l.OpenScopes() != 0 {
		t.Errorf("ScopeCount = %d, OpenScopes = %d; want 3, 0", l.ScopeCount(), l.OpenScopes())
	}

	a := l.Event(0).Scope
	if a.TotalDuration() != 10 || a.OwnDuration() != 6 {
		t.Errorf("a: total %g own %g, want 10 6", a.TotalDuration(), a.OwnDuration())
	}
	var children []string
	for _, c := range a.Children() {
		children = append(children, c.Name())
		if c.Parent() != a {
			t.Errorf("%s: parent is not a", c.Name())
		}
	}
	if diff := cmp.Diff([]string{"b", "c"}, children); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	if leave, ok := a.LeaveEvent(); !ok || leave.ID != 6 || leave.Scope != a {
		t.Errorf("a.LeaveEvent() = %+v, %v", leave, ok)
	}
	if l.Event(4).Scope != nil {
		t.Error("instance event has a scope")
	}
}

func TestScopeDurationInvariants(t *testing.T) {
	l := buildTree(t).list
	for it := l.Begin(); !it.Done(); it.Next() {
		if !it.IsScope() {
			continue
		}
		s := it.Scope()
		var sum float64
		for _, c := range s.Children() {
			sum += c.TotalDuration()
		}
		if sum > s.TotalDuration() {
			t.Errorf("%s: children last %g, longer than the scope's %g", s.Name(), sum, s.TotalDuration())
		}
		if s.OwnDuration() < 0 || s.UserDuration() > s.TotalDuration() {
			t.Errorf("%s: own %g user %g total %g", s.Name(), s.OwnDuration(), s.UserDuration(), s.TotalDuration())
		}
	}
}

func TestSystemTime(t *testing.T) {
	b := newListBuilder(t)
	root := b.enter(0, "root")
	outer := b.enterSystem(10)
	b.enterSystem(20)
	b.leave(30)
	b.leave(50)
	b.leave(100)

	r := b.list.Event(root).Scope
	if got := r.TotalChildSystemTime(); got != 40 {
		t.Errorf("root system time = %g, want 40", got)
	}
	if got := r.UserDuration(); got != 60 {
		t.Errorf("root user duration = %g, want 60", got)
	}
	if got := b.list.Event(outer).Scope.UserDuration(); got != 30 {
		t.Errorf("outer user duration = %g, want 30", got)
	}
}

func TestOpenScope(t *testing.T) {
	b := newListBuilder(t)
	id := b.enter(1, "open")
	b.define("app#tick()", wire.ClassInstance, 0)
	b.insert("app#tick", 4)
	s := b.list.Event(id).Scope
	if s.Closed() || s.TotalDuration() != 0 || s.UserDuration() != 0 {
		t.Errorf("open scope: closed %v total %g user %g", s.Closed(), s.TotalDuration(), s.UserDuration())
	}
	if b.list.OpenScopes() != 1 {
		t.Errorf("OpenScopes = %d, want 1", b.list.OpenScopes())
	}
	it := b.list.Begin()
	it.NextSibling()
	if !it.Done() {
		t.Errorf("NextSibling over an open scope stopped at %d", it.ID())
	}
}

func TestLeaveWithoutEnter(t *testing.T) {
	b := newListBuilder(t)
	stray := b.leave(1)
	b.enter(2, "a")
	b.leave(3)
	if e := b.list.Event(stray); e.Depth != 0 || e.Scope != nil {
		t.Errorf("stray leave: depth %d scope %v", e.Depth, e.Scope)
	}
	if b.list.ScopeCount() != 1 || b.list.OpenScopes() != 0 {
		t.Errorf("ScopeCount = %d, OpenScopes = %d; want 1, 0", b.list.ScopeCount(), b.list.OpenScopes())
	}
}

func TestTimeOrder(t *testing.T) {
	b := newListBuilder(t)
	b.define("app#tick()", wire.ClassInstance, 0)
	b.insert("app#tick", 5)
	late := b.insert("app#tick", 3)
	if got := b.list.Event(late).Time; got != 5 {
		t.Errorf("out-of-order event time = %g, want clamped to 5", got)
	}
	prev := -1.0
	for it := b.list.Begin(); !it.Done(); it.Next() {
		if it.Time() < prev {
			t.Fatalf("event %d at %g before %g", it.ID(), it.Time(), prev)
		}
		prev = it.Time()
	}
}

func TestScopeData(t *testing.T) {
	b := newListBuilder(t)
	b.define("app#data(uint32 n, ascii s)", wire.ClassInstance, wire.FlagAppendScopeData)
	id := b.enter(0, "a")
	b.insert("wtf.scope#appendData", 1, Arg{"name", "k"}, Arg{"value", 1.0})
	b.insert("app#data", 2, Arg{"n", uint32(3)}, Arg{"s", "x"})
	s := b.list.Event(id).Scope
	want := Args{{"name", "a"}, {"k", 1.0}, {"n", uint32(3)}, {"s", "x"}}
	if diff := cmp.Diff(want, s.Data()); diff != "" {
		t.Errorf("Data mismatch (-want +got):\n%s", diff)
	}
	b.insert("wtf.scope#appendData", 3, Arg{"name", "k"}, Arg{"value", 2.0})
	b.leave(4)
	if v, _ := s.Data().Get("k"); v != 2.0 {
		t.Errorf("k after second append = %v, want 2", v)
	}
}

func TestIteratorNavigation(t *testing.T) {
	l := buildTree(t).list

	it := l.Begin()
	it.Next()
	it.NextSibling()
	if it.ID() != 3 {
		t.Errorf("NextSibling from b = %d, want 3", it.ID())
	}
	it.NextSibling()
	if it.ID() != 6 {
		t.Errorf("NextSibling from c = %d, want 6", it.ID())
	}

	it = l.Begin()
	it.Seek(4.5)
	if it.ID() != 4 {
		t.Errorf("Seek(4.5) = %d, want 4", it.ID())
	}
	it.MoveToParent()
	if it.ID() != 3 || it.Name() != "c" {
		t.Errorf("MoveToParent = %d %s, want 3 c", it.ID(), it.Name())
	}
	it.MoveToParent()
	it.MoveToParent()
	if !it.Done() {
		t.Error("MoveToParent from a root scope is not done")
	}

	ids := l.Iterate([]EventID{1, 3, 4})
	ids.Seek(5)
	ids.MoveToParent()
	if ids.ID() != 3 {
		t.Errorf("MoveToParent over ids = %d, want 3", ids.ID())
	}
}

func TestBeginTimeRange(t *testing.T) {
	l := buildTree(t).list
	tests := []struct {
		start, end float64
		inclusive  bool
		want       []EventID
	}{
		{4.5, 5.5, false, []EventID{4}},
		{4.5, 5.5, true, []EventID{0, 1, 2, 3, 4}},
		{3, 4, false, []EventID{2, 3}},
		{11, 20, false, nil},
		{0, 10, false, []EventID{0, 1, 2, 3, 4, 5, 6}},
	}
	for _, tt := range tests {
		var got []EventID
		for it := l.BeginTimeRange(tt.start, tt.end, tt.inclusive); !it.Done(); it.Next() {
			got = append(got, it.ID())
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("BeginTimeRange(%g, %g, %v) mismatch (-want +got):\n%s", tt.start, tt.end, tt.inclusive, diff)
		}
	}
}

type recorder struct {
	list    *EventList
	batches [][]EventID
	lens    []int
}

func (r *recorder) HandleEvents(it *EventIterator) {
	var ids []EventID
	for ; !it.Done(); it.Next() {
		ids = append(ids, it.ID())
	}
	r.batches = append(r.batches, ids)
	r.lens = append(r.lens, r.list.Len())
}

func TestAncillaryNotification(t *testing.T) {
	b := newListBuilder(t)
	b.define("app#tick()", wire.ClassInstance, 0)
	r := &recorder{list: b.list}
	b.list.RegisterAncillaryList(r)

	b.insert("app#tick", 1)
	b.insert("app#tick", 2)
	b.list.BeginInserting()
	b.insert("app#tick", 3)
	b.insert("app#tick", 4)
	b.insert("app#tick", 5)
	b.list.EndInserting()

	want := [][]EventID{{0}, {1}, {2, 3, 4}}
	if diff := cmp.Diff(want, r.batches); diff != "" {
		t.Errorf("batches mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 5}, r.lens); diff != "" {
		t.Errorf("list length seen by callbacks (-want +got):\n%s", diff)
	}

	late := &recorder{list: b.list}
	b.list.RegisterAncillaryList(late)
	if diff := cmp.Diff([][]EventID{{0, 1, 2, 3, 4}}, late.batches); diff != "" {
		t.Errorf("replay on registration mismatch (-want +got):\n%s", diff)
	}

	b.list.UnregisterAncillaryList(r)
	b.insert("app#tick", 6)
	if len(r.batches) != 3 {
		t.Errorf("unregistered list got %d batches, want 3", len(r.batches))
	}
	if got := late.batches[len(late.batches)-1]; !cmp.Equal(got, []EventID{5}) {
		t.Errorf("late list last batch = %v, want [5]", got)
	}
}
