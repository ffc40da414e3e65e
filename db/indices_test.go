// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/webtracing/wtf/wire"
)

func frameNumbers(fs []*Frame) []uint32 {
	var ns []uint32
	for _, f := range fs {
		ns = append(ns, f.Number())
	}
	return ns
}

func TestFrameAtTime(t *testing.T) {
	b := newListBuilder(t)
	fl := NewFrameList(b.list)
	b.insert("wtf.timing#frameStart", 10, Arg{"number", uint32(1)})
	b.insert("wtf.timing#frameEnd", 30, Arg{"number", uint32(1)})

	f := fl.Frame(1)
	if f == nil {
		t.Fatal("frame 1 missing")
	}
	tests := []struct {
		t    float64
		want *Frame
	}{
		{9, nil},
		{10, f},
		{20, f},
		{30, f},
		{31, nil},
	}
	for _, tt := range tests {
		if got := fl.FrameAtTime(tt.t); got != tt.want {
			t.Errorf("FrameAtTime(%g) = %v, want %v", tt.t, got, tt.want)
		}
	}
	if f.Duration() != 20 || f.StartEvent() != 0 || f.EndEvent() != 1 {
		t.Errorf("frame 1: duration %g events %d..%d", f.Duration(), f.StartEvent(), f.EndEvent())
	}
}

func TestFrameListIncremental(t *testing.T) {
	b := newListBuilder(t)
	fl := NewFrameList(b.list)
	b.insert("wtf.timing#frameStart", 10, Arg{"number", uint32(1)})
	b.insert("wtf.timing#frameEnd", 30, Arg{"number", uint32(1)})
	f1 := fl.Frame(1)

	b.list.BeginInserting()
	b.insert("wtf.timing#frameStart", 40, Arg{"number", uint32(2)})
	b.insert("wtf.timing#frameEnd", 60, Arg{"number", uint32(2)})
	b.insert("wtf.timing#frameStart", 70, Arg{"number", uint32(3)})
	b.list.EndInserting()

	if fl.Frame(1) != f1 {
		t.Error("frame 1 changed identity after new frames were added")
	}
	if fl.Count() != 2 {
		t.Errorf("Count = %d, want 2 (frame 3 is still open)", fl.Count())
	}
	f2 := fl.Frame(2)
	if fl.Next(f1) != f2 || fl.Previous(f2) != f1 || fl.Previous(f1) != nil || fl.Next(f2) != nil {
		t.Error("previous/next links are wrong")
	}
	if diff := cmp.Diff([]uint32{1, 2}, frameNumbers(fl.Intersecting(25, 45))); diff != "" {
		t.Errorf("Intersecting(25, 45) mismatch (-want +got):\n%s", diff)
	}
	if got := fl.Intersecting(31, 39); len(got) != 0 {
		t.Errorf("Intersecting(31, 39) = %v, want none", frameNumbers(got))
	}

	b.insert("wtf.timing#frameEnd", 80, Arg{"number", uint32(3)})
	if diff := cmp.Diff([]uint32{1, 2, 3}, frameNumbers(fl.All())); diff != "" {
		t.Errorf("All mismatch (-want +got):\n%s", diff)
	}
	if fl.Frame(1) != f1 || fl.Frame(2) != f2 {
		t.Error("frames changed identity")
	}
}

func TestFrameEndWithoutStart(t *testing.T) {
	b := newListBuilder(t)
	fl := NewFrameList(b.list)
	b.insert("wtf.timing#frameEnd", 5, Arg{"number", uint32(9)})
	if fl.Count() != 0 {
		t.Errorf("Count = %d, want 0", fl.Count())
	}
}

func TestMarkList(t *testing.T) {
	b := newListBuilder(t)
	b.define("app#tick()", wire.ClassInstance, 0)
	ml := NewMarkList(b.list)
	b.insert("wtf.trace#mark", 2, Arg{"name", "load"}, Arg{"value", nil})
	b.insert("wtf.trace#mark", 5, Arg{"name", "run"}, Arg{"value", 7.0})
	b.insert("app#tick", 20)

	marks := ml.All()
	if len(marks) != 2 {
		t.Fatalf("got %d marks, want 2", len(marks))
	}
	load, run := marks[0], marks[1]
	if load.Name() != "load" || load.EndTime() != 5 {
		t.Errorf("load: name %q end %g", load.Name(), load.EndTime())
	}
	if run.Value() != 7.0 || run.EndTime() != 20 || run.Duration() != 15 {
		t.Errorf("run: value %v end %g duration %g", run.Value(), run.EndTime(), run.Duration())
	}
	if ml.MarkAtTime(1) != nil || ml.MarkAtTime(4) != load || ml.MarkAtTime(6) != run {
		t.Error("MarkAtTime returned the wrong mark")
	}
	if got := ml.Intersecting(3, 4); len(got) != 1 || got[0] != load {
		t.Errorf("Intersecting(3, 4) = %v", got)
	}
	if got := ml.Intersecting(4, 6); len(got) != 2 {
		t.Errorf("Intersecting(4, 6) has %d marks, want 2", len(got))
	}
}

func TestTimeRangeLevels(t *testing.T) {
	b := newListBuilder(t)
	tl := NewTimeRangeList(b.list)
	begin := func(time float64, id uint32, name string) {
		b.insert("wtf.timeRange#begin", time, Arg{"id", id}, Arg{"name", name}, Arg{"value", nil})
	}
	end := func(time float64, id uint32) {
		b.insert("wtf.timeRange#end", time, Arg{"id", id})
	}
	begin(0, 1, "one")
	begin(5, 2, "two")
	end(10, 1)
	begin(12, 3, "three")
	end(15, 2)
	end(20, 3)
	end(21, 99)

	var levels []int
	for _, r := range tl.All() {
		levels = append(levels, r.Level())
	}
	if diff := cmp.Diff([]int{0, 1, 0}, levels); diff != "" {
		t.Errorf("levels mismatch (-want +got):\n%s", diff)
	}
	if tl.MaximumLevel() != 2 {
		t.Errorf("MaximumLevel = %d, want 2", tl.MaximumLevel())
	}
	ids := func(rs []*TimeRange) []uint32 {
		var out []uint32
		for _, r := range rs {
			out = append(out, r.ID())
		}
		return out
	}
	if diff := cmp.Diff([]uint32{1, 2}, ids(tl.AtTime(7))); diff != "" {
		t.Errorf("AtTime(7) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint32{3}, ids(tl.Intersecting(16, 30))); diff != "" {
		t.Errorf("Intersecting(16, 30) mismatch (-want +got):\n%s", diff)
	}
	if r := tl.TimeRange(2); r.Name() != "two" || r.Duration() != 10 {
		t.Errorf("range 2: name %q duration %g", r.Name(), r.Duration())
	}
}
