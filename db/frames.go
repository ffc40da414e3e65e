// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"cmp"

	"github.com/webtracing/wtf/internal/event"
	"golang.org/x/exp/slices"
)

// A Frame is the interval between a wtf.timing#frameStart and the
// wtf.timing#frameEnd with the same number.
type Frame struct {
	number     uint32
	startEvent EventID
	endEvent   EventID
	start, end float64
}

func (f *Frame) Number() uint32      { return f.number }
func (f *Frame) Time() float64       { return f.start }
func (f *Frame) EndTime() float64    { return f.end }
func (f *Frame) Duration() float64   { return f.end - f.start }
func (f *Frame) StartEvent() EventID { return f.startEvent }
func (f *Frame) EndEvent() EventID   { return f.endEvent }

// FrameList indexes the completed frames of an EventList. A *Frame, once
// returned, stays valid and keeps its identity as the list grows.
type FrameList struct {
	frames   []*Frame // ordered by start time
	byNumber map[uint32]*Frame
	pending  map[uint32]*Frame
}

// NewFrameList returns a frame index registered with l.
func NewFrameList(l *EventList) *FrameList {
	fl := &FrameList{
		byNumber: make(map[uint32]*Frame),
		pending:  make(map[uint32]*Frame),
	}
	l.RegisterAncillaryList(fl)
	return fl
}

func (fl *FrameList) HandleEvents(it *EventIterator) {
	for ; !it.Done(); it.Next() {
		switch it.Type().kind {
		case event.KindFrameStart:
			n, ok := uint32Arg(it.Args(), 0)
			if !ok {
				continue
			}
			fl.pending[n] = &Frame{number: n, startEvent: it.ID(), endEvent: NoEvent, start: it.Time()}
		case event.KindFrameEnd:
			n, ok := uint32Arg(it.Args(), 0)
			if !ok {
				continue
			}
			f, ok := fl.pending[n]
			if !ok {
				continue
			}
			delete(fl.pending, n)
			f.endEvent = it.ID()
			f.end = it.Time()
			fl.insert(f)
		}
	}
}

func (fl *FrameList) insert(f *Frame) {
	i := fl.upper(f.start)
	fl.frames = slices.Insert(fl.frames, i, f)
	fl.byNumber[f.number] = f
}

// upper returns the position of the first frame starting after t.
func (fl *FrameList) upper(t float64) int {
	i, _ := slices.BinarySearchFunc(fl.frames, t, func(f *Frame, t float64) int {
		if f.start <= t {
			return -1
		}
		return 1
	})
	return i
}

func (fl *FrameList) indexOf(f *Frame) int {
	i, _ := slices.BinarySearchFunc(fl.frames, f.start, func(g *Frame, t float64) int {
		return cmp.Compare(g.start, t)
	})
	for ; i < len(fl.frames) && fl.frames[i].start == f.start; i++ {
		if fl.frames[i] == f {
			return i
		}
	}
	return -1
}

// Count returns the number of completed frames.
func (fl *FrameList) Count() int { return len(fl.frames) }

// All returns the completed frames ordered by start time.
func (fl *FrameList) All() []*Frame { return slices.Clone(fl.frames) }

// Frame returns the completed frame with the given number, or nil.
func (fl *FrameList) Frame(number uint32) *Frame { return fl.byNumber[number] }

// FrameAtTime returns the frame whose closed interval [start, end] contains
// t, or nil.
func (fl *FrameList) FrameAtTime(t float64) *Frame {
	i := fl.upper(t)
	if i == 0 {
		return nil
	}
	if f := fl.frames[i-1]; t <= f.end {
		return f
	}
	return nil
}

// Previous returns the frame before f in time order, or nil.
func (fl *FrameList) Previous(f *Frame) *Frame {
	if i := fl.indexOf(f); i > 0 {
		return fl.frames[i-1]
	}
	return nil
}

// Next returns the frame after f in time order, or nil.
func (fl *FrameList) Next(f *Frame) *Frame {
	if i := fl.indexOf(f); i >= 0 && i+1 < len(fl.frames) {
		return fl.frames[i+1]
	}
	return nil
}

// Intersecting returns the frames overlapping [start, end].
func (fl *FrameList) Intersecting(start, end float64) []*Frame {
	var out []*Frame
	fl.ForEachIntersecting(start, end, func(f *Frame) bool {
		out = append(out, f)
		return true
	})
	return out
}

// ForEachIntersecting calls fn for each frame overlapping [start, end]
// until fn returns false.
func (fl *FrameList) ForEachIntersecting(start, end float64, fn func(*Frame) bool) {
	hi := fl.upper(end)
	lo := fl.upper(start) - 1
	for lo > 0 && fl.frames[lo-1].end >= start {
		lo--
	}
	lo = max(lo, 0)
	for _, f := range fl.frames[lo:hi] {
		if f.end < start {
			continue
		}
		if !fn(f) {
			return
		}
	}
}

func uint32Arg(args Args, i int) (uint32, bool) {
	if i >= len(args) {
		return 0, false
	}
	v, ok := args[i].Value.(uint32)
	return v, ok
}
