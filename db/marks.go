// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"github.com/webtracing/wtf/internal/event"
	"golang.org/x/exp/slices"
)

// A Mark is a named point on the timeline from wtf.trace#mark. It lasts
// until the next mark, or for the last mark until the last event of the
// zone.
type Mark struct {
	list  *EventList
	event EventID
	name  string
	value any
	time  float64
	next  *Mark
}

func (m *Mark) Event() EventID { return m.event }
func (m *Mark) Name() string   { return m.name }
func (m *Mark) Value() any     { return m.value }
func (m *Mark) Time() float64  { return m.time }

func (m *Mark) EndTime() float64 {
	if m.next != nil {
		return m.next.time
	}
	return m.list.LastEventTime()
}

func (m *Mark) Duration() float64 { return m.EndTime() - m.time }

// MarkList indexes the marks of an EventList in time order.
type MarkList struct {
	list  *EventList
	marks []*Mark
}

// NewMarkList returns a mark index registered with l.
func NewMarkList(l *EventList) *MarkList {
	ml := &MarkList{list: l}
	l.RegisterAncillaryList(ml)
	return ml
}

func (ml *MarkList) HandleEvents(it *EventIterator) {
	for ; !it.Done(); it.Next() {
		if it.Type().kind != event.KindMark {
			continue
		}
		m := &Mark{list: ml.list, event: it.ID(), time: it.Time()}
		args := it.Args()
		if v, ok := args.Get("name"); ok {
			m.name, _ = v.(string)
		}
		m.value, _ = args.Get("value")
		if n := len(ml.marks); n > 0 {
			ml.marks[n-1].next = m
		}
		ml.marks = append(ml.marks, m)
	}
}

func (ml *MarkList) Count() int   { return len(ml.marks) }
func (ml *MarkList) All() []*Mark { return slices.Clone(ml.marks) }

// MarkAtTime returns the mark in effect at t, or nil before the first mark.
func (ml *MarkList) MarkAtTime(t float64) *Mark {
	i := ml.upper(t)
	if i == 0 {
		return nil
	}
	return ml.marks[i-1]
}

// Intersecting returns the marks whose duration overlaps [start, end].
func (ml *MarkList) Intersecting(start, end float64) []*Mark {
	lo := max(ml.upper(start)-1, 0)
	hi := ml.upper(end)
	var out []*Mark
	for _, m := range ml.marks[lo:hi] {
		if m.EndTime() >= start {
			out = append(out, m)
		}
	}
	return out
}

func (ml *MarkList) upper(t float64) int {
	i, _ := slices.BinarySearchFunc(ml.marks, t, func(m *Mark, t float64) int {
		if m.time <= t {
			return -1
		}
		return 1
	})
	return i
}
