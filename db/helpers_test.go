// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/webtracing/wtf/internal/event"
	v3 "github.com/webtracing/wtf/internal/v3"
	"github.com/webtracing/wtf/wire"
)

// listBuilder inserts events straight into an EventList.
type listBuilder struct {
	t    *testing.T
	reg  *EventTypeRegistry
	list *EventList
}

func newListBuilder(t *testing.T) *listBuilder {
	return &listBuilder{t: t, reg: newEventTypeRegistry(), list: NewEventList()}
}

func (b *listBuilder) typ(name string) *EventType {
	b.t.Helper()
	typ := b.reg.Lookup(name)
	if typ == nil {
		b.t.Fatalf("no event type %q", name)
	}
	return typ
}

func (b *listBuilder) define(sig string, class wire.Class, flags wire.Flags) *EventType {
	b.t.Helper()
	typ, err := b.reg.DefineSignature(sig, class, flags)
	if err != nil {
		b.t.Fatal(err)
	}
	return typ
}

func (b *listBuilder) enter(time float64, name string) EventID {
	return b.list.Insert(b.typ("wtf.scope#enter"), time, Args{{"name", name}})
}

func (b *listBuilder) enterSystem(time float64) EventID {
	return b.list.Insert(b.typ("wtf.scope#enterTracing"), time, nil)
}

func (b *listBuilder) leave(time float64) EventID {
	return b.list.Insert(b.typ("wtf.scope#leave"), time, nil)
}

func (b *listBuilder) insert(name string, time float64, args ...Arg) EventID {
	return b.list.Insert(b.typ(name), time, args)
}

// traceBuilder encodes a binary trace with all built-in events defined.
type traceBuilder struct {
	t   *testing.T
	buf bytes.Buffer
	w   *wire.Writer
}

func newTrace(t *testing.T, h wire.Header) *traceBuilder {
	t.Helper()
	tb := &traceBuilder{t: t}
	w, err := wire.NewWriter(&tb.buf, h)
	if err != nil {
		t.Fatal(err)
	}
	tb.w = w
	return tb
}

// builtins defines every built-in event, as an instrumented program does
// at the start of a stream.
func (tb *traceBuilder) builtins() *traceBuilder {
	tb.t.Helper()
	for k, s := range v3.Specs() {
		if s.Name == "" || event.Kind(k) == event.KindDefine {
			continue
		}
		tb.define(wire.Signature{Name: s.Name, Args: s.Args}.String(), s.Class, s.Flags)
	}
	return tb
}

func (tb *traceBuilder) define(sig string, class wire.Class, flags wire.Flags) uint16 {
	tb.t.Helper()
	id, err := tb.w.Define(sig, class, flags)
	if err != nil {
		tb.t.Fatal(err)
	}
	return id
}

func (tb *traceBuilder) event(name string, ms float64, values ...any) *traceBuilder {
	tb.t.Helper()
	id, ok := tb.w.WireID(name)
	if !ok {
		tb.t.Fatalf("event %q not defined", name)
	}
	if err := tb.w.WriteEventAt(id, ms, values...); err != nil {
		tb.t.Fatal(err)
	}
	return tb
}

func (tb *traceBuilder) bytes() []byte { return bytes.Clone(tb.buf.Bytes()) }

func newDB(t *testing.T, opts ...Option) *Database {
	t.Helper()
	d, err := New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// dump renders the events of a zone one per line.
func dump(z *Zone) []string {
	var out []string
	for it := z.EventList().Begin(); !it.Done(); it.Next() {
		out = append(out, fmt.Sprintf("%d %s@%g %v", it.Depth(), it.Name(), it.Time(), it.Args()))
	}
	return out
}
