// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"testing"

	"github.com/webtracing/wtf/internal/event"
	"github.com/webtracing/wtf/wire"
)

func TestRegistryBuiltins(t *testing.T) {
	r := newEventTypeRegistry()
	for _, name := range []string{"wtf.event#define", "wtf.scope#enter", "wtf.flow#appendData"} {
		typ := r.Lookup(name)
		if typ == nil || !typ.IsBuiltin() {
			t.Errorf("%s: %v, want a built-in type", name, typ)
		}
	}
	if !r.Lookup("wtf.scope#leave").IsInternal() {
		t.Error("wtf.scope#leave is not internal")
	}
	if r.Lookup("wtf.trace#mark").IsInternal() {
		t.Error("wtf.trace#mark is internal")
	}
}

func TestRegistryDefine(t *testing.T) {
	r := newEventTypeRegistry()
	n := r.Len()
	a, err := r.DefineSignature("app#load(utf8 url, uint32 size)", wire.ClassInstance, 0)
	if err != nil {
		t.Fatal(err)
	}
	same, err := r.DefineSignature("app#load(utf8 url, uint32 size)", wire.ClassInstance, wire.FlagHighFrequency)
	if err != nil {
		t.Fatal(err)
	}
	if same != a || r.Len() != n+1 {
		t.Errorf("redefining with the same shape made a new type")
	}
	if i := a.ArgIndex("size"); i != 1 {
		t.Errorf("ArgIndex(size) = %d, want 1", i)
	}
	if got := a.String(); got != "app#load(utf8 url, uint32 size)" {
		t.Errorf("String = %q", got)
	}

	args, _ := wire.ParseArgs("utf8 url")
	b, replaced := r.Define("app#load", wire.ClassInstance, 0, args)
	if !replaced || b == a || r.Lookup("app#load") != b {
		t.Errorf("different shape: replaced %v, lookup %v", replaced, r.Lookup("app#load"))
	}
	if r.Get(a.ID()) != a {
		t.Error("replaced type is no longer reachable by ID")
	}
}

func TestBuiltinNameWithOtherShape(t *testing.T) {
	r := newEventTypeRegistry()
	typ, err := r.DefineSignature("wtf.timing#frameStart(utf8 label)", wire.ClassInstance, 0)
	if err != nil {
		t.Fatal(err)
	}
	if typ.kind != event.KindCustom {
		t.Errorf("kind = %v, want custom", typ.kind)
	}
}
