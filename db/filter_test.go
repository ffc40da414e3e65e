// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/webtracing/wtf/wire"
	"golang.org/x/xerrors"
)

func TestClassifyExpression(t *testing.T) {
	tests := []struct {
		expr string
		want ExpressionKind
	}{
		{"", ExpressionFilter},
		{"render", ExpressionFilter},
		{"app#render items==12", ExpressionFilter},
		{"/^app#/", ExpressionFilter},
		{"/Render/i", ExpressionFilter},
		{"/a/gim", ExpressionFilter},
		{"/a/x", ExpressionQuery},
		{"/path", ExpressionQuery},
		{"count(app#render)", ExpressionQuery},
		{`label=="a(b"`, ExpressionFilter},
	}
	for _, tt := range tests {
		if got := ClassifyExpression(tt.expr); got != tt.want {
			t.Errorf("ClassifyExpression(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func filterList(t *testing.T) *listBuilder {
	b := newListBuilder(t)
	b.define("app#render(uint32 items, utf8 label)", wire.ClassScope, 0)
	b.define("app#Tick(bool idle)", wire.ClassInstance, 0)
	b.define("app#secret()", wire.ClassInstance, wire.FlagInternal)
	b.insert("app#render", 0, Arg{"items", uint32(12)}, Arg{"label", "list"})
	b.insert("app#Tick", 1, Arg{"idle", true})
	b.insert("app#secret", 2)
	b.leave(3)
	b.insert("app#render", 4, Arg{"items", uint32(3)}, Arg{"label", "grid"})
	b.insert("app#Tick", 5, Arg{"idle", false})
	b.leave(6)
	return b
}

func TestFilterApply(t *testing.T) {
	l := filterList(t).list
	tests := []struct {
		expr string
		want []EventID
	}{
		{"", []EventID{0, 1, 4, 5}},
		{"render", []EventID{0, 4}},
		{"TICK", []EventID{1, 5}},
		{"/tick/", nil},
		{"/tick/i", []EventID{1, 5}},
		{"/^app#(render|Tick)$/", []EventID{0, 1, 4, 5}},
		{"secret", nil},
		{"leave", nil},
		{"render items==12", []EventID{0}},
		{"render items!=12", []EventID{4}},
		{`label=="grid"`, []EventID{4}},
		{"label==grid", []EventID{4}},
		{"idle==true", []EventID{1}},
		{"idle!=true", []EventID{0, 4, 5}},
		{"missing==1", nil},
	}
	for _, tt := range tests {
		f, err := NewFilter(tt.expr)
		if err != nil {
			t.Errorf("NewFilter(%q): %v", tt.expr, err)
			continue
		}
		if diff := cmp.Diff(tt.want, f.Apply(l)); diff != "" {
			t.Errorf("%q mismatch (-want +got):\n%s", tt.expr, diff)
		}
		// Cached type matches give the same answer.
		if diff := cmp.Diff(tt.want, f.Apply(l)); diff != "" {
			t.Errorf("%q second run mismatch (-want +got):\n%s", tt.expr, diff)
		}
	}
}

func TestFilterErrors(t *testing.T) {
	if _, err := NewFilter("count(x)"); !xerrors.Is(err, ErrQueryNotSupported) {
		t.Errorf("structured query: err = %v, want ErrQueryNotSupported", err)
	}
	if _, err := NewFilter("/(unclosed/"); !xerrors.Is(err, ErrBadFilter) {
		t.Errorf("bad regexp: err = %v, want ErrBadFilter", err)
	}
	if _, err := NewFilter(`label=="open`); !xerrors.Is(err, ErrBadFilter) {
		t.Errorf("unterminated string: err = %v, want ErrBadFilter", err)
	}
}

func TestSplitPredicates(t *testing.T) {
	tests := []struct {
		expr    string
		pattern string
		preds   int
	}{
		{"render", "render", 0},
		{"  render  ", "render", 0},
		{"/a  b/", "/a  b/", 0},
		{"/a  b/ items==3", "/a  b/", 1},
		{"app n==3 render", "app render", 1},
		{"x==1\ty!=2", "", 2},
		{"/a\t b/i  label==list  ", "/a\t b/i", 1},
	}
	for _, tt := range tests {
		pattern, preds, err := splitPredicates(tt.expr)
		if err != nil {
			t.Errorf("splitPredicates(%q): %v", tt.expr, err)
			continue
		}
		if pattern != tt.pattern || len(preds) != tt.preds {
			t.Errorf("splitPredicates(%q) = %q with %d predicates, want %q with %d",
				tt.expr, pattern, len(preds), tt.pattern, tt.preds)
		}
	}
}

func TestRegexpKeepsSpaces(t *testing.T) {
	b := newListBuilder(t)
	b.define("a  b", wire.ClassInstance, 0)
	b.define("a b", wire.ClassInstance, 0)
	b.insert("a  b", 0)
	b.insert("a b", 1)
	f, err := NewFilter("/^a  b$/")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]EventID{0}, f.Apply(b.list)); diff != "" {
		t.Errorf("match mismatch (-want +got):\n%s", diff)
	}
}

func TestZoneQuery(t *testing.T) {
	d := newDB(t)
	if err := d.NewBinarySource("q").ReceiveBuffer(sampleTrace(t)); err != nil {
		t.Fatal(err)
	}
	z := zoneByName(t, d, "main")
	res, err := z.Query("render label==list")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for it := res.Iterator(); !it.Done(); it.Next() {
		names = append(names, it.Name())
	}
	if diff := cmp.Diff([]string{"app#render"}, names); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
	again, err := z.Query("render label==list")
	if err != nil {
		t.Fatal(err)
	}
	if again.Filter != res.Filter {
		t.Error("compiled filter was not reused")
	}
	if _, err := z.Query("sum(x)"); !xerrors.Is(err, ErrQueryNotSupported) {
		t.Errorf("structured query: err = %v", err)
	}
}
