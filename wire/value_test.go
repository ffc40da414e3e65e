// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var valueTests = []struct {
	typ   string
	value any
}{
	{"int8", int8(-128)},
	{"int16", int16(-12345)},
	{"int32", int32(math.MinInt32)},
	{"uint8", uint8(255)},
	{"uint16", uint16(65535)},
	{"uint32", uint32(0xFFFFFFFE)},
	{"float32", float32(1.5)},
	{"float64", math.Pi},
	{"bool", true},
	{"bool", false},
	{"char", "x"},
	{"wchar", "é"},
	{"ascii", "hello"},
	{"ascii", ""},
	{"ascii", nil},
	{"utf8", "héllo, 世界"},
	{"utf8", nil},
	{"any", map[string]any{"a": float64(1), "b": []any{"x", true}}},
	{"any", "str"},
	{"any", nil},
	{"int8[]", []int8{-1, 0, 1}},
	{"int16[]", []int16{-300, 300}},
	{"int32[]", []int32{math.MaxInt32}},
	{"uint8[]", []uint8{1, 2, 3}},
	{"uint8[]", []uint8{}},
	{"uint8[]", nil},
	{"uint16[]", []uint16{9, 8}},
	{"uint32[]", []uint32{0xFFFFFFFF}},
	{"uint32[]", nil},
	{"float32[]", []float32{-0.25, 8}},
	{"float64[]", []float64{1e300}},
	{"float64[]", nil},
	{"bool[]", []bool{true, false}},
	{"char[]", "abc"},
	{"char[]", nil},
	{"wchar[]", "wide ☃"},
	{"wchar[]", nil},
	{"uint16[3]", []uint16{1, 2, 3}},
	{"float64[2]", []float64{0.5, -0.5}},
}

func TestValueRoundTrip(t *testing.T) {
	for _, withTable := range []bool{false, true} {
		for _, tc := range valueTests {
			typ, err := ParseType(tc.typ)
			if err != nil {
				t.Fatalf("ParseType(%q): %v", tc.typ, err)
			}
			var w Cursor
			if withTable {
				w.Strings = NewStringTable()
			}
			if err := WriteValue(&w, typ, tc.value); err != nil {
				t.Errorf("WriteValue(%s, %v): %v", tc.typ, tc.value, err)
				continue
			}
			r := NewCursor(w.Bytes())
			r.Strings = w.Strings
			got, err := ReadValue(r, typ)
			if err != nil {
				t.Errorf("ReadValue(%s): %v", tc.typ, err)
				continue
			}
			if diff := cmp.Diff(tc.value, got); diff != "" {
				t.Errorf("%s (table=%v) round trip mismatch (-want +got):\n%s", tc.typ, withTable, diff)
			}
			if r.Len() != 0 {
				t.Errorf("%s: %d bytes left over", tc.typ, r.Len())
			}
		}
	}
}

func TestNullSentinel(t *testing.T) {
	for _, typ := range []string{"ascii", "utf8", "any", "int32[]", "char[]", "wchar[]"} {
		ty, err := ParseType(typ)
		if err != nil {
			t.Fatal(err)
		}
		var w Cursor
		if err := WriteValue(&w, ty, nil); err != nil {
			t.Fatalf("WriteValue(%s, nil): %v", typ, err)
		}
		if diff := cmp.Diff([]byte{0xFF, 0xFF, 0xFF, 0xFF}, w.Bytes()); diff != "" {
			t.Errorf("%s null encoding (-want +got):\n%s", typ, diff)
		}
	}
}

func TestWriteValueErrors(t *testing.T) {
	for _, tc := range []struct {
		typ   string
		value any
	}{
		{"int32", "nope"},
		{"int32", nil},
		{"uint16[2]", []uint16{1}},
		{"uint16[2]", nil},
		{"float32[]", []float64{1}},
		{"char", "ab"},
		{"bool", 1},
	} {
		typ, err := ParseType(tc.typ)
		if err != nil {
			t.Fatal(err)
		}
		var w Cursor
		if err := WriteValue(&w, typ, tc.value); err == nil {
			t.Errorf("WriteValue(%s, %#v) succeeded, want error", tc.typ, tc.value)
		}
	}
}

func TestReadValueShort(t *testing.T) {
	typ, _ := ParseType("uint32[]")
	var w Cursor
	w.WriteUint32(1000)
	w.WriteUint32(1)
	_, err := ReadValue(NewCursor(w.Bytes()), typ)
	if err != ErrShortBuffer {
		t.Errorf("got %v, want ErrShortBuffer", err)
	}
}

func TestBadStringIndex(t *testing.T) {
	var w Cursor
	w.WriteUint32(7)
	r := NewCursor(w.Bytes())
	r.Strings = NewStringTable("a")
	if _, _, err := r.ReadString(); err == nil {
		t.Error("expected error for out-of-range string index")
	}
}
