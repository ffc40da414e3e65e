// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/xerrors"
)

func TestParseSignature(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Signature
	}{
		{"basic()", Signature{Name: "basic"}},
		{"basic", Signature{Name: "basic"}},
		{
			"my#event(uint32 id, ascii name, float32[] samples, int16[4] quad)",
			Signature{Name: "my#event", Args: []Arg{
				{Name: "id", Type: Type{Kind: KindUint32}},
				{Name: "name", Type: Type{Kind: KindASCII}},
				{Name: "samples", Type: Type{Kind: KindFloat32, Array: true}},
				{Name: "quad", Type: Type{Kind: KindInt16, Array: true, Len: 4}},
			}},
		},
		{" spaced ( any  value ) ", Signature{Name: "spaced", Args: []Arg{{Name: "value", Type: Type{Kind: KindAny}}}}},
	} {
		got, err := ParseSignature(tc.in)
		if err != nil {
			t.Errorf("ParseSignature(%q): %v", tc.in, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("ParseSignature(%q) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestParseSignatureErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"(int32 a)",
		"x(int32 a",
		"x(int64 a)",
		"x(int32)",
		"x(int32 a, int32 a)",
		"x(ascii[] a)",
		"x(int32[0] a)",
		"x(int32[ a)",
	} {
		if _, err := ParseSignature(in); !xerrors.Is(err, ErrBadSignature) {
			t.Errorf("ParseSignature(%q) = %v, want ErrBadSignature", in, err)
		}
	}
}

func TestSignatureString(t *testing.T) {
	const s = "a#b(uint8 x, wchar[] y, float64[3] z)"
	sig, err := ParseSignature(s)
	if err != nil {
		t.Fatal(err)
	}
	if got := sig.String(); got != s {
		t.Errorf("String() = %q, want %q", got, s)
	}
}

func TestParseDefine(t *testing.T) {
	want := Signature{Name: "app#n", Args: []Arg{{Name: "x", Type: Type{Kind: KindUint32}}}}
	for _, tt := range []struct{ name, args string }{
		{"app#n", "uint32 x"},
		{"app#n(uint32 x)", ""},
	} {
		got, err := ParseDefine(tt.name, tt.args)
		if err != nil {
			t.Errorf("ParseDefine(%q, %q): %v", tt.name, tt.args, err)
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ParseDefine(%q, %q) mismatch (-want +got):\n%s", tt.name, tt.args, diff)
		}
	}
	if got, err := ParseDefine("app#plain", ""); err != nil || got.Name != "app#plain" || len(got.Args) != 0 {
		t.Errorf("ParseDefine without args = %v, %v", got, err)
	}
	if _, err := ParseDefine("", "uint32 x"); !xerrors.Is(err, ErrBadSignature) {
		t.Errorf("ParseDefine without a name: err = %v, want ErrBadSignature", err)
	}
}
