// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// ErrBadSignature is returned for a malformed event signature.
var ErrBadSignature = xerrors.New("wire: bad signature")

// Class is the class of an event type.
type Class uint16

const (
	ClassInstance Class = 0 // A single point in time.
	ClassScope    Class = 1 // Enters a scope closed by a later leave event.
)

func (c Class) String() string {
	switch c {
	case ClassInstance:
		return "instance"
	case ClassScope:
		return "scope"
	}
	return "Class(" + strconv.Itoa(int(c)) + ")"
}

// Flags is a bitmask of event type flags.
type Flags uint32

const (
	FlagHighFrequency   Flags = 1 << 1
	FlagSystemTime      Flags = 1 << 2 // Scope time is excluded from the user time of its ancestors.
	FlagInternal        Flags = 1 << 3 // Never shown to users or matched by filters.
	FlagAppendScopeData Flags = 1 << 4 // Arguments are appended to the enclosing scope's data.
	FlagBuiltin         Flags = 1 << 5
	FlagAppendFlowData  Flags = 1 << 6
)

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Kind is the element kind of an argument type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindUint8
	KindUint16
	KindUint32
	KindFloat32
	KindFloat64
	KindBool
	KindChar
	KindWchar
	KindASCII
	KindUTF8
	KindAny
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindBool:    "bool",
	KindChar:    "char",
	KindWchar:   "wchar",
	KindASCII:   "ascii",
	KindUTF8:    "utf8",
	KindAny:     "any",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// width returns the encoded size of one element of kind k, or 0 if the
// kind is variable-length.
func (k Kind) width() int {
	switch k {
	case KindInt8, KindUint8, KindBool, KindChar:
		return 1
	case KindInt16, KindUint16, KindWchar:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindFloat64:
		return 8
	}
	return 0
}

// Type is an argument type: a kind, optionally as an array.
type Type struct {
	Kind  Kind
	Array bool
	// Len is the element count of a fixed-length array. Zero means the
	// array is variable-length and carries a count prefix.
	Len int
}

func (t Type) String() string {
	s := t.Kind.String()
	switch {
	case t.Array && t.Len > 0:
		s += "[" + strconv.Itoa(t.Len) + "]"
	case t.Array:
		s += "[]"
	}
	return s
}

// Nullable reports whether values of t may be encoded as null.
func (t Type) Nullable() bool {
	if t.Array {
		return t.Len == 0
	}
	switch t.Kind {
	case KindASCII, KindUTF8, KindAny:
		return true
	}
	return false
}

// ParseType parses a type name such as "uint8", "float32[]" or "int16[4]".
func ParseType(s string) (Type, error) {
	var t Type
	name := s
	if i := strings.IndexByte(s, '['); i >= 0 {
		if !strings.HasSuffix(s, "]") {
			return Type{}, xerrors.Errorf("type %q: %w", s, ErrBadSignature)
		}
		name = s[:i]
		t.Array = true
		if n := s[i+1 : len(s)-1]; n != "" {
			l, err := strconv.Atoi(n)
			if err != nil || l <= 0 {
				return Type{}, xerrors.Errorf("type %q: bad array length: %w", s, ErrBadSignature)
			}
			t.Len = l
		}
	}
	for k, kn := range kindNames {
		if k != int(KindInvalid) && kn == name {
			t.Kind = Kind(k)
			break
		}
	}
	if t.Kind == KindInvalid {
		return Type{}, xerrors.Errorf("unknown type %q: %w", s, ErrBadSignature)
	}
	if t.Array && t.Kind.width() == 0 {
		return Type{}, xerrors.Errorf("type %q: arrays of %s are not supported: %w", s, t.Kind, ErrBadSignature)
	}
	return t, nil
}

// Arg is one named argument of an event signature.
type Arg struct {
	Name string
	Type Type
}

// Signature is a parsed event signature of the form
// "namespace#name(type1 arg1, type2 arg2)".
type Signature struct {
	Name string
	Args []Arg
}

// ParseSignature parses a full event signature. A missing argument list is
// the same as an empty one.
func ParseSignature(s string) (Signature, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if s == "" {
			return Signature{}, xerrors.Errorf("empty signature: %w", ErrBadSignature)
		}
		return Signature{Name: s}, nil
	}
	if !strings.HasSuffix(s, ")") {
		return Signature{}, xerrors.Errorf("signature %q: missing ')': %w", s, ErrBadSignature)
	}
	name := strings.TrimSpace(s[:open])
	if name == "" {
		return Signature{}, xerrors.Errorf("signature %q: missing name: %w", s, ErrBadSignature)
	}
	args, err := ParseArgs(s[open+1 : len(s)-1])
	if err != nil {
		return Signature{}, xerrors.Errorf("signature %q: %w", s, err)
	}
	return Signature{Name: name, Args: args}, nil
}

// ParseArgs parses a comma-separated argument list such as
// "uint32 id, ascii name". An empty string yields no arguments.
func ParseArgs(s string) ([]Arg, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var args []Arg
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		fields := strings.Fields(part)
		if len(fields) != 2 {
			return nil, xerrors.Errorf("argument %q: %w", strings.TrimSpace(part), ErrBadSignature)
		}
		typ, err := ParseType(fields[0])
		if err != nil {
			return nil, err
		}
		if seen[fields[1]] {
			return nil, xerrors.Errorf("duplicate argument %q: %w", fields[1], ErrBadSignature)
		}
		seen[fields[1]] = true
		args = append(args, Arg{Name: fields[1], Type: typ})
	}
	return args, nil
}

// FormatArgs is the inverse of ParseArgs.
func FormatArgs(args []Arg) string {
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Type.String())
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
	}
	return sb.String()
}

func (s Signature) String() string {
	return s.Name + "(" + FormatArgs(s.Args) + ")"
}
