// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"strings"

	"golang.org/x/xerrors"
)

// DefineWireID is the wire ID of wtf.event#define. It is fixed so that the
// first define record of a stream can be decoded before any other.
const DefineWireID uint16 = 1

// DefineName is the name of the event that defines other event types.
const DefineName = "wtf.event#define"

// DefineArgs is the argument layout of wtf.event#define.
var DefineArgs = []Arg{
	{Name: "wireId", Type: Type{Kind: KindUint16}},
	{Name: "eventClass", Type: Type{Kind: KindUint16}},
	{Name: "flags", Type: Type{Kind: KindUint32}},
	{Name: "name", Type: Type{Kind: KindASCII}},
	{Name: "args", Type: Type{Kind: KindASCII}},
}

// ParseDefine returns the signature carried by the name and args fields
// of a define record. Some producers send the full signature in the name
// field and leave args empty; both forms are accepted.
func ParseDefine(name, args string) (Signature, error) {
	if args == "" && strings.Contains(name, "(") {
		return ParseSignature(name)
	}
	if name == "" {
		return Signature{}, xerrors.Errorf("define without a name: %w", ErrBadSignature)
	}
	list, err := ParseArgs(args)
	if err != nil {
		return Signature{}, xerrors.Errorf("arguments of %s: %w", name, err)
	}
	return Signature{Name: name, Args: list}, nil
}

// recordHeaderSize is the size of the wire ID and time that start a record.
const recordHeaderSize = 6

// ReadRecordHeader reads the wire ID and raw time of the next record.
func ReadRecordHeader(c *Cursor) (wireID uint16, time uint32, err error) {
	if c.Len() < recordHeaderSize {
		return 0, 0, ErrShortBuffer
	}
	wireID, _ = c.ReadUint16()
	time, _ = c.ReadUint32()
	return wireID, time, nil
}

// ReadArgs decodes one value per argument of the schema.
func ReadArgs(c *Cursor, args []Arg) ([]any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	values := make([]any, len(args))
	for i, a := range args {
		v, err := ReadValue(c, a.Type)
		if err != nil {
			if xerrors.Is(err, ErrShortBuffer) {
				return nil, err
			}
			return nil, xerrors.Errorf("argument %s: %w", a.Name, err)
		}
		values[i] = v
	}
	return values, nil
}

// AppendRecord encodes a complete record onto c.
func AppendRecord(c *Cursor, wireID uint16, time uint32, args []Arg, values []any) error {
	if len(values) != len(args) {
		return xerrors.Errorf("got %d values for %d arguments", len(values), len(args))
	}
	c.WriteUint16(wireID)
	c.WriteUint32(time)
	for i, a := range args {
		if err := WriteValue(c, a.Type, values[i]); err != nil {
			return xerrors.Errorf("argument %s: %w", a.Name, err)
		}
	}
	return nil
}
