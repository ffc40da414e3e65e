// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/xerrors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// ReadValue decodes one value of type t.
//
// Null values decode to a nil interface. Scalars decode to the Go type of
// the same width (int8, uint32, float64, ...), bool to bool, char, wchar,
// ascii and utf8 to string, and any to the JSON value it encodes. Numeric
// and bool arrays decode to slices of their element type; char and wchar
// arrays decode to strings.
func ReadValue(c *Cursor, t Type) (any, error) {
	if t.Array {
		return readArray(c, t)
	}
	switch t.Kind {
	case KindInt8:
		return c.ReadInt8()
	case KindInt16:
		return c.ReadInt16()
	case KindInt32:
		return c.ReadInt32()
	case KindUint8:
		return c.ReadUint8()
	case KindUint16:
		return c.ReadUint16()
	case KindUint32:
		return c.ReadUint32()
	case KindFloat32:
		return c.ReadFloat32()
	case KindFloat64:
		return c.ReadFloat64()
	case KindBool:
		v, err := c.ReadUint8()
		return v != 0, err
	case KindChar:
		v, err := c.ReadUint8()
		if err != nil {
			return nil, err
		}
		return string([]byte{v}), nil
	case KindWchar:
		b, err := c.next(2)
		if err != nil {
			return nil, err
		}
		return decodeUTF16(b)
	case KindASCII, KindUTF8:
		s, ok, err := c.ReadString()
		if err != nil || !ok {
			return nil, err
		}
		return s, nil
	case KindAny:
		s, ok, err := c.ReadString()
		if err != nil || !ok {
			return nil, err
		}
		var v any
		if err := json.UnmarshalFromString(s, &v); err != nil {
			return nil, xerrors.Errorf("decoding any value: %w", err)
		}
		return v, nil
	}
	return nil, xerrors.Errorf("cannot read type %v", t)
}

func readArray(c *Cursor, t Type) (any, error) {
	n := t.Len
	if n == 0 {
		count, err := c.ReadUint32()
		if err != nil {
			return nil, err
		}
		if count == nullLength {
			return nil, nil
		}
		n = int(count)
	}
	// Check the whole payload up front so a bogus count never allocates.
	if int64(n)*int64(t.Kind.width()) > int64(c.Len()) {
		return nil, ErrShortBuffer
	}
	switch t.Kind {
	case KindInt8:
		return readSlice(c, n, c.ReadInt8)
	case KindInt16:
		return readSlice(c, n, c.ReadInt16)
	case KindInt32:
		return readSlice(c, n, c.ReadInt32)
	case KindUint8:
		return readSlice(c, n, c.ReadUint8)
	case KindUint16:
		return readSlice(c, n, c.ReadUint16)
	case KindUint32:
		return readSlice(c, n, c.ReadUint32)
	case KindFloat32:
		return readSlice(c, n, c.ReadFloat32)
	case KindFloat64:
		return readSlice(c, n, c.ReadFloat64)
	case KindBool:
		return readSlice(c, n, func() (bool, error) {
			v, err := c.ReadUint8()
			return v != 0, err
		})
	case KindChar:
		b, err := c.next(n)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case KindWchar:
		b, err := c.next(2 * n)
		if err != nil {
			return nil, err
		}
		return decodeUTF16(b)
	}
	return nil, xerrors.Errorf("cannot read type %v", t)
}

func readSlice[T any](c *Cursor, n int, read func() (T, error)) ([]T, error) {
	s := make([]T, n)
	for i := range s {
		v, err := read()
		if err != nil {
			return nil, err
		}
		s[i] = v
	}
	return s, nil
}

func decodeUTF16(b []byte) (string, error) {
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", xerrors.Errorf("decoding wchar data: %w", err)
	}
	return string(out), nil
}

// WriteValue encodes v as type t. A nil v is written as null for nullable
// types. Integer and float arguments may be given as any Go integer or
// float type; arrays must be slices of the element's Go type.
func WriteValue(c *Cursor, t Type, v any) error {
	if v == nil {
		if !t.Nullable() {
			return xerrors.Errorf("nil value for non-nullable type %v", t)
		}
		c.WriteNull()
		return nil
	}
	if t.Array {
		return writeArray(c, t, v)
	}
	switch t.Kind {
	case KindInt8, KindInt16, KindInt32, KindUint8, KindUint16, KindUint32:
		i, ok := toInt64(v)
		if !ok {
			return badValue(t, v)
		}
		writeInt(c, t.Kind, i)
	case KindFloat32:
		f, ok := toFloat64(v)
		if !ok {
			return badValue(t, v)
		}
		c.WriteFloat32(float32(f))
	case KindFloat64:
		f, ok := toFloat64(v)
		if !ok {
			return badValue(t, v)
		}
		c.WriteFloat64(f)
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return badValue(t, v)
		}
		c.WriteUint8(boolByte(b))
	case KindChar:
		s, ok := v.(string)
		if !ok || len(s) != 1 {
			return badValue(t, v)
		}
		c.WriteUint8(s[0])
	case KindWchar:
		s, ok := v.(string)
		if !ok {
			return badValue(t, v)
		}
		b, err := utf16le.NewEncoder().Bytes([]byte(s))
		if err != nil || len(b) != 2 {
			return badValue(t, v)
		}
		c.WriteBytes(b)
	case KindASCII, KindUTF8:
		s, ok := v.(string)
		if !ok {
			return badValue(t, v)
		}
		c.WriteString(s)
	case KindAny:
		s, err := json.MarshalToString(v)
		if err != nil {
			return xerrors.Errorf("encoding any value: %w", err)
		}
		c.WriteString(s)
	default:
		return xerrors.Errorf("cannot write type %v", t)
	}
	return nil
}

func writeArray(c *Cursor, t Type, v any) error {
	var n int
	var body func()
	switch t.Kind {
	case KindChar:
		s, ok := v.(string)
		if !ok {
			return badValue(t, v)
		}
		n, body = len(s), func() { c.WriteBytes([]byte(s)) }
	case KindWchar:
		s, ok := v.(string)
		if !ok {
			return badValue(t, v)
		}
		b, err := utf16le.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return badValue(t, v)
		}
		n, body = len(b)/2, func() { c.WriteBytes(b) }
	default:
		var ok bool
		n, body, ok = sliceWriter(c, t.Kind, v)
		if !ok {
			return badValue(t, v)
		}
	}
	if t.Len > 0 {
		if n != t.Len {
			return xerrors.Errorf("array of %d elements for type %v", n, t)
		}
	} else {
		c.WriteUint32(uint32(n))
	}
	body()
	return nil
}

func sliceWriter(c *Cursor, k Kind, v any) (int, func(), bool) {
	switch s := v.(type) {
	case []int8:
		return len(s), func() { writeSlice(s, c.WriteInt8) }, k == KindInt8
	case []int16:
		return len(s), func() { writeSlice(s, c.WriteInt16) }, k == KindInt16
	case []int32:
		return len(s), func() { writeSlice(s, c.WriteInt32) }, k == KindInt32
	case []uint8:
		return len(s), func() { c.WriteBytes(s) }, k == KindUint8
	case []uint16:
		return len(s), func() { writeSlice(s, c.WriteUint16) }, k == KindUint16
	case []uint32:
		return len(s), func() { writeSlice(s, c.WriteUint32) }, k == KindUint32
	case []float32:
		return len(s), func() { writeSlice(s, c.WriteFloat32) }, k == KindFloat32
	case []float64:
		return len(s), func() { writeSlice(s, c.WriteFloat64) }, k == KindFloat64
	case []bool:
		return len(s), func() {
			for _, b := range s {
				c.WriteUint8(boolByte(b))
			}
		}, k == KindBool
	}
	return 0, nil, false
}

func writeSlice[T any](s []T, write func(T)) {
	for _, v := range s {
		write(v)
	}
}

func writeInt(c *Cursor, k Kind, i int64) {
	switch k {
	case KindInt8, KindUint8:
		c.WriteUint8(uint8(i))
	case KindInt16, KindUint16:
		c.WriteUint16(uint16(i))
	case KindInt32, KindUint32:
		c.WriteUint32(uint32(i))
	}
}

func toInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch v := v.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func badValue(t Type, v any) error {
	return xerrors.Errorf("cannot encode %T as %v", v, t)
}
