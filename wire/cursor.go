// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"math"

	"golang.org/x/xerrors"
)

// nullLength is the length or index sentinel used for every nullable field.
const nullLength = 0xFFFFFFFF

var (
	// ErrShortBuffer is returned when a read runs past the end of the buffer.
	// During streaming this means "wait for more data", not corruption.
	ErrShortBuffer = xerrors.New("wire: short buffer")

	// ErrBadString is returned for a string table index that is out of range.
	ErrBadString = xerrors.New("wire: bad string reference")
)

// Cursor reads and writes little-endian values over a growable byte buffer.
//
// Reads consume from the read offset. Writes always append to the end of
// the buffer, growing it as needed.
type Cursor struct {
	buf []byte
	off int

	// Strings, if non-nil, is the string table that string-typed fields
	// index into. When nil, strings are stored inline.
	Strings *StringTable
}

// NewCursor returns a cursor reading from the start of b.
func NewCursor(b []byte) *Cursor {
	return &Cursor{buf: b}
}

// Bytes returns the entire underlying buffer.
func (c *Cursor) Bytes() []byte { return c.buf }

// Remaining returns the unread bytes.
func (c *Cursor) Remaining() []byte { return c.buf[c.off:] }

// Len returns the number of unread bytes.
func (c *Cursor) Len() int { return len(c.buf) - c.off }

// Offset returns the read offset.
func (c *Cursor) Offset() int { return c.off }

// Seek moves the read offset. It panics if off is out of range.
func (c *Cursor) Seek(off int) {
	if off < 0 || off > len(c.buf) {
		panic("wire: seek out of range")
	}
	c.off = off
}

// Reset truncates the buffer and rewinds the read offset, keeping the
// allocated capacity.
func (c *Cursor) Reset() {
	c.buf = c.buf[:0]
	c.off = 0
}

func (c *Cursor) next(n int) ([]byte, error) {
	if n < 0 || c.Len() < n {
		return nil, ErrShortBuffer
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *Cursor) ReadUint8() (uint8, error) {
	b, err := c.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadUint16() (uint16, error) {
	b, err := c.next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) ReadUint32() (uint32, error) {
	b, err := c.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) ReadInt8() (int8, error) {
	v, err := c.ReadUint8()
	return int8(v), err
}

func (c *Cursor) ReadInt16() (int16, error) {
	v, err := c.ReadUint16()
	return int16(v), err
}

func (c *Cursor) ReadInt32() (int32, error) {
	v, err := c.ReadUint32()
	return int32(v), err
}

func (c *Cursor) ReadFloat32() (float32, error) {
	v, err := c.ReadUint32()
	return math.Float32frombits(v), err
}

func (c *Cursor) ReadFloat64() (float64, error) {
	b, err := c.next(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// ReadInt64 reads a 64-bit value stored as two uint32 halves, low then high.
func (c *Cursor) ReadInt64() (int64, error) {
	lo, err := c.ReadUint32()
	if err != nil {
		return 0, err
	}
	hi, err := c.ReadUint32()
	if err != nil {
		return 0, err
	}
	return int64(uint64(hi)<<32 | uint64(lo)), nil
}

// ReadInlineString reads a uint32 length followed by that many bytes.
// The second result is false if the string is null.
func (c *Cursor) ReadInlineString() (string, bool, error) {
	n, err := c.ReadUint32()
	if err != nil {
		return "", false, err
	}
	if n == nullLength {
		return "", false, nil
	}
	b, err := c.next(int(n))
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

// ReadString reads a string field, either inline or through the attached
// string table. The second result is false if the string is null.
func (c *Cursor) ReadString() (string, bool, error) {
	if c.Strings == nil {
		return c.ReadInlineString()
	}
	idx, err := c.ReadUint32()
	if err != nil {
		return "", false, err
	}
	if idx == nullLength {
		return "", false, nil
	}
	s, ok := c.Strings.Get(idx)
	if !ok {
		return "", false, xerrors.Errorf("index %d of %d: %w", idx, c.Strings.Len(), ErrBadString)
	}
	return s, true, nil
}

func (c *Cursor) WriteUint8(v uint8) {
	c.buf = append(c.buf, v)
}

func (c *Cursor) WriteUint16(v uint16) {
	c.buf = binary.LittleEndian.AppendUint16(c.buf, v)
}

func (c *Cursor) WriteUint32(v uint32) {
	c.buf = binary.LittleEndian.AppendUint32(c.buf, v)
}

func (c *Cursor) WriteInt8(v int8)   { c.WriteUint8(uint8(v)) }
func (c *Cursor) WriteInt16(v int16) { c.WriteUint16(uint16(v)) }
func (c *Cursor) WriteInt32(v int32) { c.WriteUint32(uint32(v)) }

func (c *Cursor) WriteFloat32(v float32) {
	c.WriteUint32(math.Float32bits(v))
}

func (c *Cursor) WriteFloat64(v float64) {
	c.buf = binary.LittleEndian.AppendUint64(c.buf, math.Float64bits(v))
}

// WriteInt64 writes v as two uint32 halves, low then high.
func (c *Cursor) WriteInt64(v int64) {
	c.WriteUint32(uint32(uint64(v)))
	c.WriteUint32(uint32(uint64(v) >> 32))
}

// WriteBytes appends raw bytes.
func (c *Cursor) WriteBytes(b []byte) {
	c.buf = append(c.buf, b...)
}

// WriteInlineString writes s with a uint32 length prefix.
func (c *Cursor) WriteInlineString(s string) {
	c.WriteUint32(uint32(len(s)))
	c.buf = append(c.buf, s...)
}

// WriteNull writes the null sentinel.
func (c *Cursor) WriteNull() {
	c.WriteUint32(nullLength)
}

// WriteString writes a string field, either inline or as an index into the
// attached string table.
func (c *Cursor) WriteString(s string) {
	if c.Strings == nil {
		c.WriteInlineString(s)
		return
	}
	c.WriteUint32(c.Strings.Add(s))
}
