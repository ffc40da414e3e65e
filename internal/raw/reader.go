// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raw

import (
	"io"

	"github.com/webtracing/wtf/wire"
	"golang.org/x/xerrors"
)

// ErrUnknownWireID is returned for a record whose wire ID has not been
// defined earlier in the stream.
var ErrUnknownWireID = xerrors.New("raw: unknown wire id")

const readSize = 32 << 10

// Reader reads the records of a binary trace one at a time.
type Reader struct {
	r      io.Reader
	buf    []byte
	off    int64 // stream offset of buf[0]
	eof    bool
	header wire.Header
	types  map[uint16]wire.Signature
}

// NewReader reads the header of the trace in r.
func NewReader(r io.Reader) (*Reader, error) {
	rd := &Reader{
		r: r,
		types: map[uint16]wire.Signature{
			wire.DefineWireID: {Name: wire.DefineName, Args: wire.DefineArgs},
		},
	}
	for {
		c := wire.NewCursor(rd.buf)
		h, err := wire.ReadHeader(c)
		if err == nil {
			rd.header = h
			rd.consume(c.Offset())
			return rd, nil
		}
		if !xerrors.Is(err, wire.ErrShortBuffer) {
			return nil, err
		}
		if err := rd.fill(); err != nil {
			return nil, err
		}
	}
}

// Header returns the trace header.
func (r *Reader) Header() wire.Header { return r.header }

// NextEvent returns the next record. It returns io.EOF at the end of the
// stream and io.ErrUnexpectedEOF if the stream ends inside a record.
func (r *Reader) NextEvent() (Event, error) {
	for {
		if len(r.buf) == 0 && r.eof {
			return Event{}, io.EOF
		}
		c := wire.NewCursor(r.buf)
		ev, err := r.decode(c)
		if err == nil {
			r.consume(c.Offset())
			return ev, nil
		}
		if !xerrors.Is(err, wire.ErrShortBuffer) {
			return Event{}, err
		}
		if err := r.fill(); err != nil {
			return Event{}, err
		}
	}
}

func (r *Reader) decode(c *wire.Cursor) (Event, error) {
	wireID, time, err := wire.ReadRecordHeader(c)
	if err != nil {
		return Event{}, err
	}
	sig, ok := r.types[wireID]
	if !ok {
		return Event{}, xerrors.Errorf("wire id %d at offset %d: %w", wireID, r.off, ErrUnknownWireID)
	}
	values, err := wire.ReadArgs(c, sig.Args)
	if err != nil {
		return Event{}, err
	}
	if wireID == wire.DefineWireID {
		if err := r.define(values); err != nil {
			return Event{}, err
		}
	}
	return Event{
		Offset: r.off,
		WireID: wireID,
		Time:   time,
		Name:   sig.Name,
		Args:   sig.Args,
		Values: values,
	}, nil
}

func (r *Reader) define(values []any) error {
	id, _ := values[0].(uint16)
	name, _ := values[3].(string)
	list, _ := values[4].(string)
	sig, err := wire.ParseDefine(name, list)
	if err != nil {
		return xerrors.Errorf("defining %s: %w", name, err)
	}
	r.types[id] = sig
	return nil
}

func (r *Reader) consume(n int) {
	r.buf = r.buf[n:]
	r.off += int64(n)
}

// fill reads more of the stream into buf.
func (r *Reader) fill() error {
	if r.eof {
		return io.ErrUnexpectedEOF
	}
	buf := make([]byte, len(r.buf), len(r.buf)+readSize)
	copy(buf, r.buf)
	n, err := r.r.Read(buf[len(buf):cap(buf)])
	r.buf = buf[:len(buf)+n]
	if err == io.EOF {
		r.eof = true
		return nil
	}
	return err
}
