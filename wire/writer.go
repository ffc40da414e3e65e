// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"golang.org/x/xerrors"
)

// Writer encodes a binary trace: a header followed by records.
type Writer struct {
	w     io.Writer
	buf   Cursor
	args  map[uint16][]Arg
	ids   map[string]uint16
	next  uint16
	flags HeaderFlags
}

// NewWriter writes h to w and returns a Writer for the records that follow.
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	tw := &Writer{
		w:     w,
		args:  map[uint16][]Arg{DefineWireID: DefineArgs},
		ids:   map[string]uint16{DefineName: DefineWireID},
		next:  DefineWireID + 1,
		flags: h.Flags,
	}
	if err := WriteHeader(&tw.buf, h); err != nil {
		return nil, err
	}
	return tw, tw.flush()
}

// Define writes a define record for the event type described by
// signature and returns the wire ID assigned to it. Defining a name twice
// returns the first ID.
func (w *Writer) Define(signature string, class Class, flags Flags) (uint16, error) {
	sig, err := ParseSignature(signature)
	if err != nil {
		return 0, err
	}
	if id, ok := w.ids[sig.Name]; ok {
		return id, nil
	}
	if w.next == 0 {
		return 0, xerrors.New("wire: out of wire IDs")
	}
	id := w.next
	w.next++
	err = w.WriteEvent(DefineWireID, 0, id, uint16(class), uint32(flags), sig.Name, FormatArgs(sig.Args))
	if err != nil {
		return 0, err
	}
	w.args[id] = sig.Args
	w.ids[sig.Name] = id
	return id, nil
}

// WireID returns the wire ID of a defined event name.
func (w *Writer) WireID(name string) (uint16, bool) {
	id, ok := w.ids[name]
	return id, ok
}

// WriteEvent writes one record for a previously defined wire ID. The time
// is in the units selected by the header flags.
func (w *Writer) WriteEvent(wireID uint16, time uint32, values ...any) error {
	args, ok := w.args[wireID]
	if !ok {
		return xerrors.Errorf("wire: undefined wire ID %d", wireID)
	}
	if err := AppendRecord(&w.buf, wireID, time, args, values); err != nil {
		w.buf.Reset()
		return err
	}
	return w.flush()
}

// WriteEventAt is like WriteEvent but takes the time in milliseconds and
// converts it to the units of the stream.
func (w *Writer) WriteEventAt(wireID uint16, ms float64, values ...any) error {
	if w.flags&HighResolutionTimes != 0 {
		ms *= 1000
	}
	return w.WriteEvent(wireID, uint32(ms), values...)
}

func (w *Writer) flush() error {
	_, err := w.w.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}
