// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"golang.org/x/xerrors"
)

const (
	// Magic is the first word of every trace.
	Magic uint32 = 0xDEADBEEF

	// FormatVersion is the only binary format version this package reads.
	FormatVersion uint32 = 3

	// WTFVersion is the recorder version written by Writer.
	WTFVersion uint32 = 1
)

var (
	ErrBadMagic           = xerrors.New("wire: bad magic number")
	ErrUnsupportedVersion = xerrors.New("wire: format version not supported")
	ErrBadContext         = xerrors.New("wire: unparseable context info")
)

// HeaderFlags are the stream-wide flags in the trace header.
type HeaderFlags uint32

const (
	// HighResolutionTimes indicates event times are in microseconds
	// rather than milliseconds.
	HighResolutionTimes HeaderFlags = 1 << 0
)

// ContextScript is the context type of traces recorded from a script
// environment such as a page or a worker.
const ContextScript = "script"

// ContextInfo describes the environment a trace was recorded in.
type ContextInfo struct {
	Type   string
	URI    string
	Title  string
	Icon   string
	TaskID string
	Args   []string
}

// Filename returns a short name for the context, suitable for naming its
// default zone.
func (ci ContextInfo) Filename() string {
	if ci.Title != "" {
		return ci.Title
	}
	if ci.URI != "" {
		return ci.URI
	}
	return ci.Type
}

// Header is the fixed preamble of a binary trace.
type Header struct {
	WTFVersion    uint32
	FormatVersion uint32
	Context       ContextInfo
	Flags         HeaderFlags
	// Timebase is the wall-clock time, in milliseconds since the Unix epoch,
	// that event times are relative to.
	Timebase int64
	// Metadata is the decoded metadata object. Malformed metadata decodes
	// to an empty map.
	Metadata map[string]any
}

// TicksPerMillisecond returns the number of raw time units per millisecond.
func (h *Header) TicksPerMillisecond() float64 {
	if h.Flags&HighResolutionTimes != 0 {
		return 1000
	}
	return 1
}

// ReadHeader reads a trace header. It returns ErrShortBuffer if c does not
// yet hold the entire header; any other error is fatal for the stream.
func ReadHeader(c *Cursor) (Header, error) {
	var h Header
	magic, err := c.ReadUint32()
	if err != nil {
		return h, err
	}
	if magic != Magic {
		return h, xerrors.Errorf("got %#x: %w", magic, ErrBadMagic)
	}
	if h.WTFVersion, err = c.ReadUint32(); err != nil {
		return h, err
	}
	if h.FormatVersion, err = c.ReadUint32(); err != nil {
		return h, err
	}
	if h.FormatVersion != FormatVersion {
		return h, xerrors.Errorf("version %d, want %d: %w", h.FormatVersion, FormatVersion, ErrUnsupportedVersion)
	}
	if h.Context, err = readContextInfo(c); err != nil {
		return h, err
	}
	flags, err := c.ReadUint32()
	if err != nil {
		return h, err
	}
	h.Flags = HeaderFlags(flags)
	if h.Timebase, err = c.ReadInt64(); err != nil {
		return h, err
	}
	md, _, err := c.ReadInlineString()
	if err != nil {
		return h, err
	}
	h.Metadata = parseMetadata(md)
	return h, nil
}

func parseMetadata(s string) map[string]any {
	var v any
	if err := json.UnmarshalFromString(s, &v); err == nil {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return map[string]any{}
}

func readContextInfo(c *Cursor) (ContextInfo, error) {
	var ci ContextInfo
	typ, ok, err := c.ReadInlineString()
	if err != nil {
		return ci, err
	}
	if !ok {
		return ci, xerrors.Errorf("missing context type: %w", ErrBadContext)
	}
	ci.Type = typ
	switch typ {
	case ContextScript:
		for _, f := range []*string{&ci.URI, &ci.Title, &ci.Icon, &ci.TaskID} {
			if *f, _, err = c.ReadInlineString(); err != nil {
				return ci, err
			}
		}
		n, err := c.ReadUint32()
		if err != nil {
			return ci, err
		}
		if int64(n)*4 > int64(c.Len()) {
			if n == nullLength {
				return ci, xerrors.Errorf("bad context argument count: %w", ErrBadContext)
			}
			return ci, ErrShortBuffer
		}
		for i := uint32(0); i < n; i++ {
			arg, _, err := c.ReadInlineString()
			if err != nil {
				return ci, err
			}
			ci.Args = append(ci.Args, arg)
		}
	default:
		return ci, xerrors.Errorf("context type %q: %w", typ, ErrBadContext)
	}
	return ci, nil
}

// WriteHeader encodes h. Zero versions are replaced with the current ones
// and an empty context type with ContextScript.
func WriteHeader(c *Cursor, h Header) error {
	if h.WTFVersion == 0 {
		h.WTFVersion = WTFVersion
	}
	if h.FormatVersion == 0 {
		h.FormatVersion = FormatVersion
	}
	if h.Context.Type == "" {
		h.Context.Type = ContextScript
	}
	if h.Context.Type != ContextScript {
		return xerrors.Errorf("context type %q: %w", h.Context.Type, ErrBadContext)
	}
	c.WriteUint32(Magic)
	c.WriteUint32(h.WTFVersion)
	c.WriteUint32(h.FormatVersion)
	c.WriteInlineString(h.Context.Type)
	for _, f := range []string{h.Context.URI, h.Context.Title, h.Context.Icon, h.Context.TaskID} {
		c.WriteInlineString(f)
	}
	c.WriteUint32(uint32(len(h.Context.Args)))
	for _, arg := range h.Context.Args {
		c.WriteInlineString(arg)
	}
	c.WriteUint32(uint32(h.Flags))
	c.WriteInt64(h.Timebase)
	md := h.Metadata
	if md == nil {
		md = map[string]any{}
	}
	s, err := json.MarshalToString(md)
	if err != nil {
		return xerrors.Errorf("encoding metadata: %w", err)
	}
	c.WriteInlineString(s)
	return nil
}
