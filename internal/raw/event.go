// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package raw decodes the records of a binary trace without building a
// database. It is meant for debugging the wire format.
package raw

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/webtracing/wtf/wire"
)

// Event is one undecorated record.
type Event struct {
	// Offset is the position of the record in the stream.
	Offset int64
	WireID uint16
	// Time is the raw time in the units of the stream.
	Time   uint32
	Name   string
	Args   []wire.Arg
	Values []any
}

func (e *Event) String() string {
	var s strings.Builder
	s.WriteString(e.Name)
	s.WriteString(" wire=")
	s.WriteString(strconv.FormatUint(uint64(e.WireID), 10))
	s.WriteString(" time=")
	s.WriteString(strconv.FormatUint(uint64(e.Time), 10))
	for i, a := range e.Args {
		s.WriteString(" ")
		s.WriteString(a.Name)
		s.WriteString("=")
		switch v := e.Values[i].(type) {
		case string:
			s.WriteString(strconv.Quote(v))
		case nil:
			s.WriteString("null")
		default:
			fmt.Fprint(&s, v)
		}
	}
	return s.String()
}
