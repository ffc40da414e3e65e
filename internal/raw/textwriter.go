// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raw

import (
	"fmt"
	"io"

	"github.com/webtracing/wtf/wire"
)

// TextWriter prints records one per line.
type TextWriter struct {
	w io.Writer
}

// NewTextWriter writes a summary of h to w.
func NewTextWriter(w io.Writer, h wire.Header) (*TextWriter, error) {
	_, err := fmt.Fprintf(w, "WTF format=%d wtf=%d context=%q timebase=%d highres=%t\n",
		h.FormatVersion, h.WTFVersion, h.Context.Filename(), h.Timebase, h.Flags&wire.HighResolutionTimes != 0)
	if err != nil {
		return nil, err
	}
	return &TextWriter{w: w}, nil
}

func (w *TextWriter) WriteEvent(e Event) error {
	_, err := fmt.Fprintln(w.w, e.String())
	return err
}
