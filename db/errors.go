// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import "golang.org/x/xerrors"

var (
	// ErrUndefinedEventType is reported for a record whose wire ID was
	// never defined by the source.
	ErrUndefinedEventType = xerrors.New("db: undefined event type")
	ErrSourceDisposed     = xerrors.New("db: source disposed")
	ErrSourceEnded        = xerrors.New("db: data received after end of source")
	ErrQueryNotSupported  = xerrors.New("db: structured queries are not supported")
	ErrBadFilter          = xerrors.New("db: bad filter expression")
)

// SourceError is the fatal error that stopped a data source.
type SourceError struct {
	Source  string
	Message string
	Detail  string
	Err     error
}

func (e *SourceError) Error() string {
	msg := "db: source " + e.Source + ": " + e.Message
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SourceError) Unwrap() error { return e.Err }
