// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import "github.com/google/uuid"

// A DataSource feeds one trace stream into a Database.
type DataSource interface {
	ID() uuid.UUID
	Name() string
	// Done is closed once the source has ended, failed or been disposed.
	Done() <-chan struct{}
	// Err returns the error that stopped the source, or nil if it ended
	// normally or is still running.
	Err() error
	// Dispose stops the source. Events already applied stay in the
	// database.
	Dispose()
}
