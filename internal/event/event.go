// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package event

import "github.com/webtracing/wtf/wire"

// Kind identifies a built-in event. Custom events have kind KindCustom.
//
// Kinds are resolved from event names once, when an event type is
// registered, so decoding never dispatches on strings.
type Kind uint8

const (
	KindCustom Kind = iota

	// Structural events. These update decoder state and are never stored.
	KindDefine
	KindZoneCreate
	KindZoneDelete
	KindZoneSet

	// Scopes.
	KindScopeEnter
	KindScopeEnterTracing
	KindScopeLeave
	KindScopeAppendData

	// Trace annotations.
	KindMark
	KindTimeStamp
	KindDiscontinuity

	// Time ranges.
	KindTimeRangeBegin
	KindTimeRangeEnd

	// Frames.
	KindFrameStart
	KindFrameEnd

	// Flows.
	KindFlowBranch
	KindFlowExtend
	KindFlowTerminate
	KindFlowAppendData

	NumKinds
)

// Structural reports whether events of kind k mutate decoder state
// instead of being inserted into a zone.
func (k Kind) Structural() bool {
	return k >= KindDefine && k <= KindZoneSet
}

// Spec is the specification of a built-in event type.
type Spec struct {
	// Name is the full "namespace#name" of the event.
	Name string

	// Args is the argument layout of the event.
	Args []wire.Arg

	Class wire.Class
	Flags wire.Flags
}
