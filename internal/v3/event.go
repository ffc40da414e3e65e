// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package v3 describes the built-in events of binary format version 3.
package v3

import (
	"github.com/webtracing/wtf/internal/event"
	"github.com/webtracing/wtf/wire"
)

// Specs returns the built-in event specifications, indexed by kind.
// The entry for event.KindCustom is empty.
func Specs() []event.Spec {
	return specs[:]
}

// Lookup returns the kind of the built-in event with the given name, or
// event.KindCustom if there is none.
func Lookup(name string) event.Kind {
	return byName[name]
}

var byName = func() map[string]event.Kind {
	m := make(map[string]event.Kind, len(specs))
	for k, s := range specs {
		if s.Name != "" {
			m[s.Name] = event.Kind(k)
		}
	}
	return m
}()

const (
	builtin  = wire.FlagBuiltin
	internal = wire.FlagBuiltin | wire.FlagInternal
)

var specs = [...]event.Spec{
	event.KindDefine: {
		Name:  wire.DefineName,
		Args:  wire.DefineArgs,
		Flags: internal,
	},
	event.KindZoneCreate: {
		Name:  "wtf.zone#create",
		Args:  args("uint16 zoneId, ascii name, ascii type, ascii location"),
		Flags: internal,
	},
	event.KindZoneDelete: {
		Name:  "wtf.zone#delete",
		Args:  args("uint16 zoneId"),
		Flags: internal,
	},
	event.KindZoneSet: {
		Name:  "wtf.zone#set",
		Args:  args("uint16 zoneId"),
		Flags: internal,
	},

	event.KindScopeEnter: {
		Name:  "wtf.scope#enter",
		Args:  args("ascii name"),
		Class: wire.ClassScope,
		Flags: builtin,
	},
	event.KindScopeEnterTracing: {
		Name:  "wtf.scope#enterTracing",
		Class: wire.ClassScope,
		Flags: internal | wire.FlagSystemTime,
	},
	event.KindScopeLeave: {
		Name:  "wtf.scope#leave",
		Flags: internal,
	},
	event.KindScopeAppendData: {
		Name:  "wtf.scope#appendData",
		Args:  args("ascii name, any value"),
		Flags: internal | wire.FlagAppendScopeData,
	},

	event.KindMark: {
		Name:  "wtf.trace#mark",
		Args:  args("ascii name, any value"),
		Flags: builtin,
	},
	event.KindTimeStamp: {
		Name:  "wtf.trace#timeStamp",
		Args:  args("ascii name, any value"),
		Flags: builtin,
	},
	event.KindDiscontinuity: {
		Name:  "wtf.trace#discontinuity",
		Flags: builtin,
	},

	event.KindTimeRangeBegin: {
		Name:  "wtf.timeRange#begin",
		Args:  args("uint32 id, ascii name, any value"),
		Flags: builtin,
	},
	event.KindTimeRangeEnd: {
		Name:  "wtf.timeRange#end",
		Args:  args("uint32 id"),
		Flags: builtin,
	},

	event.KindFrameStart: {
		Name:  "wtf.timing#frameStart",
		Args:  args("uint32 number"),
		Flags: builtin,
	},
	event.KindFrameEnd: {
		Name:  "wtf.timing#frameEnd",
		Args:  args("uint32 number"),
		Flags: builtin,
	},

	event.KindFlowBranch: {
		Name:  "wtf.flow#branch",
		Args:  args("uint32 id, uint32 parentId, ascii name, any value"),
		Flags: internal,
	},
	event.KindFlowExtend: {
		Name:  "wtf.flow#extend",
		Args:  args("uint32 id, ascii name, any value"),
		Flags: internal,
	},
	event.KindFlowTerminate: {
		Name:  "wtf.flow#terminate",
		Args:  args("uint32 id, any value"),
		Flags: internal,
	},
	event.KindFlowAppendData: {
		Name:  "wtf.flow#appendData",
		Args:  args("uint32 id, ascii name, any value"),
		Flags: internal | wire.FlagAppendFlowData,
	},
}

func args(s string) []wire.Arg {
	a, err := wire.ParseArgs(s)
	if err != nil {
		panic(err)
	}
	return a
}
