// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"sync"

	"github.com/webtracing/wtf/internal/event"
	v3 "github.com/webtracing/wtf/internal/v3"
	"github.com/webtracing/wtf/wire"
	"golang.org/x/exp/slices"
)

// EventType describes one kind of event: its name, class, flags and
// argument schema. Event types are immutable once registered.
type EventType struct {
	id    int
	name  string
	class wire.Class
	flags wire.Flags
	args  []wire.Arg
	kind  event.Kind
}

// ID returns the index of the type in its registry. IDs are dense and
// start at zero.
func (t *EventType) ID() int { return t.id }

// Name returns the "namespace#name" of the type.
func (t *EventType) Name() string { return t.name }

func (t *EventType) Class() wire.Class { return t.class }
func (t *EventType) Flags() wire.Flags { return t.flags }

// Args returns the argument schema. The result must not be modified.
func (t *EventType) Args() []wire.Arg { return t.args }

// IsInternal reports whether the type is hidden from users.
func (t *EventType) IsInternal() bool { return t.flags.Has(wire.FlagInternal) }

// IsBuiltin reports whether the type is one of the built-in events.
func (t *EventType) IsBuiltin() bool { return t.kind != event.KindCustom }

// ArgIndex returns the position of the named argument, or -1.
func (t *EventType) ArgIndex(name string) int {
	for i, a := range t.args {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// Signature returns the textual signature of the type.
func (t *EventType) Signature() wire.Signature {
	return wire.Signature{Name: t.name, Args: t.args}
}

func (t *EventType) String() string { return t.Signature().String() }

func (t *EventType) sameShape(class wire.Class, args []wire.Arg) bool {
	return t.class == class && slices.Equal(t.args, args)
}

// EventTypeRegistry holds every event type known to a database. Types are
// keyed by name; wire IDs are local to each data source and never appear
// here. It is safe for concurrent use.
type EventTypeRegistry struct {
	mu     sync.RWMutex
	types  []*EventType
	byName map[string]*EventType
}

func newEventTypeRegistry() *EventTypeRegistry {
	r := &EventTypeRegistry{byName: make(map[string]*EventType)}
	for _, s := range v3.Specs() {
		if s.Name != "" {
			r.Define(s.Name, s.Class, s.Flags, s.Args)
		}
	}
	return r
}

// Define registers an event type and returns it. If a type with the same
// name, class and arguments exists, it is returned instead. A type with the
// same name but a different shape replaces the old one for later lookups;
// events already decoded keep the old type. The second result reports
// whether such a replacement happened.
func (r *EventTypeRegistry) Define(name string, class wire.Class, flags wire.Flags, args []wire.Arg) (*EventType, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.byName[name]
	if ok && old.sameShape(class, args) {
		return old, false
	}
	t := &EventType{
		id:    len(r.types),
		name:  name,
		class: class,
		flags: flags,
		args:  slices.Clone(args),
		kind:  resolveKind(name, class, args),
	}
	r.types = append(r.types, t)
	r.byName[name] = t
	return t, ok
}

// DefineSignature is like Define but parses a "name(type arg, ...)" signature.
func (r *EventTypeRegistry) DefineSignature(signature string, class wire.Class, flags wire.Flags) (*EventType, error) {
	sig, err := wire.ParseSignature(signature)
	if err != nil {
		return nil, err
	}
	t, _ := r.Define(sig.Name, class, flags, sig.Args)
	return t, nil
}

// resolveKind maps a name to its built-in kind. A built-in name with an
// unexpected shape is treated as a custom event so that handlers never see
// arguments they do not understand.
func resolveKind(name string, class wire.Class, args []wire.Arg) event.Kind {
	k := v3.Lookup(name)
	if k == event.KindCustom {
		return k
	}
	s := v3.Specs()[k]
	if s.Class != class || !slices.Equal(s.Args, args) {
		return event.KindCustom
	}
	return k
}

// Lookup returns the current type registered under name, or nil.
func (r *EventTypeRegistry) Lookup(name string) *EventType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Get returns the type with the given ID, or nil.
func (r *EventTypeRegistry) Get(id int) *EventType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || id >= len(r.types) {
		return nil
	}
	return r.types[id]
}

// Len returns the number of registered types, including replaced ones.
func (r *EventTypeRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// All returns every registered type in ID order.
func (r *EventTypeRegistry) All() []*EventType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.types)
}
