// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"fmt"
	"strings"
)

// Arg is one named argument value of an event.
type Arg struct {
	Name  string
	Value any
}

// Args is an ordered list of argument values.
type Args []Arg

// Get returns the value of the named argument.
func (a Args) Get(name string) (any, bool) {
	for _, arg := range a {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return nil, false
}

// Set replaces the named argument or appends it.
func (a *Args) Set(name string, value any) {
	for i := range *a {
		if (*a)[i].Name == name {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Arg{Name: name, Value: value})
}

// Map returns the arguments as a map.
func (a Args) Map() map[string]any {
	m := make(map[string]any, len(a))
	for _, arg := range a {
		m[arg.Name] = arg.Value
	}
	return m
}

func (a Args) String() string {
	var sb strings.Builder
	for i, arg := range a {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%v", arg.Name, arg.Value)
	}
	return sb.String()
}

// newArgs pairs decoded values with the schema of t.
func newArgs(t *EventType, values []any) Args {
	if len(values) == 0 {
		return nil
	}
	args := make(Args, len(values))
	for i, v := range values {
		args[i] = Arg{Name: t.args[i].Name, Value: v}
	}
	return args
}
