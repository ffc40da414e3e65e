// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

// StringTable is an indexed list of strings shared by the records of one
// buffer. Identical strings are stored once.
type StringTable struct {
	strings []string
	index   map[string]uint32
}

// NewStringTable returns a table holding the given strings in order.
func NewStringTable(strs ...string) *StringTable {
	t := &StringTable{index: make(map[string]uint32, len(strs))}
	for _, s := range strs {
		t.index[s] = uint32(len(t.strings))
		t.strings = append(t.strings, s)
	}
	return t
}

// Add returns the index of s, appending it if it is not in the table yet.
func (t *StringTable) Add(s string) uint32 {
	if i, ok := t.index[s]; ok {
		return i
	}
	if t.index == nil {
		t.index = make(map[string]uint32)
	}
	i := uint32(len(t.strings))
	t.strings = append(t.strings, s)
	t.index[s] = i
	return i
}

func (t *StringTable) Get(i uint32) (string, bool) {
	if int64(i) >= int64(len(t.strings)) {
		return "", false
	}
	return t.strings[i], true
}

func (t *StringTable) Len() int { return len(t.strings) }

// Strings returns the table contents in index order.
func (t *StringTable) Strings() []string { return t.strings }
