// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/dlclark/regexp2"
	"golang.org/x/xerrors"
)

// ExpressionKind is the class of a query expression.
type ExpressionKind int

const (
	// ExpressionFilter is a name pattern with optional argument predicates.
	ExpressionFilter ExpressionKind = iota
	// ExpressionQuery is a structured query.
	ExpressionQuery
)

// ClassifyExpression reports whether expr is a filter or a structured
// query. Argument predicates are ignored; what remains is a filter if it
// does not start with a slash and contains no parenthesis, or if it is a
// /pattern/flags regular expression.
func ClassifyExpression(expr string) ExpressionKind {
	pattern, _, err := splitPredicates(expr)
	if err != nil {
		return ExpressionFilter
	}
	return classifyPattern(pattern)
}

func classifyPattern(pattern string) ExpressionKind {
	if _, _, ok := parseRegexpLiteral(pattern); ok {
		return ExpressionFilter
	}
	if strings.HasPrefix(pattern, "/") || strings.Contains(pattern, "(") {
		return ExpressionQuery
	}
	return ExpressionFilter
}

// parseRegexpLiteral splits "/body/flags" with flags drawn from g, i and m.
func parseRegexpLiteral(s string) (body, flags string, ok bool) {
	if len(s) < 3 || s[0] != '/' {
		return "", "", false
	}
	end := strings.LastIndexByte(s, '/')
	if end == 0 || end == 1 {
		return "", "", false
	}
	body, flags = s[1:end], s[end+1:]
	if strings.Trim(flags, "gim") != "" {
		return "", "", false
	}
	return body, flags, true
}

type predicate struct {
	name   string
	negate bool
	value  any // string, float64 or bool
}

func (p predicate) match(args Args) bool {
	v, ok := args.Get(p.name)
	if !ok {
		return p.negate
	}
	return equalValue(v, p.value) != p.negate
}

func equalValue(arg, want any) bool {
	switch want := want.(type) {
	case float64:
		f, ok := numeric(arg)
		return ok && f == want
	case bool:
		b, ok := arg.(bool)
		return ok && b == want
	case string:
		if s, ok := arg.(string); ok {
			return s == want
		}
		return fmt.Sprint(arg) == want
	}
	return false
}

func numeric(v any) (float64, bool) {
	switch v := v.(type) {
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// splitPredicates separates name==value and name!=value tokens from the
// rest of expr.
// splitPredicates takes the argument predicates out of expr. The text
// between predicates is kept verbatim, apart from surrounding whitespace,
// and the remaining pieces are joined by single spaces.
func splitPredicates(expr string) (string, []predicate, error) {
	var rest []string
	var preds []predicate
	keep := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			rest = append(rest, s)
		}
	}
	seg := 0
	for i := 0; i < len(expr); {
		if isSpace(expr[i]) {
			i++
			continue
		}
		j := i
		for j < len(expr) && !isSpace(expr[j]) {
			j++
		}
		p, ok, err := parsePredicate(expr[i:j])
		if err != nil {
			return "", nil, err
		}
		if ok {
			keep(expr[seg:i])
			preds = append(preds, p)
			seg = j
		}
		i = j
	}
	keep(expr[seg:])
	return strings.Join(rest, " "), preds, nil
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func parsePredicate(tok string) (predicate, bool, error) {
	i := strings.Index(tok, "==")
	negate := false
	if j := strings.Index(tok, "!="); j >= 0 && (i < 0 || j < i) {
		i, negate = j, true
	}
	if i <= 0 || !isIdent(tok[:i]) {
		return predicate{}, false, nil
	}
	p := predicate{name: tok[:i], negate: negate}
	raw := tok[i+2:]
	switch {
	case strings.HasPrefix(raw, `"`) || strings.HasPrefix(raw, `'`):
		if len(raw) < 2 || raw[len(raw)-1] != raw[0] {
			return predicate{}, false, xerrors.Errorf("%w: unterminated string in %q", ErrBadFilter, tok)
		}
		p.value = raw[1 : len(raw)-1]
	case raw == "true" || raw == "false":
		p.value = raw == "true"
	default:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			p.value = f
		} else {
			p.value = raw
		}
	}
	return p, true, nil
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '.'):
		default:
			return false
		}
	}
	return s != ""
}

// A Filter selects events by type name and argument values. Type matches
// are cached by type ID, so a Filter must not be used concurrently.
type Filter struct {
	expr    string
	pattern string
	substr  string
	re      *regexp2.Regexp
	preds   []predicate
	matched *roaring.Bitmap
	tested  *roaring.Bitmap
}

// NewFilter compiles a filter expression. An empty pattern matches every
// non-internal event type.
func NewFilter(expr string) (*Filter, error) {
	pattern, preds, err := splitPredicates(expr)
	if err != nil {
		return nil, err
	}
	if classifyPattern(pattern) == ExpressionQuery {
		return nil, xerrors.Errorf("%q: %w", expr, ErrQueryNotSupported)
	}
	f := &Filter{
		expr:    expr,
		pattern: pattern,
		preds:   preds,
		matched: roaring.New(),
		tested:  roaring.New(),
	}
	if body, flags, ok := parseRegexpLiteral(pattern); ok {
		opts := regexp2.RegexOptions(regexp2.ECMAScript)
		if strings.Contains(flags, "i") {
			opts |= regexp2.IgnoreCase
		}
		if strings.Contains(flags, "m") {
			opts |= regexp2.Multiline
		}
		re, err := regexp2.Compile(body, opts)
		if err != nil {
			return nil, xerrors.Errorf("%w: %v", ErrBadFilter, err)
		}
		f.re = re
	} else {
		f.substr = strings.ToLower(pattern)
	}
	return f, nil
}

func (f *Filter) String() string { return f.expr }

// MatchType reports whether events of type t can match the filter.
// Internal types never match.
func (f *Filter) MatchType(t *EventType) bool {
	id := uint32(t.id)
	if f.tested.Contains(id) {
		return f.matched.Contains(id)
	}
	ok := !t.IsInternal() && f.matchName(t.name)
	f.tested.Add(id)
	if ok {
		f.matched.Add(id)
	}
	return ok
}

func (f *Filter) matchName(name string) bool {
	if f.re != nil {
		ok, err := f.re.MatchString(name)
		return err == nil && ok
	}
	return f.substr == "" || strings.Contains(strings.ToLower(name), f.substr)
}

// Match reports whether the event at it matches.
func (f *Filter) Match(it *EventIterator) bool {
	if !f.MatchType(it.Type()) {
		return false
	}
	args := it.Args()
	for _, p := range f.preds {
		if !p.match(args) {
			return false
		}
	}
	return true
}

// Apply returns the matching events of l in time order.
func (f *Filter) Apply(l *EventList) []EventID {
	var ids []EventID
	for it := l.Begin(); !it.Done(); it.Next() {
		if f.Match(it) {
			ids = append(ids, it.ID())
		}
	}
	return ids
}
