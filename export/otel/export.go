// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package otel replays the scopes of a zone as OpenTelemetry spans.
package otel

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/webtracing/wtf/db"
	"github.com/webtracing/wtf/wire"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// An Option configures ExportZone.
type Option func(*options)

type options struct {
	epoch     time.Time
	haveEpoch bool
	internal  bool
}

// WithEpoch sets the wall-clock time that event time zero maps to. The
// default is the timebase of the zone's database.
func WithEpoch(t time.Time) Option {
	return func(o *options) { o.epoch, o.haveEpoch = t, true }
}

// WithInternal includes internal instance events as span events.
func WithInternal() Option {
	return func(o *options) { o.internal = true }
}

type cs struct {
	ctx   context.Context
	span  trace.Span
	scope *db.Scope
}

// ExportZone emits one root span covering the zone, one child span per
// scope with the nesting preserved, and one span event per instance event
// on its enclosing span. Scopes still open end at the last event of the
// zone.
// The zone must not be receiving events while it is exported.
func ExportZone(ctx context.Context, tracer trace.Tracer, z *db.Zone, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !o.haveEpoch {
		tb, _ := z.Database().Timebase()
		o.epoch = time.UnixMilli(tb)
	}
	at := func(ms float64) trace.SpanEventOption {
		return trace.WithTimestamp(o.epoch.Add(time.Duration(math.Round(ms * float64(time.Millisecond)))))
	}

	l := z.EventList()
	if l.Len() == 0 {
		return nil
	}
	rctx, root := tracer.Start(ctx, z.Name(), at(l.FirstEventTime()), trace.WithAttributes(
		attribute.String("wtf.zone.type", z.Type()),
		attribute.String("wtf.zone.location", z.Location()),
	))
	stack := []cs{{ctx: rctx, span: root}}
	endAll := func(end trace.SpanEventOption) {
		for i := len(stack) - 1; i >= 0; i-- {
			if s := stack[i].scope; s != nil {
				stack[i].span.SetAttributes(Attributes(s.Data())...)
			}
			stack[i].span.End(end)
		}
	}

	for it := l.Begin(); !it.Done(); it.Next() {
		if err := ctx.Err(); err != nil {
			endAll(at(it.Time()))
			return err
		}
		top := stack[len(stack)-1]
		switch {
		case it.IsScope():
			sctx, span := tracer.Start(top.ctx, it.Name(), at(it.Time()), trace.WithAttributes(Attributes(it.Args())...))
			stack = append(stack, cs{ctx: sctx, span: span, scope: it.Scope()})
		case it.IsScopeLeave():
			if top.scope != it.Scope() {
				continue
			}
			top.span.SetAttributes(Attributes(top.scope.Data())...)
			top.span.End(at(it.Time()))
			stack = stack[:len(stack)-1]
		default:
			t := it.Type()
			if t.IsInternal() && !o.internal || t.Flags().Has(wire.FlagAppendScopeData) {
				// Scope data is reported as span attributes.
				continue
			}
			top.span.AddEvent(it.Name(), at(it.Time()), trace.WithAttributes(Attributes(it.Args())...))
		}
	}
	endAll(at(l.LastEventTime()))
	return nil
}

// Attributes converts event arguments to span attributes. Null values are
// dropped and values without a direct attribute type are formatted.
func Attributes(args db.Args) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, len(args))
	for _, a := range args {
		k := attribute.Key(a.Name)
		switch v := a.Value.(type) {
		case nil:
			continue
		case string:
			kvs = append(kvs, k.String(v))
		case bool:
			kvs = append(kvs, k.Bool(v))
		case int8:
			kvs = append(kvs, k.Int64(int64(v)))
		case int16:
			kvs = append(kvs, k.Int64(int64(v)))
		case int32:
			kvs = append(kvs, k.Int64(int64(v)))
		case uint8:
			kvs = append(kvs, k.Int64(int64(v)))
		case uint16:
			kvs = append(kvs, k.Int64(int64(v)))
		case uint32:
			kvs = append(kvs, k.Int64(int64(v)))
		case float32:
			kvs = append(kvs, k.Float64(float64(v)))
		case float64:
			kvs = append(kvs, k.Float64(v))
		case []bool:
			kvs = append(kvs, k.BoolSlice(v))
		case []int8:
			kvs = append(kvs, k.Int64Slice(widen(v)))
		case []int16:
			kvs = append(kvs, k.Int64Slice(widen(v)))
		case []int32:
			kvs = append(kvs, k.Int64Slice(widen(v)))
		case []uint8:
			kvs = append(kvs, k.Int64Slice(widen(v)))
		case []uint16:
			kvs = append(kvs, k.Int64Slice(widen(v)))
		case []uint32:
			kvs = append(kvs, k.Int64Slice(widen(v)))
		case []float32:
			f := make([]float64, len(v))
			for i, x := range v {
				f[i] = float64(x)
			}
			kvs = append(kvs, k.Float64Slice(f))
		case []float64:
			kvs = append(kvs, k.Float64Slice(v))
		default:
			kvs = append(kvs, k.String(fmt.Sprint(v)))
		}
	}
	return kvs
}

func widen[T int8 | int16 | int32 | uint8 | uint16 | uint32](s []T) []int64 {
	out := make([]int64, len(s))
	for i, x := range s {
		out[i] = int64(x)
	}
	return out
}
