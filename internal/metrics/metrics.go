// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics defines the Prometheus collectors exported by a trace
// database.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/xerrors"
)

// Metrics holds the ingestion collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Buffers      prometheus.Counter
	Bytes        prometheus.Counter
	Events       prometheus.Counter
	SourceErrors prometheus.Counter
	Zones        prometheus.Gauge
}

// New creates the collectors and registers them with reg. Collectors that
// are already registered, for example by another database sharing reg, are
// reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Buffers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wtf_buffers_total",
			Help: "Number of trace buffers decoded.",
		}),
		Bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wtf_bytes_total",
			Help: "Number of trace bytes received.",
		}),
		Events: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wtf_events_total",
			Help: "Number of events inserted into zones.",
		}),
		SourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wtf_source_errors_total",
			Help: "Number of data sources that failed.",
		}),
		Zones: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wtf_zones",
			Help: "Number of zones in the database.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.Buffers, err = register(reg, m.Buffers); err != nil {
		return nil, err
	}
	if m.Bytes, err = register(reg, m.Bytes); err != nil {
		return nil, err
	}
	if m.Events, err = register(reg, m.Events); err != nil {
		return nil, err
	}
	if m.SourceErrors, err = register(reg, m.SourceErrors); err != nil {
		return nil, err
	}
	if m.Zones, err = register(reg, m.Zones); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if xerrors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, xerrors.Errorf("registering metrics: %w", err)
	}
	return c, nil
}

func (m *Metrics) Buffer(n int) {
	if m == nil {
		return
	}
	m.Buffers.Inc()
	m.Bytes.Add(float64(n))
}

func (m *Metrics) Event() {
	if m != nil {
		m.Events.Inc()
	}
}

func (m *Metrics) SourceError() {
	if m != nil {
		m.SourceErrors.Inc()
	}
}

func (m *Metrics) SetZones(n int) {
	if m != nil {
		m.Zones.Set(float64(n))
	}
}
