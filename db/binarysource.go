// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"bytes"

	"github.com/google/uuid"
	"github.com/webtracing/wtf/internal/event"
	"github.com/webtracing/wtf/wire"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
)

type sourceState uint8

const (
	stateHeader sourceState = iota
	stateEvents
	stateEnded
	stateFailed
	stateDisposed
)

// BinarySource decodes a binary trace stream delivered as a sequence of
// buffers. Buffers may split records anywhere: an incomplete trailing
// record is kept and completed by the next buffer.
type BinarySource struct {
	db     *Database
	id     uuid.UUID
	name   string
	logger *zap.Logger

	state   sourceState
	err     error
	done    chan struct{}
	pending []byte

	header     wire.Header
	ticksPerMs float64
	timeDelay  float64

	wireTypes  map[uint16]*EventType
	wireZones  map[uint16]*Zone
	zone       *Zone
	timeRanges map[uint32]uint32
	flows      map[uint32]uint32

	touched    []*Zone
	clamped    map[*Zone]bool
	eventCount int
}

// NewBinarySource adds a source named name to the database.
func (d *Database) NewBinarySource(name string) *BinarySource {
	s := &BinarySource{
		db:         d,
		id:         uuid.New(),
		name:       name,
		done:       make(chan struct{}),
		wireTypes:  make(map[uint16]*EventType),
		wireZones:  make(map[uint16]*Zone),
		timeRanges: make(map[uint32]uint32),
		flows:      make(map[uint32]uint32),
		clamped:    make(map[*Zone]bool),
	}
	s.logger = d.logger.With(zap.String("source", name))

	d.mu.Lock()
	defer d.unlock()
	s.wireTypes[wire.DefineWireID] = d.types.Lookup(wire.DefineName)
	d.addSource(s)
	return s
}

func (s *BinarySource) ID() uuid.UUID         { return s.id }
func (s *BinarySource) Name() string          { return s.name }
func (s *BinarySource) Done() <-chan struct{} { return s.done }

func (s *BinarySource) Err() error {
	s.db.mu.Lock()
	defer s.db.unlock()
	return s.err
}

// Header returns the trace header, once it has been decoded.
func (s *BinarySource) Header() (wire.Header, bool) {
	s.db.mu.Lock()
	defer s.db.unlock()
	return s.header, s.state != stateHeader
}

// TimeDelay returns the offset added to every event time of the source.
func (s *BinarySource) TimeDelay() float64 {
	s.db.mu.Lock()
	defer s.db.unlock()
	return s.timeDelay
}

// EventCount returns the number of events inserted so far.
func (s *BinarySource) EventCount() int {
	s.db.mu.Lock()
	defer s.db.unlock()
	return s.eventCount
}

// ReceiveBuffer decodes the next piece of the stream. The first buffers
// must carry the header. A fatal decode error stops the source and is
// returned as a *SourceError; events decoded before it remain.
func (s *BinarySource) ReceiveBuffer(b []byte) error {
	s.db.mu.Lock()
	defer s.db.unlock()
	if err := s.checkRunning(); err != nil {
		return err
	}
	s.db.metrics.Buffer(len(b))

	data := b
	if len(s.pending) > 0 {
		data = append(s.pending, b...)
		s.pending = nil
	}
	c := wire.NewCursor(data)
	if err := s.decode(c, false); err != nil {
		return s.fail(err)
	}
	if c.Len() > 0 {
		s.pending = bytes.Clone(c.Remaining())
	}
	return nil
}

// ReceiveChunk decodes a self-contained chunk of records whose string
// fields index into table. The header must already have been received.
func (s *BinarySource) ReceiveChunk(b []byte, table *wire.StringTable) error {
	s.db.mu.Lock()
	defer s.db.unlock()
	if err := s.checkRunning(); err != nil {
		return err
	}
	s.db.metrics.Buffer(len(b))
	if s.state == stateHeader {
		return s.fail(&SourceError{Source: s.name, Message: "chunk received before header"})
	}
	if len(s.pending) > 0 {
		return s.fail(&SourceError{Source: s.name, Message: "chunk received inside a partial record"})
	}
	c := wire.NewCursor(b)
	c.Strings = table
	if err := s.decode(c, true); err != nil {
		return s.fail(err)
	}
	return nil
}

// End marks the end of the stream.
func (s *BinarySource) End() error {
	s.db.mu.Lock()
	defer s.db.unlock()
	if err := s.checkRunning(); err != nil {
		return err
	}
	if s.state == stateHeader {
		return s.fail(&SourceError{Source: s.name, Message: "stream ended before the trace header", Err: wire.ErrShortBuffer})
	}
	if len(s.pending) > 0 {
		s.logger.Warn("dropping truncated trailing record", zap.Int("bytes", len(s.pending)))
		s.pending = nil
	}
	s.state = stateEnded
	close(s.done)
	s.logger.Debug("source ended", zap.Int("events", s.eventCount))
	s.db.sourceEnded(s)
	return nil
}

// Fail stops the source because its transport failed.
func (s *BinarySource) Fail(message, detail string) {
	s.db.mu.Lock()
	defer s.db.unlock()
	if s.checkRunning() != nil {
		return
	}
	s.fail(&SourceError{Source: s.name, Message: message, Detail: detail})
}

// Dispose stops the source. A buffer being decoded is finished first.
func (s *BinarySource) Dispose() {
	s.db.mu.Lock()
	defer s.db.unlock()
	if s.checkRunning() != nil {
		return
	}
	s.state = stateDisposed
	s.err = ErrSourceDisposed
	s.pending = nil
	close(s.done)
}

func (s *BinarySource) checkRunning() error {
	switch s.state {
	case stateEnded:
		return ErrSourceEnded
	case stateFailed, stateDisposed:
		return s.err
	}
	return nil
}

func (s *BinarySource) fail(err error) error {
	var se *SourceError
	if !xerrors.As(err, &se) {
		se = &SourceError{Source: s.name, Message: "decode failed", Err: err}
	}
	s.state = stateFailed
	s.err = se
	s.pending = nil
	close(s.done)
	s.db.sourceError(s, se)
	return se
}

// decode consumes whole records from c. In streaming mode a record cut
// short by the end of c is left unread; in chunk mode it is an error.
func (s *BinarySource) decode(c *wire.Cursor, chunk bool) error {
	if s.state == stateHeader {
		h, err := wire.ReadHeader(c)
		if xerrors.Is(err, wire.ErrShortBuffer) {
			c.Seek(0)
			return nil
		}
		if err != nil {
			return &SourceError{Source: s.name, Message: "bad trace header", Err: err}
		}
		s.initialize(h)
	}

	defer s.endBatches()
	for c.Len() > 0 {
		start := c.Offset()
		err := s.decodeRecord(c)
		if xerrors.Is(err, wire.ErrShortBuffer) {
			if chunk {
				return &SourceError{Source: s.name, Message: "truncated record in chunk", Err: err}
			}
			c.Seek(start)
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *BinarySource) initialize(h wire.Header) {
	s.header = h
	s.ticksPerMs = h.TicksPerMillisecond()
	s.timeDelay = s.db.computeTimeDelay(h.Timebase)
	s.state = stateEvents
	s.logger.Info("trace header",
		zap.String("context", h.Context.Filename()),
		zap.Uint32("formatVersion", h.FormatVersion),
		zap.Int64("timebase", h.Timebase),
		zap.Float64("timeDelay", s.timeDelay))
	s.db.sourceInitialized(s)
}

func (s *BinarySource) decodeRecord(c *wire.Cursor) error {
	wireID, raw, err := wire.ReadRecordHeader(c)
	if err != nil {
		return err
	}
	t, ok := s.wireTypes[wireID]
	if !ok {
		return &SourceError{
			Source:  s.name,
			Message: "reference to undefined event type",
			Detail:  xerrors.Errorf("wire id %d at offset %d", wireID, c.Offset()-6).Error(),
			Err:     ErrUndefinedEventType,
		}
	}
	values, err := wire.ReadArgs(c, t.args)
	if err != nil {
		if xerrors.Is(err, wire.ErrShortBuffer) {
			return err
		}
		return &SourceError{Source: s.name, Message: "bad arguments for " + t.name, Err: err}
	}
	time := float64(raw)/s.ticksPerMs + s.timeDelay

	switch t.kind {
	case event.KindDefine:
		return s.define(values)
	case event.KindZoneCreate:
		s.createZone(values)
		return nil
	case event.KindZoneDelete:
		return nil
	case event.KindZoneSet:
		id, _ := values[0].(uint16)
		z, ok := s.wireZones[id]
		if !ok {
			s.logger.Warn("zone#set for unknown zone", zap.Uint16("zoneId", id))
			return nil
		}
		s.zone = z
		return nil
	case event.KindTimeRangeBegin, event.KindTimeRangeEnd:
		values[0] = s.remap(s.timeRanges, &s.db.timeRangeIDs, values[0])
	case event.KindFlowBranch:
		values[0] = s.remap(s.flows, &s.db.flowIDs, values[0])
		if parent, _ := values[1].(uint32); parent != 0 {
			values[1] = s.remap(s.flows, &s.db.flowIDs, parent)
		}
	case event.KindFlowExtend, event.KindFlowTerminate, event.KindFlowAppendData:
		values[0] = s.remap(s.flows, &s.db.flowIDs, values[0])
	}
	s.insert(t, time, values)
	return nil
}

// remap translates a stream-local ID to a database-wide one, allocating
// it on first sight.
func (s *BinarySource) remap(ids map[uint32]uint32, c *counter, v any) any {
	local, ok := v.(uint32)
	if !ok {
		return v
	}
	id, ok := ids[local]
	if !ok {
		id = uint32(c.next())
		ids[local] = id
	}
	return id
}

func (s *BinarySource) define(values []any) error {
	wireID, _ := values[0].(uint16)
	class, _ := values[1].(uint16)
	flags, _ := values[2].(uint32)
	name, _ := values[3].(string)
	sig, _ := values[4].(string)
	if name == "" {
		return &SourceError{Source: s.name, Message: "event type defined without a name", Detail: xerrors.Errorf("wire id %d", wireID).Error()}
	}
	if wireID == wire.DefineWireID {
		return &SourceError{Source: s.name, Message: "cannot redefine " + wire.DefineName}
	}
	if class > uint16(wire.ClassScope) {
		return &SourceError{Source: s.name, Message: "bad event class for " + name, Detail: wire.Class(class).String()}
	}
	full, err := wire.ParseDefine(name, sig)
	if err != nil {
		return &SourceError{Source: s.name, Message: "bad signature for " + name, Detail: sig, Err: err}
	}
	name, args := full.Name, full.Args
	t, replaced := s.db.types.Define(name, wire.Class(class), wire.Flags(flags), args)
	if replaced {
		s.logger.Warn("event type redefined with a different shape", zap.String("type", t.String()))
	}
	s.wireTypes[wireID] = t
	return nil
}

func (s *BinarySource) createZone(values []any) {
	id, _ := values[0].(uint16)
	name, _ := values[1].(string)
	typ, _ := values[2].(string)
	location, _ := values[3].(string)
	if z, ok := s.wireZones[id]; ok {
		s.db.resetZoneInfo(z, name, typ, location)
		return
	}
	s.wireZones[id] = s.db.createOrGetZone(name, typ, location)
}

// currentZone returns the zone that events are inserted into, creating the
// default zone described by the header if no zone has been selected.
func (s *BinarySource) currentZone() *Zone {
	if s.zone == nil {
		ci := s.header.Context
		s.zone = s.db.createOrGetZone(ci.Filename(), ZoneTypeScript, ci.URI)
	}
	return s.zone
}

func (s *BinarySource) insert(t *EventType, time float64, values []any) {
	z := s.currentZone()
	if !slices.Contains(s.touched, z) {
		z.events.BeginInserting()
		s.touched = append(s.touched, z)
	}
	if t.kind == event.KindScopeLeave && z.events.OpenScopes() == 0 {
		s.logger.Warn("scope leave without enter", zap.String("zone", z.Name()), zap.Float64("time", time))
	}
	if last := z.events.LastEventTime(); z.events.Len() > 0 && time < last && !s.clamped[z] {
		// Reported once per zone; later events of the zone are clamped silently.
		s.clamped[z] = true
		s.logger.Warn("event time clamped", zap.String("zone", z.Name()),
			zap.Float64("time", time), zap.Float64("last", last))
	}
	z.events.Insert(t, time, newArgs(t, values))
	s.eventCount++
	s.db.metrics.Event()
}

// endBatches delivers the events of the current buffer to the ancillary
// lists of every zone it touched.
func (s *BinarySource) endBatches() {
	if len(s.touched) == 0 {
		return
	}
	for _, z := range s.touched {
		z.events.EndInserting()
	}
	s.touched = s.touched[:0]
	s.db.invalidate()
}

