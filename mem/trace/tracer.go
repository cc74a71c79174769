// Package trace records per-access rows for offline analysis: which level
// served an access, its address and type, the state it was granted, and the
// issue and completion cycles.
package trace

import (
	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/stats/statsdb"
)

// AccessRow is one served access in the "trace" table.
type AccessRow struct {
	Level      string
	Addr       uint64
	Type       string
	State      string
	IssueCycle uint64
	DoneCycle  uint64
}

// Tracer writes access rows through a statsdb recorder. Wrap the levels to
// observe during hierarchy construction; the wrappers record one row per
// completed access.
type Tracer struct {
	rec statsdb.Recorder
}

// NewTracer creates the "trace" table on rec.
func NewTracer(rec statsdb.Recorder) *Tracer {
	rec.CreateTable("trace", AccessRow{})

	return &Tracer{rec: rec}
}

// Record writes one row for a completed access.
func (t *Tracer) Record(level string, req *mem.AccessReq, doneCycle uint64) {
	t.rec.Insert("trace", AccessRow{
		Level:      level,
		Addr:       req.LineAddr,
		Type:       req.Type.String(),
		State:      req.State.Get().String(),
		IssueCycle: req.Cycle,
		DoneCycle:  doneCycle,
	})
}

// WrapLevel returns a level that records every access served by l.
// Invalidations and wiring pass through untouched.
func (t *Tracer) WrapLevel(l mem.Level) mem.Level {
	return &tracedLevel{Level: l, tracer: t}
}

type tracedLevel struct {
	mem.Level
	tracer *Tracer
}

func (l *tracedLevel) Access(req *mem.AccessReq) uint64 {
	doneCycle := l.Level.Access(req)
	l.tracer.Record(l.Name(), req, doneCycle)

	return doneCycle
}

// Translator is the TLB-facing entry point cores call.
type Translator interface {
	Translate(vAddr, curCycle uint64) uint64
	Name() string
}

// WrapTranslator returns a translator that records every translation served
// by tr. Translations have no request descriptor at this boundary, so the
// row carries the raw virtual address and a GETS type.
func (t *Tracer) WrapTranslator(tr Translator) Translator {
	return &tracedTranslator{inner: tr, tracer: t}
}

type tracedTranslator struct {
	inner  Translator
	tracer *Tracer
}

func (t *tracedTranslator) Name() string {
	return t.inner.Name()
}

func (t *tracedTranslator) Translate(vAddr, curCycle uint64) uint64 {
	doneCycle := t.inner.Translate(vAddr, curCycle)

	t.tracer.rec.Insert("trace", AccessRow{
		Level:      t.inner.Name(),
		Addr:       vAddr,
		Type:       mem.GETS.String(),
		State:      mem.Shared.String(),
		IssueCycle: curCycle,
		DoneCycle:  doneCycle,
	})

	return doneCycle
}
