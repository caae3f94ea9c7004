package profiler

import "time"

// Event is an immutable, append-only log entry: a timestamp, the unit's
// profiling record at log time, the unit's latest compilation at log time
// if any, a short summary tag, and a free-form detail string.
type Event struct {
	time        float64
	bytecodes   *Bytecodes
	compilation *Compilation
	summary     string
	detail      string
}

// Time returns the event timestamp in seconds since the Unix epoch.
// Timestamps are comparable across events within one process run.
func (e Event) Time() float64 { return e.time }

// Bytecodes returns the profiling record the event refers to.
func (e Event) Bytecodes() *Bytecodes { return e.bytecodes }

// Compilation returns the compilation active for the unit when the event
// was logged, or nil if none had been recorded.
func (e Event) Compilation() *Compilation { return e.compilation }

// Summary returns the event's fixed summary tag.
func (e Event) Summary() string { return e.summary }

// Detail returns the event's free-form detail string.
func (e Event) Detail() string { return e.detail }

func (e Event) toDocument() EventDocument {
	doc := EventDocument{
		Time:      e.time,
		Bytecodes: e.bytecodes.Index(),
		Summary:   e.summary,
		Detail:    e.detail,
	}
	if e.compilation != nil {
		idx := e.compilation.Index()
		doc.Compilation = &idx
	}
	return doc
}

// currentTime captures the event timestamp. Wall-clock seconds, matching
// the persisted document contract.
func currentTime() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
