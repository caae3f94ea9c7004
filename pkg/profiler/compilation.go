package profiler

import "context"

// Compilation records one compilation event for a unit, for example one
// optimization-tier compile. The payload is host-owned and opaque to the
// database; it is serialized as-is with encoding/json, so hosts control
// its document shape (implement json.Marshaler for full control).
//
// The database keeps every compilation in its append-only collection and
// additionally indexes the most recent one per unit; a later compilation
// for the same unit replaces the index entry but never the collection
// entry. Hosts may keep their own references to the returned record.
type Compilation struct {
	index   int
	payload any
}

// Index returns the record's position in the database's compilation
// collection.
func (c *Compilation) Index() int { return c.index }

// Payload returns the host-owned payload.
func (c *Compilation) Payload() any { return c.payload }

type compilationWorkerKey struct{}

// WithCompilationWorker marks ctx as belonging to a background compilation
// worker. Database.AddCompilation refuses to run under a marked context:
// compilation results must be recorded from the thread that owns the unit,
// not from the worker that produced them.
func WithCompilationWorker(ctx context.Context) context.Context {
	return context.WithValue(ctx, compilationWorkerKey{}, true)
}

// IsCompilationWorker reports whether ctx carries the compilation worker
// marker.
func IsCompilationWorker(ctx context.Context) bool {
	marked, _ := ctx.Value(compilationWorkerKey{}).(bool)
	return marked
}
