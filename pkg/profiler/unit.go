package profiler

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// CodeUnit is the stable identity handle for one executable unit, supplied
// by the host runtime. The host may compile several physical variants of
// the same source unit; Canonical must collapse all of them to a single
// handle, and the database performs every lookup through that canonical
// handle.
//
// Canonical handles are used as map keys and must be comparable — in
// practice, pointers into the host's own unit representation.
type CodeUnit interface {
	// Canonical returns the stable handle shared by all physical variants
	// of this unit. A unit with no variants returns itself.
	Canonical() CodeUnit

	// Name returns a short human-readable identifier for the unit, such
	// as an inferred function name or a source location.
	Name() string

	// DocumentFields returns host-controlled metadata merged into the
	// unit's serialized document entry. May return nil.
	DocumentFields() map[string]any
}

// unitHash derives the 64-bit descriptor hash recorded on each bytecodes
// entry. The hash identifies the unit's source descriptor across runs; it
// is not required to be unique.
func unitHash(unit CodeUnit) uint64 {
	return xxh3.HashString(unit.Name())
}

// formatHash renders a descriptor hash the way it appears in documents.
func formatHash(h uint64) string {
	return fmt.Sprintf("%016x", h)
}
