package profiler

// Bytecodes is the database's profiling record for one code unit. It is
// created lazily on first reference and lives for the remainder of the
// database's lifetime, even after the host tears the unit down.
type Bytecodes struct {
	index int
	unit  CodeUnit
	hash  uint64
}

func newBytecodes(index int, unit CodeUnit) *Bytecodes {
	return &Bytecodes{
		index: index,
		unit:  unit,
		hash:  unitHash(unit),
	}
}

// Index returns the record's database-local sequential index. Indices are
// assigned at creation time and never change.
func (b *Bytecodes) Index() int { return b.index }

// Unit returns the canonical handle this record was created for.
func (b *Bytecodes) Unit() CodeUnit { return b.unit }

// toDocument renders the record as a document entry: the host's own unit
// metadata plus the index, name, and descriptor hash owned by the store.
func (b *Bytecodes) toDocument() map[string]any {
	doc := make(map[string]any)
	for k, v := range b.unit.DocumentFields() {
		doc[k] = v
	}
	doc[fieldBytecodesID] = b.index
	doc[fieldName] = b.unit.Name()
	doc[fieldHash] = formatHash(b.hash)
	return doc
}
