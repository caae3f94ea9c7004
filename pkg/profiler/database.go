package profiler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/profiledb/profiledb/internal/safe"
)

// Database accumulates profiling data for one logical session: an
// append-only collection of per-unit profiling records, one of compilation
// records, and one of events, plus lookup indices from canonical unit
// handle to its profiling record and to its latest compilation.
//
// All mutating operations take the database's internal lock for the
// duration of the index and collection update; none of them performs I/O
// while holding it. Multiple databases may exist at once, each with its own
// at-exit registration.
type Database struct {
	id      uint64
	session uuid.UUID
	host    string
	logger  zerolog.Logger

	mu             sync.Mutex
	bytecodes      []*Bytecodes
	compilations   []*Compilation
	events         []Event
	bytecodesMap   map[CodeUnit]*Bytecodes
	compilationMap map[CodeUnit]*Compilation

	// At-exit bookkeeping. Guarded by reg's lock, never by mu, so a
	// database mutation path cannot block on shutdown bookkeeping.
	reg         *atExitRegistry
	pendingSave bool
	atExitPath  string
}

// Option configures a Database at construction time.
type Option func(*Database)

// WithLogger attaches a logger to the database. Without it the database
// logs nothing.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Database) { d.logger = logger }
}

// New creates an empty database for the named host runtime session. The
// database identity is drawn from a process-wide counter, so identities
// are unique across all databases in one process run.
func New(host string, opts ...Option) *Database {
	d := &Database{
		id:             databaseCounter.Add(1),
		session:        uuid.New(),
		host:           host,
		logger:         zerolog.Nop(),
		bytecodesMap:   make(map[CodeUnit]*Bytecodes),
		compilationMap: make(map[CodeUnit]*Compilation),
		reg:            &globalAtExit,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With().
		Uint64("database_id", d.id).
		Str("session", d.session.String()).
		Logger()
	return d
}

// ID returns the database's process-unique numeric identity.
func (d *Database) ID() uint64 { return d.id }

// Session returns the database's session UUID, used to attribute log lines
// when several databases are live at once.
func (d *Database) Session() uuid.UUID { return d.session }

// Host returns the host runtime name the database was created for.
func (d *Database) Host() string { return d.host }

// EnsureBytecodes returns the profiling record for unit, creating and
// indexing one with the next sequential index on first reference. Exactly
// one record exists per canonical handle while the handle stays live;
// concurrent calls for the same handle return the same record.
func (d *Database) EnsureBytecodes(unit CodeUnit) *Bytecodes {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ensureBytecodesLocked(unit.Canonical())
}

// ensureBytecodesLocked resolves or creates the record for an
// already-canonicalized handle. Callers must hold d.mu.
func (d *Database) ensureBytecodesLocked(canonical CodeUnit) *Bytecodes {
	if b, ok := d.bytecodesMap[canonical]; ok {
		return b
	}
	b := newBytecodes(len(d.bytecodes), canonical)
	d.bytecodes = append(d.bytecodes, b)
	d.bytecodesMap[canonical] = b
	return b
}

// NotifyDestruction tells the database the host has torn the unit down.
// The handle is removed from both lookup indices; historical entries stay
// in the collections for serialization. Re-referencing the handle later
// creates a fresh record. Safe to call for handles the database has never
// seen.
func (d *Database) NotifyDestruction(unit CodeUnit) {
	d.mu.Lock()
	defer d.mu.Unlock()

	canonical := unit.Canonical()
	delete(d.bytecodesMap, canonical)
	delete(d.compilationMap, canonical)
}

// AddCompilation appends a compilation record for unit and indexes it as
// the unit's latest. Earlier records for the same unit remain in the
// collection.
//
// Compilation results must be recorded from the execution thread that owns
// the unit, never from the background worker that produced them; calling
// AddCompilation under a context marked with WithCompilationWorker panics.
func (d *Database) AddCompilation(ctx context.Context, unit CodeUnit, payload any) *Compilation {
	if IsCompilationWorker(ctx) {
		panic("profiler: AddCompilation called from a compilation worker")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	c := &Compilation{index: len(d.compilations), payload: payload}
	d.compilations = append(d.compilations, c)
	d.compilationMap[unit.Canonical()] = c
	return c
}

// LogEvent appends one event for unit: current timestamp, the unit's
// profiling record (created on the spot if needed), its latest compilation
// if any, the summary tag, and the detail string. Never blocks on I/O.
func (d *Database) LogEvent(unit CodeUnit, summary, detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	canonical := unit.Canonical()
	b := d.ensureBytecodesLocked(canonical)
	c := d.compilationMap[canonical]
	d.events = append(d.events, Event{
		time:        currentTime(),
		bytecodes:   b,
		compilation: c,
		summary:     summary,
		detail:      detail,
	})
}

// ToDocument builds the serialized document: the three collections in
// append order. The collections are snapshotted under the lock and
// rendered outside it.
func (d *Database) ToDocument() *Document {
	d.mu.Lock()
	bytecodes := d.bytecodes
	compilations := d.compilations
	events := d.events
	d.mu.Unlock()

	doc := &Document{
		Bytecodes:    make([]map[string]any, 0, len(bytecodes)),
		Compilations: make([]any, 0, len(compilations)),
		Events:       make([]EventDocument, 0, len(events)),
	}
	for _, b := range bytecodes {
		doc.Bytecodes = append(doc.Bytecodes, b.toDocument())
	}
	for _, c := range compilations {
		doc.Compilations = append(doc.Compilations, c.payload)
	}
	for _, e := range events {
		doc.Events = append(doc.Events, e.toDocument())
	}
	return doc
}

// ToJSON encodes the document as UTF-8 JSON text.
func (d *Database) ToJSON() (string, error) {
	data, err := json.Marshal(d.ToDocument())
	if err != nil {
		return "", fmt.Errorf("failed to encode profile document: %w", err)
	}
	return string(data), nil
}

// Save writes the full JSON document to path, truncating any existing
// file. All-or-nothing from the caller's perspective: if the file cannot
// be opened nothing is written, the error is returned once (no retries),
// and the in-memory database is untouched and callable again.
func (d *Database) Save(path string) error {
	text, err := d.ToJSON()
	if err != nil {
		return err
	}

	// #nosec G304 - the path is supplied by the embedding host, not by
	// untrusted input.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open profile output: %w", err)
	}
	defer safe.Close(f, d.logger, "failed to close profile output")

	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("failed to write profile output: %w", err)
	}

	d.logger.Info().
		Str("path", path).
		Int("bytes", len(text)).
		Msg("Saved profile database")
	return nil
}

// RegisterToSaveAtExit records path as the database's at-exit save target
// and registers the database with the process-wide shutdown registry.
// Calling it again only updates the path; the database stays registered
// once and flushes once.
func (d *Database) RegisterToSaveAtExit(path string) {
	d.reg.register(d, path)
	d.logger.Debug().Str("path", path).Msg("Registered database for at-exit save")
}

// Close releases the database's shutdown registration. If the database is
// still pending an at-exit save it is unlinked from the registry and saved
// immediately to its recorded path — each database flushes at most once,
// on whichever of Close or the at-exit drain runs first.
func (d *Database) Close() error {
	path, pending := d.reg.deregister(d)
	if !pending {
		return nil
	}
	return d.Save(path)
}

// performAtExitSave runs one database's flush during the shutdown drain.
func (d *Database) performAtExitSave(path string) {
	if err := d.Save(path); err != nil {
		d.logger.Error().Err(err).Str("path", path).Msg("Failed to save profile database at exit")
	}
}
