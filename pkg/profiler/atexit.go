package profiler

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// databaseCounter assigns process-unique database identities.
var databaseCounter atomic.Uint64

// atExitRegistry is the process-wide shutdown registry: the set of
// databases pending a save at process termination, in registration order.
// Its lock guards only the list and the per-database pending state and is
// distinct from every database's own lock.
type atExitRegistry struct {
	mu        sync.Mutex
	databases []*Database // drained from the tail: LIFO

	// hookArms counts first-time registrations; the arm that observes 1
	// installs the exit hook. Atomic so concurrent first registrations
	// from multiple threads install it exactly once.
	hookArms atomic.Int32
}

var globalAtExit atExitRegistry

// register records path as d's at-exit target and, unless d is already
// pending, pushes it onto the registry. The first registration across the
// whole process installs the exit hook.
func (r *atExitRegistry) register(d *Database, path string) {
	r.mu.Lock()
	d.atExitPath = path
	if d.pendingSave {
		r.mu.Unlock()
		return
	}
	d.pendingSave = true
	r.databases = append(r.databases, d)
	r.mu.Unlock()

	if r.hookArms.Add(1) == 1 {
		r.installExitHook()
	}
}

// deregister unlinks d if present and clears its pending flag. Reports
// d's recorded path and whether it was pending. Deregistering a database
// that is not in the registry is a no-op, so destruction and explicit
// deregistration paths can both call this safely.
func (r *atExitRegistry) deregister(d *Database) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !d.pendingSave {
		return "", false
	}
	for i, db := range r.databases {
		if db == d {
			r.databases = append(r.databases[:i], r.databases[i+1:]...)
			break
		}
	}
	d.pendingSave = false
	return d.atExitPath, true
}

// drainOne pops the most recently registered database, clearing its
// pending flag, or returns nil when the registry is empty.
func (r *atExitRegistry) drainOne() (*Database, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.databases)
	if n == 0 {
		return nil, ""
	}
	d := r.databases[n-1]
	r.databases = r.databases[:n-1]
	d.pendingSave = false
	return d, d.atExitPath
}

// drainAll flushes every registered database, most recently registered
// first, until the registry is empty.
func (r *atExitRegistry) drainAll() {
	for {
		d, path := r.drainOne()
		if d == nil {
			return
		}
		d.performAtExitSave(path)
	}
}

// installExitHook arms the once-per-process termination hook: a goroutine
// that drains the registry when the process receives an interrupt or
// termination signal, then exits with the conventional signal status.
// Normal returns from main do not pass through here; hosts cover that path
// with SaveAllAtExit or Exit.
func (r *atExitRegistry) installExitHook() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		signal.Stop(sigChan)
		r.drainAll()
		if s, ok := sig.(syscall.Signal); ok {
			os.Exit(128 + int(s))
		}
		os.Exit(1)
	}()
}

// SaveAllAtExit flushes every database still registered for a shutdown
// save, most recently registered first. Hosts that terminate normally
// call this (or Exit) before returning from main; the signal hook covers
// interrupt-driven termination.
func SaveAllAtExit() {
	globalAtExit.drainAll()
}

// Exit flushes all registered databases and terminates the process with
// the given status code.
func Exit(code int) {
	SaveAllAtExit()
	os.Exit(code)
}
