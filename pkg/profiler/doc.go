// Package profiler implements an in-process profiling database for host
// runtimes that compile and execute code units (interpreters, JIT VMs,
// query engines).
//
// A Database accumulates three append-only collections for one logical
// session: per-unit profiling records (bytecodes), compilation records, and
// timestamped diagnostic events. Any number of databases may exist at once;
// each can independently register a file path to be flushed at process
// termination. Registered databases are drained in LIFO order by the
// at-exit hook, by Exit, or by an explicit SaveAllAtExit call.
//
// All mutating operations are safe for concurrent use from the host's main
// thread and its background compilation workers. Mark compilation worker
// contexts with WithCompilationWorker so that misplaced AddCompilation
// calls fail fast.
package profiler
