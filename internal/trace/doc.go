// Package trace provides the structured event log of the resolver.
//
// It records driver operations, resolution passes, per-file slot work and
// per-face font decoding, to diagnose slow builds and unexpected re-reads.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	typster resolve --trace=- --trace-level=detail main.typ
//
// # Architecture
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped on failure
//   - MultiTracer: combines multiple tracers
//
// # Levels and scopes
//
// LevelPhase emits ScopeDriver and ScopePass events, LevelDetail adds
// ScopeFile (slot loads, package preparation) and LevelDebug adds ScopeFace
// (font face decoding).
//
//	span := trace.Begin(t, trace.ScopePass, "reset", 0)
//	defer span.End("")
//
//	trace.Point(t, trace.ScopeFile, "read", path)
package trace
