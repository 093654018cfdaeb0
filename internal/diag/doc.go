// Package diag defines the error and diagnostic model of the resolver.
//
// # File errors
//
// Every failure to produce a file for the compiler engine is a *FileError.
// The Kind says what went wrong (NotFound, IsDirectory, AccessDenied, Io,
// InvalidUTF8, PackageDownload); errors.Is matches the kind sentinels:
//
//	if errors.Is(err, diag.ErrNotFound) { ... }
//
// FileErrors are per-file and recoverable: the engine decides whether one
// unresolved import is fatal.
//
// # Diagnostics
//
// Diagnostic is the reportable form of an error, carrying a stable Code.
// Bag collects diagnostics with a limit and sorts them deterministically.
// Package diag performs no formatting or IO.
package diag
