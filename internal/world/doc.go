// Package world answers the compiler engine's questions about its inputs:
// the standard library, the font catalog and the content of every file the
// document references.
//
// # Slots
//
// Each physical file gets one fileSlot, keyed by its filesystem identity
// (device and inode), so hard links and symlinked paths share an entry. A
// slot holds two independent cells, the decoded Source and the raw bytes.
// When a file is replaced by rename its identifier moves to the new identity
// and takes the slot along, unless another identifier still reaches it.
// Slots no identifier reaches are dropped.
//
// Within a pass a cell reads the filesystem at most once. In the next pass
// it reads again and re-derives its value only if the content fingerprint
// changed; a changed Source is updated in place, so the pointer handed to
// the engine stays valid and Generation counts the edits. Modification
// times are never consulted.
//
// # Containment
//
// Virtual paths are joined onto the project or package root and rejected if
// ".." climbs out of it. Symlinks inside a root that point elsewhere are
// followed; path inspection does not detect such escapes.
package world
