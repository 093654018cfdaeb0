// Package fingerprint computes the hashes the resolver uses to decide whether
// cached file state is still current.
//
// Two kinds of value are produced:
//
//   - Fingerprint: a 128-bit BLAKE3 digest of file content. Equal fingerprints
//     mean equal bytes; mtime is never consulted.
//   - PathHash: a 128-bit digest of a filesystem object's identity (device and
//     inode on unix). Hard links and symlinks to one file share a PathHash.
package fingerprint
