// Package packages resolves package specifications to local directories.
//
// A package is looked up in the data directory, then in the cache
// directory; packages of the preview namespace that exist in neither are
// downloaded into the cache. A download is unpacked into a temporary
// sibling directory and renamed into place, so the cache holds either the
// whole package or nothing.
package packages
