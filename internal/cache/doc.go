// Package cache defines the disk-backed store for built package output,
// translating a package name plus produced file name into
// StoragePath/<package>/<name> files. The store exposes read/write primitives
// with safe semantics (temp file + rename) and surfaces file info (size,
// modtime) so the serving layer can compare a built artifact against the
// newest source modification time instead of rebuilding on every request.
package cache
