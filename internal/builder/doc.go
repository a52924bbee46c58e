// Package builder turns a matched package route into an HTTP response. A
// production request resolves the package, obtains each file's content (local
// disk or remote fetch with the inbound Authorization forwarded), minifies the
// concatenation through the type's engine and lands the artifact in the disk
// store under its digest-busted name; subsequent requests stream the cached
// artifact until a source file changes. Development-mode routes serve the raw
// concatenation, and individual source files referenced by development tags
// are served straight from the asset root with digest segments stripped.
package builder
