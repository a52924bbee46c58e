// Package assetpkg models a named bundle of source files (a "package") matched
// by ordered glob filespecs against the asset root. It derives the pieces the
// serving and rendering layers need: the resolved path/file pairs in filespec
// order with ignored entries removed, the newest source modification time, the
// content-derived cache-buster digest, and the route pattern that matches both
// the plain and the digest-busted form of the package's output path.
package assetpkg
