// Package minify maps asset types to their compression engines. Engines are
// registered into a process-global table keyed by assetpkg.Type (an explicit
// lookup instead of name-based dispatch) and delegate the actual work to
// tdewolff/minify media-type minifiers. Compress concatenated package content
// flows through here exactly once per production build; result caching is the
// serving layer's concern.
package minify
