// Package server wires config-declared asset packages into a Fiber
// application. The PackageRegistry resolves each package's route pattern
// (plain and digest-busted output path) ahead of time; the router middleware
// assigns request IDs and attaches the matched route to the request context,
// leaving the build/serve work to an injected AssetHandler so tests can fake
// it. Diagnostics endpoints under /-/ bypass package matching entirely.
package server
