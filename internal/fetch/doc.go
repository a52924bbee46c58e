// Package fetch retrieves package source content over HTTP for production
// combination. A Fetcher lives for one package build: every path's first
// result, whether success or failure, is cached for the Fetcher's lifetime,
// so the same path never triggers a second outbound request. Outcomes are
// explicit (content, empty, error) instead of silently coercing failures to
// empty strings; callers that only need the degraded concatenation use
// Contents. Response bodies are normalized to UTF-8 using the declared
// charset.
package fetch
