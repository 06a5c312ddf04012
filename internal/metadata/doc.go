// Package metadata retrieves summary activity metadata for hosted GitHub
// repositories through a tiered set of backend clients.
//
// Three clients implement the same contract: one delegates to an
// authenticated GitHub CLI, one issues the combined GraphQL query directly
// with a bearer token, and one reassembles the same record from four REST
// calls. The Aggregator selects among them per repository based on
// availability observed once at startup, and isolates per-repository
// failures so a single unreachable repository never aborts a run.
package metadata
