// Package vector holds the VectorIndex adapters.
//
//   - memory: brute-force cosine search, for tests and ephemeral runs
//   - chromem: embedded persistent index (default)
//   - pgvector: Postgres vector column on the shared bun database
package vector
