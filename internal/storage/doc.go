// Package storage provides the BBolt snapshot history for lockvault.
//
// Every time vault_config.toml is about to be overwritten, its current
// contents are recorded in vault_config.toml.history so that a damaged or
// unwanted config can be restored explicitly.
//
// Database structure uses three buckets:
//   - meta: format version, created/modified timestamps
//   - index: snapshot descriptions (sequence, time, size, checksum, reason)
//   - blobs: snapshot contents keyed by the same big-endian sequence
//
// Snapshots hold the file as it was on disk, so an encrypted vault stays
// encrypted in its history. An unencrypted vault's history is plaintext.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
