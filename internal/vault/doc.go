// Package vault implements the vault configuration of lockvault: the
// plaintext general settings, the vault metadata and the secrets store,
// persisted together in a single vault_config.toml file.
//
// Vault Lifecycle:
//
//	Open()   reads or creates vault_config.toml (unencrypted vaults unlock here)
//	Unlock() derives the session key and decrypts the store
//	Save()   re-encrypts the store and atomically replaces the file
//	Lock()   destroys the session key and purges decrypted entries
//
// General settings, metadata and the store each sit behind their own
// reader/writer lock and are reached through scoped accessors only.
// When locks are combined they are taken in the order
// state, save, metadata, store, general.
//
// Every overwrite of the file is preceded by a snapshot of the previous
// contents in vault_config.toml.history; see History and Restore.
package vault
