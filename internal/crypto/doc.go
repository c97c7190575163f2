// Package crypto provides cryptographic operations for lockvault.
//
// Key derivation turns the vault password and the salt stored in
// vault_config.toml into a 32-byte key:
//   - argon2id (time 3, 64 MiB, 4 threads) by default
//   - PBKDF2-HMAC-SHA256 with 210,000 iterations for vaults that ask for it
//
// Salts are stored as base64 strings and decoded before use.
//
// Encryption is authenticated:
//   - AES-256-GCM with a 12-byte random nonce (default)
//   - XChaCha20-Poly1305 with a 24-byte random nonce
//
// The nonce is prepended to the sealed payload and the whole thing is base64
// encoded, so decryption needs nothing but the key.
//
// Memory safety:
//   - The key of an unlocked session lives in a SessionKey (memguard locked
//     buffer) and is wiped by Destroy
//   - Use ClearBytes() to zero passwords and temporary keys after use
package crypto
