// Package git provides git integration status checks for lockvault.
//
// Checks performed:
//   - Whether vault_config.toml is tracked by git while unencrypted (should not be)
//   - Whether vault_config.toml.history is tracked by git (should not be)
//   - Whether both files are in .gitignore
//
// An encrypted vault_config.toml may be committed. Its history may not,
// because it keeps earlier versions that were never encrypted.
package git
