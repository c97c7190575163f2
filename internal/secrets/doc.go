// Package secrets holds the decrypted contents of a vault.
//
// A Db is an ordered list of entries. Each entry maps slot ids to values;
// slot ids come from the preset field list in the general settings and stay
// stable when presets are renamed or reordered.
//
// The serialized form is TOML:
//
//	[[contents]]
//	id = "..."
//	title = "mail"
//	  [[contents.fields]]
//	  slot_id = 1
//	  label = "Username"
//	  kind = "SecretLine"
//	  value = "me@example.com"
//
// Db does no locking and never persists itself; the vault package owns both.
package secrets
