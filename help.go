package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Println("lockvault - Local encrypted credential vault")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lockvault <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init        Create vault_config.toml in current directory")
	fmt.Println("  status      Show vault status")
	fmt.Println("  ls          List entries")
	fmt.Println("  show        Show an entry")
	fmt.Println("  add         Add an entry")
	fmt.Println("  edit        Change an entry")
	fmt.Println("  rm          Remove an entry")
	fmt.Println("  mv          Move an entry")
	fmt.Println("  passwd      Change vault password")
	fmt.Println("  settings    Show or change general settings")
	fmt.Println("  history     List snapshots of vault_config.toml")
	fmt.Println("  diff        Compare vault_config.toml with a snapshot")
	fmt.Println("  restore     Restore vault_config.toml from a snapshot")
	fmt.Println("  compact     Compact the snapshot history")
	fmt.Println("  keyring     Manage password in OS keyring")
	fmt.Println("  shell       Interactive session with auto-lock")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  lockvault init                              # Create encrypted vault")
	fmt.Println("  lockvault add GitHub Username=me Password=? # Add entry, prompt for password")
	fmt.Println("  lockvault show GitHub --reveal              # Show entry with secrets")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  LOCKVAULT_PASSWORD  Vault password for non-interactive use")
	fmt.Println("  LOCKVAULT_LOG       Log level: debug, info, warn (default), error")
	fmt.Println()
	fmt.Println("Use 'lockvault help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("lockvault init [--plain]")
		fmt.Println()
		fmt.Println("Creates vault_config.toml in the current directory.")
		fmt.Println("Prompts for a password that will be used for encryption.")
		fmt.Println("The password is not stored anywhere - you must remember it.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --plain    Leave the vault unencrypted (encrypt later with passwd)")
	case "status":
		fmt.Println("lockvault status")
		fmt.Println()
		fmt.Println("Shows encryption, lock state, auto-lock timeout, preset fields,")
		fmt.Println("snapshot history, keyring and git status.")
		fmt.Println()
		fmt.Println("Does not require a password.")
	case "ls":
		fmt.Println("lockvault ls [query]")
		fmt.Println()
		fmt.Println("Lists entries. A query matches titles and non-secret values, ignoring case.")
	case "show":
		fmt.Println("lockvault show <entry> [--reveal]")
		fmt.Println()
		fmt.Println("Shows an entry. <entry> is an id, an id prefix or a title.")
		fmt.Println("Secret values are masked unless --reveal is given.")
	case "add":
		fmt.Println("lockvault add <title> [slot=value...]")
		fmt.Println()
		fmt.Println("Adds an entry with one field per preset and saves the vault.")
		fmt.Println("A slot is a preset label, a slot id, or a new Label[:Kind].")
		fmt.Println("A value of ? is read from the terminal without echo.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  lockvault add GitHub Username=me Password=?")
		fmt.Println("  lockvault add Router 3=http://192.168.0.1 PIN:SecretLine=1234")
	case "edit":
		fmt.Println("lockvault edit <entry> [--title T] [slot=value...]")
		fmt.Println()
		fmt.Println("Changes the title or field values of an entry and saves the vault.")
	case "rm":
		fmt.Println("lockvault rm <entry>")
		fmt.Println()
		fmt.Println("Removes an entry and saves the vault.")
	case "mv":
		fmt.Println("lockvault mv <entry> <index>")
		fmt.Println()
		fmt.Println("Moves an entry to position <index>, counted from 0.")
	case "passwd":
		fmt.Println("lockvault passwd")
		fmt.Println()
		fmt.Println("Changes the vault password. Requires the current and the new password.")
		fmt.Println("On an unencrypted vault, sets a password and encrypts the vault.")
		fmt.Println("A new salt is generated every time.")
	case "settings":
		fmt.Println("lockvault settings [--timeout seconds] [--add-field Label[:Kind]] [--remove-field Label]")
		fmt.Println()
		fmt.Println("Shows or changes the general settings. Kinds: TextLine, SecretLine, Url, MultiLine.")
		fmt.Println("Removing a preset field keeps the values already stored in entries.")
	case "history":
		fmt.Println("lockvault history")
		fmt.Println()
		fmt.Println("Lists the snapshots kept in vault_config.toml.history.")
		fmt.Println("A snapshot is recorded before and after every write of the vault.")
		fmt.Println("Works even when vault_config.toml cannot be parsed.")
	case "diff":
		fmt.Println("lockvault diff [seq]")
		fmt.Println()
		fmt.Println("Shows a unified diff from a snapshot (latest by default) to vault_config.toml.")
	case "restore":
		fmt.Println("lockvault restore <seq>")
		fmt.Println()
		fmt.Println("Replaces vault_config.toml with a snapshot. The current file is recorded first.")
	case "compact":
		fmt.Println("lockvault compact")
		fmt.Println()
		fmt.Println("Compacts vault_config.toml.history to reclaim unused disk space.")
	case "keyring":
		fmt.Println("lockvault keyring <save|delete|status>")
		fmt.Println()
		fmt.Println("Stores the vault password in the OS keyring so commands do not prompt.")
	case "shell":
		fmt.Println("lockvault shell")
		fmt.Println()
		fmt.Println("Opens an interactive session. The vault locks itself after the")
		fmt.Println("configured timeout without input; type 'unlock' to continue.")
	case "completion":
		fmt.Println("lockvault completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(lockvault completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(lockvault completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  lockvault completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
