package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		exit(1)
	}
}

const bashCompletion = `_lockvault() {
    local cur prev words cword
    _init_completion || return

    local commands="init status ls show add edit rm mv passwd settings history diff restore compact keyring shell help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        init)
            COMPREPLY=($(compgen -W "--plain" -- "$cur"))
            ;;
        show)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "--reveal" -- "$cur"))
            fi
            ;;
        edit)
            COMPREPLY=($(compgen -W "--title" -- "$cur"))
            ;;
        settings)
            COMPREPLY=($(compgen -W "--timeout --add-field --remove-field" -- "$cur"))
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _lockvault lockvault
`

const zshCompletion = `#compdef lockvault

_lockvault() {
    local -a commands
    commands=(
        'init:Create vault_config.toml in current directory'
        'status:Show vault status'
        'ls:List entries'
        'show:Show an entry'
        'add:Add an entry'
        'edit:Change an entry'
        'rm:Remove an entry'
        'mv:Move an entry'
        'passwd:Change or set vault password'
        'settings:Show or change general settings'
        'history:List snapshots of vault_config.toml'
        'diff:Compare vault_config.toml with a snapshot'
        'restore:Restore vault_config.toml from a snapshot'
        'compact:Compact the snapshot history'
        'keyring:Manage password in OS keyring'
        'shell:Interactive session with auto-lock'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'lockvault commands' commands
            ;;
        args)
            case "${words[2]}" in
                init)
                    _arguments '--plain[Leave the vault unencrypted]'
                    ;;
                show)
                    _arguments '--reveal[Show secret values]'
                    ;;
                edit)
                    _arguments '--title[New title]:title'
                    ;;
                settings)
                    _arguments \
                        '--timeout[Auto-lock timeout in seconds]:seconds' \
                        '--add-field[Add a preset field]:label' \
                        '--remove-field[Remove a preset field]:label'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'lockvault commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_lockvault "$@"
`

const fishCompletion = `# lockvault fish completions

set -l commands init status ls show add edit rm mv passwd settings history diff restore compact keyring shell help completion

complete -c lockvault -f

# Commands
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a init -d 'Create vault_config.toml'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show vault status'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a ls -d 'List entries'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a show -d 'Show an entry'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a add -d 'Add an entry'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a edit -d 'Change an entry'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Remove an entry'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a mv -d 'Move an entry'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a passwd -d 'Change vault password'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a settings -d 'Show or change settings'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a history -d 'List snapshots'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Compare with a snapshot'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a restore -d 'Restore a snapshot'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact snapshot history'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage password in OS keyring'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a shell -d 'Interactive session'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c lockvault -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# flags
complete -c lockvault -n "__fish_seen_subcommand_from init" -l plain -d 'Leave the vault unencrypted'
complete -c lockvault -n "__fish_seen_subcommand_from show" -l reveal -d 'Show secret values'
complete -c lockvault -n "__fish_seen_subcommand_from edit" -l title -d 'New title'
complete -c lockvault -n "__fish_seen_subcommand_from settings" -l timeout -d 'Auto-lock timeout in seconds'
complete -c lockvault -n "__fish_seen_subcommand_from settings" -l add-field -d 'Add a preset field'
complete -c lockvault -n "__fish_seen_subcommand_from settings" -l remove-field -d 'Remove a preset field'

# keyring subcommands
complete -c lockvault -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c lockvault -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c lockvault -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
