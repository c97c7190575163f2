package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/illarion/lockvault/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := cmd.NewLogger()
	defer logger.Sync()
	cmd.SetLogger(logger)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	case "ls":
		runLs(os.Args[2:])
	case "show":
		runShow(os.Args[2:])
	case "add":
		runAdd(os.Args[2:])
	case "edit":
		runEdit(os.Args[2:])
	case "rm":
		runRm(os.Args[2:])
	case "mv":
		runMv(os.Args[2:])
	case "passwd":
		runPasswd(os.Args[2:])
	case "settings":
		runSettings(os.Args[2:])
	case "history":
		runHistory(os.Args[2:])
	case "diff":
		runDiff(os.Args[2:])
	case "restore":
		runRestore(os.Args[2:])
	case "compact":
		runCompact(os.Args[2:])
	case "keyring":
		runKeyring(os.Args[2:])
	case "shell":
		runShell(ctx, os.Args[2:])
	case "completion":
		runCompletion(os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// parseArgs parses flags placed anywhere among args and returns the
// positional arguments
func parseArgs(fs *flag.FlagSet, args []string) []string {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func usageError(usage string) {
	fmt.Fprintf(os.Stderr, "Usage: %s\n", usage)
	os.Exit(1)
}

func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	plain := fs.Bool("plain", false, "Leave the vault unencrypted")
	if rest := parseArgs(fs, args); len(rest) > 0 {
		usageError("lockvault init [--plain]")
	}

	cmd.Init(*plain)
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	parseArgs(fs, args)

	cmd.Status()
}

func runLs(args []string) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	rest := parseArgs(fs, args)
	if len(rest) > 1 {
		usageError("lockvault ls [query]")
	}

	query := ""
	if len(rest) == 1 {
		query = rest[0]
	}
	cmd.Ls(query)
}

func runShow(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	reveal := fs.Bool("reveal", false, "Show secret values")
	rest := parseArgs(fs, args)
	if len(rest) != 1 {
		usageError("lockvault show <entry> [--reveal]")
	}

	cmd.Show(rest[0], *reveal)
}

func runAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	rest := parseArgs(fs, args)
	if len(rest) < 1 {
		usageError("lockvault add <title> [slot=value...]")
	}

	cmd.Add(rest[0], rest[1:])
}

func runEdit(args []string) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	title := fs.String("title", "", "New title")
	rest := parseArgs(fs, args)
	if len(rest) < 1 {
		usageError("lockvault edit <entry> [--title T] [slot=value...]")
	}

	cmd.Edit(rest[0], *title, rest[1:])
}

func runRm(args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	rest := parseArgs(fs, args)
	if len(rest) != 1 {
		usageError("lockvault rm <entry>")
	}

	cmd.Remove(rest[0])
}

func runMv(args []string) {
	fs := flag.NewFlagSet("mv", flag.ExitOnError)
	rest := parseArgs(fs, args)
	if len(rest) != 2 {
		usageError("lockvault mv <entry> <index>")
	}
	index, err := strconv.Atoi(rest[1])
	if err != nil {
		usageError("lockvault mv <entry> <index>")
	}

	cmd.Move(rest[0], index)
}

func runPasswd(args []string) {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	parseArgs(fs, args)

	cmd.Passwd()
}

func runSettings(args []string) {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	timeout := fs.Float64("timeout", -1, "Auto-lock timeout in seconds, 0 disables")
	addField := fs.String("add-field", "", "Add a preset field, Label[:Kind]")
	removeField := fs.String("remove-field", "", "Remove a preset field by label")
	parseArgs(fs, args)

	change := cmd.SettingsChange{AddField: *addField, RemoveField: *removeField}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "timeout" {
			change.Timeout = timeout
		}
	})
	cmd.Settings(change)
}

func runHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	parseArgs(fs, args)

	cmd.History()
}

func parseSeq(arg, usage string) uint64 {
	seq, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || seq == 0 {
		usageError(usage)
	}
	return seq
}

func runDiff(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	rest := parseArgs(fs, args)

	var seq uint64
	switch len(rest) {
	case 0:
	case 1:
		seq = parseSeq(rest[0], "lockvault diff [seq]")
	default:
		usageError("lockvault diff [seq]")
	}
	cmd.Diff(seq)
}

func runRestore(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	rest := parseArgs(fs, args)
	if len(rest) != 1 {
		usageError("lockvault restore <seq>")
	}

	cmd.Restore(parseSeq(rest[0], "lockvault restore <seq>"))
}

func runCompact(args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	parseArgs(fs, args)

	cmd.Compact()
}

func runKeyring(args []string) {
	if len(args) < 1 {
		usageError("lockvault keyring <save|delete|status>")
	}

	switch args[0] {
	case "save":
		cmd.KeyringSave()
	case "delete":
		cmd.KeyringDelete()
	case "status":
		cmd.KeyringStatus()
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", args[0])
		usageError("lockvault keyring <save|delete|status>")
	}
}

func runShell(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	parseArgs(fs, args)

	cmd.Shell(ctx)
}

func runCompletion(args []string) {
	if len(args) < 1 {
		usageError("lockvault completion <bash|zsh|fish>")
	}
	cmd.Completion(args[0])
}
