package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/illarion/lockvault/internal/crypto"
	"github.com/illarion/lockvault/internal/secrets"
	"github.com/illarion/lockvault/internal/vault"
)

// Shell runs an interactive session on one open vault. The vault locks
// itself after db_timeout seconds without a command.
func Shell(ctx context.Context) {
	c := openVault()
	defer c.Close()
	crypto.ClearBytes(unlockVault(c))

	s := newSession(c, os.Stdout)
	s.unlock = func() error {
		password, err := tryUnlock(c)
		crypto.ClearBytes(password)
		return err
	}
	if err := s.run(ctx, os.Stdin); err != nil {
		HandleError(err)
	}
}

// session is the state of an interactive shell
type session struct {
	c      *vault.Config
	out    io.Writer
	unlock func() error

	mu    sync.Mutex // guards out and timer
	timer *time.Timer
}

func newSession(c *vault.Config, out io.Writer) *session {
	return &session{
		c:      c,
		out:    out,
		unlock: func() error { return c.Unlock(nil) },
	}
}

// touch restarts the inactivity timer
func (s *session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	timeout := s.c.AutoLockAfter()
	if timeout <= 0 {
		if s.timer != nil {
			s.timer.Stop()
		}
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(timeout, s.autoLock)
		return
	}
	s.timer.Reset(timeout)
}

func (s *session) autoLock() {
	if !s.c.IsUnlocked() {
		return
	}
	s.c.Lock()
	logger.Info("vault locked after inactivity", zap.String("path", s.c.Path()))

	s.mu.Lock()
	fmt.Fprintln(s.out, "\nvault locked after inactivity")
	s.mu.Unlock()
}

func (s *session) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// run reads commands from in until EOF, exit or ctx is cancelled. A
// closable in is closed on return to release the blocked reader.
func (s *session) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	if closer, ok := in.(io.Closer); ok {
		defer closer.Close()
	}

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	defer func() {
		s.mu.Lock()
		if s.timer != nil {
			s.timer.Stop()
		}
		s.mu.Unlock()
	}()

	s.touch()
	s.printf("lockvault shell, type 'help' for commands\n> ")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			s.touch()
			if quit := s.exec(strings.TrimSpace(line)); quit {
				return nil
			}
			s.printf("> ")
		}
	}
}

// exec runs one command line and reports whether the shell should exit
func (s *session) exec(line string) bool {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	var err error
	switch name {
	case "":
	case "exit", "quit":
		return true
	case "help":
		s.printf("%s", shellHelp)
	case "status":
		s.printf("%s, %d field(s)\n", s.c.State(), len(s.c.FieldPresets()))
	case "lock":
		s.c.Lock()
		s.printf("vault locked\n")
	case "unlock":
		if err = s.unlock(); err == nil {
			s.printf("vault unlocked\n")
		}
	case "ls":
		err = s.list(rest)
	case "show":
		err = s.show(args)
	case "add":
		err = s.add(rest)
	case "set":
		err = s.set(args)
	case "rm":
		err = s.remove(args)
	case "mv":
		err = s.move(args)
	default:
		err = fmt.Errorf("unknown command %q", name)
	}

	if err != nil {
		if errors.Is(err, vault.ErrNotUnlocked) {
			s.printf("vault is locked, type 'unlock'\n")
		} else {
			s.printf("error: %s\n", err)
		}
	}
	return false
}

func (s *session) list(query string) error {
	entries, err := s.c.FindEntries(query)
	if err != nil {
		return err
	}
	for i, e := range entries {
		s.printf("%3d  %s  %s\n", i, shortID(e.ID), e.Title)
	}
	return nil
}

func (s *session) lookup(ref string) (secrets.Entry, error) {
	entries, err := s.c.Entries()
	if err != nil {
		return secrets.Entry{}, err
	}
	return resolveEntry(entries, ref)
}

func (s *session) show(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: show <entry> [--reveal]")
	}
	e, err := s.lookup(args[0])
	if err != nil {
		return err
	}
	reveal := len(args) > 1 && args[1] == "--reveal"

	s.printf("%s (%s)\n", e.Title, e.ID)
	for _, v := range e.Fields {
		value := v.Value
		if value != "" && v.Kind.IsSecret() && !reveal {
			value = "********"
		}
		s.printf("  %d %s: %s\n", v.SlotID, v.Label, value)
	}
	return nil
}

func (s *session) add(title string) error {
	if title == "" {
		return fmt.Errorf("usage: add <title>")
	}
	e, err := s.c.AddEntry(title)
	if err != nil {
		return err
	}
	if err := s.c.Save(); err != nil {
		return err
	}
	s.printf("added: %s (%s)\n", e.Title, shortID(e.ID))
	return nil
}

func (s *session) set(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: set <entry> slot=value...")
	}
	target, err := s.lookup(args[0])
	if err != nil {
		return err
	}

	presets := s.c.FieldPresets()
	assignments := make([]assignment, 0, len(args)-1)
	for _, arg := range args[1:] {
		a, err := parseAssignment(presets, arg)
		if err != nil {
			return err
		}
		if a.ask {
			return fmt.Errorf("interactive values are not supported in the shell")
		}
		assignments = append(assignments, a)
	}

	_, err = s.c.UpdateEntry(target.ID, func(e *secrets.Entry) error {
		return applyAll(e, presets, assignments)
	})
	if err != nil {
		return err
	}
	return s.c.Save()
}

func (s *session) remove(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rm <entry>")
	}
	e, err := s.lookup(args[0])
	if err != nil {
		return err
	}
	if err := s.c.RemoveEntry(e.ID); err != nil {
		return err
	}
	if err := s.c.Save(); err != nil {
		return err
	}
	s.printf("removed: %s\n", e.Title)
	return nil
}

func (s *session) move(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: mv <entry> <index>")
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid index %q", args[1])
	}
	e, err := s.lookup(args[0])
	if err != nil {
		return err
	}
	if err := s.c.MoveEntry(e.ID, index); err != nil {
		return err
	}
	return s.c.Save()
}

const shellHelp = `Commands:
  ls [query]                 List entries
  show <entry> [--reveal]    Show an entry
  add <title>                Add an entry
  set <entry> slot=value...  Set field values
  rm <entry>                 Remove an entry
  mv <entry> <index>         Move an entry
  lock, unlock               Lock or unlock the vault
  status                     Show vault state
  exit                       Leave the shell
`
