package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/lockvault/internal/vault"
)

func runSession(t *testing.T, c *vault.Config, input string) string {
	t.Helper()

	var out bytes.Buffer
	s := newSession(c, &out)
	require.NoError(t, s.run(context.Background(), strings.NewReader(input)))
	return out.String()
}

func TestSession_EntryCommands(t *testing.T) {
	c := openTestVault(t)

	out := runSession(t, c, strings.Join([]string{
		"add GitHub",
		"set GitHub Username=octocat Notes=work",
		"show GitHub",
		"show GitHub --reveal",
		"add Mail",
		"mv Mail 0",
		"ls",
		"rm GitHub",
		"exit",
		"ls",
	}, "\n"))

	assert.Contains(t, out, "added: GitHub")
	assert.Contains(t, out, "1 Username: ********")
	assert.Contains(t, out, "1 Username: octocat")
	assert.Contains(t, out, "4 Notes: work")
	assert.Contains(t, out, "removed: GitHub")
	assert.Regexp(t, `  0  \S+  Mail\n\s+1  \S+  GitHub\n`, out)

	entries, err := c.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Mail", entries[0].Title)

	// every change was saved
	reopened, err := vault.OpenPath(c.Path())
	require.NoError(t, err)
	defer reopened.Close()
	entries, err = reopened.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Mail", entries[0].Title)
}

func TestSession_LockUnlock(t *testing.T) {
	c := openTestVault(t)

	out := runSession(t, c, "lock\nls\nunlock\nstatus\n")

	assert.Contains(t, out, "vault locked")
	assert.Contains(t, out, "vault is locked, type 'unlock'")
	assert.Contains(t, out, "vault unlocked")
	assert.Contains(t, out, "unlocked, 5 field(s)")
	assert.True(t, c.IsUnlocked())
}

func TestSession_Errors(t *testing.T) {
	c := openTestVault(t)

	out := runSession(t, c, "frobnicate\nshow\nshow nothing\nset\nmv x y\nadd Item\nset Item Password=?\n")

	assert.Contains(t, out, `error: unknown command "frobnicate"`)
	assert.Contains(t, out, "error: usage: show <entry> [--reveal]")
	assert.Contains(t, out, "error: entry not found")
	assert.Contains(t, out, "error: usage: set <entry> slot=value...")
	assert.Contains(t, out, `error: invalid index "y"`)
	assert.Contains(t, out, "interactive values are not supported")
}

func TestSession_AutoLock(t *testing.T) {
	c := openTestVault(t)
	require.NoError(t, c.UpdateGeneral(func(g *vault.General) error {
		g.DBTimeout = 0.05
		return nil
	}))

	pr, pw := io.Pipe()
	var out bytes.Buffer
	s := newSession(c, &out)

	done := make(chan error, 1)
	go func() { done <- s.run(context.Background(), pr) }()

	_, err := io.WriteString(pw, "ls\n")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return strings.Contains(out.String(), "vault locked after inactivity")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, vault.Locked, c.State())

	require.NoError(t, pw.Close())
	require.NoError(t, <-done)
}

func TestSession_NoAutoLockWhenDisabled(t *testing.T) {
	c := openTestVault(t)
	require.NoError(t, c.UpdateGeneral(func(g *vault.General) error {
		g.DBTimeout = 0
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	s := newSession(c, &out)
	done := make(chan error, 1)
	go func() { done <- s.run(ctx, pr) }()

	time.Sleep(100 * time.Millisecond)
	assert.True(t, c.IsUnlocked())

	cancel()
	require.NoError(t, <-done)
}

func TestSession_CancelReleasesReader(t *testing.T) {
	c := openTestVault(t)

	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	s := newSession(c, &out)
	done := make(chan error, 1)
	go func() { done <- s.run(ctx, pr) }()

	_, err := io.WriteString(pw, "ls\n")
	require.NoError(t, err)

	cancel()
	require.NoError(t, <-done)

	// The reader side is closed, nothing is left blocked on it
	_, err = io.WriteString(pw, "ls\n")
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
