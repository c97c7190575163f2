package cmd

import (
	"path/filepath"
	"testing"

	"github.com/awnumar/memguard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/illarion/lockvault/internal/vault"
)

// openTestVault opens a fresh unencrypted vault in a temp dir
func openTestVault(t *testing.T) *vault.Config {
	t.Helper()

	c, err := vault.OpenPath(filepath.Join(t.TempDir(), vault.FileName))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.True(t, c.IsUnlocked())
	return c
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1024 * 1024, "1.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSize(tt.size))
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "6ba7b810", shortID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.Equal(t, "plain", shortID("plain"))
	assert.Equal(t, "-lead", shortID("-lead"))
}

func TestNewLogger_Level(t *testing.T) {
	t.Setenv(EnvLog, "")
	assert.False(t, NewLogger().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, NewLogger().Core().Enabled(zapcore.WarnLevel))

	t.Setenv(EnvLog, "debug")
	assert.True(t, NewLogger().Core().Enabled(zapcore.DebugLevel))

	t.Setenv(EnvLog, "loud")
	assert.True(t, NewLogger().Core().Enabled(zapcore.WarnLevel))
	assert.False(t, NewLogger().Core().Enabled(zapcore.InfoLevel))
}

func TestTryUnlock_UnencryptedNeedsNoPassword(t *testing.T) {
	t.Setenv(vault.EnvPassword, "")
	c := openTestVault(t)
	c.Lock()
	require.False(t, c.IsUnlocked())

	password, err := tryUnlock(c)
	require.NoError(t, err)
	assert.Nil(t, password)
	assert.True(t, c.IsUnlocked())
}

func TestHandleError_ExitsThroughMemguard(t *testing.T) {
	var code int
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = memguard.SafeExit })

	HandleError(vault.ErrWrongPassword)
	assert.Equal(t, 1, code)
}
