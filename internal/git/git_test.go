package git

import (
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatGitStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   GitStatus
		contains []string
		problems bool
	}{
		{
			name:   "not a repo",
			status: GitStatus{ConfigFile: "vault_config.toml", ConfigTracked: true},
		},
		{
			name:     "unencrypted and tracked",
			status:   GitStatus{IsRepo: true, ConfigFile: "vault_config.toml", HistoryFile: "h", ConfigTracked: true, HistoryIgnored: true},
			contains: []string{"error: vault_config.toml is unencrypted and tracked"},
			problems: true,
		},
		{
			name:     "encrypted and tracked",
			status:   GitStatus{IsRepo: true, ConfigFile: "vault_config.toml", HistoryFile: "h", ConfigTracked: true, Encrypted: true, HistoryIgnored: true},
			contains: []string{"ok: vault_config.toml is encrypted"},
		},
		{
			name:     "history tracked",
			status:   GitStatus{IsRepo: true, ConfigFile: "c", HistoryFile: "vault_config.toml.history", Encrypted: true, HistoryTracked: true},
			contains: []string{"error: vault_config.toml.history tracked by git"},
			problems: true,
		},
		{
			name:     "nothing ignored",
			status:   GitStatus{IsRepo: true, ConfigFile: "vault_config.toml", HistoryFile: "vault_config.toml.history"},
			contains: []string{"warning: vault_config.toml is unencrypted and not in .gitignore", "warning: vault_config.toml.history not in .gitignore"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FormatGitStatus(&tt.status)
			if len(tt.contains) == 0 {
				assert.Empty(t, out)
			}
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			assert.Equal(t, tt.problems, tt.status.Problems())
		})
	}
}

func TestCheckGitIntegration(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, strings.TrimSpace(string(out)))
	}
	run("init", "-q")

	config := filepath.Join(dir, "vault_config.toml")
	history := config + ".history"

	status := CheckGitIntegration(config, history, false)
	assert.True(t, status.IsRepo)
	assert.False(t, status.ConfigTracked)
	assert.False(t, status.HistoryIgnored)
}
