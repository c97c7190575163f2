package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitStatus contains git integration status information
type GitStatus struct {
	IsRepo         bool
	ConfigFile     string
	HistoryFile    string
	Encrypted      bool
	ConfigTracked  bool
	ConfigIgnored  bool
	HistoryTracked bool
	HistoryIgnored bool
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	err := cmd.Run()
	return err == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()

	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	err := cmd.Run()

	// git check-ignore returns exit code 0 if file is ignored
	return err == nil
}

// CheckGitIntegration checks whether the vault config and its history are
// exposed to git in the directory holding configPath
func CheckGitIntegration(configPath, historyPath string, encrypted bool) *GitStatus {
	workDir := filepath.Dir(configPath)
	status := &GitStatus{
		ConfigFile:  filepath.Base(configPath),
		HistoryFile: filepath.Base(historyPath),
		Encrypted:   encrypted,
	}

	if !IsGitRepo(workDir) {
		return status
	}
	status.IsRepo = true

	status.ConfigTracked = IsTracked(workDir, status.ConfigFile)
	status.ConfigIgnored = IsIgnored(workDir, status.ConfigFile)
	status.HistoryTracked = IsTracked(workDir, status.HistoryFile)
	status.HistoryIgnored = IsIgnored(workDir, status.HistoryFile)

	return status
}

// Problems reports whether plaintext secrets can end up in git
func (s *GitStatus) Problems() bool {
	return s.IsRepo && ((s.ConfigTracked && !s.Encrypted) || s.HistoryTracked)
}

// FormatGitStatus formats git status for display
func FormatGitStatus(status *GitStatus) string {
	if !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit Integration:\n")

	switch {
	case status.ConfigTracked && !status.Encrypted:
		result.WriteString(fmt.Sprintf("   error: %s is unencrypted and tracked by git (run: lockvault passwd, git rm --cached %s)\n",
			status.ConfigFile, status.ConfigFile))
	case status.ConfigTracked:
		result.WriteString(fmt.Sprintf("   ok: %s is encrypted\n", status.ConfigFile))
	case !status.ConfigIgnored && !status.Encrypted:
		result.WriteString(fmt.Sprintf("   warning: %s is unencrypted and not in .gitignore (add to .gitignore)\n", status.ConfigFile))
	default:
		result.WriteString(fmt.Sprintf("   ok: %s not tracked by git\n", status.ConfigFile))
	}

	// The history keeps earlier versions, including unencrypted ones
	if status.HistoryTracked {
		result.WriteString(fmt.Sprintf("   error: %s tracked by git (run: git rm --cached %s)\n",
			status.HistoryFile, status.HistoryFile))
	} else if !status.HistoryIgnored {
		result.WriteString(fmt.Sprintf("   warning: %s not in .gitignore (add to .gitignore)\n", status.HistoryFile))
	}

	return result.String()
}
