package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/lockvault/internal/storage"
	"github.com/illarion/lockvault/internal/vault"
)

// History lists the recorded versions of vault_config.toml. Works on a
// config that no longer parses.
func History() {
	path := vault.DefaultPath(logger)
	snapshots, err := vault.History(path)
	if err != nil {
		HandleError(err)
	}

	if len(snapshots) == 0 {
		fmt.Println("No snapshots recorded")
		return
	}

	fmt.Println("Snapshots:")
	for _, s := range snapshots {
		fmt.Printf("  %4d  %s  %8s  %s\n",
			s.Seq, s.Taken.Local().Format("2006-01-02 15:04:05"), formatSize(s.Size), s.Reason)
	}
}

// Diff shows how the current file differs from a snapshot, the latest if
// seq is zero
func Diff(seq uint64) {
	diff, err := vault.DiffSnapshot(vault.DefaultPath(logger), seq)
	if err != nil {
		HandleError(err)
	}

	if diff == "" {
		fmt.Println("No differences")
		return
	}
	fmt.Print(diff)
}

// Restore replaces vault_config.toml with a snapshot
func Restore(seq uint64) {
	snap, err := vault.Restore(vault.DefaultPath(logger), seq)
	if err != nil {
		HandleError(err)
	}
	fmt.Printf("restored snapshot %d from %s\n", snap.Seq, snap.Taken.Local().Format("2006-01-02 15:04:05"))
}

// Compact compacts the history database to reclaim unused space
func Compact() {
	path := vault.HistoryPath(vault.DefaultPath(logger))

	info, err := os.Stat(path)
	if err != nil {
		HandleError(err)
	}
	sizeBefore := info.Size()

	h, err := storage.Open(path)
	if err != nil {
		HandleError(err)
	}
	if err := h.Compact(); err != nil {
		h.Close()
		HandleError(err)
	}
	if err := h.Close(); err != nil {
		HandleError(err)
	}

	info, err = os.Stat(path)
	if err != nil {
		HandleError(err)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}
