package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// readFile reads the whole config file. A missing file keeps matching
// fs.ErrNotExist.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigRead, err)
	}
	return data, nil
}

// createFile writes data to a new file and fails if path already exists,
// so an existing config is never overwritten on creation.
func createFile(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FilePermSecure)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
		if err != nil {
			os.Remove(path)
			if !errors.Is(err, ErrConfigWrite) {
				err = fmt.Errorf("%w: %w", ErrConfigWrite, err)
			}
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}
	return nil
}

// replaceFile atomically replaces an existing file with data: the content
// goes to a temp file in the same directory which is then renamed over
// path. Readers see either the old or the new file, never a mix.
func replaceFile(path string, data []byte) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(FilePermSecure); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, multierr.Append(err, tmp.Close()))
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, multierr.Append(err, tmp.Close()))
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, multierr.Append(err, tmp.Close()))
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}
	return nil
}
