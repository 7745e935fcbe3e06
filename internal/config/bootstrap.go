package config

import (
	"fmt"

	"github.com/spf13/afero"
)

// EnsureFile copies template to path when path does not exist yet. It reports whether a copy was made, in
// which case the caller is expected to stop and let the user fill the file in.
func EnsureFile(fs afero.Fs, path, template string) (bool, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to check %s file: %w", path, err)
	}

	if exists {
		return false, nil
	}

	data, err := afero.ReadFile(fs, template)
	if err != nil {
		return false, fmt.Errorf("failed to copy %s file: %w", path, err)
	}

	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return false, fmt.Errorf("failed to copy %s file: %w", path, err)
	}

	return true, nil
}
