// Package filex provides small filesystem helpers shared by the client
// binaries.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates the directory (and parents) if it does not exist and
// returns its absolute path. Relative paths are resolved against the
// current working directory.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}
