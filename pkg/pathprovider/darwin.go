//go:build darwin

package pathprovider

import (
	"os"
	"path/filepath"
)

// defaultBaseDir resolves to ~/Library/Application Support/kvs.
func defaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "Application Support", "kvs"), nil
}
