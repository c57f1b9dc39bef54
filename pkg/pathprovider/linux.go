//go:build linux

package pathprovider

import (
	"os"
	"path/filepath"
)

// defaultBaseDir resolves to $XDG_DATA_HOME/kvs, falling back to
// ~/.local/share/kvs when XDG_DATA_HOME is unset.
func defaultBaseDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "kvs"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "kvs"), nil
}
