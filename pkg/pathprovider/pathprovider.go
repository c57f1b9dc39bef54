/*
Package pathprovider resolves a store name to an absolute file on disk.

The engine itself never hard-codes a data directory; it consumes the
PathProvider interface so callers can redirect storage for tests, containers,
or alternate platforms without touching pkg/storage.
*/
package pathprovider

import (
	"fmt"
	"os"
	"path/filepath"
)

// Provider resolves a store name to an absolute path on the local
// filesystem. Implementations must create the containing directory if it
// does not already exist.
type Provider interface {
	// Path returns the absolute file path for the named store.
	Path(name string) (string, error)
}

const fileSuffix = ".preferences_pb"

// Default returns the platform-appropriate PathProvider rooted at baseDir.
// If baseDir is empty, the platform default data directory is used (see
// linux.go / darwin.go / other.go).
func Default(baseDir string) (Provider, error) {
	if baseDir == "" {
		dir, err := defaultBaseDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	return &dirProvider{baseDir: baseDir}, nil
}

// dirProvider resolves "<base-dir>/<name>.preferences_pb" to an absolute
// path and creates base-dir (mode 0700) if it does not exist before
// returning it.
type dirProvider struct {
	baseDir string
}

func (p *dirProvider) Path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("pathprovider: store name must not be empty")
	}
	if err := os.MkdirAll(p.baseDir, 0o700); err != nil {
		return "", fmt.Errorf("pathprovider: create base dir %s: %w", p.baseDir, err)
	}
	path, err := filepath.Abs(filepath.Join(p.baseDir, name+fileSuffix))
	if err != nil {
		return "", fmt.Errorf("pathprovider: resolve absolute path for %s: %w", name, err)
	}
	return path, nil
}

// Fixed wraps a caller-supplied directory with no platform-specific
// defaulting, e.g. to point every store at a temp directory.
func Fixed(dir string) Provider {
	return &dirProvider{baseDir: dir}
}
