package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/fielax/wizard/internal/filex"
)

// fileBackend keeps one secret per file inside a 0700 directory. Files are
// written with mode 0600 and read back with surrounding whitespace trimmed,
// so hand-edited files with a trailing newline still resolve.
type fileBackend struct {
	dir string
}

func (b *fileBackend) name() string { return "file" }

func (b *fileBackend) ensureDir() error {
	return filex.EnsureDir(b.dir, 0o700)
}

func (b *fileBackend) path(id string) string {
	return filepath.Join(b.dir, id)
}

func (b *fileBackend) set(id, value string) error {
	if err := b.ensureDir(); err != nil {
		return err
	}

	return os.WriteFile(b.path(id), []byte(value), 0o600)
}

func (b *fileBackend) get(id string) (string, bool, error) {
	data, err := os.ReadFile(b.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return strings.TrimSpace(string(data)), true, nil
}

func (b *fileBackend) del(id string) error {
	err := os.Remove(b.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}
