// Package secrets stores per-project encryption secrets in the OS keyring,
// falling back to permission-restricted files when no keyring is available.
// The backend is picked once when a store is opened and stays fixed for the
// store's lifetime.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ServiceName identifies this application inside the OS keyring.
const ServiceName = "wizard-2.1"

// ErrStore is the class sentinel for secret storage failures. Callers match
// it with errors.Is; the underlying cause stays reachable through the wrap.
var ErrStore = errors.New("secret store error")

// Store persists per-project secrets by identifier.
type Store interface {
	// Store persists value under id, overwriting any previous value.
	// An empty id is an error.
	Store(id, value string) error

	// Retrieve fetches the value stored under id. A missing secret is
	// reported as found == false with a nil error; an empty id is treated
	// as missing. Errors indicate backend failure, never absence.
	Retrieve(id string) (value string, found bool, err error)

	// Delete removes the secret stored under id. Deleting a missing secret
	// (or an empty id) succeeds silently.
	Delete(id string) error

	// Backend names the storage mechanism in use ("keyring" or "file").
	Backend() string
}

// backend is a minimal storage mechanism behind the Store semantics.
type backend interface {
	name() string
	set(id, value string) error
	get(id string) (string, bool, error)
	del(id string) error
}

type store struct {
	backend backend
}

type options struct {
	useKeyring bool
	dir        string
}

// Option adjusts how Open selects and configures the backend.
type Option func(*options)

// WithoutKeyring forces the file backend even when an OS keyring is present.
func WithoutKeyring() Option {
	return func(o *options) { o.useKeyring = false }
}

// WithDir sets the directory used by the file backend. The default is
// ~/.wizard/keys.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// Open selects a backend and returns a ready Store. The OS keyring is
// probed once; when it is unavailable (or disabled via WithoutKeyring) the
// file backend takes over and its directory is created with mode 0700.
func Open(opts ...Option) (Store, error) {
	o := options{useKeyring: true}
	for _, opt := range opts {
		opt(&o)
	}

	if o.useKeyring && keyringAvailable() {
		return &store{backend: keyringBackend{}}, nil
	}

	if o.dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: resolve home dir: %w", ErrStore, err)
		}
		o.dir = filepath.Join(home, ".wizard", "keys")
	}

	fb := &fileBackend{dir: o.dir}
	if err := fb.ensureDir(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	return &store{backend: fb}, nil
}

// validID rejects ids that are empty or would resolve outside the file
// backend's storage directory.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return id == filepath.Base(id)
}

func (s *store) Store(id, value string) error {
	if !validID(id) {
		return fmt.Errorf("%w: invalid secret id %q", ErrStore, id)
	}

	if err := s.backend.set(id, value); err != nil {
		return fmt.Errorf("%w: store secret %q: %w", ErrStore, id, err)
	}

	return nil
}

func (s *store) Retrieve(id string) (string, bool, error) {
	if !validID(id) {
		return "", false, nil
	}

	value, found, err := s.backend.get(id)
	if err != nil {
		return "", false, fmt.Errorf("%w: retrieve secret %q: %w", ErrStore, id, err)
	}

	return value, found, nil
}

func (s *store) Delete(id string) error {
	if !validID(id) {
		return nil
	}

	if err := s.backend.del(id); err != nil {
		return fmt.Errorf("%w: delete secret %q: %w", ErrStore, id, err)
	}

	return nil
}

func (s *store) Backend() string {
	return s.backend.name()
}
