package secrets

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// keyringAvailable probes the OS keyring with a throwaway entry. Headless
// hosts and stripped-down desktops routinely lack a usable keyring daemon,
// in which case the file backend takes over.
func keyringAvailable() bool {
	const probe = "availability-probe"

	if err := keyring.Set(ServiceName, probe, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(ServiceName, probe)

	return true
}

type keyringBackend struct{}

func (keyringBackend) name() string { return "keyring" }

func (keyringBackend) set(id, value string) error {
	return keyring.Set(ServiceName, id, value)
}

func (keyringBackend) get(id string) (string, bool, error) {
	value, err := keyring.Get(ServiceName, id)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return value, true, nil
}

func (keyringBackend) del(id string) error {
	err := keyring.Delete(ServiceName, id)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}

	return err
}
