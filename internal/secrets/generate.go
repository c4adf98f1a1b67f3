package secrets

import (
	"fmt"

	"github.com/fielax/wizard/internal/common"
)

// IDPrefix starts every generated secret identifier.
const IDPrefix = "project-"

// NewSecretID returns a fresh secret identifier: "project-" followed by 32
// lowercase hex characters.
func NewSecretID() (string, error) {
	s, err := common.MakeRandHexString(16)
	if err != nil {
		return "", fmt.Errorf("%w: generate secret id: %w", ErrStore, err)
	}

	return IDPrefix + s, nil
}

// NewSecretValue returns a fresh 32-byte secret encoded as an unpadded
// URL-safe base64 token.
func NewSecretValue() (string, error) {
	token, err := common.MakeRandToken(32)
	if err != nil {
		return "", fmt.Errorf("%w: generate secret value: %w", ErrStore, err)
	}

	return token, nil
}
