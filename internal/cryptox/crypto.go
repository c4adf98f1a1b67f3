// Package cryptox implements the project container cryptography: PBKDF2
// key derivation and Fernet authenticated encryption of project documents,
// plus the file-level save/load wrappers.
package cryptox

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fernet/fernet-go"
	"golang.org/x/crypto/pbkdf2"

	"github.com/fielax/wizard/internal/common"
	"github.com/fielax/wizard/internal/filex"
	"github.com/fielax/wizard/internal/models"
)

// The salt is fixed so every installation derives identical keys from
// identical passwords; rotating it would orphan existing containers. The
// real entropy lives in the per-project random secret, not here.
const (
	kdfSalt       = "wizard_salt_2024"
	kdfIterations = 100000
	kdfKeyLen     = 32
)

// ErrDecrypt is the class sentinel for container decryption failures.
// A wrong password and corrupted ciphertext are indistinguishable: both
// surface as ErrDecrypt.
var ErrDecrypt = errors.New("unable to decrypt project data")

// DeriveKey stretches a password into a Fernet key using PBKDF2-HMAC-SHA256
// with the application salt and 100000 iterations. The derivation is
// deterministic: the same password always yields the same key, which is what
// lets a stored secret reopen its container.
func DeriveKey(password string) *fernet.Key {
	raw := pbkdf2.Key([]byte(password), []byte(kdfSalt), kdfIterations, kdfKeyLen, sha256.New)

	var key fernet.Key
	copy(key[:], raw)
	common.WipeByteArray(raw)

	return &key
}

// EncryptProject serializes the project to JSON and encrypts it into a
// Fernet token. The token embeds version, timestamp, IV and HMAC, so the
// output is self-contained: everything except the password travels with it.
//
// Example:
//
//	tok, err := cryptox.EncryptProject(project, secretValue)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("survey.wzp", tok, 0o600)
func EncryptProject(p *models.Project, password string) ([]byte, error) {
	plaintext, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("serialize project: %w", err)
	}

	tok, err := fernet.EncryptAndSign(plaintext, DeriveKey(password))
	if err != nil {
		return nil, fmt.Errorf("encrypt project: %w", err)
	}

	return tok, nil
}

// DecryptProject verifies and decrypts a Fernet token produced by
// EncryptProject and decodes the contained project document. Any failure
// along the way, a bad token, a wrong password, tampered ciphertext,
// malformed JSON or an invalid document, is reported as ErrDecrypt.
// Tokens never expire; the embedded timestamp is informational.
func DecryptProject(data []byte, password string) (*models.Project, error) {
	msg := fernet.VerifyAndDecrypt(data, -1, []*fernet.Key{DeriveKey(password)})
	if msg == nil {
		return nil, ErrDecrypt
	}

	var p models.Project
	if err := json.Unmarshal(msg, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	return &p, nil
}

// SaveProjectFile encrypts the project and writes it to path atomically
// with mode 0600, creating the parent directory when missing. A failed
// save leaves any existing file at path untouched.
func SaveProjectFile(p *models.Project, password, path string) error {
	data, err := EncryptProject(p, password)
	if err != nil {
		return err
	}

	if err := filex.EnsureParentDir(path, 0o755); err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("write project file %s: %w", path, err)
	}

	return nil
}

// LoadProjectFile reads a container file and decrypts it. A missing file
// surfaces as an error matching os.ErrNotExist.
func LoadProjectFile(path, password string) (*models.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project file %s: %w", path, err)
	}

	return DecryptProject(data, password)
}

// ValidatePassword reports whether password decrypts the given container
// bytes.
func ValidatePassword(data []byte, password string) bool {
	_, err := DecryptProject(data, password)
	return err == nil
}
