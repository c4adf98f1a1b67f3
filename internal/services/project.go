// Package services contains the application services of the wizard CLI.
// This file defines the project service: creation, encrypted save/load with
// per-project secrets, sidecar metadata, and the legacy key fallback.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fielax/wizard/internal/cryptox"
	"github.com/fielax/wizard/internal/filex"
	"github.com/fielax/wizard/internal/logging"
	"github.com/fielax/wizard/internal/models"
	"github.com/fielax/wizard/internal/secrets"
)

const (
	// Extension is the project container file extension.
	Extension = ".wzp"

	// MetaSuffix is appended to the full container path (extension
	// included) to name the sidecar metadata file.
	MetaSuffix = ".meta"

	// MetaVersion is the current sidecar metadata format version.
	MetaVersion = 1

	// LegacyID marks containers saved before per-project secrets existed.
	// It is never looked up in the secret store; it routes resolution
	// straight to the legacy key.
	LegacyID = "legacy"
)

// ErrValidation is the class sentinel for rejected project inputs. It is
// raised before any side effect, so a failed create never leaves a stored
// secret behind.
var ErrValidation = errors.New("validation error")

// ErrNoSecret reports that no encryption secret could be resolved for a
// project: the store has no entry and no legacy key is configured. It
// matches secrets.ErrStore.
var ErrNoSecret = fmt.Errorf("%w: no encryption secret available", secrets.ErrStore)

// sidecarMeta binds a container file to the identifier of its encryption
// secret. It is the only secret-related value stored in plaintext.
type sidecarMeta struct {
	Version  int    `json:"version"`
	SecretID string `json:"secret_id"`
}

// FileInfo is cheap, non-decrypting metadata about a container file.
type FileInfo struct {
	FilePath         string
	FileName         string
	FileSize         int64
	Exists           bool
	IsValidExtension bool
}

// ProjectService manages the lifecycle of encrypted project containers.
//
// Contract:
//   - CreateProject: validate inputs, mint and store a per-project secret,
//     return a new document carrying the secret identifier.
//   - SaveProject: encrypt under the project's secret and write the
//     container plus its sidecar metadata.
//   - LoadProject: read sidecar metadata, resolve the secret (falling back
//     to the legacy key) and decrypt.
//   - UpdateServerConfig: change endpoint or token on an open document.
//   - ValidateProjectFile: true only when the file fully decrypts.
//   - ProjectFileInfo: file metadata without touching the ciphertext.
type ProjectService interface {
	CreateProject(ctx context.Context, name, enterKey, serverURL, description string) (*models.Project, error)
	SaveProject(ctx context.Context, p *models.Project, path string) error
	LoadProject(ctx context.Context, path string) (*models.Project, error)
	UpdateServerConfig(ctx context.Context, p *models.Project, enterKey, serverURL *string) error
	ValidateProjectFile(ctx context.Context, path string) bool
	ProjectFileInfo(path string) FileInfo
}

// projectService is the concrete ProjectService backed by a secret store.
// legacyKey is injected at construction (empty means no fallback key is
// configured) rather than read from the environment at call sites.
type projectService struct {
	store     secrets.Store
	legacyKey string
	log       logging.Logger
}

// NewProjectService constructs a ProjectService bound to the given secret
// store and legacy fallback key.
func NewProjectService(store secrets.Store, legacyKey string, log logging.Logger) ProjectService {
	return &projectService{store: store, legacyKey: legacyKey, log: log}
}

// CreateProject validates the inputs, generates and stores a fresh
// per-project secret, and returns a new document with the default server
// configuration. When the secret cannot be stored the whole operation
// fails: a project must never exist without a recoverable encryption key.
func (s *projectService) CreateProject(ctx context.Context, name, enterKey, serverURL, description string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	enterKey = strings.TrimSpace(enterKey)
	serverURL = NormalizeServerURL(serverURL)

	if err := validateProjectInputs(name, enterKey, serverURL); err != nil {
		return nil, err
	}

	secretID, err := s.newStoredSecret(ctx)
	if err != nil {
		return nil, err
	}

	p := models.NewProject(name)
	p.Description = description
	p.ServerConfig = models.NewServerConfig(serverURL, enterKey)
	p.SecretID = secretID

	s.log.Info(ctx, "created project", "name", name, "secret_id", secretID)
	return p, nil
}

// SaveProject encrypts the document and writes it to path, then writes the
// sidecar metadata binding the file to its secret identifier. A document
// without a secret identifier gets one now (lazy migration of pre-secret
// projects). The sidecar is written strictly after the payload, so a failed
// save never leaves metadata pointing at a stale or missing container.
func (s *projectService) SaveProject(ctx context.Context, p *models.Project, path string) error {
	if p.SecretID == "" {
		secretID, err := s.newStoredSecret(ctx)
		if err != nil {
			return err
		}
		p.SecretID = secretID
		s.log.Info(ctx, "migrated project to per-project secret", "name", p.Name, "secret_id", secretID)
	}

	key, err := s.resolveProjectKey(ctx, p, "")
	if err != nil {
		return err
	}

	if err := cryptox.SaveProjectFile(p, key, path); err != nil {
		return err
	}
	if err := s.writeSidecar(path, p.SecretID); err != nil {
		return err
	}

	s.log.Info(ctx, "saved project", "name", p.Name, "path", path)
	return nil
}

// LoadProject reads and decrypts a container file. The secret identifier is
// taken from the sidecar metadata; a missing or unreadable sidecar routes
// to the legacy key. The identifier actually used is written back to the
// document so the next save persists consistently.
func (s *projectService) LoadProject(ctx context.Context, path string) (*models.Project, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("project file %s: %w", path, err)
	}

	secretID := s.readSidecar(ctx, path)

	key, err := s.resolveProjectKey(ctx, nil, secretID)
	if err != nil {
		return nil, err
	}

	p, err := cryptox.LoadProjectFile(path, key)
	if err != nil {
		return nil, err
	}

	p.SecretID = secretID
	s.log.Info(ctx, "loaded project", "name", p.Name, "path", path)
	return p, nil
}

// UpdateServerConfig applies the non-nil fields to the document's server
// configuration, normalizing and validating a new URL the same way
// CreateProject does. A document without a server configuration gets an
// empty one first.
func (s *projectService) UpdateServerConfig(ctx context.Context, p *models.Project, enterKey, serverURL *string) error {
	if p.ServerConfig == nil {
		p.ServerConfig = models.NewServerConfig("", "")
	}

	if enterKey != nil {
		key := strings.TrimSpace(*enterKey)
		if key == "" {
			return fmt.Errorf("%w: enter key cannot be empty", ErrValidation)
		}
		p.ServerConfig.BearerToken = key
	}

	if serverURL != nil {
		u := NormalizeServerURL(*serverURL)
		if err := validateServerURL(u); err != nil {
			return err
		}
		p.ServerConfig.URL = u
	}

	p.Touch()
	s.log.Info(ctx, "updated server config", "name", p.Name)
	return nil
}

// ValidateProjectFile reports whether path is a usable project container:
// right extension, a non-empty regular file, and decryptable end to end.
// The full decrypt is deliberate; a corrupt container must not validate.
func (s *projectService) ValidateProjectFile(ctx context.Context, path string) bool {
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return false
	}

	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() || fi.Size() == 0 {
		return false
	}

	_, err = s.LoadProject(ctx, path)
	return err == nil
}

// ProjectFileInfo returns file-level metadata without decrypting anything.
func (s *projectService) ProjectFileInfo(path string) FileInfo {
	info := FileInfo{
		FilePath:         path,
		FileName:         filepath.Base(path),
		IsValidExtension: strings.EqualFold(filepath.Ext(path), Extension),
	}

	if fi, err := os.Stat(path); err == nil {
		info.Exists = true
		info.FileSize = fi.Size()
	}

	return info
}

// newStoredSecret mints a fresh identifier and secret value and persists
// the pair in the secret store.
func (s *projectService) newStoredSecret(ctx context.Context) (string, error) {
	secretID, err := secrets.NewSecretID()
	if err != nil {
		return "", err
	}
	value, err := secrets.NewSecretValue()
	if err != nil {
		return "", err
	}

	if err := s.store.Store(secretID, value); err != nil {
		return "", err
	}

	return secretID, nil
}

// resolveProjectKey resolves the encryption secret for a project. Three
// tiers, first hit wins: the stored per-project secret named by override
// (or by the document's identifier), then the configured legacy key, then
// failure. The legacy tier keeps pre-secret containers and containers
// whose keyring entry was lost (profile reset) readable, at the cost of
// per-project isolation in that degraded case.
func (s *projectService) resolveProjectKey(ctx context.Context, p *models.Project, override string) (string, error) {
	candidate := override
	if candidate == "" && p != nil {
		candidate = p.SecretID
	}

	if candidate != "" && candidate != LegacyID {
		value, found, err := s.store.Retrieve(candidate)
		if err != nil {
			return "", err
		}
		if found {
			return value, nil
		}
		s.log.Warn(ctx, "secret not found in store", "secret_id", candidate)
	}

	if s.legacyKey != "" {
		s.log.Warn(ctx, "using legacy fallback key", "secret_id", candidate)
		return s.legacyKey, nil
	}

	return "", ErrNoSecret
}

// writeSidecar writes the metadata file binding the container at path to
// its secret identifier, with owner-only permissions.
func (s *projectService) writeSidecar(path, secretID string) error {
	data, err := json.Marshal(sidecarMeta{Version: MetaVersion, SecretID: secretID})
	if err != nil {
		return fmt.Errorf("serialize sidecar metadata: %w", err)
	}

	if err := filex.WriteFileAtomic(path+MetaSuffix, data, 0o600); err != nil {
		return fmt.Errorf("write sidecar metadata: %w", err)
	}

	return nil
}

// readSidecar returns the secret identifier recorded next to the container
// at path. A missing or unreadable sidecar yields LegacyID: a damaged
// sidecar must not brick a container the legacy key can still open.
func (s *projectService) readSidecar(ctx context.Context, path string) string {
	data, err := os.ReadFile(path + MetaSuffix)
	if err != nil {
		s.log.Warn(ctx, "sidecar metadata missing, falling back to legacy key", "path", path)
		return LegacyID
	}

	var meta sidecarMeta
	if err := json.Unmarshal(data, &meta); err != nil || meta.SecretID == "" {
		s.log.Warn(ctx, "sidecar metadata unreadable, falling back to legacy key", "path", path)
		return LegacyID
	}

	return meta.SecretID
}
