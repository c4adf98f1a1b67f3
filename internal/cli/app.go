// Package cli implements the interactive wizard shell: one session holding
// an open project container, with commands for project lifecycle, TOB file
// management, server configuration and uploads.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/fielax/wizard/internal/config"
	"github.com/fielax/wizard/internal/logging"
	"github.com/fielax/wizard/internal/models"
	"github.com/fielax/wizard/internal/services"
	"github.com/fielax/wizard/internal/upload"
)

// uploader is the slice of the upload client the shell uses. Tests provide
// a stub.
type uploader interface {
	UploadTOBFile(ctx context.Context, path string, metadata map[string]string) (*upload.UploadResult, error)
	ProcessingStatus(ctx context.Context, jobID string) (*upload.StatusResult, error)
	WaitForProcessing(ctx context.Context, jobID string, interval time.Duration) (*upload.StatusResult, error)
	HealthCheck(ctx context.Context) bool
}

// newUploader is a test seam for constructing the upload client.
var newUploader = func(baseURL, token string, log logging.Logger) uploader {
	return upload.NewClient(baseURL, token, log)
}

// App is the interactive shell. It owns at most one open project at a time;
// dirty tracks unsaved changes and shows up in the prompt as an asterisk.
type App struct {
	cfg      *config.Config
	projects services.ProjectService
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer

	project *models.Project
	path    string
	dirty   bool
}

// NewApp constructs the shell around the given project service.
func NewApp(cfg *config.Config, projects services.ProjectService, log logging.Logger) *App {
	return &App{
		cfg:      cfg,
		projects: projects,
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
}

func (a *App) hasProject() bool {
	return a.project != nil
}

// markDirty flags unsaved changes on the open project.
func (a *App) markDirty() {
	a.dirty = true
}

// closeSession drops the open project from the session.
func (a *App) closeSession() {
	a.project = nil
	a.path = ""
	a.dirty = false
}
