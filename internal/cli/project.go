package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fielax/wizard/internal/common"
	"github.com/fielax/wizard/internal/cryptox"
	"github.com/fielax/wizard/internal/services"
)

// newProject prompts for the project fields and creates a fresh project in
// the session. The previous project, if any, is replaced; unsaved changes
// are the user's responsibility (the prompt shows the dirty marker).
func (a *App) newProject(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Project name", a.out)
	if err != nil {
		return err
	}
	enterKey, err := GetSimpleText(a.reader, "Enter key (server bearer token)", a.out)
	if err != nil {
		return err
	}
	serverURL, err := GetSimpleText(a.reader, "Server URL", a.out)
	if err != nil {
		return err
	}
	description, err := GetSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}

	p, err := a.projects.CreateProject(ctx, name, enterKey, serverURL, description)
	if err != nil {
		return err
	}

	a.project = p
	a.path = ""
	a.markDirty()

	fmt.Fprintf(a.out, "Created project %q (server %s)\n", p.Name, p.ServerConfig.URL)
	return nil
}

func (a *App) openProject(ctx context.Context, path string) error {
	p, err := a.projects.LoadProject(ctx, path)
	if err != nil {
		return err
	}

	a.project = p
	a.path = path
	a.dirty = false

	fmt.Fprintf(a.out, "Opened project %q (%d TOB files)\n", p.Name, len(p.TOBFiles))
	return nil
}

// saveProject writes the open project to path, defaulting to the path it
// was opened from. The container extension is appended when missing.
func (a *App) saveProject(ctx context.Context, path string) error {
	if err := a.requireProject(); err != nil {
		return err
	}

	if path == "" {
		path = a.path
	}
	if path == "" {
		var err error
		path, err = GetSimpleText(a.reader, "Save as", a.out)
		if err != nil {
			return err
		}
		if path == "" {
			return fmt.Errorf("no target path given")
		}
	}

	if !strings.EqualFold(filepath.Ext(path), services.Extension) {
		path += services.Extension
	}

	if err := a.projects.SaveProject(ctx, a.project, path); err != nil {
		return err
	}

	a.path = path
	a.dirty = false

	fmt.Fprintf(a.out, "Saved project to %s\n", path)
	return nil
}

func (a *App) close() {
	if !a.hasProject() {
		return
	}
	if a.dirty {
		fmt.Fprintln(a.out, "Warning: closing with unsaved changes")
	}

	name := a.project.Name
	a.closeSession()
	fmt.Fprintf(a.out, "Closed project %q\n", name)
}

func (a *App) info() error {
	if err := a.requireProject(); err != nil {
		return err
	}

	s := a.project.Summary()
	fmt.Fprintf(a.out, "Project:     %s\n", s.Name)
	if s.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", s.Description)
	}
	fmt.Fprintf(a.out, "Created:     %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(a.out, "Modified:    %s\n", s.ModifiedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(a.out, "TOB files:   %d (%.1f MB, %d data points)\n", s.TOBFileCount, s.TotalFileSizeMB, s.TotalDataPoints)
	fmt.Fprintf(a.out, "Memory:      %.1f MB estimated [%s]\n", s.MemoryUsageMB, s.MemoryStatus)
	if s.MemoryMessage != "" {
		fmt.Fprintf(a.out, "             %s\n", s.MemoryMessage)
	}
	if s.ActiveTOBFile != "" {
		fmt.Fprintf(a.out, "Active file: %s\n", s.ActiveTOBFile)
	}
	fmt.Fprintf(a.out, "Server:      configured=%v  secret=%v\n", s.HasServerConfig, s.HasSecret)
	return nil
}

func (a *App) validate(ctx context.Context, path string) {
	if a.projects.ValidateProjectFile(ctx, path) {
		fmt.Fprintf(a.out, "%s is a valid project container\n", path)
		return
	}

	info := a.projects.ProjectFileInfo(path)
	switch {
	case !info.Exists:
		fmt.Fprintf(a.out, "%s does not exist\n", path)
	case !info.IsValidExtension:
		fmt.Fprintf(a.out, "%s is not a %s file\n", path, services.Extension)
	default:
		fmt.Fprintf(a.out, "%s is not a valid project container\n", path)
	}
}

// export re-encrypts the open project under a user-chosen password so the
// container can be forwarded without sharing this machine's secret store.
// No sidecar is written: the recipient supplies the password directly.
func (a *App) export(ctx context.Context, path string) error {
	if err := a.requireProject(); err != nil {
		return err
	}

	pw, err := GetPassword("Export password: ", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	confirm, err := GetPassword("Repeat password: ", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if len(pw) == 0 {
		return fmt.Errorf("export password cannot be empty")
	}
	if string(pw) != string(confirm) {
		return fmt.Errorf("passwords do not match")
	}

	if !strings.EqualFold(filepath.Ext(path), services.Extension) {
		path += services.Extension
	}

	// An exported copy stands alone: its secret is the password itself,
	// so the embedded secret id must not leak into it.
	exported := *a.project
	exported.SecretID = ""

	if err := cryptox.SaveProjectFile(&exported, string(pw), path); err != nil {
		return err
	}

	a.log.Info(ctx, "exported project", "name", a.project.Name, "path", path)
	fmt.Fprintf(a.out, "Exported project to %s\n", path)
	return nil
}
