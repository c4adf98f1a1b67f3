package cli

import (
	"context"
	"fmt"

	"github.com/fielax/wizard/internal/models"
	"github.com/fielax/wizard/internal/upload"
)

// updateServer prompts for a new enter key and server URL; empty answers
// keep the current values.
func (a *App) updateServer(ctx context.Context) error {
	if err := a.requireProject(); err != nil {
		return err
	}

	enterKey, err := GetSimpleText(a.reader, "New enter key (empty to keep)", a.out)
	if err != nil {
		return err
	}
	serverURL, err := GetSimpleText(a.reader, "New server URL (empty to keep)", a.out)
	if err != nil {
		return err
	}

	var keyPtr, urlPtr *string
	if enterKey != "" {
		keyPtr = &enterKey
	}
	if serverURL != "" {
		urlPtr = &serverURL
	}
	if keyPtr == nil && urlPtr == nil {
		fmt.Fprintln(a.out, "Nothing to change")
		return nil
	}

	if err := a.projects.UpdateServerConfig(ctx, a.project, keyPtr, urlPtr); err != nil {
		return err
	}

	a.markDirty()
	fmt.Fprintf(a.out, "Server config updated (%s)\n", a.project.ServerConfig.URL)
	return nil
}

// serverClient builds an upload client from the project's server config.
func (a *App) serverClient() (uploader, error) {
	if a.project.ServerConfig == nil || a.project.ServerConfig.URL == "" {
		return nil, fmt.Errorf("project has no server configuration (use 'server')")
	}

	return newUploader(a.project.ServerConfig.URL, a.project.ServerConfig.BearerToken, a.log), nil
}

// uploadFile sends the named TOB file to the processing server and tracks
// the job to completion, updating the record's lifecycle status as it goes.
func (a *App) uploadFile(ctx context.Context, fileName string) error {
	if err := a.requireProject(); err != nil {
		return err
	}

	file := a.project.GetTOBFile(fileName)
	if file == nil {
		return fmt.Errorf("no TOB file named %q", fileName)
	}

	client, err := a.serverClient()
	if err != nil {
		return err
	}

	cfg := a.project.ServerConfig
	metadata := map[string]string{
		cfg.ProjectFieldName: a.project.Name,
		cfg.TOBFileFieldName: file.FileName,
	}
	if a.project.Description != "" {
		metadata[cfg.CommentFieldName] = a.project.Description
	}

	a.project.UpdateTOBFileStatus(fileName, models.StatusUploading, "")
	a.markDirty()

	res, err := client.UploadTOBFile(ctx, file.FilePath, metadata)
	if err != nil {
		a.project.UpdateTOBFileStatus(fileName, models.StatusError, err.Error())
		return fmt.Errorf("upload %s: %w", fileName, err)
	}

	file.ServerJobID = res.JobID
	a.project.UpdateTOBFileStatus(fileName, models.StatusUploaded, "")
	fmt.Fprintf(a.out, "Uploaded %s (job %s): %s\n", fileName, res.JobID, res.Message)

	if res.JobID == "" {
		return nil
	}

	a.project.UpdateTOBFileStatus(fileName, models.StatusProcessing, "")
	fmt.Fprintln(a.out, "Waiting for processing...")

	status, err := client.WaitForProcessing(ctx, res.JobID, a.cfg.PollInterval)
	if err != nil {
		return fmt.Errorf("poll job %s: %w", res.JobID, err)
	}

	a.applyStatus(fileName, status)
	return nil
}

// fileStatus queries the processing status of a previously uploaded file
// and updates its record.
func (a *App) fileStatus(ctx context.Context, fileName string) error {
	if err := a.requireProject(); err != nil {
		return err
	}

	file := a.project.GetTOBFile(fileName)
	if file == nil {
		return fmt.Errorf("no TOB file named %q", fileName)
	}
	if file.ServerJobID == "" {
		fmt.Fprintf(a.out, "%s: %s (never uploaded)\n", fileName, file.Status)
		return nil
	}

	client, err := a.serverClient()
	if err != nil {
		return err
	}

	status, err := client.ProcessingStatus(ctx, file.ServerJobID)
	if err != nil {
		return fmt.Errorf("status of job %s: %w", file.ServerJobID, err)
	}

	a.applyStatus(fileName, status)
	return nil
}

// applyStatus maps a server status result onto the record and reports it.
func (a *App) applyStatus(fileName string, status *upload.StatusResult) {
	file := a.project.GetTOBFile(fileName)
	file.ServerStatus = status.Status

	switch status.Status {
	case "completed":
		a.project.UpdateTOBFileStatus(fileName, models.StatusProcessed, "")
	case "failed":
		msg := status.ErrorMessage
		if msg == "" {
			msg = status.Message
		}
		a.project.UpdateTOBFileStatus(fileName, models.StatusError, msg)
	case "processing":
		a.project.UpdateTOBFileStatus(fileName, models.StatusProcessing, "")
	}
	a.markDirty()

	progress := ""
	if status.Progress != nil {
		progress = fmt.Sprintf(" %.0f%%", *status.Progress)
	}
	fmt.Fprintf(a.out, "%s: %s%s %s\n", fileName, status.Status, progress, status.Message)
}
