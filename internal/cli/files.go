package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fielax/wizard/internal/models"
)

func (a *App) listFiles() error {
	if err := a.requireProject(); err != nil {
		return err
	}

	if len(a.project.TOBFiles) == 0 {
		fmt.Fprintln(a.out, "No TOB files attached")
		return nil
	}

	for _, f := range a.project.TOBFiles {
		marker := " "
		if f.FileName == a.project.ActiveTOBFile {
			marker = "*"
		}

		points := "-"
		if f.DataPoints != nil {
			points = fmt.Sprintf("%d", *f.DataPoints)
		}

		fmt.Fprintf(a.out, "%s %-30s %8.1f KB  %-10s points=%s sensors=%s\n",
			marker, f.FileName, float64(f.FileSize)/1024, f.Status, points,
			strings.Join(f.Sensors, ","))
	}

	return nil
}

// attach records the given TOB files in the project. The whole batch is
// transactional: when any file is refused, the project's record list is
// rolled back to its pre-attach state.
func (a *App) attach(ctx context.Context, paths []string) error {
	if err := a.requireProject(); err != nil {
		return err
	}

	tx := a.project.NewRollbackTransaction()

	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("attach %s: %w", path, err)
		}
		if !fi.Mode().IsRegular() {
			tx.Rollback()
			return fmt.Errorf("attach %s: not a regular file", path)
		}

		file := &models.TOBFile{
			FilePath: path,
			FileName: filepath.Base(path),
			FileSize: fi.Size(),
		}

		if ok, reason := a.project.AddTOBFile(file); !ok {
			tx.Rollback()
			return fmt.Errorf("attach %s: %s", path, reason)
		}

		fmt.Fprintf(a.out, "Attached %s (%.1f KB)\n", file.FileName, float64(file.FileSize)/1024)
	}

	tx.Commit()
	a.markDirty()

	if ok, msg := a.project.CheckMemoryLimits(); !ok {
		fmt.Fprintln(a.out, "Warning:", msg)
	}

	return nil
}

func (a *App) detach(fileName string) error {
	if err := a.requireProject(); err != nil {
		return err
	}

	if !a.project.RemoveTOBFile(fileName) {
		return fmt.Errorf("no TOB file named %q", fileName)
	}

	a.markDirty()
	fmt.Fprintf(a.out, "Detached %s\n", fileName)
	return nil
}

func (a *App) activate(fileName string) error {
	if err := a.requireProject(); err != nil {
		return err
	}

	if !a.project.SetActiveTOBFile(fileName) {
		return fmt.Errorf("no TOB file named %q", fileName)
	}

	a.markDirty()
	fmt.Fprintf(a.out, "Active file is now %s\n", fileName)
	return nil
}
