package models

// RollbackTransaction guards a multi-step TOB file mutation. It snapshots
// the project's records at construction; Rollback restores that snapshot,
// discarding files added since and reinstating modified ones. Commit drops
// the snapshot and makes the mutations permanent.
//
// A finished transaction (committed or rolled back) ignores further calls.
type RollbackTransaction struct {
	project  *Project
	backup   []*TOBFile
	active   string
	finished bool
}

// NewRollbackTransaction snapshots the current TOB records of the project.
func (p *Project) NewRollbackTransaction() *RollbackTransaction {
	backup := make([]*TOBFile, 0, len(p.TOBFiles))
	for _, f := range p.TOBFiles {
		backup = append(backup, f.Clone())
	}

	return &RollbackTransaction{
		project: p,
		backup:  backup,
		active:  p.ActiveTOBFile,
	}
}

// Rollback restores the records captured at construction.
func (t *RollbackTransaction) Rollback() {
	if t.finished {
		return
	}

	t.project.TOBFiles = t.backup
	t.project.ActiveTOBFile = t.active
	t.project.Touch()

	t.backup = nil
	t.finished = true
}

// Commit discards the snapshot.
func (t *RollbackTransaction) Commit() {
	t.backup = nil
	t.finished = true
}
