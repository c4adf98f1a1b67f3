// Package models defines the project container data model: the project
// document itself, its processing server configuration, and the TOB sensor
// data file records it carries.
package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Project limits.
const (
	// MaxTOBFiles caps how many TOB files a single project may carry.
	MaxTOBFiles = 20
	// MaxTOBFileSizeMB caps the size of an individual TOB file.
	MaxTOBFileSizeMB = 100
	// MaxTotalMemoryGB bounds the estimated in-memory footprint of all
	// parsed TOB files together.
	MaxTotalMemoryGB = 2
)

// Project is the document persisted inside an encrypted .wzp container.
//
// SecretID names the stored secret that encrypts this project. It is empty
// only for documents created before per-project secrets existed or not yet
// saved; once assigned it never changes, because rotating it would orphan
// previously written containers.
type Project struct {
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	ModifiedAt    time.Time      `json:"modified_at"`
	ServerConfig  *ServerConfig  `json:"server_config,omitempty"`
	TOBFiles      []*TOBFile     `json:"tob_files"`
	ProjectData   map[string]any `json:"project_data,omitempty"`
	SecretID      string         `json:"secret_id,omitempty"`
	ActiveTOBFile string         `json:"active_tob_file,omitempty"`
}

// NewProject returns an empty project with creation timestamps set.
func NewProject(name string) *Project {
	now := time.Now()
	return &Project{
		Name:       name,
		CreatedAt:  now,
		ModifiedAt: now,
		TOBFiles:   []*TOBFile{},
	}
}

// Validate reports whether the document is structurally sound. Attached
// records and the server configuration are validated recursively.
func (p *Project) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.ServerConfig),
		validation.Field(&p.TOBFiles),
	)
}

// Touch updates the modification timestamp to the current time.
func (p *Project) Touch() {
	p.ModifiedAt = time.Now()
}

// CanAddTOBFile checks whether a file of the given size fits the project
// limits, returning the reason when it does not.
func (p *Project) CanAddTOBFile(size int64) (bool, string) {
	if len(p.TOBFiles) >= MaxTOBFiles {
		return false, fmt.Sprintf("maximum of %d TOB files per project reached", MaxTOBFiles)
	}

	if size > MaxTOBFileSizeMB*1024*1024 {
		return false, fmt.Sprintf("TOB file too large (max %dMB)", MaxTOBFileSizeMB)
	}

	return true, ""
}

// AddTOBFile records a TOB file in the project. A record with the same file
// name is updated in place and reset to StatusLoaded, keeping its original
// AddedAt and server bookkeeping; otherwise the record is appended with a
// fresh AddedAt. Returns false with a reason when project limits refuse the
// file.
func (p *Project) AddTOBFile(file *TOBFile) (bool, string) {
	ok, reason := p.CanAddTOBFile(file.FileSize)
	if !ok {
		return false, reason
	}

	if existing := p.GetTOBFile(file.FileName); existing != nil {
		existing.FilePath = file.FilePath
		existing.FileSize = file.FileSize
		existing.Data = file.Data
		existing.ModifiedHeaders = map[string]any{}
		existing.DataPoints = file.DataPoints
		existing.Sensors = file.Sensors
		existing.Status = StatusLoaded
		existing.Processed = false
	} else {
		file.AddedAt = time.Now()
		file.Status = StatusLoaded
		file.Processed = false
		p.TOBFiles = append(p.TOBFiles, file)
	}

	p.Touch()
	return true, ""
}

// RemoveTOBFile deletes the record with the given file name. Returns false
// when no such record exists.
func (p *Project) RemoveTOBFile(fileName string) bool {
	for i, f := range p.TOBFiles {
		if f.FileName == fileName {
			p.TOBFiles = append(p.TOBFiles[:i], p.TOBFiles[i+1:]...)
			if p.ActiveTOBFile == fileName {
				p.ActiveTOBFile = ""
			}
			p.Touch()
			return true
		}
	}
	return false
}

// GetTOBFile returns the record with the given file name, or nil.
func (p *Project) GetTOBFile(fileName string) *TOBFile {
	for _, f := range p.TOBFiles {
		if f.FileName == fileName {
			return f
		}
	}
	return nil
}

// UpdateTOBFileData replaces the stored data of an existing record. Nil
// arguments leave the corresponding field untouched. The record's AddedAt
// is refreshed. Returns false when no such record exists.
func (p *Project) UpdateTOBFileData(fileName string, data *TOBData, dataPoints *int, sensors []string) bool {
	f := p.GetTOBFile(fileName)
	if f == nil {
		return false
	}

	if data != nil {
		f.Data = data
	}
	if dataPoints != nil {
		f.DataPoints = dataPoints
	}
	if sensors != nil {
		f.Sensors = sensors
	}

	f.AddedAt = time.Now()
	return true
}

// UpdateTOBFileStatus moves the named record to a new lifecycle status.
// Returns false when no such record exists.
func (p *Project) UpdateTOBFileStatus(fileName string, status Status, errMsg string) bool {
	f := p.GetTOBFile(fileName)
	if f == nil {
		return false
	}

	f.SetStatus(status, errMsg)
	p.Touch()
	return true
}

// SetActiveTOBFile marks the named record as the one currently displayed.
// Returns false when no such record exists.
func (p *Project) SetActiveTOBFile(fileName string) bool {
	if p.GetTOBFile(fileName) == nil {
		return false
	}

	p.ActiveTOBFile = fileName
	for _, f := range p.TOBFiles {
		f.IsActive = f.FileName == fileName
	}
	return true
}

// ClearActiveTOBFile clears the active file selection.
func (p *Project) ClearActiveTOBFile() {
	p.ActiveTOBFile = ""
	for _, f := range p.TOBFiles {
		f.IsActive = false
	}
}

// GetActiveTOBFile returns the currently displayed record, or nil when no
// file is active.
func (p *Project) GetActiveTOBFile() *TOBFile {
	if p.ActiveTOBFile == "" {
		return nil
	}
	return p.GetTOBFile(p.ActiveTOBFile)
}

// MemoryUsageMB estimates the in-memory footprint of all TOB files. Parsed
// measurement frames take roughly 2.5x the on-disk size.
func (p *Project) MemoryUsageMB() float64 {
	var total int64
	for _, f := range p.TOBFiles {
		total += f.FileSize
	}
	return float64(total) / (1024 * 1024) * 2.5
}

// CheckMemoryLimits reports whether the estimated memory usage stays inside
// the project budget. The warning fires at 80% of MaxTotalMemoryGB.
func (p *Project) CheckMemoryLimits() (bool, string) {
	memoryMB := p.MemoryUsageMB()
	maxMB := float64(MaxTotalMemoryGB) * 1024

	if memoryMB > maxMB*0.8 {
		return false, fmt.Sprintf("memory usage high: %.1fMB of %.0fMB limit", memoryMB, maxMB)
	}

	return true, ""
}

// Summary is a display-oriented digest of a project.
type Summary struct {
	Name            string
	Description     string
	CreatedAt       time.Time
	ModifiedAt      time.Time
	TOBFileCount    int
	TotalDataPoints int
	TotalFileSizeMB float64
	MemoryUsageMB   float64
	MemoryStatus    string
	MemoryMessage   string
	ActiveTOBFile   string
	HasServerConfig bool
	HasSecret       bool
}

// Summary aggregates counts, sizes and the memory estimate for display.
func (p *Project) Summary() Summary {
	var totalSize int64
	var totalPoints int
	for _, f := range p.TOBFiles {
		totalSize += f.FileSize
		if f.DataPoints != nil {
			totalPoints += *f.DataPoints
		}
	}

	memoryOK, memoryMsg := p.CheckMemoryLimits()
	status := "OK"
	if !memoryOK {
		status = "WARNING"
	}

	return Summary{
		Name:            p.Name,
		Description:     p.Description,
		CreatedAt:       p.CreatedAt,
		ModifiedAt:      p.ModifiedAt,
		TOBFileCount:    len(p.TOBFiles),
		TotalDataPoints: totalPoints,
		TotalFileSizeMB: float64(totalSize) / (1024 * 1024),
		MemoryUsageMB:   p.MemoryUsageMB(),
		MemoryStatus:    status,
		MemoryMessage:   memoryMsg,
		ActiveTOBFile:   p.ActiveTOBFile,
		HasServerConfig: p.ServerConfig != nil,
		HasSecret:       p.SecretID != "",
	}
}
