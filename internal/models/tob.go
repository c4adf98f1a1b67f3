package models

import (
	"maps"
	"slices"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Status reflects where a TOB file is in the upload and processing lifecycle.
type Status string

const (
	StatusLoaded     Status = "loaded"
	StatusUploading  Status = "uploading"
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusError      Status = "error"
)

// TOBData carries the header block and raw content of a TOB file. Parsed
// measurement frames live in memory only and are never serialized; they are
// rebuilt from the raw content when needed.
type TOBData struct {
	Headers map[string]any `json:"headers,omitempty"`
	RawData string         `json:"raw_data,omitempty"`
}

// TOBFile is one sensor data file attached to a project.
//
// FileName is the record's identity within a project: attaching a file with
// an existing name updates that record in place. Processed mirrors
// StatusProcessed and is maintained by SetStatus.
type TOBFile struct {
	FilePath        string         `json:"file_path"`
	FileName        string         `json:"file_name"`
	FileSize        int64          `json:"file_size"`
	AddedAt         time.Time      `json:"added_at"`
	Status          Status         `json:"status"`
	Processed       bool           `json:"processed"`
	DataPoints      *int           `json:"data_points,omitempty"`
	Sensors         []string       `json:"sensors,omitempty"`
	Data            *TOBData       `json:"tob_data,omitempty"`
	ModifiedHeaders map[string]any `json:"modified_headers,omitempty"`
	ServerJobID     string         `json:"server_job_id,omitempty"`
	ServerStatus    string         `json:"server_status,omitempty"`
	UploadedAt      *time.Time     `json:"uploaded_at,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	IsActive        bool           `json:"is_active,omitempty"`
}

// Validate reports whether the record is structurally sound.
func (f *TOBFile) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.FileName, validation.Required),
		validation.Field(&f.FilePath, validation.Required),
		validation.Field(&f.FileSize, validation.Min(0)),
	)
}

// SetStatus moves the record to a new lifecycle status. The uploaded
// timestamp is stamped when the file reaches StatusUploaded; errMsg, when
// non-empty, is recorded as the error message. Processed is kept coherent
// with the status.
func (f *TOBFile) SetStatus(status Status, errMsg string) {
	f.Status = status
	if errMsg != "" {
		f.ErrorMessage = errMsg
	}
	if status == StatusUploaded {
		now := time.Now()
		f.UploadedAt = &now
	}
	f.Processed = status == StatusProcessed
}

// Clone returns a deep copy of the record.
func (f *TOBFile) Clone() *TOBFile {
	if f == nil {
		return nil
	}

	c := *f
	c.Sensors = slices.Clone(f.Sensors)
	c.ModifiedHeaders = maps.Clone(f.ModifiedHeaders)

	if f.DataPoints != nil {
		v := *f.DataPoints
		c.DataPoints = &v
	}
	if f.UploadedAt != nil {
		ts := *f.UploadedAt
		c.UploadedAt = &ts
	}
	if f.Data != nil {
		c.Data = &TOBData{
			Headers: maps.Clone(f.Data.Headers),
			RawData: f.Data.RawData,
		}
	}

	return &c
}
