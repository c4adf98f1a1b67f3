package models

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTOB(name string, size int64) *TOBFile {
	return &TOBFile{FileName: name, FilePath: "/data/" + name, FileSize: size}
}

func TestNewProject_SetsTimestamps(t *testing.T) {
	p := NewProject("Demo")

	require.Equal(t, "Demo", p.Name)
	require.False(t, p.CreatedAt.IsZero())
	require.Equal(t, p.CreatedAt, p.ModifiedAt)
	require.NotNil(t, p.TOBFiles)
	require.Empty(t, p.TOBFiles)
}

func TestAddTOBFile_AppendsAndStamps(t *testing.T) {
	p := NewProject("Demo")

	ok, reason := p.AddTOBFile(newTOB("a.tob", 100))
	require.True(t, ok, reason)

	require.Len(t, p.TOBFiles, 1)
	f := p.TOBFiles[0]
	require.Equal(t, StatusLoaded, f.Status)
	require.False(t, f.AddedAt.IsZero())
	require.True(t, p.ModifiedAt.After(p.CreatedAt) || p.ModifiedAt.Equal(p.CreatedAt))
}

func TestAddTOBFile_SameNameUpdatesInPlace(t *testing.T) {
	p := NewProject("Demo")

	ok, _ := p.AddTOBFile(newTOB("a.tob", 100))
	require.True(t, ok)

	orig := p.TOBFiles[0]
	orig.SetStatus(StatusProcessed, "")
	orig.ModifiedHeaders = map[string]any{"comment": "edited"}
	addedAt := orig.AddedAt

	replacement := newTOB("a.tob", 2048)
	replacement.FilePath = "/elsewhere/a.tob"
	ok, _ = p.AddTOBFile(replacement)
	require.True(t, ok)

	require.Len(t, p.TOBFiles, 1, "same name must not append a second record")
	got := p.TOBFiles[0]
	require.Same(t, orig, got, "record is updated in place")
	require.Equal(t, "/elsewhere/a.tob", got.FilePath)
	require.Equal(t, int64(2048), got.FileSize)
	require.Equal(t, StatusLoaded, got.Status)
	require.False(t, got.Processed)
	require.Empty(t, got.ModifiedHeaders)
	require.Equal(t, addedAt, got.AddedAt, "AddedAt survives an in-place update")
}

func TestAddTOBFile_RejectsAtFileCap(t *testing.T) {
	p := NewProject("Demo")
	for i := 0; i < MaxTOBFiles; i++ {
		ok, _ := p.AddTOBFile(newTOB(fmt.Sprintf("f%02d.tob", i), 10))
		require.True(t, ok)
	}

	ok, reason := p.AddTOBFile(newTOB("one-too-many.tob", 10))
	require.False(t, ok)
	require.Contains(t, reason, "maximum")
}

func TestAddTOBFile_RejectsOversizedFile(t *testing.T) {
	p := NewProject("Demo")

	ok, reason := p.AddTOBFile(newTOB("huge.tob", (MaxTOBFileSizeMB+1)*1024*1024))
	require.False(t, ok)
	require.Contains(t, reason, "too large")
}

func TestRemoveTOBFile(t *testing.T) {
	p := NewProject("Demo")
	p.AddTOBFile(newTOB("a.tob", 10))
	p.AddTOBFile(newTOB("b.tob", 10))
	require.True(t, p.SetActiveTOBFile("a.tob"))

	require.True(t, p.RemoveTOBFile("a.tob"))
	require.Len(t, p.TOBFiles, 1)
	require.Equal(t, "b.tob", p.TOBFiles[0].FileName)
	require.Empty(t, p.ActiveTOBFile, "removing the active file clears the selection")

	require.False(t, p.RemoveTOBFile("missing.tob"))
}

func TestActiveTOBFile_Selection(t *testing.T) {
	p := NewProject("Demo")
	p.AddTOBFile(newTOB("a.tob", 10))
	p.AddTOBFile(newTOB("b.tob", 10))

	require.False(t, p.SetActiveTOBFile("missing.tob"))
	require.Nil(t, p.GetActiveTOBFile())

	require.True(t, p.SetActiveTOBFile("b.tob"))
	active := p.GetActiveTOBFile()
	require.NotNil(t, active)
	require.Equal(t, "b.tob", active.FileName)
	require.True(t, active.IsActive)
	require.False(t, p.TOBFiles[0].IsActive)

	p.ClearActiveTOBFile()
	require.Nil(t, p.GetActiveTOBFile())
	require.False(t, p.TOBFiles[1].IsActive)
}

func TestUpdateTOBFileStatus(t *testing.T) {
	p := NewProject("Demo")
	p.AddTOBFile(newTOB("a.tob", 10))

	require.True(t, p.UpdateTOBFileStatus("a.tob", StatusUploading, ""))
	require.Equal(t, StatusUploading, p.TOBFiles[0].Status)

	require.False(t, p.UpdateTOBFileStatus("missing.tob", StatusError, "boom"))
}

func TestUpdateTOBFileData(t *testing.T) {
	p := NewProject("Demo")
	p.AddTOBFile(newTOB("a.tob", 10))

	points := 128
	ok := p.UpdateTOBFileData("a.tob", &TOBData{RawData: "raw"}, &points, []string{"T1"})
	require.True(t, ok)

	f := p.TOBFiles[0]
	require.Equal(t, "raw", f.Data.RawData)
	require.Equal(t, 128, *f.DataPoints)
	require.Equal(t, []string{"T1"}, f.Sensors)

	require.False(t, p.UpdateTOBFileData("missing.tob", nil, nil, nil))
}

func TestCheckMemoryLimits(t *testing.T) {
	p := NewProject("Demo")
	p.AddTOBFile(newTOB("small.tob", 1024*1024))

	ok, msg := p.CheckMemoryLimits()
	require.True(t, ok)
	require.Empty(t, msg)

	// 700MB on disk estimates to 1750MB in memory, above 80% of the 2GB budget.
	p.TOBFiles[0].FileSize = 700 * 1024 * 1024
	ok, msg = p.CheckMemoryLimits()
	require.False(t, ok)
	require.Contains(t, msg, "memory usage high")
}

func TestSummary_Aggregates(t *testing.T) {
	p := NewProject("Demo")
	p.Description = "survey run"
	p.ServerConfig = NewServerConfig("https://example.com", "token")
	p.SecretID = "project-abc"

	a := newTOB("a.tob", 2*1024*1024)
	points := 100
	a.DataPoints = &points
	p.AddTOBFile(a)
	p.AddTOBFile(newTOB("b.tob", 1024*1024))
	p.SetActiveTOBFile("a.tob")

	s := p.Summary()
	assert.Equal(t, "Demo", s.Name)
	assert.Equal(t, "survey run", s.Description)
	assert.Equal(t, 2, s.TOBFileCount)
	assert.Equal(t, 100, s.TotalDataPoints)
	assert.InDelta(t, 3.0, s.TotalFileSizeMB, 0.01)
	assert.InDelta(t, 7.5, s.MemoryUsageMB, 0.01)
	assert.Equal(t, "OK", s.MemoryStatus)
	assert.Equal(t, "a.tob", s.ActiveTOBFile)
	assert.True(t, s.HasServerConfig)
	assert.True(t, s.HasSecret)
}

func TestProject_Validate(t *testing.T) {
	p := NewProject("Demo")
	require.NoError(t, p.Validate())

	p.Name = ""
	require.Error(t, p.Validate())

	p.Name = "Demo"
	p.ServerConfig = &ServerConfig{URL: "https://example.com"}
	require.Error(t, p.Validate(), "server config without bearer token is invalid")

	p.ServerConfig = NewServerConfig("https://example.com", "token")
	p.TOBFiles = append(p.TOBFiles, &TOBFile{FileName: "broken.tob"})
	require.Error(t, p.Validate(), "record without a file path is invalid")
}

func TestProject_JSONRoundTrip(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	points := 512
	p := &Project{
		Name:         "Demo",
		Description:  "survey run",
		CreatedAt:    created,
		ModifiedAt:   created.Add(time.Hour),
		ServerConfig: NewServerConfig("https://example.com", "abc123"),
		TOBFiles: []*TOBFile{
			{
				FilePath:   "/data/a.tob",
				FileName:   "a.tob",
				FileSize:   100,
				AddedAt:    created,
				Status:     StatusProcessed,
				Processed:  true,
				DataPoints: &points,
				Sensors:    []string{"T1", "T2"},
				Data:       &TOBData{Headers: map[string]any{"probe": "P-01"}, RawData: "raw"},
			},
			{
				FilePath: "/data/b.tob",
				FileName: "b.tob",
				FileSize: 200,
				AddedAt:  created,
				Status:   StatusLoaded,
			},
		},
		ProjectData:   map[string]any{"mean_temp": 3.25},
		SecretID:      "project-0123456789abcdef0123456789abcdef",
		ActiveTOBFile: "a.tob",
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got Project
	require.NoError(t, json.Unmarshal(data, &got))

	require.Equal(t, p, &got)
	require.Equal(t, "a.tob", got.TOBFiles[0].FileName, "record order survives")
	require.Equal(t, "b.tob", got.TOBFiles[1].FileName)
}

func TestProject_JSONFieldNames(t *testing.T) {
	p := NewProject("Demo")
	p.SecretID = "project-ffff"
	p.ServerConfig = NewServerConfig("https://example.com", "tok")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Contains(t, raw, "name")
	assert.Contains(t, raw, "created_at")
	assert.Contains(t, raw, "modified_at")
	assert.Contains(t, raw, "tob_files")
	assert.Contains(t, raw, "secret_id")
	assert.Contains(t, raw, "server_config")

	sc := raw["server_config"].(map[string]any)
	assert.Equal(t, "project", sc["project_field_name"])
	assert.Equal(t, "subcon", sc["subconn_length_field_name"])
	assert.Equal(t, "string_id", sc["string_id_field_name"])
}
