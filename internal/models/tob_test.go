package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetStatus_UploadedStampsTimestamp(t *testing.T) {
	f := &TOBFile{FileName: "a.tob", FilePath: "/data/a.tob", FileSize: 10}

	f.SetStatus(StatusUploaded, "")

	require.Equal(t, StatusUploaded, f.Status)
	require.NotNil(t, f.UploadedAt)
	require.False(t, f.Processed)
}

func TestSetStatus_ErrorKeepsMessage(t *testing.T) {
	f := &TOBFile{FileName: "a.tob", FilePath: "/data/a.tob"}

	f.SetStatus(StatusError, "server rejected upload")

	require.Equal(t, StatusError, f.Status)
	require.Equal(t, "server rejected upload", f.ErrorMessage)
}

func TestSetStatus_ProcessedMirrorsFlag(t *testing.T) {
	f := &TOBFile{FileName: "a.tob", FilePath: "/data/a.tob"}

	f.SetStatus(StatusProcessed, "")
	require.True(t, f.Processed)

	f.SetStatus(StatusLoaded, "")
	require.False(t, f.Processed)
}

func TestTOBFile_Validate(t *testing.T) {
	valid := &TOBFile{FileName: "a.tob", FilePath: "/data/a.tob", FileSize: 5}
	require.NoError(t, valid.Validate())

	missingName := &TOBFile{FilePath: "/data/a.tob"}
	require.Error(t, missingName.Validate())

	missingPath := &TOBFile{FileName: "a.tob"}
	require.Error(t, missingPath.Validate())
}

func TestTOBFile_Clone_IsDeep(t *testing.T) {
	points := 42
	f := &TOBFile{
		FileName:        "a.tob",
		FilePath:        "/data/a.tob",
		FileSize:        10,
		DataPoints:      &points,
		Sensors:         []string{"T1", "T2"},
		Data:            &TOBData{Headers: map[string]any{"probe": "P-01"}, RawData: "raw"},
		ModifiedHeaders: map[string]any{"comment": "edited"},
	}

	c := f.Clone()
	require.Equal(t, f, c)

	c.Sensors[0] = "changed"
	*c.DataPoints = 7
	c.Data.Headers["probe"] = "other"
	c.ModifiedHeaders["comment"] = "other"

	require.Equal(t, "T1", f.Sensors[0])
	require.Equal(t, 42, *f.DataPoints)
	require.Equal(t, "P-01", f.Data.Headers["probe"])
	require.Equal(t, "edited", f.ModifiedHeaders["comment"])
}

func TestTOBFile_Clone_Nil(t *testing.T) {
	var f *TOBFile
	require.Nil(t, f.Clone())
}
