package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrintBuildData(t *testing.T) {
	var buf bytes.Buffer
	PrintBuildData(&buf)

	out := buf.String()
	require.Contains(t, out, "Build version: "+BuildVersion)
	require.Contains(t, out, "Build date: "+BuildDate)
	require.Contains(t, out, "Build commit: "+BuildCommit)
}
