//go:build !windows

package adapters

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewin/internal/types"
)

func TestExecRunnerStreamsCombinedOutput(t *testing.T) {
	var lines []string
	spec := types.ProcessSpec{Program: "sh", Args: []string{"-c", "echo first; echo; echo second 1>&2; exit 3"}}

	code, err := NewExecRunnerAdapter().Run(t.Context(), spec, func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, []string{"first", "second"}, lines)
}

func TestExecRunnerRunsInDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "install_winget.ps1"), []byte("exit 0\n"), 0644))
	var lines []string
	code, err := NewExecRunnerAdapter().Run(t.Context(), types.ProcessSpec{Program: "ls", Dir: dir}, func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"install_winget.ps1"}, lines)
}

func TestExecRunnerStartFailure(t *testing.T) {
	code, err := NewExecRunnerAdapter().Run(t.Context(), types.ProcessSpec{Program: "rewin-no-such-binary"}, nil)
	require.Error(t, err)
	assert.Equal(t, -1, code)
}

func TestExecRunnerCancelKillsProcessTree(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	spec := types.ProcessSpec{Program: "sh", Args: []string{"-c", "echo started; sleep 30 & wait"}}

	started := time.Now()
	_, err := NewExecRunnerAdapter().Run(ctx, spec, func(line string) {
		if line == "started" {
			cancel()
		}
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(started), 10*time.Second)
}

func TestExecRunnerSplitsOverlongLines(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Second)
	defer cancel()
	var lines []string
	spec := types.ProcessSpec{Program: "sh", Args: []string{"-c", "head -c 3000000 /dev/zero | tr '\\0' a; echo; echo done"}}

	code, err := NewExecRunnerAdapter().Run(ctx, spec, func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	require.NotEmpty(t, lines)
	assert.Equal(t, "done", lines[len(lines)-1])

	total := 0
	for _, line := range lines[:len(lines)-1] {
		assert.LessOrEqual(t, len(line), maxOutputLine)
		assert.Equal(t, "", strings.Trim(line, "a"))
		total += len(line)
	}
	assert.Equal(t, 3000000, total)
}

func TestReadLinesSplitsAtLimit(t *testing.T) {
	var lines []string
	err := readLines(strings.NewReader("abcdefghijklmnopqrstuvwxyz\nxy\nlast"), 16, func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"abcdefghijklmnop", "qrstuvwxyz", "xy", "last"}, lines)
}
