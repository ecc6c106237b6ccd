package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFileAppendFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), RestoreLogFile)
	sink := LogFileAdapter{Path: path, Clock: func() time.Time {
		return time.Date(2026, 10, 19, 8, 30, 5, 0, time.UTC)
	}}

	sink.Append("Installing via Winget...")
	sink.Append("Chocolatey phase skipped — no script")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "[2026-10-19 08:30:05] Installing via Winget...\n" +
		"[2026-10-19 08:30:05] Chocolatey phase skipped — no script\n"
	assert.Equal(t, want, string(data))
}

func TestLogFileConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), ResolverLogFile)
	var wg sync.WaitGroup
	for worker := 0; worker < 4; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink := NewLogFileAdapter(path)
			for i := 0; i < 25; i++ {
				sink.Append(fmt.Sprintf("worker %d line %d", worker, i))
			}
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Len(t, lines, 100)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "["), line)
	}
}

func TestLogFileIgnoresWriteFailures(t *testing.T) {
	sink := NewLogFileAdapter(filepath.Join(t.TempDir(), "missing", "log.txt"))
	assert.NotPanics(t, func() { sink.Append("dropped") })
}
