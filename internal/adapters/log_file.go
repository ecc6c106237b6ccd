package adapters

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"rewin/internal/ports"
)

const (
	RestoreLogFile  = "restore_debug.txt"
	ResolverLogFile = "restore_installer_lookup_debug.txt"

	logTimestampLayout = "2006-01-02 15:04:05"
)

var logFileLocks sync.Map

// LogFileAdapter appends timestamped lines to one operation log file.
// Writers sharing a path are serialized. Write failures are dropped.
type LogFileAdapter struct {
	Path  string
	Clock func() time.Time
}

func NewLogFileAdapter(path string) LogFileAdapter {
	return LogFileAdapter{Path: path, Clock: time.Now}
}

func (a LogFileAdapter) Append(line string) {
	if a.Path == "" {
		return
	}
	lock, _ := logFileLocks.LoadOrStore(a.Path, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	file, err := os.OpenFile(a.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer file.Close()
	logger := zerolog.New(newLogFileWriter(file))
	logger.Log().Str(zerolog.TimestampFieldName, a.now().Format(logTimestampLayout)).Msg(line)
}

func (a LogFileAdapter) now() time.Time {
	if a.Clock != nil {
		return a.Clock()
	}
	return time.Now()
}

func newLogFileWriter(file *os.File) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        file,
		NoColor:    true,
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.MessageFieldName},
		FormatTimestamp: func(i interface{}) string {
			return fmt.Sprintf("[%v]", i)
		},
	}
}

var _ ports.LogSinkPort = LogFileAdapter{}
