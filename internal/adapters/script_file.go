package adapters

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rewin/internal/ports"
	"rewin/internal/types"
)

type ScriptFileAdapter struct{}

func NewScriptFileAdapter() ScriptFileAdapter {
	return ScriptFileAdapter{}
}

// WriteScripts writes one install_<backend>.ps1 per rendered backend, in
// backend priority order, and removes the file of every other backend.
func (a ScriptFileAdapter) WriteScripts(dir string, rendered map[types.Backend][]byte) ([]string, error) {
	var written []string
	for _, backend := range types.Backends {
		path := filepath.Join(dir, backend.ScriptName())
		content, ok := rendered[backend]
		if !ok {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return written, errbuilder.New().
					WithCode(errbuilder.CodePermissionDenied).
					WithMsg("failed to remove stale " + backend.ScriptName()).
					WithCause(err)
			}
			continue
		}
		if err := writeFileAtomic(path, content); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func (a ScriptFileAdapter) LocateScript(dir string, backend types.Backend) (string, bool) {
	path := filepath.Join(dir, backend.ScriptName())
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

var _ ports.ScriptWriterPort = ScriptFileAdapter{}
var _ ports.ScriptLocatorPort = ScriptFileAdapter{}
