package ports

import "rewin/internal/types"

// ScriptWriterPort writes rendered install scripts into a package
// directory. Backends missing from rendered lose any stale script file.
type ScriptWriterPort interface {
	WriteScripts(dir string, rendered map[types.Backend][]byte) ([]string, error)
}

type ScriptLocatorPort interface {
	LocateScript(dir string, backend types.Backend) (string, bool)
}
