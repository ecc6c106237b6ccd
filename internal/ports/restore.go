package ports

import "rewin/internal/types"

// ConfigRestorePort prepares the configuration restore invocation. The
// returned cleanup removes anything Prepare wrote.
type ConfigRestorePort interface {
	PrepareConfigRestore(packageDir string, options types.RestoreOptions) (types.ProcessSpec, func(), error)
}
