package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rewin/internal/ports"
	"rewin/internal/shared"
	"rewin/internal/types"
)

const configRestoreWrapper = "temp_restore.ps1"

// ConfigRestoreAdapter drives the configuration restore script through a
// wrapper that dot-sources it and calls Start-FullRestore with the
// selected options.
type ConfigRestoreAdapter struct {
	Script   string
	Commands ports.ScriptCommandPort
}

func NewConfigRestoreAdapter(script string, commands ports.ScriptCommandPort) ConfigRestoreAdapter {
	return ConfigRestoreAdapter{Script: script, Commands: commands}
}

func (a ConfigRestoreAdapter) PrepareConfigRestore(packageDir string, options types.RestoreOptions) (types.ProcessSpec, func(), error) {
	script, err := filepath.Abs(a.Script)
	if err != nil || !fileExists(script) {
		return types.ProcessSpec{}, nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("restore script not found: " + a.Script)
	}
	absPackage, err := filepath.Abs(packageDir)
	if err != nil {
		absPackage = packageDir
	}
	wrapper := filepath.Join(absPackage, configRestoreWrapper)
	if err := os.WriteFile(wrapper, []byte(RenderConfigRestoreWrapper(script, absPackage, options)), 0644); err != nil {
		return types.ProcessSpec{}, nil, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to write " + configRestoreWrapper).
			WithCause(err)
	}
	cleanup := func() { _ = os.Remove(wrapper) }
	return a.Commands.ScriptCommand(wrapper, absPackage), cleanup, nil
}

// RenderConfigRestoreWrapper renders the options as a single hashtable
// argument, one key per line in declaration order.
func RenderConfigRestoreWrapper(script string, packageDir string, options types.RestoreOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, ". %s\n", shared.PSQuote(script))
	fmt.Fprintf(&b, "Start-FullRestore -PackagePath %s -Options @{\n", shared.PSQuote(packageDir))
	for _, field := range options.Fields() {
		fmt.Fprintf(&b, "    %s = $%t\n", field.Name, field.Value)
	}
	b.WriteString("}\n")
	return b.String()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

var _ ports.ConfigRestorePort = ConfigRestoreAdapter{}
