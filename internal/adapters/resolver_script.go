package adapters

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rewin/internal/ports"
	"rewin/internal/shared"
	"rewin/internal/types"
)

const (
	resolverSoftwareList = "software_search_list.json"
	resolverWrapper      = "temp_search_downloads.ps1"
	// ManualDownloadsReport is the markdown report the resolver writes.
	ManualDownloadsReport = "manual_downloads.md"
)

// ResolverScriptAdapter hands software entries to the external download
// resolver and reads back its markdown report.
type ResolverScriptAdapter struct {
	Script   string
	Commands ports.ScriptCommandPort
}

func NewResolverScriptAdapter(script string, commands ports.ScriptCommandPort) ResolverScriptAdapter {
	return ResolverScriptAdapter{Script: script, Commands: commands}
}

// PrepareResolve writes the software list and wrapper script into the
// package directory and removes any report left by an earlier run. The
// returned cleanup deletes the list and the wrapper.
func (a ResolverScriptAdapter) PrepareResolve(packageDir string, software []types.SoftwareEntry) (ports.ResolverInvocation, func(), error) {
	script, err := filepath.Abs(a.Script)
	if err != nil || !fileExists(script) {
		return ports.ResolverInvocation{}, nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("resolver script not found: " + a.Script)
	}
	absPackage, err := filepath.Abs(packageDir)
	if err != nil {
		absPackage = packageDir
	}
	listPath := filepath.Join(absPackage, resolverSoftwareList)
	wrapperPath := filepath.Join(absPackage, resolverWrapper)
	reportPath := filepath.Join(absPackage, ManualDownloadsReport)
	cleanup := func() {
		_ = os.Remove(listPath)
		_ = os.Remove(wrapperPath)
	}

	if software == nil {
		software = []types.SoftwareEntry{}
	}
	data, err := json.MarshalIndent(software, "", "  ")
	if err != nil {
		return ports.ResolverInvocation{}, nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode software list").
			WithCause(err)
	}
	if err := os.WriteFile(listPath, data, 0644); err != nil {
		return ports.ResolverInvocation{}, nil, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to write " + resolverSoftwareList).
			WithCause(err)
	}
	if err := os.WriteFile(wrapperPath, []byte(RenderResolverWrapper(script, listPath, reportPath)), 0644); err != nil {
		cleanup()
		return ports.ResolverInvocation{}, nil, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to write " + resolverWrapper).
			WithCause(err)
	}
	if err := os.Remove(reportPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		cleanup()
		return ports.ResolverInvocation{}, nil, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to remove previous " + ManualDownloadsReport).
			WithCause(err)
	}
	return ports.ResolverInvocation{
		Spec:       a.Commands.ScriptCommand(wrapperPath, absPackage),
		ReportPath: reportPath,
	}, cleanup, nil
}

func RenderResolverWrapper(script string, listPath string, reportPath string) string {
	var b strings.Builder
	fmt.Fprintf(&b, ". %s\n", shared.PSQuote(script))
	fmt.Fprintf(&b, "$software = ConvertFrom-Json (Get-Content %s -Raw)\n", shared.PSQuote(listPath))
	fmt.Fprintf(&b, "$resolved = Resolve-ManualDownloads -Software $software -OutputPath %s\n", shared.PSQuote(reportPath))
	b.WriteString("if ($resolved) {\n")
	b.WriteString("    Write-Host \"Successfully resolved downloads for $($resolved.Count) items\"\n")
	b.WriteString("}\n")
	return b.String()
}

// ReadReport returns the report text and false when the resolver wrote
// no report.
func (a ResolverScriptAdapter) ReadReport(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read " + filepath.Base(path)).
			WithCause(err)
	}
	return string(shared.StripBOM(data)), true, nil
}

var _ ports.ResolverPort = ResolverScriptAdapter{}
