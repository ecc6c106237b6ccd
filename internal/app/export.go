package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rewin/internal/core"
	"rewin/internal/types"
)

// Export writes the scan's auxiliary files, the install scripts and finally
// the migration package for the session's selection into req.OutputDir.
// The export time comes from the service clock, so two exports of the same
// selection are byte-identical only when the clock is pinned.
func (s Service) Export(ctx context.Context, session *Session, req ExportRequest) (ExportResult, error) {
	if session == nil || session.Inventory == nil {
		return ExportResult{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no scan loaded")
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return ExportResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	drives := mergeDrives(session.Drives, req.Drives)
	pkg, err := core.NewPackageExporter().Build(ctx, session.Inventory, session.Selection, drives, s.now())
	if err != nil {
		return ExportResult{}, err
	}
	rendered, err := RenderScripts(pkg)
	if err != nil {
		return ExportResult{}, err
	}

	// The package file is written last: a failed export never leaves a
	// migration_package.json describing scripts that were not written.
	auxiliary, err := s.AuxCopy.CopyAuxiliary(session.Inventory.ScanDir, outputDir)
	if err != nil {
		return ExportResult{}, err
	}
	scripts, err := s.ScriptWriter.WriteScripts(outputDir, rendered)
	if err != nil {
		return ExportResult{}, err
	}
	packagePath, err := s.PackageWriter.WritePackage(outputDir, pkg)
	if err != nil {
		return ExportResult{}, err
	}
	log.Ctx(ctx).Info().
		Str("package", packagePath).
		Int("software", len(pkg.Software)).
		Int("scripts", len(scripts)).
		Int("auxiliary", len(auxiliary)).
		Msg("migration package exported")
	return ExportResult{
		PackagePath: packagePath,
		Package:     pkg,
		Scripts:     scripts,
		Auxiliary:   auxiliary,
	}, nil
}

// RenderScripts generates and renders the install script of every backend
// that has at least one identifier in pkg.
func RenderScripts(pkg types.MigrationPackage) (map[types.Backend][]byte, error) {
	generator := core.NewScriptGenerator()
	rendered := map[types.Backend][]byte{}
	for backend, script := range generator.Generate(pkg) {
		content, err := generator.Render(script)
		if err != nil {
			return nil, err
		}
		rendered[backend] = content
	}
	return rendered, nil
}
