package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rewin/internal/types"
)

const packageFolder = "ReWin"

// Locate finds a migration package: first next to req.WorkDir, then in a
// sibling ReWin folder, then on every mounted drive. It returns the path of
// the first package file found.
func (s Service) Locate(ctx context.Context, req LocateRequest) (string, error) {
	workDir := strings.TrimSpace(req.WorkDir)
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to determine working directory").
				WithCause(err)
		}
		workDir = wd
	}
	candidates := []string{
		filepath.Join(workDir, types.PackageFileName),
		filepath.Join(workDir, "..", packageFolder, types.PackageFileName),
	}
	if s.Drives != nil {
		drives, err := s.Drives.MountedDrives()
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("drive enumeration failed")
		}
		for _, drive := range drives {
			root := driveRoot(drive)
			candidates = append(candidates,
				filepath.Join(root, packageFolder, types.PackageFileName),
				filepath.Join(root, types.PackageFileName),
			)
		}
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			log.Ctx(ctx).Debug().Str("path", candidate).Msg("migration package found")
			return filepath.Clean(candidate), nil
		}
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("no " + types.PackageFileName + " found")
}

// driveRoot turns a bare drive letter such as "D:" into its root "D:\".
// Joining onto "D:" alone would resolve relative to that drive's current
// directory.
func driveRoot(drive string) string {
	if strings.HasSuffix(drive, ":") {
		return drive + string(filepath.Separator)
	}
	return drive
}
