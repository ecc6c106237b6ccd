package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rewin/internal/core"
	"rewin/internal/types"
)

// Compare relates every package entry to what the target machine's scan
// reports as installed.
func (s Service) Compare(ctx context.Context, req CompareRequest) ([]types.CompareRecord, error) {
	if strings.TrimSpace(req.PackagePath) == "" || strings.TrimSpace(req.ScanDir) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package path and target scan directory are required")
	}
	pkg, err := s.PackageReader.ReadPackage(req.PackagePath)
	if err != nil {
		return nil, err
	}
	target, err := s.ScanLoader.LoadScan(req.ScanDir)
	if err != nil {
		return nil, err
	}
	records := core.NewInventoryComparer().Compare(pkg, target)
	log.Ctx(ctx).Debug().Int("entries", len(records)).Msg("package compared with target scan")
	return records, nil
}
