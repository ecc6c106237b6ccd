package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rewin/internal/core"
	"rewin/internal/policies"
	"rewin/internal/types"
)

var methodOrder = []types.InstallMethod{
	types.InstallMethodWinget,
	types.InstallMethodChocolatey,
	types.InstallMethodStore,
	types.InstallMethodManual,
}

// Inspect summarizes a migration package, or a scan with its default
// selection when no package is given.
func (s Service) Inspect(ctx context.Context, req InspectRequest) (InspectResult, error) {
	if strings.TrimSpace(req.PackagePath) != "" {
		pkg, err := s.PackageReader.ReadPackage(req.PackagePath)
		if err != nil {
			return InspectResult{}, err
		}
		return s.inspectPackage(ctx, req.PackagePath, pkg), nil
	}
	if strings.TrimSpace(req.ScanDir) == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("scan directory or package path is required")
	}
	session, err := s.LoadScan(ctx, req.ScanDir)
	if err != nil {
		return InspectResult{}, err
	}
	return s.InspectSession(ctx, session)
}

// InspectSession summarizes a loaded scan under its current selection.
func (s Service) InspectSession(ctx context.Context, session *Session) (InspectResult, error) {
	if session == nil || session.Inventory == nil || session.Selection == nil {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no scan loaded")
	}
	inventory := session.Inventory
	selection := session.Selection
	policy := policies.NewBackendPolicy()

	counts := map[types.InstallMethod]*MethodCount{}
	for idx, entry := range inventory.Software {
		count := methodCount(counts, policy.Classify(entry))
		count.Total++
		if selection.IsSelected(types.CategorySoftware, core.SoftwareID(idx)) {
			count.Selected++
		}
	}
	result := InspectResult{
		Source:        inventory.ScanDir,
		Methods:       orderedCounts(counts),
		StoreApps:     len(inventory.StoreApps),
		StoreSelected: len(selection.Selected(types.CategoryStoreApps)),
		Configs:       types.ConfigToggleSet{},
		Licenses: LicenseSummary{
			WindowsKey:   inventory.HasLicenses && !inventory.Licenses.Windows.Empty(),
			OfficeKeys:   len(inventory.Licenses.Office),
			OfficeMasked: core.HasMaskedOfficeKey(inventory.Licenses.Office),
			WiFiProfiles: len(inventory.Licenses.WiFiProfiles),
			Included:     map[string]bool{},
		},
	}
	for _, key := range types.ConfigKeys {
		result.Configs[key] = selection.IsSelected(types.CategoryConfigs, key)
	}
	for _, key := range types.LicenseKeys {
		result.Licenses.Included[key] = selection.IsSelected(types.CategoryLicenses, key)
	}
	result.Drives = s.driveStatus(ctx, session.Drives)
	return result, nil
}

func (s Service) inspectPackage(ctx context.Context, source string, pkg types.MigrationPackage) InspectResult {
	policy := policies.NewBackendPolicy()
	counts := map[types.InstallMethod]*MethodCount{}
	for _, entry := range pkg.Software {
		count := methodCount(counts, policy.Classify(entry))
		count.Total++
		count.Selected++
	}
	licenses := pkg.Licenses
	summary := LicenseSummary{
		WindowsKey:   licenses.WindowsKey != nil && !licenses.WindowsKey.Empty(),
		OfficeKeys:   len(licenses.OfficeKeys),
		OfficeMasked: core.HasMaskedOfficeKey(licenses.OfficeKeys),
		WiFiProfiles: len(licenses.WiFiProfiles),
		Included: map[string]bool{
			types.LicenseWindows: licenses.IncludeWindows,
			types.LicenseOffice:  licenses.IncludeOffice,
			types.LicenseWiFi:    licenses.IncludeWiFi,
		},
	}
	configs := types.ConfigToggleSet{}
	for key, value := range pkg.Configs {
		configs[key] = value
	}
	return InspectResult{
		Source:        source,
		ExportDate:    pkg.ExportDate,
		Methods:       orderedCounts(counts),
		StoreApps:     len(pkg.StoreApps),
		StoreSelected: len(pkg.StoreApps),
		Configs:       configs,
		Licenses:      summary,
		Drives:        s.driveStatus(ctx, pkg.Drives),
	}
}

func methodCount(counts map[types.InstallMethod]*MethodCount, method types.InstallMethod) *MethodCount {
	count, ok := counts[method]
	if !ok {
		count = &MethodCount{Method: method}
		counts[method] = count
	}
	return count
}

func orderedCounts(counts map[types.InstallMethod]*MethodCount) []MethodCount {
	out := make([]MethodCount, 0, len(methodOrder))
	for _, method := range methodOrder {
		if count, ok := counts[method]; ok {
			out = append(out, *count)
			continue
		}
		out = append(out, MethodCount{Method: method})
	}
	return out
}

// driveStatus reports whether each drive role's letter is mounted. A drive
// enumeration failure leaves every role marked absent.
func (s Service) driveStatus(ctx context.Context, drives types.Drives) []DriveStatus {
	drives = drives.WithDefaults()
	mounted := map[string]struct{}{}
	if s.Drives != nil {
		letters, err := s.Drives.MountedDrives()
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("drive enumeration failed")
		}
		for _, letter := range letters {
			mounted[strings.ToUpper(letter)] = struct{}{}
		}
	}
	roles := []struct {
		role   string
		letter string
	}{
		{"primary", drives.Primary},
		{"secondary", drives.Secondary},
		{"data", drives.Data},
	}
	out := make([]DriveStatus, 0, len(roles))
	for _, role := range roles {
		_, present := mounted[strings.ToUpper(role.letter)]
		out = append(out, DriveStatus{Role: role.role, Letter: role.letter, Present: present})
	}
	return out
}
