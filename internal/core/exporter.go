package core

import (
	"context"
	"time"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rewin/internal/types"
)

// PackageExporter projects a loaded inventory and its selection state onto a
// MigrationPackage.
type PackageExporter struct{}

func NewPackageExporter() PackageExporter {
	return PackageExporter{}
}

func (e PackageExporter) Build(ctx context.Context, inventory *types.Inventory, selection *SelectionState, drives types.Drives, exportedAt time.Time) (types.MigrationPackage, error) {
	if inventory == nil || selection == nil {
		return types.MigrationPackage{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no scan loaded")
	}

	pkg := types.MigrationPackage{
		ExportDate: exportedAt.UTC().Format(time.RFC3339),
		Drives:     drives.WithDefaults(),
		Software:   []types.SoftwareEntry{},
		StoreApps:  []types.StoreAppEntry{},
		Configs:    types.ConfigToggleSet{},
	}
	assert.NotEmpty(ctx, pkg.ExportDate, "export date must be set")

	for idx, entry := range inventory.Software {
		if selection.IsSelected(types.CategorySoftware, SoftwareID(idx)) {
			pkg.Software = append(pkg.Software, entry)
		}
	}
	for idx, app := range inventory.StoreApps {
		if selection.IsSelected(types.CategoryStoreApps, StoreAppID(idx)) {
			pkg.StoreApps = append(pkg.StoreApps, app)
		}
	}
	for _, key := range types.ConfigKeys {
		pkg.Configs[key] = selection.IsSelected(types.CategoryConfigs, key)
	}
	pkg.Licenses = buildLicenseBundle(inventory, types.LicenseToggles{
		Windows: selection.IsSelected(types.CategoryLicenses, types.LicenseWindows),
		Office:  selection.IsSelected(types.CategoryLicenses, types.LicenseOffice),
		WiFi:    selection.IsSelected(types.CategoryLicenses, types.LicenseWiFi),
	})

	log.Ctx(ctx).Debug().
		Int("software", len(pkg.Software)).
		Int("store_apps", len(pkg.StoreApps)).
		Msg("migration package built")
	return pkg, nil
}

func buildLicenseBundle(inventory *types.Inventory, toggles types.LicenseToggles) types.LicenseBundle {
	bundle := types.LicenseBundle{
		IncludeWindows: toggles.Windows,
		IncludeOffice:  toggles.Office,
		IncludeWiFi:    toggles.WiFi,
	}
	if !inventory.HasLicenses {
		return bundle
	}
	if toggles.Windows {
		windows := inventory.Licenses.Windows
		bundle.WindowsKey = &windows
	}
	if toggles.Office {
		bundle.OfficeKeys = append([]types.OfficeKey(nil), inventory.Licenses.Office...)
	}
	if toggles.WiFi {
		bundle.WiFiProfiles = append([]types.WiFiProfile(nil), inventory.Licenses.WiFiProfiles...)
	}
	return bundle
}
