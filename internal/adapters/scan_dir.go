package adapters

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rewin/internal/ports"
	"rewin/internal/shared"
	"rewin/internal/types"
)

const (
	softwareInventoryFile = "software_inventory.json"
	packageMappingsFile   = "package_mappings.json"
	licenseKeysFile       = "license_keys.json"
	configBackupFile      = "config_backup.json"
)

type ScanDirAdapter struct{}

func NewScanDirAdapter() ScanDirAdapter {
	return ScanDirAdapter{}
}

type softwareInventoryDoc struct {
	InstalledSoftware json.RawMessage `json:"InstalledSoftware"`
	StoreApps         json.RawMessage `json:"StoreApps"`
}

type installedSoftwareDoc struct {
	Name      string `json:"Name"`
	Version   string `json:"Version"`
	Publisher string `json:"Publisher"`
}

type licenseDoc struct {
	Windows      *types.WindowsLicense `json:"Windows"`
	Office       json.RawMessage       `json:"Office"`
	WiFiProfiles json.RawMessage       `json:"WiFiProfiles"`
}

// LoadScan reads the scanner's JSON output from dir. Every file is
// optional on its own, but the directory must hold a software inventory or
// package mappings.
func (a ScanDirAdapter) LoadScan(dir string) (types.Inventory, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return types.Inventory{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("scan directory not found: " + dir).
			WithCause(err)
	}
	if !info.IsDir() {
		return types.Inventory{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("scan path is not a directory: " + dir)
	}
	inventory := types.Inventory{ScanDir: dir}

	softwareData, hasSoftware, err := readScanFile(dir, softwareInventoryFile)
	if err != nil {
		return types.Inventory{}, err
	}
	mappingsData, hasMappings, err := readScanFile(dir, packageMappingsFile)
	if err != nil {
		return types.Inventory{}, err
	}
	if !hasSoftware && !hasMappings {
		return types.Inventory{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no scan results in " + dir)
	}

	var installed []installedSoftwareDoc
	if hasSoftware {
		var doc softwareInventoryDoc
		if err := json.Unmarshal(softwareData, &doc); err != nil {
			return types.Inventory{}, parseError(softwareInventoryFile, err)
		}
		if err := decodeList(doc.InstalledSoftware, &installed); err != nil {
			return types.Inventory{}, parseError(softwareInventoryFile, err)
		}
		if err := decodeList(doc.StoreApps, &inventory.StoreApps); err != nil {
			return types.Inventory{}, parseError(softwareInventoryFile, err)
		}
	}

	if hasMappings {
		inventory.HasMappings = true
		if err := decodeList(mappingsData, &inventory.Software); err != nil {
			return types.Inventory{}, parseError(packageMappingsFile, err)
		}
		for idx := range inventory.Software {
			inventory.Software[idx].InstallMethod = types.ParseInstallMethod(string(inventory.Software[idx].InstallMethod))
		}
	} else {
		for _, item := range installed {
			inventory.Software = append(inventory.Software, types.SoftwareEntry{
				Name:          item.Name,
				Version:       item.Version,
				Publisher:     item.Publisher,
				InstallMethod: types.InstallMethodManual,
			})
		}
	}

	licenseData, hasLicenses, err := readScanFile(dir, licenseKeysFile)
	if err != nil {
		return types.Inventory{}, err
	}
	if hasLicenses {
		var doc licenseDoc
		if err := json.Unmarshal(licenseData, &doc); err != nil {
			return types.Inventory{}, parseError(licenseKeysFile, err)
		}
		if doc.Windows != nil {
			inventory.Licenses.Windows = *doc.Windows
		}
		if err := decodeList(doc.Office, &inventory.Licenses.Office); err != nil {
			return types.Inventory{}, parseError(licenseKeysFile, err)
		}
		if err := decodeList(doc.WiFiProfiles, &inventory.Licenses.WiFiProfiles); err != nil {
			return types.Inventory{}, parseError(licenseKeysFile, err)
		}
		inventory.HasLicenses = true
	}

	configData, hasConfig, err := readScanFile(dir, configBackupFile)
	if err != nil {
		return types.Inventory{}, err
	}
	if hasConfig {
		if err := json.Unmarshal(configData, &inventory.ConfigBackup); err != nil {
			return types.Inventory{}, parseError(configBackupFile, err)
		}
	}
	return inventory, nil
}

func readScanFile(dir string, name string) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read " + name).
			WithCause(err)
	}
	return shared.StripBOM(data), true, nil
}

// decodeList accepts a JSON array, a single object or null. PowerShell's
// ConvertTo-Json unwraps one-element arrays into a bare object.
func decodeList[T any](raw json.RawMessage, out *[]T) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}
	var single T
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	*out = append(*out, single)
	return nil
}

func parseError(name string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("failed to parse " + name).
		WithCause(err)
}

var _ ports.ScanLoaderPort = ScanDirAdapter{}
