package core

import (
	"rewin/internal/policies"
	"rewin/internal/ports"
	"rewin/internal/shared"
	"rewin/internal/types"
)

// InventoryComparer relates package entries to a target machine's scan.
type InventoryComparer struct {
	Policy ports.BackendPolicyPort
}

func NewInventoryComparer() InventoryComparer {
	return InventoryComparer{Policy: policies.NewBackendPolicy()}
}

// Compare reports, in package order, whether each package entry is missing
// on the target or installed at an older, equal or newer version. Entries
// are matched by package identifier first and by name otherwise.
func (c InventoryComparer) Compare(pkg types.MigrationPackage, target types.Inventory) []types.CompareRecord {
	byID := map[string]types.SoftwareEntry{}
	byName := map[string]types.SoftwareEntry{}
	for _, entry := range target.Software {
		for _, id := range []string{entry.WingetID, entry.ChocolateyID} {
			if key := shared.NormalizeKey(id); key != "" {
				if _, exists := byID[key]; !exists {
					byID[key] = entry
				}
			}
		}
		if key := shared.NormalizeKey(entry.Name); key != "" {
			if _, exists := byName[key]; !exists {
				byName[key] = entry
			}
		}
	}

	cache := newVersionCache()
	records := make([]types.CompareRecord, 0, len(pkg.Software))
	for _, entry := range pkg.Software {
		record := types.CompareRecord{
			Name:           entry.Name,
			Method:         c.Policy.Classify(entry),
			PackageVersion: entry.Version,
			Status:         types.CompareMissing,
		}
		installed, found := lookupInstalled(entry, byID, byName)
		if found {
			record.InstalledVersion = installed.Version
			record.Status = types.CompareCurrent
			if result, ok := cache.compare(installed.Version, entry.Version); ok {
				switch {
				case result < 0:
					record.Status = types.CompareOlder
				case result > 0:
					record.Status = types.CompareNewer
				}
			}
		}
		records = append(records, record)
	}
	return records
}

func lookupInstalled(entry types.SoftwareEntry, byID map[string]types.SoftwareEntry, byName map[string]types.SoftwareEntry) (types.SoftwareEntry, bool) {
	for _, id := range []string{entry.WingetID, entry.ChocolateyID} {
		if key := shared.NormalizeKey(id); key != "" {
			if installed, ok := byID[key]; ok {
				return installed, true
			}
		}
	}
	installed, ok := byName[shared.NormalizeKey(entry.Name)]
	return installed, ok
}
