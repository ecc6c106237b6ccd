package types

type CompareStatus string

const (
	CompareMissing CompareStatus = "missing"
	CompareOlder   CompareStatus = "older"
	CompareCurrent CompareStatus = "current"
	CompareNewer   CompareStatus = "newer"
)

// CompareRecord relates one package entry to what a target scan reports.
type CompareRecord struct {
	Name             string        `json:"name"`
	Method           InstallMethod `json:"method"`
	PackageVersion   string        `json:"package_version"`
	InstalledVersion string        `json:"installed_version,omitempty"`
	Status           CompareStatus `json:"status"`
}
