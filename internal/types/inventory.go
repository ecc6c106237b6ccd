package types

// SoftwareEntry is one installed program as mapped by the scanner. The JSON
// names match package_mappings.json so package files stay readable by the
// PowerShell collaborators.
type SoftwareEntry struct {
	Name          string        `json:"SoftwareName"`
	Version       string        `json:"Version"`
	Publisher     string        `json:"Publisher"`
	InstallMethod InstallMethod `json:"InstallMethod"`
	WingetID      string        `json:"WingetId,omitempty"`
	ChocolateyID  string        `json:"ChocolateyId,omitempty"`
}

type StoreAppEntry struct {
	Name              string `json:"Name"`
	Version           string `json:"Version"`
	Publisher         string `json:"Publisher"`
	PackageFamilyName string `json:"PackageFamilyName"`
}

type WindowsLicense struct {
	RecommendedKey string `json:"RecommendedKey,omitempty"`
	OEMKey         string `json:"OEMKey,omitempty"`
	RegistryKey    string `json:"RegistryKey,omitempty"`
	Edition        string `json:"Edition,omitempty"`
}

func (w WindowsLicense) Empty() bool {
	return w == WindowsLicense{}
}

type OfficeKey struct {
	Product    string `json:"Product"`
	ProductKey string `json:"ProductKey"`
	KeyType    string `json:"KeyType,omitempty"`
	Note       string `json:"Note,omitempty"`
}

type WiFiProfile struct {
	ProfileName string `json:"ProfileName"`
	Password    string `json:"Password"`
}

type LicenseData struct {
	Windows      WindowsLicense `json:"Windows"`
	Office       []OfficeKey    `json:"Office"`
	WiFiProfiles []WiFiProfile  `json:"WiFiProfiles"`
}

// Inventory is the read-only result of loading one scan directory.
type Inventory struct {
	ScanDir     string
	Software    []SoftwareEntry
	StoreApps   []StoreAppEntry
	Licenses    LicenseData
	HasLicenses bool
	HasMappings bool
	// ConfigBackup is the raw config_backup.json document, if present.
	ConfigBackup map[string]any
}
