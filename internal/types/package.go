package types

// PackageFileName is the serialized migration package inside an export dir.
const PackageFileName = "migration_package.json"

type Drives struct {
	Primary   string `json:"primary" yaml:"primary"`
	Secondary string `json:"secondary" yaml:"secondary"`
	Data      string `json:"data" yaml:"data"`
}

func DefaultDrives() Drives {
	return Drives{Primary: "C:", Secondary: "D:", Data: "D:"}
}

// WithDefaults fills empty roles from DefaultDrives.
func (d Drives) WithDefaults() Drives {
	def := DefaultDrives()
	if d.Primary == "" {
		d.Primary = def.Primary
	}
	if d.Secondary == "" {
		d.Secondary = def.Secondary
	}
	if d.Data == "" {
		d.Data = def.Data
	}
	return d
}

// Config toggle keys. The list is closed: the restore collaborator ignores
// keys it does not know, so both sides must agree on it.
const (
	ConfigEnvVars          = "env_vars"
	ConfigScheduledTasks   = "scheduled_tasks"
	ConfigServices         = "services"
	ConfigFileAssoc        = "file_assoc"
	ConfigNetwork          = "network"
	ConfigExplorer         = "explorer"
	ConfigVSCode           = "vscode"
	ConfigGit              = "git_config"
	ConfigSSH              = "ssh_config"
	ConfigTerminal         = "terminal"
	ConfigBrowserBookmarks = "browser_bookmarks"
	ConfigPowerShell       = "powershell"
	ConfigWiFiProfiles     = "wifi_profiles"
	ConfigLicenseKeys      = "license_keys"
)

var ConfigKeys = []string{
	ConfigEnvVars,
	ConfigScheduledTasks,
	ConfigServices,
	ConfigFileAssoc,
	ConfigNetwork,
	ConfigExplorer,
	ConfigVSCode,
	ConfigGit,
	ConfigSSH,
	ConfigTerminal,
	ConfigBrowserBookmarks,
	ConfigPowerShell,
	ConfigWiFiProfiles,
	ConfigLicenseKeys,
}

func IsConfigKey(key string) bool {
	for _, known := range ConfigKeys {
		if known == key {
			return true
		}
	}
	return false
}

// ConfigToggleSet maps config keys to whether they are migrated.
type ConfigToggleSet map[string]bool

func DefaultConfigToggles() ConfigToggleSet {
	set := ConfigToggleSet{}
	for _, key := range ConfigKeys {
		set[key] = true
	}
	return set
}

// License toggle ids inside the licenses selection category.
const (
	LicenseWindows = "windows"
	LicenseOffice  = "office"
	LicenseWiFi    = "wifi"
)

var LicenseKeys = []string{LicenseWindows, LicenseOffice, LicenseWiFi}

func IsLicenseKey(key string) bool {
	for _, known := range LicenseKeys {
		if key == known {
			return true
		}
	}
	return false
}

type LicenseToggles struct {
	Windows bool
	Office  bool
	WiFi    bool
}

// LicenseBundle is the license section of a package. Sub-bundles are only
// present when their include flag is set.
type LicenseBundle struct {
	IncludeWindows bool            `json:"include_windows"`
	IncludeOffice  bool            `json:"include_office"`
	IncludeWiFi    bool            `json:"include_wifi"`
	WindowsKey     *WindowsLicense `json:"windows_key,omitempty"`
	OfficeKeys     []OfficeKey     `json:"office_keys,omitempty"`
	WiFiProfiles   []WiFiProfile   `json:"wifi_profiles,omitempty"`
}

type MigrationPackage struct {
	ExportDate string          `json:"export_date"`
	Drives     Drives          `json:"drives"`
	Software   []SoftwareEntry `json:"software"`
	StoreApps  []StoreAppEntry `json:"store_apps"`
	Configs    ConfigToggleSet `json:"configs"`
	Licenses   LicenseBundle   `json:"licenses"`
}

type InstallScript struct {
	Backend     Backend
	Identifiers []string
}
