package types

import "strings"

type InstallMethod string

const (
	InstallMethodWinget     InstallMethod = "Winget"
	InstallMethodChocolatey InstallMethod = "Chocolatey"
	InstallMethodStore      InstallMethod = "Store"
	InstallMethodManual     InstallMethod = "Manual"
)

// ParseInstallMethod maps scan and CLI spellings onto an InstallMethod.
// Anything unrecognised is Manual.
func ParseInstallMethod(value string) InstallMethod {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "winget":
		return InstallMethodWinget
	case "chocolatey", "choco":
		return InstallMethodChocolatey
	case "store", "msstore":
		return InstallMethodStore
	default:
		return InstallMethodManual
	}
}

// LookupInstallMethod is ParseInstallMethod for user input, where an
// unknown spelling is an error rather than Manual.
func LookupInstallMethod(value string) (InstallMethod, bool) {
	method := ParseInstallMethod(value)
	if method == InstallMethodManual && strings.ToLower(strings.TrimSpace(value)) != "manual" {
		return "", false
	}
	return method, true
}

// Backend is an external package manager that install scripts target.
type Backend string

const (
	BackendWinget     Backend = "winget"
	BackendChocolatey Backend = "chocolatey"
)

// Backends lists every script backend in priority order.
var Backends = []Backend{BackendWinget, BackendChocolatey}

func (b Backend) Method() InstallMethod {
	switch b {
	case BackendWinget:
		return InstallMethodWinget
	case BackendChocolatey:
		return InstallMethodChocolatey
	default:
		return InstallMethodManual
	}
}

// ScriptName is the fixed file name of the backend install script.
func (b Backend) ScriptName() string {
	return "install_" + string(b) + ".ps1"
}

type Category string

const (
	CategorySoftware  Category = "software"
	CategoryStoreApps Category = "store_apps"
	CategoryConfigs   Category = "configs"
	CategoryLicenses  Category = "licenses"
)

var Categories = []Category{CategorySoftware, CategoryStoreApps, CategoryConfigs, CategoryLicenses}

func ParseCategory(value string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "software", "sw":
		return CategorySoftware, true
	case "store_apps", "store-apps", "store":
		return CategoryStoreApps, true
	case "configs", "config":
		return CategoryConfigs, true
	case "licenses", "license":
		return CategoryLicenses, true
	default:
		return "", false
	}
}

type CandidateClass string

const (
	CandidateDirect         CandidateClass = "direct"
	CandidateSearchFallback CandidateClass = "search_fallback"
)

type RestoreState string

const (
	RestoreStateIdle                 RestoreState = "idle"
	RestoreStateInstallingWinget     RestoreState = "installing_winget"
	RestoreStateInstallingChocolatey RestoreState = "installing_chocolatey"
	RestoreStateRestoringConfig      RestoreState = "restoring_config"
	RestoreStateCompleted            RestoreState = "completed"
	RestoreStateFailed               RestoreState = "failed"
)

func (s RestoreState) Terminal() bool {
	return s == RestoreStateCompleted || s == RestoreStateFailed
}

type Phase string

const (
	PhaseWinget     Phase = "winget"
	PhaseChocolatey Phase = "chocolatey"
	PhaseConfig     Phase = "config"
)

// Phases is the fixed execution order of a restore run.
var Phases = []Phase{PhaseWinget, PhaseChocolatey, PhaseConfig}

func ParsePhase(value string) (Phase, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "winget":
		return PhaseWinget, true
	case "chocolatey", "choco":
		return PhaseChocolatey, true
	case "config", "configs", "configuration":
		return PhaseConfig, true
	default:
		return "", false
	}
}

type PhaseStatus string

const (
	PhaseStatusSucceeded PhaseStatus = "succeeded"
	PhaseStatusFailed    PhaseStatus = "failed"
	PhaseStatusSkipped   PhaseStatus = "skipped"
	PhaseStatusNotRun    PhaseStatus = "not_run"
)
