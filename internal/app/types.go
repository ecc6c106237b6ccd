package app

import (
	"rewin/internal/core"
	"rewin/internal/types"
)

// Session is one loaded scan and the selection made on it. Loading another
// scan means creating a new Session.
type Session struct {
	Inventory *types.Inventory
	Selection *core.SelectionState
	Drives    types.Drives
}

type ExportRequest struct {
	OutputDir string
	Drives    types.Drives
}

type ExportResult struct {
	PackagePath string
	Package     types.MigrationPackage
	Scripts     []string
	Auxiliary   []string
}

type RestoreRequest struct {
	PackageDir string
	Phases     []types.Phase
	Options    types.RestoreOptions
}

type ResolveRequest struct {
	PackageDir string
	// ManualOnly sends only entries without a package manager id.
	ManualOnly bool
}

type ResolveResult struct {
	ReportPath string               `json:"report_path"`
	Report     types.ResolverReport `json:"report"`
	ExitCode   int                  `json:"exit_code"`
}

type DownloadRequest struct {
	PackageDir string
	DestDir    string
	// URLs restricts the batch to these candidates. Empty selects every
	// downloadable candidate of the current report.
	URLs    []string
	Workers int
}

type DownloadResult struct {
	Outcomes   []types.DownloadOutcome `json:"outcomes"`
	Downloaded int                     `json:"downloaded"`
	Failed     int                     `json:"failed"`
	Skipped    int                     `json:"skipped"`
}

type InspectRequest struct {
	ScanDir     string
	PackagePath string
}

type MethodCount struct {
	Method   types.InstallMethod
	Total    int
	Selected int
}

type InspectResult struct {
	Source        string
	ExportDate    string
	Methods       []MethodCount
	StoreApps     int
	StoreSelected int
	Configs       types.ConfigToggleSet
	Licenses      LicenseSummary
	Drives        []DriveStatus
}

type LicenseSummary struct {
	WindowsKey   bool
	OfficeKeys   int
	OfficeMasked bool
	WiFiProfiles int
	Included     map[string]bool
}

type DriveStatus struct {
	Role    string
	Letter  string
	Present bool
}

type ListRequest struct {
	Category types.Category
	Search   string
	Method   string
	Patterns []string
}

type ListItem struct {
	ID        string
	Name      string
	Publisher string
	Method    types.InstallMethod
	Selected  bool
}

type CompareRequest struct {
	PackagePath string
	ScanDir     string
}

type LocateRequest struct {
	WorkDir string
}
