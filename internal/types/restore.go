package types

import (
	"fmt"
	"strings"
	"time"
)

// RestoreOptions is the option bundle handed to the configuration restore
// script. Field order is the order the bundle is rendered in.
type RestoreOptions struct {
	LicenseKeys          bool `json:"RestoreLicenseKeys" yaml:"license_keys"`
	EnvironmentVariables bool `json:"RestoreEnvironmentVariables" yaml:"environment_variables"`
	Network              bool `json:"RestoreNetwork" yaml:"network"`
	FileAssociations     bool `json:"RestoreFileAssociations" yaml:"file_associations"`
	WindowsSettings      bool `json:"RestoreWindowsSettings" yaml:"windows_settings"`
	// Off unless explicitly requested.
	ScheduledTasks bool `json:"RestoreScheduledTasks" yaml:"scheduled_tasks"`
	Services       bool `json:"RestoreServices" yaml:"services"`
}

func DefaultRestoreOptions() RestoreOptions {
	return RestoreOptions{
		LicenseKeys:          true,
		EnvironmentVariables: true,
		Network:              true,
		FileAssociations:     true,
		WindowsSettings:      true,
	}
}

const (
	PresetRecommended = "recommended"
	PresetAll         = "all"
	PresetNone        = "none"
)

func RestoreOptionsPreset(name string) (RestoreOptions, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PresetRecommended:
		return DefaultRestoreOptions(), nil
	case PresetAll:
		return RestoreOptions{
			LicenseKeys:          true,
			EnvironmentVariables: true,
			Network:              true,
			FileAssociations:     true,
			WindowsSettings:      true,
			ScheduledTasks:       true,
			Services:             true,
		}, nil
	case PresetNone:
		return RestoreOptions{}, nil
	default:
		return RestoreOptions{}, fmt.Errorf("unknown restore preset %q", name)
	}
}

// OptionField is one named entry of a RestoreOptions bundle.
type OptionField struct {
	Name  string
	Value bool
}

// Fields lists the bundle in declaration order with the names the restore
// script expects.
func (o RestoreOptions) Fields() []OptionField {
	return []OptionField{
		{Name: "RestoreLicenseKeys", Value: o.LicenseKeys},
		{Name: "RestoreEnvironmentVariables", Value: o.EnvironmentVariables},
		{Name: "RestoreNetwork", Value: o.Network},
		{Name: "RestoreFileAssociations", Value: o.FileAssociations},
		{Name: "RestoreWindowsSettings", Value: o.WindowsSettings},
		{Name: "RestoreScheduledTasks", Value: o.ScheduledTasks},
		{Name: "RestoreServices", Value: o.Services},
	}
}

// ProcessSpec describes one external process invocation.
type ProcessSpec struct {
	Program string
	Args    []string
	Dir     string
}

func (p ProcessSpec) String() string {
	return strings.TrimSpace(p.Program + " " + strings.Join(p.Args, " "))
}

type RestorePlan struct {
	PackageDir string
	Phases     []Phase
	Options    RestoreOptions
}

type PhaseOutcome struct {
	Phase    Phase       `json:"phase"`
	Status   PhaseStatus `json:"status"`
	ExitCode int         `json:"exit_code"`
	Error    string      `json:"error,omitempty"`
}

type RestoreReport struct {
	State      RestoreState   `json:"state"`
	Phases     []PhaseOutcome `json:"phases"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Failed returns the outcomes of phases that ran and failed.
func (r RestoreReport) Failed() []PhaseOutcome {
	var failed []PhaseOutcome
	for _, outcome := range r.Phases {
		if outcome.Status == PhaseStatusFailed {
			failed = append(failed, outcome)
		}
	}
	return failed
}
