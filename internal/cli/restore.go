package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rewin/internal/app"
	"rewin/internal/types"
)

type restoreOptions struct {
	PackageDir           string
	Phases               []string
	Preset               string
	LicenseKeys          bool
	EnvironmentVariables bool
	Network              bool
	FileAssociations     bool
	WindowsSettings      bool
	ScheduledTasks       bool
	Services             bool
}

// optionFlag ties one restore option flag to its config key and field.
type optionFlag struct {
	flag  string
	key   string
	usage string
	value *bool
	field func(*types.RestoreOptions) *bool
}

func (o *restoreOptions) optionFlags() []optionFlag {
	return []optionFlag{
		{"restore-license-keys", "restore_license_keys", "Restore product keys", &o.LicenseKeys,
			func(r *types.RestoreOptions) *bool { return &r.LicenseKeys }},
		{"restore-environment-variables", "restore_environment_variables", "Restore environment variables", &o.EnvironmentVariables,
			func(r *types.RestoreOptions) *bool { return &r.EnvironmentVariables }},
		{"restore-network", "restore_network", "Restore network settings and WiFi profiles", &o.Network,
			func(r *types.RestoreOptions) *bool { return &r.Network }},
		{"restore-file-associations", "restore_file_associations", "Restore file associations", &o.FileAssociations,
			func(r *types.RestoreOptions) *bool { return &r.FileAssociations }},
		{"restore-windows-settings", "restore_windows_settings", "Restore Explorer and Windows settings", &o.WindowsSettings,
			func(r *types.RestoreOptions) *bool { return &r.WindowsSettings }},
		{"restore-scheduled-tasks", "restore_scheduled_tasks", "Restore scheduled tasks", &o.ScheduledTasks,
			func(r *types.RestoreOptions) *bool { return &r.ScheduledTasks }},
		{"restore-services", "restore_services", "Restore service start modes", &o.Services,
			func(r *types.RestoreOptions) *bool { return &r.Services }},
	}
}

func newRestoreCommand() *cobra.Command {
	opts := &restoreOptions{}
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Install the package's software and restore its configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRestore(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.PackageDir, "package-dir", "", "Migration package directory (auto-detected when empty)")
	cmd.Flags().StringSliceVar(&opts.Phases, "phase", nil, "Phases to run: winget, chocolatey, config (default all)")
	cmd.Flags().StringVar(&opts.Preset, "preset", types.PresetRecommended, "Option preset: recommended, all, none")
	_ = viper.BindPFlag("package_dir", cmd.Flags().Lookup("package-dir"))
	_ = viper.BindPFlag("phases", cmd.Flags().Lookup("phase"))
	_ = viper.BindPFlag("preset", cmd.Flags().Lookup("preset"))
	for _, option := range opts.optionFlags() {
		cmd.Flags().BoolVar(option.value, option.flag, false, option.usage+" (overrides the preset)")
	}
	return cmd
}

// restoreOptionsFor starts from the preset and applies every option set by
// flag, environment or config file.
func restoreOptionsFor(cmd *cobra.Command, opts *restoreOptions) (types.RestoreOptions, error) {
	options, err := types.RestoreOptionsPreset(resolveString(cmd, opts.Preset, "preset", "preset"))
	if err != nil {
		return types.RestoreOptions{}, invalidArgument(err.Error())
	}
	for _, option := range opts.optionFlags() {
		switch {
		case flagChanged(cmd, option.flag):
			*option.field(&options) = *option.value
		case viper.IsSet(option.key):
			*option.field(&options) = viper.GetBool(option.key)
		}
	}
	return options, nil
}

func runRestore(ctx context.Context, cmd *cobra.Command, opts *restoreOptions) error {
	phases, err := parsePhases(resolveStrings(cmd, opts.Phases, "phases", "phase"))
	if err != nil {
		return err
	}
	options, err := restoreOptionsFor(cmd, opts)
	if err != nil {
		return err
	}
	service := newAppService()
	packageDir, err := resolvePackageDir(ctx, service, resolveString(cmd, opts.PackageDir, "package_dir", "package-dir"))
	if err != nil {
		return err
	}
	task, err := service.StartRestore(ctx, app.RestoreRequest{
		PackageDir: packageDir,
		Phases:     phases,
		Options:    options,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	err = followTask(ctx, task, out)
	if report, ok := task.Result().(*types.RestoreReport); ok {
		fmt.Fprintf(out, "restore %s\n", report.State)
		for _, outcome := range report.Phases {
			fmt.Fprintf(out, "- %-10s %s\n", outcome.Phase, outcome.Status)
		}
	}
	return err
}
