package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rewin/internal/app"
	"rewin/internal/types"
)

type inspectOptions struct {
	ScanDir     string
	Selection   string
	PackagePath string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a scan or a migration package",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.ScanDir, "scan-dir", "", "Scan results directory")
	cmd.Flags().StringVar(&opts.Selection, "selection", "", "Selection file applied to the scan")
	cmd.Flags().StringVar(&opts.PackagePath, "package", "", "Migration package file or directory")
	_ = viper.BindPFlag("scan_dir", cmd.Flags().Lookup("scan-dir"))
	_ = viper.BindPFlag("selection", cmd.Flags().Lookup("selection"))
	return cmd
}

func runInspect(ctx context.Context, cmd *cobra.Command, opts inspectOptions) error {
	service := newAppService()
	var (
		result app.InspectResult
		err    error
	)
	if strings.TrimSpace(opts.PackagePath) != "" {
		result, err = service.Inspect(ctx, app.InspectRequest{PackagePath: opts.PackagePath})
	} else {
		var session *app.Session
		session, err = loadSession(ctx, service,
			resolveString(cmd, opts.ScanDir, "scan_dir", "scan-dir"),
			resolveString(cmd, opts.Selection, "selection", "selection"))
		if err != nil {
			return err
		}
		result, err = service.InspectSession(ctx, session)
	}
	if err != nil {
		return err
	}
	printInspect(cmd.OutOrStdout(), result)
	return nil
}

func printInspect(out io.Writer, result app.InspectResult) {
	fmt.Fprintf(out, "source: %s\n", result.Source)
	if result.ExportDate != "" {
		fmt.Fprintf(out, "exported: %s\n", result.ExportDate)
	}
	fmt.Fprintln(out, "software:")
	for _, count := range result.Methods {
		fmt.Fprintf(out, "- %-10s %d/%d selected\n", count.Method, count.Selected, count.Total)
	}
	fmt.Fprintf(out, "store apps: %d/%d selected\n", result.StoreSelected, result.StoreApps)

	var enabled []string
	for _, key := range types.ConfigKeys {
		if result.Configs[key] {
			enabled = append(enabled, key)
		}
	}
	fmt.Fprintf(out, "configs: %s\n", strings.Join(enabled, ", "))

	licenses := result.Licenses
	fmt.Fprintf(out, "licenses: windows key=%t office keys=%d wifi profiles=%d\n",
		licenses.WindowsKey, licenses.OfficeKeys, licenses.WiFiProfiles)
	if licenses.OfficeMasked {
		fmt.Fprintln(out, "  note: some Office keys were only partially recovered")
	}
	for _, key := range types.LicenseKeys {
		fmt.Fprintf(out, "  include %s: %t\n", key, licenses.Included[key])
	}
	fmt.Fprintln(out, "drives:")
	for _, drive := range result.Drives {
		state := "missing"
		if drive.Present {
			state = "present"
		}
		fmt.Fprintf(out, "- %-9s %s %s\n", drive.Role, drive.Letter, state)
	}
}

type listOptions struct {
	ScanDir   string
	Selection string
	Category  string
	Search    string
	Method    string
	Match     []string
}

func newListCommand() *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scan items with their selection state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.ScanDir, "scan-dir", "", "Scan results directory")
	cmd.Flags().StringVar(&opts.Selection, "selection", "", "Selection file applied to the scan")
	cmd.Flags().StringVar(&opts.Category, "category", string(types.CategorySoftware), "Category (software, store_apps, configs, licenses)")
	cmd.Flags().StringVar(&opts.Search, "search", "", "Case-insensitive name or publisher filter")
	cmd.Flags().StringVar(&opts.Method, "method", "", "Install method filter (winget, chocolatey, store, manual)")
	cmd.Flags().StringSliceVar(&opts.Match, "match", nil, "Selection patterns, e.g. winget:Microsoft.*")
	_ = viper.BindPFlag("scan_dir", cmd.Flags().Lookup("scan-dir"))
	_ = viper.BindPFlag("selection", cmd.Flags().Lookup("selection"))
	return cmd
}

func runList(ctx context.Context, cmd *cobra.Command, opts listOptions) error {
	category, ok := types.ParseCategory(opts.Category)
	if !ok {
		return invalidArgument("unknown category: " + opts.Category)
	}
	service := newAppService()
	session, err := loadSession(ctx, service,
		resolveString(cmd, opts.ScanDir, "scan_dir", "scan-dir"),
		resolveString(cmd, opts.Selection, "selection", "selection"))
	if err != nil {
		return err
	}
	items, err := service.List(ctx, session, app.ListRequest{
		Category: category,
		Search:   opts.Search,
		Method:   opts.Method,
		Patterns: opts.Match,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, item := range items {
		mark := " "
		if item.Selected {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %-10s %s", mark, item.ID, item.Name)
		if item.Method != "" {
			line += fmt.Sprintf(" (%s)", item.Method)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

type exportOptions struct {
	ScanDir   string
	Selection string
	OutputDir string
	Primary   string
	Secondary string
	Data      string
}

func newExportCommand() *cobra.Command {
	opts := exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the migration package and install scripts for a scan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.ScanDir, "scan-dir", "", "Scan results directory")
	cmd.Flags().StringVar(&opts.Selection, "selection", "", "Selection file applied to the scan")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "", "Package output directory")
	cmd.Flags().StringVar(&opts.Primary, "drive-primary", "", "Primary drive letter (default C:)")
	cmd.Flags().StringVar(&opts.Secondary, "drive-secondary", "", "Secondary drive letter (default D:)")
	cmd.Flags().StringVar(&opts.Data, "drive-data", "", "Data drive letter (default D:)")
	_ = viper.BindPFlag("scan_dir", cmd.Flags().Lookup("scan-dir"))
	_ = viper.BindPFlag("selection", cmd.Flags().Lookup("selection"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	return cmd
}

func runExport(ctx context.Context, cmd *cobra.Command, opts exportOptions) error {
	service := newAppService()
	session, err := loadSession(ctx, service,
		resolveString(cmd, opts.ScanDir, "scan_dir", "scan-dir"),
		resolveString(cmd, opts.Selection, "selection", "selection"))
	if err != nil {
		return err
	}
	result, err := service.Export(ctx, session, app.ExportRequest{
		OutputDir: resolveString(cmd, opts.OutputDir, "output", "output"),
		Drives:    types.Drives{Primary: opts.Primary, Secondary: opts.Secondary, Data: opts.Data},
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "package: %s\n", result.PackagePath)
	fmt.Fprintf(out, "software: %d, store apps: %d\n", len(result.Package.Software), len(result.Package.StoreApps))
	for _, script := range result.Scripts {
		fmt.Fprintf(out, "script: %s\n", script)
	}
	if len(result.Auxiliary) > 0 {
		fmt.Fprintf(out, "copied: %s\n", strings.Join(result.Auxiliary, ", "))
	}
	return nil
}
