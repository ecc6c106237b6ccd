package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rewin/internal/app"
)

type compareOptions struct {
	PackageDir string
	ScanDir    string
}

func newCompareCommand() *cobra.Command {
	opts := compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a package with the software installed on this machine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompare(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.PackageDir, "package-dir", "", "Migration package directory (auto-detected when empty)")
	cmd.Flags().StringVar(&opts.ScanDir, "scan-dir", "", "Scan results directory of the target machine")
	_ = viper.BindPFlag("package_dir", cmd.Flags().Lookup("package-dir"))
	_ = viper.BindPFlag("scan_dir", cmd.Flags().Lookup("scan-dir"))
	return cmd
}

func runCompare(ctx context.Context, cmd *cobra.Command, opts compareOptions) error {
	service := newAppService()
	packageDir, err := resolvePackageDir(ctx, service, resolveString(cmd, opts.PackageDir, "package_dir", "package-dir"))
	if err != nil {
		return err
	}
	records, err := service.Compare(ctx, app.CompareRequest{
		PackagePath: packageDir,
		ScanDir:     resolveString(cmd, opts.ScanDir, "scan_dir", "scan-dir"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, record := range records {
		installed := record.InstalledVersion
		if installed == "" {
			installed = "-"
		}
		fmt.Fprintf(out, "%-8s %s (package %s, installed %s)\n", record.Status, record.Name, record.PackageVersion, installed)
	}
	return nil
}

func newLocateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Find a migration package next to this program or on any drive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := newAppService().Locate(cmd.Context(), app.LocateRequest{})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
