package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rewin/internal/app"
	"rewin/internal/types"
)

type resolveOptions struct {
	PackageDir string
	ManualOnly bool
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Search download links for software without a package manager id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.PackageDir, "package-dir", "", "Migration package directory (auto-detected when empty)")
	cmd.Flags().BoolVar(&opts.ManualOnly, "manual-only", false, "Only search entries without a package manager id")
	_ = viper.BindPFlag("package_dir", cmd.Flags().Lookup("package-dir"))
	_ = viper.BindPFlag("manual_only", cmd.Flags().Lookup("manual-only"))
	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, opts resolveOptions) error {
	service := newAppService()
	packageDir, err := resolvePackageDir(ctx, service, resolveString(cmd, opts.PackageDir, "package_dir", "package-dir"))
	if err != nil {
		return err
	}
	task, err := service.StartResolve(ctx, app.ResolveRequest{
		PackageDir: packageDir,
		ManualOnly: resolveBool(cmd, opts.ManualOnly, "manual_only", "manual-only"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := followTask(ctx, task, out); err != nil {
		return err
	}
	result, ok := task.Result().(*app.ResolveResult)
	if !ok {
		return nil
	}
	fmt.Fprintf(out, "report: %s\n", result.ReportPath)
	for _, candidate := range result.Report.Candidates {
		mark := " "
		if candidate.Classification == types.CandidateDirect {
			mark = "x"
		}
		fmt.Fprintf(out, "[%s] %s: %s\n", mark, candidate.SourceName, candidate.URL)
	}
	return nil
}

type downloadOptions struct {
	PackageDir string
	DestDir    string
	URLs       []string
	Workers    int
}

func newDownloadCommand() *cobra.Command {
	opts := downloadOptions{}
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the installers found by resolve",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDownload(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.PackageDir, "package-dir", "", "Migration package directory (auto-detected when empty)")
	cmd.Flags().StringVar(&opts.DestDir, "dest", "", "Existing destination directory for installers")
	cmd.Flags().StringSliceVar(&opts.URLs, "url", nil, "Only download these report links (default every direct link)")
	cmd.Flags().IntVar(&opts.Workers, "download-workers", 2, "Concurrent downloads")
	_ = viper.BindPFlag("package_dir", cmd.Flags().Lookup("package-dir"))
	_ = viper.BindPFlag("dest", cmd.Flags().Lookup("dest"))
	_ = viper.BindPFlag("urls", cmd.Flags().Lookup("url"))
	_ = viper.BindPFlag("download_workers", cmd.Flags().Lookup("download-workers"))
	return cmd
}

func runDownload(ctx context.Context, cmd *cobra.Command, opts downloadOptions) error {
	service := newAppService()
	packageDir, err := resolvePackageDir(ctx, service, resolveString(cmd, opts.PackageDir, "package_dir", "package-dir"))
	if err != nil {
		return err
	}
	task, err := service.StartDownload(ctx, app.DownloadRequest{
		PackageDir: packageDir,
		DestDir:    resolveString(cmd, opts.DestDir, "dest", "dest"),
		URLs:       resolveStrings(cmd, opts.URLs, "urls", "url"),
		Workers:    resolveInt(cmd, opts.Workers, "download_workers", "download-workers"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := followTask(ctx, task, out); err != nil {
		return err
	}
	if result, ok := task.Result().(*app.DownloadResult); ok {
		for _, outcome := range result.Outcomes {
			if outcome.Status == types.DownloadStatusFailed {
				fmt.Fprintf(out, "failed: %s (%s)\n", outcome.URL, outcome.Reason)
			}
		}
	}
	return nil
}
