package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rewin/internal/app"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "REWIN"

const (
	restoreScriptName  = "restore_config.ps1"
	resolverScriptName = "manual_download_resolver.ps1"
)

type RootConfig struct {
	ConfigFile       string
	LogLevel         string
	Shell            string
	RestoreScript    string
	ResolverScript   string
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelayMs int
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	root := newRootCommand()
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errorMessage(err))
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := &RootConfig{}
	cmd := &cobra.Command{
		Use:           "rewin",
		Short:         "Move installed software and settings to a fresh Windows install",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(log.Logger.WithContext(ctx))
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	flags.StringVar(&cfg.Shell, "shell", "powershell.exe", "PowerShell executable used to run scripts")
	flags.StringVar(&cfg.RestoreScript, "restore-script", defaultScriptPath(restoreScriptName), "Configuration restore script")
	flags.StringVar(&cfg.ResolverScript, "resolver-script", defaultScriptPath(resolverScriptName), "Manual download resolver script")
	flags.IntVar(&cfg.HTTPTimeoutSec, "http-timeout-sec", 60, "Installer download timeout in seconds (0 = default)")
	flags.IntVar(&cfg.HTTPRetries, "http-retries", 3, "Installer download retries (0 = default)")
	flags.IntVar(&cfg.HTTPRetryDelayMs, "http-retry-delay-ms", 200, "Initial delay between download retries (0 = default)")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("shell", flags.Lookup("shell"))
	_ = viper.BindPFlag("restore_script", flags.Lookup("restore-script"))
	_ = viper.BindPFlag("resolver_script", flags.Lookup("resolver-script"))
	_ = viper.BindPFlag("http_timeout_sec", flags.Lookup("http-timeout-sec"))
	_ = viper.BindPFlag("http_retries", flags.Lookup("http-retries"))
	_ = viper.BindPFlag("http_retry_delay_ms", flags.Lookup("http-retry-delay-ms"))

	cmd.AddCommand(newInspectCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newExportCommand())
	cmd.AddCommand(newRestoreCommand())
	cmd.AddCommand(newResolveCommand())
	cmd.AddCommand(newDownloadCommand())
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newLocateCommand())
	cmd.AddCommand(newServeCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("rewin")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/rewin")
	_ = viper.ReadInConfig()
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// defaultScriptPath places the PowerShell collaborators in a restore
// folder next to the executable.
func defaultScriptPath(name string) string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("restore", name)
	}
	return filepath.Join(filepath.Dir(exe), "restore", name)
}

// newAppService reads the shared settings through viper, where the root
// persistent flags are bound.
func newAppService() app.Service {
	return app.NewService(app.ServiceConfig{
		Shell:            viper.GetString("shell"),
		RestoreScript:    viper.GetString("restore_script"),
		ResolverScript:   viper.GetString("resolver_script"),
		HTTPTimeoutSec:   viper.GetInt("http_timeout_sec"),
		HTTPRetries:      viper.GetInt("http_retries"),
		HTTPRetryDelayMs: viper.GetInt("http_retry_delay_ms"),
	})
}

func exitCodeForError(err error) int {
	if errors.Is(err, app.ErrRestoreFailed) {
		return 6
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeFailedPrecondition:
		return 4
	case errbuilder.CodeNotFound, errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
