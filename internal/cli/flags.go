package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rewin/internal/app"
	"rewin/internal/types"
)

const followInterval = 200 * time.Millisecond

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}

// resolvePackageDir returns the given package directory, or the directory
// of an auto-detected package when none was given.
func resolvePackageDir(ctx context.Context, service app.Service, packageDir string) (string, error) {
	if strings.TrimSpace(packageDir) != "" {
		return packageDir, nil
	}
	path, err := service.Locate(ctx, app.LocateRequest{})
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// loadSession loads a scan and replays an optional selection file on it.
func loadSession(ctx context.Context, service app.Service, scanDir string, selectionPath string) (*app.Session, error) {
	session, err := service.LoadScan(ctx, scanDir)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(selectionPath) != "" {
		if err := service.ApplySelectionFile(ctx, session, selectionPath); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// followTask copies task output to out until the task finishes. When ctx
// ends first the task is canceled and followed to its end.
func followTask(ctx context.Context, task *app.Task, out io.Writer) error {
	offset := 0
	flush := func() {
		for _, line := range task.LogsSince(offset) {
			fmt.Fprintln(out, line)
			offset++
		}
	}
	ticker := time.NewTicker(followInterval)
	defer ticker.Stop()
	interrupted := ctx.Done()
	for {
		select {
		case <-task.Done():
			flush()
			return task.Err()
		case <-interrupted:
			task.Cancel()
			interrupted = nil
		case <-ticker.C:
			flush()
		}
	}
}

func invalidArgument(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
}

func parsePhases(values []string) ([]types.Phase, error) {
	phases := make([]types.Phase, 0, len(values))
	for _, value := range values {
		phase, ok := types.ParsePhase(value)
		if !ok {
			return nil, invalidArgument("unknown restore phase: " + value)
		}
		phases = append(phases, phase)
	}
	return phases, nil
}
