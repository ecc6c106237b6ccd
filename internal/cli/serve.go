package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rewin/internal/api"
)

type serveOptions struct {
	Addr string
}

func newServeCommand() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task API for restore, resolve and download",
		RunE: func(cmd *cobra.Command, _ []string) error {
			server := api.NewServer(newAppService())
			return server.ListenAndServe(cmd.Context(), resolveString(cmd, opts.Addr, "addr", "addr"))
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:8765", "Listen address")
	_ = viper.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	return cmd
}
