package cmd

import (
	"github.com/spf13/cobra"

	"github.com/muhirwa45/E-moto/config"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the delivery service and its HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd, func(cfg *config.Config) {
			if serveAddr != "" {
				cfg.Server.Address = serveAddr
			}
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address, overrides server.address")
	rootCmd.AddCommand(serveCmd)
}
