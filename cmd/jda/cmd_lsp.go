package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/jda/container"
	"github.com/dhamidi/jda/lsp"
	"github.com/dhamidi/jda/settings"
)

func newLSPCmd(reg *settings.Registry) *cobra.Command {
	var cacheSize int

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := container.NewTable(cacheSize)
			if err != nil {
				return err
			}
			server := lsp.NewServer(version, table, reg)
			return server.RunStdio()
		},
	}

	cmd.Flags().IntVar(&cacheSize, "cache", container.DefaultCacheSize, "number of parsed classes kept in memory")

	return cmd
}
