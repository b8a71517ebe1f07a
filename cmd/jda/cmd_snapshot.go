package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jda/container"
)

func newSnapshotCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "snapshot <container>",
		Short: "Write the class models of a container as YAML",
		Long: `Write the class models of a container as YAML.

The snapshot can be edited and passed back to render or list in place of
the original container.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, id, err := openContainer(args[0])
			if err != nil {
				return err
			}
			return withOutput(cmd, out, func(w io.Writer) error {
				return container.EncodeYAML(w, table.Snapshot(id))
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the snapshot to a file instead of stdout")

	return cmd
}
