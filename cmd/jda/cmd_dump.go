package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jda/classfile"
	"github.com/dhamidi/jda/format"
)

func newDumpCmd() *cobra.Command {
	var dumpFormat string

	cmd := &cobra.Command{
		Use:   "dump <container> <class>",
		Short: "Dump the class model of one class as JSON or YAML",
		Long: `Dump the class model of one class.

The class may be given by its internal name (com/example/Main) or its
source name (com.example.Main).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, id, err := openContainer(args[0])
			if err != nil {
				return err
			}
			name := classfile.SourceToInternalName(args[1])
			model, ok := table.Resolve(id, name)
			if !ok {
				return fmt.Errorf("class %s not found in %s", name, args[0])
			}

			enc, err := format.NewEncoder(dumpFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := enc.Encode(model); err != nil {
				return fmt.Errorf("encode %s: %w", dumpFormat, err)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "json", "output format (json, yaml)")

	return cmd
}
