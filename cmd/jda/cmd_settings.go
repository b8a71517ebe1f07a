package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jda/settings"
)

func newSettingsCmd(reg *settings.Registry) *cobra.Command {
	var set []string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the renderer toggles and their current state",
		Long: `Show the renderer toggles and their current state.

The state includes assignments from the JDA_SETTINGS environment variable,
which may also be set in a .env file, for example:

  JDA_SETTINGS=debug-helpers=true,decompile-inner-classes=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := reg.Apply(set); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLABEL\tDEFAULT\tON")
			for _, t := range reg.Toggles() {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%t\n", t.ID, t.Label, t.Default, reg.IsSelected(t.ID))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringArrayVarP(&set, "set", "s", nil, "set a toggle before showing, as id=bool")

	return cmd
}
