package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/jda/container"
	"github.com/dhamidi/jda/render"
	"github.com/dhamidi/jda/settings"
)

const version = "0.1.0"

// settingsEnv holds comma separated id=bool assignments applied before any
// --set flag.
const settingsEnv = "JDA_SETTINGS"

var log = commonlog.GetLogger("jda")

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(settings.Default).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(reg *settings.Registry) *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:          "jda",
		Short:        "Print the structure of JVM classes as annotated bytecode",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			commonlog.Configure(verbosity, nil)
			render.RegisterToggles(reg)
			if env := os.Getenv(settingsEnv); env != "" {
				if err := reg.Apply([]string{env}); err != nil {
					return fmt.Errorf("%s: %w", settingsEnv, err)
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "log more, repeat for debug output")

	rootCmd.AddCommand(newRenderCmd(reg))
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newSettingsCmd(reg))
	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newLSPCmd(reg))

	return rootCmd
}

// openContainer loads path into a fresh table.
func openContainer(path string) (*container.Table, string, error) {
	table, err := container.NewTable(0)
	if err != nil {
		return nil, "", err
	}
	id, err := table.Load(path)
	if err != nil {
		return nil, "", err
	}
	return table, id, nil
}

// withOutput runs write against stdout, or against the file at path when one
// is given. A failed close is reported like a failed write.
func withOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
