package main

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/jda/render"
	"github.com/dhamidi/jda/settings"
	"github.com/dhamidi/jda/textbuf"
)

func newRenderCmd(reg *settings.Registry) *cobra.Command {
	var (
		all  bool
		set  []string
		out  string
		jobs int
	)

	cmd := &cobra.Command{
		Use:   "render <container> [class...]",
		Short: "Print the listing of classes in a jar, directory, class file or snapshot",
		Long: `Print the listing of classes in a container.

Classes are named by their internal name, for example com/example/Main.
Inner classes are expanded inside their outer class unless
decompile-inner-classes is turned off.

Examples:
  jda render app.jar com/example/Main
  jda render build/classes --all --jobs 8 --out listing.txt
  jda render app.jar com/example/Main --set debug-helpers --set append-brackets-to-labels=false`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := reg.Apply(set); err != nil {
				return err
			}
			if !all && len(args) < 2 {
				return errors.New("name at least one class or pass --all")
			}

			return withOutput(cmd, out, func(w io.Writer) error {
				return runRender(w, reg, args[0], args[1:], all, jobs)
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "render every class of the container")
	cmd.Flags().StringArrayVarP(&set, "set", "s", nil, "set a toggle, as id=bool or a bare id (repeatable)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the listing to a file instead of stdout")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of classes rendered in parallel")

	return cmd
}

// runRender renders in parallel and writes the listings in the order the
// classes were named.
func runRender(w io.Writer, reg *settings.Registry, path string, names []string, all bool, jobs int) error {
	table, id, err := openContainer(path)
	if err != nil {
		return err
	}
	if all {
		names = table.Names(id)
	}

	renderer := render.NewClassRenderer(table, render.WithSettings(reg))
	listings := make([]string, len(names))

	if jobs < 1 {
		jobs = 1
	}
	g := new(errgroup.Group)
	g.SetLimit(jobs)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			cls, ok := table.Resolve(id, name)
			if !ok {
				if all {
					log.Warningf("skipping %s: not a readable class", name)
					return nil
				}
				return fmt.Errorf("class %s not found in %s", name, path)
			}
			listings[i] = renderer.Render(id, cls)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	nl := textbuf.LineSeparator
	var written []string
	for _, l := range listings {
		if l != "" {
			written = append(written, l)
		}
	}
	if _, err := io.WriteString(w, strings.Join(written, nl+nl)+nl); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	return nil
}
