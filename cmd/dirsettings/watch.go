package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/dirsettings/internal/config"
	"github.com/dshills/dirsettings/internal/config/notify"
)

func newWatchCommand(c *cli) *cobra.Command {
	var (
		roots   []string
		project string
	)

	cmd := &cobra.Command{
		Use:   "watch <file>...",
		Short: "Keep files open and print setting changes as settings files are edited",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			defer a.Shutdown()

			out := cmd.OutOrStdout()
			for _, path := range args {
				s, report, err := a.Open(path, project, 0)
				if err != nil {
					return err
				}
				printReport(out, report, s.MapSettings().Snapshot())

				sub := a.Notifier().SubscribeTarget(s.Path(), func(change notify.Change) {
					printChange(out, change)
				})
				defer sub.Unsubscribe()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := a.StartWatching(ctx, roots...); err != nil {
				return err
			}
			fmt.Fprintln(out, "watching for settings changes, press Ctrl-C to stop")

			<-ctx.Done()
			if err := a.Shutdown(); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&roots, "root", []string{"."}, "directory trees to watch")
	cmd.Flags().StringVarP(&project, "project", "p", "", "project file the sessions belong to")
	cmd.Flags().Duration("debounce", config.DefaultOptions().Debounce, "delay before reloading after a settings file changes")
	c.bindFlags(cmd.Flags(), map[string]string{config.KeyDebounce: "debounce"})
	return cmd
}

