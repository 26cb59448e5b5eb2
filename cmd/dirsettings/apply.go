package main

import (
	"fmt"

	"github.com/ohler55/ojg/sen"
	"github.com/spf13/cobra"
)

func newApplyCommand(c *cli) *cobra.Command {
	var (
		project string
		set     map[string]string
		show    bool
	)

	cmd := &cobra.Command{
		Use:   "apply <file>",
		Short: "Open a file in a fresh session and show what directory settings change",
		Long: `apply opens <file> in an in-memory session seeded with the --set values,
applies the directory settings and prints every key set or erased.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			defer a.Shutdown()

			s, report, err := a.OpenWithSettings(args[0], project, 0, parseValues(set))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			settings := s.MapSettings().Snapshot()
			printReport(out, report, settings)
			if show {
				fmt.Fprintln(out, toJSON(settings))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "project file the session belongs to")
	cmd.Flags().StringToStringVar(&set, "set", nil, "initial session setting key=value (value parsed as JSON if possible)")
	cmd.Flags().BoolVar(&show, "show", false, "print the session settings after applying")
	return cmd
}

// parseValues decodes each value as SEN, keeping the raw text when that fails.
func parseValues(raw map[string]string) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	values := make(map[string]any, len(raw))
	for k, v := range raw {
		parsed, err := sen.Parse([]byte(v))
		if err != nil {
			values[k] = v
			continue
		}
		values[k] = parsed
	}
	return values
}
