package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ohler55/ojg/jp"
	"github.com/spf13/cobra"
)

func newResolveCommand(c *cli) *cobra.Command {
	var (
		explain bool
		query   string
	)

	cmd := &cobra.Command{
		Use:   "resolve [path]",
		Short: "Print the merged settings for a file or directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			dir, err := settingsDir(path)
			if err != nil {
				return err
			}

			a, err := c.newApp()
			if err != nil {
				return err
			}
			defer a.Shutdown()

			out := cmd.OutOrStdout()
			if explain {
				printOrigins(out, a.Explain(dir))
				return nil
			}

			settings := a.Resolve(dir)
			if query == "" {
				fmt.Fprintln(out, toJSON(settings))
				return nil
			}

			x, err := jp.ParseString(query)
			if err != nil {
				return fmt.Errorf("invalid jsonpath %q: %w", query, err)
			}
			for _, v := range x.Get(settings) {
				fmt.Fprintln(out, toJSON(v))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&explain, "explain", false, "show which settings file supplied each key")
	cmd.Flags().StringVarP(&query, "query", "q", "", "JSONPath selecting part of the result")
	return cmd
}

// settingsDir returns path if it is a directory, otherwise its parent.
// A path that does not exist is treated as a file.
func settingsDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return abs, nil
	}
	return filepath.Dir(abs), nil
}
