package main

import (
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ekisa-team/vocalis/internal/backend"
	"github.com/ekisa-team/vocalis/internal/config"
)

func newAssetsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage model files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "pull [backend...]",
		Short:     "Download missing model files ahead of time",
		ValidArgs: []string{string(backend.Kokoro), string(backend.Supertonic)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			setupLogger(cfg, root.logLevel)

			ids, err := parseBackends(args)
			if err != nil {
				return err
			}

			cfg.Assets.AutoDownload = true
			resolver := newResolver(cfg)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BACKEND\tKEY\tSIZE\tPATH")
			for _, id := range ids {
				paths, err := resolver.Pull(cmd.Context(), id, overrides(cfg))
				if err != nil {
					return err
				}

				keys := make([]string, 0, len(paths))
				for k := range paths {
					keys = append(keys, k)
				}
				slices.Sort(keys)

				for _, k := range keys {
					size := "?"
					if info, err := os.Stat(paths[k]); err == nil {
						size = humanize.Bytes(uint64(info.Size()))
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, k, size, paths[k])
				}
			}
			return tw.Flush()
		},
	})

	return cmd
}

// parseBackends returns every backend when args is empty.
func parseBackends(args []string) ([]backend.Identifier, error) {
	if len(args) == 0 {
		return backend.Identifiers(), nil
	}

	ids := make([]backend.Identifier, 0, len(args))
	for _, a := range args {
		id, err := backend.ParseIdentifier(a)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
