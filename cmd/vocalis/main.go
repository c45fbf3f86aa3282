// Command vocalis serves text-to-speech over HTTP.
package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ekisa-team/vocalis/internal/config"
	"github.com/ekisa-team/vocalis/internal/envvar"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "vocalis",
		Short:         "Text-to-speech service backed by kokoro and supertonic",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigFile(), "path to config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "minimum log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newSayCmd(opts),
		newVoicesCmd(opts),
		newLanguagesCmd(opts),
		newAssetsCmd(opts),
	)

	return root
}

func defaultConfigFile() string {
	if p := os.Getenv(envvar.VocalisConfig); p != "" {
		return p
	}
	return filepath.Join(config.DefaultConfigPath(), config.DefaultConfigFile)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
