package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ekisa-team/vocalis/internal/config"
	"github.com/ekisa-team/vocalis/internal/service"
	"github.com/ekisa-team/vocalis/internal/voice"
)

func newVoicesCmd(root *rootOptions) *cobra.Command {
	var modelName string

	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List the voices of a backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tts, err := catalogService(root)
			if err != nil {
				return err
			}

			voices, err := tts.Voices(modelName)
			if err != nil {
				return err
			}
			return printVoices(cmd.OutOrStdout(), voices)
		},
	}

	cmd.Flags().StringVar(&modelName, "model", "", "backend to list (kokoro, supertonic)")
	return cmd
}

func newLanguagesCmd(root *rootOptions) *cobra.Command {
	var modelName string

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the languages of a backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tts, err := catalogService(root)
			if err != nil {
				return err
			}

			languages, err := tts.Languages(modelName)
			if err != nil {
				return err
			}
			return printLanguages(cmd.OutOrStdout(), languages)
		},
	}

	cmd.Flags().StringVar(&modelName, "model", "", "backend to list (kokoro, supertonic)")
	return cmd
}

// catalogService answers catalog queries only, so it never builds an engine.
func catalogService(root *rootOptions) (*service.TTS, error) {
	cfg, err := config.Load(root.configPath)
	if err != nil {
		return nil, err
	}
	setupLogger(cfg, root.logLevel)

	return newService(cfg, nil, nil), nil
}

func printVoices(w io.Writer, voices []voice.Descriptor) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLANGUAGE\tGENDER\tDESCRIPTION")
	for _, v := range voices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Name, v.Language, v.Gender, v.Description)
	}
	return tw.Flush()
}

func printLanguages(w io.Writer, languages []voice.Language) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tNATIVE")
	for _, l := range languages {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Code, l.Name, l.NativeName)
	}
	return tw.Flush()
}
