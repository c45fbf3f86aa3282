package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ekisa-team/vocalis/internal/config"
	"github.com/ekisa-team/vocalis/internal/service"
	"github.com/ekisa-team/vocalis/internal/shutdown"
)

type sayOptions struct {
	output string
	model  string
	voice  string
	speed  float64
}

func newSayCmd(root *rootOptions) *cobra.Command {
	opts := &sayOptions{}

	cmd := &cobra.Command{
		Use:   "say TEXT",
		Short: "Synthesize TEXT into a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			setupLogger(cfg, root.logLevel)

			registry := newRegistry(cfg, newResolver(cfg))
			defer registry.Close()

			tts := newService(cfg, registry, shutdown.New(0))
			speech, err := tts.Synthesize(cmd.Context(), service.SpeechRequest{
				Model: opts.model,
				Input: args[0],
				Voice: opts.voice,
				Speed: opts.speed,
			})
			if err != nil {
				return err
			}

			if err := os.WriteFile(opts.output, speech.Audio, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", opts.output, err)
			}

			slog.Debug("Speech written", "path", opts.output, "backend", speech.Backend, "voice", speech.Voice)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %s, %s at %d Hz)\n",
				opts.output,
				humanize.Bytes(uint64(len(speech.Audio))),
				speech.Duration.Round(10*time.Millisecond),
				speech.Voice,
				speech.SampleRate,
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "speech.wav", "output WAV file")
	cmd.Flags().StringVar(&opts.model, "model", "", "backend to use (kokoro, supertonic)")
	cmd.Flags().StringVar(&opts.voice, "voice", "", "voice name")
	cmd.Flags().Float64Var(&opts.speed, "speed", service.DefaultSpeed, "speaking rate")

	return cmd
}
