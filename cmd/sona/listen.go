package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sona-ai/sona/pkg/assistant"
	"github.com/sona-ai/sona/pkg/config"
	"github.com/sona-ai/sona/pkg/screenshot"
	"github.com/sona-ai/sona/pkg/speech"
)

func newListenCmd() *cobra.Command {
	var configPath string
	var withScreen bool

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Answer questions read line by line from stdin",
		Long: "Reads questions from stdin (pipe a speech-to-text tool into it), " +
			"answers through the configured backend, and speaks or prints each answer.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			orch, closeFn, err := buildOrchestrator(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			var capturer assistant.Capturer
			if withScreen {
				mgr, err := screenshot.New(cfg.Screenshot)
				if err != nil {
					return fmt.Errorf("init screenshots: %w", err)
				}
				capturer = mgr
			}

			var speaker speech.Speaker = &speech.PrintSpeaker{W: os.Stdout}
			if cfg.Speech.TTSCommand != "" {
				speaker = speech.NewCommandSpeaker(cfg.Speech.TTSCommand)
			}

			a := assistant.New(
				speech.NewLineTranscriber(os.Stdin),
				capturer,
				orch,
				speaker,
				speech.NewNormalizer(cfg.Speech.Language),
			)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Printf("sona listening (language=%s, screen=%v)", cfg.Speech.Language, withScreen)
			return a.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "sona.yaml", "path to config file")
	cmd.Flags().BoolVar(&withScreen, "screen", false, "attach a screenshot to every question")
	return cmd
}
