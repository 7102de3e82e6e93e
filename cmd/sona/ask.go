package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sona-ai/sona/pkg/config"
	"github.com/sona-ai/sona/pkg/models"
	"github.com/sona-ai/sona/pkg/screenshot"
)

func newAskCmd() *cobra.Command {
	var configPath string
	var images []string
	var withScreen bool
	var showSource bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
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

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if withScreen {
				mgr, err := screenshot.New(cfg.Screenshot)
				if err != nil {
					return fmt.Errorf("init screenshots: %w", err)
				}
				defer mgr.Cleanup()
				paths, err := mgr.Capture(ctx)
				if err != nil {
					return fmt.Errorf("capture screen: %w", err)
				}
				images = append(images, paths...)
			}

			question := strings.Join(args, " ")
			res := orch.Ask(ctx, question, images)

			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			if showSource {
				fmt.Fprintf(cmd.OutOrStdout(), "[source=%s tier=%s model=%s]\n", res.Source, res.Tier, res.Model)
			}
			if res.Source == models.SourceFailed || res.Source == models.SourceUnavailable {
				return fmt.Errorf("request %s not answered (%s)", res.RequestID, res.Source)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "sona.yaml", "path to config file")
	cmd.Flags().StringArrayVarP(&images, "image", "i", nil, "attach an image file (repeatable)")
	cmd.Flags().BoolVar(&withScreen, "screen", false, "attach a screenshot of the current screen")
	cmd.Flags().BoolVar(&showSource, "source", false, "print where the answer came from")
	return cmd
}
