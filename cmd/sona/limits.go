package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sona-ai/sona/pkg/config"
	"github.com/sona-ai/sona/pkg/models"
)

func newLimitsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "limits",
		Short: "Show configured per-tier rate limits and models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			quotas := cfg.Tiers.Quotas()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIER\tRPM\tRPD\tTEXT MODEL\tVISION MODEL")
			for _, tier := range []models.Tier{models.TierPrimary, models.TierSecondary} {
				q := quotas[tier]
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", tier, q.RPM, q.RPD, q.TextModel, q.VisionModel)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "sona.yaml", "path to config file")
	return cmd
}
