package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sona-ai/sona/pkg/config"
	"github.com/sona-ai/sona/pkg/history"
	"github.com/sona-ai/sona/pkg/models"
)

func newHistoryCmd() *cobra.Command {
	var (
		configPath string
		limit      int
		search     string
		count      bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			store, err := history.New(cfg.History.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := context.Background()

			if count {
				n, err := store.Count(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("%d conversations\n", n)
				return nil
			}

			var convs []models.Conversation
			if search != "" {
				convs, err = store.Search(ctx, search)
			} else {
				convs, err = store.Recent(ctx, limit)
			}
			if err != nil {
				return err
			}
			if len(convs) == 0 {
				fmt.Println("No conversations found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tQUESTION\tRESPONSE\tTAGS")
			for _, c := range convs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					c.CreatedAt.Format("2006-01-02T15:04:05"), clip(c.Question, 40), clip(c.Response, 60), strings.Join(c.Tags, ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "sona.yaml", "path to config file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of recent conversations to show")
	cmd.Flags().StringVar(&search, "search", "", "search questions, responses and tags")
	cmd.Flags().BoolVar(&count, "count", false, "print only the conversation count")
	return cmd
}

func clip(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
