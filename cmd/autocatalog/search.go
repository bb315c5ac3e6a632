package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkropachev/autocatalog/internal/cli"
)

func searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search active listings",
		Long: `Search active listings with the filter language:

  autocatalog search "camry 2019 <2500000"
  autocatalog search audi 1800000-2200000

Bare years filter by model year, numeric tokens with 6+ digits filter by
price (optionally prefixed with <, <=, =, >= or >), min-max pairs filter by
price range, and everything else is matched as text.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			queryText := strings.Join(args, " ")
			listings, err := a.catalog.Search(ctx, queryText, limit)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatListings("Search: "+queryText, listings))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (0 uses the configured default)")
	return cmd
}
