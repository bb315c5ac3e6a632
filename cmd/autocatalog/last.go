package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkropachev/autocatalog/internal/cli"
)

func lastCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "last",
		Short: "Show the newest active listings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			listings, err := a.catalog.Recent(ctx, limit)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatListings("Recent listings", listings))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (0 uses the configured default)")
	return cmd
}
