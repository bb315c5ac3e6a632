package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkropachev/autocatalog/internal/cli"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// openApp migrates as part of wiring; this command exists so
			// operators can run migrations explicitly before a rollout.
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Println(cli.FormatInfo("Database schema is up to date"))
			return nil
		},
	}
}
