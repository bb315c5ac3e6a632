package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dkropachev/autocatalog/internal/cli"
	"github.com/dkropachev/autocatalog/internal/common"
)

func soldCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sold <listing-id>",
		Short: "Mark a listing as sold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid listing id %q", args[0])
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			alreadySold, err := a.catalog.MarkSold(ctx, id)
			if errors.Is(err, common.ErrNotFound) {
				fmt.Println(cli.FormatError(fmt.Sprintf("Listing %d not found", id)))
				return nil
			}
			if err != nil {
				return err
			}

			if alreadySold {
				fmt.Println(cli.FormatInfo(fmt.Sprintf("Listing %d was already sold", id)))
			} else {
				fmt.Println(cli.FormatInfo(fmt.Sprintf("Listing %d marked sold ✅", id)))
			}
			return nil
		},
	}
}
