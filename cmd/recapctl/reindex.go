package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search-reindex",
		Short: "Queue every recap for the search index",
		Long:  "Writes an UPSERT outbox event per recap. The server's sync worker picks them up.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			n, err := e.svc.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %d recaps\n", n)
			return nil
		},
	}
}
