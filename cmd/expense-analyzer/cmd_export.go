package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/animus-labs/expense-tracker/internal/repo"
	"github.com/animus-labs/expense-tracker/internal/snapshot"
)

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every expense to a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(out) == "" {
				return errors.New("--out is required")
			}
			return a.withStore(cmd.Context(), func(store repo.ExpenseRepository) error {
				expenses, err := store.ListByDate(cmd.Context())
				if err != nil {
					return err
				}
				if err := snapshot.Write(out, expenses); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "exported %d expenses to %s\n", len(expenses), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "destination CSV file")
	return cmd
}
