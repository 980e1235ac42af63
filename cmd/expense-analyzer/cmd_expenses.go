package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/animus-labs/expense-tracker/internal/domain"
	"github.com/animus-labs/expense-tracker/internal/repo"
)

func newListCmd(a *app) *cobra.Command {
	var filter repo.ExpenseFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store repo.ExpenseRepository) error {
				expenses, err := store.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tAMOUNT\tDESCRIPTION")
				for _, e := range expenses {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.ID, e.Date.Format(domain.DateLayout), e.Amount, e.Description)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&filter.Text, "filter", "", "match description or amount")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum rows (0 for all)")
	return cmd
}

type expenseFlags struct {
	description string
	amount      string
	date        string
}

func (f *expenseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.description, "description", "", "what the money was spent on")
	cmd.Flags().StringVar(&f.amount, "amount", "", "decimal amount, e.g. 12.50")
	cmd.Flags().StringVar(&f.date, "date", "", "date as YYYY-MM-DD (default today)")
}

// apply copies the flags the user set onto e.
func (f *expenseFlags) apply(cmd *cobra.Command, e *domain.Expense) error {
	if cmd.Flags().Changed("description") {
		e.Description = strings.TrimSpace(f.description)
	}
	if cmd.Flags().Changed("amount") {
		amount, err := domain.ParseAmount(f.amount)
		if err != nil {
			return err
		}
		e.Amount = amount
	}
	if cmd.Flags().Changed("date") {
		date, err := time.Parse(domain.DateLayout, strings.TrimSpace(f.date))
		if err != nil {
			return fmt.Errorf("invalid date %q: want YYYY-MM-DD", f.date)
		}
		e.Date = date
	}
	return nil
}

func newAddCmd(a *app) *cobra.Command {
	var flags expenseFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().UTC()
			e := domain.Expense{Date: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}
			if err := flags.apply(cmd, &e); err != nil {
				return err
			}
			if err := e.Validate(); err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store repo.ExpenseRepository) error {
				id, err := store.Create(cmd.Context(), e)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "added expense %d\n", id)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var flags expenseFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change an existing expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store repo.ExpenseRepository) error {
				e, err := store.Get(cmd.Context(), id)
				if err != nil {
					return notFound(id, err)
				}
				if err := flags.apply(cmd, &e); err != nil {
					return err
				}
				if err := store.Update(cmd.Context(), e); err != nil {
					return notFound(id, err)
				}
				fmt.Fprintf(a.stdout, "updated expense %d\n", id)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store repo.ExpenseRepository) error {
				if err := store.Delete(cmd.Context(), id); err != nil {
					return notFound(id, err)
				}
				fmt.Fprintf(a.stdout, "deleted expense %d\n", id)
				return nil
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid expense id %q", s)
	}
	return id, nil
}

func notFound(id int64, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("expense %d not found", id)
	}
	return err
}
