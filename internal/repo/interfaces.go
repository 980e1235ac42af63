package repo

import (
	"context"
	"errors"

	"github.com/animus-labs/expense-tracker/internal/domain"
)

var ErrNotFound = errors.New("not found")

type ExpenseFilter struct {
	// Text matches the description, the amount or the date text,
	// case-insensitively.
	Text  string
	Limit int
}

// ExpenseRepository manages expense records.
type ExpenseRepository interface {
	// ListByDate returns every expense ordered by date ascending.
	ListByDate(ctx context.Context) ([]domain.Expense, error)
	List(ctx context.Context, filter ExpenseFilter) ([]domain.Expense, error)
	Get(ctx context.Context, id int64) (domain.Expense, error)
	Create(ctx context.Context, expense domain.Expense) (int64, error)
	Update(ctx context.Context, expense domain.Expense) error
	Delete(ctx context.Context, id int64) error
}
