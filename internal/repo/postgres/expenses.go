package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/animus-labs/expense-tracker/internal/domain"
	"github.com/animus-labs/expense-tracker/internal/repo"
)

// The table and its quoted PascalCase columns are the ones the desktop
// application created, so both tools can share one database.
const expenseColumns = `"Id", "Description", "Amount", "Date"`

type ExpenseStore struct {
	db DB
}

func NewExpenseStore(db DB) *ExpenseStore {
	if db == nil {
		return nil
	}
	return &ExpenseStore{db: db}
}

var _ repo.ExpenseRepository = (*ExpenseStore)(nil)

func (s *ExpenseStore) ListByDate(ctx context.Context) ([]domain.Expense, error) {
	return s.query(ctx, `SELECT `+expenseColumns+` FROM "Expenses" ORDER BY "Date" ASC, "Id" ASC`)
}

func (s *ExpenseStore) List(ctx context.Context, filter repo.ExpenseFilter) ([]domain.Expense, error) {
	query, args := buildExpenseListQuery(filter)
	return s.query(ctx, query, args...)
}

func buildExpenseListQuery(filter repo.ExpenseFilter) (string, []any) {
	args := make([]any, 0, 2)
	query := `SELECT ` + expenseColumns + ` FROM "Expenses"`
	if text := strings.TrimSpace(filter.Text); text != "" {
		args = append(args, "%"+escapeLike(text)+"%")
		n := len(args)
		query += fmt.Sprintf(
			` WHERE ("Description" ILIKE $%d OR CAST("Amount" AS TEXT) ILIKE $%d OR CAST("Date" AS TEXT) ILIKE $%d)`,
			n, n, n,
		)
	}
	query += ` ORDER BY "Id" ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *ExpenseStore) Get(ctx context.Context, id int64) (domain.Expense, error) {
	if s == nil || s.db == nil {
		return domain.Expense{}, fmt.Errorf("expense store not initialized")
	}
	if id <= 0 {
		return domain.Expense{}, fmt.Errorf("expense id is required")
	}
	var e domain.Expense
	row := s.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM "Expenses" WHERE "Id" = $1`, id)
	if err := row.Scan(&e.ID, &e.Description, &e.Amount, &e.Date); err != nil {
		return domain.Expense{}, handleNotFound(err)
	}
	return e.Normalize(), nil
}

func (s *ExpenseStore) Create(ctx context.Context, expense domain.Expense) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("expense store not initialized")
	}
	if err := expense.Validate(); err != nil {
		return 0, err
	}
	expense = expense.Normalize()
	var id int64
	row := s.db.QueryRowContext(
		ctx,
		`INSERT INTO "Expenses" ("Description", "Amount", "Date") VALUES ($1, $2, $3) RETURNING "Id"`,
		strings.TrimSpace(expense.Description),
		expense.Amount,
		expense.Date,
	)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	return id, nil
}

func (s *ExpenseStore) Update(ctx context.Context, expense domain.Expense) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("expense store not initialized")
	}
	if expense.ID <= 0 {
		return fmt.Errorf("expense id is required")
	}
	if err := expense.Validate(); err != nil {
		return err
	}
	expense = expense.Normalize()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE "Expenses" SET "Description" = $2, "Amount" = $3, "Date" = $4 WHERE "Id" = $1`,
		expense.ID,
		strings.TrimSpace(expense.Description),
		expense.Amount,
		expense.Date,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireAffected(res.RowsAffected())
}

func (s *ExpenseStore) Delete(ctx context.Context, id int64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("expense store not initialized")
	}
	if id <= 0 {
		return fmt.Errorf("expense id is required")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM "Expenses" WHERE "Id" = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireAffected(res.RowsAffected())
}

func requireAffected(n int64, err error) error {
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *ExpenseStore) query(ctx context.Context, query string, args ...any) ([]domain.Expense, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("expense store not initialized")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0)
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &e.Date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e.Normalize())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}
