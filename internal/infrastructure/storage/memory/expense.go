package memory

import (
	"context"

	"fishledger/internal/domain/expense"
)

// ExpenseRepo implements expense.Repository.
type ExpenseRepo struct {
	store *Store
}

var _ expense.Repository = (*ExpenseRepo)(nil)

// NewExpenseRepo creates an expense repository over store.
func NewExpenseRepo(store *Store) *ExpenseRepo {
	return &ExpenseRepo{store: store}
}

func (r *ExpenseRepo) Create(ctx context.Context, e *expense.Expense) error {
	return r.store.write(ctx, func(st *state) error {
		st.expenses[e.ID] = *e
		return nil
	})
}
