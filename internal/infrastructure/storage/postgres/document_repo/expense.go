package document_repo

import (
	"context"

	"fishledger/internal/domain/expense"
	"fishledger/internal/infrastructure/storage/postgres"
)

const expensesTable = "doc_expenses"

var _ expense.Repository = (*ExpenseRepo)(nil)

// ExpenseRepo implements expense.Repository.
type ExpenseRepo struct {
	*BaseDocumentRepo[expense.Expense]
}

// NewExpenseRepo creates a new expense repository.
func NewExpenseRepo(txManager *postgres.TxManager) *ExpenseRepo {
	return &ExpenseRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[expense.Expense](txManager, expensesTable, "expense"),
	}
}

// Create implements expense.Repository.
func (r *ExpenseRepo) Create(ctx context.Context, e *expense.Expense) error {
	return r.insert(ctx, e, "expense", "")
}
