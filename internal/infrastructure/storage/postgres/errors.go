package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"fishledger/internal/core/apperror"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Constraint names from migrations/0001_ledger.sql.
const (
	constraintPurchaseNumber = "uq_purchase_lots_number"
	constraintSaleNumber     = "uq_sales_number"
	constraintReceiptNumber  = "uq_receipts_number"
	constraintLiveReceipt    = "uq_receipts_live_owner"
)

// MapError translates unique violations on numbering constraints into
// DUPLICATE_NUMBER and the one-live-receipt index into a business rule error.
// Foreign key and check violations go through MapConstraintError.
func MapError(err error, docType, number string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return MapConstraintError(err)
	}

	switch pgErr.ConstraintName {
	case constraintPurchaseNumber, constraintSaleNumber, constraintReceiptNumber:
		return apperror.NewDuplicateNumber(docType, number).WithCause(err)
	case constraintLiveReceipt:
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "owner already has an issued receipt").
			WithCause(err)
	}
	return err
}

// MapConstraintError turns a foreign key violation into a business rule error
// and a check violation into a validation error. Other errors are returned unchanged.
func MapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgForeignKeyViolation:
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "referenced record does not exist or is still referenced").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgCheckViolation:
		return apperror.NewValidation("value rejected by constraint "+pgErr.ConstraintName).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}
	return err
}
