// Package document_repo provides PostgreSQL repositories for ledger documents.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fishledger/internal/core/apperror"
	"fishledger/internal/infrastructure/storage/postgres"
)

// builder uses $n placeholders.
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// BaseDocumentRepo provides the insert and single-row reads shared by document tables.
// Columns come from the db tags of T, so the table layout follows the entity.
type BaseDocumentRepo[T any] struct {
	txManager *postgres.TxManager
	tableName string
	entity    string
	columns   []string
}

// NewBaseDocumentRepo creates a new base document repository.
func NewBaseDocumentRepo[T any](txManager *postgres.TxManager, tableName, entity string) *BaseDocumentRepo[T] {
	return &BaseDocumentRepo[T]{
		txManager: txManager,
		tableName: tableName,
		entity:    entity,
		columns:   postgres.ExtractDBColumns[T](),
	}
}

func (r *BaseDocumentRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// insertQuery builds the INSERT for doc.
func (r *BaseDocumentRepo[T]) insertQuery(doc *T) squirrel.InsertBuilder {
	return builder.
		Insert(r.tableName).
		Columns(r.columns...).
		Values(postgres.ValuesFor(doc, r.columns)...)
}

// insert writes doc. Number collisions surface as DUPLICATE_NUMBER.
func (r *BaseDocumentRepo[T]) insert(ctx context.Context, doc *T, docType, number string) error {
	sql, args, err := r.insertQuery(doc).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert %s: %w", r.tableName, err), docType, number)
	}
	return nil
}

func (r *BaseDocumentRepo[T]) selectQuery() squirrel.SelectBuilder {
	return builder.Select(r.columns...).From(r.tableName)
}

// get loads one row by pred, optionally locking it until the transaction ends.
func (r *BaseDocumentRepo[T]) get(ctx context.Context, pred squirrel.Eq, forUpdate bool) (*T, error) {
	q := r.selectQuery().Where(pred)
	if forUpdate {
		if !r.txManager.InTx(ctx) {
			return nil, apperror.NewInternal(fmt.Errorf("lock %s outside transaction", r.tableName))
		}
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	doc := new(T)
	if err := pgxscan.Get(ctx, r.querier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entity, pred["id"])
		}
		return nil, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return doc, nil
}

// list loads every row matching pred in the given order.
func (r *BaseDocumentRepo[T]) list(ctx context.Context, pred squirrel.Sqlizer, orderBy ...string) ([]*T, error) {
	sql, args, err := r.selectQuery().Where(pred).OrderBy(orderBy...).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var docs []*T
	if err := pgxscan.Select(ctx, r.querier(ctx), &docs, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return docs, nil
}
