// Package ledger is the single entry point for ledger mutations.
// Every operation authorizes the caller, then runs its reads, checks and writes
// in one transaction so a failure leaves nothing behind.
package ledger

import (
	"context"
	"time"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/numerator"
	"fishledger/internal/core/security"
	"fishledger/internal/core/tx"
	"fishledger/internal/domain/allocation"
	"fishledger/internal/domain/audit"
	"fishledger/internal/domain/documents/purchase"
	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/domain/documents/sale"
	"fishledger/internal/domain/expense"
	"fishledger/internal/domain/render"
	"fishledger/pkg/logger"
)

// Caller is the identity attached to a mutating call.
type Caller = security.Caller

// Dependencies wires the service. Policy, Audit, Metrics and Clock are optional.
type Dependencies struct {
	TxManager tx.Manager
	Numerator numerator.Generator
	Purchases purchase.Repository
	Sales     sale.Repository
	Receipts  receipt.Repository
	Expenses  expense.Repository
	Lots      allocation.LotSource

	Policy   security.Policy
	Audit    audit.Recorder
	Metrics  Metrics
	Renderer render.Renderer
	Notifier render.Notifier
	Clock    func() time.Time
}

// Service coordinates purchases, sales, payments and receipts.
type Service struct {
	txm       tx.Manager
	numerator numerator.Generator
	purchases purchase.Repository
	sales     sale.Repository
	receipts  receipt.Repository
	expenses  expense.Repository
	allocator *allocation.Allocator

	policy   security.Policy
	audit    audit.Recorder
	metrics  Metrics
	renderer render.Renderer
	notifier render.Notifier
	now      func() time.Time
}

// NewService creates a ledger service.
func NewService(d Dependencies) *Service {
	s := &Service{
		txm:       d.TxManager,
		numerator: d.Numerator,
		purchases: d.Purchases,
		sales:     d.Sales,
		receipts:  d.Receipts,
		expenses:  d.Expenses,
		allocator: allocation.NewAllocator(d.Lots),
		policy:    d.Policy,
		audit:     d.Audit,
		metrics:   d.Metrics,
		renderer:  d.Renderer,
		notifier:  d.Notifier,
		now:       d.Clock,
	}
	if s.policy == nil {
		s.policy = security.PermissionPolicy{}
	}
	if s.audit == nil {
		s.audit = audit.Nop{}
	}
	if s.metrics == nil {
		s.metrics = NopMetrics{}
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

func (s *Service) authorize(ctx context.Context, caller Caller, perm security.Permission) error {
	if err := s.policy.Authorize(ctx, caller, perm); err != nil {
		logger.Warn(ctx, "ledger call denied", "user_id", caller.UserID, "permission", perm)
		return err
	}
	return nil
}

// record writes an audit entry for caller.
func (s *Service) record(ctx context.Context, caller Caller, entry audit.Entry) error {
	entry.UserID = caller.UserID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	return s.audit.Record(ctx, entry)
}

// fail logs a rejected operation at the level its cause deserves and returns err.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	appErr, ok := apperror.AsAppError(err)
	switch {
	case !ok:
		logger.Error(ctx, op+" failed", "error", err)
	case appErr.Code == apperror.CodeDuplicateNumber:
		// Numbers are generated under a lock; a collision is a bug, never retried.
		logger.Error(ctx, op+" hit a duplicate document number", "error", err, "details", appErr.Details)
	case appErr.Code == apperror.CodeInternal:
		logger.Error(ctx, op+" failed", "error", err)
	default:
		logger.Warn(ctx, op+" rejected", "code", appErr.Code, "details", appErr.Details)
	}
	return err
}
