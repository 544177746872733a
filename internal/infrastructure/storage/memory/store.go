// Package memory provides an in-process implementation of every ledger repository.
//
// One RWMutex guards the whole store. A write transaction holds the write lock
// for its full duration and restores a snapshot when it fails, which gives the
// same all-or-nothing and serialization guarantees as the postgres store.
package memory

import (
	"context"
	"errors"
	"sync"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/tx"
	"fishledger/internal/domain/audit"
	"fishledger/internal/domain/documents/purchase"
	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/domain/documents/sale"
	"fishledger/internal/domain/expense"
)

var (
	_ tx.Manager         = (*Store)(nil)
	_ tx.ReadOnlyManager = (*Store)(nil)
)

// ErrReadOnly is returned by writes attempted inside a read-only transaction.
var ErrReadOnly = errors.New("write in read-only transaction")

type txMode int

const (
	modeReadWrite txMode = iota + 1
	modeReadOnly
)

type txKey struct{}

type state struct {
	lots     map[id.ID]purchase.Lot
	sales    map[id.ID]sale.Sale
	items    map[id.ID][]sale.Item
	payments map[id.ID][]sale.Payment
	receipts map[id.ID]receipt.Receipt
	expenses map[id.ID]expense.Expense
	audit    []audit.Entry
}

func newState() state {
	return state{
		lots:     make(map[id.ID]purchase.Lot),
		sales:    make(map[id.ID]sale.Sale),
		items:    make(map[id.ID][]sale.Item),
		payments: make(map[id.ID][]sale.Payment),
		receipts: make(map[id.ID]receipt.Receipt),
		expenses: make(map[id.ID]expense.Expense),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.lots {
		c.lots[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]sale.Item(nil), v...)
	}
	for k, v := range s.payments {
		c.payments[k] = append([]sale.Payment(nil), v...)
	}
	for k, v := range s.receipts {
		c.receipts[k] = v
	}
	for k, v := range s.expenses {
		c.expenses[k] = v
	}
	c.audit = append([]audit.Entry(nil), s.audit...)
	return c
}

// Store holds all ledger data in memory.
type Store struct {
	mu    sync.RWMutex
	state state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

func modeOf(ctx context.Context) txMode {
	if m, ok := ctx.Value(txKey{}).(txMode); ok {
		return m
	}
	return 0
}

// RunInTransaction implements tx.Manager.
// Nested calls reuse the transaction already carried by ctx.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	switch modeOf(ctx) {
	case modeReadWrite:
		return fn(ctx)
	case modeReadOnly:
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, modeReadWrite)); err != nil {
		s.state = snapshot
		return err
	}
	if err := s.state.checkReferences(); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// checkReferences runs at commit, like the deferred superseded_by foreign key.
func (s state) checkReferences() error {
	for _, rc := range s.receipts {
		if rc.SupersededBy == nil {
			continue
		}
		if _, ok := s.receipts[*rc.SupersededBy]; !ok {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "referenced record does not exist or is still referenced").
				WithDetail("constraint", "fk_receipts_superseded_by").
				WithDetail("receiptId", rc.ID)
		}
	}
	return nil
}

// ReadOnly implements tx.ReadOnlyManager.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if modeOf(ctx) != 0 {
		return fn(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(context.WithValue(ctx, txKey{}, modeReadOnly))
}

// read runs fn against the current state, taking the read lock outside transactions.
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if modeOf(ctx) != 0 {
		return fn(&s.state)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.state)
}

// write runs fn against the current state. Outside a transaction it is a
// single-statement transaction of its own.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	switch modeOf(ctx) {
	case modeReadWrite:
		return fn(&s.state)
	case modeReadOnly:
		return ErrReadOnly
	}
	return s.RunInTransaction(ctx, func(context.Context) error {
		return fn(&s.state)
	})
}

// inWriteTx reports whether ctx carries a write transaction of this store.
func inWriteTx(ctx context.Context) bool {
	return modeOf(ctx) == modeReadWrite
}
