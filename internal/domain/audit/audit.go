// Package audit defines the audit trail written by every ledger mutation.
package audit

import (
	"context"
	"time"

	"fishledger/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate  Action = "create"
	ActionDelete  Action = "delete"
	ActionPayment Action = "payment"
	ActionIssue   Action = "issue"
	ActionVoid    Action = "void"
	ActionReissue Action = "reissue"
)

// Entry is one audited change.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	UserID     id.ID
	Changes    map[string]any
	CreatedAt  time.Time
}

// Recorder persists audit entries. Record runs inside the ledger transaction,
// so an entry exists exactly when its change was committed.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Nop discards entries.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Entry) error { return nil }
