// Package security evaluates caller permissions for ledger mutations.
package security

import (
	"context"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
)

// Permission names a ledger action.
type Permission string

const (
	PermRecordPurchase Permission = "purchase:record"
	PermRecordSale     Permission = "sale:record"
	PermDeleteSale     Permission = "sale:delete"
	PermRecordPayment  Permission = "payment:record"
	PermIssueReceipt   Permission = "receipt:issue"
	PermVoidReceipt    Permission = "receipt:void"
	PermReissueReceipt Permission = "receipt:reissue"
	PermRecordExpense  Permission = "expense:record"
	PermSendDocument   Permission = "document:send"
	PermReadReports    Permission = "report:read"

	// PermAll grants every action.
	PermAll Permission = "*"
)

// Caller is the identity and permission set attached to a mutating call.
// Authentication happens outside the ledger; the ledger only evaluates permissions.
type Caller struct {
	UserID      id.ID
	Permissions []Permission
}

// NewCaller builds a Caller.
func NewCaller(userID id.ID, perms ...Permission) Caller {
	return Caller{UserID: userID, Permissions: perms}
}

// Has reports whether the caller holds perm (or PermAll).
func (c Caller) Has(perm Permission) bool {
	for _, p := range c.Permissions {
		if p == perm || p == PermAll {
			return true
		}
	}
	return false
}

// Policy decides whether a caller may perform an action.
type Policy interface {
	Authorize(ctx context.Context, caller Caller, perm Permission) error
}

// PermissionPolicy grants an action only when the caller holds the matching permission.
// A caller without permissions is denied everything.
type PermissionPolicy struct{}

// Authorize implements Policy.
func (PermissionPolicy) Authorize(_ context.Context, caller Caller, perm Permission) error {
	if caller.Has(perm) {
		return nil
	}
	return apperror.NewForbidden("permission denied").
		WithDetail("permission", string(perm)).
		WithDetail("userId", caller.UserID.String())
}

// OpenPolicy allows all operations (for development/testing).
type OpenPolicy struct{}

// Authorize implements Policy.
func (OpenPolicy) Authorize(context.Context, Caller, Permission) error { return nil }
