// Package receipt provides the receipt lifecycle: issue, void and reissue.
package receipt

import (
	"time"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/entity"
	"fishledger/internal/core/id"
)

// Status is the lifecycle state of a receipt.
type Status string

const (
	StatusIssued   Status = "issued"
	StatusVoided   Status = "voided"
	StatusReissued Status = "reissued"
)

// OwnerType names the document a receipt belongs to.
type OwnerType string

const (
	OwnerSale     OwnerType = "sale"
	OwnerPurchase OwnerType = "purchase"
)

// Valid reports whether t is a known owner type.
func (t OwnerType) Valid() bool {
	return t == OwnerSale || t == OwnerPurchase
}

// Action is a lifecycle transition.
type Action string

const (
	ActionVoid    Action = "void"
	ActionReissue Action = "reissue"
)

// transitions lists the allowed actions per state. Voided and reissued are terminal.
var transitions = map[Status]map[Action]Status{
	StatusIssued: {
		ActionVoid:    StatusVoided,
		ActionReissue: StatusReissued,
	},
}

// Receipt is a numbered proof of sale or purchase.
// The number is immutable; voided and reissued receipts are kept for audit.
type Receipt struct {
	entity.BaseEntity

	OwnerType    OwnerType  `db:"owner_type" json:"ownerType"`
	OwnerID      id.ID      `db:"owner_id" json:"ownerId"`
	Number       string     `db:"receipt_number" json:"receiptNumber"`
	Status       Status     `db:"status" json:"status"`
	SupersededBy *id.ID     `db:"superseded_by" json:"supersededBy,omitempty"`
	IssuedAt     time.Time  `db:"issued_at" json:"issuedAt"`
	VoidedAt     *time.Time `db:"voided_at" json:"voidedAt,omitempty"`
}

// New creates an issued receipt.
func New(ownerType OwnerType, ownerID id.ID, number string, now time.Time) *Receipt {
	return &Receipt{
		BaseEntity: entity.NewBaseEntity(),
		OwnerType:  ownerType,
		OwnerID:    ownerID,
		Number:     number,
		Status:     StatusIssued,
		IssuedAt:   now,
	}
}

// IsLive reports whether the receipt is the current proof for its owner.
func (r *Receipt) IsLive() bool {
	return r.Status == StatusIssued
}

// Can checks whether action is allowed from the current state.
func (r *Receipt) Can(action Action) error {
	if _, ok := transitions[r.Status][action]; !ok {
		return apperror.NewInvalidTransition("receipt", r.ID, string(r.Status), string(action)).
			WithDetail("number", r.Number)
	}
	return nil
}

// Void retires the receipt. The record stays for audit.
func (r *Receipt) Void(now time.Time) error {
	if err := r.Can(ActionVoid); err != nil {
		return err
	}
	r.Status = transitions[r.Status][ActionVoid]
	r.VoidedAt = &now
	r.Touch()
	return nil
}

// Reissue retires the receipt in favour of successorID.
func (r *Receipt) Reissue(successorID id.ID, now time.Time) error {
	if err := r.Can(ActionReissue); err != nil {
		return err
	}
	if id.IsNil(successorID) || successorID == r.ID {
		return apperror.NewValidation("successor receipt is required").
			WithDetail("field", "supersededBy")
	}
	r.Status = transitions[r.Status][ActionReissue]
	r.SupersededBy = &successorID
	r.VoidedAt = &now
	r.Touch()
	return nil
}
