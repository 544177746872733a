package memory

import (
	"context"

	"fishledger/internal/core/id"
	"fishledger/internal/domain/audit"
)

// AuditLog implements audit.Recorder. Entries roll back with their transaction.
type AuditLog struct {
	store *Store
}

var _ audit.Recorder = (*AuditLog)(nil)

// NewAuditLog creates an audit log over store.
func NewAuditLog(store *Store) *AuditLog {
	return &AuditLog{store: store}
}

func (l *AuditLog) Record(ctx context.Context, entry audit.Entry) error {
	return l.store.write(ctx, func(st *state) error {
		st.audit = append(st.audit, entry)
		return nil
	})
}

// History returns the entries of one entity, oldest first.
func (l *AuditLog) History(ctx context.Context, entityID id.ID) ([]audit.Entry, error) {
	var out []audit.Entry
	err := l.store.read(ctx, func(st *state) error {
		for _, e := range st.audit {
			if e.EntityID == entityID {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}
