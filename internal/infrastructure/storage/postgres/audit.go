package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"fishledger/internal/core/id"
	"fishledger/internal/domain/audit"
)

var _ audit.Recorder = (*AuditService)(nil)

// CompressionAlgo specifies how the changes column is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// defaultCompressThreshold is the JSON size above which changes are zstd-compressed.
const defaultCompressThreshold = 10 * 1024

// AuditService writes the audit trail to sys_audit.
type AuditService struct {
	txManager         *TxManager
	codec             *changesCodec
	compressThreshold int
}

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	codec, err := newChangesCodec()
	if err != nil {
		return nil, err
	}
	return &AuditService{
		txManager:         txManager,
		codec:             codec,
		compressThreshold: defaultCompressThreshold,
	}, nil
}

// Record implements audit.Recorder. It runs on the querier carried by ctx,
// so inside a ledger transaction the entry commits with the change.
func (s *AuditService) Record(ctx context.Context, entry audit.Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	plain, compressed, algo, err := s.codec.encode(entry.Changes, s.compressThreshold)
	if err != nil {
		return err
	}

	var userID *id.ID
	if !id.IsNil(entry.UserID) {
		userID = &entry.UserID
	}

	_, err = s.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_audit (
			id, entity_type, entity_id, action, user_id,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		id.New(), entry.EntityType, entry.EntityID, string(entry.Action), userID,
		plain, compressed, string(algo), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// History returns the audit trail of one entity, oldest first.
func (s *AuditService) History(ctx context.Context, entityID id.ID) ([]audit.Entry, error) {
	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, `
		SELECT entity_type, entity_id, action, user_id,
		       changes, changes_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE entity_id = $1
		ORDER BY created_at, id
	`, entityID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			e          audit.Entry
			action     string
			userID     *id.ID
			plain      []byte
			compressed []byte
			algo       string
		)
		if err := rows.Scan(&e.EntityType, &e.EntityID, &action, &userID,
			&plain, &compressed, &algo, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = audit.Action(action)
		if userID != nil {
			e.UserID = *userID
		}
		if e.Changes, err = s.codec.decode(plain, compressed, CompressionAlgo(algo)); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// changesCodec turns a changes map into the stored representation.
// Encoder and decoder are safe for concurrent EncodeAll/DecodeAll.
type changesCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newChangesCodec() (*changesCodec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &changesCodec{encoder: encoder, decoder: decoder}, nil
}

// encode returns either the plain JSON or its zstd frame, never both.
func (c *changesCodec) encode(changes map[string]any, threshold int) (plain, compressed []byte, algo CompressionAlgo, err error) {
	if len(changes) == 0 {
		return nil, nil, CompressionNone, nil
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		return nil, nil, "", fmt.Errorf("marshal changes: %w", err)
	}
	if len(raw) <= threshold {
		return raw, nil, CompressionNone, nil
	}
	return nil, c.encoder.EncodeAll(raw, nil), CompressionZstd, nil
}

func (c *changesCodec) decode(plain, compressed []byte, algo CompressionAlgo) (map[string]any, error) {
	raw := plain
	if algo == CompressionZstd && len(compressed) > 0 {
		var err error
		if raw, err = c.decoder.DecodeAll(compressed, nil); err != nil {
			return nil, fmt.Errorf("decompress changes: %w", err)
		}
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var changes map[string]any
	if err := json.Unmarshal(raw, &changes); err != nil {
		return nil, fmt.Errorf("unmarshal changes: %w", err)
	}
	return changes, nil
}
