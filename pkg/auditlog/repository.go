// Copyright 2025 Certen Protocol

package auditlog

import (
	"context"
	"database/sql"
	"time"
)

// BlockRepository persists finalized blocks and their transition
// results for operator querying.
type BlockRepository struct {
	client *Client
}

// NewBlockRepository wraps client. client may be nil, in which case
// every method is a no-op — the audit log is always optional.
func NewBlockRepository(client *Client) *BlockRepository {
	return &BlockRepository{client: client}
}

// TransitionRecord is one finalized transition's outcome, as recorded
// alongside the block that finalized it.
type TransitionRecord struct {
	ID            string
	Kind          string
	SignerID      []byte
	Code          uint32
	Info          string
	ProcessingFee uint64
	StorageFee    uint64
}

// RecordBlock inserts a finalized block and its transition results in
// one transaction. A nil receiver (no database configured) is a no-op.
func (r *BlockRepository) RecordBlock(ctx context.Context, height int64, appHash []byte, blockTime time.Time, epochIndex uint64, transitions []TransitionRecord) error {
	if r == nil || r.client == nil || r.client.db == nil {
		return nil
	}

	tx, err := r.client.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO blocks (height, app_hash, block_time, epoch_index, tx_count) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (height) DO NOTHING",
		height, appHash, blockTime, int64(epochIndex), len(transitions))
	if err != nil {
		return err
	}

	for _, t := range transitions {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transitions (id, height, kind, signer_id, code, info, processing_fee, storage_fee)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO NOTHING`,
			t.ID, height, t.Kind, t.SignerID, t.Code, t.Info, t.ProcessingFee, t.StorageFee)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// BlockAt returns the recorded app hash and tx count for the given
// height, or sql.ErrNoRows if it was never recorded.
func (r *BlockRepository) BlockAt(ctx context.Context, height int64) (appHash []byte, txCount int, err error) {
	if r == nil || r.client == nil || r.client.db == nil {
		return nil, 0, sql.ErrNoRows
	}
	row := r.client.db.QueryRowContext(ctx, "SELECT app_hash, tx_count FROM blocks WHERE height = $1", height)
	err = row.Scan(&appHash, &txCount)
	return appHash, txCount, err
}
