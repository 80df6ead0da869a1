// Copyright 2025 Certen Protocol

package abci

import (
	"context"
	"strconv"
	"time"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/google/uuid"

	"github.com/dashpay/platform-sub004/pkg/statetransition"
	"github.com/dashpay/platform-sub004/pkg/store"
)

var txActionLabel = map[txAction]string{
	txUnmodified: "kept",
	txRemoved:    "removed",
	txDelayed:    "delayed",
}

// PrepareProposal assembles this node's proposed transaction set (§4.C):
// it runs every candidate transition through the execution pipeline
// against a staged transaction, classifying each as kept, removed for a
// consensus-level failure that could never be charged (a malformed
// transition, or one whose signer cannot be resolved), or delayed
// because it would push the block past MaxTxBytes. Removed transitions
// are dropped silently here — ProcessProposal is where a proposal that
// smuggles one back in gets rejected.
func (a *App) PrepareProposal(ctx context.Context, req *abcitypes.RequestPrepareProposal) (*abcitypes.ResponsePrepareProposal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	defer func() { a.metrics.ObservePrepareProposal(time.Since(start)) }()

	a.phase = PhaseProposing

	tx, epoch := a.transactionForProposal(req.Height, req.Round, req.Time)

	lock, err := a.chain.GetBestChainLock(ctx)
	if err != nil {
		a.logger.Printf("chain lock lookup failed, proposing without one: %v", err)
		lock = a.lastChainLock
	} else if !lock.IsNewerThan(a.lastChainLock) {
		lock = a.lastChainLock
	}

	maxTxBytes := req.MaxTxBytes
	if maxTxBytes <= 0 {
		maxTxBytes = a.maxTxBytes
	}

	records := make([]txRecord, 0, len(req.Txs))
	included := make([][]byte, 0, len(req.Txs))
	var usedBytes int64
	pastLimit := false

	for _, raw := range req.Txs {
		if pastLimit || usedBytes+int64(len(raw)) > maxTxBytes {
			pastLimit = true
			records = append(records, txRecord{action: txDelayed, tx: raw})
			a.metrics.TxClassified(txActionLabel[txDelayed])
			continue
		}

		t, derr := statetransition.Decode(raw)
		if derr != nil {
			records = append(records, txRecord{action: txRemoved, tx: raw})
			a.metrics.TxClassified(txActionLabel[txRemoved])
			continue
		}
		key, kerr := statetransition.ResolveSignerKey(tx, t)
		if kerr != nil {
			records = append(records, txRecord{action: txRemoved, tx: raw})
			a.metrics.TxClassified(txActionLabel[txRemoved])
			continue
		}

		execCtx := &statetransition.ExecutionContext{Tx: tx, Version: a.platformVersion, Epoch: epoch, CostParams: a.costParams}
		outcome := statetransition.Execute(execCtx, t, key)

		action, code, info, gas, refund := classify(outcome)
		if action == txUnmodified {
			usedBytes += int64(len(raw))
			included = append(included, raw)
		}
		signerID := make([]byte, len(t.SignerID))
		copy(signerID, t.SignerID[:])
		records = append(records, txRecord{
			action: action, tx: raw, code: code, info: info, gasWanted: gas, refund: refund,
			kind: strconv.Itoa(int(t.Kind)), signerID: signerID,
		})
		a.metrics.TxClassified(txActionLabel[action])
	}

	resp := &abcitypes.ResponsePrepareProposal{Txs: included}

	a.blockCtx = &blockExecutionContext{
		id:            uuid.New(),
		height:        req.Height,
		round:         req.Round,
		tx:            tx,
		records:       records,
		chainLock:     lock,
		cachedPrepare: resp,
	}

	return resp, nil
}

// transactionForProposal returns the staged transaction this proposal
// should execute against. At the chain's initial height the genesis
// transaction opened by InitChain is reused across rounds (rolled back
// to its savepoint first if this is a re-proposal); every other height
// opens a fresh transaction against the last committed store state.
func (a *App) transactionForProposal(height int64, round int32, blockTime time.Time) (*store.Transaction, uint64) {
	if height == a.initialHeight && a.blockCtx != nil && a.blockCtx.tx != nil && a.blockCtx.height == height {
		tx := a.blockCtx.tx
		if round > 0 {
			if err := tx.RollbackToSavepoint(); err != nil {
				a.logger.Printf("rollback genesis transaction to savepoint: %v", err)
			}
		}
		return tx, a.lastEpochIndex
	}

	info := a.epochs.ForBlockTime(blockTime, a.lastEpochIndex)
	tx := a.store.Begin(info.Index, a.costParams)
	tx.SetSavepoint()
	return tx, info.Index
}
