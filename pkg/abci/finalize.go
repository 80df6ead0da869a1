// Copyright 2025 Certen Protocol

package abci

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	abcitypes "github.com/cometbft/cometbft/abci/types"

	"github.com/dashpay/platform-sub004/pkg/auditlog"
	"github.com/dashpay/platform-sub004/pkg/consensuserror"
	"github.com/dashpay/platform-sub004/pkg/statetransition"
)

// FinalizeBlock commits the transaction PrepareProposal or
// ProcessProposal staged for this height and reports each included
// transition's result. The block execution context must already hold a
// live transaction for this exact height — anything else is an
// invariant violation this node cannot recover from by itself, so it is
// surfaced as a CategoryExecution error rather than swallowed, and must
// never reach a production chain.
func (a *App) FinalizeBlock(ctx context.Context, req *abcitypes.RequestFinalizeBlock) (*abcitypes.ResponseFinalizeBlock, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	defer func() { a.metrics.ObserveFinalizeBlock(time.Since(start)) }()

	a.phase = PhaseFinalizing
	b := a.blockCtx
	if b == nil || b.tx == nil || b.height != req.Height {
		return nil, consensuserror.New(consensuserror.CategoryExecution, consensuserror.CodeCorruptedExecution, "finalize block called with no matching block execution context")
	}

	results := make([]*abcitypes.ExecTxResult, 0, len(req.Txs))
	auditRecords := make([]auditlog.TransitionRecord, 0, len(b.records))
	for _, r := range b.records {
		if r.action != txUnmodified {
			continue
		}
		if len(results) >= len(req.Txs) {
			break
		}
		results = append(results, &abcitypes.ExecTxResult{
			Code:      r.code,
			Log:       r.info,
			Info:      r.info,
			GasWanted: r.gasWanted,
		})
		a.metrics.TxFinalized(strconv.FormatUint(uint64(r.code), 10))
		if r.gasWanted > 0 {
			a.metrics.FeesCharged(uint64(r.gasWanted))
		}
		if r.refund > 0 {
			a.metrics.RefundsCredited(r.refund)
		}

		sum := sha256.Sum256(r.tx)
		auditRecords = append(auditRecords, auditlog.TransitionRecord{
			ID:            hex.EncodeToString(sum[:]),
			Kind:          r.kind,
			SignerID:      r.signerID,
			Code:          r.code,
			Info:          r.info,
			ProcessingFee: uint64(r.gasWanted),
		})
	}

	commitStart := time.Now()
	appHash := b.tx.RootHash()
	b.tx.Commit()
	a.metrics.StoreCommit(time.Since(commitStart))

	a.latestHeight = req.Height
	a.lastAppHash = appHash
	if b.chainLock.Height > 0 {
		a.lastChainLock = b.chainLock
	}

	info := a.epochs.ForBlockTime(req.Time, a.lastEpochIndex)
	a.lastEpochIndex = info.Index

	if err := a.audit.RecordBlock(ctx, req.Height, appHash, req.Time, a.lastEpochIndex, auditRecords); err != nil {
		a.logger.Printf("audit log: record block %d: %v", req.Height, err)
	}

	a.blockCtx = nil
	a.phase = PhaseIdle

	a.metrics.BlockFinalized(req.Height)
	a.metrics.EpochAdvanced(a.lastEpochIndex)

	return &abcitypes.ResponseFinalizeBlock{TxResults: results, AppHash: appHash}, nil
}

// CheckTx runs a candidate transition through the full execution
// pipeline against a disposable transaction opened on top of the last
// committed state, then discards it: the mempool only needs to know
// whether the transition would be accepted and roughly what it would
// cost, never its actual effect.
func (a *App) CheckTx(ctx context.Context, req *abcitypes.RequestCheckTx) (*abcitypes.ResponseCheckTx, error) {
	a.mu.Lock()
	st := a.store
	version := a.platformVersion
	costParams := a.costParams
	epoch := a.lastEpochIndex
	reg := a.metrics
	a.mu.Unlock()

	start := time.Now()
	defer func() { reg.ObserveCheckTx(time.Since(start)) }()

	t, err := statetransition.Decode(req.Tx)
	if err != nil {
		return &abcitypes.ResponseCheckTx{Code: errCode(err), Log: err.Error(), Info: err.Error()}, nil
	}

	tx := st.Begin(epoch, costParams)
	key, err := statetransition.ResolveSignerKey(tx, t)
	if err != nil {
		return &abcitypes.ResponseCheckTx{Code: errCode(err), Log: err.Error(), Info: err.Error()}, nil
	}

	execCtx := &statetransition.ExecutionContext{Tx: tx, Version: version, Epoch: epoch, CostParams: costParams}
	outcome := statetransition.Execute(execCtx, t, key)
	tx.Rollback()

	if outcome.Kind == statetransition.SuccessfulExecution {
		gas := int64(0)
		if outcome.Fee != nil {
			gas = int64(outcome.Fee.ProcessingFee + outcome.Fee.StorageFee)
		}
		return &abcitypes.ResponseCheckTx{Code: 0, GasWanted: gas}, nil
	}

	gas := int64(0)
	if outcome.Fee != nil {
		gas = int64(outcome.Fee.ProcessingFee)
	}
	return &abcitypes.ResponseCheckTx{
		Code:      errCode(outcome.Err),
		Log:       errInfo(outcome.Err),
		Info:      errInfo(outcome.Err),
		GasWanted: gas,
	}, nil
}
