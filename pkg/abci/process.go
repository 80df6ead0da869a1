// Copyright 2025 Certen Protocol

package abci

import (
	"bytes"
	"context"
	"strconv"

	abcitypes "github.com/cometbft/cometbft/abci/types"

	"github.com/dashpay/platform-sub004/pkg/statetransition"
)

// ProcessProposal validates a proposed block before this node votes on
// it (§4.C). Four cases, in order:
//
//  1. The cached context is for a different round: stale, drop it and
//     validate the proposal from scratch.
//  2. Same round, and the cached context already recorded this exact
//     block hash: this is a redelivery of a proposal already validated;
//     accept with the cached verdict.
//  3. Same round, no hash recorded yet, and the proposed transaction
//     count and this node's own PrepareProposal result agree: this is
//     the proposer's own node seeing its proposal come back through
//     consensus; record the hash and accept.
//  4. Same round but the hash or transaction set disagrees with the
//     cached context: reject — either a forged proposal or a bug.
//
// Anything else (no cached context for this round at all) is validated
// fresh: every transition is decoded, resolved, and executed; a
// proposal containing one this node would have classified Removed is
// rejected outright, unlike PrepareProposal which drops such
// transitions from its own proposal silently.
func (a *App) ProcessProposal(ctx context.Context, req *abcitypes.RequestProcessProposal) (*abcitypes.ResponseProcessProposal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b := a.blockCtx

	if b != nil && b.height == req.Height && b.round == req.Round {
		if b.proposedHash != nil {
			if bytes.Equal(b.proposedHash, req.Hash) {
				a.phase = PhaseProposed
				return accept(), nil
			}
			return reject(), nil
		}

		if len(req.Txs) == b.includedCount() {
			b.proposedHash = req.Hash
			a.phase = PhaseProposed
			return accept(), nil
		}
		return reject(), nil
	}

	// No usable cached context for this (height, round): either this
	// node did not propose, or the cached context is for a stale round.
	a.blockCtx = nil
	tx, epoch := a.transactionForProposal(req.Height, req.Round, req.Time)

	fresh := &blockExecutionContext{height: req.Height, round: req.Round, tx: tx, proposedHash: req.Hash}
	for _, raw := range req.Txs {
		t, derr := statetransition.Decode(raw)
		if derr != nil {
			fresh.records = append(fresh.records, txRecord{action: txRemoved, tx: raw})
			continue
		}
		key, kerr := statetransition.ResolveSignerKey(tx, t)
		if kerr != nil {
			fresh.records = append(fresh.records, txRecord{action: txRemoved, tx: raw})
			continue
		}
		execCtx := &statetransition.ExecutionContext{Tx: tx, Version: a.platformVersion, Epoch: epoch, CostParams: a.costParams}
		outcome := statetransition.Execute(execCtx, t, key)
		action, code, info, gas, refund := classify(outcome)
		signerID := make([]byte, len(t.SignerID))
		copy(signerID, t.SignerID[:])
		fresh.records = append(fresh.records, txRecord{
			action: action, tx: raw, code: code, info: info, gasWanted: gas, refund: refund,
			kind: strconv.Itoa(int(t.Kind)), signerID: signerID,
		})
	}

	if fresh.hasRemoved() {
		return reject(), nil
	}

	a.blockCtx = fresh
	a.phase = PhaseProposed
	return accept(), nil
}

func accept() *abcitypes.ResponseProcessProposal {
	return &abcitypes.ResponseProcessProposal{Status: abcitypes.ResponseProcessProposal_ACCEPT}
}

func reject() *abcitypes.ResponseProcessProposal {
	return &abcitypes.ResponseProcessProposal{Status: abcitypes.ResponseProcessProposal_REJECT}
}
