// Copyright 2025 Certen Protocol

package abci

import (
	"context"

	abcitypes "github.com/cometbft/cometbft/abci/types"

	"github.com/dashpay/platform-sub004/pkg/consensuserror"
)

// ExtendVote returns a single vote extension holding the ids of the
// block's pending withdrawal transactions, concatenated in order. The
// ids are not signed, and no per-transaction extension is produced.
// Nothing populates the pending set, so the extension is always empty.
func (a *App) ExtendVote(ctx context.Context, req *abcitypes.RequestExtendVote) (*abcitypes.ResponseExtendVote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.blockCtx == nil || a.blockCtx.height != req.Height {
		return nil, consensuserror.New(consensuserror.CategoryExecution, consensuserror.CodeCorruptedExecution, "extend vote requested with no matching block execution context")
	}

	return &abcitypes.ResponseExtendVote{VoteExtension: a.expectedVoteExtension()}, nil
}

// VerifyVoteExtension checks a peer's vote extension against what this
// node would have produced itself for the same height and round: reject
// if there is no matching block execution context, or if the extension
// bytes disagree with the locally computed expected set.
func (a *App) VerifyVoteExtension(ctx context.Context, req *abcitypes.RequestVerifyVoteExtension) (*abcitypes.ResponseVerifyVoteExtension, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.blockCtx == nil || a.blockCtx.height != req.Height {
		return &abcitypes.ResponseVerifyVoteExtension{Status: abcitypes.ResponseVerifyVoteExtension_REJECT}, nil
	}

	expected := a.expectedVoteExtension()
	if len(expected) != len(req.VoteExtension) {
		return &abcitypes.ResponseVerifyVoteExtension{Status: abcitypes.ResponseVerifyVoteExtension_REJECT}, nil
	}
	for i := range expected {
		if expected[i] != req.VoteExtension[i] {
			return &abcitypes.ResponseVerifyVoteExtension{Status: abcitypes.ResponseVerifyVoteExtension_REJECT}, nil
		}
	}
	return &abcitypes.ResponseVerifyVoteExtension{Status: abcitypes.ResponseVerifyVoteExtension_ACCEPT}, nil
}

// expectedVoteExtension computes the vote extension this node believes
// is correct for the current block execution context. With no
// withdrawal subsystem wired in yet, this is always empty.
func (a *App) expectedVoteExtension() []byte {
	if len(a.blockCtx.withdrawalTxIDs) == 0 {
		return nil
	}
	out := make([]byte, 0, len(a.blockCtx.withdrawalTxIDs)*32)
	for _, id := range a.blockCtx.withdrawalTxIDs {
		out = append(out, id...)
	}
	return out
}
