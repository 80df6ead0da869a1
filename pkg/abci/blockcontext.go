// Copyright 2025 Certen Protocol

package abci

import (
	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/google/uuid"

	"github.com/dashpay/platform-sub004/pkg/rpc"
	"github.com/dashpay/platform-sub004/pkg/store"
)

// Phase is where the block handler sits in the per-height FSM (§4.C):
// Idle between heights, Proposing while this node builds a proposal,
// Proposed once a proposal (ours or a peer's) has been accepted, and
// Finalizing while FinalizeBlock commits it.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseProposing
	PhaseProposed
	PhaseFinalizing
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseProposing:
		return "proposing"
	case PhaseProposed:
		return "proposed"
	case PhaseFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// txAction classifies what PrepareProposal did with one candidate
// transaction, mirroring the three outcomes named in §4.C.
type txAction int

const (
	txUnmodified txAction = iota
	txRemoved
	txDelayed
)

// txRecord is one entry of the classification PrepareProposal produced,
// retained on the block execution context so ProcessProposal can reject
// a peer's proposal that smuggled in a transaction this node would have
// removed.
type txRecord struct {
	action    txAction
	tx        []byte
	code      uint32
	info      string
	gasWanted int64
	refund    uint64

	// kind and signerID are recorded only for transitions that decoded
	// successfully, so FinalizeBlock can hand the audit log something
	// more useful than the raw transaction bytes.
	kind     string
	signerID []byte
}

// blockExecutionContext is the state that spans every ABCI call
// belonging to a single height: the proposed transaction set and its
// classification, the staged transaction those transitions executed
// against, the chain lock observed while proposing, and the cached
// PrepareProposal response a later ProcessProposal call on the same
// node (acting as proposer) can reuse instead of re-executing.
type blockExecutionContext struct {
	id    uuid.UUID
	height int64
	round  int32

	tx      *store.Transaction
	records []txRecord

	// proposedHash is the block hash ProcessProposal was asked to verify;
	// it is nil until a ProcessProposal call sets it (case 3 in §4.C: the
	// proposer's own node, which ran PrepareProposal without yet knowing
	// the hash consensus will assign).
	proposedHash []byte

	chainLock rpc.ChainLock

	// withdrawalTxIDs holds the ids ExtendVote concatenates into its
	// single vote extension; nothing in this package populates it, so it
	// is always empty.
	withdrawalTxIDs [][]byte

	cachedPrepare *abcitypes.ResponsePrepareProposal
}

// includedCount reports how many transitions this context's classification
// ultimately placed in the proposed block (the Unmodified ones).
func (b *blockExecutionContext) includedCount() int {
	n := 0
	for _, r := range b.records {
		if r.action == txUnmodified {
			n++
		}
	}
	return n
}

// hasRemoved reports whether any candidate transaction was classified
// Removed — a proposal containing one is rejected outright by
// ProcessProposal rather than silently dropped, unlike PrepareProposal's
// own handling of the transactions it assembles itself.
func (b *blockExecutionContext) hasRemoved() bool {
	for _, r := range b.records {
		if r.action == txRemoved {
			return true
		}
	}
	return false
}
