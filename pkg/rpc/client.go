// Copyright 2025 Certen Protocol

// Package rpc defines the canonical interface for querying the base chain
// this layer-2 checkpoints into. All block-handler code MUST depend on
// this interface rather than a concrete transport, so the same FSM logic
// runs unchanged against a production RPC client or a deterministic mock
// in tests.
package rpc

import "context"

// ChainLock is a base-chain checkpoint: a signed attestation that a given
// base-chain height and block hash are final. PrepareProposal includes
// the newest chain lock it observes in a proposed block, never an older
// one than what the chain has already agreed on.
type ChainLock struct {
	Height    uint64
	BlockHash [32]byte
	Signature []byte
}

// IsNewerThan reports whether l is a strictly later checkpoint than prev.
// A zero-value prev (no chain lock observed yet) is always older.
func (l ChainLock) IsNewerThan(prev ChainLock) bool {
	return l.Height > prev.Height
}

// BaseChainClient is the narrow surface the block handler needs from the
// base chain: the newest chain lock, and block lookups for whatever
// withdrawal/anchor verification a future subsystem needs. It never
// exposes transaction submission — this layer only reads the base chain.
type BaseChainClient interface {
	// GetBestChainLock returns the newest chain lock the base chain has
	// observed. An implementation with nothing to report yet returns the
	// zero ChainLock and a nil error.
	GetBestChainLock(ctx context.Context) (ChainLock, error)

	// GetBlockHash resolves a base-chain height to its block hash.
	GetBlockHash(ctx context.Context, height uint64) ([32]byte, error)

	// GetBlockJSON returns the raw JSON body of the block identified by
	// hash, for callers that need fields this interface doesn't surface
	// directly.
	GetBlockJSON(ctx context.Context, hash [32]byte) ([]byte, error)
}
