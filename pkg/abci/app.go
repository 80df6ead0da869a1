// Copyright 2025 Certen Protocol
//
// Package abci implements the block-lifecycle consensus-engine FSM
// (§4.C): the ABCI application CometBFT drives through InitChain,
// PrepareProposal, ProcessProposal, ExtendVote, VerifyVoteExtension,
// FinalizeBlock, Commit, CheckTx, and Query.
package abci

import (
	"context"
	"log"
	"sync"
	"time"

	abcitypes "github.com/cometbft/cometbft/abci/types"

	"github.com/dashpay/platform-sub004/pkg/auditlog"
	"github.com/dashpay/platform-sub004/pkg/fees"
	"github.com/dashpay/platform-sub004/pkg/metrics"
	"github.com/dashpay/platform-sub004/pkg/query"
	"github.com/dashpay/platform-sub004/pkg/rpc"
	"github.com/dashpay/platform-sub004/pkg/store"
	"github.com/dashpay/platform-sub004/pkg/types"
)

// App is the ABCI application for one validator node. It holds exactly
// one live *store.Transaction at a time — the block currently being
// proposed or finalized — and the committed *store.Store everything
// else reads from.
type App struct {
	mu sync.Mutex

	logger *log.Logger

	store   *store.Store
	chain   rpc.BaseChainClient
	epochs  *fees.EpochTracker
	metrics metrics.Registry
	audit   *auditlog.BlockRepository

	chainID         string
	platformVersion types.PlatformVersion
	costParams      store.CostParams
	maxTxBytes      int64
	initialHeight   int64

	phase          Phase
	latestHeight   int64
	lastAppHash    []byte
	lastEpochIndex uint64
	lastChainLock  rpc.ChainLock

	blockCtx *blockExecutionContext
}

// NewApp constructs an App against an existing (possibly empty) store.
// chain may be rpc.NewMockClient() for a devnet node running without a
// live base-chain peer. reg may be metrics.NewNoopRegistry() for tests
// that don't want to touch the process's default Prometheus registry.
// audit may be nil, in which case finalized blocks are simply not
// indexed into Postgres.
func NewApp(st *store.Store, chain rpc.BaseChainClient, epochs *fees.EpochTracker, reg metrics.Registry, audit *auditlog.BlockRepository, chainID string, version types.PlatformVersion, costParams store.CostParams, maxTxBytes int64) *App {
	return &App{
		logger:          log.New(log.Writer(), "[abci] ", log.LstdFlags),
		store:           st,
		chain:           chain,
		epochs:          epochs,
		metrics:         reg,
		audit:           audit,
		chainID:         chainID,
		platformVersion: version,
		costParams:      costParams,
		maxTxBytes:      maxTxBytes,
		initialHeight:   1,
		phase:           PhaseIdle,
	}
}

var _ abcitypes.Application = (*App)(nil)

func (a *App) Info(ctx context.Context, req *abcitypes.RequestInfo) (*abcitypes.ResponseInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return &abcitypes.ResponseInfo{
		Data:             "certen-platform",
		Version:          req.AbciVersion,
		AppVersion:       uint64(a.platformVersion),
		LastBlockHeight:  a.latestHeight,
		LastBlockAppHash: a.lastAppHash,
	}, nil
}

// InitChain opens the transaction genesis (and every re-proposal of the
// genesis block, across rounds) executes against, and returns the app
// hash of the freshly opened, still-empty store.
func (a *App) InitChain(ctx context.Context, req *abcitypes.RequestInitChain) (*abcitypes.ResponseInitChain, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if req.InitialHeight > 0 {
		a.initialHeight = req.InitialHeight
	}

	tx := a.store.Begin(0, a.costParams)
	tx.SetSavepoint()
	a.blockCtx = &blockExecutionContext{height: a.initialHeight, tx: tx}
	a.phase = PhaseIdle

	return &abcitypes.ResponseInitChain{
		AppHash: tx.RootHash(),
	}, nil
}

// Commit finalizes the height FinalizeBlock just committed into the
// store and reports the retain height for CometBFT's pruning.
func (a *App) Commit(ctx context.Context, req *abcitypes.RequestCommit) (*abcitypes.ResponseCommit, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	retain := a.latestHeight - 100
	if retain < 0 {
		retain = 0
	}
	return &abcitypes.ResponseCommit{RetainHeight: retain}, nil
}

func (a *App) Query(ctx context.Context, req *abcitypes.RequestQuery) (*abcitypes.ResponseQuery, error) {
	a.mu.Lock()
	snapshot := a.store
	height := a.latestHeight
	a.mu.Unlock()

	start := time.Now()
	resp, err := query.Handle(snapshot, query.Request{
		Path:  req.Path,
		Data:  req.Data,
		Prove: req.Prove,
	})
	if err != nil {
		a.metrics.QueryHandled(req.Path, "error", time.Since(start))
		return &abcitypes.ResponseQuery{Code: 1, Log: err.Error()}, nil
	}
	a.metrics.QueryHandled(req.Path, "ok", time.Since(start))
	resp.Metadata = query.Metadata{Height: height, ChainID: a.chainID}

	// The store's own layered Merkle proof (pkg/store.Proof) has no
	// equivalent in cometbft's ics23 ProofOps type, so a prove-mode
	// answer carries its proofs inline in Value as JSON instead of
	// populating ResponseQuery.ProofOps; a light client verifies them
	// with store.Proof.Verify against this response's app hash.
	envelope, err := query.Encode(resp)
	if err != nil {
		return &abcitypes.ResponseQuery{Code: 1, Log: err.Error()}, nil
	}
	return &abcitypes.ResponseQuery{
		Code:   0,
		Key:    resp.Key,
		Value:  envelope,
		Height: height,
	}, nil
}

// Snapshot methods: this platform version does not support state-sync
// snapshots; CometBFT falls back to block-sync when every peer aborts
// the same way.
func (a *App) ListSnapshots(ctx context.Context, req *abcitypes.RequestListSnapshots) (*abcitypes.ResponseListSnapshots, error) {
	return &abcitypes.ResponseListSnapshots{}, nil
}

func (a *App) OfferSnapshot(ctx context.Context, req *abcitypes.RequestOfferSnapshot) (*abcitypes.ResponseOfferSnapshot, error) {
	return &abcitypes.ResponseOfferSnapshot{Result: abcitypes.ResponseOfferSnapshot_ABORT}, nil
}

func (a *App) LoadSnapshotChunk(ctx context.Context, req *abcitypes.RequestLoadSnapshotChunk) (*abcitypes.ResponseLoadSnapshotChunk, error) {
	return &abcitypes.ResponseLoadSnapshotChunk{}, nil
}

func (a *App) ApplySnapshotChunk(ctx context.Context, req *abcitypes.RequestApplySnapshotChunk) (*abcitypes.ResponseApplySnapshotChunk, error) {
	return &abcitypes.ResponseApplySnapshotChunk{Result: abcitypes.ResponseApplySnapshotChunk_ABORT}, nil
}
