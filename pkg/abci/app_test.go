// Copyright 2025 Certen Protocol

package abci

import (
	"context"
	"testing"
	"time"

	abcitypes "github.com/cometbft/cometbft/abci/types"

	"github.com/dashpay/platform-sub004/pkg/auditlog"
	"github.com/dashpay/platform-sub004/pkg/fees"
	"github.com/dashpay/platform-sub004/pkg/metrics"
	"github.com/dashpay/platform-sub004/pkg/rpc"
	"github.com/dashpay/platform-sub004/pkg/store"
	"github.com/dashpay/platform-sub004/pkg/types"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	genesis := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return NewApp(
		store.NewStore(),
		rpc.NewMockClient(),
		fees.NewEpochTracker(genesis, 24*time.Hour),
		metrics.NewNoopRegistry(),
		auditlog.NewBlockRepository(nil),
		"certen-test",
		types.CurrentPlatformVersion,
		store.CostParams{StorageCreditsPerByte: 50, ProcessingCreditsPerOp: 1000, ProcessingCreditsPerByte: 5},
		1<<20,
	)
}

func TestApp_InitChainReturnsAppHash(t *testing.T) {
	a := newTestApp(t)

	resp, err := a.InitChain(context.Background(), &abcitypes.RequestInitChain{InitialHeight: 1})
	if err != nil {
		t.Fatalf("InitChain: %v", err)
	}
	if resp.AppHash == nil {
		t.Errorf("expected a non-nil genesis app hash")
	}
}

func TestApp_EmptyBlockLifecycle(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	blockTime := time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)

	if _, err := a.InitChain(ctx, &abcitypes.RequestInitChain{InitialHeight: 1}); err != nil {
		t.Fatalf("InitChain: %v", err)
	}

	prepResp, err := a.PrepareProposal(ctx, &abcitypes.RequestPrepareProposal{
		Height:     1,
		Round:      0,
		Time:       blockTime,
		MaxTxBytes: 1 << 20,
	})
	if err != nil {
		t.Fatalf("PrepareProposal: %v", err)
	}
	if len(prepResp.Txs) != 0 {
		t.Fatalf("expected no transactions in an empty proposal, got %d", len(prepResp.Txs))
	}

	procResp, err := a.ProcessProposal(ctx, &abcitypes.RequestProcessProposal{
		Height: 1,
		Round:  0,
		Time:   blockTime,
		Txs:    prepResp.Txs,
		Hash:   []byte("block-hash"),
	})
	if err != nil {
		t.Fatalf("ProcessProposal: %v", err)
	}
	if procResp.Status != abcitypes.ResponseProcessProposal_ACCEPT {
		t.Fatalf("expected the proposer's own proposal to be accepted, got %v", procResp.Status)
	}

	finResp, err := a.FinalizeBlock(ctx, &abcitypes.RequestFinalizeBlock{
		Height: 1,
		Time:   blockTime,
		Txs:    prepResp.Txs,
		Hash:   []byte("block-hash"),
	})
	if err != nil {
		t.Fatalf("FinalizeBlock: %v", err)
	}
	if finResp.AppHash == nil {
		t.Errorf("expected a non-nil app hash after finalizing an empty block")
	}

	if _, err := a.Commit(ctx, &abcitypes.RequestCommit{}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestApp_CheckTxRejectsGarbage(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	if _, err := a.InitChain(ctx, &abcitypes.RequestInitChain{InitialHeight: 1}); err != nil {
		t.Fatalf("InitChain: %v", err)
	}

	resp, err := a.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: []byte("not a valid transition")})
	if err != nil {
		t.Fatalf("CheckTx: %v", err)
	}
	if resp.Code == 0 {
		t.Errorf("expected a malformed transition to be rejected with a non-zero code")
	}
}
