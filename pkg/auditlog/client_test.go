// Copyright 2025 Certen Protocol

package auditlog

import (
	"context"
	"testing"
	"time"

	"github.com/dashpay/platform-sub004/pkg/config"
)

func TestNewClient_DisabledWithoutDatabaseURL(t *testing.T) {
	cfg := &config.Config{}
	client, err := NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client != nil {
		t.Errorf("expected a nil client when DatabaseURL is unset, got %+v", client)
	}
}

func TestNewClient_DisabledWithNilConfig(t *testing.T) {
	client, err := NewClient(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client != nil {
		t.Errorf("expected a nil client for a nil config, got %+v", client)
	}
}

func TestBlockRepository_NilClientIsNoOp(t *testing.T) {
	repo := NewBlockRepository(nil)
	err := repo.RecordBlock(context.Background(), 1, []byte("hash"), time.Now(), 0, []TransitionRecord{
		{ID: "abc", Kind: "identityCreate", Code: 0},
	})
	if err != nil {
		t.Fatalf("expected a nil-client repository to no-op, got error: %v", err)
	}
}

func TestBlockRepository_NilReceiverIsNoOp(t *testing.T) {
	var repo *BlockRepository
	if err := repo.RecordBlock(context.Background(), 1, nil, time.Now(), 0, nil); err != nil {
		t.Fatalf("expected a nil repository to no-op, got error: %v", err)
	}
}

func TestMigrateUp_NilClientIsNoOp(t *testing.T) {
	var client *Client
	if err := client.MigrateUp(context.Background()); err != nil {
		t.Fatalf("expected MigrateUp on a nil client to no-op, got error: %v", err)
	}
}
