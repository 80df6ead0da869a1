// Copyright 2025 Certen Protocol

package rpc

import (
	"context"
	"reflect"
	"testing"
)

func TestMockClient_BestChainLockDefaultsToZero(t *testing.T) {
	m := NewMockClient()
	lock, err := m.GetBestChainLock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(lock, ChainLock{}) {
		t.Errorf("expected zero chain lock, got %+v", lock)
	}
}

func TestMockClient_SetAndGetBestChainLock(t *testing.T) {
	m := NewMockClient()
	want := ChainLock{Height: 42, BlockHash: [32]byte{1, 2, 3}}
	m.SetBestChainLock(want)

	got, err := m.GetBestChainLock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestMockClient_GetBlockHashUnknownHeight(t *testing.T) {
	m := NewMockClient()
	if _, err := m.GetBlockHash(context.Background(), 7); err == nil {
		t.Fatalf("expected error for unregistered height")
	}
}

func TestMockClient_PutAndGetBlock(t *testing.T) {
	m := NewMockClient()
	hash := [32]byte{9}
	body := []byte(`{"height":7}`)
	m.PutBlock(7, hash, body)

	gotHash, err := m.GetBlockHash(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotHash != hash {
		t.Errorf("got hash %x, want %x", gotHash, hash)
	}

	gotBody, err := m.GetBlockJSON(context.Background(), hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(gotBody) != string(body) {
		t.Errorf("got body %q, want %q", gotBody, body)
	}
}

func TestChainLock_IsNewerThan(t *testing.T) {
	older := ChainLock{Height: 1}
	newer := ChainLock{Height: 2}

	if !newer.IsNewerThan(older) {
		t.Errorf("expected newer to be newer than older")
	}
	if older.IsNewerThan(newer) {
		t.Errorf("expected older to not be newer than newer")
	}
	if newer.IsNewerThan(newer) {
		t.Errorf("expected a chain lock to not be newer than itself")
	}
}
