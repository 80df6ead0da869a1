// Copyright 2025 Certen Protocol
//
// Store Tests

package store

import (
	"bytes"
	"testing"

	"github.com/dashpay/platform-sub004/pkg/types"
)

func TestStore_InsertAndGet(t *testing.T) {
	s := NewStore()
	var ws WriteSet
	owner := types.Identifier{1}
	ws.Insert(Path{}, []byte("alice"), NewItem([]byte("hello")), &owner, 0)

	if _, err := s.ApplyWriteSet(&ws, 0, true, CostParams{}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	el, ok := s.Get(Path{}, []byte("alice"))
	if !ok {
		t.Fatalf("expected element to be found")
	}
	if !bytes.Equal(el.Item, []byte("hello")) {
		t.Errorf("item mismatch: got %q", el.Item)
	}
}

func TestStore_RootHashChangesOnWrite(t *testing.T) {
	s := NewStore()
	before := s.RootHash()

	var ws WriteSet
	owner := types.Identifier{2}
	ws.Insert(Path{}, []byte("k"), NewItem([]byte("v")), &owner, 0)
	if _, err := s.ApplyWriteSet(&ws, 0, true, CostParams{}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	after := s.RootHash()
	if bytes.Equal(before, after) {
		t.Errorf("root hash did not change after write")
	}
}

func TestStore_SubtreeHierarchyAffectsRoot(t *testing.T) {
	s := NewStore()

	var create WriteSet
	create.InsertSubtree(Path{}, []byte("identities"), false)
	if _, err := s.ApplyWriteSet(&create, 0, true, CostParams{}); err != nil {
		t.Fatalf("create subtree failed: %v", err)
	}
	rootAfterCreate := s.RootHash()

	var write WriteSet
	owner := types.Identifier{3}
	childPath := PathFromStrings("identities")
	write.Insert(childPath, []byte("id1"), NewItem([]byte("balance=100")), &owner, 0)
	if _, err := s.ApplyWriteSet(&write, 0, true, CostParams{}); err != nil {
		t.Fatalf("write into subtree failed: %v", err)
	}
	rootAfterWrite := s.RootHash()

	if bytes.Equal(rootAfterCreate, rootAfterWrite) {
		t.Errorf("root hash should change when a descendant subtree changes")
	}
}

func TestStore_EstimatedModeDoesNotMutate(t *testing.T) {
	s := NewStore()
	before := s.RootHash()

	var ws WriteSet
	owner := types.Identifier{4}
	ws.Insert(Path{}, []byte("k"), NewItem([]byte("v")), &owner, 0)
	result, err := s.ApplyWriteSet(&ws, 0, false, CostParams{})
	if err != nil {
		t.Fatalf("estimated apply failed: %v", err)
	}
	if !result.Estimated {
		t.Errorf("expected Estimated=true")
	}

	after := s.RootHash()
	if !bytes.Equal(before, after) {
		t.Errorf("estimated mode must not mutate the store")
	}
	if _, ok := s.Get(Path{}, []byte("k")); ok {
		t.Errorf("estimated mode must not persist the write")
	}
}

func TestTransaction_RollbackToSavepoint(t *testing.T) {
	s := NewStore()
	tx := s.Begin(0, CostParams{})

	var first WriteSet
	owner := types.Identifier{5}
	first.Insert(Path{}, []byte("a"), NewItem([]byte("1")), &owner, 0)
	if _, err := tx.Apply(&first); err != nil {
		t.Fatalf("apply first failed: %v", err)
	}

	tx.SetSavepoint()

	var second WriteSet
	second.Insert(Path{}, []byte("b"), NewItem([]byte("2")), &owner, 0)
	if _, err := tx.Apply(&second); err != nil {
		t.Fatalf("apply second failed: %v", err)
	}

	if _, ok := tx.Get(Path{}, []byte("b")); !ok {
		t.Fatalf("expected b to be visible before rollback")
	}

	if err := tx.RollbackToSavepoint(); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	if _, ok := tx.Get(Path{}, []byte("b")); ok {
		t.Errorf("expected b to be gone after rollback to savepoint")
	}
	if _, ok := tx.Get(Path{}, []byte("a")); !ok {
		t.Errorf("expected a to survive rollback (written before the savepoint)")
	}

	tx.Commit()
	if _, ok := s.Get(Path{}, []byte("a")); !ok {
		t.Errorf("expected committed store to contain a")
	}
	if _, ok := s.Get(Path{}, []byte("b")); ok {
		t.Errorf("expected committed store to not contain rolled-back b")
	}
}

func TestTransaction_RollbackDiscardsEverything(t *testing.T) {
	s := NewStore()
	before := s.RootHash()

	tx := s.Begin(0, CostParams{})
	var ws WriteSet
	owner := types.Identifier{6}
	ws.Insert(Path{}, []byte("x"), NewItem([]byte("y")), &owner, 0)
	if _, err := tx.Apply(&ws); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	tx.Rollback()

	if !bytes.Equal(before, s.RootHash()) {
		t.Errorf("rollback must leave the store untouched")
	}
}

func TestStore_ProofRoundTrip(t *testing.T) {
	s := NewStore()

	var create WriteSet
	create.InsertSubtree(Path{}, []byte("documents"), false)
	if _, err := s.ApplyWriteSet(&create, 0, true, CostParams{}); err != nil {
		t.Fatalf("create subtree failed: %v", err)
	}

	var write WriteSet
	owner := types.Identifier{7}
	docsPath := PathFromStrings("documents")
	write.Insert(docsPath, []byte("doc1"), NewItem([]byte("payload")), &owner, 0)
	write.Insert(docsPath, []byte("doc2"), NewItem([]byte("other")), &owner, 0)
	if _, err := s.ApplyWriteSet(&write, 0, true, CostParams{}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	proof, err := s.GenerateProof(docsPath, []byte("doc1"))
	if err != nil {
		t.Fatalf("generate proof failed: %v", err)
	}

	if err := proof.Verify(s.RootHash()); err != nil {
		t.Errorf("proof failed to verify against the true root: %v", err)
	}

	tamperedRoot := append([]byte{}, s.RootHash()...)
	tamperedRoot[0] ^= 0xff
	if err := proof.Verify(tamperedRoot); err == nil {
		t.Errorf("proof unexpectedly verified against a tampered root")
	}
}

func TestStore_ReplaceShrinkRefundsOwner(t *testing.T) {
	s := NewStore()
	owner := types.Identifier{8}

	var insert WriteSet
	insert.Insert(Path{}, []byte("doc"), NewItem(bytes.Repeat([]byte("x"), 100)), &owner, 5)
	if _, err := s.ApplyWriteSet(&insert, 5, true, CostParams{}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	var replace WriteSet
	replace.Replace(Path{}, []byte("doc"), NewItem(bytes.Repeat([]byte("x"), 20)), &owner, 7)
	result, err := s.ApplyWriteSet(&replace, 7, true, CostParams{})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	credits, ok := result.Refunds[owner][5]
	if !ok || credits != 80 {
		t.Errorf("expected 80 credits refunded to epoch 5, got %v", result.Refunds)
	}
}

func TestStore_DeleteNonexistentFails(t *testing.T) {
	s := NewStore()
	var ws WriteSet
	ws.Delete(Path{}, []byte("missing"))
	if _, err := s.ApplyWriteSet(&ws, 0, true, CostParams{}); err != ErrElementNotFound {
		t.Errorf("expected ErrElementNotFound, got %v", err)
	}
}
