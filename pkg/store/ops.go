// Copyright 2025 Certen Protocol

package store

import "github.com/dashpay/platform-sub004/pkg/types"

// OpKind is the kind of a single low-level write operation.
type OpKind uint8

const (
	OpInsert OpKind = iota
	OpReplace
	OpDelete
	OpInsertSubtree
	// OpInsertSumSubtree creates a child subtree whose aggregate exposes a
	// running sum of its SumItem leaves (used for balance trees).
	OpInsertSumSubtree
)

// Op is one low-level write against the store: the unit the executor
// produces and the fee engine costs (§4.A "Transactions").
type Op struct {
	Kind    OpKind
	Path    Path
	Key     []byte
	Element Element

	// Owner/Epoch are supplied by the caller issuing the write so storage
	// flags can be merged correctly; both are ignored for OpDelete.
	Owner *types.Identifier
	Epoch uint64
}

// WriteSet is an ordered batch of low-level operations. Order matters:
// operations are applied in the order they were appended, and later
// operations on the same address override earlier ones within the same
// batch (mirrors a single transition's write-set).
type WriteSet struct {
	Ops []Op
}

func (w *WriteSet) Insert(path Path, key []byte, el Element, owner *types.Identifier, epoch uint64) {
	w.Ops = append(w.Ops, Op{Kind: OpInsert, Path: path, Key: key, Element: el, Owner: owner, Epoch: epoch})
}

func (w *WriteSet) Replace(path Path, key []byte, el Element, owner *types.Identifier, epoch uint64) {
	w.Ops = append(w.Ops, Op{Kind: OpReplace, Path: path, Key: key, Element: el, Owner: owner, Epoch: epoch})
}

func (w *WriteSet) Delete(path Path, key []byte) {
	w.Ops = append(w.Ops, Op{Kind: OpDelete, Path: path, Key: key})
}

func (w *WriteSet) InsertSubtree(path Path, key []byte, sum bool) {
	kind := OpInsertSubtree
	if sum {
		kind = OpInsertSumSubtree
	}
	w.Ops = append(w.Ops, Op{Kind: kind, Path: path, Key: key})
}
