// Copyright 2025 Certen Protocol

package store

import (
	"sync"

	"github.com/dashpay/platform-sub004/pkg/types"
)

// treeAccessor abstracts "get or create a subtree by path" so the same
// apply logic serves both direct (non-transactional) writes against the
// live store and copy-on-write writes inside a Transaction.
type treeAccessor interface {
	get(path Path) (*subtree, bool)
	getOrCreate(path Path, isSum bool) *subtree
}

// Store is the authenticated hierarchical key-value tree: every other
// component reads and writes through it. The zero value is not usable;
// construct with NewStore.
type Store struct {
	mu       sync.RWMutex
	subtrees map[string]*subtree
}

// NewStore creates an empty store with just the root subtree.
func NewStore() *Store {
	s := &Store{subtrees: make(map[string]*subtree)}
	root := newSubtree(Path{}, false)
	s.subtrees[root.path.Key()] = root
	return s
}

// baseAccessor operates directly on a Store's subtree map. Used for
// committed (non-transactional) applies, under the Store's write lock.
type baseAccessor struct{ store *Store }

func (a baseAccessor) get(path Path) (*subtree, bool) {
	st, ok := a.store.subtrees[path.Key()]
	return st, ok
}

func (a baseAccessor) getOrCreate(path Path, isSum bool) *subtree {
	k := path.Key()
	if st, ok := a.store.subtrees[k]; ok {
		return st
	}
	st := newSubtree(path, isSum)
	a.store.subtrees[k] = st
	return st
}

// RootHash returns the Merkle root of the entire store: the root subtree's
// root hash, which transitively commits to every descendant subtree via
// embedded Tree elements.
func (s *Store) RootHash() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	root := s.subtrees[Path{}.Key()]
	return root.root()
}

// Get reads the element at (path, key), following a chain of references
// for up to maxReferenceHops hops (a longer chain reads as not found);
// callers needing raw reference targets should use GetRaw.
func (s *Store) Get(path Path, key []byte) (Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolve(path, key, maxReferenceHops)
}

// Keys returns every key stored directly under path, in the subtree's
// deterministic sorted order. Used by read endpoints that enumerate a
// whole collection (e.g. every identity keyed by a public-key hash)
// rather than looking up one known key; callers needing an index over a
// derived property still scan this list themselves, since the store has
// no secondary-index concept of its own.
func (s *Store) Keys(path Path) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.subtrees[path.Key()]
	if !ok {
		return nil, ErrSubtreeNotFound
	}
	sorted := st.sortedKeys()
	out := make([][]byte, len(sorted))
	for i, k := range sorted {
		out[i] = []byte(k)
	}
	return out, nil
}

// GetRaw reads the element at (path, key) without following references.
func (s *Store) GetRaw(path Path, key []byte) (Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.subtrees[path.Key()]
	if !ok {
		return Element{}, false
	}
	el, ok := st.entries[string(key)]
	return el, ok
}

func (s *Store) resolve(path Path, key []byte, hopsLeft int) (Element, bool) {
	st, ok := s.subtrees[path.Key()]
	if !ok {
		return Element{}, false
	}
	el, ok := st.entries[string(key)]
	if !ok {
		return Element{}, false
	}
	if el.Kind != ElementReference {
		return el, true
	}
	if hopsLeft == 0 {
		return Element{}, false
	}
	return s.resolve(el.ReferencePath, el.ReferenceKey, hopsLeft-1)
}

// ApplyWriteSet applies ws directly against the live store (no
// transaction). When apply is false the write is costed but discarded:
// the estimated-mode path used by CheckTx so the mempool can reject
// transitions the payer cannot afford without mutating committed state.
func (s *Store) ApplyWriteSet(ws *WriteSet, epoch uint64, apply bool, params CostParams) (CostResult, error) {
	if !apply {
		s.mu.RLock()
		defer s.mu.RUnlock()
		acc := newOverlayAccessor(s)
		result, err := applyOps(acc, ws.Ops, epoch, params)
		result.Estimated = true
		result.StorageFee *= estimatedOverheadFactor
		return result, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return applyOps(baseAccessor{s}, ws.Ops, epoch, params)
}

// applyOps performs every op in ws against acc in order, propagating each
// touched subtree's root hash up to the store root, and returns the
// aggregate cost. Errors leave acc partially mutated; callers that need
// atomicity on error (CheckTx's estimation path, Transaction) must use a
// scratch accessor they can discard.
func applyOps(acc treeAccessor, ops []Op, epoch uint64, params CostParams) (CostResult, error) {
	params = params.normalize()
	result := CostResult{Refunds: RefundMap{}}

	for _, op := range ops {
		result.ProcessingFee += params.ProcessingCreditsPerOp

		switch op.Kind {
		case OpInsertSubtree, OpInsertSumSubtree:
			parent, ok := acc.get(op.Path)
			if !ok {
				return result, ErrSubtreeNotFound
			}
			childPath := op.Path.Append(op.Key)
			acc.getOrCreate(childPath, op.Kind == OpInsertSumSubtree)
			parent.entries[string(op.Key)] = Element{Kind: ElementTree}
			propagateRoot(acc, op.Path)

		case OpInsert:
			st, ok := acc.get(op.Path)
			if !ok {
				return result, ErrSubtreeNotFound
			}
			if _, exists := st.entries[string(op.Key)]; exists {
				return result, ErrElementAlreadyExists
			}
			newLen := int64(op.Element.SerializedLen())
			flag := Merge(nil, op.Owner, op.Epoch, newLen)
			op.Element.Flag = flag
			st.entries[string(op.Key)] = op.Element
			result.StorageFee += uint64(newLen) * params.StorageCreditsPerByte
			propagateRoot(acc, op.Path)

		case OpReplace:
			st, ok := acc.get(op.Path)
			if !ok {
				return result, ErrSubtreeNotFound
			}
			old, existed := st.entries[string(op.Key)]
			if !existed {
				return result, ErrElementNotFound
			}
			oldLen := old.SerializedLen()
			newLen := op.Element.SerializedLen()
			rebill := Rebill(old.Flag, oldLen, newLen, deref(op.Owner), epoch, params.StorageCreditsPerByte)
			op.Element.Flag = rebill.NewFlag
			st.entries[string(op.Key)] = op.Element
			if newLen > oldLen {
				result.StorageFee += uint64(newLen-oldLen) * params.StorageCreditsPerByte
			}
			result.mergeCost(CostResult{Refunds: rebill.Refund})
			propagateRoot(acc, op.Path)

		case OpDelete:
			st, ok := acc.get(op.Path)
			if !ok {
				return result, ErrSubtreeNotFound
			}
			old, existed := st.entries[string(op.Key)]
			if !existed {
				return result, ErrElementNotFound
			}
			refunds := RemovalRefund(old.Flag, params.StorageCreditsPerByte, int64(old.SerializedLen()))
			result.mergeCost(CostResult{Refunds: refunds})
			delete(st.entries, string(op.Key))
			propagateRoot(acc, op.Path)
		}
	}

	return result, nil
}

// propagateRoot recomputes the subtree at path and, if path is not the
// root, writes the new root hash into the parent's Tree element and
// recurses upward. This is what makes the store "hierarchically
// authenticated": a single leaf write changes the root hash of every
// ancestor subtree.
func propagateRoot(acc treeAccessor, path Path) {
	st, ok := acc.get(path)
	if !ok {
		return
	}
	rootHash := st.root()
	if len(path) == 0 {
		return
	}
	parentPath := path[:len(path)-1]
	key := path[len(path)-1]
	parent, ok := acc.get(parentPath)
	if !ok {
		return
	}
	el := parent.entries[string(key)]
	el.Kind = ElementTree
	el.TreeRoot = rootHash
	parent.entries[string(key)] = el
	propagateRoot(acc, parentPath)
}

func deref(id *types.Identifier) types.Identifier {
	if id == nil {
		return types.Identifier{}
	}
	return *id
}
