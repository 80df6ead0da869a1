// Copyright 2025 Certen Protocol

package store

// overlayAccessor is a copy-on-write view over a Store: reads fall through
// to the base store, and the first write to any given subtree clones it
// into the overlay before mutating. This is what lets a Transaction (or a
// discarded estimation pass) mutate freely without touching committed
// state until Commit is called.
type overlayAccessor struct {
	base    *Store
	overlay map[string]*subtree
}

func newOverlayAccessor(base *Store) *overlayAccessor {
	return &overlayAccessor{base: base, overlay: make(map[string]*subtree)}
}

func (a *overlayAccessor) get(path Path) (*subtree, bool) {
	k := path.Key()
	if st, ok := a.overlay[k]; ok {
		return st, true
	}
	if st, ok := a.base.subtrees[k]; ok {
		clone := st.clone()
		a.overlay[k] = clone
		return clone, true
	}
	return nil, false
}

func (a *overlayAccessor) getOrCreate(path Path, isSum bool) *subtree {
	if st, ok := a.get(path); ok {
		return st
	}
	st := newSubtree(path, isSum)
	a.overlay[path.Key()] = st
	return st
}

// snapshot deep-copies the current overlay contents, used to implement
// SAVEPOINT semantics.
func (a *overlayAccessor) snapshot() map[string]*subtree {
	out := make(map[string]*subtree, len(a.overlay))
	for k, st := range a.overlay {
		out[k] = st.clone()
	}
	return out
}

// Transaction is a set of writes staged against a Store without being
// visible to other readers until Commit. Savepoints allow partial
// rollback within a single transaction (used by the executor to undo one
// failed state-transition's writes while keeping earlier transitions in
// the same block).
type Transaction struct {
	store      *Store
	acc        *overlayAccessor
	savepoints []map[string]*subtree
	epoch      uint64
	params     CostParams
}

// Begin starts a new transaction against s. The transaction holds no lock
// on s until Commit; callers are responsible for serializing concurrent
// transactions against the same store (the block executor drives exactly
// one transaction per block).
func (s *Store) Begin(epoch uint64, params CostParams) *Transaction {
	return &Transaction{store: s, acc: newOverlayAccessor(s), epoch: epoch, params: params}
}

// Apply stages ws's operations against the transaction's overlay and
// returns their cost. Applied in real (not estimated) mode: exact cost,
// exact refunds.
func (t *Transaction) Apply(ws *WriteSet) (CostResult, error) {
	return applyOps(t.acc, ws.Ops, t.epoch, t.params)
}

// Get reads through the transaction's overlay, falling back to committed
// state for subtrees the transaction hasn't touched.
func (t *Transaction) Get(path Path, key []byte) (Element, bool) {
	return t.resolve(path, key, maxReferenceHops)
}

// HasSubtree reports whether path has already been created, so callers
// can decide whether an OpInsertSubtree is needed before writing a leaf
// under it for the first time.
func (t *Transaction) HasSubtree(path Path) bool {
	_, ok := t.acc.get(path)
	return ok
}

func (t *Transaction) resolve(path Path, key []byte, hopsLeft int) (Element, bool) {
	st, ok := t.acc.get(path)
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
	return t.resolve(el.ReferencePath, el.ReferenceKey, hopsLeft-1)
}

// SetSavepoint freezes the transaction's current overlay state so a later
// RollbackToSavepoint can discard everything written since.
func (t *Transaction) SetSavepoint() {
	t.savepoints = append(t.savepoints, t.acc.snapshot())
}

// RollbackToSavepoint discards every write made since the most recent
// SetSavepoint call, without removing the savepoint itself — a further
// RollbackToSavepoint call returns to the same point again.
func (t *Transaction) RollbackToSavepoint() error {
	if len(t.savepoints) == 0 {
		return ErrNoActiveSavepoint
	}
	snap := t.savepoints[len(t.savepoints)-1]
	restored := make(map[string]*subtree, len(snap))
	for k, st := range snap {
		restored[k] = st.clone()
	}
	t.acc.overlay = restored
	return nil
}

// ReleaseSavepoint drops the most recent savepoint without rolling back,
// used once a state transition within the block commits successfully and
// its savepoint no longer needs to be retained.
func (t *Transaction) ReleaseSavepoint() error {
	if len(t.savepoints) == 0 {
		return ErrNoActiveSavepoint
	}
	t.savepoints = t.savepoints[:len(t.savepoints)-1]
	return nil
}

// Commit writes every touched subtree in the transaction's overlay back
// into the store under a single write lock, then drops the overlay. The
// transaction must not be reused after Commit.
func (t *Transaction) Commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for k, st := range t.acc.overlay {
		t.store.subtrees[k] = st
	}
	t.acc.overlay = nil
	t.savepoints = nil
}

// Rollback discards the entire transaction without writing anything back.
func (t *Transaction) Rollback() {
	t.acc.overlay = nil
	t.savepoints = nil
}

// RootHash returns what the store's root hash would be if this
// transaction were committed right now, without committing it — used by
// the block executor to compute the proposed app hash before consensus
// has finalized the block.
func (t *Transaction) RootHash() []byte {
	st, ok := t.acc.get(Path{})
	if !ok {
		return make([]byte, 32)
	}
	return st.root()
}
