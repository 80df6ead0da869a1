// Copyright 2025 Certen Protocol

package statetransition

import (
	"encoding/binary"
	"encoding/json"

	"github.com/dashpay/platform-sub004/pkg/consensuserror"
	"github.com/dashpay/platform-sub004/pkg/store"
	"github.com/dashpay/platform-sub004/pkg/types"
)

// ExecutionContext is the state a single transition executes against: a
// staged transaction (so a failed transition's writes can be rolled back
// to the savepoint without disturbing earlier transitions in the same
// block), the platform version gating which code path runs, and the
// epoch the enclosing block belongs to (for cost attribution).
type ExecutionContext struct {
	Tx         *store.Transaction
	Version    types.PlatformVersion
	Epoch      uint64
	CostParams store.CostParams

	// cost accumulates every WriteSet this transition has staged so far,
	// so the executor can settle the whole transition's cost in one call
	// once validation and transform both succeed.
	cost store.CostResult
}

// resetCost clears the accumulated cost; called once per transition
// before it begins, so a rolled-back transition's partial writes don't
// leak cost into the next transition processed against the same
// ExecutionContext.
func (c *ExecutionContext) resetCost() {
	c.cost = store.CostResult{}
}

// applyWriteSet stages ws against the transaction and folds its cost
// into the transition-wide running total.
func (c *ExecutionContext) applyWriteSet(ws *store.WriteSet) error {
	result, err := c.Tx.Apply(ws)
	if err != nil {
		return err
	}
	c.cost.StorageFee += result.StorageFee
	c.cost.ProcessingFee += result.ProcessingFee
	if c.cost.Refunds == nil {
		c.cost.Refunds = store.RefundMap{}
	}
	for owner, byEpoch := range result.Refunds {
		for epoch, credits := range byEpoch {
			if c.cost.Refunds[owner] == nil {
				c.cost.Refunds[owner] = map[uint64]uint64{}
			}
			c.cost.Refunds[owner][epoch] += credits
		}
	}
	return nil
}

// ensureSubtreePath creates every subtree along path that does not yet
// exist, walking from the root down. The store requires a subtree to
// exist before any leaf can be inserted or replaced under it, and
// domain paths are multiple segments deep (e.g. documents/<contract>/
// <type>), so the first write under a fresh contract or document type
// must first lay down its ancestors.
func (c *ExecutionContext) ensureSubtreePath(path store.Path, leafIsSum bool) error {
	for i := 1; i <= len(path); i++ {
		sub := path[:i]
		if c.Tx.HasSubtree(sub) {
			continue
		}
		parent := path[:i-1]
		key := path[i-1]
		ws := &store.WriteSet{}
		ws.InsertSubtree(parent, key, leafIsSum && i == len(path))
		if err := c.applyWriteSet(ws); err != nil {
			return err
		}
	}
	return nil
}

func (c *ExecutionContext) getJSON(path store.Path, key []byte, out interface{}) (bool, error) {
	el, ok := c.Tx.Get(path, key)
	if !ok {
		return false, nil
	}
	if el.Kind != store.ElementItem {
		return false, consensuserror.CorruptedExecutionError("expected item element")
	}
	if err := json.Unmarshal(el.Item, out); err != nil {
		return false, consensuserror.CorruptedExecutionError("corrupted stored value: " + err.Error())
	}
	return true, nil
}

// putJSON stages an insert-or-replace of v at (path, key), returning the
// write op so callers can batch several mutations into one WriteSet
// before calling Tx.Apply.
func putJSON(path store.Path, key []byte, v interface{}, owner types.Identifier, epoch uint64, existed bool) (store.Op, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return store.Op{}, consensuserror.CorruptedExecutionError("failed to encode value: " + err.Error())
	}
	el := store.NewItem(data)
	kind := store.OpInsert
	if existed {
		kind = store.OpReplace
	}
	return store.Op{Kind: kind, Path: path, Key: key, Element: el, Owner: &owner, Epoch: epoch}, nil
}

// nonceKey renders an identity's nonce counter key.
func nonceKey(identityID types.Identifier) []byte {
	return identityID[:]
}

// peekNonce reads an identity's current nonce counter without writing
// anything, for structural validation (a nonce mismatch must be caught
// before any cost is attributed).
func (c *ExecutionContext) peekNonce(identityID types.Identifier) (uint64, error) {
	el, ok := c.Tx.Get(pathNonces, nonceKey(identityID))
	if !ok {
		return 0, nil
	}
	if el.Kind != store.ElementItem || len(el.Item) != 8 {
		return 0, consensuserror.CorruptedExecutionError("corrupted nonce entry")
	}
	return binary.BigEndian.Uint64(el.Item), nil
}

// advanceNonce writes nonce as identityID's new counter value. Callers
// must have already validated nonce == current+1 via peekNonce; this is
// the first write a transition stages, so its cost is charged even if
// everything after it is rolled back.
func (c *ExecutionContext) advanceNonce(identityID types.Identifier, nonce uint64) error {
	if err := c.ensureSubtreePath(pathNonces, false); err != nil {
		return err
	}
	_, existed := c.Tx.Get(pathNonces, nonceKey(identityID))

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, nonce)
	ws := &store.WriteSet{}
	kind := store.OpInsert
	if existed {
		kind = store.OpReplace
	}
	ws.Ops = append(ws.Ops, store.Op{
		Kind: kind, Path: pathNonces, Key: nonceKey(identityID),
		Element: store.NewItem(buf), Owner: &identityID, Epoch: c.Epoch,
	})
	return c.applyWriteSet(ws)
}

// getIdentity reads an identity by id.
func (c *ExecutionContext) getIdentity(id types.Identifier) (types.Identity, bool, error) {
	var identity types.Identity
	ok, err := c.getJSON(pathIdentities, id[:], &identity)
	return identity, ok, err
}

// putIdentity stages an identity write and applies it immediately: the
// identity subtree is small and every transition that touches an
// identity needs the new state visible to later reads within the same
// transition (e.g. a group action crediting two identities in turn).
func (c *ExecutionContext) putIdentity(identity types.Identity, owner types.Identifier, existed bool) error {
	if err := c.ensureSubtreePath(pathIdentities, false); err != nil {
		return err
	}
	op, err := putJSON(pathIdentities, identity.ID[:], identity, owner, c.Epoch, existed)
	if err != nil {
		return err
	}
	ws := &store.WriteSet{Ops: []store.Op{op}}
	return c.applyWriteSet(ws)
}

func (c *ExecutionContext) getContract(id types.Identifier) (types.DataContract, bool, error) {
	var contract types.DataContract
	ok, err := c.getJSON(pathContracts, id[:], &contract)
	return contract, ok, err
}

func (c *ExecutionContext) putContract(contract types.DataContract, owner types.Identifier, existed bool) error {
	if err := c.ensureSubtreePath(pathContracts, false); err != nil {
		return err
	}
	op, err := putJSON(pathContracts, contract.ID[:], contract, owner, c.Epoch, existed)
	if err != nil {
		return err
	}
	ws := &store.WriteSet{Ops: []store.Op{op}}
	return c.applyWriteSet(ws)
}

func (c *ExecutionContext) getDocument(contractID types.Identifier, documentType string, docID types.Identifier) (types.Document, bool, error) {
	var doc types.Document
	ok, err := c.getJSON(pathDocuments(contractID.String(), documentType), docID[:], &doc)
	return doc, ok, err
}

func (c *ExecutionContext) putDocument(contractID types.Identifier, documentType string, doc types.Document, owner types.Identifier, existed bool) error {
	path := pathDocuments(contractID.String(), documentType)
	if err := c.ensureSubtreePath(path, false); err != nil {
		return err
	}
	op, err := putJSON(path, doc.ID[:], doc, owner, c.Epoch, existed)
	if err != nil {
		return err
	}
	ws := &store.WriteSet{Ops: []store.Op{op}}
	return c.applyWriteSet(ws)
}

func (c *ExecutionContext) deleteDocument(contractID types.Identifier, documentType string, docID types.Identifier) error {
	ws := &store.WriteSet{}
	ws.Delete(pathDocuments(contractID.String(), documentType), docID[:])
	return c.applyWriteSet(ws)
}

func (c *ExecutionContext) getToken(id types.Identifier) (types.Token, bool, error) {
	var token types.Token
	ok, err := c.getJSON(pathTokens, id[:], &token)
	return token, ok, err
}

func (c *ExecutionContext) putToken(token types.Token, owner types.Identifier, existed bool) error {
	if err := c.ensureSubtreePath(pathTokens, false); err != nil {
		return err
	}
	op, err := putJSON(pathTokens, token.ID[:], token, owner, c.Epoch, existed)
	if err != nil {
		return err
	}
	ws := &store.WriteSet{Ops: []store.Op{op}}
	return c.applyWriteSet(ws)
}

func (c *ExecutionContext) getGroupAction(id types.Identifier) (types.GroupAction, bool, error) {
	var action types.GroupAction
	ok, err := c.getJSON(pathGroups, id[:], &action)
	return action, ok, err
}

func (c *ExecutionContext) putGroupAction(action types.GroupAction, owner types.Identifier, existed bool) error {
	if err := c.ensureSubtreePath(pathGroups, false); err != nil {
		return err
	}
	op, err := putJSON(pathGroups, action.ActionID[:], action, owner, c.Epoch, existed)
	if err != nil {
		return err
	}
	ws := &store.WriteSet{Ops: []store.Op{op}}
	return c.applyWriteSet(ws)
}
