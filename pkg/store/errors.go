// Copyright 2025 Certen Protocol

package store

import "errors"

var (
	// ErrSubtreeNotFound is returned when an operation addresses a path that
	// has no subtree — the parent subtree was never created via an
	// OpInsertSubtree/OpInsertSumSubtree operation.
	ErrSubtreeNotFound = errors.New("store: subtree not found")

	// ErrElementNotFound is returned by OpReplace/OpDelete when the
	// addressed key does not exist in its subtree.
	ErrElementNotFound = errors.New("store: element not found")

	// ErrElementAlreadyExists is returned by OpInsert when the addressed
	// key is already occupied; callers that mean "insert or overwrite"
	// must use OpReplace explicitly.
	ErrElementAlreadyExists = errors.New("store: element already exists")

	// ErrReferenceHopLimit names a reference chain longer than
	// maxReferenceHops. Store.Get and Transaction.Get do not return it;
	// they report such a chain as not found.
	ErrReferenceHopLimit = errors.New("store: reference hop limit exceeded")

	// ErrNoActiveSavepoint is returned by RollbackToSavepoint when no
	// savepoint has been set on the transaction.
	ErrNoActiveSavepoint = errors.New("store: no active savepoint")

	// ErrProofPathMismatch is returned when a generated proof's claimed
	// path does not match the path being verified against.
	ErrProofPathMismatch = errors.New("store: proof path mismatch")

	// ErrProofVerificationFailed is returned when a proof's recomputed
	// root does not match the expected root.
	ErrProofVerificationFailed = errors.New("store: proof verification failed")
)
