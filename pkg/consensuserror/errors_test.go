// Copyright 2025 Certen Protocol

package consensuserror

import (
	"errors"
	"testing"
)

func TestError_IsMatchesCategoryAndCode(t *testing.T) {
	a := IdentityInsufficientBalanceError("id1", 100, 50)
	b := IdentityInsufficientBalanceError("id2", 999, 1)

	if !errors.Is(a, b) {
		t.Errorf("expected errors with the same category/code to match via errors.Is")
	}
}

func TestError_IsFatalOnlyForExecution(t *testing.T) {
	if IsFatal(IdentityInsufficientBalanceError("id1", 1, 0)) {
		t.Errorf("consensus error must not be fatal")
	}
	if !IsFatal(NotInTransactionError()) {
		t.Errorf("execution error must be fatal")
	}
}

func TestError_IsPriceableForConsensusAndProtocolOnly(t *testing.T) {
	if !IsPriceable(InvalidSignatureError("bad sig")) {
		t.Errorf("consensus error must be priceable")
	}
	if IsPriceable(CorruptedExecutionError("boom")) {
		t.Errorf("execution error must not be priceable")
	}
	if IsPriceable(New(CategoryDrive, CodeElementNotFound, "missing")) {
		t.Errorf("drive error must not be priceable")
	}
}

func TestError_WrapDoesNotLeakCauseIntoMessage(t *testing.T) {
	cause := errors.New("some non-deterministic detail: 0xdeadbeef")
	wrapped := Wrap(CategoryDrive, CodeCorruptedSerialization, "failed to decode element", cause)

	if wrapped.Message != "failed to decode element" {
		t.Errorf("message should be exactly the deterministic text, got %q", wrapped.Message)
	}
	if errors.Unwrap(wrapped) != cause {
		t.Errorf("expected Unwrap to return the original cause")
	}
}
