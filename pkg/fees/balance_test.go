// Copyright 2025 Certen Protocol
//
// Balance Settlement Tests

package fees

import (
	"errors"
	"testing"

	"github.com/dashpay/platform-sub004/pkg/consensuserror"
)

func TestRemoveFromBalance_ExactBalanceSucceeds(t *testing.T) {
	state := BalanceState{Balance: 500}
	next, err := RemoveFromBalance(state, 500, 500, "payer")
	if err != nil {
		t.Fatalf("expected success removing exactly the full balance, got %v", err)
	}
	if next.Balance != 0 || next.Debt != 0 {
		t.Errorf("expected zero balance and zero debt, got %+v", next)
	}
}

func TestRemoveFromBalance_OneOverFails(t *testing.T) {
	state := BalanceState{Balance: 500}
	_, err := RemoveFromBalance(state, 501, 501, "payer")
	if err == nil {
		t.Fatalf("expected failure when required exceeds balance by one credit")
	}
	var ce *consensuserror.Error
	if !errors.As(err, &ce) || ce.Code != consensuserror.CodeIdentityInsufficientBalance {
		t.Errorf("expected IdentityInsufficientBalanceError, got %v", err)
	}
}

func TestRemoveFromBalance_DesiredOverButRequiredCoveredGoesIntoDebt(t *testing.T) {
	state := BalanceState{Balance: 100}
	next, err := RemoveFromBalance(state, 50, 150, "payer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Balance != 0 || next.Debt != 50 {
		t.Errorf("expected balance=0 debt=50, got %+v", next)
	}
}

func TestAddToBalance_RepaysDebtFirst(t *testing.T) {
	state := BalanceState{Balance: 0, Debt: 30}
	next, err := AddToBalance(state, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Balance != 0 || next.Debt != 10 {
		t.Errorf("expected partial debt repayment, got %+v", next)
	}
}

func TestAddToBalance_RepaysDebtAndCreditsRemainder(t *testing.T) {
	state := BalanceState{Balance: 0, Debt: 30}
	next, err := AddToBalance(state, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Balance != 20 || next.Debt != 0 {
		t.Errorf("expected balance=20 debt=0, got %+v", next)
	}
}

func TestAddToBalance_PlainCreditWhenNoDebt(t *testing.T) {
	state := BalanceState{Balance: 100}
	next, err := AddToBalance(state, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Balance != 125 {
		t.Errorf("expected balance=125, got %+v", next)
	}
}
