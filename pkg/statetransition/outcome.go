// Copyright 2025 Certen Protocol

package statetransition

import "github.com/dashpay/platform-sub004/pkg/fees"

// OutcomeKind discriminates the four shapes a processed transition can
// take (§4.B). CategoryExecution errors and any error from fee
// settlement surface as InternalError; other consensus/protocol errors
// become PaidConsensusError or UnpaidConsensusError.
type OutcomeKind uint8

const (
	// SuccessfulExecution: structural and state validation passed, the
	// write set applied, and the payer's balance covered the full cost.
	SuccessfulExecution OutcomeKind = iota
	// PaidConsensusError: a consensus-level rule was violated (e.g. a
	// frozen token account, a closed group action) but the signer still
	// paid for the attempt — the transition is recorded as failed, not
	// silently dropped, so the next nonce is consumed.
	PaidConsensusError
	// UnpaidConsensusError: structural validation failed before any cost
	// could be attributed (disabled or unsuitable key, bad signature,
	// wrong nonce) — nothing is charged because there is no identity we
	// can safely charge yet.
	UnpaidConsensusError
	// InternalError: a CategoryExecution error occurred, or fee
	// settlement failed; the block handler removes the transition from
	// the block.
	InternalError
)

// Event is an application-level fact a successful (or paid-error)
// transition produced, for downstream indexing (pkg/query, pkg/auditlog).
type Event struct {
	Name string
	Data map[string]interface{}
}

// Outcome is the single value Execute produces for a decoded Transition:
// exactly one OutcomeKind, carrying whatever detail is meaningful for
// that kind.
type Outcome struct {
	Kind OutcomeKind

	// Fee is populated for SuccessfulExecution and PaidConsensusError:
	// both charge the signer, the difference being whether the write
	// set's effects were applied or rolled back to the pre-transition
	// savepoint.
	Fee *fees.FeeResult

	Events []Event

	// Err is set for every kind except SuccessfulExecution.
	Err error
}
