// Copyright 2025 Certen Protocol

package consensuserror

import "fmt"

// The constructors below produce the specific, named errors referenced
// throughout the executor and fee engine. Keeping them as functions
// (rather than package-level sentinel vars) lets each carry the
// offending identifier in Message while keeping Category/Code fixed and
// comparable via errors.Is.

func IdentityInsufficientBalanceError(identityID string, required, available uint64) *Error {
	return New(CategoryConsensus, CodeIdentityInsufficientBalance,
		fmt.Sprintf("identity %s has insufficient balance: required %d, available %d", identityID, required, available))
}

func IdentityTokenAccountFrozenError(identityID string, tokenID string) *Error {
	return New(CategoryConsensus, CodeIdentityTokenAccountFrozen,
		fmt.Sprintf("identity %s token account for %s is frozen", identityID, tokenID))
}

func ModificationOfGroupActionMainParametersNotPermittedError(actionID string) *Error {
	return New(CategoryConsensus, CodeGroupActionMainParamsModified,
		fmt.Sprintf("group action %s: confirmation changed a main parameter set by the proposer", actionID))
}

func GroupActionAlreadyClosedError(actionID string) *Error {
	return New(CategoryConsensus, CodeGroupActionAlreadyClosed,
		fmt.Sprintf("group action %s is already closed", actionID))
}

func GroupActionSignerNotMemberError(actionID, signerID string) *Error {
	return New(CategoryConsensus, CodeGroupActionSignerNotMember,
		fmt.Sprintf("group action %s: %s is not a member of the group", actionID, signerID))
}

func DocumentImmutableError(documentID string) *Error {
	return New(CategoryConsensus, CodeDocumentImmutable,
		fmt.Sprintf("document %s is not mutable", documentID))
}

func DocumentFieldImmutableError(documentID, field string) *Error {
	return New(CategoryConsensus, CodeDocumentFieldImmutable,
		fmt.Sprintf("document %s: field %q cannot be changed after creation", documentID, field))
}

func InvalidSignatureError(reason string) *Error {
	return New(CategoryConsensus, CodeInvalidSignature, reason)
}

func InvalidNonceError(identityID string, expected, got uint64) *Error {
	return New(CategoryConsensus, CodeInvalidNonce,
		fmt.Sprintf("identity %s: expected nonce %d, got %d", identityID, expected, got))
}

func SchemaIncompatibleChangeError(keyword string) *Error {
	return New(CategoryConsensus, CodeSchemaIncompatibleChange,
		fmt.Sprintf("schema change rejected at keyword %q", keyword))
}

func NotInTransactionError() *Error {
	return New(CategoryExecution, CodeNotInTransaction, "operation requires an open transaction")
}

func CorruptedExecutionError(detail string) *Error {
	return New(CategoryExecution, CodeCorruptedExecution, "corrupted code execution: "+detail)
}
