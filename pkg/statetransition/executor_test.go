// Copyright 2025 Certen Protocol

package statetransition

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/dashpay/platform-sub004/pkg/consensuserror"
	"github.com/dashpay/platform-sub004/pkg/store"
	"github.com/dashpay/platform-sub004/pkg/types"
)

// testSigner bundles a real secp256k1 keypair with the identity id it is
// assigned once createIdentity registers it, plus a running nonce counter
// so a test can sign a sequence of transitions without hand-tracking the
// expected nonce at every call site.
type testSigner struct {
	priv      *secp256k1.PrivateKey
	key       types.IdentityPublicKey
	derivedID types.Identifier
	nonce     uint64
}

func newTestSigner(t *testing.T) *testSigner {
	t.Helper()
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return &testSigner{
		priv: priv,
		key: types.IdentityPublicKey{
			ID: 1, Purpose: types.KeyPurposeAuthentication, SecurityLevel: types.SecurityLevelMaster,
			Data: priv.PubKey().SerializeCompressed(),
		},
	}
}

func (s *testSigner) sign(payload []byte) []byte {
	digest := sha256.Sum256(payload)
	return ecdsa.Sign(s.priv, digest[:]).Serialize()
}

func (s *testSigner) nextNonce() uint64 {
	s.nonce++
	return s.nonce
}

func newExecutionContext() *ExecutionContext {
	st := store.NewStore()
	tx := st.Begin(1, store.CostParams{})
	return &ExecutionContext{Tx: tx, Version: types.CurrentPlatformVersion, Epoch: 1}
}

func identifierFromByte(b byte) types.Identifier {
	var id types.Identifier
	id[31] = b
	return id
}

// createIdentity registers signer as a new identity with the given
// starting balance and records the derived id on signer for reuse.
func createIdentity(t *testing.T, ctx *ExecutionContext, signer *testSigner, seed byte, balance uint64) {
	t.Helper()
	payload := []byte(fmt.Sprintf("identity-create-%d", seed))
	txn := &Transition{
		Kind: KindIdentityCreate, Nonce: 1, PayloadBytes: payload, Signature: signer.sign(payload),
		IdentityCreate: &IdentityCreatePayload{InitialBalance: balance, Keys: []types.IdentityPublicKey{signer.key}},
	}
	txn.SignerID = deriveID(namespaceIdentity, payload)
	outcome := Execute(ctx, txn, signer.key)
	if outcome.Kind != SuccessfulExecution {
		t.Fatalf("createIdentity(%d) failed: kind=%d err=%v", seed, outcome.Kind, outcome.Err)
	}
	signer.derivedID = txn.SignerID
	signer.nonce = 1
}

// createContract registers contract, owned by owner, and returns its
// derived id.
func createContract(t *testing.T, ctx *ExecutionContext, owner *testSigner, seed byte, contract types.DataContract) types.Identifier {
	t.Helper()
	payload := []byte(fmt.Sprintf("contract-create-%d", seed))
	txn := &Transition{
		Kind: KindDataContractCreate, SignerID: owner.derivedID, Nonce: owner.nextNonce(),
		PayloadBytes: payload, Signature: owner.sign(payload),
		DataContract: &DataContractPayload{Contract: contract},
	}
	outcome := Execute(ctx, txn, owner.key)
	if outcome.Kind != SuccessfulExecution {
		t.Fatalf("createContract(%d) failed: kind=%d err=%v", seed, outcome.Kind, outcome.Err)
	}
	return deriveID(namespaceDataContract, payload)
}

func uintPtr(v uint32) *uint32 { return &v }

func isTokenAccountFrozenError(err error) bool {
	e, ok := err.(*consensuserror.Error)
	return ok && e.Code == consensuserror.CodeIdentityTokenAccountFrozen
}

func TestExecute_IdentityCreateThenTopUp(t *testing.T) {
	ctx := newExecutionContext()
	signer := newTestSigner(t)
	createIdentity(t, ctx, signer, 1, 1000)

	identity, ok, err := ctx.getIdentity(signer.derivedID)
	if err != nil || !ok {
		t.Fatalf("identity not found after create: ok=%v err=%v", ok, err)
	}
	if identity.Balance == 0 {
		t.Fatalf("expected positive balance after create, got 0")
	}

	topUpPayload := []byte("identity-topup-1")
	topUp := &Transition{
		Kind: KindIdentityTopUp, SignerID: signer.derivedID, Nonce: signer.nextNonce(),
		PayloadBytes: topUpPayload, Signature: signer.sign(topUpPayload),
		IdentityTopUp: &IdentityTopUpPayload{IdentityID: signer.derivedID, Amount: 500},
	}
	outcome := Execute(ctx, topUp, signer.key)
	if outcome.Kind != SuccessfulExecution {
		t.Fatalf("expected top-up to succeed, got kind=%d err=%v", outcome.Kind, outcome.Err)
	}

	after, _, err := ctx.getIdentity(signer.derivedID)
	if err != nil {
		t.Fatalf("read after top-up: %v", err)
	}
	if after.Balance != identity.Balance+500 {
		t.Errorf("expected balance %d, got %d", identity.Balance+500, after.Balance)
	}

	// Replaying the same transition must be rejected: its nonce was
	// already consumed.
	replay := Execute(ctx, topUp, signer.key)
	if replay.Kind != UnpaidConsensusError {
		t.Errorf("expected nonce replay to be rejected as UnpaidConsensusError, got kind=%d", replay.Kind)
	}
}

func TestExecute_InvalidSignatureYieldsUnpaidConsensusError(t *testing.T) {
	ctx := newExecutionContext()
	signer := newTestSigner(t)

	payload := []byte("identity-create-bad-sig")
	createTxn := &Transition{
		Kind: KindIdentityCreate, Nonce: 1, PayloadBytes: payload,
		Signature:      signer.sign([]byte("a different payload entirely")),
		IdentityCreate: &IdentityCreatePayload{InitialBalance: 1000, Keys: []types.IdentityPublicKey{signer.key}},
	}
	createTxn.SignerID = deriveID(namespaceIdentity, payload)

	outcome := Execute(ctx, createTxn, signer.key)
	if outcome.Kind != UnpaidConsensusError {
		t.Fatalf("expected UnpaidConsensusError, got kind=%d", outcome.Kind)
	}
	if outcome.Fee != nil {
		t.Errorf("expected no fee to be charged for a structurally invalid transition")
	}
}

func TestExecute_DocumentReplaceShrinkRefundsOwner(t *testing.T) {
	ctx := newExecutionContext()
	signer := newTestSigner(t)
	createIdentity(t, ctx, signer, 1, 100000)

	contractID := createContract(t, ctx, signer, 2, types.DataContract{
		DocumentTypes: map[string]types.DocumentTypeDefinition{
			"note": {Name: "note", Mutable: true, CanBeDeleted: true},
		},
	})

	docID := identifierFromByte(0xAA)
	big := make([]byte, 200)
	for i := range big {
		big[i] = 'x'
	}
	createPayload := []byte("doc-create-1")
	createOp := &Transition{
		Kind: KindDocumentsBatch, SignerID: signer.derivedID, Nonce: signer.nextNonce(),
		PayloadBytes: createPayload, Signature: signer.sign(createPayload),
		Documents: []DocumentOp{{
			Kind: DocumentOpCreate, DocumentID: docID, ContractID: contractID, DocumentType: "note",
			Properties: map[string]interface{}{"body": string(big)},
		}},
	}
	outcome := Execute(ctx, createOp, signer.key)
	if outcome.Kind != SuccessfulExecution {
		t.Fatalf("document create failed: kind=%d err=%v", outcome.Kind, outcome.Err)
	}

	replacePayload := []byte("doc-replace-1")
	replaceOp := &Transition{
		Kind: KindDocumentsBatch, SignerID: signer.derivedID, Nonce: signer.nextNonce(),
		PayloadBytes: replacePayload, Signature: signer.sign(replacePayload),
		Documents: []DocumentOp{{
			Kind: DocumentOpReplace, DocumentID: docID, ContractID: contractID, DocumentType: "note",
			ExpectedRevision: 1, Properties: map[string]interface{}{"body": "short"},
		}},
	}
	outcome = Execute(ctx, replaceOp, signer.key)
	if outcome.Kind != SuccessfulExecution {
		t.Fatalf("document replace failed: kind=%d err=%v", outcome.Kind, outcome.Err)
	}
	if outcome.Fee == nil || outcome.Fee.Refunds[signer.derivedID] == 0 {
		t.Errorf("expected a nonzero refund to the document owner on shrink, got %+v", outcome.Fee)
	}
}

func TestExecute_TokenTransferFromFrozenAccountIsPaidConsensusError(t *testing.T) {
	ctx := newExecutionContext()
	owner := newTestSigner(t)
	holder := newTestSigner(t)
	recipient := newTestSigner(t)

	createIdentity(t, ctx, owner, 1, 100000)
	createIdentity(t, ctx, holder, 2, 100000)
	createIdentity(t, ctx, recipient, 3, 100000)

	tokenID := identifierFromByte(0xBB)
	contractID := createContract(t, ctx, owner, 4, types.DataContract{
		Tokens: []types.TokenDefinition{{
			TokenID: tokenID,
			ChangeControl: types.TokenChangeControl{
				Mint:   types.TokenChangeControlRules{AuthorizedIdentity: &owner.derivedID},
				Freeze: types.TokenChangeControlRules{AuthorizedIdentity: &owner.derivedID},
			},
		}},
	})

	mintPayload := []byte("token-mint-1")
	mint := &Transition{
		Kind: KindTokenMint, SignerID: owner.derivedID, Nonce: owner.nextNonce(),
		PayloadBytes: mintPayload, Signature: owner.sign(mintPayload),
		TokenOp: &TokenOpPayload{TokenID: tokenID, ContractID: contractID, RecipientID: &holder.derivedID, Amount: 1000},
	}
	if outcome := Execute(ctx, mint, owner.key); outcome.Kind != SuccessfulExecution {
		t.Fatalf("mint failed: kind=%d err=%v", outcome.Kind, outcome.Err)
	}

	freezePayload := []byte("token-freeze-1")
	freeze := &Transition{
		Kind: KindTokenFreeze, SignerID: owner.derivedID, Nonce: owner.nextNonce(),
		PayloadBytes: freezePayload, Signature: owner.sign(freezePayload),
		TokenOp: &TokenOpPayload{TokenID: tokenID, ContractID: contractID, TargetID: &holder.derivedID},
	}
	if outcome := Execute(ctx, freeze, owner.key); outcome.Kind != SuccessfulExecution {
		t.Fatalf("freeze failed: kind=%d err=%v", outcome.Kind, outcome.Err)
	}

	transferPayload := []byte("token-transfer-1")
	transfer := &Transition{
		Kind: KindTokenTransfer, SignerID: holder.derivedID, Nonce: holder.nextNonce(),
		PayloadBytes: transferPayload, Signature: holder.sign(transferPayload),
		TokenOp: &TokenOpPayload{TokenID: tokenID, ContractID: contractID, RecipientID: &recipient.derivedID, Amount: 100},
	}
	outcome := Execute(ctx, transfer, holder.key)
	if outcome.Kind != PaidConsensusError {
		t.Fatalf("expected PaidConsensusError for transfer from a frozen account, got kind=%d err=%v", outcome.Kind, outcome.Err)
	}
	if !isTokenAccountFrozenError(outcome.Err) {
		t.Errorf("expected IdentityTokenAccountFrozenError, got %v", outcome.Err)
	}
	if outcome.Fee == nil {
		t.Errorf("expected the failed transfer attempt to still be charged")
	}
}

func TestExecute_GroupActionTwoOfTwoClosesAndAppliesFreeze(t *testing.T) {
	ctx := newExecutionContext()
	owner := newTestSigner(t)
	member1 := newTestSigner(t)
	member2 := newTestSigner(t)
	target := newTestSigner(t)

	createIdentity(t, ctx, owner, 1, 100000)
	createIdentity(t, ctx, member1, 2, 100000)
	createIdentity(t, ctx, member2, 3, 100000)
	createIdentity(t, ctx, target, 4, 100000)

	tokenID := identifierFromByte(0xCC)
	contractID := createContract(t, ctx, owner, 5, types.DataContract{
		Tokens: []types.TokenDefinition{{
			TokenID: tokenID,
			ChangeControl: types.TokenChangeControl{
				Freeze: types.TokenChangeControlRules{RequiresGroupAction: true, GroupPosition: uintPtr(0)},
			},
		}},
		Groups: []types.GroupDefinition{{
			MemberPower:   map[types.Identifier]uint32{member1.derivedID: 1, member2.derivedID: 1},
			RequiredPower: 2,
		}},
	})

	main := types.GroupActionMainParameters{ProposerID: member1.derivedID, TokenID: tokenID, TargetID: target.derivedID, Amount: 0}

	proposePayload := []byte("group-propose-1")
	propose := &Transition{
		Kind: KindGroupActionPropose, SignerID: member1.derivedID, Nonce: member1.nextNonce(),
		PayloadBytes: proposePayload, Signature: member1.sign(proposePayload),
		GroupPropose: &GroupProposePayload{ContractID: contractID, GroupPosition: 0, Main: main, Effect: types.GroupActionEffectFreeze},
	}
	if outcome := Execute(ctx, propose, member1.key); outcome.Kind != SuccessfulExecution {
		t.Fatalf("propose failed: kind=%d err=%v", outcome.Kind, outcome.Err)
	}

	actionID := deriveID(namespaceGroupAction, proposePayload)
	action, ok, err := ctx.getGroupAction(actionID)
	if err != nil || !ok {
		t.Fatalf("group action not found after propose: ok=%v err=%v", ok, err)
	}
	if action.Status != types.GroupActionActive {
		t.Fatalf("expected action still active after one signer, got status=%d", action.Status)
	}

	confirmPayload := []byte("group-confirm-1")
	confirm := &Transition{
		Kind: KindGroupActionConfirm, SignerID: member2.derivedID, Nonce: member2.nextNonce(),
		PayloadBytes: confirmPayload, Signature: member2.sign(confirmPayload),
		GroupConfirm: &GroupConfirmPayload{ActionID: actionID, Main: main, Effect: types.GroupActionEffectFreeze},
	}
	if outcome := Execute(ctx, confirm, member2.key); outcome.Kind != SuccessfulExecution {
		t.Fatalf("confirm failed: kind=%d err=%v", outcome.Kind, outcome.Err)
	}

	closed, _, err := ctx.getGroupAction(actionID)
	if err != nil {
		t.Fatalf("read action after confirm: %v", err)
	}
	if closed.Status != types.GroupActionClosed {
		t.Errorf("expected action closed once required power was reached")
	}

	targetIdentity, _, err := ctx.getIdentity(target.derivedID)
	if err != nil {
		t.Fatalf("read target identity: %v", err)
	}
	if !targetIdentity.TokenInfoFor(tokenID).Frozen {
		t.Errorf("expected target's token account to be frozen once the group action closed")
	}
}

func TestExecute_GroupActionConfirmRejectsTamperedMainParameters(t *testing.T) {
	ctx := newExecutionContext()
	owner := newTestSigner(t)
	member1 := newTestSigner(t)
	member2 := newTestSigner(t)
	target := newTestSigner(t)
	otherTarget := newTestSigner(t)

	createIdentity(t, ctx, owner, 1, 100000)
	createIdentity(t, ctx, member1, 2, 100000)
	createIdentity(t, ctx, member2, 3, 100000)
	createIdentity(t, ctx, target, 4, 100000)
	createIdentity(t, ctx, otherTarget, 5, 100000)

	tokenID := identifierFromByte(0xDD)
	contractID := createContract(t, ctx, owner, 6, types.DataContract{
		Tokens: []types.TokenDefinition{{
			TokenID: tokenID,
			ChangeControl: types.TokenChangeControl{
				Freeze: types.TokenChangeControlRules{RequiresGroupAction: true, GroupPosition: uintPtr(0)},
			},
		}},
		Groups: []types.GroupDefinition{{
			MemberPower:   map[types.Identifier]uint32{member1.derivedID: 1, member2.derivedID: 1},
			RequiredPower: 2,
		}},
	})

	main := types.GroupActionMainParameters{ProposerID: member1.derivedID, TokenID: tokenID, TargetID: target.derivedID, Amount: 0}
	proposePayload := []byte("group-propose-tamper")
	propose := &Transition{
		Kind: KindGroupActionPropose, SignerID: member1.derivedID, Nonce: member1.nextNonce(),
		PayloadBytes: proposePayload, Signature: member1.sign(proposePayload),
		GroupPropose: &GroupProposePayload{ContractID: contractID, GroupPosition: 0, Main: main, Effect: types.GroupActionEffectFreeze},
	}
	if outcome := Execute(ctx, propose, member1.key); outcome.Kind != SuccessfulExecution {
		t.Fatalf("propose failed: kind=%d err=%v", outcome.Kind, outcome.Err)
	}
	actionID := deriveID(namespaceGroupAction, proposePayload)

	tamperedMain := main
	tamperedMain.TargetID = otherTarget.derivedID

	confirmPayload := []byte("group-confirm-tamper")
	confirm := &Transition{
		Kind: KindGroupActionConfirm, SignerID: member2.derivedID, Nonce: member2.nextNonce(),
		PayloadBytes: confirmPayload, Signature: member2.sign(confirmPayload),
		GroupConfirm: &GroupConfirmPayload{ActionID: actionID, Main: tamperedMain, Effect: types.GroupActionEffectFreeze},
	}
	outcome := Execute(ctx, confirm, member2.key)
	if outcome.Kind != PaidConsensusError {
		t.Fatalf("expected PaidConsensusError for a tampered confirmation, got kind=%d err=%v", outcome.Kind, outcome.Err)
	}
}
