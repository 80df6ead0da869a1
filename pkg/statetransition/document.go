// Copyright 2025 Certen Protocol

package statetransition

import (
	"github.com/dashpay/platform-sub004/pkg/consensuserror"
	"github.com/dashpay/platform-sub004/pkg/types"
)

// applyDocumentsBatch applies every DocumentOp in a transition in order,
// against one contract's document types. A single batch may freely mix
// create/replace/delete/transfer ops across document types, mirroring
// the source platform's "documents batch" transition.
func applyDocumentsBatch(ctx *ExecutionContext, signer types.Identifier, t *Transition) ([]Event, error) {
	var events []Event
	for i := range t.Documents {
		op := &t.Documents[i]
		contract, ok, err := ctx.getContract(op.ContractID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, consensuserror.CorruptedExecutionError("document batch references unknown contract")
		}
		docType, ok := contract.FindDocumentType(op.DocumentType)
		if !ok {
			return nil, consensuserror.CorruptedExecutionError("document batch references unknown document type")
		}

		ev, err := applyDocumentOp(ctx, signer, op, docType)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func applyDocumentOp(ctx *ExecutionContext, signer types.Identifier, op *DocumentOp, docType types.DocumentTypeDefinition) (Event, error) {
	switch op.Kind {
	case DocumentOpCreate:
		return applyDocumentCreate(ctx, signer, op)
	case DocumentOpReplace:
		return applyDocumentReplace(ctx, signer, op, docType)
	case DocumentOpDelete:
		return applyDocumentDelete(ctx, signer, op, docType)
	case DocumentOpTransfer:
		return applyDocumentTransfer(ctx, signer, op, docType)
	default:
		return Event{}, consensuserror.CorruptedExecutionError("unknown document op kind")
	}
}

func applyDocumentCreate(ctx *ExecutionContext, signer types.Identifier, op *DocumentOp) (Event, error) {
	doc := types.Document{
		ID:           op.DocumentID,
		ContractID:   op.ContractID,
		DocumentType: op.DocumentType,
		OwnerID:      signer,
		CreatorID:    &signer,
		Revision:     1,
		Properties:   op.Properties,
	}
	if err := ctx.putDocument(op.ContractID, op.DocumentType, doc, signer, false); err != nil {
		return Event{}, err
	}
	return Event{Name: "document.created", Data: map[string]interface{}{"documentId": doc.ID.String()}}, nil
}

// applyDocumentReplace overwrites a document's properties in place. The
// old and new serialized sizes naturally differ, so the underlying
// store write (OpReplace) runs the owner's byte-accurate rebill: growth
// is charged at the current epoch, shrinkage refunds the identity that
// originally paid for the freed bytes (§4.B document replacement cost
// nuance, §8 byte-accurate tests).
func applyDocumentReplace(ctx *ExecutionContext, signer types.Identifier, op *DocumentOp, docType types.DocumentTypeDefinition) (Event, error) {
	if !docType.Mutable {
		return Event{}, consensuserror.DocumentImmutableError(op.DocumentID.String())
	}

	doc, ok, err := ctx.getDocument(op.ContractID, op.DocumentType, op.DocumentID)
	if err != nil {
		return Event{}, err
	}
	if !ok {
		return Event{}, consensuserror.CorruptedExecutionError("replace target document not found")
	}
	if doc.OwnerID != signer {
		return Event{}, consensuserror.InvalidSignatureError("only the owning identity may replace this document")
	}
	if doc.Revision != op.ExpectedRevision {
		return Event{}, consensuserror.InvalidNonceError(op.DocumentID.String(), doc.Revision, op.ExpectedRevision)
	}

	doc.Properties = op.Properties
	doc.Revision++
	if err := ctx.putDocument(op.ContractID, op.DocumentType, doc, doc.OwnerID, true); err != nil {
		return Event{}, err
	}
	return Event{Name: "document.replaced", Data: map[string]interface{}{"documentId": doc.ID.String(), "revision": doc.Revision}}, nil
}

func applyDocumentDelete(ctx *ExecutionContext, signer types.Identifier, op *DocumentOp, docType types.DocumentTypeDefinition) (Event, error) {
	if !docType.CanBeDeleted {
		return Event{}, consensuserror.DocumentImmutableError(op.DocumentID.String())
	}
	doc, ok, err := ctx.getDocument(op.ContractID, op.DocumentType, op.DocumentID)
	if err != nil {
		return Event{}, err
	}
	if !ok {
		return Event{}, consensuserror.CorruptedExecutionError("delete target document not found")
	}
	if doc.OwnerID != signer {
		return Event{}, consensuserror.InvalidSignatureError("only the owning identity may delete this document")
	}
	if doc.Revision != op.ExpectedRevision {
		return Event{}, consensuserror.InvalidNonceError(op.DocumentID.String(), doc.Revision, op.ExpectedRevision)
	}

	if docType.KeepsHistory {
		doc.Deleted = true
		if err := ctx.putDocument(op.ContractID, op.DocumentType, doc, doc.OwnerID, true); err != nil {
			return Event{}, err
		}
	} else if err := ctx.deleteDocument(op.ContractID, op.DocumentType, op.DocumentID); err != nil {
		return Event{}, err
	}
	return Event{Name: "document.deleted", Data: map[string]interface{}{"documentId": doc.ID.String()}}, nil
}

// applyDocumentTransfer moves ownership of a transferable document. Every
// trade mode requires the current owner's signature; TradeModePrivateSale
// additionally rejects naming the current owner as the new owner.
// TradeModeFixedPrice places no restriction on the new owner.
func applyDocumentTransfer(ctx *ExecutionContext, signer types.Identifier, op *DocumentOp, docType types.DocumentTypeDefinition) (Event, error) {
	if !docType.Transferable {
		return Event{}, consensuserror.DocumentFieldImmutableError(op.DocumentID.String(), "ownerId")
	}
	if docType.TradeMode == types.TradeModePrivateSale && op.NewOwnerID != nil && *op.NewOwnerID == signer {
		return Event{}, consensuserror.CorruptedExecutionError("a private-sale document cannot be transferred to its own owner")
	}
	if op.NewOwnerID == nil {
		return Event{}, consensuserror.CorruptedExecutionError("document transfer missing new owner")
	}

	doc, ok, err := ctx.getDocument(op.ContractID, op.DocumentType, op.DocumentID)
	if err != nil {
		return Event{}, err
	}
	if !ok {
		return Event{}, consensuserror.CorruptedExecutionError("transfer target document not found")
	}
	if doc.OwnerID != signer {
		return Event{}, consensuserror.InvalidSignatureError("only the owning identity may transfer this document")
	}
	if doc.Revision != op.ExpectedRevision {
		return Event{}, consensuserror.InvalidNonceError(op.DocumentID.String(), doc.Revision, op.ExpectedRevision)
	}

	doc.OwnerID = *op.NewOwnerID
	doc.Revision++
	if err := ctx.putDocument(op.ContractID, op.DocumentType, doc, doc.OwnerID, true); err != nil {
		return Event{}, err
	}
	return Event{Name: "document.transferred", Data: map[string]interface{}{
		"documentId": doc.ID.String(), "newOwnerId": doc.OwnerID.String(),
	}}, nil
}
