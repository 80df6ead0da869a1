// Copyright 2025 Certen Protocol
//
// Storage flags record, per leaf, which identity paid for which bytes in
// which epoch, so removals and shrink/grow rewrites can refund the correct
// identity for the correct epoch. This is the subtlest part of the cost
// model (§4.A, §9 of the design notes) and the byte-accurate tests in §8
// depend on the merge/rebill arithmetic below being exact.
package store

import "github.com/dashpay/platform-sub004/pkg/types"

// StorageFlagKind discriminates the four storage flag shapes.
type StorageFlagKind uint8

const (
	FlagNone StorageFlagKind = iota
	FlagSingleEpoch
	FlagSingleEpochOwned
	FlagMultiEpoch
	FlagMultiEpochOwned
)

// StorageFlag is per-leaf metadata: it records which epoch paid for which
// bytes, and (for the Owned variants) which identity paid for them.
type StorageFlag struct {
	Kind Kind

	// SingleEpoch / SingleEpochOwned
	Epoch uint64

	// MultiEpoch / MultiEpochOwned: BaseEpoch is the epoch the leaf was
	// first created in; EpochBytes maps epoch -> byte count paid for in
	// that epoch (only additions are recorded; shrinks are refunds, not
	// negative entries, see Rebill below).
	BaseEpoch  uint64
	EpochBytes map[uint64]int64

	// Owner, for the Owned variants, is the identity that paid for the
	// bytes and therefore receives any refund on removal.
	Owner *types.Identifier
}

// Kind is an alias kept for readability at call sites (StorageFlag.Kind).
type Kind = StorageFlagKind

func (k StorageFlagKind) String() string {
	switch k {
	case FlagNone:
		return "None"
	case FlagSingleEpoch:
		return "SingleEpoch"
	case FlagSingleEpochOwned:
		return "SingleEpochOwned"
	case FlagMultiEpoch:
		return "MultiEpoch"
	case FlagMultiEpochOwned:
		return "MultiEpochOwned"
	default:
		return "Unknown"
	}
}

// NewOwnedFlag creates a single-epoch flag recording who paid and in
// which epoch. Merge uses it for an owned leaf written with no byte
// count; a fresh leaf with bytes gets a MultiEpochOwned flag instead.
func NewOwnedFlag(owner types.Identifier, epoch uint64) StorageFlag {
	return StorageFlag{Kind: FlagSingleEpochOwned, Epoch: epoch, Owner: &owner}
}

// NewUnownedFlag is used for system (non-identity-attributed) writes, e.g.
// protocol bookkeeping that nobody is refunded for.
func NewUnownedFlag(epoch uint64) StorageFlag {
	return StorageFlag{Kind: FlagSingleEpoch, Epoch: epoch}
}

// RefundMap is identity -> epoch -> credits to refund.
type RefundMap map[types.Identifier]map[uint64]uint64

func (r RefundMap) add(owner *types.Identifier, epoch uint64, credits uint64) {
	if credits == 0 || owner == nil {
		return
	}
	if r[*owner] == nil {
		r[*owner] = make(map[uint64]uint64)
	}
	r[*owner][epoch] += credits
}

// Merge combines an existing flag with a newly-written flag candidate for
// the same leaf (e.g. a replace touching bytes that were already paid for
// in a prior epoch, plus new bytes paid for now). addedBytes is the number
// of *additional* bytes being charged for at currentEpoch (0 on a pure
// metadata touch). The returned flag is what gets persisted.
func Merge(old *StorageFlag, owner *types.Identifier, currentEpoch uint64, addedBytes int64) StorageFlag {
	if old == nil || old.Kind == FlagNone {
		if owner == nil {
			return StorageFlag{Kind: FlagSingleEpoch, Epoch: currentEpoch}
		}
		if addedBytes == 0 {
			return NewOwnedFlag(*owner, currentEpoch)
		}
		return StorageFlag{
			Kind:       FlagMultiEpochOwned,
			BaseEpoch:  currentEpoch,
			EpochBytes: map[uint64]int64{currentEpoch: addedBytes},
			Owner:      owner,
		}
	}

	owned := old.Kind == FlagSingleEpochOwned || old.Kind == FlagMultiEpochOwned
	effectiveOwner := old.Owner
	if effectiveOwner == nil {
		effectiveOwner = owner
	}

	// Upgrade single-epoch flags to multi-epoch the moment a second epoch
	// touches the leaf.
	base := old.BaseEpoch
	bytesByEpoch := map[uint64]int64{}
	switch old.Kind {
	case FlagSingleEpoch, FlagSingleEpochOwned:
		base = old.Epoch
	case FlagMultiEpoch, FlagMultiEpochOwned:
		for e, b := range old.EpochBytes {
			bytesByEpoch[e] = b
		}
	}

	if addedBytes != 0 {
		bytesByEpoch[currentEpoch] += addedBytes
		if bytesByEpoch[currentEpoch] == 0 {
			delete(bytesByEpoch, currentEpoch)
		}
	}

	if len(bytesByEpoch) == 0 {
		// No byte-level history accumulated (e.g. still within the epoch
		// it was created); keep the simple single-epoch shape.
		if owned && effectiveOwner != nil {
			return StorageFlag{Kind: FlagSingleEpochOwned, Epoch: base, Owner: effectiveOwner}
		}
		return StorageFlag{Kind: FlagSingleEpoch, Epoch: base}
	}

	if owned && effectiveOwner != nil {
		return StorageFlag{Kind: FlagMultiEpochOwned, BaseEpoch: base, EpochBytes: bytesByEpoch, Owner: effectiveOwner}
	}
	return StorageFlag{Kind: FlagMultiEpoch, BaseEpoch: base, EpochBytes: bytesByEpoch}
}

// RemovalRefund computes the refund map produced when a leaf carrying flag
// is fully removed. pricePerByte is the current epoch's credit price
// (constant within an epoch per the Glossary).
func RemovalRefund(flag StorageFlag, pricePerByte uint64, totalBytes int64) RefundMap {
	refunds := RefundMap{}
	switch flag.Kind {
	case FlagNone:
		return refunds
	case FlagSingleEpoch:
		return refunds
	case FlagSingleEpochOwned:
		refunds.add(flag.Owner, flag.Epoch, uint64(totalBytes)*pricePerByte)
		return refunds
	case FlagMultiEpoch:
		return refunds
	case FlagMultiEpochOwned:
		for epoch, bytes := range flag.EpochBytes {
			if bytes <= 0 {
				continue
			}
			refunds.add(flag.Owner, epoch, uint64(bytes)*pricePerByte)
		}
		return refunds
	}
	return refunds
}

// RebillResult is what a document/value replacement produces: the flag to
// persist plus any refund triggered by the replacement shrinking the value.
type RebillResult struct {
	NewFlag StorageFlag
	Refund  RefundMap
}

// Rebill implements the document-replacement cost nuance from §4.B: when
// the new value is larger than the old one, the difference is charged at
// currentEpoch and appended to the flag's multi-epoch map; when smaller,
// the trailing epoch (the most recently paid-for epoch with bytes still
// outstanding) records a refund; when equal, nothing changes and only
// processing fees apply upstream.
func Rebill(old StorageFlag, oldLen, newLen int, owner types.Identifier, currentEpoch uint64, pricePerByte uint64) RebillResult {
	delta := int64(newLen) - int64(oldLen)
	refunds := RefundMap{}

	if delta == 0 {
		return RebillResult{NewFlag: old, Refund: refunds}
	}

	if delta > 0 {
		merged := Merge(&old, &owner, currentEpoch, delta)
		return RebillResult{NewFlag: merged, Refund: refunds}
	}

	// Shrinking: reclaim |delta| bytes starting from the most recent epoch
	// that still has outstanding bytes, walking backwards in time. This
	// mirrors "last paid for, first refunded" so that refunds are always
	// attributable to a real prior charge.
	shrink := -delta
	newFlag := old
	switch old.Kind {
	case FlagSingleEpochOwned:
		refund := uint64(shrink) * pricePerByte
		o := owner
		if old.Owner != nil {
			o = *old.Owner
		}
		refunds.add(&o, old.Epoch, refund)
		newFlag = StorageFlag{Kind: FlagSingleEpochOwned, Epoch: old.Epoch, Owner: &o}
	case FlagMultiEpochOwned:
		epochBytes := map[uint64]int64{}
		for e, b := range old.EpochBytes {
			epochBytes[e] = b
		}
		remaining := shrink
		epochsDesc := sortedEpochsDesc(epochBytes)
		o := owner
		if old.Owner != nil {
			o = *old.Owner
		}
		for _, e := range epochsDesc {
			if remaining <= 0 {
				break
			}
			avail := epochBytes[e]
			take := remaining
			if take > avail {
				take = avail
			}
			epochBytes[e] -= take
			if epochBytes[e] == 0 {
				delete(epochBytes, e)
			}
			refunds.add(&o, e, uint64(take)*pricePerByte)
			remaining -= take
		}
		newFlag = StorageFlag{Kind: FlagMultiEpochOwned, BaseEpoch: old.BaseEpoch, EpochBytes: epochBytes, Owner: &o}
	case FlagSingleEpoch, FlagNone:
		// Unowned bytes: nobody to refund, but the byte accounting still
		// shrinks — nothing further to record.
	}

	return RebillResult{NewFlag: newFlag, Refund: refunds}
}

func sortedEpochsDesc(m map[uint64]int64) []uint64 {
	out := make([]uint64, 0, len(m))
	for e := range m {
		out = append(out, e)
	}
	// insertion sort descending; epoch counts per leaf are tiny
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] > out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
