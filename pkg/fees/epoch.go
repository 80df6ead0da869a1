// Copyright 2025 Certen Protocol

package fees

import "time"

// EpochInfo describes the epoch a block belongs to and whether this
// block is the first one to cross into it. Epoch length is supplied to
// NewEpochTracker by the caller (main.go passes the configured
// EpochLength); the fee engine only needs the boundary decision, not
// the schedule itself.
type EpochInfo struct {
	Index        uint64
	IsEpochStart bool
	StartTime    time.Time
}

// EpochTracker determines epoch boundaries from block header time,
// never wall-clock time: advancing the epoch must be a pure function of
// the previous epoch's recorded start time and the new block's header
// time, so every node reaches the same conclusion.
type EpochTracker struct {
	epochLength time.Duration
	genesis     time.Time
}

func NewEpochTracker(genesis time.Time, epochLength time.Duration) *EpochTracker {
	return &EpochTracker{genesis: genesis, epochLength: epochLength}
}

// ForBlockTime computes the epoch a block with the given header time
// belongs to, along with whether it is the first block to observe that
// epoch index (blockTime must never regress across calls within a
// chain; callers are responsible for that ordering guarantee).
func (t *EpochTracker) ForBlockTime(blockTime time.Time, previousEpochIndex uint64) EpochInfo {
	if blockTime.Before(t.genesis) {
		return EpochInfo{Index: 0, IsEpochStart: previousEpochIndex != 0, StartTime: t.genesis}
	}
	elapsed := blockTime.Sub(t.genesis)
	index := uint64(elapsed / t.epochLength)
	start := t.genesis.Add(time.Duration(index) * t.epochLength)
	return EpochInfo{
		Index:        index,
		IsEpochStart: index != previousEpochIndex,
		StartTime:    start,
	}
}
