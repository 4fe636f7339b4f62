package coordinator

import "time"

// EpochStateKind discriminates the phases of the epoch lifecycle.
type EpochStateKind int

const (
	// EpochChangeSync accumulates weighted shard-sync attestations from the
	// freshly activated committee.
	EpochChangeSync EpochStateKind = iota
	// EpochChangeDone marks the committee fully synced, parameter voting is open.
	EpochChangeDone
	// NextParamsSelected marks the next committee and its parameters locked in.
	NextParamsSelected
)

// EpochState is the tagged epoch lifecycle state. AttestedWeight is only
// meaningful while syncing. LastEpochChange records when the running epoch
// became fully synced, stays zero during the sync phase and is carried
// unchanged into NextParamsSelected, so the epoch duration gate always
// measures from the same instant.
type EpochState struct {
	Kind            EpochStateKind
	AttestedWeight  uint16
	LastEpochChange time.Time
}
