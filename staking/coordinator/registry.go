package coordinator

import (
	"bytes"

	"golang.org/x/exp/slices"

	"github.com/shardbay/sb-staking-go/staking"
	"github.com/shardbay/sb-staking-go/staking/committee"
)

const registryKey = "stakingRegistry"

type committeeSnapshot struct {
	Members []committee.Member
}

// stakingRegistry is the coordinator snapshot persisted at every epoch change.
// Pools are ledger state owned by their nodes and are not part of it.
type stakingRegistry struct {
	Epoch             uint32
	State             EpochState
	PreviousCommittee *committeeSnapshot
	CurrentCommittee  *committeeSnapshot
	NextCommittee     *committeeSnapshot
	NextParams        staking.EpochParams
	SyncAttestations  [][]byte
}

// saveState persists the registry snapshot into the storer. Needs to be called
// under mutex.
func (sc *stakingCoordinator) saveState() error {
	attestations := make([][]byte, 0, len(sc.syncAttestations))
	for nodeID := range sc.syncAttestations {
		attestations = append(attestations, []byte(nodeID))
	}
	slices.SortFunc(attestations, bytes.Compare)

	registry := &stakingRegistry{
		Epoch:             sc.epoch,
		State:             sc.state,
		PreviousCommittee: snapshotCommittee(sc.previousCommittee),
		CurrentCommittee:  snapshotCommittee(sc.currentCommittee),
		NextCommittee:     snapshotCommittee(sc.nextCommittee),
		NextParams:        sc.nextParams.Clone(),
		SyncAttestations:  attestations,
	}

	buff, err := sc.marshalizer.Marshal(registry)
	if err != nil {
		return err
	}

	log.Debug("saving staking registry", "key", registryKey, "epoch", sc.epoch)

	return sc.registryStorer.Put([]byte(registryKey), buff)
}

// LoadState restores the coordinator state saved at the last epoch change.
// Pools and the active set are not part of the snapshot and keep their current
// contents.
func (sc *stakingCoordinator) LoadState() error {
	buff, err := sc.registryStorer.Get([]byte(registryKey))
	if err != nil {
		return staking.ErrRegistryNotFound
	}

	registry := &stakingRegistry{}
	err = sc.marshalizer.Unmarshal(registry, buff)
	if err != nil {
		return err
	}

	previousCommittee, err := restoreCommittee(registry.PreviousCommittee)
	if err != nil {
		return err
	}
	currentCommittee, err := restoreCommittee(registry.CurrentCommittee)
	if err != nil {
		return err
	}
	nextCommittee, err := restoreCommittee(registry.NextCommittee)
	if err != nil {
		return err
	}
	if currentCommittee != nil && currentCommittee.NumberOfShards() != sc.numberOfShards {
		return staking.ErrInvalidNumberOfShards
	}

	sc.mut.Lock()
	sc.epoch = registry.Epoch
	sc.state = registry.State
	sc.previousCommittee = previousCommittee
	sc.currentCommittee = currentCommittee
	sc.nextCommittee = nextCommittee
	sc.nextParams = registry.NextParams.Clone()
	sc.syncAttestations = make(map[string]struct{})
	for _, nodeID := range registry.SyncAttestations {
		sc.syncAttestations[string(nodeID)] = struct{}{}
	}
	sc.committeeCache.Clear()
	sc.mut.Unlock()

	log.Debug("restored staking registry", "epoch", registry.Epoch)

	return nil
}

func snapshotCommittee(c *committee.Committee) *committeeSnapshot {
	if c == nil {
		return nil
	}

	return &committeeSnapshot{Members: c.Members()}
}

func restoreCommittee(snapshot *committeeSnapshot) (*committee.Committee, error) {
	if snapshot == nil {
		return nil, nil
	}

	return committee.NewCommitteeFromMembers(snapshot.Members)
}
