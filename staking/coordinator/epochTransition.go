package coordinator

import (
	"bytes"
	"math/big"

	"golang.org/x/exp/slices"

	"github.com/shardbay/sb-staking-go/staking"
	"github.com/shardbay/sb-staking-go/staking/apportionment"
	"github.com/shardbay/sb-staking-go/staking/committee"
	"github.com/shardbay/sb-staking-go/staking/pool"
)

type candidate struct {
	nodeID []byte
	stake  *big.Int
}

// SelectCommitteeAndCalculateVotes ends the parameter voting period: it
// apportions the shards of the next epoch over the active set, derives the
// next committee with minimal shard movement and locks in the parameters voted
// by its members. Runs at most once per epoch, no earlier than half the epoch
// duration after the last epoch change. The first epoch is exempt from the
// time gate so the genesis committee can form right away.
func (sc *stakingCoordinator) SelectCommitteeAndCalculateVotes() error {
	sc.mut.Lock()
	defer sc.mut.Unlock()

	if sc.state.Kind == NextParamsSelected {
		return staking.ErrCommitteeAlreadySelected
	}
	if sc.state.Kind != EpochChangeDone {
		return staking.ErrWrongEpochState
	}

	votingEnd := sc.state.LastEpochChange.Add(sc.epochDuration / 2)
	if sc.epoch > 0 && sc.syncTimer.CurrentTime().Before(votingEnd) {
		return staking.ErrVotingPeriodNotElapsed
	}

	nextCommittee, err := sc.selectNextCommittee()
	if err != nil {
		return err
	}

	sc.nextCommittee = nextCommittee
	sc.nextParams = sc.calculateVotes(nextCommittee)
	sc.state = EpochState{
		Kind:            NextParamsSelected,
		LastEpochChange: sc.state.LastEpochChange,
	}

	err = sc.saveState()
	if err != nil {
		log.Warn("could not save the staking registry", "epoch", sc.epoch, "error", err)
	}

	log.Debug("next committee selected",
		"epoch", sc.epoch+1,
		"members", nextCommittee.Size(),
		"storage price", sc.nextParams.StoragePrice,
		"write price", sc.nextParams.WritePrice,
		"node capacity", sc.nextParams.NodeCapacity,
	)

	return nil
}

// selectNextCommittee apportions the shards of the next epoch over the active
// set candidates by stake. Needs to be called under mutex.
func (sc *stakingCoordinator) selectNextCommittee() (*committee.Committee, error) {
	nextEpoch := sc.epoch + 1

	candidates := make([]candidate, 0, sc.activeSet.Size())
	for _, nodeID := range sc.activeSet.ActiveIDs() {
		stakingPool, found := sc.pools[string(nodeID)]
		if !found || stakingPool.State() != pool.PoolActive {
			continue
		}

		stake := stakingPool.StakeAtEpoch(nextEpoch)
		if stake.Sign() <= 0 {
			continue
		}

		candidates = append(candidates, candidate{nodeID: nodeID, stake: stake})
	}
	if len(candidates) == 0 {
		return nil, staking.ErrNoActiveStake
	}

	// highest stake first, priorities then decrease with the rank so equal
	// quotients resolve toward the larger staker
	slices.SortFunc(candidates, func(a candidate, b candidate) int {
		comparison := b.stake.Cmp(a.stake)
		if comparison != 0 {
			return comparison
		}

		return bytes.Compare(a.nodeID, b.nodeID)
	})

	stakes := make([]*big.Int, len(candidates))
	priorities := make([]uint64, len(candidates))
	for i, cand := range candidates {
		stakes[i] = cand.stake
		priorities[i] = uint64(len(candidates) - i)
	}

	shards, err := apportionment.Apportion(stakes, sc.numberOfShards, priorities)
	if err != nil {
		return nil, err
	}

	counts := make([]committee.ShardCount, 0, len(candidates))
	for i, cand := range candidates {
		if shards[i] == 0 {
			continue
		}

		counts = append(counts, committee.ShardCount{NodeID: cand.nodeID, Count: shards[i]})
	}

	if sc.currentCommittee == nil {
		return committee.NewCommittee(counts)
	}

	return sc.currentCommittee.Transition(counts)
}

// InitiateEpochChange activates the next epoch once the current one served its
// full duration: the committees rotate, the pools settle their queued stake
// movements and split the given rewards by the shard weight they carried, and
// the new committee enters the shard sync phase. Subscribers are notified with
// the new epoch after the state change is complete.
func (sc *stakingCoordinator) InitiateEpochChange(rewards *big.Int) error {
	sc.mut.Lock()

	if sc.state.Kind != NextParamsSelected {
		sc.mut.Unlock()
		return staking.ErrWrongEpochState
	}

	epochEnd := sc.state.LastEpochChange.Add(sc.epochDuration)
	if sc.epoch > 0 && sc.syncTimer.CurrentTime().Before(epochEnd) {
		sc.mut.Unlock()
		return staking.ErrEpochDurationNotElapsed
	}

	newEpoch := sc.advanceEpoch(rewards)
	sc.mut.Unlock()

	sc.notifier.NotifyAll(newEpoch)

	return nil
}

// EpochSyncDone records the attestation of a committee member that finished
// syncing its shards for the given epoch. When the attested weight reaches a
// two-thirds quorum the epoch change completes and parameter voting opens.
func (sc *stakingCoordinator) EpochSyncDone(nodeID []byte, epoch uint32) error {
	sc.mut.Lock()
	defer sc.mut.Unlock()

	if sc.state.Kind != EpochChangeSync {
		return staking.ErrWrongEpochState
	}
	if epoch != sc.epoch {
		return staking.ErrInvalidSyncEpoch
	}
	if sc.currentCommittee == nil {
		return staking.ErrCommitteeNotSelected
	}

	weight := sc.currentCommittee.WeightOf(nodeID)
	if weight == 0 {
		return staking.ErrNotCommitteeMember
	}

	_, alreadyAttested := sc.syncAttestations[string(nodeID)]
	if alreadyAttested {
		return staking.ErrDuplicateSyncAttestation
	}

	sc.syncAttestations[string(nodeID)] = struct{}{}
	sc.state.AttestedWeight += weight

	log.Trace("epoch sync attested",
		"node", nodeID,
		"epoch", epoch,
		"weight", weight,
		"attested weight", sc.state.AttestedWeight,
	)

	if !hasQuorum(sc.state.AttestedWeight, sc.numberOfShards) {
		return nil
	}

	sc.state = EpochState{
		Kind:            EpochChangeDone,
		LastEpochChange: sc.syncTimer.CurrentTime(),
	}

	err := sc.saveState()
	if err != nil {
		log.Warn("could not save the staking registry", "epoch", sc.epoch, "error", err)
	}

	log.Debug("epoch change done", "epoch", sc.epoch)

	return nil
}

// advanceEpoch rotates the committees into the new epoch, advances the pools,
// persists the registry snapshot and caches the bls committee of the new
// epoch. Needs to be called under mutex.
func (sc *stakingCoordinator) advanceEpoch(rewards *big.Int) uint32 {
	sc.epoch++
	sc.previousCommittee = sc.currentCommittee
	sc.currentCommittee = sc.nextCommittee
	sc.nextCommittee = nil
	sc.state = EpochState{Kind: EpochChangeSync}
	sc.syncAttestations = make(map[string]struct{})

	sc.advancePools(rewards)

	if sc.previousCommittee != nil {
		left, joined := sc.previousCommittee.Diff(sc.currentCommittee)
		log.Debug("epoch changed",
			"epoch", sc.epoch,
			"committee size", sc.currentCommittee.Size(),
			"joined", len(joined),
			"left", len(left),
		)
	} else {
		log.Debug("first committee activated",
			"epoch", sc.epoch,
			"committee size", sc.currentCommittee.Size(),
		)
	}

	err := sc.saveState()
	if err != nil {
		log.Warn("could not save the staking registry", "epoch", sc.epoch, "error", err)
	}

	blsCommittee, err := sc.buildBlsCommittee(sc.epoch)
	if err != nil {
		log.Warn("could not build the bls committee", "epoch", sc.epoch, "error", err)
		return sc.epoch
	}
	sc.committeeCache.Put(committeeCacheKey(sc.epoch), blsCommittee, blsCommitteeSizeInBytes(blsCommittee))

	return sc.epoch
}

// advancePools settles the epoch boundary on every pool active by the new
// epoch, splitting the rewards by the shard weight each node carried in the
// epoch that just ended. Needs to be called under mutex.
func (sc *stakingCoordinator) advancePools(rewards *big.Int) {
	selectionEpoch := sc.epoch + 1

	for key, stakingPool := range sc.pools {
		if stakingPool.ActivationEpoch() > sc.epoch {
			continue
		}

		err := stakingPool.AdvanceEpoch(sc.rewardsShare(rewards, stakingPool.NodeID()), sc.epoch)
		if err != nil {
			log.Warn("could not advance pool", "node", stakingPool.NodeID(), "epoch", sc.epoch, "error", err)
			continue
		}

		if stakingPool.State() == pool.PoolActive {
			sc.activeSet.InsertOrUpdate([]byte(key), stakingPool.StakeAtEpoch(selectionEpoch))
		}
	}
}

// rewardsShare splits the epoch rewards proportionally to the shards the node
// held in the committee that just finished serving. The division truncates,
// the remainder of at most numberOfShards-1 units stays undistributed.
func (sc *stakingCoordinator) rewardsShare(rewards *big.Int, nodeID []byte) *big.Int {
	if rewards == nil || rewards.Sign() <= 0 || sc.previousCommittee == nil {
		return nil
	}

	weight := sc.previousCommittee.WeightOf(nodeID)
	if weight == 0 {
		return nil
	}

	share := big.NewInt(0).Mul(rewards, big.NewInt(int64(weight)))

	return share.Div(share, big.NewInt(int64(sc.numberOfShards)))
}
