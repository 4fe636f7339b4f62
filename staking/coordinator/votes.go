package coordinator

import (
	"math/big"

	"golang.org/x/exp/slices"

	"github.com/shardbay/sb-staking-go/staking"
	"github.com/shardbay/sb-staking-go/staking/committee"
)

type weightedVote struct {
	value  *big.Int
	weight uint16
}

// calculateVotes derives the parameters of the next epoch from the votes of
// the next committee members, weighted by their shard counts. Prices take the
// highest value a quorum stands behind, the capacity takes the weighted
// median. Needs to be called under mutex.
func (sc *stakingCoordinator) calculateVotes(nextCommittee *committee.Committee) staking.EpochParams {
	members := nextCommittee.Members()

	storageVotes := make([]weightedVote, 0, len(members))
	writeVotes := make([]weightedVote, 0, len(members))
	capacityVotes := make([]weightedVote, 0, len(members))
	for _, member := range members {
		stakingPool, found := sc.pools[string(member.NodeID)]
		if !found {
			continue
		}

		votes := stakingPool.Votes()
		weight := uint16(len(member.Shards))
		storageVotes = append(storageVotes, weightedVote{value: votes.StoragePrice, weight: weight})
		writeVotes = append(writeVotes, weightedVote{value: votes.WritePrice, weight: weight})
		capacityVotes = append(capacityVotes, weightedVote{value: votes.NodeCapacity, weight: weight})
	}

	numShards := nextCommittee.NumberOfShards()

	return staking.EpochParams{
		StoragePrice: quorumValue(storageVotes, numShards),
		WritePrice:   quorumValue(writeVotes, numShards),
		NodeCapacity: weightedMedian(capacityVotes, numShards),
	}
}

// quorumValue returns the highest value still backed by a two-thirds quorum of
// shard weight, counting every member as backing all values up to its own vote.
func quorumValue(votes []weightedVote, numShards uint16) *big.Int {
	slices.SortFunc(votes, func(a weightedVote, b weightedVote) int {
		return b.value.Cmp(a.value)
	})

	accumulated := uint16(0)
	for _, vote := range votes {
		accumulated += vote.weight
		if hasQuorum(accumulated, numShards) {
			return big.NewInt(0).Set(vote.value)
		}
	}

	return big.NewInt(0)
}

// weightedMedian returns the smallest value at which half of the shard weight
// is reached, scanning the votes in ascending order.
func weightedMedian(votes []weightedVote, numShards uint16) *big.Int {
	slices.SortFunc(votes, func(a weightedVote, b weightedVote) int {
		return a.value.Cmp(b.value)
	})

	accumulated := uint32(0)
	for _, vote := range votes {
		accumulated += uint32(vote.weight)
		if 2*accumulated >= uint32(numShards) {
			return big.NewInt(0).Set(vote.value)
		}
	}

	return big.NewInt(0)
}

// hasQuorum checks the byzantine fault tolerant two-thirds threshold
// 3w >= 2n+1 over the total shard weight n.
func hasQuorum(weight uint16, numShards uint16) bool {
	return 3*uint32(weight) >= 2*uint32(numShards)+1
}
