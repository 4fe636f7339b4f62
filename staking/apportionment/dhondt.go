package apportionment

import "math/big"

// Nodes above this count get a flat cap of numShards / shardsLimitDenominator
// shards each; below it the cap scales up so the full allocation always fits.
const minNodesForShardsLimit = 20
const shardsLimitDenominator = 10

func maxShardsPerNode(numNodes int, numShards uint16) uint16 {
	if numNodes >= minNodesForShardsLimit {
		return numShards / shardsLimitDenominator
	}

	numerator := uint64(numShards) * minNodesForShardsLimit
	denominator := uint64(numNodes) * shardsLimitDenominator

	return uint16((numerator + denominator - 1) / denominator)
}

// Apportion distributes numShards shards across the given stakes using the
// d'Hondt (Jefferson) highest-averages method, returning per-node shard counts
// that sum to numShards exactly. Priorities break equal-quotient ties: the
// higher priority value wins. The computation is integer-only, so independent
// re-executions produce identical assignments.
func Apportion(stakes []*big.Int, numShards uint16, priorities []uint64) ([]uint16, error) {
	if len(stakes) == 0 {
		return []uint16{}, nil
	}
	if len(priorities) != len(stakes) {
		return nil, ErrPrioritiesLengthMismatch
	}

	totalStake := big.NewInt(0)
	for _, stake := range stakes {
		if stake == nil {
			return nil, ErrNilStake
		}
		totalStake.Add(totalStake, stake)
	}
	if totalStake.Sign() <= 0 {
		return nil, ErrZeroTotalStake
	}

	maxShards := maxShardsPerNode(len(stakes), numShards)

	// Hagenbach-Bischoff lower bound: each node starts with the shards its
	// stake buys outright at the distribution number. The remainder is then
	// assigned one shard at a time through the quotient queue.
	distributionNumber := new(big.Int).Div(totalStake, big.NewInt(int64(numShards)+1))
	distributionNumber.Add(distributionNumber, big.NewInt(1))

	shards := make([]uint16, len(stakes))
	distributed := 0
	for i, stake := range stakes {
		assigned := uint16(new(big.Int).Div(stake, distributionNumber).Uint64())
		if assigned > maxShards {
			assigned = maxShards
		}

		shards[i] = assigned
		distributed += int(assigned)
	}

	queue := newApportionmentQueue()
	for i, stake := range stakes {
		if shards[i] >= maxShards {
			continue
		}

		queue.insert(newQuotient(stake, uint64(shards[i])+1), priorities[i], i)
	}

	for distributed < int(numShards) {
		entry, err := queue.popMax()
		if err != nil {
			return nil, err
		}

		node := entry.node
		shards[node]++
		distributed++

		if shards[node] < maxShards {
			queue.insert(newQuotient(stakes[node], uint64(shards[node])+1), priorities[node], node)
		}
	}

	return shards, nil
}
