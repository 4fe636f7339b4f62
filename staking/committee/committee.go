package committee

import (
	"bytes"
	"math"

	"golang.org/x/exp/slices"
)

// ShardCount pairs a node with the number of shards it must hold in an
// assignment.
type ShardCount struct {
	NodeID []byte
	Count  uint16
}

// Member is one committee entry: a node and the sorted shard indexes it holds.
type Member struct {
	NodeID []byte
	Shards []uint16
}

// Committee is an immutable node to shard-set assignment for one epoch.
// Members are kept sorted by node ID and lookups binary search that order.
// All transformations return a fresh committee, the receiver never changes.
type Committee struct {
	members   []Member
	numShards uint16
}

type pendingFill struct {
	nodeID []byte
	kept   []uint16
	needed uint16
}

// NewCommittee builds the initial committee from the given per-node shard
// counts: shard indexes 0..n-1 are numbered sequentially across nodes taken
// in node ID order. Nodes with a zero count are left out.
func NewCommittee(counts []ShardCount) (*Committee, error) {
	sorted, total, err := sortAndValidateCounts(counts)
	if err != nil {
		return nil, err
	}

	members := make([]Member, 0, len(sorted))
	nextShard := uint16(0)
	for _, count := range sorted {
		if count.Count == 0 {
			continue
		}

		shards := make([]uint16, 0, count.Count)
		for i := uint16(0); i < count.Count; i++ {
			shards = append(shards, nextShard)
			nextShard++
		}

		members = append(members, Member{
			NodeID: copyID(count.NodeID),
			Shards: shards,
		})
	}

	return &Committee{
		members:   members,
		numShards: uint16(total),
	}, nil
}

// NewCommitteeFromMembers rebuilds a committee from a saved member list. The
// shard indexes carried by the members must exactly partition [0, n), where n
// is their total count. Members with no shards are left out.
func NewCommitteeFromMembers(storedMembers []Member) (*Committee, error) {
	total := 0
	for _, member := range storedMembers {
		if len(member.NodeID) == 0 {
			return nil, ErrNilNodeID
		}
		total += len(member.Shards)
	}
	if total > math.MaxUint16 {
		return nil, ErrTooManyShards
	}

	seen := make([]bool, total)
	members := make([]Member, 0, len(storedMembers))
	for _, member := range storedMembers {
		if len(member.Shards) == 0 {
			continue
		}

		for _, shard := range member.Shards {
			if int(shard) >= total || seen[shard] {
				return nil, ErrInvalidShardAssignment
			}
			seen[shard] = true
		}

		members = append(members, Member{
			NodeID: copyID(member.NodeID),
			Shards: copyShards(member.Shards),
		})
	}

	slices.SortFunc(members, func(a Member, b Member) int {
		return bytes.Compare(a.NodeID, b.NodeID)
	})
	for i := 1; i < len(members); i++ {
		if bytes.Equal(members[i-1].NodeID, members[i].NodeID) {
			return nil, ErrDuplicateNodeID
		}
	}

	return &Committee{
		members:   members,
		numShards: uint16(total),
	}, nil
}

// Transition computes the next committee from the new per-node shard counts,
// moving as few shards as possible. Members keep their shards up to the new
// count and released shards form a shared pool. Deficits are only filled in a
// second pass, once every release is known, after checking that the new
// assignment preserves the total shard count.
func (c *Committee) Transition(counts []ShardCount) (*Committee, error) {
	sorted, total, err := sortAndValidateCounts(counts)
	if err != nil {
		return nil, err
	}

	targets := make(map[string]uint16, len(sorted))
	for _, count := range sorted {
		targets[string(count.NodeID)] = count.Count
	}

	pool := make([]uint16, 0)
	fills := make([]pendingFill, 0)
	members := make([]Member, 0, len(sorted))

	for _, member := range c.members {
		key := string(member.NodeID)
		target, present := targets[key]
		if present {
			delete(targets, key)
		}

		oldCount := uint16(len(member.Shards))
		switch {
		case !present || target == 0:
			pool = append(pool, member.Shards...)
		case target == oldCount:
			members = append(members, Member{
				NodeID: member.NodeID,
				Shards: copyShards(member.Shards),
			})
		case target < oldCount:
			pool = append(pool, member.Shards[target:]...)
			members = append(members, Member{
				NodeID: member.NodeID,
				Shards: copyShards(member.Shards[:target]),
			})
		default:
			fills = append(fills, pendingFill{
				nodeID: member.NodeID,
				kept:   copyShards(member.Shards),
				needed: target - oldCount,
			})
		}
	}

	for _, count := range sorted {
		_, stillJoining := targets[string(count.NodeID)]
		if !stillJoining || count.Count == 0 {
			continue
		}

		fills = append(fills, pendingFill{
			nodeID: copyID(count.NodeID),
			kept:   make([]uint16, 0, count.Count),
			needed: count.Count,
		})
	}

	if total != int(c.numShards) {
		return nil, ErrInvalidShardAssignment
	}

	for _, fill := range fills {
		shards := append(fill.kept, pool[:fill.needed]...)
		pool = pool[fill.needed:]
		slices.Sort(shards)

		members = append(members, Member{
			NodeID: fill.nodeID,
			Shards: shards,
		})
	}

	slices.SortFunc(members, func(a Member, b Member) int {
		return bytes.Compare(a.NodeID, b.NodeID)
	})

	return &Committee{
		members:   members,
		numShards: c.numShards,
	}, nil
}

// Diff returns the node IDs only present in c and the ones only present in
// other. Both member lists are sorted by node ID, so a single two-pointer
// pass over them suffices.
func (c *Committee) Diff(other *Committee) ([][]byte, [][]byte) {
	onlyInC := make([][]byte, 0)
	onlyInOther := make([][]byte, 0)

	i, j := 0, 0
	for i < len(c.members) && j < len(other.members) {
		comparison := bytes.Compare(c.members[i].NodeID, other.members[j].NodeID)
		switch {
		case comparison < 0:
			onlyInC = append(onlyInC, copyID(c.members[i].NodeID))
			i++
		case comparison > 0:
			onlyInOther = append(onlyInOther, copyID(other.members[j].NodeID))
			j++
		default:
			i++
			j++
		}
	}
	for ; i < len(c.members); i++ {
		onlyInC = append(onlyInC, copyID(c.members[i].NodeID))
	}
	for ; j < len(other.members); j++ {
		onlyInOther = append(onlyInOther, copyID(other.members[j].NodeID))
	}

	return onlyInC, onlyInOther
}

// NumberOfShards returns the total number of shards held by the committee.
func (c *Committee) NumberOfShards() uint16 {
	return c.numShards
}

// Size returns the number of committee members.
func (c *Committee) Size() int {
	return len(c.members)
}

// Members returns a deep copy of the member list, sorted by node ID.
func (c *Committee) Members() []Member {
	members := make([]Member, 0, len(c.members))
	for _, member := range c.members {
		members = append(members, Member{
			NodeID: copyID(member.NodeID),
			Shards: copyShards(member.Shards),
		})
	}

	return members
}

// MemberIDs returns the node IDs of all members, sorted.
func (c *Committee) MemberIDs() [][]byte {
	ids := make([][]byte, 0, len(c.members))
	for _, member := range c.members {
		ids = append(ids, copyID(member.NodeID))
	}

	return ids
}

// ShardsOf returns a copy of the shard indexes held by the given node, empty
// when the node is not a member.
func (c *Committee) ShardsOf(nodeID []byte) []uint16 {
	index, found := c.memberIndex(nodeID)
	if !found {
		return []uint16{}
	}

	return copyShards(c.members[index].Shards)
}

// WeightOf returns the number of shards held by the given node.
func (c *Committee) WeightOf(nodeID []byte) uint16 {
	index, found := c.memberIndex(nodeID)
	if !found {
		return 0
	}

	return uint16(len(c.members[index].Shards))
}

// Contains returns true if the given node is a committee member.
func (c *Committee) Contains(nodeID []byte) bool {
	_, found := c.memberIndex(nodeID)
	return found
}

// Clone returns a deep copy of the committee.
func (c *Committee) Clone() *Committee {
	return &Committee{
		members:   c.Members(),
		numShards: c.numShards,
	}
}

func (c *Committee) memberIndex(nodeID []byte) (int, bool) {
	return slices.BinarySearchFunc(c.members, nodeID, func(member Member, id []byte) int {
		return bytes.Compare(member.NodeID, id)
	})
}

func sortAndValidateCounts(counts []ShardCount) ([]ShardCount, int, error) {
	sorted := make([]ShardCount, len(counts))
	copy(sorted, counts)
	slices.SortFunc(sorted, func(a ShardCount, b ShardCount) int {
		return bytes.Compare(a.NodeID, b.NodeID)
	})

	total := 0
	for i, count := range sorted {
		if len(count.NodeID) == 0 {
			return nil, 0, ErrNilNodeID
		}
		if i > 0 && bytes.Equal(sorted[i-1].NodeID, count.NodeID) {
			return nil, 0, ErrDuplicateNodeID
		}
		total += int(count.Count)
	}
	if total > math.MaxUint16 {
		return nil, 0, ErrTooManyShards
	}

	return sorted, total, nil
}

func copyID(nodeID []byte) []byte {
	id := make([]byte, len(nodeID))
	copy(id, nodeID)

	return id
}

func copyShards(shards []uint16) []uint16 {
	copied := make([]uint16, len(shards))
	copy(copied, shards)

	return copied
}
