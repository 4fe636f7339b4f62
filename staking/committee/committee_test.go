package committee

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCommittee(t *testing.T) {
	t.Parallel()

	t.Run("empty assignment should build an empty committee", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommittee([]ShardCount{})
		require.NoError(t, err)
		require.Equal(t, 0, c.Size())
		require.Equal(t, uint16(0), c.NumberOfShards())
	})
	t.Run("nil node ID should error", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommittee([]ShardCount{{NodeID: nil, Count: 1}})
		require.Nil(t, c)
		require.Equal(t, ErrNilNodeID, err)
	})
	t.Run("duplicate node ID should error", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommittee([]ShardCount{
			{NodeID: []byte("nodeA"), Count: 1},
			{NodeID: []byte("nodeA"), Count: 2},
		})
		require.Nil(t, c)
		require.Equal(t, ErrDuplicateNodeID, err)
	})
	t.Run("too many shards should error", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommittee([]ShardCount{
			{NodeID: []byte("nodeA"), Count: 40000},
			{NodeID: []byte("nodeB"), Count: 40000},
		})
		require.Nil(t, c)
		require.Equal(t, ErrTooManyShards, err)
	})
	t.Run("shards are numbered sequentially in node ID order", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommittee([]ShardCount{
			{NodeID: []byte("nodeB"), Count: 2},
			{NodeID: []byte("nodeA"), Count: 3},
		})
		require.NoError(t, err)
		require.Equal(t, uint16(5), c.NumberOfShards())
		require.Equal(t, []uint16{0, 1, 2}, c.ShardsOf([]byte("nodeA")))
		require.Equal(t, []uint16{3, 4}, c.ShardsOf([]byte("nodeB")))
	})
	t.Run("zero count nodes are left out", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommittee([]ShardCount{
			{NodeID: []byte("nodeA"), Count: 2},
			{NodeID: []byte("nodeB"), Count: 0},
		})
		require.NoError(t, err)
		require.Equal(t, 1, c.Size())
		require.False(t, c.Contains([]byte("nodeB")))
	})
}

func TestNewCommitteeFromMembers(t *testing.T) {
	t.Parallel()

	t.Run("round trips a saved member list", func(t *testing.T) {
		t.Parallel()

		original, err := NewCommittee([]ShardCount{
			{NodeID: []byte("nodeB"), Count: 2},
			{NodeID: []byte("nodeA"), Count: 3},
		})
		require.NoError(t, err)

		rebuilt, err := NewCommitteeFromMembers(original.Members())
		require.NoError(t, err)
		require.Equal(t, original.Members(), rebuilt.Members())
		require.Equal(t, original.NumberOfShards(), rebuilt.NumberOfShards())
	})
	t.Run("unsorted input ends up in node ID order", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommitteeFromMembers([]Member{
			{NodeID: []byte("nodeB"), Shards: []uint16{3, 4}},
			{NodeID: []byte("nodeA"), Shards: []uint16{0, 1, 2}},
		})
		require.NoError(t, err)
		require.Equal(t, [][]byte{[]byte("nodeA"), []byte("nodeB")}, c.MemberIDs())
	})
	t.Run("nil node ID should error", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommitteeFromMembers([]Member{{NodeID: nil, Shards: []uint16{0}}})
		require.Nil(t, c)
		require.Equal(t, ErrNilNodeID, err)
	})
	t.Run("duplicate node ID should error", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommitteeFromMembers([]Member{
			{NodeID: []byte("nodeA"), Shards: []uint16{0}},
			{NodeID: []byte("nodeA"), Shards: []uint16{1}},
		})
		require.Nil(t, c)
		require.Equal(t, ErrDuplicateNodeID, err)
	})
	t.Run("too many shards should error", func(t *testing.T) {
		t.Parallel()

		shards := make([]uint16, 40000)
		c, err := NewCommitteeFromMembers([]Member{
			{NodeID: []byte("nodeA"), Shards: shards},
			{NodeID: []byte("nodeB"), Shards: shards},
		})
		require.Nil(t, c)
		require.Equal(t, ErrTooManyShards, err)
	})
	t.Run("out of range shard index should error", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommitteeFromMembers([]Member{
			{NodeID: []byte("nodeA"), Shards: []uint16{0, 2}},
		})
		require.Nil(t, c)
		require.Equal(t, ErrInvalidShardAssignment, err)
	})
	t.Run("twice assigned shard should error", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommitteeFromMembers([]Member{
			{NodeID: []byte("nodeA"), Shards: []uint16{0}},
			{NodeID: []byte("nodeB"), Shards: []uint16{0}},
		})
		require.Nil(t, c)
		require.Equal(t, ErrInvalidShardAssignment, err)
	})
	t.Run("members without shards are left out", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommitteeFromMembers([]Member{
			{NodeID: []byte("nodeA"), Shards: []uint16{0, 1}},
			{NodeID: []byte("nodeB"), Shards: nil},
		})
		require.NoError(t, err)
		require.Equal(t, 1, c.Size())
		require.False(t, c.Contains([]byte("nodeB")))
	})
	t.Run("rebuilt committee is detached from the input", func(t *testing.T) {
		t.Parallel()

		members := []Member{{NodeID: []byte("nodeA"), Shards: []uint16{0, 1, 2}}}
		c, err := NewCommitteeFromMembers(members)
		require.NoError(t, err)

		members[0].Shards[0] = 99
		require.Equal(t, []uint16{0, 1, 2}, c.ShardsOf([]byte("nodeA")))
	})
}

func TestCommittee_Transition(t *testing.T) {
	t.Parallel()

	initialCounts := []ShardCount{
		{NodeID: []byte("nodeA"), Count: 3},
		{NodeID: []byte("nodeB"), Count: 2},
		{NodeID: []byte("nodeC"), Count: 1},
	}

	t.Run("same assignment leaves every shard in place", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommittee(initialCounts)
		require.NoError(t, err)

		next, err := c.Transition(initialCounts)
		require.NoError(t, err)
		require.Equal(t, c.Members(), next.Members())
	})
	t.Run("total shard count must be preserved", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommittee(initialCounts)
		require.NoError(t, err)

		next, err := c.Transition([]ShardCount{
			{NodeID: []byte("nodeA"), Count: 3},
			{NodeID: []byte("nodeB"), Count: 2},
		})
		require.Nil(t, next)
		require.Equal(t, ErrInvalidShardAssignment, err)
	})
	t.Run("released shards fill joining nodes", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommittee(initialCounts)
		require.NoError(t, err)

		next, err := c.Transition([]ShardCount{
			{NodeID: []byte("nodeA"), Count: 2},
			{NodeID: []byte("nodeB"), Count: 2},
			{NodeID: []byte("nodeD"), Count: 2},
		})
		require.NoError(t, err)
		require.Equal(t, uint16(6), next.NumberOfShards())

		// nodeA keeps a subset, nodeB is untouched, nodeD receives the
		// shards released by nodeA and the departed nodeC
		require.Equal(t, []uint16{0, 1}, next.ShardsOf([]byte("nodeA")))
		require.Equal(t, []uint16{3, 4}, next.ShardsOf([]byte("nodeB")))
		require.Equal(t, []uint16{2, 5}, next.ShardsOf([]byte("nodeD")))
		require.False(t, next.Contains([]byte("nodeC")))
	})
	t.Run("growing nodes keep their shards and gain released ones", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommittee([]ShardCount{
			{NodeID: []byte("nodeA"), Count: 1},
			{NodeID: []byte("nodeB"), Count: 2},
			{NodeID: []byte("nodeC"), Count: 3},
		})
		require.NoError(t, err)

		next, err := c.Transition([]ShardCount{
			{NodeID: []byte("nodeA"), Count: 3},
			{NodeID: []byte("nodeB"), Count: 2},
			{NodeID: []byte("nodeC"), Count: 1},
		})
		require.NoError(t, err)
		require.Equal(t, []uint16{0, 4, 5}, next.ShardsOf([]byte("nodeA")))
		require.Equal(t, []uint16{1, 2}, next.ShardsOf([]byte("nodeB")))
		require.Equal(t, []uint16{3}, next.ShardsOf([]byte("nodeC")))
	})
	t.Run("receiver is not mutated by a transition", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommittee(initialCounts)
		require.NoError(t, err)
		membersBefore := c.Members()

		_, err = c.Transition([]ShardCount{
			{NodeID: []byte("nodeD"), Count: 6},
		})
		require.NoError(t, err)
		require.Equal(t, membersBefore, c.Members())
	})
	t.Run("every shard is held by exactly one member after a transition", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommittee(initialCounts)
		require.NoError(t, err)

		next, err := c.Transition([]ShardCount{
			{NodeID: []byte("nodeE"), Count: 1},
			{NodeID: []byte("nodeC"), Count: 2},
			{NodeID: []byte("nodeB"), Count: 3},
		})
		require.NoError(t, err)

		seen := make(map[uint16]int)
		for _, member := range next.Members() {
			for _, shard := range member.Shards {
				seen[shard]++
			}
		}
		require.Len(t, seen, 6)
		for shard := uint16(0); shard < 6; shard++ {
			require.Equal(t, 1, seen[shard])
		}
	})
}

func TestCommittee_Diff(t *testing.T) {
	t.Parallel()

	t.Run("diff with itself is empty", func(t *testing.T) {
		t.Parallel()

		c, err := NewCommittee([]ShardCount{
			{NodeID: []byte("nodeA"), Count: 1},
			{NodeID: []byte("nodeB"), Count: 1},
		})
		require.NoError(t, err)

		left, right := c.Diff(c)
		require.Empty(t, left)
		require.Empty(t, right)
	})
	t.Run("diff partitions the symmetric difference", func(t *testing.T) {
		t.Parallel()

		a, err := NewCommittee([]ShardCount{
			{NodeID: []byte("nodeA"), Count: 1},
			{NodeID: []byte("nodeB"), Count: 1},
			{NodeID: []byte("nodeC"), Count: 1},
		})
		require.NoError(t, err)

		b, err := NewCommittee([]ShardCount{
			{NodeID: []byte("nodeB"), Count: 1},
			{NodeID: []byte("nodeC"), Count: 1},
			{NodeID: []byte("nodeD"), Count: 1},
			{NodeID: []byte("nodeE"), Count: 1},
		})
		require.NoError(t, err)

		onlyInA, onlyInB := a.Diff(b)
		require.Equal(t, [][]byte{[]byte("nodeA")}, onlyInA)
		require.Equal(t, [][]byte{[]byte("nodeD"), []byte("nodeE")}, onlyInB)

		mirroredB, mirroredA := b.Diff(a)
		require.Equal(t, onlyInA, mirroredA)
		require.Equal(t, onlyInB, mirroredB)
	})
}

func TestCommittee_Accessors(t *testing.T) {
	t.Parallel()

	c, err := NewCommittee([]ShardCount{
		{NodeID: []byte("nodeB"), Count: 2},
		{NodeID: []byte("nodeA"), Count: 4},
	})
	require.NoError(t, err)

	require.Equal(t, 2, c.Size())
	require.Equal(t, uint16(6), c.NumberOfShards())
	require.Equal(t, [][]byte{[]byte("nodeA"), []byte("nodeB")}, c.MemberIDs())
	require.Equal(t, uint16(4), c.WeightOf([]byte("nodeA")))
	require.Equal(t, uint16(0), c.WeightOf([]byte("unknown")))
	require.Empty(t, c.ShardsOf([]byte("unknown")))
	require.True(t, c.Contains([]byte("nodeB")))

	clone := c.Clone()
	require.Equal(t, c.Members(), clone.Members())
	require.Equal(t, c.NumberOfShards(), clone.NumberOfShards())

	// mutating a returned member list must not touch the committee
	members := c.Members()
	members[0].Shards[0] = 99
	require.Equal(t, []uint16{0, 1, 2, 3}, c.ShardsOf([]byte("nodeA")))
}
