package coordinator

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shardbay/sb-staking-go/staking"
	"github.com/shardbay/sb-staking-go/testscommon"
)

func TestStakingCoordinator_LoadState(t *testing.T) {
	t.Parallel()

	t.Run("no saved registry should error", func(t *testing.T) {
		t.Parallel()

		sc, err := NewStakingCoordinator(createMockArgs())
		require.Nil(t, err)

		require.Equal(t, staking.ErrRegistryNotFound, sc.LoadState())
	})
	t.Run("corrupted registry should error", func(t *testing.T) {
		t.Parallel()

		args := createMockArgs()
		require.Nil(t, args.RegistryStorer.Put([]byte(registryKey), []byte("not a registry")))

		sc, err := NewStakingCoordinator(args)
		require.Nil(t, err)

		require.NotNil(t, sc.LoadState())
	})
	t.Run("shard count mismatch should error", func(t *testing.T) {
		t.Parallel()

		startTime := time.Unix(100000, 0)
		argsA := createTimedArgs(&startTime)

		scA, err := NewStakingCoordinator(argsA)
		require.Nil(t, err)
		_ = seedLifecyclePools(t, scA)
		require.Nil(t, scA.SelectCommitteeAndCalculateVotes())
		require.Nil(t, scA.InitiateEpochChange(nil))

		argsB := createMockArgs()
		argsB.Config.NumberOfShards = 4
		argsB.RegistryStorer = argsA.RegistryStorer

		scB, err := NewStakingCoordinator(argsB)
		require.Nil(t, err)

		require.Equal(t, staking.ErrInvalidNumberOfShards, scB.LoadState())
	})
	t.Run("snapshot taken at selection round trips", func(t *testing.T) {
		t.Parallel()

		startTime := time.Unix(100000, 0)
		argsA := createTimedArgs(&startTime)

		scA, err := NewStakingCoordinator(argsA)
		require.Nil(t, err)
		_ = seedLifecyclePools(t, scA)
		require.Nil(t, scA.SelectCommitteeAndCalculateVotes())

		argsB := createMockArgs()
		argsB.RegistryStorer = argsA.RegistryStorer

		scB, err := NewStakingCoordinator(argsB)
		require.Nil(t, err)
		require.Nil(t, scB.LoadState())

		require.Equal(t, uint32(0), scB.Epoch())
		state := scB.EpochState()
		require.Equal(t, NextParamsSelected, state.Kind)
		require.True(t, state.LastEpochChange.Equal(startTime))
		require.Equal(t, scA.NextCommittee().Members(), scB.NextCommittee().Members())

		params := scB.NextParams()
		require.Equal(t, big.NewInt(90), params.StoragePrice)
		require.Equal(t, big.NewInt(50), params.WritePrice)
		require.Equal(t, big.NewInt(2000), params.NodeCapacity)

		// the restored coordinator runs the pending epoch change, though
		// without the pools it cannot rebuild the bls committee
		require.Nil(t, scB.InitiateEpochChange(nil))
		require.Equal(t, uint32(1), scB.Epoch())
		require.NotNil(t, scB.Committee())
		require.Equal(t, 0, argsB.CommitteeCache.(*testscommon.CacherMock).Len())
	})
	t.Run("snapshot taken at the epoch change round trips", func(t *testing.T) {
		t.Parallel()

		startTime := time.Unix(100000, 0)
		argsA := createTimedArgs(&startTime)

		scA, err := NewStakingCoordinator(argsA)
		require.Nil(t, err)
		nodes := seedLifecyclePools(t, scA)
		require.Nil(t, scA.SelectCommitteeAndCalculateVotes())
		require.Nil(t, scA.InitiateEpochChange(nil))

		argsB := createMockArgs()
		argsB.RegistryStorer = argsA.RegistryStorer

		scB, err := NewStakingCoordinator(argsB)
		require.Nil(t, err)
		require.Nil(t, scB.LoadState())

		require.Equal(t, uint32(1), scB.Epoch())
		state := scB.EpochState()
		require.Equal(t, EpochChangeSync, state.Kind)
		require.Equal(t, uint16(0), state.AttestedWeight)
		require.Equal(t, scA.Committee().Members(), scB.Committee().Members())
		require.Nil(t, scB.PreviousCommittee())
		require.Nil(t, scB.NextCommittee())

		// attestations resume on the restored committee
		require.Nil(t, scB.EpochSyncDone(nodes[0].nodeID, 1))
		require.Equal(t, uint16(4), scB.EpochState().AttestedWeight)
	})
	t.Run("failing storer does not block the state transitions", func(t *testing.T) {
		t.Parallel()

		args := createMockArgs()
		args.RegistryStorer = &testscommon.StorerStub{
			PutCalled: func(key []byte, data []byte) error {
				return errors.New("persistence failure")
			},
		}

		sc, err := NewStakingCoordinator(args)
		require.Nil(t, err)
		_ = seedLifecyclePools(t, sc)

		// the snapshot is lost but the selection itself must go through
		require.Nil(t, sc.SelectCommitteeAndCalculateVotes())
		require.Equal(t, NextParamsSelected, sc.EpochState().Kind)

		require.Equal(t, staking.ErrRegistryNotFound, sc.LoadState())
	})
	t.Run("attestations survive the snapshot", func(t *testing.T) {
		t.Parallel()

		startTime := time.Unix(100000, 0)
		argsA := createTimedArgs(&startTime)

		scA, err := NewStakingCoordinator(argsA)
		require.Nil(t, err)
		nodes := seedLifecyclePools(t, scA)
		require.Nil(t, scA.SelectCommitteeAndCalculateVotes())
		require.Nil(t, scA.InitiateEpochChange(nil))

		require.Nil(t, scA.EpochSyncDone(nodes[0].nodeID, 1))
		require.Nil(t, scA.EpochSyncDone(nodes[1].nodeID, 1))
		require.Equal(t, EpochChangeDone, scA.EpochState().Kind)

		argsB := createMockArgs()
		argsB.RegistryStorer = argsA.RegistryStorer

		scB, err := NewStakingCoordinator(argsB)
		require.Nil(t, err)
		require.Nil(t, scB.LoadState())

		require.Equal(t, EpochChangeDone, scB.EpochState().Kind)
		require.Equal(t, 2, len(scB.syncAttestations))
		_, found := scB.syncAttestations[string(nodes[0].nodeID)]
		require.True(t, found)
		_, found = scB.syncAttestations[string(nodes[1].nodeID)]
		require.True(t, found)
	})
}
