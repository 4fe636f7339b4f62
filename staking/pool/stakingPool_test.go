package pool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shardbay/sb-staking-go/staking"
)

func newTestPool(t *testing.T, commissionRate uint64) *StakingPool {
	p, err := NewStakingPool(ArgsStakingPool{
		NodeID:         []byte("node1"),
		CommissionRate: commissionRate,
		Votes: staking.EpochParams{
			StoragePrice: big.NewInt(100),
			WritePrice:   big.NewInt(50),
			NodeCapacity: big.NewInt(1 << 30),
		},
		CurrentEpoch: 10,
	})
	require.NoError(t, err)

	return p
}

func TestNewStakingPool(t *testing.T) {
	t.Parallel()

	t.Run("nil node ID should error", func(t *testing.T) {
		t.Parallel()

		p, err := NewStakingPool(ArgsStakingPool{CurrentEpoch: 10})
		require.Nil(t, p)
		require.Equal(t, staking.ErrNilNodeID, err)
	})
	t.Run("commission rate above the maximum should error", func(t *testing.T) {
		t.Parallel()

		p, err := NewStakingPool(ArgsStakingPool{
			NodeID:         []byte("node1"),
			CommissionRate: 10001,
			CurrentEpoch:   10,
		})
		require.Nil(t, p)
		require.Equal(t, ErrInvalidCommissionRate, err)
	})
	t.Run("activation is one epoch ahead", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		require.Equal(t, uint32(11), p.ActivationEpoch())
		require.Equal(t, uint32(10), p.LatestEpoch())
		require.Equal(t, PoolActive, p.State())
		require.True(t, p.IsEmpty())
	})
	t.Run("activation shifts when the committee is already selected", func(t *testing.T) {
		t.Parallel()

		p, err := NewStakingPool(ArgsStakingPool{
			NodeID:            []byte("node1"),
			CurrentEpoch:      10,
			CommitteeSelected: true,
		})
		require.NoError(t, err)
		require.Equal(t, uint32(12), p.ActivationEpoch())
	})
}

func TestStakingPool_Stake(t *testing.T) {
	t.Parallel()

	t.Run("invalid amount should error", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		_, err := p.Stake(nil, 10, false)
		require.Equal(t, ErrInvalidStakeAmount, err)

		_, err = p.Stake(big.NewInt(0), 10, false)
		require.Equal(t, ErrInvalidStakeAmount, err)
	})
	t.Run("withdrawing pool should refuse stake", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		require.NoError(t, p.SetWithdrawing(12))

		_, err := p.Stake(big.NewInt(100), 10, false)
		require.Equal(t, ErrPoolNotActive, err)
	})
	t.Run("stake activates next epoch and counts from then", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		receipt, err := p.Stake(big.NewInt(1000), 10, false)
		require.NoError(t, err)
		require.Equal(t, uint32(11), receipt.ActivationEpoch())

		require.Equal(t, big.NewInt(0), p.StakeAtEpoch(10))
		require.Equal(t, big.NewInt(1000), p.StakeAtEpoch(11))
		require.Equal(t, big.NewInt(0), p.WalBalance())
	})
	t.Run("stake after committee selection activates one epoch later", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		receipt, err := p.Stake(big.NewInt(1000), 10, true)
		require.NoError(t, err)
		require.Equal(t, uint32(12), receipt.ActivationEpoch())
		require.Equal(t, big.NewInt(0), p.StakeAtEpoch(11))
		require.Equal(t, big.NewInt(1000), p.StakeAtEpoch(12))
	})
}

func TestStakingPool_AdvanceEpoch(t *testing.T) {
	t.Parallel()

	t.Run("epoch already processed should error", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		require.Equal(t, ErrEpochAlreadyProcessed, p.AdvanceEpoch(nil, 10))
	})
	t.Run("pending stake joins the balance at activation", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		_, err := p.Stake(big.NewInt(1000), 10, false)
		require.NoError(t, err)

		require.NoError(t, p.AdvanceEpoch(nil, 11))
		require.Equal(t, big.NewInt(1000), p.WalBalance())
		require.Equal(t, big.NewInt(1000), p.NumShares())
		require.True(t, p.ExchangeRateAt(11).IsFlat())
	})
	t.Run("rewards appreciate the shares without minting new ones", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		_, err := p.Stake(big.NewInt(1000), 10, false)
		require.NoError(t, err)
		require.NoError(t, p.AdvanceEpoch(nil, 11))

		require.NoError(t, p.AdvanceEpoch(big.NewInt(100), 12))
		require.Equal(t, big.NewInt(1100), p.WalBalance())
		require.Equal(t, big.NewInt(1000), p.NumShares())
		require.Equal(t, big.NewInt(100), p.RewardsPool())
		require.Equal(t, big.NewInt(100), p.CalculateRewards(big.NewInt(1000), 11, 12))
	})
	t.Run("new stake does not dilute withdrawals settled in the same epoch", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		first, err := p.Stake(big.NewInt(1000), 10, false)
		require.NoError(t, err)
		require.NoError(t, p.AdvanceEpoch(nil, 11))
		require.NoError(t, p.AdvanceEpoch(big.NewInt(100), 12))

		// a large stake arrives in the same epoch the first staker leaves
		_, err = p.Stake(big.NewInt(2200), 12, false)
		require.NoError(t, err)
		require.NoError(t, p.RequestWithdraw(first, 12, false))
		require.Equal(t, uint32(13), first.WithdrawEpoch())
		require.Equal(t, big.NewInt(1000), first.ShareAmount())

		require.NoError(t, p.AdvanceEpoch(nil, 13))

		// the departing shares were paid at the pre-addition rate of 1.1,
		// the arriving 2200 bought 2000 shares at that same rate
		require.Equal(t, big.NewInt(2200), p.WalBalance())
		require.Equal(t, big.NewInt(2000), p.NumShares())

		payout, err := p.Withdraw(first, 13)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(1100), payout)
		require.Equal(t, big.NewInt(0), p.RewardsPool())
	})
}

func TestStakingPool_WithdrawalPaths(t *testing.T) {
	t.Parallel()

	t.Run("pre-active stake of a node outside the next committee must go direct", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		receipt, err := p.Stake(big.NewInt(1000), 10, false)
		require.NoError(t, err)

		err = p.RequestWithdraw(receipt, 10, false)
		require.Equal(t, ErrWithdrawDirectly, err)

		payout, err := p.WithdrawDirectly(receipt, 10)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(1000), payout)
		require.Equal(t, big.NewInt(0), p.StakeAtEpoch(11))
		require.True(t, p.IsEmpty())

		_, err = p.WithdrawDirectly(receipt, 10)
		require.Equal(t, ErrNothingToWithdraw, err)
	})
	t.Run("direct withdrawal of active stake should error", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		receipt, err := p.Stake(big.NewInt(1000), 10, false)
		require.NoError(t, err)
		require.NoError(t, p.AdvanceEpoch(nil, 11))

		_, err = p.WithdrawDirectly(receipt, 11)
		require.Equal(t, ErrStakeAlreadyActive, err)
	})
	t.Run("pre-active stake of a next committee node stays one epoch", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		receipt, err := p.Stake(big.NewInt(1000), 10, false)
		require.NoError(t, err)

		require.NoError(t, p.RequestWithdraw(receipt, 10, true))
		require.Equal(t, Withdrawing, receipt.State())
		require.Equal(t, uint32(12), receipt.WithdrawEpoch())

		// the stake still activates and earns for exactly one epoch
		require.NoError(t, p.AdvanceEpoch(nil, 11))
		require.Equal(t, big.NewInt(1000), p.WalBalance())

		require.NoError(t, p.AdvanceEpoch(big.NewInt(50), 12))
		require.Equal(t, big.NewInt(0), p.WalBalance())
		require.Equal(t, big.NewInt(0), p.NumShares())

		payout, err := p.Withdraw(receipt, 12)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(1050), payout)
	})
	t.Run("active stake withdrawal waits one more epoch when serving next committee", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		receipt, err := p.Stake(big.NewInt(1000), 10, false)
		require.NoError(t, err)
		require.NoError(t, p.AdvanceEpoch(nil, 11))

		require.NoError(t, p.RequestWithdraw(receipt, 11, true))
		require.Equal(t, uint32(13), receipt.WithdrawEpoch())

		_, err = p.Withdraw(receipt, 12)
		require.Equal(t, ErrWithdrawEpochNotReached, err)

		require.NoError(t, p.AdvanceEpoch(nil, 12))
		require.NoError(t, p.AdvanceEpoch(nil, 13))

		payout, err := p.Withdraw(receipt, 13)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(1000), payout)

		_, err = p.Withdraw(receipt, 13)
		require.Equal(t, ErrNothingToWithdraw, err)
	})
	t.Run("withdrawal request on a foreign receipt should error", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		other, err := NewStakingPool(ArgsStakingPool{
			NodeID:       []byte("node2"),
			CurrentEpoch: 10,
		})
		require.NoError(t, err)

		receipt, err := other.Stake(big.NewInt(1000), 10, false)
		require.NoError(t, err)

		require.Equal(t, ErrWrongPool, p.RequestWithdraw(receipt, 10, true))
		require.Equal(t, ErrNilStakeReceipt, p.RequestWithdraw(nil, 10, true))
	})
	t.Run("double withdrawal request should error", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		receipt, err := p.Stake(big.NewInt(1000), 10, false)
		require.NoError(t, err)

		require.NoError(t, p.RequestWithdraw(receipt, 10, true))
		require.Equal(t, ErrStakeAlreadyWithdrawing, p.RequestWithdraw(receipt, 10, true))
	})
	t.Run("split receipt withdraws its part directly", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		receipt, err := p.Stake(big.NewInt(1000), 10, false)
		require.NoError(t, err)

		part, err := receipt.Split(big.NewInt(400))
		require.NoError(t, err)

		payout, err := p.WithdrawDirectly(part, 10)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(400), payout)
		require.Equal(t, big.NewInt(600), p.StakeAtEpoch(11))
	})
}

func TestStakingPool_StakeAtEpoch(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 0)
	first, err := p.Stake(big.NewInt(600), 10, false)
	require.NoError(t, err)
	second, err := p.Stake(big.NewInt(400), 10, false)
	require.NoError(t, err)
	require.Equal(t, first.ActivationEpoch(), second.ActivationEpoch())

	require.Equal(t, big.NewInt(1000), p.StakeAtEpoch(11))
	require.NoError(t, p.AdvanceEpoch(nil, 11))

	require.NoError(t, p.RequestWithdraw(second, 11, false))
	require.Equal(t, big.NewInt(1000), p.StakeAtEpoch(11))
	require.Equal(t, big.NewInt(600), p.StakeAtEpoch(12))
}

func TestStakingPool_Commission(t *testing.T) {
	t.Parallel()

	t.Run("commission cut accrues to the operator", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 1000)
		_, err := p.Stake(big.NewInt(1000), 10, false)
		require.NoError(t, err)
		require.NoError(t, p.AdvanceEpoch(nil, 11))

		require.NoError(t, p.AdvanceEpoch(big.NewInt(200), 12))
		require.Equal(t, big.NewInt(20), p.Commission())
		require.Equal(t, big.NewInt(180), p.RewardsPool())
		require.Equal(t, big.NewInt(1180), p.WalBalance())

		collected := p.CollectCommission()
		require.Equal(t, big.NewInt(20), collected)
		require.Equal(t, big.NewInt(0), p.Commission())
	})
	t.Run("commission rate change takes effect two epochs later", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 1000)
		_, err := p.Stake(big.NewInt(1000), 10, false)
		require.NoError(t, err)
		require.NoError(t, p.AdvanceEpoch(nil, 11))

		require.NoError(t, p.SetNextCommissionRate(2000, 12))
		require.NoError(t, p.AdvanceEpoch(big.NewInt(100), 12))
		require.Equal(t, uint64(1000), p.CommissionRate())
		require.Equal(t, big.NewInt(10), p.Commission())

		require.NoError(t, p.AdvanceEpoch(nil, 13))
		require.Equal(t, uint64(1000), p.CommissionRate())

		require.NoError(t, p.AdvanceEpoch(big.NewInt(100), 14))
		require.Equal(t, uint64(2000), p.CommissionRate())
		require.Equal(t, big.NewInt(30), p.Commission())
	})
	t.Run("invalid rate should error", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		require.Equal(t, ErrInvalidCommissionRate, p.SetNextCommissionRate(10001, 12))
	})
}

func TestStakingPool_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("set withdrawing twice should error", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		require.NoError(t, p.SetWithdrawing(12))
		require.Equal(t, PoolWithdrawing, p.State())
		require.Equal(t, uint32(12), p.WithdrawingEpoch())
		require.Equal(t, ErrPoolAlreadyWithdrawing, p.SetWithdrawing(13))
	})
	t.Run("drained withdrawing pool becomes withdrawn", func(t *testing.T) {
		t.Parallel()

		p := newTestPool(t, 0)
		receipt, err := p.Stake(big.NewInt(1000), 10, false)
		require.NoError(t, err)
		require.NoError(t, p.AdvanceEpoch(nil, 11))

		require.NoError(t, p.RequestWithdraw(receipt, 11, false))
		require.NoError(t, p.SetWithdrawing(12))

		require.NoError(t, p.AdvanceEpoch(nil, 12))
		require.Equal(t, PoolWithdrawn, p.State())
		require.True(t, p.IsEmpty())

		payout, err := p.Withdraw(receipt, 12)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(1000), payout)
	})
}

func TestStakingPool_Votes(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 0)
	votes := p.Votes()
	require.Equal(t, big.NewInt(100), votes.StoragePrice)
	require.Equal(t, big.NewInt(50), votes.WritePrice)

	require.Equal(t, ErrNilVoteValue, p.SetStoragePrice(nil))
	require.NoError(t, p.SetStoragePrice(big.NewInt(120)))
	require.NoError(t, p.SetWritePrice(big.NewInt(60)))
	require.NoError(t, p.SetNodeCapacity(big.NewInt(2<<30)))

	votes = p.Votes()
	require.Equal(t, big.NewInt(120), votes.StoragePrice)
	require.Equal(t, big.NewInt(60), votes.WritePrice)
	require.Equal(t, big.NewInt(2<<30), votes.NodeCapacity)

	// mutating the returned copy must not touch the pool
	votes.StoragePrice.SetInt64(0)
	require.Equal(t, big.NewInt(120), p.Votes().StoragePrice)
}
