package pool

import (
	"bytes"
	"math/big"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/shardbay/sb-staking-go/staking"
)

var log = logger.GetOrCreate("staking/pool")

const maxCommissionRate = uint64(10000)

// PoolState discriminates the staking pool lifecycle.
type PoolState int

const (
	// PoolActive accepts stake and counts toward committee selection.
	PoolActive PoolState = iota
	// PoolWithdrawing no longer accepts stake and unwinds at a set epoch.
	PoolWithdrawing
	// PoolWithdrawn holds no balance and no shares.
	PoolWithdrawn
)

type pendingRate struct {
	epoch uint32
	rate  uint64
}

// ArgsStakingPool holds the arguments needed to create a staking pool.
type ArgsStakingPool struct {
	NodeID            []byte
	CommissionRate    uint64
	Votes             staking.EpochParams
	CurrentEpoch      uint32
	CommitteeSelected bool
}

// StakingPool tracks one node's delegated stake: the wal balance backing the
// node, the shares representing it and the additions and withdrawals queued
// for future epochs. Queued amounts are only applied at epoch boundaries
// through AdvanceEpoch, every other operation just records them.
type StakingPool struct {
	nodeID                []byte
	state                 PoolState
	withdrawingEpoch      uint32
	walBalance            *big.Int
	numShares             *big.Int
	pendingStake          *pendingValues
	pendingSharesWithdraw *pendingValues
	preActiveWithdrawals  *pendingValues
	commissionRate        uint64
	pendingCommission     *pendingRate
	exchangeRates         map[uint32]ExchangeRate
	rewardsPool           *big.Int
	commission            *big.Int
	votes                 staking.EpochParams
	activationEpoch       uint32
	latestEpoch           uint32
}

// NewStakingPool creates a pool for the given node. The pool becomes active
// at the next epoch, or one epoch later if the next committee was already
// selected.
func NewStakingPool(args ArgsStakingPool) (*StakingPool, error) {
	if len(args.NodeID) == 0 {
		return nil, staking.ErrNilNodeID
	}
	if args.CommissionRate > maxCommissionRate {
		return nil, ErrInvalidCommissionRate
	}

	activationEpoch := args.CurrentEpoch + 1
	if args.CommitteeSelected {
		activationEpoch = args.CurrentEpoch + 2
	}

	nodeID := make([]byte, len(args.NodeID))
	copy(nodeID, args.NodeID)

	return &StakingPool{
		nodeID:                nodeID,
		state:                 PoolActive,
		walBalance:            big.NewInt(0),
		numShares:             big.NewInt(0),
		pendingStake:          newPendingValues(),
		pendingSharesWithdraw: newPendingValues(),
		preActiveWithdrawals:  newPendingValues(),
		commissionRate:        args.CommissionRate,
		exchangeRates:         make(map[uint32]ExchangeRate),
		rewardsPool:           big.NewInt(0),
		commission:            big.NewInt(0),
		votes:                 args.Votes.Clone(),
		activationEpoch:       activationEpoch,
		latestEpoch:           activationEpoch - 1,
	}, nil
}

// Stake queues the given amount, activating at the next epoch or one later
// once the next committee is selected, and returns the stake receipt.
func (p *StakingPool) Stake(amount *big.Int, currentEpoch uint32, committeeSelected bool) (*StakedWal, error) {
	if p.state != PoolActive {
		return nil, ErrPoolNotActive
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidStakeAmount
	}

	activationEpoch := currentEpoch + 1
	if committeeSelected {
		activationEpoch = currentEpoch + 2
	}

	p.pendingStake.insertOrAdd(activationEpoch, amount)

	return &StakedWal{
		nodeID:          p.nodeID,
		principal:       big.NewInt(0).Set(amount),
		activationEpoch: activationEpoch,
		state:           Staked,
	}, nil
}

// RequestWithdraw queues the withdrawal of the given stake. Stake that is not
// active yet can only be queued when the node made it into the next
// committee, otherwise the caller must take the direct path. Active stake
// leaves after one epoch, or after two when the node serves in the next
// committee.
func (p *StakingPool) RequestWithdraw(receipt *StakedWal, currentEpoch uint32, inNextCommittee bool) error {
	err := p.checkReceipt(receipt)
	if err != nil {
		return err
	}
	if receipt.state != Staked {
		return ErrStakeAlreadyWithdrawing
	}

	if receipt.activationEpoch > currentEpoch {
		if !inNextCommittee {
			return ErrWithdrawDirectly
		}

		receipt.state = Withdrawing
		receipt.withdrawEpoch = receipt.activationEpoch + 1
		receipt.shareAmount = big.NewInt(0)
		p.preActiveWithdrawals.insertOrAdd(receipt.activationEpoch, receipt.principal)

		return nil
	}

	withdrawEpoch := currentEpoch + 1
	if inNextCommittee {
		withdrawEpoch = currentEpoch + 2
	}

	shares := p.ExchangeRateAt(receipt.activationEpoch).ConvertToShareAmount(receipt.principal)
	p.pendingSharesWithdraw.insertOrAdd(withdrawEpoch, shares)

	receipt.state = Withdrawing
	receipt.withdrawEpoch = withdrawEpoch
	receipt.shareAmount = shares

	return nil
}

// WithdrawDirectly pays back stake that has not activated yet, removing it
// from the queued additions. Only stake refused by RequestWithdraw with
// ErrWithdrawDirectly belongs here.
func (p *StakingPool) WithdrawDirectly(receipt *StakedWal, currentEpoch uint32) (*big.Int, error) {
	err := p.checkReceipt(receipt)
	if err != nil {
		return nil, err
	}
	if receipt.state != Staked {
		return nil, ErrStakeAlreadyWithdrawing
	}
	if receipt.activationEpoch <= currentEpoch {
		return nil, ErrStakeAlreadyActive
	}

	err = p.pendingStake.reduce(receipt.activationEpoch, receipt.principal)
	if err != nil {
		return nil, err
	}

	payout := big.NewInt(0).Set(receipt.principal)
	receipt.principal.SetInt64(0)

	return payout, nil
}

// Withdraw pays out a queued withdrawal once its epoch is reached: the
// principal plus the rewards accrued between activation and withdraw epoch.
func (p *StakingPool) Withdraw(receipt *StakedWal, currentEpoch uint32) (*big.Int, error) {
	err := p.checkReceipt(receipt)
	if err != nil {
		return nil, err
	}
	if receipt.state != Withdrawing {
		return nil, ErrStakeNotWithdrawing
	}
	if currentEpoch < receipt.withdrawEpoch {
		return nil, ErrWithdrawEpochNotReached
	}

	rewards := p.CalculateRewards(receipt.principal, receipt.activationEpoch, receipt.withdrawEpoch)
	payout := big.NewInt(0).Add(receipt.principal, rewards)

	paidFromPool := rewards
	if rewards.Cmp(p.rewardsPool) > 0 {
		paidFromPool = big.NewInt(0).Set(p.rewardsPool)
	}
	p.rewardsPool.Sub(p.rewardsPool, paidFromPool)

	receipt.principal.SetInt64(0)
	receipt.shareAmount = big.NewInt(0)

	return payout, nil
}

// CalculateRewards round-trips the principal through pool shares at the two
// historical rates: what it bought at activation, valued at withdrawal. The
// result never goes below zero.
func (p *StakingPool) CalculateRewards(principal *big.Int, activationEpoch uint32, withdrawEpoch uint32) *big.Int {
	if principal == nil {
		return big.NewInt(0)
	}

	shares := p.ExchangeRateAt(activationEpoch).ConvertToShareAmount(principal)
	total := p.ExchangeRateAt(withdrawEpoch).ConvertToWalAmount(shares)

	rewards := total.Sub(total, principal)
	if rewards.Sign() < 0 {
		return big.NewInt(0)
	}

	return rewards
}

// AdvanceEpoch applies one epoch boundary to the pool: the commission cut is
// taken from the rewards, the remainder compounds into the balance and the
// queued stake movements due at the new epoch are settled.
func (p *StakingPool) AdvanceEpoch(rewards *big.Int, epoch uint32) error {
	if epoch <= p.latestEpoch {
		return ErrEpochAlreadyProcessed
	}

	if p.pendingCommission != nil && epoch >= p.pendingCommission.epoch {
		p.commissionRate = p.pendingCommission.rate
		p.pendingCommission = nil
	}

	if rewards != nil && rewards.Sign() > 0 {
		cut := big.NewInt(0).Mul(rewards, big.NewInt(0).SetUint64(p.commissionRate))
		cut.Div(cut, big.NewInt(0).SetUint64(maxCommissionRate))

		remainder := big.NewInt(0).Sub(rewards, cut)
		p.commission.Add(p.commission, cut)
		p.rewardsPool.Add(p.rewardsPool, remainder)
		p.walBalance.Add(p.walBalance, remainder)
	}

	p.processPendingStake(epoch)
	p.latestEpoch = epoch

	if p.state == PoolWithdrawing && epoch >= p.withdrawingEpoch && p.IsEmpty() {
		p.state = PoolWithdrawn
	}

	log.Trace("pool advanced epoch",
		"node", p.nodeID,
		"epoch", epoch,
		"wal balance", p.walBalance,
		"num shares", p.numShares,
	)

	return nil
}

// processPendingStake settles the stake movements due at the given epoch. The
// snapshot rate is recorded before the new stake joins: additions from this
// epoch must not dilute the value paid to the withdrawals settled here.
func (p *StakingPool) processPendingStake(epoch uint32) {
	snapshot := p.currentExchangeRate()
	p.exchangeRates[epoch] = snapshot

	p.walBalance.Add(p.walBalance, p.pendingStake.flush(epoch))

	sharesOut := p.pendingSharesWithdraw.flush(epoch)
	p.walBalance.Sub(p.walBalance, snapshot.ConvertToWalAmount(sharesOut))

	if epoch > 0 {
		// a pre-active withdrawal stays in the pool for exactly one epoch:
		// its principal converts at the rate of its own activation epoch
		p.preActiveWithdrawals.flushEach(epoch-1, func(activationEpoch uint32, principal *big.Int) {
			shares := p.ExchangeRateAt(activationEpoch).ConvertToShareAmount(principal)
			p.walBalance.Sub(p.walBalance, snapshot.ConvertToWalAmount(shares))
		})
	}

	p.numShares = snapshot.ConvertToShareAmount(p.walBalance)
}

// StakeAtEpoch returns the stake counting toward the committee selection of
// the given epoch: the current balance plus the additions and minus the
// withdrawals settling by then.
func (p *StakingPool) StakeAtEpoch(epoch uint32) *big.Int {
	stake := big.NewInt(0).Add(p.walBalance, p.pendingStake.valueAt(epoch))

	rate := p.currentExchangeRate()
	sharesOut := p.pendingSharesWithdraw.valueAt(epoch)
	stake.Sub(stake, rate.ConvertToWalAmount(sharesOut))

	if epoch > 0 {
		stake.Sub(stake, p.preActiveWithdrawals.valueAt(epoch-1))
	}

	if stake.Sign() < 0 {
		return big.NewInt(0)
	}

	return stake
}

// SetWithdrawing marks the pool as leaving: it stops accepting stake and
// unwinds at the given epoch.
func (p *StakingPool) SetWithdrawing(withdrawEpoch uint32) error {
	if p.state != PoolActive {
		return ErrPoolAlreadyWithdrawing
	}

	p.state = PoolWithdrawing
	p.withdrawingEpoch = withdrawEpoch

	return nil
}

// SetNextCommissionRate schedules a commission rate change taking effect two
// epochs ahead. Scheduling again overwrites a not yet applied change.
func (p *StakingPool) SetNextCommissionRate(rate uint64, currentEpoch uint32) error {
	if rate > maxCommissionRate {
		return ErrInvalidCommissionRate
	}

	p.pendingCommission = &pendingRate{
		epoch: currentEpoch + 2,
		rate:  rate,
	}

	return nil
}

// CollectCommission returns the accrued commission and resets it.
func (p *StakingPool) CollectCommission() *big.Int {
	collected := p.commission
	p.commission = big.NewInt(0)

	return collected
}

// SetStoragePrice records the node's vote for the storage price.
func (p *StakingPool) SetStoragePrice(price *big.Int) error {
	if price == nil {
		return ErrNilVoteValue
	}

	p.votes.StoragePrice = big.NewInt(0).Set(price)

	return nil
}

// SetWritePrice records the node's vote for the write price.
func (p *StakingPool) SetWritePrice(price *big.Int) error {
	if price == nil {
		return ErrNilVoteValue
	}

	p.votes.WritePrice = big.NewInt(0).Set(price)

	return nil
}

// SetNodeCapacity records the node's vote for the storage capacity it serves.
func (p *StakingPool) SetNodeCapacity(capacity *big.Int) error {
	if capacity == nil {
		return ErrNilVoteValue
	}

	p.votes.NodeCapacity = big.NewInt(0).Set(capacity)

	return nil
}

// Votes returns the node's current parameter votes.
func (p *StakingPool) Votes() staking.EpochParams {
	return p.votes.Clone()
}

// ExchangeRateAt returns the recorded rate of the given epoch, or the flat
// rate when the pool did not process that epoch.
func (p *StakingPool) ExchangeRateAt(epoch uint32) ExchangeRate {
	rate, found := p.exchangeRates[epoch]
	if !found {
		return FlatExchangeRate()
	}

	return rate
}

// IsEmpty returns true when the pool holds no balance, no shares and no
// queued movements.
func (p *StakingPool) IsEmpty() bool {
	noBalance := p.walBalance.Sign() == 0 && p.numShares.Sign() == 0
	noPending := p.pendingStake.isEmpty() &&
		p.pendingSharesWithdraw.isEmpty() &&
		p.preActiveWithdrawals.isEmpty()

	return noBalance && noPending
}

// NodeID returns the node this pool belongs to.
func (p *StakingPool) NodeID() []byte {
	id := make([]byte, len(p.nodeID))
	copy(id, p.nodeID)

	return id
}

// State returns the pool lifecycle state.
func (p *StakingPool) State() PoolState {
	return p.state
}

// WithdrawingEpoch returns the epoch the pool unwinds at. It is only
// meaningful in the PoolWithdrawing state.
func (p *StakingPool) WithdrawingEpoch() uint32 {
	return p.withdrawingEpoch
}

// WalBalance returns the wal amount backing the pool.
func (p *StakingPool) WalBalance() *big.Int {
	return big.NewInt(0).Set(p.walBalance)
}

// NumShares returns the outstanding pool shares.
func (p *StakingPool) NumShares() *big.Int {
	return big.NewInt(0).Set(p.numShares)
}

// RewardsPool returns the undistributed rewards held by the pool.
func (p *StakingPool) RewardsPool() *big.Int {
	return big.NewInt(0).Set(p.rewardsPool)
}

// Commission returns the commission accrued so far.
func (p *StakingPool) Commission() *big.Int {
	return big.NewInt(0).Set(p.commission)
}

// CommissionRate returns the active commission rate in basis points.
func (p *StakingPool) CommissionRate() uint64 {
	return p.commissionRate
}

// ActivationEpoch returns the epoch the pool became or becomes active.
func (p *StakingPool) ActivationEpoch() uint32 {
	return p.activationEpoch
}

// LatestEpoch returns the last epoch processed by the pool.
func (p *StakingPool) LatestEpoch() uint32 {
	return p.latestEpoch
}

func (p *StakingPool) currentExchangeRate() ExchangeRate {
	if p.walBalance.Sign() == 0 || p.numShares.Sign() == 0 {
		return FlatExchangeRate()
	}

	return ExchangeRate{
		walAmount:   big.NewInt(0).Set(p.walBalance),
		shareAmount: big.NewInt(0).Set(p.numShares),
	}
}

func (p *StakingPool) checkReceipt(receipt *StakedWal) error {
	if receipt == nil {
		return ErrNilStakeReceipt
	}
	if !bytes.Equal(receipt.nodeID, p.nodeID) {
		return ErrWrongPool
	}
	if receipt.principal.Sign() == 0 {
		return ErrNothingToWithdraw
	}

	return nil
}
