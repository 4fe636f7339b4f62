package coordinator

import (
	"math/big"

	"github.com/shardbay/sb-staking-go/staking"
	"github.com/shardbay/sb-staking-go/staking/pool"
)

// RegisterPool creates the staking pool of a new node candidate. The bls
// public key authenticates the node's certificates once it serves in a
// committee, the commission rate and the parameter votes seed the pool.
func (sc *stakingCoordinator) RegisterPool(nodeID []byte, blsPublicKey []byte, commissionRate uint64, votes staking.EpochParams) error {
	if len(nodeID) == 0 {
		return staking.ErrNilNodeID
	}
	if len(blsPublicKey) == 0 {
		return staking.ErrNilPublicKey
	}

	_, err := sc.keyGen.PublicKeyFromByteArray(blsPublicKey)
	if err != nil {
		return err
	}

	sc.mut.Lock()
	defer sc.mut.Unlock()

	_, exists := sc.pools[string(nodeID)]
	if exists {
		return staking.ErrPoolAlreadyExists
	}

	stakingPool, err := pool.NewStakingPool(pool.ArgsStakingPool{
		NodeID:            nodeID,
		CommissionRate:    commissionRate,
		Votes:             votes,
		CurrentEpoch:      sc.epoch,
		CommitteeSelected: sc.state.Kind == NextParamsSelected,
	})
	if err != nil {
		return err
	}

	blsKey := make([]byte, len(blsPublicKey))
	copy(blsKey, blsPublicKey)

	sc.pools[string(nodeID)] = stakingPool
	sc.blsKeys[string(nodeID)] = blsKey

	log.Debug("staking pool registered",
		"node", nodeID,
		"activation epoch", stakingPool.ActivationEpoch(),
		"commission rate", commissionRate,
	)

	return nil
}

// Stake adds the given amount to the node's pool, counting toward committee
// selection from the stake's activation epoch on. Returns the staked wal
// receipt guarding the amount.
func (sc *stakingCoordinator) Stake(nodeID []byte, amount *big.Int) (*pool.StakedWal, error) {
	sc.mut.Lock()
	defer sc.mut.Unlock()

	stakingPool, err := sc.poolByNode(nodeID)
	if err != nil {
		return nil, err
	}

	receipt, err := stakingPool.Stake(amount, sc.epoch, sc.state.Kind == NextParamsSelected)
	if err != nil {
		return nil, err
	}

	sc.refreshActiveSet(stakingPool)

	return receipt, nil
}

// RequestWithdraw schedules the withdrawal of the given stake. Stake of a node
// serving in the next committee leaves one epoch later than usual, pre-active
// stake of any other node must take the direct path instead.
func (sc *stakingCoordinator) RequestWithdraw(receipt *pool.StakedWal) error {
	if receipt == nil {
		return pool.ErrNilStakeReceipt
	}

	sc.mut.Lock()
	defer sc.mut.Unlock()

	stakingPool, err := sc.poolByNode(receipt.NodeID())
	if err != nil {
		return err
	}

	err = stakingPool.RequestWithdraw(receipt, sc.epoch, sc.inNextCommittee(receipt.NodeID()))
	if err != nil {
		return err
	}

	sc.refreshActiveSet(stakingPool)

	return nil
}

// Withdraw pays out a previously requested withdrawal once its epoch is
// reached: the principal plus the rewards accrued while the stake was active.
func (sc *stakingCoordinator) Withdraw(receipt *pool.StakedWal) (*big.Int, error) {
	if receipt == nil {
		return nil, pool.ErrNilStakeReceipt
	}

	sc.mut.Lock()
	defer sc.mut.Unlock()

	stakingPool, err := sc.poolByNode(receipt.NodeID())
	if err != nil {
		return nil, err
	}

	payout, err := stakingPool.Withdraw(receipt, sc.epoch)
	if err != nil {
		return nil, err
	}

	sc.refreshActiveSet(stakingPool)

	return payout, nil
}

// WithdrawDirectly pays back stake that did not activate yet when its node is
// not slated for the next committee.
func (sc *stakingCoordinator) WithdrawDirectly(receipt *pool.StakedWal) (*big.Int, error) {
	if receipt == nil {
		return nil, pool.ErrNilStakeReceipt
	}

	sc.mut.Lock()
	defer sc.mut.Unlock()

	stakingPool, err := sc.poolByNode(receipt.NodeID())
	if err != nil {
		return nil, err
	}

	payout, err := stakingPool.WithdrawDirectly(receipt, sc.epoch)
	if err != nil {
		return nil, err
	}

	sc.refreshActiveSet(stakingPool)

	return payout, nil
}

// WithdrawNode takes the node out of the system: its pool stops accepting
// stake, leaves the candidate set and unwinds once its last committee duty is
// served.
func (sc *stakingCoordinator) WithdrawNode(nodeID []byte) error {
	sc.mut.Lock()
	defer sc.mut.Unlock()

	stakingPool, err := sc.poolByNode(nodeID)
	if err != nil {
		return err
	}

	err = stakingPool.SetWithdrawing(sc.selectionEpoch())
	if err != nil {
		return err
	}

	sc.activeSet.Remove(stakingPool.NodeID())

	log.Debug("node withdrawing", "node", nodeID, "withdraw epoch", stakingPool.WithdrawingEpoch())

	return nil
}

// DestroyEmptyPool removes the pool of a node that fully unwound: every stake
// left, so destruction cannot strand an unredeemed receipt. The accrued
// commission must be collected first. The node's bls key stays behind,
// certificates of the epochs it served in remain verifiable.
func (sc *stakingCoordinator) DestroyEmptyPool(nodeID []byte) error {
	sc.mut.Lock()
	defer sc.mut.Unlock()

	stakingPool, err := sc.poolByNode(nodeID)
	if err != nil {
		return err
	}

	if stakingPool.State() != pool.PoolWithdrawn {
		return staking.ErrPoolNotWithdrawn
	}
	if stakingPool.Commission().Sign() != 0 {
		return staking.ErrCommissionNotCollected
	}

	delete(sc.pools, string(nodeID))
	sc.activeSet.Remove(nodeID)

	log.Debug("empty pool destroyed", "node", nodeID)

	return nil
}

// SetNextCommissionRate schedules the commission rate the node's pool applies
// from two epochs ahead.
func (sc *stakingCoordinator) SetNextCommissionRate(nodeID []byte, rate uint64) error {
	sc.mut.Lock()
	defer sc.mut.Unlock()

	stakingPool, err := sc.poolByNode(nodeID)
	if err != nil {
		return err
	}

	return stakingPool.SetNextCommissionRate(rate, sc.epoch)
}

// CollectCommission pays out the commission accrued by the node's pool
func (sc *stakingCoordinator) CollectCommission(nodeID []byte) (*big.Int, error) {
	sc.mut.Lock()
	defer sc.mut.Unlock()

	stakingPool, err := sc.poolByNode(nodeID)
	if err != nil {
		return nil, err
	}

	return stakingPool.CollectCommission(), nil
}

// SetStoragePrice records the node's vote for the next storage price
func (sc *stakingCoordinator) SetStoragePrice(nodeID []byte, price *big.Int) error {
	sc.mut.Lock()
	defer sc.mut.Unlock()

	stakingPool, err := sc.poolByNode(nodeID)
	if err != nil {
		return err
	}

	return stakingPool.SetStoragePrice(price)
}

// SetWritePrice records the node's vote for the next write price
func (sc *stakingCoordinator) SetWritePrice(nodeID []byte, price *big.Int) error {
	sc.mut.Lock()
	defer sc.mut.Unlock()

	stakingPool, err := sc.poolByNode(nodeID)
	if err != nil {
		return err
	}

	return stakingPool.SetWritePrice(price)
}

// SetNodeCapacity records the node's vote for the storage capacity it serves
func (sc *stakingCoordinator) SetNodeCapacity(nodeID []byte, capacity *big.Int) error {
	sc.mut.Lock()
	defer sc.mut.Unlock()

	stakingPool, err := sc.poolByNode(nodeID)
	if err != nil {
		return err
	}

	return stakingPool.SetNodeCapacity(capacity)
}

// poolByNode needs to be called under mutex.
func (sc *stakingCoordinator) poolByNode(nodeID []byte) (*pool.StakingPool, error) {
	stakingPool, found := sc.pools[string(nodeID)]
	if !found {
		return nil, staking.ErrPoolNotFound
	}

	return stakingPool, nil
}

// refreshActiveSet re-ranks the node with the stake it will carry into the
// upcoming committee selection. Needs to be called under mutex.
func (sc *stakingCoordinator) refreshActiveSet(stakingPool *pool.StakingPool) {
	if stakingPool.State() != pool.PoolActive {
		sc.activeSet.Remove(stakingPool.NodeID())
		return
	}

	sc.activeSet.InsertOrUpdate(stakingPool.NodeID(), stakingPool.StakeAtEpoch(sc.selectionEpoch()))
}

// selectionEpoch returns the epoch targeted by the upcoming committee
// selection. Needs to be called under mutex.
func (sc *stakingCoordinator) selectionEpoch() uint32 {
	if sc.state.Kind == NextParamsSelected {
		return sc.epoch + 2
	}

	return sc.epoch + 1
}

// inNextCommittee needs to be called under mutex.
func (sc *stakingCoordinator) inNextCommittee(nodeID []byte) bool {
	return sc.nextCommittee != nil && sc.nextCommittee.Contains(nodeID)
}
