package factory

import (
	"math/big"

	"github.com/shardbay/sb-staking-go/messages"
	"github.com/shardbay/sb-staking-go/staking"
	"github.com/shardbay/sb-staking-go/staking/committee"
	"github.com/shardbay/sb-staking-go/staking/coordinator"
	"github.com/shardbay/sb-staking-go/staking/pool"
)

// StakingCoordinator defines the operations of the staking core exposed to the node
type StakingCoordinator interface {
	RegisterPool(nodeID []byte, blsPublicKey []byte, commissionRate uint64, votes staking.EpochParams) error
	Stake(nodeID []byte, amount *big.Int) (*pool.StakedWal, error)
	RequestWithdraw(receipt *pool.StakedWal) error
	Withdraw(receipt *pool.StakedWal) (*big.Int, error)
	WithdrawDirectly(receipt *pool.StakedWal) (*big.Int, error)
	WithdrawNode(nodeID []byte) error
	DestroyEmptyPool(nodeID []byte) error
	SetNextCommissionRate(nodeID []byte, rate uint64) error
	CollectCommission(nodeID []byte) (*big.Int, error)
	SetStoragePrice(nodeID []byte, price *big.Int) error
	SetWritePrice(nodeID []byte, price *big.Int) error
	SetNodeCapacity(nodeID []byte, capacity *big.Int) error
	Pool(nodeID []byte) (*pool.StakingPool, error)
	TotalActiveStake() *big.Int
	SelectCommitteeAndCalculateVotes() error
	InitiateEpochChange(rewards *big.Int) error
	EpochSyncDone(nodeID []byte, epoch uint32) error
	Epoch() uint32
	EpochState() coordinator.EpochState
	NumberOfShards() uint16
	Committee() *committee.Committee
	PreviousCommittee() *committee.Committee
	NextCommittee() *committee.Committee
	NextParams() staking.EpochParams
	BlsCommittee(epoch uint32) (*messages.BlsCommittee, error)
	LoadState() error
	IsInterfaceNil() bool
}
