package coordinator

import (
	"math"
	"math/big"
	"sync"
	"time"

	"github.com/multiversx/mx-chain-core-go/core/check"
	"github.com/multiversx/mx-chain-core-go/marshal"
	crypto "github.com/multiversx/mx-chain-crypto-go"
	logger "github.com/multiversx/mx-chain-logger-go"

	"github.com/shardbay/sb-staking-go/config"
	"github.com/shardbay/sb-staking-go/staking"
	"github.com/shardbay/sb-staking-go/staking/activeset"
	"github.com/shardbay/sb-staking-go/staking/committee"
	"github.com/shardbay/sb-staking-go/staking/pool"
)

var log = logger.GetOrCreate("staking/coordinator")

// ArgsStakingCoordinator holds all dependencies needed to create the staking coordinator
type ArgsStakingCoordinator struct {
	Config              config.StakingConfig
	Marshalizer         marshal.Marshalizer
	KeyGenerator        crypto.KeyGenerator
	SingleSigner        crypto.SingleSigner
	SyncTimer           staking.SyncTimer
	RegistryStorer      staking.Storer
	CommitteeCache      staking.Cacher
	EpochChangeNotifier staking.EpochChangeNotifier
}

// stakingCoordinator drives the staking system through the epoch lifecycle: it
// owns the pools, ranks the candidates in the active set, selects committees
// and enforces the epoch state machine. Every operation runs under one mutex
// and validates all its preconditions before mutating anything, so a failed
// call leaves no partial state behind.
type stakingCoordinator struct {
	mut sync.RWMutex

	epoch      uint32
	state      EpochState
	nextParams staking.EpochParams

	previousCommittee *committee.Committee
	currentCommittee  *committee.Committee
	nextCommittee     *committee.Committee

	activeSet        *activeset.ActiveSet
	pools            map[string]*pool.StakingPool
	blsKeys          map[string][]byte
	syncAttestations map[string]struct{}

	epochDuration  time.Duration
	numberOfShards uint16

	marshalizer    marshal.Marshalizer
	keyGen         crypto.KeyGenerator
	singleSigner   crypto.SingleSigner
	syncTimer      staking.SyncTimer
	registryStorer staking.Storer
	committeeCache staking.Cacher
	notifier       staking.EpochChangeNotifier
}

// NewStakingCoordinator creates the epoch orchestrator of the staking system.
// The coordinator starts at epoch zero in the EpochChangeDone state, so the
// first committee can be selected without waiting out a voting period.
func NewStakingCoordinator(args ArgsStakingCoordinator) (*stakingCoordinator, error) {
	if check.IfNil(args.Marshalizer) {
		return nil, staking.ErrNilMarshalizer
	}
	if check.IfNil(args.KeyGenerator) {
		return nil, staking.ErrNilKeyGenerator
	}
	if check.IfNil(args.SingleSigner) {
		return nil, staking.ErrNilSingleSigner
	}
	if check.IfNil(args.SyncTimer) {
		return nil, staking.ErrNilSyncTimer
	}
	if check.IfNil(args.RegistryStorer) {
		return nil, staking.ErrNilRegistryStorer
	}
	if check.IfNil(args.CommitteeCache) {
		return nil, staking.ErrNilCommitteeCache
	}
	if check.IfNil(args.EpochChangeNotifier) {
		return nil, staking.ErrNilEpochChangeNotifier
	}
	if args.Config.NumberOfShards == 0 || args.Config.NumberOfShards > math.MaxUint16 {
		return nil, staking.ErrInvalidNumberOfShards
	}
	if args.Config.EpochDurationSeconds == 0 {
		return nil, staking.ErrInvalidEpochDuration
	}

	thresholdStake := big.NewInt(0)
	if len(args.Config.ActiveSetThresholdStake) > 0 {
		_, ok := thresholdStake.SetString(args.Config.ActiveSetThresholdStake, 10)
		if !ok || thresholdStake.Sign() < 0 {
			return nil, staking.ErrInvalidThresholdStake
		}
	}

	activeSet, err := activeset.NewActiveSet(args.Config.ActiveSetMaxSize, thresholdStake)
	if err != nil {
		return nil, err
	}

	return &stakingCoordinator{
		state: EpochState{
			Kind:            EpochChangeDone,
			LastEpochChange: args.SyncTimer.CurrentTime(),
		},
		nextParams:       staking.EpochParams{}.Clone(),
		activeSet:        activeSet,
		pools:            make(map[string]*pool.StakingPool),
		blsKeys:          make(map[string][]byte),
		syncAttestations: make(map[string]struct{}),
		epochDuration:    time.Duration(args.Config.EpochDurationSeconds) * time.Second,
		numberOfShards:   uint16(args.Config.NumberOfShards),
		marshalizer:      args.Marshalizer,
		keyGen:           args.KeyGenerator,
		singleSigner:     args.SingleSigner,
		syncTimer:        args.SyncTimer,
		registryStorer:   args.RegistryStorer,
		committeeCache:   args.CommitteeCache,
		notifier:         args.EpochChangeNotifier,
	}, nil
}

// Epoch returns the current epoch
func (sc *stakingCoordinator) Epoch() uint32 {
	sc.mut.RLock()
	defer sc.mut.RUnlock()

	return sc.epoch
}

// EpochState returns the current epoch lifecycle state
func (sc *stakingCoordinator) EpochState() EpochState {
	sc.mut.RLock()
	defer sc.mut.RUnlock()

	return sc.state
}

// NumberOfShards returns the fixed number of storage shards distributed to the committee
func (sc *stakingCoordinator) NumberOfShards() uint16 {
	return sc.numberOfShards
}

// Committee returns the committee serving the current epoch, nil before the
// first epoch change
func (sc *stakingCoordinator) Committee() *committee.Committee {
	sc.mut.RLock()
	defer sc.mut.RUnlock()

	return sc.currentCommittee
}

// NextCommittee returns the committee selected for the next epoch, nil until
// the selection ran
func (sc *stakingCoordinator) NextCommittee() *committee.Committee {
	sc.mut.RLock()
	defer sc.mut.RUnlock()

	return sc.nextCommittee
}

// PreviousCommittee returns the committee that served the previous epoch
func (sc *stakingCoordinator) PreviousCommittee() *committee.Committee {
	sc.mut.RLock()
	defer sc.mut.RUnlock()

	return sc.previousCommittee
}

// NextParams returns the storage parameters selected for the next epoch
func (sc *stakingCoordinator) NextParams() staking.EpochParams {
	sc.mut.RLock()
	defer sc.mut.RUnlock()

	return sc.nextParams.Clone()
}

// TotalActiveStake returns the stake carried by the tracked candidates
func (sc *stakingCoordinator) TotalActiveStake() *big.Int {
	sc.mut.RLock()
	defer sc.mut.RUnlock()

	return sc.activeSet.TotalStake()
}

// Pool returns the staking pool of the given node
func (sc *stakingCoordinator) Pool(nodeID []byte) (*pool.StakingPool, error) {
	sc.mut.RLock()
	defer sc.mut.RUnlock()

	return sc.poolByNode(nodeID)
}

// IsInterfaceNil returns true if there is no value under the interface
func (sc *stakingCoordinator) IsInterfaceNil() bool {
	return sc == nil
}
