package factory

import (
	"errors"

	"github.com/multiversx/mx-chain-core-go/marshal"
	crypto "github.com/multiversx/mx-chain-crypto-go"
	"github.com/multiversx/mx-chain-crypto-go/signing"
	"github.com/multiversx/mx-chain-crypto-go/signing/mcl"
	mclsig "github.com/multiversx/mx-chain-crypto-go/signing/mcl/singlesig"
	logger "github.com/multiversx/mx-chain-logger-go"
	storageCommon "github.com/multiversx/mx-chain-storage-go/common"
	storageFactory "github.com/multiversx/mx-chain-storage-go/factory"
	"github.com/multiversx/mx-chain-storage-go/memorydb"
	"github.com/multiversx/mx-chain-storage-go/storageUnit"

	"github.com/shardbay/sb-staking-go/config"
	"github.com/shardbay/sb-staking-go/ntp"
	"github.com/shardbay/sb-staking-go/staking"
	"github.com/shardbay/sb-staking-go/staking/coordinator"
	"github.com/shardbay/sb-staking-go/staking/notifier"
)

var log = logger.GetOrCreate("factory")

// registryCacheCapacity sizes the cache in front of the registry persister,
// which only ever holds a handful of keys
const registryCacheCapacity = uint32(10)

// CryptoComponents groups the primitives of the bls signature scheme shared by
// the coordinator and the certificate verification path.
type CryptoComponents struct {
	KeyGenerator crypto.KeyGenerator
	SingleSigner crypto.SingleSigner
}

// StakingComponents holds the wired staking core of a node
type StakingComponents struct {
	Coordinator         StakingCoordinator
	CryptoComponents    *CryptoComponents
	EpochChangeNotifier staking.EpochChangeNotifier
	SyncTimer           staking.SyncTimer
}

// CreateCryptoComponents builds the bls key generator and single signer on the
// mcl implementation of the BLS12-381 curve
func CreateCryptoComponents() *CryptoComponents {
	return &CryptoComponents{
		KeyGenerator: signing.NewKeyGenerator(mcl.NewSuiteBLS12()),
		SingleSigner: mclsig.NewBlsSigner(),
	}
}

// CreateCommitteeCache builds the lru cache holding the bls committees of the
// recent epochs
func CreateCommitteeCache(cacheConfig config.CacheConfig) (staking.Cacher, error) {
	cache, err := storageFactory.NewCache(storageCommon.CacheConfig{
		Type:     storageCommon.CacheType(cacheConfig.Type),
		Capacity: cacheConfig.Capacity,
		Shards:   cacheConfig.Shards,
	})
	if err != nil {
		return nil, err
	}

	return cache, nil
}

// CreateRegistryStorer builds the storage unit persisting the staking registry
func CreateRegistryStorer() (staking.Storer, error) {
	cache, err := storageFactory.NewCache(storageCommon.CacheConfig{
		Type:     storageCommon.LRUCache,
		Capacity: registryCacheCapacity,
		Shards:   1,
	})
	if err != nil {
		return nil, err
	}

	return storageUnit.NewStorageUnit(cache, memorydb.New())
}

// CreateSyncTimer builds the ntp-synchronized timer and starts its
// synchronization loop
func CreateSyncTimer(ntpConfig config.NTPConfig) staking.SyncTimer {
	syncTimer := ntp.NewSyncTime(ntpConfig, nil)
	syncTimer.StartSyncingTime()

	return syncTimer
}

// CreateStakingComponents wires the complete staking core from the given
// configuration and restores the registry saved at the last epoch change, if
// any exists.
func CreateStakingComponents(cfg config.Config) (*StakingComponents, error) {
	cryptoComponents := CreateCryptoComponents()

	committeeCache, err := CreateCommitteeCache(cfg.CommitteeCache)
	if err != nil {
		return nil, err
	}

	registryStorer, err := CreateRegistryStorer()
	if err != nil {
		return nil, err
	}

	syncTimer := CreateSyncTimer(cfg.NTP)
	epochChangeNotifier := notifier.NewEpochChangeSubscriptionHandler()

	stakingCoordinator, err := coordinator.NewStakingCoordinator(coordinator.ArgsStakingCoordinator{
		Config:              cfg.Staking,
		Marshalizer:         &marshal.JsonMarshalizer{},
		KeyGenerator:        cryptoComponents.KeyGenerator,
		SingleSigner:        cryptoComponents.SingleSigner,
		SyncTimer:           syncTimer,
		RegistryStorer:      registryStorer,
		CommitteeCache:      committeeCache,
		EpochChangeNotifier: epochChangeNotifier,
	})
	if err != nil {
		return nil, err
	}

	err = stakingCoordinator.LoadState()
	if errors.Is(err, staking.ErrRegistryNotFound) {
		log.Debug("no staking registry found, starting from a fresh state")
	} else if err != nil {
		return nil, err
	}

	return &StakingComponents{
		Coordinator:         stakingCoordinator,
		CryptoComponents:    cryptoComponents,
		EpochChangeNotifier: epochChangeNotifier,
		SyncTimer:           syncTimer,
	}, nil
}

// Close stops the background time synchronization
func (components *StakingComponents) Close() error {
	return components.SyncTimer.Close()
}
