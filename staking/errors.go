package staking

import "errors"

// ErrNilMarshalizer signals that a nil marshalizer has been provided
var ErrNilMarshalizer = errors.New("nil marshalizer")

// ErrNilKeyGenerator signals that a nil key generator has been provided
var ErrNilKeyGenerator = errors.New("nil key generator")

// ErrNilSingleSigner signals that a nil single signer has been provided
var ErrNilSingleSigner = errors.New("nil single signer")

// ErrNilSyncTimer signals that a nil sync timer has been provided
var ErrNilSyncTimer = errors.New("nil sync timer")

// ErrNilRegistryStorer signals that a nil registry storer has been provided
var ErrNilRegistryStorer = errors.New("nil registry storer")

// ErrNilCommitteeCache signals that a nil committee cache has been provided
var ErrNilCommitteeCache = errors.New("nil committee cache")

// ErrNilEpochChangeNotifier signals that a nil epoch change notifier has been provided
var ErrNilEpochChangeNotifier = errors.New("nil epoch change notifier")

// ErrNilNodeID signals that a nil node id has been provided
var ErrNilNodeID = errors.New("nil node id")

// ErrNilPublicKey signals that a nil bls public key has been provided
var ErrNilPublicKey = errors.New("nil public key")

// ErrInvalidEpochDuration signals that the configured epoch duration is invalid
var ErrInvalidEpochDuration = errors.New("invalid epoch duration")

// ErrInvalidNumberOfShards signals that the configured number of shards is invalid
var ErrInvalidNumberOfShards = errors.New("the number of shards must be greater than zero")

// ErrInvalidThresholdStake signals that the configured threshold stake is not a valid decimal number
var ErrInvalidThresholdStake = errors.New("invalid threshold stake")

// ErrPoolAlreadyExists signals that a staking pool is already registered for the node
var ErrPoolAlreadyExists = errors.New("staking pool already exists for node")

// ErrPoolNotFound signals that no staking pool is registered for the node
var ErrPoolNotFound = errors.New("staking pool not found for node")

// ErrPoolNotWithdrawn signals an attempt to destroy a pool that did not fully unwind
var ErrPoolNotWithdrawn = errors.New("staking pool not withdrawn")

// ErrCommissionNotCollected signals an attempt to destroy a pool still holding commission
var ErrCommissionNotCollected = errors.New("commission not collected")

// ErrCommitteeAlreadySelected signals that the next committee has already been selected for this epoch
var ErrCommitteeAlreadySelected = errors.New("next committee already selected")

// ErrCommitteeNotSelected signals that the next committee has not been selected yet
var ErrCommitteeNotSelected = errors.New("next committee not selected")

// ErrWrongEpochState signals that the operation is not allowed in the current epoch state
var ErrWrongEpochState = errors.New("operation not allowed in current epoch state")

// ErrVotingPeriodNotElapsed signals that the parameter voting period is still open
var ErrVotingPeriodNotElapsed = errors.New("voting period not elapsed")

// ErrEpochDurationNotElapsed signals that the current epoch did not reach its configured duration
var ErrEpochDurationNotElapsed = errors.New("epoch duration not elapsed")

// ErrInvalidSyncEpoch signals that a sync attestation was provided for a different epoch
var ErrInvalidSyncEpoch = errors.New("sync attestation for wrong epoch")

// ErrDuplicateSyncAttestation signals that the node already attested the shard sync for this epoch
var ErrDuplicateSyncAttestation = errors.New("duplicate sync attestation")

// ErrNotCommitteeMember signals that the node does not hold shards in the current committee
var ErrNotCommitteeMember = errors.New("node is not a committee member")

// ErrNoActiveStake signals that no candidate carries stake above the threshold
var ErrNoActiveStake = errors.New("no active stake registered")

// ErrRegistryNotFound signals that no saved registry exists under the given key
var ErrRegistryNotFound = errors.New("staking registry not found")
