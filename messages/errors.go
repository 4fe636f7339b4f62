package messages

import "errors"

// ErrNilKeyGenerator signals that a nil key generator has been provided
var ErrNilKeyGenerator = errors.New("nil key generator has been provided")

// ErrNilSingleSigner signals that a nil single signer has been provided
var ErrNilSingleSigner = errors.New("nil single signer has been provided")

// ErrEmptyCommittee signals that a committee without members has been provided
var ErrEmptyCommittee = errors.New("empty committee has been provided")

// ErrNilNodeID signals that a committee member carries an empty node identifier
var ErrNilNodeID = errors.New("nil node id")

// ErrNilPublicKey signals that a committee member carries an empty public key
var ErrNilPublicKey = errors.New("nil public key")

// ErrZeroMemberWeight signals that a committee member holds no shards
var ErrZeroMemberWeight = errors.New("member weight must be strictly positive")

// ErrTooManyShards signals that the summed member weights overflow the shard counter
var ErrTooManyShards = errors.New("total member weight exceeds the maximum number of shards")

// ErrWrongSizeBitmap signals that the provided bitmap's length differs from the required one
var ErrWrongSizeBitmap = errors.New("wrong size bitmap has been provided")

// ErrInvalidSignersBitmap signals that the signers bitmap has bits set beyond the committee size
var ErrInvalidSignersBitmap = errors.New("invalid signers bitmap has been provided")

// ErrNotEnoughStake signals that the weight backing a certificate is below the required threshold
var ErrNotEnoughStake = errors.New("aggregated weight is below the required threshold")

// ErrInvalidSignature signals that the aggregated signature does not verify against the derived key
var ErrInvalidSignature = errors.New("invalid aggregated signature")

// ErrNilMarshalizer signals that a nil marshalizer has been provided
var ErrNilMarshalizer = errors.New("nil marshalizer has been provided")

// ErrNilBlsCommittee signals that a nil bls committee has been provided
var ErrNilBlsCommittee = errors.New("nil bls committee has been provided")

// ErrNilProtocolMessage signals that a nil protocol message has been provided
var ErrNilProtocolMessage = errors.New("nil protocol message has been provided")

// ErrInvalidEpoch signals that the message is tagged with a different epoch than the verifying committee
var ErrInvalidEpoch = errors.New("message epoch does not match the committee epoch")

// ErrInvalidAppID signals that the message does not belong to the storage protocol
var ErrInvalidAppID = errors.New("invalid app id")

// ErrUnsupportedIntentVersion signals that the message intent version is not supported
var ErrUnsupportedIntentVersion = errors.New("unsupported intent version")

// ErrUnknownMessageType signals that the message intent type is not known
var ErrUnknownMessageType = errors.New("unknown message type")
