package messages

import (
	"math"

	"github.com/multiversx/mx-chain-core-go/core/check"
	crypto "github.com/multiversx/mx-chain-crypto-go"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("messages")

// RequiredWeight selects the weight threshold a certificate has to clear.
type RequiredWeight int

const (
	// Quorum accepts a certificate backed by more than two thirds of the
	// total shard weight, the byzantine agreement threshold.
	Quorum RequiredWeight = iota
	// OneCorrectNode accepts a certificate backed by more than one third of
	// the total shard weight, enough to include at least one honest member.
	OneCorrectNode
)

// BlsCommitteeMember ties a storage node to its BLS public key and the
// number of shards it holds.
type BlsCommitteeMember struct {
	NodeID    []byte
	PublicKey []byte
	Weight    uint16
}

// ArgsBlsCommittee holds the arguments needed to create a bls committee
type ArgsBlsCommittee struct {
	Epoch        uint32
	Members      []BlsCommitteeMember
	KeyGenerator crypto.KeyGenerator
	SingleSigner crypto.SingleSigner
}

// BlsCommittee verifies aggregate certificates produced by the storage
// committee of one epoch. Member order is fixed at construction time: bit i
// of a signers bitmap refers to the i-th member.
type BlsCommittee struct {
	epoch         uint32
	members       []BlsCommitteeMember
	memberPoints  []crypto.Point
	aggregatedKey crypto.Point
	numShards     uint16
	keyGen        crypto.KeyGenerator
	singleSigner  crypto.SingleSigner
}

// NewBlsCommittee validates the member keys, caches the group sum of all
// member public keys and returns a ready to use certificate verifier
func NewBlsCommittee(args ArgsBlsCommittee) (*BlsCommittee, error) {
	if check.IfNil(args.KeyGenerator) {
		return nil, ErrNilKeyGenerator
	}
	if check.IfNil(args.SingleSigner) {
		return nil, ErrNilSingleSigner
	}
	if len(args.Members) == 0 {
		return nil, ErrEmptyCommittee
	}

	members := make([]BlsCommitteeMember, 0, len(args.Members))
	points := make([]crypto.Point, 0, len(args.Members))
	totalWeight := 0

	var aggregatedKey crypto.Point
	for _, member := range args.Members {
		if len(member.NodeID) == 0 {
			return nil, ErrNilNodeID
		}
		if len(member.PublicKey) == 0 {
			return nil, ErrNilPublicKey
		}
		if member.Weight == 0 {
			return nil, ErrZeroMemberWeight
		}

		publicKey, err := args.KeyGenerator.PublicKeyFromByteArray(member.PublicKey)
		if err != nil {
			return nil, err
		}

		point := publicKey.Point()
		if aggregatedKey == nil {
			aggregatedKey = point.Clone()
		} else {
			aggregatedKey, err = aggregatedKey.Add(point)
			if err != nil {
				return nil, err
			}
		}

		totalWeight += int(member.Weight)
		points = append(points, point)
		members = append(members, copyMember(member))
	}

	if totalWeight > math.MaxUint16 {
		return nil, ErrTooManyShards
	}

	return &BlsCommittee{
		epoch:         args.Epoch,
		members:       members,
		memberPoints:  points,
		aggregatedKey: aggregatedKey,
		numShards:     uint16(totalWeight),
		keyGen:        args.KeyGenerator,
		singleSigner:  args.SingleSigner,
	}, nil
}

// VerifyCertificateAndWeight checks the aggregate signature over message
// against the key derived from the signers marked in bitmap and returns the
// shard weight backing the certificate. The bitmap holds one bit per member
// index and is padded with zero bits to whole bytes; a set bit beyond the
// member count rejects the certificate, otherwise two different bitmaps
// could describe the same signer set.
func (bc *BlsCommittee) VerifyCertificateAndWeight(
	signature []byte,
	bitmap []byte,
	message []byte,
	required RequiredWeight,
) (uint16, error) {
	expectedBitmapSize := len(bc.members) / 8
	if len(bc.members)%8 != 0 {
		expectedBitmapSize++
	}
	if len(bitmap) != expectedBitmapSize {
		log.Debug("wrong size bitmap",
			"expected number of bytes", expectedBitmapSize,
			"actual", len(bitmap))
		return 0, ErrWrongSizeBitmap
	}

	for index := len(bc.members); index < expectedBitmapSize*8; index++ {
		if isBitSet(bitmap, index) {
			return 0, ErrInvalidSignersBitmap
		}
	}

	aggregatedWeight := bc.numShards
	for index, member := range bc.members {
		if isBitSet(bitmap, index) {
			continue
		}

		aggregatedWeight -= member.Weight
	}

	if !bc.HasRequiredWeight(aggregatedWeight, required) {
		log.Debug("not enough stake behind the certificate",
			"aggregated weight", aggregatedWeight,
			"total shards", bc.numShards)
		return 0, ErrNotEnoughStake
	}

	aggregatedKey := bc.aggregatedKey.Clone()

	var err error
	for index := range bc.members {
		if isBitSet(bitmap, index) {
			continue
		}

		aggregatedKey, err = aggregatedKey.Sub(bc.memberPoints[index])
		if err != nil {
			return 0, err
		}
	}

	err = bc.verifyWithDerivedKey(aggregatedKey, message, signature)
	if err != nil {
		return 0, err
	}

	return aggregatedWeight, nil
}

func (bc *BlsCommittee) verifyWithDerivedKey(aggregatedKey crypto.Point, message []byte, signature []byte) error {
	keyBytes, err := aggregatedKey.MarshalBinary()
	if err != nil {
		return err
	}

	publicKey, err := bc.keyGen.PublicKeyFromByteArray(keyBytes)
	if err != nil {
		return err
	}

	err = bc.singleSigner.Verify(publicKey, message, signature)
	if err != nil {
		log.Trace("aggregate signature verification failed", "error", err)
		return ErrInvalidSignature
	}

	return nil
}

// HasRequiredWeight returns true when weight clears the threshold selected
// by required over the committee's total shard count
func (bc *BlsCommittee) HasRequiredWeight(weight uint16, required RequiredWeight) bool {
	switch required {
	case Quorum:
		return 3*uint32(weight) >= 2*uint32(bc.numShards)+1
	case OneCorrectNode:
		return 3*uint32(weight) >= uint32(bc.numShards)+1
	default:
		return false
	}
}

// Epoch returns the epoch this committee certifies messages for
func (bc *BlsCommittee) Epoch() uint32 {
	return bc.epoch
}

// NumberOfShards returns the total shard weight of the committee
func (bc *BlsCommittee) NumberOfShards() uint16 {
	return bc.numShards
}

// Size returns the number of committee members
func (bc *BlsCommittee) Size() int {
	return len(bc.members)
}

// Members returns a copy of the member list in bitmap order
func (bc *BlsCommittee) Members() []BlsCommitteeMember {
	members := make([]BlsCommitteeMember, 0, len(bc.members))
	for _, member := range bc.members {
		members = append(members, copyMember(member))
	}

	return members
}

// IsInterfaceNil returns true if there is no value under the interface
func (bc *BlsCommittee) IsInterfaceNil() bool {
	return bc == nil
}

func isBitSet(bitmap []byte, index int) bool {
	return bitmap[index/8]&(1<<uint8(index%8)) != 0
}

func copyMember(member BlsCommitteeMember) BlsCommitteeMember {
	nodeID := make([]byte, len(member.NodeID))
	copy(nodeID, member.NodeID)

	publicKey := make([]byte, len(member.PublicKey))
	copy(publicKey, member.PublicKey)

	return BlsCommitteeMember{
		NodeID:    nodeID,
		PublicKey: publicKey,
		Weight:    member.Weight,
	}
}
