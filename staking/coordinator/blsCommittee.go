package coordinator

import (
	"encoding/binary"
	"fmt"

	"github.com/shardbay/sb-staking-go/messages"
	"github.com/shardbay/sb-staking-go/staking"
	"github.com/shardbay/sb-staking-go/staking/committee"
)

// BlsCommittee returns the weighted bls verification committee of the given
// epoch, building and caching it on first use. Only the previous, the current
// and the selected next committee are reachable.
func (sc *stakingCoordinator) BlsCommittee(epoch uint32) (*messages.BlsCommittee, error) {
	cacheKey := committeeCacheKey(epoch)
	cached, found := sc.committeeCache.Get(cacheKey)
	if found {
		blsCommittee, ok := cached.(*messages.BlsCommittee)
		if ok {
			return blsCommittee, nil
		}
	}

	sc.mut.RLock()
	blsCommittee, err := sc.buildBlsCommittee(epoch)
	sc.mut.RUnlock()
	if err != nil {
		return nil, err
	}

	sc.committeeCache.Put(cacheKey, blsCommittee, blsCommitteeSizeInBytes(blsCommittee))

	return blsCommittee, nil
}

// buildBlsCommittee needs to be called under mutex.
func (sc *stakingCoordinator) buildBlsCommittee(epoch uint32) (*messages.BlsCommittee, error) {
	epochCommittee, err := sc.committeeForEpoch(epoch)
	if err != nil {
		return nil, err
	}

	committeeMembers := epochCommittee.Members()
	members := make([]messages.BlsCommitteeMember, 0, len(committeeMembers))
	for _, member := range committeeMembers {
		blsKey, found := sc.blsKeys[string(member.NodeID)]
		if !found {
			return nil, fmt.Errorf("%w for committee member %x", staking.ErrNilPublicKey, member.NodeID)
		}

		publicKey := make([]byte, len(blsKey))
		copy(publicKey, blsKey)

		members = append(members, messages.BlsCommitteeMember{
			NodeID:    member.NodeID,
			PublicKey: publicKey,
			Weight:    uint16(len(member.Shards)),
		})
	}

	return messages.NewBlsCommittee(messages.ArgsBlsCommittee{
		Epoch:        epoch,
		Members:      members,
		KeyGenerator: sc.keyGen,
		SingleSigner: sc.singleSigner,
	})
}

// committeeForEpoch needs to be called under mutex.
func (sc *stakingCoordinator) committeeForEpoch(epoch uint32) (*committee.Committee, error) {
	var epochCommittee *committee.Committee
	switch {
	case epoch == sc.epoch:
		epochCommittee = sc.currentCommittee
	case epoch+1 == sc.epoch:
		epochCommittee = sc.previousCommittee
	case epoch == sc.epoch+1:
		epochCommittee = sc.nextCommittee
	}
	if epochCommittee == nil {
		return nil, staking.ErrCommitteeNotSelected
	}

	return epochCommittee, nil
}

func committeeCacheKey(epoch uint32) []byte {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, epoch)

	return key
}

func blsCommitteeSizeInBytes(blsCommittee *messages.BlsCommittee) int {
	size := 0
	for _, member := range blsCommittee.Members() {
		size += len(member.NodeID) + len(member.PublicKey) + 2
	}

	return size
}
