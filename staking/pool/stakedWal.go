package pool

import (
	"bytes"
	"math/big"
)

// StakedWalState discriminates the lifecycle of a stake receipt.
type StakedWalState int

const (
	// Staked is the initial state of a stake receipt.
	Staked StakedWalState = iota
	// Withdrawing marks a receipt whose withdrawal was requested.
	Withdrawing
)

// StakedWal is the receipt handed out on staking: a principal bound to one
// node, activating at a fixed epoch. The pool that issued it is the only
// component mutating it.
type StakedWal struct {
	nodeID          []byte
	principal       *big.Int
	activationEpoch uint32
	state           StakedWalState
	withdrawEpoch   uint32
	shareAmount     *big.Int
}

// NodeID returns the node the stake is bound to.
func (sw *StakedWal) NodeID() []byte {
	id := make([]byte, len(sw.nodeID))
	copy(id, sw.nodeID)

	return id
}

// Principal returns the staked amount.
func (sw *StakedWal) Principal() *big.Int {
	return big.NewInt(0).Set(sw.principal)
}

// ActivationEpoch returns the epoch the stake starts counting from.
func (sw *StakedWal) ActivationEpoch() uint32 {
	return sw.activationEpoch
}

// State returns the receipt state.
func (sw *StakedWal) State() StakedWalState {
	return sw.state
}

// WithdrawEpoch returns the epoch the stake becomes withdrawable. It is only
// meaningful in the Withdrawing state.
func (sw *StakedWal) WithdrawEpoch() uint32 {
	return sw.withdrawEpoch
}

// ShareAmount returns the pool shares locked by the withdrawal request. It is
// only meaningful in the Withdrawing state.
func (sw *StakedWal) ShareAmount() *big.Int {
	if sw.shareAmount == nil {
		return big.NewInt(0)
	}

	return big.NewInt(0).Set(sw.shareAmount)
}

// Split carves the given amount out of the receipt into a new receipt bound
// to the same node and activation epoch. Both resulting principals must stay
// positive and the receipt must not be withdrawing.
func (sw *StakedWal) Split(amount *big.Int) (*StakedWal, error) {
	if sw.state != Staked {
		return nil, ErrStakeAlreadyWithdrawing
	}
	if amount == nil || amount.Sign() <= 0 || amount.Cmp(sw.principal) >= 0 {
		return nil, ErrInvalidStakeSplit
	}

	sw.principal.Sub(sw.principal, amount)

	return &StakedWal{
		nodeID:          sw.nodeID,
		principal:       big.NewInt(0).Set(amount),
		activationEpoch: sw.activationEpoch,
		state:           Staked,
	}, nil
}

// Join absorbs the principal of the other receipt. Both receipts must be in
// the Staked state and bound to the same node and activation epoch. The other
// receipt is emptied and must be discarded by the caller.
func (sw *StakedWal) Join(other *StakedWal) error {
	if other == nil {
		return ErrNilStakeReceipt
	}
	if sw.state != Staked || other.state != Staked {
		return ErrStakeAlreadyWithdrawing
	}
	sameNode := bytes.Equal(sw.nodeID, other.nodeID)
	if !sameNode || sw.activationEpoch != other.activationEpoch {
		return ErrStakeReceiptMismatch
	}

	sw.principal.Add(sw.principal, other.principal)
	other.principal.SetInt64(0)

	return nil
}
