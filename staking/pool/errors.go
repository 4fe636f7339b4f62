package pool

import "errors"

// ErrInvalidExchangeRate signals that the share amount exceeds the wal amount in an exchange rate
var ErrInvalidExchangeRate = errors.New("share amount exceeds wal amount in exchange rate")

// ErrIncorrectPendingValue signals that a pending value is missing or smaller than the requested reduction
var ErrIncorrectPendingValue = errors.New("pending value is missing or smaller than the reduction")

// ErrNilStakeReceipt signals that a nil stake receipt was provided
var ErrNilStakeReceipt = errors.New("nil stake receipt")

// ErrInvalidStakeAmount signals that the stake amount is nil, zero or negative
var ErrInvalidStakeAmount = errors.New("stake amount must be greater than zero")

// ErrInvalidStakeSplit signals that the split amount is not strictly between zero and the principal
var ErrInvalidStakeSplit = errors.New("split amount must be positive and below the principal")

// ErrStakeReceiptMismatch signals that two stake receipts differ in node or activation epoch
var ErrStakeReceiptMismatch = errors.New("stake receipts differ in node or activation epoch")

// ErrStakeAlreadyWithdrawing signals that a withdrawal was already requested for the stake receipt
var ErrStakeAlreadyWithdrawing = errors.New("stake withdrawal already requested")

// ErrStakeNotWithdrawing signals that no withdrawal was requested for the stake receipt
var ErrStakeNotWithdrawing = errors.New("stake withdrawal was not requested")

// ErrStakeAlreadyActive signals that a direct withdrawal was attempted on an already active stake
var ErrStakeAlreadyActive = errors.New("stake is already active")

// ErrWithdrawDirectly signals that the stake is not active yet and must use the direct withdrawal path
var ErrWithdrawDirectly = errors.New("stake can be withdrawn directly")

// ErrWithdrawEpochNotReached signals that the withdraw epoch of the stake receipt was not reached yet
var ErrWithdrawEpochNotReached = errors.New("withdraw epoch not reached")

// ErrNothingToWithdraw signals that the stake receipt holds no principal
var ErrNothingToWithdraw = errors.New("nothing to withdraw")

// ErrWrongPool signals that the stake receipt belongs to a different pool
var ErrWrongPool = errors.New("stake receipt belongs to a different pool")

// ErrPoolNotActive signals that the operation requires an active pool
var ErrPoolNotActive = errors.New("pool is not active")

// ErrPoolAlreadyWithdrawing signals that the pool already started withdrawing
var ErrPoolAlreadyWithdrawing = errors.New("pool is already withdrawing")

// ErrInvalidCommissionRate signals that the commission rate exceeds the maximum of 10000 basis points
var ErrInvalidCommissionRate = errors.New("commission rate exceeds the maximum of 10000 basis points")

// ErrEpochAlreadyProcessed signals that the pool already processed the given epoch
var ErrEpochAlreadyProcessed = errors.New("epoch already processed by the pool")

// ErrNilVoteValue signals that a nil parameter vote was provided
var ErrNilVoteValue = errors.New("nil vote value")
