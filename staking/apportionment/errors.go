package apportionment

import "errors"

// ErrPopFromEmptyHeap signals that a pop was attempted on an empty apportionment queue
var ErrPopFromEmptyHeap = errors.New("pop from an empty apportionment queue")

// ErrZeroTotalStake signals that shard apportionment was attempted over a zero total stake
var ErrZeroTotalStake = errors.New("total stake must be greater than zero")

// ErrNilStake signals that a nil stake value was provided
var ErrNilStake = errors.New("nil stake value")

// ErrPrioritiesLengthMismatch signals that the priorities slice does not match the stakes slice in length
var ErrPrioritiesLengthMismatch = errors.New("priorities length does not match stakes length")
