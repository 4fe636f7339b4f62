package activeset

import "errors"

// ErrZeroMaxSize signals that the active set was created with a zero maximum size
var ErrZeroMaxSize = errors.New("active set max size must be greater than zero")

// ErrNilThresholdStake signals that a nil threshold stake has been provided
var ErrNilThresholdStake = errors.New("nil threshold stake")

// ErrDuplicateInsertion signals that the node is already tracked by the active set
var ErrDuplicateInsertion = errors.New("node already present in the active set")
