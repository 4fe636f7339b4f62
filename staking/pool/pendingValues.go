package pool

import (
	"math/big"

	"golang.org/x/exp/slices"
)

// pendingValues accumulates amounts that only take effect from a future
// epoch, keyed by that epoch. Keys are unique and unordered.
type pendingValues struct {
	values map[uint32]*big.Int
}

func newPendingValues() *pendingValues {
	return &pendingValues{
		values: make(map[uint32]*big.Int),
	}
}

// insertOrAdd accumulates the given value under the epoch key.
func (pv *pendingValues) insertOrAdd(epoch uint32, value *big.Int) {
	if value == nil || value.Sign() == 0 {
		return
	}

	existing, found := pv.values[epoch]
	if !found {
		pv.values[epoch] = big.NewInt(0).Set(value)
		return
	}

	existing.Add(existing, value)
}

// reduce subtracts the given value from the epoch key, dropping the key when
// it reaches zero.
func (pv *pendingValues) reduce(epoch uint32, value *big.Int) error {
	existing, found := pv.values[epoch]
	if !found {
		return ErrIncorrectPendingValue
	}
	if value == nil || existing.Cmp(value) < 0 {
		return ErrIncorrectPendingValue
	}

	existing.Sub(existing, value)
	if existing.Sign() == 0 {
		delete(pv.values, epoch)
	}

	return nil
}

// valueAt sums every entry with key less than or equal to epoch, without
// modifying the state.
func (pv *pendingValues) valueAt(epoch uint32) *big.Int {
	sum := big.NewInt(0)
	for key, value := range pv.values {
		if key <= epoch {
			sum.Add(sum, value)
		}
	}

	return sum
}

// flush removes and sums every entry with key less than or equal to epoch.
// Flushing progressively larger epochs yields the same cumulative total as a
// single flush to the largest one.
func (pv *pendingValues) flush(epoch uint32) *big.Int {
	sum := big.NewInt(0)
	for key, value := range pv.values {
		if key <= epoch {
			sum.Add(sum, value)
			delete(pv.values, key)
		}
	}

	return sum
}

// flushEach removes every entry with key less than or equal to epoch and
// hands them to the given function in ascending key order.
func (pv *pendingValues) flushEach(epoch uint32, handle func(key uint32, value *big.Int)) {
	keys := make([]uint32, 0, len(pv.values))
	for key := range pv.values {
		if key <= epoch {
			keys = append(keys, key)
		}
	}

	slices.Sort(keys)

	for _, key := range keys {
		value := pv.values[key]
		delete(pv.values, key)
		handle(key, value)
	}
}

func (pv *pendingValues) isEmpty() bool {
	return len(pv.values) == 0
}
