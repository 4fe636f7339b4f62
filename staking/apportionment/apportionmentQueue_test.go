package apportionment

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuotient_Compare(t *testing.T) {
	t.Parallel()

	t.Run("strictly greater and strictly smaller", func(t *testing.T) {
		t.Parallel()

		a := newQuotient(big.NewInt(7), 3)
		b := newQuotient(big.NewInt(3), 2)
		require.Equal(t, 1, a.compare(b))
		require.Equal(t, -1, b.compare(a))
	})
	t.Run("equal rationals with different representations", func(t *testing.T) {
		t.Parallel()

		a := newQuotient(big.NewInt(2), 4)
		b := newQuotient(big.NewInt(1), 2)
		require.Equal(t, 0, a.compare(b))
	})
	t.Run("near-equal rationals that floating point would confuse", func(t *testing.T) {
		t.Parallel()

		a := newQuotient(big.NewInt(1), 3)
		b := newQuotient(big.NewInt(333333), 1000000)
		require.Equal(t, 1, a.compare(b))
	})
	t.Run("numerators beyond uint64 range", func(t *testing.T) {
		t.Parallel()

		bigStake, ok := big.NewInt(0).SetString("1000000000000000000000000", 10)
		require.True(t, ok)
		slightlyMore := new(big.Int).Add(bigStake, big.NewInt(1))

		a := newQuotient(bigStake, 7)
		b := newQuotient(slightlyMore, 7)
		require.Equal(t, -1, a.compare(b))
	})
}

func TestApportionmentQueue_PopMax(t *testing.T) {
	t.Parallel()

	t.Run("pop from empty queue should error", func(t *testing.T) {
		t.Parallel()

		queue := newApportionmentQueue()
		entry, err := queue.popMax()
		require.Nil(t, entry)
		require.Equal(t, ErrPopFromEmptyHeap, err)
	})
	t.Run("pops in descending priority order", func(t *testing.T) {
		t.Parallel()

		queue := newApportionmentQueue()
		queue.insert(newQuotient(big.NewInt(3), 2), 0, 0)
		queue.insert(newQuotient(big.NewInt(7), 3), 1, 1)
		queue.insert(newQuotient(big.NewInt(1), 1), 2, 2)
		queue.insert(newQuotient(big.NewInt(5), 2), 3, 3)
		require.Equal(t, 4, queue.len())

		expectedOrder := []int{3, 1, 0, 2}
		for _, expectedNode := range expectedOrder {
			entry, err := queue.popMax()
			require.NoError(t, err)
			require.Equal(t, expectedNode, entry.node)
		}
		require.Equal(t, 0, queue.len())
	})
	t.Run("equal priorities fall back to the higher tie breaker", func(t *testing.T) {
		t.Parallel()

		queue := newApportionmentQueue()
		queue.insert(newQuotient(big.NewInt(2), 4), 1, 0)
		queue.insert(newQuotient(big.NewInt(1), 2), 9, 1)
		queue.insert(newQuotient(big.NewInt(3), 6), 5, 2)

		first, err := queue.popMax()
		require.NoError(t, err)
		require.Equal(t, 1, first.node)

		second, err := queue.popMax()
		require.NoError(t, err)
		require.Equal(t, 2, second.node)

		third, err := queue.popMax()
		require.NoError(t, err)
		require.Equal(t, 0, third.node)
	})
}
