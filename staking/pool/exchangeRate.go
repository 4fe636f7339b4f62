package pool

import "math/big"

// ExchangeRate converts between wal amounts and pool shares at one epoch's
// snapshot. Conversions truncate toward zero, so converting back and forth
// never gains value. The flat rate is the 1:1 identity used before a pool
// accrues any rewards.
type ExchangeRate struct {
	walAmount   *big.Int
	shareAmount *big.Int
	flat        bool
}

// FlatExchangeRate returns the identity rate.
func FlatExchangeRate() ExchangeRate {
	return ExchangeRate{
		flat: true,
	}
}

// NewExchangeRate returns the rate defined by the given pool balances. A zero
// balance on either side degrades to the flat rate. Shares are minted at most
// 1:1 against wal, so a share amount above the wal amount is invalid.
func NewExchangeRate(walAmount *big.Int, shareAmount *big.Int) (ExchangeRate, error) {
	if walAmount == nil || shareAmount == nil || walAmount.Sign() == 0 || shareAmount.Sign() == 0 {
		return FlatExchangeRate(), nil
	}
	if shareAmount.Cmp(walAmount) > 0 {
		return ExchangeRate{}, ErrInvalidExchangeRate
	}

	return ExchangeRate{
		walAmount:   big.NewInt(0).Set(walAmount),
		shareAmount: big.NewInt(0).Set(shareAmount),
	}, nil
}

// ConvertToShareAmount returns the number of shares the given wal amount buys
// at this rate, truncated.
func (rate ExchangeRate) ConvertToShareAmount(walAmount *big.Int) *big.Int {
	if walAmount == nil {
		return big.NewInt(0)
	}
	if rate.IsFlat() {
		return big.NewInt(0).Set(walAmount)
	}

	converted := big.NewInt(0).Mul(walAmount, rate.shareAmount)

	return converted.Div(converted, rate.walAmount)
}

// ConvertToWalAmount returns the wal value of the given share amount at this
// rate, truncated.
func (rate ExchangeRate) ConvertToWalAmount(shareAmount *big.Int) *big.Int {
	if shareAmount == nil {
		return big.NewInt(0)
	}
	if rate.IsFlat() {
		return big.NewInt(0).Set(shareAmount)
	}

	converted := big.NewInt(0).Mul(shareAmount, rate.walAmount)

	return converted.Div(converted, rate.shareAmount)
}

// IsFlat returns true for the identity rate. The zero value counts as flat, a
// rate is only variable when built from two positive balances.
func (rate ExchangeRate) IsFlat() bool {
	return rate.flat || rate.walAmount == nil || rate.shareAmount == nil
}
