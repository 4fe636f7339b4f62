package staking

import "math/big"

// EpochParams holds the storage parameters selected for an epoch from the
// committee members' votes
type EpochParams struct {
	StoragePrice *big.Int
	WritePrice   *big.Int
	NodeCapacity *big.Int
}

// Clone returns a deep copy of the params
func (ep EpochParams) Clone() EpochParams {
	cloned := EpochParams{
		StoragePrice: big.NewInt(0),
		WritePrice:   big.NewInt(0),
		NodeCapacity: big.NewInt(0),
	}
	if ep.StoragePrice != nil {
		cloned.StoragePrice.Set(ep.StoragePrice)
	}
	if ep.WritePrice != nil {
		cloned.WritePrice.Set(ep.WritePrice)
	}
	if ep.NodeCapacity != nil {
		cloned.NodeCapacity.Set(ep.NodeCapacity)
	}

	return cloned
}
