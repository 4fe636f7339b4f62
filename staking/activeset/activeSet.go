package activeset

import (
	"bytes"
	"math/big"
)

// NodeStake groups a node identifier with its tracked stake
type NodeStake struct {
	NodeID []byte
	Stake  *big.Int
}

type entry struct {
	nodeID []byte
	stake  *big.Int
}

// ActiveSet keeps the bounded set of candidate nodes for the next committee
// selection. The set holds at most maxSize entries; once full, a new node
// displaces the entry with the smallest stake only if it brings more.
// Entry order is not significant and is not preserved across removals.
type ActiveSet struct {
	maxSize    uint32
	threshold  *big.Int
	entries    []entry
	totalStake *big.Int
}

// NewActiveSet creates a bounded stake tracker holding at most maxSize nodes,
// ignoring nodes with stake below thresholdStake
func NewActiveSet(maxSize uint32, thresholdStake *big.Int) (*ActiveSet, error) {
	if maxSize == 0 {
		return nil, ErrZeroMaxSize
	}
	if thresholdStake == nil {
		return nil, ErrNilThresholdStake
	}

	return &ActiveSet{
		maxSize:    maxSize,
		threshold:  big.NewInt(0).Set(thresholdStake),
		entries:    make([]entry, 0, maxSize),
		totalStake: big.NewInt(0),
	}, nil
}

// InsertOrUpdate tracks the given stake for the node and returns true if the
// node is part of the set afterwards. A stake of zero or below the threshold
// removes the node. When the set is full the node with the minimum stake is
// displaced, but only if the new stake exceeds it.
func (as *ActiveSet) InsertOrUpdate(nodeID []byte, stake *big.Int) bool {
	if stake == nil || stake.Sign() == 0 || stake.Cmp(as.threshold) < 0 {
		as.Remove(nodeID)
		return false
	}

	idx := as.indexOf(nodeID)
	if idx >= 0 {
		as.totalStake.Sub(as.totalStake, as.entries[idx].stake)
		as.totalStake.Add(as.totalStake, stake)
		as.entries[idx].stake = big.NewInt(0).Set(stake)
		return true
	}

	if uint32(len(as.entries)) < as.maxSize {
		err := as.insert(nodeID, stake)
		return err == nil
	}

	minIdx := 0
	for i := 1; i < len(as.entries); i++ {
		if as.entries[i].stake.Cmp(as.entries[minIdx].stake) < 0 {
			minIdx = i
		}
	}
	if stake.Cmp(as.entries[minIdx].stake) <= 0 {
		return false
	}

	as.totalStake.Sub(as.totalStake, as.entries[minIdx].stake)
	as.totalStake.Add(as.totalStake, stake)
	as.entries[minIdx] = entry{
		nodeID: nodeID,
		stake:  big.NewInt(0).Set(stake),
	}

	return true
}

// insert is the low level append path and must only be called for nodes not
// yet tracked
func (as *ActiveSet) insert(nodeID []byte, stake *big.Int) error {
	if as.indexOf(nodeID) >= 0 {
		return ErrDuplicateInsertion
	}

	as.entries = append(as.entries, entry{
		nodeID: nodeID,
		stake:  big.NewInt(0).Set(stake),
	})
	as.totalStake.Add(as.totalStake, stake)

	return nil
}

// Remove discards the node from the set. The last entry takes the place of
// the removed one, so the entry order changes.
func (as *ActiveSet) Remove(nodeID []byte) {
	idx := as.indexOf(nodeID)
	if idx < 0 {
		return
	}

	as.totalStake.Sub(as.totalStake, as.entries[idx].stake)
	lastIdx := len(as.entries) - 1
	as.entries[idx] = as.entries[lastIdx]
	as.entries[lastIdx] = entry{}
	as.entries = as.entries[:lastIdx]
}

// ActiveIDs returns the identifiers of all tracked nodes, in no particular order
func (as *ActiveSet) ActiveIDs() [][]byte {
	ids := make([][]byte, 0, len(as.entries))
	for _, e := range as.entries {
		ids = append(ids, e.nodeID)
	}

	return ids
}

// ActiveNodes returns the tracked nodes together with their stakes, in no
// particular order
func (as *ActiveSet) ActiveNodes() []NodeStake {
	nodes := make([]NodeStake, 0, len(as.entries))
	for _, e := range as.entries {
		nodes = append(nodes, NodeStake{
			NodeID: e.nodeID,
			Stake:  big.NewInt(0).Set(e.stake),
		})
	}

	return nodes
}

// Size returns the number of tracked nodes
func (as *ActiveSet) Size() uint32 {
	return uint32(len(as.entries))
}

// MaxSize returns the maximum number of nodes the set can track
func (as *ActiveSet) MaxSize() uint32 {
	return as.maxSize
}

// TotalStake returns the sum of all tracked stakes
func (as *ActiveSet) TotalStake() *big.Int {
	return big.NewInt(0).Set(as.totalStake)
}

// Threshold returns the minimum stake required to enter the set
func (as *ActiveSet) Threshold() *big.Int {
	return big.NewInt(0).Set(as.threshold)
}

func (as *ActiveSet) indexOf(nodeID []byte) int {
	for i, e := range as.entries {
		if bytes.Equal(e.nodeID, nodeID) {
			return i
		}
	}

	return -1
}

// IsInterfaceNil returns true if there is no value under the interface
func (as *ActiveSet) IsInterfaceNil() bool {
	return as == nil
}
