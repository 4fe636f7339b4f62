package staking

import (
	"time"
)

// SyncTimer provides the network-adjusted wall clock used to gate epoch transitions
type SyncTimer interface {
	StartSyncingTime()
	ClockOffset() time.Duration
	CurrentTime() time.Time
	Close() error
	IsInterfaceNil() bool
}

// ActionHandler defines an epoch change subscriber
type ActionHandler interface {
	// EpochChangeAction is called for each registered handler when a new epoch is activated
	EpochChangeAction(epoch uint32)
	// NotifyOrder returns the notification order of this handler, lower values are notified first
	NotifyOrder() uint32
	IsInterfaceNil() bool
}

// EpochChangeNotifier defines the subscription mechanism for epoch activation events
type EpochChangeNotifier interface {
	RegisterHandler(handler ActionHandler)
	UnregisterHandler(handler ActionHandler)
	NotifyAll(epoch uint32)
	IsInterfaceNil() bool
}

// Storer provides storage services for the staking registry
type Storer interface {
	Put(key, data []byte) error
	Get(key []byte) ([]byte, error)
	IsInterfaceNil() bool
}

// Cacher provides caching services for per-epoch derived data
type Cacher interface {
	Clear()
	Put(key []byte, value interface{}, sizeInBytes int) (evicted bool)
	Get(key []byte) (value interface{}, ok bool)
	IsInterfaceNil() bool
}
