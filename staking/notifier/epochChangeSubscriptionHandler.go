package notifier

import (
	"sync"

	"github.com/multiversx/mx-chain-core-go/core/check"
	"golang.org/x/exp/slices"

	"github.com/shardbay/sb-staking-go/staking"
)

// epochChangeSubscriptionHandler handles subscriptions to epoch activation events
type epochChangeSubscriptionHandler struct {
	handlers    []staking.ActionHandler
	mutHandlers sync.RWMutex
}

// NewEpochChangeSubscriptionHandler returns a new instance of epochChangeSubscriptionHandler
func NewEpochChangeSubscriptionHandler() *epochChangeSubscriptionHandler {
	return &epochChangeSubscriptionHandler{
		handlers: make([]staking.ActionHandler, 0),
	}
}

// RegisterHandler subscribes a handler to be called when a new epoch is activated
func (handler *epochChangeSubscriptionHandler) RegisterHandler(actionHandler staking.ActionHandler) {
	if check.IfNil(actionHandler) {
		return
	}

	handler.mutHandlers.Lock()
	handler.handlers = append(handler.handlers, actionHandler)
	handler.mutHandlers.Unlock()
}

// UnregisterHandler unsubscribes a previously registered handler
func (handler *epochChangeSubscriptionHandler) UnregisterHandler(actionHandler staking.ActionHandler) {
	if check.IfNil(actionHandler) {
		return
	}

	handler.mutHandlers.Lock()
	for idx, registered := range handler.handlers {
		if registered == actionHandler {
			handler.handlers = append(handler.handlers[:idx], handler.handlers[idx+1:]...)
			break
		}
	}
	handler.mutHandlers.Unlock()
}

// NotifyAll calls all subscribed handlers, ordered by their notify order, lower values first.
// Handlers sharing the same order keep their registration order.
func (handler *epochChangeSubscriptionHandler) NotifyAll(epoch uint32) {
	handler.mutHandlers.RLock()
	sortedHandlers := make([]staking.ActionHandler, len(handler.handlers))
	copy(sortedHandlers, handler.handlers)
	handler.mutHandlers.RUnlock()

	slices.SortStableFunc(sortedHandlers, func(a, b staking.ActionHandler) int {
		return int(a.NotifyOrder()) - int(b.NotifyOrder())
	})

	for _, actionHandler := range sortedHandlers {
		actionHandler.EpochChangeAction(epoch)
	}
}

// IsInterfaceNil returns true if there is no value under the interface
func (handler *epochChangeSubscriptionHandler) IsInterfaceNil() bool {
	return handler == nil
}
