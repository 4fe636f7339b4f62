package notifier

import (
	"github.com/shardbay/sb-staking-go/staking"
)

// handlerStruct wraps a plain function into a staking.ActionHandler
type handlerStruct struct {
	f     func(epoch uint32)
	order uint32
}

// MakeHandlerForEpochChange returns an ActionHandler calling f, notified at the given order
func MakeHandlerForEpochChange(f func(epoch uint32), order uint32) staking.ActionHandler {
	return &handlerStruct{
		f:     f,
		order: order,
	}
}

// EpochChangeAction calls the wrapped function if not nil
func (hs *handlerStruct) EpochChangeAction(epoch uint32) {
	if hs.f != nil {
		hs.f(epoch)
	}
}

// NotifyOrder returns the notification order of this handler
func (hs *handlerStruct) NotifyOrder() uint32 {
	return hs.order
}

// IsInterfaceNil returns true if there is no value under the interface
func (hs *handlerStruct) IsInterfaceNil() bool {
	return hs == nil
}
