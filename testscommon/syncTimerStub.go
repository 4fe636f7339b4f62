package testscommon

import (
	"time"
)

// SyncTimerStub -
type SyncTimerStub struct {
	StartSyncingTimeCalled func()
	ClockOffsetCalled      func() time.Duration
	CurrentTimeCalled      func() time.Time
	CloseCalled            func() error
}

// StartSyncingTime -
func (sts *SyncTimerStub) StartSyncingTime() {
	if sts.StartSyncingTimeCalled != nil {
		sts.StartSyncingTimeCalled()
	}
}

// ClockOffset -
func (sts *SyncTimerStub) ClockOffset() time.Duration {
	if sts.ClockOffsetCalled != nil {
		return sts.ClockOffsetCalled()
	}

	return time.Duration(0)
}

// CurrentTime -
func (sts *SyncTimerStub) CurrentTime() time.Time {
	if sts.CurrentTimeCalled != nil {
		return sts.CurrentTimeCalled()
	}

	return time.Unix(0, 0)
}

// Close -
func (sts *SyncTimerStub) Close() error {
	if sts.CloseCalled != nil {
		return sts.CloseCalled()
	}

	return nil
}

// IsInterfaceNil returns true if there is no value under the interface
func (sts *SyncTimerStub) IsInterfaceNil() bool {
	return sts == nil
}
