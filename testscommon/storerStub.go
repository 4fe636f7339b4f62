package testscommon

import (
	"errors"
	"sync"
)

// StorerStub -
type StorerStub struct {
	PutCalled func(key []byte, data []byte) error
	GetCalled func(key []byte) ([]byte, error)
}

// Put -
func (ss *StorerStub) Put(key []byte, data []byte) error {
	if ss.PutCalled != nil {
		return ss.PutCalled(key, data)
	}

	return nil
}

// Get -
func (ss *StorerStub) Get(key []byte) ([]byte, error) {
	if ss.GetCalled != nil {
		return ss.GetCalled(key)
	}

	return nil, errors.New("key not found")
}

// IsInterfaceNil returns true if there is no value under the interface
func (ss *StorerStub) IsInterfaceNil() bool {
	return ss == nil
}

// MemoryStorerMock -
type MemoryStorerMock struct {
	mut     sync.RWMutex
	dataMap map[string][]byte
}

// NewMemoryStorerMock -
func NewMemoryStorerMock() *MemoryStorerMock {
	return &MemoryStorerMock{
		dataMap: make(map[string][]byte),
	}
}

// Put -
func (msm *MemoryStorerMock) Put(key []byte, data []byte) error {
	msm.mut.Lock()
	defer msm.mut.Unlock()

	buff := make([]byte, len(data))
	copy(buff, data)
	msm.dataMap[string(key)] = buff

	return nil
}

// Get -
func (msm *MemoryStorerMock) Get(key []byte) ([]byte, error) {
	msm.mut.RLock()
	defer msm.mut.RUnlock()

	data, found := msm.dataMap[string(key)]
	if !found {
		return nil, errors.New("key not found")
	}

	return data, nil
}

// IsInterfaceNil returns true if there is no value under the interface
func (msm *MemoryStorerMock) IsInterfaceNil() bool {
	return msm == nil
}
