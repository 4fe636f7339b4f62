package testscommon

import (
	"encoding/json"

	"github.com/pkg/errors"
)

var errMarshalizerMock = errors.New("marshalizerMock generic error")

// MarshalizerMock is a json backed marshalizer usable in tests. Setting Fail
// makes every call return an error.
type MarshalizerMock struct {
	Fail bool
}

// Marshal encodes an object to its byte array representation
func (mm *MarshalizerMock) Marshal(obj interface{}) ([]byte, error) {
	if mm.Fail {
		return nil, errMarshalizerMock
	}

	if obj == nil {
		return nil, errors.New("nil object to serialize from")
	}

	return json.Marshal(obj)
}

// Unmarshal decodes a byte array and applies the data on an instantiated struct
func (mm *MarshalizerMock) Unmarshal(obj interface{}, buff []byte) error {
	if mm.Fail {
		return errMarshalizerMock
	}

	if obj == nil {
		return errors.New("nil object to serialize to")
	}

	if len(buff) == 0 {
		return errors.New("empty byte buffer to deserialize from")
	}

	return json.Unmarshal(buff, obj)
}

// IsInterfaceNil returns true if there is no value under the interface
func (mm *MarshalizerMock) IsInterfaceNil() bool {
	return mm == nil
}
