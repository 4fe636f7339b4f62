package cryptoMocks

import (
	crypto "github.com/multiversx/mx-chain-crypto-go"
)

// PublicKeyStub -
type PublicKeyStub struct {
	ToByteArrayCalled func() ([]byte, error)
	SuiteCalled       func() crypto.Suite
	PointCalled       func() crypto.Point
}

// ToByteArray -
func (stub *PublicKeyStub) ToByteArray() ([]byte, error) {
	if stub.ToByteArrayCalled != nil {
		return stub.ToByteArrayCalled()
	}

	return make([]byte, 0), nil
}

// Suite -
func (stub *PublicKeyStub) Suite() crypto.Suite {
	if stub.SuiteCalled != nil {
		return stub.SuiteCalled()
	}

	return nil
}

// Point -
func (stub *PublicKeyStub) Point() crypto.Point {
	if stub.PointCalled != nil {
		return stub.PointCalled()
	}

	return nil
}

// IsInterfaceNil -
func (stub *PublicKeyStub) IsInterfaceNil() bool {
	return stub == nil
}

// PrivateKeyStub -
type PrivateKeyStub struct {
	ToByteArrayCalled    func() ([]byte, error)
	GeneratePublicCalled func() crypto.PublicKey
	SuiteCalled          func() crypto.Suite
	ScalarCalled         func() crypto.Scalar
}

// ToByteArray -
func (stub *PrivateKeyStub) ToByteArray() ([]byte, error) {
	if stub.ToByteArrayCalled != nil {
		return stub.ToByteArrayCalled()
	}

	return make([]byte, 0), nil
}

// GeneratePublic -
func (stub *PrivateKeyStub) GeneratePublic() crypto.PublicKey {
	if stub.GeneratePublicCalled != nil {
		return stub.GeneratePublicCalled()
	}

	return &PublicKeyStub{}
}

// Suite -
func (stub *PrivateKeyStub) Suite() crypto.Suite {
	if stub.SuiteCalled != nil {
		return stub.SuiteCalled()
	}

	return nil
}

// Scalar -
func (stub *PrivateKeyStub) Scalar() crypto.Scalar {
	if stub.ScalarCalled != nil {
		return stub.ScalarCalled()
	}

	return nil
}

// IsInterfaceNil -
func (stub *PrivateKeyStub) IsInterfaceNil() bool {
	return stub == nil
}
