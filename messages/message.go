package messages

// IntentType tags the purpose an aggregate signature was produced for. A
// certificate issued for one intent can never be replayed as another.
type IntentType uint8

const (
	// IntentProofOfPossession covers a node proving ownership of its signing key.
	IntentProofOfPossession IntentType = 0
	// IntentCertifyBlob covers availability certificates over a stored blob.
	IntentCertifyBlob IntentType = 1
	// IntentInvalidBlob covers inconsistency reports over a stored blob.
	IntentInvalidBlob IntentType = 2
	// IntentDenyListUpdate covers deny list root updates of a storage node.
	IntentDenyListUpdate IntentType = 3
)

// DefaultIntentVersion is the only signing intent version currently understood.
const DefaultIntentVersion uint8 = 0

// StorageAppID separates certificates of the storage protocol from any other
// signing domain the same keys might be used in.
const StorageAppID uint8 = 3

// ProtocolMessage is the envelope every certified protocol message travels in.
// The Payload bytes decode into one of the typed commands, selected by the
// intent type.
type ProtocolMessage struct {
	IntentType    IntentType
	IntentVersion uint8
	AppID         uint8
	Epoch         uint32
	Payload       []byte
}

// CertifyBlobMessage attests that a quorum of the committee stores the blob.
type CertifyBlobMessage struct {
	BlobID []byte
}

// InvalidBlobMessage reports a blob whose stored data is inconsistent with
// its identifier.
type InvalidBlobMessage struct {
	BlobID []byte
}

// DenyListUpdateMessage publishes a new deny list root for a storage node.
type DenyListUpdateMessage struct {
	NodeID         []byte
	SequenceNumber uint64
	DenyListSize   uint64
	DenyListRoot   []byte
}

// ProofOfPossessionMessage proves that a node controls the private part of
// the BLS key it registered with.
type ProofOfPossessionMessage struct {
	NodeID    []byte
	PublicKey []byte
}
