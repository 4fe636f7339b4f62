package messages

import (
	"github.com/multiversx/mx-chain-core-go/core/check"
	"github.com/multiversx/mx-chain-core-go/marshal"
)

// ArgsMessageDecoder holds the arguments needed to create a message decoder
type ArgsMessageDecoder struct {
	Marshalizer marshal.Marshalizer
}

// messageDecoder turns certified payloads into typed protocol commands
type messageDecoder struct {
	marshalizer marshal.Marshalizer
}

// NewMessageDecoder creates a decoder for certified protocol messages
func NewMessageDecoder(args ArgsMessageDecoder) (*messageDecoder, error) {
	if check.IfNil(args.Marshalizer) {
		return nil, ErrNilMarshalizer
	}

	return &messageDecoder{
		marshalizer: args.Marshalizer,
	}, nil
}

// EncodeMessage builds the envelope carrying command, tagged with the given
// intent and epoch, and returns its encoded form ready to be signed.
func (md *messageDecoder) EncodeMessage(intentType IntentType, epoch uint32, command interface{}) ([]byte, error) {
	payload, err := md.marshalizer.Marshal(command)
	if err != nil {
		return nil, err
	}

	message := &ProtocolMessage{
		IntentType:    intentType,
		IntentVersion: DefaultIntentVersion,
		AppID:         StorageAppID,
		Epoch:         epoch,
		Payload:       payload,
	}

	return md.marshalizer.Marshal(message)
}

// DecodeVerified checks the certificate over the encoded envelope against
// the given committee and decodes the envelope once the required weight is
// proven. The returned weight is the shard weight backing the certificate.
func (md *messageDecoder) DecodeVerified(
	committee *BlsCommittee,
	signature []byte,
	bitmap []byte,
	encodedMessage []byte,
	required RequiredWeight,
) (*ProtocolMessage, uint16, error) {
	if committee == nil {
		return nil, 0, ErrNilBlsCommittee
	}

	weight, err := committee.VerifyCertificateAndWeight(signature, bitmap, encodedMessage, required)
	if err != nil {
		return nil, 0, err
	}

	message := &ProtocolMessage{}
	err = md.marshalizer.Unmarshal(message, encodedMessage)
	if err != nil {
		return nil, 0, err
	}

	err = validateEnvelope(message, committee.Epoch())
	if err != nil {
		return nil, 0, err
	}

	return message, weight, nil
}

// DecodeCommand decodes the payload of message into the typed command
// selected by its intent type
func (md *messageDecoder) DecodeCommand(message *ProtocolMessage) (interface{}, error) {
	if message == nil {
		return nil, ErrNilProtocolMessage
	}

	var command interface{}
	switch message.IntentType {
	case IntentProofOfPossession:
		command = &ProofOfPossessionMessage{}
	case IntentCertifyBlob:
		command = &CertifyBlobMessage{}
	case IntentInvalidBlob:
		command = &InvalidBlobMessage{}
	case IntentDenyListUpdate:
		command = &DenyListUpdateMessage{}
	default:
		return nil, ErrUnknownMessageType
	}

	err := md.marshalizer.Unmarshal(command, message.Payload)
	if err != nil {
		return nil, err
	}

	return command, nil
}

// IsInterfaceNil returns true if there is no value under the interface
func (md *messageDecoder) IsInterfaceNil() bool {
	return md == nil
}

func validateEnvelope(message *ProtocolMessage, epoch uint32) error {
	if message.IntentVersion != DefaultIntentVersion {
		return ErrUnsupportedIntentVersion
	}
	if message.AppID != StorageAppID {
		return ErrInvalidAppID
	}
	if message.Epoch != epoch {
		return ErrInvalidEpoch
	}

	return nil
}
