package device

import "hermes/protocol"

// PatchFrame encodes [PATCH][L][code][id][settings]. One-shot kinds are
// sent with id 0.
func PatchFrame(id uint8, spec Spec) ([]byte, error) {
	settings := spec.Settings()
	if len(settings)+2 > protocol.MaxPayload {
		return nil, ErrTooLarge
	}
	if !spec.Runnable() {
		id = 0
	}
	frame := make([]byte, 0, 4+len(settings))
	frame = append(frame, byte(protocol.PATCH), byte(len(settings)+2), byte(spec.Code()), id)
	return append(frame, settings...), nil
}

// MutationFrame encodes [MUTATION][id][value].
func MutationFrame(id uint8, value []byte) []byte {
	frame := make([]byte, 0, 2+len(value))
	frame = append(frame, byte(protocol.MUTATION), id)
	return append(frame, value...)
}

// HandshakeFrame encodes [HANDSHAKE][count]. Counts above 255 saturate.
func HandshakeFrame(count int) []byte {
	if count > 255 {
		count = 255
	}
	if count < 0 {
		count = 0
	}
	return []byte{byte(protocol.HANDSHAKE), byte(count)}
}
