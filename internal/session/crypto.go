package session

import "github.com/igorolhovskiy/rtpproxy/internal/core"

// Decryptor supplies plaintext for encrypted media payloads before they
// reach the classifier. Key material is held by the implementation, keyed by
// channel identity; this package treats the result as ordinary UDP payload
// bytes. Key derivation itself is external.
type Decryptor interface {
	Decrypt(ch core.Channel, payload []byte) ([]byte, error)
}

// NopDecryptor passes payloads through unchanged, for unencrypted captures.
type NopDecryptor struct{}

func (NopDecryptor) Decrypt(_ core.Channel, payload []byte) ([]byte, error) {
	return payload, nil
}
