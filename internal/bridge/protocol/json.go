package protocol

import (
	"github.com/bytedance/sonic"
)

// codec matches JSON.stringify on the page side: no HTML escaping,
// compact output, strict string validation.
var codec = sonic.Config{
	EscapeHTML:       false,
	CompactMarshaler: true,
	CopyString:       true,
	ValidateString:   true,
}.Froze()

// Marshal encodes v with the bridge codec.
func Marshal(v any) ([]byte, error) {
	return codec.Marshal(v)
}

// Unmarshal decodes data with the bridge codec.
func Unmarshal(data []byte, v any) error {
	return codec.Unmarshal(data, v)
}
