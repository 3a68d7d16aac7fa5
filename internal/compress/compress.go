package compress

import (
	"fmt"
	"strings"
)

// Compress encodes payloads before they are stored in the cache.
type Compress interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// New returns the codec registered under name: nop, gzip, brotli or lz4.
func New(name string) (Compress, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "nop", "none":
		return NewNop(), nil
	case "gzip":
		return NewGZip(), nil
	case "brotli", "br":
		return NewBrotli(), nil
	case "lz4":
		return NewLZ4(), nil
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
}

// Nop stores payloads as they are.
type Nop struct{}

func NewNop() Nop { return Nop{} }

func (Nop) Encode(data []byte) ([]byte, error) { return data, nil }
func (Nop) Decode(data []byte) ([]byte, error) { return data, nil }
