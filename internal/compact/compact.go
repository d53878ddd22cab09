// Package compact provides the compact binary encoding used for filter wire
// payloads: MessagePack serialization wrapped in ZStandard compression.
package compact

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec pairs a ZStandard compressor and decompressor around MessagePack.
// Create once and reuse to eliminate allocations; all methods are safe for
// concurrent use.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCodec creates a reusable codec.
// Uses SpeedDefault (level 3) for balanced compression ratio and speed.
// Caller must call Close() when done to release resources.
func NewCodec() (*Codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Codec{encoder: encoder, decoder: decoder}, nil
}

// Encode serializes a Go value into MessagePack and compresses it.
func (c *Codec) Encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	// EncodeAll is goroutine-safe
	dst := make([]byte, 0, len(data)/2)
	return c.encoder.EncodeAll(data, dst), nil
}

// DecodeMap decompresses data and deserializes it into a map[string]any.
// This is useful when the structure is not known at compile time.
func (c *Codec) DecodeMap(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	// DecodeAll is goroutine-safe
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}

	var result map[string]any
	if err := msgpack.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack map: %w", err)
	}

	return result, nil
}

// Close releases codec resources.
// Must be called when the codec is no longer needed.
func (c *Codec) Close() error {
	if c.decoder != nil {
		c.decoder.Close()
	}
	if c.encoder != nil {
		return c.encoder.Close()
	}
	return nil
}

// shared backs the package-level functions with one process-wide codec. It
// is never closed; the zstd buffers live for the life of the process.
var shared = sync.OnceValues(NewCodec)

// Encode serializes v with the shared codec.
func Encode(v any) ([]byte, error) {
	c, err := shared()
	if err != nil {
		return nil, err
	}
	return c.Encode(v)
}

// DecodeMap deserializes data with the shared codec.
func DecodeMap(data []byte) (map[string]any, error) {
	c, err := shared()
	if err != nil {
		return nil, err
	}
	return c.DecodeMap(data)
}
