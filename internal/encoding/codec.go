package encoding

import (
	"bytes"
	"encoding/json"
	"sync"
	"sync/atomic"
)

// Codec provides pooled JSON encoding for the hot serialization paths
// (audit answer sets and score breakdowns are marshaled on every write
// and unmarshaled on every read).
type Codec struct {
	buffers sync.Pool

	marshals   atomic.Int64
	unmarshals atomic.Int64
}

// NewCodec creates a new pooled JSON codec
func NewCodec() *Codec {
	return &Codec{
		buffers: sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

// Marshal encodes v as compact JSON using a pooled buffer
func (c *Codec) Marshal(v interface{}) ([]byte, error) {
	buf := c.buffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer c.buffers.Put(buf)

	enc := json.NewEncoder(buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	c.marshals.Add(1)

	// Encode appends a trailing newline; drop it
	data := buf.Bytes()
	if n := len(data); n > 0 && data[n-1] == '\n' {
		data = data[:n-1]
	}

	// Copy out before the buffer returns to the pool
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Unmarshal decodes JSON data into v
func (c *Codec) Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	c.unmarshals.Add(1)
	return nil
}

// GetStats returns codec usage statistics
func (c *Codec) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"marshals":   c.marshals.Load(),
		"unmarshals": c.unmarshals.Load(),
	}
}

// Global codec shared by the storage layer
var globalCodec = NewCodec()

// MarshalJSON marshals data using the global codec
func MarshalJSON(v interface{}) ([]byte, error) {
	return globalCodec.Marshal(v)
}

// UnmarshalJSON unmarshals data using the global codec
func UnmarshalJSON(data []byte, v interface{}) error {
	return globalCodec.Unmarshal(data, v)
}

// GlobalStats returns statistics for the shared codec
func GlobalStats() map[string]interface{} {
	return globalCodec.GetStats()
}
