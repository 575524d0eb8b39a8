// Package json encodes reports and listings with goccy/go-json, reusing
// output buffers through a recycler pool.
package json

import (
	"bytes"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/recycler/pkg/pool"
)

// maxPooledBuffer is the largest buffer kept for reuse
const maxPooledBuffer = 1024 * 1024

// Encoder writes indented JSON through pooled buffers. Like every pool it
// is not safe for concurrent use.
type Encoder struct {
	buffers *pool.Pool[*bytes.Buffer]
	indent  string
}

// NewEncoder creates an encoder keeping up to capacity buffers. An empty
// indent writes compact JSON.
func NewEncoder(capacity int, indent string) *Encoder {
	return &Encoder{
		buffers: pool.New(capacity, 1,
			pool.WithAllocator(func() *bytes.Buffer {
				return bytes.NewBuffer(make([]byte, 0, 4096))
			}),
			pool.WithOnPooled(func(b *bytes.Buffer) { b.Reset() }),
		),
		indent: indent,
	}
}

// Encode writes v to w followed by a newline
func (e *Encoder) Encode(w io.Writer, v interface{}) error {
	buf := e.buffers.Borrow()
	defer e.release(buf)

	enc := gojson.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if e.indent != "" {
		enc.SetIndent("", e.indent)
	}
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Stats returns the buffer pool counters
func (e *Encoder) Stats() pool.Stats {
	return e.buffers.Stats()
}

// release drops buffers that grew too large so one big document does not
// pin its memory.
func (e *Encoder) release(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	e.buffers.Return(buf)
}

// Unmarshal decodes data into v
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}
