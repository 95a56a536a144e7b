package bind_group_provider

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
)

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  uint32
	Offset   uint64
	Data     []byte
}

// WriteBuffers rewrites provider-owned buffers in place. The bind groups referencing them stay valid.
//
// Parameters:
//   - queue: the queue to write through
//   - writes: the writes to apply, in order
//
// Returns:
//   - error: error if a write targets a binding with no owned buffer or overruns the buffer
func WriteBuffers(queue gpu.Queue, writes []BufferWrite) error {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			return fmt.Errorf("bind group provider %q: no buffer at binding %d", w.Provider.Label(), w.Binding)
		}
		if end := w.Offset + uint64(len(w.Data)); end > buf.Size() {
			return fmt.Errorf("bind group provider %q: write of %d bytes at %d overruns %d-byte buffer",
				w.Provider.Label(), len(w.Data), w.Offset, buf.Size())
		}
		queue.WriteBuffer(buf, w.Offset, w.Data)
	}
	return nil
}
