package adjoint

import (
	"sync"

	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/metrics"
)

// Workspace recycles amplitude buffers between sweep steps and between
// Jacobian computations. Buffers handed out are never shared until Put.
type Workspace[C gates.Complex] struct {
	mu        sync.Mutex
	pool      map[int][][]C
	allocated int64
}

func NewWorkspace[C gates.Complex]() *Workspace[C] {
	return &Workspace[C]{pool: make(map[int][][]C)}
}

// Get returns a buffer of the given length. Its contents are unspecified.
func (w *Workspace[C]) Get(length int) []C {
	w.mu.Lock()
	defer w.mu.Unlock()
	if bufs := w.pool[length]; len(bufs) > 0 {
		buf := bufs[len(bufs)-1]
		w.pool[length] = bufs[:len(bufs)-1]
		return buf
	}
	bytes := int64(length) * elemSize[C]()
	w.allocated += bytes
	metrics.RecordStateAlloc(bytes)
	return make([]C, length)
}

// Put hands buf back for reuse. The caller must not touch it afterwards.
func (w *Workspace[C]) Put(buf []C) {
	if buf == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pool[len(buf)] = append(w.pool[len(buf)], buf)
}

// Idle reports how many buffers of length are waiting for reuse.
func (w *Workspace[C]) Idle(length int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pool[length])
}

// Free drops every pooled buffer. Buffers still checked out stay valid but
// are no longer tracked.
func (w *Workspace[C]) Free() {
	w.mu.Lock()
	defer w.mu.Unlock()
	metrics.RecordStateAlloc(-w.allocated)
	w.allocated = 0
	w.pool = make(map[int][][]C)
}

func elemSize[C gates.Complex]() int64 {
	var zero C
	if _, ok := any(zero).(complex64); ok {
		return 8
	}
	return 16
}
