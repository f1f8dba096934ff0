// Package kernels holds the gate, generator and matrix routines that mutate
// a state vector in place. Each KernelType is a complete, independent
// implementation strategy; the dispatcher chooses between them per operation.
package kernels

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/validation"
)

// KernelType names an implementation variant.
type KernelType int

const (
	// KernelDefault asks the dispatcher for the per-operation default.
	KernelDefault KernelType = iota - 1
	// KernelLM walks the buffer with bit insertion, computing indices on the fly.
	KernelLM
	// KernelPI precomputes internal and external indices and covers every operation.
	KernelPI
)

func (k KernelType) String() string {
	switch k {
	case KernelDefault:
		return "Default"
	case KernelLM:
		return "LM"
	case KernelPI:
		return "PI"
	}
	return fmt.Sprintf("KernelType(%d)", int(k))
}

// ParseKernel resolves a kernel name. The empty string selects KernelDefault.
func ParseKernel(name string) (KernelType, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "DEFAULT":
		return KernelDefault, nil
	case "LM":
		return KernelLM, nil
	case "PI":
		return KernelPI, nil
	}
	return KernelDefault, validation.New("kernel", validation.ErrInvalidArgument, "unknown kernel %q", name)
}

// AllKernels lists the concrete kernel variants.
func AllKernels() []KernelType {
	return []KernelType{KernelLM, KernelPI}
}

// GateFunc applies a gate, or its adjoint when inverse is set.
type GateFunc[C gates.Complex] func(arr []C, numQubits int, wires []int, inverse bool, params []float64)

// GeneratorFunc applies a generator and returns its scaling factor.
type GeneratorFunc[C gates.Complex] func(arr []C, numQubits int, wires []int, adj bool) float64

// MatrixFunc applies a row-major 2^k x 2^k matrix to k wires.
type MatrixFunc[C gates.Complex] func(arr []C, numQubits int, matrix []C, wires []int, inverse bool)

// Kernel is the set of operations one variant implements.
type Kernel[C gates.Complex] struct {
	ID         KernelType
	Gates      map[gates.GateOperation]GateFunc[C]
	Generators map[gates.GeneratorOperation]GeneratorFunc[C]
	Matrices   map[gates.MatrixOperation]MatrixFunc[C]
}

func (k Kernel[C]) Name() string {
	return k.ID.String()
}

// ImplementedGates returns the gates of k in catalog order.
func (k Kernel[C]) ImplementedGates() []gates.GateOperation {
	out := make([]gates.GateOperation, 0, len(k.Gates))
	for op := range k.Gates {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ImplementedGenerators returns the generators of k in catalog order.
func (k Kernel[C]) ImplementedGenerators() []gates.GeneratorOperation {
	out := make([]gates.GeneratorOperation, 0, len(k.Generators))
	for g := range k.Generators {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ImplementedMatrices returns the matrix routines of k.
func (k Kernel[C]) ImplementedMatrices() []gates.MatrixOperation {
	out := make([]gates.MatrixOperation, 0, len(k.Matrices))
	for m := range k.Matrices {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Available returns every kernel variant for precision C.
func Available[C gates.Complex]() []Kernel[C] {
	return []Kernel[C]{LM[C](), PI[C]()}
}

// Options controls how kernels split work across goroutines.
type Options struct {
	// Workers is the maximum number of goroutines a single application uses.
	Workers int
	// ParallelThreshold is the minimum number of independent blocks before a
	// loop is split.
	ParallelThreshold int
}

// DefaultOptions returns one worker per CPU and a threshold of 2^14 blocks.
func DefaultOptions() Options {
	return Options{
		Workers:           runtime.NumCPU(),
		ParallelThreshold: 1 << 14,
	}
}

var settings atomic.Pointer[Options]

func init() {
	opts := DefaultOptions()
	settings.Store(&opts)
}

// Configure replaces the parallelism settings used by subsequent applications.
func Configure(opts Options) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ParallelThreshold < 1 {
		opts.ParallelThreshold = 1
	}
	settings.Store(&opts)
}

// CurrentOptions returns the active parallelism settings.
func CurrentOptions() Options {
	return *settings.Load()
}

// parallelFor runs body over [0, n). Chunks touch disjoint amplitudes, so no
// synchronisation is needed beyond the final wait.
func parallelFor(n int, body func(start, end int)) {
	opts := settings.Load()
	if opts.Workers <= 1 || n < opts.ParallelThreshold {
		body(0, n)
		return
	}

	parallelism := min(opts.Workers, n)
	chunkSize := (n + parallelism - 1) / parallelism

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			body(s, e)
		}(start, end)
	}
	wg.Wait()
}
