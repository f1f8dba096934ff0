// Package statevector owns the dense amplitude buffer of an n-qubit register
// and applies named operations, generators and arbitrary matrices to it.
package statevector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/2lambda123/pennylane-lightning/internal/dispatch"
	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/kernels"
	"github.com/2lambda123/pennylane-lightning/internal/metrics"
	"github.com/2lambda123/pennylane-lightning/internal/validation"
)

// StateVector is a register of numQubits qubits stored as 2^numQubits
// amplitudes. It is not safe for concurrent mutation.
type StateVector[C gates.Complex] struct {
	numQubits int
	data      []C
	owned     bool
}

func amplitudeBytes[C gates.Complex](n int) int64 {
	return int64(n) * int64(bitSize[C]()/8)
}

// New returns the |0...0> state on numQubits qubits.
func New[C gates.Complex](numQubits int) (*StateVector[C], error) {
	if err := validation.CheckQubits("New", numQubits); err != nil {
		return nil, err
	}
	data := make([]C, 1<<numQubits)
	data[0] = 1
	metrics.RecordStateAlloc(amplitudeBytes[C](len(data)))
	return &StateVector[C]{numQubits: numQubits, data: data, owned: true}, nil
}

func qubitsFor(op string, length int) (int, error) {
	if length < 2 || length&(length-1) != 0 {
		return 0, validation.New(op, validation.ErrInvalidArgument, "amplitude count %d is not a power of two >= 2", length)
	}
	n := bits.TrailingZeros(uint(length))
	if err := validation.CheckQubits(op, n); err != nil {
		return 0, err
	}
	return n, nil
}

// NewFromData copies amplitudes into a new state. len(amplitudes) must be a
// power of two.
func NewFromData[C gates.Complex](amplitudes []C) (*StateVector[C], error) {
	n, err := qubitsFor("NewFromData", len(amplitudes))
	if err != nil {
		return nil, err
	}
	data := make([]C, len(amplitudes))
	copy(data, amplitudes)
	metrics.RecordStateAlloc(amplitudeBytes[C](len(data)))
	return &StateVector[C]{numQubits: n, data: data, owned: true}, nil
}

// Wrap references buf without copying; every operation mutates buf in place.
// The caller keeps ownership of buf and must not resize it.
func Wrap[C gates.Complex](buf []C) (*StateVector[C], error) {
	n, err := qubitsFor("Wrap", len(buf))
	if err != nil {
		return nil, err
	}
	return &StateVector[C]{numQubits: n, data: buf}, nil
}

// Release drops the buffer of an owned state. The state must not be used afterwards.
func (sv *StateVector[C]) Release() {
	if sv.owned && sv.data != nil {
		metrics.RecordStateAlloc(-amplitudeBytes[C](len(sv.data)))
	}
	sv.data = nil
	sv.numQubits = 0
}

func (sv *StateVector[C]) NumQubits() int { return sv.numQubits }

func (sv *StateVector[C]) Length() int { return len(sv.data) }

// Data exposes the live amplitude buffer.
func (sv *StateVector[C]) Data() []C { return sv.data }

// Clone returns an independently owned copy.
func (sv *StateVector[C]) Clone() *StateVector[C] {
	data := make([]C, len(sv.data))
	copy(data, sv.data)
	metrics.RecordStateAlloc(amplitudeBytes[C](len(data)))
	return &StateVector[C]{numQubits: sv.numQubits, data: data, owned: true}
}

// CopyFrom overwrites the amplitudes with those of other, which must have
// the same qubit count.
func (sv *StateVector[C]) CopyFrom(other *StateVector[C]) error {
	if other.numQubits != sv.numQubits {
		return validation.New("CopyFrom", validation.ErrInvalidArgument,
			"qubit count mismatch: %d != %d", sv.numQubits, other.numQubits)
	}
	copy(sv.data, other.data)
	return nil
}

// Reset re-initialises the state to |0...0> on numQubits qubits, reallocating
// when the size changes. Wrapped buffers cannot change size.
func (sv *StateVector[C]) Reset(numQubits int) error {
	if err := validation.CheckQubits("Reset", numQubits); err != nil {
		return err
	}
	if numQubits != sv.numQubits {
		if !sv.owned && sv.data != nil {
			return validation.New("Reset", validation.ErrInvalidArgument, "cannot resize a wrapped buffer")
		}
		if sv.data != nil {
			metrics.RecordStateAlloc(-amplitudeBytes[C](len(sv.data)))
		}
		sv.data = make([]C, 1<<numQubits)
		sv.numQubits = numQubits
		sv.owned = true
		metrics.RecordStateAlloc(amplitudeBytes[C](len(sv.data)))
	} else {
		clear(sv.data)
	}
	sv.data[0] = 1
	return nil
}

// recordFailure counts err under op. Unrecognised operation names share the
// "unknown" label.
func recordFailure(op string, err error) error {
	if err == nil {
		return err
	}
	if errors.Is(err, validation.ErrUnknownOperation) {
		op = "unknown"
	}
	metrics.RecordValidationError(op, validation.KindLabel(err))
	return err
}

// ApplyOperation applies the named gate with its default kernel. Invalid
// input is rejected before any amplitude changes.
func (sv *StateVector[C]) ApplyOperation(name string, wires []int, inverse bool, params []float64) error {
	return sv.ApplyOperationWithKernel(kernels.KernelDefault, name, wires, inverse, params)
}

// ApplyOperationWithKernel applies the named gate with kernel k.
func (sv *StateVector[C]) ApplyOperationWithKernel(k kernels.KernelType, name string, wires []int, inverse bool, params []float64) error {
	err := dispatch.For[C]().ApplyOperation(k, sv.data, sv.numQubits, name, wires, inverse, params)
	return recordFailure(name, err)
}

// ApplyOperations applies a batch left to right. names, wires and inverse
// must have equal length; params may be nil when no operation takes
// parameters. A failure part way leaves earlier operations applied.
func (sv *StateVector[C]) ApplyOperations(names []string, wires [][]int, inverse []bool, params [][]float64) error {
	return sv.ApplyOperationsContext(context.Background(), names, wires, inverse, params)
}

// ApplyOperationsContext is ApplyOperations with cancellation checked between
// whole operations.
func (sv *StateVector[C]) ApplyOperationsContext(ctx context.Context, names []string, wires [][]int, inverse []bool, params [][]float64) error {
	const op = "applyOperations"
	if len(wires) != len(names) || len(inverse) != len(names) || (params != nil && len(params) != len(names)) {
		err := validation.New(op, validation.ErrLengthMismatch,
			"names=%d wires=%d inverse=%d params=%d", len(names), len(wires), len(inverse), len(params))
		return recordFailure(op, err)
	}
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
		var p []float64
		if params != nil {
			p = params[i]
		}
		if err := sv.ApplyOperation(name, wires[i], inverse[i], p); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}

// ApplyMatrix applies a row-major 2^k x 2^k matrix to k wires.
func (sv *StateVector[C]) ApplyMatrix(matrix []C, wires []int, inverse bool) error {
	return sv.ApplyMatrixWithKernel(kernels.KernelDefault, matrix, wires, inverse)
}

// ApplyMatrixWithKernel applies matrix with kernel k.
func (sv *StateVector[C]) ApplyMatrixWithKernel(k kernels.KernelType, matrix []C, wires []int, inverse bool) error {
	err := dispatch.For[C]().ApplyMatrix(k, sv.data, sv.numQubits, matrix, wires, inverse)
	return recordFailure("applyMatrix", err)
}

// ApplyGenerator applies the generator of the named gate and returns its
// scaling factor.
func (sv *StateVector[C]) ApplyGenerator(name string, wires []int, adj bool) (float64, error) {
	return sv.ApplyGeneratorWithKernel(kernels.KernelDefault, name, wires, adj)
}

// ApplyGeneratorWithKernel applies the generator of name with kernel k.
func (sv *StateVector[C]) ApplyGeneratorWithKernel(k kernels.KernelType, name string, wires []int, adj bool) (float64, error) {
	scale, err := dispatch.For[C]().ApplyGenerator(k, sv.data, sv.numQubits, name, wires, adj)
	return scale, recordFailure(name, err)
}

// Equal reports exact equality of qubit count and amplitudes.
func (sv *StateVector[C]) Equal(other *StateVector[C]) bool {
	if sv.numQubits != other.numQubits || len(sv.data) != len(other.data) {
		return false
	}
	for i, v := range sv.data {
		if v != other.data[i] {
			return false
		}
	}
	return true
}

// SquaredNorm returns the sum of squared amplitude magnitudes.
func (sv *StateVector[C]) SquaredNorm() float64 {
	var sum float64
	for _, v := range sv.data {
		z := complex128(v)
		sum += real(z)*real(z) + imag(z)*imag(z)
	}
	return sum
}

// Normalize scales the state to unit norm. A zero state is left unchanged.
func (sv *StateVector[C]) Normalize() {
	norm := math.Sqrt(sv.SquaredNorm())
	if norm == 0 {
		return
	}
	scale := C(complex(1/norm, 0))
	for i := range sv.data {
		sv.data[i] *= scale
	}
}

// InnerProduct returns <a|b>, conjugating a. Both states must have the same length.
func InnerProduct[C gates.Complex](a, b *StateVector[C]) complex128 {
	var sum complex128
	for i, v := range a.data {
		sum += cmplx.Conj(complex128(v)) * complex128(b.data[i])
	}
	return sum
}

// String dumps the qubit count and every amplitude.
func (sv *StateVector[C]) String() string {
	var b strings.Builder
	b.WriteString("num_qubits=")
	b.WriteString(strconv.Itoa(sv.numQubits))
	b.WriteString("\ndata=[")
	for i, v := range sv.data {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatComplex(complex128(v), 'g', -1, bitSize[C]()))
	}
	b.WriteString("]")
	return b.String()
}

func bitSize[C gates.Complex]() int {
	var zero C
	if _, ok := any(zero).(complex64); ok {
		return 64
	}
	return 128
}
