package statevector

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/2lambda123/pennylane-lightning/internal/dispatch"
	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/kernels"
	"github.com/2lambda123/pennylane-lightning/internal/metrics"
	"github.com/2lambda123/pennylane-lightning/internal/validation"
)

func TestNew(t *testing.T) {
	sv := zeroState[complex128](t, 3)
	if sv.NumQubits() != 3 || sv.Length() != 8 {
		t.Fatalf("got %d qubits, %d amplitudes", sv.NumQubits(), sv.Length())
	}
	if sv.Data()[0] != 1 {
		t.Errorf("expected |000>, got %v", sv.Data())
	}
	for i := 1; i < sv.Length(); i++ {
		if sv.Data()[i] != 0 {
			t.Errorf("amplitude %d = %v, want 0", i, sv.Data()[i])
		}
	}

	for _, n := range []int{0, -1, validation.MaxQubits + 1} {
		if _, err := New[complex128](n); !errors.Is(err, validation.ErrInvalidArgument) {
			t.Errorf("New(%d): expected ErrInvalidArgument, got %v", n, err)
		}
	}
}

func TestNewFromData(t *testing.T) {
	src := []complex64{1, 0, 0, 0}
	sv, err := NewFromData(src)
	if err != nil {
		t.Fatal(err)
	}
	if sv.NumQubits() != 2 {
		t.Errorf("expected 2 qubits, got %d", sv.NumQubits())
	}
	src[0] = 5
	if sv.Data()[0] != 1 {
		t.Error("NewFromData must copy its input")
	}

	for _, n := range []int{0, 1, 3, 6} {
		if _, err := NewFromData(make([]complex64, n)); !errors.Is(err, validation.ErrInvalidArgument) {
			t.Errorf("len %d: expected ErrInvalidArgument, got %v", n, err)
		}
	}
}

func TestWrapAliasesBuffer(t *testing.T) {
	buf := []complex128{1, 0, 0, 0}
	sv, err := Wrap(buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := sv.ApplyOperation("PauliX", []int{0}, false, nil); err != nil {
		t.Fatal(err)
	}
	if buf[2] != 1 || buf[0] != 0 {
		t.Errorf("expected caller buffer to hold |10>, got %v", buf)
	}
	if err := sv.Reset(3); !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("resizing a wrapped buffer: expected ErrInvalidArgument, got %v", err)
	}
	if err := sv.Reset(2); err != nil {
		t.Fatal(err)
	}
	if buf[0] != 1 || buf[2] != 0 {
		t.Errorf("Reset must write through to the wrapped buffer, got %v", buf)
	}
}

func TestCloneAndCopyFrom(t *testing.T) {
	a := randomState[complex128](t, 3, 1)
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone differs from source")
	}
	b.Data()[0] += 1
	if a.Equal(b) {
		t.Error("clone shares storage with source")
	}
	if err := b.CopyFrom(a); err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Error("CopyFrom did not copy amplitudes")
	}
	if err := b.CopyFrom(zeroState[complex128](t, 2)); !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestResetAndRelease(t *testing.T) {
	before := metrics.StateBytes()
	sv := plusState[complex128](t, 2)
	if got := metrics.StateBytes() - before; got != 4*16 {
		t.Errorf("expected 64 tracked bytes, got %d", got)
	}
	if err := sv.Reset(3); err != nil {
		t.Fatal(err)
	}
	if sv.Length() != 8 || sv.Data()[0] != 1 {
		t.Errorf("unexpected state after Reset: %v", sv.Data())
	}
	if got := metrics.StateBytes() - before; got != 8*16 {
		t.Errorf("expected 128 tracked bytes, got %d", got)
	}
	sv.Release()
	if got := metrics.StateBytes() - before; got != 0 {
		t.Errorf("expected release to return tracked bytes, got %d", got)
	}
}

func TestString(t *testing.T) {
	sv, err := NewFromData([]complex128{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	want := "num_qubits=1\ndata=[(1+0i),(0+0i)]"
	if got := sv.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestEqual(t *testing.T) {
	a := productState[complex128](t, "+01")
	b := productState[complex128](t, "+01")
	if !a.Equal(b) {
		t.Error("identical product states compare unequal")
	}
	if a.Equal(productState[complex128](t, "+10")) {
		t.Error("different states compare equal")
	}
	if a.Equal(zeroState[complex128](t, 2)) {
		t.Error("states with different qubit counts compare equal")
	}
}

func TestProductStateFromGates(t *testing.T) {
	sv := zeroState[complex128](t, 3)
	err := sv.ApplyOperations(
		[]string{"Hadamard", "PauliX"},
		[][]int{{0}, {2}},
		[]bool{false, false},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	approxEqual(t, sv, productState[complex128](t, "+01"), 1e-12)
}

func TestApplyMatrixMatchesNamedGate(t *testing.T) {
	h, err := gates.Matrix[complex128](gates.Hadamard, 1, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []kernels.KernelType{kernels.KernelLM, kernels.KernelPI} {
		t.Run(k.String(), func(t *testing.T) {
			named := randomState[complex128](t, 3, 7)
			viaMatrix := named.Clone()
			if err := named.ApplyOperationWithKernel(k, "Hadamard", []int{1}, false, nil); err != nil {
				t.Fatal(err)
			}
			if err := viaMatrix.ApplyMatrixWithKernel(k, h, []int{1}, false); err != nil {
				t.Fatal(err)
			}
			approxEqual(t, viaMatrix, named, 1e-12)
		})
	}
}

func TestInverseRoundTrip(t *testing.T) {
	for _, k := range []kernels.KernelType{kernels.KernelLM, kernels.KernelPI} {
		for _, op := range gates.AllGates() {
			if _, _, err := dispatch.For[complex128]().Gate(op, k); err != nil {
				continue
			}
			t.Run(k.String()+"/"+op.String(), func(t *testing.T) {
				sv := randomState[complex128](t, 4, int64(op)+11)
				want := sv.Clone()
				wires, params := testWires(op), testParams(op)
				if err := sv.ApplyOperationWithKernel(k, op.String(), wires, false, params); err != nil {
					t.Fatal(err)
				}
				if math.Abs(sv.SquaredNorm()-1) > 1e-12 {
					t.Errorf("norm not preserved: %v", sv.SquaredNorm())
				}
				if err := sv.ApplyOperationWithKernel(k, op.String(), wires, true, params); err != nil {
					t.Fatal(err)
				}
				approxEqual(t, sv, want, 1e-12)
			})
		}
	}
}

func TestInverseMatrixRoundTrip(t *testing.T) {
	m, err := gates.Matrix[complex128](gates.CRot, 2, []float64{0.3, -1.1, 0.7}, false)
	if err != nil {
		t.Fatal(err)
	}
	sv := randomState[complex128](t, 3, 3)
	want := sv.Clone()
	if err := sv.ApplyMatrix(m, []int{2, 0}, false); err != nil {
		t.Fatal(err)
	}
	if err := sv.ApplyMatrix(m, []int{2, 0}, true); err != nil {
		t.Fatal(err)
	}
	approxEqual(t, sv, want, 1e-12)
}

func TestApplyOperationErrors(t *testing.T) {
	tests := []struct {
		name   string
		gate   string
		wires  []int
		params []float64
		kernel kernels.KernelType
		want   error
	}{
		{"unknown gate", "Bogus", []int{0}, nil, kernels.KernelDefault, validation.ErrUnknownOperation},
		{"too few wires", "CNOT", []int{0}, nil, kernels.KernelDefault, validation.ErrArityMismatch},
		{"too many params", "RX", []int{0}, []float64{0.1, 0.2}, kernels.KernelDefault, validation.ErrArityMismatch},
		{"missing params", "Rot", []int{0}, []float64{0.1}, kernels.KernelDefault, validation.ErrArityMismatch},
		{"wire out of range", "PauliX", []int{3}, nil, kernels.KernelDefault, validation.ErrInvalidArgument},
		{"duplicate wires", "CNOT", []int{1, 1}, nil, kernels.KernelDefault, validation.ErrInvalidArgument},
		{"no wires", "MultiRZ", nil, []float64{0.1}, kernels.KernelDefault, validation.ErrInvalidArgument},
		{"unsupported kernel", "Toffoli", []int{0, 1, 2}, nil, kernels.KernelLM, validation.ErrUnsupportedKernel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sv := randomState[complex128](t, 3, 5)
			before := sv.Clone()
			err := sv.ApplyOperationWithKernel(tt.kernel, tt.gate, tt.wires, false, tt.params)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !sv.Equal(before) {
				t.Error("state mutated by a rejected operation")
			}
		})
	}
}

func TestApplyMatrixErrors(t *testing.T) {
	sv := zeroState[complex128](t, 2)
	if err := sv.ApplyMatrix(make([]complex128, 4), nil, false); !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("empty wires: expected ErrInvalidArgument, got %v", err)
	}
	err := sv.ApplyMatrix(make([]complex128, 8), []int{0, 1}, false)
	if !errors.Is(err, validation.ErrInvalidArgument) {
		t.Fatalf("wrong size: expected ErrInvalidArgument, got %v", err)
	}
	if !strings.Contains(err.Error(), "does not match") {
		t.Errorf("unexpected message %q", err)
	}
	if sv.Data()[0] != 1 {
		t.Error("state mutated by a rejected matrix")
	}
}

func TestUnknownOperationLabel(t *testing.T) {
	sv := zeroState[complex128](t, 1)
	counter := func(op string) float64 {
		return testutil.ToFloat64(metrics.ValidationErrors.WithLabelValues(op, validation.KindLabel(validation.ErrUnknownOperation)))
	}
	before := counter("unknown")
	for _, name := range []string{"Bogus1", "Bogus2", "Bogus3"} {
		if err := sv.ApplyOperation(name, []int{0}, false, nil); !errors.Is(err, validation.ErrUnknownOperation) {
			t.Fatalf("%s: expected ErrUnknownOperation, got %v", name, err)
		}
	}
	if _, err := sv.ApplyGenerator("Bogus4", []int{0}, false); !errors.Is(err, validation.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
	if got := counter("unknown") - before; got != 4 {
		t.Errorf("expected 4 failures under the unknown label, got %v", got)
	}
	if got := counter("Bogus1"); got != 0 {
		t.Errorf("caller-supplied name used as a label: %v", got)
	}
}

func TestApplyOperationsLengthMismatch(t *testing.T) {
	sv := zeroState[complex128](t, 2)
	err := sv.ApplyOperations(
		[]string{"PauliX", "PauliX"},
		[][]int{{0}},
		[]bool{false, false},
		nil,
	)
	if !errors.Is(err, validation.ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if sv.Data()[0] != 1 {
		t.Error("no operation may run on a length mismatch")
	}

	err = sv.ApplyOperations([]string{"RX"}, [][]int{{0}}, []bool{false}, [][]float64{{0.1}, {0.2}})
	if !errors.Is(err, validation.ErrLengthMismatch) {
		t.Errorf("params length: expected ErrLengthMismatch, got %v", err)
	}
}

func TestApplyOperationsPartialFailure(t *testing.T) {
	sv := zeroState[complex128](t, 2)
	err := sv.ApplyOperations(
		[]string{"PauliX", "Bogus", "PauliX"},
		[][]int{{1}, {0}, {0}},
		[]bool{false, false, false},
		nil,
	)
	if !errors.Is(err, validation.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "operation 1:") {
		t.Errorf("error should name the failing index, got %q", err)
	}
	if sv.Data()[1] != 1 {
		t.Errorf("operations before the failure stay applied, got %v", sv.Data())
	}
}

func TestApplyOperationsContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sv := zeroState[complex128](t, 1)
	err := sv.ApplyOperationsContext(ctx, []string{"PauliX"}, [][]int{{0}}, []bool{false}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if sv.Data()[0] != 1 {
		t.Error("cancelled batch must not apply operations")
	}
}

func TestApplyGenerator(t *testing.T) {
	tests := []struct {
		name  string
		wires []int
		scale float64
	}{
		{"RX", []int{0}, -0.5},
		{"GeneratorRY", []int{1}, -0.5},
		{"PhaseShift", []int{0}, 1},
		{"ControlledPhaseShift", []int{0, 1}, 1},
		{"IsingZZ", []int{1, 0}, -0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sv := plusState[complex128](t, 2)
			scale, err := sv.ApplyGenerator(tt.name, tt.wires, false)
			if err != nil {
				t.Fatal(err)
			}
			if scale != tt.scale {
				t.Errorf("scale = %v, want %v", scale, tt.scale)
			}
		})
	}

	sv := zeroState[complex128](t, 1)
	if _, err := sv.ApplyGenerator("Hadamard", []int{0}, false); !errors.Is(err, validation.ErrUnknownOperation) {
		t.Errorf("expected ErrUnknownOperation for a gate without generator, got %v", err)
	}
}

func TestGeneratorPauliX(t *testing.T) {
	// RX generator is X: |0> maps to |1>.
	sv := zeroState[complex128](t, 1)
	if _, err := sv.ApplyGenerator("RX", []int{0}, false); err != nil {
		t.Fatal(err)
	}
	if sv.Data()[0] != 0 || sv.Data()[1] != 1 {
		t.Errorf("expected |1>, got %v", sv.Data())
	}
}

func TestSinglePrecision(t *testing.T) {
	sv := zeroState[complex64](t, 2)
	err := sv.ApplyOperations(
		[]string{"Hadamard", "CNOT"},
		[][]int{{0}, {0, 1}},
		[]bool{false, false},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	amp := float32(1 / math.Sqrt2)
	want := []complex64{complex(amp, 0), 0, 0, complex(amp, 0)}
	for i, v := range sv.Data() {
		if d := v - want[i]; real(d)*real(d)+imag(d)*imag(d) > 1e-12 {
			t.Errorf("amplitude %d = %v, want %v", i, v, want[i])
		}
	}
	if !strings.Contains(sv.String(), "num_qubits=2") {
		t.Errorf("unexpected String(): %q", sv.String())
	}
}

func TestInnerProductAndNormalize(t *testing.T) {
	a := productState[complex128](t, "+0")
	b := productState[complex128](t, "-0")
	if ip := InnerProduct(a, b); math.Abs(real(ip)) > 1e-12 || math.Abs(imag(ip)) > 1e-12 {
		t.Errorf("<+|-> = %v, want 0", ip)
	}
	if ip := InnerProduct(a, a); math.Abs(real(ip)-1) > 1e-12 {
		t.Errorf("<+|+> = %v, want 1", ip)
	}

	sv, err := NewFromData([]complex128{3, 4i})
	if err != nil {
		t.Fatal(err)
	}
	sv.Normalize()
	if math.Abs(sv.SquaredNorm()-1) > 1e-12 {
		t.Errorf("normalized norm = %v", sv.SquaredNorm())
	}
	zero, _ := NewFromData([]complex128{0, 0})
	zero.Normalize()
	if zero.Data()[0] != 0 {
		t.Error("zero vector must stay zero")
	}
}
