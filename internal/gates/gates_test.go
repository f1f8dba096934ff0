package gates

import (
	"errors"
	"math/cmplx"
	"testing"

	"github.com/2lambda123/pennylane-lightning/internal/validation"
)

func testParams(op GateOperation) []float64 {
	switch op.NumParams() {
	case 1:
		return []float64{0.312}
	case 3:
		return []float64{0.128, -0.563, 1.414}
	}
	return nil
}

func testWires(op GateOperation) int {
	if op.NumWires() == 0 {
		return 3
	}
	return op.NumWires()
}

func matmul(a, b []complex128, dim int) []complex128 {
	out := make([]complex128, dim*dim)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			var sum complex128
			for k := 0; k < dim; k++ {
				sum += a[i*dim+k] * b[k*dim+j]
			}
			out[i*dim+j] = sum
		}
	}
	return out
}

func TestGateFromName(t *testing.T) {
	for _, op := range AllGates() {
		got, err := GateFromName(op.String())
		if err != nil {
			t.Fatalf("GateFromName(%s): %v", op, err)
		}
		if got != op {
			t.Errorf("GateFromName(%s) = %v", op, got)
		}
	}

	_, err := GateFromName("NotAGate")
	if !errors.Is(err, validation.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
}

func TestCatalogArity(t *testing.T) {
	tests := []struct {
		op     GateOperation
		wires  int
		params int
	}{
		{PauliX, 1, 0},
		{Rot, 1, 3},
		{CNOT, 2, 0},
		{CRot, 2, 3},
		{IsingZZ, 2, 1},
		{Toffoli, 3, 0},
		{CSWAP, 3, 0},
		{MultiRZ, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			if got := tt.op.NumWires(); got != tt.wires {
				t.Errorf("NumWires = %d, want %d", got, tt.wires)
			}
			if got := tt.op.NumParams(); got != tt.params {
				t.Errorf("NumParams = %d, want %d", got, tt.params)
			}
		})
	}
}

func TestGenerators(t *testing.T) {
	for _, g := range AllGenerators() {
		op := g.Gate()
		if op.NumParams() != 1 {
			t.Errorf("%s differentiates %s which has %d parameters", g, op, op.NumParams())
		}
		back, ok := GeneratorOf(op)
		if !ok || back != g {
			t.Errorf("GeneratorOf(%s) = %v, %v", op, back, ok)
		}
		byName, err := GeneratorFromName(op.String())
		if err != nil || byName != g {
			t.Errorf("GeneratorFromName(%s) = %v, %v", op, byName, err)
		}
		prefixed, err := GeneratorFromName(g.String())
		if err != nil || prefixed != g {
			t.Errorf("GeneratorFromName(%s) = %v, %v", g, prefixed, err)
		}
	}

	if _, ok := GeneratorOf(Hadamard); ok {
		t.Error("Hadamard must not have a generator")
	}
	if _, err := GeneratorFromName("Rot"); !errors.Is(err, validation.ErrUnknownOperation) {
		t.Errorf("expected ErrUnknownOperation for Rot, got %v", err)
	}
	if _, err := GeneratorFromName("Bogus"); !errors.Is(err, validation.ErrUnknownOperation) {
		t.Errorf("expected ErrUnknownOperation for Bogus, got %v", err)
	}
}

func TestScalingFactors(t *testing.T) {
	want := map[GeneratorOperation]float64{
		GeneratorRX:                   -0.5,
		GeneratorRY:                   -0.5,
		GeneratorRZ:                   -0.5,
		GeneratorPhaseShift:           1,
		GeneratorIsingXX:              -0.5,
		GeneratorIsingYY:              -0.5,
		GeneratorIsingZZ:              -0.5,
		GeneratorCRX:                  -0.5,
		GeneratorCRY:                  -0.5,
		GeneratorCRZ:                  -0.5,
		GeneratorControlledPhaseShift: 1,
		GeneratorMultiRZ:              -0.5,
	}
	for g, s := range want {
		if got := g.ScalingFactor(); got != s {
			t.Errorf("%s: scaling factor %v, want %v", g, got, s)
		}
	}
}

func TestMatricesAreUnitary(t *testing.T) {
	for _, op := range AllGates() {
		t.Run(op.String(), func(t *testing.T) {
			k := testWires(op)
			dim := 1 << k
			u, err := Matrix[complex128](op, k, testParams(op), false)
			if err != nil {
				t.Fatalf("Matrix: %v", err)
			}
			if len(u) != dim*dim {
				t.Fatalf("expected %d entries, got %d", dim*dim, len(u))
			}
			udag, err := Matrix[complex128](op, k, testParams(op), true)
			if err != nil {
				t.Fatalf("Matrix inverse: %v", err)
			}
			prod := matmul(u, udag, dim)
			for i := 0; i < dim; i++ {
				for j := 0; j < dim; j++ {
					want := complex128(0)
					if i == j {
						want = 1
					}
					if cmplx.Abs(prod[i*dim+j]-want) > 1e-12 {
						t.Fatalf("U·U† [%d][%d] = %v, want %v", i, j, prod[i*dim+j], want)
					}
				}
			}
		})
	}
}

func TestMatrixErrors(t *testing.T) {
	if _, err := Matrix[complex128](RX, 1, nil, false); !errors.Is(err, validation.ErrArityMismatch) {
		t.Errorf("expected ErrArityMismatch, got %v", err)
	}
	if _, err := Matrix[complex64](MultiRZ, 0, []float64{0.1}, false); !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Matrix[complex128](GateOperation(999), 1, nil, false); !errors.Is(err, validation.ErrUnknownOperation) {
		t.Errorf("expected ErrUnknownOperation, got %v", err)
	}
}

// dU/dθ must equal i·s·G·U for every differentiable gate.
func TestGeneratorsMatchDerivative(t *testing.T) {
	const (
		theta = 0.7
		h     = 1e-6
	)
	for _, g := range AllGenerators() {
		t.Run(g.String(), func(t *testing.T) {
			op := g.Gate()
			k := testWires(op)
			dim := 1 << k
			plus, _ := Matrix[complex128](op, k, []float64{theta + h}, false)
			minus, _ := Matrix[complex128](op, k, []float64{theta - h}, false)
			u, _ := Matrix[complex128](op, k, []float64{theta}, false)
			gu := matmul(GeneratorMatrix[complex128](g, k), u, dim)
			scale := complex(0, g.ScalingFactor())
			for i := range u {
				numeric := (plus[i] - minus[i]) / complex(2*h, 0)
				analytic := scale * gu[i]
				if cmplx.Abs(numeric-analytic) > 1e-6 {
					t.Fatalf("entry %d: numeric %v, analytic %v", i, numeric, analytic)
				}
			}
		})
	}
}

func TestRotEntries(t *testing.T) {
	// Rot(phi, theta, omega) = RZ(omega) RY(theta) RZ(phi)
	phi, theta, omega := 0.128, -0.563, 1.414
	rz1, _ := Matrix[complex128](RZ, 1, []float64{phi}, false)
	ry, _ := Matrix[complex128](RY, 1, []float64{theta}, false)
	rz2, _ := Matrix[complex128](RZ, 1, []float64{omega}, false)
	want := matmul(rz2, matmul(ry, rz1, 2), 2)
	got := RotEntries(phi, theta, omega)
	for i := range want {
		if cmplx.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("entry %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStatePreparation(t *testing.T) {
	for _, name := range []string{"QubitStateVector", "BasisState", "StatePrep"} {
		if !IsStatePreparation(name) {
			t.Errorf("%s should be a state preparation", name)
		}
	}
	if IsStatePreparation("RX") {
		t.Error("RX is not a state preparation")
	}
}

func TestMatrixOpForWires(t *testing.T) {
	if MatrixOpForWires(1) != SingleQubitOp || MatrixOpForWires(2) != TwoQubitOp || MatrixOpForWires(5) != MultiQubitOp {
		t.Error("unexpected matrix op selection")
	}
	if len(AllMatrixOps()) != 3 {
		t.Error("expected three matrix ops")
	}
}
