package statevector

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/2lambda123/pennylane-lightning/internal/gates"
)

func zeroState[C gates.Complex](t *testing.T, n int) *StateVector[C] {
	t.Helper()
	sv, err := New[C](n)
	if err != nil {
		t.Fatalf("New(%d): %v", n, err)
	}
	return sv
}

func plusState[C gates.Complex](t *testing.T, n int) *StateVector[C] {
	t.Helper()
	amp := C(complex(1/math.Sqrt(float64(int(1)<<n)), 0))
	data := make([]C, 1<<n)
	for i := range data {
		data[i] = amp
	}
	sv, err := NewFromData(data)
	if err != nil {
		t.Fatalf("NewFromData: %v", err)
	}
	return sv
}

func randomState[C gates.Complex](t *testing.T, n int, seed int64) *StateVector[C] {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	data := make([]C, 1<<n)
	for i := range data {
		data[i] = C(complex(r.Float64()-0.5, r.Float64()-0.5))
	}
	sv, err := NewFromData(data)
	if err != nil {
		t.Fatalf("NewFromData: %v", err)
	}
	sv.Normalize()
	return sv
}

// productState builds a product state from a string over {0, 1, +, -}.
func productState[C gates.Complex](t *testing.T, pattern string) *StateVector[C] {
	t.Helper()
	out := []complex128{1}
	for _, ch := range pattern {
		var q [2]complex128
		switch ch {
		case '0':
			q = [2]complex128{1, 0}
		case '1':
			q = [2]complex128{0, 1}
		case '+':
			q = [2]complex128{1 / math.Sqrt2, 1 / math.Sqrt2}
		case '-':
			q = [2]complex128{1 / math.Sqrt2, -1 / math.Sqrt2}
		default:
			t.Fatalf("invalid product state character %q", ch)
		}
		next := make([]complex128, 0, 2*len(out))
		for _, a := range out {
			next = append(next, a*q[0], a*q[1])
		}
		out = next
	}
	data := make([]C, len(out))
	for i, v := range out {
		data[i] = C(v)
	}
	sv, err := NewFromData(data)
	if err != nil {
		t.Fatalf("NewFromData: %v", err)
	}
	return sv
}

func testParams(op gates.GateOperation) []float64 {
	switch op.NumParams() {
	case 1:
		return []float64{0.312}
	case 3:
		return []float64{0.128, -0.563, 1.414}
	}
	return nil
}

func testWires(op gates.GateOperation) []int {
	switch op.NumWires() {
	case 1:
		return []int{1}
	case 2:
		return []int{2, 0}
	case 3:
		return []int{0, 2, 1}
	}
	return []int{0, 1, 2}
}

func approxEqual[C gates.Complex](t *testing.T, got, want *StateVector[C], tol float64) {
	t.Helper()
	if got.NumQubits() != want.NumQubits() {
		t.Fatalf("qubit count %d, want %d", got.NumQubits(), want.NumQubits())
	}
	for i, v := range got.Data() {
		w := want.Data()[i]
		if cmplx.Abs(complex128(v)-complex128(w)) > tol {
			t.Fatalf("amplitude %d: got %v, want %v", i, v, w)
		}
	}
}
