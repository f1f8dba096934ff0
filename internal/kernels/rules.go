package kernels

import (
	"math"
	"math/bits"
	"math/cmplx"

	"github.com/2lambda123/pennylane-lightning/internal/gates"
)

// pairRule updates the amplitudes at one pair of offsets; i1 has the target bit set.
type pairRule[C gates.Complex] func(arr []C, i0, i1 int)

// quadRule updates four offsets. The first wire is the high bit, so i10 and
// i11 are the control-set amplitudes of a controlled gate.
type quadRule[C gates.Complex] func(arr []C, i00, i01, i10, i11 int)

func angle(params []float64, inverse bool) float64 {
	if inverse {
		return -params[0]
	}
	return params[0]
}

func phase[C gates.Complex](theta float64) C {
	return C(cmplx.Exp(complex(0, theta)))
}

func real2c[C gates.Complex](x float64) C {
	return C(complex(x, 0))
}

func swapRule[C gates.Complex](arr []C, i0, i1 int) {
	arr[i0], arr[i1] = arr[i1], arr[i0]
}

func pauliYRule[C gates.Complex](arr []C, i0, i1 int) {
	minusI, plusI := C(-1i), C(1i)
	v0, v1 := arr[i0], arr[i1]
	arr[i0] = minusI * v1
	arr[i1] = plusI * v0
}

func pauliZRule[C gates.Complex](arr []C, _, i1 int) {
	arr[i1] = -arr[i1]
}

func matrix2Rule[C gates.Complex](m []C) pairRule[C] {
	m00, m01, m10, m11 := m[0], m[1], m[2], m[3]
	return func(arr []C, i0, i1 int) {
		v0, v1 := arr[i0], arr[i1]
		arr[i0] = m00*v0 + m01*v1
		arr[i1] = m10*v0 + m11*v1
	}
}

func matrix4Rule[C gates.Complex](m []C) quadRule[C] {
	var mm [16]C
	copy(mm[:], m)
	return func(arr []C, i00, i01, i10, i11 int) {
		v0, v1, v2, v3 := arr[i00], arr[i01], arr[i10], arr[i11]
		arr[i00] = mm[0]*v0 + mm[1]*v1 + mm[2]*v2 + mm[3]*v3
		arr[i01] = mm[4]*v0 + mm[5]*v1 + mm[6]*v2 + mm[7]*v3
		arr[i10] = mm[8]*v0 + mm[9]*v1 + mm[10]*v2 + mm[11]*v3
		arr[i11] = mm[12]*v0 + mm[13]*v1 + mm[14]*v2 + mm[15]*v3
	}
}

func singleQubitRule[C gates.Complex](op gates.GateOperation, inverse bool, params []float64) pairRule[C] {
	switch op {
	case gates.Identity:
		return func([]C, int, int) {}
	case gates.PauliX:
		return swapRule[C]
	case gates.PauliY:
		return pauliYRule[C]
	case gates.PauliZ:
		return pauliZRule[C]
	case gates.Hadamard:
		h := real2c[C](1 / math.Sqrt2)
		return func(arr []C, i0, i1 int) {
			v0, v1 := arr[i0], arr[i1]
			arr[i0] = h * (v0 + v1)
			arr[i1] = h * (v0 - v1)
		}
	case gates.S, gates.T, gates.PhaseShift:
		var theta float64
		switch op {
		case gates.S:
			theta = math.Pi / 2
		case gates.T:
			theta = math.Pi / 4
		default:
			theta = params[0]
		}
		if inverse {
			theta = -theta
		}
		p := phase[C](theta)
		return func(arr []C, _, i1 int) {
			arr[i1] *= p
		}
	case gates.RX:
		theta := angle(params, inverse)
		c := real2c[C](math.Cos(theta / 2))
		js := C(complex(0, -math.Sin(theta/2)))
		return func(arr []C, i0, i1 int) {
			v0, v1 := arr[i0], arr[i1]
			arr[i0] = c*v0 + js*v1
			arr[i1] = js*v0 + c*v1
		}
	case gates.RY:
		theta := angle(params, inverse)
		c := real2c[C](math.Cos(theta / 2))
		s := real2c[C](math.Sin(theta / 2))
		return func(arr []C, i0, i1 int) {
			v0, v1 := arr[i0], arr[i1]
			arr[i0] = c*v0 - s*v1
			arr[i1] = s*v0 + c*v1
		}
	case gates.RZ:
		theta := angle(params, inverse)
		p0, p1 := phase[C](-theta/2), phase[C](theta/2)
		return func(arr []C, i0, i1 int) {
			arr[i0] *= p0
			arr[i1] *= p1
		}
	case gates.Rot:
		m := fromComplex128[C](gates.RotEntries(params[0], params[1], params[2]))
		if inverse {
			m = gates.ConjugateTranspose(m, 2)
		}
		return matrix2Rule(m)
	}
	return nil
}

func twoQubitRule[C gates.Complex](op gates.GateOperation, inverse bool, params []float64) quadRule[C] {
	switch op {
	case gates.CNOT:
		return func(arr []C, _, _, i10, i11 int) {
			swapRule(arr, i10, i11)
		}
	case gates.CY:
		return func(arr []C, _, _, i10, i11 int) {
			pauliYRule(arr, i10, i11)
		}
	case gates.CZ:
		return func(arr []C, _, _, _, i11 int) {
			arr[i11] = -arr[i11]
		}
	case gates.SWAP:
		return func(arr []C, _, i01, i10, _ int) {
			swapRule(arr, i01, i10)
		}
	case gates.IsingXX, gates.IsingYY:
		theta := angle(params, inverse)
		c := real2c[C](math.Cos(theta / 2))
		js := C(complex(0, -math.Sin(theta/2)))
		corner := js
		if op == gates.IsingYY {
			corner = -js
		}
		return func(arr []C, i00, i01, i10, i11 int) {
			v00, v01, v10, v11 := arr[i00], arr[i01], arr[i10], arr[i11]
			arr[i00] = c*v00 + corner*v11
			arr[i01] = c*v01 + js*v10
			arr[i10] = js*v01 + c*v10
			arr[i11] = corner*v00 + c*v11
		}
	case gates.IsingZZ:
		theta := angle(params, inverse)
		even, odd := phase[C](-theta/2), phase[C](theta/2)
		return func(arr []C, i00, i01, i10, i11 int) {
			arr[i00] *= even
			arr[i01] *= odd
			arr[i10] *= odd
			arr[i11] *= even
		}
	case gates.ControlledPhaseShift:
		p := phase[C](angle(params, inverse))
		return func(arr []C, _, _, _, i11 int) {
			arr[i11] *= p
		}
	case gates.CRX, gates.CRY, gates.CRZ, gates.CRot:
		target := map[gates.GateOperation]gates.GateOperation{
			gates.CRX:  gates.RX,
			gates.CRY:  gates.RY,
			gates.CRZ:  gates.RZ,
			gates.CRot: gates.Rot,
		}[op]
		inner := singleQubitRule[C](target, inverse, params)
		return func(arr []C, _, _, i10, i11 int) {
			inner(arr, i10, i11)
		}
	}
	return nil
}

func singleGeneratorRule[C gates.Complex](g gates.GeneratorOperation) pairRule[C] {
	switch g {
	case gates.GeneratorRX:
		return swapRule[C]
	case gates.GeneratorRY:
		return pauliYRule[C]
	case gates.GeneratorRZ:
		return pauliZRule[C]
	case gates.GeneratorPhaseShift:
		return func(arr []C, i0, _ int) {
			arr[i0] = 0
		}
	}
	return nil
}

func twoGeneratorRule[C gates.Complex](g gates.GeneratorOperation) quadRule[C] {
	switch g {
	case gates.GeneratorIsingXX:
		return func(arr []C, i00, i01, i10, i11 int) {
			swapRule(arr, i00, i11)
			swapRule(arr, i01, i10)
		}
	case gates.GeneratorIsingYY:
		return func(arr []C, i00, i01, i10, i11 int) {
			v00, v11 := arr[i00], arr[i11]
			arr[i00], arr[i11] = -v11, -v00
			swapRule(arr, i01, i10)
		}
	case gates.GeneratorIsingZZ:
		return func(arr []C, _, i01, i10, _ int) {
			arr[i01] = -arr[i01]
			arr[i10] = -arr[i10]
		}
	case gates.GeneratorCRX, gates.GeneratorCRY, gates.GeneratorCRZ:
		inner := map[gates.GeneratorOperation]pairRule[C]{
			gates.GeneratorCRX: swapRule[C],
			gates.GeneratorCRY: pauliYRule[C],
			gates.GeneratorCRZ: pauliZRule[C],
		}[g]
		return func(arr []C, i00, i01, i10, i11 int) {
			arr[i00] = 0
			arr[i01] = 0
			inner(arr, i10, i11)
		}
	case gates.GeneratorControlledPhaseShift:
		return func(arr []C, i00, i01, i10, _ int) {
			arr[i00] = 0
			arr[i01] = 0
			arr[i10] = 0
		}
	}
	return nil
}

// oddParity reports whether x has an odd number of set bits.
func oddParity(x int) bool {
	return bits.OnesCount(uint(x))&1 == 1
}

func fromComplex128[C gates.Complex](m []complex128) []C {
	out := make([]C, len(m))
	for i, v := range m {
		out[i] = C(v)
	}
	return out
}
