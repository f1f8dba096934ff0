package gates

import (
	"math"
	"math/bits"
	"math/cmplx"

	"github.com/2lambda123/pennylane-lightning/internal/validation"
)

// Matrix returns the dense row-major matrix of op. numWires is only read for
// gates with a variable wire count; inverse yields the conjugate transpose.
func Matrix[C Complex](op GateOperation, numWires int, params []float64, inverse bool) ([]C, error) {
	if !op.Valid() {
		return nil, validation.New(op.String(), validation.ErrUnknownOperation, "gate %d not in catalog", int(op))
	}
	if err := validation.CheckParams(op.String(), params, op.NumParams()); err != nil {
		return nil, err
	}
	if op.NumWires() != 0 {
		numWires = op.NumWires()
	} else if numWires < 1 {
		return nil, validation.New(op.String(), validation.ErrInvalidArgument, "number of wires must be larger than 0")
	}

	m := matrix128(op, numWires, params)
	dim := 1 << numWires
	if inverse {
		m = ConjugateTranspose(m, dim)
	}
	out := make([]C, len(m))
	for i, v := range m {
		out[i] = C(v)
	}
	return out, nil
}

func matrix128(op GateOperation, numWires int, params []float64) []complex128 {
	const invSqrt2 = 1 / math.Sqrt2
	switch op {
	case Identity:
		return []complex128{1, 0, 0, 1}
	case PauliX:
		return []complex128{0, 1, 1, 0}
	case PauliY:
		return []complex128{0, -1i, 1i, 0}
	case PauliZ:
		return []complex128{1, 0, 0, -1}
	case Hadamard:
		return []complex128{invSqrt2, invSqrt2, invSqrt2, -invSqrt2}
	case S:
		return []complex128{1, 0, 0, 1i}
	case T:
		return []complex128{1, 0, 0, cmplx.Exp(1i * math.Pi / 4)}
	case PhaseShift, RX, RY, RZ, Rot:
		return rotation(op, params)
	case CNOT:
		return controlled([]complex128{0, 1, 1, 0})
	case CY:
		return controlled([]complex128{0, -1i, 1i, 0})
	case CZ:
		return controlled([]complex128{1, 0, 0, -1})
	case ControlledPhaseShift:
		return controlled(rotation(PhaseShift, params))
	case CRX:
		return controlled(rotation(RX, params))
	case CRY:
		return controlled(rotation(RY, params))
	case CRZ:
		return controlled(rotation(RZ, params))
	case CRot:
		return controlled(rotation(Rot, params))
	case SWAP:
		return permutation(4, 1, 2)
	case Toffoli:
		return permutation(8, 6, 7)
	case CSWAP:
		return permutation(8, 5, 6)
	case IsingXX, IsingYY:
		c, s := math.Cos(params[0]/2), math.Sin(params[0]/2)
		js := complex(0, -s)
		// XX and YY differ only in the sign of the |00>,|11> coupling.
		corner := js
		if op == IsingYY {
			corner = -js
		}
		return []complex128{
			complex(c, 0), 0, 0, corner,
			0, complex(c, 0), js, 0,
			0, js, complex(c, 0), 0,
			corner, 0, 0, complex(c, 0),
		}
	case IsingZZ:
		return multiRZ(2, params[0])
	case MultiRZ:
		return multiRZ(numWires, params[0])
	}
	return nil
}

func rotation(op GateOperation, params []float64) []complex128 {
	switch op {
	case PhaseShift:
		return []complex128{1, 0, 0, cmplx.Exp(complex(0, params[0]))}
	case RX:
		c, s := math.Cos(params[0]/2), math.Sin(params[0]/2)
		return []complex128{complex(c, 0), complex(0, -s), complex(0, -s), complex(c, 0)}
	case RY:
		c, s := math.Cos(params[0]/2), math.Sin(params[0]/2)
		return []complex128{complex(c, 0), complex(-s, 0), complex(s, 0), complex(c, 0)}
	case RZ:
		return []complex128{cmplx.Exp(complex(0, -params[0]/2)), 0, 0, cmplx.Exp(complex(0, params[0]/2))}
	case Rot:
		return RotEntries(params[0], params[1], params[2])
	}
	return nil
}

// RotEntries returns the 2x2 matrix of Rot(phi, theta, omega) = RZ(omega)RY(theta)RZ(phi).
func RotEntries(phi, theta, omega float64) []complex128 {
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return []complex128{
		complex(c, 0) * cmplx.Exp(complex(0, -(phi+omega)/2)),
		complex(-s, 0) * cmplx.Exp(complex(0, (phi-omega)/2)),
		complex(s, 0) * cmplx.Exp(complex(0, -(phi-omega)/2)),
		complex(c, 0) * cmplx.Exp(complex(0, (phi+omega)/2)),
	}
}

func controlled(u []complex128) []complex128 {
	m := make([]complex128, 16)
	m[0], m[5] = 1, 1
	m[10], m[11] = u[0], u[1]
	m[14], m[15] = u[2], u[3]
	return m
}

// permutation returns the dim x dim identity with rows a and b exchanged.
func permutation(dim, a, b int) []complex128 {
	m := make([]complex128, dim*dim)
	for i := 0; i < dim; i++ {
		j := i
		switch i {
		case a:
			j = b
		case b:
			j = a
		}
		m[i*dim+j] = 1
	}
	return m
}

func multiRZ(numWires int, theta float64) []complex128 {
	dim := 1 << numWires
	m := make([]complex128, dim*dim)
	even := cmplx.Exp(complex(0, -theta/2))
	odd := cmplx.Exp(complex(0, theta/2))
	for i := 0; i < dim; i++ {
		if bits.OnesCount(uint(i))%2 == 0 {
			m[i*dim+i] = even
		} else {
			m[i*dim+i] = odd
		}
	}
	return m
}

// ConjugateTranspose returns the adjoint of a dim x dim row-major matrix.
func ConjugateTranspose[C Complex](m []C, dim int) []C {
	out := make([]C, len(m))
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			out[j*dim+i] = C(cmplx.Conj(complex128(m[i*dim+j])))
		}
	}
	return out
}
