package gates

import (
	"math/bits"
	"strings"

	"github.com/2lambda123/pennylane-lightning/internal/validation"
)

// GeneratorOperation identifies the generator of a single-parameter gate.
type GeneratorOperation int

const (
	GeneratorRX GeneratorOperation = iota
	GeneratorRY
	GeneratorRZ
	GeneratorPhaseShift
	GeneratorIsingXX
	GeneratorIsingYY
	GeneratorIsingZZ
	GeneratorCRX
	GeneratorCRY
	GeneratorCRZ
	GeneratorControlledPhaseShift
	GeneratorMultiRZ

	numGenerators
)

type generatorInfo struct {
	gate  GateOperation
	scale float64
}

// dU/dθ = i·scale·G·U(θ)
var generatorTable = [numGenerators]generatorInfo{
	GeneratorRX:                   {RX, -0.5},
	GeneratorRY:                   {RY, -0.5},
	GeneratorRZ:                   {RZ, -0.5},
	GeneratorPhaseShift:           {PhaseShift, 1},
	GeneratorIsingXX:              {IsingXX, -0.5},
	GeneratorIsingYY:              {IsingYY, -0.5},
	GeneratorIsingZZ:              {IsingZZ, -0.5},
	GeneratorCRX:                  {CRX, -0.5},
	GeneratorCRY:                  {CRY, -0.5},
	GeneratorCRZ:                  {CRZ, -0.5},
	GeneratorControlledPhaseShift: {ControlledPhaseShift, 1},
	GeneratorMultiRZ:              {MultiRZ, -0.5},
}

var generatorsByGate = func() map[GateOperation]GeneratorOperation {
	m := make(map[GateOperation]GeneratorOperation, numGenerators)
	for g, info := range generatorTable {
		m[info.gate] = GeneratorOperation(g)
	}
	return m
}()

func (g GeneratorOperation) String() string {
	if g < 0 || g >= numGenerators {
		return "GeneratorOperation(?)"
	}
	return "Generator" + generatorTable[g].gate.String()
}

// Gate returns the gate g differentiates.
func (g GeneratorOperation) Gate() GateOperation {
	return generatorTable[g].gate
}

// ScalingFactor returns s such that dU/dθ = i·s·G·U(θ).
func (g GeneratorOperation) ScalingFactor() float64 {
	return generatorTable[g].scale
}

// NumWires mirrors the wire count of the underlying gate.
func (g GeneratorOperation) NumWires() int {
	return generatorTable[g].gate.NumWires()
}

// GeneratorOf returns the generator of op if it has one.
func GeneratorOf(op GateOperation) (GeneratorOperation, bool) {
	g, ok := generatorsByGate[op]
	return g, ok
}

// GeneratorFromName resolves a generator by the name of its gate, e.g. "RX".
// The "Generator" prefix is accepted as well.
func GeneratorFromName(name string) (GeneratorOperation, error) {
	gateName, _ := strings.CutPrefix(name, "Generator")
	op, ok := gatesByName[gateName]
	if !ok {
		return 0, validation.New(name, validation.ErrUnknownOperation, "no generator named %q", name)
	}
	g, ok := generatorsByGate[op]
	if !ok {
		return 0, validation.New(name, validation.ErrUnknownOperation, "gate %s has no generator", op)
	}
	return g, nil
}

// AllGenerators lists every generator in catalog order.
func AllGenerators() []GeneratorOperation {
	out := make([]GeneratorOperation, numGenerators)
	for i := range out {
		out[i] = GeneratorOperation(i)
	}
	return out
}

// MatrixOperation identifies the arbitrary-matrix application routines.
type MatrixOperation int

const (
	SingleQubitOp MatrixOperation = iota
	TwoQubitOp
	MultiQubitOp
)

func (m MatrixOperation) String() string {
	switch m {
	case SingleQubitOp:
		return "SingleQubitOp"
	case TwoQubitOp:
		return "TwoQubitOp"
	case MultiQubitOp:
		return "MultiQubitOp"
	}
	return "MatrixOperation(?)"
}

// MatrixOpForWires picks the matrix routine for a k-wire matrix.
func MatrixOpForWires(k int) MatrixOperation {
	switch k {
	case 1:
		return SingleQubitOp
	case 2:
		return TwoQubitOp
	default:
		return MultiQubitOp
	}
}

// AllMatrixOps lists every matrix routine.
func AllMatrixOps() []MatrixOperation {
	return []MatrixOperation{SingleQubitOp, TwoQubitOp, MultiQubitOp}
}

// GeneratorMatrix returns the dense row-major matrix of the generator g.
// numWires is only read for MultiRZ.
func GeneratorMatrix[C Complex](g GeneratorOperation, numWires int) []C {
	var m []complex128
	switch g {
	case GeneratorRX:
		m = []complex128{0, 1, 1, 0}
	case GeneratorRY:
		m = []complex128{0, -1i, 1i, 0}
	case GeneratorRZ:
		m = []complex128{1, 0, 0, -1}
	case GeneratorPhaseShift:
		m = []complex128{0, 0, 0, 1}
	case GeneratorIsingXX:
		m = make([]complex128, 16)
		m[3], m[6], m[9], m[12] = 1, 1, 1, 1
	case GeneratorIsingYY:
		m = make([]complex128, 16)
		m[3], m[6], m[9], m[12] = -1, 1, 1, -1
	case GeneratorIsingZZ:
		m = parityDiagonal(2)
	case GeneratorCRX:
		m = projected([]complex128{0, 1, 1, 0})
	case GeneratorCRY:
		m = projected([]complex128{0, -1i, 1i, 0})
	case GeneratorCRZ:
		m = projected([]complex128{1, 0, 0, -1})
	case GeneratorControlledPhaseShift:
		m = make([]complex128, 16)
		m[15] = 1
	case GeneratorMultiRZ:
		m = parityDiagonal(numWires)
	}
	out := make([]C, len(m))
	for i, v := range m {
		out[i] = C(v)
	}
	return out
}

// projected returns |1><1| ⊗ u.
func projected(u []complex128) []complex128 {
	m := make([]complex128, 16)
	m[10], m[11] = u[0], u[1]
	m[14], m[15] = u[2], u[3]
	return m
}

// parityDiagonal returns Z⊗...⊗Z on numWires wires.
func parityDiagonal(numWires int) []complex128 {
	dim := 1 << numWires
	m := make([]complex128, dim*dim)
	for i := 0; i < dim; i++ {
		if bits.OnesCount(uint(i))%2 == 0 {
			m[i*dim+i] = 1
		} else {
			m[i*dim+i] = -1
		}
	}
	return m
}
