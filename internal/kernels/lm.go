package kernels

import (
	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/indices"
)

// insertZero returns k with a zero bit inserted at position pos.
func insertZero(k, pos int) int {
	low := k & (1<<pos - 1)
	return (k>>pos)<<(pos+1) | low
}

func lmPair[C gates.Complex](arr []C, numQubits int, wires []int, rule pairRule[C]) {
	rev := numQubits - 1 - wires[0]
	bit := 1 << rev
	parallelFor(len(arr)/2, func(start, end int) {
		for k := start; k < end; k++ {
			i0 := insertZero(k, rev)
			rule(arr, i0, i0|bit)
		}
	})
}

func lmQuad[C gates.Complex](arr []C, numQubits int, wires []int, rule quadRule[C]) {
	rev0 := numQubits - 1 - wires[0]
	rev1 := numQubits - 1 - wires[1]
	bit0, bit1 := 1<<rev0, 1<<rev1
	lo, hi := min(rev0, rev1), max(rev0, rev1)
	parallelFor(len(arr)/4, func(start, end int) {
		for k := start; k < end; k++ {
			i00 := insertZero(insertZero(k, lo), hi)
			rule(arr, i00, i00|bit1, i00|bit0, i00|bit0|bit1)
		}
	})
}

// lmDiagonal scales every amplitude by even or odd according to the parity
// of its bits on wires.
func lmDiagonal[C gates.Complex](arr []C, numQubits int, wires []int, even, odd C) {
	mask := indices.Mask(wires, numQubits)
	parallelFor(len(arr), func(start, end int) {
		for k := start; k < end; k++ {
			if oddParity(k & mask) {
				arr[k] *= odd
			} else {
				arr[k] *= even
			}
		}
	})
}

func lmGate[C gates.Complex](op gates.GateOperation) GateFunc[C] {
	if op == gates.MultiRZ {
		return func(arr []C, numQubits int, wires []int, inverse bool, params []float64) {
			theta := angle(params, inverse)
			lmDiagonal(arr, numQubits, wires, phase[C](-theta/2), phase[C](theta/2))
		}
	}
	switch op.NumWires() {
	case 1:
		return func(arr []C, numQubits int, wires []int, inverse bool, params []float64) {
			lmPair(arr, numQubits, wires, singleQubitRule[C](op, inverse, params))
		}
	case 2:
		return func(arr []C, numQubits int, wires []int, inverse bool, params []float64) {
			lmQuad(arr, numQubits, wires, twoQubitRule[C](op, inverse, params))
		}
	}
	// Three-qubit gates are left to PI.
	return nil
}

func lmGenerator[C gates.Complex](g gates.GeneratorOperation) GeneratorFunc[C] {
	scale := g.ScalingFactor()
	if g == gates.GeneratorMultiRZ {
		return func(arr []C, numQubits int, wires []int, _ bool) float64 {
			lmDiagonal(arr, numQubits, wires, C(1), C(-1))
			return scale
		}
	}
	switch g.NumWires() {
	case 1:
		rule := singleGeneratorRule[C](g)
		return func(arr []C, numQubits int, wires []int, _ bool) float64 {
			lmPair(arr, numQubits, wires, rule)
			return scale
		}
	case 2:
		rule := twoGeneratorRule[C](g)
		return func(arr []C, numQubits int, wires []int, _ bool) float64 {
			lmQuad(arr, numQubits, wires, rule)
			return scale
		}
	}
	return nil
}

func lmSingleQubitMatrix[C gates.Complex](arr []C, numQubits int, matrix []C, wires []int, inverse bool) {
	m := matrix
	if inverse {
		m = gates.ConjugateTranspose(matrix, 2)
	}
	lmPair(arr, numQubits, wires, matrix2Rule(m))
}

func lmTwoQubitMatrix[C gates.Complex](arr []C, numQubits int, matrix []C, wires []int, inverse bool) {
	m := matrix
	if inverse {
		m = gates.ConjugateTranspose(matrix, 4)
	}
	lmQuad(arr, numQubits, wires, matrix4Rule(m))
}

// LM returns the bit-manipulation kernel. It covers every one- and two-qubit
// gate, MultiRZ, all generators and one- and two-qubit matrices.
func LM[C gates.Complex]() Kernel[C] {
	k := Kernel[C]{
		ID:         KernelLM,
		Gates:      make(map[gates.GateOperation]GateFunc[C]),
		Generators: make(map[gates.GeneratorOperation]GeneratorFunc[C]),
		Matrices: map[gates.MatrixOperation]MatrixFunc[C]{
			gates.SingleQubitOp: lmSingleQubitMatrix[C],
			gates.TwoQubitOp:    lmTwoQubitMatrix[C],
		},
	}
	for _, op := range gates.AllGates() {
		if fn := lmGate[C](op); fn != nil {
			k.Gates[op] = fn
		}
	}
	for _, g := range gates.AllGenerators() {
		if fn := lmGenerator[C](g); fn != nil {
			k.Generators[g] = fn
		}
	}
	return k
}
