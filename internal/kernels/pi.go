package kernels

import (
	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/indices"
)

// forEachBlock precomputes the index sets of wires and hands disjoint chunks
// of block origins to body, possibly from several goroutines.
func forEachBlock(numQubits int, wires []int, body func(internal, external []int)) {
	internal, external := indices.Pair(wires, numQubits)
	parallelFor(len(external), func(start, end int) {
		body(internal, external[start:end])
	})
}

func piPair[C gates.Complex](arr []C, numQubits int, wires []int, rule pairRule[C]) {
	forEachBlock(numQubits, wires, func(internal, external []int) {
		i0, i1 := internal[0], internal[1]
		for _, e := range external {
			rule(arr, e+i0, e+i1)
		}
	})
}

func piQuad[C gates.Complex](arr []C, numQubits int, wires []int, rule quadRule[C]) {
	forEachBlock(numQubits, wires, func(internal, external []int) {
		i00, i01, i10, i11 := internal[0], internal[1], internal[2], internal[3]
		for _, e := range external {
			rule(arr, e+i00, e+i01, e+i10, e+i11)
		}
	})
}

// piSwap exchanges the amplitudes at internal positions a and b of every block.
func piSwap[C gates.Complex](arr []C, numQubits int, wires []int, a, b int) {
	forEachBlock(numQubits, wires, func(internal, external []int) {
		ia, ib := internal[a], internal[b]
		for _, e := range external {
			arr[e+ia], arr[e+ib] = arr[e+ib], arr[e+ia]
		}
	})
}

// piDiagonal multiplies internal position i of every block by even or odd
// according to the parity of i.
func piDiagonal[C gates.Complex](arr []C, numQubits int, wires []int, even, odd C) {
	forEachBlock(numQubits, wires, func(internal, external []int) {
		factors := make([]C, len(internal))
		for i := range internal {
			if oddParity(i) {
				factors[i] = odd
			} else {
				factors[i] = even
			}
		}
		for _, e := range external {
			for i, off := range internal {
				arr[e+off] *= factors[i]
			}
		}
	})
}

// piMatrix is the general gather, multiply, scatter rule.
func piMatrix[C gates.Complex](arr []C, numQubits int, matrix []C, wires []int, inverse bool) {
	dim := 1 << len(wires)
	m := matrix
	if inverse {
		m = gates.ConjugateTranspose(matrix, dim)
	}
	forEachBlock(numQubits, wires, func(internal, external []int) {
		v := make([]C, dim)
		for _, e := range external {
			for i, off := range internal {
				v[i] = arr[e+off]
			}
			for r := 0; r < dim; r++ {
				row := m[r*dim : (r+1)*dim]
				var sum C
				for c, x := range v {
					sum += row[c] * x
				}
				arr[e+internal[r]] = sum
			}
		}
	})
}

func piGate[C gates.Complex](op gates.GateOperation) GateFunc[C] {
	switch op {
	case gates.Toffoli:
		return func(arr []C, numQubits int, wires []int, _ bool, _ []float64) {
			piSwap(arr, numQubits, wires, 6, 7)
		}
	case gates.CSWAP:
		return func(arr []C, numQubits int, wires []int, _ bool, _ []float64) {
			piSwap(arr, numQubits, wires, 5, 6)
		}
	case gates.MultiRZ:
		return func(arr []C, numQubits int, wires []int, inverse bool, params []float64) {
			theta := angle(params, inverse)
			piDiagonal(arr, numQubits, wires, phase[C](-theta/2), phase[C](theta/2))
		}
	}
	switch op.NumWires() {
	case 1:
		return func(arr []C, numQubits int, wires []int, inverse bool, params []float64) {
			piPair(arr, numQubits, wires, singleQubitRule[C](op, inverse, params))
		}
	case 2:
		return func(arr []C, numQubits int, wires []int, inverse bool, params []float64) {
			piQuad(arr, numQubits, wires, twoQubitRule[C](op, inverse, params))
		}
	}
	return nil
}

func piGenerator[C gates.Complex](g gates.GeneratorOperation) GeneratorFunc[C] {
	scale := g.ScalingFactor()
	if g == gates.GeneratorMultiRZ {
		return func(arr []C, numQubits int, wires []int, _ bool) float64 {
			piDiagonal(arr, numQubits, wires, C(1), C(-1))
			return scale
		}
	}
	switch g.NumWires() {
	case 1:
		rule := singleGeneratorRule[C](g)
		return func(arr []C, numQubits int, wires []int, _ bool) float64 {
			piPair(arr, numQubits, wires, rule)
			return scale
		}
	case 2:
		rule := twoGeneratorRule[C](g)
		return func(arr []C, numQubits int, wires []int, _ bool) float64 {
			piQuad(arr, numQubits, wires, rule)
			return scale
		}
	}
	return nil
}

// PI returns the precomputed-index kernel. It implements every catalog
// operation and every matrix routine.
func PI[C gates.Complex]() Kernel[C] {
	k := Kernel[C]{
		ID:         KernelPI,
		Gates:      make(map[gates.GateOperation]GateFunc[C]),
		Generators: make(map[gates.GeneratorOperation]GeneratorFunc[C]),
		Matrices:   make(map[gates.MatrixOperation]MatrixFunc[C]),
	}
	for _, op := range gates.AllGates() {
		if fn := piGate[C](op); fn != nil {
			k.Gates[op] = fn
		}
	}
	for _, g := range gates.AllGenerators() {
		if fn := piGenerator[C](g); fn != nil {
			k.Generators[g] = fn
		}
	}
	for _, m := range gates.AllMatrixOps() {
		k.Matrices[m] = piMatrix[C]
	}
	return k
}
