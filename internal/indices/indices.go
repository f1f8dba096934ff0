// Package indices computes the buffer offsets a gate touches on a dense
// state vector. Wire w of an n-qubit register owns bit (n-1-w) of an index.
package indices

// Internal returns the 2^k offsets, relative to a block origin, that a gate on
// wires touches. Entry i corresponds to row i of the gate matrix, with the
// first listed wire as the most significant bit of i.
func Internal(wires []int, numQubits int) []int {
	out := make([]int, 1, 1<<len(wires))
	for i := len(wires) - 1; i >= 0; i-- {
		weight := 1 << (numQubits - 1 - wires[i])
		size := len(out)
		for j := 0; j < size; j++ {
			out = append(out, out[j]+weight)
		}
	}
	return out
}

// Complement returns, in ascending order, the wires of an n-qubit register
// that are not listed in wires.
func Complement(wires []int, numQubits int) []int {
	used := make([]bool, numQubits)
	for _, w := range wires {
		used[w] = true
	}
	out := make([]int, 0, numQubits-len(wires))
	for w := 0; w < numQubits; w++ {
		if !used[w] {
			out = append(out, w)
		}
	}
	return out
}

// External returns the 2^(n-k) block origins at which the block addressed by
// Internal(wires) recurs across the remaining wires.
func External(wires []int, numQubits int) []int {
	return Internal(Complement(wires, numQubits), numQubits)
}

// Pair returns both index sets for wires.
func Pair(wires []int, numQubits int) (internal, external []int) {
	return Internal(wires, numQubits), External(wires, numQubits)
}

// Mask returns a bit mask with the bits of every listed wire set.
func Mask(wires []int, numQubits int) int {
	m := 0
	for _, w := range wires {
		m |= 1 << (numQubits - 1 - w)
	}
	return m
}
