package validation

// CheckWires verifies that wires holds distinct indices below numQubits.
// want is the expected wire count; want <= 0 accepts any non-empty list.
func CheckWires(op string, wires []int, numQubits, want int) error {
	if want > 0 && len(wires) != want {
		return New(op, ErrArityMismatch, "expected %d wires, got %d", want, len(wires))
	}
	if len(wires) == 0 {
		return New(op, ErrInvalidArgument, "number of wires must be larger than 0")
	}
	if len(wires) > numQubits {
		return New(op, ErrInvalidArgument, "%d wires on a %d-qubit register", len(wires), numQubits)
	}
	var seen uint64
	for _, w := range wires {
		if w < 0 || w >= numQubits {
			return New(op, ErrInvalidArgument, "wire %d out of range [0, %d)", w, numQubits)
		}
		bit := uint64(1) << uint(w)
		if seen&bit != 0 {
			return New(op, ErrInvalidArgument, "duplicate wire %d", w)
		}
		seen |= bit
	}
	return nil
}

// CheckParams verifies the parameter count of an operation.
func CheckParams(op string, params []float64, want int) error {
	if len(params) != want {
		return New(op, ErrArityMismatch, "expected %d parameters, got %d", want, len(params))
	}
	return nil
}

// CheckQubits rejects register sizes the simulator cannot address.
func CheckQubits(op string, numQubits int) error {
	if numQubits < 1 || numQubits > MaxQubits {
		return New(op, ErrInvalidArgument, "invalid qubit count: %d (must be in [1, %d])", numQubits, MaxQubits)
	}
	return nil
}

// MaxQubits bounds the register width so that wire masks fit in a uint64 and
// buffer lengths fit in an int.
const MaxQubits = 40
