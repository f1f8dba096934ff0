// Package gates is the catalog of operations understood by the simulator:
// names, wire and parameter counts, dense matrices and generators.
package gates

import (
	"github.com/2lambda123/pennylane-lightning/internal/validation"
)

// Complex is the set of amplitude types a state vector may hold.
type Complex interface {
	complex64 | complex128
}

// GateOperation identifies a named gate.
type GateOperation int

const (
	Identity GateOperation = iota
	PauliX
	PauliY
	PauliZ
	Hadamard
	S
	T
	PhaseShift
	RX
	RY
	RZ
	Rot
	CNOT
	CY
	CZ
	SWAP
	IsingXX
	IsingYY
	IsingZZ
	ControlledPhaseShift
	CRX
	CRY
	CRZ
	CRot
	Toffoli
	CSWAP
	MultiRZ

	numGates
)

// GateInfo is the catalog entry of a gate. NumWires is zero for gates that
// act on any number of wires.
type GateInfo struct {
	Name      string
	NumWires  int
	NumParams int
}

var gateTable = [numGates]GateInfo{
	Identity:             {"Identity", 1, 0},
	PauliX:               {"PauliX", 1, 0},
	PauliY:               {"PauliY", 1, 0},
	PauliZ:               {"PauliZ", 1, 0},
	Hadamard:             {"Hadamard", 1, 0},
	S:                    {"S", 1, 0},
	T:                    {"T", 1, 0},
	PhaseShift:           {"PhaseShift", 1, 1},
	RX:                   {"RX", 1, 1},
	RY:                   {"RY", 1, 1},
	RZ:                   {"RZ", 1, 1},
	Rot:                  {"Rot", 1, 3},
	CNOT:                 {"CNOT", 2, 0},
	CY:                   {"CY", 2, 0},
	CZ:                   {"CZ", 2, 0},
	SWAP:                 {"SWAP", 2, 0},
	IsingXX:              {"IsingXX", 2, 1},
	IsingYY:              {"IsingYY", 2, 1},
	IsingZZ:              {"IsingZZ", 2, 1},
	ControlledPhaseShift: {"ControlledPhaseShift", 2, 1},
	CRX:                  {"CRX", 2, 1},
	CRY:                  {"CRY", 2, 1},
	CRZ:                  {"CRZ", 2, 1},
	CRot:                 {"CRot", 2, 3},
	Toffoli:              {"Toffoli", 3, 0},
	CSWAP:                {"CSWAP", 3, 0},
	MultiRZ:              {"MultiRZ", 0, 1},
}

var gatesByName = func() map[string]GateOperation {
	m := make(map[string]GateOperation, numGates)
	for op, info := range gateTable {
		m[info.Name] = GateOperation(op)
	}
	return m
}()

func (op GateOperation) String() string {
	if op < 0 || op >= numGates {
		return "GateOperation(?)"
	}
	return gateTable[op].Name
}

// Info returns the catalog entry of op.
func (op GateOperation) Info() GateInfo {
	return gateTable[op]
}

// NumWires returns the wire count of op, zero meaning any non-empty count.
func (op GateOperation) NumWires() int {
	return gateTable[op].NumWires
}

// NumParams returns the parameter count of op.
func (op GateOperation) NumParams() int {
	return gateTable[op].NumParams
}

// Valid reports whether op names a catalog entry.
func (op GateOperation) Valid() bool {
	return op >= 0 && op < numGates
}

// GateFromName resolves a gate by its catalog name.
func GateFromName(name string) (GateOperation, error) {
	op, ok := gatesByName[name]
	if !ok {
		return 0, validation.New(name, validation.ErrUnknownOperation, "no gate named %q", name)
	}
	return op, nil
}

// AllGates lists every gate in catalog order.
func AllGates() []GateOperation {
	out := make([]GateOperation, numGates)
	for i := range out {
		out[i] = GateOperation(i)
	}
	return out
}

// State-preparation records load the initial amplitudes. They are not gates
// and are skipped by both passes of adjoint differentiation.
var statePreparation = map[string]bool{
	"QubitStateVector": true,
	"BasisState":       true,
	"StatePrep":        true,
}

// IsStatePreparation reports whether name denotes a state-preparation record.
func IsStatePreparation(name string) bool {
	return statePreparation[name]
}
