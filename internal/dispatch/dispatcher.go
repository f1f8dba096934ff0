// Package dispatch maps (operation, kernel) pairs to kernel routines and
// applies operations to raw amplitude buffers.
package dispatch

import (
	"math/bits"
	"sort"
	"time"

	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/kernels"
	"github.com/2lambda123/pennylane-lightning/internal/metrics"
	"github.com/2lambda123/pennylane-lightning/internal/validation"
)

type gateKey struct {
	op     gates.GateOperation
	kernel kernels.KernelType
}

type generatorKey struct {
	op     gates.GeneratorOperation
	kernel kernels.KernelType
}

type matrixKey struct {
	op     gates.MatrixOperation
	kernel kernels.KernelType
}

// Options overrides the default kernel of individual operations.
type Options struct {
	GateKernels      map[gates.GateOperation]kernels.KernelType
	GeneratorKernels map[gates.GeneratorOperation]kernels.KernelType
	MatrixKernels    map[gates.MatrixOperation]kernels.KernelType
}

// Dispatcher is read-only once built and safe for concurrent use.
type Dispatcher[C gates.Complex] struct {
	gates      map[gateKey]kernels.GateFunc[C]
	generators map[generatorKey]kernels.GeneratorFunc[C]
	matrices   map[matrixKey]kernels.MatrixFunc[C]

	gateDefault      map[gates.GateOperation]kernels.KernelType
	generatorDefault map[gates.GeneratorOperation]kernels.KernelType
	matrixDefault    map[gates.MatrixOperation]kernels.KernelType

	available []kernels.Kernel[C]
}

// preferred lists kernels in the order defaults are chosen: LM wherever it
// implements an operation, PI otherwise.
var preferred = []kernels.KernelType{kernels.KernelLM, kernels.KernelPI}

// New registers every kernel for precision C, applies the overrides in opts
// and verifies that each catalog operation has a working default.
func New[C gates.Complex](opts Options) (*Dispatcher[C], error) {
	d := &Dispatcher[C]{
		gates:            make(map[gateKey]kernels.GateFunc[C]),
		generators:       make(map[generatorKey]kernels.GeneratorFunc[C]),
		matrices:         make(map[matrixKey]kernels.MatrixFunc[C]),
		gateDefault:      make(map[gates.GateOperation]kernels.KernelType),
		generatorDefault: make(map[gates.GeneratorOperation]kernels.KernelType),
		matrixDefault:    make(map[gates.MatrixOperation]kernels.KernelType),
		available:        kernels.Available[C](),
	}
	for _, k := range d.available {
		d.register(k)
	}
	d.chooseDefaults()

	for op, k := range opts.GateKernels {
		if _, ok := d.gates[gateKey{op, k}]; !ok {
			return nil, validation.New(op.String(), validation.ErrUnsupportedKernel, "kernel %s does not implement %s", k, op)
		}
		d.gateDefault[op] = k
	}
	for op, k := range opts.GeneratorKernels {
		if _, ok := d.generators[generatorKey{op, k}]; !ok {
			return nil, validation.New(op.String(), validation.ErrUnsupportedKernel, "kernel %s does not implement %s", k, op)
		}
		d.generatorDefault[op] = k
	}
	for op, k := range opts.MatrixKernels {
		if _, ok := d.matrices[matrixKey{op, k}]; !ok {
			return nil, validation.New(op.String(), validation.ErrUnsupportedKernel, "kernel %s does not implement %s", k, op)
		}
		d.matrixDefault[op] = k
	}

	if err := d.selfCheck(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dispatcher[C]) register(k kernels.Kernel[C]) {
	for op, fn := range k.Gates {
		d.gates[gateKey{op, k.ID}] = fn
	}
	for op, fn := range k.Generators {
		d.generators[generatorKey{op, k.ID}] = fn
	}
	for op, fn := range k.Matrices {
		d.matrices[matrixKey{op, k.ID}] = fn
	}
}

func (d *Dispatcher[C]) chooseDefaults() {
	for _, op := range gates.AllGates() {
		for _, k := range preferred {
			if _, ok := d.gates[gateKey{op, k}]; ok {
				d.gateDefault[op] = k
				break
			}
		}
	}
	for _, op := range gates.AllGenerators() {
		for _, k := range preferred {
			if _, ok := d.generators[generatorKey{op, k}]; ok {
				d.generatorDefault[op] = k
				break
			}
		}
	}
	for _, op := range gates.AllMatrixOps() {
		for _, k := range preferred {
			if _, ok := d.matrices[matrixKey{op, k}]; ok {
				d.matrixDefault[op] = k
				break
			}
		}
	}
}

// selfCheck fails if any catalog operation lacks a default kernel that implements it.
func (d *Dispatcher[C]) selfCheck() error {
	for _, op := range gates.AllGates() {
		k, ok := d.gateDefault[op]
		if _, impl := d.gates[gateKey{op, k}]; !ok || !impl {
			return validation.New(op.String(), validation.ErrUnsupportedKernel, "no default kernel registered")
		}
	}
	for _, op := range gates.AllGenerators() {
		k, ok := d.generatorDefault[op]
		if _, impl := d.generators[generatorKey{op, k}]; !ok || !impl {
			return validation.New(op.String(), validation.ErrUnsupportedKernel, "no default kernel registered")
		}
	}
	for _, op := range gates.AllMatrixOps() {
		k, ok := d.matrixDefault[op]
		if _, impl := d.matrices[matrixKey{op, k}]; !ok || !impl {
			return validation.New(op.String(), validation.ErrUnsupportedKernel, "no default kernel registered")
		}
	}
	return nil
}

// DefaultGateKernel returns the kernel used for op when none is requested.
func (d *Dispatcher[C]) DefaultGateKernel(op gates.GateOperation) kernels.KernelType {
	return d.gateDefault[op]
}

// DefaultGeneratorKernel returns the kernel used for g when none is requested.
func (d *Dispatcher[C]) DefaultGeneratorKernel(g gates.GeneratorOperation) kernels.KernelType {
	return d.generatorDefault[g]
}

// DefaultMatrixKernel returns the kernel used for m when none is requested.
func (d *Dispatcher[C]) DefaultMatrixKernel(m gates.MatrixOperation) kernels.KernelType {
	return d.matrixDefault[m]
}

// Gate resolves op on kernel k; KernelDefault selects the registered default.
func (d *Dispatcher[C]) Gate(op gates.GateOperation, k kernels.KernelType) (kernels.GateFunc[C], kernels.KernelType, error) {
	if k == kernels.KernelDefault {
		k = d.gateDefault[op]
	}
	fn, ok := d.gates[gateKey{op, k}]
	if !ok {
		return nil, k, validation.New(op.String(), validation.ErrUnsupportedKernel, "kernel %s does not implement %s", k, op)
	}
	return fn, k, nil
}

// Generator resolves g on kernel k.
func (d *Dispatcher[C]) Generator(g gates.GeneratorOperation, k kernels.KernelType) (kernels.GeneratorFunc[C], kernels.KernelType, error) {
	if k == kernels.KernelDefault {
		k = d.generatorDefault[g]
	}
	fn, ok := d.generators[generatorKey{g, k}]
	if !ok {
		return nil, k, validation.New(g.String(), validation.ErrUnsupportedKernel, "kernel %s does not implement %s", k, g)
	}
	return fn, k, nil
}

// Matrix resolves the matrix routine m on kernel k.
func (d *Dispatcher[C]) Matrix(m gates.MatrixOperation, k kernels.KernelType) (kernels.MatrixFunc[C], kernels.KernelType, error) {
	if k == kernels.KernelDefault {
		k = d.matrixDefault[m]
	}
	fn, ok := d.matrices[matrixKey{m, k}]
	if !ok {
		return nil, k, validation.New(m.String(), validation.ErrUnsupportedKernel, "kernel %s does not implement %s", k, m)
	}
	return fn, k, nil
}

// ApplyOperation validates and applies the named gate to arr.
func (d *Dispatcher[C]) ApplyOperation(k kernels.KernelType, arr []C, numQubits int, name string, wires []int, inverse bool, params []float64) error {
	op, err := gates.GateFromName(name)
	if err != nil {
		return err
	}
	if err := validation.CheckWires(name, wires, numQubits, op.NumWires()); err != nil {
		return err
	}
	if err := validation.CheckParams(name, params, op.NumParams()); err != nil {
		return err
	}
	fn, used, err := d.Gate(op, k)
	if err != nil {
		return err
	}

	start := time.Now()
	fn(arr, numQubits, wires, inverse, params)
	metrics.RecordGateApplication(name, used.String(), time.Since(start))
	return nil
}

// ApplyGenerator applies the generator of the named gate and returns its scaling factor.
func (d *Dispatcher[C]) ApplyGenerator(k kernels.KernelType, arr []C, numQubits int, name string, wires []int, adj bool) (float64, error) {
	g, err := gates.GeneratorFromName(name)
	if err != nil {
		return 0, err
	}
	if err := validation.CheckWires(name, wires, numQubits, g.NumWires()); err != nil {
		return 0, err
	}
	fn, used, err := d.Generator(g, k)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	scale := fn(arr, numQubits, wires, adj)
	metrics.RecordGateApplication(g.String(), used.String(), time.Since(start))
	return scale, nil
}

// ApplyMatrix applies a row-major 4^k-entry matrix to k wires.
func (d *Dispatcher[C]) ApplyMatrix(k kernels.KernelType, arr []C, numQubits int, matrix []C, wires []int, inverse bool) error {
	const op = "applyMatrix"
	if err := validation.CheckWires(op, wires, numQubits, 0); err != nil {
		return err
	}
	// len(matrix) must be exactly 4^len(wires).
	size := uint(len(matrix))
	if size == 0 || size&(size-1) != 0 || bits.Len(size)-1 != 2*len(wires) {
		return validation.New(op, validation.ErrInvalidArgument,
			"the size of matrix (%d) does not match with the given number of wires (%d)", len(matrix), len(wires))
	}
	mop := gates.MatrixOpForWires(len(wires))
	fn, used, err := d.Matrix(mop, k)
	if err != nil {
		return err
	}

	start := time.Now()
	fn(arr, numQubits, matrix, wires, inverse)
	metrics.RecordGateApplication(mop.String(), used.String(), time.Since(start))
	return nil
}

// KernelInventory lists what one kernel implements and which operations it
// serves by default.
type KernelInventory struct {
	Kernel     string   `json:"kernel"`
	Gates      []string `json:"gates"`
	Generators []string `json:"generators"`
	Matrices   []string `json:"matrices"`
	DefaultFor []string `json:"default_for"`
}

// Inventory reports every registered kernel, ordered by kernel name.
func (d *Dispatcher[C]) Inventory() []KernelInventory {
	out := make([]KernelInventory, 0, len(d.available))
	for _, k := range d.available {
		inv := KernelInventory{Kernel: k.Name()}
		for _, op := range k.ImplementedGates() {
			inv.Gates = append(inv.Gates, op.String())
			if d.gateDefault[op] == k.ID {
				inv.DefaultFor = append(inv.DefaultFor, op.String())
			}
		}
		for _, g := range k.ImplementedGenerators() {
			inv.Generators = append(inv.Generators, g.String())
			if d.generatorDefault[g] == k.ID {
				inv.DefaultFor = append(inv.DefaultFor, g.String())
			}
		}
		for _, m := range k.ImplementedMatrices() {
			inv.Matrices = append(inv.Matrices, m.String())
			if d.matrixDefault[m] == k.ID {
				inv.DefaultFor = append(inv.DefaultFor, m.String())
			}
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kernel < out[j].Kernel })
	return out
}
