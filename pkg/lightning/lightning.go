// Package lightning is the public surface of the state-vector simulator:
// state construction, gate application and adjoint Jacobians.
package lightning

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/2lambda123/pennylane-lightning/internal/adjoint"
	"github.com/2lambda123/pennylane-lightning/internal/config"
	"github.com/2lambda123/pennylane-lightning/internal/dispatch"
	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/kernels"
	"github.com/2lambda123/pennylane-lightning/internal/logger"
	"github.com/2lambda123/pennylane-lightning/internal/statevector"
	"github.com/2lambda123/pennylane-lightning/internal/validation"
)

type (
	Complex       = gates.Complex
	StateVector64 = statevector.StateVector[complex128]
	StateVector32 = statevector.StateVector[complex64]
	Operation     = adjoint.Operation
	Observable    = adjoint.Observable
	Jacobian      = adjoint.Jacobian
	KernelType    = kernels.KernelType
	Config        = config.Config
)

const (
	KernelDefault = kernels.KernelDefault
	KernelLM      = kernels.KernelLM
	KernelPI      = kernels.KernelPI
)

var (
	ErrArityMismatch             = validation.ErrArityMismatch
	ErrLengthMismatch            = validation.ErrLengthMismatch
	ErrUnknownOperation          = validation.ErrUnknownOperation
	ErrUnsupportedKernel         = validation.ErrUnsupportedKernel
	ErrInvalidArgument           = validation.ErrInvalidArgument
	ErrUnsupportedForAdjointDiff = validation.ErrUnsupportedForAdjointDiff
	ErrAlreadyInitialized        = dispatch.ErrAlreadyInitialized
)

var adjointWorkers atomic.Int64

// Initialize applies cfg to the process: logging, kernel parallelism and the
// dispatcher's default kernels. Dispatchers are built once; calling
// Initialize after the first gate application returns ErrAlreadyInitialized
// with the logging and parallelism settings still applied.
func Initialize(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	kernels.Configure(cfg.KernelOptions())
	adjointWorkers.Store(int64(cfg.AdjointWorkers))

	opts, err := cfg.DispatchOptions()
	if err != nil {
		return err
	}
	if err := dispatch.Initialize(opts); err != nil {
		return fmt.Errorf("initialize dispatch: %w", err)
	}
	logger.Log.Info("lightning initialized",
		"precision", cfg.Precision.String(),
		"workers", cfg.Workers,
		"adjoint_workers", cfg.AdjointWorkers,
		"kernel_overrides", len(cfg.DefaultKernels),
	)
	return nil
}

// LoadConfig reads a YAML configuration with LIGHTNING_* overrides.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

func DefaultConfig() Config {
	return config.Default()
}

// NewState64 returns |0...0> in double precision.
func NewState64(numQubits int) (*StateVector64, error) {
	return statevector.New[complex128](numQubits)
}

// NewState32 returns |0...0> in single precision.
func NewState32(numQubits int) (*StateVector32, error) {
	return statevector.New[complex64](numQubits)
}

// FromAmplitudes copies 2^n amplitudes into a new state.
func FromAmplitudes[C Complex](amplitudes []C) (*statevector.StateVector[C], error) {
	return statevector.NewFromData(amplitudes)
}

// ParseKernel resolves "LM", "PI" or "" (default).
func ParseKernel(name string) (KernelType, error) {
	return kernels.ParseKernel(name)
}

// AdjointJacobian computes the [observables x trainable] Jacobian of the
// circuit given as parallel lists. initial is left untouched.
func AdjointJacobian[C Complex](ctx context.Context, initial *statevector.StateVector[C],
	observables []string, observableParams [][]float64, observableWires [][]int,
	operations []string, opParams [][]float64, opWires [][]int,
	trainableParams []int) (*Jacobian, error) {
	var opts []adjoint.Option
	if w := adjointWorkers.Load(); w > 0 {
		opts = append(opts, adjoint.WithWorkers(int(w)))
	}
	return adjoint.FromLists(ctx, initial,
		observables, observableParams, observableWires,
		operations, opParams, opWires,
		trainableParams, opts...)
}

// Inventory lists each kernel's implemented operations and defaults.
func Inventory() []dispatch.KernelInventory {
	return dispatch.For[complex128]().Inventory()
}
