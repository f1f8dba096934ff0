package dispatch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/logger"
)

// ErrAlreadyInitialized is returned by Initialize once the process-wide
// dispatchers exist.
var ErrAlreadyInitialized = errors.New("dispatch: already initialized")

type registry struct {
	d64 *Dispatcher[complex128]
	d32 *Dispatcher[complex64]
}

var (
	registryOnce sync.Once
	global       registry
)

func build(opts Options) (registry, error) {
	d64, err := New[complex128](opts)
	if err != nil {
		return registry{}, fmt.Errorf("building complex128 dispatcher: %w", err)
	}
	d32, err := New[complex64](opts)
	if err != nil {
		return registry{}, fmt.Errorf("building complex64 dispatcher: %w", err)
	}
	logger.Log.Debug("kernel dispatchers ready",
		"gate_overrides", len(opts.GateKernels),
		"generator_overrides", len(opts.GeneratorKernels),
		"matrix_overrides", len(opts.MatrixKernels),
	)
	return registry{d64: d64, d32: d32}, nil
}

// Initialize builds the process-wide dispatchers eagerly with opts. Invalid
// overrides leave the registry untouched. Once the dispatchers exist, either
// from an earlier Initialize or from For, it returns ErrAlreadyInitialized.
func Initialize(opts Options) error {
	reg, err := build(opts)
	if err != nil {
		return err
	}
	installed := false
	registryOnce.Do(func() {
		installed = true
		global = reg
	})
	if !installed {
		return ErrAlreadyInitialized
	}
	return nil
}

// For returns the process-wide dispatcher for precision C, building it with
// default kernels on first use.
func For[C gates.Complex]() *Dispatcher[C] {
	registryOnce.Do(func() {
		reg, err := build(Options{})
		if err != nil {
			// Defaults always cover the catalog; reaching this is a programming error.
			panic(err)
		}
		global = reg
	})
	var zero C
	switch any(zero).(type) {
	case complex64:
		return any(global.d32).(*Dispatcher[C])
	default:
		return any(global.d64).(*Dispatcher[C])
	}
}
