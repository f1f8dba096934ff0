package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/2lambda123/pennylane-lightning/internal/adjoint"
	"github.com/2lambda123/pennylane-lightning/internal/arrowio"
	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/kernels"
	"github.com/2lambda123/pennylane-lightning/internal/logger"
	"github.com/2lambda123/pennylane-lightning/internal/statevector"
)

type KernelResult struct {
	Kernel         string  `json:"kernel"`
	MeanSeconds    float64 `json:"mean_seconds"`
	GatesPerSecond float64 `json:"gates_per_second"`
}

type Output struct {
	Qubits         int            `json:"qubits"`
	Layers         int            `json:"layers"`
	Precision      string         `json:"precision"`
	Gates          int            `json:"gates"`
	Kernels        []KernelResult `json:"kernels"`
	AdjointSeconds float64        `json:"adjoint_duration_seconds"`
	Observables    int            `json:"observables"`
	Parameters     int            `json:"parameters"`
	GradientNorm   float64        `json:"gradient_norm"`
	Exported       bool           `json:"exported"`
}

type benchOptions struct {
	qubits   int
	layers   int
	repeat   int
	seed     int64
	workers  int
	exporter arrowio.Exporter
}

// circuit builds layers of RX and RY on every wire followed by a CNOT ladder.
func circuit(qubits, layers int, seed int64) []adjoint.Operation {
	r := rand.New(rand.NewSource(seed))
	var ops []adjoint.Operation
	for l := 0; l < layers; l++ {
		for w := 0; w < qubits; w++ {
			ops = append(ops,
				adjoint.Operation{Name: "RX", Wires: []int{w}, Params: []float64{r.Float64() * 2 * math.Pi}},
				adjoint.Operation{Name: "RY", Wires: []int{w}, Params: []float64{r.Float64() * 2 * math.Pi}},
			)
		}
		for w := 0; w+1 < qubits; w++ {
			ops = append(ops, adjoint.Operation{Name: "CNOT", Wires: []int{w, w + 1}})
		}
	}
	return ops
}

func applyAll[C gates.Complex](sv *statevector.StateVector[C], k kernels.KernelType, ops []adjoint.Operation) error {
	for i, op := range ops {
		if err := sv.ApplyOperationWithKernel(k, op.Name, op.Wires, op.Inverse, op.Params); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}

func runBench[C gates.Complex](ctx context.Context, opts benchOptions) (Output, error) {
	log := logger.Log.With("bench")
	ops := circuit(opts.qubits, opts.layers, opts.seed)
	out := Output{
		Qubits:    opts.qubits,
		Layers:    opts.layers,
		Precision: precisionName[C](),
		Gates:     len(ops),
	}

	sv, err := statevector.New[C](opts.qubits)
	if err != nil {
		return out, err
	}
	defer sv.Release()

	for _, k := range kernels.AllKernels() {
		var total time.Duration
		for i := 0; i < opts.repeat; i++ {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			if err := sv.Reset(opts.qubits); err != nil {
				return out, err
			}
			start := time.Now()
			if err := applyAll(sv, k, ops); err != nil {
				return out, fmt.Errorf("kernel %s: %w", k, err)
			}
			total += time.Since(start)
		}
		mean := total.Seconds() / float64(opts.repeat)
		res := KernelResult{Kernel: k.String(), MeanSeconds: mean}
		if mean > 0 {
			res.GatesPerSecond = float64(len(ops)) / mean
		}
		out.Kernels = append(out.Kernels, res)
		log.Debug("kernel timed", "kernel", k.String(), "mean_seconds", mean)
	}

	observables := make([]adjoint.Observable, opts.qubits)
	for w := range observables {
		observables[w] = adjoint.Observable{Name: "PauliZ", Wires: []int{w}}
	}
	numParams := 2 * opts.qubits * opts.layers
	trainable := make([]int, numParams)
	for i := range trainable {
		trainable[i] = i
	}

	if err := sv.Reset(opts.qubits); err != nil {
		return out, err
	}
	start := time.Now()
	jac, err := adjoint.Compute(ctx, sv, observables, ops, trainable, adjoint.WithWorkers(opts.workers))
	if err != nil {
		return out, fmt.Errorf("adjoint jacobian: %w", err)
	}
	out.AdjointSeconds = time.Since(start).Seconds()
	out.Observables = jac.NumObservables
	out.Parameters = jac.NumParams
	var sum float64
	for _, v := range jac.Data {
		sum += v * v
	}
	out.GradientNorm = math.Sqrt(sum)

	if opts.exporter != nil {
		if err := applyAll(sv, kernels.KernelDefault, ops); err != nil {
			return out, err
		}
		if err := arrowio.ExportState(ctx, opts.exporter, sv); err != nil {
			return out, fmt.Errorf("export state: %w", err)
		}
		if err := arrowio.ExportJacobian(ctx, opts.exporter, jac); err != nil {
			return out, fmt.Errorf("export jacobian: %w", err)
		}
		out.Exported = true
	}
	return out, nil
}

func precisionName[C gates.Complex]() string {
	var zero C
	if _, ok := any(zero).(complex64); ok {
		return "complex64"
	}
	return "complex128"
}
