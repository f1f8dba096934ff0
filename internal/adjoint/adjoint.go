// Package adjoint computes Jacobians of expectation values with respect to
// circuit parameters using one forward pass and one reverse sweep.
//
// For every trainable parameter θ of an operation U with generator G and
// scaling factor s (dU/dθ = i·s·G·U), the entry for observable O is
// -2·s·Im⟨λ|G|φ⟩, where |φ⟩ is the state right after U and ⟨λ| is O|ψ⟩
// propagated back to the same point in the circuit.
package adjoint

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/kernels"
	"github.com/2lambda123/pennylane-lightning/internal/logger"
	"github.com/2lambda123/pennylane-lightning/internal/metrics"
	"github.com/2lambda123/pennylane-lightning/internal/statevector"
	"github.com/2lambda123/pennylane-lightning/internal/validation"
)

// Operation is one record of the forward circuit.
type Operation struct {
	Name    string
	Wires   []int
	Params  []float64
	Inverse bool
}

// Observable is applied to the final state as an operation, e.g. PauliZ.
type Observable struct {
	Name   string
	Wires  []int
	Params []float64
}

// Jacobian is a dense row-major [NumObservables x NumParams] matrix. Column j
// belongs to the j-th requested trainable position.
type Jacobian struct {
	NumObservables int
	NumParams      int
	Data           []float64
}

func newJacobian(obs, params int) *Jacobian {
	return &Jacobian{NumObservables: obs, NumParams: params, Data: make([]float64, obs*params)}
}

func (j *Jacobian) At(obs, param int) float64 {
	return j.Data[obs*j.NumParams+param]
}

// Row returns the gradient of one observable. It aliases Data.
func (j *Jacobian) Row(obs int) []float64 {
	return j.Data[obs*j.NumParams : (obs+1)*j.NumParams]
}

type options struct {
	workers int
	kernel  kernels.KernelType
	ws      any
}

type Option func(*options)

// WithWorkers bounds the goroutines used per sweep step across observables.
// Values below 1 run serially.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}

// WithKernel forces every application in the sweep onto kernel k.
func WithKernel(k kernels.KernelType) Option {
	return func(o *options) { o.kernel = k }
}

// WithWorkspace reuses buffers from ws instead of a per-call workspace. The
// caller owns ws and frees it.
func WithWorkspace[C gates.Complex](ws *Workspace[C]) Option {
	return func(o *options) { o.ws = ws }
}

// plan is the validated layout of a circuit: where each record's parameters
// start and where the reverse sweep stops.
type plan struct {
	offsets    []int
	numParams  int
	sweepStart int
}

func planCircuit(ops []Operation, trainable []int) (plan, error) {
	const op = "adjointJacobian"
	p := plan{offsets: make([]int, len(ops))}
	for i, rec := range ops {
		p.offsets[i] = p.numParams
		if gates.IsStatePreparation(rec.Name) {
			p.sweepStart = i + 1
			continue
		}
		p.numParams += len(rec.Params)
	}
	for i := p.sweepStart; i < len(ops); i++ {
		if len(ops[i].Params) > 1 {
			return p, validation.New(op, validation.ErrUnsupportedForAdjointDiff,
				"operation %d (%s) has %d parameters", i, ops[i].Name, len(ops[i].Params))
		}
	}
	for i, pos := range trainable {
		if pos < 0 || pos >= p.numParams {
			return p, validation.New(op, validation.ErrInvalidArgument,
				"trainable position %d out of range [0, %d)", pos, p.numParams)
		}
		if i > 0 && pos <= trainable[i-1] {
			return p, validation.New(op, validation.ErrInvalidArgument,
				"trainable positions must be strictly increasing: %d after %d", pos, trainable[i-1])
		}
	}
	return p, nil
}

// Compute returns the Jacobian of every observable's expectation value with
// respect to the trainable parameter positions. Positions count the
// parameters of every non-state-preparation record in order. initial is not
// modified.
func Compute[C gates.Complex](ctx context.Context, initial *statevector.StateVector[C], observables []Observable, ops []Operation, trainable []int, opts ...Option) (*Jacobian, error) {
	if initial == nil {
		return nil, validation.New("adjointJacobian", validation.ErrInvalidArgument, "initial state is nil")
	}
	o := options{workers: runtime.NumCPU(), kernel: kernels.KernelDefault}
	for _, fn := range opts {
		fn(&o)
	}
	p, err := planCircuit(ops, trainable)
	if err != nil {
		metrics.RecordValidationError("adjointJacobian", validation.KindLabel(err))
		return nil, err
	}

	ws, _ := o.ws.(*Workspace[C])
	if ws == nil {
		ws = NewWorkspace[C]()
		defer ws.Free()
	}

	start := time.Now()
	s := &sweep[C]{
		ops:   ops,
		plan:  p,
		opts:  o,
		ws:    ws,
		n:     initial.NumQubits(),
		jac:   newJacobian(len(observables), len(trainable)),
		train: trainable,
	}
	defer s.release()

	if err := s.forward(ctx, initial); err != nil {
		return nil, err
	}
	if err := s.prepareObservables(ctx, observables); err != nil {
		return nil, err
	}
	if err := s.reverse(ctx); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordAdjoint(len(observables), len(trainable), elapsed)
	checkFinite(s.jac)
	logger.Log.With("adjoint").Debug("jacobian computed",
		"qubits", s.n,
		"operations", len(ops),
		"observables", len(observables),
		"trainable", len(trainable),
		"duration", elapsed,
	)
	return s.jac, nil
}

// FromLists is Compute over the parallel-list form used by host frameworks.
// All observable lists must have equal length, as must all operation lists.
// Params lists may be nil when nothing is parameterized.
func FromLists[C gates.Complex](ctx context.Context, initial *statevector.StateVector[C],
	obsNames []string, obsParams [][]float64, obsWires [][]int,
	opNames []string, opParams [][]float64, opWires [][]int,
	trainable []int, opts ...Option) (*Jacobian, error) {
	const op = "adjointJacobian"
	if len(obsWires) != len(obsNames) || (obsParams != nil && len(obsParams) != len(obsNames)) {
		return nil, validation.New(op, validation.ErrLengthMismatch,
			"observables=%d params=%d wires=%d", len(obsNames), len(obsParams), len(obsWires))
	}
	if len(opWires) != len(opNames) || (opParams != nil && len(opParams) != len(opNames)) {
		return nil, validation.New(op, validation.ErrLengthMismatch,
			"operations=%d params=%d wires=%d", len(opNames), len(opParams), len(opWires))
	}
	observables := make([]Observable, len(obsNames))
	for i, name := range obsNames {
		observables[i] = Observable{Name: name, Wires: obsWires[i]}
		if obsParams != nil {
			observables[i].Params = obsParams[i]
		}
	}
	ops := make([]Operation, len(opNames))
	for i, name := range opNames {
		ops[i] = Operation{Name: name, Wires: opWires[i]}
		if opParams != nil {
			ops[i].Params = opParams[i]
		}
	}
	return Compute(ctx, initial, observables, ops, trainable, opts...)
}

type sweep[C gates.Complex] struct {
	ops   []Operation
	plan  plan
	opts  options
	ws    *Workspace[C]
	n     int
	jac   *Jacobian
	train []int

	current *statevector.StateVector[C]
	lambdas []*statevector.StateVector[C]
}

func (s *sweep[C]) wrap(src *statevector.StateVector[C]) (*statevector.StateVector[C], error) {
	buf := s.ws.Get(src.Length())
	copy(buf, src.Data())
	return statevector.Wrap(buf)
}

func (s *sweep[C]) release() {
	if s.current != nil {
		s.ws.Put(s.current.Data())
	}
	for _, l := range s.lambdas {
		s.ws.Put(l.Data())
	}
}

func (s *sweep[C]) forward(ctx context.Context, initial *statevector.StateVector[C]) error {
	cur, err := s.wrap(initial)
	if err != nil {
		return err
	}
	s.current = cur
	for i, rec := range s.ops {
		if err := ctx.Err(); err != nil {
			return err
		}
		if gates.IsStatePreparation(rec.Name) {
			continue
		}
		if err := cur.ApplyOperationWithKernel(s.opts.kernel, rec.Name, rec.Wires, rec.Inverse, rec.Params); err != nil {
			return fmt.Errorf("forward operation %d: %w", i, err)
		}
	}
	return nil
}

func (s *sweep[C]) prepareObservables(ctx context.Context, observables []Observable) error {
	s.lambdas = make([]*statevector.StateVector[C], 0, len(observables))
	for range observables {
		l, err := s.wrap(s.current)
		if err != nil {
			return err
		}
		s.lambdas = append(s.lambdas, l)
	}
	return s.eachObservable(ctx, func(i int) error {
		obs := observables[i]
		if err := s.lambdas[i].ApplyOperationWithKernel(s.opts.kernel, obs.Name, obs.Wires, false, obs.Params); err != nil {
			return fmt.Errorf("observable %d: %w", i, err)
		}
		return nil
	})
}

func (s *sweep[C]) reverse(ctx context.Context) error {
	col := len(s.train) - 1
	if col < 0 {
		return nil
	}
	mu, err := s.wrap(s.current)
	if err != nil {
		return err
	}
	defer s.ws.Put(mu.Data())

	for i := len(s.ops) - 1; i >= s.plan.sweepStart && col >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := s.ops[i]
		trainable := len(rec.Params) == 1 && s.train[col] == s.plan.offsets[i]
		if trainable {
			if err := mu.CopyFrom(s.current); err != nil {
				return err
			}
		}
		if err := s.current.ApplyOperationWithKernel(s.opts.kernel, rec.Name, rec.Wires, !rec.Inverse, rec.Params); err != nil {
			return fmt.Errorf("reverse operation %d: %w", i, err)
		}

		if trainable {
			scale, err := mu.ApplyGeneratorWithKernel(s.opts.kernel, rec.Name, rec.Wires, rec.Inverse)
			if err != nil {
				if errors.Is(err, validation.ErrUnknownOperation) {
					err = validation.New("adjointJacobian", validation.ErrUnsupportedForAdjointDiff,
						"operation %d (%s) has no generator", i, rec.Name)
				}
				return err
			}
			if rec.Inverse {
				scale = -scale
			}
			c := col
			err = s.eachObservable(ctx, func(j int) error {
				ip := statevector.InnerProduct(s.lambdas[j], mu)
				s.jac.Data[j*s.jac.NumParams+c] = -2 * scale * imag(ip)
				return nil
			})
			if err != nil {
				return err
			}
			col--
		}

		if i > s.plan.sweepStart && col >= 0 {
			err := s.eachObservable(ctx, func(j int) error {
				return s.lambdas[j].ApplyOperationWithKernel(s.opts.kernel, rec.Name, rec.Wires, !rec.Inverse, rec.Params)
			})
			if err != nil {
				return fmt.Errorf("reverse operation %d: %w", i, err)
			}
		}
	}
	return nil
}

// eachObservable runs fn for every observable, bounded by the worker count.
// After the first failure, observables not yet started are skipped.
func (s *sweep[C]) eachObservable(ctx context.Context, fn func(i int) error) error {
	if s.opts.workers <= 1 || len(s.lambdas) <= 1 {
		for i := range s.lambdas {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.workers)
	for i := range s.lambdas {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(i)
		})
	}
	return g.Wait()
}

func checkFinite(j *Jacobian) {
	var nans, infs int
	for _, v := range j.Data {
		switch {
		case math.IsNaN(v):
			nans++
		case math.IsInf(v, 0):
			infs++
		}
	}
	if nans+infs > 0 {
		metrics.RecordNumericalInstability("adjoint", nans, infs)
		logger.Log.With("adjoint").Warn("non-finite jacobian entries", "nan", nans, "inf", infs)
	}
}
