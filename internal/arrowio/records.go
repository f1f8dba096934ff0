// Package arrowio converts state vectors and Jacobians to Arrow records,
// streams them as Arrow IPC and ships them to Arrow Flight endpoints.
package arrowio

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/2lambda123/pennylane-lightning/internal/adjoint"
	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/statevector"
	"github.com/2lambda123/pennylane-lightning/internal/validation"
)

// Schema metadata keys.
const (
	MetaKind           = "kind"
	MetaNumQubits      = "num_qubits"
	MetaPrecision      = "precision"
	MetaNumObservables = "num_observables"
	MetaNumParams      = "num_params"
)

const (
	KindState    = "state"
	KindJacobian = "jacobian"
)

var errSchema = errors.New("arrowio: unexpected schema")

// StateSchema is {index int64, real float64, imag float64}.
func StateSchema(numQubits int, precision string) *arrow.Schema {
	md := arrow.NewMetadata(
		[]string{MetaKind, MetaNumQubits, MetaPrecision},
		[]string{KindState, strconv.Itoa(numQubits), precision},
	)
	return arrow.NewSchema([]arrow.Field{
		{Name: "index", Type: arrow.PrimitiveTypes.Int64},
		{Name: "real", Type: arrow.PrimitiveTypes.Float64},
		{Name: "imag", Type: arrow.PrimitiveTypes.Float64},
	}, &md)
}

// JacobianSchema is {observable int32, param int32, value float64}.
func JacobianSchema(numObservables, numParams int) *arrow.Schema {
	md := arrow.NewMetadata(
		[]string{MetaKind, MetaNumObservables, MetaNumParams},
		[]string{KindJacobian, strconv.Itoa(numObservables), strconv.Itoa(numParams)},
	)
	return arrow.NewSchema([]arrow.Field{
		{Name: "observable", Type: arrow.PrimitiveTypes.Int32},
		{Name: "param", Type: arrow.PrimitiveTypes.Int32},
		{Name: "value", Type: arrow.PrimitiveTypes.Float64},
	}, &md)
}

func precisionName[C gates.Complex]() string {
	var zero C
	if _, ok := any(zero).(complex64); ok {
		return "complex64"
	}
	return "complex128"
}

// StateRecord builds one row per amplitude. The caller releases the record.
func StateRecord[C gates.Complex](mem memory.Allocator, sv *statevector.StateVector[C]) arrow.Record {
	b := array.NewRecordBuilder(mem, StateSchema(sv.NumQubits(), precisionName[C]()))
	defer b.Release()

	n := sv.Length()
	idx := b.Field(0).(*array.Int64Builder)
	re := b.Field(1).(*array.Float64Builder)
	im := b.Field(2).(*array.Float64Builder)
	idx.Reserve(n)
	re.Reserve(n)
	im.Reserve(n)
	for i, v := range sv.Data() {
		z := complex128(v)
		idx.Append(int64(i))
		re.Append(real(z))
		im.Append(imag(z))
	}
	return b.NewRecord()
}

// JacobianRecord builds one row per Jacobian entry in row-major order.
func JacobianRecord(mem memory.Allocator, jac *adjoint.Jacobian) arrow.Record {
	b := array.NewRecordBuilder(mem, JacobianSchema(jac.NumObservables, jac.NumParams))
	defer b.Release()

	obs := b.Field(0).(*array.Int32Builder)
	par := b.Field(1).(*array.Int32Builder)
	val := b.Field(2).(*array.Float64Builder)
	for j := 0; j < jac.NumObservables; j++ {
		for p := 0; p < jac.NumParams; p++ {
			obs.Append(int32(j))
			par.Append(int32(p))
		}
	}
	val.AppendValues(jac.Data, nil)
	return b.NewRecord()
}

// WriteIPC streams records sharing one schema to w.
func WriteIPC(w io.Writer, recs ...arrow.Record) error {
	if len(recs) == 0 {
		return fmt.Errorf("arrowio: no records to write")
	}
	iw := ipc.NewWriter(w, ipc.WithSchema(recs[0].Schema()))
	for _, rec := range recs {
		if err := iw.Write(rec); err != nil {
			iw.Close()
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	if err := iw.Close(); err != nil {
		return fmt.Errorf("failed to close IPC writer: %w", err)
	}
	return nil
}

func metaInt(md arrow.Metadata, key string) (int, error) {
	i := md.FindKey(key)
	if i < 0 {
		return 0, fmt.Errorf("%w: missing %q metadata", errSchema, key)
	}
	v, err := strconv.Atoi(md.Values()[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %q=%q", errSchema, key, md.Values()[i])
	}
	return v, nil
}

func checkKind(s *arrow.Schema, want string) error {
	md := s.Metadata()
	if i := md.FindKey(MetaKind); i < 0 || md.Values()[i] != want {
		return fmt.Errorf("%w: not a %s stream", errSchema, want)
	}
	return nil
}

// checkFields compares column names and types against want.
func checkFields(got, want *arrow.Schema) error {
	if got.NumFields() != want.NumFields() {
		return fmt.Errorf("%w: %d columns, want %d", errSchema, got.NumFields(), want.NumFields())
	}
	for i, f := range want.Fields() {
		g := got.Field(i)
		if g.Name != f.Name || !arrow.TypeEqual(g.Type, f.Type) {
			return fmt.Errorf("%w: column %d is %s %s, want %s %s", errSchema, i, g.Name, g.Type, f.Name, f.Type)
		}
	}
	return nil
}

// ReadStateIPC rebuilds a state vector from a stream written by WriteIPC.
// Every amplitude index must appear exactly once.
func ReadStateIPC[C gates.Complex](r io.Reader) (*statevector.StateVector[C], error) {
	rdr, err := ipc.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open IPC stream: %w", err)
	}
	defer rdr.Release()

	if err := checkKind(rdr.Schema(), KindState); err != nil {
		return nil, err
	}
	if err := checkFields(rdr.Schema(), StateSchema(0, "")); err != nil {
		return nil, err
	}
	n, err := metaInt(rdr.Schema().Metadata(), MetaNumQubits)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > validation.MaxQubits {
		return nil, fmt.Errorf("%w: num_qubits=%d", errSchema, n)
	}
	size := int64(1) << n

	// Memory follows the rows actually read, not num_qubits.
	amps := make(map[int64]complex128)
	for rdr.Next() {
		rec := rdr.Record()
		idx := rec.Column(0).(*array.Int64).Int64Values()
		re := rec.Column(1).(*array.Float64).Float64Values()
		im := rec.Column(2).(*array.Float64).Float64Values()
		if int64(len(amps))+int64(len(idx)) > size {
			return nil, fmt.Errorf("%w: more than %d amplitudes for %d qubits", errSchema, size, n)
		}
		for i, k := range idx {
			if k < 0 || k >= size {
				return nil, fmt.Errorf("%w: amplitude index %d out of range", errSchema, k)
			}
			if _, dup := amps[k]; dup {
				return nil, fmt.Errorf("%w: duplicate amplitude index %d", errSchema, k)
			}
			amps[k] = complex(re[i], im[i])
		}
	}
	if err := rdr.Err(); err != nil {
		return nil, fmt.Errorf("failed to read IPC stream: %w", err)
	}
	if int64(len(amps)) != size {
		return nil, fmt.Errorf("%w: %d amplitudes for %d qubits", errSchema, len(amps), n)
	}
	data := make([]C, size)
	for k, v := range amps {
		data[k] = C(v)
	}
	return statevector.NewFromData(data)
}

// maxJacobianEntries bounds the Jacobian shape accepted from a stream.
const maxJacobianEntries = 1 << 28

// ReadJacobianIPC rebuilds a Jacobian from a stream written by WriteIPC.
// Every (observable, param) entry must appear exactly once.
func ReadJacobianIPC(r io.Reader) (*adjoint.Jacobian, error) {
	rdr, err := ipc.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open IPC stream: %w", err)
	}
	defer rdr.Release()

	if err := checkKind(rdr.Schema(), KindJacobian); err != nil {
		return nil, err
	}
	if err := checkFields(rdr.Schema(), JacobianSchema(0, 0)); err != nil {
		return nil, err
	}
	md := rdr.Schema().Metadata()
	numObs, err := metaInt(md, MetaNumObservables)
	if err != nil {
		return nil, err
	}
	numParams, err := metaInt(md, MetaNumParams)
	if err != nil {
		return nil, err
	}
	if numObs < 0 || numParams < 0 || (numParams > 0 && numObs > maxJacobianEntries/numParams) {
		return nil, fmt.Errorf("%w: jacobian shape %dx%d", errSchema, numObs, numParams)
	}
	total := numObs * numParams
	jac := &adjoint.Jacobian{NumObservables: numObs, NumParams: numParams, Data: make([]float64, total)}
	filled := make([]bool, total)
	rows := 0
	for rdr.Next() {
		rec := rdr.Record()
		obs := rec.Column(0).(*array.Int32).Int32Values()
		par := rec.Column(1).(*array.Int32).Int32Values()
		val := rec.Column(2).(*array.Float64).Float64Values()
		for i := range obs {
			o, p := int(obs[i]), int(par[i])
			if o < 0 || o >= numObs || p < 0 || p >= numParams {
				return nil, fmt.Errorf("%w: entry (%d, %d) out of range", errSchema, o, p)
			}
			k := o*numParams + p
			if filled[k] {
				return nil, fmt.Errorf("%w: duplicate entry (%d, %d)", errSchema, o, p)
			}
			filled[k] = true
			jac.Data[k] = val[i]
		}
		rows += len(obs)
	}
	if err := rdr.Err(); err != nil {
		return nil, fmt.Errorf("failed to read IPC stream: %w", err)
	}
	if rows != total {
		return nil, fmt.Errorf("%w: %d entries for a %dx%d jacobian", errSchema, rows, numObs, numParams)
	}
	return jac, nil
}
