package arrowio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/2lambda123/pennylane-lightning/internal/adjoint"
	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/logger"
	"github.com/2lambda123/pennylane-lightning/internal/metrics"
	"github.com/2lambda123/pennylane-lightning/internal/statevector"
)

// Exporter ships a record to a named path.
type Exporter interface {
	Export(ctx context.Context, path string, rec arrow.Record) error
}

// ExportState sends sv under the "state" path.
func ExportState[C gates.Complex](ctx context.Context, e Exporter, sv *statevector.StateVector[C]) error {
	rec := StateRecord(memory.DefaultAllocator, sv)
	defer rec.Release()
	if err := e.Export(ctx, KindState, rec); err != nil {
		return err
	}
	metrics.RecordExport(KindState, 1)
	return nil
}

// ExportJacobian sends jac under the "jacobian" path.
func ExportJacobian(ctx context.Context, e Exporter, jac *adjoint.Jacobian) error {
	rec := JacobianRecord(memory.DefaultAllocator, jac)
	defer rec.Release()
	if err := e.Export(ctx, KindJacobian, rec); err != nil {
		return err
	}
	metrics.RecordExport(KindJacobian, 1)
	return nil
}

// FlightExporter sends records to an Arrow Flight server with DoPut.
type FlightExporter struct {
	addr    string
	client  flight.Client
	mem     memory.Allocator
	timeout time.Duration
}

func NewFlightExporter(addr string) *FlightExporter {
	return &FlightExporter{
		addr:    addr,
		mem:     memory.NewGoAllocator(),
		timeout: 30 * time.Second,
	}
}

// Connect prepares the gRPC connection. Dialing is lazy, so an unreachable
// server is reported by the first Export.
func (fe *FlightExporter) Connect(ctx context.Context) error {
	conn, err := grpc.NewClient(fe.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to create Flight client: %w", err)
	}
	fe.client = flight.NewClientFromConn(conn, nil)
	logger.Log.With("arrowio").Debug("flight exporter connected", "addr", fe.addr)
	return nil
}

func (fe *FlightExporter) Close() error {
	if fe.client == nil {
		return nil
	}
	err := fe.client.Close()
	fe.client = nil
	return err
}

func (fe *FlightExporter) Export(ctx context.Context, path string, rec arrow.Record) error {
	if fe.client == nil {
		return fmt.Errorf("client not connected, call Connect() first")
	}
	ctx, cancel := context.WithTimeout(ctx, fe.timeout)
	defer cancel()

	stream, err := fe.client.DoPut(ctx)
	if err != nil {
		return fmt.Errorf("failed to create DoPut stream: %w", err)
	}
	w := flight.NewRecordWriter(stream, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(fe.mem))
	w.SetFlightDescriptor(&flight.FlightDescriptor{Type: flight.DescriptorPATH, Path: []string{path}})
	if err := w.Write(rec); err != nil {
		w.Close()
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		return fmt.Errorf("failed to close DoPut stream: %w", err)
	}
	for {
		if _, err := stream.Recv(); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("DoPut failed: %w", err)
		}
	}

	logger.Log.With("arrowio").Debug("record exported", "path", path, "rows", rec.NumRows())
	return nil
}

// MockExporter keeps exported records in memory.
type MockExporter struct {
	mu      sync.RWMutex
	records map[string][]arrow.Record
	// Err, when set, is returned by every Export.
	Err error
}

func NewMockExporter() *MockExporter {
	return &MockExporter{records: make(map[string][]arrow.Record)}
}

func (m *MockExporter) Export(ctx context.Context, path string, rec arrow.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	rec.Retain()
	m.records[path] = append(m.records[path], rec)
	return nil
}

// Records returns the records exported under path.
func (m *MockExporter) Records(path string) []arrow.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]arrow.Record(nil), m.records[path]...)
}

// Reset releases every stored record.
func (m *MockExporter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, recs := range m.records {
		for _, rec := range recs {
			rec.Release()
		}
	}
	m.records = make(map[string][]arrow.Record)
}
