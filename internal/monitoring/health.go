package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2lambda123/pennylane-lightning/internal/dispatch"
	"github.com/2lambda123/pennylane-lightning/internal/kernels"
	"github.com/2lambda123/pennylane-lightning/internal/logger"
	"github.com/2lambda123/pennylane-lightning/internal/metrics"
)

// Version is reported by /status.
var Version = "0.1.0"

// HealthStatus represents the health status of the process
type HealthStatus struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version"`
	Uptime    time.Duration `json:"uptime"`
	System    SystemInfo    `json:"system"`
	Simulator SimulatorInfo `json:"simulator"`
	Alerts    []Alert       `json:"alerts"`
}

// SystemInfo contains system-level information
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	NumCPU       int    `json:"num_cpu"`
	MemoryMB     int    `json:"memory_mb"`
	MemoryUsedMB int    `json:"memory_used_mb"`
}

// SimulatorInfo describes the live simulator resources.
type SimulatorInfo struct {
	StateVectorBytes  int64     `json:"state_vector_bytes"`
	Workers           int       `json:"workers"`
	ParallelThreshold int       `json:"parallel_threshold"`
	LastAdjoint       time.Time `json:"last_adjoint"`
}

// Alert represents a system alert
type Alert struct {
	Level      string     `json:"level"`     // info, warning, error, critical
	Component  string     `json:"component"` // memory, adjoint, kernel
	Message    string     `json:"message"`
	Timestamp  time.Time  `json:"timestamp"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

const maxAlerts = 100

// HealthMonitor serves health, metrics and kernel inventory endpoints.
type HealthMonitor struct {
	startTime   time.Time
	server      *http.Server
	mu          sync.RWMutex
	alerts      []Alert
	lastAdjoint time.Time
	log         *logger.Logger

	// MemoryAlertBytes raises a warning once tracked state memory exceeds it,
	// and an error past twice the limit.
	MemoryAlertBytes int64
	// SlowAdjoint raises a warning for adjoint runs slower than it, and an
	// error past twice the limit.
	SlowAdjoint time.Duration
}

func NewHealthMonitor() *HealthMonitor {
	return &HealthMonitor{
		startTime:        time.Now(),
		alerts:           make([]Alert, 0),
		log:              logger.Log.With("monitoring"),
		MemoryAlertBytes: 8 << 30,
		SlowAdjoint:      10 * time.Second,
	}
}

// Handler returns the monitor's routes.
func (hm *HealthMonitor) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", hm.handleHealth)
	mux.HandleFunc("/healthz", hm.handleHealth) // Kubernetes compatibility

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/status", hm.handleDetailedStatus)
	mux.HandleFunc("/kernels", hm.handleKernels)

	mux.HandleFunc("/admin/alerts", hm.handleAlerts)
	mux.HandleFunc("/admin/clear-alerts", hm.handleClearAlerts)
	return mux
}

// Start serves Handler on addr and blocks until the server stops.
func (hm *HealthMonitor) Start(addr string) error {
	hm.mu.Lock()
	hm.server = &http.Server{
		Addr:         addr,
		Handler:      hm.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	srv := hm.server
	hm.mu.Unlock()

	hm.log.Info("health monitor starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (hm *HealthMonitor) Shutdown(ctx context.Context) error {
	hm.mu.RLock()
	srv := hm.server
	hm.mu.RUnlock()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// RecordAdjoint notes a finished adjoint run and alerts on slow ones.
func (hm *HealthMonitor) RecordAdjoint(duration time.Duration) {
	hm.mu.Lock()
	hm.lastAdjoint = time.Now()
	hm.mu.Unlock()

	if hm.SlowAdjoint <= 0 || duration <= hm.SlowAdjoint {
		return
	}
	level := "warning"
	if duration > 2*hm.SlowAdjoint {
		level = "error"
	}
	hm.AddAlert(level, "adjoint", fmt.Sprintf("Slow adjoint jacobian: %s", duration))
}

// CheckMemory compares tracked state memory against MemoryAlertBytes.
func (hm *HealthMonitor) CheckMemory() {
	bytes := metrics.StateBytes()
	if hm.MemoryAlertBytes <= 0 || bytes <= hm.MemoryAlertBytes {
		return
	}
	level := "warning"
	if bytes > 2*hm.MemoryAlertBytes {
		level = "error"
	}
	hm.AddAlert(level, "memory",
		fmt.Sprintf("High state vector memory: %d MB", bytes/(1024*1024)))
}

func (hm *HealthMonitor) AddAlert(level, component, message string) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	hm.alerts = append(hm.alerts, Alert{
		Level:     level,
		Component: component,
		Message:   message,
		Timestamp: time.Now(),
	})
	if len(hm.alerts) > maxAlerts {
		hm.alerts = hm.alerts[1:]
	}

	hm.log.Warn("alert raised", "level", level, "component", component, "message", message)
}

func (hm *HealthMonitor) ResolveAlert(index int) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	if index >= 0 && index < len(hm.alerts) {
		now := time.Now()
		hm.alerts[index].Resolved = true
		hm.alerts[index].ResolvedAt = &now
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (hm *HealthMonitor) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := hm.Status()

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{
		"status":    status.Status,
		"timestamp": status.Timestamp.Format(time.RFC3339),
	})
}

func (hm *HealthMonitor) handleDetailedStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, hm.Status())
}

// handleKernels reports the kernel inventory; ?precision=complex64 selects
// the single-precision dispatcher.
func (hm *HealthMonitor) handleKernels(w http.ResponseWriter, r *http.Request) {
	var inv []dispatch.KernelInventory
	switch p := r.URL.Query().Get("precision"); p {
	case "", "complex128":
		inv = dispatch.For[complex128]().Inventory()
	case "complex64":
		inv = dispatch.For[complex64]().Inventory()
	default:
		http.Error(w, fmt.Sprintf("unknown precision %q", p), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (hm *HealthMonitor) handleAlerts(w http.ResponseWriter, r *http.Request) {
	hm.mu.RLock()
	alerts := make([]Alert, len(hm.alerts))
	copy(alerts, hm.alerts)
	hm.mu.RUnlock()

	writeJSON(w, http.StatusOK, alerts)
}

func (hm *HealthMonitor) handleClearAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hm.mu.Lock()
	hm.alerts = hm.alerts[:0]
	hm.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "alerts cleared"})
}

// Status computes the current health. Unresolved error alerts degrade it,
// unresolved critical alerts make it critical.
func (hm *HealthMonitor) Status() HealthStatus {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	status := "healthy"
	for _, alert := range hm.alerts {
		if alert.Resolved {
			continue
		}
		if alert.Level == "critical" {
			status = "critical"
			break
		}
		if alert.Level == "error" {
			status = "degraded"
		}
	}

	alerts := make([]Alert, len(hm.alerts))
	copy(alerts, hm.alerts)

	opts := kernels.CurrentOptions()
	return HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(hm.startTime),
		System:    systemInfo(),
		Simulator: SimulatorInfo{
			StateVectorBytes:  metrics.StateBytes(),
			Workers:           opts.Workers,
			ParallelThreshold: opts.ParallelThreshold,
			LastAdjoint:       hm.lastAdjoint,
		},
		Alerts: alerts,
	}
}

func systemInfo() SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemInfo{
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
		NumCPU:       runtime.NumCPU(),
		MemoryMB:     int(m.Sys / 1024 / 1024),
		MemoryUsedMB: int(m.Alloc / 1024 / 1024),
	}
}
