package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2lambda123/pennylane-lightning/internal/arrowio"
	"github.com/2lambda123/pennylane-lightning/internal/config"
	"github.com/2lambda123/pennylane-lightning/internal/logger"
	"github.com/2lambda123/pennylane-lightning/internal/monitoring"
	"github.com/2lambda123/pennylane-lightning/pkg/lightning"
)

var (
	configPath   = flag.String("config", "", "Path to YAML config file")
	qubits       = flag.Int("qubits", 12, "Number of qubits")
	layers       = flag.Int("layers", 4, "Number of RX/RY/CNOT layers")
	precision    = flag.String("precision", "", "complex64 or complex128 (overrides config)")
	repeat       = flag.Int("repeat", 5, "Timed repetitions per kernel")
	seed         = flag.Int64("seed", 1, "Seed for circuit parameters")
	outputFormat = flag.String("output", "text", "Output format (text or json)")
	metricsAddr  = flag.String("metrics", "", "Address to serve /metrics and /health (overrides config)")
	flightAddr   = flag.String("flight", "", "Arrow Flight address to export state and Jacobian (overrides config)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *precision != "" {
		if cfg.Precision, err = config.ParsePrecision(*precision); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *flightAddr != "" {
		cfg.FlightAddr = *flightAddr
	}
	if *qubits < 1 || *layers < 1 || *repeat < 1 {
		fmt.Fprintln(os.Stderr, "Error: -qubits, -layers and -repeat must be positive")
		flag.Usage()
		os.Exit(2)
	}

	if err := lightning.Initialize(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logger.Log.With("bench")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hm := monitoring.NewHealthMonitor()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := hm.Start(cfg.MetricsAddr); err != nil {
				log.Error("metrics server failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = hm.Shutdown(shutdownCtx)
		}()
	}

	opts := benchOptions{
		qubits:  *qubits,
		layers:  *layers,
		repeat:  *repeat,
		seed:    *seed,
		workers: cfg.AdjointWorkers,
	}
	if cfg.FlightAddr != "" {
		fe := arrowio.NewFlightExporter(cfg.FlightAddr)
		if err := fe.Connect(ctx); err != nil {
			log.Error("flight connect failed", "addr", cfg.FlightAddr, "err", err)
			os.Exit(1)
		}
		defer fe.Close()
		opts.exporter = fe
	}

	log.Info("benchmark starting", "qubits", *qubits, "layers", *layers, "precision", cfg.Precision.String())
	var out Output
	if cfg.Precision == config.Precision32 {
		out, err = runBench[complex64](ctx, opts)
	} else {
		out, err = runBench[complex128](ctx, opts)
	}
	if err != nil {
		log.Error("benchmark failed", "err", err)
		os.Exit(1)
	}
	hm.RecordAdjoint(time.Duration(out.AdjointSeconds * float64(time.Second)))
	hm.CheckMemory()

	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Error("failed to encode output", "err", err)
			os.Exit(1)
		}
		return
	}
	fmt.Printf("Circuit: %d qubits, %d layers, %d gates (%s)\n", out.Qubits, out.Layers, out.Gates, out.Precision)
	for _, k := range out.Kernels {
		fmt.Printf("  %-3s %.6fs/circuit  %.0f gates/s\n", k.Kernel, k.MeanSeconds, k.GatesPerSecond)
	}
	fmt.Printf("Adjoint: %dx%d Jacobian in %.6fs, |J| = %.6f\n", out.Observables, out.Parameters, out.AdjointSeconds, out.GradientNorm)
	if out.Exported {
		fmt.Printf("Exported state and Jacobian to %s\n", cfg.FlightAddr)
	}
}
