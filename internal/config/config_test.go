package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/kernels"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Precision != Precision64 {
		t.Errorf("expected Precision64, got %v", cfg.Precision)
	}
	if cfg.Workers <= 0 {
		t.Errorf("expected positive Workers, got %d", cfg.Workers)
	}
	if cfg.ParallelThreshold != 1<<14 {
		t.Errorf("expected ParallelThreshold 16384, got %d", cfg.ParallelThreshold)
	}
	if cfg.LogFormat != "console" {
		t.Errorf("expected console log format, got %q", cfg.LogFormat)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"invalid workers", func(c *Config) { c.Workers = 0 }, true},
		{"invalid threshold", func(c *Config) { c.ParallelThreshold = -1 }, true},
		{"invalid adjoint workers", func(c *Config) { c.AdjointWorkers = 0 }, true},
		{"invalid precision", func(c *Config) { c.Precision = Precision(7) }, true},
		{"invalid log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"valid kernel override", func(c *Config) { c.DefaultKernels = map[string]string{"RX": "PI"} }, false},
		{"unknown gate override", func(c *Config) { c.DefaultKernels = map[string]string{"Foo": "PI"} }, true},
		{"unknown kernel override", func(c *Config) { c.DefaultKernels = map[string]string{"RX": "AVX"} }, true},
		{"unnamed kernel override", func(c *Config) { c.DefaultKernels = map[string]string{"RX": ""} }, true},
		{"generator override", func(c *Config) { c.DefaultKernels = map[string]string{"GeneratorCRX": "LM"} }, false},
		{"matrix override", func(c *Config) { c.DefaultKernels = map[string]string{"MultiQubitOp": "PI"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParsePrecision(t *testing.T) {
	tests := []struct {
		in      string
		want    Precision
		wantErr bool
	}{
		{"complex128", Precision64, false},
		{"double", Precision64, false},
		{"", Precision64, false},
		{"complex64", Precision32, false},
		{"FP32", Precision32, false},
		{"half", Precision64, true},
	}
	for _, tt := range tests {
		got, err := ParsePrecision(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePrecision(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lightning.yaml")
	data := []byte(`precision: complex64
workers: 3
parallel_threshold: 64
adjoint_workers: 2
log_level: debug
log_format: json
default_kernels:
  RX: PI
  GeneratorRX: PI
  SingleQubitOp: PI
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Precision != Precision32 || cfg.Workers != 3 || cfg.ParallelThreshold != 64 || cfg.AdjointWorkers != 2 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.LogFormat != "json" || cfg.LogLevel != "debug" {
		t.Errorf("unexpected logging %q %q", cfg.LogLevel, cfg.LogFormat)
	}

	opts, err := cfg.DispatchOptions()
	if err != nil {
		t.Fatalf("DispatchOptions: %v", err)
	}
	if opts.GateKernels[gates.RX] != kernels.KernelPI {
		t.Errorf("expected RX on PI, got %v", opts.GateKernels)
	}
	if opts.GeneratorKernels[gates.GeneratorRX] != kernels.KernelPI {
		t.Errorf("expected GeneratorRX on PI, got %v", opts.GeneratorKernels)
	}
	if opts.MatrixKernels[gates.SingleQubitOp] != kernels.KernelPI {
		t.Errorf("expected SingleQubitOp on PI, got %v", opts.MatrixKernels)
	}

	ko := cfg.KernelOptions()
	if ko.Workers != 3 || ko.ParallelThreshold != 64 {
		t.Errorf("unexpected kernel options %+v", ko)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("precision: half\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid precision")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LIGHTNING_WORKERS", "5")
	t.Setenv("LIGHTNING_PRECISION", "single")
	t.Setenv("LIGHTNING_LOG_FORMAT", "json")
	t.Setenv("LIGHTNING_FLIGHT_ADDR", "localhost:8815")
	t.Setenv("LIGHTNING_DEFAULT_KERNELS", "CNOT=PI, RY=LM")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 5 || cfg.Precision != Precision32 || cfg.LogFormat != "json" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.FlightAddr != "localhost:8815" {
		t.Errorf("expected flight addr override, got %q", cfg.FlightAddr)
	}
	if cfg.DefaultKernels["CNOT"] != "PI" || cfg.DefaultKernels["RY"] != "LM" {
		t.Errorf("unexpected kernel overrides %v", cfg.DefaultKernels)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"LIGHTNING_WORKERS", "many"},
		{"LIGHTNING_PRECISION", "quad"},
		{"LIGHTNING_DEFAULT_KERNELS", "RX"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg := Default()
			if err := cfg.ApplyEnv(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
