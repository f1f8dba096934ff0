package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/2lambda123/pennylane-lightning/internal/dispatch"
	"github.com/2lambda123/pennylane-lightning/internal/gates"
	"github.com/2lambda123/pennylane-lightning/internal/kernels"
)

type Precision int

const (
	Precision64 Precision = iota
	Precision32
)

func (p Precision) String() string {
	if p == Precision32 {
		return "complex64"
	}
	return "complex128"
}

// ParsePrecision accepts "complex128"/"double"/"64" and "complex64"/"single"/"32".
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "complex128", "double", "64", "fp64":
		return Precision64, nil
	case "complex64", "single", "32", "fp32":
		return Precision32, nil
	}
	return Precision64, fmt.Errorf("invalid precision: %q (must be complex64 or complex128)", s)
}

func (p *Precision) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParsePrecision(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Precision) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

type Config struct {
	Precision Precision `yaml:"precision"`

	// Workers bounds the goroutines used inside one gate application.
	Workers int `yaml:"workers"`
	// ParallelThreshold is the block count at which gate loops are split.
	ParallelThreshold int `yaml:"parallel_threshold"`
	// AdjointWorkers bounds per-observable parallelism in the adjoint sweep.
	AdjointWorkers int `yaml:"adjoint_workers"`

	// DefaultKernels overrides the kernel chosen for a gate, generator or
	// matrix routine, keyed by name ("RX", "GeneratorRX", "TwoQubitOp").
	DefaultKernels map[string]string `yaml:"default_kernels"`

	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsAddr string `yaml:"metrics_addr"`
	FlightAddr  string `yaml:"flight_addr"`
}

func (c *Config) Validate() error {
	if c.Precision != Precision64 && c.Precision != Precision32 {
		return fmt.Errorf("invalid precision: %d", c.Precision)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("invalid workers: %d (must be positive)", c.Workers)
	}
	if c.ParallelThreshold <= 0 {
		return fmt.Errorf("invalid parallel_threshold: %d (must be positive)", c.ParallelThreshold)
	}
	if c.AdjointWorkers <= 0 {
		return fmt.Errorf("invalid adjoint_workers: %d (must be positive)", c.AdjointWorkers)
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log_format: %q (must be console or json)", c.LogFormat)
	}
	for name, kernel := range c.DefaultKernels {
		if _, err := ResolveOperation(name); err != nil {
			return fmt.Errorf("invalid default_kernels entry %q: %w", name, err)
		}
		k, err := kernels.ParseKernel(kernel)
		if err != nil {
			return fmt.Errorf("invalid default_kernels entry %q: %w", name, err)
		}
		if k == kernels.KernelDefault {
			return fmt.Errorf("invalid default_kernels entry %q: kernel must be named", name)
		}
	}
	return nil
}

// OperationRef names one of the three kinds of dispatchable operation.
type OperationRef struct {
	Gate      *gates.GateOperation
	Generator *gates.GeneratorOperation
	Matrix    *gates.MatrixOperation
}

// ResolveOperation maps a DefaultKernels key to the operation it names.
func ResolveOperation(name string) (OperationRef, error) {
	for _, m := range gates.AllMatrixOps() {
		if m.String() == name {
			return OperationRef{Matrix: &m}, nil
		}
	}
	if strings.HasPrefix(name, "Generator") {
		g, err := gates.GeneratorFromName(name)
		if err != nil {
			return OperationRef{}, err
		}
		return OperationRef{Generator: &g}, nil
	}
	op, err := gates.GateFromName(name)
	if err != nil {
		return OperationRef{}, err
	}
	return OperationRef{Gate: &op}, nil
}

// DispatchOptions converts DefaultKernels into dispatcher overrides.
func (c *Config) DispatchOptions() (dispatch.Options, error) {
	opts := dispatch.Options{
		GateKernels:      make(map[gates.GateOperation]kernels.KernelType),
		GeneratorKernels: make(map[gates.GeneratorOperation]kernels.KernelType),
		MatrixKernels:    make(map[gates.MatrixOperation]kernels.KernelType),
	}
	for name, kernel := range c.DefaultKernels {
		ref, err := ResolveOperation(name)
		if err != nil {
			return opts, err
		}
		k, err := kernels.ParseKernel(kernel)
		if err != nil {
			return opts, err
		}
		switch {
		case ref.Gate != nil:
			opts.GateKernels[*ref.Gate] = k
		case ref.Generator != nil:
			opts.GeneratorKernels[*ref.Generator] = k
		case ref.Matrix != nil:
			opts.MatrixKernels[*ref.Matrix] = k
		}
	}
	return opts, nil
}

// KernelOptions returns the kernel parallelism settings.
func (c *Config) KernelOptions() kernels.Options {
	return kernels.Options{
		Workers:           c.Workers,
		ParallelThreshold: c.ParallelThreshold,
	}
}

func Default() Config {
	return Config{
		Precision:         Precision64,
		Workers:           runtime.NumCPU(),
		ParallelThreshold: kernels.DefaultOptions().ParallelThreshold,
		AdjointWorkers:    runtime.NumCPU(),
		DefaultKernels:    map[string]string{},
		LogLevel:          "info",
		LogFormat:         "console",
		MetricsAddr:       ":9090",
	}
}

// Load reads a YAML file over Default(), then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
