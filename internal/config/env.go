package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const envPrefix = "LIGHTNING_"

func envInt(name string, fallback int) (int, error) {
	raw := os.Getenv(envPrefix + name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s%s: %q", envPrefix, name, raw)
	}
	return v, nil
}

func envString(name, fallback string) string {
	if raw := os.Getenv(envPrefix + name); raw != "" {
		return raw
	}
	return fallback
}

// ApplyEnv overrides fields from LIGHTNING_* variables. LIGHTNING_DEFAULT_KERNELS
// takes comma-separated NAME=KERNEL pairs, e.g. "RX=PI,CNOT=LM".
func (c *Config) ApplyEnv() error {
	var err error
	if c.Workers, err = envInt("WORKERS", c.Workers); err != nil {
		return err
	}
	if c.ParallelThreshold, err = envInt("PARALLEL_THRESHOLD", c.ParallelThreshold); err != nil {
		return err
	}
	if c.AdjointWorkers, err = envInt("ADJOINT_WORKERS", c.AdjointWorkers); err != nil {
		return err
	}
	if raw := os.Getenv(envPrefix + "PRECISION"); raw != "" {
		if c.Precision, err = ParsePrecision(raw); err != nil {
			return err
		}
	}
	c.LogLevel = envString("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envString("LOG_FORMAT", c.LogFormat)
	c.MetricsAddr = envString("METRICS_ADDR", c.MetricsAddr)
	c.FlightAddr = envString("FLIGHT_ADDR", c.FlightAddr)

	if raw := os.Getenv(envPrefix + "DEFAULT_KERNELS"); raw != "" {
		if c.DefaultKernels == nil {
			c.DefaultKernels = make(map[string]string)
		}
		for _, pair := range strings.Split(raw, ",") {
			name, kernel, ok := strings.Cut(strings.TrimSpace(pair), "=")
			if !ok || name == "" {
				return fmt.Errorf("invalid %sDEFAULT_KERNELS entry: %q", envPrefix, pair)
			}
			c.DefaultKernels[name] = kernel
		}
	}
	return nil
}
