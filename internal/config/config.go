// Package config holds the test application's configuration: flag parsing,
// environment variable overrides and validation.
//
// Resolution chain (highest priority first):
//  1. CLI flags (-bits, -timeout, ...)
//  2. Environment variables (MME_BITS, MME_TIMEOUT, ...)
//  3. Static defaults
package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	apperrors "github.com/dramco-iot/mme1536/internal/errors"
	"github.com/dramco-iot/mme1536/internal/mme"
)

// EnvPrefix is prepended to every environment variable override key.
const EnvPrefix = "MME_"

// Operation names accepted by the -op flag.
const (
	OpMultiply = "multiply"
	OpExp      = "exp"
	OpDualExp  = "dualexp"
)

// AppConfig is the resolved configuration of one mmetest run.
type AppConfig struct {
	// Device access
	UIOPath     string
	MemPath     string
	DataBase    uint64
	Timeout     time.Duration
	SettleDelay time.Duration
	Sim         bool

	// Workload
	Operation  string
	Bits       int
	ExpBits    int
	Iterations int

	// Output and observability
	Verbose     bool
	Quiet       bool
	MetricsAddr string
}

// DefaultConfig returns the built-in defaults, targeting the board's
// device nodes and the bring-up geometry (512-bit operands, 32-bit
// exponents).
func DefaultConfig() AppConfig {
	return AppConfig{
		UIOPath:     mme.DefaultUIOPath,
		MemPath:     mme.DefaultMemPath,
		DataBase:    mme.DefaultDataBase,
		Timeout:     mme.DefaultTimeout,
		SettleDelay: mme.DefaultSettleDelay,
		Operation:   OpDualExp,
		Bits:        mme.BitsLow,
		ExpBits:     32,
		Iterations:  1,
	}
}

// ParseConfig parses command-line arguments into an AppConfig, applies
// environment variable overrides for flags left unset, and validates the
// result. Usage and error output goes to w.
func ParseConfig(args []string, w io.Writer) (AppConfig, error) {
	cfg := DefaultConfig()

	fs := flag.NewFlagSet("mmetest", flag.ContinueOnError)
	fs.SetOutput(w)

	fs.StringVar(&cfg.UIOPath, "uio", cfg.UIOPath, "UIO device node for completion interrupts")
	fs.StringVar(&cfg.MemPath, "mem", cfg.MemPath, "physical memory device node")
	fs.Func("data-base", fmt.Sprintf("physical base address of the data pages (default 0x%X)", cfg.DataBase), func(v string) error {
		parsed, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", v, err)
		}
		cfg.DataBase = parsed
		return nil
	})
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-operation completion wait budget")
	fs.DurationVar(&cfg.SettleDelay, "settle", cfg.SettleDelay, "control strobe settle delay")
	fs.BoolVar(&cfg.Sim, "sim", cfg.Sim, "run against the software model instead of the hardware")

	fs.StringVar(&cfg.Operation, "op", cfg.Operation, "operation to exercise: multiply, exp or dualexp")
	fs.IntVar(&cfg.Bits, "bits", cfg.Bits, "operand length in bits (512, 1024 or 1536)")
	fs.IntVar(&cfg.ExpBits, "exp-bits", cfg.ExpBits, "exponent length in bits (multiple of 32)")
	fs.IntVar(&cfg.Iterations, "iterations", cfg.Iterations, "number of random test vectors to run")

	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "enable debug logging")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable debug logging")
	fs.BoolVar(&cfg.Quiet, "q", cfg.Quiet, "suppress everything but the verdict")
	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "suppress everything but the verdict")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus listen address (empty disables the endpoint)")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	applyEnvOverrides(&cfg, fs)

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c AppConfig) Validate() error {
	switch c.Bits {
	case mme.BitsLow, mme.BitsHigh, mme.BitsTotal:
	default:
		return apperrors.NewConfigError("bits must be 512, 1024 or 1536, got %d", c.Bits)
	}
	if c.ExpBits <= 0 || c.ExpBits%32 != 0 {
		return apperrors.NewConfigError("exp-bits must be a positive multiple of 32, got %d", c.ExpBits)
	}
	switch c.Operation {
	case OpMultiply, OpExp, OpDualExp:
	default:
		return apperrors.NewConfigError("unknown operation %q", c.Operation)
	}
	if c.Iterations < 1 {
		return apperrors.NewConfigError("iterations must be at least 1, got %d", c.Iterations)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive")
	}
	if c.SettleDelay < 0 {
		return apperrors.NewConfigError("settle delay cannot be negative")
	}
	if !c.Sim {
		if c.UIOPath == "" {
			return apperrors.NewConfigError("uio device path cannot be empty")
		}
		if c.MemPath == "" {
			return apperrors.NewConfigError("memory device path cannot be empty")
		}
	}
	if c.Verbose && c.Quiet {
		return apperrors.NewConfigError("verbose and quiet are mutually exclusive")
	}
	return nil
}
