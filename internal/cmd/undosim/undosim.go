// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undosim

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"code.hybscloud.com/undo"
	"code.hybscloud.com/undo/internal/platform/otel"
	"code.hybscloud.com/undo/internal/scenario"
)

// Config holds undosim command configuration.
type Config struct {
	Scenario     string        `env:"UNDOSIM_SCENARIO"`
	Capacity     int           `env:"UNDOSIM_SIGNAL_CAPACITY" envDefault:"8"`
	Assertions   bool          `env:"UNDOSIM_ASSERT"          envDefault:"true"`
	Verbose      bool          `env:"UNDOSIM_VERBOSE"`
	Timeout      time.Duration `env:"UNDOSIM_TIMEOUT"         envDefault:"10s"`
	OTelEndpoint string        `env:"UNDOSIM_OTEL_ENDPOINT"`
	OTelDisabled bool          `env:"UNDOSIM_OTEL_DISABLED"`
}

// ParseConfig reads the environment, then lets flags override it.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to a scenario lua file or a directory of them")
	fs.IntVar(&cfg.Capacity, "capacity", cfg.Capacity, "signal inbox capacity")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "fail on expectation mismatches (disable to log them)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log every tick")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per scenario")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads and plays every configured scenario, printing one result line
// per scenario to out. It returns an error if any scenario fails.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Scenario == "" {
		return errors.New("scenario path is required")
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = undo.DefaultSignalCapacity
	}

	shutdown, err := otel.Setup(ctx, otel.Config{
		ServiceName: "undosim",
		Endpoint:    cfg.OTelEndpoint,
		Disabled:    cfg.OTelDisabled,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer shutdown(context.WithoutCancel(ctx))

	paths, err := scenarioPaths(cfg.Scenario)
	if err != nil {
		return err
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}
	logger := log.New(errOut, "", 0)

	var failed int
	for _, path := range paths {
		report, err := runOne(ctx, path, cfg.Timeout, scenario.Options{
			SignalCapacity: cfg.Capacity,
			Assertions:     mode,
			Verbose:        cfg.Verbose,
			Logger:         logger,
		})
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL\t%s\t%v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "ok\t%s\tticks=%d cursor=%d replayed=%d mismatches=%d\n",
			report.Name, report.Ticks, report.Cursor, len(report.Replayed), report.Mismatches)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(paths))
	}
	return nil
}

func runOne(ctx context.Context, path string, timeout time.Duration, opts scenario.Options) (scenario.Report, error) {
	sc, err := scenario.Load(path)
	if err != nil {
		return scenario.Report{}, err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return scenario.Run(ctx, sc, opts)
}

// scenarioPaths expands a directory into its *.lua files in name order.
func scenarioPaths(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat scenario: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	paths, err := filepath.Glob(filepath.Join(path, "*.lua"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios in %s", path)
	}
	return paths, nil
}
