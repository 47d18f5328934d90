package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ncw/gmp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dramco-iot/mme1536/internal/cli"
	"github.com/dramco-iot/mme1536/internal/config"
	apperrors "github.com/dramco-iot/mme1536/internal/errors"
	"github.com/dramco-iot/mme1536/internal/logging"
	"github.com/dramco-iot/mme1536/internal/metrics"
	"github.com/dramco-iot/mme1536/internal/mme"
	"github.com/dramco-iot/mme1536/internal/mmesim"
	"github.com/dramco-iot/mme1536/internal/sysmon"
	"github.com/dramco-iot/mme1536/internal/words"
)

// Run executes the configured test run and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	switch {
	case a.Config.Verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case a.Config.Quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := logging.NewLogger(a.ErrWriter, "mmetest")

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	m := metrics.NewMetrics()
	if a.Config.MetricsAddr != "" {
		stopMetrics := a.serveMetrics(m, log)
		defer stopMetrics()
	}

	presenter := cli.NewPresenter(out, a.Config.Quiet, a.Config.Verbose)
	rec := &timeoutReporter{
		Recorder:  m,
		presenter: presenter,
		operation: a.Config.Operation,
		limit:     a.Config.Timeout,
	}

	device, err := a.openDevice(log, rec)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: cannot open accelerator: %v\n", err)
		return apperrors.ExitErrorDevice
	}
	defer device.Close()

	presenter.RunHeader(a.Config)

	start := time.Now()
	passed, failed := 0, 0

	for i := 0; i < a.Config.Iterations; i++ {
		if ctx.Err() != nil {
			fmt.Fprintf(a.ErrWriter, "Canceled after %d vector(s).\n", i)
			return apperrors.ExitErrorCanceled
		}

		presenter.StartVector(i, a.Config.Iterations)
		vecStart := time.Now()
		got, want, err := a.runVector(device, presenter)
		elapsed := time.Since(vecStart)
		if err != nil {
			presenter.VectorDone(i, elapsed, false)
			fmt.Fprintf(a.ErrWriter, "Error: vector %d: %v\n", i+1, err)
			return apperrors.ExitErrorGeneric
		}

		ok := words.Equal(got, want)
		presenter.VectorDone(i, elapsed, ok)
		if ok {
			passed++
		} else {
			failed++
			presenter.Mismatch(words.Hex(got), words.Hex(want))
		}
	}

	presenter.Summary(passed, failed, time.Since(start), sysmon.Sample())
	if failed > 0 {
		return apperrors.ExitErrorMismatch
	}
	return apperrors.ExitSuccess
}

// timeoutReporter fans completion-wait observations out to the metrics
// recorder and surfaces exhausted waits on the terminal.
type timeoutReporter struct {
	mme.Recorder
	presenter *cli.Presenter
	operation string
	limit     time.Duration
}

func (r *timeoutReporter) WaitObserved(d time.Duration, completed bool) {
	r.Recorder.WaitObserved(d, completed)
	if !completed {
		r.presenter.Timeout(r.operation, r.limit)
	}
}

// openDevice opens the configured accelerator: an injected bus first, the
// software model with -sim, the hardware otherwise.
func (a *Application) openDevice(log logging.Logger, rec mme.Recorder) (*mme.Device, error) {
	opts := []mme.Option{
		mme.WithLogger(log),
		mme.WithTimeout(a.Config.Timeout),
		mme.WithSettleDelay(a.Config.SettleDelay),
		mme.WithRecorder(rec),
	}
	if a.bus != nil {
		return mme.NewWithBus(a.bus, opts...), nil
	}
	if a.Config.Sim {
		return mme.NewWithBus(mmesim.New(), opts...), nil
	}
	return mme.Open(mme.Config{
		UIOPath:  a.Config.UIOPath,
		MemPath:  a.Config.MemPath,
		DataBase: int64(a.Config.DataBase),
	}, opts...)
}

// serveMetrics exposes the Prometheus endpoint and returns its shutdown
// function.
func (a *Application) serveMetrics(m *metrics.Metrics, log logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: a.Config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("metrics endpoint listening", logging.String("addr", a.Config.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics endpoint failed", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

// runVector runs one random test vector: the accelerator computes the
// configured operation while the software reference runs concurrently on
// the host; both results come back for comparison.
func (a *Application) runVector(d *mme.Device, p *cli.Presenter) (got, want []uint32, err error) {
	n, t := a.Config.Bits, a.Config.ExpBits

	m, err := words.RandomOdd(n)
	if err != nil {
		return nil, nil, apperrors.WrapError(err, "generate modulus")
	}
	mw := words.FromInt(m, n)
	p.Operand("m", words.Hex(mw))

	var g errgroup.Group

	switch a.Config.Operation {
	case config.OpMultiply:
		x, y := a.randOperand(m, n), a.randOperand(m, n)
		xw, yw := words.FromInt(x, n), words.FromInt(y, n)
		p.Operand("x", words.Hex(xw))
		p.Operand("y", words.Hex(yw))

		g.Go(func() error {
			var hwErr error
			got, hwErr = d.MultiplyMod(xw, yw, mw, n)
			return hwErr
		})
		g.Go(func() error {
			z := new(gmp.Int).Mul(x, y)
			want = words.FromInt(z.Mod(z, m), n)
			return nil
		})

	case config.OpExp:
		base := a.randOperand(m, n)
		e, _ := words.Random(t)
		gw, ew := words.FromInt(base, n), words.FromInt(e, t)
		p.Operand("g", words.Hex(gw))
		p.Operand("e", words.Hex(ew))

		g.Go(func() error {
			var hwErr error
			got, hwErr = d.ExpMod(gw, ew, t, mw, n)
			return hwErr
		})
		g.Go(func() error {
			want = words.FromInt(new(gmp.Int).Exp(base, e, m), n)
			return nil
		})

	case config.OpDualExp:
		g0, g1 := a.randOperand(m, n), a.randOperand(m, n)
		e0, _ := words.Random(t)
		e1, _ := words.Random(t)
		g0w, g1w := words.FromInt(g0, n), words.FromInt(g1, n)
		e0w, e1w := words.FromInt(e0, t), words.FromInt(e1, t)
		p.Operand("g0", words.Hex(g0w))
		p.Operand("g1", words.Hex(g1w))
		p.Operand("e0", words.Hex(e0w))
		p.Operand("e1", words.Hex(e1w))

		g.Go(func() error {
			var hwErr error
			got, hwErr = d.DualExpMod(g0w, e0w, g1w, e1w, t, mw, n)
			return hwErr
		})
		g.Go(func() error {
			z := new(gmp.Int).Exp(g0, e0, m)
			z.Mul(z, new(gmp.Int).Exp(g1, e1, m))
			want = words.FromInt(z.Mod(z, m), n)
			return nil
		})

	default:
		return nil, nil, apperrors.NewConfigError("unknown operation %q", a.Config.Operation)
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return got, want, nil
}

// randOperand draws a uniformly random value below m as a big integer.
func (a *Application) randOperand(m *gmp.Int, n int) *gmp.Int {
	x, err := words.Random(n)
	if err != nil {
		// crypto/rand failing is unrecoverable; surface it loudly.
		panic(fmt.Sprintf("random operand: %v", err))
	}
	return x.Mod(x, m)
}
