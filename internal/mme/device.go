// Package mme implements the control protocol of the mont_mult1536
// accelerator: a fixed-function core performing Montgomery modular
// multiplication, modular exponentiation and simultaneous dual-base
// modular exponentiation over 512, 1024 or 1536-bit operands.
//
// A Device owns one accelerator instance. The protocol is strictly
// synchronous: every issued operation is followed by exactly one completion
// wait before the next command or any result read. A Device is not safe
// for concurrent use; callers serialize externally.
package mme

import (
	"time"

	"github.com/dramco-iot/mme1536/internal/logging"
)

// Recorder receives protocol-level observations. The default recorder
// discards them; the test application plugs in Prometheus collectors.
type Recorder interface {
	// OperationStarted is called once per issued command ("single", "auto").
	OperationStarted(kind string)
	// WaitObserved is called after each completion wait with its duration
	// and whether the interrupt arrived within the budget.
	WaitObserved(d time.Duration, completed bool)
}

type nopRecorder struct{}

func (nopRecorder) OperationStarted(string)          {}
func (nopRecorder) WaitObserved(time.Duration, bool) {}

// Device is the owning handle for one accelerator instance. It tracks the
// active modulus (pipeline part, bit length, cached R² constant) and the
// interrupt count observed at the end of the last wait.
type Device struct {
	bus Bus
	log logging.Logger
	rec Recorder

	timeout time.Duration
	settle  time.Duration

	prevInts uint32

	// ambient modulus state, set by UpdateModulus
	part  Part
	n     int
	words int
	r2    []uint32
}

// Option configures a Device during construction.
type Option func(*Device)

// WithLogger sets the device logger. The default logs to stderr.
func WithLogger(l logging.Logger) Option {
	return func(d *Device) { d.log = l }
}

// WithTimeout overrides the completion-wait budget.
func WithTimeout(t time.Duration) Option {
	return func(d *Device) { d.timeout = t }
}

// WithSettleDelay overrides the start-strobe settle delay. Shortening it
// below the hardware's latch time will silently drop operations.
func WithSettleDelay(s time.Duration) Option {
	return func(d *Device) { d.settle = s }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Device) { d.rec = r }
}

// Open maps the physical core described by cfg and returns a ready session.
// On any partial failure all acquired resources are released and an
// InitError is returned.
func Open(cfg Config, opts ...Option) (*Device, error) {
	bus, err := openBus(cfg)
	if err != nil {
		return nil, err
	}
	d := NewWithBus(bus, opts...)
	d.drainPending()
	return d, nil
}

// pendingDrainBudget bounds the startup poll that consumes interrupts left
// over from earlier sessions. A read with an already expired deadline
// fails without touching the notification channel, so the poll carries a
// small positive budget instead.
const pendingDrainBudget = time.Millisecond

// drainPending picks up the interrupt count accumulated before this
// session, so the first wait cannot complete on a stale notification.
func (d *Device) drainPending() {
	if count, err := d.bus.WaitInterrupt(time.Now().Add(pendingDrainBudget)); err == nil {
		d.prevInts = count
	}
}

// NewWithBus builds a session over an already constructed bus. Used by
// tests and the simulator path of the test application.
func NewWithBus(bus Bus, opts ...Option) *Device {
	d := &Device{
		bus:     bus,
		log:     logging.NewDefaultLogger(),
		rec:     nopRecorder{},
		timeout: DefaultTimeout,
		settle:  DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(d)
	}

	// The interrupt controller comes out of reset with both gates closed;
	// no completion ever fires until the source mask and the global enable
	// are opened.
	d.bus.WriteCtrl(ipierOffset, ipierEnableMask)
	d.bus.WriteCtrl(dgierOffset, gieMask)
	return d
}

// Part returns the active pipeline part, or zero before UpdateModulus.
func (d *Device) Part() Part { return d.part }

// ModulusBits returns the active modulus bit length, or zero before
// UpdateModulus.
func (d *Device) ModulusBits() int { return d.n }

// InterruptCount returns the interrupt count observed at the end of the
// last completed wait.
func (d *Device) InterruptCount() uint32 { return d.prevInts }

// Close releases the underlying bus. Best effort; the session is unusable
// afterwards.
func (d *Device) Close() error {
	return d.bus.Close()
}
