package mme

import (
	"bytes"
	"testing"
	"time"

	"github.com/dramco-iot/mme1536/internal/logging"
)

// withTestLogger silences device logging in tests that don't inspect it.
func withTestLogger(t *testing.T) Option {
	t.Helper()
	return WithLogger(logging.Nop())
}

// captureLogger returns a device logger writing JSON lines into the
// returned buffer.
func captureLogger() (*bytes.Buffer, Option) {
	buf := &bytes.Buffer{}
	return buf, WithLogger(logging.NewLogger(buf, "mme"))
}

func TestNewWithBusDefaults(t *testing.T) {
	d := NewWithBus(newFakeBus(), withTestLogger(t))

	if d.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", d.timeout, DefaultTimeout)
	}
	if d.settle != DefaultSettleDelay {
		t.Errorf("settle = %v, want %v", d.settle, DefaultSettleDelay)
	}
	if d.Part() != 0 {
		t.Errorf("fresh session should have no active part, got %v", d.Part())
	}
	if d.ModulusBits() != 0 {
		t.Errorf("fresh session should have no modulus bits, got %d", d.ModulusBits())
	}
}

func TestNewWithBusArmsInterruptController(t *testing.T) {
	bus := newFakeBus()
	NewWithBus(bus, withTestLogger(t))

	if got := bus.ctrl[ipierOffset]; got != ipierEnableMask {
		t.Errorf("IPIER = 0x%08x, want 0x%08x", got, uint32(ipierEnableMask))
	}
	if got := bus.ctrl[dgierOffset]; got != gieMask {
		t.Errorf("DGIER = 0x%08x, want 0x%08x", got, uint32(gieMask))
	}
}

func TestDrainPendingConsumesStaleCount(t *testing.T) {
	bus := newFakeBus()
	bus.irq <- 4 // interrupts accumulated by an earlier session
	d := NewWithBus(bus, withTestLogger(t))

	before := time.Now()
	d.drainPending()

	if got := d.InterruptCount(); got != 4 {
		t.Errorf("InterruptCount = %d, want 4", got)
	}
	// A deadline at or before now fails the read without ever consuming
	// the pending count.
	if !bus.lastWaitDeadline.After(before) {
		t.Error("drain poll must carry a deadline in the future")
	}
}

func TestDrainPendingQuietChannel(t *testing.T) {
	bus := newFakeBus()
	d := NewWithBus(bus, withTestLogger(t))

	d.drainPending()

	if got := d.InterruptCount(); got != 0 {
		t.Errorf("InterruptCount = %d, want 0", got)
	}
}

func TestPartForBits(t *testing.T) {
	tests := []struct {
		bits    int
		want    Part
		wantErr bool
	}{
		{512, PartLow, false},
		{1024, PartHigh, false},
		{1536, PartTotal, false},
		{0, 0, true},
		{256, 0, true},
		{768, 0, true},
		{2048, 0, true},
	}

	for _, tt := range tests {
		got, err := PartForBits(tt.bits)
		if (err != nil) != tt.wantErr {
			t.Errorf("PartForBits(%d) error = %v, wantErr %v", tt.bits, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("PartForBits(%d) = %v, want %v", tt.bits, got, tt.want)
		}
	}
}

func TestPartGeometry(t *testing.T) {
	tests := []struct {
		part  Part
		bits  int
		words int
		name  string
	}{
		{PartLow, 512, 16, "low"},
		{PartHigh, 1024, 32, "high"},
		{PartTotal, 1536, 48, "total"},
	}

	for _, tt := range tests {
		if got := tt.part.Bits(); got != tt.bits {
			t.Errorf("%v.Bits() = %d, want %d", tt.part, got, tt.bits)
		}
		if got := tt.part.Words(); got != tt.words {
			t.Errorf("%v.Words() = %d, want %d", tt.part, got, tt.words)
		}
		if got := tt.part.String(); got != tt.name {
			t.Errorf("%v.String() = %q, want %q", tt.part, got, tt.name)
		}
	}
}

func TestSlotSelectorPanicsForModulus(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("selector() on the modulus slot should panic")
		}
	}()
	ModulusSlot.selector()
}
