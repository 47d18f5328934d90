package mme

import (
	"errors"
	"os"
	"testing"
	"time"

	apperrors "github.com/dramco-iot/mme1536/internal/errors"
)

// fakeBus is a recording bus backed by plain maps. It keeps the full
// sequence of control writes so tests can assert on protocol ordering, and
// it serves interrupts from a channel the test fills in.
type fakeBus struct {
	ctrl map[uint32]uint32
	data map[uint32]uint32

	ctrlWrites []ctrlWrite
	dataWrites int
	enables    int

	lastWaitDeadline time.Time

	irq chan uint32
}

type ctrlWrite struct {
	off uint32
	v   uint32
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		ctrl: make(map[uint32]uint32),
		data: make(map[uint32]uint32),
		irq:  make(chan uint32, 16),
	}
}

func (b *fakeBus) ReadCtrl(off uint32) uint32 { return b.ctrl[off] }

func (b *fakeBus) WriteCtrl(off uint32, v uint32) {
	b.ctrl[off] = v
	b.ctrlWrites = append(b.ctrlWrites, ctrlWrite{off, v})
}

func (b *fakeBus) ReadData(off uint32) uint32 { return b.data[off] }

func (b *fakeBus) WriteData(off uint32, v uint32) {
	b.data[off] = v
	b.dataWrites++
}

func (b *fakeBus) EnableInterrupt() error {
	b.enables++
	return nil
}

func (b *fakeBus) WaitInterrupt(deadline time.Time) (uint32, error) {
	b.lastWaitDeadline = deadline
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case n := <-b.irq:
		return n, nil
	case <-timer.C:
		return 0, os.ErrDeadlineExceeded
	}
}

func (b *fakeBus) Close() error { return nil }

// totalWrites counts every register write the device performed.
func (b *fakeBus) totalWrites() int { return len(b.ctrlWrites) + b.dataWrites }

// resetRecording drops the writes recorded so far (register state stays),
// discarding session-setup traffic so tests assert on protocol writes only.
func (b *fakeBus) resetRecording() {
	b.ctrlWrites = nil
	b.dataWrites = 0
}

func TestOpenReleasesResourcesOnFailure(t *testing.T) {
	_, err := Open(Config{
		UIOPath: "/nonexistent/uio",
		MemPath: "/nonexistent/mem",
	})
	if err == nil {
		t.Fatal("Open against missing device nodes should fail")
	}

	var initErr apperrors.InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected InitError, got %T: %v", err, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected the OS cause in the chain, got %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()

	if cfg.UIOPath != DefaultUIOPath {
		t.Errorf("UIOPath = %q, want %q", cfg.UIOPath, DefaultUIOPath)
	}
	if cfg.MemPath != DefaultMemPath {
		t.Errorf("MemPath = %q, want %q", cfg.MemPath, DefaultMemPath)
	}
	if cfg.DataBase != DefaultDataBase {
		t.Errorf("DataBase = 0x%x, want 0x%x", cfg.DataBase, int64(DefaultDataBase))
	}
}
