package mme

import (
	"encoding/binary"
	"errors"
	"os"
	"time"

	apperrors "github.com/dramco-iot/mme1536/internal/errors"
	"github.com/dramco-iot/mme1536/internal/mmio"
)

// Bus is the register-level seam between the driver and the accelerator.
// The real implementation maps physical memory through /dev/mem and a UIO
// device; tests and the -sim mode substitute a software model of the core.
//
// All offsets are byte offsets. Ctrl accesses address the control page
// (control register + interrupt controller sub-block); Data accesses
// address the six-page operand/modulus/FIFO space.
type Bus interface {
	ReadCtrl(off uint32) uint32
	WriteCtrl(off uint32, v uint32)
	ReadData(off uint32) uint32
	WriteData(off uint32, v uint32)

	// EnableInterrupt re-arms completion notifications after a wait.
	EnableInterrupt() error
	// WaitInterrupt blocks until a completion notification arrives or the
	// deadline passes, returning the total interrupt count observed. A
	// missed deadline is reported as os.ErrDeadlineExceeded.
	WaitInterrupt(deadline time.Time) (uint32, error)

	Close() error
}

// Config holds the paths and addresses the real bus needs. The zero value
// is completed with the package defaults by Open.
type Config struct {
	// UIOPath is the UIO device node exposing the control page and the
	// interrupt channel.
	UIOPath string
	// MemPath is the physical-memory device backing the data-space mapping.
	MemPath string
	// DataBase is the physical base address of the core's data space.
	DataBase int64
}

func (c *Config) applyDefaults() {
	if c.UIOPath == "" {
		c.UIOPath = DefaultUIOPath
	}
	if c.MemPath == "" {
		c.MemPath = DefaultMemPath
	}
	if c.DataBase == 0 {
		c.DataBase = DefaultDataBase
	}
}

// uioBus drives the physical core.
type uioBus struct {
	memFile *os.File
	uioFile *os.File
	ctrl    *mmio.Region
	data    *mmio.Region
}

// openBus acquires the device resources in order, unwinding everything
// already acquired if a later step fails.
func openBus(cfg Config) (*uioBus, error) {
	cfg.applyDefaults()

	b := &uioBus{}
	fail := func(stage string, err error) (*uioBus, error) {
		b.Close()
		return nil, apperrors.NewInitError(stage, err)
	}

	var err error
	if b.memFile, err = os.OpenFile(cfg.MemPath, os.O_RDWR, 0); err != nil {
		return fail("open "+cfg.MemPath, err)
	}
	if b.data, err = mmio.Map(b.memFile, cfg.DataBase, DataSize); err != nil {
		return fail("map data space", err)
	}
	if b.uioFile, err = os.OpenFile(cfg.UIOPath, os.O_RDWR, 0); err != nil {
		return fail("open "+cfg.UIOPath, err)
	}
	if b.ctrl, err = mmio.Map(b.uioFile, 0, pageSize); err != nil {
		return fail("map control space", err)
	}

	// Arm the UIO notification channel. The core's interrupt gates are
	// opened by the session setup in NewWithBus.
	if err = b.EnableInterrupt(); err != nil {
		return fail("arm uio notifications", err)
	}

	return b, nil
}

func (b *uioBus) ReadCtrl(off uint32) uint32     { return b.ctrl.ReadWord(off) }
func (b *uioBus) WriteCtrl(off uint32, v uint32) { b.ctrl.WriteWord(off, v) }
func (b *uioBus) ReadData(off uint32) uint32     { return b.data.ReadWord(off) }
func (b *uioBus) WriteData(off uint32, v uint32) { b.data.WriteWord(off, v) }

// EnableInterrupt writes a 4-byte 1 to the UIO descriptor, re-arming
// notification delivery.
func (b *uioBus) EnableInterrupt() error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], 1)
	_, err := b.uioFile.Write(buf[:])
	return err
}

// WaitInterrupt performs one blocking read of the UIO interrupt counter
// bounded by the deadline.
func (b *uioBus) WaitInterrupt(deadline time.Time) (uint32, error) {
	if err := b.uioFile.SetReadDeadline(deadline); err != nil {
		return 0, err
	}
	var buf [4]byte
	if _, err := b.uioFile.Read(buf[:]); err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return 0, os.ErrDeadlineExceeded
		}
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// Close releases every acquired resource in reverse order of acquisition.
// Best effort: usable both as teardown and as the unwind path of a failed
// open.
func (b *uioBus) Close() error {
	if b.ctrl != nil {
		_ = b.ctrl.Close()
		b.ctrl = nil
	}
	if b.uioFile != nil {
		_ = b.uioFile.Close()
		b.uioFile = nil
	}
	if b.data != nil {
		_ = b.data.Close()
		b.data = nil
	}
	if b.memFile != nil {
		_ = b.memFile.Close()
		b.memFile = nil
	}
	return nil
}
