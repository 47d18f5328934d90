package mme

import (
	"fmt"
	"time"

	apperrors "github.com/dramco-iot/mme1536/internal/errors"
)

// Part selects which section of the 1536-bit Montgomery pipeline an
// operation runs on. The values are the hardware's own 2-bit selector
// encoding.
type Part int

const (
	PartLow   Part = 1 // low 512 bits of the pipeline
	PartHigh  Part = 2 // high 1024 bits of the pipeline
	PartTotal Part = 3 // the full 1536-bit pipeline
)

// Bit lengths of the three pipeline parts.
const (
	BitsLow   = 512
	BitsHigh  = 1024
	BitsTotal = BitsLow + BitsHigh
)

// Number of 32-bit words in each pipeline part.
const (
	WordsLow   = BitsLow / 32
	WordsHigh  = BitsHigh / 32
	WordsTotal = BitsTotal / 32
)

// PartForBits maps a modulus/operand bit length onto the pipeline part that
// carries it. Only the three hardware widths are accepted.
func PartForBits(n int) (Part, error) {
	switch n {
	case BitsLow:
		return PartLow, nil
	case BitsHigh:
		return PartHigh, nil
	case BitsTotal:
		return PartTotal, nil
	default:
		return 0, apperrors.UnsupportedWidthError{Bits: n}
	}
}

// Bits returns the part's operand width in bits.
func (p Part) Bits() int {
	switch p {
	case PartLow:
		return BitsLow
	case PartHigh:
		return BitsHigh
	case PartTotal:
		return BitsTotal
	}
	return 0
}

// Words returns the part's operand width in 32-bit words.
func (p Part) Words() int { return p.Bits() / 32 }

func (p Part) String() string {
	switch p {
	case PartLow:
		return "low"
	case PartHigh:
		return "high"
	case PartTotal:
		return "total"
	}
	return fmt.Sprintf("Part(%d)", int(p))
}

// Slot identifies one of the five fixed operand locations in the core's
// data memory: four general operands and the modulus.
type Slot int

const (
	Operand0 Slot = iota
	Operand1
	Operand2
	Operand3
	ModulusSlot
)

// offset returns the slot's byte offset within the data space.
func (s Slot) offset() uint32 {
	switch s {
	case Operand0:
		return op0Offset
	case Operand1:
		return op1Offset
	case Operand2:
		return op2Offset
	case Operand3:
		return op3Offset
	case ModulusSlot:
		return modulusOffset
	}
	panic(fmt.Sprintf("mme: invalid slot %d", int(s)))
}

// selector returns the slot's 2-bit control-register field value. The
// modulus slot has no selector; it can never be named in a command.
func (s Slot) selector() uint32 {
	if s < Operand0 || s > Operand3 {
		panic(fmt.Sprintf("mme: slot %d not addressable in the control register", int(s)))
	}
	return uint32(s)
}

func (s Slot) String() string {
	if s == ModulusSlot {
		return "m"
	}
	return fmt.Sprintf("op%d", int(s))
}

// Data-space layout: six 4 KiB pages at a fixed physical base. Word i of a
// slot lives at slot offset + i*addrStep; a slot's high half (words 16-47)
// starts at a distinct physical offset used by High-width reads.
const (
	pageSize  = 0x1000
	dataPages = 6

	// DataSize is the size of the data-space mapping in bytes.
	DataSize = pageSize * dataPages
	// DefaultDataBase is the physical base address of the data space.
	DefaultDataBase = 0xA0000000

	modulusOffset = 0x0000
	op0Offset     = 0x1000
	op1Offset     = 0x2000
	op2Offset     = 0x3000
	op3Offset     = 0x4000
	fifoOffset    = 0x5000

	addrStep       = 4
	highPartOffset = WordsLow * addrStep
)

// Control register layout. The command field occupies the top ten bits:
// part selector, destination, left operand, right operand (2 bits each),
// the start strobe and the auto-run flag.
const (
	ctrlOffset = 0x0

	partShift = 30
	destShift = 28
	xShift    = 26
	yShift    = 24

	startBit   = 0x00800000
	autoRunBit = 0x00400000

	commandMask = 0xFFC00000
)

// Interrupt controller sub-block within the control page.
const (
	intrSpaceOffset = 0x200
	dgierOffset     = intrSpaceOffset + 0x1C
	ipisrOffset     = intrSpaceOffset + 0x20
	ipierOffset     = intrSpaceOffset + 0x28

	ipierEnableMask = 0x00000001
	gieMask         = 0x80000000
)

// Timing contracts.
const (
	// DefaultTimeout is the completion-wait budget per operation.
	DefaultTimeout = 140 * time.Millisecond
	// DefaultSettleDelay separates the start-strobe assert and de-assert
	// writes. The core does not latch a same-cycle strobe.
	DefaultSettleDelay = time.Microsecond
)

// Default device paths.
const (
	DefaultUIOPath = "/dev/uio6"
	DefaultMemPath = "/dev/mem"
)
