// Package mmesim models the mont_mult1536 accelerator in software, behind
// the same bus seam the physical core sits behind. It decodes the control
// word, executes Montgomery products over the selected pipeline part,
// consumes the exponent FIFO in auto-run mode bit pair by bit pair, and
// raises completion interrupts through the same enable gates as the
// hardware's interrupt controller.
//
// The model backs the driver's algorithm tests and the test application's
// -sim mode; it has no timing behavior beyond completing instantly.
package mmesim

import (
	"os"
	"sync"
	"time"

	"github.com/ncw/gmp"

	"github.com/dramco-iot/mme1536/internal/words"
)

// Register map of the modeled core. Mirrors the hardware data sheet: five
// operand pages plus the FIFO page in the data space, control word and
// interrupt controller in the control page.
const (
	pageSize = 0x1000

	modulusOffset = 0x0000
	fifoOffset    = 0x5000

	wordsLow   = 16
	wordsTotal = 48

	partShift = 30
	destShift = 28
	xShift    = 26
	yShift    = 24

	startBit   = 0x00800000
	autoRunBit = 0x00400000

	dgierOffset = 0x21C
	ipierOffset = 0x228

	gieMask = 0x80000000
)

// Core is a software model of the accelerator implementing mme.Bus.
type Core struct {
	mu sync.Mutex

	control uint32
	ipier   uint32
	dgier   uint32

	// slots[0] is the modulus, slots[1..4] are operands 0..3.
	slots [5][wordsTotal]uint32
	fifo  []uint32

	// latched holds the control word written with the start strobe
	// asserted; the operation runs on the strobe's falling edge.
	latched uint32

	irqCount uint32
	irqCh    chan uint32
}

// New returns an idle core with empty operand memory.
func New() *Core {
	return &Core{irqCh: make(chan uint32, 1024)}
}

// ReadCtrl returns the last value written to the control word. The
// interrupt controller registers read back their stored masks.
func (c *Core) ReadCtrl(off uint32) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch off {
	case ipierOffset:
		return c.ipier
	case dgierOffset:
		return c.dgier
	default:
		return c.control
	}
}

// WriteCtrl stores a control-page word. A control-word write with the
// start strobe asserted latches a command; the following write with the
// strobe cleared executes it.
func (c *Core) WriteCtrl(off uint32, v uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch off {
	case ipierOffset:
		c.ipier = v
	case dgierOffset:
		c.dgier = v
	default:
		c.control = v
		if v&startBit != 0 {
			c.latched = v
			return
		}
		if c.latched != 0 {
			cmd := c.latched
			c.latched = 0
			c.execute(cmd)
		}
	}
}

// ReadData returns a word of operand memory. FIFO reads yield zero.
func (c *Core) ReadData(off uint32) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	page := off / pageSize
	idx := (off % pageSize) / 4
	if page >= 5 || idx >= wordsTotal {
		return 0
	}
	return c.slots[page][idx]
}

// WriteData stores a word of operand memory or pushes a FIFO entry.
func (c *Core) WriteData(off uint32, v uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if off >= fifoOffset {
		c.fifo = append(c.fifo, v)
		return
	}
	page := off / pageSize
	idx := (off % pageSize) / 4
	if idx < wordsTotal {
		c.slots[page][idx] = v
	}
}

// EnableInterrupt re-arms notification delivery. The model never masks
// notifications, so this is a no-op.
func (c *Core) EnableInterrupt() error { return nil }

// WaitInterrupt blocks until a completion notification or the deadline.
func (c *Core) WaitInterrupt(deadline time.Time) (uint32, error) {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case n := <-c.irqCh:
		return n, nil
	case <-timer.C:
		return 0, os.ErrDeadlineExceeded
	}
}

// Close discards the core.
func (c *Core) Close() error { return nil }

// execute runs one latched command. Called with the lock held.
func (c *Core) execute(cmd uint32) {
	part := (cmd >> partShift) & 3
	width := partBits(part)
	if width == 0 {
		return
	}

	m := c.value(0, part)
	if cmd&autoRunBit != 0 {
		c.autoRun(part, m)
	} else {
		dest := (cmd >> destShift) & 3
		x := (cmd >> xShift) & 3
		y := (cmd >> yShift) & 3
		res := montMul(c.value(1+x, part), c.value(1+y, part), m, width)
		c.setValue(1+dest, part, res)
	}

	c.irqCount++
	if c.ipier&1 != 0 && c.dgier&gieMask != 0 {
		select {
		case c.irqCh <- c.irqCount:
		default:
		}
	}
}

// autoRun is the core's internal square-and-multiply state machine. It
// drains the exponent FIFO most-significant lane bit first, one bit pair
// per cycle: the accumulator in op3 is squared, then multiplied by op0
// (e0 bit alone), op1 (e1 bit alone) or op2 (both bits). All products are
// Montgomery products over the selected part.
func (c *Core) autoRun(part uint32, m *gmp.Int) {
	width := partBits(part)
	acc := c.value(1+3, part)
	g0 := c.value(1+0, part)
	g1 := c.value(1+1, part)
	g01 := c.value(1+2, part)

	for _, w := range c.fifo {
		for j := 15; j >= 0; j-- {
			b1 := (w >> (16 + uint(j))) & 1
			b0 := (w >> uint(j)) & 1
			acc = montMul(acc, acc, m, width)
			switch {
			case b0 == 1 && b1 == 1:
				acc = montMul(acc, g01, m, width)
			case b0 == 1:
				acc = montMul(acc, g0, m, width)
			case b1 == 1:
				acc = montMul(acc, g1, m, width)
			}
		}
	}
	c.fifo = c.fifo[:0]
	c.setValue(1+3, part, acc)
}

// value reads a slot's active word range for the given part selector.
func (c *Core) value(slot uint32, part uint32) *gmp.Int {
	lo, hi := partRange(part)
	return words.ToInt(c.slots[slot][lo:hi])
}

// setValue writes back into a slot's active word range only, as the
// pipeline does; inactive words keep their previous contents.
func (c *Core) setValue(slot uint32, part uint32, v *gmp.Int) {
	lo, hi := partRange(part)
	copy(c.slots[slot][lo:hi], words.FromInt(v, (hi-lo)*32))
}

func partBits(part uint32) int {
	switch part {
	case 1:
		return 512
	case 2:
		return 1024
	case 3:
		return 1536
	}
	return 0
}

func partRange(part uint32) (lo, hi int) {
	switch part {
	case 1:
		return 0, wordsLow
	case 2:
		return wordsLow, wordsTotal
	default:
		return 0, wordsTotal
	}
}

// montMul computes x*y*R^-1 mod m with R = 2^width, the primitive the
// pipeline implements. A zero or even modulus (for which no R inverse
// exists) yields zero, standing in for the undefined hardware result.
func montMul(x, y, m *gmp.Int, width int) *gmp.Int {
	if m.Sign() == 0 || m.Bytes()[len(m.Bytes())-1]&1 == 0 {
		return gmp.NewInt(0)
	}
	r := new(gmp.Int).Lsh(gmp.NewInt(1), uint(width))
	rInv := new(gmp.Int).ModInverse(r, m)
	if rInv == nil {
		return gmp.NewInt(0)
	}
	z := new(gmp.Int).Mul(x, y)
	z.Mul(z, rInv)
	return z.Mod(z, m)
}
