package mme

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestEncodeOperandLayout(t *testing.T) {
	low := make([]uint32, WordsLow)
	high := make([]uint32, WordsHigh)
	total := make([]uint32, WordsTotal)
	for i := range low {
		low[i] = uint32(i + 1)
	}
	for i := range high {
		high[i] = uint32(i + 1)
	}
	for i := range total {
		total[i] = uint32(i + 1)
	}

	t.Run("low occupies words 0-15, rest zero", func(t *testing.T) {
		buf := encodeOperand(low, PartLow)
		for i := 0; i < WordsLow; i++ {
			if buf[i] != low[i] {
				t.Fatalf("word %d = %d, want %d", i, buf[i], low[i])
			}
		}
		for i := WordsLow; i < WordsTotal; i++ {
			if buf[i] != 0 {
				t.Fatalf("word %d = %d, want zero fill", i, buf[i])
			}
		}
	})

	t.Run("high occupies words 16-47, rest zero", func(t *testing.T) {
		buf := encodeOperand(high, PartHigh)
		for i := 0; i < WordsLow; i++ {
			if buf[i] != 0 {
				t.Fatalf("word %d = %d, want zero fill", i, buf[i])
			}
		}
		for i := 0; i < WordsHigh; i++ {
			if buf[WordsLow+i] != high[i] {
				t.Fatalf("word %d = %d, want %d", WordsLow+i, buf[WordsLow+i], high[i])
			}
		}
	})

	t.Run("total copies all 48 words", func(t *testing.T) {
		buf := encodeOperand(total, PartTotal)
		for i := range buf {
			if buf[i] != total[i] {
				t.Fatalf("word %d = %d, want %d", i, buf[i], total[i])
			}
		}
	})
}

func TestSetGetOperandRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	for _, tc := range []struct {
		name string
		bits int
	}{
		{"low width", BitsLow},
		{"high width", BitsHigh},
		{"total width", BitsTotal},
	} {
		bits := tc.bits
		properties.Property(tc.name+" round trip is lossless", prop.ForAll(
			func(seed []uint32) bool {
				data := make([]uint32, bits/32)
				copy(data, seed)

				bus := newFakeBus()
				d := NewWithBus(bus, withTestLogger(t))
				for _, slot := range []Slot{Operand0, Operand1, Operand2, Operand3} {
					if err := d.SetOperand(slot, data, bits); err != nil {
						return false
					}
					back, err := d.GetOperand(slot, bits)
					if err != nil {
						return false
					}
					if len(back) != len(data) {
						return false
					}
					for i := range data {
						if back[i] != data[i] {
							return false
						}
					}
				}
				return true
			},
			gen.SliceOfN(bits/32, gen.UInt32()),
		))
	}

	properties.TestingRun(t)
}

func TestSetOperandRejectsWrongSizes(t *testing.T) {
	bus := newFakeBus()
	d := NewWithBus(bus, withTestLogger(t))
	bus.resetRecording()

	if err := d.SetOperand(Operand0, make([]uint32, WordsLow), 768); err == nil {
		t.Error("unsupported width should be rejected")
	}
	if err := d.SetOperand(Operand0, make([]uint32, WordsLow-1), BitsLow); err == nil {
		t.Error("short operand should be rejected")
	}
	if bus.totalWrites() != 0 {
		t.Errorf("rejections must not touch the bus, saw %d writes", bus.totalWrites())
	}
}

func TestGetOperandHighReadsHighHalfWindow(t *testing.T) {
	bus := newFakeBus()
	d := NewWithBus(bus, withTestLogger(t))

	data := make([]uint32, WordsHigh)
	for i := range data {
		data[i] = 0xA0000000 | uint32(i)
	}
	if err := d.SetOperand(Operand2, data, BitsHigh); err != nil {
		t.Fatalf("SetOperand: %v", err)
	}

	// The written image places the operand at words 16..47 of the slot;
	// the read must come back through the distinct high-half window.
	if got := bus.data[op2Offset+highPartOffset]; got != data[0] {
		t.Fatalf("word 0 of the high window = 0x%08x, want 0x%08x", got, data[0])
	}

	back, err := d.GetOperand(Operand2, BitsHigh)
	if err != nil {
		t.Fatalf("GetOperand: %v", err)
	}
	for i := range data {
		if back[i] != data[i] {
			t.Fatalf("word %d = 0x%08x, want 0x%08x", i, back[i], data[i])
		}
	}
}

func TestGetOperandRoutesReadPort(t *testing.T) {
	bus := newFakeBus()
	d := NewWithBus(bus, withTestLogger(t))
	bus.resetRecording()

	if _, err := d.GetOperand(Operand3, BitsLow); err != nil {
		t.Fatalf("GetOperand: %v", err)
	}
	if len(bus.ctrlWrites) == 0 {
		t.Fatal("read should route the slot onto the read port first")
	}
	if got, want := bus.ctrlWrites[0].v, uint32(3)<<destShift; got != want {
		t.Errorf("routing write = 0x%08x, want 0x%08x", got, want)
	}
}

func TestGetOperandModulusSlotRejected(t *testing.T) {
	bus := newFakeBus()
	d := NewWithBus(bus, withTestLogger(t))
	if _, err := d.GetOperand(ModulusSlot, BitsLow); err == nil {
		t.Error("modulus slot reads should be rejected")
	}
}
