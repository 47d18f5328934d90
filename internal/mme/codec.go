package mme

import (
	"fmt"
)

// Every operand slot physically holds the full 48-word pipeline width.
// Narrower operands occupy a contiguous sub-range: Low the low 16 words,
// High the upper 32, with the remainder force-zeroed on write. Reads of a
// High operand use the slot's distinct high-half address, not a word index.

// encodeOperand expands data into a full 48-word buffer laid out for the
// given part. len(data) must be part.Words().
func encodeOperand(data []uint32, part Part) []uint32 {
	buf := make([]uint32, WordsTotal)
	switch part {
	case PartLow:
		copy(buf[:WordsLow], data)
	case PartHigh:
		copy(buf[WordsLow:], data)
	case PartTotal:
		copy(buf, data)
	}
	return buf
}

// SetOperand writes an n-bit operand into the given slot, zero-filling the
// part of the slot the width does not cover.
func (d *Device) SetOperand(slot Slot, data []uint32, n int) error {
	part, err := PartForBits(n)
	if err != nil {
		return err
	}
	return d.setOperand(slot, data, part)
}

func (d *Device) setOperand(slot Slot, data []uint32, part Part) error {
	if len(data) != part.Words() {
		return fmt.Errorf("operand for %s has %d words, want %d", slot, len(data), part.Words())
	}
	base := slot.offset()
	for i, w := range encodeOperand(data, part) {
		d.bus.WriteData(base+uint32(i)*addrStep, w)
	}
	return nil
}

// GetOperand reads an n-bit operand back from the given slot.
func (d *Device) GetOperand(slot Slot, n int) ([]uint32, error) {
	part, err := PartForBits(n)
	if err != nil {
		return nil, err
	}
	return d.getOperand(slot, part)
}

func (d *Device) getOperand(slot Slot, part Part) ([]uint32, error) {
	if slot == ModulusSlot {
		return nil, fmt.Errorf("modulus slot is write-only")
	}

	base := slot.offset()
	if part == PartHigh {
		// The upper half of a slot is a separate physical window.
		base += highPartOffset
	}

	// Route the slot onto the read port before touching the data space.
	d.bus.WriteCtrl(ctrlOffset, slot.selector()<<destShift)

	out := make([]uint32, part.Words())
	for i := range out {
		out[i] = d.bus.ReadData(base + uint32(i)*addrStep)
	}
	return out, nil
}
