package mme

import (
	"fmt"
	"io"

	"github.com/dramco-iot/mme1536/internal/words"
)

// PrintInfo writes the core's address map and pipeline geometry to w.
// Diagnostic only.
func (d *Device) PrintInfo(w io.Writer) {
	fmt.Fprintln(w, "mont_mult1536 address map (data-space offsets):")
	for _, slot := range []Slot{Operand0, Operand1, Operand2, Operand3, ModulusSlot} {
		fmt.Fprintf(w, "  %-3s  0x%08x\n", slot, slot.offset())
	}
	fmt.Fprintf(w, "  exp  0x%08x\n", uint32(fifoOffset))
	fmt.Fprintln(w, "pipeline:")
	fmt.Fprintf(w, "  total words:      %d\n", WordsTotal)
	fmt.Fprintf(w, "  low part words:   %d\n", WordsLow)
	fmt.Fprintf(w, "  high part words:  %d\n", WordsHigh)
	fmt.Fprintf(w, "  high half offset: 0x%08x\n", uint32(highPartOffset))
}

// DumpOperands writes the full contents of the four operand slots to w,
// most significant word first. Diagnostic only; reads whatever the last
// completed operation left in the slots.
func (d *Device) DumpOperands(w io.Writer) error {
	for _, slot := range []Slot{Operand0, Operand1, Operand2, Operand3} {
		data, err := d.getOperand(slot, PartTotal)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %s\n", slot, words.Hex(data))
	}
	return nil
}
