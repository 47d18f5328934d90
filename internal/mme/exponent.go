package mme

import (
	"fmt"

	apperrors "github.com/dramco-iot/mme1536/internal/errors"
)

// validateExponentLength rejects exponent bit lengths the FIFO encoding
// cannot carry. Checked before any register write.
func validateExponentLength(t int) error {
	if t <= 0 || t%32 != 0 {
		return apperrors.ExponentLengthError{Bits: t}
	}
	return nil
}

// setExponent streams one or two exponents into the core's FIFO, most
// significant word first. Each 32-bit exponent word becomes two FIFO words
// carrying 16-bit lanes: e1's half in the upper lane, e0's half in the
// lower. With a single exponent (e1 nil) the upper lane stays zero, so the
// core's second rail never fires.
func (d *Device) setExponent(e0, e1 []uint32, t int) error {
	if err := validateExponentLength(t); err != nil {
		return err
	}
	count := t / 32
	if len(e0) < count {
		return fmt.Errorf("e0 has %d words, need %d for %d bits", len(e0), count, t)
	}
	if e1 != nil && len(e1) < count {
		return fmt.Errorf("e1 has %d words, need %d for %d bits", len(e1), count, t)
	}

	for i := count - 1; i >= 0; i-- {
		var hi, lo uint32
		if e1 == nil {
			hi = (e0[i] & 0xffff0000) >> 16
			lo = e0[i] & 0x0000ffff
		} else {
			hi = (e1[i] & 0xffff0000) | ((e0[i] & 0xffff0000) >> 16)
			lo = ((e1[i] & 0x0000ffff) << 16) | (e0[i] & 0x0000ffff)
		}
		d.bus.WriteData(fifoOffset, hi)
		d.bus.WriteData(fifoOffset, lo)
	}
	return nil
}
