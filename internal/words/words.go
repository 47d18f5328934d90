// Package words converts between the accelerator's operand representation
// (little-endian arrays of 32-bit words, least-significant word first) and
// arbitrary-precision integers. The word order matches what the hardware
// expects in its operand memory.
package words

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/ncw/gmp"
)

// FromInt packs the absolute value of x into n/32 little-endian words.
// Bits of x beyond n are silently dropped; callers validate widths.
func FromInt(x *gmp.Int, n int) []uint32 {
	count := n / 32
	out := make([]uint32, count)
	b := x.Bytes() // big-endian, minimal length
	for i := 0; i < len(b); i++ {
		bit := (len(b) - 1 - i) * 8 // bit position of this byte's LSB
		w := bit / 32
		if w >= count {
			// Over-wide high byte; the remaining bytes are lower and
			// always land in range.
			continue
		}
		out[w] |= uint32(b[i]) << (bit % 32)
	}
	return out
}

// ToInt interprets a little-endian word array as a non-negative integer.
func ToInt(w []uint32) *gmp.Int {
	b := make([]byte, len(w)*4)
	for i, v := range w {
		// most-significant word first in the byte slice
		off := (len(w) - 1 - i) * 4
		b[off] = byte(v >> 24)
		b[off+1] = byte(v >> 16)
		b[off+2] = byte(v >> 8)
		b[off+3] = byte(v)
	}
	return new(gmp.Int).SetBytes(b)
}

// Hex renders a word array most-significant word first, matching how the
// board's bring-up tooling prints operands.
func Hex(w []uint32) string {
	var sb strings.Builder
	sb.WriteString("0x")
	for i := len(w) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%08x", w[i])
	}
	return sb.String()
}

// Equal reports whether two word arrays hold the same words.
func Equal(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Random returns a uniformly random integer of at most bits bits.
func Random(bits int) (*gmp.Int, error) {
	b := make([]byte, (bits+7)/8)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	if extra := len(b)*8 - bits; extra > 0 {
		b[0] &= 0xff >> extra
	}
	return new(gmp.Int).SetBytes(b), nil
}

// RandomOdd returns a random odd integer of exactly bits bits, suitable as
// a modulus for the Montgomery pipeline (the reduction requires m odd, and
// the full width must be populated so the pipeline part matches).
func RandomOdd(bits int) (*gmp.Int, error) {
	b := make([]byte, (bits+7)/8)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	if extra := len(b)*8 - bits; extra > 0 {
		b[0] &= 0xff >> extra
	}
	b[0] |= 0x80 >> uint(len(b)*8-bits) // top bit: exact bit length
	b[len(b)-1] |= 1                    // low bit: odd
	return new(gmp.Int).SetBytes(b), nil
}
