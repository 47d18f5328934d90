package mme

import (
	"errors"

	"github.com/ncw/gmp"

	"github.com/dramco-iot/mme1536/internal/logging"
	"github.com/dramco-iot/mme1536/internal/words"
)

// ErrNoModulus is returned by the ambient-modulus algorithms when
// UpdateModulus has not been called on the session.
var ErrNoModulus = errors.New("no modulus set: call UpdateModulus first")

// UpdateModulus selects the pipeline part for an n-bit modulus, writes m
// into the modulus slot and caches R² = 2^(2n) mod m for the session. Must
// be called before any ambient-modulus operation and again whenever the
// modulus changes. On an unsupported n the session state is left untouched.
func (d *Device) UpdateModulus(m []uint32, n int) error {
	part, err := PartForBits(n)
	if err != nil {
		d.log.Error("modulus rejected", err, logging.Int("bits", n))
		return err
	}

	d.part = part
	d.n = n
	d.words = n / 32
	d.r2 = computeR2(m, n)

	d.log.Info("modulus updated",
		logging.Int("bits", n),
		logging.String("part", part.String()))

	return d.setOperand(ModulusSlot, m, part)
}

// computeR2 derives the Montgomery constant R² = 2^(2n) mod m. This is the
// driver's only excursion into arbitrary-precision arithmetic; everything
// else is fixed-width word shuffling.
func computeR2(m []uint32, n int) []uint32 {
	mInt := words.ToInt(m)
	exp := gmp.NewInt(int64(2 * n))
	r2 := new(gmp.Int).Exp(gmp.NewInt(2), exp, mInt)
	return words.FromInt(r2, n)
}

// requireModulus guards the ambient-modulus entry points.
func (d *Device) requireModulus() error {
	if d.part == 0 {
		return ErrNoModulus
	}
	return nil
}
