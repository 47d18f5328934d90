package mme

// The algorithm layer sequences the codec, the sequencer, the exponent
// streamer and the waiter into the three computations the core supports.
// Each exists in two variants: the ambient form uses the modulus installed
// by UpdateModulus and the session's cached R²; the Mod form takes modulus
// and width as parameters, derives R² locally and leaves the session's
// modulus state untouched. Both produce identical results for equal inputs.
//
// A timed-out completion wait does not abort a computation: the protocol
// carries on and the returned words are whatever the destination slot held,
// which may not reflect a finished operation. The waiter logs the timeout.

// Multiply computes x*y mod m for the ambient modulus, as two chained
// Montgomery products: t = x*y*R^-1, then t*R²*R^-1 = x*y.
func (d *Device) Multiply(x, y []uint32) ([]uint32, error) {
	if err := d.requireModulus(); err != nil {
		return nil, err
	}
	return d.multiply(d.part, d.r2, x, y)
}

// MultiplyMod computes x*y mod m for an explicit n-bit modulus.
func (d *Device) MultiplyMod(x, y, m []uint32, n int) ([]uint32, error) {
	part, err := PartForBits(n)
	if err != nil {
		return nil, err
	}
	if err := d.setOperand(ModulusSlot, m, part); err != nil {
		return nil, err
	}
	return d.multiply(part, computeR2(m, n), x, y)
}

// Exp computes g^e mod m for the ambient modulus. t is the exponent length
// in bits and must be a multiple of 32.
func (d *Device) Exp(g, e []uint32, t int) ([]uint32, error) {
	if err := d.requireModulus(); err != nil {
		return nil, err
	}
	return d.exponentiate(d.part, d.r2, g, e, t)
}

// ExpMod computes g^e mod m for an explicit n-bit modulus.
func (d *Device) ExpMod(g, e []uint32, t int, m []uint32, n int) ([]uint32, error) {
	part, err := PartForBits(n)
	if err != nil {
		return nil, err
	}
	if err := validateExponentLength(t); err != nil {
		return nil, err
	}
	if err := d.setOperand(ModulusSlot, m, part); err != nil {
		return nil, err
	}
	return d.exponentiate(part, computeR2(m, n), g, e, t)
}

// DualExp computes g0^e0 * g1^e1 mod m for the ambient modulus in a single
// auto-run pass. Both exponents are t bits long.
func (d *Device) DualExp(g0, e0, g1, e1 []uint32, t int) ([]uint32, error) {
	if err := d.requireModulus(); err != nil {
		return nil, err
	}
	return d.dualExponentiate(d.part, d.r2, g0, e0, g1, e1, t)
}

// DualExpMod computes g0^e0 * g1^e1 mod m for an explicit n-bit modulus.
func (d *Device) DualExpMod(g0, e0, g1, e1 []uint32, t int, m []uint32, n int) ([]uint32, error) {
	part, err := PartForBits(n)
	if err != nil {
		return nil, err
	}
	if err := validateExponentLength(t); err != nil {
		return nil, err
	}
	if err := d.setOperand(ModulusSlot, m, part); err != nil {
		return nil, err
	}
	return d.dualExponentiate(part, computeR2(m, n), g0, e0, g1, e1, t)
}

// multiply runs the two-round multiplication against whatever modulus is
// currently in the modulus slot.
func (d *Device) multiply(part Part, r2, x, y []uint32) ([]uint32, error) {
	if err := d.setOperand(Operand0, x, part); err != nil {
		return nil, err
	}
	if err := d.setOperand(Operand1, y, part); err != nil {
		return nil, err
	}
	if err := d.setOperand(Operand2, r2, part); err != nil {
		return nil, err
	}

	d.startSingle(part, Operand3, Operand0, Operand1) // x*y*R^-1
	d.waitReady("multiply reduce")
	d.startSingle(part, Operand3, Operand2, Operand3) // *R²*R^-1
	d.waitReady("multiply restore")

	return d.getOperand(Operand3, part)
}

// exponentiate runs a single-base modular exponentiation. The auto-run
// consumes one exponent bit per internal cycle; its wait dominates the
// total operation time.
func (d *Device) exponentiate(part Part, r2, g, e []uint32, t int) ([]uint32, error) {
	if err := validateExponentLength(t); err != nil {
		return nil, err
	}

	// Precomputation: Montgomery forms of g and 1.
	if err := d.setOperand(Operand0, g, part); err != nil {
		return nil, err
	}
	if err := d.setOperand(Operand1, r2, part); err != nil {
		return nil, err
	}
	if err := d.setOperand(Operand2, oneOperand(part), part); err != nil {
		return nil, err
	}

	d.startSingle(part, Operand0, Operand0, Operand1) // g~ = g*R
	d.waitReady("exp precompute g")
	d.startSingle(part, Operand3, Operand2, Operand1) // R~ = R, the accumulator seed
	d.waitReady("exp precompute R")

	// Main loop on-core.
	if err := d.setExponent(e, nil, t); err != nil {
		return nil, err
	}
	d.startAuto(part)
	d.waitReady("exp auto-run")

	// Postcomputation: back to standard form.
	d.startSingle(part, Operand3, Operand2, Operand3)
	d.waitReady("exp postcompute")

	return d.getOperand(Operand3, part)
}

// dualExponentiate runs both exponentiations in one auto-run pass. The
// core drives its multiplier rails from the interleaved FIFO: op0 when only
// the e0 bit is set, op1 for e1 alone, op2 for both, accumulating in op3.
func (d *Device) dualExponentiate(part Part, r2, g0, e0, g1, e1 []uint32, t int) ([]uint32, error) {
	if err := validateExponentLength(t); err != nil {
		return nil, err
	}

	one := oneOperand(part)
	if err := d.setOperand(Operand0, g0, part); err != nil {
		return nil, err
	}
	if err := d.setOperand(Operand1, g1, part); err != nil {
		return nil, err
	}
	if err := d.setOperand(Operand2, one, part); err != nil {
		return nil, err
	}
	if err := d.setOperand(Operand3, r2, part); err != nil {
		return nil, err
	}

	d.startSingle(part, Operand0, Operand0, Operand3) // g~0
	d.waitReady("dual-exp precompute g0")
	d.startSingle(part, Operand1, Operand1, Operand3) // g~1
	d.waitReady("dual-exp precompute g1")
	d.startSingle(part, Operand3, Operand2, Operand3) // R~
	d.waitReady("dual-exp precompute R")
	d.startSingle(part, Operand2, Operand0, Operand1) // g~0*g~1 seed
	d.waitReady("dual-exp precompute seed")

	if err := d.setExponent(e0, e1, t); err != nil {
		return nil, err
	}
	d.startAuto(part)
	d.waitReady("dual-exp auto-run")

	// The seed product overwrote op2; restore 1 for the final reduction.
	if err := d.setOperand(Operand2, one, part); err != nil {
		return nil, err
	}
	d.startSingle(part, Operand3, Operand2, Operand3)
	d.waitReady("dual-exp postcompute")

	return d.getOperand(Operand3, part)
}

// oneOperand returns the constant 1 sized for the given part.
func oneOperand(part Part) []uint32 {
	w := make([]uint32, part.Words())
	w[0] = 1
	return w
}
