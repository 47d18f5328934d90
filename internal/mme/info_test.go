package mme

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintInfoAddressMap(t *testing.T) {
	d := NewWithBus(newFakeBus(), withTestLogger(t))

	var buf bytes.Buffer
	d.PrintInfo(&buf)

	out := buf.String()
	for _, want := range []string{
		"op0  0x00001000",
		"op3  0x00004000",
		"m    0x00000000",
		"exp  0x00005000",
		"total words:      48",
		"high half offset: 0x00000040",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("info dump missing %q:\n%s", want, out)
		}
	}
}

func TestDumpOperands(t *testing.T) {
	bus := newFakeBus()
	d := NewWithBus(bus, withTestLogger(t))

	x := make([]uint32, WordsTotal)
	x[0] = 0xCAFEBABE
	if err := d.setOperand(Operand1, x, PartTotal); err != nil {
		t.Fatalf("setOperand: %v", err)
	}

	var buf bytes.Buffer
	if err := d.DumpOperands(&buf); err != nil {
		t.Fatalf("DumpOperands: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "op1:") || !strings.Contains(out, "cafebabe") {
		t.Errorf("operand dump missing op1 contents:\n%s", out)
	}
	for _, slot := range []string{"op0:", "op2:", "op3:"} {
		if !strings.Contains(out, slot) {
			t.Errorf("operand dump missing %s", slot)
		}
	}
}
