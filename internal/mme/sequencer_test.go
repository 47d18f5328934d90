package mme

import (
	"testing"
)

func TestStartSingleStrobeSequence(t *testing.T) {
	bus := newFakeBus()
	// Low 22 control bits belong to the core's status; the sequencer must
	// carry them through unchanged.
	bus.ctrl[ctrlOffset] = 0x003A5A5A
	d := NewWithBus(bus, withTestLogger(t))
	bus.resetRecording()

	d.startSingle(PartHigh, Operand3, Operand0, Operand2)

	if len(bus.ctrlWrites) != 2 {
		t.Fatalf("expected assert+deassert writes, got %d", len(bus.ctrlWrites))
	}

	want := uint32(0x003A5A5A) |
		uint32(PartHigh)<<partShift |
		uint32(3)<<destShift |
		uint32(0)<<xShift |
		uint32(2)<<yShift |
		startBit
	if got := bus.ctrlWrites[0].v; got != want {
		t.Errorf("assert write = 0x%08x, want 0x%08x", got, want)
	}
	if got := bus.ctrlWrites[1].v; got != want&^uint32(startBit) {
		t.Errorf("deassert write = 0x%08x, want 0x%08x", got, want&^uint32(startBit))
	}
}

func TestStartSingleClearsPreviousCommand(t *testing.T) {
	bus := newFakeBus()
	// Leftover command bits from an earlier operation.
	bus.ctrl[ctrlOffset] = uint32(PartTotal)<<partShift | uint32(1)<<destShift | autoRunBit
	d := NewWithBus(bus, withTestLogger(t))
	bus.resetRecording()

	d.startSingle(PartLow, Operand0, Operand1, Operand2)

	got := bus.ctrlWrites[0].v
	if got&autoRunBit != 0 {
		t.Error("previous auto-run bit leaked into the new command")
	}
	if part := (got >> partShift) & 3; part != uint32(PartLow) {
		t.Errorf("part field = %d, want %d", part, PartLow)
	}
	if dest := (got >> destShift) & 3; dest != 0 {
		t.Errorf("dest field = %d, want 0", dest)
	}
}

func TestStartAutoStrobeSequence(t *testing.T) {
	bus := newFakeBus()
	bus.ctrl[ctrlOffset] = 0xFFFFFFFF // auto-run ignores prior register state
	d := NewWithBus(bus, withTestLogger(t))
	bus.resetRecording()

	d.startAuto(PartTotal)

	if len(bus.ctrlWrites) != 2 {
		t.Fatalf("expected assert+deassert writes, got %d", len(bus.ctrlWrites))
	}

	want := uint32(startBit) | autoRunBit | uint32(PartTotal)<<partShift
	if got := bus.ctrlWrites[0].v; got != want {
		t.Errorf("assert write = 0x%08x, want 0x%08x", got, want)
	}
	if got := bus.ctrlWrites[1].v; got != autoRunBit|uint32(PartTotal)<<partShift {
		t.Errorf("deassert write = 0x%08x, auto-run and part must stay set", got)
	}
}
