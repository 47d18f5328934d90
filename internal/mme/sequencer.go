package mme

import (
	"time"

	"github.com/dramco-iot/mme1536/internal/logging"
)

// The core runs a command on the falling edge of the start strobe: the
// control word is written once with the strobe asserted, held for the
// settle delay, then written again with the strobe cleared. Removing the
// delay makes the core miss the strobe. Exactly one operation is in flight
// after either start call; the caller must waitReady before issuing
// another command or reading a result.

// startSingle issues one Montgomery multiplication
// slot[dest] = slot[x] * slot[y] * R^-1 mod m on the selected part.
func (d *Device) startSingle(part Part, dest, x, y Slot) {
	control := d.bus.ReadCtrl(ctrlOffset)
	control &^= commandMask
	control |= uint32(part)<<partShift | dest.selector()<<destShift |
		x.selector()<<xShift | y.selector()<<yShift | startBit

	d.strobe(control)
	d.rec.OperationStarted("single")
	d.log.Debug("single operation issued",
		logging.String("part", part.String()),
		logging.String("dest", dest.String()),
		logging.String("x", x.String()),
		logging.String("y", y.String()))
}

// startAuto hands control to the core's internal square-and-multiply state
// machine, which consumes the previously streamed exponent FIFO and the
// operand slots according to its fixed rail convention. Operand selectors
// stay zero; the core supplies its own operands for the whole run.
func (d *Device) startAuto(part Part) {
	control := startBit | autoRunBit | uint32(part)<<partShift

	d.strobe(control)
	d.rec.OperationStarted("auto")
	d.log.Debug("auto-run started", logging.String("part", part.String()))
}

// strobe performs the two-phase control write with the mandatory settle
// delay between assert and de-assert.
func (d *Device) strobe(control uint32) {
	d.bus.WriteCtrl(ctrlOffset, control)
	time.Sleep(d.settle)
	d.bus.WriteCtrl(ctrlOffset, control&^uint32(startBit))
}
