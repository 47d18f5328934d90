package mme

import (
	"errors"
	"os"
	"time"

	"github.com/dramco-iot/mme1536/internal/logging"
)

// waitReady blocks until the core signals completion of the in-flight
// operation or the timeout budget elapses. Completion is an interrupt
// count strictly exceeding the count observed at the end of the previous
// wait.
//
// A timeout is monitored but non-fatal: the core keeps running, the call
// logs a warning and returns false, and the caller proceeds knowing the
// destination slot may not yet hold a completed result. The recorded
// interrupt count is only advanced by an observed notification. The UIO
// notification channel is re-armed on every exit path.
//
// The deadline is a single monotonic timestamp plus the full timeout
// budget, so waits crossing a wall-clock second boundary are not cut
// short.
func (d *Device) waitReady(op string) bool {
	deadline := time.Now().Add(d.timeout)
	start := time.Now()
	completed := false

	for {
		count, err := d.bus.WaitInterrupt(deadline)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				d.log.Warn("completion wait timed out",
					logging.String("op", op),
					logging.Dur("timeout", d.timeout))
			} else {
				d.log.Error("interrupt read failed", err, logging.String("op", op))
			}
			break
		}
		if count > d.prevInts {
			d.prevInts = count
			completed = true
			break
		}
		// Stale notification from a previous session; keep waiting.
	}

	d.rec.WaitObserved(time.Since(start), completed)

	if err := d.bus.EnableInterrupt(); err != nil {
		d.log.Error("re-arming interrupt notifications failed", err, logging.String("op", op))
	}
	return completed
}
