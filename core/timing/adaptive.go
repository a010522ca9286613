package timing

import (
	"log/slog"
	"time"
)

// AdaptiveLimiter uses precise timing with drift compensation.
// Combines sleep for efficiency with busy-waiting for accuracy.
type AdaptiveLimiter struct {
	targetFrameTime time.Duration
	nextFrameTime   time.Time
	frameCounter    int64
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	return &AdaptiveLimiter{
		targetFrameTime: FrameDuration(),
		nextFrameTime:   time.Now(),
	}
}

// driftCheckInterval is how often (in frames) WaitForNextFrame samples
// actual elapsed time against the schedule to correct for accumulated
// clock drift.
const driftCheckInterval = 60

// driftTolerance is how far actual time may stray from the schedule
// before a correction is applied.
const driftTolerance = 10 * time.Millisecond

func busyWaitUntil(deadline time.Time) {
	for time.Now().Before(deadline) {
	}
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := time.Now()
	sleepTime := a.nextFrameTime.Sub(now)

	switch {
	case sleepTime > 2*time.Millisecond:
		time.Sleep(sleepTime - time.Millisecond)
		busyWaitUntil(a.nextFrameTime)
	case sleepTime > 0:
		busyWaitUntil(a.nextFrameTime)
	case sleepTime < -5*time.Millisecond:
		// Fell too far behind schedule (e.g. after a debugger pause);
		// resync instead of trying to catch up frame by frame.
		a.nextFrameTime = now
	}

	a.nextFrameTime = a.nextFrameTime.Add(a.targetFrameTime)
	a.frameCounter++

	if a.frameCounter%driftCheckInterval == 0 {
		drift := time.Now().Sub(a.nextFrameTime)
		if drift.Abs() > driftTolerance {
			a.nextFrameTime = a.nextFrameTime.Add(drift / 10)
			slog.Debug("frame timing drift correction",
				"drift_ms", drift.Milliseconds(),
				"frame", a.frameCounter)
		}
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.nextFrameTime = time.Now()
	a.frameCounter = 0
}
