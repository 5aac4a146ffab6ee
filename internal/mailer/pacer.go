package mailer

import "time"

// Pacer spaces out consecutive send attempts. The pipeline calls Pause
// between attempts, never before the first or after the last.
type Pacer interface {
	Pause()
}

// FixedDelayPacer sleeps for a constant duration. No adaptivity, no backoff;
// it only keeps the destination server from seeing a burst.
type FixedDelayPacer struct {
	Delay time.Duration
}

func (p FixedDelayPacer) Pause() {
	time.Sleep(p.Delay)
}

// NopPacer pauses not at all. Used in tests.
type NopPacer struct{}

func (NopPacer) Pause() {}
