package timing

import "time"

// TickerLimiter paces frames off a single time.Ticker. It drifts more
// than AdaptiveLimiter under load (a missed tick is simply gone, not
// compensated for), but has none of the busy-waiting cost, which suits
// background/batch runs better than interactive ones.
type TickerLimiter struct {
	ticker *time.Ticker
}

func NewTickerLimiter() *TickerLimiter {
	return &TickerLimiter{ticker: time.NewTicker(FrameDuration())}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ticker.C
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(FrameDuration())
}

// Stop releases the underlying ticker; callers that construct a
// TickerLimiter must call this once they're done with it.
func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
