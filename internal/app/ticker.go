package app

import "time"

// Ticker delivers countdown ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates the ticker that drives a session countdown.
type TickerFactory func(interval time.Duration) Ticker

type wallTicker struct {
	t *time.Ticker
}

// NewWallTicker is the production TickerFactory backed by time.Ticker.
func NewWallTicker(interval time.Duration) Ticker {
	return &wallTicker{t: time.NewTicker(interval)}
}

func (w *wallTicker) C() <-chan time.Time { return w.t.C }
func (w *wallTicker) Stop()               { w.t.Stop() }
