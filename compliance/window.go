// FILE: compliance/window.go
// Package compliance – per-account rolling window of order events, bounded
// by both a time window and a max event count, with metrics computed on
// demand (never eagerly, so a quiet account costs nothing between ticks).
package compliance

import "time"

// WindowConfig controls eviction.
type WindowConfig struct {
	WindowSeconds       float64 // general window, default 5
	CancelRateWindowSeconds float64 // cancel-rate window, default 1
	MaxEvents           int     // default 100000
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{WindowSeconds: 5, CancelRateWindowSeconds: 1, MaxEvents: 100_000}
}

// accountWindow is the per-account state: a time-evicting ring of events
// plus lifetime counters that never reset.
type accountWindow struct {
	events []OrderEvent // oldest first

	lastOrderTS    time.Time
	haveLastOrder  bool

	totalSubmits int64
	totalCancels int64
	totalAmends  int64
}

func newAccountWindow() *accountWindow { return &accountWindow{} }

func (w *accountWindow) record(e OrderEvent, cfg WindowConfig) {
	w.events = append(w.events, e)
	if cfg.MaxEvents > 0 && len(w.events) > cfg.MaxEvents {
		w.events = w.events[len(w.events)-cfg.MaxEvents:]
	}
	switch e.EventType {
	case EventSubmit:
		w.totalSubmits++
	case EventCancel:
		w.totalCancels++
	case EventAmend:
		w.totalAmends++
	}
	w.lastOrderTS = e.TS
	w.haveLastOrder = true
}

// evictBefore drops events older than cutoff from the front of the window.
func (w *accountWindow) evictBefore(cutoff time.Time) {
	i := 0
	for i < len(w.events) && w.events[i].TS.Before(cutoff) {
		i++
	}
	if i > 0 {
		w.events = w.events[i:]
	}
}

// inWindow returns the events with TS >= now-seconds.
func (w *accountWindow) inWindow(now time.Time, seconds float64) []OrderEvent {
	cutoff := now.Add(-time.Duration(seconds * float64(time.Second)))
	out := make([]OrderEvent, 0, len(w.events))
	for _, e := range w.events {
		if !e.TS.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// Metrics is the full set of on-demand rolling metrics for one account.
type Metrics struct {
	CancelRatio       float64
	CancelFreqPerSec  float64
	AvgOrderIntervalMS float64
	LastIntervalMS    float64
	OrdersPerSec      float64
	MaxAuditDelaySec  float64
}

func (w *accountWindow) metrics(now time.Time, cfg WindowConfig) Metrics {
	general := w.inWindow(now, cfg.WindowSeconds)
	cancelWindow := w.inWindow(now, cfg.CancelRateWindowSeconds)

	var m Metrics
	if len(general) > 0 {
		cancels := 0
		for _, e := range general {
			if e.EventType == EventCancel {
				cancels++
			}
		}
		m.CancelRatio = float64(cancels) / float64(len(general))

		if len(general) > 1 {
			var sumDelta float64
			for i := 1; i < len(general); i++ {
				sumDelta += general[i].TS.Sub(general[i-1].TS).Seconds() * 1000
			}
			m.AvgOrderIntervalMS = sumDelta / float64(len(general)-1)
		}

		for _, e := range general {
			d := e.auditDelaySeconds()
			if d > m.MaxAuditDelaySec {
				m.MaxAuditDelaySec = d
			}
		}
	}
	if cfg.WindowSeconds > 0 {
		m.OrdersPerSec = float64(len(general)) / cfg.WindowSeconds
	}

	cancelsIn1s := 0
	for _, e := range cancelWindow {
		if e.EventType == EventCancel {
			cancelsIn1s++
		}
	}
	m.CancelFreqPerSec = float64(cancelsIn1s)

	if w.haveLastOrder {
		m.LastIntervalMS = now.Sub(w.lastOrderTS).Seconds() * 1000
	}

	return m
}
