package http

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/galbox/galconsole/internal/probe"
	"github.com/rs/zerolog/log"
)

const (
	historyMaxAge    = 30 * time.Minute
	historyMaxPoints = 2000
	notConnected     = "Not Connected"
)

// Monitor samples wifi, cpu and ram in the background and fans snapshots
// out to subscribers.
type Monitor struct {
	prober   Prober
	interval time.Duration

	mu       sync.RWMutex
	snapshot Snapshot
	history  []HistoryPoint

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan Snapshot
}

func NewMonitor(prober Prober, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = time.Second
	}
	return &Monitor{
		prober:   prober,
		interval: interval,
		snapshot: Snapshot{WiFi: notConnected},
		subs:     make(map[int]chan Snapshot),
	}
}

func (m *Monitor) Start(stop <-chan struct{}) {
	m.update()
	ticker := time.NewTicker(m.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.update()
			}
		}
	}()
}

func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

func (m *Monitor) History() []HistoryPoint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneHistory(m.history)
}

// Subscribe returns a channel receiving every new snapshot. Slow receivers
// miss samples instead of blocking the monitor.
func (m *Monitor) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.subMu.Unlock()

	return ch, func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Monitor) update() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval*5)
	defer cancel()

	now := time.Now()
	var errs SnapshotError

	snap := Snapshot{UpdatedAt: now.UnixMilli(), WiFi: notConnected}
	wifi, err := m.prober.WiFi(ctx)
	switch {
	case err == nil:
		snap.WiFi = wifi.SSID
		snap.SignalLevel = wifi.SignalLevel
	case !errors.Is(err, probe.ErrNoMatch):
		errs.WiFi = err.Error()
	}

	if c, err := m.prober.CPU(ctx); err != nil {
		errs.CPU = err.Error()
	} else {
		snap.CPU = c.Usage
	}

	if mem, err := m.prober.Memory(ctx); err != nil {
		errs.RAM = err.Error()
	} else {
		snap.RAM = mem.Usage
	}
	snap.Errors = errs

	if errs.CPU != "" || errs.RAM != "" {
		log.Debug().Str("cpu", errs.CPU).Str("ram", errs.RAM).Msg("monitor sample incomplete")
	}

	m.mu.Lock()
	m.snapshot = snap
	m.appendHistoryLocked(snap)
	m.mu.Unlock()

	m.publish(snap)
}

func (m *Monitor) publish(snap Snapshot) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default:
			// drop the stale sample and deliver the fresh one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (m *Monitor) appendHistoryLocked(snap Snapshot) {
	m.history = append(m.history, HistoryPoint{
		Time: snap.UpdatedAt,
		WiFi: snap.WiFi,
		CPU:  snap.CPU,
		RAM:  snap.RAM,
	})

	cutoff := snap.UpdatedAt - int64(historyMaxAge/time.Millisecond)
	trim := 0
	for trim < len(m.history) && m.history[trim].Time < cutoff {
		trim++
	}
	if trim > 0 {
		m.history = append([]HistoryPoint(nil), m.history[trim:]...)
	}
	if len(m.history) > historyMaxPoints {
		m.history = append([]HistoryPoint(nil), m.history[len(m.history)-historyMaxPoints:]...)
	}
}

func cloneHistory(src []HistoryPoint) []HistoryPoint {
	if len(src) == 0 {
		return []HistoryPoint{}
	}
	return append([]HistoryPoint(nil), src...)
}

func (s Snapshot) push() pushMessage {
	return pushMessage{
		WiFi:      s.WiFi,
		CPU:       s.CPU,
		Timestamp: time.UnixMilli(s.UpdatedAt).UTC().Format(time.RFC3339),
	}
}
