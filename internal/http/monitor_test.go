package http

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/galbox/galconsole/internal/probe"
)

func TestMonitorSnapshot(t *testing.T) {
	p := &fakeProber{
		wifi:   probe.WiFi{SSID: "HomeNet", SignalLevel: signal(-60)},
		cpu:    probe.CPU{Usage: 37},
		memory: probe.Memory{Usage: 64},
	}
	m := NewMonitor(p, time.Second)
	m.update()

	snap := m.Snapshot()
	if snap.WiFi != "HomeNet" || snap.CPU != 37 || snap.RAM != 64 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Errors != (SnapshotError{}) {
		t.Errorf("errors = %+v", snap.Errors)
	}
	h := m.History()
	if len(h) != 1 || h[0].WiFi != "HomeNet" || h[0].CPU != 37 || h[0].RAM != 64 {
		t.Errorf("history = %+v", h)
	}
}

func TestMonitorNotConnected(t *testing.T) {
	m := NewMonitor(&fakeProber{wifiErr: probe.ErrNoMatch}, time.Second)
	m.update()

	snap := m.Snapshot()
	if snap.WiFi != notConnected || snap.Errors.WiFi != "" {
		t.Errorf("snapshot = %+v", snap)
	}

	m = NewMonitor(&fakeProber{wifiErr: errors.New("airport: not found")}, time.Second)
	m.update()
	if snap := m.Snapshot(); snap.WiFi != notConnected || snap.Errors.WiFi == "" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestMonitorHistoryTrimsOldPoints(t *testing.T) {
	m := NewMonitor(&fakeProber{}, time.Second)
	now := time.Now().UnixMilli()

	m.mu.Lock()
	m.appendHistoryLocked(Snapshot{UpdatedAt: now - int64(historyMaxAge/time.Millisecond) - 1})
	m.appendHistoryLocked(Snapshot{UpdatedAt: now})
	m.mu.Unlock()

	h := m.History()
	if len(h) != 1 || h[0].Time != now {
		t.Errorf("history = %+v", h)
	}

	m.mu.Lock()
	for i := 0; i < historyMaxPoints+10; i++ {
		m.appendHistoryLocked(Snapshot{UpdatedAt: now + int64(i)})
	}
	m.mu.Unlock()
	if got := len(m.History()); got != historyMaxPoints {
		t.Errorf("history length = %d, want %d", got, historyMaxPoints)
	}
}

func TestMonitorPublishesToSubscribers(t *testing.T) {
	m := NewMonitor(&fakeProber{cpu: probe.CPU{Usage: 12}}, time.Second)
	updates, unsubscribe := m.Subscribe()
	defer unsubscribe()

	m.update()
	m.update()

	select {
	case snap := <-updates:
		if snap.CPU != 12 {
			t.Errorf("cpu = %d", snap.CPU)
		}
	default:
		t.Fatal("no snapshot delivered")
	}
	select {
	case <-updates:
		t.Error("slow subscriber should only hold the latest sample")
	default:
	}
}

func TestSnapshotPushMessage(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := Snapshot{UpdatedAt: ts.UnixMilli(), WiFi: "HomeNet", CPU: 5}.push()
	if msg.WiFi != "HomeNet" || msg.CPU != 5 || msg.Timestamp != "2024-05-01T12:00:00Z" {
		t.Errorf("push = %+v", msg)
	}
}

type countingProber struct {
	fakeProber
	wifiCalls int
}

func (c *countingProber) WiFi(ctx context.Context) (probe.WiFi, error) {
	c.wifiCalls++
	return probe.WiFi{SSID: "HomeNet"}, nil
}

func TestMonitorSamplesWiFiEveryTick(t *testing.T) {
	p := &countingProber{}
	m := NewMonitor(p, time.Second)
	for i := 0; i < 3; i++ {
		m.update()
	}
	if p.wifiCalls != 3 {
		t.Errorf("wifi sampled %d times, want 3", p.wifiCalls)
	}
}
