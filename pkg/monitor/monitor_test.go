package monitor

import (
	"testing"
	"time"

	"github.com/itohio/gorain/pkg/config"
	"github.com/itohio/gorain/pkg/rain"
	"github.com/itohio/gorain/pkg/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// feed pushes n samples of value spaced dt apart starting at start and
// returns the timestamp after the last one.
func feed(m *Monitor, start time.Time, dt time.Duration, n int, value uint16) time.Time {
	ts := start
	for i := 0; i < n; i++ {
		m.processSample(sensor.RawSample{Timestamp: ts, Value: value})
		ts = ts.Add(dt)
	}
	return ts
}

func TestNew(t *testing.T) {
	cfg := config.Default()
	m := New(cfg, zaptest.NewLogger(t).Sugar())

	assert.NotNil(t, m)
	assert.Empty(t, m.Updates())
	_, ok := m.Latest()
	assert.False(t, ok)
	assert.Equal(t, rain.Stable, m.Trend())
	assert.Equal(t, cfg.History.MaxReadings, m.maxUpdates)
}

func TestProcessSample_EmitsEveryInterval(t *testing.T) {
	m := New(config.Default(), zaptest.NewLogger(t).Sugar())

	// 2 seconds of samples at 20ms: the gate opens at 0.5s, 1.0s and 1.5s
	feed(m, time.Now(), 20*time.Millisecond, 100, 3500)

	updates := m.Updates()
	require.Len(t, updates, 3)
	assert.Equal(t, 500*time.Millisecond, updates[0].Uptime)
	assert.Equal(t, 1000*time.Millisecond, updates[1].Uptime)
	assert.Equal(t, 1500*time.Millisecond, updates[2].Uptime)
	for _, u := range updates {
		assert.Equal(t, rain.NoRain, u.Category)
		assert.Equal(t, 3500, u.Filter.FilteredAverage)
	}
}

func TestProcessSample_CustomInterval(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.Interval = time.Second
	m := New(cfg, nil)

	feed(m, time.Now(), 20*time.Millisecond, 100, 2500)

	updates := m.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, time.Second, updates[0].Uptime)
}

func TestProcessSample_HistoryCapped(t *testing.T) {
	cfg := config.Default()
	cfg.History.MaxReadings = 5
	m := New(cfg, nil)

	feed(m, time.Now(), 100*time.Millisecond, 200, 1500)

	updates := m.Updates()
	require.Len(t, updates, 5)
	last, ok := m.Latest()
	require.True(t, ok)
	assert.Equal(t, updates[4], last)
	assert.True(t, updates[0].Timestamp.Before(updates[4].Timestamp))
}

func TestProcessSample_ClockReset(t *testing.T) {
	m := New(config.Default(), zaptest.NewLogger(t).Sugar())

	now := time.Now()
	feed(m, now, 50*time.Millisecond, 200, 3900)
	require.Len(t, m.Updates(), 19)

	// Firmware reboot: timestamps start over
	feed(m, now.Add(-time.Hour), 50*time.Millisecond, 10, 800)
	assert.Len(t, m.Updates(), 19, "fresh pipeline must wait a full interval")

	feed(m, now.Add(-time.Hour).Add(500*time.Millisecond), 50*time.Millisecond, 1, 800)
	latest, ok := m.Latest()
	require.True(t, ok)
	assert.Equal(t, rain.BigRain, latest.Category)
	// Fresh history: [800, 0 x19] gives baseline 40
	assert.Equal(t, 40, latest.Baseline)
}

func TestOnUpdate_Callbacks(t *testing.T) {
	m := New(config.Default(), nil)

	var got []Update
	m.OnUpdate(func(u Update) {
		got = append(got, u)
	})
	m.OnUpdate(nil)

	feed(m, time.Now(), 10*time.Millisecond, 110, 600)

	require.Len(t, got, 2)
	assert.Equal(t, m.Updates(), got)
	assert.Equal(t, "Big rain: 86%\nTrend: Falling\n", got[0].StatusLine())
}
