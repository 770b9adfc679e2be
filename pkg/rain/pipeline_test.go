package rain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	p := New()

	assert.Equal(t, DefaultInterval, p.Interval())
	assert.Equal(t, Stable, p.Trend())
	assert.Equal(t, 0, p.Baseline())
	assert.Equal(t, [WindowSize]int{}, p.Window())
	assert.Equal(t, [HistorySize]int{}, p.History())
}

func TestWithInterval(t *testing.T) {
	assert.Equal(t, time.Second, New(WithInterval(time.Second)).Interval())
	assert.Equal(t, DefaultInterval, New(WithInterval(0)).Interval())
	assert.Equal(t, DefaultInterval, New(WithInterval(-time.Second)).Interval())
}

func TestOnSample_GateClosed(t *testing.T) {
	p := New()

	for i := 0; i < 50; i++ {
		r, ok := p.OnSample(1234, time.Duration(i)*time.Millisecond)
		assert.False(t, ok)
		assert.Equal(t, Reading{}, r)
	}

	// Only the sample window moved
	assert.Equal(t, 1234, p.Window()[0])
	assert.Equal(t, [HistorySize]int{}, p.History())
	assert.Equal(t, Stable, p.Trend())
	assert.Equal(t, 0, p.Baseline())
}

func TestOnSample_GateReopensAfterInterval(t *testing.T) {
	p := New()

	_, ok := p.OnSample(100, 500*time.Millisecond)
	require.True(t, ok)

	_, ok = p.OnSample(100, 999*time.Millisecond)
	assert.False(t, ok)

	_, ok = p.OnSample(100, 1000*time.Millisecond)
	assert.True(t, ok)
}

func TestOnSample_IdempotentWhileGated(t *testing.T) {
	p := New()
	for i := 0; i < WindowSize; i++ {
		p.OnSample(3500, 0)
	}
	_, ok := p.OnSample(300, 600*time.Millisecond)
	require.True(t, ok)

	trend := p.Trend()
	history := p.History()
	for i := 0; i < 100; i++ {
		_, ok := p.OnSample(4000, 600*time.Millisecond+time.Duration(i)*time.Millisecond)
		assert.False(t, ok)
		assert.Equal(t, trend, p.Trend())
		assert.Equal(t, history, p.History())
	}
}

func TestOnSample_SteadyRainScenario(t *testing.T) {
	p := New()

	// Ten identical samples while the gate is still closed
	for i := 0; i < WindowSize; i++ {
		_, ok := p.OnSample(500, time.Duration(i)*10*time.Millisecond)
		require.False(t, ok)
	}

	// First emission: history is [500, 0 x19], baseline 25
	r, ok := p.OnSample(500, 500*time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, BigRain, r.Category)
	assert.Equal(t, 88, r.Percent)
	assert.Equal(t, 500, r.Filter.FilteredAverage)
	assert.Equal(t, 25, r.Baseline)
	assert.Equal(t, Falling, r.Trend)
	assert.Equal(t, 500*time.Millisecond, r.Uptime)

	// Baseline climbs toward 500 while the zero fill is pushed out
	for k := 2; k <= HistorySize; k++ {
		r, ok = p.OnSample(500, time.Duration(k)*500*time.Millisecond)
		require.True(t, ok)
		assert.Equal(t, 25*k, r.Baseline, "emission %d", k)
		assert.Equal(t, BigRain, r.Category)
		assert.Equal(t, 88, r.Percent)
		if k < HistorySize {
			assert.Equal(t, Falling, r.Trend, "emission %d", k)
		}
	}

	// Steady state
	assert.Equal(t, Stable, r.Trend)
	for k := HistorySize + 1; k <= HistorySize+10; k++ {
		r, ok = p.OnSample(500, time.Duration(k)*500*time.Millisecond)
		require.True(t, ok)
		assert.Equal(t, 500, r.Baseline)
		assert.Equal(t, Stable, r.Trend)
	}
	assert.Equal(t, Stable, p.Trend())
}

func TestOnSample_RainStartsAfterDrySpell(t *testing.T) {
	p := New()
	uptime := time.Duration(0)
	step := 50 * time.Millisecond

	// Dry sensor long enough to warm up the history
	for i := 0; i < 400; i++ {
		uptime += step
		p.OnSample(3800, uptime)
	}
	require.Equal(t, Stable, p.Trend())
	require.Equal(t, 3800, p.Baseline())

	// Water hits the sensor
	var last Reading
	for i := 0; i < 20; i++ {
		uptime += step
		if r, ok := p.OnSample(900, uptime); ok {
			last = r
		}
	}
	assert.Equal(t, Rising, last.Trend)
	assert.Equal(t, BigRain, last.Category)
	assert.Greater(t, last.Percent, 70)
}

func TestOnSample_SpikeIsFiltered(t *testing.T) {
	p := New()
	for i := 0; i < WindowSize-1; i++ {
		p.OnSample(2500, 0)
	}
	r, ok := p.OnSample(10, 500*time.Millisecond)
	require.True(t, ok)

	assert.Equal(t, 2500, r.Filter.FilteredAverage)
	assert.Equal(t, SmallRain, r.Category)
}

func TestReading_Formatting(t *testing.T) {
	r := Reading{Category: MedRain, Percent: 63, Trend: Rising}

	assert.Equal(t, "Med. rain: 63%\nTrend: Rising\n", r.StatusLine())
	assert.Equal(t, [2]string{"Med. rain: 63 %", "Trend: Rising"}, r.DisplayLines())
}
