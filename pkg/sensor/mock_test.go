package sensor

import (
	"errors"
	"testing"
	"time"

	"github.com/itohio/gorain/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testMockConfig() *config.MockConfig {
	return &config.MockConfig{
		DryLevel:     3900,
		WetLevel:     700,
		NoiseLevel:   0,
		SpikeEvery:   0,
		ShowerPeriod: 100 * time.Second,
		SampleRate:   10 * time.Millisecond,
	}
}

func TestNewMock(t *testing.T) {
	cfg := testMockConfig()

	dev := NewMock(cfg, zaptest.NewLogger(t).Sugar())
	assert.NotNil(t, dev)
	assert.Equal(t, cfg, dev.cfg)
	assert.NotNil(t, dev.samples)
	assert.False(t, dev.IsConnected())
}

func TestNewMock_NilConfig(t *testing.T) {
	dev := NewMock(nil, nil)
	assert.NotNil(t, dev)
	assert.NotNil(t, dev.cfg)
	assert.Equal(t, config.Default().Mock, *dev.cfg)
}

func TestMock_Connect_AlreadyConnected(t *testing.T) {
	dev := NewMock(testMockConfig(), nil)

	err := dev.Connect()
	assert.NoError(t, err)
	defer dev.Close()

	err = dev.Connect()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyConnected))
}

func TestMock_Close_NotConnected(t *testing.T) {
	dev := NewMock(nil, nil)

	err := dev.Close()
	assert.NoError(t, err)
}

func TestMock_Close_Connected(t *testing.T) {
	dev := NewMock(testMockConfig(), nil)

	err := dev.Connect()
	assert.NoError(t, err)
	assert.True(t, dev.IsConnected())

	err = dev.Close()
	assert.NoError(t, err)
	assert.False(t, dev.IsConnected())
}

func TestMock_Reconnect(t *testing.T) {
	dev := NewMock(testMockConfig(), zaptest.NewLogger(t).Sugar())

	for round := 0; round < 2; round++ {
		require.NoError(t, dev.Connect(), "round %d", round)
		samples := dev.Samples()

		select {
		case _, ok := <-samples:
			assert.True(t, ok, "round %d: expected a sample", round)
		case <-time.After(2 * time.Second):
			t.Fatalf("round %d: no sample received", round)
		}

		require.NoError(t, dev.Close())
		for range samples {
		}
		assert.False(t, dev.IsConnected())
	}
}

func TestMock_Connect_InvalidSampleRate(t *testing.T) {
	for _, rate := range []time.Duration{0, -20 * time.Millisecond} {
		cfg := testMockConfig()
		cfg.SampleRate = rate

		dev := NewMock(cfg, nil)
		assert.Error(t, dev.Connect(), "rate %s", rate)
		assert.False(t, dev.IsConnected())
		assert.NoError(t, dev.Close())
	}
}

func TestMock_valueAt_ShowerCycle(t *testing.T) {
	cfg := testMockConfig()
	dev := NewMock(cfg, nil)

	// Dry at the start and end of the cycle, wettest half way
	assert.Equal(t, uint16(3900), dev.valueAt(0, 1))
	assert.Equal(t, uint16(700), dev.valueAt(cfg.ShowerPeriod/2, 1))
	assert.InDelta(t, 3900, float64(dev.valueAt(cfg.ShowerPeriod, 1)), 1)

	// Wetness increases monotonically over the first half
	prev := dev.valueAt(0, 1)
	for i := 1; i <= 50; i++ {
		v := dev.valueAt(time.Duration(i)*time.Second, 1)
		assert.LessOrEqual(t, v, prev)
		prev = v
	}
}

func TestMock_valueAt_Spikes(t *testing.T) {
	cfg := testMockConfig()
	cfg.SpikeEvery = 5
	dev := NewMock(cfg, nil)

	assert.Equal(t, uint16(0), dev.valueAt(0, 5))
	assert.Equal(t, uint16(MaxValue), dev.valueAt(0, 10))
	assert.Equal(t, uint16(3900), dev.valueAt(0, 11))
}

func TestClampADC(t *testing.T) {
	testCases := []struct {
		name string
		in   float64
		want uint16
	}{
		{"negative", -10, 0},
		{"zero", 0, 0},
		{"middle", 2047.9, 2047},
		{"max", 4095, 4095},
		{"above max", 5000, 4095},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, clampADC(tc.in))
		})
	}
}
