package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":  DebugLevel,
		"info":   InfoLevel,
		" warn ": WarnLevel,
		"error":  ErrorLevel,
		"fatal":  FatalLevel,
	}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestSetLogLevelRoundTrip(t *testing.T) {
	prev := GetLogLevel()
	defer SetLogLevel(prev)

	SetLogLevel(WarnLevel)
	assert.Equal(t, WarnLevel, GetLogLevel())
	assert.Equal(t, "warn", WarnLevel.String())
}

func TestEvents(t *testing.T) {
	require.True(t, EventInitialize())
	defer EventShutdown()
	assert.False(t, EventInitialize())

	var fired []string
	first := "first"
	second := "second"

	onEvent := func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		fired = append(fired, listener.(string)+":"+data.Data.C[0])
		return false
	}

	require.True(t, EventRegister(EVENT_CODE_CONFIG_CHANGED, first, onEvent))
	require.True(t, EventRegister(EVENT_CODE_CONFIG_CHANGED, second, onEvent))
	assert.False(t, EventRegister(EVENT_CODE_CONFIG_CHANGED, first, onEvent), "duplicate listener")

	ctx := EventContext{}
	ctx.Data.C[0] = "config.toml"
	assert.False(t, EventFire(EVENT_CODE_CONFIG_CHANGED, nil, ctx))
	assert.Equal(t, []string{"first:config.toml", "second:config.toml"}, fired)

	require.True(t, EventUnregister(EVENT_CODE_CONFIG_CHANGED, first))
	assert.False(t, EventUnregister(EVENT_CODE_CONFIG_CHANGED, first))

	fired = nil
	EventFire(EVENT_CODE_CONFIG_CHANGED, nil, ctx)
	assert.Equal(t, []string{"second:config.toml"}, fired)
}

func TestEventHandledStopsPropagation(t *testing.T) {
	require.True(t, EventInitialize())
	defer EventShutdown()

	calls := 0
	handler := func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls++
		return true
	}
	EventRegister(EVENT_CODE_APPLICATION_QUIT, "a", handler)
	EventRegister(EVENT_CODE_APPLICATION_QUIT, "b", handler)

	assert.True(t, EventFire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}))
	assert.Equal(t, 1, calls)
}

func TestEventsBeforeInitialize(t *testing.T) {
	noop := func(SystemEventCode, interface{}, interface{}, EventContext) bool { return true }
	assert.False(t, EventRegister(EVENT_CODE_APPLICATION_QUIT, nil, noop))
	assert.False(t, EventFire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}))
}

func TestMetricsRollingAverage(t *testing.T) {
	m := newMetricsState()
	for i := 0; i < AVG_COUNT; i++ {
		m.update(0.010)
	}
	_, avg := m.frame()
	assert.InDelta(t, 10.0, avg, 1e-9)

	// Older samples fall out of the window.
	for i := 0; i < AVG_COUNT; i++ {
		m.update(0.020)
	}
	_, avg = m.frame()
	assert.InDelta(t, 20.0, avg, 1e-9)
}

func TestMetricsFPS(t *testing.T) {
	m := newMetricsState()
	for i := 0; i < 100; i++ {
		m.update(0.010)
	}
	fps, _ := m.frame()
	assert.Equal(t, 100.0, fps)
}

func TestClock(t *testing.T) {
	c := NewClock()
	c.Update()
	assert.Zero(t, c.Elapsed(), "not started")

	c.Start()
	time.Sleep(5 * time.Millisecond)
	c.Update()
	first := c.Elapsed()
	assert.Greater(t, first, 0.0)

	c.Stop()
	time.Sleep(5 * time.Millisecond)
	c.Update()
	assert.Equal(t, first, c.Elapsed())
}

func TestRunIDIsStable(t *testing.T) {
	assert.Equal(t, RunID(), RunID())
}
