package core

import (
	"sync"

	"github.com/spaghettifunk/trigon/engine/containers"
)

// AVG_COUNT is the number of frames folded into the rolling frame-time average.
const AVG_COUNT = 30

type MetricsState struct {
	mu                 sync.Mutex
	frameTimes         *containers.RingQueue[float64]
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = newMetricsState()
	})
	return nil
}

func newMetricsState() *MetricsState {
	return &MetricsState{
		frameTimes: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

// MetricsUpdate records the duration of one frame, in seconds.
func MetricsUpdate(frameElapsedTime float64) {
	if metricsState == nil {
		return
	}
	metricsState.update(frameElapsedTime)
}

func (m *MetricsState) update(frameElapsedTime float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameMS := frameElapsedTime * 1000.0
	m.frameTimes.Push(frameMS)

	sum := 0.0
	m.frameTimes.Each(func(v float64) { sum += v })
	m.MSavg = sum / float64(m.frameTimes.Len())

	// Calculate Frames per second.
	m.AccumulatedFrameMS += frameMS
	m.Frames++
	if m.AccumulatedFrameMS >= 1000 {
		m.FPS = float64(m.Frames)
		m.AccumulatedFrameMS -= 1000
		m.Frames = 0
	}
}

func (m *MetricsState) frame() (float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FPS, m.MSavg
}

// MetricsFrame returns the last measured frames per second and the rolling
// frame time average in milliseconds.
func MetricsFrame() (float64, float64) {
	if metricsState == nil {
		return 0, 0
	}
	return metricsState.frame()
}
