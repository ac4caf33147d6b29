package testbed

import (
	"github.com/spaghettifunk/trigon/engine"
	"github.com/spaghettifunk/trigon/engine/core"
)

// How often the frame metrics are logged, in seconds.
const metricsLogInterval = 2.0

type TestGame struct {
	*engine.Game
}

type gameState struct {
	sinceLastLog float64
	lastFrame    uint64
}

func NewTestGame(config *engine.ApplicationConfig) (*TestGame, error) {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)

	state.sinceLastLog += deltaTime
	if state.sinceLastLog < metricsLogInterval {
		return nil
	}
	state.sinceLastLog = 0

	fps, frameTime := core.MetricsFrame()
	core.LogInfo("FPS: %5.1f (%4.1fms) frame=%d", fps, frameTime, state.lastFrame)
	return nil
}

func (g *TestGame) Render(frameID uint64, deltaTime float64) error {
	g.State.(*gameState).lastFrame = frameID
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("TestGame rendered %d frames.", g.State.(*gameState).lastFrame)
	return nil
}
