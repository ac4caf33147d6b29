package testbed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/trigon/engine"
)

func TestGameHooksAreWired(t *testing.T) {
	g, err := NewTestGame(engine.DefaultApplicationConfig())
	require.NoError(t, err)

	assert.NotNil(t, g.FnInitialize)
	assert.NotNil(t, g.FnUpdate)
	assert.NotNil(t, g.FnRender)
	assert.NotNil(t, g.FnShutdown)
	assert.Equal(t, "Vulkan App", g.ApplicationConfig.Name)
}

func TestUpdateResetsLogTimer(t *testing.T) {
	g, err := NewTestGame(engine.DefaultApplicationConfig())
	require.NoError(t, err)
	state := g.State.(*gameState)

	require.NoError(t, g.Update(metricsLogInterval/2))
	assert.InDelta(t, metricsLogInterval/2, state.sinceLastLog, 1e-9)

	require.NoError(t, g.Update(metricsLogInterval))
	assert.Zero(t, state.sinceLastLog)

	require.NoError(t, g.Render(42, 0.016))
	assert.Equal(t, uint64(42), state.lastFrame)
}
