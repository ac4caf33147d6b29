package engine

import (
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/trigon/engine/core"
)

func TestApplyLogLevel(t *testing.T) {
	prev := core.GetLogLevel()
	defer core.SetLogLevel(prev)

	core.SetLogLevel(core.DebugLevel)
	require.NoError(t, applyLogLevel(writeConfig(t, `log_level = "error"`)))
	assert.Equal(t, core.ErrorLevel, core.GetLogLevel())

	assert.Error(t, applyLogLevel(writeConfig(t, `log_level = "shout"`)))
	assert.Equal(t, core.ErrorLevel, core.GetLogLevel())
}

func TestConfigWatcherReloadsOnWrite(t *testing.T) {
	prev := core.GetLogLevel()
	defer core.SetLogLevel(prev)
	core.SetLogLevel(core.DebugLevel)

	require.True(t, core.EventInitialize())
	defer core.EventShutdown()

	var fired atomic.Bool
	core.EventRegister(core.EVENT_CODE_CONFIG_CHANGED, t, func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		fired.Store(true)
		return true
	})

	path := writeConfig(t, `log_level = "debug"`)
	cw, err := newConfigWatcher(path)
	require.NoError(t, err)
	defer cw.close()

	require.NoError(t, os.WriteFile(path, []byte(`log_level = "warn"`), 0o644))

	assert.Eventually(t, fired.Load, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, core.WarnLevel, core.GetLogLevel())
}

func TestQuitEventStopsEngine(t *testing.T) {
	e := &Engine{}
	e.isRunning.Store(true)

	handled := e.onEvent(core.EVENT_CODE_APPLICATION_QUIT, nil, e, core.EventContext{})
	assert.True(t, handled)
	assert.False(t, e.isRunning.Load())

	e.isRunning.Store(true)
	assert.False(t, e.onEvent(core.EVENT_CODE_ASSET_CHANGED, nil, e, core.EventContext{}))
	assert.True(t, e.isRunning.Load())
}
