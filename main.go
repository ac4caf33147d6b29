/*
Opens a window and spins a single triangle with Vulkan until the window
is closed or the process is interrupted.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/trigon/engine"
	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/testbed"
)

func main() {
	config, err := engine.LoadApplicationConfig(engine.DefaultConfigFile)
	if err != nil {
		core.LogFatal("failed to load configuration: %s", err)
	}

	tb, err := testbed.NewTestGame(config)
	if err != nil {
		core.LogFatal(err.Error())
	}

	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal(err.Error())
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		// the render loop notices the quit event and returns from Run
		<-sigCh
		if !core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{}) {
			e.Stop()
		}
	}()

	code := 0
	if err := e.Initialize(); err != nil {
		core.LogError("failed to initialize engine: %s", err)
		code = 1
	} else if err := e.Run(); err != nil {
		core.LogError("engine stopped: %s", err)
		code = 1
	}

	if err := e.Shutdown(); err != nil {
		code = 1
	}
	os.Exit(code)
}
