package engine

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/spaghettifunk/trigon/engine/assets"
	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/platform"
	"github.com/spaghettifunk/trigon/engine/renderer"
	"github.com/spaghettifunk/trigon/engine/renderer/vulkan"
	"github.com/spaghettifunk/trigon/engine/resources"
	"github.com/spaghettifunk/trigon/engine/scene"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *ApplicationConfig
	isRunning     atomic.Bool
	platform      *platform.Platform
	assetManager  *assets.AssetManager
	backend       *vulkan.VulkanRenderer
	frames        *renderer.FrameCycleController
	configWatcher *configWatcher
	clock         *core.Clock
	lastTime      float64
	frameNumber   uint64
	log           *log.Logger
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}

	p, err := platform.New()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       g.ApplicationConfig,
		clock:        core.NewClock(),
		platform:     p,
		assetManager: am,
		lastTime:     0,
		frameNumber:  1,
		log:          core.LogWith("run", core.RunID()),
	}
	// cleared by Stop, which may run before the loop starts
	e.isRunning.Store(true)
	return e, nil
}

// Initialize opens the window, loads the shaders and builds the renderer.
// On failure the caller still has to call Shutdown to release what was created.
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	cfg := e.config

	lvl, err := cfg.Level()
	if err != nil {
		return err
	}
	core.SetLogLevel(lvl)
	e.log.Info("Initializing engine", "name", cfg.Name, "validation", cfg.Validation)

	if !core.EventInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_ASSET_CHANGED, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_CONFIG_CHANGED, e, e.onEvent)

	if err := e.platform.Startup(cfg.Name, cfg.StartPosX, cfg.StartPosY, renderer.RenderWidth, renderer.RenderHeight); err != nil {
		return err
	}

	if err := e.assetManager.Initialize(cfg.AssetDir); err != nil {
		return err
	}

	vertexShader, err := e.loadShader(vertexShaderName)
	if err != nil {
		return err
	}
	fragmentShader, err := e.loadShader(fragmentShaderName)
	if err != nil {
		return err
	}

	e.backend = vulkan.New(e.platform, cfg.Validation)
	if err := e.backend.Initialize(cfg.Name, renderer.RenderWidth, renderer.RenderHeight, vertexShader, fragmentShader); err != nil {
		core.LogError("failed to initialize the renderer: %s", err)
		return err
	}

	transform := scene.NewTransform(float32(renderer.RenderWidth)/float32(renderer.RenderHeight), true)
	frames, err := renderer.NewFrameCycleController(e.backend.FrameContext(), transform)
	if err != nil {
		return err
	}
	e.frames = frames

	if cfg.Path() != "" {
		cw, err := newConfigWatcher(cfg.Path())
		if err != nil {
			// hot reload is a convenience, run without it
			core.LogWarn("Not watching %s: %s", cfg.Path(), err)
		} else {
			e.configWatcher = cw
		}
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) loadShader(name string) ([]uint32, error) {
	res, err := e.assetManager.LoadAsset(name, resources.ResourceTypeShader, nil)
	if err != nil {
		return nil, err
	}
	code, ok := res.ShaderCode()
	if !ok {
		return nil, fmt.Errorf("shader %s: %w", name, core.ErrInvalidShaderBinary)
	}
	if err := e.assetManager.UnloadAsset(res); err != nil {
		core.LogWarn("failed to unload shader %s: %s", name, err)
	}
	core.LogDebug("Loaded shader %s (%d words).", name, len(code))
	return code, nil
}

// Run renders frames until the window closes or a quit event arrives.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine not initialized")
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning.Load() {
		if !e.platform.PumpMessages() {
			e.isRunning.Store(false)
			break
		}

		// Update clock and get delta time.
		e.clock.Update()
		var currentTime float64 = e.clock.Elapsed()
		var delta float64 = (currentTime - e.lastTime)
		var frameStartTime float64 = e.platform.GetAbsoluteTime()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("Game update failed, shutting down: %s", err)
				e.isRunning.Store(false)
				return err
			}
		}

		e.frames.Advance(delta)
		if err := e.frames.RenderFrame(e.frameNumber); err != nil {
			core.LogFatal("Frame %d failed: %s", e.frameNumber, err)
			return err
		}

		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(e.frameNumber, delta); err != nil {
				core.LogError("Game render failed, shutting down: %s", err)
				e.isRunning.Store(false)
				return err
			}
		}

		core.MetricsUpdate(e.platform.GetAbsoluteTime() - frameStartTime)

		e.lastTime = currentTime
		e.frameNumber++
	}

	e.log.Info("Render loop stopped", "frames", e.frameNumber-1)
	return nil
}

// Stop asks the render loop to return after the current frame. Safe to call
// from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

// Shutdown waits for the GPU and tears everything down in reverse creation order.
func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	var errs []error

	if e.configWatcher != nil {
		e.configWatcher.close()
		e.configWatcher = nil
	}
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	if e.backend != nil {
		errs = append(errs, e.backend.Shutdown())
		e.backend = nil
	}
	if err := e.assetManager.Shutdown(); err != nil && !errors.Is(err, core.ErrAssetManagerClosed) {
		errs = append(errs, err)
	}
	errs = append(errs, e.platform.Shutdown())
	errs = append(errs, core.EventShutdown())

	err := errors.Join(errs...)
	if err != nil {
		e.log.Error("Engine shut down with errors", "err", err)
		return err
	}
	e.log.Info("Engine shut down")
	return nil
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.Stop()
		return true
	case core.EVENT_CODE_ASSET_CHANGED:
		core.LogInfo("Asset %s changed on disk; restart to pick it up.", data.Data.C[0])
	case core.EVENT_CODE_CONFIG_CHANGED:
		core.LogDebug("Configuration reloaded from %s.", data.Data.C[0])
	}
	return false
}
