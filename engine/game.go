package engine

// Game is the application plugged into the engine. Every hook is optional.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render runs after the frame identified by frameID has been presented.
type Render func(frameID uint64, deltaTime float64) error
type Shutdown func() error
