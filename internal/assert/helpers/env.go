package helpers

import (
	"testing"
	"time"

	"github.com/kode4food/banquet/internal/config"
	"github.com/kode4food/banquet/internal/engine"
	"github.com/kode4food/banquet/pkg/api"
)

// TestEnv holds the components needed for engine testing: an engine
// wired to scripted capability bindings
type TestEnv struct {
	Engine  *engine.Engine
	Mock    *MockBindings
	Config  *config.Config
	Cleanup func()
}

// NewTestConfig creates a configuration suited to tests: debug logging
// and timeouts short enough to keep failures quick
func NewTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.LogLevel = "debug"
	cfg.RunTimeout = 5 * api.Second
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

// NewTestEnv creates a started engine whose capabilities resolve to a
// fresh MockBindings script
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	mock := NewMockBindings()
	cfg := NewTestConfig()
	eng := engine.New(cfg, mock.Bindings(engine.RequiredCapabilities()...))
	eng.Start()

	return &TestEnv{
		Engine: eng,
		Mock:   mock,
		Config: cfg,
		Cleanup: func() {
			_ = eng.Stop()
		},
	}
}

// WithTestEnv creates a test environment, executes the provided function
// with it, and ensures cleanup happens automatically
func WithTestEnv(t *testing.T, fn func(*TestEnv)) {
	t.Helper()
	env := NewTestEnv(t)
	defer env.Cleanup()
	fn(env)
}

// WithEngine creates a test environment and executes the provided
// function with its engine and capability script
func WithEngine(t *testing.T, fn func(*engine.Engine, *MockBindings)) {
	t.Helper()
	WithTestEnv(t, func(env *TestEnv) {
		fn(env.Engine, env.Mock)
	})
}
