package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/vidmark/internal/browser"
	"github.com/MrSnakeDoc/vidmark/internal/logger"
	"github.com/MrSnakeDoc/vidmark/internal/options"
	"github.com/MrSnakeDoc/vidmark/internal/registry"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	Registry     *registry.Registry          // video bookmark engine
	Options      *options.Manager            // user options
	Grants       *browser.GrantStore         // granted optional capabilities
	StoreBackend string                      // name of the kv backend, for /infra
	StorePing    func(context.Context) error // nil when the backend has nothing to ping
	SweepTrigger func()                      // queues a background sweep, nil when no sweeper runs
}
