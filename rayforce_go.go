//go:build !rayforcecgo && !rayforcepurego
// +build !rayforcecgo,!rayforcepurego

package rayforce

import (
	"sync"

	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
	"github.com/rayforce-db/rayforce-go/pkg/gocore"
)

const currentBackend = BackendPureGo

// The reference engine is process-scoped: all connections in the process
// share one engine instance, mirroring the one-loaded-library model of the
// native backends. Databases live as long as the process.
var (
	engineOnce sync.Once
	procEngine *gocore.Engine
)

func defaultEngine() (enginecore.Engine, error) {
	engineOnce.Do(func() { procEngine = gocore.New() })
	return procEngine, nil
}
