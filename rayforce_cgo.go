//go:build rayforcecgo
// +build rayforcecgo

package rayforce

import (
	"github.com/rayforce-db/rayforce-go/pkg/cgocore"
	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
)

const currentBackend = BackendCGO

func defaultEngine() (enginecore.Engine, error) {
	return cgocore.New(), nil
}
