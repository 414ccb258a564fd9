//go:build rayforcepurego && !rayforcecgo
// +build rayforcepurego,!rayforcecgo

package rayforce

import (
	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
	"github.com/rayforce-db/rayforce-go/pkg/puregocore"
)

const currentBackend = BackendPurego

func defaultEngine() (enginecore.Engine, error) {
	eng, err := puregocore.Load()
	if err != nil {
		return nil, &Error{Kind: ErrEngineInternal, Message: err.Error()}
	}
	return eng, nil
}
