package rayforce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
)

func countingFree(n *int) func(enginecore.Handle) enginecore.Status {
	return func(enginecore.Handle) enginecore.Status {
		*n++
		return enginecore.StatusOk
	}
}

func TestRegistryReleaseExactlyOnce(t *testing.T) {
	reg := newRegistry()
	frees := 0
	tok := reg.register(7, 0, countingFree(&frees))
	require.True(t, reg.isLive(tok))

	require.NoError(t, reg.release(tok))
	assert.Equal(t, 1, frees)
	assert.False(t, reg.isLive(tok))

	// Double release is a no-op, not a second native free.
	require.NoError(t, reg.release(tok))
	assert.Equal(t, 1, frees)
}

func TestRegistryTokensNeverReused(t *testing.T) {
	reg := newRegistry()
	frees := 0
	t1 := reg.register(1, 0, countingFree(&frees))
	require.NoError(t, reg.release(t1))

	t2 := reg.register(2, 0, countingFree(&frees))
	assert.NotEqual(t, t1, t2)
	assert.False(t, reg.isLive(t1))
	assert.True(t, reg.isLive(t2))
}

func TestRegistryChildBlocksParentRelease(t *testing.T) {
	reg := newRegistry()
	frees := 0
	parent := reg.register(1, 0, countingFree(&frees))
	child := reg.register(2, parent, countingFree(&frees))

	err := reg.release(parent)
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
	assert.True(t, reg.isLive(parent))
	assert.Equal(t, 0, frees)

	require.NoError(t, reg.release(child))
	require.NoError(t, reg.release(parent))
	assert.Equal(t, 2, frees)
}

func TestRegistryInvalidateSkipsNativeFree(t *testing.T) {
	reg := newRegistry()
	frees := 0
	tok := reg.register(1, 0, countingFree(&frees))

	reg.invalidate(tok)
	assert.False(t, reg.isLive(tok))
	assert.Equal(t, 0, frees)

	// Releasing an invalidated token stays a no-op.
	require.NoError(t, reg.release(tok))
	assert.Equal(t, 0, frees)
}

func TestRegistryInvalidateUnblocksParent(t *testing.T) {
	reg := newRegistry()
	frees := 0
	parent := reg.register(1, 0, countingFree(&frees))
	child := reg.register(2, parent, countingFree(&frees))

	// Invalidating the child decrements the parent's child count, so the
	// parent can still be released after a fatal status killed the child.
	reg.invalidate(child)
	require.NoError(t, reg.release(parent))
	assert.Equal(t, 1, frees)
}

func TestRegistryReleaseSurfacesEngineFailure(t *testing.T) {
	reg := newRegistry()
	tok := reg.register(1, 0, func(enginecore.Handle) enginecore.Status {
		return enginecore.StatusOS
	})

	err := reg.release(tok)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrEngineInternal, e.Kind)

	// The wrapper is dead regardless of what the native free reported.
	assert.False(t, reg.isLive(tok))
}
