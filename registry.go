package rayforce

import (
	"fmt"
	"sync"

	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
)

// token names one registered native handle. Tokens are never reused within a
// registry's lifetime, so a stale token can only ever read as dead.
type token uint64

// registry tracks live native handles and their owning wrapper objects. It
// guarantees at most one live wrapper per handle and exactly one native free
// per handle; double release is an idempotent no-op so destructor ordering
// races stay harmless.
type registry struct {
	mu      sync.Mutex
	next    token
	entries map[token]*entry
}

type entry struct {
	handle   enginecore.Handle
	parent   token
	children int
	live     bool
	free     func(enginecore.Handle) enginecore.Status
}

func newRegistry() *registry {
	return &registry{next: 1, entries: make(map[token]*entry)}
}

// register records a native handle and its release entry point. parent is 0
// for root handles (connections). The parent's child count blocks its release
// while this handle is live.
func (r *registry) register(h enginecore.Handle, parent token, free func(enginecore.Handle) enginecore.Status) token {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.next
	r.next++
	r.entries[t] = &entry{handle: h, parent: parent, live: true, free: free}
	if parent != 0 {
		if p, ok := r.entries[parent]; ok && p.live {
			p.children++
		}
	}
	return t
}

// isLive reports whether the token still owns a live native handle.
func (r *registry) isLive(t token) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[t]
	return ok && e.live
}

// handle returns the native handle for a live token.
func (r *registry) handle(t token) (enginecore.Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[t]
	if !ok || !e.live {
		return enginecore.InvalidHandle, false
	}
	return e.handle, true
}

// release frees the native handle behind the token. Releasing a dead or
// unknown token is a no-op. Releasing a handle whose children are still live
// is a detected usage error and leaves the handle live.
func (r *registry) release(t token) error {
	r.mu.Lock()
	e, ok := r.entries[t]
	if !ok || !e.live {
		r.mu.Unlock()
		return nil
	}
	if e.children > 0 {
		n := e.children
		r.mu.Unlock()
		return &Error{
			Kind:    ErrInvalidArgument,
			Message: fmt.Sprintf("cannot release handle with %d live child handles", n),
		}
	}
	e.live = false
	if p, ok := r.entries[e.parent]; ok {
		p.children--
	}
	free, h := e.free, e.handle
	r.mu.Unlock()

	// The native free runs outside the registry lock; it may block.
	if st := free(h); st != enginecore.StatusOk {
		return &Error{
			Kind:    translate(st),
			Status:  st,
			Message: "engine failed to release handle",
		}
	}
	return nil
}

// invalidate marks the token dead without calling the native free. Used when
// a fatal status already left the engine-side resource unusable.
func (r *registry) invalidate(t token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[t]
	if !ok || !e.live {
		return
	}
	e.live = false
	if p, ok := r.entries[e.parent]; ok {
		p.children--
	}
}
