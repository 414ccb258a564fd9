package rayforce

import (
	"context"
	"sync"
	"sync/atomic"
)

type stmtState int

const (
	stmtPrepared stmtState = iota
	stmtExecuting
	stmtClosed
)

// Statement is a prepared statement bound to one connection. It becomes
// Executing while a result set from it is live, returns to Prepared when that
// result set is released, and is unusable once Closed. Calls on a closed
// statement fail without reaching the engine.
type Statement struct {
	conn  *Connection
	tok   token
	query string

	mu    sync.Mutex
	state stmtState
}

// Query returns the statement text this statement was prepared from.
func (s *Statement) Query() string { return s.query }

// Exec runs the statement with the given arguments and returns a result set
// over the engine cursor. Arguments are marshalled immediately before the
// native call.
func (s *Statement) Exec(args ...Value) (*ResultSet, error) {
	return s.ExecContext(context.Background(), args...)
}

// ExecContext is Exec with cancellation. Cancelling the context marks the
// owning connection cancel-requested: the in-flight native call still runs to
// completion, but its results are refused once it returns.
func (s *Statement) ExecContext(ctx context.Context, args ...Value) (*ResultSet, error) {
	if ctx.Err() != nil {
		return nil, &Error{Kind: ErrCancelled, Message: "context cancelled before execution", Session: s.conn.session}
	}
	s.mu.Lock()
	switch s.state {
	case stmtClosed:
		s.mu.Unlock()
		return nil, &Error{Kind: ErrInvalidArgument, Message: "statement is closed", Session: s.conn.session}
	case stmtExecuting:
		s.mu.Unlock()
		return nil, &Error{Kind: ErrInvalidArgument, Message: "statement already has a live result set", Session: s.conn.session}
	}
	s.state = stmtExecuting
	s.mu.Unlock()

	stop := watchCancel(ctx, s.conn)
	curTok, err := s.conn.d.exec(s.conn, s.tok, args)
	if stop != nil {
		stop()
	}
	if err != nil {
		s.mu.Lock()
		s.state = stmtPrepared
		s.mu.Unlock()
		return nil, err
	}
	return &ResultSet{conn: s.conn, stmt: s, tok: curTok}, nil
}

// release returns the statement to Prepared once its result set is done.
func (s *Statement) release() {
	s.mu.Lock()
	if s.state == stmtExecuting {
		s.state = stmtPrepared
	}
	s.mu.Unlock()
}

// Close releases the native statement handle. Closing twice is a no-op.
func (s *Statement) Close() error {
	s.mu.Lock()
	if s.state == stmtClosed {
		s.mu.Unlock()
		return nil
	}
	if s.state == stmtExecuting {
		s.mu.Unlock()
		return &Error{Kind: ErrInvalidArgument, Message: "statement has a live result set", Session: s.conn.session}
	}
	s.state = stmtClosed
	s.mu.Unlock()
	return s.conn.d.release(s.conn, s.tok)
}

// watchCancel forwards context cancellation to the connection's cancel flag.
// It returns a stop function, or nil when the context can never be
// cancelled. stop disarms the watcher: a context that fires only after the
// watched call settled must not mark the connection cancel-requested, since
// the call's results were already delivered.
func watchCancel(ctx context.Context, c *Connection) func() {
	if ctx.Done() == nil {
		return nil
	}
	var settled atomic.Bool
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			if settled.CompareAndSwap(false, true) {
				c.Cancel()
			}
		case <-done:
		}
	}()
	return func() {
		settled.Store(true)
		close(done)
	}
}
