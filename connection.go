package rayforce

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
)

// Connection is the host-side proxy for one native engine connection. It
// moves Closed -> Open on a successful connect and back to Closed on explicit
// close or a fatal engine status. Operations on a closed connection fail with
// an invalid-argument error and never reach the engine.
//
// A Connection is safe for concurrent use: all native calls through its
// handle are serialized by an internal lock. For parallel queries open one
// connection per concurrent caller.
type Connection struct {
	d       *dispatcher
	tok     token
	session string

	// callMu serializes native calls through this handle; the engine is
	// not assumed thread-safe for concurrent use of one handle.
	callMu sync.Mutex

	cancelled atomic.Bool
}

func open(eng enginecore.Engine, dsn string) (*Connection, error) {
	reg := newRegistry()
	d := &dispatcher{eng: eng, reg: reg}
	session := uuid.NewString()

	h, st := eng.Open(dsn)
	if st != enginecore.StatusOk {
		return nil, &Error{
			Kind:    translate(st),
			Status:  st,
			Message: "engine failed to open " + dsn,
			Session: session,
			Fatal:   st.Fatal(),
		}
	}
	c := &Connection{d: d, session: session}
	c.tok = reg.register(h, 0, eng.Close)
	return c, nil
}

// SessionID returns the unique id assigned to this connection, carried in
// every error the connection produces.
func (c *Connection) SessionID() string { return c.session }

// IsOpen reports whether the connection is still usable. A fatal engine
// status flips this to false permanently; reconnect with Open.
func (c *Connection) IsOpen() bool { return c.d.reg.isLive(c.tok) }

// Cancel marks the connection cancel-requested. An in-flight native call
// cannot be preempted; it runs to completion, after which its results are
// refused and further operations fail with a cancellation error.
func (c *Connection) Cancel() { c.cancelled.Store(true) }

// Prepare compiles a statement on this connection.
func (c *Connection) Prepare(query string) (*Statement, error) {
	tok, err := c.d.prepare(c, query)
	if err != nil {
		return nil, err
	}
	return &Statement{conn: c, tok: tok, query: query, state: stmtPrepared}, nil
}

// Query prepares and executes a statement in one step. The statement is
// owned by the returned result set and released with it.
func (c *Connection) Query(query string, args ...Value) (*ResultSet, error) {
	stmt, err := c.Prepare(query)
	if err != nil {
		return nil, err
	}
	rs, err := stmt.Exec(args...)
	if err != nil {
		stmt.Close() //nolint:errcheck
		return nil, err
	}
	rs.ownStmt = true
	return rs, nil
}

// Exec runs a statement that produces no interesting result, such as a table
// definition or an insert, and releases everything it acquired.
func (c *Connection) Exec(query string, args ...Value) error {
	rs, err := c.Query(query, args...)
	if err != nil {
		return err
	}
	return rs.Close()
}

// Close releases the native connection handle. Closing with live statements
// or result sets is a detected usage error; closing an already closed
// connection is a no-op.
func (c *Connection) Close() error {
	return c.d.closeConn(c)
}
