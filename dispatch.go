package rayforce

import (
	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
)

// dispatcher invokes native entry points with freshly marshalled arguments.
// Every call through a connection handle is serialized by the connection's
// call lock, because the engine gives no thread-safety guarantee for
// concurrent use of one handle. Calls are treated as blocking operations:
// nothing here assumes the engine cooperates with the Go scheduler, and an
// in-flight call is never preempted.
type dispatcher struct {
	eng enginecore.Engine
	reg *registry
}

// begin validates the connection wrapper before any native call: a released
// or invalidated wrapper fails here without touching the engine, and a
// cancel-requested wrapper refuses new work.
func (d *dispatcher) begin(c *Connection) (enginecore.Handle, *Error) {
	h, ok := d.reg.handle(c.tok)
	if !ok {
		return enginecore.InvalidHandle, &Error{
			Kind:    ErrInvalidArgument,
			Message: "connection is closed",
			Session: c.session,
		}
	}
	if c.cancelled.Load() {
		return enginecore.InvalidHandle, &Error{
			Kind:    ErrCancelled,
			Message: "cancel requested on connection",
			Session: c.session,
		}
	}
	return h, nil
}

// fail translates a non-Ok status using the engine's structured last-error
// detail and invalidates the wrapper on fatal statuses.
func (d *dispatcher) fail(c *Connection, connH enginecore.Handle, s enginecore.Status) *Error {
	err := statusError(s, d.eng.LastError(connH), c.session)
	if err.Fatal {
		d.reg.invalidate(c.tok)
	}
	return err
}

// prepare compiles a statement and registers its handle as a child of the
// connection.
func (d *dispatcher) prepare(c *Connection, query string) (token, error) {
	connH, perr := d.begin(c)
	if perr != nil {
		return 0, perr
	}

	// The query buffer is marshalled immediately before the call and not
	// retained afterwards.
	buf := []byte(query)

	c.callMu.Lock()
	h, st := d.eng.Prepare(connH, buf)
	c.callMu.Unlock()

	if st != enginecore.StatusOk {
		return 0, d.fail(c, connH, st)
	}
	return d.reg.register(h, c.tok, d.eng.FreeResult), nil
}

// exec runs a prepared statement and registers the result cursor as a child
// of the connection.
func (d *dispatcher) exec(c *Connection, stmtTok token, args []Value) (token, error) {
	connH, perr := d.begin(c)
	if perr != nil {
		return 0, perr
	}
	stmtH, ok := d.reg.handle(stmtTok)
	if !ok {
		return 0, &Error{Kind: ErrInvalidArgument, Message: "statement is closed", Session: c.session}
	}

	raw := make([]enginecore.RawValue, len(args))
	for i, a := range args {
		rv, err := toNative(a)
		if err != nil {
			return 0, withSession(err, c.session)
		}
		raw[i] = rv
	}

	c.callMu.Lock()
	h, st := d.eng.Exec(stmtH, raw)
	c.callMu.Unlock()

	if st != enginecore.StatusOk {
		return 0, d.fail(c, connH, st)
	}
	if c.cancelled.Load() {
		// The in-flight call completed; refuse its results and release the
		// cursor so nothing leaks engine-side.
		d.release(c, d.reg.register(h, c.tok, d.eng.FreeResult)) //nolint:errcheck
		return 0, &Error{Kind: ErrCancelled, Message: "cancel requested on connection", Session: c.session}
	}
	return d.reg.register(h, c.tok, d.eng.FreeResult), nil
}

// fetch pulls the next batch from a cursor and marshals it into a host
// table. The engine-owned batch buffer is copied before this returns; on a
// non-Ok status the payload is never touched.
func (d *dispatcher) fetch(c *Connection, curTok token, max int) (*Table, bool, error) {
	connH, perr := d.begin(c)
	if perr != nil {
		return nil, false, perr
	}
	curH, ok := d.reg.handle(curTok)
	if !ok {
		return nil, false, &Error{Kind: ErrInvalidArgument, Message: "result set is closed", Session: c.session}
	}

	c.callMu.Lock()
	batch, more, st := d.eng.Fetch(curH, max)
	c.callMu.Unlock()

	if st != enginecore.StatusOk {
		return nil, false, d.fail(c, connH, st)
	}
	if c.cancelled.Load() {
		return nil, false, &Error{Kind: ErrCancelled, Message: "cancel requested on connection", Session: c.session}
	}
	if batch == nil {
		return nil, false, withSession(bindingErr("engine returned Ok with no batch payload"), c.session)
	}
	v, err := tableFromNative(batch)
	if err != nil {
		return nil, false, withSession(err, c.session)
	}
	t, _ := v.AsTable()
	return t, more, nil
}

// release frees a registered handle. The native free is a call through the
// connection handle like any other, so it takes the connection's call lock;
// a close never overlaps an in-flight prepare, exec or fetch.
func (d *dispatcher) release(c *Connection, t token) error {
	c.callMu.Lock()
	defer c.callMu.Unlock()
	return d.reg.release(t)
}

// closeConn releases the connection handle through the registry. Live child
// handles make this a detected usage error.
func (d *dispatcher) closeConn(c *Connection) error {
	return d.release(c, c.tok)
}
