// Package gocore is the pure Go reference implementation of the rayforce
// engine ABI. It keeps databases in process memory as typed column vectors
// and implements the same flat entry-point table as librayforce, which makes
// it the default backend and the engine the test suite runs against.
package gocore

import (
	"fmt"
	"sync"

	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
)

// Engine is an in-memory rayforce engine. One Engine owns a set of named
// databases; connections opened with the same DSN share a database.
type Engine struct {
	mu      sync.Mutex
	nextID  enginecore.Handle
	conns   map[enginecore.Handle]*conn
	stmts   map[enginecore.Handle]*stmt
	cursors map[enginecore.Handle]*cursor
	dbs     map[string]*database
}

type conn struct {
	db       *database
	children int
	lastErr  enginecore.ErrInfo
}

type stmt struct {
	owner *conn
	plan  *plan
}

type cursor struct {
	owner *conn
	table *enginecore.RawTable
	pos   int
}

type database struct {
	mu     sync.Mutex
	tables map[string]*table
}

type table struct {
	cols []column
}

type column struct {
	name string
	tag  enginecore.TypeTag
	vals []enginecore.RawValue
}

func (t *table) rows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].vals)
}

// New returns an empty in-memory engine.
func New() *Engine {
	return &Engine{
		nextID:  1,
		conns:   make(map[enginecore.Handle]*conn),
		stmts:   make(map[enginecore.Handle]*stmt),
		cursors: make(map[enginecore.Handle]*cursor),
		dbs:     make(map[string]*database),
	}
}

func (e *Engine) alloc() enginecore.Handle {
	h := e.nextID
	e.nextID++
	return h
}

// fail records structured error detail on the connection and returns the
// status, mirroring the native get-last-error protocol.
func (c *conn) fail(code enginecore.Status, format string, args ...interface{}) enginecore.Status {
	c.lastErr = enginecore.ErrInfo{Code: code, Message: fmt.Sprintf(format, args...)}
	return code
}

// Open connects to the named in-memory database, creating it on first use.
func (e *Engine) Open(dsn string) (enginecore.Handle, enginecore.Status) {
	if dsn == "" {
		return enginecore.InvalidHandle, enginecore.StatusDomain
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	db, ok := e.dbs[dsn]
	if !ok {
		db = &database{tables: make(map[string]*table)}
		e.dbs[dsn] = db
	}
	h := e.alloc()
	e.conns[h] = &conn{db: db}
	return h, enginecore.StatusOk
}

// Close releases a connection. Live child handles make this a usage error.
func (e *Engine) Close(h enginecore.Handle) enginecore.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.conns[h]
	if !ok {
		return enginecore.StatusValue
	}
	if c.children > 0 {
		return c.fail(enginecore.StatusDomain, "connection has %d live child handles", c.children)
	}
	delete(e.conns, h)
	return enginecore.StatusOk
}

// Prepare parses the statement and returns a statement handle.
func (e *Engine) Prepare(connH enginecore.Handle, query []byte) (enginecore.Handle, enginecore.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.conns[connH]
	if !ok {
		return enginecore.InvalidHandle, enginecore.StatusValue
	}
	p, err := parse(string(query))
	if err != nil {
		return enginecore.InvalidHandle, c.fail(enginecore.StatusParse, "%v", err)
	}
	h := e.alloc()
	e.stmts[h] = &stmt{owner: c, plan: p}
	c.children++
	return h, enginecore.StatusOk
}

// Exec runs a prepared statement and returns a cursor over its results.
func (e *Engine) Exec(stmtH enginecore.Handle, args []enginecore.RawValue) (enginecore.Handle, enginecore.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.stmts[stmtH]
	if !ok {
		return enginecore.InvalidHandle, enginecore.StatusValue
	}
	result, st := run(s.owner, s.plan, args)
	if st != enginecore.StatusOk {
		return enginecore.InvalidHandle, st
	}
	h := e.alloc()
	e.cursors[h] = &cursor{owner: s.owner, table: result}
	s.owner.children++
	return h, enginecore.StatusOk
}

// defaultBatch is the engine-chosen Fetch batch size.
const defaultBatch = 1024

// Fetch copies out the next batch of rows from the cursor. The returned
// table is freshly allocated per call, so the engine-owned buffer contract
// holds trivially.
func (e *Engine) Fetch(cursorH enginecore.Handle, max int) (*enginecore.RawTable, bool, enginecore.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, ok := e.cursors[cursorH]
	if !ok {
		return nil, false, enginecore.StatusValue
	}
	if max <= 0 {
		max = defaultBatch
	}
	total := cur.table.Rows()
	n := total - cur.pos
	if n > max {
		n = max
	}

	batch := &enginecore.RawTable{Cols: make([]enginecore.RawColumn, len(cur.table.Cols))}
	for i, col := range cur.table.Cols {
		vals := make([]enginecore.RawValue, n)
		copy(vals, col.Vals[cur.pos:cur.pos+n])
		batch.Cols[i] = enginecore.RawColumn{Name: col.Name, Tag: col.Tag, Vals: vals}
	}
	cur.pos += n
	return batch, cur.pos < total, enginecore.StatusOk
}

// FreeResult releases a statement or cursor handle.
func (e *Engine) FreeResult(h enginecore.Handle) enginecore.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.stmts[h]; ok {
		delete(e.stmts, h)
		s.owner.children--
		return enginecore.StatusOk
	}
	if cur, ok := e.cursors[h]; ok {
		delete(e.cursors, h)
		cur.owner.children--
		return enginecore.StatusOk
	}
	return enginecore.StatusValue
}

// LastError returns the structured detail for the most recent failure on the
// connection.
func (e *Engine) LastError(connH enginecore.Handle) enginecore.ErrInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.conns[connH]
	if !ok {
		return enginecore.ErrInfo{Code: enginecore.StatusValue, Message: "unknown connection handle"}
	}
	return c.lastErr
}
