package rayforce

import "sync"

// ResultSet is a cursor over the results of one statement execution. Batches
// are fetched from the engine on demand; once the engine reports the cursor
// exhausted, further fetches fail with an invalid-argument error. Closing
// releases the native cursor exactly once.
type ResultSet struct {
	conn *Connection
	stmt *Statement
	tok  token

	// ownStmt marks result sets created by Connection.Query, which release
	// their statement together with the cursor.
	ownStmt bool

	// BatchSize caps rows per engine fetch; zero lets the engine choose.
	BatchSize int

	mu        sync.Mutex
	fetched   bool
	exhausted bool
	closed    bool
}

// Fetch returns the next batch of rows as a table. A batch with zero rows
// and named, typed columns is a valid result, not an error. After the last
// batch, Fetch fails with an invalid-argument error.
func (rs *ResultSet) Fetch() (*Table, error) {
	rs.mu.Lock()
	if rs.closed {
		rs.mu.Unlock()
		return nil, &Error{Kind: ErrInvalidArgument, Message: "result set is closed", Session: rs.conn.session}
	}
	if rs.exhausted {
		rs.mu.Unlock()
		return nil, &Error{Kind: ErrInvalidArgument, Message: "result set is exhausted", Session: rs.conn.session}
	}
	rs.mu.Unlock()

	batch, more, err := rs.conn.d.fetch(rs.conn, rs.tok, rs.BatchSize)
	if err != nil {
		return nil, err
	}

	rs.mu.Lock()
	rs.fetched = true
	if !more {
		rs.exhausted = true
	}
	rs.mu.Unlock()
	return batch, nil
}

// All drains the cursor and returns every remaining row as one table.
// Column names and declared kinds are preserved even when no rows exist.
func (rs *ResultSet) All() (*Table, error) {
	result, err := rs.Fetch()
	if err != nil {
		return nil, err
	}
	for {
		rs.mu.Lock()
		done := rs.exhausted
		rs.mu.Unlock()
		if done {
			return result, nil
		}
		batch, err := rs.Fetch()
		if err != nil {
			return nil, err
		}
		if err := appendBatch(result, batch); err != nil {
			return nil, withSession(err, rs.conn.session)
		}
	}
}

// Exhausted reports whether the engine cursor has no more rows.
func (rs *ResultSet) Exhausted() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.exhausted
}

// Close releases the native cursor, and the owning statement when this
// result set came from Connection.Query. Closing twice is a no-op.
func (rs *ResultSet) Close() error {
	rs.mu.Lock()
	if rs.closed {
		rs.mu.Unlock()
		return nil
	}
	rs.closed = true
	rs.mu.Unlock()

	err := rs.conn.d.release(rs.conn, rs.tok)
	rs.stmt.release()
	if rs.ownStmt {
		if cerr := rs.stmt.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// appendBatch concatenates a later batch onto an accumulated table. Batches
// of one cursor must agree on column names and kinds; a drifting shape means
// the engine and binding disagree and is surfaced, not patched over.
func appendBatch(dst, batch *Table) error {
	if len(batch.cols) != len(dst.cols) {
		return bindingErr("batch has %d columns, cursor started with %d", len(batch.cols), len(dst.cols))
	}
	for i := range batch.cols {
		if batch.cols[i].Name != dst.cols[i].Name || batch.cols[i].Kind != dst.cols[i].Kind {
			return bindingErr("batch column %d is %s:%s, cursor started with %s:%s",
				i, batch.cols[i].Name, batch.cols[i].Kind, dst.cols[i].Name, dst.cols[i].Kind)
		}
		dst.cols[i].Values = append(dst.cols[i].Values, batch.cols[i].Values...)
	}
	return nil
}
