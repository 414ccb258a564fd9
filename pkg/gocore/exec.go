package gocore

import (
	"bytes"

	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
)

// run executes a plan against the connection's database. The caller holds the
// engine lock; the database lock covers concurrent connections to the same
// DSN.
func run(c *conn, p *plan, args []enginecore.RawValue) (*enginecore.RawTable, enginecore.Status) {
	if len(args) != p.params {
		return nil, c.fail(enginecore.StatusArity, "statement takes %d arguments, got %d", p.params, len(args))
	}

	db := c.db
	db.mu.Lock()
	defer db.mu.Unlock()

	switch p.kind {
	case planCreate:
		return runCreate(c, db, p)
	case planInsert:
		return runInsert(c, db, p, args)
	default:
		return runSelect(c, db, p, args)
	}
}

func runCreate(c *conn, db *database, p *plan) (*enginecore.RawTable, enginecore.Status) {
	if _, exists := db.tables[p.table]; exists {
		return nil, c.fail(enginecore.StatusDomain, "table %q already exists", p.table)
	}
	t := &table{cols: make([]column, len(p.defs))}
	for i, def := range p.defs {
		t.cols[i] = column{name: def.name, tag: def.tag}
	}
	db.tables[p.table] = t
	return &enginecore.RawTable{}, enginecore.StatusOk
}

func runInsert(c *conn, db *database, p *plan, args []enginecore.RawValue) (*enginecore.RawTable, enginecore.Status) {
	t, ok := db.tables[p.table]
	if !ok {
		return nil, c.fail(enginecore.StatusValue, "undefined table %q", p.table)
	}
	if len(p.exprs) != len(t.cols) {
		return nil, c.fail(enginecore.StatusLength, "table %q has %d columns, got %d values", p.table, len(t.cols), len(p.exprs))
	}
	row := make([]enginecore.RawValue, len(p.exprs))
	for i, e := range p.exprs {
		v := resolve(e, args)
		stored, st := coerce(v, t.cols[i].tag)
		if st != enginecore.StatusOk {
			return nil, c.fail(st, "column %q expects %s, got %s", t.cols[i].name, t.cols[i].tag, v.Tag)
		}
		row[i] = stored
	}
	for i := range t.cols {
		t.cols[i].vals = append(t.cols[i].vals, row[i])
	}
	return &enginecore.RawTable{}, enginecore.StatusOk
}

func runSelect(c *conn, db *database, p *plan, args []enginecore.RawValue) (*enginecore.RawTable, enginecore.Status) {
	t, ok := db.tables[p.table]
	if !ok {
		return nil, c.fail(enginecore.StatusValue, "undefined table %q", p.table)
	}

	// Resolve projection.
	var cols []*column
	if len(p.cols) == 0 {
		for i := range t.cols {
			cols = append(cols, &t.cols[i])
		}
	} else {
		for _, name := range p.cols {
			col := t.col(name)
			if col == nil {
				return nil, c.fail(enginecore.StatusValue, "undefined column %q", name)
			}
			cols = append(cols, col)
		}
	}

	// Resolve filter.
	keep := func(int) bool { return true }
	if p.where != "" {
		col := t.col(p.where)
		if col == nil {
			return nil, c.fail(enginecore.StatusValue, "undefined column %q", p.where)
		}
		want, st := coerce(resolve(p.filter, args), col.tag)
		if st != enginecore.StatusOk {
			return nil, c.fail(st, "filter on %q expects %s", p.where, col.tag)
		}
		keep = func(row int) bool { return rawEqual(col.vals[row], want) }
	}

	result := &enginecore.RawTable{Cols: make([]enginecore.RawColumn, len(cols))}
	for i, col := range cols {
		result.Cols[i] = enginecore.RawColumn{Name: col.name, Tag: col.tag}
	}
	taken := 0
	for row := 0; row < t.rows(); row++ {
		if !keep(row) {
			continue
		}
		if p.limit >= 0 && taken == p.limit {
			break
		}
		for i, col := range cols {
			result.Cols[i].Vals = append(result.Cols[i].Vals, col.vals[row])
		}
		taken++
	}
	return result, enginecore.StatusOk
}

func (t *table) col(name string) *column {
	for i := range t.cols {
		if t.cols[i].name == name {
			return &t.cols[i]
		}
	}
	return nil
}

func resolve(e expr, args []enginecore.RawValue) enginecore.RawValue {
	if e.placeholder > 0 {
		return args[e.placeholder-1]
	}
	return e.lit
}

// coerce validates a value against the column tag and normalizes string and
// bytes buffers to the length-prefixed form for storage. Both boundary
// encodings are accepted on the way in.
func coerce(v enginecore.RawValue, tag enginecore.TypeTag) (enginecore.RawValue, enginecore.Status) {
	if v.Tag != tag {
		return v, enginecore.StatusType
	}
	isBuf := v.Tag == enginecore.TagStr || v.Tag == enginecore.TagBytes
	if isBuf && v.Enc == enginecore.EncNulTerminated {
		b := v.Bytes
		if n := bytes.IndexByte(b, 0); n >= 0 {
			b = b[:n]
		}
		v = enginecore.RawValue{Tag: v.Tag, Bytes: b, Enc: enginecore.EncLenPrefixed}
	}
	return v, enginecore.StatusOk
}

func rawEqual(a, b enginecore.RawValue) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case enginecore.TagI64:
		return a.I64 == b.I64
	case enginecore.TagF64:
		return a.F64 == b.F64
	case enginecore.TagStr, enginecore.TagBytes:
		return bytes.Equal(a.Bytes, b.Bytes)
	case enginecore.TagNull:
		return true
	}
	return false
}
