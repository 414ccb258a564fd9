package rayforce

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayforce-db/rayforce-go/pkg/gocore"
)

// openTest opens a connection to a fresh in-memory engine so tests never
// share database state.
func openTest(t *testing.T) *Connection {
	t.Helper()
	conn, err := OpenWith(gocore.New(), "mem://test")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() }) //nolint:errcheck
	return conn
}

func TestOpenEmptyDSN(t *testing.T) {
	_, err := OpenWith(gocore.New(), "")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestSessionIDIsUniquePerConnection(t *testing.T) {
	a := openTest(t)
	b := openTest(t)
	assert.NotEmpty(t, a.SessionID())
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}

func TestQueryRoundTrip(t *testing.T) {
	conn := openTest(t)

	require.NoError(t, conn.Exec("table trades (sym:string, px:float, qty:int)"))
	require.NoError(t, conn.Exec("insert into trades values (?, ?, ?)",
		NewString("AAPL"), NewFloat(189.5), NewInt(100)))
	require.NoError(t, conn.Exec("insert into trades values (?, ?, ?)",
		NewString("MSFT"), NewFloat(402.75), NewInt(25)))
	require.NoError(t, conn.Exec("insert into trades values ('AAPL', 190.25, 50)"))

	rs, err := conn.Query("select sym, qty from trades where sym = ?", NewString("AAPL"))
	require.NoError(t, err)
	defer rs.Close() //nolint:errcheck

	tbl, err := rs.All()
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Rows())
	assert.Equal(t, []string{"sym", "qty"}, tbl.ColumnNames())
	assert.True(t, tbl.Column("qty").Values[0].Equal(NewInt(100)))
	assert.True(t, tbl.Column("qty").Values[1].Equal(NewInt(50)))
}

func TestEmptyResultKeepsColumnShape(t *testing.T) {
	conn := openTest(t)
	require.NoError(t, conn.Exec("table t (a:int, b:string)"))

	rs, err := conn.Query("select * from t")
	require.NoError(t, err)
	defer rs.Close() //nolint:errcheck

	tbl, err := rs.Fetch()
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Rows())
	assert.Equal(t, []string{"a", "b"}, tbl.ColumnNames())
	assert.Equal(t, KindInt, tbl.Column("a").Kind)
	assert.Equal(t, KindString, tbl.Column("b").Kind)
	assert.True(t, rs.Exhausted())
}

func TestFetchAfterExhaustedFails(t *testing.T) {
	conn := openTest(t)
	require.NoError(t, conn.Exec("table t (a:int)"))

	rs, err := conn.Query("select * from t")
	require.NoError(t, err)
	defer rs.Close() //nolint:errcheck

	_, err = rs.Fetch()
	require.NoError(t, err)

	_, err = rs.Fetch()
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestBatchedFetchDrainsAllRows(t *testing.T) {
	conn := openTest(t)
	require.NoError(t, conn.Exec("table t (n:int)"))
	for i := 0; i < 10; i++ {
		require.NoError(t, conn.Exec("insert into t values (?)", NewInt(int64(i))))
	}

	rs, err := conn.Query("select * from t")
	require.NoError(t, err)
	defer rs.Close() //nolint:errcheck
	rs.BatchSize = 3

	tbl, err := rs.All()
	require.NoError(t, err)
	require.Equal(t, 10, tbl.Rows())
	for i, v := range tbl.Column("n").Values {
		assert.True(t, v.Equal(NewInt(int64(i))))
	}
}

func TestQueryErrors(t *testing.T) {
	conn := openTest(t)
	require.NoError(t, conn.Exec("table t (a:int)"))

	// Parse failure.
	err := conn.Exec("definitely not a statement")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	// Unknown table.
	err = conn.Exec("select * from missing")
	assert.True(t, IsNotFound(err))

	// Wrong argument count for the placeholders.
	err = conn.Exec("insert into t values (?)")
	assert.True(t, IsInvalidArgument(err))

	// Wrong argument type for the column.
	err = conn.Exec("insert into t values (?)", NewString("nope"))
	assert.True(t, IsInvalidArgument(err))

	// Duplicate table definition.
	err = conn.Exec("table t (a:int)")
	assert.True(t, IsInvalidArgument(err))

	// The connection survives all of the above.
	assert.True(t, conn.IsOpen())
	require.NoError(t, conn.Exec("insert into t values (1)"))
}

func TestErrorMessageCarriesSession(t *testing.T) {
	conn := openTest(t)
	err := conn.Exec("select * from missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), conn.SessionID())
}

func TestSharedDSNSeesSameDatabase(t *testing.T) {
	eng := gocore.New()
	a, err := OpenWith(eng, "mem://shared")
	require.NoError(t, err)
	defer a.Close() //nolint:errcheck
	b, err := OpenWith(eng, "mem://shared")
	require.NoError(t, err)
	defer b.Close() //nolint:errcheck

	require.NoError(t, a.Exec("table t (n:int)"))
	require.NoError(t, a.Exec("insert into t values (7)"))

	rs, err := b.Query("select * from t")
	require.NoError(t, err)
	defer rs.Close() //nolint:errcheck
	tbl, err := rs.All()
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Rows())
}

func TestConcurrentConnections(t *testing.T) {
	eng := gocore.New()
	const workers = 8
	const rows = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			errs <- func() error {
				conn, err := OpenWith(eng, fmt.Sprintf("mem://worker-%d", w))
				if err != nil {
					return err
				}
				defer conn.Close() //nolint:errcheck

				if err := conn.Exec("table t (n:int)"); err != nil {
					return err
				}
				for i := 0; i < rows; i++ {
					if err := conn.Exec("insert into t values (?)", NewInt(int64(i))); err != nil {
						return err
					}
				}
				rs, err := conn.Query("select * from t")
				if err != nil {
					return err
				}
				defer rs.Close() //nolint:errcheck
				tbl, err := rs.All()
				if err != nil {
					return err
				}
				if tbl.Rows() != rows {
					return fmt.Errorf("worker %d: got %d rows, want %d", w, tbl.Rows(), rows)
				}
				return nil
			}()
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestSelectLimitAndProjection(t *testing.T) {
	conn := openTest(t)
	require.NoError(t, conn.Exec("table t (a:int, b:string)"))
	for i := 0; i < 5; i++ {
		require.NoError(t, conn.Exec("insert into t values (?, ?)", NewInt(int64(i)), NewString("x")))
	}

	rs, err := conn.Query("select a from t limit 2")
	require.NoError(t, err)
	defer rs.Close() //nolint:errcheck
	tbl, err := rs.All()
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Rows())
	assert.Equal(t, []string{"a"}, tbl.ColumnNames())
}

func TestPreparedStatementReuse(t *testing.T) {
	conn := openTest(t)
	require.NoError(t, conn.Exec("table t (n:int)"))

	stmt, err := conn.Prepare("insert into t values (?)")
	require.NoError(t, err)
	defer stmt.Close() //nolint:errcheck

	for i := 0; i < 3; i++ {
		rs, err := stmt.Exec(NewInt(int64(i)))
		require.NoError(t, err)
		require.NoError(t, rs.Close())
	}

	rs, err := conn.Query("select * from t")
	require.NoError(t, err)
	defer rs.Close() //nolint:errcheck
	tbl, err := rs.All()
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Rows())
}

func TestCurrentBackend(t *testing.T) {
	assert.Equal(t, BackendPureGo, CurrentBackend())
	assert.NotEmpty(t, CurrentBackend().String())
}
