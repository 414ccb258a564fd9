// Package enginecore pins the versioned ABI contract between the rayforce-go
// binding layer and a RayforceDB engine backend. Status codes and type tags
// are a direct translation of the rayforce v1 C surface; every backend
// (gocore, cgocore, puregocore) implements the Engine interface defined here.
//
// The contract is deliberately explicit about the two details the native
// headers leave open: string buffers carry their encoding (length-prefixed or
// NUL-terminated) in the descriptor itself, and result fetching is
// batch-oriented so that both eager and streaming engines fit.
package enginecore

// Handle names a live native resource (connection, statement or cursor).
// Zero is never a valid handle.
type Handle uintptr

// InvalidHandle is returned together with a non-Ok status.
const InvalidHandle Handle = 0

// Status is the per-call result code returned by every engine entry point.
// The values mirror err_code_t in the rayforce v1 headers and must not be
// renumbered.
type Status int32

const (
	StatusOk     Status = iota // no error
	StatusType                 // type mismatch
	StatusArity                // wrong number of arguments
	StatusLength               // list length mismatch
	StatusDomain               // value out of range
	StatusIndex                // index out of bounds
	StatusValue                // undefined symbol / not found
	StatusLimit                // resource limit hit
	StatusOS                   // system error (wraps errno)
	StatusParse                // parse error
	StatusNYI                  // not yet implemented
	StatusUser                 // user raised
)

// String returns the native error name for the status.
func (s Status) String() string {
	names := [...]string{
		"ok", "type", "arity", "length", "domain", "index",
		"value", "limit", "os", "parse", "nyi", "user",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Fatal reports whether the status leaves the owning handle unusable.
// A fatal status means the connection must be reopened, not retried.
func (s Status) Fatal() bool {
	return s == StatusLimit || s == StatusOS
}

// TypeTag identifies the native representation of a value crossing the
// boundary.
type TypeTag int32

const (
	TagNull TypeTag = iota
	TagI64
	TagF64
	TagStr
	TagBytes
	TagVector
	TagTable
)

// String returns the tag name used in diagnostics.
func (t TypeTag) String() string {
	names := [...]string{"null", "i64", "f64", "str", "bytes", "vector", "table"}
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

// StrEncoding declares how a string buffer delimits its contents. The native
// surface does not fix one encoding, so the descriptor carries it explicitly
// and the marshaller must handle both.
type StrEncoding int32

const (
	// EncLenPrefixed means Bytes holds exactly the string contents.
	EncLenPrefixed StrEncoding = iota
	// EncNulTerminated means Bytes ends with a single NUL delimiter.
	EncNulTerminated
)

// RawValue is the descriptor for one value crossing the boundary in either
// direction. Exactly one payload group is meaningful, selected by Tag.
type RawValue struct {
	Tag TypeTag

	// Scalar payloads.
	I64 int64
	F64 float64

	// Buffer payload for TagStr and TagBytes. For TagStr the Enc field
	// selects the delimiting convention.
	Bytes []byte
	Enc   StrEncoding

	// Vector payload for TagVector: homogeneous elements of ElemTag.
	ElemTag TypeTag
	Elems   []RawValue

	// Table payload for TagTable.
	Table *RawTable
}

// RawColumn is one named, typed column of a RawTable.
type RawColumn struct {
	Name string
	Tag  TypeTag
	Vals []RawValue
}

// RawTable is the column-oriented result buffer. All columns have equal
// length; zero rows with named columns is a valid state.
type RawTable struct {
	Cols []RawColumn
}

// Rows returns the row count of the table.
func (t *RawTable) Rows() int {
	if t == nil || len(t.Cols) == 0 {
		return 0
	}
	return len(t.Cols[0].Vals)
}

// ErrInfo is the structured error detail the engine keeps per connection,
// retrieved through the get-last-error entry point.
type ErrInfo struct {
	Code    Status
	Message string
}

// Engine is the flat entry-point table every backend implements. It mirrors
// the librayforce symbol set one to one: open/connect, close,
// prepare-statement, execute, fetch-next-batch, free-result, get-last-error.
//
// Threading: no call is assumed safe for concurrent use of the same handle;
// the dispatcher serializes per connection. Calls may block indefinitely.
//
// Ownership: a RawTable returned by Fetch stays engine-owned until the next
// Fetch or FreeResult on the same cursor. Callers copy, never alias.
type Engine interface {
	// Open connects to the engine and returns a connection handle.
	Open(dsn string) (Handle, Status)

	// Close releases a connection handle. Closing with live child handles
	// is an engine-side usage error (StatusDomain).
	Close(conn Handle) Status

	// Prepare compiles a statement on the connection and returns a
	// statement handle. The query buffer is not retained by the engine.
	Prepare(conn Handle, query []byte) (Handle, Status)

	// Exec runs a prepared statement with the given arguments and returns
	// a cursor handle for its results.
	Exec(stmt Handle, args []RawValue) (Handle, Status)

	// Fetch returns the next batch of at most max rows from a cursor.
	// more is false once the cursor is exhausted. max <= 0 means
	// engine-chosen batch size.
	Fetch(cursor Handle, max int) (batch *RawTable, more bool, status Status)

	// FreeResult releases a statement or cursor handle.
	FreeResult(h Handle) Status

	// LastError returns the structured detail for the most recent non-Ok
	// status observed on the connection.
	LastError(conn Handle) ErrInfo
}
