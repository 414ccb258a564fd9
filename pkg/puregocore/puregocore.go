//go:build rayforcepurego
// +build rayforcepurego

// Package puregocore implements the engine ABI by loading librayforce at
// runtime with purego, without CGO. It binds the same flat v1 symbol table
// the cgocore backend links against; the shared library path comes from the
// RAYFORCE_LIBRARY environment variable and defaults to librayforce.so on
// the library search path.
package puregocore

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
)

// DefaultLibrary is the library name used when RAYFORCE_LIBRARY is unset.
const DefaultLibrary = "librayforce.so"

// lastErrBufSize bounds the message copied from ray_last_error.
const lastErrBufSize = 512

// Engine is the purego-backed rayforce engine. All engine state lives in the
// loaded shared library; Engine only holds the bound function pointers.
type Engine struct {
	rayOpen         func(dsn string, out *int64) int32
	rayClose        func(conn int64) int32
	rayPrepare      func(conn int64, query *byte, n int64, out *int64) int32
	rayBindNull     func(stmt int64, idx int32) int32
	rayBindI64      func(stmt int64, idx int32, v int64) int32
	rayBindF64      func(stmt int64, idx int32, v float64) int32
	rayBindStr      func(stmt int64, idx int32, p *byte, n int64) int32
	rayBindBytes    func(stmt int64, idx int32, p *byte, n int64) int32
	rayExec         func(stmt int64, out *int64) int32
	rayFetch        func(cursor, max int64, more *int32) int32
	rayBatchNcols   func(cursor int64) int64
	rayBatchRows    func(cursor int64) int64
	rayBatchColName func(cursor, col int64) string
	rayBatchColTag  func(cursor, col int64) int32
	rayBatchI64     func(cursor, col, row int64) int64
	rayBatchF64     func(cursor, col, row int64) float64
	rayBatchBytes   func(cursor, col, row int64, n *int64) uintptr
	rayFreeResult   func(h int64) int32
	rayLastError    func(conn int64, buf *byte, cap int64) int32
}

// One loaded library instance per process; loading twice would duplicate the
// engine's process-global state.
var (
	loadOnce sync.Once
	loaded   *Engine
	loadErr  error
)

// Load binds librayforce once for the process and returns the engine. The
// library stays loaded until process exit; there is no unload.
func Load() (*Engine, error) {
	loadOnce.Do(func() {
		path := os.Getenv("RAYFORCE_LIBRARY")
		if path == "" {
			path = DefaultLibrary
		}
		loaded, loadErr = loadLibrary(path)
	})
	return loaded, loadErr
}

func loadLibrary(path string) (*Engine, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	e := &Engine{}
	purego.RegisterLibFunc(&e.rayOpen, lib, "ray_open")
	purego.RegisterLibFunc(&e.rayClose, lib, "ray_close")
	purego.RegisterLibFunc(&e.rayPrepare, lib, "ray_prepare")
	purego.RegisterLibFunc(&e.rayBindNull, lib, "ray_bind_null")
	purego.RegisterLibFunc(&e.rayBindI64, lib, "ray_bind_i64")
	purego.RegisterLibFunc(&e.rayBindF64, lib, "ray_bind_f64")
	purego.RegisterLibFunc(&e.rayBindStr, lib, "ray_bind_str")
	purego.RegisterLibFunc(&e.rayBindBytes, lib, "ray_bind_bytes")
	purego.RegisterLibFunc(&e.rayExec, lib, "ray_exec")
	purego.RegisterLibFunc(&e.rayFetch, lib, "ray_fetch")
	purego.RegisterLibFunc(&e.rayBatchNcols, lib, "ray_batch_ncols")
	purego.RegisterLibFunc(&e.rayBatchRows, lib, "ray_batch_rows")
	purego.RegisterLibFunc(&e.rayBatchColName, lib, "ray_batch_col_name")
	purego.RegisterLibFunc(&e.rayBatchColTag, lib, "ray_batch_col_tag")
	purego.RegisterLibFunc(&e.rayBatchI64, lib, "ray_batch_i64")
	purego.RegisterLibFunc(&e.rayBatchF64, lib, "ray_batch_f64")
	purego.RegisterLibFunc(&e.rayBatchBytes, lib, "ray_batch_bytes")
	purego.RegisterLibFunc(&e.rayFreeResult, lib, "ray_free_result")
	purego.RegisterLibFunc(&e.rayLastError, lib, "ray_last_error")
	return e, nil
}

func dataPtr(b []byte) *byte {
	if len(b) == 0 {
		return nil
	}
	return &b[0]
}

// Open connects to the native engine.
func (e *Engine) Open(dsn string) (enginecore.Handle, enginecore.Status) {
	var h int64
	st := e.rayOpen(dsn, &h)
	if st != 0 {
		return enginecore.InvalidHandle, enginecore.Status(st)
	}
	return enginecore.Handle(h), enginecore.StatusOk
}

// Close releases a native connection handle.
func (e *Engine) Close(conn enginecore.Handle) enginecore.Status {
	return enginecore.Status(e.rayClose(int64(conn)))
}

// Prepare compiles a statement on the connection.
func (e *Engine) Prepare(conn enginecore.Handle, query []byte) (enginecore.Handle, enginecore.Status) {
	var h int64
	st := e.rayPrepare(int64(conn), dataPtr(query), int64(len(query)), &h)
	if st != 0 {
		return enginecore.InvalidHandle, enginecore.Status(st)
	}
	return enginecore.Handle(h), enginecore.StatusOk
}

func (e *Engine) bindArg(stmt int64, idx int, v enginecore.RawValue) enginecore.Status {
	cidx := int32(idx)
	switch v.Tag {
	case enginecore.TagNull:
		return enginecore.Status(e.rayBindNull(stmt, cidx))
	case enginecore.TagI64:
		return enginecore.Status(e.rayBindI64(stmt, cidx, v.I64))
	case enginecore.TagF64:
		return enginecore.Status(e.rayBindF64(stmt, cidx, v.F64))
	case enginecore.TagStr:
		return enginecore.Status(e.rayBindStr(stmt, cidx, dataPtr(v.Bytes), int64(len(v.Bytes))))
	case enginecore.TagBytes:
		return enginecore.Status(e.rayBindBytes(stmt, cidx, dataPtr(v.Bytes), int64(len(v.Bytes))))
	default:
		return enginecore.StatusNYI
	}
}

// Exec binds the arguments and runs the statement.
func (e *Engine) Exec(stmt enginecore.Handle, args []enginecore.RawValue) (enginecore.Handle, enginecore.Status) {
	for i, a := range args {
		if st := e.bindArg(int64(stmt), i+1, a); st != enginecore.StatusOk {
			return enginecore.InvalidHandle, st
		}
	}
	var h int64
	st := e.rayExec(int64(stmt), &h)
	if st != 0 {
		return enginecore.InvalidHandle, enginecore.Status(st)
	}
	return enginecore.Handle(h), enginecore.StatusOk
}

// Fetch pulls the next batch and copies it into Go memory through the batch
// accessor entry points.
func (e *Engine) Fetch(cursor enginecore.Handle, max int) (*enginecore.RawTable, bool, enginecore.Status) {
	cur := int64(cursor)
	var more int32
	st := e.rayFetch(cur, int64(max), &more)
	if st != 0 {
		return nil, false, enginecore.Status(st)
	}

	ncols := int(e.rayBatchNcols(cur))
	rows := int(e.rayBatchRows(cur))
	batch := &enginecore.RawTable{Cols: make([]enginecore.RawColumn, ncols)}
	for col := 0; col < ncols; col++ {
		c := int64(col)
		tag := tagFromNative(e.rayBatchColTag(cur, c))
		vals := make([]enginecore.RawValue, rows)
		for row := 0; row < rows; row++ {
			vals[row] = e.cell(cur, c, int64(row), tag)
		}
		batch.Cols[col] = enginecore.RawColumn{
			Name: e.rayBatchColName(cur, c),
			Tag:  tag,
			Vals: vals,
		}
	}
	return batch, more != 0, enginecore.StatusOk
}

func tagFromNative(t int32) enginecore.TypeTag {
	switch t {
	case 1:
		return enginecore.TagI64
	case 2:
		return enginecore.TagF64
	case 3:
		return enginecore.TagStr
	case 4:
		return enginecore.TagBytes
	default:
		return enginecore.TagNull
	}
}

// cell copies one value out of the engine-owned batch buffer. A negative
// byte length means the buffer is NUL-terminated.
func (e *Engine) cell(cur, col, row int64, tag enginecore.TypeTag) enginecore.RawValue {
	switch tag {
	case enginecore.TagI64:
		return enginecore.RawValue{Tag: tag, I64: e.rayBatchI64(cur, col, row)}
	case enginecore.TagF64:
		return enginecore.RawValue{Tag: tag, F64: e.rayBatchF64(cur, col, row)}
	case enginecore.TagStr, enginecore.TagBytes:
		var n int64
		p := e.rayBatchBytes(cur, col, row, &n)
		if p == 0 {
			return enginecore.RawValue{Tag: tag, Enc: enginecore.EncLenPrefixed}
		}
		if n < 0 {
			b := cString(p)
			return enginecore.RawValue{Tag: tag, Bytes: b, Enc: enginecore.EncNulTerminated}
		}
		src := unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
		b := make([]byte, n)
		copy(b, src)
		return enginecore.RawValue{Tag: tag, Bytes: b, Enc: enginecore.EncLenPrefixed}
	default:
		return enginecore.RawValue{Tag: enginecore.TagNull}
	}
}

// cString copies a NUL-terminated native buffer, keeping the delimiter so
// the descriptor matches its declared encoding.
func cString(p uintptr) []byte {
	var out []byte
	for i := 0; ; i++ {
		b := *(*byte)(unsafe.Pointer(p + uintptr(i)))
		out = append(out, b)
		if b == 0 {
			return out
		}
	}
}

// FreeResult releases a statement or cursor handle.
func (e *Engine) FreeResult(h enginecore.Handle) enginecore.Status {
	return enginecore.Status(e.rayFreeResult(int64(h)))
}

// LastError retrieves the structured error detail for the connection.
func (e *Engine) LastError(conn enginecore.Handle) enginecore.ErrInfo {
	buf := make([]byte, lastErrBufSize)
	code := e.rayLastError(int64(conn), &buf[0], int64(len(buf)))
	msg := buf
	for i, b := range buf {
		if b == 0 {
			msg = buf[:i]
			break
		}
	}
	return enginecore.ErrInfo{Code: enginecore.Status(code), Message: string(msg)}
}
