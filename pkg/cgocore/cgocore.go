//go:build rayforcecgo
// +build rayforcecgo

// Package cgocore implements the engine ABI by linking librayforce through
// CGO against the pinned v1 header in rayforcelib/. Batch buffers are copied
// out of engine memory before any call returns, so the engine's
// valid-until-next-fetch ownership rule never leaks into callers.
package cgocore

/*
#cgo CFLAGS: -I${SRCDIR}/rayforcelib
#cgo LDFLAGS: -L${SRCDIR}/rayforcelib -lrayforce -Wl,-rpath,${SRCDIR}/rayforcelib
#include "rayforce_v1.h"
#include <stdlib.h>
*/
import "C"
import (
	"unsafe"

	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
)

// Engine is the CGO-backed rayforce engine. The zero value is ready to use;
// all state lives in the native library.
type Engine struct{}

// New returns the CGO engine.
func New() *Engine { return &Engine{} }

// lastErrBufSize bounds the message copied from ray_last_error.
const lastErrBufSize = 512

// Open connects to the native engine.
func (e *Engine) Open(dsn string) (enginecore.Handle, enginecore.Status) {
	cDSN := C.CString(dsn)
	defer C.free(unsafe.Pointer(cDSN))

	var h C.ray_handle_t
	st := C.ray_open(cDSN, &h)
	if st != C.RAY_EC_OK {
		return enginecore.InvalidHandle, enginecore.Status(st)
	}
	return enginecore.Handle(h), enginecore.StatusOk
}

// Close releases a native connection handle.
func (e *Engine) Close(conn enginecore.Handle) enginecore.Status {
	return enginecore.Status(C.ray_close(C.ray_handle_t(conn)))
}

// Prepare compiles a statement on the connection.
func (e *Engine) Prepare(conn enginecore.Handle, query []byte) (enginecore.Handle, enginecore.Status) {
	var p *C.char
	if len(query) > 0 {
		p = (*C.char)(unsafe.Pointer(&query[0]))
	}
	var h C.ray_handle_t
	st := C.ray_prepare(C.ray_handle_t(conn), p, C.longlong(len(query)), &h)
	if st != C.RAY_EC_OK {
		return enginecore.InvalidHandle, enginecore.Status(st)
	}
	return enginecore.Handle(h), enginecore.StatusOk
}

// bindArg binds one argument through the flat bind entry points. The v1
// surface binds scalars, strings and bytes; composite values report NYI.
func bindArg(stmt C.ray_handle_t, idx int, v enginecore.RawValue) C.ray_status_t {
	cidx := C.int(idx)
	switch v.Tag {
	case enginecore.TagNull:
		return C.ray_bind_null(stmt, cidx)
	case enginecore.TagI64:
		return C.ray_bind_i64(stmt, cidx, C.longlong(v.I64))
	case enginecore.TagF64:
		return C.ray_bind_f64(stmt, cidx, C.double(v.F64))
	case enginecore.TagStr:
		var p *C.char
		if len(v.Bytes) > 0 {
			p = (*C.char)(unsafe.Pointer(&v.Bytes[0]))
		}
		return C.ray_bind_str(stmt, cidx, p, C.longlong(len(v.Bytes)))
	case enginecore.TagBytes:
		var p *C.uchar
		if len(v.Bytes) > 0 {
			p = (*C.uchar)(unsafe.Pointer(&v.Bytes[0]))
		}
		return C.ray_bind_bytes(stmt, cidx, p, C.longlong(len(v.Bytes)))
	default:
		return C.RAY_EC_NYI
	}
}

// Exec binds the arguments and runs the statement.
func (e *Engine) Exec(stmt enginecore.Handle, args []enginecore.RawValue) (enginecore.Handle, enginecore.Status) {
	cStmt := C.ray_handle_t(stmt)
	for i, a := range args {
		if st := bindArg(cStmt, i+1, a); st != C.RAY_EC_OK {
			return enginecore.InvalidHandle, enginecore.Status(st)
		}
	}
	var h C.ray_handle_t
	st := C.ray_exec(cStmt, &h)
	if st != C.RAY_EC_OK {
		return enginecore.InvalidHandle, enginecore.Status(st)
	}
	return enginecore.Handle(h), enginecore.StatusOk
}

// Fetch pulls the next batch and copies it into Go memory through the batch
// accessor entry points.
func (e *Engine) Fetch(cursor enginecore.Handle, max int) (*enginecore.RawTable, bool, enginecore.Status) {
	cCur := C.ray_handle_t(cursor)
	var more C.int
	st := C.ray_fetch(cCur, C.longlong(max), &more)
	if st != C.RAY_EC_OK {
		return nil, false, enginecore.Status(st)
	}

	ncols := int(C.ray_batch_ncols(cCur))
	rows := int(C.ray_batch_rows(cCur))
	batch := &enginecore.RawTable{Cols: make([]enginecore.RawColumn, ncols)}
	for col := 0; col < ncols; col++ {
		cCol := C.longlong(col)
		name := C.GoString(C.ray_batch_col_name(cCur, cCol))
		tag := tagFromNative(C.ray_batch_col_tag(cCur, cCol))
		vals := make([]enginecore.RawValue, rows)
		for row := 0; row < rows; row++ {
			vals[row] = cellFromNative(cCur, cCol, C.longlong(row), tag)
		}
		batch.Cols[col] = enginecore.RawColumn{Name: name, Tag: tag, Vals: vals}
	}
	return batch, more != 0, enginecore.StatusOk
}

func tagFromNative(t C.int) enginecore.TypeTag {
	switch t {
	case C.RAY_TAG_I64:
		return enginecore.TagI64
	case C.RAY_TAG_F64:
		return enginecore.TagF64
	case C.RAY_TAG_STR:
		return enginecore.TagStr
	case C.RAY_TAG_BYTES:
		return enginecore.TagBytes
	default:
		return enginecore.TagNull
	}
}

// cellFromNative copies one cell out of the engine-owned batch buffer. A
// negative byte length means the buffer is NUL-terminated; the descriptor
// carries the encoding so the marshaller can decode either convention.
func cellFromNative(cur C.ray_handle_t, col, row C.longlong, tag enginecore.TypeTag) enginecore.RawValue {
	switch tag {
	case enginecore.TagI64:
		return enginecore.RawValue{Tag: tag, I64: int64(C.ray_batch_i64(cur, col, row))}
	case enginecore.TagF64:
		return enginecore.RawValue{Tag: tag, F64: float64(C.ray_batch_f64(cur, col, row))}
	case enginecore.TagStr, enginecore.TagBytes:
		var n C.longlong
		p := C.ray_batch_bytes(cur, col, row, &n)
		if n < 0 {
			b := []byte(C.GoString((*C.char)(unsafe.Pointer(p))))
			b = append(b, 0)
			return enginecore.RawValue{Tag: tag, Bytes: b, Enc: enginecore.EncNulTerminated}
		}
		return enginecore.RawValue{
			Tag:   tag,
			Bytes: C.GoBytes(unsafe.Pointer(p), C.int(n)),
			Enc:   enginecore.EncLenPrefixed,
		}
	default:
		return enginecore.RawValue{Tag: enginecore.TagNull}
	}
}

// FreeResult releases a statement or cursor handle.
func (e *Engine) FreeResult(h enginecore.Handle) enginecore.Status {
	return enginecore.Status(C.ray_free_result(C.ray_handle_t(h)))
}

// LastError retrieves the structured error detail for the connection.
func (e *Engine) LastError(conn enginecore.Handle) enginecore.ErrInfo {
	buf := make([]byte, lastErrBufSize)
	code := C.ray_last_error(C.ray_handle_t(conn), (*C.char)(unsafe.Pointer(&buf[0])), C.longlong(len(buf)))
	msg := buf
	for i, b := range buf {
		if b == 0 {
			msg = buf[:i]
			break
		}
	}
	return enginecore.ErrInfo{Code: enginecore.Status(code), Message: string(msg)}
}
