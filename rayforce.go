// Package rayforce provides Go bindings for the RayforceDB native engine
// with support for CGO, runtime-loaded and pure Go backends via build tags.
//
// Build Tags:
//   - Default: in-process pure Go reference engine (gocore)
//   - -tags rayforcecgo: CGO backend linking librayforce (cgocore)
//   - -tags rayforcepurego: dlopen backend loading librayforce at runtime (puregocore)
//
// The package wraps the engine's flat C entry-point table behind a
// connection/statement/result-set object graph. Native handles are owned by
// exactly one wrapper, released exactly once, and every native status code is
// translated into a typed error before anything reaches the caller.
//
// Basic usage:
//
//	conn, err := rayforce.Open("mem://trades")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close()
//
//	rs, err := conn.Query("select sym, px from trades where sym = ?", rayforce.NewString("AAPL"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer rs.Close()
//
//	tbl, err := rs.All()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(tbl)
package rayforce

import "github.com/rayforce-db/rayforce-go/pkg/enginecore"

// Backend identifies the engine implementation compiled into the binary.
type Backend int

const (
	BackendPureGo Backend = iota // Default: in-process reference engine (gocore)
	BackendCGO                   // CGO backend linking librayforce (cgocore)
	BackendPurego                // Runtime-loaded librayforce via purego (puregocore)
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case BackendPureGo:
		return "Pure Go (gocore)"
	case BackendCGO:
		return "CGO (librayforce)"
	case BackendPurego:
		return "purego (librayforce)"
	default:
		return "Unknown"
	}
}

// Open connects to the engine selected at compile time. The DSN names the
// target database; for the pure Go backend any name denotes an in-process
// database shared by connections using the same DSN.
func Open(dsn string) (*Connection, error) {
	eng, err := defaultEngine()
	if err != nil {
		return nil, err
	}
	return OpenWith(eng, dsn)
}

// OpenWith connects through an explicit engine implementation. Most callers
// want Open; OpenWith exists for embedding a custom enginecore.Engine.
func OpenWith(eng enginecore.Engine, dsn string) (*Connection, error) {
	return open(eng, dsn)
}

// CurrentBackend reports which backend this binary was built with.
func CurrentBackend() Backend {
	return currentBackend
}
