//go:build !sqlite_cgo

package semantic

import (
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// sqliteDriverName selects the registered database/sql driver.
const sqliteDriverName = "sqlite"

// sqliteNativeDriver reports whether the compiled-in driver is the native
// (cgo) one. The pure Go driver needs no toolchain support and is the
// default; builds tagged sqlite_cgo swap in the native driver.
const sqliteNativeDriver = false
