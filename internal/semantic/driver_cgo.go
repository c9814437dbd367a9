//go:build sqlite_cgo

package semantic

import (
	_ "github.com/mattn/go-sqlite3" // Native SQLite driver (cgo)
)

// sqliteDriverName selects the registered database/sql driver.
const sqliteDriverName = "sqlite3"

// sqliteNativeDriver reports whether the compiled-in driver is the native
// (cgo) one.
const sqliteNativeDriver = true
