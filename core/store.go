package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Database runs fn inside one storage transaction; every mutating
// operation is all-or-nothing behind it.
type Database interface {
	Tx(fn func(tx *db.DB) error) error
}

// SysPausedKey property key of the process-wide pause switch
const SysPausedKey = "service_paused"
