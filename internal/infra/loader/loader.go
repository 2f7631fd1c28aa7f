// Package loader selects and constructs session load backends.
package loader

import (
	"fmt"
	"os"

	"hydrate/internal/infra/loader/memory"
	"hydrate/internal/infra/loader/postgres"
	"hydrate/internal/infra/loader/sqlite"
	"hydrate/internal/session"
)

// Driver identifies a concrete loader implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory fixtures (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// Open selects a backend using environment variables. Defaults to memory when
// unset.
//
//	HYDRATE_LOADER_DRIVER: memory|sqlite|postgres (default memory)
//	HYDRATE_SQLITE_PATH: path to sqlite file (default ./hydrate.db)
//	HYDRATE_POSTGRES_DSN: postgres DSN when driver=postgres
func Open() (session.Loader, error) {
	driver := os.Getenv("HYDRATE_LOADER_DRIVER")
	if driver == "" {
		driver = string(DriverMemory)
	}
	switch Driver(driver) {
	case DriverMemory:
		return memory.NewLoader(), nil
	case DriverSQLite:
		return sqlite.NewLoader(os.Getenv("HYDRATE_SQLITE_PATH"))
	case DriverPostgres:
		return postgres.NewLoader(os.Getenv("HYDRATE_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown loader driver %s", driver)
	}
}
