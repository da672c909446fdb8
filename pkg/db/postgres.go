package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Open creates a lazily-connected database handle. The handle is valid
// even while the server is unreachable; callers probe reachability with
// Ping and decide how to degrade.
func Open(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}

	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	return database, nil
}
