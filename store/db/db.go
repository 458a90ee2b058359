// Package db provides the database driver factory.
package db

import (
	"fmt"

	"github.com/nasunstar/Agent-App-sub000/internal/profile"
	"github.com/nasunstar/Agent-App-sub000/store"
	"github.com/nasunstar/Agent-App-sub000/store/db/sqlite"
)

// NewDBDriver creates a new database driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "sqlite":
		return sqlite.NewDB(profile)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", profile.Driver)
	}
}
