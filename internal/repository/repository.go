// Package repository provides database access layer.
//
// Each request opens its own Session and closes it when done; nothing is
// shared between requests.
package repository

import (
	"context"
	"fmt"

	"github.com/userprojects/userprojects/internal/config"
	"github.com/userprojects/userprojects/internal/model"
)

// Session is a single database connection scoped to one request.
type Session interface {
	// LookupUser fetches the user with the given id.
	LookupUser(ctx context.Context, id int64) (model.UserLookup, error)
	// ListUserProjects returns the projects assigned to a user, in storage order.
	ListUserProjects(ctx context.Context, userID int64) ([]model.ProjectAssignment, error)
	// Close releases the connection.
	Close(ctx context.Context) error
}

// Connector opens sessions against a configured datastore.
type Connector interface {
	Open(ctx context.Context) (Session, error)
	// Ping opens and closes a connection to verify the datastore is reachable.
	Ping(ctx context.Context) error
	// Driver names the database backend, e.g. "postgres".
	Driver() string
}

// New returns the Connector for the configured driver.
func New(cfg config.DatabaseConfig) (Connector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgres(cfg.DSN())
	case config.DriverMySQL:
		return NewMySQL(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnsupportedDriver, cfg.Driver)
	}
}

// ping is shared by connectors that have no cheaper health check than a
// full connect.
func ping(ctx context.Context, c Connector) error {
	session, err := c.Open(ctx)
	if err != nil {
		return err
	}
	return session.Close(ctx)
}
