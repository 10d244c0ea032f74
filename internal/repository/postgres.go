package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/userprojects/userprojects/internal/config"
	"github.com/userprojects/userprojects/internal/model"
)

// PostgresConnector opens one pgx connection per session.
type PostgresConnector struct {
	config *pgx.ConnConfig
}

var (
	_ Connector = (*PostgresConnector)(nil)
	_ Session   = (*postgresSession)(nil)
)

// NewPostgres parses the connection string up front so that a malformed
// DSN fails at startup rather than on the first request.
func NewPostgres(dsn string) (*PostgresConnector, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	return &PostgresConnector{config: cfg}, nil
}

// Driver returns "postgres".
func (c *PostgresConnector) Driver() string {
	return config.DriverPostgres
}

// Open connects to PostgreSQL.
func (c *PostgresConnector) Open(ctx context.Context) (Session, error) {
	conn, err := pgx.ConnectConfig(ctx, c.config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &postgresSession{conn: conn}, nil
}

// Ping checks database connectivity.
func (c *PostgresConnector) Ping(ctx context.Context) error {
	return ping(ctx, c)
}

type postgresSession struct {
	conn *pgx.Conn
}

func (s *postgresSession) LookupUser(ctx context.Context, id int64) (model.UserLookup, error) {
	var user model.User
	err := s.conn.QueryRow(ctx, selectUserPostgres, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NotFound(), nil
		}
		return model.UserLookup{}, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return model.Found(user), nil
}

func (s *postgresSession) ListUserProjects(ctx context.Context, userID int64) ([]model.ProjectAssignment, error) {
	rows, err := s.conn.Query(ctx, selectUserProjectsPostgres, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.ProjectAssignment, 0)
	for rows.Next() {
		var p model.ProjectAssignment
		if err := rows.Scan(
			&p.ProjectID,
			&p.ProjectName,
			&p.Description,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.Role,
			&p.AssignedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user projects: %w", err)
	}

	return projects, nil
}

func (s *postgresSession) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}
