package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/userprojects/userprojects/internal/config"
	"github.com/userprojects/userprojects/internal/model"
)

// MySQLConnector opens one gorm-managed MySQL connection per session.
type MySQLConnector struct {
	dsn string
}

var (
	_ Connector = (*MySQLConnector)(nil)
	_ Session   = (*mysqlSession)(nil)
)

// NewMySQL creates a MySQLConnector for a go-sql-driver/mysql DSN.
func NewMySQL(dsn string) *MySQLConnector {
	return &MySQLConnector{dsn: dsn}
}

// Driver returns "mysql".
func (c *MySQLConnector) Driver() string {
	return config.DriverMySQL
}

// Open connects to MySQL. The underlying sql.DB is capped at a single
// connection and closed together with the session, or before returning
// when the connection cannot be established.
func (c *MySQLConnector) Open(ctx context.Context) (Session, error) {
	// gorm's own ping has no context; PingContext below is the only connect check.
	gdb, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       c.dsn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		closeGorm(gdb)
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		closeGorm(gdb)
		return nil, fmt.Errorf("failed to get mysql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	return &mysqlSession{db: gdb, sqlDB: sqlDB}, nil
}

// closeGorm releases the sql.DB behind a gorm handle returned alongside an error.
func closeGorm(gdb *gorm.DB) {
	if gdb == nil {
		return
	}
	if sqlDB, err := gdb.DB(); err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

// Ping checks database connectivity.
func (c *MySQLConnector) Ping(ctx context.Context) error {
	return ping(ctx, c)
}

// userRow and projectRow map result columns for gorm's Raw().Scan().
type userRow struct {
	ID        int64     `gorm:"column:id"`
	Username  string    `gorm:"column:username"`
	Email     string    `gorm:"column:email"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

type projectRow struct {
	ProjectID   int64     `gorm:"column:project_id"`
	ProjectName string    `gorm:"column:project_name"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
	Role        string    `gorm:"column:role"`
	AssignedAt  time.Time `gorm:"column:assigned_at"`
}

type mysqlSession struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func (s *mysqlSession) LookupUser(ctx context.Context, id int64) (model.UserLookup, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Raw(selectUserMySQL, id).Scan(&rows).Error; err != nil {
		return model.UserLookup{}, fmt.Errorf("failed to get user by ID: %w", err)
	}

	if len(rows) == 0 {
		return model.NotFound(), nil
	}

	r := rows[0]
	return model.Found(model.User{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}), nil
}

func (s *mysqlSession) ListUserProjects(ctx context.Context, userID int64) ([]model.ProjectAssignment, error) {
	var rows []projectRow
	if err := s.db.WithContext(ctx).Raw(selectUserProjectsMySQL, userID).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list user projects: %w", err)
	}

	projects := make([]model.ProjectAssignment, 0, len(rows))
	for _, r := range rows {
		projects = append(projects, model.ProjectAssignment{
			ProjectID:   r.ProjectID,
			ProjectName: r.ProjectName,
			Description: r.Description,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
			Role:        r.Role,
			AssignedAt:  r.AssignedAt,
		})
	}

	return projects, nil
}

func (s *mysqlSession) Close(_ context.Context) error {
	return s.sqlDB.Close()
}
