package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/userprojects/userprojects/internal/model"
)

// Fixture user ids.
const (
	AliceID   int64 = 1
	BobID     int64 = 2
	CarolID   int64 = 3
	MissingID int64 = 999
)

// FixtureTime is the timestamp every seeded row is created at.
var FixtureTime = time.Date(2024, time.January, 15, 9, 30, 0, 0, time.UTC)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// OpenDB opens a database/sql handle for seeding. driver is "postgres"
// (lib/pq) or "mysql" (go-sql-driver/mysql).
func OpenDB(t testing.TB, driver, dsn string) *sql.DB {
	t.Helper()

	db, err := sql.Open(driver, dsn)
	if err != nil {
		t.Fatalf("open %s: %v", driver, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Ping(); err != nil {
		t.Fatalf("ping %s: %v", driver, err)
	}

	return db
}

// ResetSchema drops and recreates the users/projects/user_projects tables.
func ResetSchema(ctx context.Context, db *sql.DB, driver string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	path := filepath.Join(root, "internal", "testutil", "testdata", "schema_"+driver+".sql")
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	// Statements are executed one at a time; MySQL rejects multi-statement
	// strings unless the DSN enables them.
	for _, stmt := range strings.Split(string(script), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return nil
}

// SeedFixtures inserts the standard dataset:
//   - alice (1): owner of Alpha (10), viewer of Beta (11)
//   - bob (2): no projects
//   - carol (3): editor of Gamma (12), which has no description
func SeedFixtures(ctx context.Context, db *sql.DB, driver string) error {
	users := []model.User{
		{ID: AliceID, Username: "alice", Email: "alice@example.com"},
		{ID: BobID, Username: "bob", Email: "bob@example.com"},
		{ID: CarolID, Username: "carol", Email: "carol@example.com"},
	}
	for _, u := range users {
		_, err := db.ExecContext(ctx,
			rebind(driver, `INSERT INTO users (id, username, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
			u.ID, u.Username, u.Email, FixtureTime, FixtureTime,
		)
		if err != nil {
			return fmt.Errorf("insert user %d: %w", u.ID, err)
		}
	}

	projects := []struct {
		id          int64
		name        string
		description sql.NullString
	}{
		{10, "Alpha", sql.NullString{String: "First project", Valid: true}},
		{11, "Beta", sql.NullString{String: "Second project", Valid: true}},
		{12, "Gamma", sql.NullString{}},
	}
	for _, p := range projects {
		_, err := db.ExecContext(ctx,
			rebind(driver, `INSERT INTO projects (id, project_name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
			p.id, p.name, p.description, FixtureTime, FixtureTime,
		)
		if err != nil {
			return fmt.Errorf("insert project %d: %w", p.id, err)
		}
	}

	assignments := []struct {
		userID    int64
		projectID int64
		role      string
	}{
		{AliceID, 10, "owner"},
		{AliceID, 11, "viewer"},
		{CarolID, 12, "editor"},
	}
	for i, a := range assignments {
		assignedAt := FixtureTime.Add(time.Duration(i+1) * time.Hour)
		_, err := db.ExecContext(ctx,
			rebind(driver, `INSERT INTO user_projects (user_id, project_id, role, assigned_at) VALUES (?, ?, ?, ?)`),
			a.userID, a.projectID, a.role, assignedAt,
		)
		if err != nil {
			return fmt.Errorf("insert assignment %d/%d: %w", a.userID, a.projectID, err)
		}
	}

	return nil
}

// rebind converts ? placeholders to $n for PostgreSQL.
func rebind(driver, query string) string {
	if driver != "postgres" {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user with fixture timestamps.
func NewTestUser(t testing.TB, id int64, username string) model.User {
	t.Helper()
	return model.User{
		ID:        id,
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: FixtureTime,
		UpdatedAt: FixtureTime,
	}
}

// NewTestAssignment creates a project assignment with fixture timestamps.
func NewTestAssignment(t testing.TB, projectID int64, name, role string) model.ProjectAssignment {
	t.Helper()
	return model.ProjectAssignment{
		ProjectID:   projectID,
		ProjectName: name,
		Description: name + " description",
		CreatedAt:   FixtureTime,
		UpdatedAt:   FixtureTime,
		Role:        role,
		AssignedAt:  FixtureTime.Add(time.Hour),
	}
}

// AliceProjects returns the in-memory equivalent of alice's seeded rows.
func AliceProjects(t testing.TB) []model.ProjectAssignment {
	t.Helper()
	return []model.ProjectAssignment{
		NewTestAssignment(t, 10, "Alpha", "owner"),
		NewTestAssignment(t, 11, "Beta", "viewer"),
	}
}
