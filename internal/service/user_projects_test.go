package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/userprojects/userprojects/internal/metrics"
	"github.com/userprojects/userprojects/internal/repository"
	"github.com/userprojects/userprojects/internal/repository/repositorytest"
	"github.com/userprojects/userprojects/internal/testutil"
)

func newTestService(t *testing.T) (*UserProjectsService, *repositorytest.Connector, *metrics.InMemoryRecorder) {
	t.Helper()

	conn := repositorytest.NewConnector()
	conn.AddUser(testutil.NewTestUser(t, testutil.AliceID, "alice"), testutil.AliceProjects(t)...)
	conn.AddUser(testutil.NewTestUser(t, testutil.BobID, "bob"))

	recorder := metrics.NewInMemory()
	svc := NewUserProjectsService(conn, Options{
		QueryTimeout: time.Second,
		Metrics:      recorder,
	})
	return svc, conn, recorder
}

func TestGetUserProjects_WithProjects(t *testing.T) {
	t.Parallel()

	svc, conn, recorder := newTestService(t)

	result, err := svc.GetUserProjects(context.Background(), testutil.AliceID)
	if err != nil {
		t.Fatalf("GetUserProjects failed: %v", err)
	}

	if result.User.Username != "alice" {
		t.Errorf("username = %q, want alice", result.User.Username)
	}
	if len(result.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(result.Projects))
	}
	if result.Projects[0].ProjectID != 10 || result.Projects[1].ProjectID != 11 {
		t.Errorf("unexpected project ids: %d, %d", result.Projects[0].ProjectID, result.Projects[1].ProjectID)
	}

	queries := conn.Queries()
	if len(queries) != 2 || queries[0] != "LookupUser" || queries[1] != "ListUserProjects" {
		t.Errorf("unexpected query sequence: %v", queries)
	}
	for _, arg := range conn.Args() {
		if arg != testutil.AliceID {
			t.Errorf("query bound to %d, want %d", arg, testutil.AliceID)
		}
	}

	snap := recorder.Snapshot()
	if snap.LookupsFound != 1 || snap.ProjectsReturned != 2 {
		t.Errorf("unexpected metrics: %+v", snap)
	}
}

func TestGetUserProjects_NoProjects(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	result, err := svc.GetUserProjects(context.Background(), testutil.BobID)
	if err != nil {
		t.Fatalf("GetUserProjects failed: %v", err)
	}

	if result.Projects == nil {
		t.Fatal("expected empty, non-nil projects slice")
	}
	if len(result.Projects) != 0 {
		t.Errorf("expected 0 projects, got %d", len(result.Projects))
	}
}

func TestGetUserProjects_NotFound(t *testing.T) {
	t.Parallel()

	svc, conn, recorder := newTestService(t)

	_, err := svc.GetUserProjects(context.Background(), testutil.MissingID)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	// The projects query must not run for a missing user.
	if queries := conn.Queries(); len(queries) != 1 {
		t.Errorf("expected only the user lookup, got %v", queries)
	}

	if recorder.Snapshot().LookupsNotFound != 1 {
		t.Error("expected not_found outcome to be recorded")
	}
}

func TestGetUserProjects_StorageErrors(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

	tests := []struct {
		name  string
		setup func(*repositorytest.Connector)
	}{
		{"open fails", func(c *repositorytest.Connector) { c.OpenErr = dbErr }},
		{"lookup fails", func(c *repositorytest.Connector) { c.LookupErr = dbErr }},
		{"list fails", func(c *repositorytest.Connector) { c.ListErr = dbErr }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, conn, recorder := newTestService(t)
			tt.setup(conn)

			_, err := svc.GetUserProjects(context.Background(), testutil.AliceID)
			if !errors.Is(err, dbErr) {
				t.Fatalf("expected wrapped datastore error, got %v", err)
			}
			if errors.Is(err, ErrUserNotFound) {
				t.Fatal("datastore error must not be reported as not found")
			}

			if recorder.Snapshot().LookupsFailed != 1 {
				t.Error("expected error outcome to be recorded")
			}
		})
	}
}

func TestGetUserProjects_AlwaysClosesSession(t *testing.T) {
	t.Parallel()

	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	_, _ = svc.GetUserProjects(ctx, testutil.AliceID)
	_, _ = svc.GetUserProjects(ctx, testutil.MissingID)

	conn.ListErr = errors.New("query failed")
	_, _ = svc.GetUserProjects(ctx, testutil.AliceID)

	if conn.Opened() != 3 {
		t.Errorf("Opened() = %d, want 3", conn.Opened())
	}
	if conn.Closed() != conn.Opened() {
		t.Errorf("Closed() = %d, want %d", conn.Closed(), conn.Opened())
	}
}

func TestGetUserProjects_CloseErrorDoesNotFailLookup(t *testing.T) {
	t.Parallel()

	svc, conn, _ := newTestService(t)
	conn.CloseErr = errors.New("close failed")

	if _, err := svc.GetUserProjects(context.Background(), testutil.AliceID); err != nil {
		t.Fatalf("expected success despite close error, got %v", err)
	}
}

// advancingConnector moves a fake clock forward whenever a session is opened.
type advancingConnector struct {
	*repositorytest.Connector
	clock interface{ Advance(time.Duration) }
	step  time.Duration
}

func (c *advancingConnector) Open(ctx context.Context) (repository.Session, error) {
	c.clock.Advance(c.step)
	return c.Connector.Open(ctx)
}

func TestGetUserProjects_RecordsDuration(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	conn := repositorytest.NewConnector()
	conn.AddUser(testutil.NewTestUser(t, testutil.AliceID, "alice"))

	recorder := metrics.NewInMemory()
	svc := NewUserProjectsService(
		&advancingConnector{Connector: conn, clock: clock, step: 25 * time.Millisecond},
		Options{Metrics: recorder, Clock: clock},
	)

	if _, err := svc.GetUserProjects(context.Background(), testutil.AliceID); err != nil {
		t.Fatalf("GetUserProjects failed: %v", err)
	}

	snap := recorder.Snapshot()
	if snap.LookupDurationCount != 1 {
		t.Fatalf("LookupDurationCount = %d, want 1", snap.LookupDurationCount)
	}
	if got := time.Duration(snap.LookupDurationTotalNs); got != 25*time.Millisecond {
		t.Errorf("recorded duration = %s, want 25ms", got)
	}
}

func TestGetUserProjects_AppliesQueryTimeout(t *testing.T) {
	t.Parallel()

	conn := repositorytest.NewConnector()
	var deadlineSet bool
	probe := &deadlineConnector{Connector: conn, seen: &deadlineSet}

	svc := NewUserProjectsService(probe, Options{QueryTimeout: time.Minute})
	_, _ = svc.GetUserProjects(context.Background(), testutil.AliceID)

	if !deadlineSet {
		t.Error("expected session to be opened with a deadline")
	}
}

type deadlineConnector struct {
	*repositorytest.Connector
	seen *bool
}

func (c *deadlineConnector) Open(ctx context.Context) (repository.Session, error) {
	_, *c.seen = ctx.Deadline()
	return c.Connector.Open(ctx)
}

func TestParseUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{"simple", "1", 1, false},
		{"large", "9223372036854775807", 9223372036854775807, false},
		{"zero", "0", 0, false},
		{"negative", "-5", -5, false},
		{"letters", "abc", 0, true},
		{"sql injection", "1 OR 1=1", 0, true},
		{"quote injection", "1'; DROP TABLE users; --", 0, true},
		{"float", "1.5", 0, true},
		{"empty", "", 0, true},
		{"overflow", "9223372036854775808", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseUserID(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidUserID) {
					t.Fatalf("expected ErrInvalidUserID, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseUserID(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}
