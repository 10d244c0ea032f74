package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/userprojects/userprojects/internal/handler/dto"
	"github.com/userprojects/userprojects/internal/repository/repositorytest"
	"github.com/userprojects/userprojects/internal/service"
	"github.com/userprojects/userprojects/internal/testutil"
)

func newUserRouter(t *testing.T, conn *repositorytest.Connector, logs *bytes.Buffer) http.Handler {
	t.Helper()

	logger := testLogger()
	if logs != nil {
		logger = slog.New(slog.NewJSONHandler(logs, nil))
	}

	svc := service.NewUserProjectsService(conn, service.Options{Logger: logger})
	h := NewUserHandler(svc, logger)

	r := chi.NewRouter()
	r.Get("/api/user/{user_id}", h.GetUserProjects)
	return r
}

func seededConnector(t *testing.T) *repositorytest.Connector {
	t.Helper()

	conn := repositorytest.NewConnector()
	conn.AddUser(testutil.NewTestUser(t, testutil.AliceID, "alice"), testutil.AliceProjects(t)...)
	conn.AddUser(testutil.NewTestUser(t, testutil.BobID, "bob"))
	return conn
}

func TestUserHandler_GetUserProjects_WithProjects(t *testing.T) {
	t.Parallel()

	conn := seededConnector(t)
	router := newUserRouter(t, conn, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp dto.UserProjectsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.User.ID != testutil.AliceID || resp.User.Username != "alice" || resp.User.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", resp.User)
	}
	if len(resp.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(resp.Projects))
	}

	got := map[string]string{}
	for _, p := range resp.Projects {
		got[p.ProjectName] = p.Role
	}
	if got["Alpha"] != "owner" || got["Beta"] != "viewer" {
		t.Errorf("unexpected project roles: %v", got)
	}

	if conn.Opened() != 1 || conn.Closed() != 1 {
		t.Errorf("opened=%d closed=%d, want exactly one connection", conn.Opened(), conn.Closed())
	}
}

func TestUserHandler_GetUserProjects_NoProjects(t *testing.T) {
	t.Parallel()

	router := newUserRouter(t, seededConnector(t), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"projects":[]`) {
		t.Errorf("expected empty projects array, got %s", rec.Body.String())
	}
}

func TestUserHandler_GetUserProjects_NotFound(t *testing.T) {
	t.Parallel()

	conn := seededConnector(t)
	router := newUserRouter(t, conn, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/999", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"detail\":\"User not found\"}\n" {
		t.Errorf("unexpected body %q", got)
	}
	if queries := conn.Queries(); len(queries) != 1 {
		t.Errorf("projects query should not run for a missing user, got %v", queries)
	}
	if conn.Closed() != 1 {
		t.Errorf("connection not closed on not-found path")
	}
}

func TestUserHandler_GetUserProjects_DatastoreFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(c *repositorytest.Connector)
	}{
		{"unreachable", func(c *repositorytest.Connector) {
			c.OpenErr = errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")
		}},
		{"user query fails", func(c *repositorytest.Connector) {
			c.LookupErr = errors.New("Error 1146: Table 'test_database.users' doesn't exist")
		}},
		{"projects query fails", func(c *repositorytest.Connector) {
			c.ListErr = errors.New("Error 1146: Table 'test_database.user_projects' doesn't exist")
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn := seededConnector(t)
			tt.mutate(conn)

			var logs bytes.Buffer
			router := newUserRouter(t, conn, &logs)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/1", nil))

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("expected status 500, got %d", rec.Code)
			}
			if got := rec.Body.String(); got != "{\"detail\":\"Internal server error\"}\n" {
				t.Errorf("500 body must be generic, got %q", got)
			}
			if !strings.Contains(logs.String(), "user_projects_error") {
				t.Errorf("expected cause to be logged, got %s", logs.String())
			}
			if conn.Opened() != conn.Closed() {
				t.Errorf("opened=%d closed=%d", conn.Opened(), conn.Closed())
			}
		})
	}
}

func TestUserHandler_GetUserProjects_InvalidID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
	}{
		{"word", "/api/user/abc"},
		{"float", "/api/user/1.5"},
		{"injection", "/api/user/1%20OR%201=1"},
		{"quote injection", "/api/user/1';DROP%20TABLE%20users;--"},
		{"overflow", "/api/user/99999999999999999999"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn := seededConnector(t)
			router := newUserRouter(t, conn, nil)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			if got := rec.Body.String(); got != "{\"detail\":\"Invalid user ID\"}\n" {
				t.Errorf("unexpected body %q", got)
			}
			if conn.Opened() != 0 {
				t.Error("no connection should be opened for an invalid id")
			}
		})
	}
}

func TestUserHandler_GetUserProjects_NonPositiveIDIsNotFound(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/api/user/0", "/api/user/-1"} {
		conn := seededConnector(t)
		router := newUserRouter(t, conn, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status 404, got %d", path, rec.Code)
		}
	}
}
