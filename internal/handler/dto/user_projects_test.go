package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/userprojects/userprojects/internal/model"
)

func TestToUserProjectsResponse_EmptyProjectsEncodeAsArray(t *testing.T) {
	resp := ToUserProjectsResponse(&model.UserProjects{
		User: model.User{ID: 2, Username: "bob", Email: "bob@example.com"},
	})

	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if !strings.Contains(string(body), `"projects":[]`) {
		t.Errorf("expected empty projects array, got %s", body)
	}
}

func TestToUserProjectsResponse_FieldNames(t *testing.T) {
	ts := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	resp := ToUserProjectsResponse(&model.UserProjects{
		User: model.User{ID: 1, Username: "alice", Email: "alice@example.com", CreatedAt: ts, UpdatedAt: ts},
		Projects: []model.ProjectAssignment{{
			ProjectID:   10,
			ProjectName: "Alpha",
			Description: "First project",
			CreatedAt:   ts,
			UpdatedAt:   ts,
			Role:        "owner",
			AssignedAt:  ts.Add(time.Hour),
		}},
	})

	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	user := decoded["user"].(map[string]any)
	for _, key := range []string{"id", "username", "email", "created_at", "updated_at"} {
		if _, ok := user[key]; !ok {
			t.Errorf("user missing %q", key)
		}
	}

	project := decoded["projects"].([]any)[0].(map[string]any)
	for _, key := range []string{"project_id", "project_name", "description", "created_at", "updated_at", "role", "assigned_at"} {
		if _, ok := project[key]; !ok {
			t.Errorf("project missing %q", key)
		}
	}

	if project["assigned_at"] != "2024-01-15T10:30:00Z" {
		t.Errorf("assigned_at = %v", project["assigned_at"])
	}
}
