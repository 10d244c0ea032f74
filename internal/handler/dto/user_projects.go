// Package dto provides Data Transfer Objects for API responses.
package dto

import (
	"time"

	"github.com/userprojects/userprojects/internal/model"
)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectAssignmentResponse represents one assigned project.
type ProjectAssignmentResponse struct {
	ProjectID   int64     `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Role        string    `json:"role"`
	AssignedAt  time.Time `json:"assigned_at"`
}

// UserProjectsResponse is the body of GET /api/user/{user_id}.
type UserProjectsResponse struct {
	User     UserResponse                `json:"user"`
	Projects []ProjectAssignmentResponse `json:"projects"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ToUserProjectsResponse converts the domain result to its wire shape.
// Projects is always a non-nil slice so it encodes as [] when empty.
func ToUserProjectsResponse(up *model.UserProjects) *UserProjectsResponse {
	projects := make([]ProjectAssignmentResponse, 0, len(up.Projects))
	for _, p := range up.Projects {
		projects = append(projects, ProjectAssignmentResponse{
			ProjectID:   p.ProjectID,
			ProjectName: p.ProjectName,
			Description: p.Description,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
			Role:        p.Role,
			AssignedAt:  p.AssignedAt,
		})
	}

	return &UserProjectsResponse{
		User: UserResponse{
			ID:        up.User.ID,
			Username:  up.User.Username,
			Email:     up.User.Email,
			CreatedAt: up.User.CreatedAt,
			UpdatedAt: up.User.UpdatedAt,
		},
		Projects: projects,
	}
}
