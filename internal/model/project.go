package model

import "time"

// ProjectAssignment is a project joined with the user_projects row that
// assigns it to a user.
type ProjectAssignment struct {
	ProjectID   int64
	ProjectName string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Assignment attributes
	Role       string
	AssignedAt time.Time
}

// UserProjects is a user together with every project assigned to them.
// Projects keep the order returned by storage.
type UserProjects struct {
	User     User
	Projects []ProjectAssignment
}

// ProjectCount returns the number of assigned projects.
func (u *UserProjects) ProjectCount() int {
	return len(u.Projects)
}
