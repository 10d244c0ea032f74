// Package repositorytest provides an in-memory repository.Connector for tests.
package repositorytest

import (
	"context"
	"sync"

	"github.com/userprojects/userprojects/internal/model"
	"github.com/userprojects/userprojects/internal/repository"
)

// Connector is an in-memory repository.Connector.
// Set the *Err fields to simulate datastore failures.
type Connector struct {
	Users    map[int64]model.User
	Projects map[int64][]model.ProjectAssignment

	OpenErr   error
	LookupErr error
	ListErr   error
	CloseErr  error

	mu       sync.Mutex
	opened   int
	closed   int
	queries  []string
	lastArgs []int64
}

var _ repository.Connector = (*Connector)(nil)

// NewConnector returns an empty Connector.
func NewConnector() *Connector {
	return &Connector{
		Users:    make(map[int64]model.User),
		Projects: make(map[int64][]model.ProjectAssignment),
	}
}

// AddUser registers a user and their project assignments.
func (c *Connector) AddUser(user model.User, projects ...model.ProjectAssignment) {
	c.Users[user.ID] = user
	if len(projects) > 0 {
		c.Projects[user.ID] = projects
	}
}

// Driver returns "fake".
func (c *Connector) Driver() string { return "fake" }

// Open returns a new session or OpenErr.
func (c *Connector) Open(ctx context.Context) (repository.Session, error) {
	if c.OpenErr != nil {
		return nil, c.OpenErr
	}
	c.mu.Lock()
	c.opened++
	c.mu.Unlock()
	return &session{c: c}, nil
}

// Ping opens and closes a session.
func (c *Connector) Ping(ctx context.Context) error {
	s, err := c.Open(ctx)
	if err != nil {
		return err
	}
	return s.Close(ctx)
}

// Opened returns how many sessions were opened.
func (c *Connector) Opened() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

// Closed returns how many sessions were closed.
func (c *Connector) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Queries returns the session calls made so far, in order.
func (c *Connector) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

// Args returns the user ids passed to each session call, in order.
func (c *Connector) Args() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.lastArgs...)
}

func (c *Connector) record(query string, id int64) {
	c.mu.Lock()
	c.queries = append(c.queries, query)
	c.lastArgs = append(c.lastArgs, id)
	c.mu.Unlock()
}

type session struct {
	c *Connector
}

func (s *session) LookupUser(ctx context.Context, id int64) (model.UserLookup, error) {
	s.c.record("LookupUser", id)
	if s.c.LookupErr != nil {
		return model.UserLookup{}, s.c.LookupErr
	}
	user, ok := s.c.Users[id]
	if !ok {
		return model.NotFound(), nil
	}
	return model.Found(user), nil
}

func (s *session) ListUserProjects(ctx context.Context, userID int64) ([]model.ProjectAssignment, error) {
	s.c.record("ListUserProjects", userID)
	if s.c.ListErr != nil {
		return nil, s.c.ListErr
	}
	return append(make([]model.ProjectAssignment, 0), s.c.Projects[userID]...), nil
}

func (s *session) Close(ctx context.Context) error {
	s.c.mu.Lock()
	s.c.closed++
	s.c.mu.Unlock()
	return s.c.CloseErr
}
