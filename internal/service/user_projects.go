// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/userprojects/userprojects/internal/metrics"
	"github.com/userprojects/userprojects/internal/model"
	"github.com/userprojects/userprojects/internal/repository"
)

// Service errors.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidUserID = errors.New("invalid user ID")
)

// Options configures a UserProjectsService. Zero values are replaced with
// defaults.
type Options struct {
	// QueryTimeout bounds both queries of one lookup. Zero disables it.
	QueryTimeout time.Duration
	Metrics      metrics.Recorder
	Clock        clockwork.Clock
	Logger       *slog.Logger
}

// UserProjectsService reads a user and their project assignments.
type UserProjectsService struct {
	connector    repository.Connector
	queryTimeout time.Duration
	metrics      metrics.Recorder
	clock        clockwork.Clock
	logger       *slog.Logger
}

// NewUserProjectsService creates a new UserProjectsService.
func NewUserProjectsService(connector repository.Connector, opts Options) *UserProjectsService {
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNoop()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &UserProjectsService{
		connector:    connector,
		queryTimeout: opts.QueryTimeout,
		metrics:      opts.Metrics,
		clock:        opts.Clock,
		logger:       opts.Logger,
	}
}

// ParseUserID converts a path segment to a user id.
// Only base-10 integers are accepted; anything else is ErrInvalidUserID.
func ParseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUserID, raw)
	}
	return id, nil
}

// GetUserProjects returns the user and their assigned projects.
// Returns ErrUserNotFound when no user has the given id; any other error is
// a datastore failure.
func (s *UserProjectsService) GetUserProjects(ctx context.Context, userID int64) (*model.UserProjects, error) {
	start := s.clock.Now()
	result, err := s.getUserProjects(ctx, userID)
	s.metrics.ObserveLookupDuration(s.clock.Since(start))

	switch {
	case err == nil:
		s.metrics.IncUserLookup(metrics.OutcomeFound)
		s.metrics.ObserveProjectsReturned(result.ProjectCount())
	case errors.Is(err, ErrUserNotFound):
		s.metrics.IncUserLookup(metrics.OutcomeNotFound)
	default:
		s.metrics.IncUserLookup(metrics.OutcomeError)
	}

	return result, err
}

func (s *UserProjectsService) getUserProjects(ctx context.Context, userID int64) (*model.UserProjects, error) {
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	session, err := s.connector.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s session: %w", s.connector.Driver(), err)
	}
	defer func() {
		// Close even when ctx has expired so the connection is never leaked.
		if err := session.Close(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to close database session",
				slog.String("driver", s.connector.Driver()),
				slog.String("error", err.Error()),
			)
		}
	}()

	lookup, err := session.LookupUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !lookup.Found {
		return nil, ErrUserNotFound
	}

	projects, err := session.ListUserProjects(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.UserProjects{
		User:     lookup.User,
		Projects: projects,
	}, nil
}
