package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/userprojects/userprojects/internal/handler/dto"
	"github.com/userprojects/userprojects/internal/middleware"
	"github.com/userprojects/userprojects/internal/service"
)

// UserHandler handles user lookups.
type UserHandler struct {
	svc    *service.UserProjectsService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserProjectsService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// GetUserProjects handles GET /api/user/{user_id}.
func (h *UserHandler) GetUserProjects(w http.ResponseWriter, r *http.Request) {
	userID, err := service.ParseUserID(chi.URLParam(r, "user_id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	result, err := h.svc.GetUserProjects(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, userID, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserProjectsResponse(result))
}

// handleServiceError maps service errors to HTTP responses.
// Datastore details are logged and never written to the client.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, r *http.Request, userID int64, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeDetail(w, http.StatusNotFound, "User not found")

	default:
		h.logger.Error("user_projects_error",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}
