package shared

import (
	"errors"
	"net/http"

	"pms/internal/domain/auth"
	"pms/internal/domain/notifications"
	"pms/internal/domain/performance"
	"pms/internal/platform/db"
	"pms/internal/platform/requestctx"
	"pms/internal/transport/http/api"
)

const (
	MessageUnavailable = "The service is temporarily unavailable. Please try again later."
	MessageInternal    = "An unexpected error occurred."
	MessageConflict    = "The request conflicts with existing data."
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Domain sentinels are checked before the datastore taxonomy so the more
// specific message wins.
var domainErrors = []errorMapping{
	{auth.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
	{auth.ErrSessionExpired, http.StatusUnauthorized, "session_expired"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{auth.ErrMFARequired, http.StatusUnauthorized, "mfa_required"},
	{auth.ErrMFAInvalid, http.StatusUnauthorized, "mfa_invalid"},
	{performance.ErrForbidden, http.StatusForbidden, "forbidden"},
	{auth.ErrDuplicateUser, http.StatusConflict, "duplicate_user"},
	{auth.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{performance.ErrGoalNotFound, http.StatusNotFound, "goal_not_found"},
	{performance.ErrTaskNotFound, http.StatusNotFound, "task_not_found"},
	{notifications.ErrNotFound, http.StatusNotFound, "notification_not_found"},
	{auth.ErrInvalidRole, http.StatusBadRequest, "invalid_role"},
	{auth.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{auth.ErrMFAUnavailable, http.StatusBadRequest, "mfa_unavailable"},
	{auth.ErrMFANotSetup, http.StatusBadRequest, "mfa_not_setup"},
	{performance.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{performance.ErrInvalidAssignee, http.StatusBadRequest, "invalid_assignee"},
	{performance.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
}

// StatusFor maps an error to the HTTP status, error code and message shown
// to the caller. Datastore details never leak into the message.
func StatusFor(err error) (int, string, string) {
	for _, m := range domainErrors {
		if errors.Is(err, m.target) {
			return m.status, m.code, err.Error()
		}
	}
	switch {
	case errors.Is(err, db.ErrConnection):
		return http.StatusServiceUnavailable, "service_unavailable", MessageUnavailable
	case errors.Is(err, db.ErrConstraintViolation):
		return http.StatusConflict, "conflict", MessageConflict
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, "not_found", "resource not found"
	default:
		return http.StatusInternalServerError, "internal_error", MessageInternal
	}
}

func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := StatusFor(err)
	api.Fail(w, status, code, message, requestctx.GetRequestID(r.Context()))
}
