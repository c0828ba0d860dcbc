package httpx

import (
	"errors"
	"net/http"

	"github.com/sitehem/sitehem/internal/shared"
)

// RespondError maps domain errors to HTTP responses. This is the single place
// where the error taxonomy meets status codes. Authentication failures are
// collapsed to a fixed detail so responses cannot be used to enumerate
// accounts or roles.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, shared.ErrUnauthenticated):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials or session")
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", "insufficient role")
	case errors.Is(err, shared.ErrRateLimited):
		Problem(w, http.StatusTooManyRequests, "Too Many Requests", "retry later")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
