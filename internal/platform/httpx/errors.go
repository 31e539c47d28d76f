package httpx

import (
	"errors"
	"net/http"

	"github.com/interviewhub/gateway/internal/shared"
)

// RespondError maps domain errors to envelope responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, CodeNotFound, "resource not found")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Fail(w, CodeUnauthorized, "invalid username or password")
	case errors.Is(err, shared.ErrPendingActivation):
		Fail(w, CodePendingActivation, "account pending activation")
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, CodeForbidden, http.StatusText(http.StatusForbidden))
	default:
		Fail(w, CodeInternalError, "internal error")
	}
}
