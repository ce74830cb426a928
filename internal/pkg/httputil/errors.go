package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/statuskeeper/statuskeeper/internal/domain"
	"github.com/statuskeeper/statuskeeper/internal/pkg/ctxlog"
)

// ErrorMapping defines how a package-level sentinel maps to an HTTP response.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string // if empty, uses err.Error()
}

// HandleError maps a domain error to an HTTP response.
//
// The shared taxonomy is handled first: validation errors are 400,
// missing entities 404, state-machine violations and version conflicts
// 409. Package-specific sentinels go through the provided mappings.
// Anything unmapped is logged and returned as 500.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	var (
		validationErr *domain.ValidationError
		transitionErr *domain.InvalidTransitionError
		stateErr      *domain.InvalidStateError
	)

	switch {
	case errors.As(err, &validationErr):
		Error(w, http.StatusBadRequest, validationErr.Error())
		return
	case errors.As(err, &transitionErr):
		Error(w, http.StatusConflict, transitionErr.Error())
		return
	case errors.As(err, &stateErr):
		Error(w, http.StatusConflict, stateErr.Error())
		return
	case errors.Is(err, domain.ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, domain.ErrConflict):
		Error(w, http.StatusConflict, err.Error())
		return
	}

	for _, m := range mappings {
		if errors.Is(err, m.Error) {
			msg := m.Message
			if msg == "" {
				msg = err.Error()
			}
			Error(w, m.Status, msg)
			return
		}
	}

	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}
