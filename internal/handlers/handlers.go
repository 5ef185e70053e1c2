package handlers

import (
	"errors"
	"net/http"

	"courier/internal/store"
)

// statusFor maps the registry's named error kinds onto HTTP statuses in
// one place so every handler reports failures the same way.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrDuplicateUser),
		errors.Is(err, store.ErrDuplicateGroupName):
		return http.StatusConflict
	case errors.Is(err, store.ErrUnknownUser),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrUnknownGroup),
		errors.Is(err, store.ErrUnknownDraft),
		errors.Is(err, store.ErrInsufficientMsgs):
		return http.StatusNotFound
	case errors.Is(err, store.ErrNotAuthorized),
		errors.Is(err, store.ErrNotAMember),
		errors.Is(err, store.ErrCannotRemoveAdmin):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}
