package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/sirdesai22/recap-service/internal/blocks"
	"github.com/sirdesai22/recap-service/internal/db"
	"github.com/sirdesai22/recap-service/internal/editor"
	"github.com/sirdesai22/recap-service/internal/services"
	"github.com/sirdesai22/recap-service/internal/workers"
)

var (
	errBadRequest  = errors.New("bad request")
	errUnavailable = errors.New("not configured")
)

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ write response: %v", err)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, db.ErrNotFound), errors.Is(err, blocks.ErrBlockNotFound), errors.Is(err, workers.ErrDLQNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateRecap), errors.Is(err, db.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, editor.ErrWrongType), errors.Is(err, editor.ErrRowIndex),
		errors.Is(err, editor.ErrUnknownField), errors.Is(err, editor.ErrInvalidValue),
		errors.Is(err, editor.ErrUnknownOp), errors.Is(err, blocks.ErrMalformed),
		errors.Is(err, blocks.ErrUnknownType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError reports err as {"error": "..."}. Admins see the cause of server
// errors so they can decide whether to retry; public callers do not.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", r.URL.Path).Error("❌ request failed")
		if !isAdmin(r.Context()) {
			msg = http.StatusText(status)
		}
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}
