package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dukerupert/pizzeria/internal/apperr"
	"github.com/dukerupert/pizzeria/internal/order"
)

// AdminTokenHeader carries the admin bearer token.
const AdminTokenHeader = "Admin-Token"

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func message(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	if errors.Is(err, order.ErrWindowElapsed) {
		return http.StatusBadRequest
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindPolicy:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends err as {"error": ...}. Storage failures are logged and
// reported without detail.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": apperr.Message(err)})
}

// decodeJSON reads a JSON object body into v. An empty body leaves v at its
// zero value.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return apperr.Validation("invalid JSON")
	}
	return nil
}

func adminToken(r *http.Request) string {
	return r.Header.Get(AdminTokenHeader)
}
