package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/iho/cantina/internal/adapter/http/dto"
	"github.com/iho/cantina/internal/domain"
)

// RetryAfterSeconds is sent with responses the client may simply retry.
const RetryAfterSeconds = 1

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status and writes it, with the limit
// diagnostics and Retry-After header where they apply.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	var limitErr *domain.LimitExceededError
	if errors.As(err, &limitErr) {
		writeJSON(w, http.StatusUnprocessableEntity, dto.LimitExceededFromDomain(limitErr))
		return
	}

	status := mapDomainError(err)
	if domain.IsTransient(err) {
		w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
	}

	details := err.Error()
	if status == http.StatusInternalServerError {
		details = ""
	}

	writeError(w, status, message, details)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrLimitExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConcurrencyExhausted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrIdempotencyKeyReused):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidLimit),
		errors.Is(err, domain.ErrInvalidFullName),
		errors.Is(err, domain.ErrInvalidBirthDate),
		errors.Is(err, domain.ErrInvalidPhone),
		errors.Is(err, domain.ErrInvalidBalanceFilter),
		errors.Is(err, dto.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeRequest decodes a JSON body into req and runs its validation tags.
func decodeRequest(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) || errors.Is(err, domain.ErrAmountTooLarge) {
			return err
		}
		return fmt.Errorf("%w: %v", dto.ErrInvalidRequest, err)
	}

	return dto.Validate(req)
}

// actorFrom returns the caller attached by the auth middleware. Requests
// without one run as an anonymous actor and fail authorization.
func actorFrom(r *http.Request) domain.Actor {
	actor, _ := domain.ActorFromContext(r.Context())
	return actor
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
