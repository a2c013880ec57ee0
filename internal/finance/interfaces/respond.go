package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sebuszqo/FinMind/internal/auth"
	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
	"github.com/sebuszqo/FinMind/internal/log"
)

const dateLayout = "2006-01-02"

func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func RespondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}

	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}

	RespondJSON(w, status, payload)
}

func respondSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	RespondJSON(w, status, map[string]interface{}{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return userID, ok
}

// errorWriter turns service errors into responses. Anything outside the
// finance taxonomy is logged and answered with 500.
type errorWriter struct {
	logger *log.Logger
}

func (e errorWriter) write(w http.ResponseWriter, r *http.Request, message string, err error) {
	var validationErrors *financeErrors.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		messages := make([]string, len(validationErrors.Errors))
		for i, vErr := range validationErrors.Errors {
			messages[i] = vErr.Error()
		}
		RespondError(w, http.StatusBadRequest, "Validation errors occurred", messages)
	case financeErrors.IsValidationError(err), financeErrors.IsInvalidStateError(err):
		RespondError(w, http.StatusBadRequest, err.Error())
	case financeErrors.IsNotFoundError(err):
		RespondError(w, http.StatusNotFound, err.Error())
	default:
		userID, _ := auth.UserIDFromContext(r.Context())
		e.logger.ErrorContext(r.Context(), message,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldUserID, userID,
			log.FieldError, err.Error(),
		)
		RespondError(w, http.StatusInternalServerError, message)
	}
}

// parseDate accepts YYYY-MM-DD and RFC 3339.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func parseOptionalDate(value, field string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return time.Time{}, financeErrors.NewValidationError(fmt.Sprintf("Invalid %s format, expected YYYY-MM-DD", field))
	}
	return t, nil
}

// parseDateRange reads start_date and end_date. A date-only end bound covers
// the whole day.
func parseDateRange(r *http.Request) (domain.DateRange, error) {
	query := r.URL.Query()
	from, err := parseOptionalDate(query.Get("start_date"), "start date")
	if err != nil {
		return domain.DateRange{}, err
	}
	to, err := parseOptionalDate(query.Get("end_date"), "end date")
	if err != nil {
		return domain.DateRange{}, err
	}
	if !to.IsZero() && len(query.Get("end_date")) == len(dateLayout) {
		to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return domain.DateRange{}, financeErrors.NewValidationError("Start date must not be after end date")
	}
	return domain.Between(from, to), nil
}

func parsePositiveInt(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, financeErrors.NewValidationError(fmt.Sprintf("Invalid %s value", name))
	}
	return value, nil
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return financeErrors.NewValidationError("Invalid request body")
	}
	return nil
}

// ValidatePathIDMiddleware answers 404 before reaching next when the {id}
// path value is not a UUID.
func ValidatePathIDMiddleware(next http.Handler, entity string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			RespondError(w, http.StatusBadRequest, "Id is required")
			return
		}
		if _, err := uuid.Parse(id); err != nil {
			RespondError(w, http.StatusNotFound, capitalizeFirstLetter(entity)+" not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func capitalizeFirstLetter(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
