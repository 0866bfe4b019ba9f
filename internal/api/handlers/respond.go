package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/clipsum/backend/internal/api/dto"
	"github.com/clipsum/backend/pkg/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	writeJSON(w, status, dto.SuccessEnvelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func writeValidationErrors(w http.ResponseWriter, details map[string]string) {
	writeJSON(w, http.StatusBadRequest, dto.ErrorEnvelope{
		Success: false,
		Error: dto.ErrorBody{
			Message: "Validation failed",
			Code:    "VALIDATION_ERROR",
			Details: details,
		},
	})
}

// writeError maps a domain error onto the envelope. Unclassified errors are
// reported as a generic internal failure; the wrapped cause is only echoed
// in development mode.
func writeError(w http.ResponseWriter, err error, dev bool) {
	appErr := apperr.From(err)

	details := appErr.Details
	if dev && appErr.Unwrap() != nil {
		if details == nil {
			details = map[string]string{}
		}
		details["cause"] = appErr.Unwrap().Error()
	}

	writeJSON(w, appErr.Kind.HTTPStatus(), dto.ErrorEnvelope{
		Success: false,
		Error: dto.ErrorBody{
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: details,
		},
	})
}
