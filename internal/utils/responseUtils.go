package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ApiResponse is the envelope of every successful JSON response.
type ApiResponse struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"statusCode":500,"message":"Internal server error","success":false}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// RespondWithData wraps data in an ApiResponse.
func RespondWithData(w http.ResponseWriter, code int, data interface{}, message string) {
	RespondWithJSON(w, code, ApiResponse{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    code < http.StatusBadRequest,
	})
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, &ApiError{StatusCode: code, Message: message})
}

// HandleError serializes err. ApiErrors keep their status and message; anything else is
// logged and reported as a generic 500.
func HandleError(w http.ResponseWriter, err error) {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= http.StatusInternalServerError {
			log.Error().Err(err).Int("status", apiErr.StatusCode).Msg("Request failed")
		}
		RespondWithJSON(w, apiErr.StatusCode, &ApiError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
			Errors:     apiErr.Errors,
		})
		return
	}

	log.Error().Err(err).Msg("Unhandled error")
	RespondWithError(w, http.StatusInternalServerError, "Internal server error")
}
