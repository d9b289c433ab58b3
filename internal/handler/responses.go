package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/osse101/reelfaucet/internal/domain"
	"github.com/osse101/reelfaucet/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"` + ErrMsgGenericServerError + `"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs a failed operation and answers with the mapped status
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	status, msg := mapServiceErrorToUserMessage(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(opName+" failed", "error", err)
	} else {
		log.Warn(opName+" rejected", "error", err, "status", status)
	}
	respondError(w, status, msg)
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError    = "Something went wrong"
	ErrMsgInvalidRequestError   = "Invalid request. Please check your inputs."
	ErrMsgSessionNotFoundError  = "Session not found. Start a new session."
	ErrMsgNotEnoughCreditsError = "Not enough credits for this bet"
	ErrMsgBetOutOfRangeError    = "Bet is outside the limits of your level"
	ErrMsgSpinInProgressError   = "Wait for the reels to stop"
	ErrMsgNothingToClaimError   = "There are no winnings to claim"
	ErrMsgUnknownLevelError     = "That level does not exist"
	ErrMsgNotEnoughEarnedError  = "Win more credits to unlock that level"
	ErrMsgAuthFailedError       = "Sign-in expired. Please sign in again."
	ErrMsgUnavailableError      = "Balance service is temporarily unavailable. Please try again later."
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP responses
func mapServiceErrorToUserMessage(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, ErrMsgGenericServerError
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, ErrMsgSessionNotFoundError
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest, ErrMsgNotEnoughCreditsError
	case errors.Is(err, domain.ErrBetOutOfRange):
		return http.StatusBadRequest, ErrMsgBetOutOfRangeError
	case errors.Is(err, domain.ErrSpinInProgress):
		return http.StatusConflict, ErrMsgSpinInProgressError
	case errors.Is(err, domain.ErrNothingToClaim):
		return http.StatusConflict, ErrMsgNothingToClaimError
	case errors.Is(err, domain.ErrUnknownLevel):
		return http.StatusBadRequest, ErrMsgUnknownLevelError
	case errors.Is(err, domain.ErrInsufficientEarnings):
		return http.StatusBadRequest, ErrMsgNotEnoughEarnedError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidRequestError
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, ErrMsgAuthFailedError
	case errors.Is(err, domain.ErrBalanceUnavailable):
		return http.StatusServiceUnavailable, ErrMsgUnavailableError
	}
	return http.StatusInternalServerError, ErrMsgGenericServerError
}
