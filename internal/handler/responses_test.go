package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/reelfaucet/internal/domain"
)

func TestMapServiceErrorToUserMessage(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"nil", nil, http.StatusInternalServerError, ErrMsgGenericServerError},
		{"session", domain.ErrSessionNotFound, http.StatusNotFound, ErrMsgSessionNotFoundError},
		{"funds wrapped", fmt.Errorf("%w: bet 5, credits 2", domain.ErrInsufficientFunds), http.StatusBadRequest, ErrMsgNotEnoughCreditsError},
		{"bet range", domain.ErrBetOutOfRange, http.StatusBadRequest, ErrMsgBetOutOfRangeError},
		{"spinning", domain.ErrSpinInProgress, http.StatusConflict, ErrMsgSpinInProgressError},
		{"nothing to claim", domain.ErrNothingToClaim, http.StatusConflict, ErrMsgNothingToClaimError},
		{"unknown level", domain.ErrUnknownLevel, http.StatusBadRequest, ErrMsgUnknownLevelError},
		{"earnings", domain.ErrInsufficientEarnings, http.StatusBadRequest, ErrMsgNotEnoughEarnedError},
		{"input", domain.ErrInvalidInput, http.StatusBadRequest, ErrMsgInvalidRequestError},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, ErrMsgAuthFailedError},
		{"balance down", domain.ErrBalanceUnavailable, http.StatusServiceUnavailable, ErrMsgUnavailableError},
		{"internal detail is hidden", errors.New("pq: relation does not exist"), http.StatusInternalServerError, ErrMsgGenericServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := mapServiceErrorToUserMessage(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"Bearer abc", "abc", false},
		{"bearer  abc ", "abc", false},
		{"Bearer ", "", true},
		{"Basic abc", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderAuthorization, tt.header)
			}
			got, err := bearerToken(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
