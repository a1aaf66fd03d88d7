package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/covenant-backend/internal/common/apperrors"
)

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT(NewAccessClaims("user-1", time.Hour), "secret")
	require.NoError(t, err)

	claims, err := ValidateJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "access", claims.Type)
}

func TestJWT_RejectsWrongSecretAndExpired(t *testing.T) {
	token, err := GenerateJWT(NewAccessClaims("user-1", time.Hour), "secret")
	require.NoError(t, err)
	_, err = ValidateJWT(token, "other")
	assert.Error(t, err)

	expired, err := GenerateJWT(NewAccessClaims("user-1", -time.Minute), "secret")
	require.NoError(t, err)
	_, err = ValidateJWT(expired, "secret")
	assert.Error(t, err)
}

func TestValidateStruct(t *testing.T) {
	type req struct {
		MatchID  string `validate:"required"`
		Response string `validate:"required,oneof=accepted declined"`
	}

	err := ValidateStruct(req{Response: "maybe"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "MatchID is required")
	assert.Contains(t, err.Error(), "Response must be one of [accepted declined]")

	assert.NoError(t, ValidateStruct(req{MatchID: "m1", Response: "accepted"}))
}

func TestRespondWithAppError(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondWithAppError(context.Background(), rr, apperrors.Conflict("already_liked", "you already liked this user"))
	assert.Equal(t, http.StatusConflict, rr.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "already_liked", body.Code)

	rr = httptest.NewRecorder()
	RespondWithAppError(context.Background(), rr, errors.New("sql: connection reset"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "sql")
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	var dst struct {
		MatchID string `json:"matchId"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"matchId":"m1","extra":true}`))
	err := DecodeJSON(r, &dst)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
