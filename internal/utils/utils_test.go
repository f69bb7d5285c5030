package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TRIPPLANNER_BACK-END/internal/dto"
)

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(r))
}

type sampleRequest struct {
	Title    string `json:"title" validate:"required,max=10"`
	Currency string `json:"currency" validate:"required,currency"`
	Status   string `json:"status" validate:"omitempty,trip_status"`
	Type     string `json:"item_type" validate:"omitempty,item_type"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func TestValidateStruct(t *testing.T) {
	ok := sampleRequest{Title: "Lima", Currency: "PEN", Status: "PLANNING", Type: "HOTEL"}
	assert.Nil(t, ValidateStruct(ok))

	bad := sampleRequest{Title: "", Currency: "XYZ", Status: "DONE", Type: "SHIP", Email: "nope"}
	fields := ValidateStruct(bad)

	require.NotNil(t, fields)
	assert.Equal(t, "is required", fields["title"])
	assert.Equal(t, "must be a supported currency code", fields["currency"])
	assert.Contains(t, fields["status"], "PLANNING")
	assert.Contains(t, fields["item_type"], "FLIGHT")
	assert.Equal(t, "must be a valid email", fields["email"])
}

func TestDecodeJSONRequest(t *testing.T) {
	var dst sampleRequest

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Ok","currency":"BRL"}`))
	w := httptest.NewRecorder()
	require.NoError(t, DecodeJSONRequest(w, r, &dst))
	assert.Equal(t, "Ok", dst.Title)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":1}`))
	w = httptest.NewRecorder()
	require.Error(t, DecodeJSONRequest(w, r, &dst))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid request body", body.Error)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"surprise":true}`))
	w = httptest.NewRecorder()
	assert.Error(t, DecodeJSONRequest(w, r, &dst))
}

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteValidationError(w, map[string]string{"amount": "is required"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "is required", body.Fields["amount"])
}

func TestParseDateTime(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	got, err := ParseDateTime("2026-07-01T09:30", loc)
	require.NoError(t, err)
	assert.Equal(t, "2026-07-01T12:30:00Z", got.UTC().Format(time.RFC3339))

	got, err = ParseDateTime("2026-07-01T09:30:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Hour())

	_, err = ParseDateTime("tomorrow", loc)
	assert.Error(t, err)
}

func TestUserContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserIDFromContext(r.Context())
	assert.False(t, ok)

	id := uuid.New()
	ctx := WithUser(r.Context(), id, "ana@example.com", true)
	got, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, "ana@example.com", GetEmailFromContext(ctx))
	assert.True(t, IsSuperuserFromContext(ctx))
}

func TestPagination(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=-3", nil)
	limit, offset := Pagination(r)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 0, offset)
}
