package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/service"
)

var quiet = responder{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"not found", apperror.NotFound("post", "x"), http.StatusNotFound, "not_found"},
		{"forbidden", apperror.Forbidden("nope"), http.StatusForbidden, "forbidden"},
		{"unauthorized", apperror.Unauthorized("who?"), http.StatusUnauthorized, "unauthorized"},
		{"conflict", apperror.Conflict("user", "x"), http.StatusConflict, "conflict"},
		{"wrapped not found", fmt.Errorf("loading: %w", apperror.NotFound("post", "x")), http.StatusNotFound, "not_found"},
		{"unknown error", errors.New("sql: connection refused"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			quiet.writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Error)
		})
	}
}

func TestWriteError_InternalDetailsHidden(t *testing.T) {
	var logs bytes.Buffer
	rs := responder{logger: slog.New(slog.NewTextHandler(&logs, nil))}
	rec := httptest.NewRecorder()

	rs.writeError(rec, errors.New("pq: password authentication failed for user \"blog\""))

	assert.NotContains(t, rec.Body.String(), "password authentication")
	assert.Contains(t, logs.String(), "password authentication", "cause goes to the handler's logger")
}

func TestWriteError_ValidationIsBareFieldMap(t *testing.T) {
	rec := httptest.NewRecorder()
	quiet.writeError(rec, apperror.Invalid(map[string][]string{
		"title":   {"Title cannot be empty."},
		"content": {"Content cannot exceed 1000 characters."},
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Title cannot be empty."}, body["title"])
	assert.Equal(t, []string{"Content cannot exceed 1000 characters."}, body["content"])
	assert.Len(t, body, 2)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Title *string `json:"title"`
	}

	t.Run("valid", func(t *testing.T) {
		var p payload
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"hi"}`))

		require.True(t, quiet.decodeJSON(rec, req, &p))
		require.NotNil(t, p.Title)
		assert.Equal(t, "hi", *p.Title)
	})

	t.Run("empty body means no fields", func(t *testing.T) {
		var p payload
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(""))

		assert.True(t, quiet.decodeJSON(rec, req, &p))
		assert.Nil(t, p.Title)
	})

	for name, body := range map[string]string{
		"truncated":  `{"title":`,
		"wrong type": `{"title": 42}`,
		"array":      `[1,2]`,
	} {
		t.Run(name, func(t *testing.T) {
			var p payload
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

			assert.False(t, quiet.decodeJSON(rec, req, &p))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "bad_request", resp.Error)
			assert.Equal(t, msgMalformedJSON, resp.Message)
			assert.NotContains(t, resp.Message, "Go struct")
		})
	}

	t.Run("input types keep wrongly typed fields for the service", func(t *testing.T) {
		var in service.PostInput
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"title": 42, "content": "ok"}`))

		require.True(t, quiet.decodeJSON(rec, req, &in))
		assert.Nil(t, in.Title)
		require.NotNil(t, in.Content)
		assert.Equal(t, "ok", *in.Content)
	})

	t.Run("oversized", func(t *testing.T) {
		var p payload
		rec := httptest.NewRecorder()
		big := `{"title":"` + strings.Repeat("x", maxBodyBytes) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))

		assert.False(t, quiet.decodeJSON(rec, req, &p))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
