package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/hugh/docvault/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTriggerTask(t *testing.T, requestedBy uuid.UUID) *asynq.Task {
	t.Helper()
	task, err := NewIngestionTriggerTask(IngestionTriggerPayload{
		RequestedBy: requestedBy,
		RequestedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return task
}

func TestNewIngestionTriggerTask(t *testing.T) {
	id := uuid.New()
	task := newTriggerTask(t, id)

	assert.Equal(t, TypeIngestionTrigger, task.Type())

	var payload IngestionTriggerPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, id, payload.RequestedBy)
}

func TestHandleIngestionTrigger_PostsToBackend(t *testing.T) {
	requestedBy := uuid.New()

	var gotPath, gotMethod string
	var gotPayload IngestionTriggerPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	h := NewHandler(&config.IngestionConfig{BackendURL: srv.URL, TimeoutSeconds: 5}, testLogger())

	err := h.HandleIngestionTrigger(context.Background(), newTriggerTask(t, requestedBy))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/ingest", gotPath)
	assert.Equal(t, requestedBy, gotPayload.RequestedBy)
}

func TestHandleIngestionTrigger_BackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	h := NewHandler(&config.IngestionConfig{BackendURL: srv.URL}, testLogger())

	err := h.HandleIngestionTrigger(context.Background(), newTriggerTask(t, uuid.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleIngestionTrigger_NoBackend(t *testing.T) {
	h := NewHandler(&config.IngestionConfig{}, testLogger())

	err := h.HandleIngestionTrigger(context.Background(), newTriggerTask(t, uuid.New()))
	assert.ErrorIs(t, err, ErrNoBackend)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleIngestionTrigger_InvalidPayload(t *testing.T) {
	h := NewHandler(&config.IngestionConfig{BackendURL: "http://unused"}, testLogger())

	err := h.HandleIngestionTrigger(context.Background(), asynq.NewTask(TypeIngestionTrigger, []byte("invalid json")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal payload")
}

func TestRegisterHandlers(t *testing.T) {
	h := NewHandler(&config.IngestionConfig{}, testLogger())
	mux := asynq.NewServeMux()
	h.RegisterHandlers(mux)

	_, pattern := mux.Handler(asynq.NewTask(TypeIngestionTrigger, nil))
	assert.Equal(t, TypeIngestionTrigger, pattern)
}
