package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/docvault/pkg/config"
)

var ErrNoBackend = errors.New("ingestion backend URL is not configured")

type Handler struct {
	client     *http.Client
	backendURL string
	logger     *slog.Logger
}

func NewHandler(cfg *config.IngestionConfig, logger *slog.Logger) *Handler {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{
		client:     &http.Client{Timeout: timeout},
		backendURL: cfg.BackendURL,
		logger:     logger,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeIngestionTrigger, h.HandleIngestionTrigger)
}

// HandleIngestionTrigger asks the external backend to start ingesting. A
// non-2xx reply fails the task so asynq retries it.
func (h *Handler) HandleIngestionTrigger(ctx context.Context, t *asynq.Task) error {
	var payload IngestionTriggerPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if h.backendURL == "" {
		return fmt.Errorf("%w: %w", ErrNoBackend, asynq.SkipRetry)
	}

	h.logger.Info("triggering ingestion",
		"requested_by", payload.RequestedBy,
		"backend", h.backendURL,
	)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.backendURL+"/ingest", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("post ingest: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ingestion backend answered %d", resp.StatusCode)
	}

	h.logger.Info("ingestion triggered", "requested_by", payload.RequestedBy, "status", resp.StatusCode)
	return nil
}
