package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/docvault/internal/api/dto"
	"github.com/hugh/docvault/internal/api/middleware"
	"github.com/hugh/docvault/internal/apperr"
	"github.com/hugh/docvault/internal/reports"
	"github.com/hugh/docvault/internal/tasks"
)

// Enqueuer is the part of *asynq.Client the trigger endpoint uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type ReportHandler struct {
	reports *reports.Service
	queue   Enqueuer
}

// NewReportHandler serves the /ingestion reports. queue may be nil, in which
// case Trigger answers 503.
func NewReportHandler(svc *reports.Service, queue Enqueuer) *ReportHandler {
	return &ReportHandler{reports: svc, queue: queue}
}

// UsersByRole handles GET /ingestion/total-users-by-role
func (h *ReportHandler) UsersByRole(w http.ResponseWriter, r *http.Request) {
	counts, err := h.reports.UsersByRole(r.Context(), middleware.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// DocumentsByRole handles GET /ingestion/documents-uploaded-by-role
func (h *ReportHandler) DocumentsByRole(w http.ResponseWriter, r *http.Request) {
	counts, err := h.reports.DocumentsByUploaderRole(r.Context(), middleware.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// DocumentsByUser handles GET /ingestion/documents-uploaded-by-user
func (h *ReportHandler) DocumentsByUser(w http.ResponseWriter, r *http.Request) {
	entries, err := h.reports.DocumentsByUser(r.Context(), middleware.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// AdminEditorTotal handles GET /ingestion/total-documents-uploaded-by-admin-and-editor
func (h *ReportHandler) AdminEditorTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.reports.AdminEditorDocumentTotal(r.Context(), middleware.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TotalResponse{Total: total})
}

// DocumentsWithUploader handles GET /ingestion/all-documents-with-user
func (h *ReportHandler) DocumentsWithUploader(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.DocumentsWithUploader(r.Context(), middleware.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Trigger handles POST /ingestion/trigger
func (h *ReportHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Task queue not available"})
		return
	}

	caller := middleware.CallerFrom(r.Context())
	task, err := tasks.NewIngestionTriggerTask(tasks.IngestionTriggerPayload{
		RequestedBy: caller.ID,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		writeError(w, r, apperr.Internal(fmt.Errorf("building ingestion task: %w", err)))
		return
	}

	info, err := h.queue.EnqueueContext(r.Context(), task)
	if err != nil {
		writeError(w, r, apperr.Internal(fmt.Errorf("enqueueing ingestion task: %w", err)))
		return
	}

	writeJSON(w, http.StatusAccepted, dto.TriggerResponse{
		Message: "Ingestion triggered",
		TaskID:  info.ID,
	})
}
