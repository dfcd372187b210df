package tasks

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeIngestionTrigger = "ingestion:trigger"
)

// IngestionTriggerPayload is forwarded as-is to the ingestion backend.
type IngestionTriggerPayload struct {
	RequestedBy uuid.UUID `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewIngestionTriggerTask(payload IngestionTriggerPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeIngestionTrigger, data, asynq.Queue("default"), asynq.MaxRetry(5)), nil
}
