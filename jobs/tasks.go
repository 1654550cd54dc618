package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeDraftGenerate is the task type for AI draft generation.
	TaskTypeDraftGenerate = "draft:generate"
	// TaskTypeRetentionSweep is the task type for the stored-object
	// retention sweep.
	TaskTypeRetentionSweep = "documents:retention-sweep"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with SMTP/Mailpit in phase 2.
	slog.Default().Info("send email", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return nil
}

// DraftGeneratePayload identifies the draft request to fulfil.
type DraftGeneratePayload struct {
	FirmID  string `json:"firmId"`
	DraftID string `json:"draftId"`
}

// NewDraftGenerateTask constructs an Asynq task.
func NewDraftGenerateTask(payload DraftGeneratePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDraftGenerate, data), nil
}

// RetentionSweepPayload bounds the sweep to deleted objects older than
// the given number of days.
type RetentionSweepPayload struct {
	OlderThanDays int `json:"olderThanDays"`
}

// NewRetentionSweepTask constructs an Asynq task.
func NewRetentionSweepTask(payload RetentionSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRetentionSweep, data), nil
}
