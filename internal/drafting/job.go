package drafting

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/lexora-legal/lexora/internal/realtime"
	"github.com/lexora-legal/lexora/jobs"
)

// Generator turns a prompt into draft text. Satisfied by ProviderClient.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Job fulfils queued draft requests on the worker.
type Job struct {
	repo      Repository
	generator Generator
	publisher *realtime.Publisher
	logger    *slog.Logger
}

// NewJob constructs a Job.
func NewJob(repo Repository, generator Generator, publisher *realtime.Publisher, logger *slog.Logger) *Job {
	return &Job{repo: repo, generator: generator, publisher: publisher, logger: logger}
}

// Handle processes TaskTypeDraftGenerate tasks. Provider failures are
// recorded on the request and not retried; a draft either completes or
// fails with a visible reason.
func (j *Job) Handle(ctx context.Context, t *asynq.Task) error {
	var payload jobs.DraftGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	firmID, err := uuid.Parse(payload.FirmID)
	if err != nil {
		return asynq.SkipRetry
	}
	draftID, err := uuid.Parse(payload.DraftID)
	if err != nil {
		return asynq.SkipRetry
	}

	draft, err := j.repo.Get(ctx, firmID, draftID)
	if err != nil {
		j.logger.Warn("load draft request", slog.String("draft", payload.DraftID), slog.Any("error", err))
		return asynq.SkipRetry
	}
	if draft.Status != StatusQueued {
		return nil
	}
	if err := j.repo.MarkRunning(ctx, firmID, draftID); err != nil {
		// Another worker picked it up first.
		return nil
	}

	text, err := j.generator.Generate(ctx, draft.Prompt)
	if err != nil {
		j.logger.Error("generate draft", slog.String("draft", payload.DraftID), slog.Any("error", err))
		if failErr := j.repo.Fail(ctx, firmID, draftID, err.Error()); failErr != nil {
			return failErr
		}
		j.publisher.PublishSync(firmID, "draft.failed", map[string]any{"draftId": payload.DraftID}, draft.MatterID)
		return asynq.SkipRetry
	}

	if err := j.repo.Complete(ctx, firmID, draftID, text); err != nil {
		return err
	}
	j.publisher.PublishSync(firmID, "draft.completed", map[string]any{"draftId": payload.DraftID}, draft.MatterID)
	return nil
}
