package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/pkg/jobs"
)

const enrollmentRetryJobType = "enrollment.retry"

// EnrollmentRetry is one enrollment that failed during checkout.
type EnrollmentRetry struct {
	Reference string
	StepID    string
	UserID    models.ID
	CourseID  models.ID
}

// EnrollmentJournal is the ledger view the retry worker needs.
type EnrollmentJournal interface {
	CompleteStep(ctx context.Context, stepID string) error
	FailStep(ctx context.Context, stepID string, cause error) error
	UpdateStatus(ctx context.Context, reference string, status models.JournalStatus) error
	Steps(ctx context.Context, reference string) ([]models.JournalStep, error)
	Find(ctx context.Context, reference string) (*models.CheckoutJournal, error)
	FailedSteps(ctx context.Context, maxAttempts, limit int) ([]models.JournalStep, error)
}

type retryQueue interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(job jobs.Job) error
}

// EnrollmentWorker retries failed checkout enrollments in the background.
type EnrollmentWorker struct {
	enrollments enrollmentCreator
	journal     EnrollmentJournal
	metrics     *MetricsService
	logger      *zap.Logger
	maxAttempts int
	queue       retryQueue
}

// NewEnrollmentWorker builds the worker and its queue. journal may be nil.
func NewEnrollmentWorker(enrollments enrollmentCreator, journal EnrollmentJournal, metrics *MetricsService, logger *zap.Logger, cfg jobs.QueueConfig) *EnrollmentWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	worker := &EnrollmentWorker{
		enrollments: enrollments,
		journal:     journal,
		metrics:     metrics,
		logger:      logger,
		maxAttempts: cfg.MaxRetries + 1,
	}
	cfg.OnExhausted = worker.exhausted
	worker.queue = jobs.NewQueue("enrollment-retry", worker.handle, cfg)
	return worker
}

// Start launches the queue workers.
func (w *EnrollmentWorker) Start(ctx context.Context) {
	w.queue.Start(ctx)
}

// Stop drains the workers.
func (w *EnrollmentWorker) Stop() {
	w.queue.Stop()
}

// Schedule queues one enrollment for retry.
func (w *EnrollmentWorker) Schedule(ctx context.Context, retry EnrollmentRetry) error {
	if retry.UserID <= 0 || retry.CourseID <= 0 {
		return fmt.Errorf("schedule enrollment retry: invalid user %d or course %d", retry.UserID, retry.CourseID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return w.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    enrollmentRetryJobType,
		Payload: retry,
	})
}

// Resume re-queues failed steps left over from a previous run.
func (w *EnrollmentWorker) Resume(ctx context.Context, limit int) (int, error) {
	if w.journal == nil {
		return 0, nil
	}
	steps, err := w.journal.FailedSteps(ctx, w.maxAttempts, limit)
	if err != nil {
		return 0, err
	}
	owners := make(map[string]models.ID)
	scheduled := 0
	for _, step := range steps {
		userID, ok := owners[step.Reference]
		if !ok {
			entry, err := w.journal.Find(ctx, step.Reference)
			if err != nil {
				w.logger.Warn("resume enrollment: journal entry missing", zap.String("reference", step.Reference), zap.Error(err))
				continue
			}
			userID = models.ID(entry.UserID)
			owners[step.Reference] = userID
		}
		retry := EnrollmentRetry{Reference: step.Reference, StepID: step.ID, UserID: userID, CourseID: models.ID(step.CourseID)}
		if err := w.Schedule(ctx, retry); err != nil {
			return scheduled, err
		}
		scheduled++
	}
	return scheduled, nil
}

func (w *EnrollmentWorker) handle(ctx context.Context, job jobs.Job) error {
	retry, ok := job.Payload.(EnrollmentRetry)
	if !ok {
		w.logger.Error("unexpected enrollment job payload", zap.String("job_id", job.ID))
		return nil
	}

	err := w.enrollments.Create(ctx, models.Enrollment{UserID: retry.UserID, CourseID: retry.CourseID})
	if err != nil {
		w.metrics.RecordEnrollmentRetry("failed")
		if retry.StepID != "" && w.journal != nil {
			if jerr := w.journal.FailStep(ctx, retry.StepID, err); jerr != nil {
				w.logger.Warn("journal fail step failed", zap.String("step_id", retry.StepID), zap.Error(jerr))
			}
		}
		return fmt.Errorf("retry enrollment %s course %d: %w", retry.Reference, retry.CourseID, err)
	}

	w.metrics.RecordEnrollmentRetry("succeeded")
	w.logger.Info("enrollment retry succeeded",
		zap.String("reference", retry.Reference),
		zap.Int64("user_id", int64(retry.UserID)),
		zap.Int64("course_id", int64(retry.CourseID)),
		zap.Int("attempt", job.Attempt+1))

	if retry.StepID == "" || w.journal == nil {
		return nil
	}
	if err := w.journal.CompleteStep(ctx, retry.StepID); err != nil {
		w.logger.Warn("journal complete step failed", zap.String("step_id", retry.StepID), zap.Error(err))
		return nil
	}
	w.settleIfDone(ctx, retry.Reference)
	return nil
}

// exhausted flags the checkout for manual follow-up. The failed step stays in
// the journal so the next Resume picks it up again if attempts allow.
func (w *EnrollmentWorker) exhausted(ctx context.Context, job jobs.Job, cause error) {
	w.metrics.RecordEnrollmentRetry("exhausted")
	retry, ok := job.Payload.(EnrollmentRetry)
	if !ok {
		return
	}
	w.logger.Error("enrollment retry gave up",
		zap.String("reference", retry.Reference),
		zap.Int64("user_id", int64(retry.UserID)),
		zap.Int64("course_id", int64(retry.CourseID)),
		zap.Error(cause))
	if w.journal == nil || retry.Reference == "" {
		return
	}
	if err := w.journal.UpdateStatus(context.WithoutCancel(ctx), retry.Reference, models.JournalStatusPartial); err != nil {
		w.logger.Warn("journal mark partial failed", zap.String("reference", retry.Reference), zap.Error(err))
	}
}

// settleIfDone marks the checkout completed once every step is done.
func (w *EnrollmentWorker) settleIfDone(ctx context.Context, reference string) {
	steps, err := w.journal.Steps(ctx, reference)
	if err != nil {
		w.logger.Warn("load journal steps failed", zap.String("reference", reference), zap.Error(err))
		return
	}
	for _, step := range steps {
		if step.Status != models.StepStatusDone {
			return
		}
	}
	if err := w.journal.UpdateStatus(ctx, reference, models.JournalStatusCompleted); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Warn("journal settle failed", zap.String("reference", reference), zap.Error(err))
	}
}
