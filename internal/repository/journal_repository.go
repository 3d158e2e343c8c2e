package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coursemart-api/internal/models"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS checkout_journal (
	reference  TEXT PRIMARY KEY,
	user_id    BIGINT NOT NULL,
	email      TEXT NOT NULL,
	method     TEXT NOT NULL,
	status     TEXT NOT NULL,
	amount     BIGINT NOT NULL,
	currency   TEXT NOT NULL,
	courses    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS checkout_journal_steps (
	id         TEXT PRIMARY KEY,
	reference  TEXT NOT NULL REFERENCES checkout_journal(reference) ON DELETE CASCADE,
	course_id  BIGINT NOT NULL,
	status     TEXT NOT NULL,
	attempts   INT NOT NULL DEFAULT 0,
	last_error TEXT,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checkout_journal_steps_status ON checkout_journal_steps (status);`

// JournalRepository records checkout progress in Postgres.
type JournalRepository struct {
	db *sqlx.DB
}

// NewJournalRepository constructs the repository.
func NewJournalRepository(db *sqlx.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// EnsureSchema creates the journal tables when missing.
func (r *JournalRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, journalSchema); err != nil {
		return fmt.Errorf("ensure journal schema: %w", err)
	}
	return nil
}

// Record inserts a checkout entry together with one pending step per course.
func (r *JournalRepository) Record(ctx context.Context, entry *models.CheckoutJournal, courseIDs []models.ID) (steps []models.JournalStep, err error) {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertEntry = `INSERT INTO checkout_journal
	(reference, user_id, email, method, status, amount, currency, courses, created_at, updated_at)
	VALUES (:reference, :user_id, :email, :method, :status, :amount, :currency, :courses, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertEntry, entry); err != nil {
		return nil, fmt.Errorf("insert journal %s: %w", entry.Reference, err)
	}

	const insertStep = `INSERT INTO checkout_journal_steps
	(id, reference, course_id, status, attempts, last_error, updated_at)
	VALUES (:id, :reference, :course_id, :status, :attempts, :last_error, :updated_at)`
	steps = make([]models.JournalStep, 0, len(courseIDs))
	for _, courseID := range courseIDs {
		step := models.JournalStep{
			ID:        uuid.NewString(),
			Reference: entry.Reference,
			CourseID:  int64(courseID),
			Status:    models.StepStatusPending,
			UpdatedAt: now,
		}
		if _, err = tx.NamedExecContext(ctx, insertStep, step); err != nil {
			return nil, fmt.Errorf("insert journal step course %d: %w", courseID, err)
		}
		steps = append(steps, step)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return steps, nil
}

// UpdateStatus moves the checkout entry to a new status.
func (r *JournalRepository) UpdateStatus(ctx context.Context, reference string, status models.JournalStatus) error {
	const query = `UPDATE checkout_journal SET status = $1, updated_at = $2 WHERE reference = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), reference)
	if err != nil {
		return fmt.Errorf("update journal %s: %w", reference, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteStep marks an enrollment step done after one more attempt.
func (r *JournalRepository) CompleteStep(ctx context.Context, stepID string) error {
	const query = `UPDATE checkout_journal_steps
	SET status = $1, attempts = attempts + 1, last_error = NULL, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, models.StepStatusDone, time.Now().UTC(), stepID); err != nil {
		return fmt.Errorf("complete journal step %s: %w", stepID, err)
	}
	return nil
}

// FailStep records a failed attempt and its cause.
func (r *JournalRepository) FailStep(ctx context.Context, stepID string, cause error) error {
	var lastError *string
	if cause != nil {
		msg := cause.Error()
		lastError = &msg
	}
	const query = `UPDATE checkout_journal_steps
	SET status = $1, attempts = attempts + 1, last_error = $2, updated_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, models.StepStatusFailed, lastError, time.Now().UTC(), stepID); err != nil {
		return fmt.Errorf("fail journal step %s: %w", stepID, err)
	}
	return nil
}

// Find returns a checkout entry by reference.
func (r *JournalRepository) Find(ctx context.Context, reference string) (*models.CheckoutJournal, error) {
	const query = `SELECT reference, user_id, email, method, status, amount, currency, courses, created_at, updated_at
	FROM checkout_journal WHERE reference = $1`
	var entry models.CheckoutJournal
	if err := r.db.GetContext(ctx, &entry, query, reference); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find journal %s: %w", reference, err)
	}
	return &entry, nil
}

// Steps lists the enrollment steps of a checkout.
func (r *JournalRepository) Steps(ctx context.Context, reference string) ([]models.JournalStep, error) {
	const query = `SELECT id, reference, course_id, status, attempts, last_error, updated_at
	FROM checkout_journal_steps WHERE reference = $1 ORDER BY updated_at ASC, id ASC`
	var steps []models.JournalStep
	if err := r.db.SelectContext(ctx, &steps, query, reference); err != nil {
		return nil, fmt.Errorf("list journal steps %s: %w", reference, err)
	}
	return steps, nil
}

// FailedSteps lists failed steps with fewer than maxAttempts tries, oldest first.
func (r *JournalRepository) FailedSteps(ctx context.Context, maxAttempts, limit int) ([]models.JournalStep, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const query = `SELECT id, reference, course_id, status, attempts, last_error, updated_at
	FROM checkout_journal_steps WHERE status = $1 AND attempts < $2 ORDER BY updated_at ASC LIMIT $3`
	var steps []models.JournalStep
	if err := r.db.SelectContext(ctx, &steps, query, models.StepStatusFailed, maxAttempts, limit); err != nil {
		return nil, fmt.Errorf("list failed journal steps: %w", err)
	}
	return steps, nil
}
