package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/internal/repository"
	"github.com/noah-isme/coursemart-api/pkg/jobs"
)

type flakyEnrollments struct {
	mu       sync.Mutex
	failures int
	calls    int
	done     chan models.Enrollment
}

func (f *flakyEnrollments) Create(ctx context.Context, enrollment models.Enrollment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("upstream unavailable")
	}
	if f.done != nil {
		f.done <- enrollment
	}
	return nil
}

type memoryRetryJournal struct {
	mu       sync.Mutex
	entries  map[string]models.CheckoutJournal
	steps    map[string]*models.JournalStep
	statuses map[string]models.JournalStatus
}

func newMemoryRetryJournal() *memoryRetryJournal {
	return &memoryRetryJournal{
		entries:  make(map[string]models.CheckoutJournal),
		steps:    make(map[string]*models.JournalStep),
		statuses: make(map[string]models.JournalStatus),
	}
}

func (j *memoryRetryJournal) addStep(step models.JournalStep) {
	j.mu.Lock()
	defer j.mu.Unlock()
	copied := step
	j.steps[step.ID] = &copied
}

func (j *memoryRetryJournal) CompleteStep(ctx context.Context, stepID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.steps[stepID].Status = models.StepStatusDone
	j.steps[stepID].Attempts++
	return nil
}

func (j *memoryRetryJournal) FailStep(ctx context.Context, stepID string, cause error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.steps[stepID].Status = models.StepStatusFailed
	j.steps[stepID].Attempts++
	return nil
}

func (j *memoryRetryJournal) UpdateStatus(ctx context.Context, reference string, status models.JournalStatus) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.statuses[reference] = status
	return nil
}

func (j *memoryRetryJournal) Steps(ctx context.Context, reference string) ([]models.JournalStep, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []models.JournalStep
	for _, step := range j.steps {
		if step.Reference == reference {
			out = append(out, *step)
		}
	}
	return out, nil
}

func (j *memoryRetryJournal) Find(ctx context.Context, reference string) (*models.CheckoutJournal, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	entry, ok := j.entries[reference]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entry, nil
}

func (j *memoryRetryJournal) FailedSteps(ctx context.Context, maxAttempts, limit int) ([]models.JournalStep, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []models.JournalStep
	for _, step := range j.steps {
		if step.Status == models.StepStatusFailed && step.Attempts < maxAttempts {
			out = append(out, *step)
		}
	}
	return out, nil
}

type capturingQueue struct {
	jobs []jobs.Job
}

func (q *capturingQueue) Start(ctx context.Context) {}
func (q *capturingQueue) Stop()                     {}

func (q *capturingQueue) Enqueue(job jobs.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func TestEnrollmentWorkerHandleSettlesJournal(t *testing.T) {
	journal := newMemoryRetryJournal()
	journal.addStep(models.JournalStep{ID: "s1", Reference: "ref-1", CourseID: 10, Status: models.StepStatusFailed, Attempts: 1})
	journal.addStep(models.JournalStep{ID: "s2", Reference: "ref-1", CourseID: 11, Status: models.StepStatusDone, Attempts: 1})
	worker := NewEnrollmentWorker(&flakyEnrollments{}, journal, nil, zap.NewNop(), jobs.QueueConfig{})

	err := worker.handle(context.Background(), jobs.Job{ID: "j1", Payload: EnrollmentRetry{Reference: "ref-1", StepID: "s1", UserID: 7, CourseID: 10}})
	require.NoError(t, err)
	assert.Equal(t, models.StepStatusDone, journal.steps["s1"].Status)
	assert.Equal(t, models.JournalStatusCompleted, journal.statuses["ref-1"])
}

func TestEnrollmentWorkerHandleFailureRecordsStep(t *testing.T) {
	journal := newMemoryRetryJournal()
	journal.addStep(models.JournalStep{ID: "s1", Reference: "ref-1", CourseID: 10, Status: models.StepStatusFailed, Attempts: 1})
	worker := NewEnrollmentWorker(&flakyEnrollments{failures: 1}, journal, nil, zap.NewNop(), jobs.QueueConfig{})

	err := worker.handle(context.Background(), jobs.Job{ID: "j1", Payload: EnrollmentRetry{Reference: "ref-1", StepID: "s1", UserID: 7, CourseID: 10}})
	require.Error(t, err)
	assert.Equal(t, 2, journal.steps["s1"].Attempts)
	assert.NotContains(t, journal.statuses, "ref-1")
}

func TestEnrollmentWorkerScheduleValidates(t *testing.T) {
	worker := NewEnrollmentWorker(&flakyEnrollments{}, nil, nil, nil, jobs.QueueConfig{})
	queue := &capturingQueue{}
	worker.queue = queue

	assert.Error(t, worker.Schedule(context.Background(), EnrollmentRetry{Reference: "ref-1"}))
	require.NoError(t, worker.Schedule(context.Background(), EnrollmentRetry{Reference: "ref-1", UserID: 7, CourseID: 10}))
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, enrollmentRetryJobType, queue.jobs[0].Type)
	assert.NotEmpty(t, queue.jobs[0].ID)
}

func TestEnrollmentWorkerResumeRequeuesFailedSteps(t *testing.T) {
	journal := newMemoryRetryJournal()
	journal.entries["ref-1"] = models.CheckoutJournal{Reference: "ref-1", UserID: 7}
	journal.addStep(models.JournalStep{ID: "s1", Reference: "ref-1", CourseID: 10, Status: models.StepStatusFailed, Attempts: 1})
	journal.addStep(models.JournalStep{ID: "s2", Reference: "ref-1", CourseID: 11, Status: models.StepStatusFailed, Attempts: 9})
	journal.addStep(models.JournalStep{ID: "s3", Reference: "ref-gone", CourseID: 12, Status: models.StepStatusFailed, Attempts: 1})

	worker := NewEnrollmentWorker(&flakyEnrollments{}, journal, nil, zap.NewNop(), jobs.QueueConfig{MaxRetries: 3})
	queue := &capturingQueue{}
	worker.queue = queue

	scheduled, err := worker.Resume(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, scheduled)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, EnrollmentRetry{Reference: "ref-1", StepID: "s1", UserID: 7, CourseID: 10}, queue.jobs[0].Payload)
}

func TestEnrollmentWorkerRetriesThroughQueue(t *testing.T) {
	enrollments := &flakyEnrollments{failures: 1, done: make(chan models.Enrollment, 1)}
	worker := NewEnrollmentWorker(enrollments, nil, NewMetricsService(), zap.NewNop(), jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: 10 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)
	defer worker.Stop()

	require.NoError(t, worker.Schedule(ctx, EnrollmentRetry{Reference: "ref-1", UserID: 7, CourseID: 10}))

	select {
	case got := <-enrollments.done:
		assert.Equal(t, models.Enrollment{UserID: 7, CourseID: 10}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("enrollment retry did not complete")
	}
}

func TestEnrollmentWorkerExhaustedMarksPartial(t *testing.T) {
	journal := newMemoryRetryJournal()
	worker := NewEnrollmentWorker(&flakyEnrollments{}, journal, NewMetricsService(), zap.NewNop(), jobs.QueueConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	worker.exhausted(ctx, jobs.Job{ID: "j1", Attempt: 4, Payload: EnrollmentRetry{Reference: "ref-9", StepID: "s9", UserID: 7, CourseID: 10}}, errors.New("upstream unavailable"))

	assert.Equal(t, models.JournalStatusPartial, journal.statuses["ref-9"])
}
