package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/dto"
	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/internal/repository"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
	"github.com/noah-isme/coursemart-api/pkg/events"
	"github.com/noah-isme/coursemart-api/pkg/paystack"
)

type callLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

type stubCheckoutCart struct {
	log       *callLog
	snapshot  models.CartSnapshot
	forgotten []models.ID
}

func (c *stubCheckoutCart) Snapshot(ctx context.Context, userID models.ID) models.CartSnapshot {
	c.log.add("cart")
	return c.snapshot
}

func (c *stubCheckoutCart) Forget(userID models.ID) {
	c.forgotten = append(c.forgotten, userID)
}

type memoryCheckoutStates struct {
	mu     sync.Mutex
	states map[models.ID]models.CheckoutState
}

func newMemoryCheckoutStates() *memoryCheckoutStates {
	return &memoryCheckoutStates{states: make(map[models.ID]models.CheckoutState)}
}

func (m *memoryCheckoutStates) Load(ctx context.Context, userID models.ID) (models.CheckoutState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[userID]
	if !ok {
		return models.NewCheckoutState(), nil
	}
	return state, nil
}

func (m *memoryCheckoutStates) Save(ctx context.Context, userID models.ID, state models.CheckoutState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = state
	return nil
}

func (m *memoryCheckoutStates) Clear(ctx context.Context, userID models.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
	return nil
}

type recordingPayments struct {
	log       *callLog
	saved     []models.Payment
	saveErr   error
	uploadErr error

	// onUpload runs inside UploadEvidence before it returns.
	onUpload func()
}

func (p *recordingPayments) Save(ctx context.Context, payment *models.Payment) error {
	p.log.add("save_payment:%s", payment.Status)
	if p.saveErr != nil {
		return p.saveErr
	}
	p.saved = append(p.saved, *payment)
	return nil
}

func (p *recordingPayments) UploadEvidence(ctx context.Context, reference string, file repository.EvidenceFile) (string, error) {
	p.log.add("upload_evidence")
	if p.onUpload != nil {
		p.onUpload()
	}
	if p.uploadErr != nil {
		return "", p.uploadErr
	}
	return "evidence_" + file.Filename, nil
}

type recordingEnrollments struct {
	log  *callLog
	fail map[models.ID]error
}

func (e *recordingEnrollments) Create(ctx context.Context, enrollment models.Enrollment) error {
	e.log.add("enroll:%d", enrollment.CourseID)
	if err, ok := e.fail[enrollment.CourseID]; ok {
		return err
	}
	return nil
}

type stubScheduler struct {
	retries []EnrollmentRetry

	// onSchedule runs as the retry is queued, standing in for a fast worker.
	onSchedule func(EnrollmentRetry)
}

func (s *stubScheduler) Schedule(ctx context.Context, retry EnrollmentRetry) error {
	s.retries = append(s.retries, retry)
	if s.onSchedule != nil {
		s.onSchedule(retry)
	}
	return nil
}

type memoryReferenceClaims struct {
	claims   map[string]models.ID
	released []string
}

func newMemoryReferenceClaims() *memoryReferenceClaims {
	return &memoryReferenceClaims{claims: make(map[string]models.ID)}
}

func (m *memoryReferenceClaims) Claim(ctx context.Context, reference string, userID models.ID) (bool, error) {
	if _, ok := m.claims[reference]; ok {
		return false, nil
	}
	m.claims[reference] = userID
	return true, nil
}

func (m *memoryReferenceClaims) Release(ctx context.Context, reference string) error {
	delete(m.claims, reference)
	m.released = append(m.released, reference)
	return nil
}

type stubPublisher struct {
	events []events.Event
}

func (p *stubPublisher) Publish(ctx context.Context, evt events.Event) error {
	p.events = append(p.events, evt)
	return nil
}

func (p *stubPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, evt := range p.events {
		out = append(out, evt.Type)
	}
	return out
}

type stubJournal struct {
	entries   []models.CheckoutJournal
	statuses  map[string]models.JournalStatus
	completed []string
	failed    []string
}

func newStubJournal() *stubJournal {
	return &stubJournal{statuses: make(map[string]models.JournalStatus)}
}

func (j *stubJournal) Record(ctx context.Context, entry *models.CheckoutJournal, courseIDs []models.ID) ([]models.JournalStep, error) {
	j.entries = append(j.entries, *entry)
	j.statuses[entry.Reference] = entry.Status
	steps := make([]models.JournalStep, 0, len(courseIDs))
	for _, id := range courseIDs {
		steps = append(steps, models.JournalStep{ID: fmt.Sprintf("step-%d", id), Reference: entry.Reference, CourseID: int64(id), Status: models.StepStatusPending})
	}
	return steps, nil
}

func (j *stubJournal) UpdateStatus(ctx context.Context, reference string, status models.JournalStatus) error {
	j.statuses[reference] = status
	return nil
}

func (j *stubJournal) CompleteStep(ctx context.Context, stepID string) error {
	j.completed = append(j.completed, stepID)
	return nil
}

func (j *stubJournal) FailStep(ctx context.Context, stepID string, cause error) error {
	j.failed = append(j.failed, stepID)
	return nil
}

func (j *stubJournal) Find(ctx context.Context, reference string) (*models.CheckoutJournal, error) {
	for i := range j.entries {
		if j.entries[i].Reference == reference {
			entry := j.entries[i]
			return &entry, nil
		}
	}
	return nil, repository.ErrNotFound
}

type stubVerifier struct {
	tx  *paystack.Transaction
	err error
}

func (v *stubVerifier) Enabled() bool { return true }

func (v *stubVerifier) Verify(ctx context.Context, reference string) (*paystack.Transaction, error) {
	return v.tx, v.err
}

type checkoutFixture struct {
	log         *callLog
	cart        *stubCheckoutCart
	states      *memoryCheckoutStates
	payments    *recordingPayments
	enrollments *recordingEnrollments
	scheduler   *stubScheduler
	publisher   *stubPublisher
	journal     *stubJournal
	references  *memoryReferenceClaims
	svc         *CheckoutService
}

func newCheckoutFixture(items ...models.CartItem) *checkoutFixture {
	log := &callLog{}
	total := models.CartTotal(items)
	f := &checkoutFixture{
		log: log,
		cart: &stubCheckoutCart{log: log, snapshot: models.CartSnapshot{
			Items:       items,
			TotalPrice:  total,
			AmountMinor: models.ToMinorUnits(total),
			Currency:    "NGN",
		}},
		states:      newMemoryCheckoutStates(),
		payments:    &recordingPayments{log: log},
		enrollments: &recordingEnrollments{log: log, fail: map[models.ID]error{}},
		scheduler:   &stubScheduler{},
		publisher:   &stubPublisher{},
		journal:     newStubJournal(),
		references:  newMemoryReferenceClaims(),
	}
	f.svc = NewCheckoutService(f.cart, f.states, f.payments, f.enrollments, CheckoutDeps{
		References: f.references,
		Journal:    f.journal,
		Retries:    f.scheduler,
		Events:     f.publisher,
		Logger:     zap.NewNop(),
	}, CheckoutConfig{
		PublicKey:      "pk_test",
		BankName:       "Zenith Bank",
		AccountName:    "AUWEBx Academy",
		AccountNumber:  "1234567890",
		WhatsAppNumber: "+234 801 234 5678",
		RedirectDelay:  3 * time.Second,
	})
	f.svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return f
}

func twoCourseCart() []models.CartItem {
	return []models.CartItem{
		{ID: 1, CourseID: 10, Title: "Go Basics", Price: 5000},
		{ID: 2, CourseID: 11, Title: "Web APIs", Price: 2500},
	}
}

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

func bankSubmission() dto.BankSubmission {
	return dto.BankSubmission{
		Email:       "ada@example.com",
		FullName:    "Ada Lovelace",
		PhoneNumber: "08012345678",
		Evidence:    dto.EvidenceUpload{Filename: "proof.png", ContentType: "image/png", Size: int64(len(pngBytes)), Data: pngBytes},
	}
}

func TestCheckoutEmptyCartBlocked(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.InitPaystack(context.Background(), 7, dto.PaystackInitRequest{Email: "ada@example.com"})
	require.Error(t, err)
	assert.Equal(t, "Your cart is empty.", appErrors.FromError(err).Message)

	_, err = f.svc.CompletePaystack(context.Background(), 7, dto.PaystackCompleteRequest{Email: "ada@example.com", Reference: "ref-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptyCart.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.payments.saved)
}

func TestCheckoutRequiresEmail(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)

	_, err := f.svc.InitPaystack(context.Background(), 7, dto.PaystackInitRequest{Email: "  "})
	require.Error(t, err)
	assert.Equal(t, "Enter your email.", appErrors.FromError(err).Message)
	assert.Empty(t, f.log.all())
}

func TestCheckoutInitPaystackWidgetConfig(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)

	widget, err := f.svc.InitPaystack(context.Background(), 7, dto.PaystackInitRequest{Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "pk_test", widget.Key)
	assert.Equal(t, int64(750000), widget.Amount)
	assert.Equal(t, "NGN", widget.Currency)
	assert.Equal(t, "ref-1700000000000", widget.Reference)
	require.Len(t, widget.Metadata.CustomFields, 1)
	assert.Equal(t, "Go Basics, Web APIs", widget.Metadata.CustomFields[0].Value)

	state, _ := f.states.Load(context.Background(), 7)
	assert.Equal(t, models.CheckoutMethodPaystack, state.Method)
}

func TestCheckoutPaystackSavesPaymentThenEnrollsInOrder(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)
	_, err := f.svc.SelectMethod(context.Background(), 7, dto.SelectMethodRequest{Method: models.CheckoutMethodPaystack})
	require.NoError(t, err)

	res, err := f.svc.CompletePaystack(context.Background(), 7, dto.PaystackCompleteRequest{Email: "ada@example.com", Reference: "ref-42"})
	require.NoError(t, err)

	var remote []string
	for _, entry := range f.log.all() {
		if entry != "cart" {
			remote = append(remote, entry)
		}
	}
	assert.Equal(t, []string{"save_payment:success", "enroll:10", "enroll:11"}, remote)

	require.Len(t, f.payments.saved, 1)
	saved := f.payments.saved[0]
	assert.Equal(t, models.MinorAmount(750000), saved.Amount)
	assert.Equal(t, "Go Basics, Web APIs", saved.Courses)
	assert.Equal(t, models.PaymentMethodPaystack, saved.Method)

	assert.Equal(t, dto.CheckoutStatusCompleted, res.Status)
	assert.Equal(t, "/thank-you?ref=ref-42", res.RedirectTo)
	assert.Equal(t, models.JournalStatusCompleted, f.journal.statuses["ref-42"])
	assert.Equal(t, []string{"step-10", "step-11"}, f.journal.completed)
	assert.Equal(t, []string{events.TypePaymentRecorded, events.TypeCheckoutSettled}, f.publisher.types())
	assert.Equal(t, []models.ID{7}, f.cart.forgotten)

	state, _ := f.states.Load(context.Background(), 7)
	assert.Equal(t, models.CheckoutMethodUnselected, state.Method)
}

func TestCheckoutPaystackPartialEnrollment(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)
	f.enrollments.fail[10] = errors.New("timeout")
	_, err := f.svc.SelectMethod(context.Background(), 7, dto.SelectMethodRequest{Method: models.CheckoutMethodPaystack})
	require.NoError(t, err)

	res, err := f.svc.CompletePaystack(context.Background(), 7, dto.PaystackCompleteRequest{Email: "ada@example.com", Reference: "ref-43"})
	require.NoError(t, err)
	assert.Equal(t, dto.CheckoutStatusPartial, res.Status)
	assert.Equal(t, "Payment saved, but enrollment failed for some courses.", res.Message)
	assert.Equal(t, []models.ID{10}, res.FailedCourseIDs)

	require.Len(t, f.scheduler.retries, 1)
	assert.Equal(t, EnrollmentRetry{Reference: "ref-43", StepID: "step-10", UserID: 7, CourseID: 10}, f.scheduler.retries[0])
	assert.Equal(t, []string{"step-10"}, f.journal.failed)
	assert.Equal(t, []string{"step-11"}, f.journal.completed)
	assert.Equal(t, models.JournalStatusPartial, f.journal.statuses["ref-43"])
	assert.Contains(t, f.publisher.types(), events.TypeEnrollmentFailed)
}

func TestCheckoutPaystackJournalSettledBeforeRetriesRun(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)
	f.enrollments.fail[10] = errors.New("timeout")
	var statusAtSchedule models.JournalStatus
	f.scheduler.onSchedule = func(retry EnrollmentRetry) {
		statusAtSchedule = f.journal.statuses[retry.Reference]
		f.journal.statuses[retry.Reference] = models.JournalStatusCompleted
	}
	_, err := f.svc.SelectMethod(context.Background(), 7, dto.SelectMethodRequest{Method: models.CheckoutMethodPaystack})
	require.NoError(t, err)

	res, err := f.svc.CompletePaystack(context.Background(), 7, dto.PaystackCompleteRequest{Email: "ada@example.com", Reference: "ref-46"})
	require.NoError(t, err)
	assert.Equal(t, dto.CheckoutStatusPartial, res.Status)
	assert.Equal(t, models.JournalStatusPartial, statusAtSchedule)
	assert.Equal(t, models.JournalStatusCompleted, f.journal.statuses["ref-46"])
}

func TestCheckoutPaystackRejectsReusedReference(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)
	complete := func() (*dto.CheckoutConfirmation, error) {
		_, err := f.svc.SelectMethod(context.Background(), 7, dto.SelectMethodRequest{Method: models.CheckoutMethodPaystack})
		require.NoError(t, err)
		return f.svc.CompletePaystack(context.Background(), 7, dto.PaystackCompleteRequest{Email: "ada@example.com", Reference: "ref-1"})
	}

	res, err := complete()
	require.NoError(t, err)
	assert.Equal(t, dto.CheckoutStatusCompleted, res.Status)

	_, err = complete()
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "This payment reference has already been used.", appErrors.FromError(err).Message)

	f.references.claims = map[string]models.ID{}
	_, err = complete()
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	assert.Len(t, f.payments.saved, 1)
	enrolls := 0
	for _, entry := range f.log.all() {
		if strings.HasPrefix(entry, "enroll:") {
			enrolls++
		}
	}
	assert.Equal(t, 2, enrolls)

	state, _ := f.states.Load(context.Background(), 7)
	assert.Equal(t, models.SubmissionIdle, state.Submission)
}

func TestCheckoutPaystackReleasesReferenceWhenNothingRecorded(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)
	f.svc.verifier = &stubVerifier{err: errors.New("gateway timeout")}
	_, err := f.svc.SelectMethod(context.Background(), 7, dto.SelectMethodRequest{Method: models.CheckoutMethodPaystack})
	require.NoError(t, err)

	_, err = f.svc.CompletePaystack(context.Background(), 7, dto.PaystackCompleteRequest{Email: "ada@example.com", Reference: "ref-47"})
	require.Error(t, err)
	assert.Equal(t, []string{"ref-47"}, f.references.released)

	f.svc.verifier = &stubVerifier{tx: &paystack.Transaction{Reference: "ref-47", Status: "success", Amount: 750000}}
	res, err := f.svc.CompletePaystack(context.Background(), 7, dto.PaystackCompleteRequest{Email: "ada@example.com", Reference: "ref-47"})
	require.NoError(t, err)
	assert.Equal(t, dto.CheckoutStatusCompleted, res.Status)
	assert.Equal(t, models.ID(7), f.references.claims["ref-47"])
}

func TestCheckoutPaystackSaveFailureSkipsEnrollment(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)
	f.payments.saveErr = errors.New("connection reset")
	_, err := f.svc.SelectMethod(context.Background(), 7, dto.SelectMethodRequest{Method: models.CheckoutMethodPaystack})
	require.NoError(t, err)

	_, err = f.svc.CompletePaystack(context.Background(), 7, dto.PaystackCompleteRequest{Email: "ada@example.com", Reference: "ref-44"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(err).Code)
	for _, entry := range f.log.all() {
		assert.False(t, strings.HasPrefix(entry, "enroll:"), entry)
	}

	state, _ := f.states.Load(context.Background(), 7)
	assert.Equal(t, models.SubmissionIdle, state.Submission)
	assert.Equal(t, models.CheckoutMethodPaystack, state.Method)
}

func TestCheckoutPaystackVerificationMismatch(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)
	f.svc.verifier = &stubVerifier{tx: &paystack.Transaction{Reference: "ref-45", Status: "success", Amount: 100}}
	_, err := f.svc.SelectMethod(context.Background(), 7, dto.SelectMethodRequest{Method: models.CheckoutMethodPaystack})
	require.NoError(t, err)

	_, err = f.svc.CompletePaystack(context.Background(), 7, dto.PaystackCompleteRequest{Email: "ada@example.com", Reference: "ref-45"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPaymentUnverified.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.payments.saved)
}

func TestCheckoutCancelPaystack(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)
	assert.Equal(t, "Payment window closed.", f.svc.CancelPaystack(context.Background(), 7))
	assert.Empty(t, f.log.all())
}

func TestCheckoutBankInstructionsAndStages(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)

	view, err := f.svc.SelectMethod(context.Background(), 7, dto.SelectMethodRequest{Method: models.CheckoutMethodBank})
	require.NoError(t, err)
	require.NotNil(t, view.Bank)
	assert.Equal(t, "Zenith Bank", view.Bank.BankName)
	assert.Equal(t, 7500.0, view.Bank.Amount)
	assert.Equal(t, models.BankStageInstructions, view.State.BankStage)

	_, err = f.svc.SubmitBank(context.Background(), 7, bankSubmission())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	view, err = f.svc.ProceedBank(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.BankStageEvidenceUpload, view.State.BankStage)
}

func TestCheckoutBankRejectsOversizeEvidenceBeforeNetwork(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)
	submission := bankSubmission()
	submission.Evidence.Size = 6 * 1024 * 1024

	_, err := f.svc.SubmitBank(context.Background(), 7, submission)
	require.Error(t, err)
	assert.Equal(t, "File size must be less than 5MB.", appErrors.FromError(err).Message)
	assert.Empty(t, f.log.all())
}

func TestCheckoutBankRejectsNonImageAndMissingFields(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)

	submission := bankSubmission()
	submission.Evidence.ContentType = "application/pdf"
	_, err := f.svc.SubmitBank(context.Background(), 7, submission)
	require.Error(t, err)
	assert.Equal(t, "Please upload an image file.", appErrors.FromError(err).Message)

	submission = bankSubmission()
	submission.PhoneNumber = ""
	_, err = f.svc.SubmitBank(context.Background(), 7, submission)
	require.Error(t, err)
	assert.Equal(t, "Please fill in all required fields.", appErrors.FromError(err).Message)
	assert.Empty(t, f.log.all())
}

func TestCheckoutBankUploadFailureRecordsNoPayment(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)
	f.payments.uploadErr = errors.New("413 entity too large")
	_, err := f.svc.SelectMethod(context.Background(), 7, dto.SelectMethodRequest{Method: models.CheckoutMethodBank})
	require.NoError(t, err)
	_, err = f.svc.ProceedBank(context.Background(), 7)
	require.NoError(t, err)

	_, err = f.svc.SubmitBank(context.Background(), 7, bankSubmission())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.payments.saved)

	state, _ := f.states.Load(context.Background(), 7)
	assert.Equal(t, models.BankStageEvidenceUpload, state.BankStage)
	assert.Equal(t, models.SubmissionIdle, state.Submission)
}

func TestCheckoutBankSubmitSuccess(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)
	_, err := f.svc.SelectMethod(context.Background(), 7, dto.SelectMethodRequest{Method: models.CheckoutMethodBank})
	require.NoError(t, err)
	_, err = f.svc.ProceedBank(context.Background(), 7)
	require.NoError(t, err)

	res, err := f.svc.SubmitBank(context.Background(), 7, bankSubmission())
	require.NoError(t, err)

	require.Len(t, f.payments.saved, 1)
	saved := f.payments.saved[0]
	assert.Equal(t, models.PaymentStatusPending, saved.Status)
	assert.Equal(t, models.PaymentMethodBankTransfer, saved.Method)
	assert.Equal(t, "evidence_proof.png", saved.EvidenceFilename)
	assert.Equal(t, "Ada Lovelace", saved.FullName)

	assert.Equal(t, "ref-1700000000000", res.Reference)
	assert.Equal(t, dto.CheckoutStatusPending, res.Status)
	assert.Equal(t, "/thank-you?ref=ref-1700000000000&type=bank", res.RedirectTo)
	assert.Equal(t, int64(3000), res.RedirectAfterMs)
	assert.True(t, strings.HasPrefix(res.NotifyURL, "https://wa.me/2348012345678?text="))
	assert.Contains(t, res.NotifyURL, "ref-1700000000000")
	assert.Contains(t, res.NotifyURL, "7%2C500.00")
	assert.NotContains(t, res.NotifyURL, "+")
	assert.Equal(t, models.JournalStatusPending, f.journal.statuses[res.Reference])

	for _, entry := range f.log.all() {
		assert.False(t, strings.HasPrefix(entry, "enroll:"), entry)
	}
}

func TestCheckoutBankDoubleSubmitConflicts(t *testing.T) {
	f := newCheckoutFixture(twoCourseCart()...)
	_, err := f.svc.SelectMethod(context.Background(), 7, dto.SelectMethodRequest{Method: models.CheckoutMethodBank})
	require.NoError(t, err)
	_, err = f.svc.ProceedBank(context.Background(), 7)
	require.NoError(t, err)

	var second error
	f.payments.onUpload = func() {
		f.payments.onUpload = nil
		_, second = f.svc.SubmitBank(context.Background(), 7, bankSubmission())
	}

	_, err = f.svc.SubmitBank(context.Background(), 7, bankSubmission())
	require.NoError(t, err)
	require.Error(t, second)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(second).Code)
	assert.Len(t, f.payments.saved, 1)
}

func TestFormatNaira(t *testing.T) {
	assert.Equal(t, "7,500.00", formatNaira(7500))
	assert.Equal(t, "999.50", formatNaira(999.5))
	assert.Equal(t, "1,234,567.00", formatNaira(1234567))
	assert.Equal(t, "", whatsAppLink("n/a", "hi"))
}
