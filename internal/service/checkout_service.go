package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/dto"
	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/internal/repository"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
	"github.com/noah-isme/coursemart-api/pkg/events"
	"github.com/noah-isme/coursemart-api/pkg/evidence"
	"github.com/noah-isme/coursemart-api/pkg/paystack"
)

const (
	msgEnterEmail         = "Enter your email."
	msgRequiredFields     = "Please fill in all required fields."
	msgPaymentWindowClose = "Payment window closed."
	msgPartialEnrollment  = "Payment saved, but enrollment failed for some courses."
	msgPaymentSuccessful  = "Payment successful!"
	msgManualReview       = "Marked for manual review."
	msgBankSubmitFailed   = "Failed to submit bank transfer."
	msgEvidenceFailed     = "Failed to upload payment evidence."
	msgPaymentNotRecorded = "Payment received, but we could not record it. Contact support with your reference."
	msgReferenceUsed      = "This payment reference has already been used."
	thankYouPath          = "/thank-you"
)

type checkoutCart interface {
	Snapshot(ctx context.Context, userID models.ID) models.CartSnapshot
	Forget(userID models.ID)
}

type checkoutStateStore interface {
	Load(ctx context.Context, userID models.ID) (models.CheckoutState, error)
	Save(ctx context.Context, userID models.ID, state models.CheckoutState) error
	Clear(ctx context.Context, userID models.ID) error
}

type paymentRecorder interface {
	Save(ctx context.Context, payment *models.Payment) error
	UploadEvidence(ctx context.Context, reference string, file repository.EvidenceFile) (string, error)
}

type enrollmentCreator interface {
	Create(ctx context.Context, enrollment models.Enrollment) error
}

type transactionVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, reference string) (*paystack.Transaction, error)
}

type enrollmentScheduler interface {
	Schedule(ctx context.Context, retry EnrollmentRetry) error
}

type eventPublisher interface {
	Publish(ctx context.Context, evt events.Event) error
}

type referenceClaims interface {
	Claim(ctx context.Context, reference string, userID models.ID) (bool, error)
	Release(ctx context.Context, reference string) error
}

type receiptIssuer interface {
	Issue(ctx context.Context, payment models.Payment, items []models.CartItem) (string, error)
}

// CheckoutJournal records checkout progress. A nil journal disables the ledger.
type CheckoutJournal interface {
	Record(ctx context.Context, entry *models.CheckoutJournal, courseIDs []models.ID) ([]models.JournalStep, error)
	UpdateStatus(ctx context.Context, reference string, status models.JournalStatus) error
	CompleteStep(ctx context.Context, stepID string) error
	FailStep(ctx context.Context, stepID string, cause error) error
	Find(ctx context.Context, reference string) (*models.CheckoutJournal, error)
}

// CheckoutConfig holds gateway keys and bank transfer details.
type CheckoutConfig struct {
	PublicKey      string
	Currency       string
	BankName       string
	AccountName    string
	AccountNumber  string
	WhatsAppNumber string
	RedirectDelay  time.Duration
}

// CheckoutDeps groups the optional collaborators of the checkout flow.
type CheckoutDeps struct {
	Verifier   transactionVerifier
	References referenceClaims
	Journal    CheckoutJournal
	Retries    enrollmentScheduler
	Events     eventPublisher
	Receipts   receiptIssuer
	Evidence   *evidence.Validator
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// CheckoutService drives the checkout state machine and the payment/enrollment saga.
type CheckoutService struct {
	cart        checkoutCart
	states      checkoutStateStore
	payments    paymentRecorder
	enrollments enrollmentCreator

	verifier   transactionVerifier
	references referenceClaims
	journal    CheckoutJournal
	retries    enrollmentScheduler
	events     eventPublisher
	receipts   receiptIssuer
	evidence   *evidence.Validator
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	config     CheckoutConfig
	now        func() time.Time

	stateMu sync.Mutex
}

// NewCheckoutService constructs a CheckoutService.
func NewCheckoutService(cart checkoutCart, states checkoutStateStore, payments paymentRecorder, enrollments enrollmentCreator, deps CheckoutDeps, cfg CheckoutConfig) *CheckoutService {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Evidence == nil {
		deps.Evidence = evidence.NewValidator(0)
	}
	if cfg.Currency == "" {
		cfg.Currency = "NGN"
	}
	if cfg.RedirectDelay <= 0 {
		cfg.RedirectDelay = 2 * time.Second
	}
	return &CheckoutService{
		cart:        cart,
		states:      states,
		payments:    payments,
		enrollments: enrollments,
		verifier:    deps.Verifier,
		references:  deps.References,
		journal:     deps.Journal,
		retries:     deps.Retries,
		events:      deps.Events,
		receipts:    deps.Receipts,
		evidence:    deps.Evidence,
		metrics:     deps.Metrics,
		validator:   deps.Validator,
		logger:      deps.Logger,
		config:      cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// View returns the checkout page model for the user.
func (s *CheckoutService) View(ctx context.Context, userID models.ID) (*dto.CheckoutView, error) {
	state, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}
	snapshot := s.cart.Snapshot(ctx, userID)
	view := &dto.CheckoutView{State: state, Cart: snapshot}
	if state.Method == models.CheckoutMethodBank {
		view.Bank = s.bankInstructions(snapshot)
	}
	return view, nil
}

// SelectMethod switches the payment branch.
func (s *CheckoutService) SelectMethod(ctx context.Context, userID models.ID, req dto.SelectMethodRequest) (*dto.CheckoutView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment method")
	}
	if err := s.transition(ctx, userID, func(state *models.CheckoutState) error {
		return state.SelectMethod(req.Method)
	}); err != nil {
		return nil, err
	}
	return s.View(ctx, userID)
}

// InitPaystack returns the widget configuration for the current cart.
func (s *CheckoutService) InitPaystack(ctx context.Context, userID models.ID, req dto.PaystackInitRequest) (*dto.PaystackWidgetConfig, error) {
	email, err := s.requireEmail(req.Email)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.requireCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, userID, func(state *models.CheckoutState) error {
		if state.Method == models.CheckoutMethodPaystack {
			return nil
		}
		return state.SelectMethod(models.CheckoutMethodPaystack)
	}); err != nil {
		return nil, err
	}

	return &dto.PaystackWidgetConfig{
		Key:       s.config.PublicKey,
		Email:     email,
		Amount:    snapshot.AmountMinor,
		Currency:  s.config.Currency,
		Reference: s.newReference(),
		Metadata: dto.PaystackMetadata{CustomFields: []dto.PaystackCustomField{{
			DisplayName:  "Courses",
			VariableName: "courses",
			Value:        courseList(snapshot.Items),
		}}},
	}, nil
}

// CancelPaystack acknowledges a closed gateway window. The state is unchanged.
func (s *CheckoutService) CancelPaystack(ctx context.Context, userID models.ID) string {
	s.metrics.RecordCheckout(string(models.PaymentMethodPaystack), "cancelled")
	s.logger.Debug("paystack window closed", zap.Int64("user_id", int64(userID)))
	return msgPaymentWindowClose
}

// CompletePaystack records a settled gateway payment and enrolls the user in every
// cart course, one at a time and only after the payment record exists.
func (s *CheckoutService) CompletePaystack(ctx context.Context, userID models.ID, req dto.PaystackCompleteRequest) (*dto.CheckoutConfirmation, error) {
	email, err := s.requireEmail(req.Email)
	if err != nil {
		return nil, err
	}
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "payment reference is required")
	}
	snapshot, err := s.requireCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.beginSubmit(ctx, userID, models.CheckoutMethodPaystack); err != nil {
		return nil, err
	}
	settled, recorded := false, false
	defer func() {
		if !settled {
			s.endSubmit(ctx, userID)
		}
	}()

	claimed, err := s.claimReference(ctx, reference, userID)
	if err != nil {
		return nil, err
	}
	if claimed {
		defer func() {
			if !recorded {
				s.releaseReference(ctx, reference)
			}
		}()
	}

	if err := s.verifyTransaction(ctx, reference, snapshot.AmountMinor); err != nil {
		s.metrics.RecordCheckout(string(models.PaymentMethodPaystack), "unverified")
		return nil, err
	}

	payment := &models.Payment{
		Reference: reference,
		Email:     email,
		Amount:    models.MinorAmount(snapshot.AmountMinor),
		Currency:  s.config.Currency,
		Status:    models.PaymentStatusSuccess,
		Method:    models.PaymentMethodPaystack,
		Courses:   courseList(snapshot.Items),
		UserID:    userID,
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		s.logger.Error("save paystack payment failed",
			zap.String("reference", reference),
			zap.Int64("user_id", int64(userID)),
			zap.Error(err))
		s.metrics.RecordCheckout(string(models.PaymentMethodPaystack), "failed")
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, msgPaymentNotRecorded)
	}
	recorded = true
	s.publish(ctx, events.TypePaymentRecorded, reference, userID, payment)

	steps := s.recordJournal(ctx, payment, snapshot.Items, models.JournalStatusRecorded)
	pending := s.enrollAll(ctx, userID, reference, steps)
	failed := make([]models.ID, 0, len(pending))
	for _, retry := range pending {
		failed = append(failed, retry.CourseID)
	}

	confirmation := &dto.CheckoutConfirmation{
		Reference:  reference,
		Status:     dto.CheckoutStatusCompleted,
		Message:    msgPaymentSuccessful,
		RedirectTo: thankYouPath + "?ref=" + url.QueryEscape(reference),
	}
	journalStatus := models.JournalStatusCompleted
	if len(failed) > 0 {
		confirmation.Status = dto.CheckoutStatusPartial
		confirmation.Message = msgPartialEnrollment
		confirmation.FailedCourseIDs = failed
		journalStatus = models.JournalStatusPartial
	}
	s.updateJournal(ctx, reference, journalStatus)
	s.scheduleRetries(ctx, pending)
	confirmation.ReceiptURL = s.issueReceipt(ctx, *payment, snapshot.Items)

	s.publish(ctx, events.TypeCheckoutSettled, reference, userID, confirmation)
	s.metrics.RecordCheckout(string(models.PaymentMethodPaystack), confirmation.Status)
	s.finish(ctx, userID)
	settled = true
	return confirmation, nil
}

// ProceedBank moves the bank branch from instructions to evidence upload.
func (s *CheckoutService) ProceedBank(ctx context.Context, userID models.ID) (*dto.CheckoutView, error) {
	if _, err := s.requireCart(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.transition(ctx, userID, func(state *models.CheckoutState) error {
		return state.ProceedToEvidence()
	}); err != nil {
		return nil, err
	}
	return s.View(ctx, userID)
}

// SubmitBank uploads transfer evidence and records a pending payment for manual review.
// The evidence is validated before anything leaves the process.
func (s *CheckoutService) SubmitBank(ctx context.Context, userID models.ID, submission dto.BankSubmission) (*dto.CheckoutConfirmation, error) {
	fullName := strings.TrimSpace(submission.FullName)
	phone := strings.TrimSpace(submission.PhoneNumber)
	if fullName == "" || phone == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, msgRequiredFields)
	}
	email, err := s.requireEmail(submission.Email)
	if err != nil {
		return nil, err
	}
	contentType, err := s.evidence.Validate(evidence.Upload{
		Filename:     submission.Evidence.Filename,
		DeclaredType: submission.Evidence.ContentType,
		Size:         submission.Evidence.Size,
		Data:         submission.Evidence.Data,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	snapshot, err := s.requireCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.beginSubmit(ctx, userID, models.CheckoutMethodBank); err != nil {
		return nil, err
	}
	settled := false
	defer func() {
		if !settled {
			s.endSubmit(ctx, userID)
		}
	}()

	reference := s.newReference()
	filename, err := s.payments.UploadEvidence(ctx, reference, repository.EvidenceFile{
		Filename:    submission.Evidence.Filename,
		ContentType: contentType,
		Data:        submission.Evidence.Data,
	})
	if err != nil {
		s.logger.Warn("evidence upload failed", zap.String("reference", reference), zap.Error(err))
		s.metrics.RecordCheckout(string(models.PaymentMethodBankTransfer), "failed")
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, msgEvidenceFailed)
	}

	payment := &models.Payment{
		Reference:        reference,
		Email:            email,
		Amount:           models.MinorAmount(snapshot.AmountMinor),
		Currency:         s.config.Currency,
		Status:           models.PaymentStatusPending,
		Method:           models.PaymentMethodBankTransfer,
		Courses:          courseList(snapshot.Items),
		UserID:           userID,
		EvidenceFilename: filename,
		FullName:         fullName,
		PhoneNumber:      phone,
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		s.logger.Warn("save bank transfer failed", zap.String("reference", reference), zap.Error(err))
		s.metrics.RecordCheckout(string(models.PaymentMethodBankTransfer), "failed")
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, msgBankSubmitFailed)
	}
	s.publish(ctx, events.TypePaymentRecorded, reference, userID, payment)
	s.recordJournal(ctx, payment, nil, models.JournalStatusPending)

	message := fmt.Sprintf(transferSubmittedTemplate, reference, formatNaira(snapshot.TotalPrice), payment.Courses, fullName)
	confirmation := &dto.CheckoutConfirmation{
		Reference:       reference,
		Status:          dto.CheckoutStatusPending,
		Message:         msgManualReview,
		RedirectTo:      thankYouPath + "?ref=" + url.QueryEscape(reference) + "&type=bank",
		RedirectAfterMs: s.config.RedirectDelay.Milliseconds(),
		NotifyURL:       whatsAppLink(s.config.WhatsAppNumber, message),
		ReceiptURL:      s.issueReceipt(ctx, *payment, snapshot.Items),
	}

	s.metrics.RecordCheckout(string(models.PaymentMethodBankTransfer), confirmation.Status)
	s.finish(ctx, userID)
	settled = true
	return confirmation, nil
}

// enrollAll enrolls each step in order and returns the retries for those that failed.
func (s *CheckoutService) enrollAll(ctx context.Context, userID models.ID, reference string, steps []models.JournalStep) []EnrollmentRetry {
	var failed []EnrollmentRetry
	for _, step := range steps {
		courseID := models.ID(step.CourseID)
		err := s.enrollments.Create(ctx, models.Enrollment{UserID: userID, CourseID: courseID})
		if err == nil {
			if step.ID != "" && s.journal != nil {
				if jerr := s.journal.CompleteStep(ctx, step.ID); jerr != nil {
					s.logger.Warn("journal complete step failed", zap.String("step_id", step.ID), zap.Error(jerr))
				}
			}
			continue
		}

		failed = append(failed, EnrollmentRetry{Reference: reference, StepID: step.ID, UserID: userID, CourseID: courseID})
		s.logger.Warn("enrollment failed",
			zap.String("reference", reference),
			zap.Int64("user_id", int64(userID)),
			zap.Int64("course_id", int64(courseID)),
			zap.Error(err))
		if step.ID != "" && s.journal != nil {
			if jerr := s.journal.FailStep(ctx, step.ID, err); jerr != nil {
				s.logger.Warn("journal fail step failed", zap.String("step_id", step.ID), zap.Error(jerr))
			}
		}
		s.publish(ctx, events.TypeEnrollmentFailed, reference, userID, map[string]interface{}{
			"course_id": courseID,
			"error":     err.Error(),
		})
	}
	return failed
}

// scheduleRetries hands failed steps to the worker. The journal status must already
// be written, since a retry may settle the checkout before this returns.
func (s *CheckoutService) scheduleRetries(ctx context.Context, retries []EnrollmentRetry) {
	if s.retries == nil {
		return
	}
	for _, retry := range retries {
		if err := s.retries.Schedule(ctx, retry); err != nil {
			s.logger.Error("schedule enrollment retry failed",
				zap.String("reference", retry.Reference),
				zap.Int64("course_id", int64(retry.CourseID)),
				zap.Error(err))
		}
	}
}

// claimReference makes a gateway reference single-use. It reports whether this call
// holds a fresh claim that must be released if nothing gets recorded.
func (s *CheckoutService) claimReference(ctx context.Context, reference string, userID models.ID) (bool, error) {
	claimed := false
	if s.references != nil {
		ok, err := s.references.Claim(ctx, reference, userID)
		if err != nil {
			s.logger.Error("claim payment reference failed", zap.String("reference", reference), zap.Error(err))
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "payment reference check unavailable")
		}
		if !ok {
			return false, s.referenceUsed(reference, userID)
		}
		claimed = true
	}
	if s.journal != nil {
		_, err := s.journal.Find(ctx, reference)
		switch {
		case err == nil:
			return claimed, s.referenceUsed(reference, userID)
		case !errors.Is(err, repository.ErrNotFound):
			s.logger.Warn("journal reference lookup failed", zap.String("reference", reference), zap.Error(err))
		}
	}
	return claimed, nil
}

func (s *CheckoutService) referenceUsed(reference string, userID models.ID) error {
	s.metrics.RecordCheckout(string(models.PaymentMethodPaystack), "duplicate")
	s.logger.Warn("payment reference reused", zap.String("reference", reference), zap.Int64("user_id", int64(userID)))
	return appErrors.Clone(appErrors.ErrConflict, msgReferenceUsed)
}

func (s *CheckoutService) releaseReference(ctx context.Context, reference string) {
	if err := s.references.Release(context.WithoutCancel(ctx), reference); err != nil {
		s.logger.Warn("release payment reference failed", zap.String("reference", reference), zap.Error(err))
	}
}

func (s *CheckoutService) verifyTransaction(ctx context.Context, reference string, expectedAmount int64) error {
	if s.verifier == nil || !s.verifier.Enabled() {
		return nil
	}
	tx, err := s.verifier.Verify(ctx, reference)
	if err != nil {
		s.logger.Warn("paystack verification failed", zap.String("reference", reference), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPaymentUnverified.Code, appErrors.ErrPaymentUnverified.Status, appErrors.ErrPaymentUnverified.Message)
	}
	if !tx.Successful() {
		return appErrors.Clone(appErrors.ErrPaymentUnverified, "payment was not successful")
	}
	if tx.Amount != expectedAmount {
		s.logger.Warn("paystack amount mismatch",
			zap.String("reference", reference),
			zap.Int64("expected", expectedAmount),
			zap.Int64("paid", tx.Amount))
		return appErrors.Clone(appErrors.ErrPaymentUnverified, "paid amount does not match the cart total")
	}
	return nil
}

// recordJournal writes the ledger entry. Without a journal every course still gets
// an in-memory step so enrollment proceeds.
func (s *CheckoutService) recordJournal(ctx context.Context, payment *models.Payment, items []models.CartItem, status models.JournalStatus) []models.JournalStep {
	courseIDs := make([]models.ID, 0, len(items))
	for _, item := range items {
		courseIDs = append(courseIDs, item.CourseID)
	}
	fallback := func() []models.JournalStep {
		steps := make([]models.JournalStep, 0, len(courseIDs))
		for _, id := range courseIDs {
			steps = append(steps, models.JournalStep{Reference: payment.Reference, CourseID: int64(id), Status: models.StepStatusPending})
		}
		return steps
	}
	if s.journal == nil {
		return fallback()
	}

	entry := &models.CheckoutJournal{
		Reference: payment.Reference,
		UserID:    int64(payment.UserID),
		Email:     payment.Email,
		Method:    payment.Method,
		Status:    status,
		Amount:    int64(payment.Amount),
		Currency:  payment.Currency,
		Courses:   payment.Courses,
	}
	steps, err := s.journal.Record(ctx, entry, courseIDs)
	if err != nil {
		s.logger.Warn("journal record failed", zap.String("reference", payment.Reference), zap.Error(err))
		return fallback()
	}
	return steps
}

func (s *CheckoutService) updateJournal(ctx context.Context, reference string, status models.JournalStatus) {
	if s.journal == nil {
		return
	}
	if err := s.journal.UpdateStatus(ctx, reference, status); err != nil {
		s.logger.Warn("journal status update failed", zap.String("reference", reference), zap.Error(err))
	}
}

func (s *CheckoutService) issueReceipt(ctx context.Context, payment models.Payment, items []models.CartItem) string {
	if s.receipts == nil {
		return ""
	}
	link, err := s.receipts.Issue(ctx, payment, items)
	if err != nil {
		s.logger.Warn("receipt generation failed", zap.String("reference", payment.Reference), zap.Error(err))
		return ""
	}
	return link
}

func (s *CheckoutService) publish(ctx context.Context, eventType, reference string, userID models.ID, payload interface{}) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, events.Event{
		Type:       eventType,
		Reference:  reference,
		UserID:     int64(userID),
		OccurredAt: s.now(),
		Payload:    payload,
	})
	if err != nil {
		s.logger.Warn("publish checkout event failed", zap.String("type", eventType), zap.String("reference", reference), zap.Error(err))
	}
}

func (s *CheckoutService) requireEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if err := s.validator.Var(email, "required,email"); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msgEnterEmail)
	}
	return email, nil
}

func (s *CheckoutService) requireCart(ctx context.Context, userID models.ID) (models.CartSnapshot, error) {
	if userID == 0 {
		return models.CartSnapshot{}, appErrors.Clone(appErrors.ErrUnauthorized, "sign in to check out")
	}
	snapshot := s.cart.Snapshot(ctx, userID)
	if len(snapshot.Items) == 0 {
		return snapshot, appErrors.Clone(appErrors.ErrEmptyCart, appErrors.ErrEmptyCart.Message)
	}
	return snapshot, nil
}

func (s *CheckoutService) bankInstructions(snapshot models.CartSnapshot) *dto.BankInstructions {
	return &dto.BankInstructions{
		BankName:      s.config.BankName,
		AccountName:   s.config.AccountName,
		AccountNumber: s.config.AccountNumber,
		Amount:        snapshot.TotalPrice,
		Currency:      s.config.Currency,
	}
}

func (s *CheckoutService) loadState(ctx context.Context, userID models.ID) (models.CheckoutState, error) {
	state, err := s.states.Load(ctx, userID)
	if err != nil {
		s.logger.Warn("load checkout state failed", zap.Int64("user_id", int64(userID)), zap.Error(err))
		return models.CheckoutState{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "checkout state unavailable")
	}
	return state, nil
}

// transition applies step to the stored state under the service lock.
func (s *CheckoutService) transition(ctx context.Context, userID models.ID, step func(*models.CheckoutState) error) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	state, err := s.loadState(ctx, userID)
	if err != nil {
		return err
	}
	if err := step(&state); err != nil {
		return stateError(err)
	}
	if err := s.states.Save(ctx, userID, state); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "checkout state unavailable")
	}
	return nil
}

func (s *CheckoutService) beginSubmit(ctx context.Context, userID models.ID, method models.CheckoutMethod) error {
	return s.transition(ctx, userID, func(state *models.CheckoutState) error {
		return state.BeginSubmit(method)
	})
}

func (s *CheckoutService) endSubmit(ctx context.Context, userID models.ID) {
	if err := s.transition(ctx, userID, func(state *models.CheckoutState) error {
		state.EndSubmit()
		return nil
	}); err != nil {
		s.logger.Warn("reset checkout submission failed", zap.Int64("user_id", int64(userID)), zap.Error(err))
	}
}

// finish clears the flow and forces the next cart read to hit the commerce API.
func (s *CheckoutService) finish(ctx context.Context, userID models.ID) {
	s.stateMu.Lock()
	err := s.states.Clear(ctx, userID)
	s.stateMu.Unlock()
	if err != nil {
		s.logger.Warn("clear checkout state failed", zap.Int64("user_id", int64(userID)), zap.Error(err))
	}
	s.cart.Forget(userID)
}

func (s *CheckoutService) newReference() string {
	return fmt.Sprintf("ref-%d", s.now().UnixMilli())
}

func stateError(err error) error {
	switch {
	case errors.Is(err, models.ErrSubmissionInFlight):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "a checkout submission is already in progress")
	case errors.Is(err, models.ErrInvalidTransition):
		return appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "checkout step not available")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "checkout state unavailable")
	}
}

func courseList(items []models.CartItem) string {
	return strings.Join(models.CourseTitles(items), ", ")
}
