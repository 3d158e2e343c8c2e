package models

import (
	"errors"
	"time"
)

// CheckoutMethod is the payment branch chosen at checkout.
type CheckoutMethod string

const (
	CheckoutMethodUnselected CheckoutMethod = ""
	CheckoutMethodPaystack   CheckoutMethod = "paystack"
	CheckoutMethodBank       CheckoutMethod = "bank"
)

// BankStage is the step within the bank transfer branch.
type BankStage string

const (
	BankStageInstructions   BankStage = "instructions"
	BankStageEvidenceUpload BankStage = "evidence_upload"
)

// SubmissionState guards against overlapping submissions.
type SubmissionState string

const (
	SubmissionIdle       SubmissionState = "idle"
	SubmissionSubmitting SubmissionState = "submitting"
)

var (
	// ErrInvalidTransition is returned for a step that is not reachable from the current state.
	ErrInvalidTransition = errors.New("checkout step not allowed from current state")
	// ErrSubmissionInFlight is returned when a submission is already running.
	ErrSubmissionInFlight = errors.New("checkout submission already in progress")
)

// CheckoutState is the per-user checkout flow.
type CheckoutState struct {
	Method     CheckoutMethod  `json:"method"`
	BankStage  BankStage       `json:"bank_stage"`
	Submission SubmissionState `json:"submission"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewCheckoutState returns the entry state.
func NewCheckoutState() CheckoutState {
	return CheckoutState{
		Method:     CheckoutMethodUnselected,
		BankStage:  BankStageInstructions,
		Submission: SubmissionIdle,
		UpdatedAt:  time.Now().UTC(),
	}
}

// SelectMethod switches the payment branch. Switching to bank restarts at the instructions.
func (s *CheckoutState) SelectMethod(method CheckoutMethod) error {
	if s.Submission == SubmissionSubmitting {
		return ErrSubmissionInFlight
	}
	switch method {
	case CheckoutMethodPaystack, CheckoutMethodBank, CheckoutMethodUnselected:
	default:
		return ErrInvalidTransition
	}
	if s.Method != method {
		s.BankStage = BankStageInstructions
	}
	s.Method = method
	s.touch()
	return nil
}

// ProceedToEvidence moves the bank branch from instructions to evidence upload.
func (s *CheckoutState) ProceedToEvidence() error {
	if s.Method != CheckoutMethodBank {
		return ErrInvalidTransition
	}
	if s.Submission == SubmissionSubmitting {
		return ErrSubmissionInFlight
	}
	s.BankStage = BankStageEvidenceUpload
	s.touch()
	return nil
}

// BeginSubmit marks the flow as submitting for the given branch.
func (s *CheckoutState) BeginSubmit(method CheckoutMethod) error {
	if s.Submission == SubmissionSubmitting {
		return ErrSubmissionInFlight
	}
	if s.Method != method {
		return ErrInvalidTransition
	}
	if method == CheckoutMethodBank && s.BankStage != BankStageEvidenceUpload {
		return ErrInvalidTransition
	}
	s.Submission = SubmissionSubmitting
	s.touch()
	return nil
}

// EndSubmit returns the flow to idle, keeping the current step.
func (s *CheckoutState) EndSubmit() {
	s.Submission = SubmissionIdle
	s.touch()
}

func (s *CheckoutState) touch() {
	s.UpdatedAt = time.Now().UTC()
}
