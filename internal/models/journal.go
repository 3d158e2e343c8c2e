package models

import "time"

// JournalStatus tracks a checkout through payment and enrollment steps.
type JournalStatus string

const (
	JournalStatusRecorded  JournalStatus = "RECORDED"
	JournalStatusCompleted JournalStatus = "COMPLETED"
	JournalStatusPartial   JournalStatus = "PARTIAL"
	JournalStatusPending   JournalStatus = "PENDING_VERIFICATION"
)

// StepStatus tracks a single enrollment step.
type StepStatus string

const (
	StepStatusPending StepStatus = "PENDING"
	StepStatusDone    StepStatus = "DONE"
	StepStatusFailed  StepStatus = "FAILED"
)

// CheckoutJournal is the local ledger entry for a checkout.
type CheckoutJournal struct {
	Reference string        `db:"reference" json:"reference"`
	UserID    int64         `db:"user_id" json:"user_id"`
	Email     string        `db:"email" json:"email"`
	Method    PaymentMethod `db:"method" json:"method"`
	Status    JournalStatus `db:"status" json:"status"`
	Amount    int64         `db:"amount" json:"amount"`
	Currency  string        `db:"currency" json:"currency"`
	Courses   string        `db:"courses" json:"courses"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// JournalStep records one enrollment attempt series for a checkout.
type JournalStep struct {
	ID        string     `db:"id" json:"id"`
	Reference string     `db:"reference" json:"reference"`
	CourseID  int64      `db:"course_id" json:"course_id"`
	Status    StepStatus `db:"status" json:"status"`
	Attempts  int        `db:"attempts" json:"attempts"`
	LastError *string    `db:"last_error" json:"last_error,omitempty"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
