package models

import "time"

// PaymentStatus tracks a payment through verification.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// PaymentMethod is the checkout branch used.
type PaymentMethod string

const (
	PaymentMethodPaystack     PaymentMethod = "paystack"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// Payment is the record persisted by the commerce API at checkout.
type Payment struct {
	ID               ID            `json:"id,omitempty"`
	Reference        string        `json:"reference"`
	Email            string        `json:"email"`
	Amount           MinorAmount   `json:"amount"`
	Currency         string        `json:"currency"`
	Status           PaymentStatus `json:"status"`
	Method           PaymentMethod `json:"payment_method"`
	Courses          string        `json:"courses"`
	UserID           ID            `json:"user_id,omitempty"`
	EvidenceFilename string        `json:"evidence_filename,omitempty"`
	FullName         string        `json:"full_name,omitempty"`
	PhoneNumber      string        `json:"phone_number,omitempty"`
	CreatedAt        string        `json:"created_at,omitempty"`
	EvidenceURL      string        `json:"evidence_url,omitempty"`
	EvidenceThumbURL string        `json:"evidence_thumb_url,omitempty"`
}

// TransferFilter selects bank transfers for the back-office.
type TransferFilter string

const (
	TransferFilterPending TransferFilter = "pending"
	TransferFilterSuccess TransferFilter = "success"
	TransferFilterFailed  TransferFilter = "failed"
	TransferFilterAll     TransferFilter = "all"
)

// Valid reports whether the filter is recognised.
func (f TransferFilter) Valid() bool {
	switch f {
	case TransferFilterPending, TransferFilterSuccess, TransferFilterFailed, TransferFilterAll:
		return true
	}
	return false
}

// VerifyTransferRequest is the admin decision on a bank transfer.
type VerifyTransferRequest struct {
	Status PaymentStatus `json:"status" validate:"required,oneof=success failed"`
}

// TransferExportFormat selects the rendering of a transfer export.
type TransferExportFormat string

const (
	TransferExportCSV TransferExportFormat = "csv"
	TransferExportPDF TransferExportFormat = "pdf"
)

// StatusUpdate is the payload of the remote payment status call.
type StatusUpdate struct {
	PaymentID  ID            `json:"payment_id"`
	Status     PaymentStatus `json:"status"`
	VerifiedBy ID            `json:"verified_by"`
}

// TransferDecision summarises a verification for the back-office.
type TransferDecision struct {
	Payment   Payment   `json:"payment"`
	Enrolled  bool      `json:"enrolled"`
	NotifyURL string    `json:"notify_url,omitempty"`
	Message   string    `json:"message"`
	DecidedAt time.Time `json:"decided_at"`
}
