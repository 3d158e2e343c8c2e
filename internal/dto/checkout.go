package dto

import "github.com/noah-isme/coursemart-api/internal/models"

// Checkout outcome statuses.
const (
	CheckoutStatusCompleted = "completed"
	CheckoutStatusPartial   = "partial"
	CheckoutStatusPending   = "pending"
)

// SelectMethodRequest switches the payment branch.
type SelectMethodRequest struct {
	Method models.CheckoutMethod `json:"method" validate:"oneof=paystack bank ''"`
}

// PaystackInitRequest starts a gateway checkout for the signed-in user.
type PaystackInitRequest struct {
	Email string `json:"email"`
}

// PaystackCompleteRequest carries the gateway success callback.
type PaystackCompleteRequest struct {
	Email     string `json:"email"`
	Reference string `json:"reference" validate:"required"`
}

// PaystackCustomField is one metadata row shown on the gateway receipt.
type PaystackCustomField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

// PaystackMetadata is forwarded untouched to the gateway widget.
type PaystackMetadata struct {
	CustomFields []PaystackCustomField `json:"custom_fields"`
}

// PaystackWidgetConfig is everything the storefront needs to open the gateway widget.
type PaystackWidgetConfig struct {
	Key       string           `json:"key"`
	Email     string           `json:"email"`
	Amount    int64            `json:"amount"`
	Currency  string           `json:"currency"`
	Reference string           `json:"ref"`
	Metadata  PaystackMetadata `json:"metadata"`
}

// BankInstructions are the static transfer details shown before evidence upload.
type BankInstructions struct {
	BankName      string  `json:"bank_name"`
	AccountName   string  `json:"account_name"`
	AccountNumber string  `json:"account_number"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
}

// BankSubmission is the evidence form of the bank transfer branch.
type BankSubmission struct {
	Email       string
	FullName    string
	PhoneNumber string
	Evidence    EvidenceUpload
}

// EvidenceUpload is the proof-of-payment file as received from the storefront.
type EvidenceUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// CheckoutView is the checkout page model.
type CheckoutView struct {
	State models.CheckoutState `json:"state"`
	Cart  models.CartSnapshot  `json:"cart"`
	Bank  *BankInstructions    `json:"bank,omitempty"`
}

// CheckoutConfirmation is returned when a submission finishes.
type CheckoutConfirmation struct {
	Reference       string      `json:"reference"`
	Status          string      `json:"status"`
	Message         string      `json:"message,omitempty"`
	RedirectTo      string      `json:"redirect_to"`
	RedirectAfterMs int64       `json:"redirect_after_ms,omitempty"`
	NotifyURL       string      `json:"notify_url,omitempty"`
	ReceiptURL      string      `json:"receipt_url,omitempty"`
	FailedCourseIDs []models.ID `json:"failed_course_ids,omitempty"`
}
