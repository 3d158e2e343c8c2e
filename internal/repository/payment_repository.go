package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/pkg/commerce"
)

const (
	paymentSavePath     = "/api/payments/save_payment.php"
	evidenceUploadPath  = "/api/payments/upload_evidence.php"
	transferListPath    = "/api/payments/get_bank_transfers.php"
	paymentStatusPath   = "/api/payments/update_status.php"
	batchEnrollPath     = "/api/payments/batch_enroll.php"
	evidenceUploadField = "evidence"
)

// EvidenceFile is an image proving a bank transfer.
type EvidenceFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PaymentRepository records payments and bank transfer evidence on the commerce API.
type PaymentRepository struct {
	client *commerce.Client
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(client *commerce.Client) *PaymentRepository {
	return &PaymentRepository{client: client}
}

// Save persists a payment record.
func (r *PaymentRepository) Save(ctx context.Context, payment *models.Payment) error {
	var ack commerce.Status
	if err := r.client.PostJSON(ctx, paymentSavePath, payment, &ack); err != nil {
		return fmt.Errorf("save payment %s: %w", payment.Reference, err)
	}
	if err := commerce.Check(paymentSavePath, ack); err != nil {
		return fmt.Errorf("save payment %s: %w", payment.Reference, err)
	}
	return nil
}

// UploadEvidence uploads the transfer evidence and returns the server-assigned filename.
func (r *PaymentRepository) UploadEvidence(ctx context.Context, reference string, file EvidenceFile) (string, error) {
	var payload struct {
		commerce.Status
		Filename string `json:"filename"`
	}
	err := r.client.PostMultipart(ctx, evidenceUploadPath, commerce.File{
		Field:       evidenceUploadField,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Data:        file.Data,
	}, map[string]string{"reference": reference}, &payload)
	if err != nil {
		return "", fmt.Errorf("upload evidence: %w", err)
	}
	if err := commerce.Check(evidenceUploadPath, payload.Status); err != nil {
		return "", fmt.Errorf("upload evidence: %w", err)
	}
	if payload.Filename == "" {
		return "", fmt.Errorf("upload evidence: %w", &commerce.APIError{Endpoint: evidenceUploadPath, Message: "no filename returned"})
	}
	return payload.Filename, nil
}

// ListTransfers returns bank transfers matching the filter.
func (r *PaymentRepository) ListTransfers(ctx context.Context, filter models.TransferFilter) ([]models.Payment, error) {
	var payload struct {
		commerce.Status
		Payments []models.Payment `json:"payments"`
	}
	if err := r.client.GetJSON(ctx, transferListPath, url.Values{"filter": {string(filter)}}, &payload); err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	if payload.Reported() {
		if err := commerce.Check(transferListPath, payload.Status); err != nil {
			return nil, fmt.Errorf("list transfers: %w", err)
		}
	}
	if payload.Payments == nil {
		return []models.Payment{}, nil
	}
	return payload.Payments, nil
}

// UpdateStatus records an admin decision on a payment.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, update models.StatusUpdate) error {
	var ack commerce.Status
	if err := r.client.PostJSON(ctx, paymentStatusPath, update, &ack); err != nil {
		return fmt.Errorf("update payment %d: %w", update.PaymentID, err)
	}
	if err := commerce.Check(paymentStatusPath, ack); err != nil {
		return fmt.Errorf("update payment %d: %w", update.PaymentID, err)
	}
	return nil
}

// BatchEnroll enrolls a user in every course of a verified transfer.
func (r *PaymentRepository) BatchEnroll(ctx context.Context, req models.BatchEnrollRequest) error {
	var ack commerce.Status
	if err := r.client.PostJSON(ctx, batchEnrollPath, req, &ack); err != nil {
		return fmt.Errorf("batch enroll user %d: %w", req.UserID, err)
	}
	if err := commerce.Check(batchEnrollPath, ack); err != nil {
		return fmt.Errorf("batch enroll user %d: %w", req.UserID, err)
	}
	return nil
}
