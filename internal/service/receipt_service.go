package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
	"github.com/noah-isme/coursemart-api/pkg/export"
	"github.com/noah-isme/coursemart-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Generate(reference, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (string, string, time.Time, error)
}

type receiptRenderer interface {
	RenderReceipt(r export.Receipt) ([]byte, error)
}

// ReceiptConfig tunes receipt links.
type ReceiptConfig struct {
	APIPrefix string
	Brand     string
	Currency  string
	Retention time.Duration
}

// ReceiptDownload is an opened receipt ready to stream.
type ReceiptDownload struct {
	File     *os.File
	Filename string
}

// ReceiptService renders payment receipts and hands out signed download links.
type ReceiptService struct {
	storage fileStorage
	signer  downloadSigner
	pdf     receiptRenderer
	logger  *zap.Logger
	cfg     ReceiptConfig
	now     func() time.Time
}

// NewReceiptService constructs a ReceiptService. A nil renderer uses gofpdf.
func NewReceiptService(store fileStorage, signer downloadSigner, pdf receiptRenderer, cfg ReceiptConfig, logger *zap.Logger) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	if cfg.Brand == "" {
		cfg.Brand = "Payment receipt"
	}
	if cfg.Currency == "" {
		cfg.Currency = "NGN"
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	return &ReceiptService{storage: store, signer: signer, pdf: pdf, logger: logger, cfg: cfg, now: time.Now}
}

// Issue renders the receipt for a saved payment and returns its download URL.
func (s *ReceiptService) Issue(ctx context.Context, payment models.Payment, items []models.CartItem) (string, error) {
	if payment.Reference == "" {
		return "", fmt.Errorf("receipt requires a payment reference")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	issuedAt := s.now().UTC()
	lines := make([]export.ReceiptLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, export.ReceiptLine{
			Description: item.Title,
			Amount:      s.cfg.Currency + " " + formatNaira(item.Price.Float64()),
		})
	}
	payload, err := s.pdf.RenderReceipt(export.Receipt{
		Title:     s.cfg.Brand,
		Reference: payment.Reference,
		IssuedAt:  issuedAt.Format("02 Jan 2006 15:04 MST"),
		Customer:  receiptCustomer(payment),
		Method:    receiptMethod(payment.Method),
		Status:    receiptStatus(payment.Status),
		Lines:     lines,
		Total:     s.cfg.Currency + " " + formatNaira(payment.Amount.Major()),
		Footer:    receiptFooter(payment.Status),
	})
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s/%s.pdf", issuedAt.Format("200601"), sanitizeFilename(payment.Reference))
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return "", err
	}
	token, _, err := s.signer.Generate(sanitizeFilename(payment.Reference), relPath)
	if err != nil {
		return "", err
	}
	s.logger.Info("receipt issued", zap.String("reference", payment.Reference), zap.String("path", relPath))
	return fmt.Sprintf("%s/receipts/download?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), url.QueryEscape(token)), nil
}

// Open resolves a signed token to the stored receipt.
func (s *ReceiptService) Open(token string) (*ReceiptDownload, error) {
	if strings.TrimSpace(token) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "token is required")
	}
	reference, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "receipt link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "receipt not found")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		s.logger.Warn("receipt missing", zap.String("reference", reference), zap.Error(err))
		return nil, appErrors.Clone(appErrors.ErrNotFound, "receipt not found")
	}
	return &ReceiptDownload{File: file, Filename: "receipt-" + reference + ".pdf"}, nil
}

// Cleanup drops receipts older than the retention window.
func (s *ReceiptService) Cleanup() ([]string, error) {
	return s.storage.CleanupOlderThan(s.cfg.Retention)
}

func receiptCustomer(p models.Payment) string {
	if p.FullName != "" {
		return fmt.Sprintf("%s <%s>", p.FullName, p.Email)
	}
	return p.Email
}

func receiptMethod(m models.PaymentMethod) string {
	switch m {
	case models.PaymentMethodPaystack:
		return "Card (Paystack)"
	case models.PaymentMethodBankTransfer:
		return "Bank transfer"
	}
	return string(m)
}

func receiptStatus(status models.PaymentStatus) string {
	switch status {
	case models.PaymentStatusSuccess:
		return "Paid"
	case models.PaymentStatusPending:
		return "Awaiting verification"
	case models.PaymentStatusFailed:
		return "Rejected"
	}
	return string(status)
}

func receiptFooter(status models.PaymentStatus) string {
	if status == models.PaymentStatusPending {
		return "Your transfer is being verified. Course access is granted once the payment is confirmed."
	}
	return "Thank you for your purchase."
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", ".", "-")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
