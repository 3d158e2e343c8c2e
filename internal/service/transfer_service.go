package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
	"github.com/noah-isme/coursemart-api/pkg/events"
	"github.com/noah-isme/coursemart-api/pkg/export"
)

const (
	msgTransferVerified   = "Payment verified successfully!"
	msgTransferRejected   = "Payment rejected successfully!"
	msgTransferNotUpdated = "Failed to update payment status"
	msgTransferError      = "Error updating payment status"
)

var transferExportHeaders = []string{"Reference", "Customer", "Email", "Phone", "Amount", "Status", "Courses", "Created At"}

type transferRepository interface {
	ListTransfers(ctx context.Context, filter models.TransferFilter) ([]models.Payment, error)
	UpdateStatus(ctx context.Context, update models.StatusUpdate) error
	BatchEnroll(ctx context.Context, req models.BatchEnrollRequest) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// TransferConfig carries display settings for the transfer desk.
type TransferConfig struct {
	EvidenceBaseURL string
	Currency        string
}

// TransferExport is a rendered transfer report.
type TransferExport struct {
	Filename    string
	ContentType string
	Data        []byte
}

// TransferService backs the admin bank-transfer verification desk.
type TransferService struct {
	repo      transferRepository
	events    eventPublisher
	csv       csvRenderer
	pdf       pdfRenderer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TransferConfig
	now       func() time.Time
}

// NewTransferService constructs a TransferService. events may be nil.
func NewTransferService(repo transferRepository, publisher eventPublisher, validate *validator.Validate, logger *zap.Logger, cfg TransferConfig) *TransferService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = "NGN"
	}
	return &TransferService{
		repo:      repo,
		events:    publisher,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// List returns bank transfers matching the filter. An empty filter means pending.
func (s *TransferService) List(ctx context.Context, filter models.TransferFilter) ([]models.Payment, error) {
	if filter == "" {
		filter = models.TransferFilterPending
	}
	if !filter.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid transfer filter")
	}
	payments, err := s.repo.ListTransfers(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load bank transfers")
	}
	for i := range payments {
		s.decorate(&payments[i])
	}
	return payments, nil
}

// Verify records an admin decision. Verified transfers enroll the customer in
// every purchased course and yield a WhatsApp notification link.
func (s *TransferService) Verify(ctx context.Context, actorID, paymentID models.ID, req models.VerifyTransferRequest) (*models.TransferDecision, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "status must be success or failed")
	}
	if paymentID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid payment id")
	}
	payment, err := s.find(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, models.StatusUpdate{PaymentID: paymentID, Status: req.Status, VerifiedBy: actorID}); err != nil {
		s.logger.Warn("payment status update failed", zap.Int64("payment_id", int64(paymentID)), zap.Error(err))
		return nil, mutationError(err, msgTransferNotUpdated+": ", msgTransferError)
	}
	payment.Status = req.Status

	decision := &models.TransferDecision{Payment: *payment, DecidedAt: s.now().UTC(), Message: msgTransferRejected}
	if req.Status == models.PaymentStatusSuccess {
		decision.Message = msgTransferVerified
		decision.Enrolled = s.enroll(ctx, payment)
		decision.NotifyURL = whatsAppLink(payment.PhoneNumber, fmt.Sprintf(transferVerifiedTemplate, payment.FullName, payment.Reference))
	}

	s.logger.Info("bank transfer decided",
		zap.String("reference", payment.Reference),
		zap.String("status", string(req.Status)),
		zap.Bool("enrolled", decision.Enrolled),
		zap.Int64("actor_id", int64(actorID)))
	if s.events != nil {
		event := events.Event{
			Type:       events.TypeTransferDecided,
			Reference:  payment.Reference,
			UserID:     int64(payment.UserID),
			OccurredAt: decision.DecidedAt,
			Payload:    map[string]interface{}{"status": req.Status, "verified_by": actorID, "enrolled": decision.Enrolled},
		}
		if err := s.events.Publish(ctx, event); err != nil {
			s.logger.Warn("publish transfer decision failed", zap.String("reference", payment.Reference), zap.Error(err))
		}
	}
	return decision, nil
}

// Export renders the filtered transfer list as CSV or PDF.
func (s *TransferService) Export(ctx context.Context, filter models.TransferFilter, format models.TransferExportFormat) (*TransferExport, error) {
	if format == "" {
		format = models.TransferExportCSV
	}
	if format != models.TransferExportCSV && format != models.TransferExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if filter == "" {
		filter = models.TransferFilterAll
	}
	payments, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dataset := s.dataset(payments)
	filename := fmt.Sprintf("bank_transfers_%s_%s.%s", filter, s.now().UTC().Format("20060102_150405"), format)
	var out TransferExport
	switch format {
	case models.TransferExportPDF:
		title := fmt.Sprintf("Bank transfers (%s)", filter)
		out.Data, err = s.pdf.Render(dataset, title)
		out.ContentType = "application/pdf"
	default:
		out.Data, err = s.csv.Render(dataset)
		out.ContentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	out.Filename = filename
	return &out, nil
}

func (s *TransferService) find(ctx context.Context, paymentID models.ID) (*models.Payment, error) {
	payments, err := s.repo.ListTransfers(ctx, models.TransferFilterAll)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load bank transfers")
	}
	for i := range payments {
		if payments[i].ID == paymentID {
			s.decorate(&payments[i])
			return &payments[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
}

// enroll is best-effort: the status change already stands.
func (s *TransferService) enroll(ctx context.Context, payment *models.Payment) bool {
	if payment.UserID <= 0 {
		s.logger.Warn("verified transfer has no user", zap.String("reference", payment.Reference))
		return false
	}
	if err := s.repo.BatchEnroll(ctx, models.BatchEnrollRequest{UserID: payment.UserID, Courses: payment.Courses}); err != nil {
		s.logger.Warn("batch enroll failed",
			zap.String("reference", payment.Reference),
			zap.Int64("user_id", int64(payment.UserID)),
			zap.Error(err))
		return false
	}
	return true
}

func (s *TransferService) decorate(p *models.Payment) {
	if p.EvidenceFilename == "" || s.cfg.EvidenceBaseURL == "" {
		return
	}
	base := strings.TrimRight(s.cfg.EvidenceBaseURL, "/")
	p.EvidenceURL = base + "/" + p.EvidenceFilename
	p.EvidenceThumbURL = base + "/thumb_" + p.EvidenceFilename
}

func (s *TransferService) dataset(payments []models.Payment) export.Dataset {
	rows := make([]map[string]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, map[string]string{
			"Reference":  p.Reference,
			"Customer":   p.FullName,
			"Email":      p.Email,
			"Phone":      p.PhoneNumber,
			"Amount":     s.cfg.Currency + " " + formatNaira(p.Amount.Major()),
			"Status":     string(p.Status),
			"Courses":    p.Courses,
			"Created At": p.CreatedAt,
		})
	}
	return export.Dataset{Headers: transferExportHeaders, Rows: rows}
}
