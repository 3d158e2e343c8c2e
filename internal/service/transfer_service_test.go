package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/pkg/commerce"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
	"github.com/noah-isme/coursemart-api/pkg/events"
)

type mockTransferRepo struct {
	payments  []models.Payment
	filters   []models.TransferFilter
	updates   []models.StatusUpdate
	enrolls   []models.BatchEnrollRequest
	updateErr error
	enrollErr error
}

func (m *mockTransferRepo) ListTransfers(ctx context.Context, filter models.TransferFilter) ([]models.Payment, error) {
	m.filters = append(m.filters, filter)
	var out []models.Payment
	for _, p := range m.payments {
		if filter == models.TransferFilterAll || string(p.Status) == string(filter) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockTransferRepo) UpdateStatus(ctx context.Context, update models.StatusUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, update)
	return nil
}

func (m *mockTransferRepo) BatchEnroll(ctx context.Context, req models.BatchEnrollRequest) error {
	m.enrolls = append(m.enrolls, req)
	return m.enrollErr
}

func pendingTransfer() models.Payment {
	return models.Payment{
		ID:               7,
		Reference:        "ref-1700000000000",
		Email:            "ada@example.com",
		Amount:           750000,
		Status:           models.PaymentStatusPending,
		Method:           models.PaymentMethodBankTransfer,
		Courses:          "Go Basics, Web APIs",
		UserID:           42,
		EvidenceFilename: "proof.png",
		FullName:         "Ada Lovelace",
		PhoneNumber:      "+234 801 234 5678",
	}
}

func newTestTransferService(repo *mockTransferRepo, publisher eventPublisher) *TransferService {
	svc := NewTransferService(repo, publisher, nil, zap.NewNop(), TransferConfig{EvidenceBaseURL: "https://commerce.test/api/uploads/payment_evidence/"})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestTransferListDefaultsToPending(t *testing.T) {
	repo := &mockTransferRepo{payments: []models.Payment{pendingTransfer()}}
	svc := newTestTransferService(repo, nil)

	payments, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, []models.TransferFilter{models.TransferFilterPending}, repo.filters)
	assert.Equal(t, "https://commerce.test/api/uploads/payment_evidence/proof.png", payments[0].EvidenceURL)
	assert.Equal(t, "https://commerce.test/api/uploads/payment_evidence/thumb_proof.png", payments[0].EvidenceThumbURL)

	_, err = svc.List(context.Background(), "archived")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTransferVerifyEnrollsAndLinksWhatsApp(t *testing.T) {
	repo := &mockTransferRepo{payments: []models.Payment{pendingTransfer()}}
	publisher := &stubPublisher{}
	svc := newTestTransferService(repo, publisher)

	decision, err := svc.Verify(context.Background(), 1, 7, models.VerifyTransferRequest{Status: models.PaymentStatusSuccess})
	require.NoError(t, err)
	assert.Equal(t, []models.StatusUpdate{{PaymentID: 7, Status: models.PaymentStatusSuccess, VerifiedBy: 1}}, repo.updates)
	assert.Equal(t, []models.BatchEnrollRequest{{UserID: 42, Courses: "Go Basics, Web APIs"}}, repo.enrolls)
	assert.True(t, decision.Enrolled)
	assert.Equal(t, "Payment verified successfully!", decision.Message)
	assert.Equal(t, models.PaymentStatusSuccess, decision.Payment.Status)
	assert.True(t, strings.HasPrefix(decision.NotifyURL, "https://wa.me/2348012345678?text=Hi%20Ada%20Lovelace"))
	assert.Contains(t, decision.NotifyURL, "ref-1700000000000")
	assert.Equal(t, []string{events.TypeTransferDecided}, publisher.types())
}

func TestTransferRejectSkipsEnrollment(t *testing.T) {
	repo := &mockTransferRepo{payments: []models.Payment{pendingTransfer()}}
	svc := newTestTransferService(repo, nil)

	decision, err := svc.Verify(context.Background(), 1, 7, models.VerifyTransferRequest{Status: models.PaymentStatusFailed})
	require.NoError(t, err)
	assert.Empty(t, repo.enrolls)
	assert.Empty(t, decision.NotifyURL)
	assert.Equal(t, "Payment rejected successfully!", decision.Message)
}

func TestTransferVerifyFailures(t *testing.T) {
	repo := &mockTransferRepo{payments: []models.Payment{pendingTransfer()}}
	svc := newTestTransferService(repo, nil)

	_, err := svc.Verify(context.Background(), 1, 7, models.VerifyTransferRequest{Status: models.PaymentStatusPending})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Verify(context.Background(), 1, 99, models.VerifyTransferRequest{Status: models.PaymentStatusSuccess})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	repo.updateErr = &commerce.APIError{Endpoint: "/api/payments/update_status.php", Message: "already verified"}
	_, err = svc.Verify(context.Background(), 1, 7, models.VerifyTransferRequest{Status: models.PaymentStatusSuccess})
	require.Error(t, err)
	assert.Equal(t, "Failed to update payment status: already verified", appErrors.FromError(err).Message)
	assert.Empty(t, repo.enrolls)

	repo.updateErr = errors.New("connection reset")
	_, err = svc.Verify(context.Background(), 1, 7, models.VerifyTransferRequest{Status: models.PaymentStatusSuccess})
	require.Error(t, err)
	assert.Equal(t, "Error updating payment status", appErrors.FromError(err).Message)
}

func TestTransferVerifyKeepsDecisionWhenEnrollFails(t *testing.T) {
	repo := &mockTransferRepo{payments: []models.Payment{pendingTransfer()}, enrollErr: errors.New("timeout")}
	svc := newTestTransferService(repo, nil)

	decision, err := svc.Verify(context.Background(), 1, 7, models.VerifyTransferRequest{Status: models.PaymentStatusSuccess})
	require.NoError(t, err)
	assert.False(t, decision.Enrolled)
	assert.Len(t, repo.updates, 1)
}

func TestTransferExport(t *testing.T) {
	repo := &mockTransferRepo{payments: []models.Payment{pendingTransfer()}}
	svc := newTestTransferService(repo, nil)

	out, err := svc.Export(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", out.ContentType)
	assert.Equal(t, "bank_transfers_all_20260301_093000.csv", out.Filename)
	assert.Contains(t, string(out.Data), "ref-1700000000000,Ada Lovelace,ada@example.com")
	assert.Contains(t, string(out.Data), "\"NGN 7,500.00\"")

	out, err = svc.Export(context.Background(), models.TransferFilterPending, models.TransferExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.True(t, bytes.HasPrefix(out.Data, []byte("%PDF")))

	_, err = svc.Export(context.Background(), "", "xlsx")
	require.Error(t, err)
}
