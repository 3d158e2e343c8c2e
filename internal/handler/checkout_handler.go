package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursemart-api/internal/dto"
	"github.com/noah-isme/coursemart-api/internal/models"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
	"github.com/noah-isme/coursemart-api/pkg/evidence"
	"github.com/noah-isme/coursemart-api/pkg/response"
)

const evidenceField = "evidence"

type checkoutService interface {
	View(ctx context.Context, userID models.ID) (*dto.CheckoutView, error)
	SelectMethod(ctx context.Context, userID models.ID, req dto.SelectMethodRequest) (*dto.CheckoutView, error)
	InitPaystack(ctx context.Context, userID models.ID, req dto.PaystackInitRequest) (*dto.PaystackWidgetConfig, error)
	CancelPaystack(ctx context.Context, userID models.ID) string
	CompletePaystack(ctx context.Context, userID models.ID, req dto.PaystackCompleteRequest) (*dto.CheckoutConfirmation, error)
	ProceedBank(ctx context.Context, userID models.ID) (*dto.CheckoutView, error)
	SubmitBank(ctx context.Context, userID models.ID, submission dto.BankSubmission) (*dto.CheckoutConfirmation, error)
}

// evidenceFormHeadroom covers the text fields and multipart framing around the file.
const evidenceFormHeadroom = 64 << 10

// CheckoutHandler drives the two checkout branches.
type CheckoutHandler struct {
	checkout    checkoutService
	maxEvidence int64
}

// NewCheckoutHandler constructs CheckoutHandler. maxEvidence bounds how much of an
// uploaded file is read into memory.
func NewCheckoutHandler(checkout checkoutService, maxEvidence int64) *CheckoutHandler {
	if maxEvidence <= 0 {
		maxEvidence = 5 << 20
	}
	return &CheckoutHandler{checkout: checkout, maxEvidence: maxEvidence}
}

// View godoc
// @Summary Checkout page
// @Tags Checkout
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /checkout [get]
func (h *CheckoutHandler) View(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	view, err := h.checkout.View(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// SelectMethod godoc
// @Summary Choose payment method
// @Tags Checkout
// @Accept json
// @Produce json
// @Param payload body dto.SelectMethodRequest true "Method"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /checkout/method [put]
func (h *CheckoutHandler) SelectMethod(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.SelectMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid method payload"))
		return
	}
	view, err := h.checkout.SelectMethod(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// InitPaystack godoc
// @Summary Paystack widget configuration
// @Tags Checkout
// @Accept json
// @Produce json
// @Param payload body dto.PaystackInitRequest true "Customer email"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /checkout/paystack/init [post]
func (h *CheckoutHandler) InitPaystack(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.PaystackInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	widget, err := h.checkout.InitPaystack(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, widget, nil)
}

// CompletePaystack godoc
// @Summary Paystack success callback
// @Description Records the payment, then enrolls the user in each purchased course
// @Tags Checkout
// @Accept json
// @Produce json
// @Param payload body dto.PaystackCompleteRequest true "Gateway reference"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /checkout/paystack/complete [post]
func (h *CheckoutHandler) CompletePaystack(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.PaystackCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	confirmation, err := h.checkout.CompletePaystack(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, confirmation, nil, response.Notice(confirmation.Message))
}

// CancelPaystack godoc
// @Summary Paystack window closed
// @Tags Checkout
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /checkout/paystack/cancel [post]
func (h *CheckoutHandler) CancelPaystack(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	notice := h.checkout.CancelPaystack(c.Request.Context(), claims.UserID)
	response.JSON(c, http.StatusOK, gin.H{"cancelled": true}, nil, response.Notice(notice))
}

// ProceedBank godoc
// @Summary Continue to evidence upload
// @Tags Checkout
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /checkout/bank/proceed [post]
func (h *CheckoutHandler) ProceedBank(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	view, err := h.checkout.ProceedBank(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// SubmitBank godoc
// @Summary Submit bank transfer evidence
// @Tags Checkout
// @Accept multipart/form-data
// @Produce json
// @Param email formData string true "Email"
// @Param full_name formData string true "Full name"
// @Param phone_number formData string true "Phone number"
// @Param evidence formData file true "Proof of payment image"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /checkout/bank/submit [post]
func (h *CheckoutHandler) SubmitBank(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxEvidence+evidenceFormHeadroom)
	submission := dto.BankSubmission{
		Email:       c.PostForm("email"),
		FullName:    c.PostForm("full_name"),
		PhoneNumber: c.PostForm("phone_number"),
	}
	upload, err := h.readEvidence(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	submission.Evidence = upload

	confirmation, err := h.checkout.SubmitBank(c.Request.Context(), claims.UserID, submission)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, confirmation, nil, response.Notice(confirmation.Message))
}

// readEvidence returns an empty upload when no file was attached. At most
// maxEvidence+1 bytes are read; Size keeps the declared length.
func (h *CheckoutHandler) readEvidence(c *gin.Context) (dto.EvidenceUpload, error) {
	header, err := c.FormFile(evidenceField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return dto.EvidenceUpload{}, nil
		}
		if bodyTooLarge(err) {
			return dto.EvidenceUpload{}, appErrors.Wrap(err, appErrors.ErrPayloadTooLarge.Code, appErrors.ErrPayloadTooLarge.Status, evidence.ErrTooLarge.Error())
		}
		return dto.EvidenceUpload{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evidence upload")
	}
	file, err := header.Open()
	if err != nil {
		return dto.EvidenceUpload{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evidence upload")
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(file, h.maxEvidence+1))
	if err != nil {
		return dto.EvidenceUpload{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evidence upload")
	}
	return dto.EvidenceUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	}, nil
}

func bodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	// multipart does not always wrap the reader error.
	return strings.Contains(err.Error(), "request body too large")
}
