package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/internal/service"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
	"github.com/noah-isme/coursemart-api/pkg/response"
)

type transferService interface {
	List(ctx context.Context, filter models.TransferFilter) ([]models.Payment, error)
	Verify(ctx context.Context, actorID, paymentID models.ID, req models.VerifyTransferRequest) (*models.TransferDecision, error)
	Export(ctx context.Context, filter models.TransferFilter, format models.TransferExportFormat) (*service.TransferExport, error)
}

// TransferHandler exposes the bank transfer verification desk.
type TransferHandler struct {
	transfers transferService
}

// NewTransferHandler constructs TransferHandler.
func NewTransferHandler(transfers transferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// List godoc
// @Summary List bank transfers
// @Tags Transfers
// @Produce json
// @Param filter query string false "pending|success|failed|all" default(pending)
// @Success 200 {object} response.Envelope
// @Router /admin/transfers [get]
func (h *TransferHandler) List(c *gin.Context) {
	filter := models.TransferFilter(strings.ToLower(c.DefaultQuery("filter", string(models.TransferFilterPending))))
	payments, err := h.transfers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// Verify godoc
// @Summary Verify or reject a transfer
// @Tags Transfers
// @Accept json
// @Produce json
// @Param id path int true "Payment ID"
// @Param payload body models.VerifyTransferRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/transfers/{id}/verify [post]
func (h *TransferHandler) Verify(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.VerifyTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}
	decision, err := h.transfers.Verify(c.Request.Context(), claims.UserID, paymentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decision, nil, response.Notice(decision.Message))
}

// Export godoc
// @Summary Export bank transfers
// @Tags Transfers
// @Produce text/csv
// @Produce application/pdf
// @Param filter query string false "pending|success|failed|all" default(all)
// @Param format query string false "csv|pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/transfers/export [get]
func (h *TransferHandler) Export(c *gin.Context) {
	filter := models.TransferFilter(strings.ToLower(c.Query("filter")))
	format := models.TransferExportFormat(strings.ToLower(c.Query("format")))
	out, err := h.transfers.Export(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, out.Filename, out.ContentType, out.Data)
}
