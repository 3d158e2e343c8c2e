package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursemart-api/internal/service"
	"github.com/noah-isme/coursemart-api/pkg/response"
)

type receiptService interface {
	Open(token string) (*service.ReceiptDownload, error)
}

// ReceiptHandler streams signed receipt downloads.
type ReceiptHandler struct {
	receipts receiptService
}

// NewReceiptHandler constructs ReceiptHandler.
func NewReceiptHandler(receipts receiptService) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts}
}

// Download godoc
// @Summary Download payment receipt
// @Tags Receipts
// @Produce application/pdf
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /receipts/download [get]
func (h *ReceiptHandler) Download(c *gin.Context) {
	download, err := h.receipts.Open(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", download.File, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", download.Filename),
	})
}
