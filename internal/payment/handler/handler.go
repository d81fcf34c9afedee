package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ms-gifting/internal/logger"
	"ms-gifting/internal/payment"
	"ms-gifting/internal/utils"
)

// Handler exposes the payment redirect collaborator over HTTP.
type Handler struct {
	table  *payment.LinkTable
	qr     *payment.QRGenerator
	logger *logger.Logger
}

func NewHandler(table *payment.LinkTable, qr *payment.QRGenerator, log *logger.Logger) *Handler {
	return &Handler{table: table, qr: qr, logger: log}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/payment")
	{
		api.GET("/tiers", h.ListTiers)
		api.GET("/link/:amount", h.ResolveLink)
		api.GET("/qr/:amount", h.RenderQR)
	}
}

// ListTiers returns the configured amount tiers.
func (h *Handler) ListTiers(c *gin.Context) {
	c.JSON(http.StatusOK, utils.SuccessResponse("Payment tiers", h.table.Tiers()))
}

// ResolveLink maps an amount tier to its payment URL. Unknown amounts fall
// back to the default tier's link.
func (h *Handler) ResolveLink(c *gin.Context) {
	amount, err := strconv.Atoi(c.Param("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid amount", err.Error()))
		return
	}

	url := h.table.ResolveLink(amount)
	h.logger.Info("PAYMENT", "Resolved payment link for amount "+c.Param("amount"))
	c.JSON(http.StatusOK, utils.SuccessResponse("Payment link", gin.H{"amount": amount, "url": url}))
}

// RenderQR streams the PNG QR code of the amount tier's payment link.
func (h *Handler) RenderQR(c *gin.Context) {
	amount, err := strconv.Atoi(c.Param("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid amount", err.Error()))
		return
	}

	png, err := h.qr.GenerateLinkQR(amount)
	if err != nil {
		h.logger.Error("PAYMENT", "QR generation failed: "+err.Error())
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("QR generation failed", err.Error()))
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
