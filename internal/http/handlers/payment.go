package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/splitcpg/splitcpg-backend/internal/http/response"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/services"
)

const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	log        *logger.Logger
	settlement services.SettlementService
}

func NewPaymentHandler(baseLog *logger.Logger, settlement services.SettlementService) *PaymentHandler {
	return &PaymentHandler{
		log:        baseLog.With("handler", "PaymentHandler"),
		settlement: settlement,
	}
}

type checkoutRequest struct {
	SplitID uuid.UUID `json:"splitId"`
}

func (h *PaymentHandler) Checkout(c *gin.Context) {
	companyID, ok := requesterCompany(c)
	if !ok {
		return
	}
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SplitID == uuid.Nil {
		response.ValidationError(c, "splitId is required")
		return
	}
	session, err := h.settlement.InitiatePayment(c.Request.Context(), req.SplitID, companyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, session)
}

type confirmRequest struct {
	SplitID   uuid.UUID `json:"splitId"`
	SessionID string    `json:"sessionId"`
}

func (h *PaymentHandler) Confirm(c *gin.Context) {
	companyID, ok := requesterCompany(c)
	if !ok {
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SplitID == uuid.Nil {
		response.ValidationError(c, "splitId and sessionId are required")
		return
	}
	split, err := h.settlement.ConfirmPayment(c.Request.Context(), req.SplitID, companyID, req.SessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, split)
}

// Webhook receives processor notifications. It reads the raw body because the
// signature covers the exact bytes on the wire.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.ValidationError(c, "unreadable body")
		return
	}
	if err := h.settlement.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"received": true})
}

func (h *PaymentHandler) History(c *gin.Context) {
	companyID, ok := requesterCompany(c)
	if !ok {
		return
	}
	records, err := h.settlement.PaymentHistory(c.Request.Context(), companyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, records)
}

type connectRequest struct {
	Email string `json:"email"`
}

func (h *PaymentHandler) ConnectAccount(c *gin.Context) {
	companyID, ok := requesterCompany(c)
	if !ok {
		return
	}
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		response.ValidationError(c, "email is required")
		return
	}
	status, err := h.settlement.EnsureConnectAccount(c.Request.Context(), companyID, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, status)
}

func (h *PaymentHandler) OnboardingLink(c *gin.Context) {
	companyID, ok := requesterCompany(c)
	if !ok {
		return
	}
	link, err := h.settlement.OnboardingLink(c.Request.Context(), companyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"url": link})
}

func (h *PaymentHandler) DashboardLink(c *gin.Context) {
	companyID, ok := requesterCompany(c)
	if !ok {
		return
	}
	link, err := h.settlement.DashboardLink(c.Request.Context(), companyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"url": link})
}

func (h *PaymentHandler) ConnectStatus(c *gin.Context) {
	companyID, ok := requesterCompany(c)
	if !ok {
		return
	}
	status, err := h.settlement.RefreshConnectStatus(c.Request.Context(), companyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, status)
}
