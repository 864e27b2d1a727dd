package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/splitcpg/splitcpg-backend/internal/http/response"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/ctxutil"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/services"
)

type CompanyHandler struct {
	log       *logger.Logger
	companies services.CompanyService
}

func NewCompanyHandler(baseLog *logger.Logger, companies services.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		log:       baseLog.With("handler", "CompanyHandler"),
		companies: companies,
	}
}

func requesterUser(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.Unauthorized(c, "authentication required")
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func (h *CompanyHandler) Create(c *gin.Context) {
	userID, ok := requesterUser(c)
	if !ok {
		return
	}
	var req services.CreateCompanyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body")
		return
	}
	company, err := h.companies.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, company)
}

func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	company, err := h.companies.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, company)
}

func (h *CompanyHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.ValidationError(c, "invalid limit")
			return
		}
		limit = parsed
	}
	companies, err := h.companies.List(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, companies)
}

func (h *CompanyHandler) Update(c *gin.Context) {
	userID, ok := requesterUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.UpdateCompanyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body")
		return
	}
	company, err := h.companies.Update(c.Request.Context(), id, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, company)
}
