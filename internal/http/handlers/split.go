package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/splitcpg/splitcpg-backend/internal/domain/aggregates"
	"github.com/splitcpg/splitcpg-backend/internal/http/response"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/ctxutil"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/services"
)

type SplitHandler struct {
	log    *logger.Logger
	splits services.SplitService
}

func NewSplitHandler(baseLog *logger.Logger, splits services.SplitService) *SplitHandler {
	return &SplitHandler{
		log:    baseLog.With("handler", "SplitHandler"),
		splits: splits,
	}
}

// requesterCompany pulls the acting company from the authenticated request.
func requesterCompany(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.CompanyID == uuid.Nil {
		response.ValidationError(c, "a company profile is required")
		return uuid.Nil, false
	}
	return rd.CompanyID, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ValidationError(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

type createSplitRequest struct {
	Title         string     `json:"title"`
	Type          string     `json:"type"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	VendorName    string     `json:"vendorName"`
	VendorDetails string     `json:"vendorDetails"`
	EventDate     *time.Time `json:"eventDate"`
	Deadline      *time.Time `json:"deadline"`
	TotalCost     int64      `json:"totalCost"`
	Slots         int        `json:"slots"`
}

func (h *SplitHandler) Create(c *gin.Context) {
	companyID, ok := requesterCompany(c)
	if !ok {
		return
	}
	var req createSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body")
		return
	}

	split, err := h.splits.Create(c.Request.Context(), aggregates.CreateSplitInput{
		OrganizerID:   companyID,
		Title:         req.Title,
		Type:          req.Type,
		Description:   req.Description,
		Location:      req.Location,
		VendorName:    req.VendorName,
		VendorDetails: req.VendorDetails,
		EventDate:     req.EventDate,
		Deadline:      req.Deadline,
		TotalCost:     req.TotalCost,
		Slots:         req.Slots,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, split)
}

func (h *SplitHandler) List(c *gin.Context) {
	filter := services.SplitListFilter{
		Type:     c.Query("type"),
		Status:   c.Query("status"),
		Location: c.Query("location"),
	}
	if raw := c.Query("companyId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.ValidationError(c, "invalid companyId")
			return
		}
		filter.CompanyID = id
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			response.ValidationError(c, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	splits, err := h.splits.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, splits)
}

func (h *SplitHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	detail, err := h.splits.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, detail)
}

func (h *SplitHandler) Join(c *gin.Context) {
	companyID, ok := requesterCompany(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	split, err := h.splits.Join(c.Request.Context(), id, companyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, split)
}

func (h *SplitHandler) Leave(c *gin.Context) {
	companyID, ok := requesterCompany(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	split, err := h.splits.Leave(c.Request.Context(), id, companyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, split)
}

func (h *SplitHandler) Cancel(c *gin.Context) {
	companyID, ok := requesterCompany(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	split, err := h.splits.Cancel(c.Request.Context(), id, companyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, split)
}

func (h *SplitHandler) Delete(c *gin.Context) {
	companyID, ok := requesterCompany(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.splits.Delete(c.Request.Context(), id, companyID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
