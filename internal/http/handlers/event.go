package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/splitcpg/splitcpg-backend/internal/data/repos"
	"github.com/splitcpg/splitcpg-backend/internal/http/response"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/services"
)

type EventHandler struct {
	log    *logger.Logger
	events services.EventService
}

func NewEventHandler(baseLog *logger.Logger, events services.EventService) *EventHandler {
	return &EventHandler{
		log:    baseLog.With("handler", "EventHandler"),
		events: events,
	}
}

func (h *EventHandler) Create(c *gin.Context) {
	if _, ok := requesterUser(c); !ok {
		return
	}
	var req services.CreateEventInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body")
		return
	}
	event, err := h.events.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, event)
}

func (h *EventHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	event, err := h.events.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, event)
}

func (h *EventHandler) List(c *gin.Context) {
	filter := repos.EventFilter{
		Type: c.Query("type"),
		City: c.Query("city"),
	}
	if c.Query("upcoming") == "true" {
		now := time.Now().UTC()
		filter.UpcomingFrom = &now
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			response.ValidationError(c, "invalid limit")
			return
		}
		filter.Limit = limit
	}
	events, err := h.events.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, events)
}
