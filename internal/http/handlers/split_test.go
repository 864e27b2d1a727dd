package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/splitcpg/splitcpg-backend/internal/domain/aggregates"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/ctxutil"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/services"
	"github.com/splitcpg/splitcpg-backend/internal/types"
)

type stubSplitService struct {
	joinErr    error
	created    *aggregates.CreateSplitInput
	lastJoin   [2]uuid.UUID
	listFilter services.SplitListFilter
}

func (s *stubSplitService) Create(_ context.Context, in aggregates.CreateSplitInput) (*types.Split, error) {
	s.created = &in
	return &types.Split{ID: uuid.New(), Title: in.Title, Status: types.SplitStatusOpen}, nil
}

func (s *stubSplitService) Get(_ context.Context, id uuid.UUID) (*services.SplitDetail, error) {
	return nil, aggregates.NewReason(aggregates.CodeNotFound, "SplitService.Get", aggregates.ReasonSplitNotFound, "split not found")
}

func (s *stubSplitService) List(_ context.Context, filter services.SplitListFilter) ([]*types.Split, error) {
	s.listFilter = filter
	return []*types.Split{}, nil
}

func (s *stubSplitService) Join(_ context.Context, splitID, companyID uuid.UUID) (*types.Split, error) {
	if s.joinErr != nil {
		return nil, s.joinErr
	}
	s.lastJoin = [2]uuid.UUID{splitID, companyID}
	return &types.Split{ID: splitID, Status: types.SplitStatusOpen}, nil
}

func (s *stubSplitService) Leave(_ context.Context, splitID, _ uuid.UUID) (*types.Split, error) {
	return &types.Split{ID: splitID}, nil
}

func (s *stubSplitService) Cancel(_ context.Context, splitID, _ uuid.UUID) (*types.Split, error) {
	return &types.Split{ID: splitID, Status: types.SplitStatusCancelled}, nil
}

func (s *stubSplitService) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func newSplitRouter(t *testing.T, svc services.SplitService, identity *ctxutil.RequestData) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	h := NewSplitHandler(log, svc)

	router := gin.New()
	if identity != nil {
		router.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), identity))
		})
	}
	router.GET("/api/splits", h.List)
	router.GET("/api/splits/:id", h.Get)
	router.POST("/api/splits", h.Create)
	router.POST("/api/splits/:id/join", h.Join)
	return router
}

func TestSplitHandlerJoin(t *testing.T) {
	stub := &stubSplitService{}
	companyID := uuid.New()
	router := newSplitRouter(t, stub, &ctxutil.RequestData{UserID: uuid.New(), CompanyID: companyID})

	splitID := uuid.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/splits/"+splitID.String()+"/join", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if stub.lastJoin != [2]uuid.UUID{splitID, companyID} {
		t.Errorf("join args = %v", stub.lastJoin)
	}
}

func TestSplitHandlerJoinConflictSurfacesReason(t *testing.T) {
	stub := &stubSplitService{
		joinErr: aggregates.NewReason(aggregates.CodeConflict, "Split.Join", aggregates.ReasonNoSlotsAvailable, "full"),
	}
	router := newSplitRouter(t, stub, &ctxutil.RequestData{UserID: uuid.New(), CompanyID: uuid.New()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/splits/"+uuid.NewString()+"/join", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Error struct {
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Reason != aggregates.ReasonNoSlotsAvailable {
		t.Errorf("reason = %q", body.Error.Reason)
	}
}

func TestSplitHandlerJoinWithoutCompanyProfile(t *testing.T) {
	router := newSplitRouter(t, &stubSplitService{}, &ctxutil.RequestData{UserID: uuid.New()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/splits/"+uuid.NewString()+"/join", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSplitHandlerCreatePassesInputThrough(t *testing.T) {
	stub := &stubSplitService{}
	companyID := uuid.New()
	router := newSplitRouter(t, stub, &ctxutil.RequestData{UserID: uuid.New(), CompanyID: companyID})

	payload := map[string]any{
		"title":     "Warehouse popup",
		"type":      "popup",
		"totalCost": 1200,
		"slots":     4,
	}
	raw, _ := json.Marshal(payload)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/splits", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if stub.created == nil {
		t.Fatal("create not called")
	}
	if stub.created.OrganizerID != companyID {
		t.Errorf("organizer = %v, want requester company", stub.created.OrganizerID)
	}
	if stub.created.TotalCost != 1200 || stub.created.Slots != 4 {
		t.Errorf("input = %+v", stub.created)
	}
}

func TestSplitHandlerListParsesFilters(t *testing.T) {
	stub := &stubSplitService{}
	router := newSplitRouter(t, stub, nil)
	companyID := uuid.New()

	rec := httptest.NewRecorder()
	url := fmt.Sprintf("/api/splits?type=popup&status=open&location=NYC&companyId=%s&limit=10", companyID)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if stub.listFilter.Type != "popup" || stub.listFilter.Status != "open" ||
		stub.listFilter.Location != "NYC" || stub.listFilter.CompanyID != companyID ||
		stub.listFilter.Limit != 10 {
		t.Errorf("filter = %+v", stub.listFilter)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/splits?companyId=not-a-uuid", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad companyId status = %d", rec.Code)
	}
}

func TestSplitHandlerGetNotFound(t *testing.T) {
	router := newSplitRouter(t, &stubSplitService{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/splits/"+uuid.NewString(), nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/splits/not-a-uuid", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", rec.Code)
	}
}
