package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/splitcpg/splitcpg-backend/internal/domain/aggregates"
)

func render(t *testing.T, err error) (int, errorBody) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	Error(c, err)

	var body envelope
	if jsonErr := json.Unmarshal(rec.Body.Bytes(), &body); jsonErr != nil {
		t.Fatalf("decode body: %v", jsonErr)
	}
	if body.Error == nil {
		t.Fatal("expected error body")
	}
	return rec.Code, *body.Error
}

func TestErrorMapsReasonsToDistinctResponses(t *testing.T) {
	cases := []struct {
		reason     string
		code       aggregates.ErrorCode
		wantStatus int
	}{
		{aggregates.ReasonAlreadyJoined, aggregates.CodeConflict, http.StatusConflict},
		{aggregates.ReasonNoSlotsAvailable, aggregates.CodeConflict, http.StatusConflict},
		{aggregates.ReasonNotOpen, aggregates.CodeConflict, http.StatusConflict},
		{aggregates.ReasonConcurrentModification, aggregates.CodeConflict, http.StatusConflict},
		{aggregates.ReasonNotOrganizer, aggregates.CodePreconditionFailed, http.StatusForbidden},
		{aggregates.ReasonOrganizerCannotLeave, aggregates.CodePreconditionFailed, http.StatusForbidden},
		{aggregates.ReasonOrganizerNotPayable, aggregates.CodePreconditionFailed, http.StatusForbidden},
		{aggregates.ReasonNotParticipant, aggregates.CodeConflict, http.StatusForbidden},
		{aggregates.ReasonSplitNotFound, aggregates.CodeNotFound, http.StatusNotFound},
		{aggregates.ReasonHasPaidParticipants, aggregates.CodeConflict, http.StatusConflict},
		{aggregates.ReasonNotFull, aggregates.CodeConflict, http.StatusConflict},
		{aggregates.ReasonOrganizerNotReady, aggregates.CodePreconditionFailed, http.StatusConflict},
		{aggregates.ReasonPaymentNotVerified, aggregates.CodePreconditionFailed, http.StatusBadRequest},
	}

	seenMessages := map[string]string{}
	for _, tc := range cases {
		t.Run(tc.reason, func(t *testing.T) {
			status, body := render(t, aggregates.NewReason(tc.code, "op", tc.reason, ""))
			if status != tc.wantStatus {
				t.Errorf("status = %d, want %d", status, tc.wantStatus)
			}
			if body.Reason != tc.reason {
				t.Errorf("reason = %q", body.Reason)
			}
			if body.Message == "" {
				t.Error("reason must render a human message")
			}
			if prev, ok := seenMessages[body.Message]; ok {
				t.Errorf("message %q shared by %s and %s", body.Message, prev, tc.reason)
			}
			seenMessages[body.Message] = tc.reason
		})
	}
}

func TestErrorHidesInternalCauses(t *testing.T) {
	status, body := render(t, aggregates.Wrap(aggregates.CodeInternal, "op", errors.New("pq: connection refused")))
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d", status)
	}
	if body.Message != "internal error" {
		t.Errorf("message %q leaks internals", body.Message)
	}
}

func TestErrorPlainErrorsBecomeOpaque500(t *testing.T) {
	status, body := render(t, errors.New("boom"))
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d", status)
	}
	if body.Message != "internal error" || body.Code != string(aggregates.CodeInternal) {
		t.Errorf("body = %+v", body)
	}
}

func TestValidationAndUnauthorizedHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	ValidationError(c, "title is required")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("validation status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	Unauthorized(c, "missing bearer token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthorized status = %d", rec.Code)
	}
}
