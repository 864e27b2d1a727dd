package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitcpg/splitcpg-backend/internal/domain/aggregates"
)

type errorBody struct {
	Code    string `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

type envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func OK(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Data: data})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// reasonStatus overrides the per-code default where a rejection maps to a more
// specific HTTP status.
var reasonStatus = map[string]int{
	aggregates.ReasonNotOrganizer:           http.StatusForbidden,
	aggregates.ReasonOrganizerCannotLeave:   http.StatusForbidden,
	aggregates.ReasonOrganizerNotPayable:    http.StatusForbidden,
	aggregates.ReasonSplitNotFound:          http.StatusNotFound,
	aggregates.ReasonNotParticipant:         http.StatusForbidden,
	aggregates.ReasonPaymentNotVerified:     http.StatusBadRequest,
	aggregates.ReasonPaymentInitiationFailed: http.StatusBadGateway,
}

var reasonMessage = map[string]string{
	aggregates.ReasonNotOpen:                "this split is no longer open",
	aggregates.ReasonAlreadyJoined:          "you have already joined this split",
	aggregates.ReasonNoSlotsAvailable:       "all slots are taken",
	aggregates.ReasonNotParticipant:         "you are not a participant in this split",
	aggregates.ReasonOrganizerCannotLeave:   "the organizer cannot leave their own split",
	aggregates.ReasonAlreadyPaid:            "this slot has already been paid",
	aggregates.ReasonNotOrganizer:           "only the organizer can do that",
	aggregates.ReasonHasPaidParticipants:    "a split with paid participants cannot be cancelled",
	aggregates.ReasonNotFull:                "payments open once every slot is filled",
	aggregates.ReasonOrganizerNotPayable:    "the organizer does not pay into their own split",
	aggregates.ReasonSplitNotFound:          "split not found",
	aggregates.ReasonConcurrentModification: "the split changed while processing your request, please retry",
	aggregates.ReasonOrganizerNotReady:      "the organizer has not finished payout onboarding",
	aggregates.ReasonPaymentInitiationFailed: "could not start the payment, please try again",
	aggregates.ReasonPaymentNotVerified:     "the payment could not be verified",
}

func codeStatus(code aggregates.ErrorCode) int {
	switch code {
	case aggregates.CodeValidation:
		return http.StatusBadRequest
	case aggregates.CodeNotFound:
		return http.StatusNotFound
	case aggregates.CodeConflict, aggregates.CodePreconditionFailed:
		return http.StatusConflict
	case aggregates.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error renders any error as the canonical error envelope. Aggregate errors
// keep their code and reason; everything else becomes an opaque 500.
func Error(c *gin.Context, err error) {
	var aggErr *aggregates.Error
	if !errors.As(err, &aggErr) {
		c.JSON(http.StatusInternalServerError, envelope{Error: &errorBody{
			Code:    string(aggregates.CodeInternal),
			Message: "internal error",
		}})
		return
	}

	status := codeStatus(aggErr.Code)
	if s, ok := reasonStatus[aggErr.Reason]; ok {
		status = s
	}
	message := reasonMessage[aggErr.Reason]
	if message == "" {
		// internal failures never leak their cause to clients
		if aggErr.Code == aggregates.CodeInternal {
			message = "internal error"
		} else {
			message = aggErr.Message
		}
	}
	c.JSON(status, envelope{Error: &errorBody{
		Code:    string(aggErr.Code),
		Reason:  aggErr.Reason,
		Message: message,
	}})
}

func ValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{Error: &errorBody{
		Code:    string(aggregates.CodeValidation),
		Message: message,
	}})
}

func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, envelope{Error: &errorBody{
		Code:    "unauthorized",
		Message: message,
	}})
}
