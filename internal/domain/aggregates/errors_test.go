package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		want string
	}{
		{
			"op and message",
			&Error{Code: CodeConflict, Op: "Split.Join", Message: "no slots available"},
			"Split.Join: no slots available (conflict)",
		},
		{
			"reason fallback",
			&Error{Code: CodeConflict, Op: "Split.Join", Reason: ReasonAlreadyJoined},
			"Split.Join: already_joined (conflict)",
		},
		{
			"bare code",
			&Error{Code: CodeInternal},
			"internal",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReasonAndCodeExtraction(t *testing.T) {
	err := NewReason(CodeConflict, "Split.Join", ReasonNoSlotsAvailable, "full")

	if !IsCode(err, CodeConflict) {
		t.Error("IsCode failed")
	}
	if IsCode(err, CodeValidation) {
		t.Error("IsCode matched wrong code")
	}
	if !IsReason(err, ReasonNoSlotsAvailable) {
		t.Error("IsReason failed")
	}
	if ReasonOf(err) != ReasonNoSlotsAvailable {
		t.Errorf("ReasonOf = %q", ReasonOf(err))
	}
	if CodeOf(err) != CodeConflict {
		t.Errorf("CodeOf = %q", CodeOf(err))
	}
}

func TestExtractionThroughWrapping(t *testing.T) {
	inner := NewReason(CodePreconditionFailed, "Split.Leave", ReasonOrganizerCannotLeave, "nope")
	wrapped := fmt.Errorf("handler: %w", inner)

	if !IsReason(wrapped, ReasonOrganizerCannotLeave) {
		t.Error("reason lost through fmt.Errorf wrapping")
	}
	if CodeOf(wrapped) != CodePreconditionFailed {
		t.Errorf("CodeOf = %q", CodeOf(wrapped))
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeInternal, "Split.Create", cause)

	if !errors.Is(err, cause) {
		t.Error("cause not unwrappable")
	}
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Error("Wrap(nil) must be nil")
	}
}

func TestNonAggregateErrors(t *testing.T) {
	plain := errors.New("boom")
	if IsCode(plain, CodeInternal) {
		t.Error("plain error must not match any code")
	}
	if ReasonOf(plain) != "" || CodeOf(plain) != "" {
		t.Error("plain error must extract empty values")
	}
}
