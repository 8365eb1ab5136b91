package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverMessageErr struct{ msg string }

func (e serverMessageErr) Error() string       { return "backend: " + e.msg }
func (e serverMessageErr) UserMessage() string { return e.msg }

func TestNotificationFromError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"server message kept", serverMessageErr{"PAN already registered"}, "PAN already registered"},
		{"wrapped server message kept", fmt.Errorf("verify pan: %w", serverMessageErr{"Invalid PAN"}), "Invalid PAN"},
		{"domain error message", NewDomainError("INVALID_OTP", "OTP must be 4 digits"), "OTP must be 4 digits"},
		{"transport failure is generic", errors.New("dial tcp: connection refused"), GenericFailureMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NotificationFromError(tt.err)
			require.NotNil(t, n)
			assert.Equal(t, NotificationFailure, n.Kind)
			assert.Equal(t, tt.wantMsg, n.Message)
		})
	}

	assert.Nil(t, NotificationFromError(nil))
}

func TestFailure_EmptyMessageFallsBack(t *testing.T) {
	assert.Equal(t, GenericFailureMessage, Failure("").Message)
	assert.Equal(t, "Saved", Success("Saved").Message)
}

func TestDomainError_IsMatchesCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewDomainError("NOT_FOUND", "session not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
}
