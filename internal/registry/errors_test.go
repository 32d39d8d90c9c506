package registry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/registry-console/internal/httpclient"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantKind    Kind
		wantStatus  int
		wantMessage string
	}{
		{
			name:       "conflict status",
			err:        httpclient.NewHTTPError(409, "http://r/api/services", "409 Conflict", nil),
			wantKind:   KindConflict,
			wantStatus: 409,
		},
		{
			name:        "not found with structured message",
			err:         httpclient.NewHTTPError(404, "http://r/api/services/1", "404 Not Found", []byte(`{"message":"gone"}`)),
			wantKind:    KindNotFound,
			wantStatus:  404,
			wantMessage: "gone",
		},
		{
			name:       "other status is a server error",
			err:        httpclient.NewHTTPError(503, "http://r/api/services", "503", []byte("<html>")),
			wantKind:   KindServer,
			wantStatus: 503,
		},
		{
			name:     "no response is connectivity",
			err:      fmt.Errorf("failed to execute request: %w: %w", httpclient.ErrNoResponse, errors.New("refused")),
			wantKind: KindConnectivity,
		},
		{
			name:     "anything else is unknown",
			err:      errors.New("failed to encode request body"),
			wantKind: KindUnknown,
		},
		{
			name:        "existing error is kept",
			err:         fmt.Errorf("wrapped: %w", NewValidationError("fix it")),
			wantKind:    KindValidation,
			wantMessage: "fix it",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Classify(tt.err)

			require.NotNil(t, got)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantMessage, got.Message)
		})
	}

	assert.Nil(t, Classify(nil))
}

func TestError_UserMessage(t *testing.T) {
	t.Parallel()

	const fallback = "Operation failed, please retry"

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{name: "validation uses remediation", err: NewValidationError("Port must be between 1 and 65535"), want: "Port must be between 1 and 65535"},
		{name: "conflict is mapped even with server message", err: &Error{Kind: KindConflict, Message: "dup"}, want: MessageConflict},
		{name: "not found prefers server message", err: &Error{Kind: KindNotFound, Message: "Service is gone"}, want: "Service is gone"},
		{name: "not found without message is mapped", err: &Error{Kind: KindNotFound}, want: MessageNotFound},
		{name: "connectivity is generic", err: &Error{Kind: KindConnectivity}, want: MessageConnectivity},
		{name: "server error with message", err: &Error{Kind: KindServer, Message: "boom"}, want: "boom"},
		{name: "server error without message uses fallback", err: &Error{Kind: KindServer}, want: fallback},
		{name: "unknown uses fallback", err: &Error{Kind: KindUnknown}, want: fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.UserMessage(fallback))
		})
	}
}

func TestError_Helpers(t *testing.T) {
	t.Parallel()

	cause := errors.New("refused")
	err := fmt.Errorf("op: %w", &Error{Kind: KindConnectivity, Err: cause})

	assert.True(t, IsKind(err, KindConnectivity))
	assert.False(t, IsKind(err, KindServer))
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, AsError(errors.New("plain")))
	assert.Equal(t, "connectivity: refused", AsError(err).Error())
	assert.Equal(t, "validation: bad", NewValidationError("bad").Error())
}
