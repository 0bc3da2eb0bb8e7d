package transport

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestInvalidResponseError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *InvalidResponseError
		want []string
	}{
		{
			name: "status only",
			err:  &InvalidResponseError{URL: "http://fan.local/api", StatusCode: 500},
			want: []string{"http://fan.local/api", "500"},
		},
		{
			name: "underlying error only",
			err:  &InvalidResponseError{URL: "http://fan.local/api", Err: errors.New("connection refused")},
			want: []string{"http://fan.local/api", "connection refused"},
		},
		{
			name: "bare",
			err:  &InvalidResponseError{URL: "http://fan.local/api"},
			want: []string{"could not reach/parse", "http://fan.local/api"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, want it to contain %q", msg, want)
				}
			}
		})
	}
}

func TestInvalidResponseError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &InvalidResponseError{URL: "http://x", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the wrapped cause")
	}
}

func TestIsInvalidResponse(t *testing.T) {
	if !IsInvalidResponse(&InvalidResponseError{URL: "http://x"}) {
		t.Error("IsInvalidResponse() = false for *InvalidResponseError")
	}

	wrapped := fmt.Errorf("status query: %w", &InvalidResponseError{URL: "http://x"})
	if !IsInvalidResponse(wrapped) {
		t.Error("IsInvalidResponse() = false for wrapped *InvalidResponseError")
	}

	if IsInvalidResponse(errors.New("plain")) {
		t.Error("IsInvalidResponse() = true for unrelated error")
	}

	if IsInvalidResponse(nil) {
		t.Error("IsInvalidResponse(nil) = true")
	}
}
