package openfan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wayopenfan/wayopenfan/internal/discovery"
	"github.com/wayopenfan/wayopenfan/internal/transport"
)

func testDevice(baseURL string) discovery.Device {
	return discovery.Device{Name: "Desk", BaseURL: baseURL}
}

func TestStatus_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v0/fan/status" {
			t.Errorf("request path = %s, want /api/v0/fan/status", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok","rpm":1200,"pwm_percent":45}`))
	}))
	defer server.Close()

	client := NewClient()
	status, err := client.Status(context.Background(), testDevice(server.URL))
	if err != nil {
		t.Fatalf("Status() error = %v, want nil", err)
	}

	if status.State != "ok" {
		t.Errorf("status.State = %q, want ok", status.State)
	}
	if status.RPM != 1200 {
		t.Errorf("status.RPM = %d, want 1200", status.RPM)
	}
	if status.PWMPercent != 45 {
		t.Errorf("status.PWMPercent = %d, want 45", status.PWMPercent)
	}
}

func TestStatus_DeviceReportsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"overheated","rpm":0,"pwm_percent":0}`))
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.Status(context.Background(), testDevice(server.URL))

	if err == nil {
		t.Fatal("Status() error = nil, want APIError")
	}
	if !IsAPIError(err) {
		t.Fatalf("Status() error = %T, want *APIError", err)
	}

	var apiErr *APIError
	errors.As(err, &apiErr)
	if apiErr.Message != "overheated" {
		t.Errorf("APIError.Message = %q, want the reported state %q", apiErr.Message, "overheated")
	}
}

func TestStatus_Non200IsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"ok","rpm":1200,"pwm_percent":45}`))
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.Status(context.Background(), testDevice(server.URL))

	if err == nil {
		t.Fatal("Status() error = nil, want InvalidResponseError")
	}
	if !transport.IsInvalidResponse(err) {
		t.Errorf("Status() error = %T, want *transport.InvalidResponseError", err)
	}
	if IsAPIError(err) {
		t.Error("non-200 response misclassified as an application failure")
	}
}

func TestSetSpeed_Success(t *testing.T) {
	var gotPath, gotValue string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotValue = r.URL.Query().Get("value")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient()
	if err := client.SetSpeed(context.Background(), testDevice(server.URL), 75); err != nil {
		t.Fatalf("SetSpeed() error = %v, want nil", err)
	}

	if gotPath != "/api/v0/fan/0/set" {
		t.Errorf("request path = %s, want /api/v0/fan/0/set", gotPath)
	}
	if gotValue != "75" {
		t.Errorf("value query parameter = %s, want 75", gotValue)
	}
}

func TestSetSpeed_DeviceReportsFailureWithMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"fan stalled"}`))
	}))
	defer server.Close()

	client := NewClient()
	err := client.SetSpeed(context.Background(), testDevice(server.URL), 50)

	if err == nil {
		t.Fatal("SetSpeed() error = nil, want APIError")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("SetSpeed() error = %T, want *APIError", err)
	}
	if apiErr.Message != "fan stalled" {
		t.Errorf("APIError.Message = %q, want %q", apiErr.Message, "fan stalled")
	}
}

func TestSetSpeed_DeviceReportsFailureWithoutMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error"}`))
	}))
	defer server.Close()

	client := NewClient()
	err := client.SetSpeed(context.Background(), testDevice(server.URL), 50)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("SetSpeed() error = %T, want *APIError", err)
	}
	if apiErr.Message != "Unknown error" {
		t.Errorf("APIError.Message = %q, want %q", apiErr.Message, "Unknown error")
	}
}

func TestSetSpeed_Non200IsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient()
	err := client.SetSpeed(context.Background(), testDevice(server.URL), 50)

	if !transport.IsInvalidResponse(err) {
		t.Errorf("SetSpeed() error = %T, want *transport.InvalidResponseError", err)
	}
}

func TestSetSpeed_PercentPassedThroughUnclamped(t *testing.T) {
	// Range policy belongs to the caller and ultimately the firmware;
	// the client must not clamp.
	var gotValue string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotValue = r.URL.Query().Get("value")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient()
	if err := client.SetSpeed(context.Background(), testDevice(server.URL), 150); err != nil {
		t.Fatalf("SetSpeed() error = %v", err)
	}

	if gotValue != "150" {
		t.Errorf("value query parameter = %s, want 150 (unclamped)", gotValue)
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Message: "fan stalled"}
	want := "device reported an error: fan stalled"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
