package apierror

import (
	"errors"
	"testing"
)

func TestToResponse_ClassifiedError(t *testing.T) {
	resp := ToResponse(&HTTPError{Status: 401, Body: "token expired"})

	if !resp.IsError {
		t.Error("IsError = false, want true")
	}
	if resp.Message != "token expired" {
		t.Errorf("Message = %q, want body text", resp.Message)
	}
	if resp.Code != "authentication" {
		t.Errorf("Code = %q, want authentication", resp.Code)
	}
}

func TestToResponse_PrefersRemoteCode(t *testing.T) {
	resp := ToResponse(&HTTPError{Status: 429, Code: "QuotaExceeded"})

	if resp.Code != "QuotaExceeded" {
		t.Errorf("Code = %q, want QuotaExceeded", resp.Code)
	}
}

func TestToResponse_UnclassifiedError(t *testing.T) {
	resp := ToResponse(errors.New("something leaked"))

	if !resp.IsError {
		t.Error("IsError = false, want true")
	}
	if resp.Code != "network" {
		t.Errorf("Code = %q, want network", resp.Code)
	}
}

func TestToResponse_Nil(t *testing.T) {
	resp := ToResponse(nil)

	if resp.IsError {
		t.Error("IsError = true for nil error")
	}
}
