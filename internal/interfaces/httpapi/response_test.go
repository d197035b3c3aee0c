package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/roster-engine/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrValidation))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
	items, _ := errorObj["errors"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one error item, got %v", errorObj["errors"])
	}
	item, _ := items[0].(map[string]any)
	if got, _ := item["reason"].(string); got != usecase.KindValidation {
		t.Fatalf("expected reason %s, got %v", usecase.KindValidation, item["reason"])
	}
}

func TestWriteError_InternalHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, errors.New("pq: connection refused to 10.0.0.5"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Fatalf("internal error details leaked: %s", rec.Body.String())
	}
}

func TestMapError_Kinds(t *testing.T) {
	tests := []struct {
		err        error
		httpStatus int
		status     string
	}{
		{fmt.Errorf("%w: x", usecase.ErrValidation), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{fmt.Errorf("%w: x", usecase.ErrPermission), http.StatusForbidden, "PERMISSION_DENIED"},
		{fmt.Errorf("%w: x", usecase.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("%w: x", usecase.ErrConflict), http.StatusConflict, "ALREADY_EXISTS"},
		{fmt.Errorf("%w: x", usecase.ErrState), http.StatusConflict, "FAILED_PRECONDITION"},
		{fmt.Errorf("%w: x", usecase.ErrCapacity), http.StatusConflict, "FAILED_PRECONDITION"},
		{fmt.Errorf("%w: x", usecase.ErrBudgetExceeded), http.StatusTooManyRequests, "RESOURCE_EXHAUSTED"},
		{fmt.Errorf("%w: x", usecase.ErrUnauthorized), http.StatusUnauthorized, "UNAUTHENTICATED"},
		{fmt.Errorf("%w: x", usecase.ErrDependencyUnavailable), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range tests {
		got := mapError(tc.err)
		if got.HTTPStatus != tc.httpStatus || got.Status != tc.status {
			t.Fatalf("mapError(%v) = %d %s, want %d %s", tc.err, got.HTTPStatus, got.Status, tc.httpStatus, tc.status)
		}
		if got.Reason != usecase.ErrorKind(tc.err) {
			t.Fatalf("mapError(%v) reason = %s, want %s", tc.err, got.Reason, usecase.ErrorKind(tc.err))
		}
	}
}
