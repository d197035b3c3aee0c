package httpapi

import (
	"context"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/roster-engine/internal/usecase"
)

// Responses follow the Google JSON style guide envelope.
const (
	apiVersion  = "2.0"
	errorDomain = "roster-engine"
)

type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

var kindStatus = map[string]mappedError{
	usecase.KindValidation:     {HTTPStatus: http.StatusBadRequest, Status: "INVALID_ARGUMENT"},
	usecase.KindPermission:     {HTTPStatus: http.StatusForbidden, Status: "PERMISSION_DENIED"},
	usecase.KindNotFound:       {HTTPStatus: http.StatusNotFound, Status: "NOT_FOUND"},
	usecase.KindConflict:       {HTTPStatus: http.StatusConflict, Status: "ALREADY_EXISTS"},
	usecase.KindState:          {HTTPStatus: http.StatusConflict, Status: "FAILED_PRECONDITION"},
	usecase.KindCapacity:       {HTTPStatus: http.StatusConflict, Status: "FAILED_PRECONDITION"},
	usecase.KindBudgetExceeded: {HTTPStatus: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"},
	usecase.KindUnauthorized:   {HTTPStatus: http.StatusUnauthorized, Status: "UNAUTHENTICATED"},
	usecase.KindUnavailable:    {HTTPStatus: http.StatusServiceUnavailable, Status: "UNAVAILABLE"},
}

func mapError(err error) mappedError {
	kind := usecase.ErrorKind(err)
	m, ok := kindStatus[kind]
	if !ok {
		m = mappedError{HTTPStatus: http.StatusInternalServerError, Status: "INTERNAL"}
	}
	m.Reason = kind
	return m
}

func writeJSON(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{APIVersion: apiVersion, Data: data})
}

func writeFailure(w http.ResponseWriter, m mappedError, msg string) {
	writeJSON(w, m.HTTPStatus, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    m.HTTPStatus,
			Message: msg,
			Status:  m.Status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: m.Reason, Message: msg}},
		},
	})
}

// writeError renders err by kind. Internal errors are recorded on the
// active span and replaced with a generic message.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	m := mapError(err)
	if m.HTTPStatus == http.StatusInternalServerError {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, "internal error")
		writeInternalError(ctx, w)
		return
	}
	writeFailure(w, m, err.Error())
}

func writeInternalError(_ context.Context, w http.ResponseWriter) {
	writeFailure(w, mappedError{
		HTTPStatus: http.StatusInternalServerError,
		Reason:     usecase.KindInternal,
		Status:     "INTERNAL",
	}, "internal server error")
}
