package httpapi

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/roster-engine/internal/domain/jobscheduler"
	"github.com/riskibarqy/roster-engine/internal/usecase"
)

var internalJobDispatchUnsafeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func (h *Handler) RunWaiverResolveJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunWaiverResolveJob")
	defer span.End()

	input, err := h.decodeInternalJobRequest(r, jobscheduler.JobWaiverResolve)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.jobOrchestrator.RunWaiverBatch(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "run waiver resolve job failed", "dispatch_id", input.DispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunWeeklyResetJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunWeeklyResetJob")
	defer span.End()

	input, err := h.decodeInternalJobRequest(r, jobscheduler.JobWeeklyReset)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.jobOrchestrator.RunWeeklyReset(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "run weekly reset job failed", "dispatch_id", input.DispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunBootstrapJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBootstrapJob")
	defer span.End()

	result, err := h.jobOrchestrator.Bootstrap(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run bootstrap job failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

// decodeInternalJobRequest accepts an empty body. Manual calls without a
// dispatch id get a generated one so their completion is still recorded.
func (h *Handler) decodeInternalJobRequest(r *http.Request, jobName string) (usecase.JobRunInput, error) {
	var req internalJobRequest
	if err := h.decodeJSON(r, &req, true); err != nil {
		return usecase.JobRunInput{}, err
	}

	input := usecase.JobRunInput{DispatchID: strings.TrimSpace(req.DispatchID)}
	if raw := strings.TrimSpace(req.At); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return usecase.JobRunInput{}, fmt.Errorf("%w: at must be RFC3339: %v", usecase.ErrValidation, err)
		}
		at = at.UTC()
		input.At = &at
	}
	if input.DispatchID == "" {
		input.DispatchID = buildManualDispatchID(jobName, time.Now())
	}
	return input, nil
}

func buildManualDispatchID(jobName string, now time.Time) string {
	ts := now.UTC().Format("20060102T150405.000000000Z")
	return "manual-" + sanitizeDispatchPart(jobName) + "-" + ts
}

func sanitizeDispatchPart(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return internalJobDispatchUnsafeRegex.ReplaceAllString(value, "-")
}
