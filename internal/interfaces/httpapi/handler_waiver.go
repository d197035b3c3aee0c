package httpapi

import (
	"net/http"

	"github.com/riskibarqy/roster-engine/internal/domain/roster"
	"github.com/riskibarqy/roster-engine/internal/usecase"
)

func (h *Handler) SubmitWaiverClaim(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitWaiverClaim")
	defer span.End()

	teamID, err := pathValue(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	actor, err := actorID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req submitClaimRequest
	if err := h.decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	claim, err := h.waiverService.SubmitClaim(ctx, usecase.SubmitClaimInput{
		TeamID:   teamID,
		ActorID:  actor,
		PlayerID: req.PlayerID,
		Priority: req.Priority,
		Drop:     roster.DropFromOptional(req.DropPlayerID),
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, toClaimDTO(claim))
}

func (h *Handler) ListWaiverClaims(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWaiverClaims")
	defer span.End()

	teamID, err := pathValue(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	actor, err := actorID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	claims, err := h.waiverService.ListClaims(ctx, teamID, actor)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toClaimDTOs(claims))
}

func (h *Handler) CancelWaiverClaim(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelWaiverClaim")
	defer span.End()

	teamID, err := pathValue(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	claimID, err := pathValue(r, "claimID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	actor, err := actorID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	claim, err := h.waiverService.CancelClaim(ctx, usecase.CancelClaimInput{
		TeamID:  teamID,
		ActorID: actor,
		ClaimID: claimID,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toClaimDTO(claim))
}
