package httpapi

import (
	"context"
	"net/http"

	"github.com/riskibarqy/roster-engine/internal/usecase"
)

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDraft")
	defer span.End()

	leagueID, err := pathValue(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.draftService.Get(ctx, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toDraftDTO(view))
}

func (h *Handler) StartDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartDraft")
	defer span.End()

	leagueID, err := pathValue(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	actor, err := actorID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.draftService.Start(ctx, usecase.StartDraftInput{LeagueID: leagueID, ActorID: actor})
	if err != nil {
		h.logger.WarnContext(ctx, "start draft failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, toDraftDTO(view))
}

func (h *Handler) PauseDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PauseDraft")
	defer span.End()

	h.controlDraft(w, r.WithContext(ctx), h.draftService.Pause)
}

func (h *Handler) ResumeDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResumeDraft")
	defer span.End()

	h.controlDraft(w, r.WithContext(ctx), h.draftService.Resume)
}

func (h *Handler) controlDraft(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, input usecase.DraftControlInput) (usecase.DraftView, error),
) {
	ctx := r.Context()
	leagueID, err := pathValue(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	actor, err := actorID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := action(ctx, usecase.DraftControlInput{LeagueID: leagueID, ActorID: actor})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toDraftDTO(view))
}

func (h *Handler) SubmitDraftPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitDraftPick")
	defer span.End()

	leagueID, err := pathValue(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	actor, err := actorID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req submitPickRequest
	if err := h.decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.draftService.SubmitPick(ctx, usecase.SubmitPickInput{
		LeagueID: leagueID,
		TeamID:   req.TeamID,
		ActorID:  actor,
		PlayerID: req.PlayerID,
	})
	if err != nil {
		h.logger.InfoContext(ctx, "draft pick rejected",
			"league_id", leagueID,
			"team_id", req.TeamID,
			"player_id", req.PlayerID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toDraftDTO(view))
}

func (h *Handler) ListDraftAvailablePlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDraftAvailablePlayers")
	defer span.End()

	leagueID, err := pathValue(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.draftService.AvailablePlayers(ctx, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toPlayerDTOs(items))
}
