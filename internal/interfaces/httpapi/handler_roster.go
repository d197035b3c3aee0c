package httpapi

import (
	"net/http"

	"github.com/riskibarqy/roster-engine/internal/domain/roster"
	"github.com/riskibarqy/roster-engine/internal/usecase"
)

func (h *Handler) ListTeamsByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamsByLeague")
	defer span.End()

	leagueID, err := pathValue(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	views, err := h.rosterService.ListTeams(ctx, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	out := make([]teamDTO, 0, len(views))
	for _, v := range views {
		out = append(out, toTeamDTO(v))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListAvailablePlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAvailablePlayers")
	defer span.End()

	leagueID, err := pathValue(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.rosterService.ListAvailablePlayers(ctx, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toPlayerDTOs(items))
}

func (h *Handler) ListWaiveredPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWaiveredPlayers")
	defer span.End()

	leagueID, err := pathValue(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.waiverService.ListWaivered(ctx, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toPlayerDTOs(items))
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	teamID, err := pathValue(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.rosterService.GetTeam(ctx, teamID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toTeamDTO(view))
}

func (h *Handler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddPlayer")
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
	var req addPlayerRequest
	if err := h.decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.rosterService.AddPlayer(ctx, usecase.AddPlayerInput{
		TeamID:    teamID,
		ActorID:   actor,
		PlayerID:  req.PlayerID,
		AsStarter: req.AsStarter,
		Drop:      roster.DropFromOptional(req.DropPlayerID),
	})
	if err != nil {
		h.logger.InfoContext(ctx, "add player rejected", "team_id", teamID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toTeamDTO(view))
}

func (h *Handler) DropPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DropPlayer")
	defer span.End()

	teamID, err := pathValue(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	playerID, err := pathValue(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	actor, err := actorID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.rosterService.DropPlayer(ctx, usecase.DropPlayerInput{
		TeamID:   teamID,
		ActorID:  actor,
		PlayerID: playerID,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toTeamDTO(view))
}

func (h *Handler) SetStarters(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetStarters")
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
	var req setStartersRequest
	if err := h.decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.rosterService.SetStarters(ctx, usecase.SetStartersInput{
		TeamID:    teamID,
		ActorID:   actor,
		PlayerIDs: req.PlayerIDs,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toTeamDTO(view))
}
