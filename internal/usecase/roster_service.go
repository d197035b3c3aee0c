package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/roster-engine/internal/domain/draft"
	"github.com/riskibarqy/roster-engine/internal/domain/lineup"
	"github.com/riskibarqy/roster-engine/internal/domain/movebudget"
	"github.com/riskibarqy/roster-engine/internal/domain/player"
	"github.com/riskibarqy/roster-engine/internal/domain/roster"
	"github.com/riskibarqy/roster-engine/internal/domain/waiver"
	"github.com/riskibarqy/roster-engine/internal/platform/logging"
)

type RosterConfig struct {
	WaiverPeriod time.Duration
	WaiverCutoff waiver.DailyCutoff
}

// TeamView is a team together with its budget for the current week.
type TeamView struct {
	Team           roster.Team
	WeekID         string
	MovesUsed      int
	MovesRemaining int
}

type AddPlayerInput struct {
	TeamID    string
	ActorID   string
	PlayerID  string
	AsStarter bool
	Drop      roster.DropChoice
}

type DropPlayerInput struct {
	TeamID   string
	ActorID  string
	PlayerID string
}

type SetStartersInput struct {
	TeamID    string
	ActorID   string
	PlayerIDs []string
}

// WaiverAward is a claim the resolver wants applied to the claimant's roster.
type WaiverAward struct {
	TeamID   string
	PlayerID string
	Drop     roster.DropChoice
}

// RosterService owns every roster mutation. Writes for one team are
// serialized in process and guarded across processes by the team version.
type RosterService struct {
	teamRepo   roster.Repository
	playerRepo player.Repository
	draftRepo  draft.Repository
	budget     *MoveBudgetService
	cfg        RosterConfig
	locks      *keyedLocker
	logger     *logging.Logger
	now        func() time.Time
}

func NewRosterService(
	teamRepo roster.Repository,
	playerRepo player.Repository,
	draftRepo draft.Repository,
	budget *MoveBudgetService,
	cfg RosterConfig,
	logger *logging.Logger,
) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.WaiverPeriod <= 0 {
		cfg.WaiverPeriod = 24 * time.Hour
	}
	return &RosterService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		draftRepo:  draftRepo,
		budget:     budget,
		cfg:        cfg,
		locks:      newKeyedLocker(),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *RosterService) GetTeam(ctx context.Context, teamID string) (TeamView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.GetTeam")
	defer span.End()

	team, err := s.loadTeam(ctx, teamID)
	if err != nil {
		return TeamView{}, err
	}
	return s.view(ctx, team)
}

func (s *RosterService) ListTeams(ctx context.Context, leagueID string) ([]TeamView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ListTeams")
	defer span.End()

	teams, err := s.teamRepo.ListByLeague(ctx, strings.TrimSpace(leagueID))
	if err != nil {
		return nil, fmt.Errorf("list teams league=%s: %w", leagueID, err)
	}
	out := make([]TeamView, 0, len(teams))
	for _, team := range teams {
		view, err := s.view(ctx, team)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// ListAvailablePlayers returns league players that are neither rostered nor
// on waivers, best season average first.
func (s *RosterService) ListAvailablePlayers(ctx context.Context, leagueID string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ListAvailablePlayers")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	players, err := s.playerRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list players league=%s: %w", leagueID, err)
	}
	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list teams league=%s: %w", leagueID, err)
	}
	rostered := make(map[string]struct{})
	for _, team := range teams {
		for _, id := range team.PlayerIDs() {
			rostered[id] = struct{}{}
		}
	}

	now := s.now()
	out := make([]player.Player, 0, len(players))
	for _, p := range players {
		if _, ok := rostered[p.ID]; ok || p.OnWaivers(now) {
			continue
		}
		out = append(out, p)
	}
	sortByRank(out)
	return out, nil
}

// AddPlayer signs a free agent, optionally dropping a rostered player in the same move.
func (s *RosterService) AddPlayer(ctx context.Context, input AddPlayerInput) (TeamView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.AddPlayer")
	defer span.End()

	input.TeamID = strings.TrimSpace(input.TeamID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.TeamID == "" || input.PlayerID == "" {
		return TeamView{}, newKindError(ErrValidation, "team id and player id are required")
	}

	unlock := s.locks.Lock(input.TeamID)
	defer unlock()

	team, err := s.loadTeam(ctx, input.TeamID)
	if err != nil {
		return TeamView{}, err
	}
	if !team.OwnedBy(input.ActorID) {
		return TeamView{}, newKindError(ErrPermission, "user does not own team=%s", team.ID)
	}
	if err := s.ensureRostersOpen(ctx, team.LeagueID); err != nil {
		return TeamView{}, err
	}

	target, err := s.loadLeaguePlayer(ctx, team.LeagueID, input.PlayerID)
	if err != nil {
		return TeamView{}, err
	}
	if err := s.ensureUnrostered(ctx, team, target.ID); err != nil {
		return TeamView{}, err
	}
	if target.OnWaivers(s.now()) {
		return TeamView{}, newKindError(ErrState, "player=%s is on waivers until %s, submit a claim instead",
			target.ID, target.WaiverExpiresAt.UTC().Format(time.RFC3339))
	}

	next := team.Clone()
	dropped, err := next.ApplyAdd(roster.Slot{
		PlayerID:    target.ID,
		Position:    target.Position,
		IsStarter:   input.AsStarter,
		AcquiredVia: roster.AcquiredFreeAgent,
		AcquiredAt:  s.now().UTC(),
	}, input.Drop)
	if err != nil {
		return TeamView{}, classifyRosterError(err)
	}
	if input.AsStarter {
		if err := s.checkStarters(ctx, next, false); err != nil {
			return TeamView{}, err
		}
	}

	counted := input.AsStarter || input.Drop.IsDrop()
	saved, err := s.commit(ctx, team, next, counted, dropped)
	if err != nil {
		return TeamView{}, err
	}

	s.logger.InfoContext(ctx, "player added",
		"team_id", saved.ID,
		"player_id", target.ID,
		"drop", input.Drop.String(),
		"as_starter", input.AsStarter,
	)
	return s.view(ctx, saved)
}

// DropPlayer releases a rostered player onto waivers.
func (s *RosterService) DropPlayer(ctx context.Context, input DropPlayerInput) (TeamView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.DropPlayer")
	defer span.End()

	input.TeamID = strings.TrimSpace(input.TeamID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.TeamID == "" || input.PlayerID == "" {
		return TeamView{}, newKindError(ErrValidation, "team id and player id are required")
	}

	unlock := s.locks.Lock(input.TeamID)
	defer unlock()

	team, err := s.loadTeam(ctx, input.TeamID)
	if err != nil {
		return TeamView{}, err
	}
	if !team.OwnedBy(input.ActorID) {
		return TeamView{}, newKindError(ErrPermission, "user does not own team=%s", team.ID)
	}
	if err := s.ensureRostersOpen(ctx, team.LeagueID); err != nil {
		return TeamView{}, err
	}

	next := team.Clone()
	removed, err := next.RemoveSlot(input.PlayerID)
	if err != nil {
		return TeamView{}, classifyRosterError(err)
	}

	saved, err := s.commit(ctx, team, next, true, &removed)
	if err != nil {
		return TeamView{}, err
	}

	s.logger.InfoContext(ctx, "player dropped", "team_id", saved.ID, "player_id", removed.PlayerID)
	return s.view(ctx, saved)
}

// SetStarters replaces the starting five. Re-submitting the current set is a no-op.
func (s *RosterService) SetStarters(ctx context.Context, input SetStartersInput) (TeamView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.SetStarters")
	defer span.End()

	input.TeamID = strings.TrimSpace(input.TeamID)
	if input.TeamID == "" {
		return TeamView{}, newKindError(ErrValidation, "team id is required")
	}

	unlock := s.locks.Lock(input.TeamID)
	defer unlock()

	team, err := s.loadTeam(ctx, input.TeamID)
	if err != nil {
		return TeamView{}, err
	}
	if !team.OwnedBy(input.ActorID) {
		return TeamView{}, newKindError(ErrPermission, "user does not own team=%s", team.ID)
	}
	if err := s.ensureRostersOpen(ctx, team.LeagueID); err != nil {
		return TeamView{}, err
	}

	next := team.Clone()
	if err := next.SetStarters(input.PlayerIDs); err != nil {
		return TeamView{}, classifyRosterError(err)
	}
	if err := s.checkStarters(ctx, next, true); err != nil {
		return TeamView{}, err
	}
	if sameSet(team.StarterIDs(), next.StarterIDs()) {
		return s.view(ctx, team)
	}

	saved, err := s.commit(ctx, team, next, true, nil)
	if err != nil {
		return TeamView{}, err
	}

	s.logger.InfoContext(ctx, "starters updated", "team_id", saved.ID, "starters", saved.StarterIDs())
	return s.view(ctx, saved)
}

// ApplyWaiverAward moves a claimed player onto the claimant's bench. A replay
// for a player the team already holds reports success without spending budget.
func (s *RosterService) ApplyWaiverAward(ctx context.Context, award WaiverAward) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ApplyWaiverAward")
	defer span.End()

	unlock := s.locks.Lock(award.TeamID)
	defer unlock()

	team, err := s.loadTeam(ctx, award.TeamID)
	if err != nil {
		return err
	}
	if team.HasPlayer(award.PlayerID) {
		return nil
	}
	if err := s.ensureRostersOpen(ctx, team.LeagueID); err != nil {
		return err
	}

	target, err := s.loadLeaguePlayer(ctx, team.LeagueID, award.PlayerID)
	if err != nil {
		return err
	}
	if err := s.ensureUnrostered(ctx, team, target.ID); err != nil {
		return err
	}

	next := team.Clone()
	dropped, err := next.ApplyAdd(roster.Slot{
		PlayerID:    target.ID,
		Position:    target.Position,
		AcquiredVia: roster.AcquiredWaiver,
		AcquiredAt:  s.now().UTC(),
	}, award.Drop)
	if err != nil {
		return classifyRosterError(err)
	}

	_, err = s.commit(ctx, team, next, true, dropped)
	return err
}

// ApplyDraftResults writes a finished draft onto a team. Players already on
// the roster are skipped so the call can be retried. The first five drafted
// players start when the team has no starters yet.
func (s *RosterService) ApplyDraftResults(ctx context.Context, teamID string, picks []draft.Pick, positions map[string]string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ApplyDraftResults")
	defer span.End()

	unlock := s.locks.Lock(teamID)
	defer unlock()

	team, err := s.loadTeam(ctx, teamID)
	if err != nil {
		return err
	}

	next := team.Clone()
	assignStarters := len(team.StarterIDs()) == 0
	for _, pick := range picks {
		if !pick.Made() || next.HasPlayer(pick.PlayerID) {
			continue
		}
		acquiredAt := s.now().UTC()
		if pick.MadeAt != nil {
			acquiredAt = pick.MadeAt.UTC()
		}
		slot := roster.Slot{
			PlayerID:    pick.PlayerID,
			Position:    positions[pick.PlayerID],
			IsStarter:   assignStarters && len(next.StarterIDs()) < roster.StarterCount,
			AcquiredVia: roster.AcquiredDraft,
			AcquiredAt:  acquiredAt,
		}
		if err := next.AddSlot(slot); err != nil {
			return classifyRosterError(err)
		}
	}
	if len(next.Slots) == len(team.Slots) {
		return nil
	}

	_, err = s.commit(ctx, team, next, false, nil)
	return err
}

// commit reserves budget when the move counts, saves the roster and puts any
// dropped player on waivers. The reservation is refunded if the save fails.
func (s *RosterService) commit(ctx context.Context, current, next roster.Team, counted bool, dropped *roster.Slot) (roster.Team, error) {
	var reserved *movebudget.Counter
	if counted {
		counter, err := s.budget.RecordMove(ctx, current.ID)
		if err != nil {
			return roster.Team{}, err
		}
		reserved = &counter
	}

	now := s.now().UTC()
	next.UpdatedAt = now
	saved, err := s.teamRepo.Save(ctx, next)
	if err != nil {
		if reserved != nil {
			s.budget.Refund(ctx, *reserved)
		}
		switch {
		case errors.Is(err, roster.ErrPlayerOwned):
			return roster.Team{}, markKind(err, ErrConflict)
		case errors.Is(err, roster.ErrVersionMismatch):
			return roster.Team{}, markKind(err, ErrConflict)
		default:
			return roster.Team{}, fmt.Errorf("save team=%s: %w", current.ID, err)
		}
	}

	if dropped != nil {
		expiresAt := s.cfg.WaiverCutoff.AtOrAfter(now.Add(s.cfg.WaiverPeriod))
		if err := s.playerRepo.SetWaiverExpiry(ctx, dropped.PlayerID, &expiresAt); err != nil {
			s.logger.ErrorContext(ctx, "place dropped player on waivers failed",
				"team_id", saved.ID,
				"player_id", dropped.PlayerID,
				"error", err,
			)
		}
	}
	return saved, nil
}

// checkStarters validates the starter set. A partial set is accepted only
// when requireFull is false, which covers adding a starter to an incomplete lineup.
func (s *RosterService) checkStarters(ctx context.Context, team roster.Team, requireFull bool) error {
	starterIDs := team.StarterIDs()
	if len(starterIDs) > roster.StarterCount {
		return newKindError(ErrValidation, "lineup already has %d starters, bench one first", roster.StarterCount)
	}
	if len(starterIDs) < roster.StarterCount && !requireFull {
		return nil
	}

	players, err := s.playerRepo.GetByIDs(ctx, team.LeagueID, starterIDs)
	if err != nil {
		return fmt.Errorf("load starters team=%s: %w", team.ID, err)
	}
	if result := lineup.Validate(players); !result.OK() {
		return newKindError(ErrValidation, "lineup rejected: %s", result)
	}
	return nil
}

// ensureRostersOpen rejects roster changes while the league's draft still
// owns the rosters: any draft that has not completed and written its picks.
func (s *RosterService) ensureRostersOpen(ctx context.Context, leagueID string) error {
	if s.draftRepo == nil {
		return nil
	}
	state, exists, err := s.draftRepo.GetByLeague(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("get draft league=%s: %w", leagueID, err)
	}
	if !exists || (state.Status == draft.StatusCompleted && state.RostersAssigned) {
		return nil
	}
	return newKindError(ErrState, "league=%s draft is %s, rosters open once it completes", leagueID, state.Status)
}

func (s *RosterService) loadTeam(ctx context.Context, teamID string) (roster.Team, error) {
	team, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return roster.Team{}, fmt.Errorf("get team=%s: %w", teamID, err)
	}
	if !exists {
		return roster.Team{}, newKindError(ErrNotFound, "team=%s", teamID)
	}
	return team, nil
}

func (s *RosterService) loadLeaguePlayer(ctx context.Context, leagueID, playerID string) (player.Player, error) {
	p, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player=%s: %w", playerID, err)
	}
	if !exists || p.LeagueID != leagueID {
		return player.Player{}, newKindError(ErrNotFound, "player=%s in league=%s", playerID, leagueID)
	}
	return p, nil
}

func (s *RosterService) ensureUnrostered(ctx context.Context, team roster.Team, playerID string) error {
	if team.HasPlayer(playerID) {
		return newKindError(ErrConflict, "player=%s is already on team=%s", playerID, team.ID)
	}
	ownerID, owned, err := s.teamRepo.OwnerOf(ctx, team.LeagueID, playerID)
	if err != nil {
		return fmt.Errorf("lookup owner of player=%s: %w", playerID, err)
	}
	if owned {
		return newKindError(ErrConflict, "player=%s is rostered by team=%s", playerID, ownerID)
	}
	return nil
}

func (s *RosterService) view(ctx context.Context, team roster.Team) (TeamView, error) {
	counter, err := s.budget.Status(ctx, team.ID)
	if err != nil {
		return TeamView{}, err
	}
	return TeamView{
		Team:           team,
		WeekID:         counter.WeekID,
		MovesUsed:      counter.Moves,
		MovesRemaining: counter.Remaining(),
	}, nil
}

func classifyRosterError(err error) error {
	switch {
	case errors.Is(err, roster.ErrRosterFull):
		return markKind(err, ErrCapacity)
	case errors.Is(err, roster.ErrPlayerNotOnTeam):
		return markKind(err, ErrNotFound)
	case errors.Is(err, roster.ErrDuplicatePlayer):
		return markKind(err, ErrValidation)
	case errors.Is(err, roster.ErrPlayerOwned):
		return markKind(err, ErrConflict)
	default:
		return err
	}
}

func sameSet(left, right []string) bool {
	if len(left) != len(right) {
		return false
	}
	seen := make(map[string]struct{}, len(left))
	for _, id := range left {
		seen[id] = struct{}{}
	}
	for _, id := range right {
		if _, ok := seen[id]; !ok {
			return false
		}
	}
	return true
}

// sortByRank orders players by season average descending, then id.
func sortByRank(players []player.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].SeasonAverage != players[j].SeasonAverage {
			return players[i].SeasonAverage > players[j].SeasonAverage
		}
		return players[i].ID < players[j].ID
	})
}
