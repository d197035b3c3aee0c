package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/roster-engine/internal/domain/draft"
	"github.com/riskibarqy/roster-engine/internal/domain/league"
	"github.com/riskibarqy/roster-engine/internal/domain/player"
	"github.com/riskibarqy/roster-engine/internal/domain/roster"
	"github.com/riskibarqy/roster-engine/internal/platform/id"
	"github.com/riskibarqy/roster-engine/internal/platform/logging"
)

type DraftConfig struct {
	DefaultRounds      int
	DefaultPickSeconds int
}

// DraftView is the draft state plus the values derived from the clock.
type DraftView struct {
	State            draft.State
	CurrentRound     int
	SecondsRemaining int
	OnTheClock       *draft.Pick
}

type StartDraftInput struct {
	LeagueID string
	ActorID  string
}

type DraftControlInput struct {
	LeagueID string
	ActorID  string
}

type SubmitPickInput struct {
	LeagueID string
	TeamID   string
	ActorID  string
	PlayerID string
}

type TickResult struct {
	LeagueID   string
	AutoPicked bool
	Pick       draft.Pick
	Completed  bool
}

// AutoPickStrategy chooses a player for a team whose pick timer ran out.
type AutoPickStrategy interface {
	Select(ctx context.Context, teamID string, candidates []player.Player) (player.Player, bool)
}

// BestAvailable picks the highest season average, ties broken by id.
type BestAvailable struct{}

func (BestAvailable) Select(_ context.Context, _ string, candidates []player.Player) (player.Player, bool) {
	if len(candidates) == 0 {
		return player.Player{}, false
	}
	ranked := append([]player.Player(nil), candidates...)
	sortByRank(ranked)
	return ranked[0], true
}

// DraftService runs live snake drafts. Every state change is a compare-and-swap
// on the current pick, so a manual pick and a timer expiry racing for the same
// pick cannot both succeed.
type DraftService struct {
	leagueRepo league.Repository
	teamRepo   roster.Repository
	playerRepo player.Repository
	draftRepo  draft.Repository
	rosterSvc  *RosterService
	autoPick   AutoPickStrategy
	idGen      id.Generator
	cfg        DraftConfig
	clock      clockwork.Clock
	logger     *logging.Logger
}

func NewDraftService(
	leagueRepo league.Repository,
	teamRepo roster.Repository,
	playerRepo player.Repository,
	draftRepo draft.Repository,
	rosterSvc *RosterService,
	idGen id.Generator,
	cfg DraftConfig,
	clock clockwork.Clock,
	logger *logging.Logger,
) *DraftService {
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.DefaultRounds <= 0 {
		cfg.DefaultRounds = league.DefaultDraftRounds
	}
	if cfg.DefaultPickSeconds <= 0 {
		cfg.DefaultPickSeconds = league.DefaultPickSeconds
	}
	return &DraftService{
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		draftRepo:  draftRepo,
		rosterSvc:  rosterSvc,
		autoPick:   BestAvailable{},
		idGen:      idGen,
		cfg:        cfg,
		clock:      clock,
		logger:     logger,
	}
}

// WithAutoPick swaps the strategy used when a pick timer expires.
func (s *DraftService) WithAutoPick(strategy AutoPickStrategy) *DraftService {
	if strategy != nil {
		s.autoPick = strategy
	}
	return s
}

func (s *DraftService) Get(ctx context.Context, leagueID string) (DraftView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Get")
	defer span.End()

	state, err := s.loadDraft(ctx, leagueID)
	if err != nil {
		return DraftView{}, err
	}
	return s.view(state), nil
}

// Start creates the draft for a league and puts the first pick on the clock.
func (s *DraftService) Start(ctx context.Context, input StartDraftInput) (DraftView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Start")
	defer span.End()

	leagueID := strings.TrimSpace(input.LeagueID)
	lg, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return DraftView{}, fmt.Errorf("get league=%s: %w", leagueID, err)
	}
	if !exists {
		return DraftView{}, newKindError(ErrNotFound, "league=%s", leagueID)
	}
	if !lg.IsCommissioner(input.ActorID) {
		return DraftView{}, newKindError(ErrPermission, "only the commissioner can start the draft for league=%s", leagueID)
	}

	if _, exists, err := s.draftRepo.GetByLeague(ctx, leagueID); err != nil {
		return DraftView{}, fmt.Errorf("get draft league=%s: %w", leagueID, err)
	} else if exists {
		return DraftView{}, newKindError(ErrState, "draft already started for league=%s", leagueID)
	}

	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return DraftView{}, fmt.Errorf("list teams league=%s: %w", leagueID, err)
	}
	if len(teams) < draft.MinTeams {
		return DraftView{}, newKindError(ErrState, "league=%s has %d teams, need at least %d", leagueID, len(teams), draft.MinTeams)
	}

	rounds := lg.DraftRounds
	if rounds <= 0 {
		rounds = s.cfg.DefaultRounds
	}
	pickSeconds := lg.PickSeconds
	if pickSeconds <= 0 {
		pickSeconds = s.cfg.DefaultPickSeconds
	}
	for _, team := range teams {
		if len(team.Slots)+rounds > roster.MaxSlots {
			return DraftView{}, newKindError(ErrValidation, "%d rounds would overflow the roster of team=%s", rounds, team.ID)
		}
	}

	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].DraftPosition != teams[j].DraftPosition {
			return teams[i].DraftPosition < teams[j].DraftPosition
		}
		return teams[i].ID < teams[j].ID
	})
	order := make([]string, 0, len(teams))
	for _, team := range teams {
		order = append(order, team.ID)
	}

	draftID, err := s.idGen.NewID()
	if err != nil {
		return DraftView{}, fmt.Errorf("generate draft id: %w", err)
	}
	now := s.clock.Now().UTC()
	pending, err := draft.New(draftID, leagueID, order, rounds, pickSeconds, now)
	if err != nil {
		return DraftView{}, markKind(err, ErrValidation)
	}
	started, err := pending.Start(now)
	if err != nil {
		return DraftView{}, markKind(err, ErrState)
	}
	if err := s.draftRepo.Create(ctx, started); err != nil {
		if errors.Is(err, draft.ErrDraftExists) {
			return DraftView{}, markKind(err, ErrState)
		}
		return DraftView{}, fmt.Errorf("create draft league=%s: %w", leagueID, err)
	}

	s.logger.InfoContext(ctx, "draft started",
		"league_id", leagueID,
		"draft_id", started.ID,
		"teams", len(order),
		"rounds", rounds,
		"pick_seconds", pickSeconds,
	)
	return s.view(started), nil
}

// SubmitPick records a manual selection by the team on the clock.
func (s *DraftService) SubmitPick(ctx context.Context, input SubmitPickInput) (DraftView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.SubmitPick")
	defer span.End()

	input.PlayerID = strings.TrimSpace(input.PlayerID)
	input.TeamID = strings.TrimSpace(input.TeamID)
	if input.PlayerID == "" || input.TeamID == "" {
		return DraftView{}, newKindError(ErrValidation, "team id and player id are required")
	}

	state, err := s.loadDraft(ctx, input.LeagueID)
	if err != nil {
		return DraftView{}, err
	}
	if state.Status != draft.StatusActive {
		return DraftView{}, newKindError(ErrState, "draft for league=%s is %s", state.LeagueID, state.Status)
	}
	onClock, _ := state.OnTheClock()

	team, exists, err := s.teamRepo.GetByID(ctx, input.TeamID)
	if err != nil {
		return DraftView{}, fmt.Errorf("get team=%s: %w", input.TeamID, err)
	}
	if !exists || team.LeagueID != state.LeagueID {
		return DraftView{}, newKindError(ErrNotFound, "team=%s in league=%s", input.TeamID, state.LeagueID)
	}
	if !team.OwnedBy(input.ActorID) {
		return DraftView{}, newKindError(ErrPermission, "user does not own team=%s", team.ID)
	}
	if onClock.TeamID != team.ID {
		return DraftView{}, newKindError(ErrPermission, "pick %d belongs to team=%s", onClock.Number, onClock.TeamID)
	}

	target, exists, err := s.playerRepo.GetByID(ctx, input.PlayerID)
	if err != nil {
		return DraftView{}, fmt.Errorf("get player=%s: %w", input.PlayerID, err)
	}
	if !exists || target.LeagueID != state.LeagueID {
		return DraftView{}, newKindError(ErrNotFound, "player=%s in league=%s", input.PlayerID, state.LeagueID)
	}
	if state.IsDrafted(target.ID) {
		return DraftView{}, newKindError(ErrConflict, "player=%s already drafted", target.ID)
	}
	if ownerID, owned, err := s.teamRepo.OwnerOf(ctx, state.LeagueID, target.ID); err != nil {
		return DraftView{}, fmt.Errorf("lookup owner of player=%s: %w", target.ID, err)
	} else if owned {
		return DraftView{}, newKindError(ErrConflict, "player=%s is rostered by team=%s", target.ID, ownerID)
	}

	next, err := state.RecordPick(target.ID, false, s.clock.Now().UTC())
	if err != nil {
		return DraftView{}, classifyDraftError(err)
	}
	if err := s.commit(ctx, state, next); err != nil {
		return DraftView{}, err
	}

	s.logger.InfoContext(ctx, "draft pick made",
		"league_id", state.LeagueID,
		"pick", onClock.Number,
		"team_id", team.ID,
		"player_id", target.ID,
	)
	return s.view(next), nil
}

// Tick auto-picks for the team on the clock once its deadline has passed and
// retries roster assignment for a completed draft. Losing a race to a manual
// pick yields a state error and leaves the draft untouched.
func (s *DraftService) Tick(ctx context.Context, leagueID string) (TickResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Tick")
	defer span.End()

	state, err := s.loadDraft(ctx, leagueID)
	if err != nil {
		return TickResult{}, err
	}
	result := TickResult{LeagueID: state.LeagueID}

	if state.Status == draft.StatusCompleted {
		result.Completed = true
		if !state.RostersAssigned {
			return result, s.assignRosters(ctx, state)
		}
		return result, nil
	}

	now := s.clock.Now().UTC()
	if !state.Expired(now) {
		return result, nil
	}
	onClock, _ := state.OnTheClock()

	candidates, err := s.eligiblePlayers(ctx, state)
	if err != nil {
		return TickResult{}, err
	}
	choice, ok := s.autoPick.Select(ctx, onClock.TeamID, candidates)
	if !ok {
		s.logger.WarnContext(ctx, "no eligible players for auto-pick",
			"league_id", state.LeagueID,
			"pick", onClock.Number,
		)
		return TickResult{}, newKindError(ErrState, "no eligible players left for pick %d", onClock.Number)
	}

	next, err := state.RecordPick(choice.ID, true, now)
	if err != nil {
		return TickResult{}, classifyDraftError(err)
	}
	if err := s.commit(ctx, state, next); err != nil {
		return TickResult{}, err
	}

	made := next.Picks[onClock.Number-1]
	s.logger.InfoContext(ctx, "draft auto-pick made",
		"league_id", state.LeagueID,
		"pick", made.Number,
		"team_id", made.TeamID,
		"player_id", made.PlayerID,
	)
	result.AutoPicked = true
	result.Pick = made
	result.Completed = next.Status == draft.StatusCompleted
	return result, nil
}

func (s *DraftService) Pause(ctx context.Context, input DraftControlInput) (DraftView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Pause")
	defer span.End()

	return s.control(ctx, input, "paused", func(state draft.State, now time.Time) (draft.State, error) {
		return state.Pause(now)
	})
}

func (s *DraftService) Resume(ctx context.Context, input DraftControlInput) (DraftView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Resume")
	defer span.End()

	return s.control(ctx, input, "resumed", func(state draft.State, now time.Time) (draft.State, error) {
		return state.Resume(now)
	})
}

// AvailablePlayers lists players the team on the clock could still select.
func (s *DraftService) AvailablePlayers(ctx context.Context, leagueID string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.AvailablePlayers")
	defer span.End()

	state, err := s.loadDraft(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.eligiblePlayers(ctx, state)
	if err != nil {
		return nil, err
	}
	sortByRank(candidates)
	return candidates, nil
}

func (s *DraftService) control(
	ctx context.Context,
	input DraftControlInput,
	verb string,
	transition func(draft.State, time.Time) (draft.State, error),
) (DraftView, error) {
	leagueID := strings.TrimSpace(input.LeagueID)
	lg, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return DraftView{}, fmt.Errorf("get league=%s: %w", leagueID, err)
	}
	if !exists {
		return DraftView{}, newKindError(ErrNotFound, "league=%s", leagueID)
	}
	if !lg.IsCommissioner(input.ActorID) {
		return DraftView{}, newKindError(ErrPermission, "only the commissioner can control the draft for league=%s", leagueID)
	}

	state, err := s.loadDraft(ctx, leagueID)
	if err != nil {
		return DraftView{}, err
	}
	next, err := transition(state, s.clock.Now().UTC())
	if err != nil {
		return DraftView{}, classifyDraftError(err)
	}
	if err := s.commit(ctx, state, next); err != nil {
		return DraftView{}, err
	}

	s.logger.InfoContext(ctx, "draft "+verb,
		"league_id", leagueID,
		"pick", next.CurrentPick,
		"seconds_remaining", next.SecondsRemaining(s.clock.Now()),
	)
	return s.view(next), nil
}

// commit swaps in next when state is still current and hands a finished
// draft to roster assignment. Assignment failures are retried by the ticker.
func (s *DraftService) commit(ctx context.Context, state, next draft.State) error {
	if err := s.draftRepo.CompareAndSwap(ctx, next, state.CurrentPick, state.Status); err != nil {
		if errors.Is(err, draft.ErrStaleState) {
			return markKind(err, ErrState)
		}
		return fmt.Errorf("store draft league=%s: %w", state.LeagueID, err)
	}
	if next.Status == draft.StatusCompleted && !next.RostersAssigned {
		if err := s.assignRosters(ctx, next); err != nil {
			s.logger.ErrorContext(ctx, "assign draft rosters failed", "league_id", next.LeagueID, "error", err)
		}
	}
	return nil
}

func (s *DraftService) assignRosters(ctx context.Context, state draft.State) error {
	byTeam := state.PicksByTeam()
	playerIDs := make([]string, 0, len(state.Picks))
	for _, pick := range state.Picks {
		if pick.Made() {
			playerIDs = append(playerIDs, pick.PlayerID)
		}
	}
	players, err := s.playerRepo.GetByIDs(ctx, state.LeagueID, playerIDs)
	if err != nil {
		return fmt.Errorf("load drafted players league=%s: %w", state.LeagueID, err)
	}
	positions := make(map[string]string, len(players))
	for _, p := range players {
		positions[p.ID] = p.Position
	}

	// One team failing must not hold back the others; the retry skips
	// players already written.
	var failures []error
	for _, teamID := range state.TeamOrder {
		if err := s.rosterSvc.ApplyDraftResults(ctx, teamID, byTeam[teamID], positions); err != nil {
			failures = append(failures, fmt.Errorf("apply draft results team=%s: %w", teamID, err))
		}
	}
	if len(failures) > 0 {
		return errors.Join(failures...)
	}

	next := state.Clone()
	next.RostersAssigned = true
	next.UpdatedAt = s.clock.Now().UTC()
	if err := s.draftRepo.CompareAndSwap(ctx, next, state.CurrentPick, draft.StatusCompleted); err != nil {
		if errors.Is(err, draft.ErrStaleState) {
			return nil
		}
		return fmt.Errorf("mark draft rosters assigned league=%s: %w", state.LeagueID, err)
	}
	s.logger.InfoContext(ctx, "draft rosters assigned", "league_id", state.LeagueID, "teams", len(state.TeamOrder))
	return nil
}

func (s *DraftService) eligiblePlayers(ctx context.Context, state draft.State) ([]player.Player, error) {
	players, err := s.playerRepo.ListByLeague(ctx, state.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("list players league=%s: %w", state.LeagueID, err)
	}
	teams, err := s.teamRepo.ListByLeague(ctx, state.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("list teams league=%s: %w", state.LeagueID, err)
	}
	taken := state.DraftedPlayerIDs()
	for _, team := range teams {
		for _, playerID := range team.PlayerIDs() {
			taken[playerID] = struct{}{}
		}
	}

	now := s.clock.Now()
	out := make([]player.Player, 0, len(players))
	for _, p := range players {
		if _, ok := taken[p.ID]; ok || p.OnWaivers(now) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *DraftService) loadDraft(ctx context.Context, leagueID string) (draft.State, error) {
	leagueID = strings.TrimSpace(leagueID)
	state, exists, err := s.draftRepo.GetByLeague(ctx, leagueID)
	if err != nil {
		return draft.State{}, fmt.Errorf("get draft league=%s: %w", leagueID, err)
	}
	if !exists {
		return draft.State{}, newKindError(ErrNotFound, "draft for league=%s", leagueID)
	}
	return state, nil
}

func (s *DraftService) view(state draft.State) DraftView {
	out := DraftView{
		State:            state,
		CurrentRound:     state.CurrentRound(),
		SecondsRemaining: state.SecondsRemaining(s.clock.Now()),
	}
	if pick, ok := state.OnTheClock(); ok {
		out.OnTheClock = &pick
	}
	return out
}

func classifyDraftError(err error) error {
	switch {
	case errors.Is(err, draft.ErrInvalidTransition):
		return markKind(err, ErrState)
	case errors.Is(err, draft.ErrPlayerDrafted):
		return markKind(err, ErrConflict)
	case errors.Is(err, draft.ErrStaleState):
		return markKind(err, ErrState)
	default:
		return markKind(err, ErrValidation)
	}
}
