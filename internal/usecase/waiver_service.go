package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/roster-engine/internal/domain/player"
	"github.com/riskibarqy/roster-engine/internal/domain/roster"
	"github.com/riskibarqy/roster-engine/internal/domain/waiver"
	"github.com/riskibarqy/roster-engine/internal/platform/id"
	"github.com/riskibarqy/roster-engine/internal/platform/logging"
)

// BatchLocker keeps two processes from resolving the same cutoff at once.
type BatchLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, acquired bool, err error)
}

type noopBatchLocker struct{}

func (noopBatchLocker) TryLock(context.Context, string, time.Duration) (func(context.Context) error, bool, error) {
	return func(context.Context) error { return nil }, true, nil
}

type WaiverConfig struct {
	Cutoff  waiver.DailyCutoff
	Workers int
	LockTTL time.Duration
}

type SubmitClaimInput struct {
	TeamID   string
	ActorID  string
	PlayerID string
	Priority int
	Drop     roster.DropChoice
}

type CancelClaimInput struct {
	TeamID  string
	ActorID string
	ClaimID string
}

const (
	PlayerOutcomeAwarded   = "awarded"
	PlayerOutcomeUnclaimed = "unclaimed"
	PlayerOutcomeNoWinner  = "no_winner"
	PlayerOutcomeSkipped   = "already_resolved"
	PlayerOutcomeFailed    = "failed"
)

// PlayerOutcome reports what the batch did with one waivered player.
type PlayerOutcome struct {
	PlayerID      string `json:"player_id"`
	Outcome       string `json:"outcome"`
	WinnerTeamID  string `json:"winner_team_id,omitempty"`
	WinnerClaimID string `json:"winner_claim_id,omitempty"`
	ClaimCount    int    `json:"claim_count"`
	Error         string `json:"error,omitempty"`
}

type BatchResult struct {
	Cutoff       time.Time       `json:"cutoff"`
	PlayerCount  int             `json:"player_count"`
	AwardedCount int             `json:"awarded_count"`
	FailedCount  int             `json:"failed_count"`
	Players      []PlayerOutcome `json:"players"`
}

// WaiverService handles waiver claims and the daily resolution batch.
type WaiverService struct {
	teamRepo   roster.Repository
	playerRepo player.Repository
	claimRepo  waiver.Repository
	rosterSvc  *RosterService
	locker     BatchLocker
	idGen      id.Generator
	cfg        WaiverConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewWaiverService(
	teamRepo roster.Repository,
	playerRepo player.Repository,
	claimRepo waiver.Repository,
	rosterSvc *RosterService,
	locker BatchLocker,
	idGen id.Generator,
	cfg WaiverConfig,
	logger *logging.Logger,
) *WaiverService {
	if locker == nil {
		locker = noopBatchLocker{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	return &WaiverService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		claimRepo:  claimRepo,
		rosterSvc:  rosterSvc,
		locker:     locker,
		idGen:      idGen,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// SubmitClaim queues a claim on a player inside an open waiver window.
func (s *WaiverService) SubmitClaim(ctx context.Context, input SubmitClaimInput) (waiver.Claim, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaiverService.SubmitClaim")
	defer span.End()

	input.TeamID = strings.TrimSpace(input.TeamID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.TeamID == "" || input.PlayerID == "" {
		return waiver.Claim{}, newKindError(ErrValidation, "team id and player id are required")
	}
	if input.Priority < 1 {
		return waiver.Claim{}, newKindError(ErrValidation, "priority must be >= 1")
	}

	team, err := s.rosterSvc.loadTeam(ctx, input.TeamID)
	if err != nil {
		return waiver.Claim{}, err
	}
	if !team.OwnedBy(input.ActorID) {
		return waiver.Claim{}, newKindError(ErrPermission, "user does not own team=%s", team.ID)
	}
	if err := s.rosterSvc.ensureRostersOpen(ctx, team.LeagueID); err != nil {
		return waiver.Claim{}, err
	}

	target, err := s.rosterSvc.loadLeaguePlayer(ctx, team.LeagueID, input.PlayerID)
	if err != nil {
		return waiver.Claim{}, err
	}
	now := s.now().UTC()
	if !target.OnWaivers(now) {
		return waiver.Claim{}, newKindError(ErrState, "player=%s is not on waivers", target.ID)
	}
	if err := s.rosterSvc.ensureUnrostered(ctx, team, target.ID); err != nil {
		return waiver.Claim{}, err
	}

	dropID, hasDrop := input.Drop.PlayerID()
	if hasDrop {
		if dropID == target.ID {
			return waiver.Claim{}, newKindError(ErrValidation, "cannot drop the claimed player")
		}
		if !team.HasPlayer(dropID) {
			return waiver.Claim{}, newKindError(ErrNotFound, "drop player=%s is not on team=%s", dropID, team.ID)
		}
	} else if team.IsFull() {
		return waiver.Claim{}, newKindError(ErrCapacity, "team=%s roster is full, name a player to drop", team.ID)
	}

	claimID, err := s.idGen.NewID()
	if err != nil {
		return waiver.Claim{}, fmt.Errorf("generate claim id: %w", err)
	}
	claim := waiver.Claim{
		ID:           claimID,
		LeagueID:     team.LeagueID,
		TeamID:       team.ID,
		PlayerID:     target.ID,
		DropPlayerID: dropID,
		Priority:     input.Priority,
		Status:       waiver.StatusPending,
		CreatedAt:    now,
	}
	if err := claim.Validate(); err != nil {
		return waiver.Claim{}, markKind(err, ErrValidation)
	}
	if err := s.claimRepo.Create(ctx, claim); err != nil {
		if errors.Is(err, waiver.ErrPriorityTaken) {
			return waiver.Claim{}, markKind(err, ErrConflict)
		}
		return waiver.Claim{}, fmt.Errorf("create waiver claim: %w", err)
	}

	s.logger.InfoContext(ctx, "waiver claim submitted",
		"claim_id", claim.ID,
		"team_id", claim.TeamID,
		"player_id", claim.PlayerID,
		"priority", claim.Priority,
	)
	return claim, nil
}

func (s *WaiverService) CancelClaim(ctx context.Context, input CancelClaimInput) (waiver.Claim, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaiverService.CancelClaim")
	defer span.End()

	claim, exists, err := s.claimRepo.GetByID(ctx, strings.TrimSpace(input.ClaimID))
	if err != nil {
		return waiver.Claim{}, fmt.Errorf("get waiver claim=%s: %w", input.ClaimID, err)
	}
	if !exists || claim.TeamID != input.TeamID {
		return waiver.Claim{}, newKindError(ErrNotFound, "waiver claim=%s", input.ClaimID)
	}
	team, err := s.rosterSvc.loadTeam(ctx, claim.TeamID)
	if err != nil {
		return waiver.Claim{}, err
	}
	if !team.OwnedBy(input.ActorID) {
		return waiver.Claim{}, newKindError(ErrPermission, "user does not own team=%s", team.ID)
	}

	// Once the player's window has closed the claim belongs to the resolver.
	now := s.now().UTC()
	if claim.IsPending() {
		target, exists, err := s.playerRepo.GetByID(ctx, claim.PlayerID)
		if err != nil {
			return waiver.Claim{}, fmt.Errorf("get player=%s: %w", claim.PlayerID, err)
		}
		if exists && target.WaiverExpiresAt != nil && !now.Before(*target.WaiverExpiresAt) {
			return waiver.Claim{}, newKindError(ErrState, "waiver window for player=%s closed at %s, claim=%s awaits resolution",
				target.ID, target.WaiverExpiresAt.UTC().Format(time.RFC3339), claim.ID)
		}
	}

	cancelled, err := claim.Cancel(now)
	if err != nil {
		return waiver.Claim{}, markKind(err, ErrState)
	}
	if err := s.claimRepo.Cancel(ctx, cancelled); err != nil {
		if errors.Is(err, waiver.ErrClaimNotPending) {
			return waiver.Claim{}, markKind(err, ErrState)
		}
		return waiver.Claim{}, fmt.Errorf("cancel waiver claim=%s: %w", claim.ID, err)
	}
	return cancelled, nil
}

// ListClaims returns the team's claims, newest first. Claims are private to the owner.
func (s *WaiverService) ListClaims(ctx context.Context, teamID, actorID string) ([]waiver.Claim, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaiverService.ListClaims")
	defer span.End()

	team, err := s.rosterSvc.loadTeam(ctx, strings.TrimSpace(teamID))
	if err != nil {
		return nil, err
	}
	if !team.OwnedBy(actorID) {
		return nil, newKindError(ErrPermission, "user does not own team=%s", team.ID)
	}
	claims, err := s.claimRepo.ListByTeam(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("list waiver claims team=%s: %w", team.ID, err)
	}
	sort.SliceStable(claims, func(i, j int) bool {
		return claims[i].CreatedAt.After(claims[j].CreatedAt)
	})
	return claims, nil
}

// ListWaivered returns unrostered league players currently inside a waiver window.
func (s *WaiverService) ListWaivered(ctx context.Context, leagueID string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaiverService.ListWaivered")
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
	out := make([]player.Player, 0)
	for _, p := range players {
		if _, ok := rostered[p.ID]; ok {
			continue
		}
		if p.OnWaivers(now) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].WaiverExpiresAt.Equal(*out[j].WaiverExpiresAt) {
			return out[i].WaiverExpiresAt.Before(*out[j].WaiverExpiresAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ResolveDailyBatch awards every player whose waiver window closed at or
// before cutoff. Players are resolved independently on a worker pool; a
// player already resolved for this cutoff is skipped so reruns are safe.
func (s *WaiverService) ResolveDailyBatch(ctx context.Context, cutoff time.Time) (BatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaiverService.ResolveDailyBatch")
	defer span.End()

	cutoff = cutoff.UTC()
	if cutoff.After(s.now().UTC()) {
		return BatchResult{}, newKindError(ErrValidation, "cutoff %s is in the future", cutoff.Format(time.RFC3339))
	}
	lockKey := "waivers:batch:" + cutoff.Format(time.RFC3339)
	unlock, acquired, err := s.locker.TryLock(ctx, lockKey, s.cfg.LockTTL)
	if err != nil {
		return BatchResult{}, markKind(fmt.Errorf("acquire waiver batch lock: %w", err), ErrDependencyUnavailable)
	}
	if !acquired {
		return BatchResult{}, newKindError(ErrState, "waiver batch for %s is already running", cutoff.Format(time.RFC3339))
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "release waiver batch lock failed", "key", lockKey, "error", err)
		}
	}()

	players, err := s.playerRepo.ListWaiverExpiring(ctx, cutoff)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list expiring waivers: %w", err)
	}
	sort.SliceStable(players, func(i, j int) bool {
		if !players[i].WaiverExpiresAt.Equal(*players[j].WaiverExpiresAt) {
			return players[i].WaiverExpiresAt.Before(*players[j].WaiverExpiresAt)
		}
		return players[i].ID < players[j].ID
	})

	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return BatchResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	outcomes := make([]PlayerOutcome, len(players))
	var awarded atomic.Int32
	var failed atomic.Int32

	var workers sync.WaitGroup
	for i, p := range players {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = PlayerOutcome{PlayerID: p.ID, Outcome: PlayerOutcomeFailed, Error: fmt.Sprint(r)}
					failed.Add(1)
				}
			}()

			outcome := s.resolvePlayer(ctx, p, cutoff)
			switch outcome.Outcome {
			case PlayerOutcomeAwarded:
				awarded.Add(1)
			case PlayerOutcomeFailed:
				failed.Add(1)
			}
			outcomes[i] = outcome
		}); err != nil {
			workers.Done()
			outcomes[i] = PlayerOutcome{PlayerID: p.ID, Outcome: PlayerOutcomeFailed, Error: err.Error()}
			failed.Add(1)
		}
	}
	workers.Wait()

	result := BatchResult{
		Cutoff:       cutoff,
		PlayerCount:  len(players),
		AwardedCount: int(awarded.Load()),
		FailedCount:  int(failed.Load()),
		Players:      outcomes,
	}
	s.logger.InfoContext(ctx, "waiver batch resolved",
		"cutoff", cutoff.Format(time.RFC3339),
		"players", result.PlayerCount,
		"awarded", result.AwardedCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

// resolvePlayer walks the player's claims in priority order and awards the
// first one that can be honored. An infrastructure error aborts only this
// player and leaves its claims pending for the next run.
func (s *WaiverService) resolvePlayer(ctx context.Context, p player.Player, cutoff time.Time) PlayerOutcome {
	outcome := PlayerOutcome{PlayerID: p.ID}
	fail := func(err error) PlayerOutcome {
		s.logger.ErrorContext(ctx, "resolve waiver player failed", "player_id", p.ID, "error", err)
		outcome.Outcome = PlayerOutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}

	resolved, err := s.claimRepo.IsResolved(ctx, p.ID, cutoff)
	if err != nil {
		return fail(fmt.Errorf("check resolution marker: %w", err))
	}
	if resolved {
		outcome.Outcome = PlayerOutcomeSkipped
		return outcome
	}

	claims, err := s.claimRepo.ListPendingByPlayer(ctx, p.ID)
	if err != nil {
		return fail(fmt.Errorf("list pending claims: %w", err))
	}
	waiver.SortForResolution(claims)
	outcome.ClaimCount = len(claims)

	now := s.now().UTC()
	finalized := make([]waiver.Claim, 0, len(claims))
	var winner *waiver.Claim
	for _, claim := range claims {
		if claim.CreatedAt.After(cutoff) {
			finalized = append(finalized, claim.Fail(waiver.ReasonWindowClosed, now))
			continue
		}
		if winner != nil {
			finalized = append(finalized, claim.Fail(waiver.ReasonOutbid, now))
			continue
		}

		err := s.rosterSvc.ApplyWaiverAward(ctx, WaiverAward{
			TeamID:   claim.TeamID,
			PlayerID: claim.PlayerID,
			Drop:     roster.DropFromOptional(&claim.DropPlayerID),
		})
		if err == nil {
			won := claim.Succeed(now)
			winner = &won
			finalized = append(finalized, won)
			continue
		}
		reason, business := failureReason(err)
		if !business {
			return fail(fmt.Errorf("apply claim=%s: %w", claim.ID, err))
		}
		s.logger.InfoContext(ctx, "waiver claim failed", "claim_id", claim.ID, "reason", reason)
		finalized = append(finalized, claim.Fail(reason, now))
	}

	resolution := waiver.Resolution{PlayerID: p.ID, Cutoff: cutoff, ResolvedAt: now}
	if winner != nil {
		resolution.WinnerClaimID = winner.ID
	}
	if err := s.claimRepo.CompleteResolution(ctx, resolution, finalized); err != nil {
		if errors.Is(err, waiver.ErrAlreadyResolved) {
			outcome.Outcome = PlayerOutcomeSkipped
			return outcome
		}
		return fail(fmt.Errorf("complete resolution: %w", err))
	}
	if err := s.playerRepo.SetWaiverExpiry(ctx, p.ID, nil); err != nil {
		return fail(fmt.Errorf("clear waiver expiry: %w", err))
	}

	switch {
	case winner != nil:
		outcome.Outcome = PlayerOutcomeAwarded
		outcome.WinnerClaimID = winner.ID
		outcome.WinnerTeamID = winner.TeamID
	case len(claims) == 0:
		outcome.Outcome = PlayerOutcomeUnclaimed
	default:
		outcome.Outcome = PlayerOutcomeNoWinner
	}
	return outcome
}

// failureReason maps a roster rejection onto a claim failure reason. The
// second result is false for errors that are not the claimant's fault.
func failureReason(err error) (string, bool) {
	switch {
	case errors.Is(err, roster.ErrVersionMismatch):
		return "", false
	case crerr.Is(err, ErrCapacity):
		return waiver.ReasonRosterFull, true
	case crerr.Is(err, ErrBudgetExceeded):
		return waiver.ReasonBudget, true
	case errors.Is(err, roster.ErrPlayerNotOnTeam):
		return waiver.ReasonDropMissing, true
	case crerr.Is(err, ErrNotFound):
		return waiver.ReasonTeamMissing, true
	case crerr.Is(err, ErrConflict):
		return waiver.ReasonPlayerTaken, true
	case crerr.Is(err, ErrValidation):
		return waiver.ReasonRosterInvalid, true
	default:
		return "", false
	}
}
