package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/roster-engine/internal/domain/league"
	"github.com/riskibarqy/roster-engine/internal/domain/roster"
	"github.com/riskibarqy/roster-engine/internal/domain/waiver"
	"github.com/riskibarqy/roster-engine/internal/infrastructure/lock"
	"github.com/riskibarqy/roster-engine/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/roster-engine/internal/platform/logging"
)

// Wednesday of ISO week 2026-W42, nine hours after the 03:00 cutoff.
var fixtureNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

var fixtureCutoff = waiver.DailyCutoff{Hour: 3}

const (
	teamBricklayers   = "team-bricklayers"
	teamGlassCleaners = "team-glass-cleaners"
	teamBackdoorCuts  = "team-backdoor-cuts"
	teamPickAndPop    = "team-pick-and-pop"

	ownerBricklayers   = memory.DemoCommissioner
	ownerGlassCleaners = "user-2"
	ownerBackdoorCuts  = "user-3"
)

type sequenceIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next), nil
}

type engineFixture struct {
	clock    *clockwork.FakeClock
	leagues  *memory.LeagueRepository
	teams    *memory.TeamRepository
	players  *memory.PlayerRepository
	budgets  *memory.MoveBudgetRepository
	claims   *memory.WaiverRepository
	drafts   *memory.DraftRepository
	dispatch *memory.JobDispatchRepository
	locker   *lock.MemoryLocker

	budget *MoveBudgetService
	roster *RosterService
	draft  *DraftService
	waiver *WaiverService
	jobs   *JobOrchestratorService
}

// newEngineFixture wires every service over the in-memory repositories and a
// fake clock. Without explicit leagues the demo league is used.
func newEngineFixture(t *testing.T, leagues ...league.League) *engineFixture {
	t.Helper()

	if len(leagues) == 0 {
		leagues = memory.SeedLeagues()
	}
	clock := clockwork.NewFakeClockAt(fixtureNow)
	logger := logging.NewNop()

	f := &engineFixture{
		clock:    clock,
		leagues:  memory.NewLeagueRepository(leagues),
		teams:    memory.NewTeamRepository(memory.SeedTeams()),
		players:  memory.NewPlayerRepository(memory.SeedPlayers()),
		budgets:  memory.NewMoveBudgetRepository(),
		claims:   memory.NewWaiverRepository(),
		drafts:   memory.NewDraftRepository(),
		dispatch: memory.NewJobDispatchRepository(),
		locker:   lock.NewMemoryLocker(clock),
	}

	f.budget = NewMoveBudgetService(f.budgets, f.teams, logger)
	f.budget.now = clock.Now
	f.roster = NewRosterService(f.teams, f.players, f.drafts, f.budget, RosterConfig{
		WaiverPeriod: 24 * time.Hour,
		WaiverCutoff: fixtureCutoff,
	}, logger)
	f.roster.now = clock.Now
	f.draft = NewDraftService(f.leagues, f.teams, f.players, f.drafts, f.roster, &sequenceIDs{prefix: "draft"}, DraftConfig{
		DefaultRounds:      league.DefaultDraftRounds,
		DefaultPickSeconds: league.DefaultPickSeconds,
	}, clock, logger)
	f.waiver = NewWaiverService(f.teams, f.players, f.claims, f.roster, f.locker, &sequenceIDs{prefix: "claim"}, WaiverConfig{
		Cutoff:  fixtureCutoff,
		Workers: 2,
		LockTTL: time.Minute,
	}, logger)
	f.waiver.now = clock.Now
	f.jobs = NewJobOrchestratorService(f.waiver, f.budget, nil, f.dispatch, JobOrchestratorConfig{WaiverCutoff: fixtureCutoff}, logger)
	f.jobs.now = clock.Now
	return f
}

// seedRoster stores playerIDs on the team directly; the first starters of
// them are flagged as starters.
func (f *engineFixture) seedRoster(t *testing.T, teamID string, starters int, playerIDs ...string) roster.Team {
	t.Helper()

	ctx := context.Background()
	team, exists, err := f.teams.GetByID(ctx, teamID)
	if err != nil || !exists {
		t.Fatalf("load team=%s: exists=%v err=%v", teamID, exists, err)
	}
	for i, playerID := range playerIDs {
		p, ok, err := f.players.GetByID(ctx, playerID)
		if err != nil || !ok {
			t.Fatalf("load player=%s: exists=%v err=%v", playerID, ok, err)
		}
		team.Slots = append(team.Slots, roster.Slot{
			PlayerID:    playerID,
			Position:    p.Position,
			IsStarter:   i < starters,
			AcquiredVia: roster.AcquiredDraft,
			AcquiredAt:  fixtureNow.Add(-72 * time.Hour),
		})
	}
	saved, err := f.teams.Save(ctx, team)
	if err != nil {
		t.Fatalf("seed roster team=%s: %v", teamID, err)
	}
	return saved
}

func (f *engineFixture) putOnWaivers(t *testing.T, playerID string, expiresAt time.Time) {
	t.Helper()

	if err := f.players.SetWaiverExpiry(context.Background(), playerID, &expiresAt); err != nil {
		t.Fatalf("put player=%s on waivers: %v", playerID, err)
	}
}

func (f *engineFixture) team(t *testing.T, teamID string) roster.Team {
	t.Helper()

	team, exists, err := f.teams.GetByID(context.Background(), teamID)
	if err != nil || !exists {
		t.Fatalf("load team=%s: exists=%v err=%v", teamID, exists, err)
	}
	return team
}

func (f *engineFixture) movesUsed(t *testing.T, teamID string) int {
	t.Helper()

	counter, err := f.budget.Status(context.Background(), teamID)
	if err != nil {
		t.Fatalf("budget status team=%s: %v", teamID, err)
	}
	return counter.Moves
}

func seedPlayerIDs(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, fmt.Sprintf("demo-p%02d", i))
	}
	return out
}

func requireKind(t *testing.T, err error, want string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := ErrorKind(err); got != want {
		t.Fatalf("unexpected error kind: got=%s want=%s err=%v", got, want, err)
	}
}
