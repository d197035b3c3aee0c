package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/roster-engine/internal/domain/draft"
	"github.com/riskibarqy/roster-engine/internal/domain/league"
	"github.com/riskibarqy/roster-engine/internal/domain/roster"
	"github.com/riskibarqy/roster-engine/internal/infrastructure/repository/memory"
)

func quickDraftLeague(rounds, pickSeconds int) league.League {
	return league.League{
		ID:             memory.LeagueIDDemo,
		Name:           "Quick Draft League",
		Season:         "2026/2027",
		CommissionerID: memory.DemoCommissioner,
		DraftRounds:    rounds,
		PickSeconds:    pickSeconds,
	}
}

func startDemoDraft(t *testing.T, f *engineFixture) DraftView {
	t.Helper()

	view, err := f.draft.Start(context.Background(), StartDraftInput{
		LeagueID: memory.LeagueIDDemo,
		ActorID:  memory.DemoCommissioner,
	})
	if err != nil {
		t.Fatalf("start draft: %v", err)
	}
	return view
}

func TestDraftService_Start_BuildsSnakeOrder(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t)
	view := startDemoDraft(t, f)

	if view.State.Status != draft.StatusActive {
		t.Fatalf("unexpected status: got=%s want=%s", view.State.Status, draft.StatusActive)
	}
	if got := view.State.TotalPicks(); got != 40 {
		t.Fatalf("unexpected pick count: got=%d want=40", got)
	}
	if view.OnTheClock == nil || view.OnTheClock.TeamID != teamBricklayers {
		t.Fatalf("unexpected team on the clock: %+v", view.OnTheClock)
	}
	if view.SecondsRemaining != 90 || view.CurrentRound != 1 {
		t.Fatalf("unexpected clock: seconds=%d round=%d", view.SecondsRemaining, view.CurrentRound)
	}

	wantTeams := map[int]string{
		1: teamBricklayers,
		4: teamPickAndPop,
		5: teamPickAndPop,
		8: teamBricklayers,
		9: teamBricklayers,
	}
	for number, teamID := range wantTeams {
		if got := view.State.Picks[number-1].TeamID; got != teamID {
			t.Fatalf("unexpected team for pick %d: got=%s want=%s", number, got, teamID)
		}
	}
}

func TestDraftService_Start_Rejections(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("not the commissioner", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.draft.Start(ctx, StartDraftInput{LeagueID: memory.LeagueIDDemo, ActorID: ownerGlassCleaners})
		requireKind(t, err, KindPermission)
	})

	t.Run("unknown league", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.draft.Start(ctx, StartDraftInput{LeagueID: "league-missing", ActorID: memory.DemoCommissioner})
		requireKind(t, err, KindNotFound)
	})

	t.Run("already started", func(t *testing.T) {
		f := newEngineFixture(t)
		startDemoDraft(t, f)
		_, err := f.draft.Start(ctx, StartDraftInput{LeagueID: memory.LeagueIDDemo, ActorID: memory.DemoCommissioner})
		requireKind(t, err, KindState)
	})

	t.Run("league without teams", func(t *testing.T) {
		empty := league.League{ID: "league-empty", Name: "Empty", CommissionerID: "user-9"}
		f := newEngineFixture(t, empty)
		_, err := f.draft.Start(ctx, StartDraftInput{LeagueID: empty.ID, ActorID: "user-9"})
		requireKind(t, err, KindState)
	})

	t.Run("rounds overflow a roster", func(t *testing.T) {
		f := newEngineFixture(t)
		f.seedRoster(t, teamGlassCleaners, 0, "demo-p48")
		_, err := f.draft.Start(ctx, StartDraftInput{LeagueID: memory.LeagueIDDemo, ActorID: memory.DemoCommissioner})
		requireKind(t, err, KindValidation)
	})
}

func TestDraftService_SubmitPick(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newEngineFixture(t)
	startDemoDraft(t, f)

	_, err := f.draft.SubmitPick(ctx, SubmitPickInput{
		LeagueID: memory.LeagueIDDemo,
		TeamID:   teamGlassCleaners,
		ActorID:  ownerGlassCleaners,
		PlayerID: "demo-p10",
	})
	requireKind(t, err, KindPermission)

	_, err = f.draft.SubmitPick(ctx, SubmitPickInput{
		LeagueID: memory.LeagueIDDemo,
		TeamID:   teamBricklayers,
		ActorID:  ownerGlassCleaners,
		PlayerID: "demo-p10",
	})
	requireKind(t, err, KindPermission)

	_, err = f.draft.SubmitPick(ctx, SubmitPickInput{
		LeagueID: memory.LeagueIDDemo,
		TeamID:   teamBricklayers,
		ActorID:  ownerBricklayers,
		PlayerID: "demo-p99",
	})
	requireKind(t, err, KindNotFound)

	f.clock.Advance(20 * time.Second)
	view, err := f.draft.SubmitPick(ctx, SubmitPickInput{
		LeagueID: memory.LeagueIDDemo,
		TeamID:   teamBricklayers,
		ActorID:  ownerBricklayers,
		PlayerID: "demo-p10",
	})
	if err != nil {
		t.Fatalf("submit pick: %v", err)
	}
	first := view.State.Picks[0]
	if first.PlayerID != "demo-p10" || first.AutoPicked || first.MadeAt == nil {
		t.Fatalf("unexpected first pick: %+v", first)
	}
	if view.OnTheClock == nil || view.OnTheClock.TeamID != teamGlassCleaners {
		t.Fatalf("unexpected team on the clock: %+v", view.OnTheClock)
	}
	if view.SecondsRemaining != 90 {
		t.Fatalf("pick timer not reset: got=%d want=90", view.SecondsRemaining)
	}

	_, err = f.draft.SubmitPick(ctx, SubmitPickInput{
		LeagueID: memory.LeagueIDDemo,
		TeamID:   teamGlassCleaners,
		ActorID:  ownerGlassCleaners,
		PlayerID: "demo-p10",
	})
	requireKind(t, err, KindConflict)

	available, err := f.draft.AvailablePlayers(ctx, memory.LeagueIDDemo)
	if err != nil {
		t.Fatalf("available players: %v", err)
	}
	if len(available) != 47 || available[0].ID != "demo-p01" {
		t.Fatalf("unexpected available players: count=%d head=%s", len(available), available[0].ID)
	}
	for _, p := range available {
		if p.ID == "demo-p10" {
			t.Fatalf("drafted player still listed as available")
		}
	}
}

func TestDraftService_Tick_AutoPicksBestAvailableAfterDeadline(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newEngineFixture(t)
	startDemoDraft(t, f)

	f.clock.Advance(89 * time.Second)
	result, err := f.draft.Tick(ctx, memory.LeagueIDDemo)
	if err != nil {
		t.Fatalf("tick before deadline: %v", err)
	}
	if result.AutoPicked {
		t.Fatalf("auto-picked before the deadline")
	}

	f.clock.Advance(time.Second)
	result, err = f.draft.Tick(ctx, memory.LeagueIDDemo)
	if err != nil {
		t.Fatalf("tick at deadline: %v", err)
	}
	if !result.AutoPicked || result.Pick.Number != 1 {
		t.Fatalf("unexpected tick result: %+v", result)
	}
	if result.Pick.PlayerID != "demo-p01" || result.Pick.TeamID != teamBricklayers || !result.Pick.AutoPicked {
		t.Fatalf("unexpected auto-pick: %+v", result.Pick)
	}

	view, err := f.draft.Get(ctx, memory.LeagueIDDemo)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if view.State.CurrentPick != 2 || view.SecondsRemaining != 90 {
		t.Fatalf("unexpected draft after auto-pick: pick=%d seconds=%d", view.State.CurrentPick, view.SecondsRemaining)
	}
}

func TestDraftService_ManualPickAndTimerRaceRecordOnePick(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newEngineFixture(t)
	startDemoDraft(t, f)
	f.clock.Advance(90 * time.Second)

	var (
		wg        sync.WaitGroup
		submitErr error
		tick      TickResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, submitErr = f.draft.SubmitPick(ctx, SubmitPickInput{
			LeagueID: memory.LeagueIDDemo,
			TeamID:   teamBricklayers,
			ActorID:  ownerBricklayers,
			PlayerID: "demo-p20",
		})
	}()
	go func() {
		defer wg.Done()
		tick, _ = f.draft.Tick(ctx, memory.LeagueIDDemo)
	}()
	wg.Wait()

	state, _, err := f.drafts.GetByLeague(ctx, memory.LeagueIDDemo)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	made := 0
	for _, pick := range state.Picks {
		if pick.Made() {
			made++
		}
	}
	if made != 1 || state.CurrentPick != 2 {
		t.Fatalf("unexpected draft after race: made=%d current=%d", made, state.CurrentPick)
	}
	if (submitErr == nil) == tick.AutoPicked {
		t.Fatalf("expected exactly one winner: submitErr=%v autoPicked=%v", submitErr, tick.AutoPicked)
	}
}

func TestDraftService_PauseResume_FreezesTimer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newEngineFixture(t)
	startDemoDraft(t, f)
	control := DraftControlInput{LeagueID: memory.LeagueIDDemo, ActorID: memory.DemoCommissioner}

	_, err := f.draft.Pause(ctx, DraftControlInput{LeagueID: memory.LeagueIDDemo, ActorID: ownerGlassCleaners})
	requireKind(t, err, KindPermission)

	f.clock.Advance(30 * time.Second)
	view, err := f.draft.Pause(ctx, control)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if view.State.Status != draft.StatusPaused || view.SecondsRemaining != 60 {
		t.Fatalf("unexpected paused draft: status=%s seconds=%d", view.State.Status, view.SecondsRemaining)
	}

	_, err = f.draft.Pause(ctx, control)
	requireKind(t, err, KindState)

	f.clock.Advance(10 * time.Minute)
	result, err := f.draft.Tick(ctx, memory.LeagueIDDemo)
	if err != nil {
		t.Fatalf("tick while paused: %v", err)
	}
	if result.AutoPicked {
		t.Fatalf("auto-picked while paused")
	}
	_, err = f.draft.SubmitPick(ctx, SubmitPickInput{
		LeagueID: memory.LeagueIDDemo,
		TeamID:   teamBricklayers,
		ActorID:  ownerBricklayers,
		PlayerID: "demo-p01",
	})
	requireKind(t, err, KindState)

	view, err = f.draft.Resume(ctx, control)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if view.State.Status != draft.StatusActive || view.SecondsRemaining != 60 {
		t.Fatalf("unexpected resumed draft: status=%s seconds=%d", view.State.Status, view.SecondsRemaining)
	}

	_, err = f.draft.Resume(ctx, control)
	requireKind(t, err, KindState)
}

func TestDraftService_Completion_AssignsRosters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newEngineFixture(t, quickDraftLeague(2, 30))
	startDemoDraft(t, f)

	for i := 0; i < 8; i++ {
		f.clock.Advance(30 * time.Second)
		if _, err := f.draft.Tick(ctx, memory.LeagueIDDemo); err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
	}

	state, _, err := f.drafts.GetByLeague(ctx, memory.LeagueIDDemo)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if state.Status != draft.StatusCompleted || state.CompletedAt == nil || !state.RostersAssigned {
		t.Fatalf("unexpected final draft: status=%s assigned=%v", state.Status, state.RostersAssigned)
	}

	wantRosters := map[string][]string{
		teamBricklayers:   {"demo-p01", "demo-p08"},
		teamGlassCleaners: {"demo-p02", "demo-p07"},
		teamBackdoorCuts:  {"demo-p03", "demo-p06"},
		teamPickAndPop:    {"demo-p04", "demo-p05"},
	}
	for teamID, want := range wantRosters {
		team := f.team(t, teamID)
		if !sameSet(team.PlayerIDs(), want) {
			t.Fatalf("unexpected roster for team=%s: got=%v want=%v", teamID, team.PlayerIDs(), want)
		}
		for _, slot := range team.Slots {
			if slot.AcquiredVia != roster.AcquiredDraft || !slot.IsStarter {
				t.Fatalf("unexpected drafted slot for team=%s: %+v", teamID, slot)
			}
		}
		if got := f.movesUsed(t, teamID); got != 0 {
			t.Fatalf("draft spent move budget for team=%s: %d", teamID, got)
		}
	}

	_, err = f.draft.SubmitPick(ctx, SubmitPickInput{
		LeagueID: memory.LeagueIDDemo,
		TeamID:   teamBricklayers,
		ActorID:  ownerBricklayers,
		PlayerID: "demo-p09",
	})
	requireKind(t, err, KindState)
}

func TestDraftService_RosterChangesWaitForCompletion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newEngineFixture(t)
	f.putOnWaivers(t, "demo-p48", fixtureNow.Add(2*time.Hour))
	startDemoDraft(t, f)

	_, err := f.roster.AddPlayer(ctx, AddPlayerInput{TeamID: teamBricklayers, ActorID: ownerBricklayers, PlayerID: "demo-p47"})
	requireKind(t, err, KindState)
	_, err = f.roster.SetStarters(ctx, SetStartersInput{TeamID: teamBricklayers, ActorID: ownerBricklayers, PlayerIDs: seedPlayerIDs(1, 5)})
	requireKind(t, err, KindState)
	_, err = f.waiver.SubmitClaim(ctx, SubmitClaimInput{TeamID: teamBricklayers, ActorID: ownerBricklayers, PlayerID: "demo-p48", Priority: 1})
	requireKind(t, err, KindState)

	total := league.DefaultDraftRounds * 4
	for i := 0; i < total; i++ {
		f.clock.Advance(time.Duration(league.DefaultPickSeconds) * time.Second)
		if _, err := f.draft.Tick(ctx, memory.LeagueIDDemo); err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
	}

	state, _, err := f.drafts.GetByLeague(ctx, memory.LeagueIDDemo)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if state.Status != draft.StatusCompleted || !state.RostersAssigned {
		t.Fatalf("unexpected final draft: status=%s assigned=%v", state.Status, state.RostersAssigned)
	}
	for _, teamID := range []string{teamBricklayers, teamGlassCleaners, teamBackdoorCuts, teamPickAndPop} {
		if got := len(f.team(t, teamID).Slots); got != league.DefaultDraftRounds {
			t.Fatalf("unexpected roster size for team=%s: got=%d want=%d", teamID, got, league.DefaultDraftRounds)
		}
	}

	// With the rosters written, the usual capacity rules apply again.
	drafted := state.DraftedPlayerIDs()
	undrafted := ""
	for _, p := range memory.SeedPlayers() {
		if _, ok := drafted[p.ID]; !ok && p.ID != "demo-p48" {
			undrafted = p.ID
			break
		}
	}
	_, err = f.roster.AddPlayer(ctx, AddPlayerInput{TeamID: teamBricklayers, ActorID: ownerBricklayers, PlayerID: undrafted})
	requireKind(t, err, KindCapacity)
}
