package roster

import (
	"errors"
	"fmt"
	"testing"
)

func fullTeam() Team {
	team := Team{ID: "t1", LeagueID: "l1", OwnerID: "u1"}
	for i := 0; i < MaxSlots; i++ {
		team.Slots = append(team.Slots, Slot{PlayerID: fmt.Sprintf("p%d", i), Position: "G", IsStarter: i < StarterCount})
	}
	return team
}

func TestTeam_ApplyAdd(t *testing.T) {
	tests := []struct {
		name      string
		team      Team
		drop      DropChoice
		targetErr error
		wantSize  int
	}{
		{name: "room without drop", team: Team{ID: "t1", LeagueID: "l1", OwnerID: "u1"}, drop: NoDrop(), wantSize: 1},
		{name: "full without drop", team: fullTeam(), drop: NoDrop(), targetErr: ErrRosterFull},
		{name: "full with drop", team: fullTeam(), drop: DropPlayer("p3"), wantSize: MaxSlots},
		{name: "drop not on roster", team: fullTeam(), drop: DropPlayer("nobody"), targetErr: ErrPlayerNotOnTeam},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			team := tc.team.Clone()
			dropped, err := team.ApplyAdd(Slot{PlayerID: "new", Position: "F"}, tc.drop)
			if tc.targetErr != nil {
				if !errors.Is(err, tc.targetErr) {
					t.Fatalf("expected %v, got %v", tc.targetErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(team.Slots) != tc.wantSize {
				t.Fatalf("unexpected size: got=%d want=%d", len(team.Slots), tc.wantSize)
			}
			if tc.drop.IsDrop() && (dropped == nil || team.HasPlayer(dropped.PlayerID)) {
				t.Fatalf("expected dropped player to leave the roster")
			}
		})
	}
}

func TestTeam_CloneDoesNotShareSlots(t *testing.T) {
	team := fullTeam()
	clone := team.Clone()
	if _, err := clone.RemoveSlot("p0"); err != nil {
		t.Fatalf("remove slot: %v", err)
	}
	if !team.HasPlayer("p0") || len(team.Slots) != MaxSlots {
		t.Fatalf("original team must be untouched")
	}
}

func TestTeam_SetStarters(t *testing.T) {
	team := fullTeam()
	if err := team.SetStarters([]string{"p5", "p6", "p7", "p8", "p9"}); err != nil {
		t.Fatalf("set starters: %v", err)
	}
	got := team.StarterIDs()
	if len(got) != StarterCount || got[0] != "p5" {
		t.Fatalf("unexpected starters: %v", got)
	}

	if err := team.SetStarters([]string{"p1", "p1"}); !errors.Is(err, ErrDuplicatePlayer) {
		t.Fatalf("expected ErrDuplicatePlayer, got %v", err)
	}
	if err := team.SetStarters([]string{"ghost"}); !errors.Is(err, ErrPlayerNotOnTeam) {
		t.Fatalf("expected ErrPlayerNotOnTeam, got %v", err)
	}
}

func TestDropFromOptional(t *testing.T) {
	blank := "  "
	id := "p2"
	if DropFromOptional(nil).IsDrop() || DropFromOptional(&blank).IsDrop() {
		t.Fatalf("expected no drop for nil or blank input")
	}
	got, ok := DropFromOptional(&id).PlayerID()
	if !ok || got != "p2" {
		t.Fatalf("expected drop of p2, got %q ok=%t", got, ok)
	}
}
