package memory

import (
	"fmt"

	"github.com/riskibarqy/roster-engine/internal/domain/league"
	"github.com/riskibarqy/roster-engine/internal/domain/player"
	"github.com/riskibarqy/roster-engine/internal/domain/roster"
)

const (
	LeagueIDDemo     = "demo-hoops-2026"
	DemoCommissioner = "user-commissioner"
)

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:             LeagueIDDemo,
			Name:           "Demo Hoops League",
			Season:         "2026/2027",
			CommissionerID: DemoCommissioner,
			DraftRounds:    league.DefaultDraftRounds,
			PickSeconds:    league.DefaultPickSeconds,
		},
	}
}

func SeedTeams() []roster.Team {
	return []roster.Team{
		{ID: "team-bricklayers", LeagueID: LeagueIDDemo, OwnerID: DemoCommissioner, Name: "Bricklayers", DraftPosition: 1},
		{ID: "team-glass-cleaners", LeagueID: LeagueIDDemo, OwnerID: "user-2", Name: "Glass Cleaners", DraftPosition: 2},
		{ID: "team-backdoor-cuts", LeagueID: LeagueIDDemo, OwnerID: "user-3", Name: "Backdoor Cuts", DraftPosition: 3},
		{ID: "team-pick-and-pop", LeagueID: LeagueIDDemo, OwnerID: "user-4", Name: "Pick and Pop", DraftPosition: 4},
	}
}

var seedPlayerRows = []struct {
	name     string
	position string
	proTeam  string
	average  float64
}{
	{"Marcus Vell", "G", "Harbor Hawks", 48.2},
	{"Dante Ruiz", "G-F", "Mesa Suns", 46.9},
	{"Theo Amari", "C", "Lake Lions", 46.1},
	{"Jalen Brooks", "F", "Capital Caps", 45.4},
	{"Omar Keats", "F-C", "Harbor Hawks", 44.8},
	{"Rico Lang", "G", "Delta Drift", 43.5},
	{"Samir Ode", "C", "Ridge Rams", 42.7},
	{"Niko Pratt", "G", "Lake Lions", 41.9},
	{"Evan Holt", "F", "Mesa Suns", 41.2},
	{"Kofi Mensah", "G-F", "Ridge Rams", 40.6},
	{"Luka Varga", "F-C", "Capital Caps", 39.8},
	{"Isaiah Drum", "G", "Delta Drift", 39.1},
	{"Bram Otto", "C", "Harbor Hawks", 38.4},
	{"Tyrese Moss", "G", "Capital Caps", 37.9},
	{"Andre Silva", "F", "Lake Lions", 37.3},
	{"Yusuf Kane", "F-C", "Mesa Suns", 36.6},
	{"Cole Whitman", "G", "Ridge Rams", 36.0},
	{"Pavel Novak", "C", "Delta Drift", 35.5},
	{"Malik Grant", "G-F", "Harbor Hawks", 34.9},
	{"Reggie Fox", "F", "Ridge Rams", 34.2},
	{"Dev Patel", "G", "Mesa Suns", 33.8},
	{"Hugo Lind", "F-C", "Lake Lions", 33.1},
	{"Quinn Ashby", "G", "Capital Caps", 32.5},
	{"Zeke Morrow", "C", "Capital Caps", 31.9},
	{"Felix Adeyemi", "F", "Delta Drift", 31.4},
	{"Gabe Ortiz", "G", "Harbor Hawks", 30.8},
	{"Ian Cho", "G-F", "Lake Lions", 30.1},
	{"Jonah Reyes", "F", "Mesa Suns", 29.7},
	{"Kai Sorensen", "C", "Ridge Rams", 29.0},
	{"Leo Baptiste", "G", "Delta Drift", 28.4},
	{"Max Ferreira", "F-C", "Harbor Hawks", 27.9},
	{"Nate Quarles", "G", "Ridge Rams", 27.3},
	{"Oscar Lund", "F", "Capital Caps", 26.8},
	{"Pete Galloway", "C", "Mesa Suns", 26.2},
	{"Ray Okafor", "G", "Lake Lions", 25.6},
	{"Sid Harlan", "F", "Delta Drift", 25.1},
	{"Tom Eriksen", "G-F", "Capital Caps", 24.5},
	{"Umar Bello", "C", "Harbor Hawks", 24.0},
	{"Vic Santos", "G", "Mesa Suns", 23.4},
	{"Wes Carver", "F-C", "Ridge Rams", 22.9},
	{"Xavi Duarte", "G", "Delta Drift", 22.3},
	{"Yan Petrov", "F", "Lake Lions", 21.8},
	{"Zion Hale", "G", "Capital Caps", 21.2},
	{"Aaron Pike", "C", "Delta Drift", 20.7},
	{"Ben Farrow", "F", "Harbor Hawks", 20.1},
	{"Cal Mercer", "G", "Ridge Rams", 19.6},
	{"Dom Achebe", "F-C", "Mesa Suns", 19.0},
	{"Eli Norgaard", "G-F", "Lake Lions", 18.5},
}

func SeedPlayers() []player.Player {
	out := make([]player.Player, 0, len(seedPlayerRows))
	for i, row := range seedPlayerRows {
		out = append(out, player.Player{
			ID:            fmt.Sprintf("demo-p%02d", i+1),
			LeagueID:      LeagueIDDemo,
			FullName:      row.name,
			Position:      row.position,
			ProTeam:       row.proTeam,
			SeasonAverage: row.average,
		})
	}
	return out
}
