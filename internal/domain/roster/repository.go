package roster

import "context"

// Repository is the canonical store of team rosters.
type Repository interface {
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Team, error)
	List(ctx context.Context) ([]Team, error)
	// Save replaces the team's slots when the stored version equals team.Version
	// and returns the team with the new version. It fails with ErrVersionMismatch
	// or ErrPlayerOwned.
	Save(ctx context.Context, team Team) (Team, error)
	OwnerOf(ctx context.Context, leagueID, playerID string) (string, bool, error)
}
