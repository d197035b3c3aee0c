package league

import "context"

// Repository loads league settings. Leagues are provisioned out of band, so
// the engine never writes them.
type Repository interface {
	List(ctx context.Context) ([]League, error)
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
}
