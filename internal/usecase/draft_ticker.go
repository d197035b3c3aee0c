package usecase

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/roster-engine/internal/domain/draft"
	"github.com/riskibarqy/roster-engine/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// DraftTicker drives pick timers. Deadlines live in the draft record, so a
// restarted process picks up expired timers on its first sweep.
type DraftTicker struct {
	drafts      *DraftService
	repo        draft.Repository
	clock       clockwork.Clock
	interval    time.Duration
	concurrency int
	logger      *logging.Logger
}

func NewDraftTicker(drafts *DraftService, repo draft.Repository, clock clockwork.Clock, interval time.Duration, logger *logging.Logger) *DraftTicker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DraftTicker{
		drafts:      drafts,
		repo:        repo,
		clock:       clock,
		interval:    interval,
		concurrency: 4,
		logger:      logger,
	}
}

func (t *DraftTicker) Run(ctx context.Context) error {
	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.InfoContext(ctx, "draft ticker started", "interval", t.interval.String())
	for {
		select {
		case <-ctx.Done():
			t.logger.InfoContext(ctx, "draft ticker stopped")
			return nil
		case <-ticker.Chan():
			t.Sweep(ctx)
		}
	}
}

// Sweep ticks every draft with an expired timer or pending roster assignment
// and returns how many auto-picks were made.
func (t *DraftTicker) Sweep(ctx context.Context) int {
	states, err := t.repo.ListByStatus(ctx, draft.StatusActive, draft.StatusCompleted)
	if err != nil {
		t.logger.ErrorContext(ctx, "list drafts for tick failed", "error", err)
		return 0
	}

	now := t.clock.Now()
	p := pool.NewWithResults[bool]().WithMaxGoroutines(t.concurrency)
	for _, state := range states {
		due := state.Expired(now) || (state.Status == draft.StatusCompleted && !state.RostersAssigned)
		if !due {
			continue
		}
		leagueID := state.LeagueID
		p.Go(func() bool {
			result, err := t.drafts.Tick(ctx, leagueID)
			if err != nil {
				if crerr.Is(err, ErrState) {
					t.logger.DebugContext(ctx, "draft tick lost race", "league_id", leagueID, "error", err)
					return false
				}
				t.logger.ErrorContext(ctx, "draft tick failed", "league_id", leagueID, "error", err)
				return false
			}
			return result.AutoPicked
		})
	}

	picks := 0
	for _, picked := range p.Wait() {
		if picked {
			picks++
		}
	}
	return picks
}
