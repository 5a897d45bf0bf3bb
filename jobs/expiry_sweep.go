package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-crm/meridian-crm/internal/quotation"
)

// SweepExpiredQuotations reconciles stored statuses with the derived expiry:
// SENT quotations past their validity get their row flipped to EXPIRED so
// listings and reports agree with what the public link already shows. The
// sweep is a catch-up, not the source of truth; reads derive expiry on their
// own regardless of when the sweep last ran.
func SweepExpiredQuotations(ctx context.Context, repo quotation.Repository, logger *slog.Logger, now time.Time) error {
	orgs, err := repo.OrgsWithDueQuotations(ctx, now)
	if err != nil {
		if logger != nil {
			logger.Error("expiry sweep: list orgs", slog.Any("error", err))
		}
		return err
	}
	if len(orgs) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, orgID := range orgs {
		orgID := orgID
		g.Go(func() error {
			n, err := repo.ExpireDue(ctx, orgID, now)
			if err != nil {
				if logger != nil {
					logger.Error("expiry sweep", slog.Int64("org_id", orgID), slog.Any("error", err))
				}
				return err
			}
			if n > 0 && logger != nil {
				logger.Info("expired quotations", slog.Int64("org_id", orgID), slog.Int64("count", n))
			}
			return nil
		})
	}
	return g.Wait()
}

// NewExpirySweepHandler adapts the sweep into an Asynq task handler.
func NewExpirySweepHandler(repo quotation.Repository, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		return SweepExpiredQuotations(ctx, repo, logger, time.Now())
	}
}
