package ledger

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ngo-connect/donation-portal/donation-portal-backend/internal/campaign"
)

// MismatchSource reports campaigns whose aggregate disagrees with their
// contribution sum.
type MismatchSource interface {
	FindLedgerMismatches(ctx context.Context) ([]campaign.LedgerMismatch, error)
}

// Auditor periodically re-checks the additivity invariant across all
// campaigns and logs any violation for operator investigation.
type Auditor struct {
	source MismatchSource
	logger *zap.Logger
	cron   *cron.Cron
}

func NewAuditor(source MismatchSource, logger *zap.Logger) *Auditor {
	return &Auditor{
		source: source,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start schedules the hourly audit. The first run happens on schedule, not
// immediately.
func (a *Auditor) Start() error {
	_, err := a.cron.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := a.RunOnce(ctx); err != nil {
			a.logger.Error("ledger audit failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	a.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running audit to finish.
func (a *Auditor) Stop() {
	<-a.cron.Stop().Done()
}

// RunOnce performs a single audit pass.
func (a *Auditor) RunOnce(ctx context.Context) error {
	mismatches, err := a.source.FindLedgerMismatches(ctx)
	if err != nil {
		return err
	}
	for _, m := range mismatches {
		a.logger.Error("ledger inconsistency detected",
			zap.String("campaign_id", m.CampaignID.String()),
			zap.Int64("amount_collected", m.AmountCollected),
			zap.Int64("contribution_sum", m.ContributionSum))
	}
	if len(mismatches) == 0 {
		a.logger.Debug("ledger audit clean")
	}
	return nil
}
