// Package jobs holds background loops started by the server.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"teamhub/internal/maintenance"
	"teamhub/internal/models"
	"teamhub/internal/store"
)

// DigestSender delivers the pending-proposal digest.
type DigestSender interface {
	NotifyPendingDigest(ctx context.Context, items []maintenance.Item)
}

// PendingDigest periodically reminds reviewers about proposals that have
// been waiting longer than minAge.
type PendingDigest struct {
	store    store.Store
	sender   DigestSender
	interval time.Duration
	minAge   time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewPendingDigest creates a digest job.
func NewPendingDigest(st store.Store, sender DigestSender, interval, minAge time.Duration, log zerolog.Logger) *PendingDigest {
	return &PendingDigest{
		store:    st,
		sender:   sender,
		interval: interval,
		minAge:   minAge,
		log:      log.With().Str("job", "pending_digest").Logger(),
		now:      time.Now,
	}
}

// Start runs the digest loop until ctx is cancelled. The first digest goes
// out after one interval, not at startup.
func (d *PendingDigest) Start(ctx context.Context) {
	if d.interval <= 0 {
		d.log.Info().Msg("pending digest disabled")
		return
	}
	d.log.Info().Dur("interval", d.interval).Dur("min_age", d.minAge).Msg("pending digest started")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("pending digest stopped")
			return
		case <-ticker.C:
			if _, err := d.RunOnce(ctx); err != nil {
				d.log.Error().Err(err).Msg("pending digest failed")
			}
		}
	}
}

// RunOnce sends a digest of stale pending proposals, returning how many it
// included.
func (d *PendingDigest) RunOnce(ctx context.Context) (int, error) {
	pending, err := d.store.Proposals().List(ctx, store.ProposalFilter{Status: models.StatusPending})
	if err != nil {
		return 0, err
	}

	cutoff := d.now().Add(-d.minAge)
	var items []maintenance.Item
	for i := range pending {
		p := &pending[i]
		if p.CreatedAt.After(cutoff) {
			continue
		}
		items = append(items, maintenance.Item{Proposal: *p, Summary: maintenance.Summarize(p)})
	}
	if len(items) == 0 {
		return 0, nil
	}

	d.log.Info().Int("count", len(items)).Msg("sending pending digest")
	d.sender.NotifyPendingDigest(ctx, items)
	return len(items), nil
}
