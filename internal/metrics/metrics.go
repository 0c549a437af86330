package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"teamhub/internal/store"
)

var (
	pendingProposalsDesc = prometheus.NewDesc(
		"teamhub_pending_proposals",
		"Number of maintenance proposals waiting for review",
		nil,
		nil,
	)

	proposals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "teamhub_proposals_total",
		Help: "Maintenance proposals by change type and outcome",
	}, []string{"change_type", "outcome"})

	directChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "teamhub_direct_changes_total",
		Help: "Directly applied changes by change type and outcome",
	}, []string{"change_type", "outcome"})
)

// Proposal and direct change outcomes.
const (
	OutcomeSubmitted = "submitted"
	OutcomeApproved  = "approved"
	OutcomeRejected  = "rejected"
	OutcomeApplied   = "applied"
	OutcomeFailed    = "failed"
)

// PendingCollector is a custom Prometheus collector that counts pending
// proposals in the store on each scrape.
type PendingCollector struct {
	store store.Store
}

// Describe sends the metric descriptor to the channel.
func (c *PendingCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- pendingProposalsDesc
}

// Collect queries the store for the pending proposal count.
func (c *PendingCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := c.store.Proposals().CountPending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to collect pending proposal metric")
		return
	}
	ch <- prometheus.MustNewConstMetric(pendingProposalsDesc, prometheus.GaugeValue, float64(n))
}

var initOnce sync.Once

// Init registers the collectors with the default registry.
// Must be called once at startup.
func Init(s store.Store) {
	initOnce.Do(func() {
		prometheus.MustRegister(proposals, directChanges, &PendingCollector{store: s})
	})
}

// RecordProposal counts a proposal lifecycle event.
func RecordProposal(changeType, outcome string) {
	proposals.WithLabelValues(changeType, outcome).Inc()
}

// RecordDirectChange counts a direct-apply attempt.
func RecordDirectChange(changeType, outcome string) {
	directChanges.WithLabelValues(changeType, outcome).Inc()
}
