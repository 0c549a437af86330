package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamhub/internal/models"
	"teamhub/internal/store/memory"
)

func TestPendingCollector(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	u := &models.User{Name: "Sam"}
	require.NoError(t, s.Users().Create(ctx, u))
	require.NoError(t, s.Proposals().Create(ctx, &models.Proposal{ChangeType: models.ChangeRobot, SubmittedBy: u.ID}))
	require.NoError(t, s.Proposals().Create(ctx, &models.Proposal{ChangeType: models.ChangeSponsor, SubmittedBy: u.ID}))

	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(&PendingCollector{store: s})

	expected := `
# HELP teamhub_pending_proposals Number of maintenance proposals waiting for review
# TYPE teamhub_pending_proposals gauge
teamhub_pending_proposals 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "teamhub_pending_proposals"))
}

func TestRecordProposal(t *testing.T) {
	before := testutil.ToFloat64(proposals.WithLabelValues("robot", OutcomeApproved))
	RecordProposal("robot", OutcomeApproved)
	assert.Equal(t, before+1, testutil.ToFloat64(proposals.WithLabelValues("robot", OutcomeApproved)))
}
