package maintenance

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wI2L/jsondiff"

	"teamhub/internal/authz"
	"teamhub/internal/metrics"
	"teamhub/internal/models"
	"teamhub/internal/store"
	"teamhub/internal/validation"
)

// Notifier is told about proposal lifecycle events. Implementations must not
// block the caller.
type Notifier interface {
	NotifyProposalSubmitted(ctx context.Context, p *models.Proposal, submitter *models.User)
	NotifyProposalReviewed(ctx context.Context, p *models.Proposal, reviewer *models.User)
}

// Change is a direct mutation requested by an operator.
type Change struct {
	ChangeType models.ChangeType
	TargetID   *uuid.UUID
	Data       json.RawMessage
}

// Service runs the proposal workflow and the direct-apply path.
type Service struct {
	store    store.Store
	gate     *authz.Gate
	appliers *Registry
	builder  *Builder
	notifier Notifier
	log      zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the notifier for lifecycle events.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService wires the workflow together.
func NewService(st store.Store, gate *authz.Gate, appliers *Registry, opts ...Option) *Service {
	s := &Service{
		store:    st,
		gate:     gate,
		appliers: appliers,
		builder:  NewBuilder(appliers),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit records a new pending proposal on behalf of user.
func (s *Service) Submit(ctx context.Context, user *models.User, sub Submission) (*models.Proposal, error) {
	if err := s.gate.Authorize(user, authz.ActionPropose); err != nil {
		return nil, err
	}

	p, err := s.builder.Build(ctx, s.store, sub, user)
	if err != nil {
		return nil, err
	}
	if err := s.store.Proposals().Create(ctx, p); err != nil {
		return nil, err
	}

	metrics.RecordProposal(string(p.ChangeType), metrics.OutcomeSubmitted)
	s.log.Info().
		Str("proposal_id", p.ID.String()).
		Str("change_type", string(p.ChangeType)).
		Str("submitted_by", user.ID.String()).
		Msg("proposal submitted")
	if s.notifier != nil {
		s.notifier.NotifyProposalSubmitted(ctx, p, user)
	}
	return p, nil
}

// DirectApply performs change immediately in one transaction. No proposal is
// recorded and failures are returned as they are.
func (s *Service) DirectApply(ctx context.Context, user *models.User, change Change) (uuid.UUID, error) {
	if err := s.gate.Authorize(user, authz.ActionApply); err != nil {
		return uuid.Nil, err
	}

	payload, err := s.builder.decode(change.ChangeType, "", change.TargetID, change.Data)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		id, err = s.appliers.Apply(ctx, tx, Request{
			ChangeType: change.ChangeType,
			TargetID:   change.TargetID,
			Payload:    payload,
		})
		return err
	})
	if err != nil {
		metrics.RecordDirectChange(string(change.ChangeType), metrics.OutcomeFailed)
		s.log.Warn().Err(err).
			Str("change_type", string(change.ChangeType)).
			Str("user_id", user.ID.String()).
			Msg("direct change failed")
		return uuid.Nil, err
	}

	metrics.RecordDirectChange(string(change.ChangeType), metrics.OutcomeApplied)
	s.log.Info().
		Str("change_type", string(change.ChangeType)).
		Str("entity_id", id.String()).
		Str("user_id", user.ID.String()).
		Msg("direct change applied")
	return id, nil
}

// List returns proposals visible to user. Reviewers see every proposal and
// proposers only their own. status filters when non-empty.
func (s *Service) List(ctx context.Context, user *models.User, status string) ([]Item, error) {
	switch status {
	case "", models.StatusPending, models.StatusApproved, models.StatusRejected:
	default:
		return nil, validation.Errorf("status", "must be one of pending, approved, rejected")
	}

	filter := store.ProposalFilter{Status: status}
	if !s.gate.Can(user, authz.ActionReview) {
		if err := s.gate.Authorize(user, authz.ActionPropose); err != nil {
			return nil, err
		}
		filter.SubmittedBy = &user.ID
	}

	proposals, err := s.store.Proposals().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(proposals))
	for i := range proposals {
		items[i] = Item{Proposal: proposals[i], Summary: Summarize(&proposals[i])}
	}
	return items, nil
}

// Get returns a single proposal visible to user.
func (s *Service) Get(ctx context.Context, user *models.User, id uuid.UUID) (*Item, error) {
	if err := s.gate.Authorize(user, authz.ActionPropose); err != nil {
		return nil, err
	}
	p, err := s.store.Proposals().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, err
	}
	// Proposers only see their own; hide the rest rather than reveal them.
	if !s.gate.Can(user, authz.ActionReview) && p.SubmittedBy != user.ID {
		return nil, ErrProposalNotFound
	}
	return &Item{Proposal: *p, Summary: Summarize(p)}, nil
}

// Diff previews a proposal as a JSON Patch from the target's current state
// to the state approval would produce. Creates are diffed against an empty
// entity.
func (s *Service) Diff(ctx context.Context, user *models.User, id uuid.UUID) (jsondiff.Patch, error) {
	item, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	applier, err := s.appliers.For(item.ChangeType)
	if err != nil {
		return nil, err
	}
	payload, err := item.Payload()
	if err != nil {
		return nil, applierErr(KindInvalid, item.ChangeType, err, "proposed data is unreadable")
	}

	before, after, err := applier.Preview(ctx, s.store, Request{
		ChangeType: item.ChangeType,
		TargetID:   item.TargetID,
		Payload:    payload,
	})
	if err != nil {
		return nil, err
	}
	patch, err := jsondiff.CompareJSON(before, after)
	if err != nil {
		return nil, err
	}
	if patch == nil {
		patch = jsondiff.Patch{}
	}
	return patch, nil
}

// Approve applies the proposal and marks it approved in one transaction. If
// the applier fails the proposal stays pending.
func (s *Service) Approve(ctx context.Context, user *models.User, id uuid.UUID, notes string) (*models.Proposal, error) {
	if err := s.gate.Authorize(user, authz.ActionReview); err != nil {
		return nil, err
	}

	var approved *models.Proposal
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		p, err := lockPending(ctx, tx, id)
		if err != nil {
			return err
		}

		payload, err := p.Payload()
		if err != nil {
			return applierErr(KindInvalid, p.ChangeType, err, "stored proposal data is unreadable")
		}
		if _, err := s.appliers.Apply(ctx, tx, Request{
			ChangeType:    p.ChangeType,
			TargetID:      p.TargetID,
			TargetVersion: p.TargetVersion,
			Payload:       payload,
		}); err != nil {
			return err
		}

		approved, err = resolve(ctx, tx, id, models.StatusApproved, user.ID, notes)
		return err
	})
	if err != nil {
		var applyErr *ApplierError
		if errors.As(err, &applyErr) {
			metrics.RecordProposal(string(applyErr.ChangeType), metrics.OutcomeFailed)
			s.log.Warn().Err(err).
				Str("proposal_id", id.String()).
				Str("kind", string(applyErr.Kind)).
				Msg("proposal approval failed")
		}
		return nil, err
	}

	metrics.RecordProposal(string(approved.ChangeType), metrics.OutcomeApproved)
	s.log.Info().
		Str("proposal_id", id.String()).
		Str("change_type", string(approved.ChangeType)).
		Str("reviewed_by", user.ID.String()).
		Msg("proposal approved")
	if s.notifier != nil {
		s.notifier.NotifyProposalReviewed(ctx, approved, user)
	}
	return approved, nil
}

// Reject marks the proposal rejected without applying it.
func (s *Service) Reject(ctx context.Context, user *models.User, id uuid.UUID, notes string) (*models.Proposal, error) {
	if err := s.gate.Authorize(user, authz.ActionReview); err != nil {
		return nil, err
	}

	var rejected *models.Proposal
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		if _, err := lockPending(ctx, tx, id); err != nil {
			return err
		}
		var err error
		rejected, err = resolve(ctx, tx, id, models.StatusRejected, user.ID, notes)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordProposal(string(rejected.ChangeType), metrics.OutcomeRejected)
	s.log.Info().
		Str("proposal_id", id.String()).
		Str("reviewed_by", user.ID.String()).
		Msg("proposal rejected")
	if s.notifier != nil {
		s.notifier.NotifyProposalReviewed(ctx, rejected, user)
	}
	return rejected, nil
}

// PendingCount returns the number of proposals awaiting review.
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	return s.store.Proposals().CountPending(ctx)
}

func lockPending(ctx context.Context, tx store.Store, id uuid.UUID) (*models.Proposal, error) {
	p, err := tx.Proposals().GetForUpdate(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusPending {
		return nil, ErrProposalResolved
	}
	return p, nil
}

func resolve(ctx context.Context, tx store.Store, id uuid.UUID, status string, reviewer uuid.UUID, notes string) (*models.Proposal, error) {
	var comments *string
	if n := strings.TrimSpace(notes); n != "" {
		comments = &n
	}
	p, err := tx.Proposals().Resolve(ctx, id, status, reviewer, comments)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProposalResolved
	}
	return p, err
}
