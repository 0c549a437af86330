package email

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"teamhub/internal/config"
	"teamhub/internal/maintenance"
	"teamhub/internal/models"
)

// Mailer sends rendered messages. *Service is the production implementation.
type Mailer interface {
	IsEnabled() bool
	SendAsync(to []string, subject, htmlBody, textBody string)
}

// Directory looks up notification recipients.
type Directory interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByRoles(ctx context.Context, roles ...string) ([]models.User, error)
}

// Notifier sends email notifications for proposal events.
type Notifier struct {
	mailer    Mailer
	templates *Templates
	cfg       *config.Config
	users     Directory
	log       zerolog.Logger
}

var _ maintenance.Notifier = (*Notifier)(nil)

// NewNotifier creates a new email notifier.
func NewNotifier(cfg *config.Config, mailer Mailer, users Directory, log zerolog.Logger) *Notifier {
	return &Notifier{
		mailer:    mailer,
		templates: NewTemplates(cfg),
		cfg:       cfg,
		users:     users,
		log:       log.With().Str("component", "notifier").Logger(),
	}
}

// reviewerEmails returns the addresses of every mentor and admin, skipping
// except.
func (n *Notifier) reviewerEmails(ctx context.Context, except uuid.UUID) []string {
	reviewers, err := n.users.ListByRoles(ctx, models.RoleMentor, models.RoleAdmin)
	if err != nil {
		n.log.Error().Err(err).Msg("failed to list reviewers")
		return nil
	}
	var emails []string
	for _, u := range reviewers {
		if u.Email != "" && u.ID != except {
			emails = append(emails, u.Email)
		}
	}
	return emails
}

// NotifyProposalSubmitted tells reviewers that a proposal needs review.
func (n *Notifier) NotifyProposalSubmitted(ctx context.Context, p *models.Proposal, submitter *models.User) {
	if !n.mailer.IsEnabled() || !n.cfg.EmailNotifySubmitted {
		return
	}

	emails := n.reviewerEmails(ctx, submitter.ID)
	if len(emails) == 0 {
		n.log.Debug().Str("proposal_id", p.ID.String()).Msg("no reviewer emails for notification")
		return
	}

	subject, htmlBody, textBody := n.templates.ProposalSubmitted(p, submitter)
	n.mailer.SendAsync(emails, subject, htmlBody, textBody)
}

// NotifyProposalReviewed tells the submitter their proposal was approved or
// rejected.
func (n *Notifier) NotifyProposalReviewed(ctx context.Context, p *models.Proposal, reviewer *models.User) {
	if !n.mailer.IsEnabled() || !n.cfg.EmailNotifyReviewed {
		return
	}
	if p.SubmittedBy == reviewer.ID {
		return
	}

	submitter, err := n.users.Get(ctx, p.SubmittedBy)
	if err != nil {
		n.log.Error().Err(err).Str("proposal_id", p.ID.String()).Msg("failed to get proposal submitter")
		return
	}
	if submitter.Email == "" {
		return
	}

	subject, htmlBody, textBody := n.templates.ProposalReviewed(p, reviewer)
	n.mailer.SendAsync([]string{submitter.Email}, subject, htmlBody, textBody)
}

// NotifyPendingDigest sends reviewers the list of proposals still pending.
func (n *Notifier) NotifyPendingDigest(ctx context.Context, items []maintenance.Item) {
	if !n.mailer.IsEnabled() || len(items) == 0 {
		return
	}

	emails := n.reviewerEmails(ctx, uuid.Nil)
	if len(emails) == 0 {
		return
	}

	subject, htmlBody, textBody := n.templates.PendingDigest(items)
	n.mailer.SendAsync(emails, subject, htmlBody, textBody)
}
