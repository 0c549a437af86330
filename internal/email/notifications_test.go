package email

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"teamhub/internal/config"
	"teamhub/internal/maintenance"
	"teamhub/internal/models"
	"teamhub/internal/store/memory"
)

type sentMail struct {
	to      []string
	subject string
}

type fakeMailer struct {
	enabled bool
	mu      sync.Mutex
	sent    []sentMail
}

func (m *fakeMailer) IsEnabled() bool { return m.enabled }

func (m *fakeMailer) SendAsync(to []string, subject, htmlBody, textBody string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject})
}

type notifierFixture struct {
	notifier *Notifier
	mailer   *fakeMailer
	student  *models.User
	mentor   *models.User
	admin    *models.User
}

func newNotifierFixture(t *testing.T, enabled bool) *notifierFixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()

	f := &notifierFixture{
		mailer:  &fakeMailer{enabled: enabled},
		student: &models.User{Name: "Sam", Email: "sam@example.com", MaintenanceAccess: true},
		mentor:  &models.User{Name: "Morgan", Email: "morgan@example.com", Role: models.RoleMentor},
		admin:   &models.User{Name: "Alex", Email: "alex@example.com", Role: models.RoleAdmin},
	}
	for _, u := range []*models.User{f.student, f.mentor, f.admin} {
		if err := st.Users().Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	cfg := &config.Config{SiteTitle: "Team Hub", BaseURL: "https://team.example.com", EmailNotifySubmitted: true, EmailNotifyReviewed: true}
	f.notifier = NewNotifier(cfg, f.mailer, st.Users(), zerolog.Nop())
	return f
}

func (f *notifierFixture) proposal() *models.Proposal {
	return &models.Proposal{
		ID:          uuid.New(),
		ChangeType:  models.ChangeRobotDelete,
		TargetTable: models.TableRobots,
		SubmittedBy: f.student.ID,
		Status:      models.StatusPending,
	}
}

func TestNotifier_ProposalSubmitted(t *testing.T) {
	f := newNotifierFixture(t, true)
	f.notifier.NotifyProposalSubmitted(context.Background(), f.proposal(), f.student)

	if len(f.mailer.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(f.mailer.sent))
	}
	got := append([]string(nil), f.mailer.sent[0].to...)
	sort.Strings(got)
	if len(got) != 2 || got[0] != "alex@example.com" || got[1] != "morgan@example.com" {
		t.Errorf("recipients = %v, want reviewers only", got)
	}
}

func TestNotifier_ProposalSubmitted_SkipsSubmittingReviewer(t *testing.T) {
	f := newNotifierFixture(t, true)
	p := f.proposal()
	p.SubmittedBy = f.mentor.ID
	f.notifier.NotifyProposalSubmitted(context.Background(), p, f.mentor)

	if len(f.mailer.sent) != 1 || len(f.mailer.sent[0].to) != 1 || f.mailer.sent[0].to[0] != "alex@example.com" {
		t.Errorf("unexpected mail: %+v", f.mailer.sent)
	}
}

func TestNotifier_Disabled(t *testing.T) {
	f := newNotifierFixture(t, false)
	ctx := context.Background()
	p := f.proposal()

	f.notifier.NotifyProposalSubmitted(ctx, p, f.student)
	p.Status = models.StatusApproved
	f.notifier.NotifyProposalReviewed(ctx, p, f.mentor)
	f.notifier.NotifyPendingDigest(ctx, []maintenance.Item{{Proposal: *p}})

	if len(f.mailer.sent) != 0 {
		t.Errorf("disabled mailer should send nothing, sent %d", len(f.mailer.sent))
	}
}

func TestNotifier_NotificationFlagOff(t *testing.T) {
	f := newNotifierFixture(t, true)
	f.notifier.cfg.EmailNotifySubmitted = false
	f.notifier.cfg.EmailNotifyReviewed = false

	p := f.proposal()
	f.notifier.NotifyProposalSubmitted(context.Background(), p, f.student)
	f.notifier.NotifyProposalReviewed(context.Background(), p, f.mentor)

	if len(f.mailer.sent) != 0 {
		t.Errorf("expected no mail with notifications off, sent %d", len(f.mailer.sent))
	}
}

func TestNotifier_ProposalReviewed(t *testing.T) {
	f := newNotifierFixture(t, true)
	p := f.proposal()
	p.Status = models.StatusApproved

	f.notifier.NotifyProposalReviewed(context.Background(), p, f.mentor)

	if len(f.mailer.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(f.mailer.sent))
	}
	if to := f.mailer.sent[0].to; len(to) != 1 || to[0] != "sam@example.com" {
		t.Errorf("recipients = %v, want the submitter", to)
	}
}

func TestNotifier_ProposalReviewed_UnknownSubmitter(t *testing.T) {
	f := newNotifierFixture(t, true)
	p := f.proposal()
	p.SubmittedBy = uuid.New()

	f.notifier.NotifyProposalReviewed(context.Background(), p, f.mentor)

	if len(f.mailer.sent) != 0 {
		t.Errorf("expected no mail for a missing submitter, sent %d", len(f.mailer.sent))
	}
}

func TestNotifier_PendingDigest_Empty(t *testing.T) {
	f := newNotifierFixture(t, true)
	f.notifier.NotifyPendingDigest(context.Background(), nil)
	if len(f.mailer.sent) != 0 {
		t.Errorf("empty digest should not be sent")
	}
}
