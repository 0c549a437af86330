package email

import (
	"fmt"
	"html"
	"strings"

	"teamhub/internal/config"
	"teamhub/internal/maintenance"
	"teamhub/internal/models"
)

// Templates renders notification emails as subject, HTML and plain text.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in the shared email layout.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; line-height: 1.5; color: #1f2937; max-width: 640px; margin: 0 auto; padding: 16px; }
        .header { background: #b91c1c; color: #fff; padding: 16px 20px; border-radius: 6px 6px 0 0; }
        .header h1 { margin: 0; font-size: 20px; }
        .content { background: #fafafa; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { padding: 12px; text-align: center; font-size: 12px; color: #6b7280; }
        .button { display: inline-block; background: #b91c1c; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 4px; }
        .box { background: #fff; border: 1px solid #e5e7eb; border-radius: 4px; padding: 12px 16px; margin: 12px 0; }
        .label { font-weight: 600; }
        .approved { color: #047857; }
        .rejected { color: #b91c1c; }
        ul { padding-left: 20px; }
    </style>
</head>
<body>
    <div class="header"><h1>%s</h1></div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>Sent by %s &middot; <a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content,
		html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

func (t *Templates) signature() string {
	return fmt.Sprintf("\n--\n%s\n%s", t.cfg.SiteTitle, t.cfg.BaseURL)
}

func (t *Templates) queueURL() string {
	return t.cfg.BaseURL + "/maintenance"
}

// ProposalSubmitted is sent to reviewers when a new proposal enters the queue.
func (t *Templates) ProposalSubmitted(p *models.Proposal, submitter *models.User) (subject, htmlBody, textBody string) {
	summary := maintenance.Summarize(p)
	subject = fmt.Sprintf("[%s] New %s proposal from %s", t.cfg.SiteTitle, p.ChangeType.Entity(), headerSafe(submitter.Name))

	content := fmt.Sprintf(`
        <p>A maintenance proposal is waiting for review.</p>
        <div class="box">
            <p><span class="label">Change:</span> %s</p>
            <p><span class="label">Type:</span> <code>%s</code></p>
            <p><span class="label">Reason:</span> %s</p>
            <p><span class="label">Submitted by:</span> %s</p>
        </div>
        <p><a href="%s" class="button">Open the queue</a></p>
    `,
		html.EscapeString(summary),
		html.EscapeString(string(p.ChangeType)),
		html.EscapeString(orNone(p.Description)),
		html.EscapeString(submitter.Name),
		t.queueURL(),
	)
	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf("New maintenance proposal\n\nChange: %s\nType: %s\nReason: %s\nSubmitted by: %s\n\nReview at: %s\n%s",
		summary, p.ChangeType, orNone(p.Description), submitter.Name, t.queueURL(), t.signature())
	return
}

// ProposalReviewed tells the submitter how their proposal was resolved.
func (t *Templates) ProposalReviewed(p *models.Proposal, reviewer *models.User) (subject, htmlBody, textBody string) {
	summary := maintenance.Summarize(p)
	subject = fmt.Sprintf("[%s] Your %s proposal was %s", t.cfg.SiteTitle, p.ChangeType.Entity(), p.Status)

	comments := ""
	if p.ReviewComments != nil {
		comments = *p.ReviewComments
	}

	content := fmt.Sprintf(`
        <p>Your proposal was <strong class="%s">%s</strong> by %s.</p>
        <div class="box">
            <p><span class="label">Change:</span> %s</p>
            <p><span class="label">Comments:</span> %s</p>
        </div>
    `,
		html.EscapeString(p.Status),
		html.EscapeString(p.Status),
		html.EscapeString(reviewer.Name),
		html.EscapeString(summary),
		html.EscapeString(orNone(comments)),
	)
	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf("Your proposal was %s by %s.\n\nChange: %s\nComments: %s\n%s",
		p.Status, reviewer.Name, summary, orNone(comments), t.signature())
	return
}

// PendingDigest lists proposals still waiting for review.
func (t *Templates) PendingDigest(items []maintenance.Item) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] %d proposal(s) awaiting review", t.cfg.SiteTitle, len(items))

	var list, text strings.Builder
	for _, it := range items {
		fmt.Fprintf(&list, "<li>%s <em>(%s, %s)</em></li>\n",
			html.EscapeString(it.Summary),
			html.EscapeString(it.SubmitterName),
			it.CreatedAt.Format("Jan 2"))
		fmt.Fprintf(&text, "- %s (%s, %s)\n", it.Summary, it.SubmitterName, it.CreatedAt.Format("Jan 2"))
	}

	content := fmt.Sprintf(`
        <p>These proposals are still pending:</p>
        <ul>
%s        </ul>
        <p><a href="%s" class="button">Open the queue</a></p>
    `, list.String(), t.queueURL())
	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf("Proposals awaiting review\n\n%s\nReview at: %s\n%s", text.String(), t.queueURL(), t.signature())
	return
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
