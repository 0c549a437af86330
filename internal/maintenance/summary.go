package maintenance

import (
	"fmt"
	"strings"

	"teamhub/internal/models"
)

// Item is a proposal as shown in the moderation queue.
type Item struct {
	models.Proposal
	Summary string `json:"summary"`
}

// Summarize renders a one-line, human-readable description of what the
// proposal would change.
func Summarize(p *models.Proposal) string {
	t := p.ChangeType
	if !t.Valid() {
		return fmt.Sprintf("Unknown change type %q", t)
	}
	if t.IsDelete() {
		target := "(no target)"
		if p.TargetID != nil {
			target = p.TargetID.String()
		}
		return fmt.Sprintf("Requests deletion of %s %s", t.Entity(), target)
	}

	payload, err := p.Payload()
	if err != nil {
		return fmt.Sprintf("Unreadable %s data", t.Entity())
	}

	verb := "Create"
	if p.TargetID != nil {
		verb = "Update"
	}

	var fields []string
	add := func(label, value string) {
		if value != "" {
			fields = append(fields, fmt.Sprintf("%s: %s", label, value))
		}
	}

	switch d := payload.(type) {
	case *models.RobotData:
		add("year", fmt.Sprint(d.Year))
		add("name", d.Name)
		add("game", d.Game)
		add("description", truncate(d.Description, 120))
	case *models.SponsorData:
		add("name", d.Name)
		add("tier", d.Tier)
		add("website", d.WebsiteURL)
	case *models.ResourceCategoryData:
		add("name", d.Name)
		add("description", truncate(d.Description, 120))
	case *models.ResourceData:
		add("title", d.Title)
		add("url", d.URL)
		add("category", d.CategoryID.String())
	case *models.SubteamData:
		add("name", d.Name)
		add("description", truncate(d.Description, 120))
	case *models.PageData:
		add("title", d.Title)
		add("slug", "/"+d.Slug)
		add("published", fmt.Sprint(d.Published))
	case *models.SlideshowImageData:
		add("image", d.ImageURL)
		add("caption", d.Caption)
	}

	return fmt.Sprintf("%s %s: %s", verb, t.Entity(), strings.Join(fields, ", "))
}

// Group buckets items by status, keeping their order.
func Group(items []Item) map[string][]Item {
	groups := map[string][]Item{
		models.StatusPending:  {},
		models.StatusApproved: {},
		models.StatusRejected: {},
	}
	for _, it := range items {
		groups[it.Status] = append(groups[it.Status], it)
	}
	return groups
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
