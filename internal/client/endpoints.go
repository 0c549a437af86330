package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/wI2L/jsondiff"

	"teamhub/internal/authz"
	"teamhub/internal/maintenance"
	"teamhub/internal/models"
	"teamhub/internal/outreach"
)

// Me describes the caller as the server sees them.
type Me struct {
	User        *models.User     `json:"user"`
	Capability  authz.Capability `json:"capability"`
	Permissions []authz.Action   `json:"permissions"`
}

// ChangeType describes one change type the server accepts.
type ChangeType struct {
	ChangeType     models.ChangeType `json:"change_type"`
	TargetTable    string            `json:"target_table"`
	Entity         string            `json:"entity"`
	RequiresTarget bool              `json:"requires_target"`
}

func (c *Client) Me(ctx context.Context) (*Me, error) {
	var out Me
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangeTypes(ctx context.Context) ([]ChangeType, error) {
	var out []ChangeType
	if err := c.do(ctx, http.MethodGet, "/maintenance/change-types", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Proposals lists proposals visible to the caller. An empty status lists all.
func (c *Client) Proposals(ctx context.Context, status string) ([]maintenance.Item, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	var out []maintenance.Item
	if err := c.do(ctx, http.MethodGet, "/maintenance/proposals", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Proposal(ctx context.Context, id uuid.UUID) (*maintenance.Item, error) {
	var out maintenance.Item
	if err := c.do(ctx, http.MethodGet, idPath("/maintenance/proposals", id, ""), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Diff returns the JSON Patch that approving id would apply.
func (c *Client) Diff(ctx context.Context, id uuid.UUID) (jsondiff.Patch, error) {
	var out jsondiff.Patch
	if err := c.do(ctx, http.MethodGet, idPath("/maintenance/proposals", id, "/diff"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Propose(ctx context.Context, sub maintenance.Submission) (*maintenance.Item, error) {
	var out maintenance.Item
	if err := c.do(ctx, http.MethodPost, "/maintenance/propose", nil, sub, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Approve(ctx context.Context, id uuid.UUID, notes string) (*maintenance.Item, error) {
	return c.review(ctx, id, "/approve", notes)
}

func (c *Client) Reject(ctx context.Context, id uuid.UUID, notes string) (*maintenance.Item, error) {
	return c.review(ctx, id, "/reject", notes)
}

func (c *Client) review(ctx context.Context, id uuid.UUID, action, notes string) (*maintenance.Item, error) {
	var out maintenance.Item
	body := map[string]string{"notes": notes}
	if err := c.do(ctx, http.MethodPut, idPath("/maintenance/proposals", id, action), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create applies a create directly under collection (e.g. "/robots") and
// decodes the stored entity into out. Operators only.
func (c *Client) Create(ctx context.Context, collection string, data, out any) error {
	return c.do(ctx, http.MethodPost, collection, nil, data, out)
}

// Update applies an update to collection/id directly.
func (c *Client) Update(ctx context.Context, collection string, id uuid.UUID, data, out any) error {
	return c.do(ctx, http.MethodPut, idPath(collection, id, ""), nil, data, out)
}

// Delete removes collection/id directly.
func (c *Client) Delete(ctx context.Context, collection string, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, idPath(collection, id, ""), nil, nil, nil)
}

// List decodes every entity under collection into out.
func (c *Client) List(ctx context.Context, collection string, out any) error {
	return c.do(ctx, http.MethodGet, collection, nil, nil, out)
}

func (c *Client) Events(ctx context.Context) ([]models.OutreachEvent, error) {
	var out []models.OutreachEvent
	if err := c.do(ctx, http.MethodGet, "/outreach/events", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateEvent(ctx context.Context, in outreach.EventInput) (*models.OutreachEvent, error) {
	var out models.OutreachEvent
	if err := c.do(ctx, http.MethodPost, "/outreach/events", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddParticipant(ctx context.Context, eventID uuid.UUID, in outreach.ParticipantInput) (*models.OutreachParticipation, error) {
	var out models.OutreachParticipation
	if err := c.do(ctx, http.MethodPost, idPath("/outreach/events", eventID, "/participants"), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var out []models.LeaderboardEntry
	if err := c.do(ctx, http.MethodGet, "/outreach/leaderboard", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetRole(ctx context.Context, id uuid.UUID, role string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPut, idPath("/users", id, "/role"), nil, map[string]string{"role": role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetMaintenanceAccess(ctx context.Context, id uuid.UUID, enabled bool) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPut, idPath("/users", id, "/maintenance-access"), nil, map[string]bool{"enabled": enabled}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Settings(ctx context.Context) ([]models.SiteSetting, error) {
	var out []models.SiteSetting
	if err := c.do(ctx, http.MethodGet, "/settings", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetSetting(ctx context.Context, key, value string) (*models.SiteSetting, error) {
	var out models.SiteSetting
	if err := c.do(ctx, http.MethodPut, "/settings/"+key, nil, map[string]string{"value": value}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
