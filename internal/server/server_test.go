package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamhub/internal/accounts"
	"teamhub/internal/authz"
	"teamhub/internal/config"
	"teamhub/internal/maintenance"
	"teamhub/internal/metrics"
	"teamhub/internal/middleware"
	"teamhub/internal/models"
	"teamhub/internal/outreach"
	"teamhub/internal/store/memory"
)

const testSecret = "test-secret-that-is-long-enough-123456"

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Field  string          `json:"field"`
	Kind   string          `json:"kind"`
}

type testEnv struct {
	t      *testing.T
	srv    *Server
	store  *memory.Store
	tokens map[string]string
	users  map[string]*models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	gate := authz.MustNewGate()
	log := zerolog.Nop()

	cfg := &config.Config{Env: "test", BaseURL: "http://localhost:3000", JWTSecret: testSecret}
	srv := New(cfg, log)
	srv.RegisterRoutes(Deps{
		Store:       st,
		Gate:        gate,
		Maintenance: maintenance.NewService(st, gate, maintenance.MustNewRegistry(), maintenance.WithLogger(log)),
		Outreach:    outreach.NewService(st, gate, nil, log),
		Accounts:    accounts.NewService(st, gate, log),
	})

	env := &testEnv{t: t, srv: srv, store: st, tokens: map[string]string{}, users: map[string]*models.User{}}
	for name, u := range map[string]*models.User{
		"student":  {Name: "Riley", Email: "riley@example.com"},
		"proposer": {Name: "Sam", Email: "sam@example.com", MaintenanceAccess: true},
		"mentor":   {Name: "Morgan", Email: "morgan@example.com", Role: models.RoleMentor},
		"admin":    {Name: "Alex", Email: "alex@example.com", Role: models.RoleAdmin},
	} {
		require.NoError(t, st.Users().Create(ctx, u))
		token, err := middleware.SignToken(testSecret, u.ID, u.Email, u.Name, time.Hour)
		require.NoError(t, err)
		env.tokens[name] = token
		env.users[name] = u
	}
	return env
}

func (e *testEnv) do(method, path, as string, body any) (int, envelope) {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+e.tokens[as])
	}
	resp, err := e.srv.App.Test(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	if len(raw) > 0 && json.Valid(raw) {
		require.NoError(e.t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

var apex = map[string]any{"year": 2024, "name": "Apex", "game": "Reefscape"}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t)

	code, body := e.do(http.MethodGet, "/maintenance/proposals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "error", body.Status)

	code, _ = e.do(http.MethodPost, "/robots", "", apex)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = e.do(http.MethodGet, "/robots", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestNoAccessCallerIsDeniedEveryMutation(t *testing.T) {
	e := newTestEnv(t)

	code, _ := e.do(http.MethodPost, "/maintenance/propose", "student", map[string]any{
		"change_type": "robot", "proposed_data": apex,
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = e.do(http.MethodPost, "/robots", "student", apex)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = e.do(http.MethodGet, "/maintenance/proposals", "student", nil)
	assert.Equal(t, http.StatusForbidden, code)

	robots, err := e.store.Robots().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, robots)
}

func TestProposalApprovalFlow(t *testing.T) {
	e := newTestEnv(t)

	// Proposers cannot apply directly.
	code, _ := e.do(http.MethodPost, "/robots", "proposer", apex)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := e.do(http.MethodPost, "/maintenance/propose", "proposer", map[string]any{
		"change_type":   "robot",
		"proposed_data": apex,
		"description":   "New robot",
		"status":        "approved",
	})
	require.Equal(t, http.StatusCreated, code, body.Error)
	item := decode[maintenance.Item](t, body)
	assert.Equal(t, models.StatusPending, item.Status)
	assert.Equal(t, "Create robot: year: 2024, name: Apex, game: Reefscape", item.Summary)

	// Proposers cannot review.
	code, _ = e.do(http.MethodPut, "/maintenance/proposals/"+item.ID.String()+"/approve", "proposer", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = e.do(http.MethodGet, "/maintenance/proposals?status=pending", "mentor", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]maintenance.Item](t, body), 1)

	code, body = e.do(http.MethodGet, "/maintenance/proposals/"+item.ID.String()+"/diff", "mentor", nil)
	require.Equal(t, http.StatusOK, code, body.Error)
	ops := decode[[]map[string]any](t, body)
	assert.Len(t, ops, 3)

	code, body = e.do(http.MethodPut, "/maintenance/proposals/"+item.ID.String()+"/approve", "mentor", map[string]string{"notes": "nice"})
	require.Equal(t, http.StatusOK, code, body.Error)
	approved := decode[maintenance.Item](t, body)
	assert.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewComments)
	assert.Equal(t, "nice", *approved.ReviewComments)

	code, body = e.do(http.MethodGet, "/robots", "", nil)
	require.Equal(t, http.StatusOK, code)
	robots := decode[[]models.Robot](t, body)
	require.Len(t, robots, 1)
	assert.Equal(t, "Apex", robots[0].Name)
	assert.Equal(t, 2024, robots[0].Year)

	code, _ = e.do(http.MethodPut, "/maintenance/proposals/"+item.ID.String()+"/reject", "mentor", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, body = e.do(http.MethodGet, "/maintenance/proposals?grouped=true", "admin", nil)
	require.Equal(t, http.StatusOK, code)
	groups := decode[map[string][]maintenance.Item](t, body)
	assert.Len(t, groups[models.StatusApproved], 1)
	assert.Empty(t, groups[models.StatusPending])
}

func TestProposalValidation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"unknown change type", map[string]any{"change_type": "trophy", "proposed_data": apex}, "change_type"},
		{"missing name", map[string]any{"change_type": "robot", "proposed_data": map[string]any{"year": 2024, "game": "Reefscape"}}, "name"},
		{"delete without target", map[string]any{"change_type": "robot_delete"}, "target_id"},
		{"missing target", map[string]any{"change_type": "robot_delete", "target_id": uuid.NewString()}, "target_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := e.do(http.MethodPost, "/maintenance/propose", "proposer", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.field, body.Field)
		})
	}

	code, _ := e.do(http.MethodGet, "/maintenance/proposals?status=stuck", "mentor", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = e.do(http.MethodPut, "/maintenance/proposals/not-a-uuid/approve", "mentor", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = e.do(http.MethodPut, "/maintenance/proposals/"+uuid.NewString()+"/approve", "mentor", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDirectApplyErrors(t *testing.T) {
	e := newTestEnv(t)

	code, body := e.do(http.MethodDelete, "/robots/"+uuid.NewString(), "mentor", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", body.Kind)

	code, body = e.do(http.MethodPost, "/resources/categories", "mentor", map[string]any{"name": "Programming"})
	require.Equal(t, http.StatusCreated, code, body.Error)
	cat := decode[models.ResourceCategory](t, body)

	code, body = e.do(http.MethodPost, "/resources", "mentor", map[string]any{
		"category_id": cat.ID, "title": "WPILib", "url": "https://docs.wpilib.org",
	})
	require.Equal(t, http.StatusCreated, code, body.Error)

	code, body = e.do(http.MethodDelete, "/resources/categories/"+cat.ID.String(), "mentor", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict", body.Kind)

	code, body = e.do(http.MethodPost, "/resources", "mentor", map[string]any{
		"category_id": uuid.New(), "title": "Orphan", "url": "https://example.com",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "invalid", body.Kind)

	code, body = e.do(http.MethodPost, "/robots", "mentor", map[string]any{"year": 1800, "name": "Old", "game": "None"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "year", body.Field)
}

func TestSubteamsUseCreateAndUpdateTypes(t *testing.T) {
	e := newTestEnv(t)

	code, body := e.do(http.MethodPost, "/subteams", "admin", map[string]any{"name": "Build"})
	require.Equal(t, http.StatusCreated, code, body.Error)
	sub := decode[models.Subteam](t, body)

	code, body = e.do(http.MethodPut, "/subteams/"+sub.ID.String(), "admin", map[string]any{"name": "Build & Fabrication"})
	require.Equal(t, http.StatusOK, code, body.Error)
	assert.Equal(t, "Build & Fabrication", decode[models.Subteam](t, body).Name)

	code, _ = e.do(http.MethodDelete, "/subteams/"+sub.ID.String(), "admin", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = e.do(http.MethodGet, "/subteams/"+sub.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUnpublishedPagesHiddenFromPublic(t *testing.T) {
	e := newTestEnv(t)

	code, body := e.do(http.MethodPost, "/pages", "mentor", map[string]any{
		"title": "Draft", "slug": "draft", "content": "<p>hi</p><script>x()</script>", "published": false,
	})
	require.Equal(t, http.StatusCreated, code, body.Error)
	page := decode[models.Page](t, body)
	assert.NotContains(t, page.Content, "<script>")

	code, _ = e.do(http.MethodGet, "/pages/slug/draft", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = e.do(http.MethodGet, "/pages/slug/draft", "mentor", nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = e.do(http.MethodGet, "/pages", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]models.Page](t, body))

	// A merge patch publishes the page and keeps every other field.
	code, _ = e.do(http.MethodPatch, "/pages/"+page.ID.String(), "proposer", map[string]any{"published": true})
	assert.Equal(t, http.StatusForbidden, code)
	code, body = e.do(http.MethodPatch, "/pages/"+page.ID.String(), "mentor", map[string]any{"published": true})
	require.Equal(t, http.StatusOK, code, body.Error)
	published := decode[models.Page](t, body)
	assert.True(t, published.Published)
	assert.Equal(t, "draft", published.Slug)
	assert.Equal(t, page.Content, published.Content)

	code, _ = e.do(http.MethodGet, "/pages/slug/draft", "", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = e.do(http.MethodPatch, "/pages/"+uuid.NewString(), "mentor", map[string]any{"published": true})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestOutreachEndpoints(t *testing.T) {
	e := newTestEnv(t)

	code, body := e.do(http.MethodPost, "/outreach/events", "mentor", map[string]any{
		"name": "Library demo", "event_date": "2024-05-04T10:00:00Z", "hours_length": 8,
	})
	require.Equal(t, http.StatusCreated, code, body.Error)
	ev := decode[models.OutreachEvent](t, body)

	code, _ = e.do(http.MethodPost, "/outreach/events", "proposer", map[string]any{
		"name": "x", "event_date": "2024-05-04T10:00:00Z", "hours_length": 1,
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = e.do(http.MethodPost, "/outreach/events/"+ev.ID.String()+"/participants", "mentor", map[string]any{
		"user_id": e.users["proposer"].ID, "role": "organizer",
	})
	require.Equal(t, http.StatusCreated, code, body.Error)
	assert.Equal(t, 24, decode[models.OutreachParticipation](t, body).Points)

	code, body = e.do(http.MethodPost, "/outreach/events/"+ev.ID.String()+"/participants", "mentor", map[string]any{
		"user_id": e.users["proposer"].ID, "role": "attendee",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, body = e.do(http.MethodGet, "/outreach/leaderboard", "student", nil)
	require.Equal(t, http.StatusOK, code)
	board := decode[[]models.LeaderboardEntry](t, body)
	require.Len(t, board, 1)
	assert.Equal(t, "Sam", board[0].Name)
}

func TestAccountEndpoints(t *testing.T) {
	e := newTestEnv(t)

	code, body := e.do(http.MethodGet, "/me", "proposer", nil)
	require.Equal(t, http.StatusOK, code)
	var me struct {
		Capability  string   `json:"capability"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &me))
	assert.Equal(t, "proposer", me.Capability)
	assert.Equal(t, []string{"maintenance:propose"}, me.Permissions)

	code, _ = e.do(http.MethodGet, "/users", "mentor", nil)
	assert.Equal(t, http.StatusForbidden, code)

	student := e.users["student"].ID.String()
	code, body = e.do(http.MethodPut, "/users/"+student+"/maintenance-access", "admin", map[string]any{"enabled": true})
	require.Equal(t, http.StatusOK, code, body.Error)
	assert.True(t, decode[models.User](t, body).MaintenanceAccess)

	code, body = e.do(http.MethodPut, "/users/"+student+"/maintenance-access", "admin", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "enabled", body.Field)

	code, _ = e.do(http.MethodDelete, "/users/"+e.users["admin"].ID.String(), "admin", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = e.do(http.MethodDelete, "/users/"+student, "admin", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = e.do(http.MethodPut, "/settings/team_number", "mentor", map[string]string{"value": "1234"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = e.do(http.MethodPut, "/settings/team_number", "admin", map[string]string{"value": "1234"})
	assert.Equal(t, http.StatusOK, code)
	code, body = e.do(http.MethodGet, "/settings/team_number", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1234", decode[models.SiteSetting](t, body).Value)
}

func TestUnknownUserIsProvisionedWithoutAccess(t *testing.T) {
	e := newTestEnv(t)
	id := uuid.New()
	token, err := middleware.SignToken(testSecret, id, "new@example.com", "Newcomer", time.Hour)
	require.NoError(t, err)
	e.tokens["new"] = token

	code, body := e.do(http.MethodGet, "/me", "new", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), `"capability":"none"`)

	u, err := e.store.Users().Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, u.Role)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestEnv(t)
	metrics.Init(e.store)

	code, body := e.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)

	resp, err := e.srv.App.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "teamhub_pending_proposals")

	code, body = e.do(http.MethodGet, "/no-such-route", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "error", body.Status)
}
