// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/rs/zerolog"

	"teamhub/internal/accounts"
	"teamhub/internal/authz"
	"teamhub/internal/config"
	"teamhub/internal/maintenance"
	"teamhub/internal/middleware"
	"teamhub/internal/models"
	"teamhub/internal/outreach"
	"teamhub/internal/server"
	"teamhub/internal/store/memory"
)

// Secret signs the tokens issued by API.Token.
const Secret = "testutil-secret-that-is-long-enough-0123"

// API is a full HTTP server backed by an in-memory store, listening on a
// local port for the duration of a test.
type API struct {
	Store *memory.Store
	URL   string
}

// NewAPI starts the server and registers its shutdown with t.Cleanup.
func NewAPI(t *testing.T) *API {
	t.Helper()

	st := memory.New()
	gate := authz.MustNewGate()
	log := zerolog.Nop()

	srv := server.New(&config.Config{Env: "test", BaseURL: "http://localhost", JWTSecret: Secret}, log)
	srv.RegisterRoutes(server.Deps{
		Store:       st,
		Gate:        gate,
		Maintenance: maintenance.NewService(st, gate, maintenance.MustNewRegistry(), maintenance.WithLogger(log)),
		Outreach:    outreach.NewService(st, gate, nil, log),
		Accounts:    accounts.NewService(st, gate, log),
	})

	ts := httptest.NewServer(adaptor.FiberApp(srv.App))
	t.Cleanup(ts.Close)
	return &API{Store: st, URL: ts.URL}
}

// CreateUser stores a user with the given role and maintenance access.
func (a *API) CreateUser(t *testing.T, name, role string, access bool) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Role: role, MaintenanceAccess: access}
	if err := a.Store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// Token returns a bearer token for u valid for an hour.
func (a *API) Token(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := middleware.SignToken(Secret, u.ID, u.Email, u.Name, time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}
