package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamhub/internal/accounts"
	"teamhub/internal/authz"
	"teamhub/internal/maintenance"
	"teamhub/internal/models"
	"teamhub/internal/store"
	"teamhub/internal/validation"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		field  string
		kind   string
	}{
		{"validation", validation.Errorf("year", "must be at least 1992"), http.StatusBadRequest, "year", ""},
		{"unauthenticated", &authz.Error{Action: authz.ActionPropose, Unauthenticated: true}, http.StatusUnauthorized, "", ""},
		{"forbidden", &authz.Error{Action: authz.ActionApply, Capability: authz.CapabilityProposer}, http.StatusForbidden, "", ""},
		{"applier not found", &maintenance.ApplierError{Kind: maintenance.KindNotFound, ChangeType: models.ChangeRobotDelete}, http.StatusNotFound, "", "not_found"},
		{"applier conflict", &maintenance.ApplierError{Kind: maintenance.KindConflict}, http.StatusConflict, "", "conflict"},
		{"applier stale", &maintenance.ApplierError{Kind: maintenance.KindStale}, http.StatusConflict, "", "stale"},
		{"applier invalid", &maintenance.ApplierError{Kind: maintenance.KindInvalid}, http.StatusUnprocessableEntity, "", "invalid"},
		{"proposal not found", maintenance.ErrProposalNotFound, http.StatusNotFound, "", ""},
		{"proposal resolved", fmt.Errorf("approve: %w", maintenance.ErrProposalResolved), http.StatusConflict, "", ""},
		{"self delete", accounts.ErrSelfDelete, http.StatusBadRequest, "", ""},
		{"store not found", store.ErrNotFound, http.StatusNotFound, "", ""},
		{"store conflict", store.ErrConflict, http.StatusConflict, "", ""},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c fiber.Ctx) error { return respondError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "error", body["status"])
			assert.NotEmpty(t, body["error"])
			assert.Equal(t, tt.field, body["field"])
			assert.Equal(t, tt.kind, body["kind"])
		})
	}
}

func TestRespondError_HidesInternalDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error { return respondError(c, errors.New("pq: password authentication failed")) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "internal server error", body["error"])
}
