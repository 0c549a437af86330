package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamhub/internal/models"
	"teamhub/internal/testutil"
)

func run(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// mint issues a token for u through the token command.
func mint(t *testing.T, u *models.User) string {
	t.Helper()
	out, err := run("token", "--secret", testutil.Secret, "--user", u.ID.String(), "--name", u.Name)
	require.NoError(t, err)
	return strings.TrimSpace(out)
}

func TestProposeAndApprove(t *testing.T) {
	api := testutil.NewAPI(t)
	url := api.URL
	proposer := mint(t, api.CreateUser(t, "sam", models.RoleStudent, true))
	mentor := mint(t, api.CreateUser(t, "morgan", models.RoleMentor, false))

	out, err := run("whoami", "--server", url, "--token", mentor)
	require.NoError(t, err)
	assert.Contains(t, out, `"capability": "operator"`)

	out, err = run("propose", "--server", url, "--token", proposer,
		"--type", "robot", "--data", `{"year":2024,"name":"Apex","game":"Reefscape"}`)
	require.NoError(t, err, out)
	assert.Contains(t, out, "pending: Create robot")
	id := strings.Fields(out)[0]

	out, err = run("proposals", "list", "--server", url, "--token", mentor, "--status", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "sam")

	out, err = run("proposals", "diff", id, "--server", url, "--token", mentor)
	require.NoError(t, err)
	assert.Contains(t, out, `"path": "/name"`)

	_, err = run("proposals", "approve", id, "--server", url, "--token", proposer)
	require.Error(t, err)
	assert.Equal(t, exitRejected, exitCode(err))

	out, err = run("proposals", "approve", id, "--server", url, "--token", mentor, "--notes", "ship it")
	require.NoError(t, err)
	assert.Contains(t, out, "approved")

	robots, err := api.Store.Robots().List(context.Background())
	require.NoError(t, err)
	require.Len(t, robots, 1)
	assert.Equal(t, "Apex", robots[0].Name)
}

func TestValidationMessageIsShown(t *testing.T) {
	api := testutil.NewAPI(t)
	url := api.URL
	proposer := mint(t, api.CreateUser(t, "sam", models.RoleStudent, true))

	_, err := run("propose", "--server", url, "--token", proposer, "--type", "robot", "--data", `{"name":"Apex"}`)
	require.Error(t, err)
	assert.Equal(t, exitRejected, exitCode(err))
	assert.Contains(t, err.Error(), "year")
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown change type", []string{"propose", "--type", "spaceship"}},
		{"bad data", []string{"propose", "--type", "robot", "--data", "{nope"}},
		{"bad id", []string{"proposals", "show", "not-a-uuid"}},
		{"bad access value", []string{"users", "access", "8f1d3c52-4c3f-4c1e-9a57-2b7f3f1f0a11", "maybe"}},
		{"bad server", []string{"whoami", "--server", "localhost"}},
		{"token without secret", []string{"token", "--secret", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, exitUsage, exitCode(err))
		})
	}
}

func TestUnreachableServer(t *testing.T) {
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	_, err := run("leaderboard", "--server", url)
	require.Error(t, err)
	assert.Equal(t, exitTransport, exitCode(err))
}
