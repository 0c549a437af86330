package outreach

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamhub/internal/authz"
	"teamhub/internal/models"
	"teamhub/internal/store"
	"teamhub/internal/store/memory"
	"teamhub/internal/validation"
)

func TestPoints(t *testing.T) {
	bases := DefaultBases()
	tests := []struct {
		name  string
		role  string
		hours float64
		want  int
	}{
		{"organizer eight hours", models.OutreachOrganizer, 8, 24},
		{"assistant just under four hours", models.OutreachAssistant, 3.99, 5},
		{"assistant four hours", models.OutreachAssistant, 4, 10},
		{"attendee one hour", models.OutreachAttendee, 1, 3},
		{"attendee twelve and a half hours", models.OutreachAttendee, 12.5, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bases.Points(tt.role, tt.hours)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPoints_Invalid(t *testing.T) {
	bases := DefaultBases()
	var verr *validation.Error

	_, err := bases.Points("spectator", 2)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "role", verr.Field)

	_, err = bases.Points(models.OutreachAttendee, 0)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "hours_length", verr.Field)

	_, err = bases.Points(models.OutreachAttendee, -3)
	require.ErrorAs(t, err, &verr)
}

func TestPoints_CustomBases(t *testing.T) {
	got, err := Bases{models.OutreachOrganizer: 10}.Points(models.OutreachOrganizer, 4)
	require.NoError(t, err)
	assert.Equal(t, 20, got)
}

func TestService(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewService(st, authz.MustNewGate(), nil, zerolog.Nop())

	mentor := &models.User{Name: "Morgan", Role: models.RoleMentor}
	student := &models.User{Name: "Sam", MaintenanceAccess: true}
	require.NoError(t, st.Users().Create(ctx, mentor))
	require.NoError(t, st.Users().Create(ctx, student))

	var authErr *authz.Error
	_, err := svc.CreateEvent(ctx, student, EventInput{Name: "Demo", EventDate: time.Now(), HoursLength: 2})
	require.ErrorAs(t, err, &authErr)

	var verr *validation.Error
	_, err = svc.CreateEvent(ctx, mentor, EventInput{Name: "Demo", EventDate: time.Now()})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "hours_length", verr.Field)

	ev, err := svc.CreateEvent(ctx, mentor, EventInput{Name: " Library demo ", EventDate: time.Now(), HoursLength: 8})
	require.NoError(t, err)
	assert.Equal(t, "Library demo", ev.Name)

	part, err := svc.AddParticipant(ctx, mentor, ev.ID, ParticipantInput{UserID: student.ID, Role: "Organizer"})
	require.NoError(t, err)
	assert.Equal(t, 24, part.Points)

	_, err = svc.AddParticipant(ctx, mentor, ev.ID, ParticipantInput{UserID: student.ID, Role: models.OutreachAttendee})
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = svc.AddParticipant(ctx, mentor, ev.ID, ParticipantInput{UserID: uuid.New(), Role: models.OutreachAttendee})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "user_id", verr.Field)

	_, err = svc.AddParticipant(ctx, mentor, uuid.New(), ParticipantInput{UserID: student.ID, Role: models.OutreachAttendee})
	assert.ErrorIs(t, err, store.ErrNotFound)

	board, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, student.ID, board[0].UserID)
	assert.Equal(t, 24, board[0].Points)

	parts, err := svc.Participants(ctx, ev.ID)
	require.NoError(t, err)
	assert.Len(t, parts, 1)
}
