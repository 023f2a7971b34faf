package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eventra/eventra/internal/database/testutil"
	"github.com/eventra/eventra/internal/models"
)

func TestTeamServiceCreateAndUpdate(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewTeamService(db)
	require.NoError(t, err)

	ctx := context.Background()
	team, err := svc.Create(ctx, CreateTeamInput{Name: " platform ", Description: "infra crew"})
	require.NoError(t, err)
	require.Equal(t, "platform", team.Name)

	_, err = svc.Create(ctx, CreateTeamInput{Name: "platform"})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateTeamInput{Name: "   "})
	require.Error(t, err)

	name := "platform-eng"
	updated, err := svc.Update(ctx, team.ID, UpdateTeamInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "platform-eng", updated.Name)

	_, err = svc.Update(ctx, "missing", UpdateTeamInput{Name: &name})
	require.ErrorIs(t, err, ErrTeamNotFound)
}

func TestTeamServiceMembership(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewTeamService(db)
	require.NoError(t, err)

	ctx := context.Background()
	team, err := svc.Create(ctx, CreateTeamInput{Name: "oncall"})
	require.NoError(t, err)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	require.NoError(t, svc.AddMember(ctx, team.ID, alice.ID))
	require.ErrorIs(t, svc.AddMember(ctx, team.ID, alice.ID), ErrTeamMemberAlreadyExists)
	require.ErrorIs(t, svc.AddMember(ctx, team.ID, "missing"), ErrUserNotFound)
	require.ErrorIs(t, svc.AddMember(ctx, "missing", alice.ID), ErrTeamNotFound)

	require.NoError(t, svc.AddMember(ctx, team.ID, bob.ID))

	members, err := svc.ListMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	require.NoError(t, svc.RemoveMember(ctx, team.ID, bob.ID))
	require.ErrorIs(t, svc.RemoveMember(ctx, team.ID, bob.ID), ErrTeamMemberNotFound)

	members, err = svc.ListMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, alice.ID, members[0].ID)
}

func TestTeamServiceActiveMemberIDs(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewTeamService(db)
	require.NoError(t, err)

	ctx := context.Background()
	team, err := svc.Create(ctx, CreateTeamInput{Name: "support"})
	require.NoError(t, err)

	active := seedUser(t, db, "active")
	inactive := seedUser(t, db, "inactive")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	require.NoError(t, svc.AddMember(ctx, team.ID, active.ID))
	require.NoError(t, svc.AddMember(ctx, team.ID, inactive.ID))

	ids, err := svc.ActiveMemberIDs(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, []string{active.ID}, ids)

	// Deactivation between calls is observed immediately.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", active.ID).Update("is_active", false).Error)
	ids, err = svc.ActiveMemberIDs(ctx, team.ID)
	require.NoError(t, err)
	require.Empty(t, ids)
}
