package memory

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/repository"
	apperrors "github.com/staffsync/staffsync-api/pkg/util"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()

	user := &domain.User{ForceNumber: "90119292MI", Surname: "Doe", Email: "Doe@saaf.mil"}
	require.NoError(t, repos.Users.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	dup := &domain.User{ForceNumber: "90119292MI"}
	err := repos.Users.Create(ctx, dup)
	assert.True(t, apperrors.IsUniqueViolation(err))

	got, err := repos.Users.GetByEmail(ctx, "doe@SAAF.mil")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got.Rank = "Captain"
	require.NoError(t, repos.Users.Update(ctx, got))
	reloaded, err := repos.Users.GetByForceNumber(ctx, "90119292MI")
	require.NoError(t, err)
	assert.Equal(t, "Captain", reloaded.Rank)

	_, err = repos.Users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestProfileChangeSlot(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()

	got, err := repos.ProfileChanges.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, got)

	req := &domain.ProfileChangeRequest{
		MemberID: "m1",
		Updates:  domain.ProfileUpdates{domain.FieldRank: "Captain"},
		Status:   domain.ChangeStatusPending,
	}
	require.NoError(t, repos.ProfileChanges.Save(ctx, req))
	req.Updates[domain.FieldRank] = "General"

	got, err = repos.ProfileChanges.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Captain", got.Updates[domain.FieldRank])

	require.NoError(t, repos.ProfileChanges.Save(ctx, &domain.ProfileChangeRequest{MemberID: "m2", Status: domain.ChangeStatusRecommended}))
	list, err := repos.ProfileChanges.List(ctx, repository.ProfileChangeFilter{Statuses: []domain.ChangeStatus{domain.ChangeStatusRecommended}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "m2", list[0].MemberID)

	require.NoError(t, repos.ProfileChanges.Delete(ctx, "m1"))
	got, err = repos.ProfileChanges.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAuditLogFilters(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	alice, bob := "alice", "bob"

	require.NoError(t, repos.AuditLogs.Create(ctx, &domain.AuditLog{ActorID: &alice, Action: domain.AuditActionLogin}))
	require.NoError(t, repos.AuditLogs.Create(ctx, &domain.AuditLog{ActorID: &bob, Action: domain.AuditActionFlag}))
	require.NoError(t, repos.AuditLogs.Create(ctx, &domain.AuditLog{ActorID: &alice, Action: domain.AuditActionUpdate}))

	all, err := repos.AuditLogs.List(ctx, repository.AuditLogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.AuditActionUpdate, all[0].Action)

	mine, err := repos.AuditLogs.List(ctx, repository.AuditLogFilter{ActorID: &alice, Limit: 1})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, domain.AuditActionUpdate, mine[0].Action)

	action := domain.AuditActionFlag
	flags, err := repos.AuditLogs.List(ctx, repository.AuditLogFilter{Action: &action})
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, "bob", *flags[0].ActorID)
}

func TestListPersonnelJoins(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	baseID, unitID := int64(1), int64(2)

	require.NoError(t, repos.Personnel.UpsertMustering(ctx, domain.Mustering{Code: "P", Name: "Pilot"}))
	require.NoError(t, repos.Personnel.UpsertBase(ctx, domain.Base{ID: baseID, Name: "AFB Waterkloof"}))
	require.NoError(t, repos.Personnel.UpsertUnit(ctx, domain.Unit{ID: unitID, Name: "21 Squadron", BaseID: &baseID}))

	linked := &domain.User{ForceNumber: "10000001PE", Surname: "Botha", MusteringCode: "P", UnitID: &unitID}
	loose := &domain.User{ForceNumber: "10000002PE", Surname: "Adams", MusteringCode: "XX"}
	require.NoError(t, repos.Users.Create(ctx, linked))
	require.NoError(t, repos.Users.Create(ctx, loose))
	require.NoError(t, repos.Personnel.UpsertReadiness(ctx, domain.Readiness{MemberID: linked.ID, Status: domain.ReadinessPending}))

	rows, err := repos.Personnel.ListPersonnel(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Adams", rows[0].Surname)
	assert.Empty(t, rows[0].MusteringName)
	assert.Equal(t, domain.ReadinessReady, rows[0].ReadinessStatus)

	assert.Equal(t, "Pilot", rows[1].MusteringName)
	assert.Equal(t, "21 Squadron", rows[1].UnitName)
	assert.Equal(t, "AFB Waterkloof", rows[1].BaseName)
	assert.Equal(t, domain.ReadinessPending, rows[1].ReadinessStatus)
}

func TestTransactorReentrant(t *testing.T) {
	repos := NewStore().Repositories()
	calls := 0
	err := repos.Transactor.WithinTx(context.Background(), func(ctx context.Context) error {
		return repos.Transactor.WithinTx(ctx, func(context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPasswordResets(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()

	_, err := repos.PasswordResets.GetLatest(ctx, "m1")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	first := &domain.PasswordReset{MemberID: "m1", CodeHash: "a", Channel: domain.ResetChannelEmail}
	second := &domain.PasswordReset{MemberID: "m1", CodeHash: "b", Channel: domain.ResetChannelCellphone}
	require.NoError(t, repos.PasswordResets.Create(ctx, first))
	require.NoError(t, repos.PasswordResets.Create(ctx, second))

	latest, err := repos.PasswordResets.GetLatest(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	require.NoError(t, repos.PasswordResets.IncrementAttempts(ctx, second.ID))
	latest, err = repos.PasswordResets.GetLatest(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 1, latest.Attempts)

	require.NoError(t, repos.PasswordResets.MarkUsed(ctx, second.ID))
	latest, err = repos.PasswordResets.GetLatest(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)

	assert.ErrorIs(t, repos.PasswordResets.MarkUsed(ctx, "missing"), pgx.ErrNoRows)
}
