package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staffsync/staffsync-api/internal/config"
	"github.com/staffsync/staffsync-api/internal/domain"
)

func TestOpenRepositoriesFallsBackToMemory(t *testing.T) {
	repos, err := OpenRepositories(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	defer repos.Close()

	assert.True(t, repos.InMemory)
	assert.False(t, repos.Postgres.Enabled())
	assert.Error(t, repos.Postgres.Ping(context.Background()))

	u := &domain.User{ForceNumber: "90119292MI", Surname: "Doe"}
	require.NoError(t, repos.Users.Create(context.Background(), u))
	got, err := repos.Users.GetByForceNumber(context.Background(), "90119292MI")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestOpenRepositoriesRejectsBadDSN(t *testing.T) {
	_, err := OpenRepositories(context.Background(), config.PostgresConfig{DSN: "postgres://%zz"}, zap.NewNop())
	assert.Error(t, err)
}
