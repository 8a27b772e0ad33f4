package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/repository/memory"
)

const sampleDoc = `
musterings:
  - code: P
    name: Pilot
bases:
  - id: 1
    name: AFB Waterkloof
    city: Pretoria
units:
  - id: 7
    mustering_code: P
    name: 17 Squadron
    base_id: 1
members:
  - force_number: 90119292mi
    rank: Captain
    surname: Doe
    mustering_code: P
    unit_id: 7
    tier: 3
    readiness: Not Ready
    readiness_reason: Medical
  - force_number: 01020033MI
    rank: Corporal
    surname: Mokoena
    mustering_code: P
`

func writeSeed(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reference.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func deps(store *memory.Store) Dependencies {
	repos := store.Repositories()
	return Dependencies{Users: repos.Users, Personnel: repos.Personnel, Transactor: repos.Transactor}
}

func TestApplySeedsPersonnel(t *testing.T) {
	ref, err := LoadFile(writeSeed(t, sampleDoc))
	require.NoError(t, err)

	store := memory.NewStore()
	result, err := Apply(context.Background(), deps(store), ref)
	require.NoError(t, err)
	assert.Equal(t, &Result{Musterings: 1, Bases: 1, Units: 1, MembersCreated: 2}, result)

	repos := store.Repositories()
	member, err := repos.Users.GetByForceNumber(context.Background(), "90119292MI")
	require.NoError(t, err)
	assert.Equal(t, domain.TierDirectorate, member.Tier)
	assert.False(t, member.HasCredentials())

	rows, err := repos.Personnel.ListPersonnel(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Doe", rows[0].Surname)
	assert.Equal(t, "17 Squadron", rows[0].UnitName)
	assert.Equal(t, "AFB Waterkloof", rows[0].BaseName)
	assert.Equal(t, domain.ReadinessNotReady, rows[0].ReadinessStatus)
	assert.Equal(t, domain.ReadinessReady, rows[1].ReadinessStatus)
}

func TestApplyIsRepeatable(t *testing.T) {
	ref, err := ParseReference([]byte(sampleDoc))
	require.NoError(t, err)

	store := memory.NewStore()
	_, err = Apply(context.Background(), deps(store), ref)
	require.NoError(t, err)

	repos := store.Repositories()
	member, err := repos.Users.GetByForceNumber(context.Background(), "90119292MI")
	require.NoError(t, err)
	member.Rank = "Major"
	require.NoError(t, repos.Users.Update(context.Background(), member))

	result, err := Apply(context.Background(), deps(store), ref)
	require.NoError(t, err)
	assert.Equal(t, 0, result.MembersCreated)
	assert.Equal(t, 2, result.MembersSkipped)

	member, err = repos.Users.GetByForceNumber(context.Background(), "90119292MI")
	require.NoError(t, err)
	assert.Equal(t, "Major", member.Rank)
}

func TestParseReferenceRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad force number":  "members:\n  - force_number: 123\n",
		"bad tier":          "members:\n  - force_number: 90119292MI\n    tier: 7\n",
		"unknown unit":      "members:\n  - force_number: 90119292MI\n    unit_id: 3\n",
		"unknown mustering": "units:\n  - id: 1\n    mustering_code: ZZ\n    name: Ghost\n",
		"bad readiness":     "members:\n  - force_number: 90119292MI\n    readiness: Maybe\n",
		"duplicate member":  "members:\n  - force_number: 90119292MI\n  - force_number: 90119292mi\n",
		"malformed yaml":    "members: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseReference([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestBundledReferenceFileParses(t *testing.T) {
	ref, err := LoadFile(filepath.Join("..", "..", "seed", "reference.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, ref.Musterings)
	assert.NotEmpty(t, ref.Members)
}
