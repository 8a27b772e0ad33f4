package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffsync/staffsync-api/internal/domain"
)

func seedPersonnel(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	p := env.repos.Personnel
	waterkloof, makhado := int64(1), int64(2)
	sq21, sq2 := int64(10), int64(20)

	require.NoError(t, p.UpsertMustering(ctx, domain.Mustering{Code: "C2", Name: "Command and Control"}))
	require.NoError(t, p.UpsertMustering(ctx, domain.Mustering{Code: "P", Name: "Pilot"}))
	require.NoError(t, p.UpsertBase(ctx, domain.Base{ID: waterkloof, Name: "AFB Waterkloof", City: "Centurion", Province: "Gauteng"}))
	require.NoError(t, p.UpsertBase(ctx, domain.Base{ID: makhado, Name: "AFB Makhado", City: "Makhado", Province: "Limpopo"}))
	require.NoError(t, p.UpsertUnit(ctx, domain.Unit{ID: sq21, Name: "21 Squadron", MusteringCode: "P", BaseID: &waterkloof}))
	require.NoError(t, p.UpsertUnit(ctx, domain.Unit{ID: sq2, Name: "2 Squadron", MusteringCode: "P", BaseID: &makhado}))

	members := []domain.User{
		{ForceNumber: "10000001PE", Rank: "Major", Surname: "Adams", FirstName: "Ann", MusteringCode: "P", UnitID: &sq21},
		{ForceNumber: "10000002PE", Rank: "Captain", Surname: "Botha", FirstName: "Ben", MusteringCode: "P", UnitID: &sq2},
		{ForceNumber: "10000003PE", Rank: "Captain", Surname: "Cele", FirstName: "Cara", MusteringCode: "P", UnitID: &sq2},
		{ForceNumber: "10000004MC", Rank: "Corporal", Surname: `O"Neil`, FirstName: "Dan", MusteringCode: "C2"},
	}
	for i := range members {
		require.NoError(t, env.repos.Users.Create(ctx, &members[i]))
	}
	require.NoError(t, p.UpsertReadiness(ctx, domain.Readiness{MemberID: members[1].ID, Status: domain.ReadinessNotReady}))
}

func TestPersonnelListDefaultsAndPlaceholders(t *testing.T) {
	env := newTestEnv(t)
	seedPersonnel(t, env)

	page, err := env.personnel.List(context.Background(), PersonnelFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, DefaultPageSize, page.PageSize)

	last := page.Rows[3]
	assert.Equal(t, `O"Neil`, last.Surname)
	assert.Equal(t, domain.Placeholder, last.UnitName)
	assert.Equal(t, domain.Placeholder, last.BaseName)
	assert.Equal(t, domain.ReadinessReady, last.ReadinessStatus)
}

func TestPersonnelFilters(t *testing.T) {
	env := newTestEnv(t)
	seedPersonnel(t, env)

	cases := []struct {
		name     string
		filter   PersonnelFilter
		surnames []string
	}{
		{"search surname case-insensitive", PersonnelFilter{Search: "BOTHA"}, []string{"Botha"}},
		{"search base name", PersonnelFilter{Search: "makhado"}, []string{"Botha", "Cele"}},
		{"search spans fields", PersonnelFilter{Search: "captain botha"}, []string{"Botha"}},
		{"search placeholder", PersonnelFilter{Search: domain.Placeholder}, []string{`O"Neil`}},
		{"mustering", PersonnelFilter{Musterings: []string{"C2"}}, []string{`O"Neil`}},
		{"rank multi", PersonnelFilter{Ranks: []string{"Major", "Corporal"}}, []string{"Adams", `O"Neil`}},
		{"readiness", PersonnelFilter{Readiness: []domain.ReadinessStatus{domain.ReadinessNotReady}}, []string{"Botha"}},
		{"combined", PersonnelFilter{Search: "squadron", Ranks: []string{"Captain"}, Readiness: []domain.ReadinessStatus{domain.ReadinessReady}}, []string{"Cele"}},
		{"no match", PersonnelFilter{Search: "zzz"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := env.personnel.List(context.Background(), tc.filter)
			require.NoError(t, err)
			got := []string{}
			for _, row := range page.Rows {
				got = append(got, row.Surname)
			}
			assert.Equal(t, tc.surnames, got)
		})
	}
}

func TestPersonnelPaginationClamps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, env.repos.Users.Create(ctx, &domain.User{
			ForceNumber: fmt.Sprintf("2000%04dPE", i),
			Surname:     fmt.Sprintf("Member%02d", i),
		}))
	}

	page, err := env.personnel.List(ctx, PersonnelFilter{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Rows, 2)
	assert.Equal(t, "Member08", page.Rows[0].Surname)

	page, err = env.personnel.List(ctx, PersonnelFilter{Page: 9})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Rows, 2)

	page, err = env.personnel.List(ctx, PersonnelFilter{Page: -1, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 4, page.TotalPages)
	assert.Len(t, page.Rows, 3)

	page, err = env.personnel.List(ctx, PersonnelFilter{Search: "nobody", Page: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Rows)
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t)
	seedPersonnel(t, env)

	var buf bytes.Buffer
	n, err := env.personnel.ExportCSV(context.Background(), &buf, PersonnelFilter{Musterings: []string{"C2"}, Page: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t,
		"force_number,rank,surname,first_name,mustering,unit,base,readiness\n"+
			`"10000004MC","Corporal","O""Neil","Dan","Command and Control","—","—","Ready"`,
		buf.String())
}

func TestWritePersonnelCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePersonnelCSV(&buf, nil))
	assert.Equal(t, "force_number,rank,surname,first_name,mustering,unit,base,readiness", buf.String())
}

func TestMusteringBreakdown(t *testing.T) {
	env := newTestEnv(t)
	seedPersonnel(t, env)
	ctx := context.Background()

	breakdown, err := env.personnel.MusteringBreakdown(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "C2", breakdown.Selected)
	assert.Equal(t, []MusteringCount{
		{Code: "C2", Name: "Command and Control", Count: 1},
		{Code: "P", Name: "Pilot", Count: 3},
	}, breakdown.Musterings)

	breakdown, err = env.personnel.MusteringBreakdown(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, []RankCount{{Rank: "Captain", Count: 2}, {Rank: "Major", Count: 1}}, breakdown.Ranks)

	_, err = env.personnel.MusteringBreakdown(ctx, "XX")
	requireDomainCode(t, err, "NOT_FOUND")
}

func TestBaseAndUnitBreakdown(t *testing.T) {
	env := newTestEnv(t)
	seedPersonnel(t, env)
	ctx := context.Background()

	bases, err := env.personnel.BaseBreakdown(ctx)
	require.NoError(t, err)
	require.Len(t, bases, 2)
	assert.Equal(t, "AFB Waterkloof", bases[0].Name)
	assert.Equal(t, 1, bases[0].Members)
	assert.Equal(t, 1, bases[0].Units)
	assert.Equal(t, "Limpopo", bases[1].Province)
	assert.Equal(t, 2, bases[1].Members)

	units, err := env.personnel.UnitBreakdown(ctx)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "21 Squadron", units[0].Name)
	assert.Equal(t, "AFB Waterkloof", units[0].BaseName)
	assert.Equal(t, 2, units[1].Members)
}
