package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/service"
)

func TestRenderPersonnel(t *testing.T) {
	page := &service.PersonnelPage{
		Rows: []domain.PersonnelRow{
			{ForceNumber: "90119292MI", Rank: "Captain", Surname: "Doe", FirstName: "John", MusteringName: "Pilot", UnitName: "17 Squadron", BaseName: "AFB Waterkloof", ReadinessStatus: domain.ReadinessReady},
			{ForceNumber: "98045679MC", Rank: "Captain", Surname: "Tola", FirstName: "Eric", MusteringName: "Pilot", UnitName: "—", BaseName: "—", ReadinessStatus: domain.ReadinessPending},
		},
		Total:      2,
		Page:       1,
		PageSize:   8,
		TotalPages: 1,
	}

	out := RenderPersonnel(page)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, "Personnel", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "Force No.")
	assert.Contains(t, lines[1], "Readiness")
	assert.Contains(t, out, "90119292MI")
	assert.Contains(t, out, "AFB Waterkloof")
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "page 1 of 1, 2 members")
	// header, divider, two rows
	assert.Len(t, lines, 6)
}

func TestRenderPersonnelEmpty(t *testing.T) {
	out := RenderPersonnel(&service.PersonnelPage{Page: 1, TotalPages: 1})
	assert.Contains(t, out, "no personnel match the filter")
}

func TestReadinessBadge(t *testing.T) {
	for _, status := range []domain.ReadinessStatus{domain.ReadinessReady, domain.ReadinessNotReady, domain.ReadinessPending, "Unknown"} {
		assert.Contains(t, ReadinessBadge(status), string(status))
	}
}
