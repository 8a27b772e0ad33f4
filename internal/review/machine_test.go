package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffsync/staffsync-api/internal/domain"
)

var fixedNow = time.Date(2025, 6, 9, 9, 15, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func member() domain.User {
	return domain.User{
		ID:          "member-1",
		ForceNumber: "90119292MI",
		Rank:        "Sergeant",
		Surname:     "Doe",
		Tier:        domain.TierSysAdmin,
	}
}

var (
	submitter = Actor{ID: "member-1", Tier: domain.TierSysAdmin}
	reviewer  = Actor{ID: "reviewer-1", Tier: domain.TierCommander}
	finalizer = Actor{ID: "finalizer-1", Tier: domain.TierLana}
)

func submitted(t *testing.T, updates domain.ProfileUpdates) *Workflow {
	t.Helper()
	wf := New(member(), nil, WithClock(clock))
	_, err := wf.Submit(submitter, updates)
	require.NoError(t, err)
	return wf
}

func TestSubmitFromNone(t *testing.T) {
	wf := New(member(), nil, WithClock(clock))
	require.Equal(t, StateNone, wf.State())

	updates := domain.ProfileUpdates{domain.FieldRank: "Captain", domain.FieldPhone: "+27821234567"}
	req, err := wf.Submit(submitter, updates)
	require.NoError(t, err)

	assert.Equal(t, StatePending, wf.State())
	assert.Equal(t, updates, req.Updates)
	assert.Equal(t, "member-1", req.SubmittedBy)
	assert.Equal(t, fixedNow, req.SubmittedAt)
	assert.Equal(t, domain.ChangeStatusPending, req.Status)
	assert.Nil(t, req.RecommendedBy)

	// the stored copy is isolated from the caller's map
	updates[domain.FieldRank] = "General"
	pending, ok := wf.Pending()
	require.True(t, ok)
	assert.Equal(t, "Captain", pending.Updates[domain.FieldRank])

	// the member record is untouched until finalization
	assert.Equal(t, "Sergeant", wf.Member().Rank)
}

func TestSubmitRejectsSecondRequest(t *testing.T) {
	wf := submitted(t, domain.ProfileUpdates{domain.FieldRank: "Captain"})

	_, err := wf.Submit(submitter, domain.ProfileUpdates{domain.FieldRank: "Major"})
	assert.ErrorIs(t, err, ErrPendingExists)

	pending, ok := wf.Pending()
	require.True(t, ok)
	assert.Equal(t, "Captain", pending.Updates[domain.FieldRank])
}

func TestSubmitValidation(t *testing.T) {
	wf := New(member(), nil)

	_, err := wf.Submit(submitter, domain.ProfileUpdates{})
	assert.ErrorIs(t, err, ErrInvalidUpdate)

	_, err = wf.Submit(submitter, domain.ProfileUpdates{"tier": "4"})
	assert.ErrorIs(t, err, ErrInvalidUpdate)

	_, err = wf.Submit(reviewer, domain.ProfileUpdates{domain.FieldRank: "Captain"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = wf.Submit(Actor{ID: "member-1", Tier: domain.Tier(7)}, domain.ProfileUpdates{domain.FieldRank: "Captain"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, StateNone, wf.State())
}

func TestRecommend(t *testing.T) {
	cases := []struct {
		name    string
		approve bool
		state   State
		status  domain.ChangeStatus
	}{
		{"approve", true, StateRecommended, domain.ChangeStatusRecommended},
		{"reject", false, StateRejected, domain.ChangeStatusRejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wf := submitted(t, domain.ProfileUpdates{domain.FieldRank: "Captain"})

			req, err := wf.Recommend(reviewer, tc.approve)
			require.NoError(t, err)
			assert.Equal(t, tc.state, wf.State())
			assert.Equal(t, tc.status, req.Status)
			require.NotNil(t, req.RecommendedBy)
			assert.Equal(t, "reviewer-1", *req.RecommendedBy)
			require.NotNil(t, req.RecommendedAt)
			assert.Equal(t, fixedNow, *req.RecommendedAt)
		})
	}
}

func TestRecommendGuards(t *testing.T) {
	t.Run("empty slot", func(t *testing.T) {
		wf := New(member(), nil)
		_, err := wf.Recommend(reviewer, true)
		assert.ErrorIs(t, err, ErrNoPending)
	})

	t.Run("tiers outside reviewer range", func(t *testing.T) {
		for _, tier := range []domain.Tier{domain.TierUser, domain.TierDirectorate, domain.TierLana} {
			wf := submitted(t, domain.ProfileUpdates{domain.FieldRank: "Captain"})
			_, err := wf.Recommend(Actor{ID: "x", Tier: tier}, true)
			assert.ErrorIs(t, err, ErrUnauthorized, tier.Name())
			assert.Equal(t, StatePending, wf.State())
		}
	})

	t.Run("already reviewed", func(t *testing.T) {
		wf := submitted(t, domain.ProfileUpdates{domain.FieldRank: "Captain"})
		_, err := wf.Recommend(reviewer, true)
		require.NoError(t, err)

		_, err = wf.Recommend(reviewer, false)
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, StateRecommended, wf.State())
	})
}

func TestFinalizeApproveMergesUpdates(t *testing.T) {
	wf := submitted(t, domain.ProfileUpdates{domain.FieldRank: "Captain", domain.FieldEmail: "new@saaf.mil"})
	_, err := wf.Recommend(reviewer, true)
	require.NoError(t, err)

	outcome, err := wf.Finalize(finalizer, true)
	require.NoError(t, err)

	assert.Equal(t, StateNone, wf.State())
	_, ok := wf.Pending()
	assert.False(t, ok)
	assert.Equal(t, domain.ChangeStatusApproved, outcome.Request.Status)
	assert.Equal(t, "Captain", wf.Member().Rank)
	assert.Equal(t, "new@saaf.mil", wf.Member().Email)
	assert.Equal(t, "Doe", wf.Member().Surname)
	assert.Len(t, outcome.Applied, 2)
}

func TestFinalizeRejectLeavesMember(t *testing.T) {
	for _, recommend := range []*bool{nil, boolPtr(true), boolPtr(false)} {
		wf := submitted(t, domain.ProfileUpdates{domain.FieldRank: "Captain"})
		if recommend != nil {
			_, err := wf.Recommend(reviewer, *recommend)
			require.NoError(t, err)
		}

		outcome, err := wf.Finalize(finalizer, false)
		require.NoError(t, err)
		assert.Equal(t, StateNone, wf.State())
		assert.Equal(t, domain.ChangeStatusRejected, outcome.Request.Status)
		assert.Empty(t, outcome.Applied)
		assert.Equal(t, member(), wf.Member())
	}
}

func TestFinalizeGuards(t *testing.T) {
	wf := New(member(), nil)
	_, err := wf.Finalize(finalizer, true)
	assert.ErrorIs(t, err, ErrNoPending)

	wf = submitted(t, domain.ProfileUpdates{domain.FieldRank: "Captain"})
	for _, tier := range []domain.Tier{domain.TierUser, domain.TierSysAdmin, domain.TierCommander} {
		_, err := wf.Finalize(Actor{ID: "x", Tier: tier}, true)
		assert.ErrorIs(t, err, ErrUnauthorized, tier.Name())
	}
	assert.Equal(t, StatePending, wf.State())
	assert.Equal(t, "Sergeant", wf.Member().Rank)
}

func TestUpdateDirect(t *testing.T) {
	wf := New(member(), nil)

	changes, err := wf.UpdateDirect(finalizer, domain.ProfileUpdates{domain.FieldRank: "Major"})
	require.NoError(t, err)
	assert.Equal(t, []domain.FieldChange{{Field: domain.FieldRank, OldValue: "Sergeant", NewValue: "Major"}}, changes)
	assert.Equal(t, "Major", wf.Member().Rank)
	assert.Equal(t, StateNone, wf.State())

	_, err = wf.UpdateDirect(reviewer, domain.ProfileUpdates{domain.FieldRank: "General"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = wf.UpdateDirect(finalizer, domain.ProfileUpdates{"force_number": "1"})
	assert.ErrorIs(t, err, ErrInvalidUpdate)
}

func TestRankPromotionApprovedByDirectorate(t *testing.T) {
	user := member()
	wf := New(user, nil, WithClock(clock))

	req, err := wf.Submit(Actor{ID: user.ID, Tier: domain.TierSysAdmin}, domain.ProfileUpdates{"rank": "Captain"})
	require.NoError(t, err)
	assert.Equal(t, StatePending, wf.State())
	assert.Equal(t, "Captain", req.Updates["rank"])

	_, err = wf.Recommend(Actor{ID: "cmdr", Tier: domain.TierCommander}, true)
	require.NoError(t, err)
	assert.Equal(t, StateRecommended, wf.State())

	_, err = wf.Finalize(Actor{ID: "lana", Tier: domain.TierLana}, true)
	require.NoError(t, err)
	assert.Equal(t, "Captain", wf.Member().Rank)
	_, ok := wf.Pending()
	assert.False(t, ok)
}

func TestNewClonesPending(t *testing.T) {
	pending := &domain.ProfileChangeRequest{
		MemberID: "member-1",
		Updates:  domain.ProfileUpdates{domain.FieldRank: "Captain"},
		Status:   domain.ChangeStatusRecommended,
	}
	wf := New(member(), pending)
	pending.Updates[domain.FieldRank] = "General"

	assert.Equal(t, StateRecommended, wf.State())
	got, _ := wf.Pending()
	assert.Equal(t, "Captain", got.Updates[domain.FieldRank])
}

func boolPtr(v bool) *bool { return &v }
