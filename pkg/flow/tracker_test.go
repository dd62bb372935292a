package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/signpost/pkg/types"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	g, err := NewGraph(publish(demoBundle()))
	require.NoError(t, err)
	plan, err := StartPlan(g, "Test plan", "alice")
	require.NoError(t, err)
	return NewTracker(g, plan)
}

func TestStartPlan(t *testing.T) {
	t.Run("draft template is rejected", func(t *testing.T) {
		g, err := NewGraph(demoBundle())
		require.NoError(t, err)
		_, err = StartPlan(g, "Test plan", "alice")
		assert.ErrorIs(t, err, types.ErrTemplateDraft)
	})

	t.Run("template without questions is rejected", func(t *testing.T) {
		bundle := publish(demoBundle())
		bundle.Questions = nil
		bundle.CannedAnswers = nil
		g, err := NewGraph(bundle)
		require.NoError(t, err)
		_, err = StartPlan(g, "Test plan", "alice")
		assert.ErrorIs(t, err, types.ErrNoFirstQuestion)
	})

	t.Run("fresh plan carries the creating user", func(t *testing.T) {
		tracker := newTestTracker(t)
		plan := tracker.Plan()
		assert.Equal(t, 1, plan.Version)
		assert.Equal(t, []string{"alice"}, plan.Editors)
		assert.Equal(t, "alice", plan.AddedBy)
		assert.Empty(t, plan.Data)
		assert.False(t, plan.IsLocked())
	})
}

func TestTrackerAnswer(t *testing.T) {
	t.Run("valid answer marks question and section", func(t *testing.T) {
		tracker := newTestTracker(t)
		next, progress, err := tracker.Answer("q1", types.Answer{Choice: "no"})
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, "q2", next.QuestionID)

		qv := tracker.QuestionValidities()
		require.Len(t, qv, 1)
		assert.True(t, qv[0].Valid)

		// s1 holds another obligatory question, so it is not valid yet under
		// the "no" branch.
		sv := tracker.SectionValidities()
		require.Len(t, sv, 1)
		assert.Equal(t, "s1", sv[0].SectionID)
		assert.False(t, sv[0].Valid)

		require.Len(t, progress, 2)
		assert.Equal(t, SectionActive, progress[0].Status)
		assert.Equal(t, SectionNew, progress[1].Status)

		assert.True(t, tracker.Plan().HasVisited("s1"))
		assert.Equal(t, "q1", tracker.Plan().Trail["q2"])
	})

	t.Run("yes branch validates the section without q2", func(t *testing.T) {
		tracker := newTestTracker(t)
		next, _, err := tracker.Answer("q1", types.Answer{Choice: "yes"})
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, "q3", next.QuestionID)

		sv := tracker.SectionValidities()
		require.Len(t, sv, 1)
		assert.True(t, sv[0].Valid,
			"q2 sits on the branch not taken and must not block section validity")
	})

	t.Run("invalid answer invalidates question and section", func(t *testing.T) {
		tracker := newTestTracker(t)
		_, _, err := tracker.Answer("q1", types.Answer{Choice: "maybe"})
		assert.ErrorIs(t, err, types.ErrInvalidAnswer)

		qv := tracker.QuestionValidities()
		require.Len(t, qv, 1)
		assert.False(t, qv[0].Valid)
		sv := tracker.SectionValidities()
		require.Len(t, sv, 1)
		assert.False(t, sv[0].Valid)

		_, answered := tracker.Plan().Data["q1"]
		assert.False(t, answered, "rejected answers are not stored")
	})

	t.Run("unchanged answer does not touch timestamps", func(t *testing.T) {
		tracker := newTestTracker(t)
		_, _, err := tracker.Answer("q1", types.Answer{Choice: "yes"})
		require.NoError(t, err)
		validated := tracker.QuestionValidities()[0].LastValidated
		updated := tracker.Plan().UpdatedAt

		_, _, err = tracker.Answer("q1", types.Answer{Choice: "yes"})
		require.NoError(t, err)
		assert.Equal(t, validated, tracker.QuestionValidities()[0].LastValidated)
		assert.Equal(t, updated, tracker.Plan().UpdatedAt)
	})

	t.Run("locked plan rejects answers", func(t *testing.T) {
		tracker := newTestTracker(t)
		require.NoError(t, tracker.Plan().Lock("alice"))
		_, _, err := tracker.Answer("q1", types.Answer{Choice: "yes"})
		assert.ErrorIs(t, err, types.ErrPlanLocked)
	})

	t.Run("unknown question", func(t *testing.T) {
		tracker := newTestTracker(t)
		_, _, err := tracker.Answer("missing", types.Answer{Choice: "yes"})
		assert.ErrorIs(t, err, types.ErrUnknownQuestion)
	})
}

func TestTrackerPrevious(t *testing.T) {
	tracker := newTestTracker(t)

	// Walk q1 -(yes)-> q3, then go back.
	next, _, err := tracker.Answer("q1", types.Answer{Choice: "yes"})
	require.NoError(t, err)
	require.Equal(t, "q3", next.QuestionID)

	prev, err := tracker.Previous("q3")
	require.NoError(t, err)
	assert.Equal(t, "q1", prev.QuestionID, "trail resolves the skip")

	// Change the answer so the trail entry no longer re-derives; resolution
	// falls back to the graph.
	_, _, err = tracker.Answer("q1", types.Answer{Choice: "no"})
	require.NoError(t, err)
	prev, err = tracker.Previous("q3")
	require.NoError(t, err)
	assert.Equal(t, "q2", prev.QuestionID)

	prev, err = tracker.Previous("q1")
	require.NoError(t, err)
	assert.Nil(t, prev, "first question has no predecessor")
}

func TestTrackerPrefill(t *testing.T) {
	tracker := newTestTracker(t)

	assert.True(t, tracker.Prefill("q1").IsEmpty())

	_, _, err := tracker.Answer("q1", types.Answer{Choice: "yes", Notes: "keep"})
	require.NoError(t, err)
	assert.Equal(t, "yes", tracker.Prefill("q1").Choice)

	// Clearing the current answer leaves the previous-data snapshot as the
	// prefill source.
	delete(tracker.Plan().Data, "q1")
	got := tracker.Prefill("q1")
	assert.Equal(t, "yes", got.Choice)
	assert.Equal(t, "keep", got.Notes)
}

func TestTrackerValidatePlan(t *testing.T) {
	tracker := newTestTracker(t)
	assert.False(t, tracker.ValidatePlan(), "nothing answered yet")

	_, _, err := tracker.Answer("q1", types.Answer{Choice: "yes"})
	require.NoError(t, err)
	assert.False(t, tracker.ValidatePlan(), "q3 still unanswered")

	_, _, err = tracker.Answer("q3", types.Answer{Choice: "Deposit in a repository."})
	require.NoError(t, err)
	assert.True(t, tracker.ValidatePlan())

	// Switching to the no branch re-exposes q2 and breaks validity.
	_, _, err = tracker.Answer("q1", types.Answer{Choice: "no"})
	require.NoError(t, err)
	assert.False(t, tracker.ValidatePlan())

	sv := tracker.SectionValidities()
	require.Len(t, sv, 2)
	assert.False(t, sv[0].Valid)
	assert.True(t, sv[1].Valid)
}

func TestTrackerVisitAndProgress(t *testing.T) {
	tracker := newTestTracker(t)

	require.NoError(t, tracker.Visit("s2"))
	assert.True(t, tracker.Plan().HasVisited("s2"))
	assert.ErrorIs(t, tracker.Visit("missing"), types.ErrUnknownSection)

	statuses := tracker.SectionProgress(nil)
	require.Len(t, statuses, 2)
	assert.Equal(t, SectionNew, statuses[0].Status)
	assert.Equal(t, SectionVisited, statuses[1].Status)

	pct, err := tracker.Progress("q1")
	require.NoError(t, err)
	assert.Zero(t, pct)
	pct, err = tracker.Progress("q3")
	require.NoError(t, err)
	assert.InDelta(t, 66.6, pct, 1.0)
	_, err = tracker.Progress("missing")
	assert.ErrorIs(t, err, types.ErrUnknownQuestion)
}

func TestTrackerSummary(t *testing.T) {
	tracker := newTestTracker(t)
	_, _, err := tracker.Answer("q1", types.Answer{Choice: "yes"})
	require.NoError(t, err)

	summary := tracker.Summary()
	require.Len(t, summary, 3)
	assert.Equal(t, "q1", summary[0].Question.QuestionID)
	assert.Equal(t, "s1", summary[0].Section.SectionID)
	assert.Equal(t, "yes", summary[0].Answer.Choice)
	assert.True(t, summary[1].Answer.IsEmpty())
	assert.Equal(t, "q3", summary[2].Question.QuestionID)
}

func TestTrackerLoadValidities(t *testing.T) {
	tracker := newTestTracker(t)
	planID := tracker.Plan().PlanID

	tracker.LoadValidities(
		[]*types.QuestionValidity{
			{PlanID: planID, QuestionID: "q1", Valid: true},
			{PlanID: "other-plan", QuestionID: "q2", Valid: true},
		},
		[]*types.SectionValidity{
			{PlanID: planID, SectionID: "s1", Valid: true},
		},
	)

	qv := tracker.QuestionValidities()
	require.Len(t, qv, 1, "records for other plans are ignored")
	assert.Equal(t, "q1", qv[0].QuestionID)
	sv := tracker.SectionValidities()
	require.Len(t, sv, 1)
	assert.Equal(t, "s1", sv[0].SectionID)
}
