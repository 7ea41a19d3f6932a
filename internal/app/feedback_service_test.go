package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"scholarchat/internal/model"
)

type fakeFeedbackStore struct {
	users   *fakeUserStore
	entries []model.Feedback
}

func (f *fakeFeedbackStore) CreateWithAward(feedback *model.Feedback, award float64) (float64, error) {
	feedback.ID = uint(len(f.entries) + 1)
	f.entries = append(f.entries, *feedback)
	return f.users.Credit(feedback.ReviewerID, award)
}

func (f *fakeFeedbackStore) ListByPaperID(paperID uint) ([]model.Feedback, error) {
	var out []model.Feedback
	for _, e := range f.entries {
		if e.PaperID == paperID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestCreateFeedbackAwardsPoints(t *testing.T) {
	users := &fakeUserStore{users: map[uint]*model.User{
		1: {ID: 1, Username: "reviewer", HasherPoints: 3},
	}}
	store := &fakeFeedbackStore{users: users}
	papers := &fakePaperStore{papers: map[uint]*model.Paper{1: paperFixture(1, "Reviewed Paper")}}
	ledger := &fakeLedger{}
	svc := NewFeedbackService(store, papers, ledger, 1, nil)

	feedback, balance, err := svc.Create(context.Background(), CreateFeedbackInput{
		PaperID:    1,
		ReviewerID: 1,
		Content:    "Solid methodology, weak evaluation.",
		Rating:     4,
	})
	require.NoError(t, err)
	require.NotZero(t, feedback.ID)
	require.Equal(t, 4.0, balance)
	require.Len(t, ledger.entries, 1)
	require.Equal(t, "feedback_award", ledger.entries[0].Purpose)

	listed, err := svc.List(1)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestCreateFeedbackValidates(t *testing.T) {
	users := &fakeUserStore{users: map[uint]*model.User{1: {ID: 1, HasherPoints: 0}}}
	store := &fakeFeedbackStore{users: users}
	papers := &fakePaperStore{papers: map[uint]*model.Paper{1: paperFixture(1, "Reviewed Paper")}}
	svc := NewFeedbackService(store, papers, &fakeLedger{}, 1, nil)

	_, _, err := svc.Create(context.Background(), CreateFeedbackInput{PaperID: 1, ReviewerID: 1, Content: "  "})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = svc.Create(context.Background(), CreateFeedbackInput{PaperID: 1, ReviewerID: 1, Content: "ok", Rating: 9})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = svc.Create(context.Background(), CreateFeedbackInput{PaperID: 7, ReviewerID: 1, Content: "missing"})
	require.ErrorIs(t, err, ErrPaperNotFound)
}
