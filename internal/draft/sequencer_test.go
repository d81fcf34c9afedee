package draft_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-gifting/internal/draft"
	"ms-gifting/internal/models"
)

type fakeCreator struct {
	created []models.GiftDraft
	err     error
}

func (f *fakeCreator) CreateFromDraft(_ context.Context, sess models.Session, d models.GiftDraft) (*models.Gift, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, d)
	return &models.Gift{GiftID: "gift-1", UserID: sess.UserID, Amount: 1000}, nil
}

func newSequencer(creator *fakeCreator) (*draft.Sequencer, *draft.MemoryStore) {
	store := draft.NewMemoryStore()
	return draft.NewSequencer(store, creator), store
}

func validDraft() models.GiftDraft {
	return models.GiftDraft{
		EventID:       "event-1",
		PerformerID:   "performer-1",
		PerformerName: "Sakura Hoshino",
		Amount:        "1000",
		Comment:       "Great show!",
	}
}

func TestCompose_OverwritesSlot(t *testing.T) {
	seq, _ := newSequencer(&fakeCreator{})
	ctx := context.Background()

	first := validDraft()
	require.NoError(t, seq.Compose(ctx, "sess-1", first))

	second := validDraft()
	second.Amount = "3000"
	require.NoError(t, seq.Compose(ctx, "sess-1", second))

	d, err := seq.Review(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "3000", d.Amount)
}

func TestCompose_Validation(t *testing.T) {
	seq, _ := newSequencer(&fakeCreator{})
	ctx := context.Background()

	missing := validDraft()
	missing.PerformerID = ""
	assert.Error(t, seq.Compose(ctx, "sess-1", missing))

	bad := validDraft()
	bad.Amount = "lots"
	assert.Error(t, seq.Compose(ctx, "sess-1", bad))

	negative := validDraft()
	negative.Amount = "-100"
	assert.Error(t, seq.Compose(ctx, "sess-1", negative))
}

func TestReview_WithoutDraft(t *testing.T) {
	seq, _ := newSequencer(&fakeCreator{})

	_, err := seq.Review(context.Background(), "sess-1")
	assert.ErrorIs(t, err, draft.ErrNoDraft)
}

func TestConfirm_RequiresSession(t *testing.T) {
	creator := &fakeCreator{}
	seq, _ := newSequencer(creator)

	_, err := seq.Confirm(context.Background(), models.Session{})
	assert.ErrorIs(t, err, draft.ErrSessionRequired)
	assert.Empty(t, creator.created)
}

func TestConfirm_KeepsDraftOnFailure(t *testing.T) {
	creator := &fakeCreator{err: errors.New("db down")}
	seq, _ := newSequencer(creator)
	ctx := context.Background()
	sess := models.Session{ID: "sess-1", UserID: "user-1"}

	require.NoError(t, seq.Compose(ctx, "sess-1", validDraft()))

	_, err := seq.Confirm(ctx, sess)
	assert.Error(t, err)

	// The draft survives so the sender can retry without re-entering data.
	d, err := seq.Review(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "1000", d.Amount)
}

func TestConfirm_DoesNotClearDraft(t *testing.T) {
	creator := &fakeCreator{}
	seq, _ := newSequencer(creator)
	ctx := context.Background()
	sess := models.Session{ID: "sess-1", UserID: "user-1"}

	require.NoError(t, seq.Compose(ctx, "sess-1", validDraft()))

	created, err := seq.Confirm(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "gift-1", created.GiftID)

	// Only the thanks step clears the slot.
	_, err = seq.Review(ctx, "sess-1")
	assert.NoError(t, err)
}

func TestThanks_ClearsSlotOnce(t *testing.T) {
	seq, _ := newSequencer(&fakeCreator{})
	ctx := context.Background()

	require.NoError(t, seq.Compose(ctx, "sess-1", validDraft()))

	d, err := seq.Thanks(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "1000", d.Amount)

	// A second visit finds the slot empty.
	_, err = seq.Thanks(ctx, "sess-1")
	assert.ErrorIs(t, err, draft.ErrNoDraft)
}

func TestAbandon_IsIdempotent(t *testing.T) {
	seq, _ := newSequencer(&fakeCreator{})
	ctx := context.Background()

	require.NoError(t, seq.Compose(ctx, "sess-1", validDraft()))
	require.NoError(t, seq.Abandon(ctx, "sess-1"))
	require.NoError(t, seq.Abandon(ctx, "sess-1"))

	_, err := seq.Review(ctx, "sess-1")
	assert.ErrorIs(t, err, draft.ErrNoDraft)
}
