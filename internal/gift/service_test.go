package gift_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ms-gifting/internal/gift"
	"ms-gifting/internal/models"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateGift(ctx context.Context, g models.Gift) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockDBLayer) GetGiftByID(ctx context.Context, id string) (*models.Gift, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Gift), args.Error(1)
}

func (m *MockDBLayer) ListGifts(ctx context.Context, filter models.GiftFilter, limit int) ([]models.Gift, error) {
	args := m.Called(ctx, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Gift), args.Error(1)
}

func (m *MockDBLayer) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDBLayer) GetPerformerByID(ctx context.Context, id string) (*models.Performer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Performer), args.Error(1)
}

func (m *MockDBLayer) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

type MockConfirmGuard struct {
	mock.Mock
}

func (m *MockConfirmGuard) LockConfirm(draftKey, sessionID string) (bool, error) {
	args := m.Called(draftKey, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockConfirmGuard) UnlockConfirm(draftKey, sessionID string) error {
	args := m.Called(draftKey, sessionID)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishGiftCreated(g models.Gift) error {
	args := m.Called(g)
	return args.Error(0)
}

func testSession() models.Session {
	return models.Session{
		ID:          "sess-1",
		UserID:      "user-1",
		Role:        models.RoleFan,
		DisplayName: "Aoi",
	}
}

func testDraft() models.GiftDraft {
	return models.GiftDraft{
		EventID:       "event-1",
		PerformerID:   "performer-1",
		PerformerName: "Sakura Hoshino",
		Amount:        "1000",
		Comment:       "Great show!",
	}
}

func expectEntities(db *MockDBLayer) {
	db.On("GetUserByID", mock.Anything, "user-1").Return(&models.User{ID: "user-1", DisplayName: "Aoi"}, nil)
	db.On("GetPerformerByID", mock.Anything, "performer-1").Return(&models.Performer{ID: "performer-1", Name: "Sakura Hoshino"}, nil)
	db.On("GetEventByID", mock.Anything, "event-1").Return(&models.Event{ID: "event-1", Title: "Summer Live 2026"}, nil)
}

func TestCreateFromDraft_Success(t *testing.T) {
	db := new(MockDBLayer)
	guard := new(MockConfirmGuard)
	publisher := new(MockPublisher)
	service := gift.NewService(db, guard, publisher, nil)

	expectEntities(db)
	guard.On("LockConfirm", mock.Anything, "sess-1").Return(true, nil)
	db.On("CreateGift", mock.Anything, mock.AnythingOfType("models.Gift")).Return(nil)
	publisher.On("PublishGiftCreated", mock.AnythingOfType("models.Gift")).Return(nil)

	created, err := service.CreateFromDraft(context.Background(), testSession(), testDraft())
	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, 1000, created.Amount)
	assert.Equal(t, "Aoi", created.UserName)
	assert.Equal(t, "Sakura Hoshino", created.PerformerName)
	assert.Equal(t, "Summer Live 2026", created.EventName)
	assert.NotEmpty(t, created.GiftID)

	// The guard stays held on success.
	guard.AssertNotCalled(t, "UnlockConfirm", mock.Anything, mock.Anything)
	db.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCreateFromDraft_DuplicateConfirm(t *testing.T) {
	db := new(MockDBLayer)
	guard := new(MockConfirmGuard)
	service := gift.NewService(db, guard, nil, nil)

	guard.On("LockConfirm", mock.Anything, "sess-1").Return(false, nil)

	created, err := service.CreateFromDraft(context.Background(), testSession(), testDraft())
	assert.Nil(t, created)
	assert.ErrorIs(t, err, gift.ErrConfirmInFlight)

	// No gift may be written when the guard is held elsewhere.
	db.AssertNotCalled(t, "CreateGift", mock.Anything, mock.Anything)
}

func TestCreateFromDraft_PersistFailureReleasesGuard(t *testing.T) {
	db := new(MockDBLayer)
	guard := new(MockConfirmGuard)
	service := gift.NewService(db, guard, nil, nil)

	expectEntities(db)
	guard.On("LockConfirm", mock.Anything, "sess-1").Return(true, nil)
	guard.On("UnlockConfirm", mock.Anything, "sess-1").Return(nil)
	db.On("CreateGift", mock.Anything, mock.AnythingOfType("models.Gift")).Return(errors.New("connection refused"))

	created, err := service.CreateFromDraft(context.Background(), testSession(), testDraft())
	assert.Nil(t, created)
	assert.Error(t, err)

	guard.AssertCalled(t, "UnlockConfirm", mock.Anything, "sess-1")
}

func TestCreateFromDraft_InvalidAmount(t *testing.T) {
	db := new(MockDBLayer)
	guard := new(MockConfirmGuard)
	service := gift.NewService(db, guard, nil, nil)

	d := testDraft()
	d.Amount = "12.5"

	created, err := service.CreateFromDraft(context.Background(), testSession(), d)
	assert.Nil(t, created)
	assert.Error(t, err)
	guard.AssertNotCalled(t, "LockConfirm", mock.Anything, mock.Anything)
}

func TestCreateFromDraft_SanitizesComment(t *testing.T) {
	db := new(MockDBLayer)
	guard := new(MockConfirmGuard)
	service := gift.NewService(db, guard, nil, nil)

	expectEntities(db)
	guard.On("LockConfirm", mock.Anything, "sess-1").Return(true, nil)
	db.On("CreateGift", mock.Anything, mock.AnythingOfType("models.Gift")).Return(nil)

	d := testDraft()
	d.Comment = "line one\r\nline two 🎉"

	created, err := service.CreateFromDraft(context.Background(), testSession(), d)
	assert.NoError(t, err)
	assert.Equal(t, "line one line two ", created.Comment)
}

func TestCreateFromDraft_PublishFailureDoesNotFailGift(t *testing.T) {
	db := new(MockDBLayer)
	guard := new(MockConfirmGuard)
	publisher := new(MockPublisher)
	service := gift.NewService(db, guard, publisher, nil)

	expectEntities(db)
	guard.On("LockConfirm", mock.Anything, "sess-1").Return(true, nil)
	db.On("CreateGift", mock.Anything, mock.AnythingOfType("models.Gift")).Return(nil)
	publisher.On("PublishGiftCreated", mock.AnythingOfType("models.Gift")).Return(errors.New("broker unavailable"))

	created, err := service.CreateFromDraft(context.Background(), testSession(), testDraft())
	assert.NoError(t, err)
	assert.NotNil(t, created)
}

func TestCreateGift_RejectsNonPositiveAmount(t *testing.T) {
	db := new(MockDBLayer)
	service := gift.NewService(db, new(MockConfirmGuard), nil, nil)

	_, err := service.CreateGift(context.Background(), models.GiftRequest{
		UserID:      "user-1",
		PerformerID: "performer-1",
		EventID:     "event-1",
		Amount:      0,
	})
	assert.Error(t, err)
	db.AssertNotCalled(t, "CreateGift", mock.Anything, mock.Anything)
}
