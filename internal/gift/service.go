package gift

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ms-gifting/internal/gift/db"
	"ms-gifting/internal/logger"
	"ms-gifting/internal/models"
	"ms-gifting/internal/payment"
	"ms-gifting/internal/utils"
)

// ErrConfirmInFlight means another confirmation of the same draft already
// holds the guard; the caller should treat the submit as a no-op.
var ErrConfirmInFlight = errors.New("a confirmation for this draft is already in flight")

type DBLayer interface {
	CreateGift(ctx context.Context, gift models.Gift) error
	GetGiftByID(ctx context.Context, id string) (*models.Gift, error)
	ListGifts(ctx context.Context, filter models.GiftFilter, limit int) ([]models.Gift, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetPerformerByID(ctx context.Context, id string) (*models.Performer, error)
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
}

// ConfirmGuard enforces at-most-one gift per confirmed draft across tabs and
// repeated clicks.
type ConfirmGuard interface {
	LockConfirm(draftKey, sessionID string) (bool, error)
	UnlockConfirm(draftKey, sessionID string) error
}

type Publisher interface {
	PublishGiftCreated(gift models.Gift) error
}

type Service struct {
	DB     DBLayer
	Guard  ConfirmGuard
	Kafka  Publisher
	Logger *logger.Logger
}

func NewService(dbLayer DBLayer, guard ConfirmGuard, publisher Publisher, log *logger.Logger) *Service {
	return &Service{DB: dbLayer, Guard: guard, Kafka: publisher, Logger: log}
}

// CreateFromDraft commits a reviewed draft as a Gift on behalf of the
// session's user. Satisfies draft.GiftCreator.
func (s *Service) CreateFromDraft(ctx context.Context, sess models.Session, d models.GiftDraft) (*models.Gift, error) {
	amount, err := strconv.Atoi(d.Amount)
	if err != nil || amount <= 0 {
		return nil, fmt.Errorf("draft amount %q is not a positive integer", d.Amount)
	}

	// One confirmation per draft identity. The lock stays held on success so
	// a duplicate click after the response cannot insert a second gift; it
	// expires on its own.
	draftKey := fmt.Sprintf("%s:%s:%s:%s", sess.ID, d.PerformerID, d.EventID, d.Amount)
	ok, err := s.Guard.LockConfirm(draftKey, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("confirm guard error: %w", err)
	}
	if !ok {
		return nil, ErrConfirmInFlight
	}

	gift, err := s.create(ctx, models.GiftRequest{
		UserID:      sess.UserID,
		PerformerID: d.PerformerID,
		EventID:     d.EventID,
		Amount:      amount,
		Comment:     d.Comment,
	}, sess.DisplayName)
	if err != nil {
		// Release the guard so the sender can retry with the draft intact.
		_ = s.Guard.UnlockConfirm(draftKey, sess.ID)
		return nil, err
	}
	return gift, nil
}

// CreateGift persists a gift from a direct API request.
func (s *Service) CreateGift(ctx context.Context, req models.GiftRequest) (*models.Gift, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("gift amount must be positive, got %d", req.Amount)
	}
	return s.create(ctx, req, "")
}

func (s *Service) create(ctx context.Context, req models.GiftRequest, senderName string) (*models.Gift, error) {
	user, err := s.DB.GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	performer, err := s.DB.GetPerformerByID(ctx, req.PerformerID)
	if err != nil {
		return nil, err
	}
	event, err := s.DB.GetEventByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if senderName == "" {
		senderName = user.DisplayName
	}

	gift := models.Gift{
		GiftID:        utils.GenerateGiftID(),
		UserID:        user.ID,
		UserName:      senderName,
		PerformerID:   performer.ID,
		PerformerName: performer.Name,
		EventID:       event.ID,
		EventName:     event.Title,
		Amount:        req.Amount,
		Comment:       payment.SanitizeComment(req.Comment),
		CreatedAt:     time.Now(),
	}

	if err := s.DB.CreateGift(ctx, gift); err != nil {
		if db.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save gift: %w", err)
	}

	if s.Logger != nil {
		s.Logger.LogGift("CREATED", gift.GiftID, fmt.Sprintf("%s -> %s (%d)", gift.UserName, gift.PerformerName, gift.Amount))
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishGiftCreated(gift); err != nil {
			// Publishing feeds the live dashboards; the gift itself is safe.
			if s.Logger != nil {
				s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish gift created event: %v", err))
			}
		}
	}

	return &gift, nil
}

// GetGift fetches one gift by ID.
func (s *Service) GetGift(ctx context.Context, id string) (*models.Gift, error) {
	return s.DB.GetGiftByID(ctx, id)
}

// History lists gifts matching the filter, newest first.
func (s *Service) History(ctx context.Context, filter models.GiftFilter, limit int) ([]models.Gift, error) {
	return s.DB.ListGifts(ctx, filter, limit)
}
