package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/contracts"
	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/internal/platform/domain"
	"github.com/shareit/service-booking/internal/platform/kafka"
)

// CreateBookingRequest holds the data needed to request a booking.
type CreateBookingRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	BookerID  uuid.UUID `json:"booker_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	items     itemDomain.ItemRepository
	users     userDomain.UserRepository
	publisher EventPublisher
	policy    bookingDomain.ApprovalPolicy
	clock     func() time.Time
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	publisher EventPublisher,
	policy bookingDomain.ApprovalPolicy,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		items:     items,
		users:     users,
		publisher: publisher,
		policy:    policy,
		clock:     time.Now,
		logger:    logger,
	}
}

// WithClock replaces the time source.
func (s *BookingService) WithClock(clock func() time.Time) *BookingService {
	s.clock = clock
	return s
}

// CreateBooking requests a booking of an item on behalf of bookerID.
// Nothing is persisted unless every check passes.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	now := s.clock()
	if err := bookingDomain.ValidateWindow(req.Start, req.End, now); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, bookerID); err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if it.IsOwnedBy(bookerID) {
		return nil, domain.NewForbiddenError("owner cannot book their own item")
	}
	if !it.Available() {
		return nil, domain.NewValidationError("item is not available for booking")
	}

	bk, err := bookingDomain.NewBooking(it.ID(), bookerID, req.Start, req.End, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.logger.Info("booking requested",
		zap.String("booking_id", bk.ID().String()),
		zap.String("item_id", it.ID().String()),
		zap.String("booker_id", bookerID.String()),
	)
	s.publishBookingEvent(ctx, contracts.BookingRequested, bk, it.OwnerID(), bookerID)

	result := toBookingDTO(bk)
	return &result, nil
}

// DecideBooking approves or rejects a WAITING booking. Only the item's owner may decide.
func (s *BookingService) DecideBooking(ctx context.Context, actorID, bookingID uuid.UUID, approve bool) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}
	if !it.IsOwnedBy(actorID) {
		return nil, domain.NewForbiddenError("only the item owner can decide on a booking")
	}

	if err := bk.Decide(approve, s.clock()); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	update := s.repo.Update
	if approve && s.policy.ChecksOverlap() {
		update = s.repo.UpdateWithoutOverlap
	}
	if err := update(ctx, bk); err != nil {
		return nil, err
	}

	eventType := contracts.BookingRejected
	if approve {
		eventType = contracts.BookingApproved
	}
	s.logger.Info("booking decided",
		zap.String("booking_id", bk.ID().String()),
		zap.String("status", bk.Status().String()),
	)
	s.publishBookingEvent(ctx, eventType, bk, it.OwnerID(), actorID)

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking withdraws a WAITING booking. Only the booker may cancel.
func (s *BookingService) CancelBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsBookedBy(actorID) {
		return nil, domain.NewForbiddenError("only the booker can cancel a booking")
	}
	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}

	if err := bk.Cancel(s.clock()); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishBookingEvent(ctx, contracts.BookingCancelled, bk, it.OwnerID(), actorID)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a booking visible to its booker or the item's owner.
func (s *BookingService) GetBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsBookedBy(actorID) {
		it, err := s.items.FindByID(ctx, bk.ItemID())
		if err != nil {
			return nil, err
		}
		if !it.IsOwnedBy(actorID) {
			return nil, domain.NewForbiddenError("booking is visible only to its booker or the item owner")
		}
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookerBookings returns the bookings made by bookerID that match state.
func (s *BookingService) ListBookerBookings(ctx context.Context, bookerID uuid.UUID, state string, page domain.PageRequest) ([]BookingDTO, error) {
	return s.list(ctx, bookerID, state, page, s.repo.FindByBooker)
}

// ListOwnerBookings returns the bookings on items owned by ownerID that match state.
func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, state string, page domain.PageRequest) ([]BookingDTO, error) {
	return s.list(ctx, ownerID, state, page, s.repo.FindByItemOwner)
}

func (s *BookingService) list(
	ctx context.Context,
	subjectID uuid.UUID,
	state string,
	page domain.PageRequest,
	find func(context.Context, uuid.UUID) ([]*bookingDomain.Booking, error),
) ([]BookingDTO, error) {
	filter, err := bookingDomain.ParseStateFilter(state)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, subjectID); err != nil {
		return nil, err
	}

	bookings, err := find(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	selected := domain.Paginate(filter.Apply(bookings, s.clock()), page)

	dtos := make([]BookingDTO, len(selected))
	for i, bk := range selected {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:        bk.ID(),
		ItemID:    bk.ItemID(),
		BookerID:  bk.BookerID(),
		Start:     bk.Start(),
		End:       bk.End(),
		Status:    bk.Status().String(),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking, ownerID, actorID uuid.UUID) {
	evt := contracts.BookingEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.ItemID(),
		BookerID:   bk.BookerID(),
		OwnerID:    ownerID,
		Start:      bk.Start(),
		End:        bk.End(),
		Status:     bk.Status().String(),
		ActorID:    actorID,
		OccurredAt: s.clock().UTC(),
	}
	s.publishEvent(ctx, contracts.TopicBookingEvents, eventType, bk.ID().String(), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
