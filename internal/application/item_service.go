package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/internal/platform/domain"
)

// AddCommentRequest holds the text of a new comment.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// CommentDTO is the response representation of a comment.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"item_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// ItemDTO is the response representation of an item with its derived bookings.
type ItemDTO struct {
	ID          uuid.UUID              `json:"id"`
	OwnerID     uuid.UUID              `json:"owner_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Available   bool                   `json:"available"`
	RequestID   *uuid.UUID             `json:"request_id,omitempty"`
	LastBooking *bookingDomain.Summary `json:"last_booking"`
	NextBooking *bookingDomain.Summary `json:"next_booking"`
	Comments    []CommentDTO           `json:"comments"`
}

// EligibilityDTO reports whether a user may comment on an item.
type EligibilityDTO struct {
	ItemID   uuid.UUID `json:"item_id"`
	Eligible bool      `json:"eligible"`
}

// ItemService serves item reads and comments.
type ItemService struct {
	items    itemDomain.ItemRepository
	comments itemDomain.CommentRepository
	bookings bookingDomain.BookingRepository
	users    userDomain.UserRepository
	clock    func() time.Time
	logger   *zap.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(
	items itemDomain.ItemRepository,
	comments itemDomain.CommentRepository,
	bookings bookingDomain.BookingRepository,
	users userDomain.UserRepository,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		items:    items,
		comments: comments,
		bookings: bookings,
		users:    users,
		clock:    time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source.
func (s *ItemService) WithClock(clock func() time.Time) *ItemService {
	s.clock = clock
	return s
}

// GetItem returns an item with its comments. Last and next bookings are
// filled in only when the viewer owns the item.
func (s *ItemService) GetItem(ctx context.Context, viewerID, itemID uuid.UUID) (*ItemDTO, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	commentDTOs, err := s.toCommentDTOs(ctx, comments)
	if err != nil {
		return nil, err
	}

	result := toItemDTO(it, bookingDomain.Availability{}, commentDTOs)
	if it.IsOwnedBy(viewerID) {
		approved := bookingDomain.StatusApproved
		bookings, err := s.bookings.FindByItem(ctx, itemID, &approved)
		if err != nil {
			return nil, fmt.Errorf("failed to load bookings: %w", err)
		}
		avail := bookingDomain.Project(bookings, s.clock())
		result.LastBooking = avail.Last
		result.NextBooking = avail.Next
	}
	return &result, nil
}

// ListOwnerItems returns a page of the owner's items. Comments and approved
// bookings for the whole page are loaded with one query each.
func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID uuid.UUID, page domain.PageRequest) ([]ItemDTO, error) {
	items, err := s.items.FindByOwnerID(ctx, ownerID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	if len(items) == 0 {
		return []ItemDTO{}, nil
	}

	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ID()
	}

	comments, err := s.comments.FindByItemIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	commentDTOs, err := s.toCommentDTOs(ctx, comments)
	if err != nil {
		return nil, err
	}
	byItem := make(map[uuid.UUID][]CommentDTO, len(items))
	for _, c := range commentDTOs {
		byItem[c.ItemID] = append(byItem[c.ItemID], c)
	}

	approved := bookingDomain.StatusApproved
	bookings, err := s.bookings.FindByItems(ctx, ids, &approved)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	availability := bookingDomain.ProjectByItem(bookings, s.clock())

	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it, availability[it.ID()], byItem[it.ID()])
	}
	return dtos, nil
}

// CanComment reports whether userID has a completed approved booking of itemID.
func (s *ItemService) CanComment(ctx context.Context, userID, itemID uuid.UUID) (*EligibilityDTO, error) {
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		return nil, err
	}
	eligible, err := s.canComment(ctx, userID, itemID, s.clock())
	if err != nil {
		return nil, err
	}
	return &EligibilityDTO{ItemID: itemID, Eligible: eligible}, nil
}

// AddComment stores a comment by authorID if they have completed a booking of the item.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID uuid.UUID, req AddCommentRequest) (*CommentDTO, error) {
	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		return nil, err
	}

	now := s.clock()
	comment, err := itemDomain.NewComment(itemID, authorID, req.Text, now)
	if err != nil {
		return nil, err
	}
	eligible, err := s.canComment(ctx, authorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, domain.NewValidationError("no eligible completed booking")
	}

	if err := s.comments.Save(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}
	s.logger.Info("comment added",
		zap.String("comment_id", comment.ID().String()),
		zap.String("item_id", itemID.String()),
	)

	result := toCommentDTO(comment, author.Name())
	return &result, nil
}

func (s *ItemService) canComment(ctx context.Context, userID, itemID uuid.UUID, now time.Time) (bool, error) {
	approved := bookingDomain.StatusApproved
	bookings, err := s.bookings.FindByItem(ctx, itemID, &approved)
	if err != nil {
		return false, fmt.Errorf("failed to load bookings: %w", err)
	}
	return bookingDomain.CanComment(bookings, userID, itemID, now), nil
}

func (s *ItemService) toCommentDTOs(ctx context.Context, comments []*itemDomain.Comment) ([]CommentDTO, error) {
	if len(comments) == 0 {
		return []CommentDTO{}, nil
	}

	seen := make(map[uuid.UUID]struct{})
	var authorIDs []uuid.UUID
	for _, c := range comments {
		if _, ok := seen[c.AuthorID()]; !ok {
			seen[c.AuthorID()] = struct{}{}
			authorIDs = append(authorIDs, c.AuthorID())
		}
	}
	authors, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment authors: %w", err)
	}
	names := make(map[uuid.UUID]string, len(authors))
	for _, u := range authors {
		names[u.ID()] = u.Name()
	}

	dtos := make([]CommentDTO, len(comments))
	for i, c := range comments {
		dtos[i] = toCommentDTO(c, names[c.AuthorID()])
	}
	return dtos, nil
}

func toCommentDTO(c *itemDomain.Comment, authorName string) CommentDTO {
	return CommentDTO{
		ID:         c.ID(),
		ItemID:     c.ItemID(),
		AuthorID:   c.AuthorID(),
		AuthorName: authorName,
		Text:       c.Text(),
		CreatedAt:  c.CreatedAt(),
	}
}

func toItemDTO(it *itemDomain.Item, avail bookingDomain.Availability, comments []CommentDTO) ItemDTO {
	if comments == nil {
		comments = []CommentDTO{}
	}
	return ItemDTO{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   it.RequestID(),
		LastBooking: avail.Last,
		NextBooking: avail.Next,
		Comments:    comments,
	}
}
