package item

import (
	"context"

	"github.com/google/uuid"

	"github.com/shareit/service-booking/internal/platform/domain"
)

// ItemRepository defines read and sync operations on the item projection.
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page domain.PageRequest) ([]*Item, error)
	Upsert(ctx context.Context, item *Item) error
}

// CommentRepository defines persistence operations for item comments.
// Finders return comments ordered by creation time ascending.
type CommentRepository interface {
	Save(ctx context.Context, comment *Comment) error
	FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*Comment, error)
	FindByItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]*Comment, error)
}
