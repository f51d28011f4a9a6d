package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/contracts"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/internal/platform/domain"
)

// CatalogService keeps the local item and user projections in step with the catalog.
type CatalogService struct {
	items  itemDomain.ItemRepository
	users  userDomain.UserRepository
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(items itemDomain.ItemRepository, users userDomain.UserRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{items: items, users: users, logger: logger}
}

// SyncItem stores the item state carried by evt.
func (s *CatalogService) SyncItem(ctx context.Context, evt contracts.ItemUpsertedEvent) error {
	if evt.ItemID == uuid.Nil || evt.OwnerID == uuid.Nil {
		return domain.NewValidationError("item event requires item_id and owner_id")
	}
	it := itemDomain.Reconstruct(
		evt.ItemID,
		evt.OwnerID,
		evt.Name,
		evt.Description,
		evt.Available,
		evt.RequestID,
		evt.OccurredAt.UTC(),
		evt.OccurredAt.UTC(),
	)
	if err := s.items.Upsert(ctx, it); err != nil {
		return err
	}
	s.logger.Debug("item synced", zap.String("item_id", evt.ItemID.String()))
	return nil
}

// SyncUser stores the user state carried by evt.
func (s *CatalogService) SyncUser(ctx context.Context, evt contracts.UserUpsertedEvent) error {
	if evt.UserID == uuid.Nil {
		return domain.NewValidationError("user event requires user_id")
	}
	u := userDomain.Reconstruct(evt.UserID, evt.Name, evt.Email, evt.OccurredAt.UTC())
	if err := s.users.Upsert(ctx, u); err != nil {
		return err
	}
	s.logger.Debug("user synced", zap.String("user_id", evt.UserID.String()))
	return nil
}
