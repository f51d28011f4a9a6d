package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/internal/platform/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_item_start,priority:1"`
	BookerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	StartDate time.Time `gorm:"not null;index:idx_bookings_item_start,priority:2"`
	EndDate   time.Time `gorm:"not null"`
	Status    string    `gorm:"not null;size:20;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByItem retrieves bookings of one item ordered by start.
func (r *GormBookingRepository) FindByItem(ctx context.Context, itemID uuid.UUID, status *bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	q := r.db.WithContext(ctx).Where("item_id = ?", itemID)
	return r.find(withStatus(q, status), "failed to find item bookings")
}

// FindByItems retrieves bookings of several items ordered by start.
func (r *GormBookingRepository) FindByItems(ctx context.Context, itemIDs []uuid.UUID, status *bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	if len(itemIDs) == 0 {
		return []*bookingDomain.Booking{}, nil
	}
	q := r.db.WithContext(ctx).Where("item_id IN ?", itemIDs)
	return r.find(withStatus(q, status), "failed to find bookings of items")
}

// FindByBooker retrieves every booking made by a user.
func (r *GormBookingRepository) FindByBooker(ctx context.Context, bookerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	q := r.db.WithContext(ctx).Where("booker_id = ?", bookerID)
	return r.find(q, "failed to find booker bookings")
}

// FindByItemOwner retrieves every booking of items owned by a user.
func (r *GormBookingRepository) FindByItemOwner(ctx context.Context, ownerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN items ON items.id = bookings.item_id").
		Where("items.owner_id = ?", ownerID).
		Select("bookings.*")
	return r.find(q, "failed to find owner bookings")
}

// FindOverlapping retrieves bookings of an item whose window intersects [start, end).
func (r *GormBookingRepository) FindOverlapping(ctx context.Context, itemID uuid.UUID, start, end time.Time, status *bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	q := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Where("start_date < ? AND end_date > ?", end, start)
	return r.find(withStatus(q, status), "failed to find overlapping bookings")
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists a status transition, conditioned on the previously read status and version.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	return updateStatus(r.db.WithContext(ctx), bk)
}

// UpdateWithoutOverlap persists a transition only if no other APPROVED booking of the
// item intersects the booking's window. The item row is locked for the duration of the
// transaction, so concurrent approvals of one item are serialized.
func (r *GormBookingRepository) UpdateWithoutOverlap(ctx context.Context, bk *bookingDomain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item ItemModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", bk.ItemID()).
			Take(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Item", bk.ItemID().String())
			}
			return fmt.Errorf("failed to lock item: %w", err)
		}

		var overlapping []uuid.UUID
		err = tx.Model(&BookingModel{}).
			Where("item_id = ? AND status = ? AND id <> ?", bk.ItemID(), string(bookingDomain.StatusApproved), bk.ID()).
			Where("start_date < ? AND end_date > ?", bk.End(), bk.Start()).
			Limit(1).
			Pluck("id", &overlapping).Error
		if err != nil {
			return fmt.Errorf("failed to check overlapping bookings: %w", err)
		}
		if len(overlapping) > 0 {
			return domain.NewConflictError(fmt.Sprintf("booking overlaps approved booking %s", overlapping[0]))
		}

		return updateStatus(tx, bk)
	})
}

func updateStatus(db *gorm.DB, bk *bookingDomain.Booking) error {
	// IncrementVersion was called after the read, so the stored row holds version-1.
	expectedVersion := bk.Version() - 1
	result := db.Model(&BookingModel{}).
		Where("id = ? AND version = ? AND status = ?", bk.ID(), expectedVersion, string(bk.PreviousStatus())).
		Updates(map[string]interface{}{
			"status":     string(bk.Status()),
			"version":    bk.Version(),
			"updated_at": bk.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another request")
	}

	return nil
}

// PingContext checks the database connection.
func (r *GormBookingRepository) PingContext(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormBookingRepository) find(q *gorm.DB, failure string) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := q.Order("bookings.start_date ASC").Order("bookings.end_date ASC").Order("bookings.id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", failure, err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

func withStatus(q *gorm.DB, status *bookingDomain.BookingStatus) *gorm.DB {
	if status == nil {
		return q
	}
	return q.Where("bookings.status = ?", string(*status))
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		ItemID:    bk.ItemID(),
		BookerID:  bk.BookerID(),
		StartDate: bk.Start(),
		EndDate:   bk.End(),
		Status:    string(bk.Status()),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.ItemID,
		m.BookerID,
		m.StartDate.UTC(),
		m.EndDate.UTC(),
		status,
		m.Version,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	), nil
}
