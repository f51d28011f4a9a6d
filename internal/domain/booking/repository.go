package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
// Every finder returns bookings ordered by start ascending.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByItem retrieves bookings of one item, optionally restricted to a status.
	FindByItem(ctx context.Context, itemID uuid.UUID, status *BookingStatus) ([]*Booking, error)

	// FindByItems retrieves bookings of several items, optionally restricted to a status.
	FindByItems(ctx context.Context, itemIDs []uuid.UUID, status *BookingStatus) ([]*Booking, error)

	// FindByBooker retrieves every booking made by a user.
	FindByBooker(ctx context.Context, bookerID uuid.UUID) ([]*Booking, error)

	// FindByItemOwner retrieves every booking of items owned by a user.
	FindByItemOwner(ctx context.Context, ownerID uuid.UUID) ([]*Booking, error)

	// FindOverlapping retrieves bookings of an item whose window intersects [start, end),
	// optionally restricted to a status.
	FindOverlapping(ctx context.Context, itemID uuid.UUID, start, end time.Time, status *BookingStatus) ([]*Booking, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists a status transition. It succeeds only if the stored row still
	// has the booking's previous status and version; otherwise it returns a conflict error.
	Update(ctx context.Context, booking *Booking) error

	// UpdateWithoutOverlap behaves like Update and additionally returns a conflict
	// error when another APPROVED booking of the same item intersects the booking's
	// window. The overlap check and the write happen atomically per item.
	UpdateWithoutOverlap(ctx context.Context, booking *Booking) error
}
