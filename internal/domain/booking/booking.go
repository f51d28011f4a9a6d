package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-booking/internal/platform/domain"
)

// Booking is the aggregate root for a reservation of one item by one user
// over the half-open interval [start, end).
type Booking struct {
	id             uuid.UUID
	itemID         uuid.UUID
	bookerID       uuid.UUID
	start          time.Time
	end            time.Time
	status         BookingStatus
	previousStatus BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// timePrecision is the resolution at which booking windows are stored.
const timePrecision = time.Microsecond

// ValidateWindow checks that [start, end) is non-empty and does not begin before now,
// comparing at storage precision.
func ValidateWindow(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return domain.NewValidationError("booking start and end are required")
	}
	start, end, now = start.Truncate(timePrecision), end.Truncate(timePrecision), now.Truncate(timePrecision)
	if !end.After(start) {
		return domain.NewValidationError("booking end must be after start")
	}
	if start.Before(now) {
		return domain.NewValidationError("booking start must not be in the past")
	}
	return nil
}

// NewBooking creates a new Booking in WAITING status.
func NewBooking(itemID, bookerID uuid.UUID, start, end, now time.Time) (*Booking, error) {
	if itemID == uuid.Nil {
		return nil, domain.NewValidationError("item ID is required")
	}
	if bookerID == uuid.Nil {
		return nil, domain.NewValidationError("booker ID is required")
	}
	if err := ValidateWindow(start, end, now); err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Booking{
		id:             uuid.New(),
		itemID:         itemID,
		bookerID:       bookerID,
		start:          start.Truncate(timePrecision).UTC(),
		end:            end.Truncate(timePrecision).UTC(),
		status:         StatusWaiting,
		previousStatus: StatusWaiting,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, itemID, bookerID uuid.UUID,
	start, end time.Time,
	status BookingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:             id,
		itemID:         itemID,
		bookerID:       bookerID,
		start:          start,
		end:            end,
		status:         status,
		previousStatus: status,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// ItemID returns the booked item's identifier.
func (b *Booking) ItemID() uuid.UUID { return b.itemID }

// BookerID returns the identifier of the user who made the booking.
func (b *Booking) BookerID() uuid.UUID { return b.bookerID }

// Start returns the inclusive start of the booking window.
func (b *Booking) Start() time.Time { return b.start }

// End returns the exclusive end of the booking window.
func (b *Booking) End() time.Time { return b.end }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PreviousStatus returns the status the booking had when it was loaded.
// Persistence conditions its update on this value.
func (b *Booking) PreviousStatus() BookingStatus { return b.previousStatus }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsBookedBy reports whether userID made this booking.
func (b *Booking) IsBookedBy(userID uuid.UUID) bool {
	return b.bookerID == userID
}

// Overlaps reports whether [start, end) intersects the booking window.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.start.Before(end) && start.Before(b.end)
}

// IsCurrent reports whether now falls within [start, end).
func (b *Booking) IsCurrent(now time.Time) bool {
	return !b.start.After(now) && now.Before(b.end)
}

// IsPast reports whether the booking window has fully elapsed at now.
func (b *Booking) IsPast(now time.Time) bool {
	return !b.end.After(now)
}

// IsFuture reports whether the booking window starts after now.
func (b *Booking) IsFuture(now time.Time) bool {
	return b.start.After(now)
}

// Decide approves or rejects a WAITING booking.
func (b *Booking) Decide(approve bool, now time.Time) error {
	target := StatusRejected
	if approve {
		target = StatusApproved
	}
	return b.transition(target, now)
}

// Cancel withdraws a WAITING booking.
func (b *Booking) Cancel(now time.Time) error {
	return b.transition(StatusCanceled, now)
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}

func (b *Booking) transition(target BookingStatus, now time.Time) error {
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
	b.previousStatus = b.status
	b.status = target
	b.updatedAt = now.UTC()
	return nil
}
