package booking

import (
	"time"

	"github.com/google/uuid"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// at returns epoch shifted by n seconds.
func at(n int) time.Time {
	return epoch.Add(time.Duration(n) * time.Second)
}

func approvedBooking(itemID, bookerID uuid.UUID, start, end int) *Booking {
	return withStatus(itemID, bookerID, start, end, StatusApproved)
}

func withStatus(itemID, bookerID uuid.UUID, start, end int, status BookingStatus) *Booking {
	return ReconstructBooking(uuid.New(), itemID, bookerID, at(start), at(end), status, 1, epoch, epoch)
}
