package booking

import (
	"time"

	"github.com/google/uuid"
)

// CanComment reports whether userID holds an approved booking of itemID whose
// window has fully elapsed at now. Waiting, rejected, canceled and ongoing
// bookings do not count.
func CanComment(bookings []*Booking, userID, itemID uuid.UUID, now time.Time) bool {
	for _, b := range bookings {
		if b.ItemID() != itemID || !b.IsBookedBy(userID) {
			continue
		}
		if b.Status() == StatusApproved && b.IsPast(now) {
			return true
		}
	}
	return false
}
