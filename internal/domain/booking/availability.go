package booking

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Summary is the short form of a booking shown as an item's last or next booking.
type Summary struct {
	ID       uuid.UUID `json:"id"`
	ItemID   uuid.UUID `json:"item_id"`
	BookerID uuid.UUID `json:"booker_id"`
	Start    time.Time `json:"start"`
}

// Summarize maps a booking to its summary.
func Summarize(b *Booking) Summary {
	return Summary{
		ID:       b.ID(),
		ItemID:   b.ItemID(),
		BookerID: b.BookerID(),
		Start:    b.Start(),
	}
}

// Availability holds the derived last and next approved bookings of an item.
type Availability struct {
	Last *Summary
	Next *Summary
}

// Project derives the last and next approved bookings of one item at now.
// Bookings in any other status are ignored. The result must not be cached:
// it depends on now and on the current set of approvals.
func Project(bookings []*Booking, now time.Time) Availability {
	approved := approvedByStart(bookings)
	return Availability{
		Last: lastOf(approved, now),
		Next: nextOf(approved, now),
	}
}

// LastBooking returns the approved booking with the greatest start not after now.
// Bookings sharing that start are ordered by end; the latest end wins.
func LastBooking(bookings []*Booking, now time.Time) *Summary {
	return lastOf(approvedByStart(bookings), now)
}

// NextBooking returns the approved booking with the smallest start after now.
func NextBooking(bookings []*Booking, now time.Time) *Summary {
	return nextOf(approvedByStart(bookings), now)
}

// ProjectByItem groups bookings by item and projects each group.
func ProjectByItem(bookings []*Booking, now time.Time) map[uuid.UUID]Availability {
	groups := make(map[uuid.UUID][]*Booking)
	for _, b := range bookings {
		groups[b.ItemID()] = append(groups[b.ItemID()], b)
	}
	out := make(map[uuid.UUID]Availability, len(groups))
	for itemID, group := range groups {
		out[itemID] = Project(group, now)
	}
	return out
}

// approvedByStart returns the approved bookings stably sorted by (start, end).
func approvedByStart(bookings []*Booking) []*Booking {
	approved := make([]*Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status() == StatusApproved {
			approved = append(approved, b)
		}
	}
	sort.SliceStable(approved, func(i, j int) bool {
		if !approved[i].Start().Equal(approved[j].Start()) {
			return approved[i].Start().Before(approved[j].Start())
		}
		return approved[i].End().Before(approved[j].End())
	})
	return approved
}

func lastOf(sorted []*Booking, now time.Time) *Summary {
	var last *Booking
	for _, b := range sorted {
		if b.Start().After(now) {
			break
		}
		last = b
	}
	if last == nil {
		return nil
	}
	s := Summarize(last)
	return &s
}

func nextOf(sorted []*Booking, now time.Time) *Summary {
	for _, b := range sorted {
		if b.Start().After(now) {
			s := Summarize(b)
			return &s
		}
	}
	return nil
}
