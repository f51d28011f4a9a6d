package booking

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shareit/service-booking/internal/platform/domain"
)

// StateFilter selects a partition of a booking list.
type StateFilter string

const (
	StateAll      StateFilter = "ALL"
	StateCurrent  StateFilter = "CURRENT"
	StatePast     StateFilter = "PAST"
	StateFuture   StateFilter = "FUTURE"
	StateWaiting  StateFilter = "WAITING"
	StateRejected StateFilter = "REJECTED"
)

// ParseStateFilter converts a request value to a StateFilter. Empty means ALL.
func ParseStateFilter(s string) (StateFilter, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	if normalized == "" {
		return StateAll, nil
	}
	switch f := StateFilter(normalized); f {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return f, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("Unknown state: %s", s))
}

// Classify parses state and applies it to bookings.
func Classify(bookings []*Booking, state string, now time.Time) ([]*Booking, error) {
	filter, err := ParseStateFilter(state)
	if err != nil {
		return nil, err
	}
	return filter.Apply(bookings, now), nil
}

// Apply returns the bookings selected by f at now in the filter's display order:
// CURRENT ascending by start, every other filter descending by start.
// The input slice is not modified.
func (f StateFilter) Apply(bookings []*Booking, now time.Time) []*Booking {
	var keep func(*Booking) bool
	switch f {
	case StateCurrent:
		keep = func(b *Booking) bool { return b.IsCurrent(now) }
	case StatePast:
		keep = func(b *Booking) bool { return b.IsPast(now) }
	case StateFuture:
		keep = func(b *Booking) bool { return b.IsFuture(now) }
	case StateWaiting:
		keep = func(b *Booking) bool { return b.Status() == StatusWaiting }
	case StateRejected:
		keep = func(b *Booking) bool { return b.Status() == StatusRejected }
	default:
		keep = func(*Booking) bool { return true }
	}

	out := make([]*Booking, 0, len(bookings))
	for _, b := range bookings {
		if keep(b) {
			out = append(out, b)
		}
	}

	ascending := f == StateCurrent
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].Start().Before(out[j].Start())
		}
		return out[i].Start().After(out[j].Start())
	})
	return out
}
