// Package memory provides an in-process implementation of the repository
// contracts. Updates follow the same compare-and-set rules as the SQL store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/internal/platform/domain"
)

// bookingRecord is the stored form of a booking; aggregates are never shared
// with callers so that a caller mutating its copy cannot bypass Update.
type bookingRecord struct {
	id, itemID, bookerID uuid.UUID
	start, end           time.Time
	status               bookingDomain.BookingStatus
	version              int64
	createdAt, updatedAt time.Time
}

func (r bookingRecord) toDomain() *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(r.id, r.itemID, r.bookerID, r.start, r.end, r.status, r.version, r.createdAt, r.updatedAt)
}

func recordOf(b *bookingDomain.Booking) bookingRecord {
	return bookingRecord{
		id:        b.ID(),
		itemID:    b.ItemID(),
		bookerID:  b.BookerID(),
		start:     b.Start(),
		end:       b.End(),
		status:    b.Status(),
		version:   b.Version(),
		createdAt: b.CreatedAt(),
		updatedAt: b.UpdatedAt(),
	}
}

// Store holds every collection behind one lock.
type Store struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]bookingRecord
	items    map[uuid.UUID]*itemDomain.Item
	users    map[uuid.UUID]*userDomain.User
	comments []*itemDomain.Comment
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		bookings: make(map[uuid.UUID]bookingRecord),
		items:    make(map[uuid.UUID]*itemDomain.Item),
		users:    make(map[uuid.UUID]*userDomain.User),
	}
}

// Bookings returns the booking repository view of the store.
func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s: s} }

// Items returns the item repository view of the store.
func (s *Store) Items() *ItemRepository { return &ItemRepository{s: s} }

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Comments returns the comment repository view of the store.
func (s *Store) Comments() *CommentRepository { return &CommentRepository{s: s} }

// PingContext always succeeds.
func (s *Store) PingContext(context.Context) error { return nil }

// BookingRepository implements booking.BookingRepository.
type BookingRepository struct{ s *Store }

// FindByID retrieves a booking by its unique identifier.
func (r *BookingRepository) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return rec.toDomain(), nil
}

// FindByItem retrieves bookings of one item ordered by start.
func (r *BookingRepository) FindByItem(_ context.Context, itemID uuid.UUID, status *bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	return r.filter(func(rec bookingRecord) bool {
		return rec.itemID == itemID && matches(rec, status)
	}), nil
}

// FindByItems retrieves bookings of several items ordered by start.
func (r *BookingRepository) FindByItems(_ context.Context, itemIDs []uuid.UUID, status *bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	wanted := make(map[uuid.UUID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}
	return r.filter(func(rec bookingRecord) bool {
		_, ok := wanted[rec.itemID]
		return ok && matches(rec, status)
	}), nil
}

// FindByBooker retrieves every booking made by a user.
func (r *BookingRepository) FindByBooker(_ context.Context, bookerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	return r.filter(func(rec bookingRecord) bool { return rec.bookerID == bookerID }), nil
}

// FindByItemOwner retrieves every booking of items owned by a user.
func (r *BookingRepository) FindByItemOwner(_ context.Context, ownerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	return r.filter(func(rec bookingRecord) bool {
		it, ok := r.s.items[rec.itemID]
		return ok && it.IsOwnedBy(ownerID)
	}), nil
}

// FindOverlapping retrieves bookings of an item whose window intersects [start, end).
func (r *BookingRepository) FindOverlapping(_ context.Context, itemID uuid.UUID, start, end time.Time, status *bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	return r.filter(func(rec bookingRecord) bool {
		return rec.itemID == itemID && rec.start.Before(end) && start.Before(rec.end) && matches(rec, status)
	}), nil
}

// Save persists a new booking.
func (r *BookingRepository) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.bookings[b.ID()]; exists {
		return domain.NewConflictError("booking already exists")
	}
	r.s.bookings[b.ID()] = recordOf(b)
	return nil
}

// Update persists a status transition if the stored status and version are unchanged.
func (r *BookingRepository) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.updateLocked(b)
}

// UpdateWithoutOverlap persists a transition like Update, refusing it when another
// APPROVED booking of the item intersects the booking's window.
func (r *BookingRepository) UpdateWithoutOverlap(_ context.Context, b *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.bookings {
		if rec.id == b.ID() || rec.itemID != b.ItemID() || rec.status != bookingDomain.StatusApproved {
			continue
		}
		if rec.start.Before(b.End()) && b.Start().Before(rec.end) {
			return domain.NewConflictError(fmt.Sprintf("booking overlaps approved booking %s", rec.id))
		}
	}
	return r.updateLocked(b)
}

func (r *BookingRepository) updateLocked(b *bookingDomain.Booking) error {
	rec, ok := r.s.bookings[b.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	if rec.version != b.Version()-1 || rec.status != b.PreviousStatus() {
		return domain.NewConflictError("booking was modified by another request")
	}
	rec.status = b.Status()
	rec.version = b.Version()
	rec.updatedAt = b.UpdatedAt()
	r.s.bookings[b.ID()] = rec
	return nil
}

func (r *BookingRepository) filter(keep func(bookingRecord) bool) []*bookingDomain.Booking {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var recs []bookingRecord
	for _, rec := range r.s.bookings {
		if keep(rec) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].start.Equal(recs[j].start) {
			return recs[i].start.Before(recs[j].start)
		}
		if !recs[i].end.Equal(recs[j].end) {
			return recs[i].end.Before(recs[j].end)
		}
		return recs[i].id.String() < recs[j].id.String()
	})
	out := make([]*bookingDomain.Booking, len(recs))
	for i, rec := range recs {
		out[i] = rec.toDomain()
	}
	return out
}

func matches(rec bookingRecord, status *bookingDomain.BookingStatus) bool {
	return status == nil || rec.status == *status
}

// ItemRepository implements item.ItemRepository.
type ItemRepository struct{ s *Store }

// FindByID retrieves an item by its unique identifier.
func (r *ItemRepository) FindByID(_ context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Item", id.String())
	}
	return it, nil
}

// FindByOwnerID retrieves a page of items owned by a user, oldest first.
func (r *ItemRepository) FindByOwnerID(_ context.Context, ownerID uuid.UUID, page domain.PageRequest) ([]*itemDomain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var owned []*itemDomain.Item
	for _, it := range r.s.items {
		if it.IsOwnedBy(ownerID) {
			owned = append(owned, it)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt().Equal(owned[j].CreatedAt()) {
			return owned[i].CreatedAt().Before(owned[j].CreatedAt())
		}
		return owned[i].ID().String() < owned[j].ID().String()
	})
	return domain.Paginate(owned, page), nil
}

// Upsert inserts the item or overwrites the stored projection. The original
// creation time is kept.
func (r *ItemRepository) Upsert(_ context.Context, it *itemDomain.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.items[it.ID()]; ok {
		it = itemDomain.Reconstruct(it.ID(), it.OwnerID(), it.Name(), it.Description(), it.Available(), it.RequestID(), existing.CreatedAt(), it.UpdatedAt())
	}
	r.s.items[it.ID()] = it
	return nil
}

// UserRepository implements user.UserRepository.
type UserRepository struct{ s *Store }

// FindByID retrieves a user by its unique identifier.
func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id.String())
	}
	return u, nil
}

// FindByIDs retrieves the users that exist among ids.
func (r *UserRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*userDomain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*userDomain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// Upsert inserts the user or overwrites the stored projection.
func (r *UserRepository) Upsert(_ context.Context, u *userDomain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID()] = u
	return nil
}

// CommentRepository implements item.CommentRepository.
type CommentRepository struct{ s *Store }

// Save persists a new comment.
func (r *CommentRepository) Save(_ context.Context, c *itemDomain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.comments = append(r.s.comments, c)
	return nil
}

// FindByItemID retrieves the comments of one item.
func (r *CommentRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*itemDomain.Comment, error) {
	return r.FindByItemIDs(ctx, []uuid.UUID{itemID})
}

// FindByItemIDs retrieves the comments of several items.
func (r *CommentRepository) FindByItemIDs(_ context.Context, itemIDs []uuid.UUID) ([]*itemDomain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[uuid.UUID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}
	out := []*itemDomain.Comment{}
	for _, c := range r.s.comments {
		if _, ok := wanted[c.ItemID()]; ok {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}
