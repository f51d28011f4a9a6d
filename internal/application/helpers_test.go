package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/internal/platform/kafka"
	"github.com/shareit/service-booking/internal/repository/memory"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error {
	args := m.Called(ctx, topic, key, event)
	return args.Error(0)
}

// fixture seeds a store with an owner, a booker and one available item.
type fixture struct {
	store  *memory.Store
	owner  uuid.UUID
	booker uuid.UUID
	item   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.NewStore(),
		owner:  uuid.New(),
		booker: uuid.New(),
		item:   uuid.New(),
	}
	ctx := context.Background()
	require.NoError(t, f.store.Users().Upsert(ctx, userDomain.Reconstruct(f.owner, "Owner", "owner@example.com", testNow)))
	require.NoError(t, f.store.Users().Upsert(ctx, userDomain.Reconstruct(f.booker, "Booker", "booker@example.com", testNow)))
	f.addItem(t, f.item, f.owner, true)
	return f
}

func (f *fixture) addItem(t *testing.T, id, owner uuid.UUID, available bool) {
	t.Helper()
	it := itemDomain.Reconstruct(id, owner, "Drill", "Cordless drill", available, nil, testNow, testNow)
	require.NoError(t, f.store.Items().Upsert(context.Background(), it))
}

// addBooking stores a booking of f.item by booker in the given status.
func (f *fixture) addBooking(t *testing.T, booker uuid.UUID, start, end time.Time, status bookingDomain.BookingStatus) uuid.UUID {
	t.Helper()
	id := uuid.New()
	bk := bookingDomain.ReconstructBooking(id, f.item, booker, start, end, status, 1, testNow, testNow)
	require.NoError(t, f.store.Bookings().Save(context.Background(), bk))
	return id
}

func (f *fixture) bookingService(pub EventPublisher, policy bookingDomain.ApprovalPolicy) *BookingService {
	return NewBookingService(f.store.Bookings(), f.store.Items(), f.store.Users(), pub, policy, zap.NewNop()).
		WithClock(fixedClock)
}

func (f *fixture) itemService() *ItemService {
	return NewItemService(f.store.Items(), f.store.Comments(), f.store.Bookings(), f.store.Users(), zap.NewNop()).
		WithClock(fixedClock)
}

func hours(n int) time.Time { return testNow.Add(time.Duration(n) * time.Hour) }
