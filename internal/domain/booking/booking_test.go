package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit/service-booking/internal/platform/domain"
)

func TestNewBooking_Waiting(t *testing.T) {
	itemID, bookerID := uuid.New(), uuid.New()

	bk, err := NewBooking(itemID, bookerID, at(60), at(120), at(0))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, bk.ID())
	assert.Equal(t, StatusWaiting, bk.Status())
	assert.Equal(t, itemID, bk.ItemID())
	assert.Equal(t, bookerID, bk.BookerID())
	assert.Equal(t, int64(1), bk.Version())
	assert.Equal(t, at(0), bk.CreatedAt())
}

func TestNewBooking_StartAtNowIsAllowed(t *testing.T) {
	bk, err := NewBooking(uuid.New(), uuid.New(), at(0), at(1), at(0))
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, bk.Status())
}

func TestNewBooking_TruncatesToMicroseconds(t *testing.T) {
	bk, err := NewBooking(uuid.New(), uuid.New(), at(10).Add(1500*time.Nanosecond), at(20).Add(999*time.Nanosecond), at(0))
	require.NoError(t, err)

	assert.Equal(t, at(10).Add(time.Microsecond), bk.Start())
	assert.Equal(t, at(20), bk.End())
}

func TestNewBooking_RejectsInvalidWindow(t *testing.T) {
	cases := map[string]struct{ start, end, now time.Time }{
		"end equals start": {at(10), at(10), at(0)},
		"end before start": {at(20), at(10), at(0)},
		"start in past":    {at(-1), at(10), at(0)},
		"zero start":       {time.Time{}, at(10), at(0)},
		"sub-microsecond":  {at(10), at(10).Add(400 * time.Nanosecond), at(0)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewBooking(uuid.New(), uuid.New(), tc.start, tc.end, tc.now)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestBooking_DecideOnce(t *testing.T) {
	for _, approve := range []bool{true, false} {
		bk, err := NewBooking(uuid.New(), uuid.New(), at(10), at(20), at(0))
		require.NoError(t, err)

		require.NoError(t, bk.Decide(approve, at(5)))
		assert.Equal(t, StatusWaiting, bk.PreviousStatus())
		assert.Equal(t, at(5), bk.UpdatedAt())

		for _, again := range []bool{true, false} {
			assert.ErrorIs(t, bk.Decide(again, at(6)), domain.ErrConflict)
		}
		assert.ErrorIs(t, bk.Cancel(at(6)), domain.ErrConflict)
	}
}

func TestBooking_DecideSetsStatus(t *testing.T) {
	approved := withStatus(uuid.New(), uuid.New(), 10, 20, StatusWaiting)
	require.NoError(t, approved.Decide(true, at(0)))
	assert.Equal(t, StatusApproved, approved.Status())

	rejected := withStatus(uuid.New(), uuid.New(), 10, 20, StatusWaiting)
	require.NoError(t, rejected.Decide(false, at(0)))
	assert.Equal(t, StatusRejected, rejected.Status())
}

func TestBooking_Cancel(t *testing.T) {
	bk := withStatus(uuid.New(), uuid.New(), 10, 20, StatusWaiting)
	require.NoError(t, bk.Cancel(at(0)))
	assert.Equal(t, StatusCanceled, bk.Status())
	assert.ErrorIs(t, bk.Decide(true, at(1)), domain.ErrConflict)
}

func TestBooking_WindowPredicates(t *testing.T) {
	bk := withStatus(uuid.New(), uuid.New(), 10, 20, StatusApproved)

	assert.True(t, bk.IsFuture(at(9)))
	assert.False(t, bk.IsCurrent(at(9)))
	assert.True(t, bk.IsCurrent(at(10)))
	assert.True(t, bk.IsCurrent(at(19)))
	assert.False(t, bk.IsCurrent(at(20)))
	assert.True(t, bk.IsPast(at(20)))
	assert.False(t, bk.IsPast(at(19)))
}

func TestBooking_Overlaps(t *testing.T) {
	bk := withStatus(uuid.New(), uuid.New(), 10, 20, StatusApproved)

	assert.True(t, bk.Overlaps(at(15), at(25)))
	assert.True(t, bk.Overlaps(at(0), at(11)))
	assert.True(t, bk.Overlaps(at(12), at(13)))
	assert.False(t, bk.Overlaps(at(20), at(30)), "half-open windows touching at the edge do not overlap")
	assert.False(t, bk.Overlaps(at(0), at(10)))
}

func TestBookingStatus_Transitions(t *testing.T) {
	assert.True(t, StatusWaiting.CanTransitionTo(StatusApproved))
	assert.True(t, StatusWaiting.CanTransitionTo(StatusCanceled))
	assert.False(t, StatusApproved.CanTransitionTo(StatusWaiting))
	assert.False(t, StatusRejected.CanTransitionTo(StatusApproved))
	assert.True(t, StatusCanceled.IsTerminal())
	assert.False(t, StatusWaiting.IsTerminal())

	_, err := ParseBookingStatus("DONE")
	assert.Error(t, err)
	s, err := ParseBookingStatus("APPROVED")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, s)
}

func TestParseApprovalPolicy(t *testing.T) {
	p, err := ParseApprovalPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyPermissive, p)
	assert.False(t, p.ChecksOverlap())

	p, err = ParseApprovalPolicy("reject_overlap")
	require.NoError(t, err)
	assert.True(t, p.ChecksOverlap())

	_, err = ParseApprovalPolicy("strict")
	assert.Error(t, err)
}
