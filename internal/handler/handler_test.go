package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/application"
	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/internal/platform/middleware"
	"github.com/shareit/service-booking/internal/repository/memory"
)

var now = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	router http.Handler
	store  *memory.Store
	owner  uuid.UUID
	booker uuid.UUID
	item   uuid.UUID
}

func setupRouter(t *testing.T) *env {
	t.Helper()
	e := &env{store: memory.NewStore(), owner: uuid.New(), booker: uuid.New(), item: uuid.New()}
	ctx := context.Background()
	require.NoError(t, e.store.Users().Upsert(ctx, userDomain.Reconstruct(e.owner, "Owner", "o@example.com", now)))
	require.NoError(t, e.store.Users().Upsert(ctx, userDomain.Reconstruct(e.booker, "Booker", "b@example.com", now)))
	require.NoError(t, e.store.Items().Upsert(ctx, itemDomain.Reconstruct(e.item, e.owner, "Ladder", "", true, nil, now, now)))

	clock := func() time.Time { return now }
	bookingSvc := application.NewBookingService(e.store.Bookings(), e.store.Items(), e.store.Users(),
		application.NoopPublisher{}, bookingDomain.PolicyPermissive, zap.NewNop()).WithClock(clock)
	itemSvc := application.NewItemService(e.store.Items(), e.store.Comments(), e.store.Bookings(), e.store.Users(),
		zap.NewNop()).WithClock(clock)

	r := gin.New()
	root := r.Group("")
	NewBookingHandler(bookingSvc).RegisterRoutes(root)
	NewItemHandler(itemSvc).RegisterRoutes(root)
	e.router = r
	return e
}

func (e *env) do(t *testing.T, method, path string, user uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != uuid.Nil {
		req.Header.Set(middleware.UserIDHeader, user.String())
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) seed(t *testing.T, start, end time.Time, status bookingDomain.BookingStatus) uuid.UUID {
	t.Helper()
	id := uuid.New()
	bk := bookingDomain.ReconstructBooking(id, e.item, e.booker, start, end, status, 1, now, now)
	require.NoError(t, e.store.Bookings().Save(context.Background(), bk))
	return id
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		From  int `json:"from"`
		Size  int `json:"size"`
		Count int `json:"count"`
	} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestCreateBooking_Created(t *testing.T) {
	e := setupRouter(t)

	w := e.do(t, http.MethodPost, "/api/v1/bookings", e.booker, map[string]interface{}{
		"item_id": e.item,
		"start":   now.Add(time.Hour),
		"end":     now.Add(2 * time.Hour),
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var dto application.BookingDTO
	decode(t, w, &dto)
	assert.Equal(t, "WAITING", dto.Status)
}

func TestCreateBooking_ErrorStatuses(t *testing.T) {
	e := setupRouter(t)

	tests := []struct {
		name string
		user uuid.UUID
		body map[string]interface{}
		want int
	}{
		{"missing header", uuid.Nil, nil, http.StatusUnauthorized},
		{"malformed body", e.booker, map[string]interface{}{"item_id": "nope"}, http.StatusBadRequest},
		{"end before start", e.booker, map[string]interface{}{"item_id": e.item, "start": now.Add(2 * time.Hour), "end": now.Add(time.Hour)}, http.StatusBadRequest},
		{"owner booking", e.owner, map[string]interface{}{"item_id": e.item, "start": now.Add(time.Hour), "end": now.Add(2 * time.Hour)}, http.StatusForbidden},
		{"unknown item", e.booker, map[string]interface{}{"item_id": uuid.New(), "start": now.Add(time.Hour), "end": now.Add(2 * time.Hour)}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, http.MethodPost, "/api/v1/bookings", tt.user, tt.body)
			assert.Equal(t, tt.want, w.Code)
			env := decode(t, w, nil)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
		})
	}
}

func TestDecideBooking(t *testing.T) {
	e := setupRouter(t)
	id := e.seed(t, now.Add(time.Hour), now.Add(2*time.Hour), bookingDomain.StatusWaiting)
	path := "/api/v1/bookings/" + id.String()

	w := e.do(t, http.MethodPatch, path+"?approved=true", e.booker, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodPatch, path+"?approved=maybe", e.owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPatch, path+"?approved=true", e.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dto application.BookingDTO
	decode(t, w, &dto)
	assert.Equal(t, "APPROVED", dto.Status)

	w = e.do(t, http.MethodPatch, path+"?approved=false", e.owner, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetBooking(t *testing.T) {
	e := setupRouter(t)
	id := e.seed(t, now.Add(time.Hour), now.Add(2*time.Hour), bookingDomain.StatusWaiting)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v1/bookings/"+id.String(), e.owner, nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodGet, "/api/v1/bookings/"+id.String(), uuid.New(), nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/v1/bookings/"+uuid.NewString(), e.owner, nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/v1/bookings/x", e.owner, nil).Code)
}

func TestCancelBooking(t *testing.T) {
	e := setupRouter(t)
	id := e.seed(t, now.Add(time.Hour), now.Add(2*time.Hour), bookingDomain.StatusWaiting)

	w := e.do(t, http.MethodPost, "/api/v1/bookings/"+id.String()+"/cancel", e.booker, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var dto application.BookingDTO
	decode(t, w, &dto)
	assert.Equal(t, "CANCELED", dto.Status)
}

func TestListBookings(t *testing.T) {
	e := setupRouter(t)
	future := e.seed(t, now.Add(time.Hour), now.Add(2*time.Hour), bookingDomain.StatusWaiting)
	e.seed(t, now.Add(-3*time.Hour), now.Add(-2*time.Hour), bookingDomain.StatusApproved)

	w := e.do(t, http.MethodGet, "/api/v1/bookings?state=future", e.booker, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dtos []application.BookingDTO
	env := decode(t, w, &dtos)
	require.Len(t, dtos, 1)
	assert.Equal(t, future, dtos[0].ID)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Count)

	w = e.do(t, http.MethodGet, "/api/v1/bookings/owner?from=0&size=1", e.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decode(t, w, &dtos)
	assert.Len(t, dtos, 1)
	assert.Equal(t, 1, env.Meta.Size)

	w = e.do(t, http.MethodGet, "/api/v1/bookings?state=UNSUPPORTED_STATUS", e.booker, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env = decode(t, w, nil)
	assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", env.Error.Message)

	for _, q := range []string{"from=-1", "size=0", "size=abc"} {
		w = e.do(t, http.MethodGet, "/api/v1/bookings?"+q, e.booker, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestItemEndpoints(t *testing.T) {
	e := setupRouter(t)
	past := e.seed(t, now.Add(-3*time.Hour), now.Add(-2*time.Hour), bookingDomain.StatusApproved)
	path := "/api/v1/items/" + e.item.String()

	w := e.do(t, http.MethodGet, path+"/comment/eligibility", e.booker, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var elig application.EligibilityDTO
	decode(t, w, &elig)
	assert.True(t, elig.Eligible)

	w = e.do(t, http.MethodPost, path+"/comment", e.owner, map[string]string{"text": "Mine"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, path+"/comment", e.booker, map[string]string{"text": "Solid ladder"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, path, e.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var item application.ItemDTO
	decode(t, w, &item)
	require.NotNil(t, item.LastBooking)
	assert.Equal(t, past, item.LastBooking.ID)
	assert.Nil(t, item.NextBooking)
	require.Len(t, item.Comments, 1)
	assert.Equal(t, "Solid ladder", item.Comments[0].Text)

	w = e.do(t, http.MethodGet, path, e.booker, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &item)
	assert.Nil(t, item.LastBooking)

	w = e.do(t, http.MethodGet, "/api/v1/items", e.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []application.ItemDTO
	decode(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, e.item, items[0].ID)
}
