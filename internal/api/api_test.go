package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zimmerbot/internal/availability"
	"zimmerbot/internal/booking"
	"zimmerbot/internal/calendar"
	"zimmerbot/internal/config"
	"zimmerbot/internal/email"
	"zimmerbot/internal/hold"
	"zimmerbot/internal/payment"
	"zimmerbot/internal/pricing"
	"zimmerbot/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer builds a server with the dependencies these tests
// actually exercise: the in-memory hold manager, a configured payment
// gateway for the webhook path, and the business timezone.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &Server{
		cfg:      &config.Config{Env: "development"},
		holds:    hold.NewWithClient(nil, 15*time.Minute, func() time.Time { return now }),
		payments: payment.New("sk_test_key", "whsec_test"),
		loc:      time.UTC,
	}
}

func perform(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid dates", fmt.Errorf("%w: bad", booking.ErrInvalidDateRange), http.StatusBadRequest, codeInvalidInput},
		{"missing hold", booking.ErrHoldNotFound, http.StatusNotFound, codeNotFound},
		{"already held", &hold.ErrAlreadyHeld{CabinID: "ZB01"}, http.StatusConflict, codeHoldAlreadyExists},
		{"on hold", &booking.OnHoldError{CabinID: "ZB01"}, http.StatusConflict, codeCabinOnHold},
		{"busy", &booking.BusyError{CabinID: "ZB01", Conflicts: []string{"2026-03-10"}}, http.StatusConflict, codeCabinBusy},
		{"hold mismatch", &booking.HoldMismatchError{HoldCabinID: "ZB01", CabinID: "ZB02"}, http.StatusConflict, codeHoldMismatch},
		{"calendar down", fmt.Errorf("list events: %w", calendar.ErrUnreachable), http.StatusServiceUnavailable, codeDependencyDown},
		{"calendar forbidden", fmt.Errorf("create event: %w", calendar.ErrForbidden), http.StatusServiceUnavailable, codeDependencyDown},
		{"calendar missing", fmt.Errorf("list events: %w", calendar.ErrNotFound), http.StatusNotFound, codeNotFound},
		{"unmapped", errors.New("boom"), http.StatusInternalServerError, codeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/boom", func(c *gin.Context) { respondError(c, tc.err) })
			w := perform(r, http.MethodGet, "/boom", nil)

			assert.Equal(t, tc.wantStatus, w.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.wantCode, body.Code)
		})
	}
}

func TestBusyErrorCarriesConflicts(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		respondError(c, &booking.BusyError{CabinID: "ZB02", Conflicts: []string{"אירוח 10-12", "HOLD"}})
	})
	w := perform(r, http.MethodGet, "/boom", nil)

	require.Equal(t, http.StatusConflict, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"אירוח 10-12", "HOLD"}, body.Conflicts)
}

func TestHoldLifecycleEndpoints(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	h, err := s.holds.Create(context.Background(), "ZB01", "2026-03-10", "2026-03-12", nil, nil)
	require.NoError(t, err)

	w := perform(r, http.MethodGet, "/hold/"+h.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ZB01", body["cabinId"])
	assert.Equal(t, "2026-03-10", body["checkIn"])

	w = perform(r, http.MethodDelete, "/hold/"+h.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["released"])

	// Releasing again reports false without an error.
	w = perform(r, http.MethodDelete, "/hold/"+h.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["released"])

	w = perform(r, http.MethodGet, "/hold/"+h.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidationRejectsBeforeDomainLogic(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	// Missing required fields never reach the stores, so a server
	// without a database still answers 400.
	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/availability", gin.H{"checkIn": "2026-03-10"}},
		{http.MethodPost, "/quote", gin.H{"cabinId": "ZB01"}},
		{http.MethodPost, "/hold", gin.H{"checkIn": "2026-03-10", "checkOut": "2026-03-12"}},
		{http.MethodPost, "/book", gin.H{"cabinId": "ZB01", "checkIn": "2026-03-10", "checkOut": "2026-03-12"}},
		{http.MethodPost, "/agent/chat", gin.H{"channel": "web"}},
	}
	for _, tc := range cases {
		w := perform(r, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestParseStay(t *testing.T) {
	s := newTestServer(t)

	in, out, err := s.parseStay("2026-03-10", "2026-03-12")
	require.NoError(t, err)
	assert.True(t, out.After(in))

	_, _, err = s.parseStay("10.03.2026", "2026-03-12")
	assert.ErrorIs(t, err, booking.ErrInvalidDateRange)

	_, _, err = s.parseStay("2026-03-12", "2026-03-10")
	assert.ErrorIs(t, err, booking.ErrInvalidDateRange)

	_, _, err = s.parseStay("2026-03-10", "2026-03-10")
	assert.ErrorIs(t, err, booking.ErrInvalidDateRange)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe",
		bytes.NewBufferString(`{"type":"payment_intent.succeeded"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	h, err := s.holds.Create(context.Background(), "ZB05", "2026-04-01", "2026-04-03", nil, nil)
	require.NoError(t, err)

	w := perform(r, http.MethodGet, "/hold/"+h.ID, nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestLimitQuery(t *testing.T) {
	get := func(raw string) int {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, raw, nil)
		return limitQuery(c, 50)
	}

	assert.Equal(t, 50, get("/admin/bookings"))
	assert.Equal(t, 10, get("/admin/bookings?limit=10"))
	assert.Equal(t, 50, get("/admin/bookings?limit=0"))
	assert.Equal(t, 50, get("/admin/bookings?limit=abc"))
}

func newMockStore(t *testing.T) (*repository.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewStore(sqlx.NewDb(db, "postgres")), mock
}

type stubCalendar struct {
	created []calendar.Event
	deleted []string
}

func (s *stubCalendar) ListEvents(_ context.Context, _ string, _, _ time.Time) ([]calendar.Event, error) {
	return nil, nil
}

func (s *stubCalendar) CreateEvent(_ context.Context, _ string, ev calendar.Event) (calendar.Event, error) {
	ev.ID = "evt-1"
	ev.HTMLLink = "https://calendar.example/evt-1"
	s.created = append(s.created, ev)
	return ev, nil
}

func (s *stubCalendar) DeleteEvent(_ context.Context, _, eventID string) error {
	s.deleted = append(s.deleted, eventID)
	return nil
}

func apiCabinRow(id uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "short_code", "name", "area", "max_adults", "max_kids", "features",
		"base_price_night", "weekend_price", "images_urls", "calendar_id",
		"street", "city", "postal_code", "created_at", "updated_at",
	}).AddRow(
		id, "ZB01", "יולי", "צפון", 2, 2, []byte(`["ג'קוזי"]`),
		"500", "650", []byte(`[]`), "cal-1@group.calendar.google.com",
		nil, nil, nil, time.Now(), time.Now(),
	)
}

func TestCreateHoldRespondsOK(t *testing.T) {
	s := newTestServer(t)
	store, mock := newMockStore(t)
	s.store = store
	r := s.Router()

	mock.ExpectQuery(`SELECT .* FROM cabins WHERE short_code = \$1`).
		WithArgs("ZB01").
		WillReturnRows(apiCabinRow(uuid.New()))

	w := perform(r, http.MethodPost, "/hold", gin.H{
		"cabinId":  "ZB01",
		"checkIn":  "2026-03-10",
		"checkOut": "2026-03-12",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["holdId"])
	assert.Equal(t, "ZB01", body["cabinId"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRespondsOK(t *testing.T) {
	s := newTestServer(t)
	store, mock := newMockStore(t)
	s.store = store
	cal := &stubCalendar{}
	s.bookings = booking.NewService(store, s.holds, availability.NewResolver(cal),
		pricing.New(pricing.Options{}), cal, s.payments, email.NewMailer(config.SMTPConfig{}), s.loc)
	r := s.Router()

	cabinID := uuid.New()
	mock.ExpectQuery(`SELECT .* FROM cabins WHERE short_code = \$1`).
		WithArgs("ZB01").
		WillReturnRows(apiCabinRow(cabinID))
	mock.ExpectQuery(`SELECT .* FROM bookings WHERE cabin_id = \$1 AND status <> \$2`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "cabin_id", "customer_id", "check_in", "check_out", "adults", "kids",
			"total_price", "status", "event_id", "event_link", "created_at", "updated_at",
		}))
	mock.ExpectQuery(`INSERT INTO customers`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "created_at"}).
			AddRow(uuid.New(), "דנה לוי", nil, nil, time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO bookings`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT column_name FROM information_schema.columns`).
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("table_name"))
	mock.ExpectExec(`INSERT INTO audit_log`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	w := perform(r, http.MethodPost, "/book", gin.H{
		"cabinId":      "ZB01",
		"checkIn":      "2026-03-10",
		"checkOut":     "2026-03-12",
		"customerName": "דנה לוי",
		"adults":       2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	bk, ok := body["booking"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "confirmed", bk["status"])
	assert.Equal(t, "https://calendar.example/evt-1", body["eventLink"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
