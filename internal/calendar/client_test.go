package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	return &Client{baseURL: srv.URL, http: srv.Client(), tz: "Asia/Jerusalem"}
}

func TestListEventsNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/cal-1/events", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		assert.NotEmpty(t, r.URL.Query().Get("timeMin"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":"a","summary":"אירוח דנה","start":{"dateTime":"2026-03-10T12:00:00+02:00"},"end":{"dateTime":"2026-03-12T10:00:00+02:00"}},
			{"id":"b","summary":"all day","start":{"date":"2026-03-15"},"end":{"date":"2026-03-16"}},
			{"id":"broken","start":{},"end":{}}
		]}`))
	}))
	defer srv.Close()

	events, err := newTestClient(srv).ListEvents(context.Background(), "cal-1",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// The malformed entry is skipped, not fatal.
	require.Len(t, events, 2)
	assert.Equal(t, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), events[0].Start)
	assert.Equal(t, time.UTC, events[0].Start.Location())
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), events[1].Start)
}

func TestStatusTaxonomy(t *testing.T) {
	cases := []struct {
		code int
		want error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusGone, ErrNotFound},
		{http.StatusUnauthorized, ErrForbidden},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusBadGateway, ErrUnreachable},
		{http.StatusServiceUnavailable, ErrUnreachable},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.code)
		}))
		_, err := newTestClient(srv).ListEvents(context.Background(), "cal-1", time.Now(), time.Now().Add(time.Hour))
		assert.ErrorIs(t, err, tc.want, "status %d", tc.code)
		srv.Close()
	}
}

func TestUnreachableOnConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(srv)
	srv.Close()

	_, err := client.ListEvents(context.Background(), "cal-1", time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestCreateEventSendsBusinessTimezone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"new-1","summary":"אירוח","htmlLink":"https://cal/link",
			"start":{"dateTime":"2026-03-10T12:00:00+02:00"},"end":{"dateTime":"2026-03-12T10:00:00+02:00"}}`))
	}))
	defer srv.Close()

	created, err := newTestClient(srv).CreateEvent(context.Background(), "cal-1", Event{
		Summary: "אירוח",
		Start:   time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		End:     time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "new-1", created.ID)
	assert.Equal(t, "https://cal/link", created.HTMLLink)
}

func TestHoldMarker(t *testing.T) {
	assert.True(t, Event{Summary: "HOLD ZB01 10-12"}.IsHoldMarker())
	assert.False(t, Event{Summary: "אירוח משפחת לוי"}.IsHoldMarker())
}
