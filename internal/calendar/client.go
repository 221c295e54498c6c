package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// Client is a Gateway backed by the Google Calendar v3 REST API.
type Client struct {
	baseURL string
	http    *http.Client
	tz      string
}

// NewClient builds a Client from a stored OAuth token file. The token
// is minted out of band by the credential bootstrap tooling.
func NewClient(baseURL, tokenFile, businessTZ string, timeout time.Duration) (*Client, error) {
	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("calendar: read token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("calendar: parse token file: %w", err)
	}

	hc := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&tok))
	hc.Timeout = timeout
	return &Client{baseURL: baseURL, http: hc, tz: businessTZ}, nil
}

// eventTime is the provider's start/end shape: dateTime for timed
// events, date for all-day events.
type eventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type rawEvent struct {
	ID          string    `json:"id,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
	HTMLLink    string    `json:"htmlLink,omitempty"`
}

type eventList struct {
	Items []rawEvent `json:"items"`
}

// parseEventTime normalizes a provider timestamp to UTC. All-day
// values become midnight UTC.
func parseEventTime(et eventTime) (time.Time, error) {
	if et.DateTime != "" {
		t, err := time.Parse(time.RFC3339, et.DateTime)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}
	if et.Date != "" {
		return time.Parse("2006-01-02", et.Date)
	}
	return time.Time{}, fmt.Errorf("event missing start/end time")
}

func normalize(re rawEvent) (Event, error) {
	start, err := parseEventTime(re.Start)
	if err != nil {
		return Event{}, fmt.Errorf("calendar: event %s: %w", re.ID, err)
	}
	end, err := parseEventTime(re.End)
	if err != nil {
		return Event{}, fmt.Errorf("calendar: event %s: %w", re.ID, err)
	}
	return Event{
		ID:          re.ID,
		Summary:     re.Summary,
		Description: re.Description,
		Start:       start,
		End:         end,
		HTMLLink:    re.HTMLLink,
	}, nil
}

func classifyStatus(code int) error {
	switch {
	case code == http.StatusNotFound || code == http.StatusGone:
		return ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrForbidden
	case code >= 500:
		return ErrUnreachable
	default:
		return fmt.Errorf("calendar: unexpected status %d", code)
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("calendar: encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("calendar: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return classifyStatus(resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("calendar: decode response: %w", err)
	}
	return nil
}

func (c *Client) ListEvents(ctx context.Context, calendarID string, start, end time.Time) ([]Event, error) {
	q := url.Values{}
	q.Set("timeMin", RFC3339Z(start))
	q.Set("timeMax", RFC3339Z(end))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")

	var list eventList
	path := "/calendars/" + url.PathEscape(calendarID) + "/events"
	if err := c.do(ctx, http.MethodGet, path, q, nil, &list); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(list.Items))
	for _, re := range list.Items {
		ev, err := normalize(re)
		if err != nil {
			// Skip malformed entries rather than failing the lookup.
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (c *Client) CreateEvent(ctx context.Context, calendarID string, ev Event) (Event, error) {
	body := rawEvent{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       eventTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: c.tz},
		End:         eventTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: c.tz},
	}

	var created rawEvent
	path := "/calendars/" + url.PathEscape(calendarID) + "/events"
	if err := c.do(ctx, http.MethodPost, path, nil, body, &created); err != nil {
		return Event{}, err
	}
	return normalize(created)
}

func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	path := "/calendars/" + url.PathEscape(calendarID) + "/events/" + url.PathEscape(eventID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
