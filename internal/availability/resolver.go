// Package availability filters the cabin catalog against capacity,
// area, feature, and calendar-occupancy constraints.
package availability

import (
	"context"
	"strings"
	"time"

	"zimmerbot/internal/calendar"
	"zimmerbot/internal/logger"
	"zimmerbot/internal/models"
)

// Request describes one availability search. Times are UTC and the
// stay is the half-open interval [CheckIn, CheckOut).
type Request struct {
	CheckIn  time.Time
	CheckOut time.Time
	Adults   int
	Kids     int
	Area     string
	Features []string
}

// Resolver answers availability questions from the cabin catalog and
// the calendar gateway.
type Resolver struct {
	gw calendar.Gateway
}

func NewResolver(gw calendar.Gateway) *Resolver {
	return &Resolver{gw: gw}
}

// matchesFilters applies the catalog-side filters: calendar presence,
// capacity, area, and feature tags.
func matchesFilters(c *models.Cabin, req Request) bool {
	if c.CalendarRef == "" {
		return false
	}
	if req.Adults > 0 && req.Adults > c.MaxAdults {
		return false
	}
	if req.Kids > 0 && req.Kids > c.MaxKids {
		return false
	}
	if req.Area != "" && !strings.EqualFold(strings.TrimSpace(req.Area), strings.TrimSpace(c.Area)) {
		return false
	}
	if len(c.Features.Missing(req.Features)) > 0 {
		return false
	}
	return true
}

// Search returns the cabins that pass the catalog filters and have no
// overlapping calendar event in the requested interval. A calendar
// failure on one cabin drops that cabin, not the whole search. Holds
// are deliberately not consulted; they only block at commit time.
func (r *Resolver) Search(ctx context.Context, cabins []models.Cabin, req Request) []models.Cabin {
	log := logger.FromContext(ctx)

	var out []models.Cabin
	for i := range cabins {
		c := &cabins[i]
		if !matchesFilters(c, req) {
			continue
		}

		conflicts, err := r.Conflicts(ctx, c, req.CheckIn, req.CheckOut)
		if err != nil {
			log.Warn().Err(err).Str("cabin", c.ShortCode).Msg("calendar lookup failed, excluding cabin")
			continue
		}
		if len(conflicts) > 0 {
			continue
		}
		out = append(out, *c)
	}
	return out
}

// Conflicts returns the calendar events on the cabin that overlap
// [start, end).
func (r *Resolver) Conflicts(ctx context.Context, c *models.Cabin, start, end time.Time) ([]calendar.Event, error) {
	events, err := r.gw.ListEvents(ctx, c.CalendarRef, start, end)
	if err != nil {
		return nil, err
	}
	var conflicts []calendar.Event
	for _, ev := range events {
		if ev.Overlaps(start, end) {
			conflicts = append(conflicts, ev)
		}
	}
	return conflicts, nil
}

// SummarizeConflicts renders at most max conflict lines for an error
// payload.
func SummarizeConflicts(conflicts []calendar.Event, max int) []string {
	if len(conflicts) > max {
		conflicts = conflicts[:max]
	}
	out := make([]string, 0, len(conflicts))
	for _, ev := range conflicts {
		summary := ev.Summary
		if summary == "" {
			summary = "(busy)"
		}
		out = append(out, summary+" "+ev.Start.Format("2006-01-02")+" → "+ev.End.Format("2006-01-02"))
	}
	return out
}

// FreeDays walks [start, end) day by day and returns the days with no
// intersecting event, for month-range questions. One calendar fetch
// covers the whole range.
func (r *Resolver) FreeDays(ctx context.Context, c *models.Cabin, start, end time.Time) ([]time.Time, error) {
	events, err := r.gw.ListEvents(ctx, c.CalendarRef, start, end)
	if err != nil {
		return nil, err
	}

	var free []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		next := d.AddDate(0, 0, 1)
		busy := false
		for _, ev := range events {
			if ev.Overlaps(d, next) {
				busy = true
				break
			}
		}
		if !busy {
			free = append(free, d)
		}
	}
	return free, nil
}
