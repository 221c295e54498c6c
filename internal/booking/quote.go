package booking

import (
	"context"
	"encoding/json"

	"zimmerbot/internal/dates"
	"zimmerbot/internal/logger"
	"zimmerbot/internal/models"
	"zimmerbot/internal/pricing"
)

// QuoteRequest asks for an itemized price.
type QuoteRequest struct {
	CabinID  string
	CheckIn  string
	CheckOut string
	Adults   *int
	Kids     *int
	Addons   []pricing.Addon
}

// QuoteResult pairs the resolved cabin with its price breakdown.
type QuoteResult struct {
	Cabin     *models.Cabin      `json:"cabin"`
	CheckIn   string             `json:"checkIn"`
	CheckOut  string             `json:"checkOut"`
	Breakdown *pricing.Breakdown `json:"pricing"`
}

// Quote resolves the cabin, prices the stay, and persists a snapshot.
// Snapshot persistence is best-effort and never fails the quote.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	log := logger.FromContext(ctx)

	cabin, err := s.store.Cabins.Resolve(ctx, req.CabinID)
	if err != nil {
		return nil, err
	}
	localIn, localOut, err := s.parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	breakdown := s.pricer.Quote(cabin, localIn, localOut, req.Addons, true)

	snapshot := models.JSONMap{}
	if raw, err := json.Marshal(breakdown); err == nil {
		_ = json.Unmarshal(raw, (*map[string]any)(&snapshot))
	}
	q := &models.Quote{
		CabinID:    cabin.ID,
		CheckIn:    dates.Midnight(localIn),
		CheckOut:   dates.Midnight(localOut),
		Adults:     req.Adults,
		Kids:       req.Kids,
		TotalPrice: breakdown.Total,
		QuoteData:  snapshot,
	}
	if err := s.store.Quotes.Insert(ctx, q); err != nil {
		log.Warn().Err(err).Str("cabin", cabin.ShortCode).Msg("quote snapshot persist failed")
	}

	return &QuoteResult{
		Cabin:     cabin,
		CheckIn:   dates.Midnight(localIn).Format(dates.ISO),
		CheckOut:  dates.Midnight(localOut).Format(dates.ISO),
		Breakdown: breakdown,
	}, nil
}
