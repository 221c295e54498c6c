package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"zimmerbot/internal/agent"
	"zimmerbot/internal/availability"
	"zimmerbot/internal/booking"
	"zimmerbot/internal/dates"
	"zimmerbot/internal/logger"
	"zimmerbot/internal/models"
	"zimmerbot/internal/pricing"
)

const calendarWindowDays = 60

func (s *Server) health(c *gin.Context) {
	ctx := c.Request.Context()
	deps := gin.H{}
	healthy := true

	if err := s.store.DB.PingContext(ctx); err != nil {
		deps["database"] = "unreachable"
		healthy = false
	} else {
		deps["database"] = "ok"
	}

	if s.holds.Degraded() {
		deps["lockStore"] = "degraded: holds kept in process memory"
	} else {
		deps["lockStore"] = "ok"
	}

	deps["payments"] = map[bool]string{true: "configured", false: "disabled"}[s.payments.Enabled()]

	cabins, err := s.store.Cabins.List(ctx)
	if err != nil {
		healthy = false
	}

	status := http.StatusOK
	body := gin.H{
		"status":       map[bool]string{true: "healthy", false: "unhealthy"}[healthy],
		"dependencies": deps,
		"cabinsLoaded": len(cabins),
	}
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, body)
}

func (s *Server) listCabins(c *gin.Context) {
	cabins, err := s.store.Cabins.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cabins": cabins, "count": len(cabins)})
}

type availabilityRequest struct {
	CheckIn  string   `json:"checkIn" binding:"required"`
	CheckOut string   `json:"checkOut" binding:"required"`
	Adults   int      `json:"adults" binding:"min=0"`
	Kids     int      `json:"kids" binding:"min=0"`
	Area     string   `json:"area"`
	Features []string `json:"features"`
}

type availabilityItem struct {
	Cabin  models.Cabin    `json:"cabin"`
	Nights int             `json:"nights"`
	Total  decimal.Decimal `json:"totalPrice"`
}

// parseStay validates the civil date pair shared by the availability,
// hold, and booking endpoints.
func (s *Server) parseStay(checkIn, checkOut string) (in, out time.Time, err error) {
	in, err = dates.ParseLocal(checkIn, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: checkIn: %v", booking.ErrInvalidDateRange, err)
	}
	out, err = dates.ParseLocal(checkOut, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: checkOut: %v", booking.ErrInvalidDateRange, err)
	}
	if !out.After(in) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check-out must be after check-in", booking.ErrInvalidDateRange)
	}
	return in, out, nil
}

func (s *Server) searchAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	in, out, err := s.parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	cabins, err := s.store.Cabins.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	free := s.resolver.Search(ctx, cabins, availability.Request{
		CheckIn:  dates.Midnight(in),
		CheckOut: dates.Midnight(out),
		Adults:   req.Adults,
		Kids:     req.Kids,
		Area:     req.Area,
		Features: req.Features,
	})

	items := make([]availabilityItem, 0, len(free))
	for i := range free {
		bd := s.pricer.Quote(&free[i], in, out, nil, true)
		items = append(items, availabilityItem{
			Cabin:  free[i],
			Nights: bd.Nights,
			Total:  bd.Total,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"checkIn":  dates.Midnight(in).Format(dates.ISO),
		"checkOut": dates.Midnight(out).Format(dates.ISO),
		"results":  items,
		"count":    len(items),
	})
}

type calendarEventItem struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Summary string `json:"summary,omitempty"`
	IsHold  bool   `json:"isHold"`
}

func (s *Server) cabinCalendar(c *gin.Context) {
	ctx := c.Request.Context()
	cabin, err := s.store.Cabins.Resolve(ctx, c.Param("cabinId"))
	if err != nil {
		respondError(c, err)
		return
	}

	start := dates.Midnight(time.Now().In(s.loc))
	if v := c.Query("start"); v != "" {
		if start, err = dates.ParseISO(v); err != nil {
			badRequest(c, "start: expected YYYY-MM-DD")
			return
		}
	}
	end := start.AddDate(0, 0, calendarWindowDays)
	if v := c.Query("end"); v != "" {
		if end, err = dates.ParseISO(v); err != nil {
			badRequest(c, "end: expected YYYY-MM-DD")
			return
		}
	}
	if !end.After(start) {
		badRequest(c, "end must be after start")
		return
	}

	events, err := s.cal.ListEvents(ctx, cabin.CalendarRef, start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	busy := make([]calendarEventItem, 0, len(events))
	for _, ev := range events {
		busy = append(busy, calendarEventItem{
			Start:   ev.Start.Format(time.RFC3339),
			End:     ev.End.Format(time.RFC3339),
			Summary: ev.Summary,
			IsHold:  ev.IsHoldMarker(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"cabinId": cabin.ShortCode,
		"start":   start.Format(dates.ISO),
		"end":     end.Format(dates.ISO),
		"busy":    busy,
	})
}

type quoteRequest struct {
	CabinID  string          `json:"cabinId" binding:"required"`
	CheckIn  string          `json:"checkIn" binding:"required"`
	CheckOut string          `json:"checkOut" binding:"required"`
	Adults   *int            `json:"adults"`
	Kids     *int            `json:"kids"`
	Addons   []pricing.Addon `json:"addons"`
}

func (s *Server) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.bookings.Quote(c.Request.Context(), booking.QuoteRequest{
		CabinID:  req.CabinID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Adults:   req.Adults,
		Kids:     req.Kids,
		Addons:   req.Addons,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type holdRequest struct {
	CabinID      string  `json:"cabinId" binding:"required"`
	CheckIn      string  `json:"checkIn" binding:"required"`
	CheckOut     string  `json:"checkOut" binding:"required"`
	CustomerName *string `json:"customerName"`
	CustomerID   *string `json:"customerId"`
}

func (s *Server) createHold(c *gin.Context) {
	var req holdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	in, out, err := s.parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	cabin, err := s.store.Cabins.Resolve(ctx, req.CabinID)
	if err != nil {
		respondError(c, err)
		return
	}

	h, err := s.holds.Create(ctx,
		cabin.ShortCode,
		dates.Midnight(in).Format(dates.ISO),
		dates.Midnight(out).Format(dates.ISO),
		req.CustomerName, req.CustomerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *Server) getHold(c *gin.Context) {
	h, err := s.holds.Get(c.Request.Context(), c.Param("holdId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if h == nil {
		notFound(c, "hold not found or expired")
		return
	}
	c.JSON(http.StatusOK, h)
}

// releaseHold is idempotent: releasing a missing or expired hold
// reports released=false with a 200.
func (s *Server) releaseHold(c *gin.Context) {
	released, err := s.holds.Release(c.Request.Context(), c.Param("holdId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}

type bookRequest struct {
	CabinID       string           `json:"cabinId" binding:"required"`
	CheckIn       string           `json:"checkIn" binding:"required"`
	CheckOut      string           `json:"checkOut" binding:"required"`
	CustomerName  string           `json:"customerName" binding:"required"`
	CustomerEmail string           `json:"customerEmail"`
	CustomerPhone string           `json:"customerPhone"`
	Notes         string           `json:"notes"`
	Adults        int              `json:"adults" binding:"min=0"`
	Kids          int              `json:"kids" binding:"min=0"`
	TotalPrice    *decimal.Decimal `json:"totalPrice"`
	Addons        []pricing.Addon  `json:"addons"`
	HoldID        string           `json:"holdId"`
	CreatePayment bool             `json:"createPayment"`
}

func (s *Server) book(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.bookings.Commit(c.Request.Context(), booking.CommitRequest{
		CabinID:       req.CabinID,
		CheckIn:       req.CheckIn,
		CheckOut:      req.CheckOut,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
		Adults:        req.Adults,
		Kids:          req.Kids,
		TotalPrice:    req.TotalPrice,
		Addons:        req.Addons,
		HoldID:        req.HoldID,
		CreatePayment: req.CreatePayment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type chatRequest struct {
	ConversationID *uuid.UUID `json:"conversationId"`
	Message        string     `json:"message" binding:"required"`
	Channel        string     `json:"channel"`
	CustomerID     *uuid.UUID `json:"customerId"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.agent.Chat(c.Request.Context(), agent.ChatRequest{
		ConversationID: req.ConversationID,
		Message:        req.Message,
		Channel:        req.Channel,
		CustomerID:     req.CustomerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// stripeWebhook verifies the provider signature over the raw body
// before reconciling. Unverifiable payloads are rejected; events that
// match no transaction are acknowledged so the provider stops
// retrying.
func (s *Server) stripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
	if err != nil {
		badRequest(c, "unreadable payload")
		return
	}

	ev, err := s.payments.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		l := logger.FromContext(c.Request.Context())
		l.Warn().Err(err).Msg("webhook signature rejected")
		badRequest(c, "signature verification failed")
		return
	}

	if err := s.bookings.ReconcileWebhook(c.Request.Context(), ev); err != nil {
		l := logger.FromContext(c.Request.Context())
		l.Warn().Err(err).Str("event", ev.Type).Msg("webhook not reconciled")
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
