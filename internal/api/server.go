// Package api exposes the reservation system over HTTP.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"zimmerbot/internal/agent"
	"zimmerbot/internal/availability"
	"zimmerbot/internal/booking"
	"zimmerbot/internal/calendar"
	"zimmerbot/internal/config"
	"zimmerbot/internal/hold"
	"zimmerbot/internal/payment"
	"zimmerbot/internal/pricing"
	"zimmerbot/internal/repository"
)

// Server wires the HTTP surface to the domain services.
type Server struct {
	cfg      *config.Config
	store    *repository.Store
	holds    *hold.Manager
	resolver *availability.Resolver
	pricer   *pricing.Engine
	bookings *booking.Service
	agent    *agent.Agent
	payments *payment.Gateway
	cal      calendar.Gateway
	loc      *time.Location
}

func NewServer(
	cfg *config.Config,
	store *repository.Store,
	holds *hold.Manager,
	resolver *availability.Resolver,
	pricer *pricing.Engine,
	bookings *booking.Service,
	chatAgent *agent.Agent,
	payments *payment.Gateway,
	cal calendar.Gateway,
	loc *time.Location,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		holds:    holds,
		resolver: resolver,
		pricer:   pricer,
		bookings: bookings,
		agent:    chatAgent,
		payments: payments,
		cal:      cal,
		loc:      loc,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if !s.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", s.health)
	r.GET("/cabins", s.listCabins)
	r.POST("/availability", s.searchAvailability)
	r.GET("/cabin/calendar/:cabinId", s.cabinCalendar)
	r.POST("/quote", s.quote)

	r.POST("/hold", s.createHold)
	r.GET("/hold/:holdId", s.getHold)
	r.DELETE("/hold/:holdId", s.releaseHold)
	r.POST("/book", s.book)

	r.POST("/agent/chat", s.chat)
	r.POST("/webhooks/stripe", s.stripeWebhook)

	if s.cfg.ImagesDir != "" {
		r.Static("/images", s.cfg.ImagesDir)
	}

	admin := r.Group("/admin")
	{
		admin.GET("/bookings", s.adminListBookings)
		admin.GET("/bookings/:id", s.adminGetBooking)
		admin.POST("/bookings/:id/cancel", s.adminCancelBooking)
		admin.POST("/transactions/:id/refund", s.adminRefund)
		admin.GET("/holds", s.adminListHolds)
		admin.DELETE("/holds", s.adminReleaseHold)
		admin.GET("/audit", s.adminListAudit)

		admin.GET("/faq/pending", s.adminPendingFAQs)
		admin.GET("/faq/all", s.adminAllFAQs)
		admin.POST("/faq/approve", s.adminApproveFAQ)
		admin.PUT("/faq/:id", s.adminUpdateFAQ)
		admin.DELETE("/faq/:id", s.adminDeleteFAQ)

		admin.GET("/business-facts", s.adminListFacts)
		admin.POST("/business-facts", s.adminUpsertFact)
		admin.DELETE("/business-facts/:key", s.adminDeactivateFact)
	}

	return r
}
