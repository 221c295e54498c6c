package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"zimmerbot/internal/models"
)

func limitQuery(c *gin.Context, fallback int) int {
	v := c.Query("limit")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (s *Server) adminListBookings(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", models.BookingStatusConfirmed, models.BookingStatusCancelled, models.BookingStatusHold:
	default:
		badRequest(c, "unknown status filter")
		return
	}
	bookings, err := s.store.Bookings.ListRecent(c.Request.Context(), status, limitQuery(c, 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

func (s *Server) adminGetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "id must be a UUID")
		return
	}
	ctx := c.Request.Context()
	b, err := s.store.Bookings.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	transactions, err := s.store.Transactions.ListForBooking(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b, "transactions": transactions})
}

func (s *Server) adminCancelBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "id must be a UUID")
		return
	}
	b, err := s.bookings.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

type refundRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Reason string           `json:"reason"`
}

func (s *Server) adminRefund(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "id must be a UUID")
		return
	}
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	refund, err := s.bookings.Refund(c.Request.Context(), id, req.Amount, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refund": refund})
}

func (s *Server) adminListHolds(c *gin.Context) {
	holds, err := s.holds.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"holds": holds, "count": len(holds)})
}

// adminReleaseHold frees a stuck hold by its composite key when the
// hold id is unknown, for operator cleanup.
func (s *Server) adminReleaseHold(c *gin.Context) {
	cabinID := c.Query("cabinId")
	checkIn := c.Query("checkIn")
	checkOut := c.Query("checkOut")
	if cabinID == "" || checkIn == "" || checkOut == "" {
		badRequest(c, "cabinId, checkIn, and checkOut query parameters are required")
		return
	}

	ctx := c.Request.Context()
	cabin, err := s.store.Cabins.Resolve(ctx, cabinID)
	if err != nil {
		respondError(c, err)
		return
	}
	released, err := s.holds.ReleaseByDates(ctx, cabin.ShortCode, checkIn, checkOut)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}

func (s *Server) adminListAudit(c *gin.Context) {
	entries, err := s.store.Audit.ListRecent(c.Request.Context(), c.Query("table"), limitQuery(c, 100))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

func (s *Server) adminPendingFAQs(c *gin.Context) {
	faqs, err := s.store.FAQs.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"faqs": faqs, "count": len(faqs)})
}

func (s *Server) adminAllFAQs(c *gin.Context) {
	ctx := c.Request.Context()
	approved, err := s.store.FAQs.ListApproved(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	pending, err := s.store.FAQs.ListPending(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": approved, "pending": pending})
}

type faqApproveRequest struct {
	ID         uuid.UUID `json:"id" binding:"required"`
	Reject     bool      `json:"reject"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	ApprovedBy string    `json:"approvedBy"`
}

// adminApproveFAQ publishes or rejects a suggestion. The reviewer may
// rewrite the question and answer while approving.
func (s *Server) adminApproveFAQ(c *gin.Context) {
	var req faqApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()

	if req.Reject {
		if err := s.store.FAQs.Delete(ctx, req.ID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rejected": true})
		return
	}

	if req.Answer == "" {
		badRequest(c, "answer is required to approve")
		return
	}
	if req.Question != "" {
		if err := s.store.FAQs.Update(ctx, req.ID, req.Question, req.Answer); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.ApprovedBy == "" {
		req.ApprovedBy = "admin"
	}
	if err := s.store.FAQs.Approve(ctx, req.ID, req.Answer, req.ApprovedBy); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": true})
}

type faqUpdateRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

func (s *Server) adminUpdateFAQ(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "id must be a UUID")
		return
	}
	var req faqUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := s.store.FAQs.Update(c.Request.Context(), id, req.Question, req.Answer); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (s *Server) adminDeleteFAQ(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "id must be a UUID")
		return
	}
	if err := s.store.FAQs.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) adminListFacts(c *gin.Context) {
	facts, err := s.store.Facts.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if category := c.Query("category"); category != "" {
		filtered := facts[:0]
		for _, f := range facts {
			if f.Category == category {
				filtered = append(filtered, f)
			}
		}
		facts = filtered
	}
	c.JSON(http.StatusOK, gin.H{"facts": facts, "count": len(facts)})
}

type factRequest struct {
	FactKey     string  `json:"factKey" binding:"required"`
	FactValue   string  `json:"factValue" binding:"required"`
	Category    string  `json:"category"`
	Description *string `json:"description"`
}

func (s *Server) adminUpsertFact(c *gin.Context) {
	var req factRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Category == "" {
		req.Category = "general"
	}
	f := &models.BusinessFact{
		FactKey:     req.FactKey,
		FactValue:   req.FactValue,
		Category:    req.Category,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.store.Facts.Upsert(c.Request.Context(), f); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fact": f})
}

func (s *Server) adminDeactivateFact(c *gin.Context) {
	if err := s.store.Facts.Deactivate(c.Request.Context(), c.Param("key")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}
