package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"zimmerbot/internal/availability"
	"zimmerbot/internal/booking"
	"zimmerbot/internal/hold"
	"zimmerbot/internal/logger"
	"zimmerbot/internal/models"
	"zimmerbot/internal/pricing"
	"zimmerbot/internal/repository"
)

// Reply sources.
const (
	SourceFAQ   = "faq"
	SourceFact  = "fact"
	SourceAgent = "agent"
)

// Agent orchestrates one conversation turn: knowledge shortcuts,
// intent detection, entity extraction, tool dispatch, and reply
// rendering.
type Agent struct {
	store    *repository.Store
	bookings *booking.Service
	resolver *availability.Resolver
	holds    *hold.Manager
	pricer   *pricing.Engine
	now      func() time.Time
}

func New(
	store *repository.Store,
	bookings *booking.Service,
	resolver *availability.Resolver,
	holds *hold.Manager,
	pricer *pricing.Engine,
) *Agent {
	return &Agent{
		store:    store,
		bookings: bookings,
		resolver: resolver,
		holds:    holds,
		pricer:   pricer,
		now:      time.Now,
	}
}

// ChatRequest is one inbound guest message.
type ChatRequest struct {
	ConversationID *uuid.UUID
	Message        string
	Channel        string
	CustomerID     *uuid.UUID
}

// ChatResponse is the agent's turn result.
type ChatResponse struct {
	ConversationID uuid.UUID `json:"conversationId"`
	Reply          string    `json:"reply"`
	Intent         string    `json:"intent,omitempty"`
	Confidence     float64   `json:"confidence,omitempty"`
	Source         string    `json:"source"`
}

// Chat runs a full agent turn. Every answer path persists both the
// user and the assistant message; tool failures degrade to an
// apologetic reply rather than an error.
func (a *Agent) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	log := logger.FromContext(ctx)

	conv, err := a.resolveConversation(ctx, req)
	if err != nil {
		return nil, err
	}

	tc := a.loadCarryOver(ctx, conv.ID)

	userMsg := &models.Message{
		ConversationID: conv.ID,
		Role:           models.RoleUser,
		Content:        req.Message,
	}
	if err := a.store.Conversations.AppendMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	// Knowledge shortcuts first: a static FAQ or business fact answers
	// without running the intent pipeline.
	intentHint := ""
	if faq := a.matchFAQ(ctx, req.Message); faq != nil {
		if hint := dynamicIntentHint(faq.Question, faq.Answer); hint != "" {
			intentHint = hint
		} else {
			if err := a.store.FAQs.IncrementUsage(ctx, faq.ID); err != nil {
				log.Warn().Err(err).Msg("faq usage increment failed")
			}
			return a.finishTurn(ctx, conv.ID, tc, ChatResponse{
				ConversationID: conv.ID,
				Reply:          faq.Answer,
				Source:         SourceFAQ,
			}, models.JSONMap{"faq_id": faq.ID.String()})
		}
	}

	if key := matchFactKey(req.Message); key != "" {
		if fact, err := a.store.Facts.GetByKey(ctx, key); err == nil && fact != nil {
			return a.finishTurn(ctx, conv.ID, tc, ChatResponse{
				ConversationID: conv.ID,
				Reply:          fact.FactValue,
				Source:         SourceFact,
			}, models.JSONMap{"fact_key": key})
		}
	}

	det := DetectIntent(req.Message, tc)
	if intentHint != "" {
		det = Detection{Intent: intentHint, Confidence: 0.9, Actions: intentActions[intentHint]}
	}

	dr := ExtractDates(req.Message, a.now())
	if dr != nil {
		tc.CheckIn, tc.CheckOut = dr.CheckIn, dr.CheckOut
	}
	if tc.CabinID == "" {
		tc.CabinID = ExtractCabin(req.Message)
	}
	customerName := ExtractCustomerName(req.Message)

	reply, toolMeta := a.dispatch(ctx, det, tc, dr, customerName)

	resp := ChatResponse{
		ConversationID: conv.ID,
		Reply:          reply,
		Intent:         det.Intent,
		Confidence:     det.Confidence,
		Source:         SourceAgent,
	}
	out, err := a.finishTurn(ctx, conv.ID, tc, resp, toolMeta)
	if err != nil {
		return nil, err
	}

	// New answers become FAQ suggestions for host review. Greetings
	// and clarification turns carry no reusable knowledge.
	if det.Intent != IntentGreeting {
		if _, err := a.store.FAQs.Suggest(ctx, req.Message, &reply, req.CustomerID); err != nil {
			log.Warn().Err(err).Msg("faq suggestion append failed")
		}
	}
	return out, nil
}

func (a *Agent) resolveConversation(ctx context.Context, req ChatRequest) (*models.Conversation, error) {
	if req.ConversationID != nil {
		conv, err := a.store.Conversations.Get(ctx, *req.ConversationID)
		if err != nil {
			return nil, err
		}
		if conv != nil {
			return conv, nil
		}
	}
	channel := req.Channel
	if channel == "" {
		channel = models.ChannelWeb
	}
	return a.store.Conversations.Create(ctx, channel, req.CustomerID)
}

// loadCarryOver rebuilds the turn context from the newest assistant
// message's metadata. Missing or malformed metadata starts clean.
func (a *Agent) loadCarryOver(ctx context.Context, conversationID uuid.UUID) *Context {
	last, err := a.store.Conversations.LastAssistantMessage(ctx, conversationID)
	if err != nil || last == nil {
		return &Context{}
	}
	return contextFromMetadata(last.Metadata)
}

func contextFromMetadata(md models.JSONMap) *Context {
	tc := &Context{}
	raw, ok := md["context"].(map[string]any)
	if !ok {
		return tc
	}
	if v, ok := raw["cabin_id"].(string); ok {
		tc.CabinID = v
	}
	if v, ok := raw["check_in"].(string); ok {
		tc.CheckIn = v
	}
	if v, ok := raw["check_out"].(string); ok {
		tc.CheckOut = v
	}
	if v, ok := raw["last_quote"].(map[string]any); ok {
		tc.LastQuote = v
	}
	return tc
}

func (tc *Context) metadata() map[string]any {
	out := map[string]any{}
	if tc.CabinID != "" {
		out["cabin_id"] = tc.CabinID
	}
	if tc.CheckIn != "" {
		out["check_in"] = tc.CheckIn
	}
	if tc.CheckOut != "" {
		out["check_out"] = tc.CheckOut
	}
	if len(tc.LastQuote) > 0 {
		out["last_quote"] = tc.LastQuote
	}
	return out
}

// finishTurn persists the assistant message with its carry-over
// metadata and returns the response.
func (a *Agent) finishTurn(ctx context.Context, conversationID uuid.UUID, tc *Context, resp ChatResponse, toolMeta models.JSONMap) (*ChatResponse, error) {
	meta := models.JSONMap{
		"source":  resp.Source,
		"context": tc.metadata(),
	}
	if resp.Intent != "" {
		meta["intent"] = resp.Intent
		meta["confidence"] = resp.Confidence
	}
	for k, v := range toolMeta {
		meta[k] = v
	}

	msg := &models.Message{
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        resp.Reply,
		Metadata:       meta,
	}
	if err := a.store.Conversations.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	return &resp, nil
}

// matchFAQ finds an approved entry whose question and the message
// contain each other, case-insensitively. Entries are ordered by
// usage, so the most-served match wins.
func (a *Agent) matchFAQ(ctx context.Context, message string) *models.FAQ {
	faqs, err := a.store.FAQs.ListApproved(ctx)
	if err != nil {
		l := logger.FromContext(ctx)
		l.Warn().Err(err).Msg("faq lookup failed")
		return nil
	}
	lower := strings.ToLower(strings.TrimSpace(message))
	for i := range faqs {
		q := strings.ToLower(strings.TrimSpace(faqs[i].Question))
		if q == "" {
			continue
		}
		if strings.Contains(lower, q) || strings.Contains(q, lower) {
			return &faqs[i]
		}
	}
	return nil
}

const (
	cabinNotFoundReply = "לא מצאתי מידע על הצימר."
	toolFailureReply   = "❌ משהו השתבש, נסה שוב מאוחר יותר."
	busyReply          = "❌ הצימר תפוס בתאריכים שביקשת. רוצה לבדוק תאריכים אחרים?"
)

// dispatch executes the detected actions and renders the reply.
func (a *Agent) dispatch(ctx context.Context, det Detection, tc *Context, dr *DateRange, customerName string) (string, models.JSONMap) {
	log := logger.FromContext(ctx)
	meta := models.JSONMap{}

	hasDates := tc.CheckIn != "" && tc.CheckOut != ""

	switch det.Intent {
	case IntentGreeting:
		return greetingReply, meta

	case IntentListCabins:
		cabins, err := a.store.Cabins.List(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("cabin list failed")
			return toolFailureReply, meta
		}
		meta["cabin_count"] = len(cabins)
		return listCabinsReply(cabins), meta

	case IntentCabinInfo, IntentLocation:
		if tc.CabinID == "" {
			return askCabinReply, meta
		}
		cabin, err := a.store.Cabins.Resolve(ctx, tc.CabinID)
		if err != nil {
			if errors.Is(err, repository.ErrCabinNotFound) {
				return cabinNotFoundReply, meta
			}
			log.Warn().Err(err).Msg("cabin resolve failed")
			return toolFailureReply, meta
		}
		tc.CabinID = cabin.ShortCode
		if det.Intent == IntentLocation {
			return locationReply(cabin), meta
		}
		return cabinInfoReply(cabin, imageURLs(cabin)), meta

	case IntentAvailability:
		if dr != nil && dr.IsMonthRange {
			return a.monthAvailability(ctx, tc, dr, meta)
		}
		if !hasDates {
			return askDatesReply, meta
		}
		return a.searchAvailability(ctx, tc, meta)

	case IntentQuote:
		if tc.CabinID == "" || !hasDates {
			return missingReply(tc.CabinID == "", !hasDates), meta
		}
		res, err := a.bookings.Quote(ctx, booking.QuoteRequest{
			CabinID:  tc.CabinID,
			CheckIn:  tc.CheckIn,
			CheckOut: tc.CheckOut,
		})
		if err != nil {
			if errors.Is(err, repository.ErrCabinNotFound) {
				return cabinNotFoundReply, meta
			}
			log.Warn().Err(err).Msg("quote failed")
			return "❌ לא הצלחתי לחשב מחיר. אנא נסה שוב.", meta
		}
		tc.CabinID = res.Cabin.ShortCode
		tc.LastQuote = map[string]any{
			"cabin_id":  res.Cabin.ShortCode,
			"check_in":  res.CheckIn,
			"check_out": res.CheckOut,
			"total":     res.Breakdown.Total.String(),
			"nights":    res.Breakdown.Nights,
		}
		meta["quote_total"] = res.Breakdown.Total.String()
		return quoteReply(res.Cabin.Name, res.Breakdown), meta

	case IntentHold:
		if tc.CabinID == "" || !hasDates {
			return missingReply(tc.CabinID == "", !hasDates), meta
		}
		return a.createHold(ctx, tc, customerName, meta)

	case IntentBook, IntentConfirm, IntentBookNow:
		if tc.CabinID == "" || !hasDates {
			return missingReply(tc.CabinID == "", !hasDates), meta
		}
		return a.book(ctx, det, tc, customerName, meta)
	}

	return fallbackReply, meta
}

func (a *Agent) searchAvailability(ctx context.Context, tc *Context, meta models.JSONMap) (string, models.JSONMap) {
	log := logger.FromContext(ctx)

	in, err1 := time.Parse(isoDate, tc.CheckIn)
	out, err2 := time.Parse(isoDate, tc.CheckOut)
	if err1 != nil || err2 != nil || !out.After(in) {
		return askDatesReply, meta
	}

	cabins, err := a.store.Cabins.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("cabin list failed")
		return toolFailureReply, meta
	}

	free := a.resolver.Search(ctx, cabins, availability.Request{CheckIn: in, CheckOut: out})
	options := make([]availabilityOption, 0, len(free))
	for i := range free {
		c := free[i]
		breakdown := a.pricer.Quote(&c, in, out, nil, true)
		options = append(options, availabilityOption{
			Cabin:  c,
			Total:  breakdown.Total.String(),
			Nights: breakdown.Nights,
		})
	}
	meta["available_count"] = len(options)
	return availabilityReply(options), meta
}

// monthAvailability answers "כל מרץ" style questions by walking the
// month's days for one cabin.
func (a *Agent) monthAvailability(ctx context.Context, tc *Context, dr *DateRange, meta models.JSONMap) (string, models.JSONMap) {
	log := logger.FromContext(ctx)

	if tc.CabinID == "" {
		return askCabinReply, meta
	}
	cabin, err := a.store.Cabins.Resolve(ctx, tc.CabinID)
	if err != nil {
		if errors.Is(err, repository.ErrCabinNotFound) {
			return cabinNotFoundReply, meta
		}
		log.Warn().Err(err).Msg("cabin resolve failed")
		return toolFailureReply, meta
	}
	tc.CabinID = cabin.ShortCode

	start := time.Date(dr.Year, dr.Month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	free, err := a.resolver.FreeDays(ctx, cabin, start, end)
	if err != nil {
		log.Warn().Err(err).Str("cabin", cabin.ShortCode).Msg("free-day walk failed")
		return toolFailureReply, meta
	}
	meta["free_days"] = len(free)
	return freeDaysReply(cabin, dr.Month, dr.Year, free), meta
}

func (a *Agent) createHold(ctx context.Context, tc *Context, customerName string, meta models.JSONMap) (string, models.JSONMap) {
	log := logger.FromContext(ctx)

	cabin, err := a.store.Cabins.Resolve(ctx, tc.CabinID)
	if err != nil {
		if errors.Is(err, repository.ErrCabinNotFound) {
			return cabinNotFoundReply, meta
		}
		log.Warn().Err(err).Msg("cabin resolve failed")
		return toolFailureReply, meta
	}
	tc.CabinID = cabin.ShortCode

	var namePtr *string
	if customerName != "" {
		namePtr = &customerName
	}
	h, err := a.holds.Create(ctx, cabin.ShortCode, tc.CheckIn, tc.CheckOut, namePtr, nil)
	if err != nil {
		var held *hold.ErrAlreadyHeld
		if errors.As(err, &held) {
			return alreadyHeldReply(held.ExpiresAt), meta
		}
		log.Warn().Err(err).Msg("hold creation failed")
		return "❌ לא הצלחתי ליצור שריון.", meta
	}
	meta["hold_id"] = h.ID
	return holdReply(h), meta
}

// book runs hold-then-commit for book_now, or a plain commit for a
// confirmation turn.
func (a *Agent) book(ctx context.Context, det Detection, tc *Context, customerName string, meta models.JSONMap) (string, models.JSONMap) {
	log := logger.FromContext(ctx)

	holdID := ""
	if isOneOf(IntentHold, det.Actions) {
		cabin, err := a.store.Cabins.Resolve(ctx, tc.CabinID)
		if err != nil {
			if errors.Is(err, repository.ErrCabinNotFound) {
				return cabinNotFoundReply, meta
			}
			log.Warn().Err(err).Msg("cabin resolve failed")
			return toolFailureReply, meta
		}
		tc.CabinID = cabin.ShortCode

		var namePtr *string
		if customerName != "" {
			namePtr = &customerName
		}
		h, err := a.holds.Create(ctx, cabin.ShortCode, tc.CheckIn, tc.CheckOut, namePtr, nil)
		if err != nil {
			var held *hold.ErrAlreadyHeld
			if errors.As(err, &held) {
				return alreadyHeldReply(held.ExpiresAt), meta
			}
			log.Warn().Err(err).Msg("hold creation failed")
			return "❌ לא הצלחתי ליצור שריון.", meta
		}
		holdID = h.ID
		meta["hold_id"] = h.ID
	}

	res, err := a.bookings.Commit(ctx, booking.CommitRequest{
		CabinID:      tc.CabinID,
		CheckIn:      tc.CheckIn,
		CheckOut:     tc.CheckOut,
		CustomerName: customerName,
		HoldID:       holdID,
	})
	if err != nil {
		var busy *booking.BusyError
		var onHold *booking.OnHoldError
		switch {
		case errors.Is(err, repository.ErrCabinNotFound):
			return cabinNotFoundReply, meta
		case errors.As(err, &busy):
			return busyReply, meta
		case errors.As(err, &onHold):
			return alreadyHeldReply(onHold.ExpiresAt), meta
		case errors.Is(err, booking.ErrInvalidDateRange):
			return askDatesReply, meta
		}
		log.Warn().Err(err).Msg("booking commit failed")
		return toolFailureReply, meta
	}

	meta["booking_id"] = res.Booking.ID.String()
	// A committed booking consumes the cached quote.
	tc.LastQuote = nil
	return bookedReply(res.Booking, res.Cabin.Name, res.EventLink), meta
}

// imageURLs turns stored image refs into servable paths. Absolute
// URLs pass through; bare filenames map to the static image mount.
func imageURLs(c *models.Cabin) []string {
	out := make([]string, 0, len(c.ImageRefs))
	for _, ref := range c.ImageRefs {
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			out = append(out, ref)
			continue
		}
		out = append(out, "/images/"+c.ShortCode+"/"+strings.TrimPrefix(ref, "/"))
	}
	return out
}
