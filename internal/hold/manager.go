// Package hold implements temporary exclusive claims on a cabin and
// date range, backed by the Redis lock store with a best-effort
// in-process fallback.
package hold

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"zimmerbot/internal/models"
)

const (
	byIDPrefix      = "hold:by_id:"
	convertedPrefix = "hold:converted:"
	// Conversion markers stay around for a day for reconciliation.
	convertedTTL = 24 * time.Hour
)

// ErrAlreadyHeld is returned when the requested (cabin, dates) key is
// already claimed by an active hold.
type ErrAlreadyHeld struct {
	CabinID   string
	ExpiresAt time.Time
}

func (e *ErrAlreadyHeld) Error() string {
	return fmt.Sprintf("cabin %s is already on hold until %s", e.CabinID, e.ExpiresAt.Format(time.RFC3339))
}

// Manager creates, looks up, and releases holds. When the lock store
// is unreachable at startup it degrades to a process-local map and
// stamps every hold it issues with a warning.
type Manager struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	mem     map[string]*models.Hold
	memByID map[string]string
}

// New connects to the lock store. A failed ping is not fatal: the
// manager falls back to in-memory holds so booking keeps working on a
// degraded single instance.
func New(cfg *redis.Options, ttl time.Duration) *Manager {
	m := &Manager{
		ttl:     ttl,
		now:     time.Now,
		mem:     make(map[string]*models.Hold),
		memByID: make(map[string]string),
	}

	rdb := redis.NewClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("lock store unreachable, holds are in-memory only")
		_ = rdb.Close()
		return m
	}
	m.rdb = rdb
	return m
}

// NewWithClient wires an existing client, used by tests.
func NewWithClient(rdb *redis.Client, ttl time.Duration, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		rdb:     rdb,
		ttl:     ttl,
		now:     now,
		mem:     make(map[string]*models.Hold),
		memByID: make(map[string]string),
	}
}

// Degraded reports whether holds live only in process memory.
func (m *Manager) Degraded() bool { return m.rdb == nil }

func holdKey(cabinID, checkIn, checkOut string) string {
	return fmt.Sprintf("hold:%s:%s:%s", cabinID, checkIn, checkOut)
}

// Create claims (cabinID, checkIn, checkOut) for the configured TTL.
// The claim is a single set-if-absent so two concurrent callers can
// never both win.
func (m *Manager) Create(ctx context.Context, cabinID, checkIn, checkOut string, customerName, customerID *string) (*models.Hold, error) {
	now := m.now()
	h := &models.Hold{
		ID:           uuid.NewString(),
		CabinID:      cabinID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		CustomerName: customerName,
		CustomerID:   customerID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.ttl),
		Status:       models.HoldStatusActive,
	}
	key := holdKey(cabinID, checkIn, checkOut)

	if m.rdb == nil {
		return m.createInMemory(key, h)
	}

	payload, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("hold: encode: %w", err)
	}

	ok, err := m.rdb.SetNX(ctx, key, payload, m.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("hold: lock store: %w", err)
	}
	if !ok {
		existing, err := m.getByKey(ctx, key)
		if err == nil && existing != nil {
			return nil, &ErrAlreadyHeld{CabinID: cabinID, ExpiresAt: existing.ExpiresAt}
		}
		return nil, &ErrAlreadyHeld{CabinID: cabinID, ExpiresAt: now.Add(m.ttl)}
	}

	if err := m.rdb.Set(ctx, byIDPrefix+h.ID, key, m.ttl).Err(); err != nil {
		// The primary key is set; the hold still protects the dates
		// even if by-id lookup fails.
		log.Warn().Err(err).Str("hold_id", h.ID).Msg("failed to index hold by id")
	}
	return h, nil
}

func (m *Manager) createInMemory(key string, h *models.Hold) (*models.Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.mem[key]; ok {
		if !existing.Expired(m.now()) {
			return nil, &ErrAlreadyHeld{CabinID: h.CabinID, ExpiresAt: existing.ExpiresAt}
		}
		m.dropLocked(key, existing.ID)
	}

	h.Warning = "lock store unavailable - hold not protected across instances"
	m.mem[key] = h
	m.memByID[h.ID] = key
	return h, nil
}

func (m *Manager) dropLocked(key, id string) {
	delete(m.mem, key)
	delete(m.memByID, id)
}

func (m *Manager) getByKey(ctx context.Context, key string) (*models.Hold, error) {
	raw, err := m.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hold: lock store: %w", err)
	}
	var h models.Hold
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("hold: decode: %w", err)
	}
	return &h, nil
}

// Get looks a hold up by its id. Returns nil when missing or expired.
func (m *Manager) Get(ctx context.Context, holdID string) (*models.Hold, error) {
	if m.rdb == nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		key, ok := m.memByID[holdID]
		if !ok {
			return nil, nil
		}
		h, ok := m.mem[key]
		if !ok {
			return nil, nil
		}
		if h.Expired(m.now()) {
			m.dropLocked(key, holdID)
			return nil, nil
		}
		return h, nil
	}

	key, err := m.rdb.Get(ctx, byIDPrefix+holdID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hold: lock store: %w", err)
	}
	return m.getByKey(ctx, key)
}

// GetByDates returns the active hold on the composite key, or nil.
func (m *Manager) GetByDates(ctx context.Context, cabinID, checkIn, checkOut string) (*models.Hold, error) {
	key := holdKey(cabinID, checkIn, checkOut)
	if m.rdb == nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		h, ok := m.mem[key]
		if !ok || h.Expired(m.now()) {
			return nil, nil
		}
		return h, nil
	}
	return m.getByKey(ctx, key)
}

// Exists reports whether an active hold claims the given key.
func (m *Manager) Exists(ctx context.Context, cabinID, checkIn, checkOut string) (bool, error) {
	key := holdKey(cabinID, checkIn, checkOut)
	if m.rdb == nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		h, ok := m.mem[key]
		return ok && !h.Expired(m.now()), nil
	}
	n, err := m.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("hold: lock store: %w", err)
	}
	return n > 0, nil
}

// Release removes a hold by id. Returns false when no such hold exists.
func (m *Manager) Release(ctx context.Context, holdID string) (bool, error) {
	if m.rdb == nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		key, ok := m.memByID[holdID]
		if !ok {
			return false, nil
		}
		m.dropLocked(key, holdID)
		return true, nil
	}

	key, err := m.rdb.Get(ctx, byIDPrefix+holdID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("hold: lock store: %w", err)
	}
	if err := m.rdb.Del(ctx, key, byIDPrefix+holdID).Err(); err != nil {
		return false, fmt.Errorf("hold: lock store: %w", err)
	}
	return true, nil
}

// ReleaseByDates removes a hold by its composite key, for admins who
// have the dates but not the id.
func (m *Manager) ReleaseByDates(ctx context.Context, cabinID, checkIn, checkOut string) (bool, error) {
	key := holdKey(cabinID, checkIn, checkOut)
	if m.rdb == nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		h, ok := m.mem[key]
		if !ok {
			return false, nil
		}
		m.dropLocked(key, h.ID)
		return true, nil
	}

	h, err := m.getByKey(ctx, key)
	if err != nil {
		return false, err
	}
	if h == nil {
		return false, nil
	}
	if err := m.rdb.Del(ctx, key, byIDPrefix+h.ID).Err(); err != nil {
		return false, fmt.Errorf("hold: lock store: %w", err)
	}
	return true, nil
}

type conversion struct {
	HoldID      string    `json:"holdId"`
	BookingID   string    `json:"bookingId"`
	ConvertedAt time.Time `json:"convertedAt"`
}

// Convert releases the hold and leaves a short-lived marker tying it
// to the booking that consumed it.
func (m *Manager) Convert(ctx context.Context, holdID, bookingID string) (bool, error) {
	h, err := m.Get(ctx, holdID)
	if err != nil {
		return false, err
	}
	if h == nil {
		return false, nil
	}
	if _, err := m.Release(ctx, holdID); err != nil {
		return false, err
	}

	if m.rdb != nil && bookingID != "" {
		payload, _ := json.Marshal(conversion{HoldID: holdID, BookingID: bookingID, ConvertedAt: m.now()})
		if err := m.rdb.Set(ctx, convertedPrefix+holdID, payload, convertedTTL).Err(); err != nil {
			log.Warn().Err(err).Str("hold_id", holdID).Msg("failed to record hold conversion")
		}
	}
	return true, nil
}

// ListActive returns every unexpired hold, for the admin surface.
func (m *Manager) ListActive(ctx context.Context) ([]*models.Hold, error) {
	if m.rdb == nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		now := m.now()
		var holds []*models.Hold
		for key, h := range m.mem {
			if h.Expired(now) {
				m.dropLocked(key, h.ID)
				continue
			}
			holds = append(holds, h)
		}
		return holds, nil
	}

	var holds []*models.Hold
	iter := m.rdb.Scan(ctx, 0, "hold:*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if strings.HasPrefix(key, byIDPrefix) || strings.HasPrefix(key, convertedPrefix) {
			continue
		}
		h, err := m.getByKey(ctx, key)
		if err != nil || h == nil {
			continue
		}
		holds = append(holds, h)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("hold: lock store scan: %w", err)
	}
	return holds, nil
}
