// Package quota enforces daily scan allowances against subscriber plans.
package quota

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tokenhealth/internal/models"

	"github.com/sirupsen/logrus"
)

// ScanCounter is the slice of the database the quota service reads.
type ScanCounter interface {
	CountScansSince(ctx context.Context, userID string, since time.Time) (int, error)
	Subscribers(ctx context.Context) ([]models.Subscriber, error)
}

// Service keeps an in-memory plan map, loaded once at startup and kept
// current by realtime subscriber events. Scan counts are always read from
// the database; only the plan lookup is cached.
type Service struct {
	db        ScanCounter
	mu        sync.RWMutex
	plans     map[string]string
	freeLimit int
	proLimit  int
	log       *logrus.Entry
}

func New(db ScanCounter, freeLimit, proLimit int) *Service {
	return &Service{
		db:        db,
		plans:     make(map[string]string),
		freeLimit: freeLimit,
		proLimit:  proLimit,
		log:       logrus.WithField("component", "quota"),
	}
}

// Load seeds the plan map from the subscribers table.
func (s *Service) Load(ctx context.Context) error {
	subs, err := s.db.Subscribers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load subscribers: %w", err)
	}
	s.mu.Lock()
	for _, sub := range subs {
		s.plans[sub.UserID] = sub.Plan
	}
	s.mu.Unlock()
	s.log.WithField("count", len(subs)).Info("loaded subscriber plans")
	return nil
}

// SetPlan applies a subscriber INSERT/UPDATE event.
func (s *Service) SetPlan(userID, plan string) {
	s.mu.Lock()
	s.plans[userID] = plan
	s.mu.Unlock()
}

// RemovePlan applies a subscriber DELETE event; the user falls back to the
// free allowance.
func (s *Service) RemovePlan(userID string) {
	s.mu.Lock()
	delete(s.plans, userID)
	s.mu.Unlock()
}

// DailyLimit returns the scan allowance for a user. Unknown users and
// anonymous callers get the free allowance.
func (s *Service) DailyLimit(userID string) int {
	s.mu.RLock()
	plan := s.plans[userID]
	s.mu.RUnlock()

	switch strings.ToLower(plan) {
	case "pro", "premium":
		return s.proLimit
	default:
		return s.freeLimit
	}
}

// Check returns ErrQuotaExceeded when the user has no scans left today.
// A count failure is logged and the scan allowed: quota bookkeeping must
// never block serving data.
func (s *Service) Check(ctx context.Context, userID string, now time.Time) error {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	used, err := s.db.CountScansSince(ctx, userID, dayStart)
	if err != nil {
		s.log.WithError(err).WithField("user", userID).Warn("scan count unavailable, allowing scan")
		return nil
	}

	limit := s.DailyLimit(userID)
	if used >= limit {
		return fmt.Errorf("%d of %d scans used: %w", used, limit, models.ErrQuotaExceeded)
	}
	return nil
}
