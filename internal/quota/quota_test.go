package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"tokenhealth/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts map[string]int
	subs   []models.Subscriber
	err    error

	lastSince time.Time
}

func (f *fakeCounter) CountScansSince(_ context.Context, userID string, since time.Time) (int, error) {
	f.lastSince = since
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[userID], nil
}

func (f *fakeCounter) Subscribers(_ context.Context) ([]models.Subscriber, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.subs, nil
}

func TestDailyLimitByPlan(t *testing.T) {
	s := New(&fakeCounter{}, 5, 100)
	s.SetPlan("alice", "pro")
	s.SetPlan("bob", "free")
	s.SetPlan("carol", "Premium")

	assert.Equal(t, 100, s.DailyLimit("alice"))
	assert.Equal(t, 5, s.DailyLimit("bob"))
	assert.Equal(t, 100, s.DailyLimit("carol"))
	assert.Equal(t, 5, s.DailyLimit("unknown"))
	assert.Equal(t, 5, s.DailyLimit(""))

	s.RemovePlan("alice")
	assert.Equal(t, 5, s.DailyLimit("alice"))
}

func TestLoadSeedsPlans(t *testing.T) {
	counter := &fakeCounter{subs: []models.Subscriber{
		{UserID: "alice", Plan: "pro"},
		{UserID: "bob", Plan: "free"},
	}}
	s := New(counter, 5, 100)
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 100, s.DailyLimit("alice"))
	assert.Equal(t, 5, s.DailyLimit("bob"))
}

func TestCheckCountsFromMidnight(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int{"alice": 3}}
	s := New(counter, 5, 100)

	now := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	require.NoError(t, s.Check(context.Background(), "alice", now))
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), counter.lastSince)
}

func TestCheckExceeded(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int{"bob": 5}}
	s := New(counter, 5, 100)

	err := s.Check(context.Background(), "bob", time.Now())
	assert.ErrorIs(t, err, models.ErrQuotaExceeded)
}

func TestCheckProPlanHasHigherAllowance(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int{"alice": 50}}
	s := New(counter, 5, 100)
	s.SetPlan("alice", "pro")

	assert.NoError(t, s.Check(context.Background(), "alice", time.Now()))
}

func TestCheckAllowsOnCountFailure(t *testing.T) {
	counter := &fakeCounter{err: errors.New("db down")}
	s := New(counter, 5, 100)
	assert.NoError(t, s.Check(context.Background(), "anyone", time.Now()))
}
