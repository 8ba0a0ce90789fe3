package database

import (
	"context"
	"fmt"
	"time"

	"tokenhealth/internal/models"
)

// Unavailable is a Database stand-in used when Postgres could not be reached
// at startup. Every operation fails with ErrConnectivity; the quota service
// and the scan worker already treat these failures as degradable, so the API
// keeps serving metrics without history or plan data.
type Unavailable struct {
	reason error
}

func NewUnavailable(reason error) *Unavailable {
	return &Unavailable{reason: reason}
}

func (u *Unavailable) err(op string) error {
	return fmt.Errorf("%s: database unavailable (%v): %w", op, u.reason, models.ErrConnectivity)
}

func (u *Unavailable) InsertScan(_ context.Context, _ *models.ScanRecord) error {
	return u.err("insert scan")
}

func (u *Unavailable) RecentScans(_ context.Context, _ int) ([]models.ScanRecord, error) {
	return nil, u.err("recent scans")
}

func (u *Unavailable) CountScansSince(_ context.Context, _ string, _ time.Time) (int, error) {
	return 0, u.err("count scans")
}

func (u *Unavailable) Subscribers(_ context.Context) ([]models.Subscriber, error) {
	return nil, u.err("subscribers")
}
