// Package worker persists scan history off the request path.
package worker

import (
	"context"
	"sync"

	"tokenhealth/internal/models"

	"github.com/sirupsen/logrus"
)

// ScanWriter is the slice of the database the worker needs.
type ScanWriter interface {
	InsertScan(ctx context.Context, scan *models.ScanRecord) error
}

// Worker manages a queue of scan persistence jobs, ensuring sequential
// writes and collapsing duplicate scan ids already waiting in the queue.
type Worker struct {
	db        ScanWriter
	jobs      chan *models.ScanRecord // Buffered channel for job queue
	jobSet    map[string]struct{}     // Set of scan ids currently in queue
	jobSetMux sync.Mutex
	log       *logrus.Entry
}

// New creates a new Worker instance with a job buffer of 100
func New(db ScanWriter) *Worker {
	return &Worker{
		db:     db,
		jobs:   make(chan *models.ScanRecord, 100),
		jobSet: make(map[string]struct{}),
		log:    logrus.WithField("component", "worker"),
	}
}

// Start begins processing jobs in a separate goroutine
// The worker will continue until the context is cancelled
func (w *Worker) Start(ctx context.Context) {
	go w.process(ctx)
}

// Record enqueues a scan for persistence.
// Returns false when the queue is full or the scan id is already queued;
// a dropped record only loses history, never the response.
func (w *Worker) Record(scan *models.ScanRecord) bool {
	if scan == nil || scan.ID == "" {
		return false
	}

	w.jobSetMux.Lock()
	defer w.jobSetMux.Unlock()

	if _, exists := w.jobSet[scan.ID]; exists {
		return false
	}

	select {
	case w.jobs <- scan:
		w.jobSet[scan.ID] = struct{}{}
		return true
	default:
		w.log.WithField("scan", scan.ID).Warn("scan queue full, dropping record")
		return false
	}
}

// process is the main job processing loop
// It handles one job at a time and removes completed jobs from the set
func (w *Worker) process(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case scan := <-w.jobs:
			if err := w.db.InsertScan(ctx, scan); err != nil {
				w.log.WithError(err).WithField("scan", scan.ID).Error("failed to persist scan")
			}

			w.jobSetMux.Lock()
			delete(w.jobSet, scan.ID)
			w.jobSetMux.Unlock()
		}
	}
}
