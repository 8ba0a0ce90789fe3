package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"tokenhealth/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu    sync.Mutex
	scans []*models.ScanRecord
	done  chan struct{}
}

func newFakeWriter(expected int) *fakeWriter {
	return &fakeWriter{done: make(chan struct{}, expected)}
}

func (f *fakeWriter) InsertScan(_ context.Context, scan *models.ScanRecord) error {
	f.mu.Lock()
	f.scans = append(f.scans, scan)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeWriter) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for scan writes")
		}
	}
}

func TestRecordPersistsScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := newFakeWriter(1)
	w := New(writer)
	w.Start(ctx)

	ok := w.Record(&models.ScanRecord{ID: "scan-1", TokenID: "pepe"})
	require.True(t, ok)

	writer.wait(t, 1)
	writer.mu.Lock()
	defer writer.mu.Unlock()
	require.Len(t, writer.scans, 1)
	assert.Equal(t, "scan-1", writer.scans[0].ID)
}

func TestRecordRejectsInvalid(t *testing.T) {
	w := New(newFakeWriter(0))
	assert.False(t, w.Record(nil))
	assert.False(t, w.Record(&models.ScanRecord{}))
}

func TestRecordDeduplicatesQueuedIDs(t *testing.T) {
	// Worker not started: jobs stay queued so the dedup set is observable.
	w := New(newFakeWriter(0))
	assert.True(t, w.Record(&models.ScanRecord{ID: "scan-1"}))
	assert.False(t, w.Record(&models.ScanRecord{ID: "scan-1"}))
	assert.True(t, w.Record(&models.ScanRecord{ID: "scan-2"}))
}

func TestRecordAllowsSameIDAfterProcessing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := newFakeWriter(2)
	w := New(writer)
	w.Start(ctx)

	require.True(t, w.Record(&models.ScanRecord{ID: "scan-1"}))
	writer.wait(t, 1)

	// The id leaves the dedup set shortly after the write completes.
	assert.Eventually(t, func() bool {
		return w.Record(&models.ScanRecord{ID: "scan-1"})
	}, 2*time.Second, 10*time.Millisecond)
	writer.wait(t, 1)
}
