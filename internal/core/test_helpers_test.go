package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"medshare/internal/infra/persistence/memory"
	"medshare/pkg/domain"
)

var testNow = time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)

// tickingClock advances one second per call so created_at values differ.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	current := testNow
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithClock(tickingClock())}, opts...)
	return NewService(memory.NewStore(nil), opts...)
}

func mustCreate(t *testing.T, svc *Service, c domain.Collection, payload map[string]any) domain.Record {
	t.Helper()
	rec, _, err := svc.CreateRecord(context.Background(), c, payload)
	if err != nil {
		t.Fatalf("create %s: %v", c, err)
	}
	return rec
}

func mustGet(t *testing.T, svc *Service, c domain.Collection, id int64) domain.Record {
	t.Helper()
	rec, err := svc.GetRecord(context.Background(), c, id)
	if err != nil {
		t.Fatalf("get %s %d: %v", c, id, err)
	}
	return rec
}

func notificationsFor(t *testing.T, svc *Service, userID int64) []domain.Record {
	t.Helper()
	out, err := svc.ListRecords(context.Background(), domain.CollectionNotifications,
		map[string]string{"user_id": domain.FormatValue(userID)}, "")
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	return out
}

func expectKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v error, got %v", kind, err)
	}
}

// recordingLogger captures log calls by level.
type recordingLogger struct {
	mu      sync.Mutex
	entries map[string][]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{entries: map[string][]string{}}
}

func (l *recordingLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[level] = append(l.entries[level], msg)
}

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries[level])
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.add("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.add("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.add("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.add("error", msg) }

type observation struct {
	operation string
	success   bool
}

type recordingMetrics struct {
	mu   sync.Mutex
	seen []observation
}

func (m *recordingMetrics) Observe(_ context.Context, operation string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, observation{operation: operation, success: success})
}

// failingAdapter loads normally but refuses every save.
type failingAdapter struct {
	*memory.Store
}

func (failingAdapter) Save(context.Context, []byte) error { return errors.New("disk full") }
