package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"medshare/pkg/domain"
)

type fakeAdapter struct {
	mu      sync.Mutex
	data    []byte
	loadErr error
	saveErr error
	saves   int
}

func (f *fakeAdapter) Load(context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]byte(nil), f.data...), nil
}

func (f *fakeAdapter) Save(_ context.Context, doc []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.data = append([]byte(nil), doc...)
	f.saves++
	return nil
}

func (f *fakeAdapter) Driver() string { return "fake" }

func (f *fakeAdapter) persisted(t *testing.T) map[string]json.RawMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out map[string]json.RawMessage
	if err := json.Unmarshal(f.data, &out); err != nil {
		t.Fatalf("decode persisted document: %v", err)
	}
	return out
}

func fixedClock() func() time.Time {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func create(t *testing.T, s *Store, c domain.Collection, payload map[string]any) domain.Record {
	t.Helper()
	var created domain.Record
	err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		created, err = tx.Create(c, payload, nil)
		return err
	})
	if err != nil {
		t.Fatalf("create %s: %v", c, err)
	}
	return created
}

func TestCreateAssignsSequentialIDsAndNeverReuses(t *testing.T) {
	s := New(&fakeAdapter{}, WithClock(fixedClock()))
	for i := 1; i <= 3; i++ {
		r := create(t, s, domain.CollectionMedicines, map[string]any{"name": "m"})
		if r.ID() != int64(i) {
			t.Fatalf("expected id %d, got %d", i, r.ID())
		}
	}
	err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.Delete(domain.CollectionMedicines, 3)
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if r := create(t, s, domain.CollectionMedicines, map[string]any{"name": "n"}); r.ID() != 4 {
		t.Fatalf("expected id 4 after delete, got %d", r.ID())
	}
}

func TestCreateMergesDefaultsAndStampsCreatedAt(t *testing.T) {
	s := New(&fakeAdapter{}, WithClock(fixedClock()))
	r := create(t, s, domain.CollectionWishlists, map[string]any{"user_id": float64(1), "medicine_id": float64(2), "quantity": float64(5)})
	if q, _ := r.Int("quantity"); q != 5 {
		t.Fatalf("expected payload quantity to win, got %v", r["quantity"])
	}
	if r.Bool("approved") {
		t.Fatalf("expected approved default false")
	}
	if r.String(domain.FieldCreatedAt) != "2025-03-01T12:00:00Z" {
		t.Fatalf("unexpected created_at %q", r.String(domain.FieldCreatedAt))
	}
}

func TestCreateRejectsMissingRequiredWithoutAllocating(t *testing.T) {
	adapter := &fakeAdapter{}
	s := New(adapter)
	err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.Create(domain.CollectionMedicines, map[string]any{"description": "no name"}, nil)
		return err
	})
	if !errors.Is(err, domain.ErrKindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if adapter.saves != 0 {
		t.Fatalf("expected nothing saved, got %d saves", adapter.saves)
	}
	if r := create(t, s, domain.CollectionMedicines, map[string]any{"name": "m"}); r.ID() != 1 {
		t.Fatalf("expected id 1, got %d", r.ID())
	}
}

func TestFailedTransactionKeepsAllocatedIDs(t *testing.T) {
	adapter := &fakeAdapter{}
	s := New(adapter)
	boom := errors.New("boom")
	err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.Create(domain.CollectionNotifications, map[string]any{"user_id": float64(1)}, nil); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	var notifications []map[string]any
	if err := json.Unmarshal(adapter.persisted(t)["notifications"], &notifications); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	if len(notifications) != 0 {
		t.Fatalf("expected the failed create to be discarded, got %v", notifications)
	}
	if r := create(t, s, domain.CollectionNotifications, map[string]any{"user_id": float64(1)}); r.ID() != 2 {
		t.Fatalf("expected id 2 after discarded allocation, got %d", r.ID())
	}
}

func TestUpdateKeepsIDAndStampsUpdatedAt(t *testing.T) {
	s := New(&fakeAdapter{}, WithClock(fixedClock()))
	create(t, s, domain.CollectionMedicines, map[string]any{"name": "m"})
	var updated domain.Record
	err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		updated, err = tx.Update(domain.CollectionMedicines, 1, map[string]any{"id": float64(99), "name": "renamed"})
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID() != 1 || updated.String("name") != "renamed" {
		t.Fatalf("unexpected update result %v", updated)
	}
	if !updated.IsSet(domain.FieldUpdatedAt) {
		t.Fatalf("expected updated_at to be stamped")
	}
}

func TestUpdateMissingRecordIsNotFound(t *testing.T) {
	s := New(&fakeAdapter{})
	err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.Update(domain.CollectionDonations, 7, map[string]any{"notes": "x"})
		return err
	})
	var nf domain.ErrNotFound
	if !errors.As(err, &nf) || nf.ID != 7 {
		t.Fatalf("expected not found for donation 7, got %v", err)
	}
}

func TestUnknownCollectionIsNotFound(t *testing.T) {
	s := New(&fakeAdapter{})
	err := s.View(context.Background(), func(v domain.View) error {
		_, err := v.List("spaceships", domain.Query{})
		return err
	})
	if !errors.Is(err, domain.ErrKindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNoopTransactionDoesNotSave(t *testing.T) {
	adapter := &fakeAdapter{}
	s := New(adapter)
	err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.List(domain.CollectionUsers, domain.Query{})
		return err
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if adapter.saves != 0 {
		t.Fatalf("expected no save, got %d", adapter.saves)
	}
}

func TestLoadFailureFallsBackToSkeleton(t *testing.T) {
	s := New(&fakeAdapter{loadErr: errors.New("disk gone")})
	var count int
	err := s.View(context.Background(), func(v domain.View) error {
		records, err := v.List(domain.CollectionDonations, domain.Query{})
		count = len(records)
		return err
	})
	if err != nil || count != 0 {
		t.Fatalf("expected empty donations, got %d (%v)", count, err)
	}
}

func TestCorruptDocumentFallsBackToSkeleton(t *testing.T) {
	s := New(&fakeAdapter{data: []byte("{oops")})
	if r := create(t, s, domain.CollectionUsers, map[string]any{"email": "a@example.com"}); r.ID() != 1 {
		t.Fatalf("expected id 1 on fresh skeleton, got %d", r.ID())
	}
}

func TestSaveFailureIsUnavailable(t *testing.T) {
	s := New(&fakeAdapter{saveErr: errors.New("read-only")})
	err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.Create(domain.CollectionUsers, map[string]any{"email": "a@example.com"}, nil)
		return err
	})
	if !errors.Is(err, domain.ErrKindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestLegacyDocumentIsUpgradedOnFirstWrite(t *testing.T) {
	adapter := &fakeAdapter{data: []byte(`[{"id":1,"text":"hello","timestamp":"2024-01-01T00:00:00"}]`)}
	s := New(adapter)
	r := create(t, s, domain.CollectionDemoData, map[string]any{"text": "again"})
	if r.ID() != 2 {
		t.Fatalf("expected id 2 after legacy entry, got %d", r.ID())
	}
	persisted := adapter.persisted(t)
	if _, ok := persisted[domain.MetaKey]; !ok {
		t.Fatalf("expected meta block in upgraded document")
	}
	var demo []map[string]any
	if err := json.Unmarshal(persisted["demoData"], &demo); err != nil || len(demo) != 2 {
		t.Fatalf("expected two demo entries, got %v (%v)", demo, err)
	}
}

func TestConcurrentCreatesProduceDistinctIDs(t *testing.T) {
	s := New(&fakeAdapter{})
	const workers = 20
	ids := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
				r, err := tx.Create(domain.CollectionNotifications, map[string]any{"user_id": float64(1)}, nil)
				if err == nil {
					ids <- r.ID()
				}
				return err
			})
		}()
	}
	wg.Wait()
	close(ids)
	seen := make(map[int64]bool, workers)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d ids, got %d", workers, len(seen))
	}
}

func TestResetKeepsCounters(t *testing.T) {
	adapter := &fakeAdapter{data: []byte(`{"users":[{"id":4}],"legacy_blob":{"x":1}}`)}
	s := New(adapter)
	if err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		tx.Reset()
		return nil
	}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok := adapter.persisted(t)["legacy_blob"]; ok {
		t.Fatalf("expected unknown keys to be cleared")
	}
	if r := create(t, s, domain.CollectionUsers, map[string]any{}); r.ID() != 5 {
		t.Fatalf("expected id 5 after reset, got %d", r.ID())
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(&fakeAdapter{})
	if err := s.RunInTransaction(ctx, func(domain.Transaction) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}
