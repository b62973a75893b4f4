package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"donorhub/internal/domain"
)

func TestMemoryStoreCRUDRoundTrip(t *testing.T) {
	s := NewMemoryStore(Options{})
	store := s.Collection(domain.CollectionRecommendations)

	rec, err := store.Create(context.Background(), domain.Record{"name": "X"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Status() != domain.StatusPending {
		t.Fatalf("status: got %q", rec.Status())
	}

	updated, err := store.Update(context.Background(), rec.ID(), domain.Record{"status": domain.StatusApproved})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status() != domain.StatusApproved {
		t.Fatalf("status after update: got %q", updated.Status())
	}

	removed, err := store.Delete(context.Background(), rec.ID())
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed.ID() != rec.ID() {
		t.Fatalf("deleted echo mismatch: %#v", removed)
	}

	if _, err := store.Update(context.Background(), rec.ID(), domain.Record{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreReturnsClones(t *testing.T) {
	s := NewMemoryStore(Options{})
	store := s.Collection(domain.CollectionMessages)
	rec, _ := store.Create(context.Background(), domain.Record{"message": "hi"})

	rec["message"] = "tampered"

	records, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if records[0]["message"] != "hi" {
		t.Fatalf("store state aliased by caller: %#v", records[0])
	}
}

func TestMemoryStoreConcurrentCreates(t *testing.T) {
	s := NewMemoryStore(Options{})
	store := s.Collection(domain.CollectionDonations)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Create(context.Background(), domain.Record{"amount": 1.0})
		}()
	}
	wg.Wait()

	records, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected exactly two records, got %d", len(records))
	}
}
