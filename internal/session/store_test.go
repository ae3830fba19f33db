package session

import (
	"sync"
	"testing"

	"github.com/rosoporto/weather-bot/internal/domain"
)

func TestStore_MissingSessionIsNew(t *testing.T) {
	s := NewStore()
	if got := s.State(7); got != domain.StateNew {
		t.Fatalf("want StateNew, got %q", got)
	}
	if _, ok := s.Get(7); ok {
		t.Fatalf("expected no session")
	}
}

func TestStore_UpdateCreatesAndReturnsCopy(t *testing.T) {
	s := NewStore()
	got := s.Update(7, func(sess *domain.Session) {
		sess.State = domain.StateWaitingForTime
		sess.Location = &domain.Location{City: "Москва"}
	})
	got.Location.City = "mutated"

	stored, ok := s.Get(7)
	if !ok {
		t.Fatalf("expected session")
	}
	if stored.State != domain.StateWaitingForTime {
		t.Fatalf("want %s, got %s", domain.StateWaitingForTime, stored.State)
	}
	if stored.Location.City != "Москва" {
		t.Fatalf("store leaked internal pointer: %q", stored.Location.City)
	}
}

func TestStore_ResetOnEmptyDoesNotFail(t *testing.T) {
	s := NewStore()
	if _, existed := s.Reset(3); existed {
		t.Fatalf("expected no previous session")
	}
	if got := s.State(3); got != domain.StateWaitingForLocation {
		t.Fatalf("want %s, got %s", domain.StateWaitingForLocation, got)
	}
}

func TestStore_ResetReturnsPrevious(t *testing.T) {
	s := NewStore()
	s.Update(3, func(sess *domain.Session) {
		sess.State = domain.StateConfigured
		sess.JobID = "job-1"
	})
	prev, existed := s.Reset(3)
	if !existed || prev.JobID != "job-1" {
		t.Fatalf("want previous job-1, got %+v (existed=%v)", prev, existed)
	}
	cur, _ := s.Get(3)
	if cur.JobID != "" || cur.Location != nil {
		t.Fatalf("reset session must be empty, got %+v", cur)
	}
}

func TestStore_Delete(t *testing.T) {
	s := NewStore()
	if _, ok := s.Delete(1); ok {
		t.Fatalf("delete of missing session must report false")
	}
	s.Update(1, func(sess *domain.Session) { sess.State = domain.StateConfigured })
	if _, ok := s.Delete(1); !ok {
		t.Fatalf("expected delete to succeed")
	}
	if s.Len() != 0 {
		t.Fatalf("want empty store, got %d", s.Len())
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(id int64) {
			defer wg.Done()
			s.Update(id%5, func(sess *domain.Session) { sess.State = domain.StateConfigured })
		}(int64(i))
		go func(id int64) {
			defer wg.Done()
			_, _ = s.Get(id % 5)
		}(int64(i))
	}
	wg.Wait()
	if s.Len() != 5 {
		t.Fatalf("want 5 sessions, got %d", s.Len())
	}
}
