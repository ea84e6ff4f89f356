package post

import (
	"errors"
	"sync"
	"testing"
)

func TestStoreCreateRejectsDuplicate(t *testing.T) {
	s := NewStore()
	first, err := s.Create("42", "chan", "<@42>")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Step != StepTopic {
		t.Fatalf("step = %v, want topic", first.Step)
	}

	if _, err := s.Create("42", "other", "<@42>"); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("err = %v, want ErrSessionActive", err)
	}

	got, ok := s.Get("42")
	if !ok || got.ChannelID != "chan" {
		t.Fatal("duplicate create must leave existing session intact")
	}
}

func TestStoreRemoveIdempotent(t *testing.T) {
	s := NewStore()
	if _, err := s.Create("42", "chan", "<@42>"); err != nil {
		t.Fatal(err)
	}
	s.Remove("42")
	s.Remove("42")
	if _, ok := s.Get("42"); ok {
		t.Fatal("session still present after remove")
	}
	if s.Len() != 0 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestStoreClaimExactlyOnce(t *testing.T) {
	s := NewStore()
	if _, err := s.Create("42", "chan", "<@42>"); err != nil {
		t.Fatal(err)
	}

	const racers = 8
	var (
		wg   sync.WaitGroup
		wins int32
		mu   sync.Mutex
	)
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func() {
			defer wg.Done()
			if _, ok := s.Claim("42"); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
	if _, ok := s.Get("42"); ok {
		t.Fatal("session still present after claim")
	}
}
