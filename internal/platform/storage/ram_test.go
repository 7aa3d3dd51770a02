package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

type fakeAccount struct {
	Key      string `json:"key"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Note     string `json:"note,omitempty"`
}

func (a fakeAccount) NaturalKey() string    { return a.Key }
func (a fakeAccount) LoginEmail() string    { return a.Email }
func (a fakeAccount) LoginPassword() string { return a.Password }

func TestRAMStore_SaveFindRoundTrip(t *testing.T) {
	s := NewRAMStore[fakeAccount]()
	ctx := context.Background()

	rec := fakeAccount{Key: "AAA", Email: "a@x.com", Password: "p", Note: "n"}
	if !s.Save(ctx, rec) {
		t.Fatal("save should succeed on empty store")
	}
	got, ok := s.Find(ctx, fakeAccount{Key: "AAA"})
	if !ok {
		t.Fatal("find should hit after save")
	}
	if got != rec {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, rec)
	}
}

func TestRAMStore_SaveTwiceFails(t *testing.T) {
	s := NewRAMStore[fakeAccount]()
	ctx := context.Background()

	first := fakeAccount{Key: "AAA", Note: "first"}
	if !s.Save(ctx, first) {
		t.Fatal("first save should succeed")
	}
	if s.Save(ctx, fakeAccount{Key: "AAA", Note: "second"}) {
		t.Error("second save at same key should fail")
	}
	got, _ := s.Find(ctx, fakeAccount{Key: "AAA"})
	if got.Note != "first" {
		t.Errorf("record should be unchanged after failed save, got note %q", got.Note)
	}
}

func TestRAMStore_UpdateAndDelete(t *testing.T) {
	s := NewRAMStore[fakeAccount]()
	ctx := context.Background()

	if s.Update(ctx, fakeAccount{Key: "AAA"}) {
		t.Error("update of absent key should fail")
	}
	if s.Delete(ctx, fakeAccount{Key: "AAA"}) {
		t.Error("delete of absent key should fail")
	}
	if n := len(s.GetAll(ctx)); n != 0 {
		t.Errorf("failed mutations must leave storage unchanged, found %d records", n)
	}

	s.Save(ctx, fakeAccount{Key: "AAA", Note: "v1"})
	if !s.Update(ctx, fakeAccount{Key: "AAA", Note: "v2"}) {
		t.Fatal("update of existing key should succeed")
	}
	got, _ := s.Find(ctx, fakeAccount{Key: "AAA"})
	if got.Note != "v2" {
		t.Errorf("update not applied, got note %q", got.Note)
	}
	if !s.Delete(ctx, fakeAccount{Key: "AAA"}) {
		t.Fatal("delete of existing key should succeed")
	}
	if _, ok := s.Find(ctx, fakeAccount{Key: "AAA"}); ok {
		t.Error("find should miss after delete")
	}
}

func TestRAMStore_GetAllPreservesInsertionOrder(t *testing.T) {
	s := NewRAMStore[fakeAccount]()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.Save(ctx, fakeAccount{Key: fmt.Sprintf("k%d", i)})
	}
	all := s.GetAll(ctx)
	if len(all) != 5 {
		t.Fatalf("expected 5 records, got %d", len(all))
	}
	for i, rec := range all {
		if want := fmt.Sprintf("k%d", i); rec.Key != want {
			t.Errorf("position %d: got %q, want %q", i, rec.Key, want)
		}
	}
}

func TestRAMCredentialStore_FindByEmail(t *testing.T) {
	s := NewRAMCredentialStore[fakeAccount]()
	ctx := context.Background()
	s.Save(ctx, fakeAccount{Key: "AAA", Email: "A@X.com"})

	if _, ok := s.FindByEmail(ctx, "a@x.com"); !ok {
		t.Error("email match should be case-insensitive")
	}
	if _, ok := s.FindByEmail(ctx, ""); ok {
		t.Error("empty email should never match")
	}
	if _, ok := s.FindByEmail(ctx, "b@x.com"); ok {
		t.Error("unknown email should miss")
	}
}

func TestRAMStore_ConcurrentReadersAndWriters(t *testing.T) {
	s := NewRAMStore[fakeAccount]()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Save(ctx, fakeAccount{Key: fmt.Sprintf("w%d-%d", i, j)})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.GetAll(ctx)
				s.Find(ctx, fakeAccount{Key: "w0-0"})
			}
		}()
	}
	wg.Wait()

	if n := len(s.GetAll(ctx)); n != 8*50 {
		t.Errorf("expected %d records after concurrent saves, got %d", 8*50, n)
	}
}
