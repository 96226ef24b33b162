package uuidv47

import (
	"bytes"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	u := New()
	if u.IsNil() {
		t.Error("New() returned Nil UUID")
	}
	if got := u.Version(); got != 7 {
		t.Errorf("New().Version() = %d, want 7", got)
	}
	if u[8]&0xc0 != 0x80 {
		t.Errorf("New() variant bits = %02x, want 10xxxxxx", u[8])
	}

	ts := u.Timestamp()
	now := time.Now()
	if ts.Before(now.Add(-time.Hour)) || ts.After(now.Add(time.Second)) {
		t.Errorf("New().Timestamp() = %v, unreasonable", ts)
	}
}

func TestNewAt(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	u := NewAt(at)

	if got := u.Version(); got != 7 {
		t.Errorf("NewAt().Version() = %d, want 7", got)
	}
	if u[8]&0xc0 != 0x80 {
		t.Errorf("NewAt() variant bits = %02x, want 10xxxxxx", u[8])
	}
	if got := u.Timestamp().UnixMilli(); got != at.UnixMilli() {
		t.Errorf("NewAt().Timestamp() = %d, want %d", got, at.UnixMilli())
	}

	// Payloads are independent draws.
	if NewAt(at).Payload() == u.Payload() {
		t.Error("two NewAt() payloads are identical")
	}
}

func TestGeneratorMonotonic(t *testing.T) {
	gen := NewGenerator()

	prev := gen.Generate()
	for i := 0; i < 5000; i++ {
		next := gen.Generate()
		if bytes.Compare(next[:], prev[:]) <= 0 {
			t.Fatalf("order broke at %d: %s then %s", i, prev, next)
		}
		prev = next
	}
}

func TestGeneratorShape(t *testing.T) {
	gen := NewGenerator()
	for i := 0; i < 1000; i++ {
		u := gen.Generate()
		if got := u.Version(); got != 7 {
			t.Fatalf("Version() = %d, want 7", got)
		}
		if u[8]&0xc0 != 0x80 {
			t.Fatalf("variant bits = %02x, want 10xxxxxx", u[8])
		}
	}
}

func TestConcurrentGeneration(t *testing.T) {
	const numGoroutines = 100
	const numIDs = 100

	// Use a dedicated generator to avoid interference from other tests
	gen := NewGenerator()

	var wg sync.WaitGroup
	results := make([][]UUID, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ids := make([]UUID, numIDs)
			for j := 0; j < numIDs; j++ {
				ids[j] = gen.Generate()
			}
			results[idx] = ids
		}(i)
	}

	wg.Wait()

	// Check all UUIDs are unique across all goroutines
	seen := make(map[UUID]bool)
	for i, ids := range results {
		for j, u := range ids {
			if seen[u] {
				t.Errorf("Duplicate UUID found: %s (goroutine %d, index %d)", u, i, j)
			}
			seen[u] = true
		}
	}
}

func TestUniqueness(t *testing.T) {
	seen := make(map[UUID]bool)

	for i := 0; i < 10000; i++ {
		u := New()
		if seen[u] {
			t.Errorf("Duplicate UUID generated: %s", u)
		}
		seen[u] = true
	}
}

func TestRapidGeneration(t *testing.T) {
	ids := make([]UUID, 1000)
	for i := range ids {
		ids[i] = New()
	}

	// Timestamps never run backwards.
	var lastTS time.Time
	for i, u := range ids {
		ts := u.Timestamp()
		if ts.Before(lastTS) {
			t.Errorf("Timestamp went backwards at index %d: %v < %v", i, ts, lastTS)
		}
		lastTS = ts
	}
}

func BenchmarkNew(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = New()
	}
}

func BenchmarkNewParallel(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = New()
		}
	})
}

func BenchmarkNewAt(b *testing.B) {
	at := time.Now()
	for i := 0; i < b.N; i++ {
		_ = NewAt(at)
	}
}
