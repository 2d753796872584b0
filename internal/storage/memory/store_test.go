package memory

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/minikv/internal/core/domain"
	"github.com/yndnr/minikv/pkg/resp"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func key(client int, name string) domain.Key {
	return domain.Key{ClientID: client, Name: name}
}

// ============================================================
// Insert / Read
// ============================================================

func TestStore_InsertRead(t *testing.T) {
	s := New()
	k := key(1, "x")

	if _, ok := s.Read(k); ok {
		t.Fatal("Read() on empty store should miss")
	}

	s.Insert(k, resp.BulkString("5"), 0)
	got, ok := s.Read(k)
	if !ok {
		t.Fatal("Read() should hit after Insert()")
	}
	if !got.Equal(resp.BulkString("5")) {
		t.Errorf("Read() = %v, want %v", got, resp.BulkString("5"))
	}
}

func TestStore_InsertOverwritesValueAndTTL(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now))
	k := key(1, "x")

	s.Insert(k, resp.BulkString("a"), 10*time.Millisecond)
	s.Insert(k, resp.BulkString("b"), 0)
	clock.Advance(time.Hour)

	got, ok := s.Read(k)
	if !ok {
		t.Fatal("overwrite without TTL should never expire")
	}
	if !got.Equal(resp.BulkString("b")) {
		t.Errorf("Read() = %v, want b", got)
	}
}

func TestStore_ReadReturnsCopy(t *testing.T) {
	s := New()
	k := key(1, "arr")
	s.Insert(k, resp.Array(resp.BulkString("a")), 0)

	got, _ := s.Read(k)
	got.Items()[0] = resp.BulkString("mutated")

	again, _ := s.Read(k)
	if !again.Items()[0].Equal(resp.BulkString("a")) {
		t.Error("mutating a read result changed the stored value")
	}
}

// ============================================================
// Expiry
// ============================================================

func TestStore_TTLExpiry(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now))
	k := key(1, "x")

	s.Insert(k, resp.BulkString("v"), 100*time.Millisecond)

	clock.Advance(100 * time.Millisecond)
	if _, ok := s.Read(k); !ok {
		t.Fatal("entry should be valid exactly at its TTL")
	}

	clock.Advance(time.Millisecond)
	if _, ok := s.Read(k); ok {
		t.Fatal("entry should be absent after its TTL")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, expired entry should have been evicted", s.Len())
	}
	if s.Expired() != 1 {
		t.Errorf("Expired() = %d, want 1", s.Expired())
	}
	if s.Exists(k) {
		t.Error("Exists() should report the expired key as absent")
	}
}

func TestStore_ExpiryIsLazy(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now))

	s.Insert(key(1, "a"), resp.BulkString("v"), time.Millisecond)
	s.Insert(key(1, "b"), resp.BulkString("v"), time.Millisecond)
	clock.Advance(time.Second)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, expired entries stay until touched", s.Len())
	}
	if s.Exists(key(1, "a")) {
		t.Fatal("a should be expired")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, only the touched key should be evicted", s.Len())
	}
}

func TestStore_ExistsProbeAfterExpiry(t *testing.T) {
	s := New()
	k := key(1, "x")
	s.Insert(k, resp.BulkString("v"), 20*time.Millisecond)

	time.Sleep(40 * time.Millisecond)

	if _, ok := s.Read(k); ok {
		t.Fatal("Read() after TTL should miss")
	}
	if s.Exists(k) {
		t.Error("key should be absent after the expired read")
	}
}

// ============================================================
// Increment
// ============================================================

func TestStore_Increment(t *testing.T) {
	tests := []struct {
		name      string
		seed      *resp.Value
		wantPrior int64
		wantAfter resp.Value
		wantErr   error
	}{
		{
			name:      "absent key counts as zero",
			seed:      nil,
			wantPrior: 0,
			wantAfter: resp.Int(1),
		},
		{
			name:      "integer value",
			seed:      ptr(resp.Int(5)),
			wantPrior: 5,
			wantAfter: resp.Int(6),
		},
		{
			name:      "negative integer",
			seed:      ptr(resp.Int(-1)),
			wantPrior: -1,
			wantAfter: resp.Int(0),
		},
		{
			name:      "bulk string is rejected",
			seed:      ptr(resp.BulkString("5")),
			wantAfter: resp.BulkString("5"),
			wantErr:   domain.ErrNotInteger,
		},
		{
			name:      "overflow is rejected",
			seed:      ptr(resp.Int(math.MaxInt64)),
			wantAfter: resp.Int(math.MaxInt64),
			wantErr:   domain.ErrNotInteger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			k := key(1, "counter")
			if tt.seed != nil {
				s.Insert(k, *tt.seed, 0)
			}

			prior, err := s.Increment(k)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Increment() error = %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("Increment() error = %v", err)
				}
				if prior != tt.wantPrior {
					t.Errorf("prior = %d, want %d", prior, tt.wantPrior)
				}
			}

			got, ok := s.Read(k)
			if !ok {
				t.Fatal("key should exist after Increment()")
			}
			if !got.Equal(tt.wantAfter) {
				t.Errorf("value after = %v, want %v", got, tt.wantAfter)
			}
		})
	}
}

func TestStore_IncrementPreservesTTL(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now))
	k := key(1, "n")

	s.Insert(k, resp.Int(1), 100*time.Millisecond)
	clock.Advance(60 * time.Millisecond)
	if _, err := s.Increment(k); err != nil {
		t.Fatalf("Increment() error = %v", err)
	}

	// The lifetime still counts from the original insert.
	clock.Advance(60 * time.Millisecond)
	if s.Exists(k) {
		t.Error("increment must not refresh the TTL")
	}
}

func TestStore_IncrementExpiredKeyRestarts(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now))
	k := key(1, "n")

	s.Insert(k, resp.Int(41), time.Millisecond)
	clock.Advance(time.Second)

	prior, err := s.Increment(k)
	if err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if prior != 0 {
		t.Errorf("prior = %d, expired key should count as 0", prior)
	}

	clock.Advance(time.Hour)
	if !s.Exists(k) {
		t.Error("seeded counter has no TTL")
	}
}

func TestStore_IncrementConcurrent(t *testing.T) {
	s := New()
	k := key(1, "hits")

	const workers, perWorker = 16, 500
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := s.Increment(k); err != nil {
					t.Errorf("Increment() error = %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got, _ := s.Read(k)
	if !got.Equal(resp.Int(workers * perWorker)) {
		t.Errorf("counter = %v, want %d (lost update)", got, workers*perWorker)
	}
}

// ============================================================
// Update / Remove
// ============================================================

func TestStore_UpdateErrorLeavesValue(t *testing.T) {
	s := New()
	k := key(1, "x")
	s.Insert(k, resp.BulkString("keep"), 0)

	boom := errors.New("boom")
	err := s.Update(k, func(resp.Value, bool) (resp.Value, error) {
		return resp.Value{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want boom", err)
	}

	got, _ := s.Read(k)
	if !got.Equal(resp.BulkString("keep")) {
		t.Errorf("value = %v, failed update must not write", got)
	}
}

func TestStore_Remove(t *testing.T) {
	s := New()
	s.Insert(key(1, "a"), resp.BulkString("1"), 0)
	s.Insert(key(1, "b"), resp.BulkString("2"), 0)
	s.Insert(key(2, "a"), resp.BulkString("3"), 0)

	n := s.Remove(key(1, "a"), key(1, "b"), key(1, "missing"))
	if n != 2 {
		t.Errorf("Remove() = %d, want 2", n)
	}
	if !s.Exists(key(2, "a")) {
		t.Error("other namespace must be untouched")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStore_NamespaceIsolation(t *testing.T) {
	s := New()
	s.Insert(key(1, "k"), resp.BulkString("a"), 0)
	s.Insert(key(2, "k"), resp.BulkString("b"), 0)

	got, _ := s.Read(key(1, "k"))
	if !got.Equal(resp.BulkString("a")) {
		t.Errorf("client 1 sees %v, want a", got)
	}
}

func ptr(v resp.Value) *resp.Value {
	return &v
}
