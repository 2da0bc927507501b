package resource

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestHandle_Encoding(t *testing.T) {
	tests := []struct {
		slot int
		gen  uint32
	}{
		{0, 0},
		{1, 0},
		{41, 3},
		{1 << 20, maxGeneration},
	}

	for _, tt := range tests {
		h := makeHandle(tt.slot, tt.gen)
		if h <= 0 {
			t.Fatalf("handle for slot %d gen %d is not positive: %d", tt.slot, tt.gen, h)
		}
		if h.slot() != tt.slot || h.generation() != tt.gen {
			t.Fatalf("round trip: want (%d, %d), got (%d, %d)", tt.slot, tt.gen, h.slot(), h.generation())
		}
	}
}

func TestLocalBackend_GenerationWraps(t *testing.T) {
	b := NewLocalBackend()

	h, _ := b.Create(KindReply, 1)
	b.entries[h.slot()].gen = maxGeneration
	b.mu.Lock()
	b.release(h.slot())
	b.mu.Unlock()

	h2, _ := b.Create(KindReply, 2)
	if h2 <= 0 {
		t.Fatalf("Expected positive handle after wrap, got %d", h2)
	}
	if h2.generation() != 0 {
		t.Fatalf("Expected generation to wrap to 0, got %d", h2.generation())
	}
}

func TestLocalBackend_HandleReuse(t *testing.T) {
	b := NewLocalBackend()

	h1, _ := b.Create(KindReply, "a")
	h2, _ := b.Create(KindReply, "b")
	b.Take(h1, KindReply)

	h3, _ := b.Create(KindReply, "c")
	if h3.slot() != h1.slot() {
		t.Fatalf("Expected freed slot %d to be reused, got %d", h1.slot(), h3.slot())
	}
	if h3.generation() != h1.generation()+1 {
		t.Fatalf("Expected generation bump, got %d", h3.generation())
	}

	if v, _, res := b.Get(h2, KindReply); res != lookupOK || v != "b" {
		t.Fatalf("Unrelated handle disturbed: %v, %v", v, res)
	}
}

func TestLocalBackend_Len(t *testing.T) {
	b := NewLocalBackend()

	if b.Len() != 0 {
		t.Fatal("Expected empty backend")
	}

	h, _ := b.Create(KindReply, "a")
	b.Create(KindSpan, "b")
	if b.Len() != 2 {
		t.Fatalf("Expected Len() == 2, got %d", b.Len())
	}

	b.Take(h, KindReply)
	if b.Len() != 1 {
		t.Fatalf("Expected Len() == 1, got %d", b.Len())
	}
}

func TestLocalBackend_Each(t *testing.T) {
	b := NewLocalBackend()

	b.Create(KindReply, "a")
	h, _ := b.Create(KindReply, "b")
	b.Create(KindSpan, "c")
	b.Take(h, KindReply)

	seen := map[any]Kind{}
	b.Each(func(_ Handle, k Kind, v any) bool {
		seen[v] = k
		return true
	})
	if len(seen) != 2 || seen["a"] != KindReply || seen["c"] != KindSpan {
		t.Fatalf("Unexpected iteration: %v", seen)
	}

	count := 0
	b.Each(func(Handle, Kind, any) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("Expected early stop after 1, got %d", count)
	}
}

func TestLocalBackend_ConcurrentRedeem(t *testing.T) {
	table := NewTable()

	const handles = 50
	const redeemers = 8

	for i := 0; i < handles; i++ {
		h, err := table.Insert(KindReply, i)
		if err != nil {
			t.Fatal(err)
		}

		var wins atomic.Int32
		var wg sync.WaitGroup
		for j := 0; j < redeemers; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := table.Redeem(h, KindReply); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		if wins.Load() != 1 {
			t.Fatalf("handle %d: expected exactly one successful redeem, got %d", h, wins.Load())
		}
	}
}

func TestLocalBackend_ConcurrentInsert(t *testing.T) {
	b := NewLocalBackend()
	var wg sync.WaitGroup

	var mu sync.Mutex
	seen := make(map[Handle]bool)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			h, err := b.Create(KindReply, id)
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			seen[h] = true
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	if len(seen) != 100 || b.Len() != 100 {
		t.Fatalf("Expected 100 distinct handles, got %d (len %d)", len(seen), b.Len())
	}
}
