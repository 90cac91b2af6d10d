package cmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestMap_SetGet(t *testing.T) {
	m := New[int]()

	m.Set("a", 1)
	m.Set("b", 2)

	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if v, ok := m.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = %d, %v; want 2, true", v, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) should return false")
	}
}

func TestMap_Overwrite(t *testing.T) {
	m := New[string]()

	m.Set("k", "v1")
	m.Set("k", "v2")

	if v, _ := m.Get("k"); v != "v2" {
		t.Errorf("Get(k) = %q, want %q", v, "v2")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestMap_Delete(t *testing.T) {
	m := New[int]()

	m.Set("k", 1)
	m.Delete("k")

	if m.Has("k") {
		t.Error("key should be deleted")
	}

	// Deleting a missing key is a no-op.
	m.Delete("missing")
}

func TestMap_Clear(t *testing.T) {
	m := New[int]()

	for i := 0; i < 100; i++ {
		m.Set(fmt.Sprintf("key%d", i), i)
	}
	m.Clear()

	if m.Count() != 0 {
		t.Errorf("Count() = %d after Clear, want 0", m.Count())
	}
}

func TestMap_InvalidShardCount(t *testing.T) {
	// Non-power-of-2 counts fall back to the default.
	for _, n := range []int{0, -1, 3, 7, 100} {
		m := NewWithShards[int](n)
		if len(m.shards) != DefaultShardCount {
			t.Errorf("NewWithShards(%d) created %d shards, want %d", n, len(m.shards), DefaultShardCount)
		}
	}
}

func TestMap_Mutate(t *testing.T) {
	m := New[int]()

	// Insert through Mutate.
	prev, existed, wrote := m.Mutate("k", func(prev int, exists bool) (int, bool) {
		if exists {
			t.Error("key should not exist yet")
		}
		return 1, true
	})
	if existed || !wrote || prev != 0 {
		t.Errorf("Mutate insert = (%d, %v, %v), want (0, false, true)", prev, existed, wrote)
	}

	// Update through Mutate, observing the previous value.
	prev, existed, wrote = m.Mutate("k", func(prev int, exists bool) (int, bool) {
		return prev + 1, true
	})
	if !existed || !wrote || prev != 1 {
		t.Errorf("Mutate update = (%d, %v, %v), want (1, true, true)", prev, existed, wrote)
	}
	if v, _ := m.Get("k"); v != 2 {
		t.Errorf("Get(k) = %d, want 2", v)
	}

	// Declined mutation leaves the map untouched.
	_, _, wrote = m.Mutate("k", func(prev int, exists bool) (int, bool) {
		return 99, false
	})
	if wrote {
		t.Error("declined mutation reported wrote=true")
	}
	if v, _ := m.Get("k"); v != 2 {
		t.Errorf("Get(k) = %d after declined mutation, want 2", v)
	}
}

func TestMap_MutateConcurrent(t *testing.T) {
	m := New[int]()

	const goroutines = 16
	const increments = 1000

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				m.Mutate("counter", func(prev int, exists bool) (int, bool) {
					return prev + 1, true
				})
			}
		}()
	}
	wg.Wait()

	if v, _ := m.Get("counter"); v != goroutines*increments {
		t.Errorf("counter = %d, want %d", v, goroutines*increments)
	}
}

func TestMap_RangeAndKeys(t *testing.T) {
	m := New[int]()
	for i := 0; i < 50; i++ {
		m.Set(fmt.Sprintf("key%d", i), i)
	}

	seen := 0
	m.Range(func(k string, v int) bool {
		seen++
		return true
	})
	if seen != 50 {
		t.Errorf("Range visited %d items, want 50", seen)
	}

	// Early termination.
	seen = 0
	m.Range(func(k string, v int) bool {
		seen++
		return seen < 10
	})
	if seen != 10 {
		t.Errorf("Range visited %d items with early stop, want 10", seen)
	}

	if got := len(m.Keys()); got != 50 {
		t.Errorf("len(Keys()) = %d, want 50", got)
	}
}

func TestMap_ConcurrentReadWrite(t *testing.T) {
	m := New[int]()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				m.Set(fmt.Sprintf("key%d-%d", n, j), j)
			}
		}(i)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				m.Get(fmt.Sprintf("key%d-%d", n, j))
			}
		}(i)
	}
	wg.Wait()

	if m.Count() != 8*500 {
		t.Errorf("Count() = %d, want %d", m.Count(), 8*500)
	}
}
