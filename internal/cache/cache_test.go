package cache

import (
	"fmt"
	"sort"
	"sync"
	"testing"
	"testing/fstest"
)

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, string]()

	t.Run("Set and Get", func(t *testing.T) {
		cache.Set("k", "v")

		got, exists := cache.Get("k")
		if !exists {
			t.Fatal("Expected key to exist")
		}
		if got != "v" {
			t.Errorf("Expected %q, got %q", "v", got)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		got, exists := cache.Get("missing")
		if exists {
			t.Error("Expected key to not exist")
		}
		if got != "" {
			t.Errorf("Expected zero value, got %q", got)
		}
	})

	t.Run("Delete and Clear", func(t *testing.T) {
		cache.Set("a", "1")
		cache.Set("b", "2")
		cache.Delete("a")
		if _, ok := cache.Get("a"); ok {
			t.Error("Expected deleted key to be gone")
		}

		cache.Clear()
		if cache.Len() != 0 {
			t.Errorf("Expected empty cache after Clear, got %d entries", cache.Len())
		}
	})

	t.Run("SetTo replaces contents", func(t *testing.T) {
		cache.Set("old", "x")
		cache.SetTo(map[string]string{"new": "y"})

		if _, ok := cache.Get("old"); ok {
			t.Error("Expected old key to be replaced")
		}
		if v, _ := cache.Get("new"); v != "y" {
			t.Errorf("Expected 'y', got %q", v)
		}
	})
}

func TestCache_Range(t *testing.T) {
	cache := NewCache[int, string]()
	for i := 0; i < 5; i++ {
		cache.Set(i, fmt.Sprintf("v%d", i))
	}

	t.Run("Visits every entry", func(t *testing.T) {
		var keys []int
		cache.Range(func(k int, _ string) bool {
			keys = append(keys, k)
			return true
		})
		sort.Ints(keys)
		if len(keys) != 5 || keys[0] != 0 || keys[4] != 4 {
			t.Errorf("Unexpected keys %v", keys)
		}
	})

	t.Run("Stops when fn returns false", func(t *testing.T) {
		visits := 0
		cache.Range(func(int, string) bool {
			visits++
			return false
		})
		if visits != 1 {
			t.Errorf("Expected 1 visit, got %d", visits)
		}
	})
}

func TestCache_DeleteFunc(t *testing.T) {
	cache := NewCache[int, int]()
	for i := 0; i < 10; i++ {
		cache.Set(i, i)
	}

	removed := cache.DeleteFunc(func(_ int, v int) bool { return v%2 == 0 })
	if removed != 5 {
		t.Errorf("Expected 5 removed, got %d", removed)
	}
	if cache.Len() != 5 {
		t.Errorf("Expected 5 left, got %d", cache.Len())
	}
	if _, ok := cache.Get(4); ok {
		t.Error("Expected even key to be removed")
	}
	if _, ok := cache.Get(3); !ok {
		t.Error("Expected odd key to be kept")
	}
}

func TestCache_Concurrency(t *testing.T) {
	cache := NewCache[int, string]()
	const numGoroutines = 50
	const numOperations = 200

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				cache.Set(id*numOperations+j, "v")
			}
		}(i)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				cache.Get(id*numOperations + j)
				cache.Len()
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() != numGoroutines*numOperations {
		t.Errorf("Expected %d entries, got %d", numGoroutines*numOperations, cache.Len())
	}
}

func TestStaticHash(t *testing.T) {
	SetStaticHash("/static/style.css", "abc123")

	hash, ok := GetStaticHash("/static/style.css")
	if !ok || hash != "abc123" {
		t.Errorf("Expected static hash 'abc123', got %q (found=%v)", hash, ok)
	}

	if _, ok := GetStaticHash("/static/missing.js"); ok {
		t.Error("Expected missing asset to have no hash")
	}
}

func TestHashStatic(t *testing.T) {
	fsys := fstest.MapFS{
		"style.css":   {Data: []byte("body{}")},
		"js/app.js":   {Data: []byte("console.log(1)")},
		"js/empty.js": {Data: []byte("")},
	}

	err := HashStatic(fsys, "/static/", func(b []byte) string { return fmt.Sprintf("len-%d", len(b)) })
	if err != nil {
		t.Fatalf("HashStatic failed: %v", err)
	}

	testCases := map[string]string{
		"/static/style.css":   "len-6",
		"/static/js/app.js":   "len-14",
		"/static/js/empty.js": "len-0",
	}
	for path, want := range testCases {
		got, ok := GetStaticHash(path)
		if !ok || got != want {
			t.Errorf("%s: expected %q, got %q (found=%v)", path, want, got, ok)
		}
	}
}
