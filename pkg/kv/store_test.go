package kv

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetSet(t *testing.T) {
	s := New[string, int]()

	s.Set("foo", 42)
	val, ok := s.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, 42, val)
	assert.True(t, s.Has("foo"))

	_, ok = s.Get("bar")
	assert.False(t, ok)
	assert.False(t, s.Has("bar"))
}

func TestStore_SetIfAbsent(t *testing.T) {
	s := New[string, int]()

	assert.True(t, s.SetIfAbsent("a", 1))
	assert.False(t, s.SetIfAbsent("a", 2))

	val, _ := s.Get("a")
	assert.Equal(t, 1, val)
}

func TestStore_Delete(t *testing.T) {
	s := New[string, string]()
	s.Set("key", "value")

	assert.True(t, s.Delete("key"))
	assert.False(t, s.Delete("key"))

	_, ok := s.Get("key")
	assert.False(t, ok)
}

func TestStore_Retain(t *testing.T) {
	s := New[string, int]()
	s.Set("a", 1)
	s.Set("b", 2)
	s.Set("c", 3)

	removed := s.Retain(func(_ string, v int) bool { return v%2 == 1 })

	assert.Equal(t, 1, removed)
	assert.Equal(t, map[string]int{"a": 1, "c": 3}, s.Snapshot())
}

func TestStore_Clear(t *testing.T) {
	s := New[string, int]()
	s.Set("a", 1)
	s.Set("b", 2)

	s.Clear()

	assert.Equal(t, 0, s.Len())
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := New[string, int]()
	s.Set("a", 1)

	snap := s.Snapshot()
	snap["b"] = 2

	assert.Equal(t, 1, s.Len())
}

func TestStore_Concurrent(t *testing.T) {
	s := New[int, int]()
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.SetIfAbsent(n%10, n)
			s.Has(n % 10)
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 10, s.Len())
}
