package state

import (
	"sync"
	"testing"
)

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	if err := s.Put("todos.v1", []byte("abc")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, _ := s.Get("todos.v1")
	got[0] = 'X'

	again, _ := s.Get("todos.v1")
	if string(again) != "abc" {
		t.Errorf("stored value mutated through Get result: %s", again)
	}
}

func TestMemoryStore_PutCopiesInput(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	buf := []byte("abc")
	s.Put("todos.v1", buf)
	buf[0] = 'X'

	got, _ := s.Get("todos.v1")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %s", got)
	}
}

func TestMemoryStore_CreatedStable(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Put("todos.v1", []byte("1"))
	first, _ := s.GetKeyValue("todos.v1")
	s.Put("todos.v1", []byte("2"))
	second, _ := s.GetKeyValue("todos.v1")

	if !second.Created.Equal(first.Created) {
		t.Error("Created should not change on update")
	}
	if second.Revision <= first.Revision {
		t.Errorf("revision should increase: %d -> %d", first.Revision, second.Revision)
	}
}

func TestMemoryStore_ConcurrentPut(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = s.Put("todos.v1", []byte("x"))
		}()
	}
	wg.Wait()

	kv, err := s.GetKeyValue("todos.v1")
	if err != nil {
		t.Fatalf("GetKeyValue failed: %v", err)
	}
	if kv.Revision != n {
		t.Errorf("expected revision %d, got %d", n, kv.Revision)
	}
}
