package transcoder

import "testing"

type countingAllocator struct {
	*Arena
	freed []uint64
}

func (c *countingAllocator) Free(ptr uint64, size, align uint32) {
	c.freed = append(c.freed, ptr)
	c.Arena.Free(ptr, size, align)
}

func TestAllocationListFree(t *testing.T) {
	alloc := &countingAllocator{Arena: NewArena(256)}
	list := NewAllocationList()

	a, err := alloc.Alloc(8, 8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	b, err := alloc.Alloc(3, 1)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	list.Add(a, 8, 8)
	list.Add(0, 4, 4)
	list.Add(b, 3, 1)
	if list.Count() != 3 {
		t.Fatalf("Count = %d, want 3", list.Count())
	}

	list.FreeAndRelease(alloc)
	if len(alloc.freed) != 2 || alloc.freed[0] != a || alloc.freed[1] != b {
		t.Errorf("freed = %#x, want [%#x %#x]", alloc.freed, a, b)
	}
}

func TestAllocationListNilAllocator(t *testing.T) {
	list := NewAllocationList()
	list.Add(ArenaBase, 4, 4)
	list.Free(nil)
	list.Reset()
	if list.Count() != 0 {
		t.Errorf("Count after Reset = %d", list.Count())
	}
	list.Release()
}
