package ringlog

import "testing"

func TestAppendBelowCapacity(t *testing.T) {
	r := New[int](4)
	r.Append(1)
	r.Append(2)
	r.Append(3)
	if r.Len() != 3 || r.Dropped() != 0 {
		t.Fatalf("len=%d dropped=%d, want 3/0", r.Len(), r.Dropped())
	}
	got := r.Snapshot()
	want := []int{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snapshot = %v, want %v", got, want)
		}
	}
}

func TestOverwriteOldest(t *testing.T) {
	r := New[int](3)
	for i := 1; i <= 5; i++ {
		r.Append(i)
	}
	if r.Len() != 3 {
		t.Fatalf("len = %d, want 3", r.Len())
	}
	if r.Dropped() != 2 {
		t.Fatalf("dropped = %d, want 2", r.Dropped())
	}
	got := r.Snapshot()
	want := []int{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snapshot = %v, want %v", got, want)
		}
	}
}

func TestClearResets(t *testing.T) {
	r := New[string](2)
	r.Append("a")
	r.Append("b")
	r.Append("c")
	r.Clear()
	if r.Len() != 0 || r.Dropped() != 0 {
		t.Fatalf("after clear: len=%d dropped=%d", r.Len(), r.Dropped())
	}
	r.Append("d")
	if got := r.Snapshot(); len(got) != 1 || got[0] != "d" {
		t.Fatalf("snapshot after clear = %v", got)
	}
}

func TestMinimumCapacity(t *testing.T) {
	r := New[int](0)
	if r.Cap() != 1 {
		t.Fatalf("cap = %d, want 1", r.Cap())
	}
	r.Append(7)
	r.Append(8)
	if got := r.Snapshot(); len(got) != 1 || got[0] != 8 {
		t.Fatalf("snapshot = %v, want [8]", got)
	}
}
