package notify

import "testing"

func TestCellTakeConsumes(t *testing.T) {
	cell := NewCell[string]()

	if _, ok := cell.Take(); ok {
		t.Fatal("empty cell should have nothing to take")
	}

	cell.Set("hello")

	v, ok := cell.Take()
	if !ok || v != "hello" {
		t.Fatalf("expected to take %q, got %q (ok=%v)", "hello", v, ok)
	}

	if _, ok := cell.Take(); ok {
		t.Error("cell should be empty after take")
	}
}

func TestCellOverwrite(t *testing.T) {
	cell := NewCell[int]()

	// a second arrival before acknowledgment overwrites the first
	cell.Set(1)
	cell.Set(2)

	v, ok := cell.Take()
	if !ok || v != 2 {
		t.Fatalf("expected 2, got %d (ok=%v)", v, ok)
	}
}

func TestCellPeek(t *testing.T) {
	cell := NewCell[string]()

	cell.Set("pending")

	if v, ok := cell.Peek(); !ok || v != "pending" {
		t.Fatalf("peek: expected %q, got %q (ok=%v)", "pending", v, ok)
	}
	// peek does not consume
	if v, ok := cell.Take(); !ok || v != "pending" {
		t.Fatalf("take after peek: expected %q, got %q (ok=%v)", "pending", v, ok)
	}
}

func TestCellOnSet(t *testing.T) {
	cell := NewCell[int]()

	var seen []int
	cell.OnSet(func(v int) {
		seen = append(seen, v)
	})

	cell.Set(1)
	cell.Set(2)
	cell.Take()
	cell.Set(3)

	want := []int{1, 2, 3}
	if len(seen) != len(want) {
		t.Fatalf("expected %d callbacks, got %d", len(want), len(seen))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("callback %d: expected %d, got %d", i, want[i], seen[i])
		}
	}
}
